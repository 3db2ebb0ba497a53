// Package messages implements the Messages component: a chronological
// message list with kind classification and history (spec.md §4.10).
// Grounded on the teacher's append-only ui.Text buffer (ui/text.go) for the
// scrolling/append conventions, generalized to structured (kind, chunks)
// entries instead of plain lines.
package messages

import "github.com/anaseto/nvim-gruid/colortable"

// Chunk is one (highlight id, text) piece of a message's content (spec.md
// §3).
type Chunk struct {
	Hl   int
	Text string
}

// Message is one entry of the Messages list.
type Message struct {
	Kind        string
	Content     []Chunk
	ReplaceLast bool
}

// defaultDisplay is the fallback kind→display mapping entry for unknown
// kinds (spec.md §4.10).
var defaultDisplay = Display{Group: colortable.GroupMsgSeparator}

// Display is the presentation assigned to a message kind: which semantic
// highlight group prefixes/frames it.
type Display struct {
	Group colortable.SemanticGroup
}

// Messages is the Messages component.
type Messages struct {
	entries []Message
	kinds   map[string]Display
	atLatest bool
}

// New returns an empty Messages list with the given kind→display table.
// An unconfigured table is fine; unknown kinds fall back to defaultDisplay.
func New(kinds map[string]Display) *Messages {
	return &Messages{kinds: kinds, atLatest: true}
}

// Show implements msg_show: appends a message, first removing the previous
// last entry if replaceLast is set, to coalesce streamed output (spec.md
// §4.10).
func (m *Messages) Show(kind string, content []Chunk, replaceLast bool) {
	if replaceLast && len(m.entries) > 0 {
		m.entries = m.entries[:len(m.entries)-1]
	}
	m.entries = append(m.entries, Message{Kind: kind, Content: content, ReplaceLast: replaceLast})
	m.atLatest = true
}

// Clear implements msg_clear: drops all entries.
func (m *Messages) Clear() {
	m.entries = nil
}

// HistoryShow implements msg_history_show: prepends historical entries
// ahead of whatever is currently displayed.
func (m *Messages) HistoryShow(entries []Message) {
	m.entries = append(append([]Message{}, entries...), m.entries...)
}

// HistoryClear implements msg_history_clear: drops all entries, same
// effect as Clear (the editor sends this for a distinct reason but the
// resulting state is identical).
func (m *Messages) HistoryClear() {
	m.Clear()
}

// Entries returns the current message list in chronological order.
func (m *Messages) Entries() []Message { return m.entries }

// DisplayFor looks up the display for kind, falling back to the default
// display on a miss (spec.md §4.10).
func (m *Messages) DisplayFor(kind string) Display {
	if d, ok := m.kinds[kind]; ok {
		return d
	}
	return defaultDisplay
}

// AtLatest reports whether the widget should auto-scroll to the newest
// entry (spec.md §4.10's "auto-scrolls to the latest entry" — true after
// any Show, until the caller explicitly scrolls away via ScrollAway).
func (m *Messages) AtLatest() bool { return m.atLatest }

// ScrollAway marks that the user has scrolled off the latest entry; the
// next Show sets AtLatest again.
func (m *Messages) ScrollAway() { m.atLatest = false }
