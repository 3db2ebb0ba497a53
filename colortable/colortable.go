// Package colortable stores the editor's default colors, the numbered
// highlight attribute table populated by hl_attr_define, and the semantic
// highlight-group bindings the front-end itself relies on (popupmenu,
// message separator, tabline).
package colortable

// Color is a 24-bit RGB color. The zero value means "unset": resolution
// falls back to the table's default for the corresponding channel.
type Color struct {
	R, G, B uint8
	Set     bool
}

// RGB constructs a set Color.
func RGB(v uint32) Color {
	return Color{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), Set: true}
}

// HighlightAttrs is the decoded form of one hl_attr_define entry.
type HighlightAttrs struct {
	Fg, Bg, Sp Color
	Blend      int // 0-100, only meaningful when explicitly set
	HasBlend   bool

	Reverse       bool
	Italic        bool
	Bold          bool
	Strikethrough bool
	Underline     bool
	Underdouble   bool
	Undercurl     bool
	Underdot      bool
	Underdash     bool
}

// SemanticGroup names one of the closed set of highlight groups the
// front-end itself draws with (as opposed to groups only the editor's own
// buffers use).
type SemanticGroup int

const (
	GroupMsgSeparator SemanticGroup = iota
	GroupPmenu
	GroupPmenuSel
	GroupPmenuSbar
	GroupPmenuThumb
	GroupTabline
	GroupTablineSel
	GroupTablineFill
	GroupMenu
)

var groupNames = map[string]SemanticGroup{
	"MsgSeparator": GroupMsgSeparator,
	"Pmenu":        GroupPmenu,
	"PmenuSel":     GroupPmenuSel,
	"PmenuSbar":    GroupPmenuSbar,
	"PmenuThumb":   GroupPmenuThumb,
	"TabLine":      GroupTabline,
	"TabLineSel":   GroupTablineSel,
	"TabLineFill":  GroupTablineFill,
	"Menu":         GroupMenu,
}

// LookupGroup returns the SemanticGroup for a highlight group name and
// whether it is in the closed set the front-end recognizes.
func LookupGroup(name string) (SemanticGroup, bool) {
	g, ok := groupNames[name]
	return g, ok
}

// Table is the ColorTable component of spec.md §3/§4.5.
type Table struct {
	defaultFg, defaultBg, defaultSp Color
	attrs                           map[int]HighlightAttrs
	groups                          map[SemanticGroup]int
	dirty                           bool
}

// New returns an empty Table; id 0 resolves to the default colors with no
// extra attributes until overridden by hl_attr_define(0, ...).
func New() *Table {
	return &Table{
		attrs:  make(map[int]HighlightAttrs),
		groups: make(map[SemanticGroup]int),
	}
}

// SetDefaultColors implements default_colors_set.
func (t *Table) SetDefaultColors(fg, bg, sp Color) {
	t.defaultFg, t.defaultBg, t.defaultSp = fg, bg, sp
	t.dirty = true
}

// DefineAttr implements hl_attr_define: insert or replace the attrs for id.
func (t *Table) DefineAttr(id int, attrs HighlightAttrs) {
	t.attrs[id] = attrs
	t.dirty = true
}

// BindGroup implements hl_group_set for a recognized semantic group name;
// names outside the closed set are ignored.
func (t *Table) BindGroup(name string, id int) {
	g, ok := LookupGroup(name)
	if !ok {
		return
	}
	t.groups[g] = id
	t.dirty = true
}

// Dirty reports whether any color/attribute/group changed since the last
// ClearDirty, i.e. whether a style invalidation is pending for the next
// flush.
func (t *Table) Dirty() bool { return t.dirty }

// ClearDirty consumes the style-invalidation flag.
func (t *Table) ClearDirty() { t.dirty = false }

// Resolved is the result of resolving a highlight id: concrete fg/bg/sp
// colors (reverse already applied) plus the non-color attribute flags.
type Resolved struct {
	Fg, Bg, Sp Color
	Attrs      HighlightAttrs
}

// Resolve looks up id (falling back to the default/id-0 attrs on a miss)
// and returns concrete colors with reverse swap already applied, per
// spec.md §4.5 ("reverse swaps fg and bg at resolution time, not
// mutated").
func (t *Table) Resolve(id int) Resolved {
	attrs := t.attrs[id] // zero value for unknown/0: no attrs set

	fg := attrs.Fg
	if !fg.Set {
		fg = t.defaultFg
	}
	bg := attrs.Bg
	if !bg.Set {
		bg = t.defaultBg
	}
	sp := attrs.Sp
	if !sp.Set {
		sp = t.defaultSp
	}
	if attrs.Reverse {
		fg, bg = bg, fg
	}
	return Resolved{Fg: fg, Bg: bg, Sp: sp, Attrs: attrs}
}

// GroupID returns the highlight id bound to a semantic group, or 0 (the
// default id) if no binding has been set, per spec.md §3 ("lookups that
// miss return the default").
func (t *Table) GroupID(g SemanticGroup) int {
	return t.groups[g]
}
