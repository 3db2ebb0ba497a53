package messages

import (
	"testing"

	"github.com/anaseto/nvim-gruid/colortable"
)

func TestShowAppends(t *testing.T) {
	m := New(nil)
	m.Show("echo", []Chunk{{Hl: 0, Text: "hello"}}, false)
	m.Show("echo", []Chunk{{Hl: 0, Text: "world"}}, false)
	if len(m.Entries()) != 2 {
		t.Fatalf("got %d entries, want 2", len(m.Entries()))
	}
}

func TestReplaceLastCoalesces(t *testing.T) {
	m := New(nil)
	m.Show("echo", []Chunk{{Text: "partial"}}, false)
	m.Show("echo", []Chunk{{Text: "partial more"}}, true)
	entries := m.Entries()
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1 after replace_last", len(entries))
	}
	if entries[0].Content[0].Text != "partial more" {
		t.Errorf("content = %q, want %q", entries[0].Content[0].Text, "partial more")
	}
}

func TestClearDropsAll(t *testing.T) {
	m := New(nil)
	m.Show("echo", []Chunk{{Text: "x"}}, false)
	m.Clear()
	if len(m.Entries()) != 0 {
		t.Error("expected empty after Clear")
	}
}

func TestHistoryShowPrepends(t *testing.T) {
	m := New(nil)
	m.Show("echo", []Chunk{{Text: "current"}}, false)
	m.HistoryShow([]Message{{Kind: "echo", Content: []Chunk{{Text: "past"}}}})
	entries := m.Entries()
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0].Content[0].Text != "past" {
		t.Errorf("first entry = %q, want %q", entries[0].Content[0].Text, "past")
	}
}

func TestUnknownKindFallsBackToDefaultDisplay(t *testing.T) {
	m := New(map[string]Display{"echo": {Group: colortable.GroupTabline}})
	d := m.DisplayFor("totally-unknown-kind")
	if d.Group != colortable.GroupMsgSeparator {
		t.Errorf("fallback group = %v, want GroupMsgSeparator", d.Group)
	}
	known := m.DisplayFor("echo")
	if known.Group != colortable.GroupTabline {
		t.Errorf("known kind display = %v, want GroupTabline", known.Group)
	}
}

func TestAutoScrollFlag(t *testing.T) {
	m := New(nil)
	m.Show("echo", []Chunk{{Text: "x"}}, false)
	if !m.AtLatest() {
		t.Error("expected at-latest after Show")
	}
	m.ScrollAway()
	if m.AtLatest() {
		t.Error("expected not at-latest after ScrollAway")
	}
	m.Show("echo", []Chunk{{Text: "y"}}, false)
	if !m.AtLatest() {
		t.Error("expected Show to reset at-latest")
	}
}
