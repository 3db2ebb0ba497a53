// Package popupmenu implements the Popupmenu component: a pure data model
// for the completion list and its anchor (spec.md §4.9). Unlike the
// teacher's ui.Menu, which is a locally key-driven interactive widget, this
// Popupmenu only mirrors the editor-driven selection state — all
// navigation happens in the editor and arrives as popupmenu_select events.
package popupmenu

import "github.com/anaseto/nvim-gruid/grid"

// Item is one completion candidate (spec.md §3's PopupmenuItem).
type Item struct {
	Word, Kind, Menu, Info string
}

// Popupmenu is the Popupmenu component.
type Popupmenu struct {
	items    []Item
	selected int // -1 = none

	gridID, row, col int
	visible          bool

	pixelX, pixelY grid.Fixed
}

// New returns an empty, hidden Popupmenu.
func New() *Popupmenu {
	return &Popupmenu{selected: -1}
}

// Show implements popupmenu_show: replaces the item list and anchor, and
// makes the menu visible.
func (p *Popupmenu) Show(items []Item, selected, gridID, row, col int) {
	p.items = items
	p.selected = selected
	p.gridID, p.row, p.col = gridID, row, col
	p.visible = true
}

// Select implements popupmenu_select: updates only the selected index.
func (p *Popupmenu) Select(selected int) {
	p.selected = selected
}

// Hide implements popupmenu_hide.
func (p *Popupmenu) Hide() {
	p.visible = false
}

// Items returns the current item list in display order.
func (p *Popupmenu) Items() []Item { return p.items }

// Selected returns the selected index, or -1 if none.
func (p *Popupmenu) Selected() int { return p.selected }

// Visible reports whether the menu should be drawn.
func (p *Popupmenu) Visible() bool { return p.visible }

// Anchor returns the grid-relative anchor (grid id, row, col), satisfying
// shell.PopupmenuAnchorer.
func (p *Popupmenu) Anchor() (gridID, row, col int) {
	return p.gridID, p.row, p.col
}

// SetPixelAnchor records the anchor's resolved pixel position; recomputed
// every flush while visible, since the anchor grid may scroll or move
// (spec.md §4.9), satisfying shell.PopupmenuAnchorer.
func (p *Popupmenu) SetPixelAnchor(x, y grid.Fixed) {
	p.pixelX, p.pixelY = x, y
}

// PixelAnchor returns the last-resolved pixel position of the anchor.
func (p *Popupmenu) PixelAnchor() (grid.Fixed, grid.Fixed) {
	return p.pixelX, p.pixelY
}
