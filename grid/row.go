package grid

// Row is an ordered sequence of cells. It holds no render node of its own:
// the nodes are cached per shaped run in the cells' shared cache slots (see
// Buffer.Flush). A row is dirty when any cell's cache slot is empty.
type Row struct {
	Cells []Cell
}

// Dirty reports whether any cell in the row needs reshaping.
func (r Row) Dirty() bool {
	for _, c := range r.Cells {
		if c.dirty() {
			return true
		}
	}
	return false
}

func newRow(cols int) Row {
	cells := make([]Cell, cols)
	for i := range cells {
		cells[i] = blank
	}
	return Row{Cells: cells}
}

// invalidateRange clears the cache slots of cells in [lo, hi).
func (r *Row) invalidateRange(lo, hi int) {
	if lo < 0 {
		lo = 0
	}
	if hi > len(r.Cells) {
		hi = len(r.Cells)
	}
	for i := lo; i < hi; i++ {
		r.Cells[i].invalidate()
	}
}
