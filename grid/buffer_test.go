package grid

import (
	"testing"
	"time"

	"github.com/anaseto/nvim-gruid/colortable"
)

func newTestBuffer(w, h int) *Buffer {
	b := New(1, w, h)
	b.metrics = Metrics{AdvanceX: FixedFromInt(8), LineY: FixedFromInt(16)}
	return b
}

func TestPutLineRepeatAndDoubleWidth(t *testing.T) {
	b := newTestBuffer(10, 1)
	b.PutLine(0, 0, []DecodedCell{
		{Text: "A", Hl: 7, Repeat: 3},
		{Text: "漢", Hl: 8, Repeat: 1},
		{Text: "", Hl: 8, Repeat: 1},
		{Text: "B", Hl: 7, Repeat: 5},
	})

	row := b.Row(0)
	wantText := []string{"A", "A", "A", "漢", "", "B", "B", "B", "B", "B"}
	wantHl := []int{7, 7, 7, 8, 8, 7, 7, 7, 7, 7}
	for i := 0; i < 10; i++ {
		if row.Cells[i].Text != wantText[i] {
			t.Errorf("col %d: text = %q, want %q", i, row.Cells[i].Text, wantText[i])
		}
		if row.Cells[i].Hl != wantHl[i] {
			t.Errorf("col %d: hl = %d, want %d", i, row.Cells[i].Hl, wantHl[i])
		}
	}
	if !row.Cells[3].DoubleWidth {
		t.Error("col 3 should be double-width")
	}
	for i, c := range row.Cells {
		if i != 3 && c.DoubleWidth {
			t.Errorf("col %d unexpectedly double-width", i)
		}
	}
}

func TestFlushSegmentsRunsAndCleansGrid(t *testing.T) {
	b := newTestBuffer(10, 1)
	b.PutLine(0, 0, []DecodedCell{
		{Text: "A", Hl: 7, Repeat: 3},
		{Text: "漢", Hl: 8, Repeat: 1},
		{Text: "", Hl: 8, Repeat: 1},
		{Text: "B", Hl: 7, Repeat: 5},
	})
	colors := colortable.New()
	nodes := b.Flush(colors, time.Now())

	var texts []string
	for _, n := range nodes {
		if n.Kind == NodeText {
			texts = append(texts, n.Text)
		}
	}
	want := []string{"AAA", "漢", "BBBBB"}
	if len(texts) != len(want) {
		t.Fatalf("got %d text runs %v, want %v", len(texts), texts, want)
	}
	for i := range want {
		if texts[i] != want[i] {
			t.Errorf("run %d = %q, want %q", i, texts[i], want[i])
		}
	}

	if b.Row(0).Dirty() {
		t.Error("grid should be clean after flush")
	}
}

func TestResizePreservesInRangeAndBlanksNewCells(t *testing.T) {
	b := newTestBuffer(4, 2)
	b.PutLine(0, 0, []DecodedCell{{Text: "X", Hl: 1, Repeat: 4}})
	b.PutLine(1, 0, []DecodedCell{{Text: "Y", Hl: 1, Repeat: 4}})

	b.Resize(6, 3)
	w, h := b.Size()
	if w != 6 || h != 3 {
		t.Fatalf("size = (%d,%d), want (6,3)", w, h)
	}
	for x := 0; x < 4; x++ {
		if b.Row(0).Cells[x].Text != "X" {
			t.Errorf("preserved cell (0,%d) = %q, want X", x, b.Row(0).Cells[x].Text)
		}
	}
	for x := 4; x < 6; x++ {
		c := b.Row(0).Cells[x]
		if c.Text != " " || c.Hl != 0 || c.DoubleWidth {
			t.Errorf("new cell (0,%d) = %+v, want blank", x, c)
		}
	}
	for x := 0; x < 6; x++ {
		c := b.Row(2).Cells[x]
		if c.Text != " " {
			t.Errorf("new row cell (2,%d) = %+v, want blank", x, c)
		}
	}
}

func TestScrollInvariant(t *testing.T) {
	b := newTestBuffer(80, 24)
	for y := 0; y < 24; y++ {
		cells := make([]DecodedCell, 80)
		for x := range cells {
			cells[x] = DecodedCell{Text: string(rune('a' + (x+y)%26)), Hl: y, Repeat: 1}
		}
		b.PutLine(y, 0, cells)
	}
	b.Flush(colortable.New(), time.Now())

	origRow1Col5 := b.Row(1).Cells[5]
	origRow23 := make([]Cell, len(b.Row(23).Cells))
	copy(origRow23, b.Row(23).Cells)

	b.Scroll(0, 24, 0, 80, 1, 0)

	got := b.Row(0).Cells[5]
	if got.Text != origRow1Col5.Text || got.Hl != origRow1Col5.Hl {
		t.Errorf("row0,col5 = %+v, want %+v", got, origRow1Col5)
	}

	for x := 0; x < 80; x++ {
		if b.Row(23).Cells[x].Text != origRow23[x].Text {
			t.Errorf("row 23 content changed at col %d", x)
		}
	}
	if !b.Row(23).Dirty() {
		t.Error("row 23 should have its cache invalidated after scroll")
	}
}

func TestClearIdempotent(t *testing.T) {
	b := newTestBuffer(5, 2)
	b.PutLine(0, 0, []DecodedCell{{Text: "X", Hl: 3, Repeat: 5}})
	b.Clear()
	first := make([]Cell, len(b.Row(0).Cells))
	copy(first, b.Row(0).Cells)
	b.Clear()
	for x := range first {
		if b.Row(0).Cells[x].Text != first[x].Text || b.Row(0).Cells[x].Hl != first[x].Hl {
			t.Errorf("clear not idempotent at col %d", x)
		}
	}
}

func TestPutLineTwiceIsIdempotent(t *testing.T) {
	b := newTestBuffer(5, 1)
	apply := func() {
		b.PutLine(0, 0, []DecodedCell{{Text: "Z", Hl: 2, Repeat: 5}})
	}
	apply()
	first := make([]Cell, len(b.Row(0).Cells))
	copy(first, b.Row(0).Cells)
	apply()
	for x := range first {
		if b.Row(0).Cells[x].Text != first[x].Text || b.Row(0).Cells[x].Hl != first[x].Hl {
			t.Errorf("put_line not idempotent at col %d", x)
		}
	}
}
