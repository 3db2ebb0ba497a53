package redraw

import (
	"bytes"
	"io"
	"testing"
)

func TestRecorderPlayerRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	rec := NewRecorder(&buf)

	batches := [][]interface{}{
		{"grid_line", []interface{}{int64(1), int64(0), int64(0), "hi"}},
		{"flush"},
	}
	for _, b := range batches {
		if err := rec.Record(b); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}
	if err := rec.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	p, err := NewPlayer(&buf)
	if err != nil {
		t.Fatalf("NewPlayer: %v", err)
	}
	defer p.Close()

	for i, want := range batches {
		rn, err := p.Next()
		if err != nil {
			t.Fatalf("Next() at %d: %v", i, err)
		}
		name, ok := rn.Params[0].(string)
		if !ok || name != want[0] {
			t.Errorf("Params[0] = %#v, want %q", rn.Params[0], want[0])
		}
		if len(rn.Params) != len(want) {
			t.Errorf("len(Params) = %d, want %d", len(rn.Params), len(want))
		}
	}

	if _, err := p.Next(); err != io.EOF {
		t.Errorf("Next() past end = %v, want io.EOF", err)
	}
}

func TestRecorderStampsIncreasingDelay(t *testing.T) {
	var buf bytes.Buffer
	rec := NewRecorder(&buf)
	rec.Record([]interface{}{"flush"})
	rec.Record([]interface{}{"flush"})
	rec.Close()

	p, err := NewPlayer(&buf)
	if err != nil {
		t.Fatalf("NewPlayer: %v", err)
	}
	defer p.Close()

	first, err := p.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if first.Delay != 0 {
		t.Errorf("first.Delay = %v, want 0", first.Delay)
	}

	second, err := p.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if second.Delay < 0 {
		t.Errorf("second.Delay = %v, want >= 0", second.Delay)
	}
}
