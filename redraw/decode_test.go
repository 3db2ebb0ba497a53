package redraw

import (
	"testing"

	"github.com/anaseto/nvim-gruid/rpc"
)

func TestDecodeGridLineWithRepeatAndDoubleWidth(t *testing.T) {
	batch := []interface{}{
		[]interface{}{
			"grid_line",
			[]interface{}{
				int64(1), int64(0), int64(0),
				[]interface{}{
					[]interface{}{"A", int64(7), int64(3)},
					[]interface{}{"漢", int64(8)},
					[]interface{}{""},
					[]interface{}{"B", int64(7), int64(5)},
				},
			},
		},
	}
	events, err := Decode(batch)
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	gl, ok := events[0].(GridLine)
	if !ok {
		t.Fatalf("event is %T, want GridLine", events[0])
	}
	cells := gl.ResolveCells()
	wantText := []string{"A", "漢", "", "B"}
	wantHl := []int{7, 8, 8, 7}
	wantRepeat := []int{3, 1, 1, 5}
	if len(cells) != 4 {
		t.Fatalf("got %d resolved cells, want 4", len(cells))
	}
	for i := range wantText {
		if cells[i].Text != wantText[i] || cells[i].Hl != wantHl[i] || cells[i].Repeat != wantRepeat[i] {
			t.Errorf("cell %d = %+v, want {%q %d %d}", i, cells[i], wantText[i], wantHl[i], wantRepeat[i])
		}
	}
}

func TestDecodeMultipleOccurrencesInOneBatch(t *testing.T) {
	batch := []interface{}{
		[]interface{}{
			"grid_destroy",
			[]interface{}{int64(2)},
			[]interface{}{int64(3)},
		},
	}
	events, err := Decode(batch)
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if events[0].(GridDestroy).Grid != 2 || events[1].(GridDestroy).Grid != 3 {
		t.Errorf("got %+v, %+v", events[0], events[1])
	}
}

func TestDecodeUnknownEventIsAcceptedNotFatal(t *testing.T) {
	batch := []interface{}{
		[]interface{}{"some_future_event", []interface{}{int64(1)}},
	}
	events, err := Decode(batch)
	if err != nil {
		t.Fatalf("unexpected error for unknown event: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	u, ok := events[0].(Unknown)
	if !ok || u.Name != "some_future_event" {
		t.Errorf("got %+v, want Unknown{some_future_event}", events[0])
	}
}

func TestDecodeGridLineFirstCellMustCarryHl(t *testing.T) {
	batch := []interface{}{
		[]interface{}{
			"grid_line",
			[]interface{}{
				int64(1), int64(0), int64(0),
				[]interface{}{[]interface{}{"A"}},
			},
		},
	}
	_, err := Decode(batch)
	if err == nil {
		t.Fatal("expected a protocol error when the first cell lacks an hl id")
	}
}

func TestDecodeParameterlessEventsGetSingleOccurrence(t *testing.T) {
	batch := []interface{}{
		[]interface{}{"flush"},
	}
	events, err := Decode(batch)
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	if _, ok := events[0].(Flush); !ok {
		t.Errorf("got %T, want Flush", events[0])
	}
}

func TestDecodeMsgShowReplaceLast(t *testing.T) {
	batch := []interface{}{
		[]interface{}{
			"msg_show",
			[]interface{}{
				"echo",
				[]interface{}{
					[]interface{}{int64(0), "hello"},
				},
				true,
			},
		},
	}
	events, err := Decode(batch)
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	show, ok := events[0].(MsgShow)
	if !ok {
		t.Fatalf("got %T, want MsgShow", events[0])
	}
	if !show.ReplaceLast || show.Kind != "echo" || len(show.Content) != 1 || show.Content[0].Text != "hello" {
		t.Errorf("got %+v", show)
	}
}

func TestDecodeModeInfoSet(t *testing.T) {
	batch := []interface{}{
		[]interface{}{
			"mode_info_set",
			[]interface{}{
				true,
				[]interface{}{
					map[string]interface{}{
						"cursor_shape":    "block",
						"cell_percentage": int64(100),
						"blinkwait":       int64(100),
						"blinkoff":        int64(500),
						"blinkon":         int64(500),
					},
				},
			},
		},
	}
	events, err := Decode(batch)
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	mis, ok := events[0].(ModeInfoSet)
	if !ok {
		t.Fatalf("got %T, want ModeInfoSet", events[0])
	}
	if len(mis.Modes) != 1 || mis.Modes[0].BlinkWait != 100 || mis.Modes[0].CellPercent != 1 {
		t.Errorf("got %+v", mis.Modes)
	}
}

func TestDecodeMalformedBatchIsProtocolError(t *testing.T) {
	batch := []interface{}{"not-an-array"}
	_, err := Decode(batch)
	if _, ok := err.(*rpc.ProtocolError); !ok {
		t.Fatalf("expected *rpc.ProtocolError for a malformed batch entry, got %T: %v", err, err)
	}
}
