package redraw

import (
	"compress/gzip"
	"fmt"
	"io"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// RecordedNotification is one recorded `redraw` notification, captured
// before decoding so a session can be replayed through Decode exactly as
// it first arrived. Delay is the time elapsed since the previous recorded
// notification (zero for the first), preserved so a Player can reproduce
// the original pacing.
//
// This is adapted from the teacher's session-recording format
// (recording.go's FrameDecoder/frameEncoder): same gzip-wrapped stream of
// serialized values, with msgpack in place of gob, since a notification's
// params is the same loosely-typed []interface{} tree the rest of this
// module already decodes with vmihailenco/msgpack/v5 — gob would need
// concrete types registered for every value shape nvim ever sends.
type RecordedNotification struct {
	Delay  time.Duration
	Params []interface{}
}

// Recorder writes a stream of RecordedNotification values.
type Recorder struct {
	gzw  *gzip.Writer
	enc  *msgpack.Encoder
	last time.Time
}

// NewRecorder returns a Recorder writing to w. It is the caller's
// responsibility to call Close when done.
func NewRecorder(w io.Writer) *Recorder {
	gzw := gzip.NewWriter(w)
	return &Recorder{gzw: gzw, enc: msgpack.NewEncoder(gzw)}
}

// Record appends one notification's params to the stream, stamped with
// the time elapsed since the previous call.
func (rec *Recorder) Record(params []interface{}) error {
	now := time.Now()
	var delay time.Duration
	if !rec.last.IsZero() {
		delay = now.Sub(rec.last)
	}
	rec.last = now
	return rec.enc.Encode(RecordedNotification{Delay: delay, Params: params})
}

// Close flushes and closes the underlying gzip stream.
func (rec *Recorder) Close() error {
	return rec.gzw.Close()
}

// Player reads back a stream written by Recorder.
type Player struct {
	gzr *gzip.Reader
	dec *msgpack.Decoder
}

// NewPlayer returns a Player reading from r. It is the caller's
// responsibility to call Close on r when done.
func NewPlayer(r io.Reader) (*Player, error) {
	gzr, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("redraw: recording: %w", err)
	}
	return &Player{gzr: gzr, dec: msgpack.NewDecoder(gzr)}, nil
}

// Next returns the next recorded notification, or io.EOF once the stream
// is exhausted.
func (p *Player) Next() (RecordedNotification, error) {
	var rn RecordedNotification
	if err := p.dec.Decode(&rn); err != nil {
		return RecordedNotification{}, err
	}
	return rn, nil
}

// Close releases the gzip reader.
func (p *Player) Close() error {
	return p.gzr.Close()
}
