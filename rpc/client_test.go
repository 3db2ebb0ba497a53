package rpc

import (
	"context"
	"net"
	"testing"
	"time"
)

type recordingHandler struct {
	notifications []string
	requests      []string
}

func (h *recordingHandler) HandleNotification(method string, params []interface{}) {
	h.notifications = append(h.notifications, method)
}

func (h *recordingHandler) HandleRequest(method string, params []interface{}, reply func(result, errVal interface{})) {
	h.requests = append(h.requests, method)
	reply("ok", nil)
}

// pipePair returns two Codecs wired together over an in-memory connection,
// like the editor subprocess's stdin/stdout pipes.
func pipePair(t *testing.T) (*Codec, *Codec) {
	t.Helper()
	c1, c2 := net.Pipe()
	t.Cleanup(func() { c1.Close(); c2.Close() })
	return NewCodec(c1), NewCodec(c2)
}

func TestAttachHandshake(t *testing.T) {
	clientCodec, serverCodec := pipePair(t)
	client := NewClient(clientCodec)
	h := &recordingHandler{}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go client.Serve(ctx, h)

	// emulate the editor: read the attach request and answer nil, nil.
	done := make(chan struct{})
	go func() {
		defer close(done)
		msg, err := serverCodec.ReadMessage()
		if err != nil {
			t.Errorf("server read: %v", err)
			return
		}
		if !msg.IsRequest() || msg.Method != "nvim_ui_attach" || msg.Msgid != 1 {
			t.Errorf("unexpected request: %+v", msg)
			return
		}
		serverCodec.WriteMessage(Message{Type: typeResponse, Msgid: msg.Msgid})
	}()

	result, err := client.Call(context.Background(), "nvim_ui_attach", []interface{}{80, 30, map[string]interface{}{"rgb": true}})
	<-done
	if err != nil {
		t.Fatalf("Call returned error: %v", err)
	}
	if result != nil {
		t.Fatalf("expected nil result, got %v", result)
	}
}

func TestUnknownMsgidIsProtocolError(t *testing.T) {
	clientCodec, serverCodec := pipePair(t)
	client := NewClient(clientCodec)
	h := &recordingHandler{}

	errCh := make(chan error, 1)
	go func() {
		errCh <- client.Serve(context.Background(), h)
	}()

	serverCodec.WriteMessage(Message{Type: typeResponse, Msgid: 999})

	select {
	case err := <-errCh:
		if _, ok := err.(*ProtocolError); !ok {
			t.Fatalf("expected *ProtocolError, got %T: %v", err, err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return")
	}
}

func TestClosedFailsOutstandingCalls(t *testing.T) {
	clientCodec, serverCodec := pipePair(t)
	client := NewClient(clientCodec)
	h := &recordingHandler{}
	go client.Serve(context.Background(), h)

	errCh := make(chan error, 1)
	go func() {
		_, err := client.Call(context.Background(), "nvim_command", []interface{}{"echo 1"})
		errCh <- err
	}()

	serverCodec.ReadMessage() // drain the request so Call's write succeeds

	// in a real session Serve ends when the connection closes and then calls
	// failAll; this test calls failAll directly to stand in for that
	// "no more responses will ever come" case.
	client.failAll(&ClosedError{})

	select {
	case err := <-errCh:
		if _, ok := err.(*ClosedError); !ok {
			t.Fatalf("expected *ClosedError, got %T: %v", err, err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Call did not return")
	}
}

func TestNotificationFanOut(t *testing.T) {
	clientCodec, serverCodec := pipePair(t)
	client := NewClient(clientCodec)
	h := &recordingHandler{}

	done := make(chan struct{})
	go func() {
		client.Serve(context.Background(), h)
		close(done)
	}()

	serverCodec.WriteMessage(Message{Type: typeNotification, Method: "redraw", Params: []interface{}{}})
	time.Sleep(50 * time.Millisecond)
	if len(h.notifications) != 1 || h.notifications[0] != "redraw" {
		t.Fatalf("expected one redraw notification, got %+v", h.notifications)
	}
}
