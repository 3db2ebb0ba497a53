package nvimapi

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/anaseto/nvim-gruid/rpc"
)

type discardHandler struct{}

func (discardHandler) HandleNotification(method string, params []interface{}) {}
func (discardHandler) HandleRequest(method string, params []interface{}, reply func(result, errVal interface{})) {
	reply(nil, nil)
}

func pipePair(t *testing.T) (*rpc.Codec, *rpc.Codec) {
	t.Helper()
	c1, c2 := net.Pipe()
	t.Cleanup(func() { c1.Close(); c2.Close() })
	return rpc.NewCodec(c1), rpc.NewCodec(c2)
}

func TestUIAttachSendsOptionsStructure(t *testing.T) {
	clientCodec, serverCodec := pipePair(t)
	client := rpc.NewClient(clientCodec)
	go client.Serve(context.Background(), discardHandler{})

	b := New(client)

	done := make(chan struct{})
	var gotMethod string
	var gotParams []interface{}
	go func() {
		defer close(done)
		msg, err := serverCodec.ReadMessage()
		if err != nil {
			t.Errorf("server read: %v", err)
			return
		}
		gotMethod = msg.Method
		gotParams = msg.Params
		serverCodec.WriteMessage(rpc.Message{Type: 1, Msgid: msg.Msgid}) // 1 = response
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	err := b.UIAttach(ctx, 80, 30, UIAttachOptions{RGB: true, ExtLineGrid: true})
	<-done
	if err != nil {
		t.Fatalf("UIAttach returned error: %v", err)
	}
	if gotMethod != "nvim_ui_attach" {
		t.Fatalf("method = %q, want nvim_ui_attach", gotMethod)
	}
	if len(gotParams) != 3 {
		t.Fatalf("got %d params, want 3", len(gotParams))
	}
	opts, ok := gotParams[2].(map[string]interface{})
	if !ok {
		t.Fatalf("params[2] is %T, want map", gotParams[2])
	}
	if opts["rgb"] != true || opts["ext_linegrid"] != true {
		t.Errorf("options = %+v, want rgb=true ext_linegrid=true", opts)
	}
	if _, ok := opts["ext_multigrid"]; ok {
		t.Errorf("unset feature flags should be omitted, got %+v", opts)
	}
}
