package rpc

import (
	"context"
	"errors"
	"io"
	"sync"
)

// Handler receives inbound notifications and requests delivered by
// Client.Serve. reply must eventually be called exactly once for every
// request delivered to HandleRequest, with either a result or an error value (not
// both); failing to do so leaves the editor waiting indefinitely, which
// spec.md §4.2 treats as a protocol error on the editor's side, not ours.
type Handler interface {
	HandleNotification(method string, params []interface{})
	HandleRequest(method string, params []interface{}, reply func(result, errVal interface{}))
}

// pending is the per-call bookkeeping the owning goroutine (Serve's caller
// via Call) keeps in Client.calls. Only Serve's read loop and Call ever
// touch it, and both are serialized through Client.mu.
type pending struct {
	resultCh chan callResult
}

type callResult struct {
	result interface{}
	err    error
}

// Client correlates outbound requests with their responses and fans inbound
// notifications/requests out to a Handler. A Client is safe for concurrent
// use by multiple callers of Call; Serve must be run from a single
// goroutine and owns the read side exclusively, per spec.md §5.
type Client struct {
	codec *Codec

	mu       sync.Mutex
	writeMu  sync.Mutex
	nextID   uint32
	calls    map[uint32]pending
	closeErr error // set once the connection is known dead; sticky
}

// NewClient wraps codec for request/response correlation.
func NewClient(codec *Codec) *Client {
	return &Client{
		codec: codec,
		calls: make(map[uint32]pending),
	}
}

// Call issues a request and blocks until a response arrives, the context is
// canceled, or the connection fails. A canceled context does not cancel the
// editor-side call: the msgid slot stays reserved until the real response
// arrives, at which point it is discarded (spec.md §4.2's cancellation
// contract).
func (c *Client) Call(ctx context.Context, method string, params []interface{}) (interface{}, error) {
	c.mu.Lock()
	if c.closeErr != nil {
		err := c.closeErr
		c.mu.Unlock()
		return nil, err
	}
	if c.nextID == 1<<32-1 {
		c.mu.Unlock()
		return nil, newProtocolError("msgid counter wrapped")
	}
	c.nextID++
	msgid := c.nextID
	resCh := make(chan callResult, 1)
	c.calls[msgid] = pending{resultCh: resCh}
	c.mu.Unlock()

	req := newRequest(msgid, method, params)
	if err := c.write(req); err != nil {
		c.failCall(msgid, err)
		return nil, err
	}

	select {
	case res := <-resCh:
		return res.result, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Notify sends a fire-and-forget notification to the editor.
func (c *Client) Notify(method string, params []interface{}) error {
	return c.write(newNotification(method, params))
}

// Reply sends the response to an inbound request previously delivered to
// Handler.HandleRequest.
func (c *Client) Reply(msgid uint32, result, errVal interface{}) error {
	return c.write(newResponse(msgid, errVal, result))
}

func (c *Client) write(m Message) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := c.codec.WriteMessage(m); err != nil {
		werr := &WriteError{Err: err}
		c.failAll(werr)
		return werr
	}
	return nil
}

// Serve runs the inbound read loop until the connection closes or ctx is
// done. It delivers notifications and requests to h, and resolves pending
// Call futures as responses arrive. Serve returns the error that ended the
// loop: io.EOF surfaces as a *ClosedError.
func (c *Client) Serve(ctx context.Context, h Handler) error {
	for {
		select {
		case <-ctx.Done():
			c.failAll(&ClosedError{})
			return ctx.Err()
		default:
		}

		msg, err := c.codec.ReadMessage()
		if err != nil {
			var perr *ProtocolError
			if errors.As(err, &perr) {
				c.failAll(perr)
				return perr
			}
			closed := &ClosedError{}
			if !errors.Is(err, io.EOF) {
				closed.Err = err
			}
			c.failAll(closed)
			return closed
		}

		switch {
		case msg.IsResponse():
			if err := c.resolve(msg); err != nil {
				c.failAll(err)
				return err
			}
		case msg.IsNotification():
			h.HandleNotification(msg.Method, msg.Params)
		case msg.IsRequest():
			msgid := msg.Msgid
			h.HandleRequest(msg.Method, msg.Params, func(result, errVal interface{}) {
				c.Reply(msgid, result, errVal)
			})
		}
	}
}

func (c *Client) resolve(msg Message) error {
	c.mu.Lock()
	p, ok := c.calls[msg.Msgid]
	if ok {
		delete(c.calls, msg.Msgid)
	}
	c.mu.Unlock()
	if !ok {
		return newProtocolError("response for unknown msgid %d", msg.Msgid)
	}
	var err error
	if msg.HasErr {
		err = &RemoteError{Value: msg.Error}
	}
	p.resultCh <- callResult{result: msg.Result, err: err}
	return nil
}

func (c *Client) failCall(msgid uint32, err error) {
	c.mu.Lock()
	p, ok := c.calls[msgid]
	if ok {
		delete(c.calls, msgid)
	}
	c.mu.Unlock()
	if ok {
		p.resultCh <- callResult{err: err}
	}
}

func (c *Client) failAll(err error) {
	c.mu.Lock()
	if c.closeErr == nil {
		c.closeErr = err
	}
	calls := c.calls
	c.calls = make(map[uint32]pending)
	c.mu.Unlock()
	for _, p := range calls {
		p.resultCh <- callResult{err: err}
	}
}
