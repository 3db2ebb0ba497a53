package rpc

import (
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"
)

// Codec reads and writes length-delimited msgpack-RPC messages on a byte
// stream. A Codec is single-producer on each direction: ReadMessage must be
// called from a single goroutine, as must WriteMessage (the Client
// serializes writes itself, see client.go).
type Codec struct {
	dec *msgpack.Decoder
	enc *msgpack.Encoder
}

// NewCodec wraps rw for msgpack-RPC framing.
func NewCodec(rw io.ReadWriter) *Codec {
	return &Codec{
		dec: msgpack.NewDecoder(rw),
		enc: msgpack.NewEncoder(rw),
	}
}

// ReadMessage decodes the next msgpack-RPC array from the stream. It
// returns io.EOF when the stream ends cleanly between messages, and a
// *ProtocolError for any malformed framing.
func (c *Codec) ReadMessage() (Message, error) {
	n, err := c.dec.DecodeArrayLen()
	if err != nil {
		if err == io.EOF {
			return Message{}, io.EOF
		}
		return Message{}, newProtocolError("reading message array header: %v", err)
	}

	tag, err := c.dec.DecodeInt()
	if err != nil {
		return Message{}, newProtocolError("reading message type tag: %v", err)
	}

	switch messageType(tag) {
	case typeRequest:
		if n != 4 {
			return Message{}, newProtocolError("request array has %d elements, want 4", n)
		}
		msgid, err := c.decodeMsgid()
		if err != nil {
			return Message{}, err
		}
		method, err := c.dec.DecodeString()
		if err != nil {
			return Message{}, newProtocolError("reading request method: %v", err)
		}
		params, err := c.decodeParams()
		if err != nil {
			return Message{}, err
		}
		return newRequest(msgid, method, params), nil
	case typeResponse:
		if n != 4 {
			return Message{}, newProtocolError("response array has %d elements, want 4", n)
		}
		msgid, err := c.decodeMsgid()
		if err != nil {
			return Message{}, err
		}
		errVal, err := c.dec.DecodeInterface()
		if err != nil {
			return Message{}, newProtocolError("reading response error: %v", err)
		}
		result, err := c.dec.DecodeInterface()
		if err != nil {
			return Message{}, newProtocolError("reading response result: %v", err)
		}
		if errVal != nil && result != nil {
			return Message{}, newProtocolError("response has both error and result set")
		}
		return newResponse(msgid, errVal, result), nil
	case typeNotification:
		if n != 3 {
			return Message{}, newProtocolError("notification array has %d elements, want 3", n)
		}
		method, err := c.dec.DecodeString()
		if err != nil {
			return Message{}, newProtocolError("reading notification method: %v", err)
		}
		params, err := c.decodeParams()
		if err != nil {
			return Message{}, err
		}
		return newNotification(method, params), nil
	default:
		return Message{}, newProtocolError("unknown message type tag %d", tag)
	}
}

func (c *Codec) decodeMsgid() (uint32, error) {
	v, err := c.dec.DecodeUint32()
	if err != nil {
		return 0, newProtocolError("reading msgid: %v", err)
	}
	return v, nil
}

func (c *Codec) decodeParams() ([]interface{}, error) {
	n, err := c.dec.DecodeArrayLen()
	if err != nil {
		return nil, newProtocolError("reading params array header: %v", err)
	}
	if n <= 0 {
		return nil, nil
	}
	params := make([]interface{}, n)
	for i := range params {
		v, err := c.dec.DecodeInterface()
		if err != nil {
			return nil, newProtocolError("reading param %d: %v", i, err)
		}
		params[i] = v
	}
	return params, nil
}

// WriteMessage encodes m as a msgpack-RPC array and writes it to the
// stream. The caller is responsible for ensuring writes are not
// interleaved from multiple goroutines.
func (c *Codec) WriteMessage(m Message) error {
	switch m.Type {
	case typeRequest:
		if err := c.enc.EncodeArrayLen(4); err != nil {
			return err
		}
		if err := c.enc.EncodeInt(int64(typeRequest)); err != nil {
			return err
		}
		if err := c.enc.EncodeUint32(m.Msgid); err != nil {
			return err
		}
		if err := c.enc.EncodeString(m.Method); err != nil {
			return err
		}
		return c.encodeParams(m.Params)
	case typeResponse:
		if err := c.enc.EncodeArrayLen(4); err != nil {
			return err
		}
		if err := c.enc.EncodeInt(int64(typeResponse)); err != nil {
			return err
		}
		if err := c.enc.EncodeUint32(m.Msgid); err != nil {
			return err
		}
		if err := c.enc.Encode(m.Error); err != nil {
			return err
		}
		return c.enc.Encode(m.Result)
	case typeNotification:
		if err := c.enc.EncodeArrayLen(3); err != nil {
			return err
		}
		if err := c.enc.EncodeInt(int64(typeNotification)); err != nil {
			return err
		}
		if err := c.enc.EncodeString(m.Method); err != nil {
			return err
		}
		return c.encodeParams(m.Params)
	default:
		return fmt.Errorf("rpc: cannot encode message with unknown type %d", m.Type)
	}
}

func (c *Codec) encodeParams(params []interface{}) error {
	if err := c.enc.EncodeArrayLen(len(params)); err != nil {
		return err
	}
	for _, p := range params {
		if err := c.enc.Encode(p); err != nil {
			return err
		}
	}
	return nil
}
