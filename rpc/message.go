// Package rpc implements the framed msgpack-RPC transport used to talk to
// an embedded Nvim-like editor process: message framing (Codec), and
// request/response correlation with notification and request fan-out
// (Client).
package rpc

// messageType is the first element of every msgpack-RPC message array.
type messageType int

const (
	typeRequest      messageType = 0
	typeResponse     messageType = 1
	typeNotification messageType = 2
)

// Message is the decoded form of one msgpack-RPC array. Exactly one of the
// type-specific fields is meaningful, selected by Type.
type Message struct {
	Type   messageType
	Msgid  uint32 // request, response
	Method string // request, notification
	Params []interface{}
	Error  interface{} // response; nil if the call succeeded
	Result interface{} // response
	HasErr bool        // distinguishes a nil Error from "no error"
}

// IsRequest reports whether the message is an inbound/outbound call that
// expects a response.
func (m Message) IsRequest() bool { return m.Type == typeRequest }

// IsResponse reports whether the message is a reply to a previous request.
func (m Message) IsResponse() bool { return m.Type == typeResponse }

// IsNotification reports whether the message carries no response
// expectation.
func (m Message) IsNotification() bool { return m.Type == typeNotification }

func newRequest(msgid uint32, method string, params []interface{}) Message {
	return Message{Type: typeRequest, Msgid: msgid, Method: method, Params: params}
}

func newNotification(method string, params []interface{}) Message {
	return Message{Type: typeNotification, Method: method, Params: params}
}

func newResponse(msgid uint32, errVal interface{}, result interface{}) Message {
	return Message{Type: typeResponse, Msgid: msgid, Error: errVal, Result: result, HasErr: errVal != nil}
}
