// Package wstransport implements the WebSocket half of spec.md section
// 4.F. The Conn interface is the "WebSocket-like object exposing open,
// close, error, message events and a send(string) method" the spec
// requires of any transport substitute; gorillaws and coderws provide
// thin adapters from two real socket libraries to that shape, grounded on
// the teacher's apiserver/websocket.go gorilla/websocket usage and on the
// rest of the retrieved pack's adoption of github.com/coder/websocket as
// an alternative stack.
package wstransport

//go:generate go run go.uber.org/mock/mockgen -typed -package mocks -destination mocks/conn_mock.go github.com/doxysoft/jsonrpc-bidirectional/transport/wstransport Conn

// Conn is the minimal duplex socket shape a transport needs. open is
// implicit: a Conn is only ever handed to this package already connected.
type Conn interface {
	// Send writes a single text frame.
	Send(text string) error
	// Close closes the connection from this side.
	Close() error

	// OnMessage registers the handler invoked for each inbound text frame.
	OnMessage(func(text string))
	// OnClose registers the handler invoked once the connection's read
	// loop ends because the connection was closed, by the peer or by this
	// side's own Close.
	OnClose(func())
	// OnError registers the handler invoked when the connection fails.
	OnError(func(err error))
}
