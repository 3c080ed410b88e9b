// Package gorillaws adapts a *websocket.Conn from github.com/gorilla/websocket
// to the wstransport.Conn shape, grounded on the teacher's
// apiserver/websocket.go websocketUpgrader/websocketServer pattern.
package gorillaws

import (
	"errors"
	"io"
	"net"
	"sync"

	"github.com/gorilla/websocket"
)

// Adapter wraps a gorilla *websocket.Conn. Writes are serialized with a
// mutex, since gorilla/websocket requires the caller to ensure at most one
// concurrent writer per connection.
type Adapter struct {
	conn *websocket.Conn

	writeMu sync.Mutex

	handlerMu sync.Mutex
	onMessage func(string)
	onClose   func()
	onError   func(error)
}

// New wraps conn. Call Run in its own goroutine to start delivering
// events; Run blocks until the connection closes or errors.
func New(conn *websocket.Conn) *Adapter {
	return &Adapter{conn: conn}
}

func (a *Adapter) Send(text string) error {
	a.writeMu.Lock()
	defer a.writeMu.Unlock()
	return a.conn.WriteMessage(websocket.TextMessage, []byte(text))
}

func (a *Adapter) Close() error {
	return a.conn.Close()
}

func (a *Adapter) OnMessage(fn func(string)) {
	a.handlerMu.Lock()
	a.onMessage = fn
	a.handlerMu.Unlock()
}

func (a *Adapter) OnClose(fn func()) {
	a.handlerMu.Lock()
	a.onClose = fn
	a.handlerMu.Unlock()
}

func (a *Adapter) OnError(fn func(error)) {
	a.handlerMu.Lock()
	a.onError = fn
	a.handlerMu.Unlock()
}

// Run pumps inbound frames to the registered handlers until the
// connection ends, firing exactly one of OnClose (the connection was
// closed: by the peer, cleanly or by dropping it, or by this side's own
// Close) or OnError (anything else went
// wrong, such as a truncated frame) per the distinction documented on
// wstransport.Conn. It must be started in its own goroutine after
// registering handlers.
func (a *Adapter) Run() {
	defer a.conn.Close()
	for {
		_, data, err := a.conn.ReadMessage()
		if err != nil {
			a.fireTerminal(err)
			return
		}
		a.handlerMu.Lock()
		onMessage := a.onMessage
		a.handlerMu.Unlock()
		if onMessage != nil {
			onMessage(string(data))
		}
	}
}

// fireTerminal fires OnClose when err indicates the peer went away
// (a close frame, EOF, or a read against an already-closed connection)
// and OnError for anything else.
func (a *Adapter) fireTerminal(err error) {
	a.handlerMu.Lock()
	onClose := a.onClose
	onError := a.onError
	a.handlerMu.Unlock()

	if isPeerClose(err) {
		if onClose != nil {
			onClose()
		}
		return
	}
	if onError != nil {
		onError(err)
	}
}

func isPeerClose(err error) bool {
	if _, ok := err.(*websocket.CloseError); ok {
		return true
	}
	return errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed)
}
