// Package coderws adapts a *websocket.Conn from github.com/coder/websocket
// to the wstransport.Conn shape. It is the alternative stack the rest of
// the retrieved example pack reaches for alongside gorilla/websocket; kept
// as a second adapter so callers can pick either library behind the same
// interface, per spec.md section 4.F's "a transport substitute is
// considered compatible if it emits the four events ... and accepts
// send(text)".
package coderws

import (
	"context"
	"errors"
	"sync"

	"github.com/coder/websocket"
)

// Adapter wraps a coder/websocket *websocket.Conn, which is context-scoped
// rather than event-driven; Run supplies the context for the lifetime of
// the connection.
type Adapter struct {
	conn   *websocket.Conn
	ctx    context.Context
	cancel context.CancelFunc

	handlerMu sync.Mutex
	onMessage func(string)
	onClose   func()
	onError   func(error)
}

// New wraps conn, deriving its read/write context from parent.
func New(conn *websocket.Conn, parent context.Context) *Adapter {
	ctx, cancel := context.WithCancel(parent)
	return &Adapter{conn: conn, ctx: ctx, cancel: cancel}
}

func (a *Adapter) Send(text string) error {
	return a.conn.Write(a.ctx, websocket.MessageText, []byte(text))
}

func (a *Adapter) Close() error {
	a.cancel()
	return a.conn.Close(websocket.StatusNormalClosure, "")
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

// Run pumps inbound frames to the registered handlers until the context
// is cancelled or a read fails, firing exactly one of OnClose (the peer
// closed the connection, or this side's own Close cancelled the context)
// or OnError (anything else went wrong) per the distinction documented on
// wstransport.Conn. Start it in its own goroutine after registering
// handlers.
func (a *Adapter) Run() {
	for {
		_, data, err := a.conn.Read(a.ctx)
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
	if websocket.CloseStatus(err) != -1 {
		return true
	}
	return errors.Is(err, context.Canceled)
}
