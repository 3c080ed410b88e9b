// Package stdiotransport adapts a rpc/jsoncodec.MessageCodec to the
// wstransport.Conn shape, so a byte-stream connection (a subprocess's
// stdin/stdout, a length-prefixed socket) can be handed to
// router.Router.AddConnection the same way a WebSocket connection is.
// It is grounded on transport/wstransport/gorillaws.Adapter, generalized
// from a *websocket.Conn's frame boundaries to a MessageCodec's
// ReadMessage/WriteMessage framing.
package stdiotransport

import (
	"errors"
	"io"
	"sync"

	"github.com/doxysoft/jsonrpc-bidirectional/rpc/jsoncodec"
)

// Adapter wraps a jsoncodec.MessageCodec. Writes are serialized with a
// mutex, matching gorillaws.Adapter's single-writer contract even though
// MessageCodec.WriteMessage is itself already safe for concurrent callers.
type Adapter struct {
	codec jsoncodec.MessageCodec

	writeMu sync.Mutex

	handlerMu sync.Mutex
	onMessage func(string)
	onClose   func()
	onError   func(error)
}

// New wraps codec. Call Run in its own goroutine to start delivering
// events; Run blocks until the codec's read loop ends.
func New(codec jsoncodec.MessageCodec) *Adapter {
	return &Adapter{codec: codec}
}

func (a *Adapter) Send(text string) error {
	a.writeMu.Lock()
	defer a.writeMu.Unlock()
	return a.codec.WriteMessage([]byte(text))
}

func (a *Adapter) Close() error {
	return a.codec.Close()
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

// Run pumps inbound frames to the registered handlers until ReadMessage
// fails, firing exactly one of OnClose (the stream ended cleanly, at
// io.EOF) or OnError (any other read failure) per the distinction
// documented on wstransport.Conn. It must be started in its own goroutine
// after registering handlers.
func (a *Adapter) Run() {
	defer a.codec.Close()
	for {
		data, err := a.codec.ReadMessage()
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

	if errors.Is(err, io.EOF) {
		if onClose != nil {
			onClose()
		}
		return
	}
	if onError != nil {
		onError(err)
	}
}
