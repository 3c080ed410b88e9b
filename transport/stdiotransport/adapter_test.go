package stdiotransport_test

import (
	"errors"
	"io"
	"sync"
	"testing"

	qt "github.com/frankban/quicktest"
	"go.uber.org/mock/gomock"

	"github.com/doxysoft/jsonrpc-bidirectional/rpc/jsoncodec/mocks"
	"github.com/doxysoft/jsonrpc-bidirectional/transport/stdiotransport"
)

func TestAdapterSendWritesThroughCodec(t *testing.T) {
	c := qt.New(t)
	ctrl := gomock.NewController(t)
	codec := mocks.NewMockMessageCodec(ctrl)
	codec.EXPECT().WriteMessage([]byte(`{"jsonrpc":"2.0","method":"ping"}`)).Return(nil)

	a := stdiotransport.New(codec)
	err := a.Send(`{"jsonrpc":"2.0","method":"ping"}`)
	c.Assert(err, qt.IsNil)
}

func TestAdapterRunDeliversMessagesThenClose(t *testing.T) {
	c := qt.New(t)
	ctrl := gomock.NewController(t)
	codec := mocks.NewMockMessageCodec(ctrl)

	codec.EXPECT().ReadMessage().Return([]byte(`{"jsonrpc":"2.0","method":"add"}`), nil)
	codec.EXPECT().ReadMessage().Return(nil, io.EOF)
	codec.EXPECT().Close().Return(nil)

	a := stdiotransport.New(codec)

	var mu sync.Mutex
	var received []string
	closed := make(chan struct{})
	a.OnMessage(func(text string) {
		mu.Lock()
		received = append(received, text)
		mu.Unlock()
	})
	a.OnClose(func() { close(closed) })

	a.Run()
	<-closed

	mu.Lock()
	defer mu.Unlock()
	c.Assert(received, qt.DeepEquals, []string{`{"jsonrpc":"2.0","method":"add"}`})
}

func TestAdapterRunFiresOnErrorBeforeClose(t *testing.T) {
	c := qt.New(t)
	ctrl := gomock.NewController(t)
	codec := mocks.NewMockMessageCodec(ctrl)

	readErr := errors.New("broken pipe")
	codec.EXPECT().ReadMessage().Return(nil, readErr)
	codec.EXPECT().Close().Return(nil)

	a := stdiotransport.New(codec)

	var gotErr error
	a.OnError(func(err error) { gotErr = err })
	a.Run()

	c.Assert(gotErr, qt.Equals, readErr)
}
