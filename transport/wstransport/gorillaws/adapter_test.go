package gorillaws_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
	"github.com/gorilla/websocket"

	"github.com/doxysoft/jsonrpc-bidirectional/transport/wstransport/gorillaws"
)

var upgrader = websocket.Upgrader{}

func TestAdapterRoundTripsOverARealWebSocket(t *testing.T) {
	c := qt.New(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		c.Assert(err, qt.IsNil)
		adapter := gorillaws.New(conn)
		adapter.OnMessage(func(text string) {
			_ = adapter.Send("echo:" + text)
		})
		adapter.Run()
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	clientConn, _, err := websocket.DefaultDialer.Dial(url, nil)
	c.Assert(err, qt.IsNil)
	defer clientConn.Close()

	c.Assert(clientConn.WriteMessage(websocket.TextMessage, []byte("hello")), qt.IsNil)

	clientConn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, data, err := clientConn.ReadMessage()
	c.Assert(err, qt.IsNil)
	c.Assert(string(data), qt.Equals, "echo:hello")
}

func TestAdapterFiresOnCloseWhenPeerDisconnects(t *testing.T) {
	c := qt.New(t)

	closed := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		c.Assert(err, qt.IsNil)
		adapter := gorillaws.New(conn)
		adapter.OnClose(func() { close(closed) })
		adapter.Run()
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	clientConn, _, err := websocket.DefaultDialer.Dial(url, nil)
	c.Assert(err, qt.IsNil)
	c.Assert(clientConn.Close(), qt.IsNil)

	select {
	case <-closed:
	case <-time.After(5 * time.Second):
		c.Fatal("OnClose was not called after peer disconnect")
	}
}
