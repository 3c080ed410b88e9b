package wstransport

import (
	"context"

	"github.com/doxysoft/jsonrpc-bidirectional/plugin"
	"github.com/doxysoft/jsonrpc-bidirectional/rpc"
)

// responseReceiver is the subset of *rpcclient.Client this package needs;
// expressed as an interface (rather than importing rpcclient directly) to
// keep wstransport usable from the router, which maintains its own
// per-connection bookkeeping around the same *rpcclient.Client type.
type responseReceiver interface {
	OnResponse(raw []byte)
	Close()
}

// Attach wires conn's message/close/error events to client and returns
// the client plugin whose MakeRequest hook sends over conn, for
// non-bidirectional (plain caller, no reverse calls) use of a WebSocket
// connection. Per spec.md section 4.F, makeRequest only sends; the
// response is dispatched to the client's onResponse asynchronously as
// text frames arrive. Per section 4.E step 6, a closed or errored
// connection fails every pending call with connection-closed.
func Attach(conn Conn, client responseReceiver) plugin.ClientPlugin {
	conn.OnMessage(func(text string) {
		client.OnResponse([]byte(text))
	})
	conn.OnClose(client.Close)
	conn.OnError(func(error) { client.Close() })

	return SendOnlyPlugin(conn)
}

// SendOnlyPlugin builds a client transport plugin whose MakeRequest only
// sends over conn, without touching conn's message/close/error handlers.
// The router (spec.md section 4.G) uses this directly: it must keep
// ownership of those handlers itself, to classify each inbound frame as
// either a request from the peer or a response to one of our own calls
// before deciding where it goes.
func SendOnlyPlugin(conn Conn) plugin.ClientPlugin {
	return plugin.ClientPlugin{
		Name: "ws-transport",
		MakeRequest: func(ctx context.Context, out *plugin.OutgoingRequest) error {
			if err := conn.Send(string(out.RequestBody)); err != nil {
				return rpc.NewTransportError(err)
			}
			return nil
		},
	}
}
