package httptransport_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/doxysoft/jsonrpc-bidirectional/endpoint"
	"github.com/doxysoft/jsonrpc-bidirectional/plugin"
	"github.com/doxysoft/jsonrpc-bidirectional/rpc"
	"github.com/doxysoft/jsonrpc-bidirectional/rpcclient"
	"github.com/doxysoft/jsonrpc-bidirectional/rpcserver"
	"github.com/doxysoft/jsonrpc-bidirectional/transport/httptransport"
)

type sumParams struct {
	A int `json:"a"`
	B int `json:"b"`
}

func sum(ir *plugin.IncomingRequest, p sumParams) (int, error) {
	return p.A + p.B, nil
}

func newTestAPIServer(t *testing.T) *httptest.Server {
	t.Helper()
	reg := endpoint.NewRegistry()
	ep := endpoint.New("calculator", "/api")
	if err := ep.Register("sum", sum); err != nil {
		t.Fatalf("register sum: %v", err)
	}
	if err := reg.RegisterEndpoint(ep); err != nil {
		t.Fatalf("register endpoint: %v", err)
	}
	srv := rpcserver.New(reg)
	srv.AddPlugin(plugin.ServerPlugin{
		Name: "allow-all",
		Authenticate: func(ctx context.Context, ir *plugin.IncomingRequest) error {
			ir.CallerIdentity = "anonymous"
			return nil
		},
	})

	mux := http.NewServeMux()
	mux.Handle("/api", httptransport.Handler(srv, "/api"))
	return httptest.NewServer(mux)
}

func TestHTTPRoundTrip(t *testing.T) {
	c := qt.New(t)
	ts := newTestAPIServer(t)
	defer ts.Close()

	client := rpcclient.New()
	client.AddPlugin(httptransport.ClientPlugin(ts.URL+"/api", ts.Client()))

	var result int
	err := client.Call(context.Background(), "sum", sumParams{A: 4, B: 5}, &result)
	c.Assert(err, qt.IsNil)
	c.Assert(result, qt.Equals, 9)
}

func TestHTTPRoundTripMethodNotFound(t *testing.T) {
	c := qt.New(t)
	ts := newTestAPIServer(t)
	defer ts.Close()

	client := rpcclient.New()
	client.AddPlugin(httptransport.ClientPlugin(ts.URL+"/api", ts.Client()))

	err := client.Call(context.Background(), "missing", nil, nil)
	c.Assert(err, qt.Not(qt.IsNil))
	var rpcErr *rpc.Error
	c.Assert(err, qt.ErrorAs, &rpcErr)
	c.Assert(rpcErr.Code, qt.Equals, rpc.CodeMethodNotFound)
}

func TestHTTPNotificationGetsNoContent(t *testing.T) {
	c := qt.New(t)
	ts := newTestAPIServer(t)
	defer ts.Close()

	client := rpcclient.New()
	client.AddPlugin(httptransport.ClientPlugin(ts.URL+"/api", ts.Client()))

	err := client.Notify(context.Background(), "sum", sumParams{A: 1, B: 1})
	c.Assert(err, qt.IsNil)
}
