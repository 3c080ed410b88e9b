package authn_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	qt "github.com/frankban/quicktest"
	"golang.org/x/oauth2"

	"github.com/doxysoft/jsonrpc-bidirectional/endpoint"
	"github.com/doxysoft/jsonrpc-bidirectional/plugin"
	"github.com/doxysoft/jsonrpc-bidirectional/plugin/authn"
	"github.com/doxysoft/jsonrpc-bidirectional/rpcclient"
	"github.com/doxysoft/jsonrpc-bidirectional/rpcserver"
	"github.com/doxysoft/jsonrpc-bidirectional/transport/httptransport"
)

type echoParams struct {
	Text string `json:"text"`
}

func echo(ir *plugin.IncomingRequest, p echoParams) (string, error) {
	return p.Text, nil
}

func TestOAuth2ClientPluginAttachesBearerHeader(t *testing.T) {
	c := qt.New(t)

	var gotHeader string
	reg := endpoint.NewRegistry()
	ep := endpoint.New("echo", "/rpc")
	c.Assert(ep.Register("echo", echo), qt.IsNil)
	c.Assert(reg.RegisterEndpoint(ep), qt.IsNil)
	server := rpcserver.New(reg)
	server.AddPlugin(plugin.ServerPlugin{
		Name: "capture-header",
		Authenticate: func(ctx context.Context, ir *plugin.IncomingRequest) error {
			if raw, ok := rpcserver.TransportContext(ir); ok {
				if req, ok := raw.(*http.Request); ok {
					gotHeader = req.Header.Get("Authorization")
				}
			}
			ir.CallerIdentity = authn.Identity{Subject: "anonymous"}
			return nil
		},
	})

	srv := httptest.NewServer(httptransport.Handler(server, "/rpc"))
	defer srv.Close()

	source := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "static-access-token", TokenType: "Bearer"})

	client := rpcclient.New()
	client.AddPlugin(authn.OAuth2ClientPlugin(context.Background(), srv.URL, source))

	var reply string
	err := client.Call(context.Background(), "echo", echoParams{Text: "hi"}, &reply)
	c.Assert(err, qt.IsNil)
	c.Assert(reply, qt.Equals, "hi")
	c.Assert(gotHeader, qt.Equals, "Bearer static-access-token")
}
