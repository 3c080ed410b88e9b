package main

import (
	"context"
	"time"

	"github.com/doxysoft/jsonrpc-bidirectional/endpoint"
	"github.com/doxysoft/jsonrpc-bidirectional/plugin"
	"github.com/doxysoft/jsonrpc-bidirectional/rpcclient"
)

type addParams struct {
	A int `json:"a"`
	B int `json:"b"`
}

func add(ir *plugin.IncomingRequest, p addParams) (int, error) {
	return p.A + p.B, nil
}

type pingParams struct {
	Message string `json:"message"`
	Loud    bool   `json:"loud"`
}

// ping demonstrates spec.md section 8 scenario 3: a handler that, before
// answering its own caller, opens a reverse call back over the same
// connection. It only fires the reverse call when a duplex connection
// (the router) actually attached one; a plain HTTP caller has none.
func ping(ir *plugin.IncomingRequest, ctx context.Context, p pingParams) (string, error) {
	if ir.ReverseCallsClient != nil {
		var reply string
		callCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := ir.ReverseCallsClient.Call(callCtx, "methodOnTheOtherSide", []any{p.Message, p.Loud, false}, &reply); err != nil {
			return "", err
		}
	}
	return "pong: " + p.Message, nil
}

type methodOnTheOtherSideParams struct {
	Message string
	Loud    bool
	Extra   bool
}

func methodOnTheOtherSide(ir *plugin.IncomingRequest, p methodOnTheOtherSideParams) (string, error) {
	return "acknowledged: " + p.Message, nil
}

// newDemoEndpoint builds the endpoint mounted for both transports: the
// same method set answers plain HTTP calls and duplex WebSocket calls, the
// only difference being whether ReverseCallsClient is populated.
// reverseCallTimeout bounds every reverse client the factory builds, per
// spec.md section 6's "timeoutMs" configuration option.
func newDemoEndpoint(reverseCallTimeout time.Duration) (*endpoint.Endpoint, error) {
	ep := endpoint.New("demo", "/rpc")
	ep.Version = 1
	ep.ReverseClientFactory = func(transport plugin.ClientPlugin) plugin.ReverseClient {
		client := rpcclient.New()
		client.Timeout = reverseCallTimeout
		client.AddPlugin(transport)
		return client
	}
	if err := ep.Register("add", add); err != nil {
		return nil, err
	}
	if err := ep.Register("ping", ping); err != nil {
		return nil, err
	}
	if err := ep.Register("methodOnTheOtherSide", methodOnTheOtherSide); err != nil {
		return nil, err
	}
	return ep, nil
}
