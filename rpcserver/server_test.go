package rpcserver_test

import (
	"context"
	"encoding/json"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/doxysoft/jsonrpc-bidirectional/endpoint"
	"github.com/doxysoft/jsonrpc-bidirectional/plugin"
	"github.com/doxysoft/jsonrpc-bidirectional/rpc"
	"github.com/doxysoft/jsonrpc-bidirectional/rpcserver"
)

type addParams struct {
	A int `json:"a"`
	B int `json:"b"`
}

func add(ir *plugin.IncomingRequest, p addParams) (int, error) {
	return p.A + p.B, nil
}

func boom(ir *plugin.IncomingRequest) (string, error) {
	panic("not reached in these tests")
}

func throws(ir *plugin.IncomingRequest) (string, error) {
	return "", rpc.NewApplicationError(7, "handler exploded")
}

func allowAllPlugin() plugin.ServerPlugin {
	return plugin.ServerPlugin{
		Name: "allow-all",
		Authenticate: func(ctx context.Context, ir *plugin.IncomingRequest) error {
			ir.CallerIdentity = "anonymous"
			return nil
		},
	}
}

func newTestServer(t *testing.T) (*rpcserver.Server, *endpoint.Endpoint) {
	t.Helper()
	reg := endpoint.NewRegistry()
	ep := endpoint.New("calculator", "/api")
	if err := ep.Register("add", add); err != nil {
		t.Fatalf("register add: %v", err)
	}
	if err := ep.Register("throws", throws); err != nil {
		t.Fatalf("register throws: %v", err)
	}
	if err := reg.RegisterEndpoint(ep); err != nil {
		t.Fatalf("register endpoint: %v", err)
	}
	s := rpcserver.New(reg)
	s.AddPlugin(allowAllPlugin())
	return s, ep
}

// TestProcessRequestHappyPath covers spec.md section 8 scenario 1: a
// well-formed request against a registered method returns a matching
// success envelope.
func TestProcessRequestHappyPath(t *testing.T) {
	c := qt.New(t)
	s, _ := newTestServer(t)

	raw := []byte(`{"jsonrpc":"2.0","method":"add","params":{"a":2,"b":3},"id":1}`)
	out, err := s.ProcessRequest(context.Background(), raw, "/api", nil)
	c.Assert(err, qt.IsNil)

	resp, err := rpc.DecodeResponse(out)
	c.Assert(err, qt.IsNil)
	c.Assert(resp.Error, qt.Equals, (*rpc.Error)(nil))
	c.Assert(string(resp.Result), qt.Equals, "5")
	c.Assert(rpc.NormalizeID(resp.ID), qt.Equals, "1")
}

// TestProcessRequestHandlerThrow covers scenario 2: a handler error becomes
// an error envelope, not a transport failure.
func TestProcessRequestHandlerThrow(t *testing.T) {
	c := qt.New(t)
	s, _ := newTestServer(t)

	raw := []byte(`{"jsonrpc":"2.0","method":"throws","id":9}`)
	out, err := s.ProcessRequest(context.Background(), raw, "/api", nil)
	c.Assert(err, qt.IsNil)

	resp, err := rpc.DecodeResponse(out)
	c.Assert(err, qt.IsNil)
	c.Assert(resp.Result, qt.IsNil)
	c.Assert(resp.Error, qt.Not(qt.IsNil))
	c.Assert(resp.Error.Code, qt.Equals, 7)
	c.Assert(rpc.NormalizeID(resp.ID), qt.Equals, "9")
}

// TestProcessRequestMalformedFrame covers scenario 4: invalid JSON yields a
// parse-error envelope with a null id, never a Go error return.
func TestProcessRequestMalformedFrame(t *testing.T) {
	c := qt.New(t)
	s, _ := newTestServer(t)

	out, err := s.ProcessRequest(context.Background(), []byte(`{not json`), "/api", nil)
	c.Assert(err, qt.IsNil)

	resp, decErr := rpc.DecodeResponse(out)
	c.Assert(decErr, qt.IsNil)
	c.Assert(resp.Error, qt.Not(qt.IsNil))
	c.Assert(resp.Error.Code, qt.Equals, rpc.CodeParseError)
	c.Assert(rpc.NormalizeID(resp.ID), qt.Equals, "null")
}

// TestProcessRequestInvalidRequestEchoesID covers the part of scenario 4
// where the JSON is well-formed but the envelope shape is invalid: the
// caller's id, if any, is still echoed back.
func TestProcessRequestInvalidRequestEchoesID(t *testing.T) {
	c := qt.New(t)
	s, _ := newTestServer(t)

	out, err := s.ProcessRequest(context.Background(), []byte(`{"jsonrpc":"1.0","method":"add","id":42}`), "/api", nil)
	c.Assert(err, qt.IsNil)

	resp, decErr := rpc.DecodeResponse(out)
	c.Assert(decErr, qt.IsNil)
	c.Assert(resp.Error, qt.Not(qt.IsNil))
	c.Assert(resp.Error.Code, qt.Equals, rpc.CodeInvalidRequest)
	c.Assert(rpc.NormalizeID(resp.ID), qt.Equals, "42")
}

// TestProcessRequestNotificationSuppressesResponse covers the notification
// half of section 4.D step 6: no id means no response blob, even though the
// handler still ran.
func TestProcessRequestNotificationSuppressesResponse(t *testing.T) {
	c := qt.New(t)
	s, _ := newTestServer(t)

	raw := []byte(`{"jsonrpc":"2.0","method":"add","params":{"a":1,"b":1}}`)
	out, err := s.ProcessRequest(context.Background(), raw, "/api", nil)
	c.Assert(err, qt.IsNil)
	c.Assert(out, qt.IsNil)
}

// TestProcessRequestDenyNotificationsRejectsIDLessEnvelope covers the
// "allowNotifications" configuration option (spec.md section 6): with
// DenyNotifications set, an id-less envelope is rejected with an
// invalid-request envelope instead of being dispatched silently.
func TestProcessRequestDenyNotificationsRejectsIDLessEnvelope(t *testing.T) {
	c := qt.New(t)
	s, _ := newTestServer(t)
	s.DenyNotifications = true

	raw := []byte(`{"jsonrpc":"2.0","method":"add","params":{"a":1,"b":1}}`)
	out, err := s.ProcessRequest(context.Background(), raw, "/api", nil)
	c.Assert(err, qt.IsNil)
	c.Assert(out, qt.Not(qt.IsNil))

	resp, decErr := rpc.DecodeResponse(out)
	c.Assert(decErr, qt.IsNil)
	c.Assert(resp.Error, qt.Not(qt.IsNil))
	c.Assert(resp.Error.Code, qt.Equals, rpc.CodeInvalidRequest)
}

// TestProcessRequestDefaultDenyWithNoPlugins covers scenario 6: a server
// with no authenticate plugin rejects every request.
func TestProcessRequestDefaultDenyWithNoPlugins(t *testing.T) {
	c := qt.New(t)
	reg := endpoint.NewRegistry()
	ep := endpoint.New("calculator", "/api")
	c.Assert(ep.Register("add", add), qt.IsNil)
	c.Assert(reg.RegisterEndpoint(ep), qt.IsNil)
	s := rpcserver.New(reg)

	raw := []byte(`{"jsonrpc":"2.0","method":"add","params":{"a":1,"b":1},"id":1}`)
	out, err := s.ProcessRequest(context.Background(), raw, "/api", nil)
	c.Assert(err, qt.IsNil)

	resp, decErr := rpc.DecodeResponse(out)
	c.Assert(decErr, qt.IsNil)
	c.Assert(resp.Error, qt.Not(qt.IsNil))
	c.Assert(resp.Error.Code, qt.Equals, rpc.CodeAuthentication)
}

// TestProcessRequestUnknownPath exercises routing to a path nothing is
// registered at.
func TestProcessRequestUnknownPath(t *testing.T) {
	c := qt.New(t)
	s, _ := newTestServer(t)

	raw := []byte(`{"jsonrpc":"2.0","method":"add","id":1}`)
	out, err := s.ProcessRequest(context.Background(), raw, "/nowhere", nil)
	c.Assert(err, qt.IsNil)

	resp, decErr := rpc.DecodeResponse(out)
	c.Assert(decErr, qt.IsNil)
	c.Assert(resp.Error, qt.Not(qt.IsNil))
	c.Assert(resp.Error.Code, qt.Equals, rpc.CodeMethodNotFound)
}

// TestProcessRequestExceptionCatchCanSuppress verifies an exceptionCatch
// plugin may translate a failure into a successful result.
func TestProcessRequestExceptionCatchCanSuppress(t *testing.T) {
	c := qt.New(t)
	s, _ := newTestServer(t)
	s.AddPlugin(plugin.ServerPlugin{
		Name: "swallow",
		ExceptionCatch: func(ctx context.Context, ir *plugin.IncomingRequest, err error) error {
			return nil
		},
	})

	raw := []byte(`{"jsonrpc":"2.0","method":"throws","id":3}`)
	out, err := s.ProcessRequest(context.Background(), raw, "/api", nil)
	c.Assert(err, qt.IsNil)

	resp, decErr := rpc.DecodeResponse(out)
	c.Assert(decErr, qt.IsNil)
	c.Assert(resp.Error, qt.Equals, (*rpc.Error)(nil))
	c.Assert(string(resp.Result), qt.Equals, "null")
}

// TestProcessRequestPingIsBuiltIn covers the reserved rpc.ping
// introspection method: it answers without an endpoint registering it
// (endpoint.Register rejects "rpc."-prefixed names outright), but still
// goes through authentication like any other call.
func TestProcessRequestPingIsBuiltIn(t *testing.T) {
	c := qt.New(t)
	s, _ := newTestServer(t)

	raw := []byte(`{"jsonrpc":"2.0","method":"rpc.ping","id":1}`)
	out, err := s.ProcessRequest(context.Background(), raw, "/api", nil)
	c.Assert(err, qt.IsNil)

	resp, decErr := rpc.DecodeResponse(out)
	c.Assert(decErr, qt.IsNil)
	c.Assert(resp.Error, qt.Equals, (*rpc.Error)(nil))
	c.Assert(string(resp.Result), qt.Equals, `{"pong":true}`)
}

func TestProcessRequestPingStillRequiresAuthentication(t *testing.T) {
	c := qt.New(t)
	reg := endpoint.NewRegistry()
	ep := endpoint.New("calculator", "/api")
	c.Assert(reg.RegisterEndpoint(ep), qt.IsNil)
	s := rpcserver.New(reg)

	raw := []byte(`{"jsonrpc":"2.0","method":"rpc.ping","id":1}`)
	out, err := s.ProcessRequest(context.Background(), raw, "/api", nil)
	c.Assert(err, qt.IsNil)

	resp, decErr := rpc.DecodeResponse(out)
	c.Assert(decErr, qt.IsNil)
	c.Assert(resp.Error, qt.Not(qt.IsNil))
	c.Assert(resp.Error.Code, qt.Equals, rpc.CodeAuthentication)
}

// TestProcessRequestIsReentrant exercises concurrent calls against a single
// Server instance, per spec.md section 4.D's re-entrancy requirement.
func TestProcessRequestIsReentrant(t *testing.T) {
	c := qt.New(t)
	s, _ := newTestServer(t)

	const n = 50
	results := make(chan int, n)
	for i := 0; i < n; i++ {
		i := i
		go func() {
			raw, _ := json.Marshal(map[string]any{
				"jsonrpc": "2.0",
				"method":  "add",
				"params":  addParams{A: i, B: 1},
				"id":      i,
			})
			out, err := s.ProcessRequest(context.Background(), raw, "/api", nil)
			if err != nil {
				results <- -1
				return
			}
			resp, err := rpc.DecodeResponse(out)
			if err != nil {
				results <- -1
				return
			}
			var got int
			json.Unmarshal(resp.Result, &got)
			results <- got
		}()
	}
	for i := 0; i < n; i++ {
		c.Assert(<-results, qt.Not(qt.Equals), -1)
	}
}
