package rpcclient_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
	"github.com/juju/clock/testclock"

	"github.com/doxysoft/jsonrpc-bidirectional/plugin"
	"github.com/doxysoft/jsonrpc-bidirectional/rpc"
	"github.com/doxysoft/jsonrpc-bidirectional/rpcclient"
)

// syncEchoTransport is a fake HTTP-style transport: makeRequest resolves
// the response synchronously, per spec.md section 4.E step 4.
func syncEchoTransport(result json.RawMessage, rpcErr *rpc.Error) plugin.ClientPlugin {
	return plugin.ClientPlugin{
		Name: "sync-echo",
		MakeRequest: func(ctx context.Context, out *plugin.OutgoingRequest) error {
			resp := rpc.Response{ID: out.Envelope.ID}
			if rpcErr != nil {
				resp.Error = rpcErr
			} else {
				resp.Result = result
			}
			raw, err := rpc.EncodeResponse(resp)
			if err != nil {
				return err
			}
			out.ResponseBody = raw
			return nil
		},
	}
}

func TestCallSynchronousTransportHappyPath(t *testing.T) {
	c := qt.New(t)
	client := rpcclient.New()
	client.AddPlugin(syncEchoTransport(json.RawMessage(`42`), nil))

	var result int
	err := client.Call(context.Background(), "answer", nil, &result)
	c.Assert(err, qt.IsNil)
	c.Assert(result, qt.Equals, 42)
}

func TestCallSynchronousTransportAppError(t *testing.T) {
	c := qt.New(t)
	client := rpcclient.New()
	client.AddPlugin(syncEchoTransport(nil, rpc.NewApplicationError(5, "nope")))

	err := client.Call(context.Background(), "answer", nil, nil)
	c.Assert(err, qt.Not(qt.IsNil))
	var rpcErr *rpc.Error
	c.Assert(err, qt.ErrorAs, &rpcErr)
	c.Assert(rpcErr.Code, qt.Equals, 5)
}

func TestCallWithNoTransportPluginFails(t *testing.T) {
	c := qt.New(t)
	client := rpcclient.New()

	err := client.Call(context.Background(), "answer", nil, nil)
	c.Assert(err, qt.Not(qt.IsNil))
	var rpcErr *rpc.Error
	c.Assert(err, qt.ErrorAs, &rpcErr)
	c.Assert(rpcErr.Kind, qt.Equals, rpc.KindTransport)
}

// asyncTransport mimics a WebSocket transport: makeRequest only sends,
// leaving ResponseBody unset; the caller must push the eventual response
// in via OnResponse, as a socket's onmessage handler would.
func asyncTransport(sent chan<- []byte) plugin.ClientPlugin {
	return plugin.ClientPlugin{
		Name: "async-ws",
		MakeRequest: func(ctx context.Context, out *plugin.OutgoingRequest) error {
			sent <- out.RequestBody
			return nil
		},
	}
}

func TestCallAsynchronousTransportResolvesViaOnResponse(t *testing.T) {
	c := qt.New(t)
	client := rpcclient.New()
	sent := make(chan []byte, 1)
	client.AddPlugin(asyncTransport(sent))

	go func() {
		raw := <-sent
		var req struct {
			ID json.RawMessage `json:"id"`
		}
		if err := json.Unmarshal(raw, &req); err != nil {
			return
		}
		resp, _ := rpc.EncodeResponse(rpc.Response{ID: req.ID, Result: json.RawMessage(`"ok"`)})
		client.OnResponse(resp)
	}()

	var result string
	err := client.Call(context.Background(), "ping", nil, &result)
	c.Assert(err, qt.IsNil)
	c.Assert(result, qt.Equals, "ok")
}

func TestCallTimesOutWhenNoResponseArrives(t *testing.T) {
	c := qt.New(t)
	client := rpcclient.New()
	tc := testclock.NewClock(time.Now())
	client.Clock = tc
	client.Timeout = time.Second

	sent := make(chan []byte, 1)
	client.AddPlugin(asyncTransport(sent))

	done := make(chan error, 1)
	go func() {
		done <- client.Call(context.Background(), "never-answers", nil, nil)
	}()

	<-sent
	tc.Advance(2 * time.Second)

	err := <-done
	c.Assert(err, qt.Not(qt.IsNil))
	var rpcErr *rpc.Error
	c.Assert(err, qt.ErrorAs, &rpcErr)
	c.Assert(rpcErr.Kind, qt.Equals, rpc.KindTimeout)
}

func TestNotifyReturnsImmediatelyWithNoPendingCall(t *testing.T) {
	c := qt.New(t)
	client := rpcclient.New()
	sent := make(chan []byte, 1)
	client.AddPlugin(asyncTransport(sent))

	err := client.Notify(context.Background(), "fire-and-forget", map[string]any{"x": 1})
	c.Assert(err, qt.IsNil)
	c.Assert(client.PendingCount(), qt.Equals, 0)

	raw := <-sent
	var req struct {
		ID json.RawMessage `json:"id"`
	}
	json.Unmarshal(raw, &req)
	c.Assert(len(req.ID), qt.Equals, 0)
}

func TestCloseFailsPendingCallsWithConnectionClosed(t *testing.T) {
	c := qt.New(t)
	client := rpcclient.New()
	sent := make(chan []byte, 1)
	client.AddPlugin(asyncTransport(sent))

	done := make(chan error, 1)
	go func() {
		done <- client.Call(context.Background(), "never-answers", nil, nil)
	}()
	<-sent
	client.Close()

	err := <-done
	c.Assert(err, qt.Not(qt.IsNil))
	var rpcErr *rpc.Error
	c.Assert(err, qt.ErrorAs, &rpcErr)
	c.Assert(rpcErr.Kind, qt.Equals, rpc.KindConnectionClosed)
}

func TestCallOnClosedClientFailsFast(t *testing.T) {
	c := qt.New(t)
	client := rpcclient.New()
	client.Close()

	err := client.Call(context.Background(), "anything", nil, nil)
	c.Assert(err, qt.Not(qt.IsNil))
	var rpcErr *rpc.Error
	c.Assert(err, qt.ErrorAs, &rpcErr)
	c.Assert(rpcErr.Kind, qt.Equals, rpc.KindConnectionClosed)
}
