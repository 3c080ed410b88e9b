// Package rpcclient implements the client core of spec.md section 4.E: it
// turns a method call into a request envelope, runs it through the client
// plugin pipeline (section 4.B), and resolves the result either
// synchronously (the transport's makeRequest hook fills the response in
// directly, as HTTP does) or asynchronously (a later call to OnResponse,
// as a WebSocket transport's onmessage handler does). It is grounded on
// the teacher's rpc.Conn.Call/Dial client half (rpc/client.go) and on
// codexrpc_client.go's Call/Notify/pending-map shape, which is the pack's
// clearest example of a client that must cope with both its own pending
// calls and server-initiated requests over the same connection.
package rpcclient

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/juju/clock"
	"github.com/juju/errors"

	"github.com/doxysoft/jsonrpc-bidirectional/plugin"
	"github.com/doxysoft/jsonrpc-bidirectional/rpc"
)

// Client is the caller-side half of a duplex connection. It is safe for
// concurrent use: many goroutines may Call/Notify at once, and (for
// asynchronous transports) OnResponse may be invoked concurrently with
// outstanding calls.
type Client struct {
	// Clock is used for call timeouts; it defaults to the real wall clock
	// but can be swapped for a test clock.
	Clock clock.Clock

	// Timeout bounds how long Call waits for a response before failing
	// with a timeout error. Zero means no timeout (spec.md section 4.E:
	// "the client MAY enforce a per-call timeout").
	Timeout time.Duration

	plugins plugin.ClientPipeline

	mu      sync.Mutex
	nextID  int64
	pending map[string]*PendingCall
	closed  bool
}

// New creates a Client with no plugins installed; calling Call or Notify
// before a transport plugin is added fails with a transport error.
func New() *Client {
	return &Client{Clock: clock.WallClock, pending: make(map[string]*PendingCall)}
}

// AddPlugin appends a plugin to the client's pipeline. Exactly one
// registered plugin is expected to implement MakeRequest.
func (c *Client) AddPlugin(p plugin.ClientPlugin) {
	c.plugins.Add(p)
}

// RemovePlugin removes the most recently added plugin with the given name.
func (c *Client) RemovePlugin(name string) bool {
	return c.plugins.Remove(name)
}

// Call sends method with params and decodes the response's result into
// result (which may be nil to discard it). It satisfies plugin.ReverseClient,
// so a Client doubles as the reverse-calls client attached to an
// IncomingRequest by the router (spec.md section 4.G).
func (c *Client) Call(ctx context.Context, method string, params any, result any) error {
	resp, err := c.doCall(ctx, method, params, false)
	if err != nil {
		return err
	}
	if resp.Error != nil {
		return resp.Error
	}
	if result == nil || len(resp.Result) == 0 || string(resp.Result) == "null" {
		return nil
	}
	if err := json.Unmarshal(resp.Result, result); err != nil {
		return rpc.NewInternalError(err)
	}
	return nil
}

// Notify sends method with params and returns as soon as the request has
// been handed to the transport, per spec.md section 4.E step 1: a
// notification carries no id and expects no response.
func (c *Client) Notify(ctx context.Context, method string, params any) error {
	_, err := c.doCall(ctx, method, params, true)
	return err
}

// Close fails every pending call with a connection-closed error and
// refuses any further calls, per spec.md section 4.E step 6.
func (c *Client) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	pending := c.pending
	c.pending = make(map[string]*PendingCall)
	c.mu.Unlock()

	for _, pc := range pending {
		select {
		case pc.ch <- nil:
		default:
		}
	}
}

// OnResponse feeds a raw response frame received asynchronously (e.g. by a
// WebSocket transport's onmessage handler) to the pending call it matches.
// A response with no matching pending call is dropped, per spec.md section
// 4.E step 6 ("unmatched response id => logged and dropped").
func (c *Client) OnResponse(raw []byte) {
	var probe struct {
		ID json.RawMessage `json:"id"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return
	}
	key := rpc.NormalizeID(probe.ID)

	c.mu.Lock()
	pc, ok := c.pending[key]
	c.mu.Unlock()
	if !ok {
		return
	}
	select {
	case pc.ch <- raw:
	default:
	}
}

func (c *Client) doCall(ctx context.Context, method string, params any, notify bool) (*rpc.Response, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, rpc.NewConnectionClosedError()
	}
	c.mu.Unlock()

	req := rpc.Request{Method: method}
	if params != nil {
		raw, err := json.Marshal(params)
		if err != nil {
			return nil, rpc.NewInternalError(err)
		}
		req.Params = raw
	}

	var pc *PendingCall
	if !notify {
		req.ID = c.nextRawID()
		pc = c.registerPending(req.ID, method)
		defer c.removePending(rpc.NormalizeID(req.ID))
	}

	out := &plugin.OutgoingRequest{Envelope: req}
	plugins := c.plugins.Snapshot()

	for _, p := range plugins {
		if p.BeforeJSONEncode == nil {
			continue
		}
		if err := p.BeforeJSONEncode(ctx, out); err != nil {
			return c.fail(ctx, plugins, out, err)
		}
	}

	raw, err := rpc.EncodeRequest(out.Envelope)
	if err != nil {
		return c.fail(ctx, plugins, out, rpc.NewInternalError(err))
	}
	out.RequestBody = raw

	for _, p := range plugins {
		if p.AfterJSONEncode == nil {
			continue
		}
		if err := p.AfterJSONEncode(ctx, out); err != nil {
			return c.fail(ctx, plugins, out, err)
		}
	}

	hasTransport := false
	for _, p := range plugins {
		if p.MakeRequest == nil {
			continue
		}
		hasTransport = true
		if err := p.MakeRequest(ctx, out); err != nil {
			return c.fail(ctx, plugins, out, err)
		}
		if out.ResponseBody != nil {
			break // first writer wins, spec.md section 4.B
		}
	}
	if !hasTransport {
		return c.fail(ctx, plugins, out, rpc.NewTransportError(errors.New("no transport plugin installed")))
	}

	if notify {
		return nil, nil
	}

	var responseBody []byte
	if out.ResponseBody != nil {
		responseBody = out.ResponseBody
	} else {
		responseBody, err = c.awaitPending(ctx, pc, method)
		if err != nil {
			return c.fail(ctx, plugins, out, err)
		}
	}

	resp, decErr := rpc.DecodeResponse(responseBody)
	if decErr != nil {
		return c.fail(ctx, plugins, out, rpc.NewTransportError(decErr))
	}
	out.ParsedResponse = &resp

	for _, p := range plugins {
		if p.AfterJSONDecode == nil {
			continue
		}
		if err := p.AfterJSONDecode(ctx, out); err != nil {
			return c.fail(ctx, plugins, out, err)
		}
	}
	return out.ParsedResponse, nil
}

func (c *Client) awaitPending(ctx context.Context, pc *PendingCall, method string) ([]byte, error) {
	var timeoutCh <-chan time.Time
	if c.Timeout > 0 {
		timeoutCh = c.Clock.After(c.Timeout)
	}
	select {
	case raw := <-pc.ch:
		if raw == nil {
			return nil, rpc.NewConnectionClosedError()
		}
		return raw, nil
	case <-timeoutCh:
		return nil, rpc.NewTimeoutError(method)
	case <-ctx.Done():
		return nil, rpc.NewInternalError(ctx.Err())
	}
}

// fail runs exceptionCatch over err; if every hook declines to replace it
// with a non-nil error, the call is treated as having succeeded with a
// null result, mirroring how the server side lets exceptionCatch suppress
// a failure (spec.md section 4.B).
func (c *Client) fail(ctx context.Context, plugins []plugin.ClientPlugin, out *plugin.OutgoingRequest, err error) (*rpc.Response, error) {
	for _, p := range plugins {
		if p.ExceptionCatch == nil {
			continue
		}
		if newErr := p.ExceptionCatch(ctx, out, err); newErr != nil {
			err = newErr
			continue
		}
		err = nil
		break
	}
	if err == nil {
		return &rpc.Response{ID: out.Envelope.ID, Result: json.RawMessage("null")}, nil
	}
	return nil, err
}

func (c *Client) nextRawID() json.RawMessage {
	c.mu.Lock()
	c.nextID++
	id := c.nextID
	c.mu.Unlock()
	raw, _ := json.Marshal(id)
	return raw
}

func (c *Client) registerPending(id json.RawMessage, method string) *PendingCall {
	pc := &PendingCall{ID: id, Method: method, Created: time.Now(), ch: make(chan []byte, 1)}
	key := rpc.NormalizeID(id)
	c.mu.Lock()
	c.pending[key] = pc
	c.mu.Unlock()
	return pc
}

func (c *Client) removePending(key string) {
	c.mu.Lock()
	delete(c.pending, key)
	c.mu.Unlock()
}

// PendingCount reports how many calls are currently awaiting a response,
// for diagnostics (spec.md section 9's "Stats()" supplement).
func (c *Client) PendingCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}
