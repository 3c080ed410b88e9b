// Package plugin implements the lifecycle hook pipeline described in
// spec.md section 4.B. A plugin is a capability record: a value bundling a
// subset of named hook functions, with unimplemented hooks left nil and
// treated as no-ops (spec.md section 9, "replace inheritance ladder with a
// capability record"). This mirrors how the teacher's apiserver.Observer
// and the pack's aprot middleware chain (other_examples/marrasen-aprot)
// both express optional cross-cutting behavior as plain function values
// rather than a base class.
package plugin

import (
	"context"
	"sync"

	"github.com/doxysoft/jsonrpc-bidirectional/rpc"
)

// ReverseClient is the minimal capability an IncomingRequest needs to issue
// a call back to the peer that sent it (spec.md section 3, "reverseCallsClient").
// It is satisfied by *rpcclient.Client without this package importing
// rpcclient, avoiding an import cycle (rpcclient imports plugin for the
// pipeline types).
type ReverseClient interface {
	Call(ctx context.Context, method string, params, result any) error
	Notify(ctx context.Context, method string, params any) error
}

// IncomingRequest is the per-call context passed through every server hook
// (spec.md section 3). It is created when a request is dispatched and
// discarded once its response is produced.
type IncomingRequest struct {
	Envelope rpc.Request

	// EndpointPath is the routing key the request arrived on.
	EndpointPath string

	// CallerIdentity is opaque to the framework; an authenticate plugin
	// sets it, an authorize plugin reads it.
	CallerIdentity any

	// ReverseCallsClient is populated by the router when the resolved
	// endpoint declares a reverse client factory and the connection is a
	// duplex one (spec.md section 4.G). It is nil for one-shot HTTP calls.
	ReverseCallsClient ReverseClient

	// Response is filled in as the server pipeline progresses; plugins
	// may inspect or replace it in the "response" hook.
	Response *rpc.Response

	mu      sync.Mutex
	context map[string]any
}

// Set stores a plugin-private value on the request, keyed by name.
func (ir *IncomingRequest) Set(key string, value any) {
	ir.mu.Lock()
	defer ir.mu.Unlock()
	if ir.context == nil {
		ir.context = make(map[string]any)
	}
	ir.context[key] = value
}

// Get retrieves a plugin-private value previously stored with Set.
func (ir *IncomingRequest) Get(key string) (any, bool) {
	ir.mu.Lock()
	defer ir.mu.Unlock()
	v, ok := ir.context[key]
	return v, ok
}

// OutgoingRequest is the per-call context passed through every client hook
// (spec.md section 4.B/4.E).
type OutgoingRequest struct {
	Envelope rpc.Request

	// RequestBody is the encoded request, set after beforeJSONEncode and
	// mutable by afterJSONEncode.
	RequestBody []byte

	// ResponseBody is assigned by whichever plugin implements MakeRequest
	// (the transport). The first plugin to set it short-circuits any
	// later MakeRequest hooks, per spec.md section 4.B ("first writer
	// wins, enabling caching plugins").
	ResponseBody []byte

	// ParsedResponse is filled in by the client core after decoding
	// ResponseBody, then exposed to AfterJSONDecode hooks.
	ParsedResponse *rpc.Response

	mu      sync.Mutex
	context map[string]any
}

func (or *OutgoingRequest) Set(key string, value any) {
	or.mu.Lock()
	defer or.mu.Unlock()
	if or.context == nil {
		or.context = make(map[string]any)
	}
	or.context[key] = value
}

func (or *OutgoingRequest) Get(key string) (any, bool) {
	or.mu.Lock()
	defer or.mu.Unlock()
	v, ok := or.context[key]
	return v, ok
}

// ServerPlugin bundles the optional hooks a server-side plugin may
// implement, invoked in the order listed in spec.md section 4.B.
type ServerPlugin struct {
	Name string

	BeforeJSONDecode func(ctx context.Context, raw *[]byte) error
	AfterJSONDecode  func(ctx context.Context, req *rpc.Request) error
	Authenticate     func(ctx context.Context, ir *IncomingRequest) error
	Authorize        func(ctx context.Context, ir *IncomingRequest) error
	CallResult       func(ctx context.Context, ir *IncomingRequest) error
	ExceptionCatch   func(ctx context.Context, ir *IncomingRequest, err error) error
	Response         func(ctx context.Context, ir *IncomingRequest) error
	AfterJSONEncode  func(ctx context.Context, raw *[]byte) error
}

// ClientPlugin bundles the optional hooks a client-side plugin may
// implement, invoked in the order listed in spec.md section 4.B. Exactly
// one registered plugin should implement MakeRequest; it is the transport.
type ClientPlugin struct {
	Name string

	BeforeJSONEncode func(ctx context.Context, out *OutgoingRequest) error
	AfterJSONEncode  func(ctx context.Context, out *OutgoingRequest) error
	MakeRequest      func(ctx context.Context, out *OutgoingRequest) error
	AfterJSONDecode  func(ctx context.Context, out *OutgoingRequest) error
	ExceptionCatch   func(ctx context.Context, out *OutgoingRequest, err error) error
}
