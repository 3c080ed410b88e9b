// Package rpcserver implements the server core of spec.md section 4.D: it
// turns a raw request blob into a raw response blob (or nil, for a
// notification), running the plugin hooks of spec.md section 4.B around
// decode, authenticate/authorize, dispatch and encode. It is grounded on
// the teacher's rpc.Conn.handleRequest/runRequest (rpc/server.go), adapted
// from juju's two-level type/id-object dispatch to flat path+method
// dispatch via the endpoint package, and on
// apiserver/observer/request_notifier.go for the request/response
// lifecycle plugins hook into.
package rpcserver

import (
	"context"
	"encoding/json"

	"github.com/juju/errors"

	"github.com/doxysoft/jsonrpc-bidirectional/endpoint"
	"github.com/doxysoft/jsonrpc-bidirectional/plugin"
	"github.com/doxysoft/jsonrpc-bidirectional/rpc"
)

// Server is re-entrant: a single instance serves concurrent requests
// across many connections with no shared mutable state outside a request's
// own IncomingRequest and whatever state plugins keep for themselves
// (spec.md section 4.D).
type Server struct {
	Registry *endpoint.Registry

	// DenyNotifications, when true, rejects any id-less envelope instead
	// of dispatching it (spec.md section 6's "allowNotifications" config
	// option; the zero value keeps the permissive default every other
	// Server construction in this tree relies on).
	DenyNotifications bool

	plugins plugin.ServerPipeline
}

// New creates a Server dispatching against registry. With no plugins
// added, every request is rejected with an authentication error
// (spec.md section 4.B's default-deny, scenario 6).
func New(registry *endpoint.Registry) *Server {
	return &Server{Registry: registry}
}

// AddPlugin appends a plugin to the server's pipeline.
func (s *Server) AddPlugin(p plugin.ServerPlugin) {
	s.plugins.Add(p)
}

// RemovePlugin removes the most recently added plugin with the given name.
func (s *Server) RemovePlugin(name string) bool {
	return s.plugins.Remove(name)
}

// ProcessRequest implements spec.md section 4.D end to end: raw bytes in,
// raw response bytes out (nil for a notification). transportContext is an
// opaque value (e.g. the inbound HTTP request) stashed on the
// IncomingRequest for plugins that need it.
func (s *Server) ProcessRequest(ctx context.Context, rawBlob []byte, endpointPath string, transportContext any) ([]byte, error) {
	return s.process(ctx, rawBlob, endpointPath, transportContext, nil)
}

// ProcessRequestWithPrep is the entry point the router (spec.md section
// 4.G) uses: prepare is invoked on the freshly constructed IncomingRequest
// before authenticate runs, so the router can attach a reverse-calls
// client bound to the connection the frame arrived on.
func (s *Server) ProcessRequestWithPrep(ctx context.Context, rawBlob []byte, endpointPath string, transportContext any, prepare func(*plugin.IncomingRequest)) ([]byte, error) {
	return s.process(ctx, rawBlob, endpointPath, transportContext, prepare)
}

func (s *Server) process(ctx context.Context, rawBlob []byte, endpointPath string, transportContext any, prepare func(*plugin.IncomingRequest)) ([]byte, error) {
	plugins := s.plugins.Snapshot()

	raw := append([]byte(nil), rawBlob...)
	for _, p := range plugins {
		if p.BeforeJSONDecode == nil {
			continue
		}
		if err := p.BeforeJSONDecode(ctx, &raw); err != nil {
			return s.encodeTerminalError(ctx, plugins, probeID(raw), err)
		}
	}

	req, err := rpc.DecodeRequest(raw)
	if err != nil {
		return s.encodeTerminalError(ctx, plugins, probeID(raw), err)
	}

	for _, p := range plugins {
		if p.AfterJSONDecode == nil {
			continue
		}
		if err := p.AfterJSONDecode(ctx, &req); err != nil {
			return s.encodeTerminalError(ctx, plugins, req.ID, err)
		}
	}

	if req.IsNotification() && s.DenyNotifications {
		return s.encodeTerminalError(ctx, plugins, req.ID, rpc.NewInvalidRequestError("notifications are not accepted by this server"))
	}

	ep, ok := s.Registry.EndpointForPath(endpointPath)
	if !ok {
		return s.encodeTerminalError(ctx, plugins, req.ID, rpc.NewMethodNotFoundError(endpointPath))
	}

	ir := &plugin.IncomingRequest{
		Envelope:     req,
		EndpointPath: endpointPath,
	}
	ir.Set(transportContextKey, transportContext)
	if prepare != nil {
		prepare(ir)
	}

	if authErr := s.runAuth(ctx, plugins, ir); authErr != nil {
		s.settleFailure(ctx, plugins, ir, authErr)
		return s.finish(ctx, plugins, ir, req.IsNotification())
	}

	var result json.RawMessage
	var callErr error
	if req.Method == pingMethod {
		result = json.RawMessage(`{"pong":true}`)
	} else {
		result, callErr = ep.Dispatch(ctx, ir)
	}
	if callErr == nil {
		ir.Response = &rpc.Response{ID: req.ID, Result: result}
		for _, p := range plugins {
			if p.CallResult == nil {
				continue
			}
			if err := p.CallResult(ctx, ir); err != nil {
				callErr = err
				ir.Response = nil
				break
			}
		}
	}
	if callErr != nil {
		s.settleFailure(ctx, plugins, ir, callErr)
	}

	return s.finish(ctx, plugins, ir, req.IsNotification())
}

const transportContextKey = "duplexrpc.transportContext"

// pingMethod is a reserved introspection method every Server answers
// directly without endpoint dispatch, mirroring the teacher's
// Pinger.Ping (apiserver/observer/request_notifier.go special-cases it
// out of request logging) — here it is additive plumbing, not a logging
// exception, so a round trip for it still authenticates normally.
const pingMethod = "rpc.ping"

// TransportContext retrieves the opaque value ProcessRequest was called
// with, if any plugin wants to inspect it (e.g. to read headers off an
// *http.Request).
func TransportContext(ir *plugin.IncomingRequest) (any, bool) {
	return ir.Get(transportContextKey)
}

// SetTransportContext stashes v on ir the same way ProcessRequest does,
// for plugin unit tests that build an IncomingRequest directly rather than
// going through a Server.
func SetTransportContext(ir *plugin.IncomingRequest, v any) {
	ir.Set(transportContextKey, v)
}

// runAuth implements spec.md section 4.B's authenticate/authorize steps
// and the default-deny invariant of section 8: a server with no plugin
// that sets CallerIdentity rejects every request with an authentication
// error.
func (s *Server) runAuth(ctx context.Context, plugins []plugin.ServerPlugin, ir *plugin.IncomingRequest) error {
	for _, p := range plugins {
		if p.Authenticate == nil {
			continue
		}
		if err := p.Authenticate(ctx, ir); err != nil {
			return err
		}
	}
	if ir.CallerIdentity == nil {
		return rpc.NewAuthenticationError("no authentication plugin granted access")
	}
	for _, p := range plugins {
		if p.Authorize == nil {
			continue
		}
		if err := p.Authorize(ctx, ir); err != nil {
			return err
		}
	}
	return nil
}

// settleFailure runs exceptionCatch over err and sets ir.Response to the
// resulting success (if a plugin suppressed the error) or error envelope.
func (s *Server) settleFailure(ctx context.Context, plugins []plugin.ServerPlugin, ir *plugin.IncomingRequest, err error) {
	for _, p := range plugins {
		if p.ExceptionCatch == nil {
			continue
		}
		if newErr := p.ExceptionCatch(ctx, ir, err); newErr != nil {
			err = newErr
			continue
		}
		err = nil
		break
	}
	if err == nil {
		ir.Response = &rpc.Response{ID: ir.Envelope.ID, Result: json.RawMessage("null")}
		return
	}
	var rpcErr *rpc.Error
	if !errors.As(err, &rpcErr) {
		rpcErr = rpc.NewInternalError(err)
	}
	if stack, ok := ir.Get("duplexrpc.stack"); ok {
		if s, ok := stack.(string); ok {
			rpcErr = rpcErr.WithData(map[string]string{"stack": s})
		}
	}
	ir.Response = &rpc.Response{ID: ir.Envelope.ID, Error: rpcErr}
}

// finish runs the response/afterJSONEncode hooks and produces the final
// outbound bytes, or nil for a notification (spec.md section 4.D step 6).
func (s *Server) finish(ctx context.Context, plugins []plugin.ServerPlugin, ir *plugin.IncomingRequest, isNotification bool) ([]byte, error) {
	for _, p := range plugins {
		if p.Response == nil {
			continue
		}
		if err := p.Response(ctx, ir); err != nil {
			// response is the last chance to shape the envelope; a
			// failure here still must not escape to the transport.
			var rpcErr *rpc.Error
			if !errors.As(err, &rpcErr) {
				rpcErr = rpc.NewInternalError(err)
			}
			ir.Response = &rpc.Response{ID: ir.Envelope.ID, Error: rpcErr}
		}
	}

	if isNotification {
		return nil, nil
	}

	raw, err := rpc.EncodeResponse(*ir.Response)
	if err != nil {
		return nil, errors.Trace(err)
	}
	for _, p := range plugins {
		if p.AfterJSONEncode == nil {
			continue
		}
		if err := p.AfterJSONEncode(ctx, &raw); err != nil {
			return nil, errors.Trace(err)
		}
	}
	return raw, nil
}

// encodeTerminalError builds and encodes an error response for failures
// that happen before an IncomingRequest exists (decode or routing
// failures), still running afterJSONEncode for auditing.
func (s *Server) encodeTerminalError(ctx context.Context, plugins []plugin.ServerPlugin, id json.RawMessage, err error) ([]byte, error) {
	var rpcErr *rpc.Error
	if !errors.As(err, &rpcErr) {
		rpcErr = rpc.NewInternalError(err)
	}
	if len(id) == 0 {
		id = json.RawMessage("null")
	}
	raw, encErr := rpc.EncodeResponse(rpc.Response{ID: id, Error: rpcErr})
	if encErr != nil {
		return nil, errors.Trace(encErr)
	}
	for _, p := range plugins {
		if p.AfterJSONEncode == nil {
			continue
		}
		if err := p.AfterJSONEncode(ctx, &raw); err != nil {
			return nil, errors.Trace(err)
		}
	}
	return raw, nil
}

// probeID best-effort extracts the "id" field from a raw frame that failed
// to decode as a full Request, so an error response can still echo the
// caller's id when the JSON was at least structurally valid (spec.md
// section 4.D step 2: "-32600 with the request id if any").
func probeID(raw []byte) json.RawMessage {
	var probe struct {
		ID json.RawMessage `json:"id"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil
	}
	return probe.ID
}
