// Package router implements the bidirectional router of spec.md section
// 4.G: it owns a set of duplex WebSocket-like connections, classifies
// each inbound frame as either a request from the peer (dispatched
// through the local server) or a response to one of our own earlier
// calls (routed to that connection's reverse client), and lazily
// instantiates a reverse client per connection the first time an
// endpoint with a ReverseClientFactory is dispatched to.
//
// It is grounded on the teacher's rpc.Conn, which plays both client and
// server roles over a single connection (rpc/client.go, rpc/server.go),
// generalized here from "one process, one connection" to "one process,
// many connections, each independently bidirectional" — the shape
// spec.md section 9 calls out as needing a connection arena keyed by id
// to avoid a Router<->Client<->Connection reference cycle.
package router

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/juju/loggo/v2"

	"github.com/doxysoft/jsonrpc-bidirectional/endpoint"
	"github.com/doxysoft/jsonrpc-bidirectional/plugin"
	"github.com/doxysoft/jsonrpc-bidirectional/rpc"
	"github.com/doxysoft/jsonrpc-bidirectional/rpcserver"
	"github.com/doxysoft/jsonrpc-bidirectional/transport/wstransport"
)

var logger = loggo.GetLogger("duplexrpc.router")

// State is a RouterConnection's position in the Open -> Closing -> Closed
// state machine of spec.md section 4.G.
type State int

const (
	Open State = iota
	Closing
	Closed
)

func (s State) String() string {
	switch s {
	case Open:
		return "open"
	case Closing:
		return "closing"
	case Closed:
		return "closed"
	default:
		return "unknown"
	}
}

// reverseClientController is satisfied by concrete reverse clients (in
// particular *rpcclient.Client) that can additionally receive
// asynchronous response frames and be torn down. endpoint.ReverseClientFactory
// only promises the narrower plugin.ReverseClient, so the router recovers
// this capability with a type assertion rather than widening that
// interface (which endpoint-registering code outside this package has no
// need of).
type reverseClientController interface {
	OnResponse(raw []byte)
	Close()
}

// Router dispatches inbound frames from many duplex connections through a
// single local Server, per spec.md section 4.G.
type Router struct {
	Server *rpcserver.Server

	// OnMadeReverseClient, if set, fires the first time a reverse client
	// is instantiated on a connection (spec.md section 4.G's
	// "madeReverseCallsClient" event), so operators can install
	// per-connection plugins such as auth binding.
	OnMadeReverseClient func(rc *RouterConnection, client plugin.ReverseClient)

	mu          sync.RWMutex
	nextID      int64
	connections map[int64]*RouterConnection
}

// New creates a Router dispatching incoming requests through server.
func New(server *rpcserver.Server) *Router {
	return &Router{Server: server, connections: make(map[int64]*RouterConnection)}
}

// AddConnection registers conn at path (the endpoint path derived from
// the connection's upgrade URL) and wires its events, assigning it a
// fresh monotonic connection id.
func (r *Router) AddConnection(conn wstransport.Conn, path string) *RouterConnection {
	path = endpoint.NormalizePath(path)

	r.mu.Lock()
	r.nextID++
	rc := &RouterConnection{
		ID:           r.nextID,
		DiagnosticID: uuid.New(),
		Path:         path,
		router:       r,
		conn:         conn,
		state:        Open,
	}
	r.connections[rc.ID] = rc
	r.mu.Unlock()

	conn.OnMessage(rc.handleMessage)
	conn.OnClose(rc.handleClose)
	conn.OnError(rc.handleError)

	logger.Debugf("router: connection %d opened at %q", rc.ID, path)
	return rc
}

func (r *Router) removeConnection(id int64) {
	r.mu.Lock()
	delete(r.connections, id)
	r.mu.Unlock()
}

// Connection looks up a still-registered connection by id.
func (r *Router) Connection(id int64) (*RouterConnection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rc, ok := r.connections[id]
	return rc, ok
}

// ConnectionIDToSingletonClient returns the reverse client bound to
// connection id for the endpoint mounted at that connection's path,
// creating it on first call, per spec.md section 4.G.
func (r *Router) ConnectionIDToSingletonClient(id int64) (plugin.ReverseClient, bool) {
	rc, ok := r.Connection(id)
	if !ok {
		return nil, false
	}
	ep, ok := r.Server.Registry.EndpointForPath(rc.Path)
	if !ok || ep.ReverseClientFactory == nil {
		return nil, false
	}
	return rc.ensureReverseClient(ep), true
}

// Stats summarizes the router's live connection set, for diagnostics
// (SPEC_FULL section 4's supplemented Stats() operation).
type Stats struct {
	OpenConnections int
}

func (r *Router) Stats() Stats {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return Stats{OpenConnections: len(r.connections)}
}

// RouterConnection is one duplex connection's router-side bookkeeping:
// its state machine position and its lazily-instantiated reverse client.
type RouterConnection struct {
	ID   int64
	Path string

	// DiagnosticID is a per-connection correlation id for log lines and
	// String(), independent of the numeric ID
	// used for the router's own connection lookups: ID is only unique
	// within one Router's lifetime, DiagnosticID is globally unique and
	// safe to hand to an external log aggregator or bug report.
	DiagnosticID uuid.UUID

	router *Router
	conn   wstransport.Conn

	mu                sync.Mutex
	state             State
	reverseClient     plugin.ReverseClient
	reverseController reverseClientController
}

// State reports the connection's current position in Open/Closing/Closed.
func (rc *RouterConnection) State() State {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return rc.state
}

// Close initiates a local shutdown of the connection: Open -> Closing,
// then the underlying transport's own close completes the transition to
// Closed via handleClose. No-op if already closing or closed.
func (rc *RouterConnection) Close() error {
	rc.mu.Lock()
	if rc.state != Open {
		rc.mu.Unlock()
		return nil
	}
	rc.state = Closing
	rc.mu.Unlock()
	return rc.conn.Close()
}

func (rc *RouterConnection) handleMessage(text string) {
	raw := []byte(text)
	switch {
	case rpc.LooksLikeRequest(raw):
		rc.handleIncomingRequest(raw)
	case rpc.LooksLikeResponse(raw):
		rc.handleIncomingResponse(raw)
	default:
		rc.handleUnclassifiableFrame(raw)
	}
}

func (rc *RouterConnection) handleIncomingRequest(raw []byte) {
	var prepare func(*plugin.IncomingRequest)
	if ep, ok := rc.router.Server.Registry.EndpointForPath(rc.Path); ok && ep.ReverseClientFactory != nil {
		client := rc.ensureReverseClient(ep)
		prepare = func(ir *plugin.IncomingRequest) { ir.ReverseCallsClient = client }
	}

	out, err := rc.router.Server.ProcessRequestWithPrep(context.Background(), raw, rc.Path, rc, prepare)
	if err != nil {
		logger.Errorf("router: connection %d: processing request: %v", rc.ID, err)
		return
	}
	if out == nil {
		return // notification: no response to send
	}
	rc.send(out)
}

func (rc *RouterConnection) handleIncomingResponse(raw []byte) {
	rc.mu.Lock()
	controller := rc.reverseController
	rc.mu.Unlock()
	if controller == nil {
		logger.Debugf("router: connection %d: response with no reverse client to receive it, dropped", rc.ID)
		return
	}
	controller.OnResponse(raw)
}

// handleUnclassifiableFrame answers a frame that LooksLikeRequest and
// LooksLikeResponse both rejected. That rejection happens for two
// different reasons that need two different codes (spec.md section 8
// scenario 4): raw that isn't valid JSON at all gets a parse error, raw
// that is valid JSON of some other shape gets an invalid-request error.
func (rc *RouterConnection) handleUnclassifiableFrame(raw []byte) {
	var rpcErr *rpc.Error
	if json.Valid(raw) {
		rpcErr = rpc.NewInvalidRequestError("frame is neither a request nor a response")
	} else {
		rpcErr = rpc.NewParseError("invalid JSON")
	}
	resp := rpc.Response{ID: json.RawMessage("null"), Error: rpcErr}
	out, err := rpc.EncodeResponse(resp)
	if err != nil {
		return
	}
	rc.send(out)
}

func (rc *RouterConnection) send(raw []byte) {
	rc.mu.Lock()
	open := rc.state == Open
	rc.mu.Unlock()
	if !open {
		// no new sends once Closing or Closed, per spec.md section 4.G.
		return
	}
	if err := rc.conn.Send(string(raw)); err != nil {
		logger.Errorf("router: connection %d: send failed: %v", rc.ID, err)
	}
}

// ensureReverseClient returns the connection's reverse client, building
// it from ep's factory on first use and firing OnMadeReverseClient.
func (rc *RouterConnection) ensureReverseClient(ep *endpoint.Endpoint) plugin.ReverseClient {
	rc.mu.Lock()
	if rc.reverseClient != nil {
		client := rc.reverseClient
		rc.mu.Unlock()
		return client
	}

	client := ep.ReverseClientFactory(wstransport.SendOnlyPlugin(rc.conn))
	rc.reverseClient = client
	if controller, ok := client.(reverseClientController); ok {
		rc.reverseController = controller
	}
	rc.mu.Unlock()

	logger.Debugf("router: connection %d: instantiated reverse client for %q", rc.ID, ep.Path)
	if rc.router.OnMadeReverseClient != nil {
		rc.router.OnMadeReverseClient(rc, client)
	}
	return client
}

func (rc *RouterConnection) handleClose() {
	rc.transitionToClosed()
}

func (rc *RouterConnection) handleError(err error) {
	logger.Debugf("router: connection %d: transport error: %v", rc.ID, err)
	rc.transitionToClosed()
}

func (rc *RouterConnection) transitionToClosed() {
	rc.mu.Lock()
	if rc.state == Closed {
		rc.mu.Unlock()
		return
	}
	rc.state = Closed
	controller := rc.reverseController
	rc.mu.Unlock()

	if controller != nil {
		controller.Close()
	}
	rc.router.removeConnection(rc.ID)
	logger.Debugf("router: connection %d closed", rc.ID)
}

func (rc *RouterConnection) String() string {
	return fmt.Sprintf("connection %d [%s] (%s) at %s", rc.ID, rc.DiagnosticID, rc.State(), rc.Path)
}
