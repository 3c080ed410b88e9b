// Package endpoint implements the path-keyed endpoint registry and method
// dispatch of spec.md section 4.C, grounded on the teacher's
// apiserver/facade.Registry (name/version -> factory record) for the
// registry half and on a blend of the teacher's reflection-based
// rpc.methods/action.call (rpc/server.go) and the pack's
// mnehpets-oneserve/jsonrpc.rpcMethod.call for the dispatch half.
package endpoint

import (
	"fmt"
	"strings"
	"sync"

	"github.com/juju/errors"

	"github.com/doxysoft/jsonrpc-bidirectional/plugin"
)

// ReverseClientFactory builds the reverse-calls client an endpoint wants
// instantiated per duplex connection (spec.md section 3's
// "reverseClientClass"). transport is supplied by the router and already
// wired to write over the specific connection.
type ReverseClientFactory func(transport plugin.ClientPlugin) plugin.ReverseClient

// Endpoint is an immutable-after-registration handler set mounted at a URL
// path, per spec.md section 3.
type Endpoint struct {
	// Name is a diagnostic label, not used for routing.
	Name string

	// Path is the routing key, matched case-sensitively and normalized of
	// a trailing slash (see NormalizePath).
	Path string

	// Version is an optional introspection hint (SPEC_FULL section 4);
	// it does not affect routing, which stays purely path-keyed.
	Version int

	// ReverseClientFactory is optional; when set, the router instantiates
	// one reverse client per connection that talks to this endpoint.
	ReverseClientFactory ReverseClientFactory

	mu      sync.RWMutex
	methods map[string]*method
}

// New creates an empty endpoint ready for method registration.
func New(name, path string) *Endpoint {
	return &Endpoint{
		Name:    name,
		Path:    NormalizePath(path),
		methods: make(map[string]*method),
	}
}

// reservedPrefixes lists method name prefixes that must never be callable,
// per spec.md section 4.C ("Reserved names (starting with rpc., or
// inherited plumbing) MUST NOT be callable").
var reservedPrefixes = []string{"rpc."}

// IsReservedMethodName reports whether name is reserved plumbing and
// therefore not registrable or callable.
func IsReservedMethodName(name string) bool {
	for _, prefix := range reservedPrefixes {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return false
}

// Register binds methodName to handler. handler must be a func of the
// shape:
//
//	func(*plugin.IncomingRequest) (R, error)
//	func(*plugin.IncomingRequest) error
//	func(*plugin.IncomingRequest, P) (R, error)
//	func(*plugin.IncomingRequest, P) error
//
// optionally with a context.Context as the second argument (before P),
// and also with a single R result or with no results at all,
// where P is a struct type whose exported fields are bound from the
// request's params (spec.md section 4.C: array binds positionally by
// field declaration order, object binds by field json tag / name). The
// IncomingRequest argument is always present and always first, matching
// spec.md's "the IncomingRequest is always passed as the first argument,
// positional params follow".
func (e *Endpoint) Register(methodName string, handler any) error {
	if methodName == "" {
		return errors.New("endpoint: method name must not be empty")
	}
	if IsReservedMethodName(methodName) {
		return errors.Errorf("endpoint: method name %q is reserved", methodName)
	}
	m, err := newMethod(methodName, handler)
	if err != nil {
		return errors.Annotatef(err, "endpoint: register %q", methodName)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, exists := e.methods[methodName]; exists {
		return errors.Errorf("endpoint: method %q already registered", methodName)
	}
	e.methods[methodName] = m
	return nil
}

func (e *Endpoint) lookup(methodName string) (*method, bool) {
	if IsReservedMethodName(methodName) {
		return nil, false
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	m, ok := e.methods[methodName]
	return m, ok
}

// NormalizePath strips a trailing slash and maps the empty path to "/",
// per spec.md section 4.C. This is the one canonicalization rule this
// implementation commits to; spec.md section 9 notes that WebSocket
// upgrade-URL conventions vary between hosts, so callers deriving a path
// from a connection's URL should apply their own host-specific trimming
// before calling EndpointForPath.
func NormalizePath(path string) string {
	if path == "" {
		return "/"
	}
	if path != "/" && strings.HasSuffix(path, "/") {
		return strings.TrimSuffix(path, "/")
	}
	return path
}

// Description describes a registered endpoint for introspection
// (SPEC_FULL section 4), grounded on apiserver/facade.Description.
type Description struct {
	Name    string
	Path    string
	Version int
}

func (e *Endpoint) String() string {
	return fmt.Sprintf("%s(%s)", e.Name, e.Path)
}
