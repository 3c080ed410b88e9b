package endpoint

import (
	"sort"
	"sync"

	"github.com/juju/errors"
)

// Registry maps normalized paths to endpoints, grounded on
// apiserver/facade.Registry's record map and error-on-duplicate semantics,
// simplified here to the single-version path-keyed shape spec.md section
// 4.C requires ("two registered endpoints must not share a path").
type Registry struct {
	mu        sync.RWMutex
	endpoints map[string]*Endpoint
}

// NewRegistry creates an empty endpoint registry.
func NewRegistry() *Registry {
	return &Registry{endpoints: make(map[string]*Endpoint)}
}

// RegisterEndpoint adds ep, keyed by its normalized path. It fails with a
// juju/errors.AlreadyExists-flavoured error if the path is already taken.
func (r *Registry) RegisterEndpoint(ep *Endpoint) error {
	if ep == nil {
		return errors.New("registry: endpoint must not be nil")
	}
	path := NormalizePath(ep.Path)
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.endpoints[path]; exists {
		return errors.AlreadyExistsf("endpoint at path %q", path)
	}
	ep.Path = path
	r.endpoints[path] = ep
	return nil
}

// EndpointForPath performs an O(1) lookup of the endpoint mounted at path,
// after normalizing it the same way RegisterEndpoint does.
func (r *Registry) EndpointForPath(path string) (*Endpoint, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ep, ok := r.endpoints[NormalizePath(path)]
	return ep, ok
}

// List returns a description of every registered endpoint, sorted by path,
// grounded on apiserver/facade.Registry.List.
func (r *Registry) List() []Description {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Description, 0, len(r.endpoints))
	for path, ep := range r.endpoints {
		out = append(out, Description{Name: ep.Name, Path: path, Version: ep.Version})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}
