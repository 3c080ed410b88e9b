package plugin

import "sync"

// ServerPipeline holds an ordered sequence of server plugins (spec.md
// section 4.B: "plugins run in registration order"). It is safe for
// concurrent Add/Remove/snapshot use.
type ServerPipeline struct {
	mu      sync.RWMutex
	plugins []ServerPlugin
}

// Add appends a plugin to the end of the pipeline.
func (p *ServerPipeline) Add(pl ServerPlugin) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.plugins = append(p.plugins, pl)
}

// Remove removes the most recently added plugin with the given name, i.e.
// plugins are removed in reverse registration order when a name repeats
// (spec.md section 6: "removed in reverse order").
func (p *ServerPipeline) Remove(name string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i := len(p.plugins) - 1; i >= 0; i-- {
		if p.plugins[i].Name == name {
			p.plugins = append(p.plugins[:i], p.plugins[i+1:]...)
			return true
		}
	}
	return false
}

// Snapshot returns a copy of the current plugin list, safe to iterate
// without holding the pipeline's lock.
func (p *ServerPipeline) Snapshot() []ServerPlugin {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]ServerPlugin, len(p.plugins))
	copy(out, p.plugins)
	return out
}

// ClientPipeline holds an ordered sequence of client plugins.
type ClientPipeline struct {
	mu      sync.RWMutex
	plugins []ClientPlugin
}

func (p *ClientPipeline) Add(pl ClientPlugin) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.plugins = append(p.plugins, pl)
}

func (p *ClientPipeline) Remove(name string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i := len(p.plugins) - 1; i >= 0; i-- {
		if p.plugins[i].Name == name {
			p.plugins = append(p.plugins[:i], p.plugins[i+1:]...)
			return true
		}
	}
	return false
}

func (p *ClientPipeline) Snapshot() []ClientPlugin {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]ClientPlugin, len(p.plugins))
	copy(out, p.plugins)
	return out
}
