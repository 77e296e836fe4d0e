package bridge

import (
	"context"
	"sort"
	"sync"

	"github.com/muurk/camlight/internal/lighting"
)

// Commander runs light commands against one named device.
// *lighting.Handler implements it.
type Commander interface {
	Name() string
	HandleCommand(ctx context.Context, raw string) lighting.OperationResult
	Lighting(ctx context.Context) (*lighting.LightingState, error)
}

// Registry holds the devices a bridge can reach, keyed by name
type Registry struct {
	mu      sync.RWMutex
	devices map[string]Commander
}

// NewRegistry creates a registry holding cmds
func NewRegistry(cmds ...Commander) *Registry {
	r := &Registry{devices: make(map[string]Commander)}
	for _, c := range cmds {
		r.Add(c)
	}
	return r
}

// Add registers c under c.Name(), replacing any previous device of that name
func (r *Registry) Add(c Commander) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.devices[c.Name()] = c
}

// Get returns the device registered as name
func (r *Registry) Get(name string) (Commander, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.devices[name]
	return c, ok
}

// Names returns the registered device names in sorted order
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.devices))
	for name := range r.devices {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
