package vis

import (
	"errors"
	"strings"
	"sync"
)

// ErrVisualizationNotSupported reports a chart whose type has no
// registered visualization.
var ErrVisualizationNotSupported = errors.New("vis: visualization not supported")

var ErrIDRequired = errors.New("vis: visualization id required")

// Library is a third-party script a visualization depends on, staged into
// the published bundle ahead of the visualization script itself.
type Library struct {
	Name string
	// URI is resolved relative to the visualization asset root.
	URI string
	// Locales maps locale codes to locale bundle paths for the library.
	Locales map[string]string
}

// Visualization describes a renderable chart type: where its script and
// LESS live and what it needs loaded before it runs.
type Visualization struct {
	ID        string
	Title     string
	AriaLabel string
	// Less is the path to the visualization stylesheet, relative to the
	// asset root. Empty when the visualization ships no styles.
	Less       string
	ScriptPath string
	// Dependencies are core script paths required by the visualization,
	// staged in declaration order.
	Dependencies []string
	Libraries    []Library
	// Height is the default embed height hint in pixels, zero for none.
	Height    int
	Namespace string
}

// Registry holds the visualizations available to the publish pipeline.
// Registration normally happens once at startup but lookups run on every
// publish, so access is guarded.
type Registry struct {
	mu   sync.RWMutex
	byID map[string]Visualization
}

// NewRegistry constructs an empty visualization registry.
func NewRegistry() *Registry {
	return &Registry{byID: map[string]Visualization{}}
}

// Register adds or replaces a visualization. Re-registering an id is
// allowed so plugins can override built-in types.
func (r *Registry) Register(v Visualization) error {
	id := strings.TrimSpace(v.ID)
	if id == "" {
		return ErrIDRequired
	}
	v.ID = id

	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[id] = v
	return nil
}

// Get returns the visualization for a chart type.
func (r *Registry) Get(id string) (Visualization, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.byID[strings.TrimSpace(id)]
	if !ok {
		return Visualization{}, ErrVisualizationNotSupported
	}
	return v, nil
}

// Has reports whether a chart type is renderable.
func (r *Registry) Has(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.byID[strings.TrimSpace(id)]
	return ok
}

// IDs lists the registered visualization ids in no particular order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.byID))
	for id := range r.byID {
		ids = append(ids, id)
	}
	return ids
}
