package scan

import (
	"fmt"

	"github.com/alfredjeanlab/forge/internal/fault"
	"github.com/alfredjeanlab/forge/internal/model"
)

// Registry is an ordered collection of scan adapters. Order matters for
// auto-detection: the first adapter whose Detect returns true wins, so
// specific adapters must be registered before the generic fallback.
type Registry struct {
	adapters []Adapter
	byName   map[model.Framework]Adapter
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[model.Framework]Adapter)}
}

// DefaultRegistry returns a registry with all built-in adapters, the
// generic fallback last.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(NewDjangoAdapter())
	r.Register(NewExpressAdapter())
	r.Register(NewFastAPIAdapter())
	r.Register(NewGenericAdapter())
	return r
}

// Register adds an adapter. Registering a second adapter for the same
// framework replaces the first in name lookup but keeps detection order.
func (r *Registry) Register(a Adapter) {
	r.adapters = append(r.adapters, a)
	r.byName[a.Framework()] = a
}

// Get returns the adapter registered for the framework.
func (r *Registry) Get(f model.Framework) (Adapter, error) {
	a, ok := r.byName[f]
	if !ok {
		return nil, fault.New(fault.CategoryValidation, "registry",
			fmt.Errorf("no adapter registered for framework %q", f))
	}
	return a, nil
}

// Detect returns the first adapter claiming the tree at root. The generic
// adapter always claims, so a fully populated registry never fails here
// unless an earlier adapter returns an error.
func (r *Registry) Detect(root string) (Adapter, error) {
	for _, a := range r.adapters {
		ok, err := a.Detect(root)
		if err != nil {
			return nil, fmt.Errorf("detect %s: %w", a.Framework(), err)
		}
		if ok {
			return a, nil
		}
	}
	return nil, fault.New(fault.CategoryNotFound, "registry",
		fmt.Errorf("no adapter claimed tree at %s", root))
}

// Resolve returns the adapter for the job's framework, auto-detecting when
// the framework is empty.
func (r *Registry) Resolve(job *model.ScanJob) (Adapter, error) {
	if job.Framework != "" {
		return r.Get(job.Framework)
	}
	return r.Detect(job.Root)
}

// Frameworks lists the registered frameworks in registration order.
func (r *Registry) Frameworks() []model.Framework {
	out := make([]model.Framework, 0, len(r.adapters))
	for _, a := range r.adapters {
		out = append(out, a.Framework())
	}
	return out
}
