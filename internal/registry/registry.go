package registry

import (
	"context"
	"fmt"
	"sort"

	"github.com/specialistvlad/hazgridgo/internal/ctxlog"
	"github.com/specialistvlad/hazgridgo/internal/gmpe"
)

// Module is the interface that all GMPE modules must implement to be
// registered.
type Module interface {
	Register(r *Registry)
}

// Registry holds all registered GMPEs for a single application instance.
type Registry struct {
	gmpes map[string]gmpe.GMPE
}

// New creates and initializes a new Registry instance.
func New() *Registry {
	return &Registry{gmpes: make(map[string]gmpe.GMPE)}
}

// RegisterGMPE adds an equation under its configuration name. A
// duplicate name is a programmer error (two modules claiming the same
// name), so it panics.
func (r *Registry) RegisterGMPE(name string, g gmpe.GMPE) {
	if _, exists := r.gmpes[name]; exists {
		panic(fmt.Sprintf("registry: GMPE %q registered twice", name))
	}
	r.gmpes[name] = g
}

// GMPE resolves an equation by name.
func (r *Registry) GMPE(name string) (gmpe.GMPE, error) {
	g, ok := r.gmpes[name]
	if !ok {
		return nil, fmt.Errorf("unknown GMPE %q (registered: %v)", name, r.Names())
	}
	return g, nil
}

// Names returns the sorted registered equation names.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.gmpes))
	for n := range r.gmpes {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Validate checks that every referenced GMPE name resolves. Called once
// at startup with the names collected from the job's logic trees.
func (r *Registry) Validate(ctx context.Context, referenced []string) error {
	logger := ctxlog.FromContext(ctx)
	for _, name := range referenced {
		if _, err := r.GMPE(name); err != nil {
			return fmt.Errorf("logic tree references %w", err)
		}
	}
	logger.Debug("Registry validation passed.", "gmpes", r.Names())
	return nil
}
