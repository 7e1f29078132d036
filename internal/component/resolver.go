package component

import (
	"errors"
	"fmt"
	"slices"
	"sync"
)

var (
	ErrUnknownComponent = errors.New("unknown component")
	ErrDependencyCycle  = errors.New("component dependency cycle")
)

// Resolver computes script load orders and memoizes them per top-level component.
type Resolver struct {
	registry Registry

	mu    sync.RWMutex
	cache map[string][]string
}

func NewResolver(registry Registry) *Resolver {
	return &Resolver{
		registry: registry,
		cache:    make(map[string][]string),
	}
}

// Resolve returns top and everything it depends on, dependencies first, without duplicates.
// The icon link script is always omitted.
func (r *Resolver) Resolve(top string) ([]string, error) {
	r.mu.RLock()
	cached, ok := r.cache[top]
	r.mu.RUnlock()
	if ok {
		return slices.Clone(cached), nil
	}

	var walked []string
	err := r.walk(top, map[string]bool{}, &walked)
	if err != nil {
		return nil, err
	}

	slices.Reverse(walked)
	seen := make(map[string]bool, len(walked))
	ordered := make([]string, 0, len(walked))
	for _, c := range walked {
		if seen[c] || c == IconLink {
			continue
		}
		seen[c] = true
		ordered = append(ordered, c)
	}

	r.mu.Lock()
	r.cache[top] = ordered
	r.mu.Unlock()
	return slices.Clone(ordered), nil
}

// walk appends c and then, depth first, each of its dependencies.
// path holds the components on the current branch.
func (r *Resolver) walk(c string, path map[string]bool, out *[]string) error {
	deps, ok := r.registry[c]
	if !ok {
		return fmt.Errorf("%q: %w", c, ErrUnknownComponent)
	}
	if path[c] {
		return fmt.Errorf("%q: %w", c, ErrDependencyCycle)
	}

	*out = append(*out, c)
	path[c] = true
	for _, dep := range deps {
		err := r.walk(dep, path, out)
		if err != nil {
			return err
		}
	}
	delete(path, c)
	return nil
}

// Scripts is Resolve for templates: an unresolvable component yields no scripts.
func (r *Resolver) Scripts(top string) []string {
	if top == "" {
		return nil
	}
	scripts, err := r.Resolve(top)
	if err != nil {
		return nil
	}
	return scripts
}
