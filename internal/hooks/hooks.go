// Package hooks is a small named-hook registry. Handlers run in registration
// order and every handler is awaited before Call returns.
package hooks

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Handler receives the payload passed to Call.
type Handler func(ctx context.Context, payload any) error

type entry struct {
	id int
	fn Handler
}

// Registry maps hook names to handlers. All methods are safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string][]entry
	nextID   int
}

func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string][]entry)}
}

// Hook registers fn under name and returns a function that removes it again.
func (r *Registry) Hook(name string, fn Handler) (unhook func()) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	id := r.nextID
	r.handlers[name] = append(r.handlers[name], entry{id: id, fn: fn})

	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		list := r.handlers[name]
		for i, e := range list {
			if e.id == id {
				r.handlers[name] = append(list[:i:i], list[i+1:]...)
				break
			}
		}
		if len(r.handlers[name]) == 0 {
			delete(r.handlers, name)
		}
	}
}

// Has reports whether at least one handler is registered for name.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.handlers[name]) > 0
}

// Call runs every handler registered for name. A failing handler does not
// stop the remaining ones; all errors are joined.
func (r *Registry) Call(ctx context.Context, name string, payload any) error {
	r.mu.RLock()
	list := make([]entry, len(r.handlers[name]))
	copy(list, r.handlers[name])
	r.mu.RUnlock()

	var errs []error
	for _, e := range list {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if err := e.fn(ctx, payload); err != nil {
			errs = append(errs, fmt.Errorf("hook %s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}
