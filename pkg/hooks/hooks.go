// Package hooks provides the in-process event dispatch primitive.
//
// Events are named "<namespace>.<event>". Dispatch is synchronous: CallAll
// runs every registered handler inline, in registration order, before it
// returns. There is no deferred scheduling tick; anything a handler does
// happens within the dispatching call.
package hooks

import "sync"

// Handler is a hook listener. Returning false marks the dispatch as vetoed;
// it does not stop the remaining handlers from running.
type Handler func(args ...any) bool

// Caller is the dispatch surface consumers depend on. Both the Dispatcher
// and any wrapper around it (such as the compatibility mirror) satisfy it.
type Caller interface {
	CallAll(name string, args ...any) bool
}

type registration struct {
	id      int
	handler Handler
}

// Dispatcher is a synchronous hook dispatcher. It is safe for concurrent
// registration and dispatch, but adds no serialization of its own beyond
// that: handlers for one event run inline on the dispatching goroutine.
type Dispatcher struct {
	mu       sync.RWMutex
	nextID   int
	handlers map[string][]registration
}

// NewDispatcher creates an empty Dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		handlers: make(map[string][]registration),
	}
}

// On registers a handler for the named event and returns a function that
// removes exactly that registration. Handlers fire in registration order.
func (d *Dispatcher) On(name string, handler Handler) (off func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.nextID++
	id := d.nextID
	d.handlers[name] = append(d.handlers[name], registration{id: id, handler: handler})

	return func() {
		d.mu.Lock()
		defer d.mu.Unlock()

		regs := d.handlers[name]
		for i, reg := range regs {
			if reg.id == id {
				d.handlers[name] = append(regs[:i:i], regs[i+1:]...)
				return
			}
		}
	}
}

// CallAll dispatches the named event to every registered handler, in
// registration order, and returns false if any handler vetoed the dispatch.
// All handlers run regardless of earlier vetoes. Dispatching an event with
// no handlers returns true.
func (d *Dispatcher) CallAll(name string, args ...any) bool {
	d.mu.RLock()
	regs := make([]registration, len(d.handlers[name]))
	copy(regs, d.handlers[name])
	d.mu.RUnlock()

	ok := true
	for _, reg := range regs {
		if !reg.handler(args...) {
			ok = false
		}
	}
	return ok
}

// HandlerCount returns the number of handlers registered for an event name.
func (d *Dispatcher) HandlerCount(name string) int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.handlers[name])
}
