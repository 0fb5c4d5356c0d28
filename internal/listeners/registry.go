// Package listeners holds change subscribers for the client stores.
package listeners

import "sync"

// Registry fans a value out to every registered callback. The zero value is ready
// to use.
type Registry[T any] struct {
	mu     sync.RWMutex
	nextID uint64
	subs   map[uint64]func(T)
	order  []uint64
}

// Add registers fn and returns a function that removes it. The returned function is
// safe to call more than once.
func (r *Registry[T]) Add(fn func(T)) (cancel func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.subs == nil {
		r.subs = make(map[uint64]func(T))
	}
	r.nextID++
	id := r.nextID
	r.subs[id] = fn
	r.order = append(r.order, id)

	var once sync.Once
	return func() {
		once.Do(func() { r.remove(id) })
	}
}

func (r *Registry[T]) remove(id uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.subs, id)
	for i, v := range r.order {
		if v == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// Notify calls every callback in registration order. Callbacks run without the
// registry lock held, so they may add or cancel subscriptions.
func (r *Registry[T]) Notify(v T) {
	r.mu.RLock()
	fns := make([]func(T), 0, len(r.order))
	for _, id := range r.order {
		fns = append(fns, r.subs[id])
	}
	r.mu.RUnlock()

	for _, fn := range fns {
		fn(v)
	}
}

// Len returns the number of active subscribers.
func (r *Registry[T]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.subs)
}
