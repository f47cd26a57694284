package mdbx

import (
	"sync"
	"weak"
)

// registry tracks the live dependents of a resource through weak pointers,
// so a dependent the caller has dropped on the floor never keeps the parent
// alive and never blocks its shutdown. Closing a parent drains the registry
// and force-closes whatever is still reachable.
type registry[T any] struct {
	mu   sync.Mutex
	next uint64
	deps map[uint64]weak.Pointer[T]
}

func newRegistry[T any]() *registry[T] {
	return &registry[T]{deps: make(map[uint64]weak.Pointer[T])}
}

func (r *registry[T]) add(d *T) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.next++
	r.deps[r.next] = weak.Make(d)
	return r.next
}

func (r *registry[T]) remove(id uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.deps, id)
}

// drain empties the registry and returns strong pointers to the dependents
// still alive. The caller closes them outside the registry lock.
func (r *registry[T]) drain() []*T {
	r.mu.Lock()
	defer r.mu.Unlock()
	live := make([]*T, 0, len(r.deps))
	for id, wp := range r.deps {
		if p := wp.Value(); p != nil {
			live = append(live, p)
		}
		delete(r.deps, id)
	}
	return live
}
