// Package observable provides typed observable values.
//
// A Value holds the latest state of one field and notifies registered
// subscribers synchronously on every Set. The synchronization controller is
// the single writer; the UI subscribes to schedule repaints.
package observable

import "sync"

// Value is an observable holding a single T.
type Value[T any] struct {
	mu   sync.Mutex
	v    T
	subs []func(T)
}

// New returns a Value initialized to v.
func New[T any](v T) *Value[T] {
	return &Value[T]{v: v}
}

// Get returns the current value.
func (o *Value[T]) Get() T {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.v
}

// Set stores v and invokes every subscriber with it, synchronously and in
// registration order. Subscribers run outside the lock, so they may call
// Get without deadlocking.
func (o *Value[T]) Set(v T) {
	o.mu.Lock()
	o.v = v
	subs := make([]func(T), len(o.subs))
	copy(subs, o.subs)
	o.mu.Unlock()

	for _, fn := range subs {
		fn(v)
	}
}

// Subscribe registers fn to run on every subsequent Set.
func (o *Value[T]) Subscribe(fn func(T)) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.subs = append(o.subs, fn)
}
