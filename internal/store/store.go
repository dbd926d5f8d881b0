// Package store provides in-memory handle stores for produced resources.
//
// Stores are owned by the single polling context; they are not safe for
// concurrent use and never need to be, since background batches only hand
// results back through the pipeline outbox.
package store

// Handle identifies an inserted resource. The zero value is never issued.
type Handle uint64

// Valid reports whether the handle was issued by a store.
func (h Handle) Valid() bool { return h != 0 }

// Assets is an insert-and-lookup table for one resource kind.
type Assets[T any] struct {
	next  Handle
	items map[Handle]T
}

// NewAssets constructs an empty store.
func NewAssets[T any]() *Assets[T] {
	return &Assets[T]{items: make(map[Handle]T)}
}

// Insert stores a value and returns its handle.
func (a *Assets[T]) Insert(value T) Handle {
	a.next++
	a.items[a.next] = value
	return a.next
}

// Get returns the value for a handle.
func (a *Assets[T]) Get(h Handle) (T, bool) {
	value, ok := a.items[h]
	return value, ok
}

// Len returns the number of stored values.
func (a *Assets[T]) Len() int { return len(a.items) }

// Range calls fn for every stored value until fn returns false.
// Iteration order is unspecified.
func (a *Assets[T]) Range(fn func(Handle, T) bool) {
	for h, v := range a.items {
		if !fn(h, v) {
			return
		}
	}
}
