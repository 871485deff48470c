package utils

import "sync"

//Latest is a single slot mailbox. Every Put overwrites the previous value and Get always returns the newest one,
//so a slow reader skips values and a fast reader sees the same value more than once. There is no queue and no backpressure.
type Latest[T any] struct {
	mu      sync.RWMutex
	value   T
	version uint64
}

//Put replaces the value in the slot
func (l *Latest[T]) Put(v T) {
	l.mu.Lock()
	l.value = v
	l.version++
	l.mu.Unlock()
}

//Get returns the newest value and the number of Puts so far. ok is false while nothing was put yet.
func (l *Latest[T]) Get() (value T, version uint64, ok bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.value, l.version, l.version > 0
}

//Swap replaces the value in the slot and returns the one it held before
func (l *Latest[T]) Swap(v T) (old T) {
	l.mu.Lock()
	old = l.value
	l.value = v
	l.version++
	l.mu.Unlock()
	return old
}

//Do runs fn with the current value while holding a read lock, so fn can copy out of a value it does not own
func (l *Latest[T]) Do(fn func(value T, version uint64)) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	fn(l.value, l.version)
}
