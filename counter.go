package nex

import (
	"sync"
)

// unsignedInteger bounds Counter to the unsigned integer types whose
// wraparound-on-overflow matches wire sequence/ID counters.
type unsignedInteger interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uint
}

// Counter is a mutex-guarded incrementing value, used for PRUDP sequence
// IDs and session/connection ID allocation. T wraps on overflow the same
// way the wire field it backs does (uint16 sequence IDs wrap at 65536).
type Counter[T unsignedInteger] struct {
	mutex sync.Mutex
	value T
}

// NewCounter constructs a Counter starting at start.
func NewCounter[T unsignedInteger](start T) *Counter[T] {
	return &Counter[T]{value: start}
}

// Increment returns the current value and advances the counter by one.
func (c *Counter[T]) Increment() T {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	value := c.value
	c.value++

	return value
}

// Value returns the current value without advancing it.
func (c *Counter[T]) Value() T {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	return c.value
}

// SetValue overwrites the counter with value.
func (c *Counter[T]) SetValue(value T) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.value = value
}
