// Package semaphore implements a small counting semaphore for bounding
// concurrent access to a pooled resource. No other package in this
// module imports it; internal/reserve guards its pool with a mutex.
package semaphore

import "fmt"

// Semaphore is a counting semaphore. It must be initialized with
// NewSemaphore before use.
type Semaphore struct {
	c      chan struct{}
	closed chan struct{}
}

// NewSemaphore creates a new semaphore with the given capacity.
func NewSemaphore(size int) *Semaphore {
	return &Semaphore{
		c:      make(chan struct{}, size),
		closed: make(chan struct{}),
	}
}

// Close releases anyone blocked in P or V. After Close, P and V return
// an error instead of blocking; a step whose channel operation is also
// ready at that moment may still succeed, since select picks at random.
func (obj *Semaphore) Close() {
	close(obj.closed)
}

// P acquires n resources, blocking until they are available.
func (obj *Semaphore) P(n int) error {
	for i := 0; i < n; i++ {
		select {
		case obj.c <- struct{}{}:
		case <-obj.closed:
			return fmt.Errorf("semaphore: closed")
		}
	}
	return nil
}

// V releases n resources.
func (obj *Semaphore) V(n int) error {
	for i := 0; i < n; i++ {
		select {
		case <-obj.c:
		case <-obj.closed:
			return fmt.Errorf("semaphore: closed")
		default:
			panic("semaphore: V > P")
		}
	}
	return nil
}
