package build

import "sync"

// cached holds a value computed once per [Context].
type cached[T any] struct {
	mu  sync.Mutex
	rc  *Context
	val T
}

func (c *cached[T]) get(rc *Context, fn func() (T, error)) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.rc == rc {
		return c.val, nil
	}

	v, err := fn()
	if err != nil {
		return v, err
	}

	c.rc, c.val = rc, v

	return v, nil
}

func (c *cached[T]) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T

	c.rc, c.val = nil, zero
}
