package imager

import "sync"

// completion is a one-shot signal: set exactly once, waited on by any number
// of goroutines. Waiters loop on the flag under the lock so a broadcast can
// never be missed.
type completion struct {
	mu   sync.Mutex
	cond *sync.Cond
	done bool
}

func newCompletion() *completion {
	c := &completion{}
	c.cond = sync.NewCond(&c.mu)
	return c
}

func (c *completion) set() {
	c.mu.Lock()
	c.done = true
	c.mu.Unlock()
	c.cond.Broadcast()
}

func (c *completion) wait() {
	c.mu.Lock()
	for !c.done {
		c.cond.Wait()
	}
	c.mu.Unlock()
}
