//go:build race

package opt

import "sync"

const Race_ = true

// Sema is a counting semaphore built on sync.Cond so the race detector
// observes the happens-before edge between Release and Acquire.
// The zero value is ready to use.
type Sema struct {
	mu    sync.Mutex
	cond  *sync.Cond
	count uint32
}

func (s *Sema) Acquire() {
	s.mu.Lock()
	if s.cond == nil {
		s.cond = sync.NewCond(&s.mu)
	}
	for s.count == 0 {
		s.cond.Wait()
	}
	s.count--
	s.mu.Unlock()
}

func (s *Sema) Release() {
	s.mu.Lock()
	if s.cond == nil {
		s.cond = sync.NewCond(&s.mu)
	}
	s.count++
	s.mu.Unlock()
	s.cond.Signal()
}
