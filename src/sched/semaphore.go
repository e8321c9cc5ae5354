package sched

import "sync"

// Semaphore is a classic counting semaphore, the Go-side equivalent of
// the Nachos Semaphore class that the mailbox's waitWrite slot count is
// built on. It is implemented with a sync.Mutex + sync.Cond rather than
// a channel-gated pattern, since a semaphore's P needs to block on a
// dynamic condition (count > 0) rather than a single fixed event.
type Semaphore struct {
	mu    sync.Mutex
	cond  *sync.Cond
	count int
}

// NewSemaphore returns a semaphore initialized with n permits, the
// equivalent of `new Semaphore(name, size)` construction of waitWrite.
func NewSemaphore(n int) *Semaphore {
	sem := &Semaphore{count: n}
	sem.cond = sync.NewCond(&sem.mu)
	return sem
}

// P acquires one permit, blocking while none are available.
func (s *Semaphore) P() {
	s.mu.Lock()
	for s.count == 0 {
		s.cond.Wait()
	}
	s.count--
	s.mu.Unlock()
}

// V releases one permit, waking a blocked P if any.
func (s *Semaphore) V() {
	s.mu.Lock()
	s.count++
	s.cond.Signal()
	s.mu.Unlock()
}
