package sched

import (
	"sync"

	"defs"
)

// Scheduler tracks the set of live threads and exposes exactly the
// three operations the memory manager and mailbox need from it:
// registering/retiring a thread, waking one up, and putting the
// calling goroutine to sleep as that thread. It is grounded on a
// Threadinfo_t map of Tid_t to per-thread state.
type Scheduler struct {
	mu      sync.Mutex
	threads map[defs.Tid_t]*Thread
}

// NewScheduler returns an empty scheduler.
func NewScheduler() *Scheduler {
	return &Scheduler{threads: make(map[defs.Tid_t]*Thread)}
}

// Spawn registers a new thread with id and returns it. It panics if id
// is already registered: thread ids are allocated uniquely before
// Threadinfo_t ever sees them.
func (s *Scheduler) Spawn(id defs.Tid_t) *Thread {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.threads[id]; ok {
		panic("thread id already registered")
	}
	t := NewThread(id)
	s.threads[id] = t
	return t
}

// IsValidId reports whether id currently names a live thread, the
// Go-side equivalent of Thread::IsValidId that Send/Put consult before
// accepting a message for a recipient.
func (s *Scheduler) IsValidId(id defs.Tid_t) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.threads[id]
	return ok
}

// Retire removes id from the scheduler. Callers must have already
// drained any per-thread state (e.g. a mailbox) addressed to it.
func (s *Scheduler) Retire(id defs.Tid_t) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.threads, id)
}

// ReadyToRun wakes the named thread if it is currently asleep. Waking a
// thread that was never put to sleep, or that has since been retired,
// is a silent no-op — AwakeReader's FIFO scan in the original always
// finds a live waiter, but nothing requires callers here to prove that.
func (s *Scheduler) ReadyToRun(id defs.Tid_t) {
	s.mu.Lock()
	t, ok := s.threads[id]
	s.mu.Unlock()
	if ok {
		t.readyToRun()
	}
}

// Sleep blocks the calling goroutine as thread id until a matching
// ReadyToRun call wakes it.
func (s *Scheduler) Sleep(id defs.Tid_t) {
	s.mu.Lock()
	t, ok := s.threads[id]
	s.mu.Unlock()
	if !ok {
		panic("sleep on unregistered thread")
	}
	t.parkAndWait()
}
