// Package sched provides the small cooperative scheduler the memory
// manager and mailbox run against: semaphores, a raised-interrupt-level
// critical section, and a thread table, grounded on per-thread
// bookkeeping (tinfo.Threadinfo_t/Tnote_t) and a channel-gated wakeup
// idiom (oommsg.Oommsg_t).
package sched

import (
	"defs"
)

// Thread is a schedulable unit of execution. Unlike a Tnote_t, which
// is reached through goroutine-local storage installed by a forked Go
// runtime, a Thread here is an explicit value passed by the caller to
// every blocking operation — idiomatic Go has no portable
// goroutine-local storage, so "the current thread" is a parameter, not
// ambient state.
type Thread struct {
	Id defs.Tid_t

	wake chan struct{}
}

// NewThread allocates a Thread with the given id, ready to run.
func NewThread(id defs.Tid_t) *Thread {
	return &Thread{Id: id, wake: make(chan struct{}, 1)}
}

// parkAndWait blocks the calling goroutine until the thread is made
// runnable again via readyToRun, mirroring a Thread::Sleep/ReadyToRun
// pair. wake is a capacity-1 channel rather than an edge-triggered
// flag: a readyToRun that lands before parkAndWait is ever called
// still leaves a token buffered, so registering as a waiter (e.g.
// appending to a wait list) and then calling Sleep under a dropped
// lock can never lose the wakeup that arrives in between. A caller
// that never sleeps before the next readyToRun simply finds the
// channel already has a token waiting.
func (t *Thread) parkAndWait() {
	<-t.wake
}

// readyToRun makes the thread runnable: it deposits a token in wake if
// there isn't one there already. It is safe to call on a thread that
// is not currently parked — the token is simply consumed by the next
// parkAndWait instead of being delivered immediately.
func (t *Thread) readyToRun() {
	select {
	case t.wake <- struct{}{}:
	default:
	}
}
