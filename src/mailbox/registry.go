package mailbox

import (
	"sync"

	"defs"
	"sched"
)

// Registry maps live thread ids to their mailbox, grounded on the
// Threadinfo_t map-of-per-thread-state idiom (tinfo.go). A mailbox is
// created when its owning thread registers and destroyed, after a
// final Clear, when that thread retires.
type Registry struct {
	mu    sync.Mutex
	boxes map[defs.Tid_t]*Mailbox
	sched *sched.Scheduler
}

// NewRegistry returns an empty registry whose mailboxes coordinate
// sleep/wake through sch.
func NewRegistry(sch *sched.Scheduler) *Registry {
	return &Registry{boxes: make(map[defs.Tid_t]*Mailbox), sched: sch}
}

// Create allocates and registers a boxSize-slot mailbox for owner. It
// panics if owner already has one.
func (r *Registry) Create(owner defs.Tid_t, boxSize int) *Mailbox {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.boxes[owner]; ok {
		panic("mailbox: registry already has a mailbox for this id")
	}
	b := New(owner, boxSize, r.sched)
	r.boxes[owner] = b
	return b
}

// Lookup returns the mailbox owned by id, if any.
func (r *Registry) Lookup(id defs.Tid_t) (*Mailbox, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.boxes[id]
	return b, ok
}

// Retire drains owner's mailbox with Clear and removes it from the
// registry, so no sender can be left blocked on a dead recipient's
// undelivered mail.
func (r *Registry) Retire(owner defs.Tid_t) {
	r.mu.Lock()
	b, ok := r.boxes[owner]
	delete(r.boxes, owner)
	r.mu.Unlock()
	if ok {
		b.Clear()
	}
}

// Send looks up recId's mailbox and calls Send on it, failing
// immediately (no blocking) if recId has no registered mailbox.
func (r *Registry) Send(senderId, recId defs.Tid_t, msg []byte, size int) bool {
	b, ok := r.Lookup(recId)
	if !ok {
		return false
	}
	return b.Send(senderId, recId, msg, size)
}

// Put looks up recId's mailbox and calls Put on it.
func (r *Registry) Put(senderId, recId defs.Tid_t, msg []byte, size int) bool {
	b, ok := r.Lookup(recId)
	if !ok {
		return false
	}
	return b.Put(senderId, recId, msg, size)
}
