// Package mailbox implements the bounded, thread-addressed mailbox,
// grounded directly on the ThreadMailbox design in the Nachos original
// (threads/mailbox.cc): a fixed slot array, a semaphore gating empty
// slots, and a FIFO-per-recipient wait list.
package mailbox

import (
	"defs"
	"sched"
	"stats"
	"util"
)

// TextSize is the maximum payload carried by one mail slot.
const TextSize = 256

// Slot is one fixed-size mailbox entry. It is empty iff Size == 0.
type Slot struct {
	SenderId   defs.Tid_t
	ReceiverId defs.Tid_t
	Size       int
	Text       [TextSize]byte
}

// Mail is what Get/Pick hand back to a receiver.
type Mail struct {
	SenderId defs.Tid_t
	Size     int
	Text     [TextSize]byte
}

// Mailbox is created per receiving thread; only its owner ever calls
// Get/Pick/Clear on it, while any thread may Send/Put into it once it
// is looked up through a Registry.
type Mailbox struct {
	owner   defs.Tid_t
	boxSize int

	lvl   sched.InterruptLevel
	sched *sched.Scheduler

	slots        []Slot
	waitWrite    *sched.Semaphore
	waitReadList []defs.Tid_t

	sent     stats.Counter_t
	received stats.Counter_t
}

// New constructs a Mailbox of the given size, owned by owner, whose
// Get/Sleep calls are coordinated through sch.
func New(owner defs.Tid_t, boxSize int, sch *sched.Scheduler) *Mailbox {
	return &Mailbox{
		owner:     owner,
		boxSize:   boxSize,
		sched:     sch,
		slots:     make([]Slot, boxSize),
		waitWrite: sched.NewSemaphore(boxSize),
	}
}

// Owner returns the thread id this mailbox delivers to.
func (b *Mailbox) Owner() defs.Tid_t { return b.owner }

// stringSize computes the Send/Put string-mode size convention:
// min(strlen(msg)+1, TextSize), where strlen stops at the first zero
// byte or the end of msg.
func stringSize(msg []byte) int {
	n := len(msg)
	for i, c := range msg {
		if c == 0 {
			n = i
			break
		}
	}
	return util.Min(n+1, TextSize)
}

func resolveSize(msg []byte, size int) int {
	if size < 1 {
		return stringSize(msg)
	}
	return util.Min(size, TextSize)
}

// Send delivers msg to recId, blocking until a slot is free. It
// reports false without blocking further if recId is not a live
// thread id, in which case the acquired permit is returned.
func (b *Mailbox) Send(senderId, recId defs.Tid_t, msg []byte, size int) bool {
	sz := resolveSize(msg, size)

	// waitWrite.P() blocks independently of the critical section below:
	// the raised-interrupt-level region here is not reentrant the way
	// Nachos's single global interrupt flag is, so the blocking wait
	// happens outside lvl rather than nested within it. Mutual exclusion
	// over the slot array is still total — only the window in which a
	// sender may block waiting for a free slot moves outside it.
	b.waitWrite.P()

	b.lvl.Raise()
	if !b.sched.IsValidId(recId) {
		b.waitWrite.V()
		b.lvl.Lower()
		return false
	}
	for i := range b.slots {
		if b.slots[i].Size == 0 {
			b.writeMail(i, senderId, msg, sz)
			b.lvl.Lower()
			return true
		}
	}
	b.lvl.Lower()
	// waitWrite admitted this send but no empty slot was found: non-empty
	// slots plus waitWrite's value always equals boxSize, so this cannot
	// happen. The original silently falls off the end of its loop here;
	// an explicit assert is more honest about a broken invariant.
	panic("mailbox: Send found no empty slot after waitWrite admitted it")
}

// Put delivers msg to recId without blocking, failing if recId is
// invalid or no slot is currently free.
func (b *Mailbox) Put(senderId, recId defs.Tid_t, msg []byte, size int) bool {
	if !b.sched.IsValidId(recId) {
		return false
	}
	sz := resolveSize(msg, size)

	b.lvl.Raise()
	defer b.lvl.Lower()
	for i := range b.slots {
		if b.slots[i].Size == 0 {
			// The scan above ran under lvl, and invariant 4 guarantees
			// waitWrite has a permit whenever an empty slot exists, so
			// this P() cannot actually block.
			b.waitWrite.P()
			b.writeMail(i, senderId, msg, sz)
			return true
		}
	}
	return false
}

// Get blocks until mail addressed to this mailbox's owner arrives.
func (b *Mailbox) Get() Mail {
	for {
		b.lvl.Raise()
		for i := range b.slots {
			if b.slots[i].Size > 0 && b.slots[i].ReceiverId == b.owner {
				out := b.readMail(i)
				b.lvl.Lower()
				return out
			}
		}
		b.waitReadList = append(b.waitReadList, b.owner)
		b.lvl.Lower()
		b.sched.Sleep(b.owner)
	}
}

// Pick is Get without blocking: it returns ok=false if no mail is
// currently waiting.
func (b *Mailbox) Pick() (Mail, bool) {
	b.lvl.Raise()
	defer b.lvl.Lower()
	for i := range b.slots {
		if b.slots[i].Size > 0 && b.slots[i].ReceiverId == b.owner {
			return b.readMail(i), true
		}
	}
	return Mail{}, false
}

// Clear empties every slot addressed to the owner and releases its
// write permit, so no sender remains blocked on a recipient that is
// about to terminate.
func (b *Mailbox) Clear() {
	b.lvl.Raise()
	defer b.lvl.Lower()
	for i := range b.slots {
		if b.slots[i].Size > 0 && b.slots[i].ReceiverId == b.owner {
			b.slots[i].Size = 0
			b.waitWrite.V()
		}
	}
}

// writeMail must be called with lvl held. It writes exactly size bytes
// into the slot: msg truncated or zero-padded to size, so a slot that
// previously held a longer message never leaks a stale trailing byte
// into a shorter string-mode message's terminator.
func (b *Mailbox) writeMail(i int, senderId defs.Tid_t, msg []byte, size int) {
	b.slots[i].SenderId = senderId
	b.slots[i].ReceiverId = b.owner
	b.slots[i].Size = size
	n := util.Min(size, len(msg))
	copy(b.slots[i].Text[:n], msg[:n])
	for j := n; j < size; j++ {
		b.slots[i].Text[j] = 0
	}
	b.sent.Inc()
	b.awakeReader(b.owner)
}

// readMail must be called with lvl held.
func (b *Mailbox) readMail(i int) Mail {
	out := Mail{SenderId: b.slots[i].SenderId, Size: b.slots[i].Size}
	copy(out.Text[:], b.slots[i].Text[:])
	b.slots[i].Size = 0
	b.waitWrite.V()
	b.received.Inc()
	return out
}

// awakeReader wakes the first thread in waitReadList whose id equals
// id, removing it from the list — FIFO within a given recipient. It
// must be called with lvl held.
func (b *Mailbox) awakeReader(id defs.Tid_t) {
	for idx, waiter := range b.waitReadList {
		if waiter == id {
			b.waitReadList = append(b.waitReadList[:idx], b.waitReadList[idx+1:]...)
			b.sched.ReadyToRun(id)
			return
		}
	}
}
