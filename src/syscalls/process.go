package syscalls

import (
	"defs"
	"kernel"
)

// Process is the thin, kernel-side-only stand-in for a user process:
// just enough state (its page table and page count) for Exec/Join to
// exercise mem.Manager end-to-end. Real process creation, scheduling,
// and the trap dispatch that would normally construct one of these are
// out of scope here.
type Process struct {
	Id       int
	PT       []int
	NumPages int
}

// AddressSpace adapts a Process and the Simulator it runs on to the
// UserSpace interface Read/Write/Strncmp need, grounded on vm.Vm_t's
// role as the per-process translation context.
type AddressSpace struct {
	Sim *kernel.Simulator
	P   *Process
}

// Translate implements UserSpace: it maps a user virtual address to
// the containing frame's bytes from Translate's logical-page offset
// onward.
func (a *AddressSpace) Translate(uva int, write bool) ([]byte, defs.Err_t) {
	page := uva / a.Sim.PageSize
	off := uva % a.Sim.PageSize
	if page < 0 || page >= a.P.NumPages {
		return nil, defs.ErrInvalidArg
	}
	frame, ok := a.Sim.Translate(a.P.PT, page)
	if !ok {
		return nil, defs.ErrInvalidArg
	}
	return frame[off:], 0
}
