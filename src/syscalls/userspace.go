// Package syscalls implements the kernel-side semantics of the six
// system calls that bound the core from above — Halt, Exec, Join,
// Read, Write, Strncmp — grounded on user-pointer translation
// machinery (vm.Vm_t's Userdmap8_inner, vm.Userbuf_t's chunked _tx
// loop) but simplified to a fixed chunk size, since the dispatch/trap
// layer that would otherwise drive a variable-size Userbuf_t is out of
// scope here.
package syscalls

import (
	"defs"
	"util"
)

// chunkSize is the fixed user-pointer translation granularity used by
// Read/Write/Strncmp.
const chunkSize = 32

// UserSpace resolves a user virtual address to the byte slice backing
// it, for as many bytes as remain in that address's containing page.
// Translate failing (bad page, unmapped page) is a fatal I/O
// assertion, not a recoverable error.
type UserSpace interface {
	Translate(uva int, write bool) ([]byte, defs.Err_t)
}

// copyUser moves len(buf) bytes between buf and the user address space
// starting at uva, chunkSize bytes (or fewer, at a page boundary) at a
// time. towrite selects the direction: true copies buf into user
// memory, false copies user memory into buf.
func copyUser(us UserSpace, uva int, buf []byte, towrite bool) (int, defs.Err_t) {
	done := 0
	for done < len(buf) {
		want := util.Min(chunkSize, len(buf)-done)
		seg, err := us.Translate(uva+done, towrite)
		if err != 0 {
			return done, err
		}
		n := util.Min(want, len(seg))
		if n == 0 {
			return done, defs.ErrInvalidArg
		}
		if towrite {
			copy(seg[:n], buf[done:done+n])
		} else {
			copy(buf[done:done+n], seg[:n])
		}
		done += n
	}
	return done, 0
}
