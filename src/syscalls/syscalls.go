package syscalls

import (
	"bytes"
	"io"

	"defs"
	"kernel"
)

// execPathCap is the 60-byte program-path buffer carried over from the
// original SysExec convention: ksyscall.h passes the path straight
// through from a user buffer with no declared bound, so this enforces
// the cap and null-termination explicitly rather than leaving it to
// the caller.
const execPathCap = 60

// Halt terminates the machine. The kernel-side semantic is just
// recording that it happened; tearing down goroutines that stand in
// for running threads is the scheduler's concern, not this package's.
func Halt(ctx *kernel.Context) {
	ctx.Log.Warn().Msg("machine halted")
}

// Exec launches image (pageNum pages, imageSize bytes starting at file
// offset 0) as a new process, reading its path from user memory at
// pathUva purely for logging — the core never needs the path for
// anything but diagnostics, since image is supplied directly rather
// than looked up by name (name resolution belongs to a file-system
// collaborator that is out of scope here).
func Exec(ctx *kernel.Context, us UserSpace, pathUva int, id int, image io.ReaderAt, imageSize, pageNum int) (*Process, defs.Err_t) {
	path, _ := readExecPath(us, pathUva)

	prcPT, ok := ctx.Mem.StartVirLoad(pageNum)
	if !ok {
		ctx.Log.Warn().Str("path", path).Int("pageNum", pageNum).Msg("exec: virtual memory exhausted")
		return nil, defs.ErrExhausted
	}
	ctx.Mem.VirLoad(prcPT, 0, image, imageSize, 0)
	ctx.Mem.Load(0, prcPT, pageNum)

	ctx.Log.Info().Str("path", path).Int("id", id).Int("pageNum", pageNum).Msg("exec")
	return &Process{Id: id, PT: prcPT, NumPages: pageNum}, 0
}

// readExecPath copies the program path out of user memory, capped at
// execPathCap bytes and always null-terminated.
func readExecPath(us UserSpace, uva int) (string, defs.Err_t) {
	buf := make([]byte, execPathCap)
	_, err := copyUser(us, uva, buf, false)
	if err != 0 {
		return "", err
	}
	end := len(buf)
	for i, c := range buf {
		if c == 0 {
			end = i
			break
		}
	}
	return string(buf[:end]), 0
}

// Join waits for process p to finish. With no real scheduler running
// it, waiting for it is synchronous: Join simply releases the virtual
// memory p held, the only state the core is responsible for tearing
// down.
func Join(ctx *kernel.Context, p *Process) {
	ctx.Mem.VirRelease(p.PT, p.NumPages)
}

// Read copies up to n bytes from src into user memory at uva, in
// chunkSize-byte translated transfers.
func Read(us UserSpace, uva int, n int, src io.Reader) (int, defs.Err_t) {
	buf := make([]byte, n)
	rn, err := io.ReadFull(src, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return 0, defs.ErrInvalidArg
	}
	return copyUser(us, uva, buf[:rn], true)
}

// Write copies n bytes from user memory at uva into dst, in
// chunkSize-byte translated transfers.
func Write(us UserSpace, uva int, n int, dst io.Writer) (int, defs.Err_t) {
	buf := make([]byte, n)
	rn, err := copyUser(us, uva, buf, false)
	if err != 0 {
		return rn, err
	}
	if _, werr := dst.Write(buf[:rn]); werr != nil {
		return rn, defs.ErrInvalidArg
	}
	return rn, 0
}

// Strncmp compares n bytes of the user-space strings at uva1 and uva2,
// byte-by-byte via the same translation path Read/Write use, the way
// the original shell's exit check does.
func Strncmp(us UserSpace, uva1, uva2 int, n int) (int, defs.Err_t) {
	a := make([]byte, n)
	if _, err := copyUser(us, uva1, a, false); err != 0 {
		return 0, err
	}
	b := make([]byte, n)
	if _, err := copyUser(us, uva2, b, false); err != 0 {
		return 0, err
	}
	return bytes.Compare(a, b), 0
}
