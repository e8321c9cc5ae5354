// Package swapfile provides the random-access byte store backing
// virtual pages, and the disk-request idiom used to simulate I/O
// latency in tests, grounded on the Bdev_block_t/Disk_i pair
// (fs/blk.go) — a cached block wraps a Disk_i that Starts a request and
// acks it on a channel. Swap pages have no cache here (the memory
// manager is the cache), so only the Disk_i half of that idiom survives,
// repurposed as the Disk interface below.
package swapfile

import "io"

// Store is the random-access byte store the swap file needs: any
// value wide enough to hold NumVirtPages*PageSize bytes and
// addressable by ReadAt/WriteAt. *os.File satisfies it directly.
type Store interface {
	io.ReaderAt
	io.WriterAt
}

// Bdevcmd_t enumerates the kinds of request Disk.Start accepts,
// matching the BDEV_READ/BDEV_WRITE constants it is grounded on.
type Bdevcmd_t int

const (
	CmdRead  Bdevcmd_t = 1
	CmdWrite Bdevcmd_t = 2
)

// Request describes one swap I/O, grounded on Bdev_req_t: a command,
// the buffer, the byte offset, and an ack channel the issuer waits on
// for completion.
type Request struct {
	Cmd   Bdevcmd_t
	Buf   []byte
	Off   int64
	AckCh chan error
}

// Disk is implemented by whatever services swap I/O requests. The
// production Store-backed implementation below completes requests
// synchronously; tests can inject a fake that defers the ack to
// simulate suspension, exercising the path where a thread may suspend
// during swap I/O.
type Disk interface {
	Start(*Request)
}
