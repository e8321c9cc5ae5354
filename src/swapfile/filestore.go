package swapfile

import (
	"fmt"
	"os"
)

// FileStore wraps an *os.File as a Store, pre-extending it to the
// required capacity so ReadAt never sees a short file for a page that
// was never written to.
type FileStore struct {
	f *os.File
}

// Open opens (creating if necessary) path as a swap file and ensures
// it is at least capacity bytes long.
func Open(path string, capacity int64) (*FileStore, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0600)
	if err != nil {
		return nil, fmt.Errorf("swapfile: open %s: %w", path, err)
	}
	if err := f.Truncate(capacity); err != nil {
		f.Close()
		return nil, fmt.Errorf("swapfile: truncate %s: %w", path, err)
	}
	return &FileStore{f: f}, nil
}

// ReadAt implements Store.
func (fs *FileStore) ReadAt(p []byte, off int64) (int, error) {
	return fs.f.ReadAt(p, off)
}

// WriteAt implements Store.
func (fs *FileStore) WriteAt(p []byte, off int64) (int, error) {
	return fs.f.WriteAt(p, off)
}

// Close releases the underlying file descriptor.
func (fs *FileStore) Close() error {
	return fs.f.Close()
}

// diskStore adapts a Store into the Disk request protocol, completing
// every request synchronously before acking it. It is the default Disk
// the memory manager uses when the caller doesn't inject a fake for
// latency simulation.
type diskStore struct {
	store Store
}

// NewDisk wraps store so it can be driven through the Disk interface.
func NewDisk(store Store) Disk {
	return &diskStore{store: store}
}

func (d *diskStore) Start(req *Request) {
	var err error
	switch req.Cmd {
	case CmdRead:
		_, err = d.store.ReadAt(req.Buf, req.Off)
	case CmdWrite:
		_, err = d.store.WriteAt(req.Buf, req.Off)
	default:
		err = fmt.Errorf("swapfile: unknown command %v", req.Cmd)
	}
	req.AckCh <- err
}
