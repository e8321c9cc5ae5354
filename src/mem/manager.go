package mem

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"swapfile"
	"util"
)

// Manager is the demand-paged virtual memory manager: it owns the
// physical-frame bitmap, the virtual-page bitmap, the global
// translation-entry table, and a handle to the swap file, grounded on
// the Physmem_t allocator (mem/mem.go) but reworked from a
// real-memory allocator into the page-table/swap-backed manager this
// repository's core is about.
type Manager struct {
	mu sync.Mutex

	pageSize     int
	numPhysPages int
	numVirtPages int

	frameBitmap util.Bitset_t
	virtBitmap  util.Bitset_t
	pageTable   []TranslationEntry

	phys PhysMem
	disk swapfile.Disk

	log zerolog.Logger
}

// NewManager constructs a Manager for a machine with numPhysPages
// frames of pageSize bytes each, backed by disk for swap I/O and phys
// for frame access. numVirtPages is fixed at 2*numPhysPages.
func NewManager(pageSize, numPhysPages int, phys PhysMem, disk swapfile.Disk, log zerolog.Logger) *Manager {
	numVirtPages := 2 * numPhysPages
	m := &Manager{
		pageSize:     pageSize,
		numPhysPages: numPhysPages,
		numVirtPages: numVirtPages,
		frameBitmap:  util.MkBitset(numPhysPages),
		virtBitmap:   util.MkBitset(numVirtPages),
		pageTable:    make([]TranslationEntry, numVirtPages),
		phys:         phys,
		disk:         disk,
		log:          log,
	}
	for v := range m.pageTable {
		m.pageTable[v].VirtualPage = v
	}
	return m
}

// PageTable returns the live translation-entry slice. The simulator
// mounts this slice once at startup; mutations the manager makes
// through index assignment remain visible to every holder, realizing a
// non-owning-borrow relationship without either side owning the other.
func (m *Manager) PageTable() []TranslationEntry {
	return m.pageTable
}

// PageSize reports the manager's configured page size.
func (m *Manager) PageSize() int { return m.pageSize }

// NumPhysPages reports the number of physical frames.
func (m *Manager) NumPhysPages() int { return m.numPhysPages }

// NumVirtPages reports the number of virtual pages (2*NumPhysPages).
func (m *Manager) NumVirtPages() int { return m.numVirtPages }

// StartVirLoad scans the virtual-page bitmap for pageNum free pages and
// reserves them for a new process, returning its page table. It returns
// ok=false and makes no state change if pageNum exceeds NumVirtPages or
// fewer than pageNum virtual pages are free.
func (m *Manager) StartVirLoad(pageNum int) (prcPT []int, ok bool) {
	if pageNum < 0 || pageNum > m.numVirtPages {
		return nil, false
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	found := make([]int, 0, pageNum)
	for v := 0; v < m.numVirtPages && len(found) < pageNum; v++ {
		if !m.virtBitmap.IsSet(v) {
			found = append(found, v)
		}
	}
	if len(found) < pageNum {
		return nil, false
	}
	for _, v := range found {
		m.virtBitmap.Set(v)
	}
	return found, true
}

// VirRelease releases the first length virtual pages of prcPT: any
// resident frame is freed, and every virtual page is returned to the
// free pool. prcPT is cleared to sentinel -1 entries, standing in for
// the original's outright destruction of the process page table — Go
// callers must drop their own reference afterward.
func (m *Manager) VirRelease(prcPT []int, length int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := 0; i < length; i++ {
		v := prcPT[i]
		te := &m.pageTable[v]
		if te.Valid {
			m.frameBitmap.Clear(te.PhysicalPage)
			te.Valid = false
		}
		m.virtBitmap.Clear(v)
		prcPT[i] = -1
	}
}

// Load brings up to min(num, NumPhysPages) consecutive process pages,
// starting at startPrcPage, into physical frames, and returns the
// count actually loaded.
func (m *Manager) Load(startPrcPage int, prcPT []int, num int) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := util.Min(num, m.numPhysPages)
	loaded := 0
	for i := 0; i < n; i++ {
		v := prcPT[startPrcPage+i]
		frame := m.findFreeFrame()
		if frame == m.numPhysPages {
			frame = m.replaceFrame()
		}
		buf := m.phys.Frame(frame)
		m.swapIn(v, buf)

		m.frameBitmap.Set(frame)
		ro := m.pageTable[v].ReadOnly
		m.pageTable[v] = TranslationEntry{
			VirtualPage:  v,
			PhysicalPage: frame,
			Valid:        true,
			Use:          false,
			Dirty:        false,
			ReadOnly:     ro,
		}
		loaded++
	}
	return loaded
}

// FindFreeFrame returns the lowest-index frame whose bitmap bit is
// clear, or NumPhysPages if every frame is reserved.
func (m *Manager) FindFreeFrame() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.findFreeFrame()
}

func (m *Manager) findFreeFrame() int {
	i := m.frameBitmap.FindClear(m.numPhysPages)
	if i < 0 {
		return m.numPhysPages
	}
	return i
}

// Touch simulates the machine simulator setting the reference bit on
// access to resident virtual page v.
func (m *Manager) Touch(v int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pageTable[v].Valid {
		m.pageTable[v].Use = true
	}
}

// TouchWrite simulates a store to resident virtual page v, setting
// both the reference and dirty bits.
func (m *Manager) TouchWrite(v int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pageTable[v].Valid {
		m.pageTable[v].Use = true
		m.pageTable[v].Dirty = true
	}
}

// ReadResident copies out the current frame contents of virtual page v
// if it is resident.
func (m *Manager) ReadResident(v int) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	te := m.pageTable[v]
	if !te.Valid {
		return nil, false
	}
	src := m.phys.Frame(te.PhysicalPage)
	out := make([]byte, len(src))
	copy(out, src)
	return out, true
}

// swapIn reads virtual page v's home image from swap into buf, which
// must be exactly PageSize bytes. A short read or I/O error is fatal:
// swap I/O failure is treated as an assertion, not a recoverable
// condition.
func (m *Manager) swapIn(v int, buf []byte) {
	off := int64(v) * int64(m.pageSize)
	req := &swapfile.Request{Cmd: swapfile.CmdRead, Buf: buf, Off: off, AckCh: make(chan error, 1)}
	m.disk.Start(req)
	if err := <-req.AckCh; err != nil {
		m.log.Fatal().Err(err).Int("virtualPage", v).Msg("swap read failed")
		panic(fmt.Sprintf("mem: fatal swap read of virtual page %d: %v", v, err))
	}
}

// swapOut writes buf (exactly PageSize bytes) back to virtual page v's
// home offset in swap.
func (m *Manager) swapOut(v int, buf []byte) {
	off := int64(v) * int64(m.pageSize)
	req := &swapfile.Request{Cmd: swapfile.CmdWrite, Buf: buf, Off: off, AckCh: make(chan error, 1)}
	m.disk.Start(req)
	if err := <-req.AckCh; err != nil {
		m.log.Fatal().Err(err).Int("virtualPage", v).Msg("swap write-back failed")
		panic(fmt.Sprintf("mem: fatal swap write-back of virtual page %d: %v", v, err))
	}
}
