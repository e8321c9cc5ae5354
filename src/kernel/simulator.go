package kernel

import "mem"

// Simulator stands in for the machine simulator, an out-of-scope
// collaborator here: it owns the linear byte buffer backing all
// physical frames and holds a mounted pointer to the memory manager's
// translation-entry table. It never allocates or frees a frame itself —
// that is the manager's job — it only exposes the raw bytes.
type Simulator struct {
	Mem       []byte
	PageSize  int
	PageTable []mem.TranslationEntry

	userBase int
}

// NewSimulator allocates a machine with numPhysPages frames of
// pageSize bytes each.
func NewSimulator(pageSize, numPhysPages int) *Simulator {
	return &Simulator{
		Mem:      make([]byte, pageSize*numPhysPages),
		PageSize: pageSize,
	}
}

// Frame implements mem.PhysMem: it returns the byte slice backing
// physical frame i, aliasing the simulator's own buffer.
func (s *Simulator) Frame(i int) []byte {
	off := i * s.PageSize
	return s.Mem[off : off+s.PageSize]
}

// Mount installs table as the simulator's translation-entry source.
// table is a non-owning borrow: the manager that built it keeps
// ownership and continues to mutate it in place.
func (s *Simulator) Mount(table []mem.TranslationEntry) {
	s.PageTable = table
}

// Translate resolves a process-logical page index to the frame backing
// it, returning ok=false if that virtual page isn't currently resident.
func (s *Simulator) Translate(prcPT []int, logicalPage int) ([]byte, bool) {
	v := prcPT[logicalPage]
	te := s.PageTable[v]
	if !te.Valid {
		return nil, false
	}
	return s.Frame(te.PhysicalPage), true
}
