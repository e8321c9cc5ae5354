package mem

import (
	"fmt"
	"io"

	"swapfile"
	"util"
)

// VirLoad copies numBytes bytes from file at offset position into the
// virtual-memory image of the process described by prcPT, starting at
// logical byte offset prcAddr. It writes only to the swap file — the
// home of every virtual page regardless of residency — and never
// touches the frame bitmap or any translation entry.
//
// prcAddr need not be page-aligned. The first transfer covers only the
// remainder of its starting page; a four-page staging buffer then
// amortizes file reads across aligned runs; a final page-by-page tail
// handles what's left. Deliberately tracked with an explicit loaded
// counter throughout, never a reused loop induction variable — reusing
// one across these three phases is an easy way to silently drop or
// duplicate bytes at a phase boundary.
func (m *Manager) VirLoad(prcPT []int, prcAddr int, file io.ReaderAt, numBytes int, position int64) {
	if numBytes == 0 {
		return
	}

	logicalPage := prcAddr / m.pageSize
	pageOff := prcAddr % m.pageSize
	loaded := 0

	first := util.Min(numBytes, m.pageSize-pageOff)
	m.virLoadChunk(prcPT[logicalPage], pageOff, file, position+int64(loaded), first)
	loaded += first
	logicalPage++

	const stageCount = 4
	stage := make([]byte, stageCount*m.pageSize)
	for numBytes-loaded >= len(stage) {
		n, err := file.ReadAt(stage, position+int64(loaded))
		if (err != nil && err != io.EOF) || n != len(stage) {
			panic(fmt.Sprintf("mem: fatal short read staging VirLoad at %d: got %d want %d (%v)", position+int64(loaded), n, len(stage), err))
		}
		for k := 0; k < stageCount; k++ {
			v := prcPT[logicalPage+k]
			m.writeSwap(v, 0, stage[k*m.pageSize:(k+1)*m.pageSize])
		}
		loaded += len(stage)
		logicalPage += stageCount
	}

	for numBytes-loaded > 0 {
		n := util.Min(numBytes-loaded, m.pageSize)
		m.virLoadChunk(prcPT[logicalPage], 0, file, position+int64(loaded), n)
		loaded += n
		logicalPage++
	}
}

// virLoadChunk reads n bytes from file at fileOff into the swap slot
// for virtual page v at byte offset pageOff within that page.
func (m *Manager) virLoadChunk(v, pageOff int, file io.ReaderAt, fileOff int64, n int) {
	buf := make([]byte, n)
	rn, err := file.ReadAt(buf, fileOff)
	if (err != nil && err != io.EOF) || rn != n {
		panic(fmt.Sprintf("mem: fatal short read in VirLoad at %d: got %d want %d (%v)", fileOff, rn, n, err))
	}
	m.writeSwap(v, pageOff, buf)
}

// writeSwap writes buf into virtual page v's swap image starting at
// byte offset pageOff within that page. A short write is fatal.
func (m *Manager) writeSwap(v, pageOff int, buf []byte) {
	off := int64(v)*int64(m.pageSize) + int64(pageOff)
	req := &swapfile.Request{Cmd: swapfile.CmdWrite, Buf: buf, Off: off, AckCh: make(chan error, 1)}
	m.disk.Start(req)
	if err := <-req.AckCh; err != nil {
		m.log.Fatal().Err(err).Int("virtualPage", v).Msg("VirLoad swap write failed")
		panic(fmt.Sprintf("mem: fatal swap write of virtual page %d: %v", v, err))
	}
}
