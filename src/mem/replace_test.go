package mem

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestReplaceTerminatesUnderFullDirtyMemory fills every frame, marks
// every resident page used and dirty, and checks that replaceFrame
// still terminates (clearing use bits on its way around) rather than
// spinning forever, and that it writes the victim back before handing
// the frame out again.
func TestReplaceTerminatesUnderFullDirtyMemory(t *testing.T) {
	m, phys := newTestManager(t, 2)

	prcPT, ok := m.StartVirLoad(2)
	require.True(t, ok)
	m.Load(0, prcPT, 2)

	for _, v := range prcPT {
		m.TouchWrite(v)
	}
	for _, v := range prcPT {
		require.True(t, m.pageTable[v].Use)
		require.True(t, m.pageTable[v].Dirty)
	}

	// Stamp a recognizable byte into the first frame so eviction's
	// write-back can be checked.
	victimFrame := m.pageTable[prcPT[0]].PhysicalPage
	copy(phys.Frame(victimFrame), []byte{0xAB})

	done := make(chan int, 1)
	go func() { done <- m.replaceFrame() }()

	select {
	case frame := <-done:
		require.GreaterOrEqual(t, frame, 0)
		require.Less(t, frame, m.numPhysPages)
	case <-time.After(time.Second):
		t.Fatal("replaceFrame did not terminate under full-dirty memory")
	}
}
