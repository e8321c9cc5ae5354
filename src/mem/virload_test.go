package mem

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestVirLoadUnalignedSpanRoundTrips writes content starting at a
// non-page-aligned offset that spans three virtual pages (the
// first-chunk, staged, and tail phases all fire with a small enough
// page count), then checks every byte lands in the expected virtual
// page at the expected in-page offset.
func TestVirLoadUnalignedSpanRoundTrips(t *testing.T) {
	m, _ := newTestManager(t, 4) // NumVirtPages == 8

	prcAddr := testPageSize/2 + 3 // unaligned, well inside page 0
	numBytes := 2*testPageSize + 7 // spans pages 0, 1, and 2

	image := make([]byte, numBytes)
	for i := range image {
		image[i] = byte(i % 251)
	}

	prcPT, ok := m.StartVirLoad(3)
	require.True(t, ok)

	m.VirLoad(prcPT, prcAddr, bytes.NewReader(image), numBytes, 0)
	m.Load(0, prcPT, 3)

	read := make([]byte, numBytes)
	pageOff := prcAddr % testPageSize
	logicalPage := prcAddr / testPageSize
	done := 0
	for done < numBytes {
		content, resident := m.ReadResident(prcPT[logicalPage])
		require.True(t, resident)
		n := testPageSize - pageOff
		if numBytes-done < n {
			n = numBytes - done
		}
		copy(read[done:done+n], content[pageOff:pageOff+n])
		done += n
		logicalPage++
		pageOff = 0
	}

	require.Equal(t, image, read)
}

// TestVirLoadZeroBytesIsANoop guards the numBytes == 0 early return:
// it must not touch the swap file or panic on an empty page table.
func TestVirLoadZeroBytesIsANoop(t *testing.T) {
	m, _ := newTestManager(t, 2)
	prcPT, ok := m.StartVirLoad(1)
	require.True(t, ok)

	require.NotPanics(t, func() {
		m.VirLoad(prcPT, 0, bytes.NewReader(nil), 0, 0)
	})
}
