package syscalls

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"defs"
	"kernel"
)

func newTestAddressSpace(t *testing.T, numPages int) (*kernel.Context, *AddressSpace, *Process) {
	t.Helper()
	cfg := kernel.DefaultConfig()
	ctx, err := kernel.New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { ctx.Close() })

	pt, ok := ctx.Mem.StartVirLoad(numPages)
	require.True(t, ok)
	ctx.Mem.Load(0, pt, numPages)

	p := &Process{Id: 0, PT: pt, NumPages: numPages}
	return ctx, &AddressSpace{Sim: ctx.Sim, P: p}, p
}

func TestReadThenWriteRoundTrips(t *testing.T) {
	_, us, _ := newTestAddressSpace(t, 1)

	payload := []byte("round trip me")
	n, err := Read(us, 0, len(payload), bytes.NewReader(payload))
	require.Equal(t, defs.Err_t(0), err)
	require.Equal(t, len(payload), n)

	var out bytes.Buffer
	n, err = Write(us, 0, len(payload), &out)
	require.Equal(t, defs.Err_t(0), err)
	require.Equal(t, len(payload), n)
	require.Equal(t, payload, out.Bytes())
}

func TestStrncmpComparesDistinctAddresses(t *testing.T) {
	ctx, us, p := newTestAddressSpace(t, 1)
	te := ctx.Mem.PageTable()[p.PT[0]]
	frame := ctx.Sim.Frame(te.PhysicalPage)
	copy(frame[0:], "exit\x00")
	copy(frame[16:], "exit\x00")
	copy(frame[32:], "quit\x00")

	cmp, err := Strncmp(us, 0, 16, 4)
	require.Equal(t, defs.Err_t(0), err)
	require.Equal(t, 0, cmp)

	cmp, err = Strncmp(us, 0, 32, 4)
	require.Equal(t, defs.Err_t(0), err)
	require.NotEqual(t, 0, cmp)
}

func TestExecThenJoinReleasesVirtualMemory(t *testing.T) {
	ctx, us, _ := newTestAddressSpace(t, 1)

	image := make([]byte, ctx.Config.PageSize)
	for i := range image {
		image[i] = 0x42
	}

	before := ctx.Mem.FindFreeFrame()
	proc, err := Exec(ctx, us, 0, 7, bytes.NewReader(image), len(image), 1)
	require.Equal(t, defs.Err_t(0), err)
	require.Equal(t, 7, proc.Id)

	content, resident := ctx.Mem.ReadResident(proc.PT[0])
	require.True(t, resident)
	require.Equal(t, byte(0x42), content[0])

	Join(ctx, proc)
	after := ctx.Mem.FindFreeFrame()
	require.Equal(t, before, after, "Join must give back the frame Exec took")
}
