package kernel

import (
	"os"

	"github.com/rs/zerolog"

	"mailbox"
	"mem"
	"sched"
	"swapfile"
)

// Context is the explicit collaborator set used in place of a global
// kernel pointer (scheduler, interrupt controller, file system,
// current thread all reached through a single mutable global in the
// source this was distilled from): every operation that needs the
// scheduler, the mailbox registry, or the memory manager takes a
// *Context rather than reaching for a package global.
type Context struct {
	Config Config
	Log    zerolog.Logger

	Sim       *Simulator
	Mem       *mem.Manager
	Mailboxes *mailbox.Registry
	Sched     *sched.Scheduler

	swapCloser func() error
}

// New builds a fully wired Context from cfg: it opens (or fabricates,
// if cfg.SwapFilePath is empty) the swap store, constructs the
// simulator and memory manager, mounts the manager's page table into
// the simulator, and wires up the scheduler and mailbox registry.
func New(cfg Config) (*Context, error) {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	sim := NewSimulator(cfg.PageSize, cfg.NumPhysPages)

	capacity := int64(cfg.NumVirtPages()) * int64(cfg.PageSize)
	var store swapfile.Store
	var closer func() error
	if cfg.SwapFilePath == "" {
		store = swapfile.NewMemStore(capacity)
	} else {
		fs, err := swapfile.Open(cfg.SwapFilePath, capacity)
		if err != nil {
			return nil, err
		}
		store = fs
		closer = fs.Close
	}
	disk := swapfile.NewDisk(store)

	manager := mem.NewManager(cfg.PageSize, cfg.NumPhysPages, sim, disk, log)
	sim.Mount(manager.PageTable())

	sc := sched.NewScheduler()

	return &Context{
		Config:     cfg,
		Log:        log,
		Sim:        sim,
		Mem:        manager,
		Mailboxes:  mailbox.NewRegistry(sc),
		Sched:      sc,
		swapCloser: closer,
	}, nil
}

// Close releases any resources the Context opened (currently, a real
// swap file, if one was used).
func (c *Context) Close() error {
	if c.swapCloser != nil {
		return c.swapCloser()
	}
	return nil
}
