package kernel

// Config collects the tunables that used to be compile-time constants,
// in a single-struct-of-limits idiom (limits.Syslimit_t), so the demo
// driver and tests can exercise more than one machine size.
type Config struct {
	// PageSize is the byte size of a physical frame and a virtual page.
	PageSize int
	// NumPhysPages is the number of physical frames; NumVirtPages is
	// always 2*NumPhysPages.
	NumPhysPages int
	// MailboxSize is the number of slots a new mailbox is given.
	MailboxSize int
	// SwapFilePath is where the swap file store is opened. An empty
	// path means "use an in-memory store", which tests rely on to avoid
	// touching the filesystem.
	SwapFilePath string
}

// DefaultConfig returns a small reference machine size: PageSize=128,
// NumPhysPages=4.
func DefaultConfig() Config {
	return Config{
		PageSize:     128,
		NumPhysPages: 4,
		MailboxSize:  4,
		SwapFilePath: "",
	}
}

// NumVirtPages reports the configured virtual address space size.
func (c Config) NumVirtPages() int {
	return 2 * c.NumPhysPages
}
