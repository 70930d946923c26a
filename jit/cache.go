package jit

import (
	"sync"

	"github.com/axp64/alpha-emulator/vm"
)

// cacheEntry is one address's promotion state: how many times it has
// executed with the currently cached Fields, and its compiled block
// once promoted past the configured threshold.
type cacheEntry struct {
	fields vm.Fields
	hits   int
	block  *executableBlock
}

// Cache tracks per-PC execution counts and compiled native blocks for
// the config-driven JIT promotion path (config.Config.Execution.
// JITThreshold). A PC whose decoded Fields differ from the cached ones
// - self-modifying code, or an overlay reusing the address - starts a
// fresh, unpromoted entry rather than running stale compiled code.
type Cache struct {
	mu      sync.Mutex
	entries map[uint64]*cacheEntry
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[uint64]*cacheEntry)}
}

// Touch records one more execution of the instruction at pc decoded as
// f. It returns the already-compiled block for (pc, f), if any, along
// with the post-increment hit count so the caller can compare it
// against JITThreshold when no block exists yet.
func (c *Cache) Touch(pc uint64, f vm.Fields) (*executableBlock, int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[pc]
	if !ok || e.fields != f {
		e = &cacheEntry{fields: f}
		c.entries[pc] = e
	}
	e.hits++
	return e.block, e.hits
}

// Store records the compiled block for (pc, f), making it the result of
// future Touch calls until the Fields decoded at pc change again.
func (c *Cache) Store(pc uint64, f vm.Fields, block *executableBlock) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[pc]
	if !ok || e.fields != f {
		e = &cacheEntry{fields: f}
		c.entries[pc] = e
	}
	e.block = block
}
