package hashagg

import (
	"go.uber.org/zap"
)

// ============================================================================
// Configuration
// ============================================================================

// Config holds the options shared by tables and the Aggregator.
// Tables read only the fields relevant to them.
type Config struct {
	// hasher maps keys to probe origins. IdentityHash when nil.
	hasher Hasher

	// capacity is the initial slot count of growable tables.
	// Rounded up to a power of two; defaultCapacity when zero.
	capacity int

	// maxCapacity caps the growth of a BoundedTable. Rounded up to a
	// power of two and never below capacity.
	maxCapacity int

	// probeLimit is the number of probing steps a BoundedTable tries
	// before reporting overflow.
	probeLimit int

	// threads is the worker count of an Aggregator run.
	threads int

	// globalCapacity sizes the shared LockedTable of the global strategy.
	// Planned from a cardinality estimate when zero.
	globalCapacity int

	logger *zap.Logger
}

// WithCapacity sets the initial slot count of growable tables.
// If cap is zero or negative, the value is ignored.
func WithCapacity(cap int) func(*Config) {
	return func(c *Config) {
		c.capacity = cap
	}
}

// WithMaxCapacity bounds the growth of each BoundedTable, i.e. the private
// memory footprint of a worker in the plat and localglobal strategies.
func WithMaxCapacity(cap int) func(*Config) {
	return func(c *Config) {
		c.maxCapacity = cap
	}
}

// WithProbeLimit sets how many probing steps a BoundedTable attempts before
// a Put overflows.
func WithProbeLimit(steps int) func(*Config) {
	return func(c *Config) {
		c.probeLimit = steps
	}
}

// WithHasher sets the key hash function. Pass nil to use IdentityHash.
//
// Usage:
//
//	t := NewTable[int64, int64](Sum[int64], WithHasher(MixHash))
func WithHasher(h Hasher) func(*Config) {
	return func(c *Config) {
		c.hasher = h
	}
}

// WithThreads sets the number of workers of an Aggregator.
func WithThreads(n int) func(*Config) {
	return func(c *Config) {
		c.threads = n
	}
}

// WithGlobalCapacity provisions the shared LockedTable of the global
// strategy. The table never grows, so it must hold every distinct key.
func WithGlobalCapacity(cap int) func(*Config) {
	return func(c *Config) {
		c.globalCapacity = cap
	}
}

// WithLogger sets the logger used for phase diagnostics.
func WithLogger(l *zap.Logger) func(*Config) {
	return func(c *Config) {
		c.logger = l
	}
}

func newConfig(options []func(*Config)) *Config {
	var cfg Config
	for _, o := range options {
		o(&cfg)
	}
	cfg.normalize()
	return &cfg
}

func (c *Config) normalize() {
	if c.hasher == nil {
		c.hasher = IdentityHash
	}
	if c.capacity <= 0 {
		c.capacity = defaultCapacity
	}
	c.capacity = nextPowOf2(c.capacity)
	if c.maxCapacity <= 0 {
		c.maxCapacity = defaultMaxCapacity
	}
	c.maxCapacity = max(nextPowOf2(c.maxCapacity), c.capacity)
	if c.probeLimit <= 0 {
		c.probeLimit = defaultProbeLimit
	}
	if c.globalCapacity > 0 {
		c.globalCapacity = nextPowOf2(c.globalCapacity)
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
}
