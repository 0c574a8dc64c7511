package workload

import (
	"fmt"

	"github.com/BurntSushi/toml"

	"github.com/llxisdsh/hashagg"
)

// Distribution names accepted by Config.
const (
	Uniform = "uniform"
	Zipf    = "zipf"
)

// Config describes one benchmark session: a set of key domains, each
// aggregated by every listed strategy.
type Config struct {
	// Tuples is the number of rows generated per domain.
	Tuples int `toml:"tuples"`
	// DistinctLog2 lists the key domains as powers of two.
	DistinctLog2 []int `toml:"distinct_log2"`
	// Distribution is "uniform" or "zipf".
	Distribution string `toml:"distribution"`
	// ZipfS is the zipf exponent, > 1.
	ZipfS float64 `toml:"zipf_s"`
	Seed  uint64  `toml:"seed"`
	// Threads is the worker count; zero means GOMAXPROCS.
	Threads    int      `toml:"threads"`
	Strategies []string `toml:"strategies"`
	// LocalMaxCapacity bounds each worker's private table (plat, localglobal).
	LocalMaxCapacity int  `toml:"local_max_capacity"`
	Verify           bool `toml:"verify"`

	LogFile  string `toml:"log_file"`
	LogLevel string `toml:"log_level"`
}

// DefaultConfig mirrors the reference sweep at a laptop-friendly scale.
func DefaultConfig() Config {
	return Config{
		Tuples:           1 << 24,
		DistinctLog2:     []int{24, 22, 20, 18, 16, 14, 12, 10, 8, 6, 4, 2},
		Distribution:     Uniform,
		ZipfS:            1.1,
		Threads:          8,
		Strategies:       []string{"independent", "global", "plat", "localglobal"},
		LocalMaxCapacity: 1 << 16,
		Verify:           true,
		LogLevel:         "info",
	}
}

// LoadConfig reads a TOML file over the defaults. An empty path returns the
// defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("workload: decode %s: %w", path, err)
		}
	}
	return cfg, cfg.Validate()
}

// Validate checks the config and resolves strategy names.
func (c *Config) Validate() error {
	if c.Tuples < 0 {
		return fmt.Errorf("workload: negative tuples %d", c.Tuples)
	}
	for _, d := range c.DistinctLog2 {
		if d < 0 || d > 40 {
			return fmt.Errorf("workload: distinct_log2 %d out of range", d)
		}
	}
	switch c.Distribution {
	case Uniform:
	case Zipf:
		if c.ZipfS <= 1 {
			return fmt.Errorf("workload: zipf_s must be > 1, got %v", c.ZipfS)
		}
	default:
		return fmt.Errorf("workload: unknown distribution %q", c.Distribution)
	}
	if c.Threads < 0 {
		return fmt.Errorf("workload: negative threads %d", c.Threads)
	}
	_, err := c.ParsedStrategies()
	return err
}

// ParsedStrategies resolves the strategy names.
func (c *Config) ParsedStrategies() ([]hashagg.Strategy, error) {
	out := make([]hashagg.Strategy, 0, len(c.Strategies))
	for _, name := range c.Strategies {
		s, err := hashagg.ParseStrategy(name)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}
