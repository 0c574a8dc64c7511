package workload

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/llxisdsh/hashagg"
)

// Run generates each key domain of cfg and aggregates it with every
// configured strategy, verifying the results when cfg.Verify is set.
func Run(cfg Config, log *zap.Logger) (*Report, error) {
	strategies, err := cfg.ParsedStrategies()
	if err != nil {
		return nil, err
	}
	agg := hashagg.NewSumAggregator[int64, int64](
		hashagg.WithThreads(cfg.Threads),
		hashagg.WithMaxCapacity(cfg.LocalMaxCapacity),
		hashagg.WithLogger(log),
	)

	report := &Report{Tuples: cfg.Tuples, Distribution: cfg.Distribution}
	for _, d := range cfg.DistinctLog2 {
		keys := Generate(cfg.Distribution, cfg.Tuples, uint64(1)<<d, cfg.ZipfS, cfg.Seed)
		for _, s := range strategies {
			res, err := agg.Run(s, keys, nil)
			if err != nil {
				return report, fmt.Errorf("workload: %s over 2^%d keys: %w", s, d, err)
			}
			st := res.Stats()
			row := Row{
				Strategy:     s.String(),
				DistinctLog2: d,
				Threads:      st.Threads,
				Cardinality:  res.Len(),
				Partitions:   st.Partitions,
				Overflows:    st.Overflows,
				Flushes:      st.Flushes,
				Capacity:     st.Capacity,
				Elapsed:      st.Elapsed,
			}
			if cfg.Verify {
				if err := Verify(keys, res); err != nil {
					return report, fmt.Errorf("workload: %s over 2^%d keys: %w", s, d, err)
				}
				row.Verified = true
			}
			log.Info("strategy finished",
				zap.String("strategy", row.Strategy),
				zap.Int("distinct_log2", d),
				zap.Int("cardinality", row.Cardinality),
				zap.Duration("elapsed", row.Elapsed))
			report.Rows = append(report.Rows, row)
		}
	}
	return report, nil
}
