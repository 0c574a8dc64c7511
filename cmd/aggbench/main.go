// Command aggbench runs the aggregation strategies over generated key
// columns and prints a JSON report.
package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/llxisdsh/hashagg/internal/workload"
)

var configFile = flag.String("config", "", "TOML run configuration")

func main() {
	flag.Parse()
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := workload.LoadConfig(*configFile)
	if err != nil {
		return err
	}
	log, err := workload.NewLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	log.Info("aggbench starting",
		zap.Int("tuples", cfg.Tuples),
		zap.Ints("distinct_log2", cfg.DistinctLog2),
		zap.Strings("strategies", cfg.Strategies),
		zap.Int("threads", cfg.Threads))

	report, err := workload.Run(cfg, log)
	if err != nil {
		return err
	}
	out, err := report.JSON()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(os.Stdout, string(out))
	return err
}
