package workload

import (
	"time"

	"github.com/sugawarayuuta/sonnet"
)

// Row is one strategy run over one key domain.
type Row struct {
	Strategy     string        `json:"strategy"`
	DistinctLog2 int           `json:"distinct_log2"`
	Threads      int           `json:"threads"`
	Cardinality  int           `json:"cardinality"`
	Partitions   int           `json:"partitions"`
	Overflows    int           `json:"overflows"`
	Flushes      int           `json:"flushes"`
	Capacity     int           `json:"capacity"`
	Elapsed      time.Duration `json:"elapsed_ns"`
	Verified     bool          `json:"verified"`
}

// Report collects the rows of a session.
type Report struct {
	Tuples       int    `json:"tuples"`
	Distribution string `json:"distribution"`
	Rows         []Row  `json:"rows"`
}

// JSON encodes the report.
func (r *Report) JSON() ([]byte, error) {
	return sonnet.Marshal(r)
}
