package cache

import "time"

// FileStamp is the "last modified" fingerprint of a single input file
type FileStamp struct {
	ModTimeNanos int64 `json:"mtime_ns"`
	Size         int64 `json:"size"`
}

// Record maps an observed input file set to the output file set a
// previous successful run produced
type Record struct {
	Namespace   string               `json:"namespace"`
	Fingerprint string               `json:"fingerprint"`
	Inputs      map[string]FileStamp `json:"inputs"`
	Outputs     []string             `json:"outputs"`
	CreatedAt   time.Time            `json:"created_at"`
}

// Stats reports store hit/miss counters
type Stats struct {
	Hits   int64
	Misses int64
}
