package ports

import (
	"context"
	"time"
)

// CheckRequest defines a check run over the given roots. Empty Paths fall
// back to the configured scan paths.
type CheckRequest struct {
	Paths []string
}

// FileResult is the outcome of checking one file.
type FileResult struct {
	File                   string
	Namespace              string
	Aliases                int
	SkipDynamicOutputCheck bool
	Status                 string
	Err                    error
}

const (
	StatusOK                 = "ok"
	StatusSyntaxError        = "syntax_error"
	StatusMalformedNamespace = "malformed_namespace"
	StatusFailed             = "failed"
)

// CacheStats mirrors parse cache counters for driving adapters.
type CacheStats struct {
	MemoryHits    int64
	DiskHits      int64
	Misses        int64
	FormatErrors  int64
	MemoryEntries int
}

// ClassRef identifies a class declaration reported by a run.
type ClassRef struct {
	FQN        string
	File       string
	Line       int
	Parent     string
	Interfaces []string
}

// CheckResult summarizes a completed check run.
type CheckResult struct {
	RunID          string
	Files          []FileResult
	Checked        int
	Failed         int
	UnitsBuilt     int64
	Classes        int
	UnknownParents []ClassRef
	Cache          CacheStats
	Duration       time.Duration
}

// PruneResult reports a parse cache pruning pass.
type PruneResult struct {
	Scanned int
	Removed int
	Kept    int
}

// AnalysisService is the driving-port surface over check and resolve use cases.
type AnalysisService interface {
	Check(ctx context.Context, req CheckRequest) (CheckResult, error)
	Resolve(ctx context.Context, file, name string) (string, error)
	PruneCache(ctx context.Context) (PruneResult, error)
	// Classes lists the classes indexed by the last Check, or every
	// declaration of fqn when it is non-empty.
	Classes(ctx context.Context, fqn string) ([]ClassRef, error)
}
