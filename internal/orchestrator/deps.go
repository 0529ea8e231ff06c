package orchestrator

import (
	"context"
	"time"

	"sfe/internal/extractor"
	"sfe/internal/failuremem"
	"sfe/internal/serp"
)

// SerpClient is the Orchestrator's view of the SERP Client component.
type SerpClient interface {
	Search(ctx context.Context, query string, opts serp.Options) ([]serp.Result, error)
}

// ContentExtractor is the Orchestrator's view of the Content Extractor
// component.
type ContentExtractor interface {
	Extract(ctx context.Context, url string, opts extractor.Options) extractor.Outcome
}

// FailureMemory is the Orchestrator's view of the smart-skip component.
type FailureMemory interface {
	ShouldSkip(host string) failuremem.Decision
	RecordSuccess(host string)
	RecordFailure(host string, kind extractor.FailureType)
}

// ResultCache is the Orchestrator's view of the extraction-result cache,
// consulted ahead of the failure-memory check so a previously-fetched URL
// never re-triggers extraction or a failure-memory write.
type ResultCache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
}

// Config holds the concurrency gates and timeout defaults from §5, all
// operator-tunable.
type Config struct {
	MaxConcurrentQueries int
	MaxConcurrentFetch   int
	AutoFetchLimit       int

	QueryTimeoutLight time.Duration
	QueryTimeoutFull  time.Duration
	FetchBatchTimeout time.Duration
	SingleURLTimeout  time.Duration

	MaxContentBytes  int
	MaxContentTokens int

	EnableFailureLearning bool
	RelevanceGate         bool
}

// DefaultConfig returns the specification's default values.
func DefaultConfig() Config {
	return Config{
		MaxConcurrentQueries: 3,
		MaxConcurrentFetch:   3,
		AutoFetchLimit:       3,
		QueryTimeoutLight:    60 * time.Second,
		QueryTimeoutFull:     120 * time.Second,
		FetchBatchTimeout:    30 * time.Second,
		SingleURLTimeout:     15 * time.Second,
		MaxContentBytes:      10_000,
		MaxContentTokens:     3_000,
		EnableFailureLearning: true,
		RelevanceGate:         false,
	}
}
