// Package orchestrator implements SearchAndFetch (§4.1): parses the
// request, runs one or more SERP queries with bounded concurrency,
// launches per-URL fetch tasks with a second bounded-concurrency gate,
// enforces nested timeouts, records failures, and assembles the response.
// Grounded on the teacher's internal/api/handlers.go worker-pool fan-out
// pattern for the per-URL fetch stage, and on anatolykoptev-go_job's
// internal/engine/pipeline.go for the parallel-query / per-query-timeout /
// merge shape (the teacher itself has no parallel-query concept).
package orchestrator

import (
	"errors"
	"time"

	"sfe/internal/extractor"
)

// Mode selects LIGHT (snippets only) or FULL (fetch + extract) operation.
type Mode string

const (
	ModeLight Mode = "light"
	ModeFull  Mode = "full"
)

// Errors surfaced at the top level, per §7's taxonomy. Per-URL failures
// never appear here — they're carried inside Result.
var (
	ErrInvalidRequest = errors.New("invalid_request")
	ErrCancelled      = errors.New("cancelled")
	ErrSerpUnavailable = errors.New("serp_unavailable")
)

// Request is the SearchRequest entity.
type Request struct {
	RawQuery   string
	NumResults int
	Mode       Mode
	Options    map[string]string
}

// Result is the EnhancedResult entity: a SerpResult merged with a
// FetchOutcome.
type Result struct {
	URL         string
	Title       string
	Snippet     string
	Position    int
	SearchIndex int

	FetchSuccess     bool
	FetchReason      string
	Content          string
	ContentLength    int
	EstimatedTokens  int
	IsTruncated      bool
	ExtractionMethod extractor.Method
	IsPDF            bool
	IsSerpFallback   bool
	SkipReason       string
	Confidence       float64
	FetchError       string
	IsTimeout        bool
	Metadata         map[string]string
}

// QueryDetail is one entry of Statistics.QueryDetails.
type QueryDetail struct {
	Query        string
	QueryIndex   int
	Success      bool
	ResultsCount int
	Error        string
}

// Statistics is the Statistics entity.
type Statistics struct {
	TotalResults   int
	AutoFetched    int
	FetchSuccess   int
	PDFCount       int
	SearchElapsed  time.Duration
	FetchElapsed   time.Duration
	TotalElapsed   time.Duration

	TotalQueries      int
	SuccessfulQueries int
	QueryDetails      []QueryDetail
}

// Response is the top-level SearchAndFetch return value.
type Response struct {
	Success         bool
	Query           string
	Mode            Mode
	SearchType      string // "single" | "parallel"
	ParallelQueries []string
	Results         []Result
	Statistics      Statistics
	RequestID       string
	ErrorKind       string
}
