package orchestrator

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"

	"sfe/internal/extractor"
	"sfe/internal/logging"
	"sfe/internal/serp"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Orchestrator implements SearchAndFetch.
type Orchestrator struct {
	cfg       Config
	serpClient SerpClient
	extractor  ContentExtractor
	memory     FailureMemory
	newRequestID func() string

	cache    ResultCache
	cacheTTL time.Duration
}

// New builds an Orchestrator from its three collaborators.
func New(cfg Config, serpClient SerpClient, contentExtractor ContentExtractor, memory FailureMemory, requestIDFunc func() string) *Orchestrator {
	return &Orchestrator{
		cfg:          cfg,
		serpClient:   serpClient,
		extractor:    contentExtractor,
		memory:       memory,
		newRequestID: requestIDFunc,
	}
}

// WithResultCache attaches an optional extraction-result cache, consulted
// ahead of the failure-memory check on every fetch. Disabled (nil cache)
// by default.
func (o *Orchestrator) WithResultCache(c ResultCache, ttl time.Duration) *Orchestrator {
	o.cache = c
	o.cacheTTL = ttl
	return o
}

// SearchAndFetch is the public contract: turn a Request into a Response
// under strict time, concurrency and memory budgets.
func (o *Orchestrator) SearchAndFetch(ctx context.Context, req Request) (Response, error) {
	start := time.Now()

	if req.NumResults < 1 {
		return Response{ErrorKind: "invalid_request"}, fmt.Errorf("%w: num_results must be >= 1", ErrInvalidRequest)
	}
	if req.Mode != ModeLight && req.Mode != ModeFull {
		return Response{ErrorKind: "invalid_request"}, fmt.Errorf("%w: unknown mode %q", ErrInvalidRequest, req.Mode)
	}

	queries := ParseQueries(req.RawQuery)
	if len(queries) == 0 {
		return Response{ErrorKind: "invalid_request"}, fmt.Errorf("%w: grammar produced zero queries", ErrInvalidRequest)
	}

	searchType := "single"
	var parallelQueries []string
	if len(queries) > 1 {
		searchType = "parallel"
		parallelQueries = queries
	}

	resp := Response{
		Success:         true,
		Query:           req.RawQuery,
		Mode:            req.Mode,
		SearchType:      searchType,
		ParallelQueries: parallelQueries,
		RequestID:       o.newRequestID(),
	}

	searchStart := time.Now()
	perQuery, stats := o.runQueries(ctx, queries, req)
	resp.Statistics = stats
	resp.Statistics.SearchElapsed = time.Since(searchStart)

	if stats.SuccessfulQueries == 0 {
		resp.Success = false
		resp.ErrorKind = "serp_unavailable"
		resp.Statistics.TotalElapsed = time.Since(start)
		return resp, fmt.Errorf("%w: all %d queries failed", ErrSerpUnavailable, stats.TotalQueries)
	}

	results := make([]Result, 0, req.NumResults)
	for qi, hits := range perQuery {
		for _, hit := range hits {
			results = append(results, Result{
				URL:         hit.URL,
				Title:       hit.Title,
				Snippet:     hit.Snippet,
				Position:    hit.Position,
				SearchIndex: qi,
			})
		}
	}

	if req.Mode == ModeLight {
		for i := range results {
			results[i].FetchSuccess = false
			results[i].FetchReason = "light_mode"
			results[i].Content = results[i].Snippet
			results[i].ExtractionMethod = extractor.MethodSnippetOnly
		}
	} else {
		fetchStart := time.Now()
		o.runFetches(ctx, results, perQuery, req.NumResults)
		resp.Statistics.FetchElapsed = time.Since(fetchStart)
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].SearchIndex != results[j].SearchIndex {
			return results[i].SearchIndex < results[j].SearchIndex
		}
		return results[i].Position < results[j].Position
	})

	resp.Results = results
	resp.Statistics.TotalResults = len(results)
	for _, r := range results {
		if r.ExtractionMethod != extractor.MethodSnippetOnly && r.ExtractionMethod != "" {
			resp.Statistics.AutoFetched++
		}
		if r.FetchSuccess {
			resp.Statistics.FetchSuccess++
		}
		if r.IsPDF {
			resp.Statistics.PDFCount++
		}
	}
	resp.Statistics.TotalElapsed = time.Since(start)

	return resp, nil
}

// runQueries executes each query under N_Q-bounded concurrency and a
// per-query timeout, returning results grouped by search_index plus the
// aggregate Statistics (minus fetch-stage fields).
func (o *Orchestrator) runQueries(ctx context.Context, queries []string, req Request) ([][]serp.Result, Statistics) {
	nq := o.cfg.MaxConcurrentQueries
	if nq > len(queries) {
		nq = len(queries)
	}
	if nq < 1 {
		nq = 1
	}
	queryTimeout := o.cfg.QueryTimeoutLight
	if req.Mode == ModeFull {
		queryTimeout = o.cfg.QueryTimeoutFull
	}

	sem := make(chan struct{}, nq)
	var wg sync.WaitGroup
	perQuery := make([][]serp.Result, len(queries))
	details := make([]QueryDetail, len(queries))

	for i, q := range queries {
		wg.Add(1)
		sem <- struct{}{}
		go func(idx int, query string) {
			defer wg.Done()
			defer func() { <-sem }()

			qCtx, cancel := context.WithTimeout(ctx, queryTimeout)
			defer cancel()

			opts := serp.Options{NumResults: req.NumResults}
			hits, err := o.serpClient.Search(qCtx, query, opts)
			if err != nil {
				details[idx] = QueryDetail{Query: query, QueryIndex: idx, Success: false, Error: err.Error()}
				logging.Attempt("orchestrator", "query_failed", "query", query, "error", err.Error())
				return
			}
			perQuery[idx] = hits
			details[idx] = QueryDetail{Query: query, QueryIndex: idx, Success: true, ResultsCount: len(hits)}
		}(i, q)
	}
	wg.Wait()

	stats := Statistics{TotalQueries: len(queries), QueryDetails: details}
	for _, d := range details {
		if d.Success {
			stats.SuccessfulQueries++
		}
	}
	return perQuery, stats
}

// runFetches implements step 5: for the top auto_fetch_limit results of
// each query, launch fetch tasks under the N_U semaphore; results beyond
// the limit get the snippet fallback.
func (o *Orchestrator) runFetches(ctx context.Context, results []Result, perQuery [][]serp.Result, numResults int) {
	limit := o.cfg.AutoFetchLimit
	perQueryFetchCount := make(map[int]int)

	toFetch := make([]int, 0, len(results))
	for i := range results {
		qi := results[i].SearchIndex
		if perQueryFetchCount[qi] >= limit {
			results[i].FetchSuccess = false
			results[i].FetchReason = "exceeded_auto_fetch_limit"
			results[i].Content = results[i].Snippet
			results[i].ExtractionMethod = extractor.MethodSnippetOnly
			continue
		}
		if o.cfg.RelevanceGate && relevanceScore(results[i].Position) <= relevanceFloor {
			results[i].FetchSuccess = false
			results[i].FetchReason = "low_relevance"
			results[i].Content = results[i].Snippet
			results[i].ExtractionMethod = extractor.MethodSnippetOnly
			continue
		}
		perQueryFetchCount[qi]++
		toFetch = append(toFetch, i)
	}

	if len(toFetch) == 0 {
		return
	}

	batchCtx, cancel := context.WithTimeout(ctx, o.cfg.FetchBatchTimeout)
	defer cancel()

	nu := fetchConcurrency(o.cfg.MaxConcurrentFetch, numResults, len(perQuery))
	sem := make(chan struct{}, nu)
	var wg sync.WaitGroup

	for _, idx := range toFetch {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()
			o.fetchOne(batchCtx, &results[i])
		}(idx)
	}
	wg.Wait()

	for _, idx := range toFetch {
		if batchCtx.Err() != nil && !results[idx].FetchSuccess && results[idx].Content == "" {
			results[idx].FetchSuccess = false
			results[idx].FetchError = "cancelled"
			results[idx].Content = results[idx].Snippet
			results[idx].ExtractionMethod = extractor.MethodSnippetOnly
		}
	}
}

// fetchOne implements the failure-memory check, extraction, and
// post-extraction recording for one URL.
func (o *Orchestrator) fetchOne(batchCtx context.Context, r *Result) {
	host := hostOf(r.URL)

	if o.cache != nil {
		if cached, hit := o.cachedOutcome(batchCtx, r.URL); hit {
			o.applyOutcome(r, cached)
			return
		}
	}

	if o.cfg.EnableFailureLearning && host != "" {
		decision := o.memory.ShouldSkip(host)
		if decision.ShouldSkip {
			r.FetchSuccess = true
			r.IsSerpFallback = true
			r.SkipReason = decision.Reason
			r.Confidence = decision.Confidence
			r.ExtractionMethod = extractor.MethodSerpFallback
			r.Content = formatSnippet(r.Title, r.Snippet, r.URL)
			r.ContentLength = len(r.Content)
			return
		}
	}

	opts := extractor.Options{
		AllowFallback:    true,
		IncludeMetadata:  true,
		MaxContentBytes:  o.cfg.MaxContentBytes,
		MaxContentTokens: o.cfg.MaxContentTokens,
		SingleURLTimeout: o.cfg.SingleURLTimeout,
	}
	outcome := o.extractor.Extract(batchCtx, r.URL, opts)
	if outcome.Success && strings.TrimSpace(outcome.Content) == "" {
		outcome.Success = false
		outcome.FailureType = extractor.FailureParseError
		outcome.Error = "extracted content was empty"
	}

	abortedByBatch := batchCtx.Err() != nil
	if o.cfg.EnableFailureLearning && host != "" && !abortedByBatch {
		if outcome.Success {
			o.memory.RecordSuccess(host)
		} else {
			o.memory.RecordFailure(host, outcome.FailureType)
		}
	}
	if outcome.Success && o.cache != nil && !abortedByBatch {
		o.storeOutcome(batchCtx, r.URL, outcome)
	}

	o.applyOutcome(r, outcome)
}

// applyOutcome maps an extraction Outcome onto a Result, including the
// serp-fallback path for failed or empty extractions.
func (o *Orchestrator) applyOutcome(r *Result, outcome extractor.Outcome) {
	r.IsPDF = outcome.IsPDF
	r.ExtractionMethod = outcome.ExtractionMethod
	r.IsTimeout = outcome.IsTimeout

	if outcome.Success && strings.TrimSpace(outcome.Content) != "" {
		r.FetchSuccess = true
		r.Content = outcome.Content
		r.ContentLength = outcome.ContentLength
		r.EstimatedTokens = outcome.EstimatedTokens
		r.IsTruncated = outcome.IsTruncated
		r.Metadata = outcome.Metadata
		return
	}

	// empty content after extraction is treated as a PARSE_ERROR failure.
	r.FetchError = outcome.Error
	if outcome.Success && strings.TrimSpace(outcome.Content) == "" {
		r.FetchError = "extracted content was empty"
	}
	r.IsSerpFallback = true
	r.ExtractionMethod = extractor.MethodSerpFallbackAfterFailure
	if strings.TrimSpace(r.Snippet) == "" {
		// no snippet to substitute: not serp-fallback-eligible, report failure.
		r.FetchSuccess = false
		r.Content = ""
		r.ContentLength = 0
		return
	}
	r.FetchSuccess = true
	r.Content = formatSnippet(r.Title, r.Snippet, r.URL)
	r.ContentLength = len(r.Content)
}

func (o *Orchestrator) cachedOutcome(ctx context.Context, rawURL string) (extractor.Outcome, bool) {
	raw, hit := o.cache.Get(ctx, "extract:"+rawURL)
	if !hit {
		return extractor.Outcome{}, false
	}
	var outcome extractor.Outcome
	if err := json.Unmarshal(raw, &outcome); err != nil {
		logging.Attempt("orchestrator", "cache_decode_failed", "url", rawURL, "error", err.Error())
		return extractor.Outcome{}, false
	}
	return outcome, true
}

func (o *Orchestrator) storeOutcome(ctx context.Context, rawURL string, outcome extractor.Outcome) {
	raw, err := json.Marshal(outcome)
	if err != nil {
		logging.Attempt("orchestrator", "cache_encode_failed", "url", rawURL, "error", err.Error())
		return
	}
	o.cache.Set(ctx, "extract:"+rawURL, raw, o.cacheTTL)
}

// fetchConcurrency implements the N_U sizing rule: K = num_results // Q
// (floored, minimum 1), then N_U = min(N_U_max, K). Q is the number of
// queries that contributed to this fetch batch.
func fetchConcurrency(maxConcurrentFetch, numResults, q int) int {
	if q < 1 {
		q = 1
	}
	k := numResults / q
	if k < 1 {
		k = 1
	}
	nu := maxConcurrentFetch
	if k < nu {
		nu = k
	}
	if nu < 1 {
		nu = 1
	}
	return nu
}

// relevanceFloor matches the original implementation's needs_crawl
// threshold (relevance_score > 0.7).
const relevanceFloor = 0.7

// relevanceScore derives a position-based relevance score, 1-indexed:
// position 1 scores 1.0, dropping by 0.1 per rank, floored at 0.
func relevanceScore(position int) float64 {
	score := 1.0 - float64(position-1)*0.1
	if score < 0 {
		return 0
	}
	return score
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Hostname()
}
