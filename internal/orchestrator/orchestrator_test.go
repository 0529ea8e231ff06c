package orchestrator

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sfe/internal/extractor"
	"sfe/internal/failuremem"
	"sfe/internal/serp"
)

type mockSerp struct {
	byQuery map[string][]serp.Result
	errByQuery map[string]error
}

func (m *mockSerp) Search(_ context.Context, query string, _ serp.Options) ([]serp.Result, error) {
	if err, ok := m.errByQuery[query]; ok {
		return nil, err
	}
	return m.byQuery[query], nil
}

type mockExtractor struct {
	outcomeByURL map[string]extractor.Outcome
}

func (m *mockExtractor) Extract(_ context.Context, url string, _ extractor.Options) extractor.Outcome {
	if o, ok := m.outcomeByURL[url]; ok {
		return o
	}
	return extractor.Outcome{Success: false, Error: "no mock configured"}
}

func newFixedID(id string) func() string {
	return func() string { return id }
}

func TestSingleLight(t *testing.T) {
	hits := []serp.Result{
		{Position: 1, URL: "https://a.test", Title: "A", Snippet: "snippet a"},
		{Position: 2, URL: "https://b.test", Title: "B", Snippet: "snippet b"},
		{Position: 3, URL: "https://c.test", Title: "C", Snippet: "snippet c"},
	}
	o := New(DefaultConfig(),
		&mockSerp{byQuery: map[string][]serp.Result{"Python asyncio tutorial": hits}},
		&mockExtractor{},
		failuremem.New(0.7, 30, true),
		newFixedID("req-1"))

	resp, err := o.SearchAndFetch(context.Background(), Request{
		RawQuery: "<search>Python asyncio tutorial</search>", NumResults: 3, Mode: ModeLight,
	})
	require.NoError(t, err)
	assert.Equal(t, "single", resp.SearchType)
	assert.Equal(t, ModeLight, resp.Mode)
	require.Len(t, resp.Results, 3)
	for i, r := range resp.Results {
		assert.False(t, r.FetchSuccess)
		assert.Equal(t, "light_mode", r.FetchReason)
		assert.Equal(t, hits[i].Snippet, r.Content)
	}
	assert.Equal(t, 0, resp.Statistics.AutoFetched)
}

func TestSingleFullAllSucceed(t *testing.T) {
	hits := []serp.Result{
		{Position: 1, URL: "https://a.test", Title: "A", Snippet: "snip a"},
		{Position: 2, URL: "https://b.test", Title: "B", Snippet: "snip b"},
		{Position: 3, URL: "https://c.test", Title: "C", Snippet: "snip c"},
	}
	outcomes := map[string]extractor.Outcome{
		"https://a.test": {Success: true, Content: "x", ContentLength: 500, ExtractionMethod: extractor.MethodHTMLStructural},
		"https://b.test": {Success: true, Content: "y", ContentLength: 700, ExtractionMethod: extractor.MethodHTMLStructural},
		"https://c.test": {Success: true, Content: "z", ContentLength: 900, ExtractionMethod: extractor.MethodHTMLStructural},
	}
	o := New(DefaultConfig(),
		&mockSerp{byQuery: map[string][]serp.Result{"LangGraph": hits}},
		&mockExtractor{outcomeByURL: outcomes},
		failuremem.New(0.7, 30, true),
		newFixedID("req-2"))

	resp, err := o.SearchAndFetch(context.Background(), Request{RawQuery: "LangGraph", NumResults: 3, Mode: ModeFull})
	require.NoError(t, err)
	require.Len(t, resp.Results, 3)
	for _, r := range resp.Results {
		assert.True(t, r.FetchSuccess)
		assert.False(t, r.IsTruncated)
	}
	assert.Equal(t, 3, resp.Statistics.FetchSuccess)
}

func TestParallelMixedOutcomes(t *testing.T) {
	bySerp := map[string][]serp.Result{
		"A": {{Position: 1, URL: "https://a1.test"}, {Position: 2, URL: "https://a2.test"}},
		"C": {{Position: 1, URL: "https://c1.test"}, {Position: 2, URL: "https://c2.test"}},
	}
	errs := map[string]error{"B": errors.New("serp error")}

	o := New(DefaultConfig(),
		&mockSerp{byQuery: bySerp, errByQuery: errs},
		&mockExtractor{},
		failuremem.New(0.7, 30, true),
		newFixedID("req-3"))

	resp, err := o.SearchAndFetch(context.Background(), Request{RawQuery: "<search>A|B|C</search>", NumResults: 6, Mode: ModeLight})
	require.NoError(t, err)
	assert.Equal(t, "parallel", resp.SearchType)
	assert.Equal(t, []string{"A", "B", "C"}, resp.ParallelQueries)
	assert.Len(t, resp.Results, 4)
	assert.Equal(t, 3, resp.Statistics.TotalQueries)
	assert.Equal(t, 2, resp.Statistics.SuccessfulQueries)
	assert.True(t, resp.Success)
}

func TestAllQueriesFailReturnsSerpUnavailable(t *testing.T) {
	errs := map[string]error{"A": errors.New("e1"), "B": errors.New("e2"), "C": errors.New("e3")}
	o := New(DefaultConfig(),
		&mockSerp{errByQuery: errs},
		&mockExtractor{},
		failuremem.New(0.7, 30, true),
		newFixedID("req-4"))

	resp, err := o.SearchAndFetch(context.Background(), Request{RawQuery: "<search>A|B|C</search>", NumResults: 3, Mode: ModeLight})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSerpUnavailable)
	assert.False(t, resp.Success)
	assert.Len(t, resp.Statistics.QueryDetails, 3)
}

func TestInvalidModeRejected(t *testing.T) {
	o := New(DefaultConfig(), &mockSerp{}, &mockExtractor{}, failuremem.New(0.7, 30, true), newFixedID("req-5"))
	_, err := o.SearchAndFetch(context.Background(), Request{RawQuery: "q", NumResults: 1, Mode: "bogus"})
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestEmptyGrammarRejected(t *testing.T) {
	o := New(DefaultConfig(), &mockSerp{}, &mockExtractor{}, failuremem.New(0.7, 30, true), newFixedID("req-6"))
	_, err := o.SearchAndFetch(context.Background(), Request{RawQuery: "   ", NumResults: 1, Mode: ModeLight})
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestFailureMemoryConvergesToSkip(t *testing.T) {
	mem := failuremem.New(0.7, 30, true)
	host := "flaky.test"
	for i := 0; i < 3; i++ {
		mem.RecordFailure(host, extractor.FailureHTTP403)
	}

	hits := []serp.Result{{Position: 1, URL: "https://flaky.test/page", Title: "T", Snippet: "hello"}}
	calls := 0
	ext := &countingExtractor{calls: &calls}

	o := New(DefaultConfig(),
		&mockSerp{byQuery: map[string][]serp.Result{"q": hits}},
		ext, mem, newFixedID("req-7"))

	resp, err := o.SearchAndFetch(context.Background(), Request{RawQuery: "q", NumResults: 1, Mode: ModeFull})
	require.NoError(t, err)
	require.Len(t, resp.Results, 1)
	assert.True(t, resp.Results[0].IsSerpFallback)
	assert.Contains(t, resp.Results[0].Content, "hello")
	assert.Equal(t, 0, calls, "extractor must not be invoked once the host is skip-decided")
}

func TestRelevanceGateSkipsLowRankedResults(t *testing.T) {
	hits := []serp.Result{
		{Position: 1, URL: "https://a.test", Title: "A", Snippet: "snip a"},
		{Position: 5, URL: "https://e.test", Title: "E", Snippet: "snip e"},
	}
	calls := 0
	ext := &countingExtractor{calls: &calls}

	cfg := DefaultConfig()
	cfg.RelevanceGate = true
	cfg.AutoFetchLimit = 10

	o := New(cfg,
		&mockSerp{byQuery: map[string][]serp.Result{"q": hits}},
		ext, failuremem.New(0.7, 30, true), newFixedID("req-8"))

	resp, err := o.SearchAndFetch(context.Background(), Request{RawQuery: "q", NumResults: 2, Mode: ModeFull})
	require.NoError(t, err)
	require.Len(t, resp.Results, 2)

	byURL := map[string]Result{}
	for _, r := range resp.Results {
		byURL[r.URL] = r
	}
	assert.True(t, byURL["https://a.test"].FetchSuccess)
	assert.Equal(t, "low_relevance", byURL["https://e.test"].FetchReason)
	assert.Equal(t, 1, calls, "only the above-floor result should reach the extractor")
}

type countingExtractor struct {
	calls *int
}

func (c *countingExtractor) Extract(_ context.Context, _ string, _ extractor.Options) extractor.Outcome {
	*c.calls++
	return extractor.Outcome{Success: true, Content: "ignored"}
}
