package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sfe/internal/extractor"
	"sfe/internal/failuremem"
	"sfe/internal/orchestrator"
	"sfe/internal/serp"
)

type stubSerp struct{ hits []serp.Result }

func (s stubSerp) Search(_ context.Context, _ string, _ serp.Options) ([]serp.Result, error) {
	return s.hits, nil
}

type stubExtractor struct{}

func (stubExtractor) Extract(_ context.Context, _ string, _ extractor.Options) extractor.Outcome {
	return extractor.Outcome{Success: true, Content: "extracted body", ContentLength: 14}
}

func newTestHandler() *Handler {
	o := orchestrator.New(orchestrator.DefaultConfig(),
		stubSerp{hits: []serp.Result{{Position: 1, URL: "https://example.test", Title: "T", Snippet: "S"}}},
		stubExtractor{},
		failuremem.New(0.7, 30, true),
		func() string { return "req-test" })
	return NewHandler(o)
}

func TestHandleSearchLightMode(t *testing.T) {
	h := newTestHandler()
	body, _ := json.Marshal(SearchRequest{Query: "golang concurrency", NumResults: 1, Mode: "light"})
	req := httptest.NewRequest(http.MethodPost, "/search", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	h.HandleSearch(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp SearchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "light", resp.Mode)
	require.Len(t, resp.Results, 1)
	assert.False(t, resp.Results[0].FetchSuccess)
	assert.Equal(t, "req-test", resp.RequestID)
}

func TestHandleSearchDefaultsModeToFull(t *testing.T) {
	h := newTestHandler()
	body, _ := json.Marshal(SearchRequest{Query: "golang concurrency", NumResults: 1})
	req := httptest.NewRequest(http.MethodPost, "/search", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	h.HandleSearch(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp SearchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "full", resp.Mode)
	require.Len(t, resp.Results, 1)
	assert.True(t, resp.Results[0].FetchSuccess)
	assert.Equal(t, "extracted body", resp.Results[0].Content)
}

func TestHandleSearchRejectsEmptyQuery(t *testing.T) {
	h := newTestHandler()
	body, _ := json.Marshal(SearchRequest{Query: "", NumResults: 1})
	req := httptest.NewRequest(http.MethodPost, "/search", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	h.HandleSearch(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleSearchRejectsNonPost(t *testing.T) {
	h := newTestHandler()
	req := httptest.NewRequest(http.MethodGet, "/search", nil)
	rec := httptest.NewRecorder()

	h.HandleSearch(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHandleHealth(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()

	HandleHealth(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"healthy"`)
}
