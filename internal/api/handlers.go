// Package api exposes SFE's orchestrator over HTTP.
package api

import (
	"fmt"
	"net/http"
	"time"

	jsoniter "github.com/json-iterator/go"

	"sfe/internal/logging"
	"sfe/internal/orchestrator"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// SearchRequest is the POST /search wire payload.
type SearchRequest struct {
	Query      string `json:"query"`
	NumResults int    `json:"num_results"`
	Mode       string `json:"mode"`
}

// SearchResult is one entry of SearchResponse.Results.
type SearchResult struct {
	URL              string            `json:"url"`
	Title            string            `json:"title"`
	Snippet          string            `json:"snippet"`
	Position         int               `json:"position"`
	SearchIndex      int               `json:"search_index"`
	FetchSuccess     bool              `json:"fetch_success"`
	FetchReason      string            `json:"fetch_reason,omitempty"`
	Content          string            `json:"content"`
	ContentLength    int               `json:"content_length"`
	EstimatedTokens  int               `json:"estimated_tokens"`
	IsTruncated      bool              `json:"is_truncated"`
	ExtractionMethod string            `json:"extraction_method,omitempty"`
	IsPDF            bool              `json:"is_pdf"`
	IsSerpFallback   bool              `json:"is_serp_fallback"`
	SkipReason       string            `json:"skip_reason,omitempty"`
	Confidence       float64           `json:"confidence,omitempty"`
	FetchError       string            `json:"fetch_error,omitempty"`
	IsTimeout        bool              `json:"is_timeout"`
	Metadata         map[string]string `json:"metadata,omitempty"`
}

// QueryDetail mirrors orchestrator.QueryDetail on the wire.
type QueryDetail struct {
	Query        string `json:"query"`
	QueryIndex   int    `json:"query_index"`
	Success      bool   `json:"success"`
	ResultsCount int    `json:"results_count"`
	Error        string `json:"error,omitempty"`
}

// Statistics mirrors orchestrator.Statistics on the wire, with durations
// rendered as fractional seconds.
type Statistics struct {
	TotalResults      int           `json:"total_results"`
	AutoFetched       int           `json:"auto_fetched"`
	FetchSuccess      int           `json:"fetch_success"`
	PDFCount          int           `json:"pdf_count"`
	SearchElapsedSec  float64       `json:"search_elapsed"`
	FetchElapsedSec   float64       `json:"fetch_elapsed"`
	TotalElapsedSec   float64       `json:"total_elapsed"`
	TotalQueries      int           `json:"total_queries"`
	SuccessfulQueries int           `json:"successful_queries"`
	QueryDetails      []QueryDetail `json:"query_details,omitempty"`
}

// SearchResponse is the POST /search wire payload.
type SearchResponse struct {
	Success         bool           `json:"success"`
	Query           string         `json:"query"`
	Mode            string         `json:"mode"`
	SearchType      string         `json:"search_type"`
	ParallelQueries []string       `json:"parallel_queries,omitempty"`
	Results         []SearchResult `json:"results"`
	Statistics      Statistics     `json:"statistics"`
	RequestID       string         `json:"request_id"`
	Error           string         `json:"error,omitempty"`
}

// Handler holds the orchestrator dependency for the HTTP surface.
type Handler struct {
	Orchestrator *orchestrator.Orchestrator
}

// NewHandler builds a Handler.
func NewHandler(o *orchestrator.Orchestrator) *Handler {
	return &Handler{Orchestrator: o}
}

// HandleSearch implements POST /search.
func (h *Handler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "only POST is allowed", http.StatusMethodNotAllowed)
		return
	}

	var reqPayload SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&reqPayload); err != nil {
		http.Error(w, fmt.Sprintf("invalid request payload: %v", err), http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if reqPayload.Query == "" {
		http.Error(w, "query is required", http.StatusBadRequest)
		return
	}
	if reqPayload.NumResults <= 0 {
		reqPayload.NumResults = 10
	}
	mode := orchestrator.Mode(reqPayload.Mode)
	if mode == "" {
		mode = orchestrator.ModeFull
	}

	logging.Attempt("api", "search_request", "query", reqPayload.Query, "mode", string(mode))

	resp, err := h.Orchestrator.SearchAndFetch(r.Context(), orchestrator.Request{
		RawQuery:   reqPayload.Query,
		NumResults: reqPayload.NumResults,
		Mode:       mode,
	})

	status := http.StatusOK
	if err != nil {
		logging.Error("search failed: %v", err)
		switch resp.ErrorKind {
		case "invalid_request":
			status = http.StatusBadRequest
		case "serp_unavailable":
			status = http.StatusBadGateway
		default:
			status = http.StatusInternalServerError
		}
	}

	if r.Context().Err() != nil {
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if encErr := json.NewEncoder(w).Encode(toWireResponse(resp, err)); encErr != nil {
		logging.Error("error encoding search response: %v", encErr)
	}
}

// HandleHealth implements GET /health.
func HandleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `{"status":"healthy","timestamp":%q}`, time.Now().Format(time.RFC3339))
}

func toWireResponse(resp orchestrator.Response, err error) SearchResponse {
	out := SearchResponse{
		Success:         resp.Success,
		Query:           resp.Query,
		Mode:            string(resp.Mode),
		SearchType:      resp.SearchType,
		ParallelQueries: resp.ParallelQueries,
		RequestID:       resp.RequestID,
		Results:         make([]SearchResult, len(resp.Results)),
		Statistics: Statistics{
			TotalResults:      resp.Statistics.TotalResults,
			AutoFetched:       resp.Statistics.AutoFetched,
			FetchSuccess:      resp.Statistics.FetchSuccess,
			PDFCount:          resp.Statistics.PDFCount,
			SearchElapsedSec:  resp.Statistics.SearchElapsed.Seconds(),
			FetchElapsedSec:   resp.Statistics.FetchElapsed.Seconds(),
			TotalElapsedSec:   resp.Statistics.TotalElapsed.Seconds(),
			TotalQueries:      resp.Statistics.TotalQueries,
			SuccessfulQueries: resp.Statistics.SuccessfulQueries,
		},
	}
	if err != nil {
		out.Error = err.Error()
	}
	for _, d := range resp.Statistics.QueryDetails {
		out.Statistics.QueryDetails = append(out.Statistics.QueryDetails, QueryDetail{
			Query: d.Query, QueryIndex: d.QueryIndex, Success: d.Success,
			ResultsCount: d.ResultsCount, Error: d.Error,
		})
	}
	for i, r := range resp.Results {
		out.Results[i] = SearchResult{
			URL: r.URL, Title: r.Title, Snippet: r.Snippet, Position: r.Position,
			SearchIndex: r.SearchIndex, FetchSuccess: r.FetchSuccess, FetchReason: r.FetchReason,
			Content: r.Content, ContentLength: r.ContentLength, EstimatedTokens: r.EstimatedTokens,
			IsTruncated: r.IsTruncated, ExtractionMethod: string(r.ExtractionMethod), IsPDF: r.IsPDF,
			IsSerpFallback: r.IsSerpFallback, SkipReason: r.SkipReason, Confidence: r.Confidence,
			FetchError: r.FetchError, IsTimeout: r.IsTimeout, Metadata: r.Metadata,
		}
	}
	return out
}
