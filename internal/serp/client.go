package serp

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	jsoniter "github.com/json-iterator/go"

	"sfe/internal/httpx"
	"sfe/internal/logging"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Client talks to a BrightData-shaped async SERP provider: submit, then
// poll until ready.
type Client struct {
	httpClient *http.Client
	apiKey     string
	zone       string
	baseURL    string
	pollBudget func() (budgetSeconds int)
}

// NewClient builds a SERP client. pollBudgetSeconds is fixed at
// construction: the pollBudget closure returns that captured value, so a
// different budget needs a new client.
func NewClient(httpClient *http.Client, apiKey, zone, baseURL string, pollBudgetSeconds int) *Client {
	return &Client{
		httpClient: httpClient,
		apiKey:     apiKey,
		zone:       zone,
		baseURL:    baseURL,
		pollBudget: func() int { return pollBudgetSeconds },
	}
}

type submitResponse struct {
	ResponseID string          `json:"response_id"`
	Organic    []organicItem   `json:"organic"`
	News       []newsItem      `json:"news"`
}

type organicItem struct {
	Link        string `json:"link"`
	Title       string `json:"title"`
	Description string `json:"description"`
	DisplayLink string `json:"display_link"`
	Date        string `json:"date"`
}

type newsItem struct {
	Link        string `json:"link"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Source      string `json:"source"`
	Date        string `json:"date"`
}

type submitRequest struct {
	Zone  string            `json:"zone"`
	URL   string            `json:"url"`
	Format string           `json:"format"`
}

// Search submits the query and polls until results are ready, returning
// the normalized organic+news result list.
func (c *Client) Search(ctx context.Context, query string, opts Options) ([]Result, error) {
	params := buildParams(query, opts)

	submitURL := c.buildSearchURL(params)
	body, err := json.Marshal(submitRequest{Zone: c.zone, URL: submitURL, Format: "json"})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("User-Agent", httpx.Random())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %v", ErrCancelled, ctx.Err())
		}
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: submit returned %s", ErrHTTPError, resp.Status)
	}

	var submitted submitResponse
	if err := json.NewDecoder(resp.Body).Decode(&submitted); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	if submitted.ResponseID == "" {
		// synchronous completion: provider returned the full result object.
		return normalize(submitted), nil
	}

	return c.poll(ctx, submitted.ResponseID)
}

func (c *Client) poll(ctx context.Context, responseID string) ([]Result, error) {
	budgetCtx, cancel := context.WithTimeout(ctx, time.Duration(c.pollBudget())*time.Second)
	defer cancel()

	for attempt := 1; attempt <= maxPollAttempts; attempt++ {
		result, ready, err := c.pollOnce(budgetCtx, responseID)
		if err != nil {
			return nil, err
		}
		if ready {
			return normalize(*result), nil
		}

		logging.Attempt("serp", "poll_not_ready", "response_id", responseID, "attempt", attempt)

		wait := waitForAttempt(attempt)
		select {
		case <-budgetCtx.Done():
			return nil, fmt.Errorf("%w after %d attempts", ErrPollTimeout, attempt)
		case <-time.After(wait):
		}
	}
	return nil, fmt.Errorf("%w: exceeded max poll attempts (%d)", ErrPollTimeout, maxPollAttempts)
}

func (c *Client) pollOnce(ctx context.Context, responseID string) (*submitResponse, bool, error) {
	pollCtx, cancel := context.WithTimeout(ctx, singlePollTimeout)
	defer cancel()

	pollURL := fmt.Sprintf("%s/result?zone=%s&response_id=%s", c.baseURL, url.QueryEscape(c.zone), url.QueryEscape(responseID))
	req, err := http.NewRequestWithContext(pollCtx, http.MethodGet, pollURL, nil)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if pollCtx.Err() != nil && ctx.Err() == nil {
			return nil, false, nil // this single poll's 5s timeout fired, budget has not: retry on schedule
		}
		if ctx.Err() != nil {
			return nil, false, nil // budget exhausted mid-request: let the poll loop's own select report ErrPollTimeout
		}
		return nil, false, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var parsed submitResponse
		if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
			return nil, false, fmt.Errorf("%w: %v", ErrDecode, err)
		}
		return &parsed, true, nil
	case http.StatusAccepted:
		return nil, false, nil
	default:
		return nil, false, fmt.Errorf("%w: poll returned %s", ErrHTTPError, resp.Status)
	}
}

func (c *Client) buildSearchURL(p queryParams) string {
	v := url.Values{}
	v.Set("q", p.Query)
	v.Set("num", fmt.Sprintf("%d", p.Num))
	if p.Start > 0 {
		v.Set("start", fmt.Sprintf("%d", p.Start))
	}
	if p.HL != "" {
		v.Set("hl", p.HL)
	}
	if p.GL != "" {
		v.Set("gl", p.GL)
	}
	if p.TBS != "" {
		v.Set("tbs", p.TBS)
	}
	if p.TBM != "" {
		v.Set("tbm", p.TBM)
	}
	if p.Mobile {
		v.Set("brd_mobile", "1")
	}
	v.Set("brd_json", "1")
	return "https://www.google.com/search?" + v.Encode()
}
