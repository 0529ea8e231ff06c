package extractor

import (
	"bytes"
	"context"
	"fmt"
	"net/http"

	jsoniter "github.com/json-iterator/go"

	"sfe/internal/logging"
)

var hostedJSON = jsoniter.ConfigCompatibleWithStandardLibrary

// hostedCrawlerExtractor requests main-content Markdown from an external
// hosted-crawler service (a FireCrawl-shaped scrape endpoint), grounded on
// original_source's firecrawl_client.py usage pattern (the teacher has no
// analogue; this is a new component per SPEC_FULL §13).
type hostedCrawlerExtractor struct {
	client  *http.Client
	baseURL string
	apiKey  string
}

func newHostedCrawlerExtractor(client *http.Client, baseURL, apiKey string) *hostedCrawlerExtractor {
	return &hostedCrawlerExtractor{client: client, baseURL: baseURL, apiKey: apiKey}
}

type hostedCrawlerRequest struct {
	URL              string `json:"url"`
	Formats          []string `json:"formats"`
	OnlyMainContent  bool   `json:"onlyMainContent"`
}

type hostedCrawlerResponse struct {
	Success bool `json:"success"`
	Data    struct {
		Markdown string            `json:"markdown"`
		Metadata map[string]string `json:"metadata"`
	} `json:"data"`
	Error string `json:"error"`
}

// extract normalizes the hosted service's response to {content, metadata}
// regardless of the provider's native SDK shape.
func (e *hostedCrawlerExtractor) extract(ctx context.Context, rawURL string) (content string, metadata map[string]string, err error) {
	if e.apiKey == "" {
		return "", nil, fmt.Errorf("hosted crawler not configured")
	}

	payload, err := hostedJSON.Marshal(hostedCrawlerRequest{
		URL:             rawURL,
		Formats:         []string{"markdown"},
		OnlyMainContent: true,
	})
	if err != nil {
		return "", nil, fmt.Errorf("failed to encode hosted crawler request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL, bytes.NewReader(payload))
	if err != nil {
		return "", nil, fmt.Errorf("failed to build hosted crawler request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.apiKey)

	resp, err := e.client.Do(req)
	if err != nil {
		return "", nil, fmt.Errorf("hosted crawler request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", nil, fmt.Errorf("hosted crawler returned status %s", resp.Status)
	}

	var parsed hostedCrawlerResponse
	if err := hostedJSON.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", nil, fmt.Errorf("failed to decode hosted crawler response: %w", err)
	}
	if !parsed.Success {
		return "", nil, fmt.Errorf("hosted crawler error: %s", parsed.Error)
	}

	logging.Attempt("extractor", "hosted_crawler_done", "url", rawURL, "chars", len(parsed.Data.Markdown))
	return normalizeWhitespace(parsed.Data.Markdown), parsed.Data.Metadata, nil
}
