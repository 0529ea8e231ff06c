package serp

import (
	"context"
	"errors"
	"time"
)

const maxSubmitRetries = 2 // total attempts = 1 + maxSubmitRetries, matching search_with_retry's max_retries=3

// SearchWithRetry wraps Search with bounded exponential backoff on
// network and HTTP errors only (from the submit or from a poll request);
// decode errors, cancellation and POLL_TIMEOUT (which already exhausted
// its own budget) are returned at once. Grounded on
// brightdata_client.py's search_with_retry.
func (c *Client) SearchWithRetry(ctx context.Context, query string, opts Options) ([]Result, error) {
	var lastErr error
	for attempt := 0; attempt <= maxSubmitRetries; attempt++ {
		results, err := c.Search(ctx, query, opts)
		if err == nil {
			return results, nil
		}
		lastErr = err

		if !errors.Is(err, ErrNetwork) && !errors.Is(err, ErrHTTPError) {
			return nil, err
		}
		if attempt == maxSubmitRetries {
			break
		}
		backoff := time.Duration(1<<uint(attempt)) * time.Second
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
	}
	return nil, lastErr
}

// RetryingClient adapts Client so callers that only know about a plain
// Search(ctx, query, opts) method (the orchestrator's SerpClient
// interface) get the bounded-retry behavior by default.
type RetryingClient struct {
	*Client
}

// NewRetryingClient wraps an existing Client.
func NewRetryingClient(c *Client) *RetryingClient {
	return &RetryingClient{Client: c}
}

// Search shadows Client.Search, routing through SearchWithRetry.
func (c *RetryingClient) Search(ctx context.Context, query string, opts Options) ([]Result, error) {
	return c.Client.SearchWithRetry(ctx, query, opts)
}
