package extractor

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"sfe/internal/logging"
	"sfe/internal/worker"
)

// Dispatcher selects and runs an extraction strategy for one URL,
// implementing the Content Extractor contract (§4.3): content-type
// detection, strategy dispatch, per-invocation timeout wrapping that stops
// the fallback chain on timeout, and common post-processing. Grounded on
// the teacher's Dispatcher, generalized from hostname-based source
// routing to the fixed {HTML_STRUCTURAL, HOSTED_CRAWLER, PDF_PARSER}
// contract.
type Dispatcher struct {
	client  *http.Client
	html    *htmlExtractor
	pdf     *pdfExtractor
	hosted  *hostedCrawlerExtractor
	hasHosted bool
}

func NewDispatcher(client *http.Client, pool *worker.Pool, hostedBaseURL, hostedAPIKey string) *Dispatcher {
	return &Dispatcher{
		client:    client,
		html:      newHTMLExtractor(client),
		pdf:       newPDFExtractor(client, pool),
		hosted:    newHostedCrawlerExtractor(client, hostedBaseURL, hostedAPIKey),
		hasHosted: hostedAPIKey != "",
	}
}

// Extract implements the Content Extractor contract.
func (d *Dispatcher) Extract(ctx context.Context, rawURL string, opts Options) Outcome {
	start := time.Now()

	ctype, probeBody := detectContentType(ctx, d.client, rawURL)

	var methods []Method
	if ctype == ContentTypePDF {
		methods = []Method{MethodPDFParser}
		if opts.AllowFallback {
			if d.hasHosted {
				methods = append(methods, MethodHostedCrawler)
			}
			methods = append(methods, MethodHTMLStructural)
		}
	} else {
		methods = []Method{MethodHTMLStructural}
		if opts.AllowFallback && d.hasHosted {
			methods = append(methods, MethodHostedCrawler)
		}
	}

	var lastErr error
	var lastTimeout bool
	lastMethod := methods[0]
	for _, method := range methods {
		lastMethod = method

		var content, title string
		var metadata map[string]string
		var err error
		var timedOut bool
		if method == MethodHTMLStructural && probeBody != nil {
			title, content, err = d.html.extractFromContent(rawURL, probeBody)
		} else {
			content, title, metadata, err, timedOut = d.runWithTimeout(ctx, method, rawURL, opts)
		}
		if err == nil {
			return d.finish(start, method, ctype == ContentTypePDF, title, content, metadata, opts)
		}
		lastErr = err
		lastTimeout = timedOut
		logging.Attempt("extractor", "strategy_failed", "url", rawURL, "method", string(method), "error", err.Error(), "timeout", timedOut)
		if timedOut {
			// on timeout, stop the chain immediately (open question resolved
			// in DESIGN.md: do not consume the remaining fallback chain).
			break
		}
	}

	return Outcome{
		Success:          false,
		ExtractionMethod: lastMethod,
		IsPDF:            ctype == ContentTypePDF,
		Error:            errString(lastErr),
		FailureType:      classifyFailure(lastErr, lastTimeout),
		IsTimeout:        lastTimeout,
		ElapsedMS:        time.Since(start).Milliseconds(),
	}
}

// runWithTimeout wraps a single extractor invocation in opts.SingleURLTimeout,
// running it on its own goroutine so the caller is released at the
// deadline even when the underlying call hangs (e.g. colly with no
// internal timeout). That goroutine is not stopped: it runs until the
// underlying call returns and its result is discarded.
func (d *Dispatcher) runWithTimeout(ctx context.Context, method Method, rawURL string, opts Options) (content, title string, metadata map[string]string, err error, timedOut bool) {
	timeout := opts.SingleURLTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type result struct {
		content, title string
		metadata       map[string]string
		err            error
	}
	done := make(chan result, 1)

	go func() {
		var r result
		switch method {
		case MethodHTMLStructural:
			r.title, r.content, r.err = d.html.extract(rawURL)
		case MethodPDFParser:
			r.title, r.content, r.metadata, r.err = d.pdf.extract(callCtx, rawURL)
		case MethodHostedCrawler:
			r.content, r.metadata, r.err = d.hosted.extract(callCtx, rawURL)
		default:
			r.err = fmt.Errorf("unknown extraction method %q", method)
		}
		done <- r
	}()

	select {
	case r := <-done:
		return r.content, r.title, r.metadata, r.err, false
	case <-callCtx.Done():
		return "", "", nil, fmt.Errorf("extraction timed out after %s", timeout), true
	}
}

func (d *Dispatcher) finish(start time.Time, method Method, isPDF bool, title, content string, metadata map[string]string, opts Options) Outcome {
	if content == "" {
		return Outcome{
			Success:          false,
			ExtractionMethod: method,
			IsPDF:            isPDF,
			Error:            "extraction produced no content",
			FailureType:      FailureParseError,
			ElapsedMS:        time.Since(start).Milliseconds(),
		}
	}

	truncated := false
	if t, did := truncateToTokens(content, opts.MaxContentTokens); did {
		content = t
		truncated = true
	}
	if t, did := truncateToBytes(content, opts.MaxContentBytes); did {
		content = t
		truncated = true
	}

	if metadata == nil {
		metadata = map[string]string{}
	}
	if title != "" {
		metadata["title"] = title
	}

	return Outcome{
		Success:          true,
		Content:          content,
		ContentLength:    len(content),
		EstimatedTokens:  estimateTokens(content),
		IsTruncated:      truncated,
		ExtractionMethod: method,
		IsPDF:            isPDF,
		Confidence:       1.0,
		ElapsedMS:        time.Since(start).Milliseconds(),
		Metadata:         metadata,
	}
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
