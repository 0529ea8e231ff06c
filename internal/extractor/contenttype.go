package extractor

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"sfe/internal/httpx"
	"sfe/internal/logging"
)

// maxProbeBodyBytes bounds how much of the content-type probe's response
// body is read into memory for reuse by the HTML extractor.
const maxProbeBodyBytes = 10 << 20 // 10MiB

// detectContentType implements the content-type-detection step: URL path
// heuristic first, then a bounded GET probe inspecting Content-Type and,
// failing that, sniffing the body. The probe's body is read fully and
// returned so the HTML extractor can parse it directly instead of issuing
// a second GET for the same page. Grounded on the teacher's
// Dispatcher.CheckContentType.
func detectContentType(ctx context.Context, client *http.Client, rawURL string) (ContentType, []byte) {
	lower := strings.ToLower(rawURL)
	if strings.HasSuffix(lower, ".pdf") || strings.Contains(lower, "/pdf/") {
		return ContentTypePDF, nil
	}

	probeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(probeCtx, http.MethodGet, rawURL, nil)
	if err != nil {
		return ContentTypeHTML, nil
	}
	req.Header.Set("User-Agent", httpx.RandomDesktop())

	resp, err := client.Do(req)
	if err != nil {
		logging.Attempt("extractor", "content_type_probe_failed", "url", rawURL, "error", err.Error())
		return ContentTypeHTML, nil
	}
	defer resp.Body.Close()

	contentType := resp.Header.Get("Content-Type")
	if strings.Contains(strings.ToLower(contentType), "application/pdf") {
		return ContentTypePDF, nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxProbeBodyBytes))
	if err != nil {
		return ContentTypeHTML, nil
	}

	if strings.Contains(strings.ToLower(contentType), "text/html") {
		return ContentTypeHTML, body
	}

	sniffed := http.DetectContentType(body)
	if strings.Contains(strings.ToLower(sniffed), "application/pdf") {
		return ContentTypePDF, nil
	}
	return ContentTypeHTML, body
}
