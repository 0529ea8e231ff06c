package extractor

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/dslipak/pdf"

	"sfe/internal/httpx"
	"sfe/internal/logging"
	"sfe/internal/worker"
)

const (
	maxPDFBytes        = 20 * 1024 * 1024
	maxPDFPages        = 100
	minExtractedChars  = 50 // stop the method cascade once a tier clears this bar
)

// pdfMethod is one tier of the extraction-method cascade. The cascade
// table holds a single tier, basic page text; the layout-aware,
// plumber-style and OCR tiers are not implemented (no such PDF library
// exists anywhere in the reference pack — see DESIGN.md).
type pdfMethod struct {
	name string
	run  func(r *pdf.Reader, pages int) (string, error)
}

var pdfMethodCascade = []pdfMethod{
	{name: "basic_page_text", run: extractPlainText},
	// layout_aware, plumber_style and ocr tiers are absent: no such
	// library is available in the reference pack (see DESIGN.md).
}

type pdfExtractor struct {
	client *http.Client
	pool   *worker.Pool
}

func newPDFExtractor(client *http.Client, pool *worker.Pool) *pdfExtractor {
	return &pdfExtractor{client: client, pool: pool}
}

// extract downloads the PDF and runs the CPU-bound parse on the worker
// pool so it never blocks an IO goroutine, per the concurrency model's
// CPU-bound-work-offload requirement.
func (e *pdfExtractor) extract(ctx context.Context, rawURL string) (title, text string, metadata map[string]string, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", "", nil, fmt.Errorf("pdf request creation failed: %w", err)
	}
	req.Header.Set("User-Agent", httpx.Random())

	resp, err := e.client.Do(req)
	if err != nil {
		return "", "", nil, fmt.Errorf("pdf download failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", "", nil, fmt.Errorf("pdf download failed with status %s", resp.Status)
	}
	if resp.ContentLength > maxPDFBytes {
		return "", "", nil, fmt.Errorf("pdf size %d exceeds limit of %d bytes", resp.ContentLength, maxPDFBytes)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPDFBytes+1))
	if err != nil {
		return "", "", nil, fmt.Errorf("failed to read pdf body: %w", err)
	}
	if len(body) > maxPDFBytes {
		return "", "", nil, fmt.Errorf("pdf size exceeds limit of %d bytes", maxPDFBytes)
	}
	if detectFileType(body) != "pdf" {
		return "", "", nil, ErrNotPDF
	}

	result, err := e.pool.Submit(ctx, func(ctx context.Context) (any, error) {
		return parsePDF(body)
	})
	if err != nil {
		return "", "", nil, fmt.Errorf("pdf parse failed: %w", err)
	}
	parsed := result.(parsedPDF)
	logging.Attempt("extractor", "pdf_parsed", "url", rawURL, "method", parsed.method, "chars", len(parsed.text), "pages", parsed.pages)

	return parsed.title, parsed.text, map[string]string{
		"page_count": fmt.Sprintf("%d", parsed.pages),
		"method":     parsed.method,
	}, nil
}

type parsedPDF struct {
	text   string
	title  string
	pages  int
	method string
}

// parsePDF runs the method cascade, stopping at the first tier that
// yields >= minExtractedChars of stripped text, matching pdf_parser.py's
// cascade contract.
func parsePDF(body []byte) (parsedPDF, error) {
	r, err := pdf.NewReader(bytes.NewReader(body), int64(len(body)))
	if err != nil {
		return parsedPDF{}, fmt.Errorf("failed to open pdf reader: %w", err)
	}

	pages := r.NumPage()
	if pages > maxPDFPages {
		pages = maxPDFPages
	}

	var text, method string
	for _, m := range pdfMethodCascade {
		t, mErr := m.run(r, pages)
		if mErr == nil && len(strings.TrimSpace(t)) >= minExtractedChars {
			text = t
			method = m.name
			break
		}
	}
	if text == "" {
		return parsedPDF{}, fmt.Errorf("no extraction method yielded usable text")
	}

	return parsedPDF{
		text:   text,
		title:  extractTitleHeuristic(text),
		pages:  pages,
		method: method,
	}, nil
}

// extractPlainText is the dslipak/pdf-backed "basic page-text extractor"
// tier, grounded on the teacher's pdf.go GetPlainText call.
func extractPlainText(r *pdf.Reader, _ int) (string, error) {
	reader, err := r.GetPlainText()
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(reader); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// extractTitleHeuristic scans the first lines of extracted text for a
// plausible title, grounded on pdf_parser.py's _extract_title. The PDF's
// own metadata is not read: parsePDF always takes its title from here.
func extractTitleHeuristic(text string) string {
	lines := strings.Split(text, "\n")
	checked := 0
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		checked++
		if checked > 10 {
			break
		}
		lower := strings.ToLower(line)
		if len(line) >= 5 && len(line) <= 200 &&
			!strings.Contains(lower, "page") &&
			!strings.Contains(line, "---") &&
			!strings.Contains(line, "___") {
			return line
		}
	}
	return "Untitled PDF"
}

// detectFileType sniffs a buffer's magic bytes, kept from the teacher's
// pdf.go detectFileType.
func detectFileType(data []byte) string {
	if len(data) == 0 {
		return "unknown"
	}
	header := data
	if len(header) > 512 {
		header = header[:512]
	}
	headerStr := string(header)
	if strings.HasPrefix(headerStr, "%PDF-") {
		return "pdf"
	}
	lower := strings.ToLower(headerStr)
	if strings.Contains(lower, "<html") || strings.Contains(lower, "<!doctype html") {
		return "html"
	}
	if bytes.HasPrefix(data, []byte{0x50, 0x4B, 0x03, 0x04}) {
		return "zip"
	}
	if bytes.HasPrefix(data, []byte{0x89, 0x50, 0x4E, 0x47}) {
		return "png"
	}
	if bytes.HasPrefix(data, []byte{0xFF, 0xD8, 0xFF}) {
		return "jpeg"
	}
	return "unknown"
}
