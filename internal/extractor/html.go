package extractor

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"

	"sfe/internal/httpx"
	"sfe/internal/logging"
)

// htmlExtractor is the HTML_STRUCTURAL strategy: fetch with colly, strip
// non-content tags, collect body text. Grounded on the teacher's
// WebpageExtractor.Extract.
type htmlExtractor struct {
	client *http.Client
}

func newHTMLExtractor(client *http.Client) *htmlExtractor {
	return &htmlExtractor{client: client}
}

func (e *htmlExtractor) extract(rawURL string) (title, text string, err error) {
	c := colly.NewCollector(
		colly.MaxDepth(1),
		colly.UserAgent(httpx.RandomDesktop()),
	)

	// Disable colly's own signal-based request timeout and rely solely on
	// the caller's context deadline, per the outer-timeout-only design rule.
	reqClient := *e.client
	reqClient.Timeout = 0
	c.SetClient(&reqClient)

	var textBuilder strings.Builder
	var collyErr error

	c.OnHTML("title", func(h *colly.HTMLElement) {
		title = strings.TrimSpace(h.Text)
	})
	c.OnHTML("script, style, noscript, iframe, nav, footer, header, aside, form, menu", func(h *colly.HTMLElement) {
		h.DOM.Remove()
	})
	c.OnHTML("body", func(h *colly.HTMLElement) {
		textBuilder.WriteString(h.DOM.Text())
	})
	c.OnError(func(r *colly.Response, cerr error) {
		collyErr = fmt.Errorf("html fetch failed: status=%d: %w", r.StatusCode, cerr)
	})
	c.OnScraped(func(r *colly.Response) {
		logging.Attempt("extractor", "html_structural_scraped", "url", rawURL, "title", title, "text_length", textBuilder.Len())
	})

	if err := c.Visit(rawURL); err != nil {
		if collyErr != nil {
			return "", "", collyErr
		}
		return "", "", fmt.Errorf("html fetch failed: %w", err)
	}
	if collyErr != nil {
		return "", "", collyErr
	}

	return title, normalizeWhitespace(textBuilder.String()), nil
}

// extractFromContent parses a page already fetched by the content-type
// probe, avoiding a second GET for the same URL. Grounded on the teacher's
// WebpageExtractor.ExtractFromContent.
func (e *htmlExtractor) extractFromContent(rawURL string, content []byte) (title, text string, err error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(content)))
	if err != nil {
		return "", "", fmt.Errorf("failed to parse content: %w", err)
	}

	title = strings.TrimSpace(doc.Find("title").Text())
	doc.Find("script, style, noscript, iframe, nav, footer, header, aside, form, menu").Remove()
	text = normalizeWhitespace(doc.Find("body").Text())

	logging.Attempt("extractor", "html_structural_from_content", "url", rawURL, "title", title, "text_length", len(text))
	return title, text, nil
}
