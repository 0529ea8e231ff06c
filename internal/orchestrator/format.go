package orchestrator

import "fmt"

// formatSnippet builds the formatted (title, snippet, url) view substituted
// whenever extraction is skipped or falls back to the SERP snippet,
// grounded on smart_content_extractor.py's _prepare_serp_content.
func formatSnippet(title, snippet, url string) string {
	if title == "" {
		return fmt.Sprintf("%s\n\nSource: %s", snippet, url)
	}
	return fmt.Sprintf("%s\n\n%s\n\nSource: %s", title, snippet, url)
}
