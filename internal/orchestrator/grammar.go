package orchestrator

import "strings"

const (
	tagOpen  = "<search>"
	tagClose = "</search>"
)

// ParseQueries implements the query grammar (§6): a "<search>q1|q2</search>"
// tagged block splits into parallel queries on "|"; anything else is a
// single bare query. Returns zero queries only when every candidate is
// empty after trimming.
func ParseQueries(rawQuery string) []string {
	trimmed := strings.TrimSpace(rawQuery)

	if strings.HasPrefix(trimmed, tagOpen) && strings.HasSuffix(trimmed, tagClose) {
		inner := strings.TrimSuffix(strings.TrimPrefix(trimmed, tagOpen), tagClose)
		parts := strings.Split(inner, "|")
		queries := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				queries = append(queries, p)
			}
		}
		return queries
	}

	if trimmed == "" {
		return nil
	}
	return []string{trimmed}
}
