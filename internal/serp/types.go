// Package serp implements the SERP Client (§4.2): an async submit-then-poll
// search provider protocol, with a fixed progressive-backoff poll schedule
// and normalization into SerpResult. Grounded on
// original_source/auto_search_tool/brightdata_client.py for exact protocol
// semantics (poll schedule, parameter mapping) and on the teacher's
// internal/searxng/client.go for Go-side shape (jsoniter decode, slog
// logging, channel-based concurrent fan-out) since the teacher's own SERP
// client is purely synchronous and has no poll-based analogue.
package serp

import "time"

// Result is the SerpResult entity: one organic (or news) hit.
type Result struct {
	Position int
	URL      string
	Title    string
	Snippet  string
	Site     string
	Date     string
	Type     string // "organic" | "news"
}

// SearchType selects the tbm parameter, per §4.2's parameter mapping.
type SearchType string

const (
	SearchTypeWeb      SearchType = ""
	SearchTypeNews     SearchType = "nws"
	SearchTypeImages   SearchType = "isch"
	SearchTypeVideos   SearchType = "vid"
	SearchTypeShopping SearchType = "shop"
	SearchTypeBooks    SearchType = "bks"
)

// Options configures one Search call.
type Options struct {
	NumResults int
	Start      int
	Language   string // hl
	Country    string // gl
	DateRange  string // one of h,d,w,m,y -> tbs=qdr:<x>
	SearchType SearchType
	Mobile     bool
}

// queryParams is the provider-facing parameter bag built from Options,
// matching brightdata_client.py's _build_serp_params.
type queryParams struct {
	Query   string
	Num     int
	Start   int
	HL      string
	GL      string
	TBS     string
	TBM     string
	UULE    string
	Mobile  bool
	JSONOut bool
}

func buildParams(query string, opts Options) queryParams {
	p := queryParams{
		Query:   query,
		Num:     opts.NumResults,
		Start:   opts.Start,
		JSONOut: true,
		Mobile:  opts.Mobile,
	}
	if p.Num <= 0 {
		p.Num = 10
	}
	if opts.Language != "" {
		p.HL = opts.Language
	}
	if opts.Country != "" {
		p.GL = opts.Country
	}
	if opts.DateRange != "" {
		p.TBS = "qdr:" + opts.DateRange
	}
	if opts.SearchType != "" {
		p.TBM = string(opts.SearchType)
	}
	return p
}

// pollStep is one row of the fixed poll-backoff schedule.
type pollStep struct {
	maxAttempt int // inclusive upper bound of attempt# this wait applies to
	wait       time.Duration
}

// pollSchedule is the literal data table from §4.2 — implementers must
// preserve its shape rather than encoding it as an if-ladder.
var pollSchedule = []pollStep{
	{maxAttempt: 1, wait: 2000 * time.Millisecond},
	{maxAttempt: 3, wait: 1500 * time.Millisecond},
	{maxAttempt: 6, wait: 2000 * time.Millisecond},
	{maxAttempt: 10, wait: 3000 * time.Millisecond},
	{maxAttempt: 12, wait: 4000 * time.Millisecond},
}

const pollScheduleDefaultWait = 5000 * time.Millisecond

// waitForAttempt returns how long to wait before the next poll after the
// given 1-indexed attempt number.
func waitForAttempt(attempt int) time.Duration {
	for _, step := range pollSchedule {
		if attempt <= step.maxAttempt {
			return step.wait
		}
	}
	return pollScheduleDefaultWait
}

const (
	maxPollAttempts  = 20
	singlePollTimeout = 5 * time.Second
)
