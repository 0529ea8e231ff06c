package serp

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWaitForAttemptMatchesSchedule(t *testing.T) {
	cases := map[int]time.Duration{
		1:  2000 * time.Millisecond,
		2:  1500 * time.Millisecond,
		3:  1500 * time.Millisecond,
		4:  2000 * time.Millisecond,
		6:  2000 * time.Millisecond,
		7:  3000 * time.Millisecond,
		10: 3000 * time.Millisecond,
		11: 4000 * time.Millisecond,
		12: 4000 * time.Millisecond,
		13: 5000 * time.Millisecond,
		20: 5000 * time.Millisecond,
	}
	for attempt, want := range cases {
		assert.Equal(t, want, waitForAttempt(attempt), "attempt %d", attempt)
	}
}

func TestBuildParamsDefaults(t *testing.T) {
	p := buildParams("golang", Options{})
	assert.Equal(t, "golang", p.Query)
	assert.Equal(t, 10, p.Num)
	assert.Empty(t, p.HL)
	assert.Empty(t, p.GL)
	assert.Empty(t, p.TBS)
}

func TestBuildParamsDateRangeAndType(t *testing.T) {
	p := buildParams("golang", Options{DateRange: "w", SearchType: SearchTypeNews, NumResults: 20})
	assert.Equal(t, "qdr:w", p.TBS)
	assert.Equal(t, "nws", p.TBM)
	assert.Equal(t, 20, p.Num)
}

func TestNormalizeDropsMissingLinkAndContinuesPositionIntoNews(t *testing.T) {
	resp := submitResponse{
		Organic: []organicItem{
			{Link: "https://a.test", Title: "A"},
			{Link: "", Title: "dropped"},
			{Link: "https://b.test", Title: "B"},
		},
		News: []newsItem{
			{Link: "https://c.test", Title: "C"},
		},
	}
	results := normalize(resp)
	if assert.Len(t, results, 3) {
		assert.Equal(t, 1, results[0].Position)
		assert.Equal(t, 2, results[1].Position)
		assert.Equal(t, "organic", results[1].Type)
		assert.Equal(t, 3, results[2].Position)
		assert.Equal(t, "news", results[2].Type)
	}
}
