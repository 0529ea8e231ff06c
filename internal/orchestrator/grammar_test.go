package orchestrator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseQueriesBare(t *testing.T) {
	assert.Equal(t, []string{"Tesla stock price 2024"}, ParseQueries("Tesla stock price 2024"))
}

func TestParseQueriesSingleTagged(t *testing.T) {
	assert.Equal(t, []string{"OpenAI GPT-4"}, ParseQueries("<search>OpenAI GPT-4</search>"))
}

func TestParseQueriesParallel(t *testing.T) {
	assert.Equal(t, []string{"Tesla", "Apple", "Microsoft"}, ParseQueries("<search>Tesla|Apple|Microsoft</search>"))
}

func TestParseQueriesEmptyYieldsZero(t *testing.T) {
	assert.Empty(t, ParseQueries("   "))
	assert.Empty(t, ParseQueries("<search></search>"))
	assert.Empty(t, ParseQueries("<search>  |  </search>"))
}

func TestParseQueriesDropsEmptySegments(t *testing.T) {
	assert.Equal(t, []string{"A", "B"}, ParseQueries("<search>A||B</search>"))
}
