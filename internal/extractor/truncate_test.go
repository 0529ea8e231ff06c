package extractor

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeWhitespace(t *testing.T) {
	in := "Hello    world\n\n\n\nfoo\tbar  "
	got := normalizeWhitespace(in)
	assert.Equal(t, "Hello world\n\nfoo bar", got)
}

func TestTruncateToBytesNoOpWhenWithinLimit(t *testing.T) {
	s := "short string"
	out, truncated := truncateToBytes(s, 1000)
	assert.False(t, truncated)
	assert.Equal(t, s, out)
}

func TestTruncateToBytesIdempotent(t *testing.T) {
	s := strings.Repeat("a", 100)
	once, truncated := truncateToBytes(s, 20)
	require.True(t, truncated)
	twice, truncatedAgain := truncateToBytes(once, 20)
	assert.True(t, truncatedAgain || once == twice)
	assert.True(t, strings.HasSuffix(once, truncationMarker))
}

func TestTruncateToTokensRespectsBudget(t *testing.T) {
	sentence := "This is a sentence that repeats. "
	s := strings.Repeat(sentence, 200)
	out, truncated := truncateToTokens(s, 100)
	require.True(t, truncated)
	assert.LessOrEqual(t, estimateTokens(strings.TrimSuffix(out, truncationMarker)), 100+25)
	assert.True(t, strings.HasSuffix(out, truncationMarker))
}

func TestTruncateToTokensNoOpWhenWithinBudget(t *testing.T) {
	s := "short text"
	out, truncated := truncateToTokens(s, 1000)
	assert.False(t, truncated)
	assert.Equal(t, s, out)
}

func TestClassifyFailure(t *testing.T) {
	cases := map[string]FailureType{
		"403 forbidden":            FailureHTTP403,
		"404 not found":            FailureHTTP404,
		"429 too many requests":    FailureRateLimited,
		"context deadline exceeded": FailureTimeout,
		"x509: certificate error":  FailureSSLError,
		"no such host":             FailureDNSError,
		"failed to parse response": FailureParseError,
		"connection refused":       FailureConnection,
		"something else entirely":  FailureOther,
	}
	for msg, want := range cases {
		got := classifyFailure(assertErr(msg), false)
		assert.Equal(t, want, got, msg)
	}
	assert.Equal(t, FailureTimeout, classifyFailure(nil, true))
}

type simpleErr string

func (e simpleErr) Error() string { return string(e) }

func assertErr(msg string) error {
	return simpleErr(msg)
}

func TestExtractTitleHeuristic(t *testing.T) {
	text := "\n\n---\n\nA Good Title\nSome body text follows here."
	assert.Equal(t, "A Good Title", extractTitleHeuristic(text))

	assert.Equal(t, "Untitled PDF", extractTitleHeuristic("page 1\n---\n___\nhi"))
}

func TestDetectFileType(t *testing.T) {
	assert.Equal(t, "pdf", detectFileType([]byte("%PDF-1.4 rest of file")))
	assert.Equal(t, "html", detectFileType([]byte("<!DOCTYPE html><html></html>")))
	assert.Equal(t, "unknown", detectFileType([]byte{0x01, 0x02}))
}
