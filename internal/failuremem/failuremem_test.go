package failuremem

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sfe/internal/extractor"
)

func TestShouldSkipNoHistory(t *testing.T) {
	m := New(0.7, 30, true)
	d := m.ShouldSkip("example.com")
	assert.False(t, d.ShouldSkip)
	assert.Equal(t, "no_history", d.Reason)
}

func TestConvergesAfterThreeFailures(t *testing.T) {
	m := New(0.7, 30, true)
	host := "flaky.test"
	for i := 0; i < 3; i++ {
		m.RecordFailure(host, extractor.FailureHTTP403)
	}
	d := m.ShouldSkip(host)
	require.True(t, d.ShouldSkip)
	assert.GreaterOrEqual(t, d.Confidence, 0.7)
}

func TestBelowFailureCountFloorNeverSkips(t *testing.T) {
	m := New(0.5, 30, true)
	host := "mostly-fine.test"
	m.RecordFailure(host, extractor.FailureTimeout)
	m.RecordFailure(host, extractor.FailureTimeout)
	d := m.ShouldSkip(host)
	assert.False(t, d.ShouldSkip, "failure_count must be >= 3 regardless of ratio")
}

func TestSuccessRehabilitatesHost(t *testing.T) {
	m := New(0.7, 30, true)
	host := "recovering.test"
	for i := 0; i < 5; i++ {
		m.RecordFailure(host, extractor.FailureConnection)
	}
	require.True(t, m.ShouldSkip(host).ShouldSkip)

	for i := 0; i < 5; i++ {
		m.RecordSuccess(host)
	}
	assert.False(t, m.ShouldSkip(host).ShouldSkip)
}

func TestDisabledMemoryNeverSkips(t *testing.T) {
	m := New(0.1, 30, false)
	host := "disabled.test"
	for i := 0; i < 10; i++ {
		m.RecordFailure(host, extractor.FailureHTTP404)
	}
	assert.False(t, m.ShouldSkip(host).ShouldSkip)
}
