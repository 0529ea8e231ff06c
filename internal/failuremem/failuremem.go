// Package failuremem implements the Failure Memory / smart-skip component
// (§4.4): per-host failure/success counters answering "should I skip
// crawling this URL and use the SERP snippet instead?" Grounded on
// original_source's smart_content_extractor.py (should_skip_crawl,
// _classify_failure_type, confidence_threshold, rehabilitation-by-success);
// the teacher has no failure-learning concept, so the Go-side concurrency
// shape (per-host lock in a map, coarse lock for global ops) is grounded
// on the teacher's internal/cache/sharded_memory.go per-shard locking
// idiom, generalized to per-host.
package failuremem

import (
	"sync"
	"time"

	"sfe/internal/extractor"
)

type hostRecord struct {
	failureCount    int
	successCount    int
	lastFailureType extractor.FailureType
	lastSeenAt      time.Time
}

// Decision is the SkipDecision entity.
type Decision struct {
	ShouldSkip bool
	Reason     string
	Confidence float64
}

// Memory is the process-wide, concurrency-safe failure memory handle,
// injectable into the orchestrator for tests.
type Memory struct {
	mu                sync.RWMutex // coarse lock: guards the hosts map; held for the whole of dump/purge
	hosts             map[string]*hostRecord
	hostLocks         map[string]*sync.Mutex
	locksMu           sync.Mutex
	confidenceThreshold float64
	retention         time.Duration
	enabled           bool
}

// New builds a Memory with the given confidence threshold (default 0.7
// per §4.4) and retention window (default 30 days).
func New(confidenceThreshold float64, retentionDays int, enabled bool) *Memory {
	if confidenceThreshold <= 0 {
		confidenceThreshold = 0.7
	}
	if retentionDays <= 0 {
		retentionDays = 30
	}
	return &Memory{
		hosts:               make(map[string]*hostRecord),
		hostLocks:           make(map[string]*sync.Mutex),
		confidenceThreshold: confidenceThreshold,
		retention:           time.Duration(retentionDays) * 24 * time.Hour,
		enabled:             enabled,
	}
}

func (m *Memory) lockFor(host string) *sync.Mutex {
	m.locksMu.Lock()
	defer m.locksMu.Unlock()
	l, ok := m.hostLocks[host]
	if !ok {
		l = &sync.Mutex{}
		m.hostLocks[host] = l
	}
	return l
}

// ShouldSkip answers the smart-skip question for host, matching
// should_skip_crawl's decision rule exactly.
func (m *Memory) ShouldSkip(host string) Decision {
	if !m.enabled {
		return Decision{ShouldSkip: false, Reason: "failure_learning_disabled", Confidence: 0}
	}

	lock := m.lockFor(host)
	lock.Lock()
	defer lock.Unlock()

	m.mu.RLock()
	rec, ok := m.hosts[host]
	m.mu.RUnlock()
	if !ok {
		return Decision{ShouldSkip: false, Reason: "no_history", Confidence: 0}
	}

	if time.Since(rec.lastSeenAt) > m.retention {
		return Decision{ShouldSkip: false, Reason: "history_expired", Confidence: 0}
	}

	confidence := float64(rec.failureCount) / float64(rec.failureCount+rec.successCount+1)
	if rec.failureCount >= 3 && confidence >= m.confidenceThreshold {
		return Decision{
			ShouldSkip: true,
			Reason:     "host_failure_confidence_above_threshold",
			Confidence: confidence,
		}
	}
	return Decision{ShouldSkip: false, Reason: "below_threshold", Confidence: confidence}
}

// RecordSuccess records a successful extraction for host. Successes
// partially rehabilitate a host: each success decrements the weight of
// the oldest failure.
func (m *Memory) RecordSuccess(host string) {
	if !m.enabled {
		return
	}
	lock := m.lockFor(host)
	lock.Lock()
	defer lock.Unlock()

	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.hosts[host]
	if !ok {
		rec = &hostRecord{}
		m.hosts[host] = rec
	}
	rec.successCount++
	if rec.failureCount > 0 {
		rec.failureCount--
	}
	rec.lastSeenAt = time.Now()
}

// RecordFailure records a classified extraction failure for host. Never
// call this for cancellation or our own deadline expiry — those are
// orchestrator-side events, not host-side failures.
func (m *Memory) RecordFailure(host string, kind extractor.FailureType) {
	if !m.enabled {
		return
	}
	lock := m.lockFor(host)
	lock.Lock()
	defer lock.Unlock()

	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.hosts[host]
	if !ok {
		rec = &hostRecord{}
		m.hosts[host] = rec
	}
	rec.failureCount++
	rec.lastFailureType = kind
	rec.lastSeenAt = time.Now()
}

// Stats is a read-only snapshot for one host, used by reporting/ops.
type Stats struct {
	Host            string
	FailureCount    int
	SuccessCount    int
	LastFailureType extractor.FailureType
	LastSeenAt      time.Time
}

// Dump returns a snapshot of every host record, using the coarse lock.
func (m *Memory) Dump() []Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Stats, 0, len(m.hosts))
	for host, rec := range m.hosts {
		out = append(out, Stats{
			Host:            host,
			FailureCount:    rec.failureCount,
			SuccessCount:    rec.successCount,
			LastFailureType: rec.lastFailureType,
			LastSeenAt:      rec.lastSeenAt,
		})
	}
	return out
}

// CleanupOlderThan purges host records whose last observation predates
// cutoff. No background goroutine is started by this package — operators
// schedule this themselves, keeping the package free of hidden
// goroutines (structured-concurrency guidance, §9).
func (m *Memory) CleanupOlderThan(cutoff time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	purged := 0
	for host, rec := range m.hosts {
		if rec.lastSeenAt.Before(cutoff) {
			delete(m.hosts, host)
			purged++
		}
	}
	return purged
}
