package gateway

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// RateLimitSnapshot is the most recently observed API quota.
type RateLimitSnapshot struct {
	Remaining int
	Limit     int
	Reset     time.Time
}

// RateLimitTracker records the quota headers from each response and blocks
// callers while the quota is exhausted. The snapshot is replaced wholesale
// under a mutex since workers update it concurrently.
type RateLimitTracker struct {
	mu     sync.Mutex
	snap   RateLimitSnapshot
	seen   bool
	logger *logrus.Logger

	// sleep is swapped out in tests to avoid real waits.
	sleep func(time.Duration)
}

// NewRateLimitTracker creates a tracker with no quota observed yet.
func NewRateLimitTracker(logger *logrus.Logger) *RateLimitTracker {
	return &RateLimitTracker{logger: logger, sleep: time.Sleep}
}

// Record replaces the stored snapshot from the X-RateLimit-* response
// headers. Missing or unparsable headers read as zero. A warning is logged
// once the remaining quota drops under 20% of the limit.
func (t *RateLimitTracker) Record(h http.Header) {
	snap := RateLimitSnapshot{
		Remaining: atoi(h.Get("X-RateLimit-Remaining")),
		Limit:     atoi(h.Get("X-RateLimit-Limit")),
	}
	if reset := atoi(h.Get("X-RateLimit-Reset")); reset > 0 {
		snap.Reset = time.Unix(int64(reset), 0)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.snap = snap
	t.seen = true

	if snap.Limit > 0 && snap.Remaining*5 < snap.Limit {
		t.logger.WithFields(logrus.Fields{
			"remaining": snap.Remaining,
			"limit":     snap.Limit,
			"reset":     snap.Reset.Format(time.RFC3339),
		}).Warn("API rate limit running low")
	}
}

// Wait blocks until just past the reset time when the last observed quota is
// exhausted; it returns immediately otherwise. A single sleep, no polling.
func (t *RateLimitTracker) Wait() {
	t.mu.Lock()
	snap, seen := t.snap, t.seen
	t.mu.Unlock()

	if !seen || snap.Remaining > 0 {
		return
	}
	wait := time.Until(snap.Reset)
	if wait <= 0 {
		return
	}
	t.logger.WithField("wait", wait.Round(time.Second).String()).
		Warn("API rate limit exceeded, sleeping until reset")
	t.sleep(wait + time.Second)
}

// Snapshot returns the last observed quota and whether one has been seen.
func (t *RateLimitTracker) Snapshot() (RateLimitSnapshot, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snap, t.seen
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
