package stats

import (
	"slices"
	"sync"
	"time"
)

type sample struct {
	at      time.Time
	elapsed time.Duration
	pages   int
	failed  bool
}

// Snapshot aggregates the split samples currently inside the window.
type Snapshot struct {
	Splits    int     `json:"splits"`
	Failed    int     `json:"failed"`
	Pages     int     `json:"pages"`
	MinMs     int64   `json:"min_ms"`
	MaxMs     int64   `json:"max_ms"`
	AvgMs     float64 `json:"avg_ms"`
	P50Ms     float64 `json:"p50_ms"`
	P95Ms     float64 `json:"p95_ms"`
	P99Ms     float64 `json:"p99_ms"`
	WindowSec int64   `json:"window_sec"`
}

// Recorder keeps split timings for a rolling window.
type Recorder struct {
	mu      sync.Mutex
	samples []sample
	window  time.Duration
	now     func() time.Time
}

func NewRecorder(window time.Duration) *Recorder {
	if window <= 0 {
		window = time.Hour
	}
	return &Recorder{
		samples: make([]sample, 0, 64),
		window:  window,
		now:     time.Now,
	}
}

// Record adds one split. Negative durations count as zero.
func (r *Recorder) Record(elapsed time.Duration, pages int, failed bool) {
	elapsed = max(elapsed, 0)
	now := r.now()

	r.mu.Lock()
	defer r.mu.Unlock()

	r.pruneLocked(now)
	r.samples = append(r.samples, sample{at: now, elapsed: elapsed, pages: pages, failed: failed})
}

func (r *Recorder) Snapshot() Snapshot {
	now := r.now()

	r.mu.Lock()
	defer r.mu.Unlock()

	r.pruneLocked(now)
	snap := Snapshot{WindowSec: int64(r.window / time.Second)}
	if len(r.samples) == 0 {
		return snap
	}

	ms := make([]int64, 0, len(r.samples))
	var sum int64
	for _, s := range r.samples {
		v := s.elapsed.Milliseconds()
		ms = append(ms, v)
		sum += v
		snap.Pages += s.pages
		if s.failed {
			snap.Failed++
		}
	}
	slices.Sort(ms)

	snap.Splits = len(ms)
	snap.MinMs = ms[0]
	snap.MaxMs = ms[len(ms)-1]
	snap.AvgMs = float64(sum) / float64(len(ms))
	snap.P50Ms = percentile(ms, 50)
	snap.P95Ms = percentile(ms, 95)
	snap.P99Ms = percentile(ms, 99)
	return snap
}

func (r *Recorder) pruneLocked(now time.Time) {
	cutoff := now.Add(-r.window)
	r.samples = slices.DeleteFunc(r.samples, func(s sample) bool {
		return s.at.Before(cutoff)
	})
}

// percentile interpolates linearly between the closest ranks of sorted.
func percentile(sorted []int64, pct float64) float64 {
	switch {
	case len(sorted) == 0:
		return 0
	case pct <= 0:
		return float64(sorted[0])
	case pct >= 100:
		return float64(sorted[len(sorted)-1])
	}

	rank := float64(len(sorted)-1) * pct / 100
	lo := int(rank)
	if lo+1 >= len(sorted) {
		return float64(sorted[lo])
	}
	frac := rank - float64(lo)
	return float64(sorted[lo]) + (float64(sorted[lo+1])-float64(sorted[lo]))*frac
}
