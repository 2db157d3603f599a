package service

import (
	"sort"
	"sync"
	"time"

	"github.com/dgallion1/normcontrol/internal/doctree"
)

type sample struct {
	timestamp  time.Time
	durationMs int64
	format     doctree.Format
	valid      bool
}

// Latency aggregates check durations.
type Latency struct {
	Count int     `json:"count"`
	MinMs int64   `json:"min_ms"`
	MaxMs int64   `json:"max_ms"`
	AvgMs float64 `json:"avg_ms"`
	P50Ms float64 `json:"p50_ms"`
	P95Ms float64 `json:"p95_ms"`
	P99Ms float64 `json:"p99_ms"`
}

// StatsSnapshot is a point-in-time view of recent checks.
type StatsSnapshot struct {
	Latency
	Valid    int                        `json:"valid"`
	Invalid  int                        `json:"invalid"`
	ByFormat map[doctree.Format]Latency `json:"by_format"`
}

// CheckStats tracks recent check latencies within a rolling window.
type CheckStats struct {
	mu      sync.Mutex
	samples []sample
	maxAge  time.Duration
}

func NewCheckStats(maxAge time.Duration) *CheckStats {
	if maxAge <= 0 {
		maxAge = time.Hour
	}
	return &CheckStats{
		samples: make([]sample, 0, 256),
		maxAge:  maxAge,
	}
}

func (s *CheckStats) Record(format doctree.Format, durationMs int64, valid bool) {
	if durationMs < 0 {
		durationMs = 0
	}
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneLocked(now)
	s.samples = append(s.samples, sample{
		timestamp:  now,
		durationMs: durationMs,
		format:     format,
		valid:      valid,
	})
}

func (s *CheckStats) Snapshot() StatsSnapshot {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneLocked(now)
	snap := StatsSnapshot{ByFormat: make(map[doctree.Format]Latency)}
	if len(s.samples) == 0 {
		return snap
	}

	all := make([]int64, 0, len(s.samples))
	byFormat := make(map[doctree.Format][]int64)
	for _, sm := range s.samples {
		all = append(all, sm.durationMs)
		byFormat[sm.format] = append(byFormat[sm.format], sm.durationMs)
		if sm.valid {
			snap.Valid++
		} else {
			snap.Invalid++
		}
	}
	snap.Latency = aggregate(all)
	for f, values := range byFormat {
		snap.ByFormat[f] = aggregate(values)
	}
	return snap
}

func (s *CheckStats) pruneLocked(now time.Time) {
	cutoff := now.Add(-s.maxAge)
	writeIdx := 0
	for _, sm := range s.samples {
		if !sm.timestamp.Before(cutoff) {
			s.samples[writeIdx] = sm
			writeIdx++
		}
	}
	s.samples = s.samples[:writeIdx]
}

func aggregate(values []int64) Latency {
	sort.Slice(values, func(i, j int) bool { return values[i] < values[j] })
	var sum int64
	for _, v := range values {
		sum += v
	}
	return Latency{
		Count: len(values),
		MinMs: values[0],
		MaxMs: values[len(values)-1],
		AvgMs: float64(sum) / float64(len(values)),
		P50Ms: percentile(values, 50),
		P95Ms: percentile(values, 95),
		P99Ms: percentile(values, 99),
	}
}

func percentile(sortedValues []int64, pct float64) float64 {
	if len(sortedValues) == 0 {
		return 0
	}
	if pct <= 0 {
		return float64(sortedValues[0])
	}
	if pct >= 100 {
		return float64(sortedValues[len(sortedValues)-1])
	}

	index := (float64(len(sortedValues)-1) * pct) / 100.0
	lower := int(index)
	upper := lower + 1
	if upper >= len(sortedValues) {
		return float64(sortedValues[lower])
	}
	weight := index - float64(lower)
	lo := float64(sortedValues[lower])
	hi := float64(sortedValues[upper])
	return lo + ((hi - lo) * weight)
}
