// Package prof records wall-clock timing samples taken while sweeping
// FMM operators at increasing expansion orders, feeding
// cmd/fmm-calibrate's polynomial cost-model fit.
package prof

import (
	"sync"
	"time"
)

// Entry represents a single timing measurement.
type Entry struct {
	Label string
	Dur   time.Duration
}

var (
	mu      sync.RWMutex
	samples = map[string][]time.Duration{}
)

// Track logs the duration since start under name, grouping it with any
// other sample sharing that label.
func Track(start time.Time, name string) {
	elapsed := time.Since(start)
	mu.Lock()
	samples[name] = append(samples[name], elapsed)
	mu.Unlock()
}

// SnapshotAndReset flattens the collected samples into entries and
// clears them for the next sweep. Entry order across labels is not
// significant to callers (MeanByLabel regroups by label anyway), only
// the within-label order of repeated Track calls is preserved.
func SnapshotAndReset() []Entry {
	mu.Lock()
	defer mu.Unlock()
	var out []Entry
	for label, durs := range samples {
		for _, d := range durs {
			out = append(out, Entry{Label: label, Dur: d})
		}
	}
	samples = map[string][]time.Duration{}
	return out
}

// MeanByLabel averages durations (in seconds) across entries sharing a
// label, which is what a fitter needs as its y-samples.
func MeanByLabel(entries []Entry) map[string]float64 {
	var total map[string]float64 = make(map[string]float64)
	n := make(map[string]int)
	for _, e := range entries {
		total[e.Label] += e.Dur.Seconds()
		n[e.Label]++
	}
	mean := make(map[string]float64, len(total))
	for label, sum := range total {
		mean[label] = sum / float64(n[label])
	}
	return mean
}
