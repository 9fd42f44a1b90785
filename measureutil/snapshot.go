// Package measureutil exposes the process-wide solver counters to callers
// that don't want to hold a *measure.Registry directly (e.g. CLI demos).
package measureutil

import "aranfmm/measure"

// SnapshotAndReset returns the global measurement map and clears it.
func SnapshotAndReset() map[string]uint64 {
	return measure.Global.SnapshotAndReset()
}

// Snapshot returns the global measurement map without clearing it.
func Snapshot() map[string]uint64 {
	return measure.Global.Snapshot()
}
