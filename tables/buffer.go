// Package tables implements the process-wide recurrence tables that back
// the 2D and 3D analytic expansions: binomial coefficients, the
// spherical-harmonic normalization constants alpha/beta, associated
// Legendre values, spherical harmonics, and Wigner d/D rotation matrices.
//
// Every table grows lazily and geometrically (capacity doubles) the first
// time a row beyond its current extent is requested; rows already filled
// are never recomputed. Extension is serialized with a mutex, since the
// tables are process-wide singletons shared across solvers (spec.md §4.1,
// §5, §9).
package tables

import "sync"

// CoefficientBuffer is a 1-D lazily-extended table indexed by n >= 0.
// Generator g(n, buf) may read any previously filled entry buf.atUnsafe(k)
// for k < n.
type CoefficientBuffer struct {
	mu     sync.Mutex
	data   []float64
	filled int
	gen    func(n int, buf *CoefficientBuffer) float64
}

// NewCoefficientBuffer creates a buffer pre-extended to at least n+1 rows.
func NewCoefficientBuffer(gen func(n int, buf *CoefficientBuffer) float64, n int) *CoefficientBuffer {
	b := &CoefficientBuffer{gen: gen}
	b.Require(n)
	return b
}

func (b *CoefficientBuffer) grow(minCap int) {
	if minCap < len(b.data) {
		return
	}
	newCap := len(b.data)
	if newCap == 0 {
		newCap = 8
	}
	for newCap <= minCap {
		newCap *= 2
	}
	grown := make([]float64, newCap)
	copy(grown, b.data)
	b.data = grown
}

// Require ensures the buffer is valid for all n' <= n.
func (b *CoefficientBuffer) Require(n int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.requireLocked(n)
}

func (b *CoefficientBuffer) requireLocked(n int) {
	if n < b.filled {
		return
	}
	b.grow(n)
	for i := b.filled; i <= n; i++ {
		b.data[i] = b.gen(i, b)
	}
	b.filled = n + 1
}

// Get returns entry n, extending the table if necessary.
func (b *CoefficientBuffer) Get(n int) float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.requireLocked(n)
	return b.data[n]
}

// atUnsafe is used by generators: it assumes the row is already filled and
// takes no lock (the caller already holds it via Require/Get).
func (b *CoefficientBuffer) atUnsafe(n int) float64 {
	return b.data[n]
}

// TriBuffer is a lower-triangular 2-D lazily-extended table indexed by
// (l, m) with 0 <= m <= l. Generator g(l, m, buf) may read any previously
// filled entry at row l' < l, or an earlier column of the current row.
type TriBuffer struct {
	mu     sync.Mutex
	data   []float64
	maxL   int // highest l for which the row is fully filled; -1 if empty
	gen    func(l, m int, buf *TriBuffer) float64
}

// NewTriBuffer creates a buffer pre-extended to rows 0..lmax inclusive.
func NewTriBuffer(gen func(l, m int, buf *TriBuffer) float64, lmax int) *TriBuffer {
	b := &TriBuffer{gen: gen, maxL: -1}
	b.Require(lmax)
	return b
}

func rowOffset(l int) int { return l * (l + 1) / 2 }

func (b *TriBuffer) grow(lmax int) {
	need := rowOffset(lmax + 1)
	if need <= len(b.data) {
		return
	}
	newCap := len(b.data)
	if newCap == 0 {
		newCap = 16
	}
	for newCap < need {
		newCap *= 2
	}
	grown := make([]float64, newCap)
	copy(grown, b.data)
	b.data = grown
}

// Require ensures the buffer is valid for all (l', m') with l' <= lmax.
func (b *TriBuffer) Require(lmax int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.requireLocked(lmax)
}

func (b *TriBuffer) requireLocked(lmax int) {
	if lmax <= b.maxL {
		return
	}
	b.grow(lmax)
	for l := b.maxL + 1; l <= lmax; l++ {
		off := rowOffset(l)
		for m := 0; m <= l; m++ {
			b.data[off+m] = b.gen(l, m, b)
		}
	}
	b.maxL = lmax
}

// GetUnsafe returns (l,m) without bounds checking against m<=l; the
// caller is responsible for having called Require and for m<=l holding.
// This mirrors aran_binomial_bufferd_get_unsafe's contract (spec.md §4.1).
func (b *TriBuffer) GetUnsafe(l, m int) float64 {
	return b.data[rowOffset(l)+m]
}

// Get returns (l,m), extending the table if necessary, and returns 0 for
// m > l (the spec's "safe" policy for out-of-range requests).
func (b *TriBuffer) Get(l, m int) float64 {
	if m > l || m < 0 || l < 0 {
		return 0
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.requireLocked(l)
	return b.data[rowOffset(l)+m]
}
