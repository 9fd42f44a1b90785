package tables

import (
	"math"
	"sync"
)

// Alpha is the spherical multipole-translation normalization table:
//
//	alpha(l,0) = C(l-1,0)/l
//	alpha(l,l) = C(l-1,l-1)/sqrt((2l-1)*2l)
//	alpha(l,m) = sqrt((l-m+1)/(l+m)) * alpha(l,m-1)     otherwise
//
// (spec.md §4.1; ported from aran_spherical_seriesd_alpha's generator).
var Alpha = NewTriBuffer(alphaGenerator, 8)

func alphaGenerator(l, m int, buf *TriBuffer) float64 {
	if l == 0 {
		return 1
	}
	if m == 0 {
		return C(l-1, 0) / float64(l)
	}
	if l == m {
		return C(l-1, l-1) / math.Sqrt(float64(2*l-1)*float64(2*l))
	}
	return math.Sqrt(float64(l-m+1)/float64(l+m)) * buf.GetUnsafe(l, m-1)
}

// A returns alpha(l,m), extending the table as needed.
func A(l, m int) float64 {
	return Alpha.Get(l, m)
}

// betaBuf backs Beta(l) = sqrt(4*pi/(2l+1)) (spec.md §4.1).
var betaBuf = NewCoefficientBuffer(func(l int, _ *CoefficientBuffer) float64 {
	return math.Sqrt(4 * math.Pi / float64(2*l+1))
}, 8)

// B returns beta(l) = sqrt(4*pi/(2l+1)).
func B(l int) float64 {
	return betaBuf.Get(l)
}

// betaRatioBuf caches beta(l)/beta(n), the normalization factor reused
// throughout the spherical translation formulas (aran's
// _betal_over_betan).
var betaRatioBuf = struct {
	mu   sync.Mutex
	data map[[2]int]float64
}{data: make(map[[2]int]float64)}

// BetaRatio returns beta(l)/beta(n).
func BetaRatio(l, n int) float64 {
	key := [2]int{l, n}
	betaRatioBuf.mu.Lock()
	defer betaRatioBuf.mu.Unlock()
	if v, ok := betaRatioBuf.data[key]; ok {
		return v
	}
	v := B(l) / B(n)
	betaRatioBuf.data[key] = v
	return v
}
