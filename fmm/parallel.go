package fmm

import (
	"encoding/binary"
	"math"

	"aranfmm/parallel"
	"aranfmm/series2d"
	"aranfmm/series3d"
)

// filterOwned returns the subset of pts for which owns reports true,
// leaving pts untouched when owns is nil.
func filterOwned[P any](pts []P, owns func(P) bool) []P {
	if owns == nil {
		return pts
	}
	out := make([]P, 0, len(pts))
	for _, p := range pts {
		if owns(p) {
			out = append(out, p)
		}
	}
	return out
}

func putComplex(buf []byte, v complex128) {
	binary.LittleEndian.PutUint64(buf[0:8], math.Float64bits(real(v)))
	binary.LittleEndian.PutUint64(buf[8:16], math.Float64bits(imag(v)))
}

func getComplex(buf []byte) complex128 {
	re := math.Float64frombits(binary.LittleEndian.Uint64(buf[0:8]))
	im := math.Float64frombits(binary.LittleEndian.Uint64(buf[8:16]))
	return complex(re, im)
}

// packLaurent2D encodes every term of s from -negdeg to posdeg, in that
// order, as 16 bytes (two float64) each.
func packLaurent2D(s *series2d.LaurentSeries2d) []byte {
	lo, hi := -s.NegDeg(), s.PosDeg()
	out := make([]byte, (hi-lo+1)*16)
	for i := lo; i <= hi; i++ {
		putComplex(out[(i-lo)*16:], s.Term(i))
	}
	return out
}

func unpackLaurent2DInto(s *series2d.LaurentSeries2d, buf []byte) {
	lo, hi := -s.NegDeg(), s.PosDeg()
	for i := lo; i <= hi; i++ {
		off := (i - lo) * 16
		if off+16 > len(buf) {
			return
		}
		s.SetTerm(i, getComplex(buf[off:]))
	}
}

// VTable2D builds the parallel.NodeDataVTable a Solver2D's
// ParallelConfig2D needs to exchange NodeData2D (spec.md §4.5):
// forward visits carry the multipole part the upward pass builds,
// backward visits carry the local part the downward pass builds, and
// migration carries both. posdeg/negdeg must match every participating
// rank's NewNodeData2D call.
func VTable2D(posdeg, negdeg int) parallel.NodeDataVTable[NodeData2D] {
	return parallel.NodeDataVTable[NodeData2D]{
		MigratePack: func(d NodeData2D) []byte {
			return append(packLaurent2D(d.Multipole), packLaurent2D(d.Local)...)
		},
		MigrateUnpack: func(b []byte) NodeData2D {
			nd := NewNodeData2D(posdeg, negdeg)
			n := len(b) / 2
			unpackLaurent2DInto(nd.Multipole, b[:n])
			unpackLaurent2DInto(nd.Local, b[n:])
			return nd
		},
		ForwardPack: func(d NodeData2D) []byte { return packLaurent2D(d.Multipole) },
		ForwardUnpack: func(b []byte) NodeData2D {
			nd := NewNodeData2D(posdeg, negdeg)
			unpackLaurent2DInto(nd.Multipole, b)
			return nd
		},
		BackwardPack: func(d NodeData2D) []byte { return packLaurent2D(d.Local) },
		BackwardUnpack: func(b []byte) NodeData2D {
			nd := NewNodeData2D(posdeg, negdeg)
			unpackLaurent2DInto(nd.Local, b)
			return nd
		},
		Reduce: func(dst *NodeData2D, src NodeData2D) { dst.AddFrom(src) },
	}
}

func packSpherical3D(s *series3d.SphericalSeries3d, posdeg, negdeg bool) []byte {
	var out []byte
	if posdeg {
		for l := 0; l <= s.PosDeg(); l++ {
			for m := 0; m <= l; m++ {
				buf := make([]byte, 16)
				putComplex(buf, s.PosTerm(l, m))
				out = append(out, buf...)
			}
		}
	}
	if negdeg {
		for l := 0; l < s.NegDeg(); l++ {
			for m := 0; m <= l; m++ {
				buf := make([]byte, 16)
				putComplex(buf, s.NegTerm(l, m))
				out = append(out, buf...)
			}
		}
	}
	return out
}

func unpackSpherical3DPosInto(s *series3d.SphericalSeries3d, buf []byte) {
	off := 0
	for l := 0; l <= s.PosDeg(); l++ {
		for m := 0; m <= l; m++ {
			if off+16 > len(buf) {
				return
			}
			s.SetPosTerm(l, m, getComplex(buf[off:]))
			off += 16
		}
	}
}

func unpackSpherical3DNegInto(s *series3d.SphericalSeries3d, buf []byte) {
	off := 0
	for l := 0; l < s.NegDeg(); l++ {
		for m := 0; m <= l; m++ {
			if off+16 > len(buf) {
				return
			}
			s.SetNegTerm(l, m, getComplex(buf[off:]))
			off += 16
		}
	}
}

// VTable3D is VTable2D's 3D analogue, built over series3d's triangular
// (l,m) term tables instead of series2d's linear Laurent terms.
func VTable3D(posdeg, negdeg int) parallel.NodeDataVTable[NodeData3D] {
	return parallel.NodeDataVTable[NodeData3D]{
		MigratePack: func(d NodeData3D) []byte {
			out := packSpherical3D(d.Multipole, false, true)
			return append(out, packSpherical3D(d.Local, true, false)...)
		},
		MigrateUnpack: func(b []byte) NodeData3D {
			nd := NewNodeData3D(posdeg, negdeg)
			negLen := len(packSpherical3D(nd.Multipole, false, true))
			unpackSpherical3DNegInto(nd.Multipole, b[:negLen])
			unpackSpherical3DPosInto(nd.Local, b[negLen:])
			return nd
		},
		ForwardPack: func(d NodeData3D) []byte { return packSpherical3D(d.Multipole, false, true) },
		ForwardUnpack: func(b []byte) NodeData3D {
			nd := NewNodeData3D(posdeg, negdeg)
			unpackSpherical3DNegInto(nd.Multipole, b)
			return nd
		},
		BackwardPack: func(d NodeData3D) []byte { return packSpherical3D(d.Local, true, false) },
		BackwardUnpack: func(b []byte) NodeData3D {
			nd := NewNodeData3D(posdeg, negdeg)
			unpackSpherical3DPosInto(nd.Local, b)
			return nd
		},
		Reduce: func(dst *NodeData3D, src NodeData3D) { dst.AddFrom(src) },
	}
}
