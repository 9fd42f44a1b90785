package kernel

import (
	"math"

	"aranfmm/fmm"
	"aranfmm/series3d"
	"aranfmm/tables"
)

// Charge3D is a point charge in space, the particle type the 3D
// Newton/Coulomb operator set accumulates field contributions into.
type Charge3D struct {
	X, Y, Z float64
	Q       float64
	Field   float64
}

// Pos3D implements tree.Locator3D.
func (c *Charge3D) Pos3D() (float64, float64, float64) { return c.X, c.Y, c.Z }

func toSphericalOffset(cx, cy, cz, px, py, pz float64) (r, cost, sint, cosp, sinp float64) {
	x, y, z := px-cx, py-cy, pz-cz
	r = math.Sqrt(x*x + y*y + z*z)
	if r == 0 {
		return 0, 1, 0, 1, 0
	}
	cost = z / r
	sint = math.Sqrt(math.Max(0, 1-cost*cost))
	rho := math.Hypot(x, y)
	if rho == 0 {
		return r, cost, sint, 1, 0
	}
	cosp, sinp = x/rho, y/rho
	return
}

// NewtonOperators3D builds the seven-functor operator set for the 3D
// potential 1/|x-y| (spec.md §1) using the orthonormal complex solid
// harmonics series3d.SphericalSeries3d already represents (the inner
// basis r^l*Y_l^m for the local part, the outer basis Y_l^m/r^(l+1)
// for the multipole part — see series3d.Evaluate). The single-charge
// multipole/local coefficients follow the standard addition-theorem
// expansion of 1/|x-y|, carrying the classical 4*pi/(2l+1)
// normalization factor that the orthonormal Y_l^m convention requires.
// M2M/M2L/L2L delegate to fmm's development translations for the
// requested variant.
func NewtonOperators3D(variant series3d.TranslationVariant) fmm.Operators3D[*Charge3D, fmm.NodeData3D] {
	return fmm.Operators3D[*Charge3D, fmm.NodeData3D]{
		P2P: func(i, j *Charge3D) {
			dx, dy, dz := j.X-i.X, j.Y-i.Y, j.Z-i.Z
			d := math.Sqrt(dx*dx + dy*dy + dz*dz)
			if d == 0 {
				return
			}
			i.Field += j.Q / d
			j.Field += i.Q / d
		},
		P2M: func(points []*Charge3D, center [3]float64, dst *fmm.NodeData3D) {
			negdeg := dst.Multipole.NegDeg()
			for _, p := range points {
				r, cost, sint, cosp, sinp := toSphericalOffset(center[0], center[1], center[2], p.X, p.Y, p.Z)
				addMultipoleCharge(dst.Multipole, p.Q, r, cost, sint, cosp, sinp, negdeg)
			}
		},
		M2M:              fmm.DevelopmentM2M3D(variant),
		MultipoleToLocal: fmm.DevelopmentM2L3D(variant),
		L2L:              fmm.DevelopmentL2L3D(variant),
		L2P: func(center [3]float64, src *fmm.NodeData3D, pt *Charge3D) {
			v := src.Local.EvaluateCartesian(pt.X-center[0], pt.Y-center[1], pt.Z-center[2])
			pt.Field += real(v)
		},
		P2L: func(pt *Charge3D, dstCenter [3]float64, dst *fmm.NodeData3D) {
			r, cost, sint, cosp, sinp := toSphericalOffset(dstCenter[0], dstCenter[1], dstCenter[2], pt.X, pt.Y, pt.Z)
			addLocalCharge(dst.Local, pt.Q, r, cost, sint, cosp, sinp)
		},
		M2P: func(srcCenter [3]float64, src *fmm.NodeData3D, pt *Charge3D) {
			v := src.Multipole.EvaluateCartesian(pt.X-srcCenter[0], pt.Y-srcCenter[1], pt.Z-srcCenter[2])
			pt.Field += real(v)
		},
	}
}

// addMultipoleCharge accumulates one charge's outer-expansion
// coefficients: NegTerm(l,m) += q * 4*pi/(2l+1) * r^l * conj(Y_l^m).
func addMultipoleCharge(dst *series3d.SphericalSeries3d, q, r, cost, sint, cosp, sinp float64, negdeg int) {
	if negdeg == 0 {
		return
	}
	lmax := negdeg - 1
	h := tables.NewHarmonicTable(lmax, cost, sint, complex(cosp, sinp))
	rl := 1.0
	for l := 0; l <= lmax; l++ {
		scale := q * 4 * math.Pi / float64(2*l+1) * rl
		for m := 0; m <= l; m++ {
			dst.AddNegTerm(l, m, complex(scale, 0)*cmplxConj(h.At(l, m)))
		}
		rl *= r
	}
}

// addLocalCharge accumulates one charge's inner-expansion
// coefficients: PosTerm(l,m) += q * 4*pi/(2l+1) * conj(Y_l^m) / r^(l+1).
func addLocalCharge(dst *series3d.SphericalSeries3d, q, r, cost, sint, cosp, sinp float64) {
	if r == 0 {
		return
	}
	posdeg := dst.PosDeg()
	h := tables.NewHarmonicTable(posdeg, cost, sint, complex(cosp, sinp))
	invrl1 := 1 / r
	for l := 0; l <= posdeg; l++ {
		scale := q * 4 * math.Pi / float64(2*l+1) * invrl1
		for m := 0; m <= l; m++ {
			dst.AddPosTerm(l, m, complex(scale, 0)*cmplxConj(h.At(l, m)))
		}
		invrl1 /= r
	}
}
