package kernel

import (
	"aranfmm/fmm"
)

// Charge2D is a point charge in the plane: the particle type the 2D
// Newton/Coulomb operator set below accumulates field contributions
// into.
type Charge2D struct {
	X, Y  float64
	Q     float64
	Field complex128
}

// Pos2D implements tree.Locator2D.
func (c *Charge2D) Pos2D() (float64, float64) { return c.X, c.Y }

func (c *Charge2D) z() complex128 { return complex(c.X, c.Y) }

// NewtonOperators2D builds the seven-functor operator set for the 2D
// complex potential 1/(z-z0) (spec.md §1), over node data whose
// multipole part has negative degree negdeg and whose local part has
// positive degree posdeg. M2M/M2L/L2L delegate to fmm's development
// translations (grounded on arandevelopment2d.c); P2M/P2P/L2P/P2L/M2P
// are this kernel's own direct evaluation of the potential and its
// multipole/local expansions.
func NewtonOperators2D() fmm.Operators2D[*Charge2D, fmm.NodeData2D] {
	return fmm.Operators2D[*Charge2D, fmm.NodeData2D]{
		P2P: func(i, j *Charge2D) {
			d := j.z() - i.z()
			if d == 0 {
				return
			}
			i.Field -= complex(j.Q, 0) / d
			j.Field += complex(i.Q, 0) / d
		},
		P2M: func(points []*Charge2D, center [2]float64, dst *fmm.NodeData2D) {
			c := complex(center[0], center[1])
			negdeg := dst.Multipole.NegDeg()
			for _, p := range points {
				d := p.z() - c
				term := complex(p.Q, 0)
				for k := 0; k < negdeg; k++ {
					dst.Multipole.AddTerm(-(k + 1), term)
					term *= d
				}
			}
		},
		M2M:              fmm.DevelopmentM2M2D,
		MultipoleToLocal: fmm.DevelopmentM2L2D,
		L2L:              fmm.DevelopmentL2L2D,
		L2P: func(center [2]float64, src *fmm.NodeData2D, pt *Charge2D) {
			c := complex(center[0], center[1])
			pt.Field += src.Local.Evaluate(pt.z() - c)
		},
		P2L: func(pt *Charge2D, dstCenter [2]float64, dst *fmm.NodeData2D) {
			c := complex(dstCenter[0], dstCenter[1])
			d := pt.z() - c
			if d == 0 {
				return
			}
			coef := complex(-pt.Q, 0) / d
			for k := 0; k <= dst.Local.PosDeg(); k++ {
				dst.Local.AddTerm(k, coef)
				coef /= d
			}
		},
		M2P: func(srcCenter [2]float64, src *fmm.NodeData2D, pt *Charge2D) {
			c := complex(srcCenter[0], srcCenter[1])
			pt.Field += src.Multipole.Evaluate(pt.z() - c)
		},
	}
}
