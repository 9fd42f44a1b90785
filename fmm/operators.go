package fmm

import (
	"aranfmm/series2d"
	"aranfmm/series3d"
)

// Operators2D bundles the seven operator functors spec.md §4.3 lists,
// specialized to 2D node centers (plane coordinates).
type Operators2D[P any, D NodeData[D]] struct {
	// P2P accumulates the pairwise interaction of two distinct
	// particles. The solver guarantees i != j.
	P2P func(i, j P)
	// P2M accumulates the multipole contribution of points (all
	// belonging to one leaf) into dst, expanded about center.
	P2M func(points []P, center [2]float64, dst *D)
	// M2M translates src's multipole part (about srcCenter) into dst's
	// multipole part (about dstCenter), accumulating.
	M2M func(srcCenter [2]float64, src *D, dstCenter [2]float64, dst *D)
	// MultipoleToLocal converts src's multipole part into dst's local
	// part. Returning false vetoes the operator for this node pair; the
	// driver then falls back to P2P over the underlying particles.
	MultipoleToLocal func(srcCenter [2]float64, src *D, dstCenter [2]float64, dst *D) bool
	// L2L translates src's local part (about srcCenter) into dst's
	// local part (about dstCenter), accumulating.
	L2L func(srcCenter [2]float64, src *D, dstCenter [2]float64, dst *D)
	// L2P accumulates the local expansion's field at pt into pt.
	L2P func(center [2]float64, src *D, pt P)
	// P2L and M2P are used only when the semifar regime is active
	// (spec.md §4.4); nil disables semifar.
	P2L func(pt P, dstCenter [2]float64, dst *D)
	M2P func(srcCenter [2]float64, src *D, pt P)
}

// DevelopmentM2M2D translates src's multipole part into dst's,
// grounded on aran_development2d_m2m (original_source/aran/arandevelopment2d.c).
func DevelopmentM2M2D(srcCenter [2]float64, src *NodeData2D, dstCenter [2]float64, dst *NodeData2D) {
	zsrc := complex(srcCenter[0], srcCenter[1])
	zdst := complex(dstCenter[0], dstCenter[1])
	series2d.Translate(src.Multipole, zsrc, dst.Multipole, zdst)
}

// DevelopmentM2L2D converts src's multipole part into dst's local part,
// grounded on aran_development2d_m2l. Always returns true: the 2D
// operator has no veto condition.
func DevelopmentM2L2D(srcCenter [2]float64, src *NodeData2D, dstCenter [2]float64, dst *NodeData2D) bool {
	zsrc := complex(srcCenter[0], srcCenter[1])
	zdst := complex(dstCenter[0], dstCenter[1])
	series2d.MultipoleToLocal(src.Multipole, zsrc, dst.Local, zdst)
	return true
}

// DevelopmentL2L2D translates src's local part into dst's, grounded on
// aran_development2d_l2l.
func DevelopmentL2L2D(srcCenter [2]float64, src *NodeData2D, dstCenter [2]float64, dst *NodeData2D) {
	zsrc := complex(srcCenter[0], srcCenter[1])
	zdst := complex(dstCenter[0], dstCenter[1])
	series2d.Translate(src.Local, zsrc, dst.Local, zdst)
}

// Operators3D is Operators2D's 3D analogue.
type Operators3D[P any, D NodeData[D]] struct {
	P2P              func(i, j P)
	P2M              func(points []P, center [3]float64, dst *D)
	M2M              func(srcCenter [3]float64, src *D, dstCenter [3]float64, dst *D)
	MultipoleToLocal func(srcCenter [3]float64, src *D, dstCenter [3]float64, dst *D) bool
	L2L              func(srcCenter [3]float64, src *D, dstCenter [3]float64, dst *D)
	L2P              func(center [3]float64, src *D, pt P)
	P2L              func(pt P, dstCenter [3]float64, dst *D)
	M2P              func(srcCenter [3]float64, src *D, pt P)
}

func offset3(srcCenter, dstCenter [3]float64) (dx, dy, dz float64) {
	return dstCenter[0] - srcCenter[0], dstCenter[1] - srcCenter[1], dstCenter[2] - srcCenter[2]
}

// DevelopmentM2M3D translates src's multipole part into dst's using the
// requested translation variant, grounded on aran_development3d_m2m
// (original_source/aran/arandevelopment3d.c). variant is forwarded to
// series3d.Translate, which currently only implements Rotate — see its
// package-level deviation note.
func DevelopmentM2M3D(variant series3d.TranslationVariant) func(srcCenter [3]float64, src *NodeData3D, dstCenter [3]float64, dst *NodeData3D) {
	return func(srcCenter [3]float64, src *NodeData3D, dstCenter [3]float64, dst *NodeData3D) {
		dx, dy, dz := offset3(srcCenter, dstCenter)
		series3d.Translate(variant, src.Multipole, dx, dy, dz, dst.Multipole)
	}
}

// DevelopmentM2L3D converts src's multipole part into dst's local part,
// grounded on aran_development3d_m2l. variant is forwarded to
// series3d.MultipoleToLocal, which currently only implements Rotate —
// see its package-level deviation note. Always returns true.
func DevelopmentM2L3D(variant series3d.TranslationVariant) func(srcCenter [3]float64, src *NodeData3D, dstCenter [3]float64, dst *NodeData3D) bool {
	return func(srcCenter [3]float64, src *NodeData3D, dstCenter [3]float64, dst *NodeData3D) bool {
		dx, dy, dz := offset3(srcCenter, dstCenter)
		series3d.MultipoleToLocal(variant, src.Multipole, dx, dy, dz, dst.Local)
		return true
	}
}

// DevelopmentL2L3D translates src's local part into dst's, grounded on
// aran_development3d_l2l. variant is forwarded to series3d.Translate,
// which currently only implements Rotate — see its package-level
// deviation note.
func DevelopmentL2L3D(variant series3d.TranslationVariant) func(srcCenter [3]float64, src *NodeData3D, dstCenter [3]float64, dst *NodeData3D) {
	return func(srcCenter [3]float64, src *NodeData3D, dstCenter [3]float64, dst *NodeData3D) {
		dx, dy, dz := offset3(srcCenter, dstCenter)
		series3d.Translate(variant, src.Local, dx, dy, dz, dst.Local)
	}
}
