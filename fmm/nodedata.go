// Package fmm implements the FMM driver (spec.md §4.3): the generic
// solve pipeline (zero, upward, near/far dual traversal, downward,
// and — when a parallel.Communicator is configured — the shared-node
// forward/backward exchanges) operating through seven caller-supplied
// operator functors. The solver is parameterized directly over the
// per-node expansion-pair type, per the Design Note resolving spec.md
// §9's open question in favor of Go generics over a type-erased
// interface.
package fmm

import (
	"aranfmm/series2d"
	"aranfmm/series3d"
)

// NodeData constrains the per-node payload a Solver operates on: it
// must be zeroable (S1), combinable with another instance of the same
// type for the shared-node reduction (S3/S6), and cloneable.
type NodeData[D any] interface {
	Zero()
	AddFrom(src D)
	Clone() D
}

// NodeData2D is the 2D expansion pair a tree node carries, grounded on
// AranDevelopment2d (original_source/aran/arandevelopment2d.h): a
// multipole (exterior) series and a local (interior) series, each
// translated independently by M2M/L2L and converted into one another by
// M2L.
type NodeData2D struct {
	Multipole *series2d.LaurentSeries2d
	Local     *series2d.LaurentSeries2d
}

// NewNodeData2D allocates a zeroed pair: a pure-multipole series of
// negative degree negdeg and a pure-local series of positive degree
// posdeg.
func NewNodeData2D(posdeg, negdeg int) NodeData2D {
	return NodeData2D{
		Multipole: series2d.New(0, negdeg),
		Local:     series2d.New(posdeg, 0),
	}
}

// Zero nullifies both parts (spec.md §4.3 S1).
func (n NodeData2D) Zero() {
	n.Multipole.SetZero()
	n.Local.SetZero()
}

// AddFrom accumulates src's coefficients into n's (the S3/S6 shared-node
// reduction is pointwise addition of matching parts).
func (n NodeData2D) AddFrom(src NodeData2D) {
	n.Multipole.AddSeries(src.Multipole)
	n.Local.AddSeries(src.Local)
}

// Clone deep-copies n.
func (n NodeData2D) Clone() NodeData2D {
	return NodeData2D{Multipole: n.Multipole.Clone(), Local: n.Local.Clone()}
}

// NodeData3D is the 3D analogue of NodeData2D, grounded on
// AranDevelopment3d (original_source/aran/arandevelopment3d.h).
type NodeData3D struct {
	Multipole *series3d.SphericalSeries3d
	Local     *series3d.SphericalSeries3d
}

// NewNodeData3D allocates a zeroed pair.
func NewNodeData3D(posdeg, negdeg int) NodeData3D {
	return NodeData3D{
		Multipole: series3d.New(0, negdeg),
		Local:     series3d.New(posdeg, 0),
	}
}

// Zero nullifies both parts.
func (n NodeData3D) Zero() {
	n.Multipole.SetZero()
	n.Local.SetZero()
}

// AddFrom accumulates src's coefficients into n's.
func (n NodeData3D) AddFrom(src NodeData3D) {
	n.Multipole.AddSeries(src.Multipole)
	n.Local.AddSeries(src.Local)
}

// Clone deep-copies n.
func (n NodeData3D) Clone() NodeData3D {
	return NodeData3D{Multipole: n.Multipole.Clone(), Local: n.Local.Clone()}
}
