package fmm

import (
	"os"

	"aranfmm/internal/trace"
	"aranfmm/measure"
	"aranfmm/parallel"
	"aranfmm/series3d"
	"aranfmm/tree"
)

// ParallelConfig3D is ParallelConfig2D's 3D analogue.
type ParallelConfig3D[D any] struct {
	Comm   parallel.Communicator
	VTable parallel.NodeDataVTable[D]
}

// Solver3D is Solver2D's 3D analogue, driving the same S1/S2/S4/S5
// pipeline over an OctTree.
type Solver3D[P tree.Locator3D, D NodeData[D]] struct {
	Tree     *tree.OctTree[P, D]
	Ops      Operators3D[P, D]
	Cfg      Config
	Counters *measure.Registry
	Parallel *ParallelConfig3D[D]

	semifarThreshold int
	owns             func(P) bool
	shared           []*D
}

// Partition is Solver2D.Partition's 3D analogue.
func (s *Solver3D[P, D]) Partition(rank int, owner func(P) int) {
	s.owns = func(p P) bool { return owner(p) == rank }
	s.shared = s.Tree.MarkRemote(rank, owner)
}

// NewSolver3D wires a tree, operator set and configuration into a
// solver. Counters is set to measure.Global.
func NewSolver3D[P tree.Locator3D, D NodeData[D]](t *tree.OctTree[P, D], ops Operators3D[P, D], cfg Config) *Solver3D[P, D] {
	return &Solver3D[P, D]{
		Tree:     t,
		Ops:      ops,
		Cfg:      cfg,
		Counters: measure.Global,
	}
}

// Solve runs one complete pass, including the S3 ForwardExchange once
// Partition has recorded a shared-node list; see Solver2D.Solve.
func (s *Solver3D[P, D]) Solve(order int) error {
	s.semifarThreshold = chooseSemifarThreshold(s.Cfg, order, s.Cfg.LeafCapacity)
	trace.Debugf("solver3d: order=%d leaf_capacity=%d semifar_threshold=%d\n", order, s.Cfg.LeafCapacity, s.semifarThreshold)
	before := series3d.PrecisionWarnings()
	s.zeroPass()
	trace.Debugf("solver3d: zero pass done\n")
	s.upwardPass()
	trace.Debugf("solver3d: upward pass done\n")
	if err := s.checkPrecision("upward pass", before); err != nil {
		return err
	}
	before = series3d.PrecisionWarnings()
	if s.Parallel != nil && len(s.shared) > 0 {
		s.ForwardExchange(s.shared)
		trace.Debugf("solver3d: forward exchange done shared=%d\n", len(s.shared))
	}
	if err := s.nearFarPass(); err != nil {
		trace.Printf(os.Stderr, "solver3d: near/far pass failed: %v\n", err)
		return err
	}
	trace.Debugf("solver3d: near/far pass done\n")
	if err := s.checkPrecision("near/far pass", before); err != nil {
		return err
	}
	before = series3d.PrecisionWarnings()
	s.downwardPass()
	trace.Debugf("solver3d: downward pass done\n")
	return s.checkPrecision("downward pass", before)
}

// checkPrecision is Solver2D.checkPrecision's 3D analogue, polling
// series3d.PrecisionWarnings() instead of series2d's.
func (s *Solver3D[P, D]) checkPrecision(pass string, before uint64) error {
	if !s.Cfg.StrictPrecision {
		return nil
	}
	if series3d.PrecisionWarnings() > before {
		return &PrecisionError{Operator: pass}
	}
	return nil
}

func (s *Solver3D[P, D]) zeroPass() {
	s.Tree.Traverse(tree.PostOrder, func(n tree.NodeInfo3D[P, D]) {
		if n.IsRemote {
			return
		}
		(*n.Data).Zero()
	})
}

func (s *Solver3D[P, D]) upwardPass() {
	s.Tree.TraverseWithParent(tree.PostOrder, func(n tree.NodeInfo3D[P, D], parent *tree.NodeInfo3D[P, D]) {
		if n.IsRemote {
			return
		}
		pts := filterOwned(n.Points, s.owns)
		if len(pts) > 0 {
			s.Ops.P2M(pts, n.Bound.Center(), n.Data)
			s.Counters.Inc("p2m")
		}
		if parent != nil && !parent.IsRemote && n.PointCount > 0 {
			s.Ops.M2M(n.Bound.Center(), n.Data, parent.Bound.Center(), parent.Data)
			s.Counters.Inc("m2m")
		}
	})
}

func (s *Solver3D[P, D]) nearFarPass() error {
	var failure error
	s.Tree.NearFarTraversal(
		func(a, b tree.NodeInfo3D[P, D]) {
			if failure != nil {
				return
			}
			s.Counters.Inc("m2l_pair")
			ok1 := s.Ops.MultipoleToLocal(a.Bound.Center(), a.Data, b.Bound.Center(), b.Data)
			s.Counters.Inc("m2l")
			ok2 := s.Ops.MultipoleToLocal(b.Bound.Center(), b.Data, a.Bound.Center(), a.Data)
			s.Counters.Inc("m2l")
			if ok1 != ok2 {
				failure = &ContractViolation{Reason: "M2L veto must agree for both directions of a node pair"}
				return
			}
			if !ok1 {
				s.p2pBetween(a, b)
			}
		},
		func(a, b tree.NodeInfo3D[P, D]) {
			if failure != nil {
				return
			}
			s.nearLeafPair(a, b)
		},
	)
	return failure
}

func (s *Solver3D[P, D]) nearLeafPair(a, b tree.NodeInfo3D[P, D]) {
	tau := s.semifarThreshold
	if tau == SemifarDisabled || tau == SemifarProfileDriven || s.Ops.P2L == nil || s.Ops.M2P == nil || a.Data == b.Data {
		s.p2pBetween(a, b)
		return
	}
	aSmall := len(a.Points) < tau
	bSmall := len(b.Points) < tau
	switch {
	case aSmall == bSmall:
		s.p2pBetween(a, b)
	case aSmall:
		s.semifarHalf(a, b)
	default:
		s.semifarHalf(b, a)
	}
}

func (s *Solver3D[P, D]) semifarHalf(small, large tree.NodeInfo3D[P, D]) {
	for _, pt := range small.Points {
		s.Ops.P2L(pt, large.Bound.Center(), large.Data)
		s.Counters.Inc("p2l")
		s.Ops.M2P(large.Bound.Center(), large.Data, pt)
		s.Counters.Inc("m2p")
	}
}

func (s *Solver3D[P, D]) p2pBetween(a, b tree.NodeInfo3D[P, D]) {
	if a.Data == b.Data {
		pts := a.Points
		for i := 0; i < len(pts); i++ {
			for j := i + 1; j < len(pts); j++ {
				s.Ops.P2P(pts[i], pts[j])
				s.Counters.Inc("p2p")
			}
		}
		return
	}
	for _, i := range a.Points {
		for _, j := range b.Points {
			s.Ops.P2P(i, j)
			s.Counters.Inc("p2p")
		}
	}
}

func (s *Solver3D[P, D]) downwardPass() {
	s.Tree.TraverseWithParent(tree.PreOrder, func(n tree.NodeInfo3D[P, D], parent *tree.NodeInfo3D[P, D]) {
		if n.IsRemote {
			return
		}
		if parent != nil {
			s.Ops.L2L(parent.Bound.Center(), parent.Data, n.Bound.Center(), n.Data)
			s.Counters.Inc("l2l")
		}
		for _, pt := range filterOwned(n.Points, s.owns) {
			s.Ops.L2P(n.Bound.Center(), n.Data, pt)
			s.Counters.Inc("l2p")
		}
	})
}

// ForwardExchange runs one S3 shared-node forward exchange; see
// Solver2D.ForwardExchange.
func (s *Solver3D[P, D]) ForwardExchange(shared []*D) {
	s.exchange(shared, s.Parallel.VTable.ForwardPack, s.Parallel.VTable.ForwardUnpack)
}

// BackwardExchange runs one S6 shared-node backward exchange; see
// Solver2D.BackwardExchange.
func (s *Solver3D[P, D]) BackwardExchange(shared []*D) {
	s.exchange(shared, s.Parallel.VTable.BackwardPack, s.Parallel.VTable.BackwardUnpack)
}

func (s *Solver3D[P, D]) exchange(shared []*D, pack func(D) []byte, unpack func([]byte) D) {
	if s.Parallel == nil {
		return
	}
	rank := s.Parallel.Comm.Rank()
	for _, d := range shared {
		payload := pack(*d)
		trace.Debugf("solver3d: exchange rank=%d digest=%x\n", rank, parallel.Digest(payload))
		all := s.Parallel.Comm.AllGather(payload)
		for r, buf := range all {
			if r == rank {
				continue
			}
			s.Parallel.VTable.Reduce(d, unpack(buf))
		}
	}
}
