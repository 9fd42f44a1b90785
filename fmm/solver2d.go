package fmm

import (
	"os"

	"aranfmm/internal/trace"
	"aranfmm/measure"
	"aranfmm/parallel"
	"aranfmm/series2d"
	"aranfmm/tree"
)

// ParallelConfig2D supplies the distributed-execution collaborators a
// Solver2D's S3/S6 shared-node exchanges drive (spec.md §4.5): a
// transport and the pack/unpack/reduce vtable for this solver's
// NodeData type. Partition records which node-data slots are shared
// across ranks and Solve runs ForwardExchange over them; Solve does not
// run BackwardExchange, which callers invoke themselves.
type ParallelConfig2D[D any] struct {
	Comm   parallel.Communicator
	VTable parallel.NodeDataVTable[D]
}

// Solver2D drives the FMM solve pipeline (spec.md §4.3) over a 2D
// bucket-leaf tree through a caller-supplied set of operator functors.
// It is parameterized directly over the node-data type D, per the
// Design Note resolving spec.md §9's open question in favor of
// generics.
type Solver2D[P tree.Locator2D, D NodeData[D]] struct {
	Tree     *tree.QuadTree[P, D]
	Ops      Operators2D[P, D]
	Cfg      Config
	Counters *measure.Registry
	Parallel *ParallelConfig2D[D]

	semifarThreshold int
	owns             func(P) bool
	shared           []*D
}

// Partition marks, among Tree's existing points, which ones rank owns
// (spec.md §4.5 S3): nodes holding none of rank's points are flagged
// remote (zeroPass/upwardPass/downwardPass skip them, relying on
// ForwardExchange to fill them in from their owning ranks), and every
// node spanning more than one owner is recorded so Solve's S3 exchange
// knows what to reduce over. owner must assign the SAME rank to each
// point on every participating rank's call — it is the global partition
// function, not a local predicate — so that every rank computes the
// identical shared-node list its exchange rounds depend on. Call before
// Solve on a distributed deployment; a single-rank owner that always
// returns rank is the correct single-rank default (nothing shared).
func (s *Solver2D[P, D]) Partition(rank int, owner func(P) int) {
	s.owns = func(p P) bool { return owner(p) == rank }
	s.shared = s.Tree.MarkRemote(rank, owner)
}

// NewSolver2D wires a tree, operator set and configuration into a
// solver. Counters is set to measure.Global.
func NewSolver2D[P tree.Locator2D, D NodeData[D]](t *tree.QuadTree[P, D], ops Operators2D[P, D], cfg Config) *Solver2D[P, D] {
	return &Solver2D[P, D]{
		Tree:     t,
		Ops:      ops,
		Cfg:      cfg,
		Counters: measure.Global,
	}
}

// Solve runs one complete S1/S2/S4/S5 pass over the tree (spec.md
// §4.3): zero every node's data, accumulate multipoles upward, convert
// multipole-to-local across well-separated node pairs (falling back to
// direct particle interaction elsewhere), then push local expansions
// downward onto the particles. order bounds the expansion degree in
// use, consulted only by the τ=0 profile-driven semifar chooser.
//
// When Partition has recorded a shared-node list, Solve also runs the
// S3 ForwardExchange between the upward and near/far passes: every
// rank's upward pass only accumulates multipole contributions from the
// points it owns, so a shared node's multipole table is incomplete
// until every owning rank's partial value has been summed in. The
// near/far pass then runs over the whole (now globally consistent)
// tree on every rank, which makes every rank's local expansion table
// identical without a matching backward reduction — S6
// (BackwardExchange) is deliberately not invoked here; see its doc
// comment.
func (s *Solver2D[P, D]) Solve(order int) error {
	s.semifarThreshold = chooseSemifarThreshold(s.Cfg, order, s.Cfg.LeafCapacity)
	trace.Debugf("solver2d: order=%d leaf_capacity=%d semifar_threshold=%d\n", order, s.Cfg.LeafCapacity, s.semifarThreshold)
	before := series2d.PrecisionWarnings()
	s.zeroPass()
	trace.Debugf("solver2d: zero pass done\n")
	s.upwardPass()
	trace.Debugf("solver2d: upward pass done\n")
	if err := s.checkPrecision("upward pass", before); err != nil {
		return err
	}
	before = series2d.PrecisionWarnings()
	if s.Parallel != nil && len(s.shared) > 0 {
		s.ForwardExchange(s.shared)
		trace.Debugf("solver2d: forward exchange done shared=%d\n", len(s.shared))
	}
	if err := s.nearFarPass(); err != nil {
		trace.Printf(os.Stderr, "solver2d: near/far pass failed: %v\n", err)
		return err
	}
	trace.Debugf("solver2d: near/far pass done\n")
	if err := s.checkPrecision("near/far pass", before); err != nil {
		return err
	}
	before = series2d.PrecisionWarnings()
	s.downwardPass()
	trace.Debugf("solver2d: downward pass done\n")
	return s.checkPrecision("downward pass", before)
}

// checkPrecision enforces Cfg.StrictPrecision (spec.md §7(b)/§9(c)): when
// strict mode is off this is a no-op, matching the non-fatal default;
// when it's on, a series2d.PrecisionWarnings() increment during the
// named pass since before is promoted to a fatal *PrecisionError instead
// of silently falling through as a counter bump only profiling ever
// reads.
func (s *Solver2D[P, D]) checkPrecision(pass string, before uint64) error {
	if !s.Cfg.StrictPrecision {
		return nil
	}
	if series2d.PrecisionWarnings() > before {
		return &PrecisionError{Operator: pass}
	}
	return nil
}

func (s *Solver2D[P, D]) zeroPass() {
	s.Tree.Traverse(tree.PostOrder, func(n tree.NodeInfo2D[P, D]) {
		if n.IsRemote {
			return
		}
		(*n.Data).Zero()
	})
}

func (s *Solver2D[P, D]) upwardPass() {
	s.Tree.TraverseWithParent(tree.PostOrder, func(n tree.NodeInfo2D[P, D], parent *tree.NodeInfo2D[P, D]) {
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

func (s *Solver2D[P, D]) nearFarPass() error {
	var failure error
	s.Tree.NearFarTraversal(
		func(a, b tree.NodeInfo2D[P, D]) {
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
		func(a, b tree.NodeInfo2D[P, D]) {
			if failure != nil {
				return
			}
			s.nearLeafPair(a, b)
		},
	)
	return failure
}

// nearLeafPair handles one near/touching leaf pair discovered by the
// dual traversal, applying the semifar regime (spec.md §4.4) when
// active: small-vs-large pairs are resolved with P2L/M2P instead of
// full P2P, saving the O(n*m) direct cost when one side is small.
func (s *Solver2D[P, D]) nearLeafPair(a, b tree.NodeInfo2D[P, D]) {
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

// semifarHalf resolves a small/large leaf pair: small's particles feed
// large's local expansion directly (P2L), and large's already-built
// multipole supplies the field back onto small's particles (M2P).
func (s *Solver2D[P, D]) semifarHalf(small, large tree.NodeInfo2D[P, D]) {
	for _, pt := range small.Points {
		s.Ops.P2L(pt, large.Bound.Center(), large.Data)
		s.Counters.Inc("p2l")
		s.Ops.M2P(large.Bound.Center(), large.Data, pt)
		s.Counters.Inc("m2p")
	}
}

func (s *Solver2D[P, D]) p2pBetween(a, b tree.NodeInfo2D[P, D]) {
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

func (s *Solver2D[P, D]) downwardPass() {
	s.Tree.TraverseWithParent(tree.PreOrder, func(n tree.NodeInfo2D[P, D], parent *tree.NodeInfo2D[P, D]) {
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

// ForwardExchange runs one S3 shared-node forward exchange (spec.md
// §4.5): every rank's current value for each shared node-data slot is
// gathered and reduced into every other rank's copy, so the subsequent
// near/far pass sees contributions from every owner of that node.
// Solve calls this automatically once Partition has recorded a
// shared-node list.
func (s *Solver2D[P, D]) ForwardExchange(shared []*D) {
	s.exchange(shared, s.Parallel.VTable.ForwardPack, s.Parallel.VTable.ForwardUnpack)
}

// BackwardExchange runs one S6 shared-node backward exchange, combining
// local-expansion contributions the same way ForwardExchange combines
// multipole contributions. Solve does not call this itself: once
// ForwardExchange has made every shared node's multipole table globally
// consistent, running the near/far pass over the full tree on every
// rank (as Solve does) already produces an identical local-expansion
// table everywhere, with no rank-partial sum left to reduce — reducing
// again would double-count. BackwardExchange is for decompositions that
// instead partition the near/far interaction list itself across ranks
// (each rank computing only some of a shared node's M2L contributions),
// where the local table genuinely is partial per rank; such a caller
// invokes it directly between its own near/far and downward passes.
func (s *Solver2D[P, D]) BackwardExchange(shared []*D) {
	s.exchange(shared, s.Parallel.VTable.BackwardPack, s.Parallel.VTable.BackwardUnpack)
}

func (s *Solver2D[P, D]) exchange(shared []*D, pack func(D) []byte, unpack func([]byte) D) {
	if s.Parallel == nil {
		return
	}
	rank := s.Parallel.Comm.Rank()
	for _, d := range shared {
		payload := pack(*d)
		trace.Debugf("solver2d: exchange rank=%d digest=%x\n", rank, parallel.Digest(payload))
		all := s.Parallel.Comm.AllGather(payload)
		for r, buf := range all {
			if r == rank {
				continue
			}
			s.Parallel.VTable.Reduce(d, unpack(buf))
		}
	}
}
