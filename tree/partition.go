package tree

// MarkRemote partitions t's existing points ahead of a distributed solve
// (spec.md §4.5 S3/S6). owner maps a point to the rank that owns it and
// must be the SAME function (same global assignment) on every
// participating rank — only rank, the caller's own rank id, differs
// between calls. Two things fall out of one traversal:
//
//   - every node whose subtree holds none of rank's own points is
//     flagged IsRemote, so this rank's zeroPass/upwardPass/downwardPass
//     skip it entirely, relying on ForwardExchange to fill it in; and
//   - every node whose subtree spans more than one owner is returned in
//     the shared list Solve exchanges over.
//
// The shared list is computed purely from owner and the tree shape, not
// from rank, so every rank calling MarkRemote with the same owner
// function gets the same shared list in the same order — required since
// the solver's exchange walks that list issuing one paired AllGather
// round per entry, in lockstep across ranks.
func (t *QuadTree[P, D]) MarkRemote(rank int, owner func(P) int) []*D {
	var shared []*D
	markRemote2(t.root, rank, owner, &shared)
	return shared
}

// markRemote2 returns this subtree's locally-owned point count (own, for
// IsRemote) and whether every point in it belongs to a single rank
// (uniform, and which one) — the global, rank-independent signal that
// decides shared-list membership.
func markRemote2[P Locator2D, D any](n *quadNode[P, D], rank int, owner func(P) int, shared *[]*D) (own int, uniformOwner int, uniform bool) {
	if n.isLeaf() {
		own, uniformOwner, uniform = partitionLeaf(n.points, rank, owner)
	} else {
		haveOwner := false
		uniform = true
		for _, c := range n.children {
			if c == nil {
				continue
			}
			co, cOwner, cUniform := markRemote2(c, rank, owner, shared)
			own += co
			if c.count == 0 {
				continue
			}
			if !cUniform {
				uniform = false
				continue
			}
			if !haveOwner {
				uniformOwner, haveOwner = cOwner, true
			} else if cOwner != uniformOwner {
				uniform = false
			}
		}
	}
	n.isRemote = own == 0 && n.count > 0
	if n.count > 0 && !uniform {
		*shared = append(*shared, &n.data)
	}
	return own, uniformOwner, uniform
}

// MarkRemote is OctTree's analogue of QuadTree.MarkRemote.
func (t *OctTree[P, D]) MarkRemote(rank int, owner func(P) int) []*D {
	var shared []*D
	markRemote3(t.root, rank, owner, &shared)
	return shared
}

func markRemote3[P Locator3D, D any](n *octNode[P, D], rank int, owner func(P) int, shared *[]*D) (own int, uniformOwner int, uniform bool) {
	if n.isLeaf() {
		own, uniformOwner, uniform = partitionLeaf(n.points, rank, owner)
	} else {
		haveOwner := false
		uniform = true
		for _, c := range n.children {
			if c == nil {
				continue
			}
			co, cOwner, cUniform := markRemote3(c, rank, owner, shared)
			own += co
			if c.count == 0 {
				continue
			}
			if !cUniform {
				uniform = false
				continue
			}
			if !haveOwner {
				uniformOwner, haveOwner = cOwner, true
			} else if cOwner != uniformOwner {
				uniform = false
			}
		}
	}
	n.isRemote = own == 0 && n.count > 0
	if n.count > 0 && !uniform {
		*shared = append(*shared, &n.data)
	}
	return own, uniformOwner, uniform
}

func partitionLeaf[P any](points []P, rank int, owner func(P) int) (own int, uniformOwner int, uniform bool) {
	if len(points) == 0 {
		return 0, 0, true
	}
	uniformOwner = owner(points[0])
	uniform = true
	for _, p := range points {
		o := owner(p)
		if o != uniformOwner {
			uniform = false
		}
		if o == rank {
			own++
		}
	}
	return own, uniformOwner, uniform
}
