package tree

// Locator2D is implemented by any point type a QuadTree can index.
type Locator2D interface {
	Pos2D() (x, y float64)
}

// NodeInfo2D is presented to a Traverse callback: the node's bound,
// depth, locally-held points, user-data slot and remote flag (false
// unless MarkRemote has partitioned the tree for a distributed solve).
type NodeInfo2D[P Locator2D, D any] struct {
	Bound Bound2D
	Depth int
	// Points holds this node's own points (nonempty only at leaves).
	Points []P
	// PointCount is the total number of points in this node's subtree,
	// used to decide whether an interior node's M2M/L2L pass has
	// anything to contribute (spec.md §4.3 S2).
	PointCount int
	Data       *D
	IsRemote   bool
}

type quadNode[P Locator2D, D any] struct {
	bound    Bound2D
	depth    int
	points   []P
	count    int
	children [4]*quadNode[P, D]
	data     D
	isRemote bool
}

func (n *quadNode[P, D]) isLeaf() bool {
	for _, c := range n.children {
		if c != nil {
			return false
		}
	}
	return true
}

// QuadTree is a bucket-leaf spatial tree over 2D points, the reference
// implementation of the PR-tree external contract spec.md §6 describes.
type QuadTree[P Locator2D, D any] struct {
	root         *quadNode[P, D]
	leafCapacity int
	maxDepth     int
	count        int
}

// NewQuadTree builds an empty tree covering bound, splitting leaves once
// they exceed leafCapacity points (subject to maxDepth, which bounds
// recursion when points coincide or cluster arbitrarily tightly).
func NewQuadTree[P Locator2D, D any](bound Bound2D, leafCapacity, maxDepth int) *QuadTree[P, D] {
	if leafCapacity < 1 {
		leafCapacity = 1
	}
	if maxDepth < 1 {
		maxDepth = 1
	}
	return &QuadTree[P, D]{
		root:         &quadNode[P, D]{bound: bound},
		leafCapacity: leafCapacity,
		maxDepth:     maxDepth,
	}
}

// Bounds returns the tree's root bounding box.
func (t *QuadTree[P, D]) Bounds() Bound2D { return t.root.bound }

// Depth returns the tree's maximum occupied depth.
func (t *QuadTree[P, D]) Depth() int { return depthOf2(t.root) }

func depthOf2[P Locator2D, D any](n *quadNode[P, D]) int {
	if n.isLeaf() {
		return n.depth
	}
	max := n.depth
	for _, c := range n.children {
		if c == nil {
			continue
		}
		if d := depthOf2(c); d > max {
			max = d
		}
	}
	return max
}

// PointCount returns the total number of points held in the tree.
func (t *QuadTree[P, D]) PointCount() int { return t.count }

// Insert adds p to the tree, subdividing leaves that overflow
// leafCapacity.
func (t *QuadTree[P, D]) Insert(p P) {
	insert2(t.root, p, t.leafCapacity, t.maxDepth)
	t.count++
}

func insert2[P Locator2D, D any](n *quadNode[P, D], p P, leafCapacity, maxDepth int) {
	n.count++
	if !n.isLeaf() {
		x, y := p.Pos2D()
		idx, _ := n.bound.quadrant(x, y)
		insert2(n.children[idx], p, leafCapacity, maxDepth)
		return
	}

	n.points = append(n.points, p)
	if len(n.points) <= leafCapacity || n.depth >= maxDepth {
		return
	}

	pending := n.points
	n.points = nil
	for i := range n.children {
		n.children[i] = &quadNode[P, D]{bound: n.bound.childBound(i), depth: n.depth + 1}
	}
	for _, q := range pending {
		x, y := q.Pos2D()
		idx, _ := n.bound.quadrant(x, y)
		insert2(n.children[idx], q, leafCapacity, maxDepth)
	}
}

// Find reports whether any point in the tree satisfies pred, returning
// the first match found.
func (t *QuadTree[P, D]) Find(pred func(P) bool) (P, bool) {
	return find2(t.root, pred)
}

func find2[P Locator2D, D any](n *quadNode[P, D], pred func(P) bool) (P, bool) {
	for _, p := range n.points {
		if pred(p) {
			return p, true
		}
	}
	for _, c := range n.children {
		if c == nil {
			continue
		}
		if p, ok := find2(c, pred); ok {
			return p, true
		}
	}
	var zero P
	return zero, false
}

// Remove deletes the first point satisfying pred and reports whether one
// was removed.
func (t *QuadTree[P, D]) Remove(pred func(P) bool) bool {
	if remove2(t.root, pred) {
		t.count--
		return true
	}
	return false
}

func remove2[P Locator2D, D any](n *quadNode[P, D], pred func(P) bool) bool {
	for i, p := range n.points {
		if pred(p) {
			n.points = append(n.points[:i], n.points[i+1:]...)
			return true
		}
	}
	for _, c := range n.children {
		if c == nil {
			continue
		}
		if remove2(c, pred) {
			return true
		}
	}
	return false
}

// Traverse visits every node (internal and leaf) in pre- or post-order,
// exposing each node's bound, depth, points and user-data slot.
func (t *QuadTree[P, D]) Traverse(order Order, fn func(NodeInfo2D[P, D])) {
	traverse2(t.root, order, fn)
}

func traverse2[P Locator2D, D any](n *quadNode[P, D], order Order, fn func(NodeInfo2D[P, D])) {
	info := info2(n)
	if order == PreOrder {
		fn(info)
	}
	for _, c := range n.children {
		if c != nil {
			traverse2(c, order, fn)
		}
	}
	if order == PostOrder {
		fn(info)
	}
}

// TraverseWithParent visits every node in pre- or post-order like
// Traverse, additionally passing the parent node's info (nil at the
// root), so callers can implement parent/child operators (M2M, L2L)
// directly off the callback.
func (t *QuadTree[P, D]) TraverseWithParent(order Order, fn func(node NodeInfo2D[P, D], parent *NodeInfo2D[P, D])) {
	traverseWithParent2(t.root, nil, order, fn)
}

func traverseWithParent2[P Locator2D, D any](n, parent *quadNode[P, D], order Order, fn func(NodeInfo2D[P, D], *NodeInfo2D[P, D])) {
	var pinfo *NodeInfo2D[P, D]
	if parent != nil {
		pi := info2(parent)
		pinfo = &pi
	}
	info := info2(n)
	if order == PreOrder {
		fn(info, pinfo)
	}
	for _, c := range n.children {
		if c != nil {
			traverseWithParent2(c, n, order, fn)
		}
	}
	if order == PostOrder {
		fn(info, pinfo)
	}
}

// NearFarTraversal performs a dual-tree walk pairing the tree with
// itself, classifying node pairs by bounding-box separation: a pair is
// far when the boxes are separated by at least the larger box's
// diameter (a standard well-separated-pair criterion), and near
// otherwise once both sides are leaves. farFn and nearFn each receive
// the NodeInfo2D of the two paired nodes, in the order the
// recursion discovered them; self-pairs (a node against itself) are only
// ever passed to nearFn.
func (t *QuadTree[P, D]) NearFarTraversal(farFn, nearFn func(a, b NodeInfo2D[P, D])) {
	dualTraverse2(t.root, t.root, farFn, nearFn)
}

func dualTraverse2[P Locator2D, D any](a, b *quadNode[P, D], farFn, nearFn func(x, y NodeInfo2D[P, D])) {
	if a == b {
		if a.isLeaf() {
			nearFn(info2(a), info2(a))
			return
		}
		for i := range a.children {
			if a.children[i] == nil {
				continue
			}
			for j := i; j < len(a.children); j++ {
				if a.children[j] == nil {
					continue
				}
				dualTraverse2(a.children[i], a.children[j], farFn, nearFn)
			}
		}
		return
	}

	if a.bound.Separation(b.bound) >= maxF(a.bound.Diameter(), b.bound.Diameter()) {
		farFn(info2(a), info2(b))
		return
	}
	if a.isLeaf() && b.isLeaf() {
		nearFn(info2(a), info2(b))
		return
	}

	splitA := !a.isLeaf() && (b.isLeaf() || a.bound.Diameter() >= b.bound.Diameter())
	if splitA {
		for _, c := range a.children {
			if c != nil {
				dualTraverse2(c, b, farFn, nearFn)
			}
		}
		return
	}
	for _, c := range b.children {
		if c != nil {
			dualTraverse2(a, c, farFn, nearFn)
		}
	}
}

func info2[P Locator2D, D any](n *quadNode[P, D]) NodeInfo2D[P, D] {
	return NodeInfo2D[P, D]{Bound: n.bound, Depth: n.depth, Points: n.points, PointCount: n.count, Data: &n.data, IsRemote: n.isRemote}
}

func maxF(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
