package tree

// Locator3D is implemented by any point type an OctTree can index.
type Locator3D interface {
	Pos3D() (x, y, z float64)
}

// NodeInfo3D is presented to a Traverse callback: the node's bound,
// depth, locally-held points, user-data slot and remote flag.
type NodeInfo3D[P Locator3D, D any] struct {
	Bound      Bound3D
	Depth      int
	Points     []P
	PointCount int
	Data       *D
	IsRemote   bool
}

type octNode[P Locator3D, D any] struct {
	bound    Bound3D
	depth    int
	points   []P
	count    int
	children [8]*octNode[P, D]
	data     D
	isRemote bool
}

func (n *octNode[P, D]) isLeaf() bool {
	for _, c := range n.children {
		if c != nil {
			return false
		}
	}
	return true
}

// OctTree is a bucket-leaf spatial tree over 3D points, the reference
// implementation of the PR-tree external contract spec.md §6 describes.
type OctTree[P Locator3D, D any] struct {
	root         *octNode[P, D]
	leafCapacity int
	maxDepth     int
	count        int
}

// NewOctTree builds an empty tree covering bound, splitting leaves once
// they exceed leafCapacity points (subject to maxDepth).
func NewOctTree[P Locator3D, D any](bound Bound3D, leafCapacity, maxDepth int) *OctTree[P, D] {
	if leafCapacity < 1 {
		leafCapacity = 1
	}
	if maxDepth < 1 {
		maxDepth = 1
	}
	return &OctTree[P, D]{
		root:         &octNode[P, D]{bound: bound},
		leafCapacity: leafCapacity,
		maxDepth:     maxDepth,
	}
}

// Bounds returns the tree's root bounding box.
func (t *OctTree[P, D]) Bounds() Bound3D { return t.root.bound }

// Depth returns the tree's maximum occupied depth.
func (t *OctTree[P, D]) Depth() int { return depthOf3(t.root) }

func depthOf3[P Locator3D, D any](n *octNode[P, D]) int {
	if n.isLeaf() {
		return n.depth
	}
	max := n.depth
	for _, c := range n.children {
		if c == nil {
			continue
		}
		if d := depthOf3(c); d > max {
			max = d
		}
	}
	return max
}

// PointCount returns the total number of points held in the tree.
func (t *OctTree[P, D]) PointCount() int { return t.count }

// Insert adds p to the tree, subdividing leaves that overflow
// leafCapacity.
func (t *OctTree[P, D]) Insert(p P) {
	insert3(t.root, p, t.leafCapacity, t.maxDepth)
	t.count++
}

func insert3[P Locator3D, D any](n *octNode[P, D], p P, leafCapacity, maxDepth int) {
	n.count++
	if !n.isLeaf() {
		x, y, z := p.Pos3D()
		idx, _ := n.bound.octant(x, y, z)
		insert3(n.children[idx], p, leafCapacity, maxDepth)
		return
	}

	n.points = append(n.points, p)
	if len(n.points) <= leafCapacity || n.depth >= maxDepth {
		return
	}

	pending := n.points
	n.points = nil
	for i := range n.children {
		n.children[i] = &octNode[P, D]{bound: n.bound.childBound(i), depth: n.depth + 1}
	}
	for _, q := range pending {
		x, y, z := q.Pos3D()
		idx, _ := n.bound.octant(x, y, z)
		insert3(n.children[idx], q, leafCapacity, maxDepth)
	}
}

// Find reports whether any point in the tree satisfies pred, returning
// the first match found.
func (t *OctTree[P, D]) Find(pred func(P) bool) (P, bool) {
	return find3(t.root, pred)
}

func find3[P Locator3D, D any](n *octNode[P, D], pred func(P) bool) (P, bool) {
	for _, p := range n.points {
		if pred(p) {
			return p, true
		}
	}
	for _, c := range n.children {
		if c == nil {
			continue
		}
		if p, ok := find3(c, pred); ok {
			return p, true
		}
	}
	var zero P
	return zero, false
}

// Remove deletes the first point satisfying pred and reports whether one
// was removed.
func (t *OctTree[P, D]) Remove(pred func(P) bool) bool {
	if remove3(t.root, pred) {
		t.count--
		return true
	}
	return false
}

func remove3[P Locator3D, D any](n *octNode[P, D], pred func(P) bool) bool {
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
		if remove3(c, pred) {
			return true
		}
	}
	return false
}

// Traverse visits every node (internal and leaf) in pre- or post-order.
func (t *OctTree[P, D]) Traverse(order Order, fn func(NodeInfo3D[P, D])) {
	traverse3(t.root, order, fn)
}

// TraverseWithParent visits every node in pre- or post-order like
// Traverse, additionally passing the parent node's info (nil at the
// root).
func (t *OctTree[P, D]) TraverseWithParent(order Order, fn func(node NodeInfo3D[P, D], parent *NodeInfo3D[P, D])) {
	traverseWithParent3(t.root, nil, order, fn)
}

func traverseWithParent3[P Locator3D, D any](n, parent *octNode[P, D], order Order, fn func(NodeInfo3D[P, D], *NodeInfo3D[P, D])) {
	var pinfo *NodeInfo3D[P, D]
	if parent != nil {
		pi := info3(parent)
		pinfo = &pi
	}
	info := info3(n)
	if order == PreOrder {
		fn(info, pinfo)
	}
	for _, c := range n.children {
		if c != nil {
			traverseWithParent3(c, n, order, fn)
		}
	}
	if order == PostOrder {
		fn(info, pinfo)
	}
}

func traverse3[P Locator3D, D any](n *octNode[P, D], order Order, fn func(NodeInfo3D[P, D])) {
	info := info3(n)
	if order == PreOrder {
		fn(info)
	}
	for _, c := range n.children {
		if c != nil {
			traverse3(c, order, fn)
		}
	}
	if order == PostOrder {
		fn(info)
	}
}

// NearFarTraversal performs a dual-tree walk pairing the tree with
// itself; see QuadTree.NearFarTraversal for the classification rule.
func (t *OctTree[P, D]) NearFarTraversal(farFn, nearFn func(a, b NodeInfo3D[P, D])) {
	dualTraverse3(t.root, t.root, farFn, nearFn)
}

func dualTraverse3[P Locator3D, D any](a, b *octNode[P, D], farFn, nearFn func(x, y NodeInfo3D[P, D])) {
	if a == b {
		if a.isLeaf() {
			nearFn(info3(a), info3(a))
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
				dualTraverse3(a.children[i], a.children[j], farFn, nearFn)
			}
		}
		return
	}

	if a.bound.Separation(b.bound) >= maxF(a.bound.Diameter(), b.bound.Diameter()) {
		farFn(info3(a), info3(b))
		return
	}
	if a.isLeaf() && b.isLeaf() {
		nearFn(info3(a), info3(b))
		return
	}

	splitA := !a.isLeaf() && (b.isLeaf() || a.bound.Diameter() >= b.bound.Diameter())
	if splitA {
		for _, c := range a.children {
			if c != nil {
				dualTraverse3(c, b, farFn, nearFn)
			}
		}
		return
	}
	for _, c := range b.children {
		if c != nil {
			dualTraverse3(a, c, farFn, nearFn)
		}
	}
}

func info3[P Locator3D, D any](n *octNode[P, D]) NodeInfo3D[P, D] {
	return NodeInfo3D[P, D]{Bound: n.bound, Depth: n.depth, Points: n.points, PointCount: n.count, Data: &n.data, IsRemote: n.isRemote}
}
