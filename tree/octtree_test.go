package tree

import "testing"

type point3 struct {
	x, y, z float64
	id      int
}

func (p point3) Pos3D() (float64, float64, float64) { return p.x, p.y, p.z }

func unitBound3() Bound3D {
	return Bound3D{Min: [3]float64{0, 0, 0}, Max: [3]float64{1, 1, 1}}
}

func TestOctTreeInsertAndPointCount(t *testing.T) {
	tr := NewOctTree[point3, int](unitBound3(), 2, 10)
	pts := []point3{
		{0.1, 0.1, 0.1, 0}, {0.9, 0.1, 0.1, 1}, {0.1, 0.9, 0.1, 2},
		{0.9, 0.9, 0.9, 3}, {0.2, 0.2, 0.8, 4},
	}
	for _, p := range pts {
		tr.Insert(p)
	}
	if got := tr.PointCount(); got != len(pts) {
		t.Fatalf("PointCount() = %d, want %d", got, len(pts))
	}
}

func TestOctTreeFindAndRemove(t *testing.T) {
	tr := NewOctTree[point3, int](unitBound3(), 2, 10)
	tr.Insert(point3{0.3, 0.7, 0.2, 42})
	tr.Insert(point3{0.6, 0.1, 0.9, 7})

	if _, ok := tr.Find(func(p point3) bool { return p.id == 42 }); !ok {
		t.Fatalf("expected to find id 42")
	}
	if !tr.Remove(func(p point3) bool { return p.id == 42 }) {
		t.Fatalf("expected removal to succeed")
	}
	if tr.PointCount() != 1 {
		t.Fatalf("PointCount() = %d, want 1", tr.PointCount())
	}
	if _, ok := tr.Find(func(p point3) bool { return p.id == 42 }); ok {
		t.Fatalf("removed point should no longer be found")
	}
}

func TestOctTreeSplitsOnOverflow(t *testing.T) {
	tr := NewOctTree[point3, int](unitBound3(), 1, 10)
	for i := 0; i < 9; i++ {
		tr.Insert(point3{0.05 * float64(i+1), 0.05 * float64(i+1), 0.05 * float64(i+1), i})
	}
	if tr.root.isLeaf() {
		t.Fatalf("expected root to have split after exceeding leaf capacity")
	}
}

func TestOctTreeTraverseOrdering(t *testing.T) {
	tr := NewOctTree[point3, int](unitBound3(), 1, 10)
	for i := 0; i < 6; i++ {
		tr.Insert(point3{0.1 * float64(i+1), 0.1 * float64(i+1), 0.1 * float64(i+1), i})
	}

	var pre, post []int
	tr.Traverse(PreOrder, func(info NodeInfo3D[point3, int]) { pre = append(pre, info.Depth) })
	tr.Traverse(PostOrder, func(info NodeInfo3D[point3, int]) { post = append(post, info.Depth) })

	if pre[0] != 0 {
		t.Fatalf("pre-order must visit the root first, got depth %d", pre[0])
	}
	if post[len(post)-1] != 0 {
		t.Fatalf("post-order must visit the root last, got depth %d", post[len(post)-1])
	}
}

func TestOctTreeNearFarClassifiesDistantLeavesAsFar(t *testing.T) {
	tr := NewOctTree[point3, int](unitBound3(), 1, 10)
	tr.Insert(point3{0.01, 0.01, 0.01, 0})
	tr.Insert(point3{0.02, 0.02, 0.02, 1})
	tr.Insert(point3{0.98, 0.98, 0.98, 2})
	tr.Insert(point3{0.99, 0.99, 0.99, 3})

	var farCalls, nearCalls int
	tr.NearFarTraversal(
		func(a, b NodeInfo3D[point3, int]) { farCalls++ },
		func(a, b NodeInfo3D[point3, int]) { nearCalls++ },
	)
	if farCalls == 0 {
		t.Fatalf("expected at least one far pair for two well-separated clusters")
	}
	if nearCalls == 0 {
		t.Fatalf("expected at least one near pair")
	}
}

func TestBound3DSeparationZeroWhenOverlapping(t *testing.T) {
	a := Bound3D{Min: [3]float64{0, 0, 0}, Max: [3]float64{1, 1, 1}}
	b := Bound3D{Min: [3]float64{0.5, 0.5, 0.5}, Max: [3]float64{1.5, 1.5, 1.5}}
	if sep := a.Separation(b); sep != 0 {
		t.Fatalf("Separation of overlapping boxes = %v, want 0", sep)
	}
}
