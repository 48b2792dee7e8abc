package bvh

import (
	"math"

	"github.com/achilleasa/polaris-bvh/types"
)

type Axis uint8

const (
	XAxis Axis = iota
	YAxis
	ZAxis
)

// A triangle primitive defined by its three vertex positions.
type Triangle struct {
	A, B, C types.Vec3
}

func (t Triangle) vertices() [3]types.Vec3 {
	return [3]types.Vec3{t.A, t.B, t.C}
}

// An axis-aligned bounding box.
type AABB struct {
	Min types.Vec3
	Max types.Vec3
}

// Create an empty bounding box. Its min corner is set to +Inf and its max
// corner to -Inf so that the union with any other box yields that box. This
// is also the bounding box reported for the root of an empty BVH.
func EmptyAABB() AABB {
	inf := float32(math.Inf(1))
	return AABB{
		Min: types.Splat(inf),
		Max: types.Splat(-inf),
	}
}

// Returns true if the box does not enclose any point.
func (b AABB) IsEmpty() bool {
	return b.Min[0] > b.Max[0] || b.Min[1] > b.Max[1] || b.Min[2] > b.Max[2]
}

// Grow box so it also encloses other.
func (b AABB) Union(other AABB) AABB {
	return AABB{
		Min: types.MinVec3(b.Min, other.Min),
		Max: types.MaxVec3(b.Max, other.Max),
	}
}

// Grow box so it also encloses point p.
func (b AABB) Extend(p types.Vec3) AABB {
	return AABB{
		Min: types.MinVec3(b.Min, p),
		Max: types.MaxVec3(b.Max, p),
	}
}

// Get the box side lengths. Empty boxes report a zero extent.
func (b AABB) Extent() types.Vec3 {
	if b.IsEmpty() {
		return types.Vec3{}
	}
	return b.Max.Sub(b.Min)
}

// Get the box center.
func (b AABB) Center() types.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// Calculate the box surface area: 2 * (dx*dy + dy*dz + dz*dx).
func (b AABB) SurfaceArea() float32 {
	side := b.Extent()
	return 2 * (side[0]*side[1] + side[1]*side[2] + side[2]*side[0])
}

// Returns true if other is fully enclosed by this box.
func (b AABB) Contains(other AABB) bool {
	for axis := 0; axis < 3; axis++ {
		if other.Min[axis] < b.Min[axis] || other.Max[axis] > b.Max[axis] {
			return false
		}
	}
	return true
}

// Returns true if point p lies inside the box grown by eps on every side.
func (b AABB) ContainsPoint(p types.Vec3, eps float32) bool {
	for axis := 0; axis < 3; axis++ {
		if p[axis] < b.Min[axis]-eps || p[axis] > b.Max[axis]+eps {
			return false
		}
	}
	return true
}

// A BVH tree node. Interior nodes own exactly two children. Leaf nodes have
// no children and reference Count triangles starting at Offset in the
// reordered triangle list returned by the builder.
type Node struct {
	Bounds AABB

	Left  *Node
	Right *Node

	// Leaf triangle range.
	Offset int
	Count  int
}

// Returns true if this is a leaf node.
func (n *Node) IsLeaf() bool {
	return n.Left == nil && n.Right == nil
}

// Get the height of the sub-tree rooted at this node. A single leaf has a
// height of 0.
func (n *Node) Height() int {
	if n.IsLeaf() {
		return 0
	}
	lh, rh := n.Left.Height(), n.Right.Height()
	if lh > rh {
		return lh + 1
	}
	return rh + 1
}

// Visit nodes in pre-order. The callback receives each node together with
// its depth (root is at depth 0). Returning false skips the node's children.
func Walk(root *Node, fn func(node *Node, depth int) bool) {
	if root == nil {
		return
	}
	walk(root, 0, fn)
}

func walk(node *Node, depth int, fn func(node *Node, depth int) bool) {
	if !fn(node, depth) || node.IsLeaf() {
		return
	}
	if node.Left != nil {
		walk(node.Left, depth+1, fn)
	}
	if node.Right != nil {
		walk(node.Right, depth+1, fn)
	}
}
