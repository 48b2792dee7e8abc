package bvh

import (
	"github.com/pkg/errors"
)

// Tolerance used when checking that the root box encloses the input
// vertices.
const vertexEpsilon float32 = 1e-5

// Validate checks the structural invariants of a tree built for tris (in
// their reordered form):
//
//   - every node has either zero or two children
//   - leaf ranges cover [0, len(tris)) exactly once, in order
//   - interior bounds equal the union of their children's bounds
//   - leaf bounds enclose every vertex of their triangles
//   - the root bounds enclose every input vertex
//
// Errors match ErrInvalidTree.
func Validate(root *Node, tris []Triangle) error {
	if root == nil {
		return errors.Wrap(ErrInvalidTree, "nil root")
	}

	if len(tris) == 0 {
		if !root.IsLeaf() || root.Count != 0 || !root.Bounds.IsEmpty() {
			return errors.Wrap(ErrInvalidTree, "empty input must yield an empty leaf")
		}
		return nil
	}

	for _, tri := range tris {
		for _, v := range tri.vertices() {
			if !root.Bounds.ContainsPoint(v, vertexEpsilon) {
				return errors.Wrapf(ErrInvalidTree, "root bounds %v do not contain vertex %v", root.Bounds, v)
			}
		}
	}

	next := 0
	var err error
	Walk(root, func(node *Node, depth int) bool {
		if err != nil {
			return false
		}

		if (node.Left == nil) != (node.Right == nil) {
			err = errors.Wrapf(ErrInvalidTree, "node at depth %d has exactly one child", depth)
			return false
		}

		if !node.IsLeaf() {
			union := node.Left.Bounds.Union(node.Right.Bounds)
			if union != node.Bounds {
				err = errors.Wrapf(ErrInvalidTree, "node at depth %d: bounds %v != union of children %v", depth, node.Bounds, union)
				return false
			}
			return true
		}

		if node.Offset != next {
			err = errors.Wrapf(ErrInvalidTree, "leaf at depth %d starts at %d; expected %d", depth, node.Offset, next)
			return false
		}
		if node.Count <= 0 || node.Offset+node.Count > len(tris) {
			err = errors.Wrapf(ErrInvalidTree, "leaf at depth %d has invalid range [%d, %d)", depth, node.Offset, node.Offset+node.Count)
			return false
		}
		for _, tri := range tris[node.Offset : node.Offset+node.Count] {
			for _, v := range tri.vertices() {
				if !node.Bounds.ContainsPoint(v, 0) {
					err = errors.Wrapf(ErrInvalidTree, "leaf at depth %d: bounds %v do not contain vertex %v", depth, node.Bounds, v)
					return false
				}
			}
		}
		next += node.Count
		return true
	})
	if err != nil {
		return err
	}

	if next != len(tris) {
		return errors.Wrapf(ErrInvalidTree, "leaves cover %d triangles; expected %d", next, len(tris))
	}
	return nil
}
