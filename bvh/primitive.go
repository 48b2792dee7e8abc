package bvh

import (
	"github.com/achilleasa/polaris-bvh/types"
	"github.com/pkg/errors"
)

// PrimitiveInfo caches the data the builder needs for each input triangle so
// it does not have to be recalculated while partitioning.
type PrimitiveInfo struct {
	// Index of the triangle in the input list.
	Index int

	Centroid types.Vec3
	Bounds   AABB

	// Spatial sort key assigned by the presorter.
	MortonCode uint64
}

// Calculate the centroid and bounding box for each triangle. The returned
// list follows the input order. Triangles with NaN or infinite vertex
// coordinates cause an ErrMalformedPrimitive error; degenerate (zero area)
// triangles are accepted.
func Preprocess(tris []Triangle) ([]PrimitiveInfo, error) {
	prims := make([]PrimitiveInfo, len(tris))
	for index, tri := range tris {
		if !tri.A.IsFinite() || !tri.B.IsFinite() || !tri.C.IsFinite() {
			return nil, errors.Wrapf(ErrMalformedPrimitive, "triangle %d", index)
		}

		prims[index] = PrimitiveInfo{
			Index:    index,
			Centroid: tri.A.Add(tri.B).Add(tri.C).Mul(1.0 / 3.0),
			Bounds: AABB{
				Min: types.MinVec3(tri.A, types.MinVec3(tri.B, tri.C)),
				Max: types.MaxVec3(tri.A, types.MaxVec3(tri.B, tri.C)),
			},
		}
	}
	return prims, nil
}

// Calculate the bounds enclosing all primitive boxes.
func primBounds(prims []PrimitiveInfo) AABB {
	bounds := EmptyAABB()
	for i := range prims {
		bounds = bounds.Union(prims[i].Bounds)
	}
	return bounds
}

// Calculate the bounds enclosing all primitive centroids.
func centroidBounds(prims []PrimitiveInfo) AABB {
	bounds := EmptyAABB()
	for i := range prims {
		bounds = bounds.Extend(prims[i].Centroid)
	}
	return bounds
}
