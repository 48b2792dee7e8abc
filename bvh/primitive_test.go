package bvh

import (
	"math"
	"testing"

	"github.com/achilleasa/polaris-bvh/types"
)

func TestPreprocess(t *testing.T) {
	tris := []Triangle{
		{A: types.Vec3{0, 0, 0}, B: types.Vec3{3, 0, 0}, C: types.Vec3{0, 3, 0}},
		{A: types.Vec3{-1, 2, 5}, B: types.Vec3{-1, 2, 5}, C: types.Vec3{-1, 2, 5}},
	}

	prims, err := Preprocess(tris)
	if err != nil {
		t.Fatal(err)
	}
	if len(prims) != len(tris) {
		t.Fatalf("expected %d primitives; got %d", len(tris), len(prims))
	}

	type spec struct {
		expCentroid types.Vec3
		expBounds   AABB
	}
	specs := []spec{
		{types.Vec3{1, 1, 0}, AABB{Min: types.Vec3{0, 0, 0}, Max: types.Vec3{3, 3, 0}}},
		// Degenerate triangles are accepted
		{types.Vec3{-1, 2, 5}, AABB{Min: types.Vec3{-1, 2, 5}, Max: types.Vec3{-1, 2, 5}}},
	}
	for index, s := range specs {
		prim := prims[index]
		if prim.Index != index {
			t.Fatalf("[spec %d] expected primitive index %d; got %d", index, index, prim.Index)
		}
		for axis := 0; axis < 3; axis++ {
			if diff := prim.Centroid[axis] - s.expCentroid[axis]; diff < -1e-6 || diff > 1e-6 {
				t.Fatalf("[spec %d] expected centroid %v; got %v", index, s.expCentroid, prim.Centroid)
			}
		}
		if prim.Bounds != s.expBounds {
			t.Fatalf("[spec %d] expected bounds %v; got %v", index, s.expBounds, prim.Bounds)
		}
	}

	cb := centroidBounds(prims)
	if cb.Min != (types.Vec3{-1, 1, 0}) {
		t.Fatalf("expected centroid bounds min to be (-1, 1, 0); got %v", cb.Min)
	}
	pb := primBounds(prims)
	if pb.Min != (types.Vec3{-1, 0, 0}) || pb.Max != (types.Vec3{3, 3, 5}) {
		t.Fatalf("unexpected primitive bounds %v", pb)
	}
}

func TestPreprocessMalformedTriangles(t *testing.T) {
	nan := float32(math.NaN())
	inf := float32(math.Inf(1))

	specs := []Triangle{
		{A: types.Vec3{nan, 0, 0}},
		{B: types.Vec3{0, inf, 0}},
		{C: types.Vec3{0, 0, -inf}},
	}
	for index, tri := range specs {
		_, err := Preprocess([]Triangle{{}, tri})
		if !isCause(err, ErrMalformedPrimitive) {
			t.Fatalf("[spec %d] expected error to match ErrMalformedPrimitive; got %v", index, err)
		}
		if err.Error() != "triangle 1: "+ErrMalformedPrimitive.Error() {
			t.Fatalf("[spec %d] expected error to name the offending triangle; got %q", index, err.Error())
		}
	}
}

func TestAABB(t *testing.T) {
	empty := EmptyAABB()
	if !empty.IsEmpty() {
		t.Fatal("expected empty box to report IsEmpty")
	}
	if sa := empty.SurfaceArea(); sa != 0 {
		t.Fatalf("expected empty box surface area to be 0; got %f", sa)
	}

	box := empty.Extend(types.Vec3{1, 2, 3}).Extend(types.Vec3{2, 4, 6})
	if box.IsEmpty() {
		t.Fatal("expected box to be non-empty")
	}
	if sa := box.SurfaceArea(); sa != 22 {
		t.Fatalf("expected surface area 22; got %f", sa)
	}
	if c := box.Center(); c != (types.Vec3{1.5, 3, 4.5}) {
		t.Fatalf("expected center (1.5, 3, 4.5); got %v", c)
	}
	if u := empty.Union(box); u != box {
		t.Fatalf("expected union with empty box to be a no-op; got %v", u)
	}
	if !box.Contains(AABB{Min: types.Vec3{1, 2, 3}, Max: types.Vec3{1.5, 3, 4}}) {
		t.Fatal("expected box to contain inner box")
	}
	if box.ContainsPoint(types.Vec3{0.99, 3, 4}, 0) {
		t.Fatal("expected point outside the box to be rejected")
	}
	if !box.ContainsPoint(types.Vec3{0.99, 3, 4}, 0.02) {
		t.Fatal("expected point within the tolerance to be accepted")
	}
}
