package bvh

import (
	"sort"

	"github.com/achilleasa/polaris-bvh/types"
)

// Spread the lower 21 bits of v so that there are two zero bits between
// each pair of consecutive input bits.
func expandBits(v uint64) uint64 {
	v &= 0x1fffff
	v = (v | v<<32) & 0x1f00000000ffff
	v = (v | v<<16) & 0x1f0000ff0000ff
	v = (v | v<<8) & 0x100f00f00f00f00f
	v = (v | v<<4) & 0x10c30c30c30c30c3
	v = (v | v<<2) & 0x1249249249249249
	return v
}

// Interleave three quantized coordinates into a single morton code. The x
// coordinate occupies the least significant bit of each 3-bit group.
func mortonCode(x, y, z uint32) uint64 {
	return expandBits(uint64(x)) | expandBits(uint64(y))<<1 | expandBits(uint64(z))<<2
}

// Map point p inside bounds to a morton code using the given number of
// bits per axis. Axes with zero width map to 0.
func mortonKey(p types.Vec3, bounds AABB, bits int) uint64 {
	maxCoord := float32(uint32(1)<<uint(bits) - 1)
	var q [3]uint32
	for axis := 0; axis < 3; axis++ {
		width := bounds.Max[axis] - bounds.Min[axis]
		if !(width > 0) {
			continue
		}

		n := (p[axis] - bounds.Min[axis]) / width
		switch {
		case n <= 0:
			q[axis] = 0
		case n >= 1:
			q[axis] = uint32(maxCoord)
		default:
			q[axis] = uint32(n * maxCoord)
		}
	}
	return mortonCode(q[0], q[1], q[2])
}

// Presort statistics.
type presortStats struct {
	sorted   bool
	clusters int
}

// Reorder prims along a Z-order curve to improve locality. Small inputs are
// left untouched. Inputs above the large scene threshold are clustered
// using a coarse code and each cluster is then presorted on its own; the
// global order across cluster boundaries is therefore only approximate.
//
// Primitives with equal keys keep their relative input order.
func presort(prims []PrimitiveInfo, cfg MortonConfig, st *presortStats) {
	if !cfg.Enabled || len(prims) < cfg.ClusterThreshold {
		return
	}
	st.sorted = true

	bounds := centroidBounds(prims)
	if len(prims) > cfg.LargeSceneThreshold && cfg.Bits-2 >= 1 {
		if clusterSort(prims, bounds, cfg, st) {
			return
		}
	}

	for i := range prims {
		prims[i].MortonCode = mortonKey(prims[i].Centroid, bounds, cfg.Bits)
	}
	sortByMortonCode(prims)
}

// Bucket prims by a coarse (bits-2) code, order buckets by code and presort
// each bucket independently. Returns false without touching the primitive
// order when all primitives share the same coarse code.
func clusterSort(prims []PrimitiveInfo, bounds AABB, cfg MortonConfig, st *presortStats) bool {
	coarseBits := cfg.Bits - 2
	for i := range prims {
		prims[i].MortonCode = mortonKey(prims[i].Centroid, bounds, coarseBits)
	}

	first := prims[0].MortonCode
	uniform := true
	for i := 1; i < len(prims); i++ {
		if prims[i].MortonCode != first {
			uniform = false
			break
		}
	}
	if uniform {
		return false
	}

	sortByMortonCode(prims)

	for start := 0; start < len(prims); {
		end := start + 1
		for end < len(prims) && prims[end].MortonCode == prims[start].MortonCode {
			end++
		}
		st.clusters++
		presort(prims[start:end], cfg, st)
		start = end
	}
	return true
}

func sortByMortonCode(prims []PrimitiveInfo) {
	sort.SliceStable(prims, func(i, j int) bool {
		return prims[i].MortonCode < prims[j].MortonCode
	})
}
