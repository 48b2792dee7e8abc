package bvh

import (
	"sort"

	"github.com/achilleasa/polaris-bvh/types"
)

// Centroid spreads below this threshold are treated as degenerate by the
// SAH and object median tiers.
const degenerateSpread float32 = 1e-6

// The strategy that produced a split.
type SplitTier uint8

const (
	TierNone SplitTier = iota
	TierSAH
	TierObjectMedian
	TierSpatialMedian
)

func (t SplitTier) String() string {
	switch t {
	case TierSAH:
		return "binned SAH"
	case TierObjectMedian:
		return "object median"
	case TierSpatialMedian:
		return "spatial median"
	}
	return "none"
}

// A split plane selected for a primitive set.
type Split struct {
	Axis     Axis
	Position float32
	Tier     SplitTier

	// SAH cost; only set for binned SAH splits.
	Cost float32

	// Binning parameters for SAH splits. Primitives are assigned to the
	// left side if their bin index is <= bin.
	binned   bool
	binMin   float32
	binScale float32
	bins     int
	bin      int
}

// Returns true if a primitive with the given centroid belongs to the left
// side of the split. The same test is used while scoring SAH candidates so
// the evaluated partition always matches the one the builder performs.
func (s Split) Left(centroid types.Vec3) bool {
	if s.binned {
		return binIndex(centroid[s.Axis], s.binMin, s.binScale, s.bins) <= s.bin
	}
	return centroid[s.Axis] <= s.Position
}

// Per-bin accumulator.
type bin struct {
	count  int
	bounds AABB
}

func binIndex(v, lo, scale float32, count int) int {
	b := int((v - lo) * scale)
	if b < 0 {
		return 0
	}
	if b >= count {
		return count - 1
	}
	return b
}

// Get the bin count for a set of n primitives.
func (ctx *buildContext) binCount(n int) int {
	mult := 8
	switch {
	case n <= 16:
		mult = 1
	case n <= 64:
		mult = 2
	case n <= 256:
		mult = 4
	case n <= 1024:
		mult = 6
	}
	return clampInt(ctx.cfg.BaseBins*mult, ctx.cfg.MinBins, ctx.cfg.MaxBins)
}

// Select a split for prims whose boxes are enclosed by nodeBounds. The
// enabled tiers are tried in order: binned SAH, object median and spatial
// median. Returns false if none of them can produce a split with primitives
// on both sides.
func (ctx *buildContext) selectSplit(prims []PrimitiveInfo, nodeBounds AABB) (Split, bool) {
	cb := centroidBounds(prims)

	if ctx.cfg.Fallback.SAH {
		if split, ok := ctx.binnedSAH(prims, nodeBounds, cb); ok {
			ctx.stats.SAHSplits++
			return split, true
		}
	}

	if ctx.cfg.Fallback.ObjectMedian {
		if split, ok := ctx.objectMedian(prims, cb); ok {
			ctx.stats.ObjectMedianSplits++
			return split, true
		}
	}

	if ctx.cfg.Fallback.SpatialMedian {
		if split, ok := ctx.spatialMedian(prims, nodeBounds); ok {
			ctx.stats.SpatialMedianSplits++
			return split, true
		}
	}

	ctx.stats.SplitFailures++
	return Split{}, false
}

// Evaluate SAH costs for the planes between adjacent centroid bins along
// each axis and pick the cheapest one. A split is only accepted if it is
// cheaper than turning the whole set into a leaf.
func (ctx *buildContext) binnedSAH(prims []PrimitiveInfo, nodeBounds, cb AABB) (Split, bool) {
	parentSA := nodeBounds.SurfaceArea()
	if !(parentSA > 0) {
		return Split{}, false
	}

	n := len(prims)
	binCount := ctx.binCount(n)
	ctx.stats.BinUsage[binCount]++

	costT, costI := ctx.cfg.TraversalCost, ctx.cfg.IntersectionCost
	bestCost := costI * float32(n)
	var best Split
	found := false

	bins := ctx.bins[:binCount]
	rightCount := ctx.rightCount[:binCount]
	rightBounds := ctx.rightBounds[:binCount]
	for axis := 0; axis < 3; axis++ {
		lo, hi := cb.Min[axis], cb.Max[axis]
		if hi-lo < degenerateSpread {
			continue
		}
		scale := float32(binCount) / (hi - lo)

		for i := range bins {
			bins[i] = bin{bounds: EmptyAABB()}
		}
		for i := range prims {
			b := binIndex(prims[i].Centroid[axis], lo, scale, binCount)
			bins[b].count++
			bins[b].bounds = bins[b].bounds.Union(prims[i].Bounds)
		}

		// Sweep right to left to collect the right side of each plane
		acc, count := EmptyAABB(), 0
		for i := binCount - 1; i > 0; i-- {
			count += bins[i].count
			acc = acc.Union(bins[i].bounds)
			rightCount[i] = count
			rightBounds[i] = acc
		}

		// Sweep left to right and score the plane after bin i
		acc, count = EmptyAABB(), 0
		for i := 0; i < binCount-1; i++ {
			count += bins[i].count
			acc = acc.Union(bins[i].bounds)
			if count == 0 || rightCount[i+1] == 0 {
				continue
			}

			cost := costT +
				(acc.SurfaceArea()/parentSA)*float32(count)*costI +
				(rightBounds[i+1].SurfaceArea()/parentSA)*float32(rightCount[i+1])*costI
			if cost < bestCost {
				bestCost = cost
				found = true
				best = Split{
					Axis:     Axis(axis),
					Position: lo + float32(i+1)/scale,
					Tier:     TierSAH,
					Cost:     cost,
					binned:   true,
					binMin:   lo,
					binScale: scale,
					bins:     binCount,
					bin:      i,
				}
			}
		}
	}

	return best, found
}

// Split at the median centroid along the axis with the largest centroid
// spread.
func (ctx *buildContext) objectMedian(prims []PrimitiveInfo, cb AABB) (Split, bool) {
	spread := cb.Extent()
	axis := spread.MaxAxis()
	if spread[axis] < degenerateSpread {
		return Split{}, false
	}

	vals := ctx.sortedCentroids(prims, axis)
	n := len(vals)
	mid := n / 2
	median := vals[mid]
	pos := median

	// Everything from the median up shares the same value; move the plane
	// below the median towards the closest smaller value.
	if vals[n-1] <= pos {
		j := mid - 1
		for j >= 0 && vals[j] == median {
			j--
		}
		if j < 0 {
			return Split{}, false
		}
		pos = midpoint(vals[j], median)
	}

	if !(vals[0] <= pos && vals[n-1] > pos) {
		return Split{}, false
	}
	return Split{Axis: Axis(axis), Position: pos, Tier: TierObjectMedian}, true
}

// Split at the middle of the node box along its longest side. If that
// leaves one side empty, split between the two distinct centroid values
// closest to the median, trying axes in order of decreasing box extent.
func (ctx *buildContext) spatialMedian(prims []PrimitiveInfo, nodeBounds AABB) (Split, bool) {
	ext := nodeBounds.Extent()
	axis := ext.MaxAxis()
	pos := nodeBounds.Min[axis] + ext[axis]*0.5

	left := 0
	for i := range prims {
		if prims[i].Centroid[axis] <= pos {
			left++
		}
	}
	if left > 0 && left < len(prims) {
		return Split{Axis: Axis(axis), Position: pos, Tier: TierSpatialMedian}, true
	}

	for _, a := range axesByExtent(ext) {
		vals := ctx.sortedCentroids(prims, a)
		if vals[0] == vals[len(vals)-1] {
			continue
		}
		if pos, ok := distinctMedianSplit(vals); ok {
			return Split{Axis: Axis(a), Position: pos, Tier: TierSpatialMedian}, true
		}
	}

	// All centroids coincide
	return Split{}, false
}

// Fill the scratch value buffer with the centroid coordinates along axis
// and sort them. The returned slice is only valid until the next call.
func (ctx *buildContext) sortedCentroids(prims []PrimitiveInfo, axis int) []float32 {
	vals := ctx.values[:len(prims)]
	for i := range prims {
		vals[i] = prims[i].Centroid[axis]
	}
	sort.Slice(vals, func(i, j int) bool { return vals[i] < vals[j] })
	return vals
}

// Find the boundary between two distinct sorted values that is closest to
// the median and return a split position between them.
func distinctMedianSplit(vals []float32) (float32, bool) {
	n := len(vals)
	mid := n / 2
	for d := 0; d < n; d++ {
		for _, k := range [2]int{mid - d, mid + d} {
			if k >= 1 && k < n && vals[k-1] < vals[k] {
				return midpoint(vals[k-1], vals[k]), true
			}
		}
	}
	return 0, false
}

// Get a value m with a <= m < b. Requires a < b.
func midpoint(a, b float32) float32 {
	m := a + (b-a)*0.5
	if !(m < b) {
		return a
	}
	return m
}

// Sort axis indices by decreasing extent.
func axesByExtent(ext types.Vec3) [3]int {
	axes := [3]int{0, 1, 2}
	sort.SliceStable(axes[:], func(i, j int) bool { return ext[axes[i]] > ext[axes[j]] })
	return axes
}
