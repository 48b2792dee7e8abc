package bvh

import (
	"time"

	"github.com/achilleasa/polaris-bvh/log"
)

// buildContext holds the state for a single build. The scratch buffers are
// shared by all recursion levels; each use is fully consumed before the
// next node touches them, so a context must never be used by more than one
// goroutine.
type buildContext struct {
	logger log.Logger

	cfg      Config
	maxDepth int

	// Input triangles and the reordered output. Leaves append their
	// triangles to out starting at nextOffset.
	src        []Triangle
	out        []Triangle
	nextOffset int

	stats    *Stats
	progress *progressTracker

	// Binned SAH scratch.
	bins        []bin
	rightCount  []int
	rightBounds []AABB

	// Sorted centroid values for the median tiers.
	values []float32

	// Stable partition buffers.
	leftBuf  []PrimitiveInfo
	rightBuf []PrimitiveInfo
}

func newBuildContext(tris []Triangle, cfg Config, maxDepth int, stats *Stats, progressFn ProgressFunc) *buildContext {
	n := len(tris)
	return &buildContext{
		logger:      log.New("bvh builder"),
		cfg:         cfg,
		maxDepth:    maxDepth,
		src:         tris,
		out:         make([]Triangle, n),
		stats:       stats,
		progress:    newProgressTracker(progressFn, n),
		bins:        make([]bin, cfg.MaxBins),
		rightCount:  make([]int, cfg.MaxBins),
		rightBounds: make([]AABB, cfg.MaxBins),
		values:      make([]float32, n),
		leftBuf:     make([]PrimitiveInfo, 0, n),
		rightBuf:    make([]PrimitiveInfo, 0, n),
	}
}

// Run the full pipeline (preprocess, presort, recursive build) in the
// calling goroutine. The input slice is not modified; the reordered
// triangles are returned alongside the tree root.
func buildTree(tris []Triangle, maxDepth int, cfg Config, progressFn ProgressFunc) (*Node, []Triangle, *Stats, error) {
	cfg = cfg.normalize()
	if maxDepth < 0 {
		maxDepth = DefaultMaxDepth
	}
	stats := newStats(len(tris))

	start := time.Now()
	prims, err := Preprocess(tris)
	if err != nil {
		return nil, nil, nil, err
	}
	stats.PreprocessTime = time.Since(start)

	start = time.Now()
	var ps presortStats
	presort(prims, cfg.Morton, &ps)
	stats.Presorted = ps.sorted
	stats.MortonClusters = ps.clusters
	stats.PresortTime = time.Since(start)

	ctx := newBuildContext(tris, cfg, maxDepth, stats, progressFn)
	start = time.Now()
	root := ctx.partition(prims, 0)
	stats.BuildTime = time.Since(start)
	ctx.progress.done()

	ctx.logger.Debugf(
		"BVH tree build time: %d ms, maxDepth: %d, nodes: %d, leafs: %d",
		stats.BuildTime.Nanoseconds()/1e6,
		stats.MaxDepth, stats.Nodes, stats.Leaves,
	)
	return root, ctx.out, stats, nil
}

// Partition prims and return the sub-tree root.
func (ctx *buildContext) partition(prims []PrimitiveInfo, depth int) *Node {
	if depth > ctx.stats.MaxDepth {
		ctx.stats.MaxDepth = depth
	}
	ctx.stats.Nodes++

	node := &Node{Bounds: primBounds(prims)}

	// Do we have enough items for partitioning? If not create a leaf
	if len(prims) <= ctx.cfg.MaxLeafSize {
		return ctx.createLeaf(node, prims)
	}
	if depth >= ctx.maxDepth {
		ctx.stats.DepthLimitedLeaves++
		return ctx.createLeaf(node, prims)
	}

	split, ok := ctx.selectSplit(prims, node.Bounds)
	if !ok {
		ctx.stats.ForcedLeaves++
		return ctx.createLeaf(node, prims)
	}

	leftCount := ctx.partitionPrims(prims, split)
	if leftCount == 0 || leftCount == len(prims) {
		ctx.logger.Warningf("%s split produced an empty partition for %d primitives; emitting leaf", split.Tier, len(prims))
		ctx.stats.ForcedLeaves++
		return ctx.createLeaf(node, prims)
	}

	node.Left = ctx.partition(prims[:leftCount], depth+1)
	node.Right = ctx.partition(prims[leftCount:], depth+1)
	return node
}

// Reorder prims so that primitives on the left side of the split come
// first, preserving relative order on both sides. Returns the number of
// primitives on the left side.
func (ctx *buildContext) partitionPrims(prims []PrimitiveInfo, split Split) int {
	left, right := ctx.leftBuf[:0], ctx.rightBuf[:0]
	for i := range prims {
		if split.Left(prims[i].Centroid) {
			left = append(left, prims[i])
		} else {
			right = append(right, prims[i])
		}
	}

	copy(prims, left)
	copy(prims[len(left):], right)
	return len(left)
}

// Setup node as a leaf containing prims and copy their triangles to the
// output list.
func (ctx *buildContext) createLeaf(node *Node, prims []PrimitiveInfo) *Node {
	node.Offset = ctx.nextOffset
	node.Count = len(prims)
	for i := range prims {
		ctx.out[ctx.nextOffset] = ctx.src[prims[i].Index]
		ctx.nextOffset++
	}

	ctx.stats.Leaves++
	ctx.progress.advance(len(prims))
	return node
}
