package bvh

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
)

// Stats collects diagnostic counters for a single BVH build.
type Stats struct {
	// Input size.
	Primitives int

	// Tree shape.
	Nodes    int
	Leaves   int
	MaxDepth int

	// Leaves created because the depth budget ran out or because no
	// split tier could divide the set.
	DepthLimitedLeaves int
	ForcedLeaves       int

	// Successful splits per tier and the number of sets for which every
	// enabled tier failed.
	SAHSplits           int
	ObjectMedianSplits  int
	SpatialMedianSplits int
	SplitFailures       int

	// Number of SAH evaluations per bin count.
	BinUsage map[int]int

	// Presorter info.
	Presorted      bool
	MortonClusters int

	// Timings.
	PreprocessTime time.Duration
	PresortTime    time.Duration
	BuildTime      time.Duration

	// True if the tree was built on a background worker.
	Background bool
	JobID      string
}

func newStats(numPrims int) *Stats {
	return &Stats{
		Primitives: numPrims,
		BinUsage:   make(map[int]int),
	}
}

// Get the total time spent building the tree.
func (s *Stats) TotalTime() time.Duration {
	return s.PreprocessTime + s.PresortTime + s.BuildTime
}

// Build a tabular representation of the build statistics.
func (s *Stats) Table() string {
	mode := "synchronous"
	if s.Background {
		mode = "background (job " + s.JobID + ")"
	}

	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Category", "Metric", "Value"})
	table.Append([]string{"Input", "Triangles", fmt.Sprint(s.Primitives)})
	table.Append([]string{"", "Mode", mode})
	table.Append([]string{" ", " ", " "})
	table.Append([]string{"Tree", "Nodes", fmt.Sprint(s.Nodes)})
	table.Append([]string{"", "Leaves", fmt.Sprint(s.Leaves)})
	table.Append([]string{"", "Max depth", fmt.Sprint(s.MaxDepth)})
	table.Append([]string{"", "Depth limited leaves", fmt.Sprint(s.DepthLimitedLeaves)})
	table.Append([]string{"", "Forced leaves", fmt.Sprint(s.ForcedLeaves)})
	table.Append([]string{" ", " ", " "})
	table.Append([]string{"Splits", TierSAH.String(), fmt.Sprint(s.SAHSplits)})
	table.Append([]string{"", TierObjectMedian.String(), fmt.Sprint(s.ObjectMedianSplits)})
	table.Append([]string{"", TierSpatialMedian.String(), fmt.Sprint(s.SpatialMedianSplits)})
	table.Append([]string{"", "failures", fmt.Sprint(s.SplitFailures)})
	table.Append([]string{"", "bin usage", s.fmtBinUsage()})
	table.Append([]string{" ", " ", " "})
	table.Append([]string{"Presort", "Morton sorted", fmt.Sprint(s.Presorted)})
	table.Append([]string{"", "Clusters", fmt.Sprint(s.MortonClusters)})
	table.Append([]string{" ", " ", " "})
	table.Append([]string{"Timing", "Preprocess", fmtDuration(s.PreprocessTime)})
	table.Append([]string{"", "Presort", fmtDuration(s.PresortTime)})
	table.Append([]string{"", "Build", fmtDuration(s.BuildTime)})
	table.SetFooter([]string{"Total", " ", fmtDuration(s.TotalTime())})

	table.Render()
	return buf.String()
}

// Format bin usage as a "bins:count" list sorted by bin count.
func (s *Stats) fmtBinUsage() string {
	if len(s.BinUsage) == 0 {
		return "-"
	}

	binCounts := make([]int, 0, len(s.BinUsage))
	for bins := range s.BinUsage {
		binCounts = append(binCounts, bins)
	}
	sort.Ints(binCounts)

	parts := make([]string, len(binCounts))
	for index, bins := range binCounts {
		parts[index] = fmt.Sprintf("%d:%d", bins, s.BinUsage[bins])
	}
	return strings.Join(parts, " ")
}

func fmtDuration(d time.Duration) string {
	return fmt.Sprintf("%d ms", d.Nanoseconds()/1e6)
}
