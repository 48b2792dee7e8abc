package bvh

import "time"

// A callback that receives build progress as a percentage (0-100).
type ProgressFunc func(percent int)

const progressInterval = 100 * time.Millisecond

// Throttled progress reporter. Progress is measured as the number of
// primitives that have been placed in leaves.
type progressTracker struct {
	fn       ProgressFunc
	total    int
	consumed int
	last     time.Time

	// Used by tests to control time.
	now func() time.Time
}

func newProgressTracker(fn ProgressFunc, total int) *progressTracker {
	pt := &progressTracker{
		fn:    fn,
		total: total,
		now:   time.Now,
	}
	pt.last = pt.now()
	return pt
}

// Record n primitives as processed. The callback fires at most once per
// progressInterval and never reports more than 99% before done is called.
func (pt *progressTracker) advance(n int) {
	pt.consumed += n
	if pt.fn == nil || pt.total == 0 {
		return
	}

	now := pt.now()
	if now.Sub(pt.last) < progressInterval {
		return
	}
	pt.last = now

	percent := pt.consumed * 100 / pt.total
	if percent > 99 {
		percent = 99
	}
	pt.fn(percent)
}

// Report completion.
func (pt *progressTracker) done() {
	if pt.fn != nil {
		pt.fn(100)
	}
}
