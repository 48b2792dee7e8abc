package bvh

import (
	"github.com/achilleasa/polaris-bvh/log"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

type msgType uint8

const (
	msgProgress msgType = iota
	msgError
	msgDone
)

// A message sent by a background build to the orchestrator.
type workerMsg struct {
	typ     msgType
	percent int
	err     error

	root  *Node
	order []Triangle
	stats *Stats
}

// Invoked by background workers before starting a build. Tests use it to
// inject worker failures.
var workerStartHook func()

// Orchestrator runs BVH builds either in the calling goroutine or on a
// background worker.
//
// Builds cannot be cancelled once started and no timeout is enforced.
type Orchestrator struct {
	logger log.Logger
	cfg    Config
	pool   *WorkerPool
}

// Create a new orchestrator. Background builds are only used when
// cfg.Background is set and a worker pool is supplied.
func NewOrchestrator(cfg Config, pool *WorkerPool) *Orchestrator {
	return &Orchestrator{
		logger: log.New("bvh orchestrator"),
		cfg:    cfg,
		pool:   pool,
	}
}

// Build a BVH for tris in the calling goroutine. See Orchestrator.Build.
func Build(tris []Triangle, maxDepth int, progressFn ProgressFunc, cfg Config) (*Node, *Stats, error) {
	return NewOrchestrator(cfg, nil).Build(tris, maxDepth, progressFn)
}

// Build a BVH for tris. On success tris is rewritten so that each leaf's
// [Offset, Offset+Count) range indexes its triangles. A negative maxDepth
// selects DefaultMaxDepth. The optional progressFn receives percentages
// in the calling goroutine.
//
// An empty input yields a single leaf with Count 0 whose bounds are
// EmptyAABB(). Inputs with non-finite coordinates fail with
// ErrMalformedPrimitive. A failed background build returns an error
// matching ErrBackgroundBuild and leaves tris untouched.
func (o *Orchestrator) Build(tris []Triangle, maxDepth int, progressFn ProgressFunc) (*Node, *Stats, error) {
	if o.cfg.Background {
		if o.pool == nil {
			o.logger.Info("no worker pool available; building in caller")
		} else {
			root, stats, err := o.buildInBackground(tris, maxDepth, progressFn)
			if errors.Cause(err) != ErrWorkerUnavailable {
				return root, stats, err
			}
			o.logger.Notice("could not start background worker; building in caller")
		}
	}

	root, order, stats, err := buildTree(tris, maxDepth, o.cfg, progressFn)
	if err != nil {
		return nil, nil, err
	}
	copy(tris, order)
	return root, stats, nil
}

// Dispatch the build to a pool worker and wait for it to report back.
// Returns ErrWorkerUnavailable if the worker could not be started.
func (o *Orchestrator) buildInBackground(tris []Triangle, maxDepth int, progressFn ProgressFunc) (*Node, *Stats, error) {
	jobID := uuid.New().String()

	// The worker gets its own copy of the input
	input := make([]Triangle, len(tris))
	copy(input, tris)

	cfg := o.cfg
	msgChan := make(chan workerMsg, 1)
	err := o.pool.Go(func() {
		defer func() {
			if r := recover(); r != nil {
				msgChan <- workerMsg{
					typ: msgError,
					err: errors.Wrapf(ErrBackgroundBuild, "job %s: %v", jobID, r),
				}
			}
		}()

		if workerStartHook != nil {
			workerStartHook()
		}

		var reportFn ProgressFunc
		if progressFn != nil {
			reportFn = func(percent int) {
				msgChan <- workerMsg{typ: msgProgress, percent: percent}
			}
		}

		root, order, stats, err := buildTree(input, maxDepth, cfg, reportFn)
		if err != nil {
			msgChan <- workerMsg{typ: msgError, err: err}
			return
		}
		msgChan <- workerMsg{typ: msgDone, root: root, order: order, stats: stats}
	})
	if err != nil {
		return nil, nil, err
	}

	o.logger.Infof("dispatched build job %s (%d triangles)", jobID, len(tris))
	for {
		msg := <-msgChan
		switch msg.typ {
		case msgProgress:
			progressFn(msg.percent)
		case msgError:
			o.logger.Errorf("build job %s failed: %v", jobID, msg.err)
			return nil, nil, msg.err
		case msgDone:
			copy(tris, msg.order)
			msg.stats.Background = true
			msg.stats.JobID = jobID
			o.logger.Infof("build job %s completed in %d ms", jobID, msg.stats.TotalTime().Nanoseconds()/1e6)
			return msg.root, msg.stats, nil
		}
	}
}
