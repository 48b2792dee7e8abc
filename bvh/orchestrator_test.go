package bvh

import (
	"math"
	"reflect"
	"testing"
)

func TestBackgroundBuildMatchesSyncBuild(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Morton.ClusterThreshold = 16

	syncTris := randomTriangles(7, 500)
	syncRoot, syncStats, err := Build(syncTris, DefaultMaxDepth, nil, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if syncStats.Background {
		t.Fatal("expected synchronous build")
	}

	cfg.Background = true
	bgTris := randomTriangles(7, 500)
	bgRoot, bgStats, err := NewOrchestrator(cfg, NewWorkerPool(2)).Build(bgTris, DefaultMaxDepth, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !bgStats.Background {
		t.Fatal("expected background build")
	}
	if bgStats.JobID == "" {
		t.Fatal("expected background build to be assigned a job ID")
	}

	if !sameTree(syncRoot, bgRoot) {
		t.Fatal("expected background and synchronous builds to produce the same tree")
	}
	if !reflect.DeepEqual(syncTris, bgTris) {
		t.Fatal("expected background and synchronous builds to produce the same triangle order")
	}
	if err = Validate(bgRoot, bgTris); err != nil {
		t.Fatal(err)
	}
}

func TestBackgroundBuildFallsBackWhenPoolIsBusy(t *testing.T) {
	pool := NewWorkerPool(1)
	release := make(chan struct{})
	started := make(chan struct{})
	if err := pool.Go(func() {
		close(started)
		<-release
	}); err != nil {
		t.Fatal(err)
	}
	defer close(release)
	<-started

	cfg := DefaultConfig()
	cfg.Background = true
	tris := randomTriangles(3, 100)
	root, stats, err := NewOrchestrator(cfg, pool).Build(tris, DefaultMaxDepth, nil)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Background {
		t.Fatal("expected build to fall back to the calling goroutine")
	}
	if err = Validate(root, tris); err != nil {
		t.Fatal(err)
	}
}

func TestBackgroundBuildWithoutPool(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Background = true
	tris := randomTriangles(4, 50)

	root, stats, err := NewOrchestrator(cfg, nil).Build(tris, DefaultMaxDepth, nil)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Background {
		t.Fatal("expected synchronous build when no pool is supplied")
	}
	if err = Validate(root, tris); err != nil {
		t.Fatal(err)
	}
}

func TestBackgroundWorkerFailure(t *testing.T) {
	workerStartHook = func() { panic("worker crashed") }
	defer func() { workerStartHook = nil }()

	cfg := DefaultConfig()
	cfg.Background = true
	tris := randomTriangles(5, 64)
	orig := make([]Triangle, len(tris))
	copy(orig, tris)

	root, stats, err := NewOrchestrator(cfg, NewWorkerPool(1)).Build(tris, DefaultMaxDepth, nil)
	if !isCause(err, ErrBackgroundBuild) {
		t.Fatalf("expected error to match ErrBackgroundBuild; got %v", err)
	}
	if root != nil || stats != nil {
		t.Fatal("expected no tree for a failed build")
	}
	for index := range tris {
		if tris[index] != orig[index] {
			t.Fatalf("expected input to be left untouched; triangle %d changed", index)
		}
	}
}

func TestBackgroundBuildWithMalformedInput(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Background = true
	tris := randomTriangles(6, 10)
	tris[3].C[2] = float32(math.Inf(-1))

	_, _, err := NewOrchestrator(cfg, NewWorkerPool(1)).Build(tris, DefaultMaxDepth, nil)
	if !isCause(err, ErrMalformedPrimitive) {
		t.Fatalf("expected error to match ErrMalformedPrimitive; got %v", err)
	}
}

func TestBackgroundBuildForwardsProgress(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Background = true
	tris := randomTriangles(8, 200)

	var reports []int
	_, _, err := NewOrchestrator(cfg, NewWorkerPool(1)).Build(tris, DefaultMaxDepth, func(percent int) {
		reports = append(reports, percent)
	})
	if err != nil {
		t.Fatal(err)
	}

	if len(reports) == 0 {
		t.Fatal("expected progress to be reported")
	}
	if last := reports[len(reports)-1]; last != 100 {
		t.Fatalf("expected final progress report to be 100; got %d", last)
	}
	for index := 1; index < len(reports); index++ {
		if reports[index] < reports[index-1] {
			t.Fatalf("expected non-decreasing progress; got %v", reports)
		}
	}
}

func TestWorkerPool(t *testing.T) {
	var nilPool *WorkerPool
	if err := nilPool.Go(func() {}); err != ErrWorkerUnavailable {
		t.Fatalf("expected nil pool to return ErrWorkerUnavailable; got %v", err)
	}

	pool := NewWorkerPool(0)
	if pool.Size() < 1 {
		t.Fatalf("expected default pool size to be >= 1; got %d", pool.Size())
	}

	pool = NewWorkerPool(1)
	release := make(chan struct{})
	done := make(chan struct{})
	if err := pool.Go(func() {
		<-release
		close(done)
	}); err != nil {
		t.Fatal(err)
	}
	if err := pool.Go(func() {}); err != ErrWorkerUnavailable {
		t.Fatalf("expected busy pool to return ErrWorkerUnavailable; got %v", err)
	}
	close(release)
	<-done
}
