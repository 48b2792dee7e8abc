package cmd

import (
	"fmt"
	"os"

	"github.com/achilleasa/polaris-bvh/asset/reader"
	"github.com/achilleasa/polaris-bvh/bvh"
	"github.com/pkg/errors"
	"github.com/urfave/cli"
)

// Build BVH trees for one or more mesh files and display build statistics.
func BuildBVH(ctx *cli.Context) error {
	if ctx.NArg() == 0 {
		return errors.New("missing mesh file argument")
	}

	cfg, err := buildConfig(ctx)
	if err != nil {
		return err
	}

	var pool *bvh.WorkerPool
	if cfg.Background {
		pool = bvh.NewWorkerPool(ctx.Int("workers"))
		logger.Infof("using background worker pool with %d workers", pool.Size())
	}
	orchestrator := bvh.NewOrchestrator(cfg, pool)

	for _, meshFile := range ctx.Args() {
		mesh, err := reader.ReadMesh(meshFile)
		if err != nil {
			return err
		}

		root, stats, err := orchestrator.Build(mesh.Triangles, ctx.Int("max-depth"), printProgress)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return errors.Wrapf(err, "could not build BVH for %s", meshFile)
		}

		if ctx.Bool("verify") {
			if err = bvh.Validate(root, mesh.Triangles); err != nil {
				return errors.Wrapf(err, "BVH for %s", meshFile)
			}
			logger.Noticef("verified BVH for %s (height %d)", meshFile, root.Height())
		}

		logger.Noticef("BVH statistics for %s\n%s", meshFile, stats.Table())
	}

	return nil
}

// Load the config and apply command line overrides.
func buildConfig(ctx *cli.Context) (bvh.Config, error) {
	cfg, err := loadConfig(ctx.String("config"))
	if err != nil {
		return cfg, err
	}
	if err = setupLogging(ctx, cfg.LogLevel); err != nil {
		return cfg, err
	}

	if ctx.IsSet("leaf-size") {
		cfg.MaxLeafSize = ctx.Int("leaf-size")
	}
	if ctx.Bool("no-morton") {
		cfg.Morton.Enabled = false
	}
	if ctx.Bool("background") {
		cfg.Background = true
	}

	return cfg, cfg.Validate()
}

func printProgress(percent int) {
	fmt.Fprintf(os.Stderr, "partitioned %02d%%\r", percent)
}
