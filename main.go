package main

import (
	"fmt"
	"os"

	"github.com/achilleasa/polaris-bvh/bvh"
	"github.com/achilleasa/polaris-bvh/cmd"
	"github.com/urfave/cli"
)

func main() {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	configFlag := cli.StringFlag{
		Name:  "config, c",
		Usage: "load builder options from a YAML file or http(s) URL",
	}

	app := cli.NewApp()
	app.Name = "polaris-bvh"
	app.Usage = "build SAH bounding volume hierarchies for triangle meshes"
	app.Version = "0.0.1"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:  "build",
			Usage: "build a BVH for one or more wavefront obj files",
			Description: `
Parse triangles from wavefront obj files, presort them along a Morton curve and
build a BVH tree using binned SAH with median split fallbacks.

Build statistics are displayed for each processed file.`,
			ArgsUsage: "mesh_file1.obj mesh_file2.obj ...",
			Flags: []cli.Flag{
				configFlag,
				cli.IntFlag{
					Name:  "max-depth",
					Value: bvh.DefaultMaxDepth,
					Usage: "max tree depth; a negative value selects the default",
				},
				cli.IntFlag{
					Name:  "leaf-size",
					Value: bvh.DefaultConfig().MaxLeafSize,
					Usage: "max number of triangles per leaf",
				},
				cli.BoolFlag{
					Name:  "no-morton",
					Usage: "disable Morton presorting",
				},
				cli.BoolFlag{
					Name:  "background",
					Usage: "run builds on a background worker",
				},
				cli.IntFlag{
					Name:  "workers",
					Value: 0,
					Usage: "background worker pool size; 0 uses the number of CPUs",
				},
				cli.BoolFlag{
					Name:  "verify",
					Usage: "check tree invariants after each build",
				},
			},
			Action: cmd.BuildBVH,
		},
		{
			Name:   "config",
			Usage:  "print the builder configuration as YAML",
			Flags:  []cli.Flag{configFlag},
			Action: cmd.ShowConfig,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err.Error())
		os.Exit(1)
	}
}
