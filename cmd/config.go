package cmd

import (
	"fmt"

	"github.com/achilleasa/polaris-bvh/asset"
	"github.com/achilleasa/polaris-bvh/bvh"
	"github.com/urfave/cli"
)

// Load builder config from a local file or URL. An empty path selects the
// default config.
func loadConfig(path string) (bvh.Config, error) {
	if path == "" {
		return bvh.DefaultConfig(), nil
	}

	res, err := asset.NewResource(path, nil)
	if err != nil {
		return bvh.Config{}, err
	}
	defer res.Close()

	logger.Infof(`loading builder config from "%s"`, res.Path())
	return bvh.ReadConfig(res)
}

// Print the builder config as YAML.
func ShowConfig(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx.String("config"))
	if err != nil {
		return err
	}
	if err = setupLogging(ctx, cfg.LogLevel); err != nil {
		return err
	}

	data, err := cfg.Marshal()
	if err != nil {
		return err
	}

	fmt.Fprint(ctx.App.Writer, string(data))
	return nil
}
