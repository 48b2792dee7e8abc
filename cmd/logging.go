package cmd

import (
	"github.com/achilleasa/polaris-bvh/log"
	"github.com/urfave/cli"
)

var logger = log.New("polaris-bvh")

// Apply the log level requested by the config file. The -v and -vv flags
// take precedence.
func setupLogging(ctx *cli.Context, cfgLevel string) error {
	level, err := log.ParseLevel(cfgLevel)
	if err != nil {
		return err
	}
	log.SetLevel(level)

	if ctx.GlobalBool("v") {
		log.SetLevel(log.Info)
	}

	if ctx.GlobalBool("vv") {
		log.SetLevel(log.Debug)
	}
	return nil
}
