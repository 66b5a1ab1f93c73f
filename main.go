// Command mars fetches the configured feeds once, caches them and, when any
// feed changed, renders the aggregated entries through the template directory.
// It is meant to be run by cron or a systemd timer.
package main

import (
	"log"
	"os"

	"github.com/urfave/cli/v2"
)

const software = "go-mars"

// Set with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := app().Run(os.Args); err != nil {
		log.Fatalf("mars: %v", err)
	}
}

func app() *cli.App {
	return &cli.App{
		Name:    "mars",
		Usage:   "Aggregate web feeds into static pages",
		Version: version,
		Description: `Fetches every configured feed with a conditional GET, stores
changed feeds below feed_dir and, when at least one feed changed, renders
every template of templates_dir into out_dir.

Flags can be set via environment variables, e.g.:

--config => MARS_CONFIG=/etc/mars.toml`,
		Flags: []cli.Flag{
			configFlag(),
			&cli.BoolFlag{
				Name:  "no-fetch",
				Usage: "Skip fetching and render from the cache",
			},
		},
		Action: runAction,
		Commands: []*cli.Command{
			discoverCmd(),
			pathsCmd(),
		},
	}
}

func configFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Value:   "mars.toml",
		Usage:   "Path to the configuration file (.toml, .yaml)",
		EnvVars: []string{"MARS_CONFIG"},
	}
}
