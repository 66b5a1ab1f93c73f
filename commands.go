package main

import (
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"go-mars/internal/aggregate"
	"go-mars/internal/cache"
	"go-mars/internal/config"
	"go-mars/internal/export"
	"go-mars/internal/feeds"
	"go-mars/internal/fetch"
	"go-mars/internal/logx"
	"go-mars/internal/metrics"
	"go-mars/internal/render"
	"go-mars/internal/store"
)

// runAction is one batch: load config, check directories, fetch, render.
func runAction(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}
	logx.Init(cfg.LogLevel, cfg.LogFormat, cfg.LogColor)
	logx.Infof("starting up")
	if err := cfg.CheckDirs(); err != nil {
		return err
	}

	backend, err := store.Open(cfg.Storage.Type, cfg.FeedDir, cfg.Storage.DSN)
	if err != nil {
		return err
	}
	defer backend.Close()

	cl, err := newClient(cfg)
	if err != nil {
		return err
	}
	logx.Infof("user agent: %s", cl.UserAgentString())

	fc := cache.New(backend)
	outputs := []aggregate.Output{
		render.New(cfg.TemplatesDir, cfg.OutDir, render.Pkg{
			Name:     software,
			Version:  version,
			Homepage: cfg.Homepage,
			Authors:  cfg.BotName,
		}),
	}
	if cfg.ExportPath != "" {
		outputs = append(outputs, export.File{Path: cfg.ExportPath})
	}
	runner := aggregate.New(cfg.URLs(), cfg.MaxEntries, fetch.NewFetcher(cl, fc), fc, outputs...)

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	built, err := runner.Run(ctx, c.Bool("no-fetch"))
	if cfg.MetricsFile != "" {
		if merr := metrics.WriteTextfile(cfg.MetricsFile); merr != nil {
			logx.Warnf("%v", merr)
		}
	}
	if err != nil {
		return err
	}
	logx.Infof("done, outputs built: %v", built)
	return nil
}

func newClient(cfg *config.Config) (*fetch.Client, error) {
	return fetch.New(fetch.Options{
		BotName:    cfg.BotName,
		Version:    version,
		Homepage:   cfg.Homepage,
		Software:   software,
		From:       cfg.From,
		ProxyHTTP:  cfg.Proxy.HTTP,
		ProxyHTTPS: cfg.Proxy.HTTPS,
		Timeout:    cfg.Timeout,
	})
}

func discoverCmd() *cli.Command {
	return &cli.Command{
		Name:      "discover",
		Usage:     "Print the feed URL of a web site",
		ArgsUsage: "<site-url>",
		Description: `Looks for a feed announced by the site's HTML and falls back
to probing common feed paths. The result can be added to the feeds list.`,
		Flags: []cli.Flag{configFlag()},
		Action: func(c *cli.Context) error {
			site := c.Args().First()
			if site == "" {
				return errors.New("missing site url")
			}
			opts := fetch.Options{BotName: software, Version: version, Software: software, Timeout: 20 * time.Second}
			if cfg, err := config.Load(c.String("config")); err == nil {
				logx.Init(cfg.LogLevel, cfg.LogFormat, cfg.LogColor)
				opts.BotName, opts.From, opts.Homepage = cfg.BotName, cfg.From, cfg.Homepage
				opts.ProxyHTTP, opts.ProxyHTTPS = cfg.Proxy.HTTP, cfg.Proxy.HTTPS
			}
			cl, err := fetch.New(opts)
			if err != nil {
				return err
			}
			found, err := feeds.Discover(c.Context, cl, site)
			if err != nil {
				return err
			}
			fmt.Fprintln(c.App.Writer, found)
			return nil
		},
	}
}

func pathsCmd() *cli.Command {
	return &cli.Command{
		Name:      "paths",
		Usage:     "Print the cache files of a feed URL",
		ArgsUsage: "<feed-url>",
		Flags:     []cli.Flag{configFlag()},
		Action: func(c *cli.Context) error {
			cfg, err := config.Load(c.String("config"))
			if err != nil {
				return err
			}
			u, err := store.Key(c.Args().First())
			if err != nil {
				return err
			}
			p, err := store.PathsFor(cfg.FeedDir, u)
			if err != nil {
				return err
			}
			fmt.Fprintf(c.App.Writer, "raw        %s\nparsed     %s\nvalidators %s\n", p.Raw, p.Parsed, p.Validators)
			return nil
		},
	}
}
