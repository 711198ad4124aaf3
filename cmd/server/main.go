package main

import (
	"context"
	"os"
	"time"

	"github.com/labstack/gommon/log"
	"github.com/urfave/cli/v2"

	"tennischarts/internal/api"
	"tennischarts/internal/config"
	"tennischarts/internal/engine"
	"tennischarts/internal/snapshot"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "server",
		Usage: "serve tennis winner charts over HTTP",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "YAML config `file`"},
			&cli.StringFlag{Name: "listen", Usage: "listen `address` (overrides config)"},
			&cli.StringFlag{Name: "dataset", Usage: "CSV `path or URL` (overrides config)"},
		},
		Action: run,
	}
}

func run(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}
	if c.IsSet("listen") {
		cfg.Server.Listen = c.String("listen")
	}
	if c.IsSet("dataset") {
		cfg.Dataset = c.String("dataset")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	lvl, err := cfg.Level()
	if err != nil {
		return err
	}
	log.SetLevel(lvl)

	// 1. Handler starts with NIL data
	// The API is live but returns 503 (Loading) until the dataset is in
	h := api.NewHandler(nil, cfg.ChartLayout(), cfg.ChartOptions())
	e := api.NewServer(h, cfg.Server.RateLimit)
	e.Logger.SetLevel(lvl)

	var cache engine.RowCache
	if cfg.Snapshot != "" {
		store, err := snapshot.Open(cfg.Snapshot)
		if err != nil {
			return err
		}
		defer store.Close()
		cache = store
	}

	// 2. Load in the background
	go func() {
		log.Info("BACKGROUND: loading dataset...")
		t0 := time.Now()

		ctx := context.Background()
		store, err := engine.Load(ctx, cfg.Dataset, cfg.FetchOptions())
		if err != nil {
			log.Errorf("BACKGROUND: %v", err)
			h.SetError(err)
			return
		}
		h.SetData(engine.BuildDashboard(ctx, store, cfg.Groupings(), cache))

		log.Infof("BACKGROUND: dashboard ready in %v", time.Since(t0))
	}()

	// 3. Start Server
	log.Infof("Server ready on %s (data loading in background...)", cfg.Server.Listen)
	return e.Start(cfg.Server.Listen)
}
