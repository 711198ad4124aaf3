// Command render writes the configured winner charts as SVG files.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/goccy/go-json"
	"github.com/labstack/gommon/log"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"tennischarts/internal/chart"
	"tennischarts/internal/config"
	"tennischarts/internal/engine"
	"tennischarts/internal/models"
	"tennischarts/internal/snapshot"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:      "render",
		Usage:     "render tennis winner charts to SVG",
		ArgsUsage: "[dataset]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "YAML config `file`"},
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Value: "charts", Usage: "output `dir`"},
			&cli.StringSliceFlag{Name: "chart", Usage: "only render the named chart (repeatable)"},
			&cli.BoolFlag{Name: "json", Usage: "also write the aggregated rows as JSON"},
		},
		Action: run,
	}
}

func run(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}
	if c.Args().Present() {
		cfg.Dataset = c.Args().First()
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	lvl, err := cfg.Level()
	if err != nil {
		return err
	}
	log.SetLevel(lvl)

	groupings, err := selectGroupings(cfg.Groupings(), c.StringSlice("chart"))
	if err != nil {
		return err
	}

	ctx := c.Context
	store, err := engine.Load(ctx, cfg.Dataset, cfg.FetchOptions())
	if err != nil {
		return err
	}

	var cache engine.RowCache
	if cfg.Snapshot != "" {
		snap, err := snapshot.Open(cfg.Snapshot)
		if err != nil {
			return err
		}
		defer snap.Close()
		cache = snap
	}
	dash := engine.BuildDashboard(ctx, store, groupings, cache)

	out := c.String("out")
	if err := os.MkdirAll(out, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", out, err)
	}

	opts := cfg.ChartOptions()
	withJSON := c.Bool("json")

	var g errgroup.Group
	for i := range dash.Charts {
		cd := &dash.Charts[i]
		g.Go(func() error {
			if err := writeSVG(filepath.Join(out, cd.Name+".svg"), cd, opts[cd.Name]); err != nil {
				return err
			}
			if withJSON {
				return writeJSON(filepath.Join(out, cd.Name+".json"), cd)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	log.Infof("Wrote %d charts to %s", len(dash.Charts), out)
	return nil
}

// selectGroupings keeps the groupings named in names, in config order.
func selectGroupings(all []engine.Grouping, names []string) ([]engine.Grouping, error) {
	if len(names) == 0 {
		return all, nil
	}
	var out []engine.Grouping
	for _, g := range all {
		if slices.Contains(names, g.Name) {
			out = append(out, g)
		}
	}
	for _, n := range names {
		if !slices.ContainsFunc(out, func(g engine.Grouping) bool { return g.Name == n }) {
			return nil, fmt.Errorf("unknown chart %q", n)
		}
	}
	return out, nil
}

func writeSVG(path string, cd *models.ChartData, opts chart.Options) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := chart.Render(f, cd, opts); err != nil {
		f.Close()
		return fmt.Errorf("render %s: %w", cd.Name, err)
	}
	return f.Close()
}

func writeJSON(path string, cd *models.ChartData) error {
	b, err := json.MarshalIndent(cd, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", cd.Name, err)
	}
	return os.WriteFile(path, b, 0o644)
}
