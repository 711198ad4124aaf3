// Package config loads the YAML configuration shared by the server and the
// renderer.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/labstack/gommon/log"
	"gopkg.in/yaml.v3"

	"tennischarts/internal/chart"
	"tennischarts/internal/engine"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("config: invalid")

type Margin struct {
	Top    int `yaml:"top"`
	Right  int `yaml:"right"`
	Bottom int `yaml:"bottom"`
	Left   int `yaml:"left"`
}

type Layout struct {
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Margin Margin `yaml:"margin"`
}

type Point struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
}

type Chart struct {
	Name   string `yaml:"name"`
	Field  string `yaml:"field"`
	Title  string `yaml:"title"`
	Class  string `yaml:"class"`
	Legend Point  `yaml:"legend"`
}

type Fetch struct {
	Attempts uint          `yaml:"attempts"`
	Delay    time.Duration `yaml:"delay"`
	MaxDelay time.Duration `yaml:"max_delay"`
	Timeout  time.Duration `yaml:"timeout"`
}

type Server struct {
	Listen    string  `yaml:"listen"`
	RateLimit float64 `yaml:"rate_limit"`
}

type Config struct {
	Dataset  string  `yaml:"dataset"`
	Snapshot string  `yaml:"snapshot"`
	LogLevel string  `yaml:"log_level"`
	Server   Server  `yaml:"server"`
	Fetch    Fetch   `yaml:"fetch"`
	Layout   Layout  `yaml:"layout"`
	Charts   []Chart `yaml:"charts"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	l := chart.DefaultLayout()
	f := engine.DefaultFetchOptions()
	legends := map[string]Point{
		"year":    {X: -60, Y: -10},
		"country": {X: -100, Y: 20},
		"aces":    {X: -100, Y: 20},
	}
	classes := map[string]string{"year": "year", "country": "country", "aces": "ace"}

	cfg := &Config{
		Dataset:  "tennis_games_data.csv",
		LogLevel: "info",
		Server:   Server{Listen: ":8080", RateLimit: 20},
		Fetch:    Fetch{Attempts: f.Attempts, Delay: f.Delay, MaxDelay: f.MaxDelay, Timeout: f.Timeout},
		Layout: Layout{
			Width:  l.Width,
			Height: l.Height,
			Margin: Margin{Top: l.Margin.Top, Right: l.Margin.Right, Bottom: l.Margin.Bottom, Left: l.Margin.Left},
		},
	}
	for _, g := range engine.DefaultGroupings() {
		cfg.Charts = append(cfg.Charts, Chart{Name: g.Name, Field: g.Field, Title: g.Title, Class: classes[g.Name], Legend: legends[g.Name]})
	}
	return cfg
}

// Load reads the YAML file at path over the defaults. An empty path
// returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Dataset == "" {
		return fmt.Errorf("%w: dataset is required", ErrInvalid)
	}
	l := c.ChartLayout()
	if l.InnerWidth() <= 0 || l.InnerHeight() <= 0 {
		return fmt.Errorf("%w: layout leaves no room to plot (%dx%d inside margins)", ErrInvalid, l.InnerWidth(), l.InnerHeight())
	}
	if len(c.Charts) == 0 {
		return fmt.Errorf("%w: at least one chart is required", ErrInvalid)
	}
	seen := make(map[string]bool)
	for i, ch := range c.Charts {
		if ch.Name == "" || ch.Field == "" {
			return fmt.Errorf("%w: chart %d needs a name and a field", ErrInvalid, i)
		}
		if seen[ch.Name] {
			return fmt.Errorf("%w: duplicate chart %q", ErrInvalid, ch.Name)
		}
		seen[ch.Name] = true
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level maps log_level onto a gommon log level.
func (c *Config) Level() (log.Lvl, error) {
	switch c.LogLevel {
	case "debug":
		return log.DEBUG, nil
	case "", "info":
		return log.INFO, nil
	case "warn":
		return log.WARN, nil
	case "error":
		return log.ERROR, nil
	case "off":
		return log.OFF, nil
	}
	return 0, fmt.Errorf("%w: unknown log_level %q", ErrInvalid, c.LogLevel)
}

func (c *Config) ChartLayout() chart.Layout {
	return chart.Layout{
		Width:  c.Layout.Width,
		Height: c.Layout.Height,
		Margin: chart.Margin{
			Top:    c.Layout.Margin.Top,
			Right:  c.Layout.Margin.Right,
			Bottom: c.Layout.Margin.Bottom,
			Left:   c.Layout.Margin.Left,
		},
	}
}

func (c *Config) FetchOptions() engine.FetchOptions {
	return engine.FetchOptions{
		Attempts: c.Fetch.Attempts,
		Delay:    c.Fetch.Delay,
		MaxDelay: c.Fetch.MaxDelay,
		Timeout:  c.Fetch.Timeout,
	}
}

func (c *Config) Groupings() []engine.Grouping {
	out := make([]engine.Grouping, len(c.Charts))
	for i, ch := range c.Charts {
		out[i] = engine.Grouping{Name: ch.Name, Field: ch.Field, Title: ch.Title}
	}
	return out
}

// ChartOptions returns the render options for each chart, by name.
func (c *Config) ChartOptions() map[string]chart.Options {
	l := c.ChartLayout()
	out := make(map[string]chart.Options, len(c.Charts))
	for _, ch := range c.Charts {
		out[ch.Name] = chart.Options{
			Layout: l,
			Title:  ch.Title,
			Class:  ch.Class,
			Legend: chart.Point{X: ch.Legend.X, Y: ch.Legend.Y},
		}
	}
	return out
}
