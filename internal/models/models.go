package models

import "time"

// WinnerTally maps a winner name to the number of matches they won.
type WinnerTally map[string]int

// Total returns the sum of all counts in the tally.
func (t WinnerTally) Total() int {
	n := 0
	for _, c := range t {
		n += c
	}
	return n
}

// Max returns the largest count in the tally, or 0 when it is empty.
func (t WinnerTally) Max() int {
	m := 0
	for _, c := range t {
		if c > m {
			m = c
		}
	}
	return m
}

// AggregatedRow is one category and the winners tallied inside it.
// Winners holds the keys of Tally in the order they first appeared.
type AggregatedRow struct {
	Category string      `json:"category"`
	Tally    WinnerTally `json:"tally"`
	Winners  []string    `json:"winners"`
}

type ChartData struct {
	Name    string          `json:"name"`
	Field   string          `json:"field"`
	Title   string          `json:"title"`
	Rows    []AggregatedRow `json:"rows"`
	Winners []string        `json:"winners"`
	Max     int             `json:"max_count"`
}

type ChartSummary struct {
	Name       string `json:"name"`
	Field      string `json:"field"`
	Title      string `json:"title"`
	Categories int    `json:"categories"`
	Winners    int    `json:"winners"`
	Max        int    `json:"max_count"`
}

func (c *ChartData) Summary() ChartSummary {
	return ChartSummary{
		Name:       c.Name,
		Field:      c.Field,
		Title:      c.Title,
		Categories: len(c.Rows),
		Winners:    len(c.Winners),
		Max:        c.Max,
	}
}

type Dashboard struct {
	Rows        int         `json:"rows"`
	Fingerprint string      `json:"fingerprint"`
	LoadedAt    time.Time   `json:"loaded_at"`
	Charts      []ChartData `json:"charts"`
}

// Chart returns the chart with the given name, or nil.
func (d *Dashboard) Chart(name string) *ChartData {
	for i := range d.Charts {
		if d.Charts[i].Name == name {
			return &d.Charts[i]
		}
	}
	return nil
}

type Status struct {
	Ready       bool     `json:"ready"`
	Rows        int      `json:"rows"`
	Fingerprint string   `json:"fingerprint,omitempty"`
	Charts      []string `json:"charts"`
	Error       string   `json:"error,omitempty"`
}
