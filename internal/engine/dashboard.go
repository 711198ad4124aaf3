package engine

import (
	"context"
	"time"

	"github.com/labstack/gommon/log"

	"tennischarts/internal/models"
)

// RowCache stores aggregated rows per dataset fingerprint, chart name and
// grouping field.
type RowCache interface {
	Load(ctx context.Context, fingerprint, chart, field string) ([]models.AggregatedRow, bool, error)
	Save(ctx context.Context, fingerprint, chart, field string, rows []models.AggregatedRow) error
}

// NewChart wraps rows for g with the chart-wide winner order and max count.
func NewChart(g Grouping, rows []models.AggregatedRow) models.ChartData {
	c := models.ChartData{
		Name:    g.Name,
		Field:   g.Field,
		Title:   g.Title,
		Rows:    rows,
		Winners: make([]string, 0),
	}
	seen := make(map[string]bool)
	for _, r := range rows {
		for _, w := range r.Winners {
			if !seen[w] {
				seen[w] = true
				c.Winners = append(c.Winners, w)
			}
		}
		if m := r.Tally.Max(); m > c.Max {
			c.Max = m
		}
	}
	return c
}

// BuildDashboard aggregates store once per grouping, in order. cache may be
// nil; cache errors are logged and otherwise ignored.
func BuildDashboard(ctx context.Context, store *ColumnStore, groupings []Grouping, cache RowCache) *models.Dashboard {
	d := &models.Dashboard{
		Rows:        store.Len(),
		Fingerprint: store.Fingerprint,
		LoadedAt:    time.Now(),
		Charts:      make([]models.ChartData, 0, len(groupings)),
	}

	for _, g := range groupings {
		rows, ok := cachedRows(ctx, cache, store.Fingerprint, g)
		if !ok {
			rows = store.AggregateField(g.Field)
			if cache != nil {
				if err := cache.Save(ctx, store.Fingerprint, g.Name, g.Field, rows); err != nil {
					log.Warnf("snapshot save %s: %v", g.Name, err)
				}
			}
		}
		d.Charts = append(d.Charts, NewChart(g, rows))
		log.Debugf("chart %s: %d categories", g.Name, len(rows))
	}
	return d
}

func cachedRows(ctx context.Context, cache RowCache, fingerprint string, g Grouping) ([]models.AggregatedRow, bool) {
	if cache == nil {
		return nil, false
	}
	rows, ok, err := cache.Load(ctx, fingerprint, g.Name, g.Field)
	if err != nil {
		log.Warnf("snapshot load %s: %v", g.Name, err)
		return nil, false
	}
	if ok {
		log.Infof("chart %s (%s): using snapshot %s", g.Name, g.Field, fingerprint)
	}
	return rows, ok
}
