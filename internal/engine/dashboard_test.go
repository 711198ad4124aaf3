package engine

import (
	"context"
	"errors"
	"reflect"
	"path/filepath"
	"testing"

	"tennischarts/internal/models"
	"tennischarts/internal/snapshot"
)

type memCache struct {
	rows    map[string][]models.AggregatedRow
	saves   int
	loadErr error
}

func (m *memCache) Load(_ context.Context, fp, chart, field string) ([]models.AggregatedRow, bool, error) {
	if m.loadErr != nil {
		return nil, false, m.loadErr
	}
	r, ok := m.rows[fp+"/"+chart+"/"+field]
	return r, ok, nil
}

func (m *memCache) Save(_ context.Context, fp, chart, field string, rows []models.AggregatedRow) error {
	m.saves++
	m.rows[fp+"/"+chart+"/"+field] = rows
	return nil
}

func TestNewChart(t *testing.T) {
	rows := []models.AggregatedRow{
		{Category: "2001", Tally: models.WinnerTally{"B": 1, "A": 3}, Winners: []string{"B", "A"}},
		{Category: "2002", Tally: models.WinnerTally{"C": 2, "A": 1}, Winners: []string{"C", "A"}},
	}
	c := NewChart(Grouping{Name: "year", Field: "year", Title: "By year"}, rows)

	if !reflect.DeepEqual(c.Winners, []string{"B", "A", "C"}) {
		t.Errorf("Unexpected winner order %v", c.Winners)
	}
	if c.Max != 3 {
		t.Errorf("Expected max 3, got %d", c.Max)
	}
	if s := c.Summary(); s.Categories != 2 || s.Winners != 3 {
		t.Errorf("Unexpected summary %+v", s)
	}
}

func TestNewChartEmpty(t *testing.T) {
	c := NewChart(Grouping{Name: "year"}, []models.AggregatedRow{})
	if c.Max != 0 || c.Winners == nil || len(c.Winners) != 0 {
		t.Errorf("Unexpected empty chart %+v", c)
	}
}

func TestBuildDashboard(t *testing.T) {
	store, err := LoadColumnar([]byte(sampleCSV))
	if err != nil {
		t.Fatal(err)
	}
	cache := &memCache{rows: map[string][]models.AggregatedRow{}}

	d := BuildDashboard(context.Background(), store, DefaultGroupings(), cache)
	if d.Rows != 3 || d.Fingerprint != store.Fingerprint {
		t.Errorf("Unexpected dashboard header %+v", d)
	}
	if len(d.Charts) != 3 {
		t.Fatalf("Expected 3 charts, got %d", len(d.Charts))
	}
	year := d.Chart("year")
	if year == nil || len(year.Rows) != 2 || year.Rows[0].Category != "2013" {
		t.Fatalf("Unexpected year chart %+v", year)
	}
	country := d.Chart("country")
	if country == nil || country.Rows[0].Category != "SUI" || country.Rows[0].Tally["Federer"] != 1 {
		t.Errorf("Unexpected country chart %+v", country)
	}
	if d.Chart("nope") != nil {
		t.Error("Unknown chart should be nil")
	}
	if cache.saves != 3 {
		t.Errorf("Expected 3 snapshot saves, got %d", cache.saves)
	}

	// Second build is served from the cache.
	cache.rows[store.Fingerprint+"/year/year"] = []models.AggregatedRow{
		{Category: "cached", Tally: models.WinnerTally{"Z": 9}, Winners: []string{"Z"}},
	}
	d = BuildDashboard(context.Background(), store, DefaultGroupings(), cache)
	if d.Chart("year").Rows[0].Category != "cached" {
		t.Error("Expected cached rows to be used")
	}
	if cache.saves != 3 {
		t.Errorf("Cache hits should not save, got %d saves", cache.saves)
	}
}

func TestBuildDashboardCacheError(t *testing.T) {
	store, err := LoadColumnar([]byte(sampleCSV))
	if err != nil {
		t.Fatal(err)
	}
	cache := &memCache{rows: map[string][]models.AggregatedRow{}, loadErr: errors.New("disk gone")}

	d := BuildDashboard(context.Background(), store, DefaultGroupings()[:1], cache)
	if len(d.Charts) != 1 || len(d.Charts[0].Rows) != 2 {
		t.Errorf("Expected fresh aggregation on cache error, got %+v", d.Charts)
	}
}

func TestBuildDashboardNilCache(t *testing.T) {
	store, err := LoadColumnar([]byte(sampleCSV))
	if err != nil {
		t.Fatal(err)
	}
	d := BuildDashboard(context.Background(), store, DefaultGroupings(), nil)
	aces := d.Chart("aces")
	if aces == nil || aces.Rows[0].Category != "8" || aces.Rows[0].Tally["Federer"] != 1 || aces.Rows[0].Tally["Smith, J"] != 1 {
		t.Errorf("Unexpected aces chart %+v", aces)
	}
}

func TestBuildDashboardFieldChangeMissesCache(t *testing.T) {
	store, err := LoadColumnar([]byte(sampleCSV))
	if err != nil {
		t.Fatal(err)
	}
	cache, err := snapshot.Open(filepath.Join(t.TempDir(), "tallies.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer cache.Close()
	ctx := context.Background()

	d := BuildDashboard(ctx, store, []Grouping{{Name: "country", Field: "country1"}}, cache)
	if got := d.Chart("country").Rows[0].Category; got != "SUI" {
		t.Fatalf("country1: expected first category SUI, got %q", got)
	}

	// Same chart name, different field: the country1 snapshot must not be reused.
	d = BuildDashboard(ctx, store, []Grouping{{Name: "country", Field: "country2"}}, cache)
	c := d.Chart("country")
	if c.Field != "country2" || c.Rows[0].Category != "AUS" || len(c.Rows) != 3 {
		t.Errorf("country2: expected fresh rows starting at AUS, got %+v", c.Rows)
	}

	// Both groupings stay cached side by side.
	if _, ok, err := cache.Load(ctx, store.Fingerprint, "country", "country1"); err != nil || !ok {
		t.Errorf("country1 snapshot missing: ok=%v err=%v", ok, err)
	}
	if _, ok, err := cache.Load(ctx, store.Fingerprint, "country", "country2"); err != nil || !ok {
		t.Errorf("country2 snapshot missing: ok=%v err=%v", ok, err)
	}
}
