package chart

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"tennischarts/internal/models"
)

func yearChart() *models.ChartData {
	return &models.ChartData{
		Name:  "year",
		Field: "year",
		Rows: []models.AggregatedRow{
			{Category: "2001", Tally: models.WinnerTally{"A": 1, "B": 1}, Winners: []string{"A", "B"}},
			{Category: "2002", Tally: models.WinnerTally{"A": 1}, Winners: []string{"A"}},
		},
		Winners: []string{"A", "B"},
		Max:     1,
	}
}

func TestRender(t *testing.T) {
	var buf bytes.Buffer
	err := Render(&buf, yearChart(), Options{Layout: DefaultLayout(), Title: "Winners by year", Legend: Point{X: -60, Y: -10}})
	if err != nil {
		t.Fatal(err)
	}
	out := buf.String()

	if !strings.Contains(out, `width="1000"`) || !strings.Contains(out, `height="500"`) {
		t.Error("Missing outer size")
	}
	if !strings.Contains(out, "<title>Winners by year</title>") {
		t.Error("Missing title")
	}
	if n := strings.Count(out, `class="bar"`); n != 3 {
		t.Errorf("Expected 3 bars, got %d", n)
	}
	if n := strings.Count(out, `class="year"`); n != 2 {
		t.Errorf("Expected 2 category groups, got %d", n)
	}
	if n := strings.Count(out, `class="legend-item"`); n != 2 {
		t.Errorf("Expected 2 legend items, got %d", n)
	}
	if !strings.Contains(out, "translate(880,-10)") {
		t.Error("Legend should sit at innerWidth-60,-10")
	}
	for _, want := range []string{">2001<", ">2002<", ">A<", ">B<", "#1f77b4", "#ff7f0e", ">0.5<"} {
		if !strings.Contains(out, want) {
			t.Errorf("Output missing %q", want)
		}
	}

	// B is the second winner, so its bar sits one bar width into the band.
	if !strings.Contains(out, `<rect x="201" y="0" width="201" height="450"`) {
		t.Errorf("B bar not positioned by index:\n%s", out)
	}
}

func TestRenderEmpty(t *testing.T) {
	var buf bytes.Buffer
	c := &models.ChartData{Name: "aces", Rows: []models.AggregatedRow{}}
	if err := Render(&buf, c, Options{Layout: DefaultLayout()}); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "No matches to display") {
		t.Error("Missing empty state message")
	}
	if strings.Contains(out, `class="bar"`) {
		t.Error("Empty chart should have no bars")
	}
}

func TestRenderEscapesLabels(t *testing.T) {
	c := &models.ChartData{
		Name: "country",
		Rows: []models.AggregatedRow{
			{Category: "", Tally: models.WinnerTally{"<script>": 2}, Winners: []string{"<script>"}},
		},
	}
	var buf bytes.Buffer
	if err := Render(&buf, c, Options{Layout: DefaultLayout()}); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if strings.Contains(out, "<script>") {
		t.Error("Winner names must be escaped")
	}
	if !strings.Contains(out, ">(empty)<") {
		t.Error("Empty category should be labelled")
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestRenderWriteError(t *testing.T) {
	if err := Render(failingWriter{}, yearChart(), Options{Layout: DefaultLayout()}); err == nil {
		t.Error("Expected write error")
	}
}
