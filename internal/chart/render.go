// Package chart draws grouped bar charts of winner tallies as SVG.
package chart

import (
	"fmt"
	"io"
	"math"
	"strconv"

	svg "github.com/ajstarks/svgo"

	"tennischarts/internal/models"
)

type Margin struct {
	Top, Right, Bottom, Left int
}

// Layout is the outer size of a chart and the margins around its plot area.
type Layout struct {
	Width, Height int
	Margin        Margin
}

func DefaultLayout() Layout {
	return Layout{
		Width:  1000,
		Height: 500,
		Margin: Margin{Top: 20, Right: 20, Bottom: 30, Left: 40},
	}
}

func (l Layout) InnerWidth() int  { return l.Width - l.Margin.Left - l.Margin.Right }
func (l Layout) InnerHeight() int { return l.Height - l.Margin.Top - l.Margin.Bottom }

type Point struct {
	X, Y int
}

type Options struct {
	Layout Layout
	Title  string
	// Class is set on every category group. Defaults to the chart name.
	Class string
	// Legend is the legend origin relative to the top right plot corner.
	Legend Point
}

const (
	tickSize     = 6
	legendRow    = 20
	legendSwatch = 10
	emptyLabel   = "(empty)"
)

// errWriter remembers the first write error; svgo does not report them.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	n, err := e.w.Write(p)
	e.err = err
	return n, err
}

func px(v float64) int { return int(math.Round(v)) }

func label(s string) string {
	if s == "" {
		return emptyLabel
	}
	return s
}

// Render writes c as an SVG bar chart: one group of bars per category, one
// bar per winner, colored and positioned by the winner's palette index.
func Render(w io.Writer, c *models.ChartData, opts Options) error {
	ew := &errWriter{w: w}
	l := opts.Layout
	iw, ih := l.InnerWidth(), l.InnerHeight()
	class := opts.Class
	if class == "" {
		class = c.Name
	}

	canvas := svg.New(ew)
	canvas.Start(l.Width, l.Height, `font-family="sans-serif" font-size="10"`)
	if opts.Title != "" {
		canvas.Title(opts.Title)
	}

	if len(c.Rows) == 0 {
		canvas.Text(l.Width/2, l.Height/2, "No matches to display", `text-anchor="middle"`, `class="empty"`)
		canvas.End()
		return ew.err
	}

	pal := NewPalette(c.Winners)
	maxCount := c.Max
	for _, r := range c.Rows {
		for _, name := range r.Winners {
			pal.Index(name)
		}
		if m := r.Tally.Max(); m > maxCount {
			maxCount = m
		}
	}

	x := NewBand(len(c.Rows), 0, float64(iw))
	y := NewLinear(float64(maxCount), float64(ih), 0)
	barWidth := x.Bandwidth() / float64(max(pal.Len(), 1))

	canvas.Gtransform(fmt.Sprintf("translate(%d,%d)", l.Margin.Left, l.Margin.Top))

	for i, r := range c.Rows {
		canvas.Group(fmt.Sprintf(`class=%q`, class), fmt.Sprintf(`transform="translate(%d,0)"`, px(x.Pos(i))))
		for _, name := range r.Winners {
			top := px(y.Map(float64(r.Tally[name])))
			canvas.Rect(px(barWidth*float64(pal.Index(name))), top, max(px(barWidth), 1), ih-top,
				`class="bar"`, "fill:"+pal.Color(name))
		}
		canvas.Gend()
	}

	// x axis
	canvas.Group(`class="axis axis-x"`, fmt.Sprintf(`transform="translate(0,%d)"`, ih))
	canvas.Path(fmt.Sprintf("M0,%dV0H%dV%d", tickSize, iw, tickSize), "fill:none;stroke:currentColor")
	for i, r := range c.Rows {
		cx := px(x.Center(i))
		canvas.Line(cx, 0, cx, tickSize, "stroke:currentColor")
		canvas.Text(cx, tickSize+3, label(r.Category), `dy="0.71em"`, `text-anchor="middle"`)
	}
	canvas.Gend()

	// y axis
	canvas.Group(`class="axis axis-y"`)
	canvas.Path(fmt.Sprintf("M-%d,%dH0V0H-%d", tickSize, ih, tickSize), "fill:none;stroke:currentColor")
	for _, v := range y.Ticks() {
		ty := px(y.Map(v))
		canvas.Line(-tickSize, ty, 0, ty, "stroke:currentColor")
		canvas.Text(-tickSize-3, ty, strconv.FormatFloat(v, 'f', y.Precision(), 64), `dy="0.32em"`, `text-anchor="end"`)
	}
	canvas.Gend()

	canvas.Group(`class="legend"`, fmt.Sprintf(`transform="translate(%d,%d)"`, iw+opts.Legend.X, opts.Legend.Y))
	for i, name := range pal.Names() {
		canvas.Group(`class="legend-item"`, fmt.Sprintf(`transform="translate(0,%d)"`, i*legendRow))
		canvas.Rect(0, 0, legendSwatch, legendSwatch, "fill:"+pal.Color(name))
		canvas.Text(legendSwatch+5, legendSwatch, label(name), `dy="0.35em"`)
		canvas.Gend()
	}
	canvas.Gend()

	canvas.Gend()
	canvas.End()
	return ew.err
}
