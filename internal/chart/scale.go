package chart

import (
	"math"

	"github.com/aclements/go-moremath/scale"
)

// Band divides a continuous range into evenly spaced bands, one per
// category, with 10% inner and outer padding.
type Band struct {
	n         int
	start     float64
	step      float64
	bandwidth float64
}

const bandPadding = 0.1

func NewBand(n int, start, stop float64) Band {
	b := Band{n: n}
	if n == 0 {
		return b
	}
	span := stop - start
	b.step = span / math.Max(1, float64(n)-bandPadding+2*bandPadding)
	b.start = start + (span-b.step*(float64(n)-bandPadding))*0.5
	b.bandwidth = b.step * (1 - bandPadding)
	return b
}

// Pos returns the left edge of band i.
func (b Band) Pos(i int) float64 { return b.start + b.step*float64(i) }

// Center returns the middle of band i.
func (b Band) Center(i int) float64 { return b.Pos(i) + b.bandwidth/2 }

func (b Band) Bandwidth() float64 { return b.bandwidth }

// Linear maps [0, Max] onto [rangeLo, rangeHi]. Max is rounded up to a
// multiple of the tick step.
type Linear struct {
	Max   float64
	Step  float64
	Exp   int
	lo    float64
	hi    float64
	ticks int
}

const maxTicks = 11

var tickBases = [3]float64{1, 2, 5}

// tickStep returns the tick spacing at level l: 1, 2 or 5 times 10^(l/3).
func tickStep(l int) (float64, int) {
	exp := int(math.Floor(float64(l) / 3))
	return tickBases[l-exp*3] * math.Pow10(exp), exp
}

// linearTicker enumerates the ticks 0, step, 2*step... covering [0, max] at
// each level of the 1-2-5 sequence.
type linearTicker struct {
	max float64
}

func (t linearTicker) CountTicks(level int) int {
	step, _ := tickStep(level)
	return int(math.Ceil(t.max/step)) + 1
}

func (t linearTicker) TicksAtLevel(level int) interface{} {
	step, _ := tickStep(level)
	out := make([]float64, t.CountTicks(level))
	for i := range out {
		out[i] = float64(i) * step
	}
	return out
}

// NewLinear returns a nice linear scale for the domain [0, max] that maps
// onto [lo, hi].
func NewLinear(max, lo, hi float64) Linear {
	s := Linear{Max: max, lo: lo, hi: hi}
	if max <= 0 {
		s.Max, s.Step, s.ticks = 1, 1, 2
		return s
	}

	t := linearTicker{max: max}
	guess := int(math.Floor(math.Log10(max/maxTicks) * 3))
	o := scale.TickOptions{Max: maxTicks}
	l, ok := o.FindLevel(t, guess)
	if !ok {
		l = guess
	}

	s.Step, s.Exp = tickStep(l)
	s.ticks = t.CountTicks(l)
	s.Max = float64(s.ticks-1) * s.Step
	return s
}

// Map converts a domain value to a range position.
func (s Linear) Map(v float64) float64 {
	return s.lo + v/s.Max*(s.hi-s.lo)
}

// Ticks returns the tick values from 0 to Max inclusive.
func (s Linear) Ticks() []float64 {
	out := make([]float64, s.ticks)
	for i := range out {
		out[i] = float64(i) * s.Step
	}
	return out
}

// Precision is the number of decimals needed to print a tick.
func (s Linear) Precision() int {
	if s.Exp >= 0 {
		return 0
	}
	return -s.Exp
}
