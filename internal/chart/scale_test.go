package chart

import (
	"math"
	"testing"
)

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestBand(t *testing.T) {
	b := NewBand(3, 0, 100)

	if !near(b.Bandwidth(), 100/3.1*0.9) {
		t.Errorf("Bandwidth: got %v", b.Bandwidth())
	}
	// Outer padding is symmetric.
	left := b.Pos(0)
	right := 100 - (b.Pos(2) + b.Bandwidth())
	if !near(left, right) || left <= 0 {
		t.Errorf("Expected symmetric outer padding, got %v and %v", left, right)
	}
	if !near(b.Center(1), 50) {
		t.Errorf("Middle band should be centered, got %v", b.Center(1))
	}
}

func TestBandEmpty(t *testing.T) {
	b := NewBand(0, 0, 100)
	if b.Bandwidth() != 0 {
		t.Errorf("Expected zero bandwidth, got %v", b.Bandwidth())
	}
}

func TestLinearNice(t *testing.T) {
	tests := []struct {
		max      float64
		wantMax  float64
		wantStep float64
		ticks    int
	}{
		{1, 1, 0.1, 11},
		{7, 7, 1, 8},
		{10, 10, 1, 11},
		{23, 25, 5, 6},
		{100, 100, 10, 11},
		{0, 1, 1, 2},
	}
	for _, tt := range tests {
		s := NewLinear(tt.max, 450, 0)
		if !near(s.Max, tt.wantMax) || !near(s.Step, tt.wantStep) {
			t.Errorf("max %v: got domain max %v step %v, want %v step %v", tt.max, s.Max, s.Step, tt.wantMax, tt.wantStep)
		}
		ticks := s.Ticks()
		if len(ticks) != tt.ticks {
			t.Errorf("max %v: got %d ticks, want %d", tt.max, len(ticks), tt.ticks)
		}
		if len(ticks) > maxTicks {
			t.Errorf("max %v: too many ticks %d", tt.max, len(ticks))
		}
	}
}

func TestLinearTicker(t *testing.T) {
	tk := linearTicker{max: 23}
	prev := tk.CountTicks(-3)
	for l := -2; l <= 6; l++ {
		n := tk.CountTicks(l)
		if n > prev {
			t.Errorf("level %d: CountTicks grew from %d to %d", l, prev, n)
		}
		prev = n
		ticks, ok := tk.TicksAtLevel(l).([]float64)
		if !ok || len(ticks) != n {
			t.Fatalf("level %d: TicksAtLevel gave %v, want %d ticks", l, tk.TicksAtLevel(l), n)
		}
		if ticks[0] != 0 || ticks[n-1] < 23 {
			t.Errorf("level %d: ticks %v do not cover [0, 23]", l, ticks)
		}
	}
}

func TestLinearMap(t *testing.T) {
	s := NewLinear(10, 450, 0)
	if s.Map(0) != 450 {
		t.Errorf("Map(0): got %v", s.Map(0))
	}
	if s.Map(10) != 0 {
		t.Errorf("Map(max): got %v", s.Map(10))
	}
	if !near(s.Map(5), 225) {
		t.Errorf("Map(5): got %v", s.Map(5))
	}
}

func TestLinearPrecision(t *testing.T) {
	if p := NewLinear(1, 100, 0).Precision(); p != 1 {
		t.Errorf("Expected 1 decimal for 0.1 steps, got %d", p)
	}
	if p := NewLinear(40, 100, 0).Precision(); p != 0 {
		t.Errorf("Expected 0 decimals, got %d", p)
	}
}

func TestPalette(t *testing.T) {
	p := NewPalette([]string{"Nadal", "Federer"})
	if p.Index("Nadal") != 0 || p.Index("Federer") != 1 {
		t.Error("Initial winners should keep their order")
	}
	if p.Index("Djokovic") != 2 || p.Len() != 3 {
		t.Error("New winners should get the next index")
	}
	if p.Color("Nadal") != "#1f77b4" || p.Color("Federer") != "#ff7f0e" {
		t.Errorf("Unexpected colors %s %s", p.Color("Nadal"), p.Color("Federer"))
	}
	for i := 0; i < 10; i++ {
		p.Index(string(rune('a' + i)))
	}
	if p.Color("j") != p.Color("Djokovic") {
		t.Error("Colors should cycle after ten")
	}
}
