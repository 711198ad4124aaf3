package chart

// category10 is the classic ten color categorical scheme.
var category10 = []string{
	"#1f77b4", "#ff7f0e", "#2ca02c", "#d62728", "#9467bd",
	"#8c564b", "#e377c2", "#7f7f7f", "#bcbd22", "#17becf",
}

// Palette assigns each winner a stable index and color. Indexes follow the
// order winners were added; colors cycle after ten.
type Palette struct {
	index  map[string]int
	names  []string
	colors []string
}

func NewPalette(winners []string) *Palette {
	p := &Palette{index: make(map[string]int, len(winners)), colors: category10}
	for _, w := range winners {
		p.Index(w)
	}
	return p
}

// Index returns the winner's index, assigning the next one on first use.
func (p *Palette) Index(winner string) int {
	if i, ok := p.index[winner]; ok {
		return i
	}
	i := len(p.names)
	p.index[winner] = i
	p.names = append(p.names, winner)
	return i
}

func (p *Palette) Color(winner string) string {
	return p.colors[p.Index(winner)%len(p.colors)]
}

func (p *Palette) Len() int { return len(p.names) }

// Names returns the winners in index order.
func (p *Palette) Names() []string { return p.names }
