package engine

// Grouping describes one chart: which field the matches are grouped by.
type Grouping struct {
	Name  string
	Field string
	Title string
}

func (g Grouping) CategoryOf() CategoryFunc { return Field(g.Field) }

// DefaultGroupings are the year, country and ace charts.
func DefaultGroupings() []Grouping {
	return []Grouping{
		{Name: "year", Field: "year", Title: "Winners by year"},
		{Name: "country", Field: "country1", Title: "Winners by country"},
		{Name: "aces", Field: "ace1", Title: "Winners by ace count"},
	}
}
