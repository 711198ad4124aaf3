package engine

import (
	"iter"
	"slices"

	"tennischarts/internal/models"
)

// WinnerField is the column every tally counts.
const WinnerField = "winner"

// CategoryFunc picks the category a record belongs to. It must be pure.
type CategoryFunc func(Record) string

// Field returns a CategoryFunc that reads the named field.
func Field(name string) CategoryFunc {
	return func(r Record) string { return r.Get(name) }
}

// Aggregate groups records by categoryOf and tallies winners per group.
// See AggregateSeq.
func Aggregate(records []Record, categoryOf CategoryFunc) []models.AggregatedRow {
	return AggregateSeq(slices.Values(records), categoryOf)
}

// AggregateSeq groups records by categoryOf and tallies the winner field
// within each group. Groups are returned in the order their key first
// appears. Empty categories and empty winners are kept as keys.
// categoryOf is called exactly once per record.
func AggregateSeq(records iter.Seq[Record], categoryOf CategoryFunc) []models.AggregatedRow {
	out := make([]models.AggregatedRow, 0)
	pos := make(map[string]int)

	for r := range records {
		key := categoryOf(r)
		i, ok := pos[key]
		if !ok {
			i = len(out)
			pos[key] = i
			out = append(out, models.AggregatedRow{Category: key, Tally: models.WinnerTally{}})
		}

		row := &out[i]
		w := r.Get(WinnerField)
		if _, seen := row.Tally[w]; !seen {
			row.Winners = append(row.Winners, w)
		}
		row.Tally[w]++
	}
	return out
}

// Above this many category×winner cells AggregateField uses the map path.
const maxMatrixCells = 1 << 22

// AggregateField is AggregateSeq(cs.Records(), Field(field)) computed on the
// dictionary ids instead of strings.
func (cs *ColumnStore) AggregateField(field string) []models.AggregatedRow {
	cc, okC := cs.Column(field)
	wc, okW := cs.Column(WinnerField)
	if !okC || !okW {
		return AggregateSeq(cs.Records(), Field(field))
	}
	numCats := len(cs.Dicts[cc])
	numWinners := len(cs.Dicts[wc])
	if numCats*numWinners > maxMatrixCells {
		return AggregateSeq(cs.Records(), Field(field))
	}

	catIDs := cs.IDs[cc]
	winIDs := cs.IDs[wc]

	// THE MATRIX: [category][winner] flattened to category*numWinners+winner.
	matrix := make([]int, numCats*numWinners)
	// Category and winner first-seen order, as ids.
	catOrder := make([]int32, 0, numCats)
	winOrder := make([][]int32, numCats)

	for j := 0; j < cs.rows; j++ {
		cid, wid := catIDs[j], winIDs[j]
		idx := int(cid)*numWinners + int(wid)
		if winOrder[cid] == nil {
			catOrder = append(catOrder, cid)
		}
		if matrix[idx] == 0 {
			winOrder[cid] = append(winOrder[cid], wid)
		}
		matrix[idx]++
	}

	out := make([]models.AggregatedRow, 0, len(catOrder))
	for _, cid := range catOrder {
		row := models.AggregatedRow{
			Category: cs.Dicts[cc][cid],
			Tally:    make(models.WinnerTally, len(winOrder[cid])),
			Winners:  make([]string, 0, len(winOrder[cid])),
		}
		for _, wid := range winOrder[cid] {
			name := cs.Dicts[wc][wid]
			row.Tally[name] = matrix[int(cid)*numWinners+int(wid)]
			row.Winners = append(row.Winners, name)
		}
		out = append(out, row)
	}
	return out
}
