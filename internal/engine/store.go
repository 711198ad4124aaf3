package engine

import "iter"

// Record is a single match row. Fields that do not exist read as "".
type Record interface {
	Get(field string) string
}

// MatchRecord is a Record backed by a plain map.
type MatchRecord map[string]string

func (m MatchRecord) Get(field string) string { return m[field] }

// ColumnStore holds the dataset in Struct-of-Arrays format.
// Every column is dictionary encoded: IDs[c][row] indexes Dicts[c].
type ColumnStore struct {
	Fields      []string
	IDs         [][]int32
	Dicts       [][]string
	Fingerprint string

	index map[string]int
	rows  int
}

func newColumnStore(fields []string) *ColumnStore {
	cs := &ColumnStore{
		Fields: fields,
		IDs:    make([][]int32, len(fields)),
		Dicts:  make([][]string, len(fields)),
		index:  make(map[string]int, len(fields)),
	}
	for i, f := range fields {
		// first occurrence wins on duplicate header names
		if _, ok := cs.index[f]; !ok {
			cs.index[f] = i
		}
	}
	return cs
}

// Len returns the number of rows.
func (cs *ColumnStore) Len() int { return cs.rows }

// Column returns the column index of field.
func (cs *ColumnStore) Column(field string) (int, bool) {
	i, ok := cs.index[field]
	return i, ok
}

// Value returns the value of field in row i.
func (cs *ColumnStore) Value(i int, field string) string {
	c, ok := cs.index[field]
	if !ok {
		return ""
	}
	return cs.Dicts[c][cs.IDs[c][i]]
}

// Row returns a Record view of row i.
func (cs *ColumnStore) Row(i int) Record { return row{cs: cs, i: i} }

// Records yields every row in file order.
func (cs *ColumnStore) Records() iter.Seq[Record] {
	return func(yield func(Record) bool) {
		for i := 0; i < cs.rows; i++ {
			if !yield(row{cs: cs, i: i}) {
				return
			}
		}
	}
}

type row struct {
	cs *ColumnStore
	i  int
}

func (r row) Get(field string) string { return r.cs.Value(r.i, field) }
