package engine

import (
	"bytes"
	"context"
	stdcsv "encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/arrow/array"
	"github.com/apache/arrow/go/v18/arrow/csv"
	"github.com/apache/arrow/go/v18/arrow/memory"
	"github.com/dustin/go-humanize"
	"github.com/labstack/gommon/log"
	"github.com/zeebo/xxh3"
)

// ErrEmptyDataset is returned when the input has no header row.
var ErrEmptyDataset = errors.New("engine: empty dataset")

// Rows per Arrow record batch.
const chunkRows = 4096

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Fingerprint identifies a dataset by the xxh3 hash of its raw bytes.
func Fingerprint(content []byte) string {
	return fmt.Sprintf("%016x", xxh3.Hash(content))
}

// Load fetches source and parses it into a ColumnStore.
func Load(ctx context.Context, source string, opts FetchOptions) (*ColumnStore, error) {
	start := time.Now()
	log.Infof("Loading dataset from %s", source)

	content, err := Fetch(ctx, source, opts)
	if err != nil {
		return nil, err
	}
	store, err := LoadColumnar(content)
	if err != nil {
		return nil, fmt.Errorf("engine: load %s: %w", source, err)
	}

	log.Infof("Load complete. Rows: %s. Size: %s. Time: %v",
		humanize.Comma(int64(store.Len())), humanize.Bytes(uint64(len(content))), time.Since(start))
	return store, nil
}

// splitHeader separates the header row from the body.
func splitHeader(content []byte) ([]string, []byte, error) {
	content = bytes.TrimPrefix(content, utf8BOM)
	line, body, _ := bytes.Cut(content, []byte{'\n'})
	line = bytes.TrimSuffix(line, []byte{'\r'})
	if len(bytes.TrimSpace(line)) == 0 {
		return nil, nil, ErrEmptyDataset
	}
	fields, err := stdcsv.NewReader(bytes.NewReader(line)).Read()
	if err != nil {
		return nil, nil, fmt.Errorf("engine: parse header: %w", err)
	}
	for i, f := range fields {
		fields[i] = strings.TrimSpace(f)
	}
	return fields, body, nil
}

// columnDict is the dictionary of a single column. It is only touched by
// the goroutine encoding that column.
type columnDict struct {
	ids    map[string]int32
	values []string
}

func (d *columnDict) encode(col *array.String, dst []int32) []int32 {
	for j := 0; j < col.Len(); j++ {
		var s string
		if !col.IsNull(j) {
			s = col.Value(j)
		}
		id, ok := d.ids[s]
		if !ok {
			id = int32(len(d.values))
			s = strings.Clone(s) // Arrow owns the buffer behind Value
			d.values = append(d.values, s)
			d.ids[s] = id
		}
		dst = append(dst, id)
	}
	return dst
}

// LoadColumnar parses CSV content (header row first) into a dictionary
// encoded ColumnStore. Every column is read as a string.
func LoadColumnar(content []byte) (*ColumnStore, error) {
	fields, body, err := splitHeader(content)
	if err != nil {
		return nil, err
	}

	schemaFields := make([]arrow.Field, len(fields))
	for i, f := range fields {
		schemaFields[i] = arrow.Field{Name: f, Type: arrow.BinaryTypes.String, Nullable: true}
	}
	schema := arrow.NewSchema(schemaFields, nil)

	store := newColumnStore(fields)
	store.Fingerprint = Fingerprint(content)

	dicts := make([]*columnDict, len(fields))
	for i := range dicts {
		dicts[i] = &columnDict{ids: make(map[string]int32)}
	}

	rdr := csv.NewReader(bytes.NewReader(body), schema,
		csv.WithHeader(false),
		csv.WithChunk(chunkRows),
		csv.WithAllocator(memory.NewGoAllocator()),
	)
	defer rdr.Release()

	for rdr.Next() {
		rec := rdr.Record()

		cols := make([]*array.String, len(fields))
		for c := range cols {
			col, ok := rec.Column(c).(*array.String)
			if !ok {
				return nil, fmt.Errorf("engine: column %q: unexpected type %s", fields[c], rec.Column(c).DataType())
			}
			cols[c] = col
		}

		// Columns are independent, encode them in parallel.
		var wg sync.WaitGroup
		for c := range cols {
			wg.Add(1)
			go func(c int) {
				defer wg.Done()
				store.IDs[c] = dicts[c].encode(cols[c], store.IDs[c])
			}(c)
		}
		wg.Wait()

		store.rows += int(rec.NumRows())
	}
	if err := rdr.Err(); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("engine: parse csv: %w", err)
	}

	for c, d := range dicts {
		store.Dicts[c] = d.values
	}
	return store, nil
}
