package records

import (
	"runtime"
	"sync"

	"github.com/hazyhaar/sijill/pkg/source"
)

// Index is one complete derivation of a category over one table
// snapshot. It is immutable after Build: concurrent queries share it
// without locking, and a changed source produces a whole new Index.
type Index struct {
	Category    *Category
	Fingerprint string
	Records     []Record
}

// BuildIndex derives every present schema column for every row. Columns
// declared in the schema but absent from the snapshot simply produce no
// derived fields. Derivation is pure and has no cross-record dependency,
// so rows are fanned out across workers and merged by position; record
// IDs are 1-based source positions, which keeps rebuilds deterministic.
func BuildIndex(cat *Category, tab *source.Table, fingerprint string) *Index {
	present := make([]Column, 0, len(cat.Columns))
	for _, col := range cat.Columns {
		if tab.HasColumn(col.Name) {
			present = append(present, col)
		}
	}

	recs := make([]Record, len(tab.Rows))
	workers := runtime.GOMAXPROCS(0)
	if workers > len(tab.Rows) {
		workers = len(tab.Rows)
	}
	if workers < 1 {
		workers = 1
	}

	chunk := (len(tab.Rows) + workers - 1) / workers
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		lo := w * chunk
		hi := lo + chunk
		if hi > len(tab.Rows) {
			hi = len(tab.Rows)
		}
		if lo >= hi {
			break
		}
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			for i := lo; i < hi; i++ {
				recs[i] = deriveRecord(i+1, present, tab.Rows[i])
			}
		}(lo, hi)
	}
	wg.Wait()

	return &Index{Category: cat, Fingerprint: fingerprint, Records: recs}
}

func deriveRecord(id int, cols []Column, row map[string]any) Record {
	rec := Record{ID: id, Fields: make(map[string]Field, len(cols))}
	for _, col := range cols {
		rec.Fields[col.As] = deriveField(col.Kind, row[col.Name])
	}
	return rec
}
