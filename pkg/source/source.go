// Package source loads claim tables from the formats operators actually
// hand us: xlsx exports, CSV dumps in assorted encodings, and SQLite
// extracts. A Source is the external tabular collaborator of the record
// index: it reports a freshness fingerprint and loads full snapshots.
package source

import (
	"context"
	"fmt"
	"os"
)

// Table is one full snapshot of a tabular source. Cell values stay
// untyped: CSV yields strings, xlsx raw cell values, SQL whatever the
// driver produced; the indexer normalizes per declared field kind.
type Table struct {
	Columns []string
	Rows    []map[string]any
}

// HasColumn reports whether the snapshot carries a named column.
// Declared columns may be absent from a given export batch.
func (t *Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// Source supplies table snapshots plus a freshness signal. Load must
// return either a complete snapshot or an error, never a partial one.
type Source interface {
	// Fingerprint returns an opaque freshness token; a changed token
	// means the next Load may observe different data.
	Fingerprint() (string, error)
	// Load reads a full snapshot of the table.
	Load(ctx context.Context) (*Table, error)
}

// fileFingerprint derives a freshness token from a file's modification
// time and size.
func fileFingerprint(path string) (string, error) {
	st, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", path, err)
	}
	return fmt.Sprintf("%d-%d", st.ModTime().UnixNano(), st.Size()), nil
}
