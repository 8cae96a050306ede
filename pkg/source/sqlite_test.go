package source

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
)

func makeDB(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "claims.db")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	stmts := []string{
		`CREATE TABLE claims ("Name" TEXT, "QTY" INTEGER, "Net Amount" REAL)`,
		`INSERT INTO claims VALUES ('Dr. Ahmed Ali', 12, 300.5)`,
		`INSERT INTO claims VALUES ('دكتور خالد', 1, 7500)`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			t.Fatal(err)
		}
	}
	return path
}

func TestSQLiteLoad(t *testing.T) {
	src := &SQLite{Path: makeDB(t), Table: "claims"}
	tab, err := src.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(tab.Rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(tab.Rows))
	}
	if !tab.HasColumn("Net Amount") {
		t.Errorf("columns = %v", tab.Columns)
	}
	// TEXT cells come back as strings even when the driver hands us bytes.
	if got, ok := tab.Rows[1]["Name"].(string); !ok || got != "دكتور خالد" {
		t.Errorf("Name = %#v", tab.Rows[1]["Name"])
	}
	if got, ok := tab.Rows[0]["QTY"].(int64); !ok || got != 12 {
		t.Errorf("QTY = %#v", tab.Rows[0]["QTY"])
	}
}

func TestSQLiteBadTableName(t *testing.T) {
	src := &SQLite{Path: makeDB(t), Table: "claims; DROP TABLE claims"}
	if _, err := src.Load(context.Background()); err == nil {
		t.Fatal("expected error for invalid table name")
	}
}

func TestSQLiteMissingTable(t *testing.T) {
	src := &SQLite{Path: makeDB(t), Table: "nope"}
	if _, err := src.Load(context.Background()); err == nil {
		t.Fatal("expected error for missing table")
	}
}
