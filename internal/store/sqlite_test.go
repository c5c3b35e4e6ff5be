package store

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func TestOpenProjectStore(t *testing.T) {
	tmpDir := t.TempDir()

	s, err := OpenProjectStore(tmpDir)
	if err != nil {
		t.Fatalf("OpenProjectStore() error = %v", err)
	}
	defer s.Close()

	// Verify .hyperscore directory was created
	dir := filepath.Join(tmpDir, ".hyperscore")
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		t.Error(".hyperscore directory was not created")
	}

	// Verify database file was created
	if _, err := os.Stat(filepath.Join(dir, "results.db")); os.IsNotExist(err) {
		t.Error("results.db was not created")
	}
	if s.Path() != ResultsDBPath(tmpDir) {
		t.Errorf("Path() = %s", s.Path())
	}
}

func TestSQLiteResultStore_Persistence(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "results.db")
	ctx := context.Background()

	s, err := NewSQLiteResultStore(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteResultStore() error = %v", err)
	}
	if err := s.Save(ctx, newResult("persisted", "A", "", "", 0.42, 0)); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	reopened, err := NewSQLiteResultStore(dbPath)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer reopened.Close()

	got, err := reopened.Get(ctx, "persisted")
	if err != nil {
		t.Fatalf("Get() after reopen error = %v", err)
	}
	if got.MetaScore != 0.42 {
		t.Errorf("MetaScore = %v, want 0.42", got.MetaScore)
	}
}

func TestSQLiteResultStore_ScoreHistory(t *testing.T) {
	s, err := NewSQLiteResultStore(filepath.Join(t.TempDir(), "results.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	ctx := context.Background()

	for i, meta := range []float64{0.3, 0.6} {
		r := newResult(string(rune('a'+i)), "A", "", "", meta, time.Duration(i)*time.Hour)
		if err := s.Save(ctx, r); err != nil {
			t.Fatal(err)
		}
	}

	history, err := s.ScoreHistory(ctx, "design_prediction", "performance")
	if err != nil {
		t.Fatalf("ScoreHistory() error = %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 points, got %d", len(history))
	}
	if history[0].RunID != "a" || history[0].Score != 0.3 || history[1].Score != 0.6 {
		t.Errorf("unexpected history %+v", history)
	}
	if history[0].Family != "functionality" {
		t.Errorf("Family = %s", history[0].Family)
	}

	// Deleting a run cascades to its scores.
	if err := s.Delete(ctx, "a"); err != nil {
		t.Fatal(err)
	}
	history, _ = s.ScoreHistory(ctx, "design_prediction", "performance")
	if len(history) != 1 {
		t.Errorf("expected cascade delete, got %d points", len(history))
	}
}

func TestSQLiteResultStore_ConcurrentSaves(t *testing.T) {
	s, err := NewSQLiteResultStore(filepath.Join(t.TempDir(), "results.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r := newResult(string(rune('a'+i)), "A", "", "", float64(i), time.Duration(i)*time.Second)
			if err := s.Save(ctx, r); err != nil {
				t.Errorf("Save() error = %v", err)
			}
		}(i)
	}
	wg.Wait()

	all, err := s.List(ctx, Filter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 8 {
		t.Errorf("expected 8 runs, got %d", len(all))
	}
}

func TestInitSchema_Idempotent(t *testing.T) {
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "schema.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	ctx := context.Background()

	if err := InitSchema(ctx, db); err != nil {
		t.Fatalf("first InitSchema() error = %v", err)
	}
	if err := InitSchema(ctx, db); err != nil {
		t.Fatalf("second InitSchema() error = %v", err)
	}

	version, err := getSchemaVersion(ctx, db)
	if err != nil {
		t.Fatal(err)
	}
	if version != SchemaVersion {
		t.Errorf("schema version = %d, want %d", version, SchemaVersion)
	}
}

func TestInitSchema_RejectsNewerVersion(t *testing.T) {
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "schema.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	ctx := context.Background()

	if err := InitSchema(ctx, db); err != nil {
		t.Fatal(err)
	}
	if _, err := db.ExecContext(ctx,
		`INSERT INTO schema_version (version, applied_at) VALUES (?, datetime('now'))`, SchemaVersion+1); err != nil {
		t.Fatal(err)
	}
	if err := InitSchema(ctx, db); err == nil {
		t.Error("expected error for a newer schema version")
	}
}

func TestInitSchema_UpgradesFromV1(t *testing.T) {
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "schema.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	ctx := context.Background()

	if _, err := db.ExecContext(ctx, schemaVersionTable); err != nil {
		t.Fatal(err)
	}
	if err := migrate(ctx, db, 1); err != nil {
		t.Fatalf("migrate(1) error = %v", err)
	}
	var n int
	if err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'run_scores'`).Scan(&n); err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Fatal("run_scores should not exist at v1")
	}

	if err := InitSchema(ctx, db); err != nil {
		t.Fatalf("InitSchema() error = %v", err)
	}
	if err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'run_scores'`).Scan(&n); err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Error("run_scores missing after upgrade")
	}
	if v, _ := getSchemaVersion(ctx, db); v != SchemaVersion {
		t.Errorf("schema version = %d, want %d", v, SchemaVersion)
	}
}
