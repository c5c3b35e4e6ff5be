package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/nvandessel/hyperscore/internal/graph"
	"github.com/nvandessel/hyperscore/internal/simulation"

	_ "modernc.org/sqlite" // SQLite driver
)

// SQLiteResultStore implements ResultStore on a SQLite database.
type SQLiteResultStore struct {
	mu     sync.RWMutex
	db     *sql.DB
	dbPath string
}

// NewSQLiteResultStore opens (creating if needed) the database at dbPath.
func NewSQLiteResultStore(dbPath string) (*SQLiteResultStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite works best with single writer
	db.SetMaxOpenConns(1)

	if err := InitSchema(context.Background(), db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteResultStore{db: db, dbPath: dbPath}, nil
}

// OpenProjectStore opens the store at <root>/.hyperscore/results.db.
func OpenProjectStore(root string) (*SQLiteResultStore, error) {
	return NewSQLiteResultStore(ResultsDBPath(root))
}

// Path returns the database file path.
func (s *SQLiteResultStore) Path() string {
	return s.dbPath
}

// Save stores r and its flattened scores in one transaction.
func (s *SQLiteResultStore) Save(ctx context.Context, r *simulation.Result) error {
	if r == nil || r.RunID == "" {
		return fmt.Errorf("run ID is required")
	}
	payload, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Replacing a run must also replace its scores.
	if _, err := tx.ExecContext(ctx, `DELETE FROM runs WHERE run_id = ?`, r.RunID); err != nil {
		return fmt.Errorf("failed to replace run: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (run_id, scenario, base_scenario, profile, meta_score, iterations,
			alpha, beta, node_count, started_at, duration_ns, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, r.RunID, r.Scenario, nullString(r.Base), nullString(r.Profile), r.MetaScore, r.Config.Iterations,
		r.Config.Alpha, r.Config.Beta, len(r.Nodes), r.StartedAt.UnixNano(), int64(r.Duration), string(payload))
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO run_scores (run_id, node_id, family, label, score) VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare score insert: %w", err)
	}
	defer stmt.Close()

	for _, id := range r.NodeIDs() {
		state := r.Nodes[id]
		for family, scores := range map[string]map[string]float64{
			graph.FamilyFunctionality.String(): state.Functionality,
			graph.FamilyValue.String():         state.Value,
		} {
			for label, score := range scores {
				if _, err := stmt.ExecContext(ctx, r.RunID, id, family, label, score); err != nil {
					return fmt.Errorf("failed to insert score %s.%s: %w", id, label, err)
				}
			}
		}
	}

	return tx.Commit()
}

// Get returns the stored run.
func (s *SQLiteResultStore) Get(ctx context.Context, runID string) (*simulation.Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var payload string
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM runs WHERE run_id = ?`, runID).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, runID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query run: %w", err)
	}

	var r simulation.Result
	if err := json.Unmarshal([]byte(payload), &r); err != nil {
		return nil, fmt.Errorf("failed to decode run %s: %w", runID, err)
	}
	return &r, nil
}

// List returns matching summaries, newest first.
func (s *SQLiteResultStore) List(ctx context.Context, f Filter) ([]Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		where []string
		args  []any
	)
	if f.Scenario != "" {
		where = append(where, `(scenario = ? OR base_scenario = ?)`)
		args = append(args, f.Scenario, f.Scenario)
	}
	if f.Profile != "" {
		where = append(where, `profile = ?`)
		args = append(args, f.Profile)
	}

	query := `SELECT run_id, scenario, base_scenario, profile, meta_score, iterations,
		node_count, started_at, duration_ns FROM runs`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, ` AND `)
	}
	query += ` ORDER BY started_at DESC, run_id ASC`
	if f.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var (
			sum           Summary
			base, profile sql.NullString
			startedAt     int64
			durationNS    int64
		)
		if err := rows.Scan(&sum.RunID, &sum.Scenario, &base, &profile, &sum.MetaScore,
			&sum.Iterations, &sum.Nodes, &startedAt, &durationNS); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		sum.Base = base.String
		sum.Profile = profile.String
		sum.StartedAt = time.Unix(0, startedAt)
		sum.Duration = time.Duration(durationNS)
		out = append(out, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate runs: %w", err)
	}
	return out, nil
}

// ScorePoint is one run's final score for a (node, label) pair.
type ScorePoint struct {
	RunID     string    `json:"run_id"`
	Scenario  string    `json:"scenario_name"`
	Family    string    `json:"family"`
	Score     float64   `json:"score"`
	StartedAt time.Time `json:"started_at"`
}

// ScoreHistory returns the final score of label on nodeID across stored
// runs, oldest first.
func (s *SQLiteResultStore) ScoreHistory(ctx context.Context, nodeID, label string) ([]ScorePoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT r.run_id, r.scenario, sc.family, sc.score, r.started_at
		FROM run_scores sc JOIN runs r ON r.run_id = sc.run_id
		WHERE sc.node_id = ? AND sc.label = ?
		ORDER BY r.started_at ASC, r.run_id ASC, sc.family ASC
	`, nodeID, label)
	if err != nil {
		return nil, fmt.Errorf("failed to query score history: %w", err)
	}
	defer rows.Close()

	var out []ScorePoint
	for rows.Next() {
		var (
			p         ScorePoint
			startedAt int64
		)
		if err := rows.Scan(&p.RunID, &p.Scenario, &p.Family, &p.Score, &startedAt); err != nil {
			return nil, fmt.Errorf("failed to scan score: %w", err)
		}
		p.StartedAt = time.Unix(0, startedAt)
		out = append(out, p)
	}
	return out, rows.Err()
}

// Delete removes a run and its scores.
func (s *SQLiteResultStore) Delete(ctx context.Context, runID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE run_id = ?`, runID)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, runID)
	}
	return nil
}

// Close closes the database.
func (s *SQLiteResultStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
