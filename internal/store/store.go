// Package store persists simulation results.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/nvandessel/hyperscore/internal/simulation"
)

// ErrNotFound is returned when a run id is not in the store.
var ErrNotFound = errors.New("run not found")

// Filter narrows List. Zero fields match everything.
type Filter struct {
	// Scenario matches the run's scenario name or its base scenario.
	Scenario string
	Profile  string

	// Limit caps the number of summaries returned. 0 means no limit.
	Limit int
}

// Summary is the listing view of a stored run.
type Summary struct {
	RunID      string        `json:"run_id"`
	Scenario   string        `json:"scenario_name"`
	Base       string        `json:"base_scenario,omitempty"`
	Profile    string        `json:"profile,omitempty"`
	MetaScore  float64       `json:"meta_score"`
	Iterations int           `json:"iterations"`
	Nodes      int           `json:"nodes"`
	StartedAt  time.Time     `json:"started_at"`
	Duration   time.Duration `json:"duration"`
}

// Summarize builds the listing view of a result.
func Summarize(r *simulation.Result) Summary {
	return Summary{
		RunID:      r.RunID,
		Scenario:   r.Scenario,
		Base:       r.Base,
		Profile:    r.Profile,
		MetaScore:  r.MetaScore,
		Iterations: r.Config.Iterations,
		Nodes:      len(r.Nodes),
		StartedAt:  r.StartedAt,
		Duration:   r.Duration,
	}
}

func (f Filter) matches(s Summary) bool {
	if f.Scenario != "" && s.Scenario != f.Scenario && s.Base != f.Scenario {
		return false
	}
	if f.Profile != "" && s.Profile != f.Profile {
		return false
	}
	return true
}

// ResultStore stores final result snapshots. Implementations are safe for
// concurrent use.
type ResultStore interface {
	// Save stores r, replacing any run with the same id.
	Save(ctx context.Context, r *simulation.Result) error

	// Get returns the run with id, or ErrNotFound.
	Get(ctx context.Context, runID string) (*simulation.Result, error)

	// List returns summaries matching f, newest first.
	List(ctx context.Context, f Filter) ([]Summary, error)

	// Delete removes a run, or returns ErrNotFound.
	Delete(ctx context.Context, runID string) error

	Close() error
}
