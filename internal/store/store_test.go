package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/nvandessel/hyperscore/internal/simulation"
)

var epoch = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// newResult is a test helper that builds a small result.
func newResult(id, scenario, base, profile string, meta float64, offset time.Duration) *simulation.Result {
	return &simulation.Result{
		RunID:     id,
		Scenario:  scenario,
		Base:      base,
		Profile:   profile,
		MetaScore: meta,
		Config:    simulation.Config{Iterations: 10, Alpha: 0.5, Beta: 0.5, MetaWeights: simulation.DefaultMetaWeights()},
		Nodes: map[string]simulation.NodeState{
			"design_prediction": {
				Domain:        "Design",
				Type:          "Prediction",
				Attributes:    map[string]any{"max_deflection_mm": 0.5},
				Functionality: map[string]float64{"performance": meta},
				Value:         map[string]float64{"total_cost": 1},
			},
		},
		StartedAt: epoch.Add(offset),
		Duration:  3 * time.Millisecond,
	}
}

// storeFactories lets every contract test run against each implementation.
func storeFactories(t *testing.T) map[string]func() ResultStore {
	t.Helper()
	return map[string]func() ResultStore{
		"memory": func() ResultStore { return NewInMemoryResultStore() },
		"sqlite": func() ResultStore {
			s, err := NewSQLiteResultStore(filepath.Join(t.TempDir(), "results.db"))
			if err != nil {
				t.Fatalf("NewSQLiteResultStore() error = %v", err)
			}
			return s
		},
	}
}

func TestResultStore_SaveGet(t *testing.T) {
	for name, factory := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			s := factory()
			defer s.Close()
			ctx := context.Background()

			in := newResult("run-1", "Panel (Balanced)", "Panel", "Balanced", 0.8, 0)
			if err := s.Save(ctx, in); err != nil {
				t.Fatalf("Save() error = %v", err)
			}

			got, err := s.Get(ctx, "run-1")
			if err != nil {
				t.Fatalf("Get() error = %v", err)
			}
			if got.Scenario != in.Scenario || got.Base != "Panel" || got.Profile != "Balanced" {
				t.Errorf("Get() = %+v", got)
			}
			if got.MetaScore != 0.8 {
				t.Errorf("MetaScore = %v, want 0.8", got.MetaScore)
			}
			if !got.StartedAt.Equal(in.StartedAt) {
				t.Errorf("StartedAt = %v, want %v", got.StartedAt, in.StartedAt)
			}
			if got.Score("design_prediction", "performance") != 0.8 {
				t.Errorf("node score lost in round trip")
			}
			if got.Config.MetaWeights["technology_assessment"]["sustainability"] != 0.5 {
				t.Errorf("config lost in round trip: %+v", got.Config)
			}

			// The stored copy is detached from the caller's result.
			in.Nodes["design_prediction"].Functionality["performance"] = 0
			again, _ := s.Get(ctx, "run-1")
			if again.Score("design_prediction", "performance") != 0.8 {
				t.Error("store aliases caller state")
			}
		})
	}
}

func TestResultStore_SaveRequiresID(t *testing.T) {
	for name, factory := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			s := factory()
			defer s.Close()
			if err := s.Save(context.Background(), &simulation.Result{}); err == nil {
				t.Error("expected error for missing run ID")
			}
			if err := s.Save(context.Background(), nil); err == nil {
				t.Error("expected error for nil result")
			}
		})
	}
}

func TestResultStore_NotFound(t *testing.T) {
	for name, factory := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			s := factory()
			defer s.Close()
			ctx := context.Background()

			if _, err := s.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
				t.Errorf("Get() error = %v, want ErrNotFound", err)
			}
			if err := s.Delete(ctx, "missing"); !errors.Is(err, ErrNotFound) {
				t.Errorf("Delete() error = %v, want ErrNotFound", err)
			}
		})
	}
}

func TestResultStore_ListFilterOrder(t *testing.T) {
	for name, factory := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			s := factory()
			defer s.Close()
			ctx := context.Background()

			for _, r := range []*simulation.Result{
				newResult("a", "Panel (Balanced)", "Panel", "Balanced", 0.1, time.Minute),
				newResult("b", "Panel (Cost-Focused)", "Panel", "Cost-Focused", 0.2, 3*time.Minute),
				newResult("c", "Other", "", "", 0.3, 2*time.Minute),
			} {
				if err := s.Save(ctx, r); err != nil {
					t.Fatalf("Save(%s) error = %v", r.RunID, err)
				}
			}

			all, err := s.List(ctx, Filter{})
			if err != nil {
				t.Fatalf("List() error = %v", err)
			}
			assertIDs(t, all, "b", "c", "a")

			panel, _ := s.List(ctx, Filter{Scenario: "Panel"})
			assertIDs(t, panel, "b", "a")

			other, _ := s.List(ctx, Filter{Scenario: "Other"})
			assertIDs(t, other, "c")

			cost, _ := s.List(ctx, Filter{Profile: "Cost-Focused"})
			assertIDs(t, cost, "b")

			limited, _ := s.List(ctx, Filter{Limit: 2})
			assertIDs(t, limited, "b", "c")

			if all[0].Nodes != 1 || all[0].Iterations != 10 {
				t.Errorf("summary = %+v", all[0])
			}
		})
	}
}

func TestResultStore_ReplaceAndDelete(t *testing.T) {
	for name, factory := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			s := factory()
			defer s.Close()
			ctx := context.Background()

			if err := s.Save(ctx, newResult("x", "A", "", "", 0.1, 0)); err != nil {
				t.Fatal(err)
			}
			if err := s.Save(ctx, newResult("x", "A", "", "", 0.9, 0)); err != nil {
				t.Fatal(err)
			}
			got, err := s.Get(ctx, "x")
			if err != nil {
				t.Fatal(err)
			}
			if got.MetaScore != 0.9 {
				t.Errorf("replace kept old result: %v", got.MetaScore)
			}
			all, _ := s.List(ctx, Filter{})
			if len(all) != 1 {
				t.Errorf("expected 1 run after replace, got %d", len(all))
			}

			if err := s.Delete(ctx, "x"); err != nil {
				t.Fatalf("Delete() error = %v", err)
			}
			if _, err := s.Get(ctx, "x"); !errors.Is(err, ErrNotFound) {
				t.Errorf("expected ErrNotFound after delete, got %v", err)
			}
		})
	}
}

func assertIDs(t *testing.T, sums []Summary, want ...string) {
	t.Helper()
	if len(sums) != len(want) {
		t.Fatalf("got %d summaries, want %d", len(sums), len(want))
	}
	for i, s := range sums {
		if s.RunID != want[i] {
			t.Errorf("position %d = %s, want %s", i, s.RunID, want[i])
		}
	}
}
