// Package ranking orders simulation results and measures how strongly each
// node is connected in a network.
package ranking

import (
	"math"
	"sort"

	"github.com/nvandessel/hyperscore/internal/simulation"
)

// Ranked is a result with its 1-based position.
type Ranked struct {
	Position int                `json:"position"`
	Result   *simulation.Result `json:"result"`
}

// Rank orders results by meta-score, highest first. Ties are broken by
// scenario name so the order is stable across runs. Nil results are dropped.
func Rank(results []*simulation.Result) []Ranked {
	sorted := make([]*simulation.Result, 0, len(results))
	for _, r := range results {
		if r != nil {
			sorted = append(sorted, r)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].MetaScore != sorted[j].MetaScore {
			return sorted[i].MetaScore > sorted[j].MetaScore
		}
		return sorted[i].Scenario < sorted[j].Scenario
	})

	ranked := make([]Ranked, len(sorted))
	for i, r := range sorted {
		ranked[i] = Ranked{Position: i + 1, Result: r}
	}
	return ranked
}

// Best returns the highest-ranked result, or nil for no results.
func Best(results []*simulation.Result) *simulation.Result {
	ranked := Rank(results)
	if len(ranked) == 0 {
		return nil
	}
	return ranked[0].Result
}

// SpreadStats summarizes the meta-scores of one base scenario across its
// weighting profiles.
type SpreadStats struct {
	Base        string  `json:"base_scenario"`
	Runs        int     `json:"runs"`
	Min         float64 `json:"min"`
	Max         float64 `json:"max"`
	Mean        float64 `json:"mean"`
	BestProfile string  `json:"best_profile,omitempty"`
}

// Range returns Max - Min.
func (s SpreadStats) Range() float64 {
	return s.Max - s.Min
}

// Spread groups results by base scenario and returns per-base statistics,
// ordered by mean meta-score descending, then base name.
func Spread(results []*simulation.Result) []SpreadStats {
	byBase := make(map[string]*SpreadStats)
	var order []string
	for _, r := range results {
		if r == nil {
			continue
		}
		base := r.BaseName()
		s, ok := byBase[base]
		if !ok {
			s = &SpreadStats{Base: base, Min: math.Inf(1), Max: math.Inf(-1)}
			byBase[base] = s
			order = append(order, base)
		}
		s.Runs++
		s.Mean += r.MetaScore
		if r.MetaScore < s.Min {
			s.Min = r.MetaScore
		}
		if r.MetaScore > s.Max {
			s.Max = r.MetaScore
			s.BestProfile = r.Profile
		}
	}

	out := make([]SpreadStats, 0, len(order))
	for _, base := range order {
		s := byBase[base]
		s.Mean /= float64(s.Runs)
		out = append(out, *s)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Mean != out[j].Mean {
			return out[i].Mean > out[j].Mean
		}
		return out[i].Base < out[j].Base
	})
	return out
}
