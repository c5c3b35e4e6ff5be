package ranking

import (
	"math"
	"sort"

	"github.com/nvandessel/hyperscore/internal/graph"
)

// PageRankConfig holds configuration for PageRank computation.
type PageRankConfig struct {
	// DampingFactor (d) is the probability of following an edge vs. teleporting.
	// Standard value: 0.85.
	DampingFactor float64

	// MaxIterations is the maximum number of power iteration steps. Default: 100.
	MaxIterations int

	// Tolerance is the convergence threshold. Default: 1e-6.
	Tolerance float64
}

// DefaultPageRankConfig returns the default PageRank configuration.
func DefaultPageRankConfig() PageRankConfig {
	return PageRankConfig{
		DampingFactor: 0.85,
		MaxIterations: 100,
		Tolerance:     1e-6,
	}
}

// Centrality calculates PageRank scores for every node of a network.
// Returns a map of node id to score (0.0-1.0, normalized to the maximum).
//
// Links: value and functionality edges link source and target; a dependency
// hyperedge links each of its sources with its target. All links are
// treated as bidirectional and duplicates collapse.
func Centrality(net *graph.Network, config PageRankConfig) map[string]float64 {
	nodeIDs := net.NodeIDs()
	n := len(nodeIDs)
	if n == 0 {
		return make(map[string]float64)
	}

	// neighbors[v] is the set of nodes linked with v.
	neighbors := make(map[string]map[string]bool, n)
	for _, id := range nodeIDs {
		neighbors[id] = make(map[string]bool)
	}
	link := func(a, b string) {
		if a == b {
			return
		}
		neighbors[a][b] = true
		neighbors[b][a] = true
	}
	for _, f := range graph.Families {
		for _, e := range net.EdgesFor(f) {
			link(e.Source, e.Target)
		}
	}
	for _, d := range net.Dependencies {
		for _, src := range d.Sources {
			link(src, d.Target)
		}
	}

	// Sorted adjacency keeps floating-point summation order fixed.
	inbound := make(map[string][]string, n)
	for _, id := range nodeIDs {
		list := make([]string, 0, len(neighbors[id]))
		for nb := range neighbors[id] {
			list = append(list, nb)
		}
		sort.Strings(list)
		inbound[id] = list
	}

	// Power iteration.
	d := config.DampingFactor
	nf := float64(n)
	scores := make(map[string]float64, n)
	for _, id := range nodeIDs {
		scores[id] = 1.0 / nf
	}

	for iter := 0; iter < config.MaxIterations; iter++ {
		newScores := make(map[string]float64, n)
		maxDelta := 0.0

		for _, v := range nodeIDs {
			sum := 0.0
			for _, u := range inbound[v] {
				sum += scores[u] / float64(len(inbound[u]))
			}

			newScore := (1.0-d)/nf + d*sum
			newScores[v] = newScore

			delta := math.Abs(newScore - scores[v])
			if delta > maxDelta {
				maxDelta = delta
			}
		}

		scores = newScores

		if maxDelta < config.Tolerance {
			break
		}
	}

	// Normalize to [0, 1] by dividing by max score.
	maxScore := 0.0
	for _, score := range scores {
		if score > maxScore {
			maxScore = score
		}
	}

	if maxScore > 0 {
		for id, score := range scores {
			scores[id] = score / maxScore
		}
	}

	return scores
}

// NodeScore pairs a node id with a score.
type NodeScore struct {
	NodeID string  `json:"node_id"`
	Score  float64 `json:"score"`
}

// TopNodes returns the k highest-scoring entries of scores, ties by id.
// k <= 0 returns all of them.
func TopNodes(scores map[string]float64, k int) []NodeScore {
	out := make([]NodeScore, 0, len(scores))
	for id, s := range scores {
		out = append(out, NodeScore{NodeID: id, Score: s})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].NodeID < out[j].NodeID
	})
	if k > 0 && k < len(out) {
		out = out[:k]
	}
	return out
}
