package simulation

import (
	"math"

	"github.com/nvandessel/hyperscore/internal/graph"
)

// RoundStats summarizes one propagation round.
type RoundStats struct {
	// Updated counts the (node, label) pairs rewritten across both families.
	Updated int
	// MaxDelta is the largest absolute score change in the round.
	MaxDelta float64
}

// Propagate runs one synchronous round over both score families:
// functionality damped by alpha, then value damped by beta. Each family is
// computed entirely from its own prior-round snapshot and the new maps are
// swapped into the nodes only after both families are computed.
func Propagate(net *graph.Network, alpha, beta float64) RoundStats {
	var stats RoundStats

	nextF, sf := propagateFamily(net, graph.FamilyFunctionality, alpha)
	nextV, sv := propagateFamily(net, graph.FamilyValue, beta)

	for _, node := range net.Nodes() {
		node.Functionality = nextF[node.ID]
		node.Value = nextV[node.ID]
	}

	stats.Updated = sf.Updated + sv.Updated
	stats.MaxDelta = math.Max(sf.MaxDelta, sv.MaxDelta)
	return stats
}

// propagateFamily computes next-round scores for one family without touching
// the network. Labels with no incoming edge for a node are carried over
// unchanged.
func propagateFamily(net *graph.Network, f graph.Family, damping float64) (map[string]graph.Scores, RoundStats) {
	nodes := net.Nodes()

	prior := make(map[string]graph.Scores, len(nodes))
	for _, node := range nodes {
		prior[node.ID] = node.ScoresFor(f).Clone()
	}

	// incoming[target][label] accumulates weight * prior(source, label).
	// Several edges into the same (target, label) sum.
	incoming := make(map[string]map[string]float64)
	for _, e := range net.EdgesFor(f) {
		byLabel, ok := incoming[e.Target]
		if !ok {
			byLabel = make(map[string]float64)
			incoming[e.Target] = byLabel
		}
		byLabel[e.Label] += e.Weight * prior[e.Source].Get(e.Label)
	}

	var stats RoundStats
	next := make(map[string]graph.Scores, len(nodes))
	for _, node := range nodes {
		own := prior[node.ID]
		updated := own.Clone()
		for label, in := range incoming[node.ID] {
			before := own.Get(label)
			after := damping*before + (1-damping)*in
			updated.Set(label, after)

			stats.Updated++
			if d := math.Abs(after - before); d > stats.MaxDelta {
				stats.MaxDelta = d
			}
		}
		next[node.ID] = updated
	}

	return next, stats
}
