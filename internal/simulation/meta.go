package simulation

// MetaScore reduces a snapshot to a single scalar:
//
//	meta = sum over (node, label, weight) of weight * finalScore(node, label)
//
// Absent nodes and absent labels contribute exactly 0.0. No normalization is
// applied.
func MetaScore(states map[string]NodeState, weights MetaWeights) float64 {
	total, _ := metaScore(states, weights)
	return total
}

func metaScore(states map[string]NodeState, weights MetaWeights) (float64, []Contribution) {
	terms := weights.Terms()
	contributions := make([]Contribution, 0, len(terms))
	total := 0.0
	for _, t := range terms {
		c := Contribution{NodeID: t.NodeID, Label: t.Label, Weight: t.Weight}
		if state, ok := states[t.NodeID]; ok {
			_, inValue := state.Value[t.Label]
			_, inFunc := state.Functionality[t.Label]
			c.Found = inValue || inFunc
			c.Score = state.Score(t.Label)
		}
		total += c.Value()
		contributions = append(contributions, c)
	}
	return total, contributions
}
