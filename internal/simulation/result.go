package simulation

import (
	"sort"
	"time"

	"github.com/nvandessel/hyperscore/internal/graph"
)

// NodeState is the final state of one node, detached from the network.
type NodeState struct {
	Domain        string             `json:"domain"`
	Type          string             `json:"node_type"`
	FunctionPath  string             `json:"function_path,omitempty"`
	Placeholder   bool               `json:"placeholder,omitempty"`
	Attributes    map[string]any     `json:"attributes"`
	Functionality map[string]float64 `json:"final_functionality_scores"`
	Value         map[string]float64 `json:"final_value_scores"`
}

// Score looks a label up across both families, defaulting to 0.0. When a
// label is present in both, the value score wins.
func (s NodeState) Score(label string) float64 {
	if v, ok := s.Value[label]; ok {
		return v
	}
	return s.Functionality[label]
}

// Labels returns every label set in either family, sorted.
func (s NodeState) Labels() []string {
	seen := make(map[string]bool, len(s.Functionality)+len(s.Value))
	for l := range s.Functionality {
		seen[l] = true
	}
	for l := range s.Value {
		seen[l] = true
	}
	labels := make([]string, 0, len(seen))
	for l := range seen {
		labels = append(labels, l)
	}
	sort.Strings(labels)
	return labels
}

// Unresolved names a node whose function identifier had no registered scorer.
type Unresolved struct {
	NodeID       string `json:"node_id"`
	FunctionPath string `json:"function_path"`
}

// Contribution is one weighted term of the meta-score.
type Contribution struct {
	NodeID string  `json:"node_id"`
	Label  string  `json:"label"`
	Weight float64 `json:"weight"`
	Score  float64 `json:"score"`
	Found  bool    `json:"found"`
}

// Value returns Weight * Score.
func (c Contribution) Value() float64 {
	return c.Weight * c.Score
}

// Result is the outcome of a full simulation run. It carries everything a
// reporting layer needs without touching the network again. Base and Profile
// are set when the run is a weighted variant of a scenario.
type Result struct {
	RunID         string               `json:"run_id"`
	Scenario      string               `json:"scenario_name"`
	Base          string               `json:"base_scenario,omitempty"`
	Profile       string               `json:"profile,omitempty"`
	MetaScore     float64              `json:"meta_score"`
	Config        Config               `json:"config"`
	Nodes         map[string]NodeState `json:"node_states"`
	Unresolved    []Unresolved         `json:"unresolved,omitempty"`
	Contributions []Contribution       `json:"contributions"`
	StartedAt     time.Time            `json:"started_at"`
	Duration      time.Duration        `json:"duration"`
}

// BaseName returns Base, falling back to Scenario for unweighted runs.
func (r *Result) BaseName() string {
	if r.Base != "" {
		return r.Base
	}
	return r.Scenario
}

// NodeIDs returns the snapshot's node ids in sorted order.
func (r *Result) NodeIDs() []string {
	ids := make([]string, 0, len(r.Nodes))
	for id := range r.Nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Score returns the final score of label on node id, or 0.0.
func (r *Result) Score(id, label string) float64 {
	state, ok := r.Nodes[id]
	if !ok {
		return 0
	}
	return state.Score(label)
}

// DomainAverages returns, per domain, the mean final score of every label
// set on at least one node of that domain.
func (r *Result) DomainAverages() map[string]map[string]float64 {
	sums := make(map[string]map[string]float64)
	counts := make(map[string]map[string]int)
	for _, state := range r.Nodes {
		if sums[state.Domain] == nil {
			sums[state.Domain] = make(map[string]float64)
			counts[state.Domain] = make(map[string]int)
		}
		for _, label := range state.Labels() {
			sums[state.Domain][label] += state.Score(label)
			counts[state.Domain][label]++
		}
	}

	out := make(map[string]map[string]float64, len(sums))
	for domain, labels := range sums {
		out[domain] = make(map[string]float64, len(labels))
		for label, sum := range labels {
			out[domain][label] = sum / float64(counts[domain][label])
		}
	}
	return out
}

// Snapshot copies the final state of every node in net.
func Snapshot(net *graph.Network) map[string]NodeState {
	states := make(map[string]NodeState, net.Len())
	for _, node := range net.Nodes() {
		attrs := make(map[string]any, len(node.Attributes))
		for k, v := range node.Attributes {
			attrs[k] = v
		}
		states[node.ID] = NodeState{
			Domain:        node.Domain,
			Type:          node.Type,
			FunctionPath:  node.FunctionPath,
			Placeholder:   net.IsPlaceholder(node.ID),
			Attributes:    attrs,
			Functionality: node.Functionality.Map(),
			Value:         node.Value.Map(),
		}
	}
	return states
}
