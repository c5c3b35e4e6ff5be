package visualization

import (
	"strconv"

	"github.com/nvandessel/hyperscore/internal/graph"
	"github.com/nvandessel/hyperscore/internal/simulation"
)

// GraphJSON is the JSON view of a network.
type GraphJSON struct {
	Nodes          []NodeJSON      `json:"nodes"`
	Edges          []EdgeJSON      `json:"edges"`
	Hyperedges     []HyperedgeJSON `json:"hyperedges"`
	NodeCount      int             `json:"node_count"`
	EdgeCount      int             `json:"edge_count"`
	HyperedgeCount int             `json:"hyperedge_count"`
	MetaScore      *float64        `json:"meta_score,omitempty"`
	Scenario       string          `json:"scenario_name,omitempty"`
}

// NodeJSON is one node. Scores are present when a result was given.
type NodeJSON struct {
	ID            string             `json:"id"`
	Domain        string             `json:"domain"`
	Type          string             `json:"node_type"`
	FunctionPath  string             `json:"function_path,omitempty"`
	Placeholder   bool               `json:"placeholder,omitempty"`
	Color         string             `json:"color"`
	Attributes    map[string]any     `json:"attributes,omitempty"`
	Functionality map[string]float64 `json:"functionality,omitempty"`
	Value         map[string]float64 `json:"value,omitempty"`
	Centrality    *float64           `json:"centrality,omitempty"`
}

// EdgeJSON is one weighted edge.
type EdgeJSON struct {
	Family string  `json:"family"`
	Source string  `json:"source"`
	Target string  `json:"target"`
	Label  string  `json:"label"`
	Weight float64 `json:"weight"`
}

// HyperedgeJSON is one dependency hyperedge.
type HyperedgeJSON struct {
	ID      string   `json:"id"`
	Sources []string `json:"sources"`
	Target  string   `json:"target"`
}

// EnrichmentData provides optional data to augment base graph JSON.
type EnrichmentData struct {
	// Centrality maps node IDs to their PageRank scores (0.0-1.0).
	Centrality map[string]float64
}

// RenderJSON produces a JSON graph representation with nodes, edges and
// hyperedges. result and enrichment may be nil.
func RenderJSON(net *graph.Network, result *simulation.Result, enrichment *EnrichmentData) GraphJSON {
	out := GraphJSON{
		Nodes:      make([]NodeJSON, 0, net.Len()),
		Edges:      []EdgeJSON{},
		Hyperedges: make([]HyperedgeJSON, 0, len(net.Dependencies)),
	}

	for _, node := range net.Nodes() {
		entry := NodeJSON{
			ID:           node.ID,
			Domain:       node.Domain,
			Type:         node.Type,
			FunctionPath: node.FunctionPath,
			Placeholder:  net.IsPlaceholder(node.ID),
			Color:        DomainColor(node.Domain),
			Attributes:   node.Attributes,
		}
		if result != nil {
			if state, ok := result.Nodes[node.ID]; ok {
				entry.Functionality = state.Functionality
				entry.Value = state.Value
			}
		}
		if enrichment != nil && enrichment.Centrality != nil {
			if c, ok := enrichment.Centrality[node.ID]; ok {
				entry.Centrality = &c
			}
		}
		out.Nodes = append(out.Nodes, entry)
	}

	for _, f := range graph.Families {
		for _, e := range net.EdgesFor(f) {
			out.Edges = append(out.Edges, EdgeJSON{
				Family: f.String(),
				Source: e.Source,
				Target: e.Target,
				Label:  e.Label,
				Weight: e.Weight,
			})
		}
	}

	for i, dep := range net.Dependencies {
		out.Hyperedges = append(out.Hyperedges, HyperedgeJSON{
			ID:      hyperedgeID(i),
			Sources: dep.Sources,
			Target:  dep.Target,
		})
	}

	out.NodeCount = len(out.Nodes)
	out.EdgeCount = len(out.Edges)
	out.HyperedgeCount = len(out.Hyperedges)
	if result != nil {
		meta := result.MetaScore
		out.MetaScore = &meta
		out.Scenario = result.Scenario
	}
	return out
}

func hyperedgeID(i int) string {
	return "Dep-" + strconv.Itoa(i+1)
}
