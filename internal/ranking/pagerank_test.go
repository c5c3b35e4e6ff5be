package ranking

import (
	"fmt"
	"math"
	"testing"

	"github.com/nvandessel/hyperscore/internal/graph"
)

func weight(v float64) *float64 { return &v }

// buildNetwork is a test helper that builds a network from edges alone.
func buildNetwork(t *testing.T, edges ...graph.EdgeSpec) *graph.Network {
	t.Helper()
	net, err := graph.Build(graph.Description{Edges: edges})
	if err != nil {
		t.Fatalf("failed to build network: %v", err)
	}
	return net
}

func valueEdge(source, target string) graph.EdgeSpec {
	return graph.EdgeSpec{Type: graph.EdgeTypeValue, Source: source, Target: target, Label: "l", Weight: weight(1)}
}

func TestCentrality_EmptyNetwork(t *testing.T) {
	scores := Centrality(graph.NewNetwork(), DefaultPageRankConfig())
	if len(scores) != 0 {
		t.Errorf("expected empty map for empty network, got %d entries", len(scores))
	}
}

func TestCentrality_SingleNode(t *testing.T) {
	net, err := graph.Build(graph.Description{
		Nodes: []graph.NodeSpec{{NodeID: "A", Domain: "D", NodeType: "T"}},
	})
	if err != nil {
		t.Fatal(err)
	}

	scores := Centrality(net, DefaultPageRankConfig())
	if len(scores) != 1 {
		t.Fatalf("expected 1 score, got %d", len(scores))
	}

	// Single node should have PageRank = 1.0 (normalized max).
	if math.Abs(scores["A"]-1.0) > 0.001 {
		t.Errorf("single node PageRank = %f, want 1.0", scores["A"])
	}
}

func TestCentrality_LinearChain(t *testing.T) {
	// A -> B -> C
	net := buildNetwork(t, valueEdge("A", "B"), valueEdge("B", "C"))
	scores := Centrality(net, DefaultPageRankConfig())

	if len(scores) != 3 {
		t.Fatalf("expected 3 scores, got %d", len(scores))
	}

	// In a bidirectional linear chain A--B--C, the middle node B
	// should have the highest PageRank (more connections).
	if scores["B"] < scores["A"] || scores["B"] < scores["C"] {
		t.Errorf("middle node B (%f) should outrank ends A (%f) and C (%f)",
			scores["B"], scores["A"], scores["C"])
	}

	// End nodes should have roughly equal scores due to symmetry.
	if math.Abs(scores["A"]-scores["C"]) > 0.01 {
		t.Errorf("end nodes A (%f) and C (%f) should have roughly equal PageRank",
			scores["A"], scores["C"])
	}
}

func TestCentrality_DependencyHub(t *testing.T) {
	// One hyperedge with five sources converging on a hub.
	sources := []string{"a", "b", "c", "d", "e"}
	net := buildNetwork(t, graph.EdgeSpec{Type: graph.EdgeTypeDependency, Sources: sources, Target: "hub"})
	scores := Centrality(net, DefaultPageRankConfig())

	if len(scores) != 6 {
		t.Fatalf("expected 6 scores, got %d", len(scores))
	}
	hubScore := scores["hub"]
	for _, leaf := range sources {
		if hubScore < scores[leaf] {
			t.Errorf("hub (%f) should outrank leaf %s (%f)", hubScore, leaf, scores[leaf])
		}
	}
	if math.Abs(hubScore-1.0) > 0.001 {
		t.Errorf("hub PageRank = %f, want 1.0 (normalized)", hubScore)
	}
}

func TestCentrality_DuplicateLinksCollapse(t *testing.T) {
	// Parallel edges of both families between the same pair count once.
	single := Centrality(buildNetwork(t, valueEdge("A", "B"), valueEdge("B", "C")), DefaultPageRankConfig())
	doubled := Centrality(buildNetwork(t,
		valueEdge("A", "B"),
		graph.EdgeSpec{Type: graph.EdgeTypeFunctionality, Source: "A", Target: "B", Label: "x", Weight: weight(0.2)},
		valueEdge("B", "C"),
	), DefaultPageRankConfig())

	for id := range single {
		if math.Abs(single[id]-doubled[id]) > 1e-9 {
			t.Errorf("%s: %f vs %f", id, single[id], doubled[id])
		}
	}
}

func TestCentrality_Ring(t *testing.T) {
	numNodes := 10
	var edges []graph.EdgeSpec
	for i := 0; i < numNodes; i++ {
		edges = append(edges, valueEdge(fmt.Sprintf("n%d", i), fmt.Sprintf("n%d", (i+1)%numNodes)))
	}
	scores := Centrality(buildNetwork(t, edges...), DefaultPageRankConfig())

	// In a ring, all nodes should have equal PageRank (symmetry).
	for id, score := range scores {
		if math.Abs(score-1.0) > 0.01 {
			t.Errorf("ring node %s PageRank = %f, want ~1.0", id, score)
		}
	}
}

func TestCentrality_SandwichTopology(t *testing.T) {
	net := buildNetwork(t,
		graph.EdgeSpec{Type: graph.EdgeTypeDependency, Sources: []string{"design_creation"}, Target: "material_search"},
		graph.EdgeSpec{Type: graph.EdgeTypeDependency, Sources: []string{"material_assessment", "design_creation"}, Target: "design_prediction"},
		graph.EdgeSpec{Type: graph.EdgeTypeDependency, Sources: []string{"material_assessment", "design_creation"}, Target: "technology_selection"},
		valueEdge("material_assessment", "technology_assessment"),
	)
	top := TopNodes(Centrality(net, DefaultPageRankConfig()), 2)
	if len(top) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(top))
	}
	if top[0].NodeID != "design_creation" && top[0].NodeID != "material_assessment" {
		t.Errorf("expected a hub first, got %s", top[0].NodeID)
	}
}

func TestTopNodes(t *testing.T) {
	scores := map[string]float64{"a": 0.5, "b": 1.0, "c": 0.5}
	got := TopNodes(scores, 0)
	want := []string{"b", "a", "c"}
	for i, ns := range got {
		if ns.NodeID != want[i] {
			t.Errorf("position %d = %s, want %s", i, ns.NodeID, want[i])
		}
	}
	if len(TopNodes(scores, 1)) != 1 {
		t.Error("expected k to bound the result")
	}
}
