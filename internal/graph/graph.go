// Package graph defines the design hypergraph: model nodes carrying two
// families of scores, weighted scoring edges that diffuse those scores, and
// dependency hyperedges that declare workflow precedence.
package graph

import (
	"fmt"
	"sort"
	"strconv"
)

// UnknownTag is the domain and type given to nodes that are only referenced
// by an edge and never described explicitly.
const UnknownTag = "Unknown"

// Family selects one of the two independently propagated score families.
type Family int

const (
	FamilyFunctionality Family = iota // technical and performance quality
	FamilyValue                       // cost and sustainability quality
)

// String returns the wire name of the family, matching the edge discriminant.
func (f Family) String() string {
	switch f {
	case FamilyFunctionality:
		return EdgeTypeFunctionality
	case FamilyValue:
		return EdgeTypeValue
	default:
		return fmt.Sprintf("family(%d)", int(f))
	}
}

// Families lists both score families in propagation order.
var Families = []Family{FamilyFunctionality, FamilyValue}

// Node is a single model or evaluation unit in the design graph.
type Node struct {
	ID           string
	Domain       string
	Type         string
	Attributes   map[string]any
	FunctionPath string

	Functionality Scores
	Value         Scores
}

// NewPlaceholder returns a node for an id that only appears inside an edge.
func NewPlaceholder(id string) *Node {
	return &Node{
		ID:         id,
		Domain:     UnknownTag,
		Type:       UnknownTag,
		Attributes: map[string]any{},
	}
}

// ScoresFor returns the score container for the given family.
func (n *Node) ScoresFor(f Family) *Scores {
	if f == FamilyValue {
		return &n.Value
	}
	return &n.Functionality
}

// AttrFloat returns a numeric attribute, converting common numeric
// representations. Missing or non-numeric values return def.
func (n *Node) AttrFloat(key string, def float64) float64 {
	v, ok := n.Attributes[key]
	if !ok {
		return def
	}
	switch x := v.(type) {
	case float64:
		return x
	case float32:
		return float64(x)
	case int:
		return float64(x)
	case int64:
		return float64(x)
	case int32:
		return float64(x)
	case uint64:
		return float64(x)
	case string:
		if f, err := strconv.ParseFloat(x, 64); err == nil {
			return f
		}
	}
	return def
}

// AttrString returns a string attribute or def when missing or not a string.
func (n *Node) AttrString(key, def string) string {
	if s, ok := n.Attributes[key].(string); ok {
		return s
	}
	return def
}

// AttributeKeys returns the node's attribute keys in sorted order.
func (n *Node) AttributeKeys() []string {
	keys := make([]string, 0, len(n.Attributes))
	for k := range n.Attributes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (n *Node) String() string {
	return fmt.Sprintf("Node(%s)", n.ID)
}

// WeightedEdge is a directed, labeled relation used to diffuse one score
// family from Source to Target.
type WeightedEdge struct {
	Source string  `json:"source"`
	Target string  `json:"target"`
	Label  string  `json:"label"`
	Weight float64 `json:"weight"`
}

// DependencyHyperedge is a declared workflow precedence {sources} -> target.
// It is structural only and never read during propagation.
type DependencyHyperedge struct {
	Sources []string `json:"sources"`
	Target  string   `json:"target"`
}

// NewDependency builds a hyperedge whose sources form a sorted set.
func NewDependency(sources []string, target string) DependencyHyperedge {
	seen := make(map[string]bool, len(sources))
	set := make([]string, 0, len(sources))
	for _, s := range sources {
		if seen[s] {
			continue
		}
		seen[s] = true
		set = append(set, s)
	}
	sort.Strings(set)
	return DependencyHyperedge{Sources: set, Target: target}
}
