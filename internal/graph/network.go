package graph

import (
	"fmt"
	"sort"
)

// Network owns every node of a design graph and its three edge collections.
// Every edge endpoint resolves to a node in the network.
type Network struct {
	nodes        map[string]*Node
	placeholders map[string]bool

	Dependencies       []DependencyHyperedge
	ValueEdges         []WeightedEdge
	FunctionalityEdges []WeightedEdge
}

// NewNetwork returns an empty network.
func NewNetwork() *Network {
	return &Network{
		nodes:        make(map[string]*Node),
		placeholders: make(map[string]bool),
	}
}

// Build constructs a Network from a description.
//
// The whole description is validated before anything is created, so a
// malformed entry never yields a partially connected graph. Node ids are
// discovered from the node list and from every edge endpoint, then created in
// lexicographic order; ids that are never described get placeholder nodes.
// Edges are appended in description order.
func Build(desc Description) (*Network, error) {
	if err := desc.Validate(); err != nil {
		return nil, err
	}

	specs := make(map[string]NodeSpec, len(desc.Nodes))
	ids := make(map[string]struct{}, len(desc.Nodes))
	for _, n := range desc.Nodes {
		specs[n.NodeID] = n
		ids[n.NodeID] = struct{}{}
	}
	for _, e := range desc.Edges {
		if e.Source != "" {
			ids[e.Source] = struct{}{}
		}
		for _, s := range e.Sources {
			ids[s] = struct{}{}
		}
		ids[e.Target] = struct{}{}
	}

	sorted := make([]string, 0, len(ids))
	for id := range ids {
		sorted = append(sorted, id)
	}
	sort.Strings(sorted)

	net := NewNetwork()
	for _, id := range sorted {
		spec, described := specs[id]
		if !described {
			net.addPlaceholder(id)
			continue
		}
		if err := net.AddNode(nodeFromSpec(spec)); err != nil {
			return nil, err
		}
	}

	for i, e := range desc.Edges {
		var err error
		switch e.Type {
		case EdgeTypeDependency:
			err = net.AddDependency(NewDependency(e.Sources, e.Target))
		case EdgeTypeValue:
			err = net.AddEdge(FamilyValue, WeightedEdge{Source: e.Source, Target: e.Target, Label: e.Label, Weight: *e.Weight})
		case EdgeTypeFunctionality:
			err = net.AddEdge(FamilyFunctionality, WeightedEdge{Source: e.Source, Target: e.Target, Label: e.Label, Weight: *e.Weight})
		}
		if err != nil {
			return nil, fmt.Errorf("edges[%d]: %w", i, err)
		}
	}

	return net, nil
}

func nodeFromSpec(spec NodeSpec) *Node {
	attrs := make(map[string]any, len(spec.Attributes))
	for k, v := range spec.Attributes {
		attrs[k] = v
	}
	return &Node{
		ID:           spec.NodeID,
		Domain:       spec.Domain,
		Type:         spec.NodeType,
		Attributes:   attrs,
		FunctionPath: spec.FunctionPath,
	}
}

func (n *Network) addPlaceholder(id string) {
	n.nodes[id] = NewPlaceholder(id)
	n.placeholders[id] = true
}

// AddNode inserts a node. Ids must be unique.
func (n *Network) AddNode(node *Node) error {
	if node == nil || node.ID == "" {
		return fmt.Errorf("%w: node id is required", ErrMalformedDescription)
	}
	if _, exists := n.nodes[node.ID]; exists {
		return fmt.Errorf("%w: duplicate node id %q", ErrMalformedDescription, node.ID)
	}
	if node.Attributes == nil {
		node.Attributes = map[string]any{}
	}
	n.nodes[node.ID] = node
	return nil
}

// AddEdge appends a weighted edge to the collection for family. Both
// endpoints must already exist.
func (n *Network) AddEdge(f Family, e WeightedEdge) error {
	if err := n.require(e.Source, e.Target); err != nil {
		return err
	}
	if f == FamilyValue {
		n.ValueEdges = append(n.ValueEdges, e)
	} else {
		n.FunctionalityEdges = append(n.FunctionalityEdges, e)
	}
	return nil
}

// AddDependency appends a dependency hyperedge. All ids must already exist.
func (n *Network) AddDependency(d DependencyHyperedge) error {
	if len(d.Sources) == 0 {
		return fmt.Errorf("%w: dependency without sources", ErrMalformedDescription)
	}
	if err := n.require(append([]string{d.Target}, d.Sources...)...); err != nil {
		return err
	}
	n.Dependencies = append(n.Dependencies, d)
	return nil
}

func (n *Network) require(ids ...string) error {
	for _, id := range ids {
		if _, ok := n.nodes[id]; !ok {
			return fmt.Errorf("%w: unknown node %q", ErrMalformedDescription, id)
		}
	}
	return nil
}

// Node returns the node with the given id.
func (n *Network) Node(id string) (*Node, bool) {
	node, ok := n.nodes[id]
	return node, ok
}

// Len returns the number of nodes.
func (n *Network) Len() int {
	return len(n.nodes)
}

// NodeIDs returns all node ids in sorted order.
func (n *Network) NodeIDs() []string {
	ids := make([]string, 0, len(n.nodes))
	for id := range n.nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Nodes returns all nodes ordered by id.
func (n *Network) Nodes() []*Node {
	ids := n.NodeIDs()
	out := make([]*Node, len(ids))
	for i, id := range ids {
		out[i] = n.nodes[id]
	}
	return out
}

// Placeholders returns the sorted ids of synthesized nodes.
func (n *Network) Placeholders() []string {
	ids := make([]string, 0, len(n.placeholders))
	for id := range n.placeholders {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// IsPlaceholder reports whether id was synthesized because only an edge named it.
func (n *Network) IsPlaceholder(id string) bool {
	return n.placeholders[id]
}

// EdgesFor returns the weighted edges that propagate family f.
func (n *Network) EdgesFor(f Family) []WeightedEdge {
	if f == FamilyValue {
		return n.ValueEdges
	}
	return n.FunctionalityEdges
}

// Stats summarizes the network's shape.
type Stats struct {
	Nodes              int            `json:"nodes"`
	Placeholders       int            `json:"placeholders"`
	Dependencies       int            `json:"dependencies"`
	ValueEdges         int            `json:"value_edges"`
	FunctionalityEdges int            `json:"functionality_edges"`
	NodesByDomain      map[string]int `json:"nodes_by_domain"`
}

// Stats returns node and edge counts.
func (n *Network) Stats() Stats {
	s := Stats{
		Nodes:              len(n.nodes),
		Placeholders:       len(n.placeholders),
		Dependencies:       len(n.Dependencies),
		ValueEdges:         len(n.ValueEdges),
		FunctionalityEdges: len(n.FunctionalityEdges),
		NodesByDomain:      make(map[string]int),
	}
	for _, node := range n.nodes {
		s.NodesByDomain[node.Domain]++
	}
	return s
}
