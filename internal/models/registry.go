// Package models holds the model-function registry: string identifiers
// mapped to scorers that compute a node's initial functionality and value
// scores from its attributes.
package models

import (
	"sort"

	"github.com/nvandessel/hyperscore/internal/graph"
)

// Scorer computes initial scores for one node. Implementations read the
// node's attributes and write its Functionality and Value scores; they must
// not read or write any other node.
type Scorer interface {
	Apply(node *graph.Node)
}

// ScorerFunc adapts a plain function to Scorer.
type ScorerFunc func(node *graph.Node)

// Apply calls f(node).
func (f ScorerFunc) Apply(node *graph.Node) { f(node) }

// Registry maps function identifiers to scorers.
type Registry struct {
	scorers map[string]Scorer
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{scorers: make(map[string]Scorer)}
}

// Register binds id to s, replacing any previous binding.
func (r *Registry) Register(id string, s Scorer) {
	r.scorers[id] = s
}

// RegisterFunc binds id to a plain function.
func (r *Registry) RegisterFunc(id string, f func(node *graph.Node)) {
	r.Register(id, ScorerFunc(f))
}

// Lookup returns the scorer bound to id. A nil registry resolves nothing.
func (r *Registry) Lookup(id string) (Scorer, bool) {
	if r == nil || id == "" {
		return nil, false
	}
	s, ok := r.scorers[id]
	return s, ok
}

// IDs returns the registered identifiers in sorted order.
func (r *Registry) IDs() []string {
	if r == nil {
		return nil
	}
	ids := make([]string, 0, len(r.scorers))
	for id := range r.scorers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of registered scorers.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.scorers)
}
