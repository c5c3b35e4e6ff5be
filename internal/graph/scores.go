package graph

import "sort"

// Scores maps a label to a score in [0,1] by convention. Reads of missing
// labels return 0.0 without inserting anything. The zero value is ready to use.
type Scores struct {
	m map[string]float64
}

// NewScores builds a container from an existing map. The map is copied.
func NewScores(m map[string]float64) Scores {
	var s Scores
	for k, v := range m {
		s.Set(k, v)
	}
	return s
}

// Get returns the score for label, or 0.0 if it has never been set.
func (s Scores) Get(label string) float64 {
	return s.m[label]
}

// Has reports whether label has been set explicitly.
func (s Scores) Has(label string) bool {
	_, ok := s.m[label]
	return ok
}

// Set assigns a score to label.
func (s *Scores) Set(label string, v float64) {
	if s.m == nil {
		s.m = make(map[string]float64)
	}
	s.m[label] = v
}

// Len returns the number of labels set.
func (s Scores) Len() int {
	return len(s.m)
}

// Labels returns the set labels in sorted order.
func (s Scores) Labels() []string {
	labels := make([]string, 0, len(s.m))
	for k := range s.m {
		labels = append(labels, k)
	}
	sort.Strings(labels)
	return labels
}

// Clone returns an independent copy.
func (s Scores) Clone() Scores {
	return NewScores(s.m)
}

// Map returns a copy of the underlying label map. Never nil.
func (s Scores) Map() map[string]float64 {
	out := make(map[string]float64, len(s.m))
	for k, v := range s.m {
		out[k] = v
	}
	return out
}
