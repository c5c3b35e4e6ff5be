package graph

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Edge discriminants accepted in a graph description.
const (
	EdgeTypeDependency    = "dependency"
	EdgeTypeValue         = "value"
	EdgeTypeFunctionality = "functionality"
)

// Description is the declarative input a Network is built from.
type Description struct {
	Nodes []NodeSpec `json:"nodes" yaml:"nodes"`
	Edges []EdgeSpec `json:"edges" yaml:"edges"`
}

// NodeSpec describes one explicit node.
type NodeSpec struct {
	NodeID       string         `json:"node_id" yaml:"node_id" validate:"required"`
	Domain       string         `json:"domain" yaml:"domain" validate:"required"`
	NodeType     string         `json:"node_type" yaml:"node_type" validate:"required"`
	Attributes   map[string]any `json:"attributes,omitempty" yaml:"attributes,omitempty"`
	FunctionPath string         `json:"function_path,omitempty" yaml:"function_path,omitempty"`
}

// EdgeSpec describes one edge. Which fields are required depends on Type:
// dependency edges need Sources and Target, value and functionality edges
// need Source, Target, Label and Weight.
type EdgeSpec struct {
	Type    string   `json:"type" yaml:"type" validate:"required,oneof=dependency value functionality"`
	Source  string   `json:"source,omitempty" yaml:"source,omitempty"`
	Sources []string `json:"sources,omitempty" yaml:"sources,omitempty"`
	Target  string   `json:"target" yaml:"target" validate:"required"`
	Label   string   `json:"label,omitempty" yaml:"label,omitempty"`
	Weight  *float64 `json:"weight,omitempty" yaml:"weight,omitempty"`
}

// ErrMalformedDescription is wrapped by every construction-time failure.
var ErrMalformedDescription = errors.New("malformed graph description")

// DescriptionError locates a malformed entry in a Description.
type DescriptionError struct {
	Section string // "nodes" or "edges"
	Index   int
	Field   string
	Reason  string
}

func (e *DescriptionError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s[%d]: %s", e.Section, e.Index, e.Reason)
	}
	return fmt.Sprintf("%s[%d].%s: %s", e.Section, e.Index, e.Field, e.Reason)
}

func (e *DescriptionError) Unwrap() error {
	return ErrMalformedDescription
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks every entry of the description and returns the first
// problem found. A nil return means Build will succeed.
func (d Description) Validate() error {
	seen := make(map[string]int, len(d.Nodes))
	for i, n := range d.Nodes {
		if err := validate.Struct(n); err != nil {
			return toDescriptionError("nodes", i, err)
		}
		if first, dup := seen[n.NodeID]; dup {
			return &DescriptionError{
				Section: "nodes",
				Index:   i,
				Field:   "node_id",
				Reason:  fmt.Sprintf("duplicate id %q (first defined at nodes[%d])", n.NodeID, first),
			}
		}
		seen[n.NodeID] = i
	}

	for i, e := range d.Edges {
		if err := validateEdge(e); err != nil {
			return toDescriptionError("edges", i, err)
		}
	}
	return nil
}

// fieldError is an edge problem found outside struct-tag validation.
type fieldError struct {
	field  string
	reason string
}

func (f fieldError) Error() string { return f.field + ": " + f.reason }

func validateEdge(e EdgeSpec) error {
	if err := validate.Struct(e); err != nil {
		return err
	}

	switch e.Type {
	case EdgeTypeDependency:
		if len(e.Sources) == 0 {
			return fieldError{"sources", "field is required"}
		}
		for _, s := range e.Sources {
			if s == "" {
				return fieldError{"sources", "contains an empty id"}
			}
		}
		if e.Source != "" || e.Label != "" || e.Weight != nil {
			return fieldError{"type", "dependency edges take only sources and target"}
		}
	case EdgeTypeValue, EdgeTypeFunctionality:
		if e.Source == "" {
			return fieldError{"source", "field is required"}
		}
		if e.Label == "" {
			return fieldError{"label", "field is required"}
		}
		if e.Weight == nil {
			return fieldError{"weight", "field is required"}
		}
		if len(e.Sources) > 0 {
			return fieldError{"sources", e.Type + " edges take a single source"}
		}
	}
	return nil
}

// toDescriptionError converts a validator or field error into a DescriptionError.
func toDescriptionError(section string, index int, err error) error {
	var fe fieldError
	if errors.As(err, &fe) {
		return &DescriptionError{Section: section, Index: index, Field: fe.field, Reason: fe.reason}
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &DescriptionError{Section: section, Index: index, Reason: err.Error()}
	}

	e := verrs[0]
	de := &DescriptionError{Section: section, Index: index, Field: wireName(e.Field())}
	switch e.Tag() {
	case "required":
		de.Reason = "field is required"
	case "oneof":
		de.Reason = fmt.Sprintf("unrecognized value %q (want one of: %s)", e.Value(), e.Param())
	default:
		de.Reason = fmt.Sprintf("validation failed (%s)", e.Tag())
	}
	return de
}

// wireName maps Go struct field names to their description keys.
func wireName(field string) string {
	switch field {
	case "NodeID":
		return "node_id"
	case "NodeType":
		return "node_type"
	case "FunctionPath":
		return "function_path"
	case "Domain":
		return "domain"
	case "Type":
		return "type"
	case "Target":
		return "target"
	default:
		return field
	}
}
