package scenario

import (
	"fmt"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"

	"github.com/nvandessel/hyperscore/internal/graph"
	"github.com/nvandessel/hyperscore/internal/simulation"
)

// hclDocument is the top-level structure of an HCL scenario file:
//
//	scenario "name" {
//	  simulation { iterations = 10 }
//	  meta_weights = { node = { label = 0.5 } }
//	  node "id" { domain = "..." type = "..." attributes = { ... } }
//	  edge "value" { source = "a" target = "b" label = "l" weight = 0.8 }
//	  edge "dependency" { sources = ["a", "b"] target = "c" }
//	  profile "Cost-Focused" { scale = { total_cost = 2 } }
//	}
type hclDocument struct {
	Scenarios []*hclScenario `hcl:"scenario,block"`
}

type hclScenario struct {
	Name        string                        `hcl:"name,label"`
	Simulation  *hclParams                    `hcl:"simulation,block"`
	MetaWeights map[string]map[string]float64 `hcl:"meta_weights,optional"`
	Nodes       []*hclNode                    `hcl:"node,block"`
	Edges       []*hclEdge                    `hcl:"edge,block"`
	Profiles    []WeightProfile               `hcl:"profile,block"`
}

type hclParams struct {
	Iterations *int     `hcl:"iterations,optional"`
	Alpha      *float64 `hcl:"alpha,optional"`
	Beta       *float64 `hcl:"beta,optional"`
}

type hclNode struct {
	ID           string    `hcl:"id,label"`
	Domain       string    `hcl:"domain"`
	Type         string    `hcl:"type"`
	FunctionPath string    `hcl:"function_path,optional"`
	Attributes   cty.Value `hcl:"attributes,optional"`
}

type hclEdge struct {
	Type    string   `hcl:"type,label"`
	Source  string   `hcl:"source,optional"`
	Sources []string `hcl:"sources,optional"`
	Target  string   `hcl:"target"`
	Label   string   `hcl:"label,optional"`
	Weight  *float64 `hcl:"weight,optional"`
}

func parseHCL(data []byte, filename string) ([]Scenario, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(data, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL: %w", diags)
	}

	var doc hclDocument
	if diags := gohcl.DecodeBody(file.Body, nil, &doc); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %w", diags)
	}

	scenarios := make([]Scenario, 0, len(doc.Scenarios))
	for _, hs := range doc.Scenarios {
		s, err := hs.toScenario()
		if err != nil {
			return nil, err
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

func (hs *hclScenario) toScenario() (Scenario, error) {
	s := Scenario{
		Name:        hs.Name,
		MetaWeights: simulation.MetaWeights(hs.MetaWeights),
		Profiles:    hs.Profiles,
	}
	if hs.Simulation != nil {
		s.Simulation = &Params{
			Iterations: hs.Simulation.Iterations,
			Alpha:      hs.Simulation.Alpha,
			Beta:       hs.Simulation.Beta,
		}
	}

	for _, hn := range hs.Nodes {
		attrs, err := ctyToAttributes(hn.Attributes)
		if err != nil {
			return Scenario{}, fmt.Errorf("scenario %q node %q: %w", hs.Name, hn.ID, err)
		}
		s.Nodes = append(s.Nodes, graph.NodeSpec{
			NodeID:       hn.ID,
			Domain:       hn.Domain,
			NodeType:     hn.Type,
			Attributes:   attrs,
			FunctionPath: hn.FunctionPath,
		})
	}

	for _, he := range hs.Edges {
		s.Edges = append(s.Edges, graph.EdgeSpec{
			Type:    he.Type,
			Source:  he.Source,
			Sources: he.Sources,
			Target:  he.Target,
			Label:   he.Label,
			Weight:  he.Weight,
		})
	}
	return s, nil
}

// ctyToAttributes converts an object-typed attributes value into plain Go
// values. A missing attribute yields nil.
func ctyToAttributes(val cty.Value) (map[string]any, error) {
	if val.IsNull() {
		return nil, nil
	}
	if !val.Type().IsObjectType() && !val.Type().IsMapType() {
		return nil, fmt.Errorf("attributes must be an object, got %s", val.Type().FriendlyName())
	}
	v, err := ctyToGo(val)
	if err != nil {
		return nil, err
	}
	return v.(map[string]any), nil
}

func ctyToGo(val cty.Value) (any, error) {
	if !val.IsKnown() || val.IsNull() {
		return nil, nil
	}
	ty := val.Type()
	switch {
	case ty == cty.String:
		return val.AsString(), nil
	case ty == cty.Number:
		f, _ := val.AsBigFloat().Float64()
		return f, nil
	case ty == cty.Bool:
		return val.True(), nil
	case ty.IsObjectType() || ty.IsMapType():
		out := make(map[string]any)
		for it := val.ElementIterator(); it.Next(); {
			k, v := it.Element()
			gv, err := ctyToGo(v)
			if err != nil {
				return nil, err
			}
			out[k.AsString()] = gv
		}
		return out, nil
	case ty.IsTupleType() || ty.IsListType() || ty.IsSetType():
		var out []any
		for it := val.ElementIterator(); it.Next(); {
			_, v := it.Element()
			gv, err := ctyToGo(v)
			if err != nil {
				return nil, err
			}
			out = append(out, gv)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported value type %s", ty.FriendlyName())
	}
}
