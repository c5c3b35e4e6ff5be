// Package visualization renders scored networks in various output formats.
package visualization

import (
	"fmt"
	"sort"
	"strings"

	"github.com/nvandessel/hyperscore/internal/graph"
	"github.com/nvandessel/hyperscore/internal/simulation"
)

// Format specifies the output format for graph rendering.
type Format string

const (
	FormatDOT  Format = "dot"
	FormatJSON Format = "json"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case FormatDOT:
		return FormatDOT, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unsupported graph format %q (valid: dot, json)", s)
	}
}

// domainColors maps node domains to DOT fill colors.
var domainColors = map[string]string{
	"Material":       "#ff9999",
	"Design":         "#99ccff",
	"Manufacturing":  "#99ff99",
	graph.UnknownTag: "#cccccc",
}

// edgeStyles maps edge families to DOT styles.
var edgeStyles = map[graph.Family]string{
	graph.FamilyFunctionality: "solid",
	graph.FamilyValue:         "dashed",
}

// DomainColor returns the fill color for a domain.
func DomainColor(domain string) string {
	if c, ok := domainColors[domain]; ok {
		return c
	}
	return "lightgray"
}

// RenderDOT produces a Graphviz DOT representation of a network. Each
// dependency hyperedge is drawn through its own point node so that a
// many-to-one relation stays one visual object. When result is non-nil,
// final scores appear in node tooltips.
func RenderDOT(net *graph.Network, result *simulation.Result) string {
	var b strings.Builder
	b.WriteString("digraph hyperscore {\n")
	b.WriteString("  rankdir=LR;\n")
	b.WriteString("  node [shape=box, style=filled, fontname=\"Helvetica\"];\n")
	b.WriteString("  edge [fontname=\"Helvetica\", fontsize=10];\n\n")

	// Render nodes, clustered by domain
	byDomain := make(map[string][]*graph.Node)
	for _, node := range net.Nodes() {
		byDomain[node.Domain] = append(byDomain[node.Domain], node)
	}
	domains := make([]string, 0, len(byDomain))
	for d := range byDomain {
		domains = append(domains, d)
	}
	sort.Strings(domains)

	for i, domain := range domains {
		fmt.Fprintf(&b, "  subgraph cluster_%d {\n", i)
		fmt.Fprintf(&b, "    label=%q;\n", domain)
		b.WriteString("    style=rounded;\n")
		for _, node := range byDomain[domain] {
			label := truncate(node.ID, 40) + "\n" + node.Type
			attrs := fmt.Sprintf("label=%q, fillcolor=%q", label, DomainColor(node.Domain))
			if net.IsPlaceholder(node.ID) {
				attrs += ", style=\"filled,dashed\""
			}
			if result != nil {
				if state, ok := result.Nodes[node.ID]; ok {
					attrs += fmt.Sprintf(", tooltip=%q", scoreTooltip(state))
				}
			}
			fmt.Fprintf(&b, "    %q [%s];\n", node.ID, attrs)
		}
		b.WriteString("  }\n")
	}
	b.WriteString("\n")

	// Render dependency hyperedges through an intermediate point node
	for i, dep := range net.Dependencies {
		hub := fmt.Sprintf("dep_%d", i+1)
		fmt.Fprintf(&b, "  %q [shape=point, width=0.08, label=\"\", tooltip=%q];\n", hub, hyperedgeID(i))
		for _, src := range dep.Sources {
			fmt.Fprintf(&b, "  %q -> %q [arrowhead=none, color=gray40];\n", src, hub)
		}
		fmt.Fprintf(&b, "  %q -> %q [color=gray40];\n", hub, dep.Target)
	}

	// Render weighted edges
	for _, f := range graph.Families {
		color := "steelblue"
		if f == graph.FamilyValue {
			color = "darkgoldenrod"
		}
		for _, e := range net.EdgesFor(f) {
			fmt.Fprintf(&b, "  %q -> %q [label=%q, style=%s, color=%s, weight=\"%.1f\"];\n",
				e.Source, e.Target, fmt.Sprintf("%s (%.2f)", e.Label, e.Weight), edgeStyles[f], color, e.Weight)
		}
	}

	b.WriteString("}\n")
	return b.String()
}

// scoreTooltip lists a node's final scores, value family first, labels sorted.
func scoreTooltip(state simulation.NodeState) string {
	var parts []string
	for _, label := range sortedKeys(state.Value) {
		parts = append(parts, fmt.Sprintf("value.%s=%.3f", label, state.Value[label]))
	}
	for _, label := range sortedKeys(state.Functionality) {
		parts = append(parts, fmt.Sprintf("functionality.%s=%.3f", label, state.Functionality[label]))
	}
	if len(parts) == 0 {
		return "no scores"
	}
	return strings.Join(parts, "\n")
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// truncate shortens a string to maxLen, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
