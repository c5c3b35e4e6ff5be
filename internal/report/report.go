// Package report writes human-readable summaries of simulation results.
package report

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/nvandessel/hyperscore/internal/ranking"
	"github.com/nvandessel/hyperscore/internal/simulation"
	"github.com/nvandessel/hyperscore/internal/store"
)

// styles holds the lipgloss styles bound to one output's renderer, so color
// is only emitted when w is a terminal.
type styles struct {
	title  lipgloss.Style
	label  lipgloss.Style
	banner lipgloss.Style
	warn   lipgloss.Style
	header lipgloss.Style
	cell   lipgloss.Style
	border lipgloss.Style
}

func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		title:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("#00FFFF")),
		label:  r.NewStyle().Foreground(lipgloss.Color("#888888")),
		banner: r.NewStyle().Bold(true).Foreground(lipgloss.Color("#00FF00")).BorderStyle(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#00FF00")).Padding(0, 1),
		warn:   r.NewStyle().Foreground(lipgloss.Color("#FFFF00")),
		header: r.NewStyle().Bold(true).Padding(0, 1),
		cell:   r.NewStyle().Padding(0, 1),
		border: r.NewStyle().Foreground(lipgloss.Color("#666666")),
	}
}

func (s styles) table(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(s.border).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return s.header
			}
			return s.cell
		}).
		Headers(headers...)
}

// WriteSummary writes a per-run summary: run parameters, meta-score, a node
// table with attributes and final scores, per-domain means when the run spans
// several domains, and unresolved scorers. When more
// than one result is given, a banner names the best run.
func WriteSummary(w io.Writer, results []*simulation.Result) error {
	st := newStyles(w)
	var b strings.Builder

	for _, res := range results {
		if res == nil {
			continue
		}
		b.WriteString(st.title.Render("Scenario: "+res.Scenario) + "\n")
		fmt.Fprintf(&b, "%s %s\n", st.label.Render("Run:"), res.RunID)
		fmt.Fprintf(&b, "%s iterations=%d alpha=%.2f beta=%.2f\n",
			st.label.Render("Config:"), res.Config.Iterations, res.Config.Alpha, res.Config.Beta)
		fmt.Fprintf(&b, "%s %.4f\n", st.label.Render("Meta-score:"), res.MetaScore)

		t := st.table("Node", "Domain", "Type", "Attributes", "Functionality", "Value")
		for _, id := range res.NodeIDs() {
			state := res.Nodes[id]
			t.Row(id, state.Domain, state.Type,
				formatAttributes(state.Attributes),
				formatScores(state.Functionality),
				formatScores(state.Value))
		}
		b.WriteString(t.String() + "\n")

		if avg := res.DomainAverages(); len(avg) > 1 {
			d := st.table("Domain", "Mean scores")
			for _, domain := range sortedDomains(avg) {
				d.Row(domain, formatScores(avg[domain]))
			}
			b.WriteString(d.String() + "\n")
		}

		for _, u := range res.Unresolved {
			b.WriteString(st.warn.Render(fmt.Sprintf("unresolved scorer %q on node %s", u.FunctionPath, u.NodeID)) + "\n")
		}
		b.WriteString("\n")
	}

	if countNonNil(results) > 1 {
		best := ranking.Best(results)
		b.WriteString(st.banner.Render(fmt.Sprintf("Best design: %s (meta-score %.4f)", best.Scenario, best.MetaScore)) + "\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// WriteComparison writes the ranked results followed by the per-design
// spread of meta-scores across weighting profiles.
func WriteComparison(w io.Writer, ranked []ranking.Ranked) error {
	st := newStyles(w)
	var b strings.Builder

	b.WriteString(st.title.Render("Design comparison") + "\n")
	t := st.table("#", "Scenario", "Profile", "Meta-score")
	results := make([]*simulation.Result, 0, len(ranked))
	for _, r := range ranked {
		results = append(results, r.Result)
		profile := r.Result.Profile
		if profile == "" {
			profile = "-"
		}
		t.Row(fmt.Sprint(r.Position), r.Result.BaseName(), profile, fmt.Sprintf("%.4f", r.Result.MetaScore))
	}
	b.WriteString(t.String() + "\n")

	spread := ranking.Spread(results)
	if len(spread) > 0 {
		b.WriteString("\n" + st.title.Render("Sensitivity to weighting") + "\n")
		s := st.table("Design", "Runs", "Min", "Max", "Mean", "Range", "Best profile")
		for _, sp := range spread {
			best := sp.BestProfile
			if best == "" {
				best = "-"
			}
			s.Row(sp.Base, fmt.Sprint(sp.Runs),
				fmt.Sprintf("%.4f", sp.Min), fmt.Sprintf("%.4f", sp.Max),
				fmt.Sprintf("%.4f", sp.Mean), fmt.Sprintf("%.4f", sp.Range()), best)
		}
		b.WriteString(s.String() + "\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// formatScores renders scores as "label=0.123" pairs in sorted label order.
func formatScores(scores map[string]float64) string {
	if len(scores) == 0 {
		return "-"
	}
	labels := make([]string, 0, len(scores))
	for l := range scores {
		labels = append(labels, l)
	}
	sort.Strings(labels)
	parts := make([]string, len(labels))
	for i, l := range labels {
		parts[i] = fmt.Sprintf("%s=%.3f", l, scores[l])
	}
	return strings.Join(parts, "\n")
}

func formatAttributes(attrs map[string]any) string {
	if len(attrs) == 0 {
		return "-"
	}
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%v", k, attrs[k])
	}
	return strings.Join(parts, "\n")
}

func sortedDomains(avg map[string]map[string]float64) []string {
	domains := make([]string, 0, len(avg))
	for d := range avg {
		domains = append(domains, d)
	}
	sort.Strings(domains)
	return domains
}

func countNonNil(results []*simulation.Result) int {
	n := 0
	for _, r := range results {
		if r != nil {
			n++
		}
	}
	return n
}

// WriteRunList writes stored run summaries as a table, newest first.
func WriteRunList(w io.Writer, sums []store.Summary) error {
	if len(sums) == 0 {
		_, err := io.WriteString(w, "No stored runs.\n")
		return err
	}

	st := newStyles(w)
	t := st.table("Run ID", "Scenario", "Profile", "Meta-score", "Iter", "Started")
	for _, s := range sums {
		profile := s.Profile
		if profile == "" {
			profile = "-"
		}
		t.Row(s.RunID, s.Scenario, profile, fmt.Sprintf("%.4f", s.MetaScore),
			fmt.Sprint(s.Iterations), s.StartedAt.Local().Format(time.DateTime))
	}
	_, err := io.WriteString(w, t.String()+"\n")
	return err
}

// WriteScoreHistory writes one node label's final score across stored runs.
func WriteScoreHistory(w io.Writer, nodeID, label string, points []store.ScorePoint) error {
	if len(points) == 0 {
		_, err := fmt.Fprintf(w, "No stored scores for %s.%s\n", nodeID, label)
		return err
	}

	st := newStyles(w)
	var b strings.Builder
	b.WriteString(st.title.Render(fmt.Sprintf("%s.%s across runs", nodeID, label)) + "\n")
	t := st.table("Started", "Run ID", "Scenario", "Family", "Score")
	for _, p := range points {
		t.Row(p.StartedAt.Local().Format(time.DateTime), p.RunID, p.Scenario, p.Family, fmt.Sprintf("%.4f", p.Score))
	}
	b.WriteString(t.String() + "\n")
	_, err := io.WriteString(w, b.String())
	return err
}
