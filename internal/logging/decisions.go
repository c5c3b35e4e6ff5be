package logging

// Decision event names written to decisions.jsonl.
const (
	EventPlaceholderNode = "placeholder_node"
	EventScorerSkipped   = "scorer_skipped"
	EventScorerApplied   = "scorer_applied"
	EventRunComplete     = "run_complete"
)

// PlaceholderNode records that a node was synthesized because only an edge named it.
func (dl *DecisionLogger) PlaceholderNode(scenario, nodeID string) {
	dl.Record(Decision{Event: EventPlaceholderNode, Scenario: scenario, NodeID: nodeID})
}

// ScorerSkipped records a node whose function identifier did not resolve.
func (dl *DecisionLogger) ScorerSkipped(scenario, nodeID, functionPath string) {
	dl.Record(Decision{
		Event:        EventScorerSkipped,
		Scenario:     scenario,
		NodeID:       nodeID,
		FunctionPath: functionPath,
	})
}

// ScorerApplied records the initial scores a scorer produced for a node.
func (dl *DecisionLogger) ScorerApplied(scenario, nodeID, functionPath string, functionality, value map[string]float64) {
	dl.Record(Decision{
		Event:         EventScorerApplied,
		Scenario:      scenario,
		NodeID:        nodeID,
		FunctionPath:  functionPath,
		Functionality: functionality,
		Value:         value,
	})
}

// RunComplete records the outcome of a simulation run.
func (dl *DecisionLogger) RunComplete(scenario, runID string, metaScore float64, iterations int) {
	dl.Record(Decision{
		Event:      EventRunComplete,
		Scenario:   scenario,
		RunID:      runID,
		MetaScore:  &metaScore,
		Iterations: iterations,
	})
}
