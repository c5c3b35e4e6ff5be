package scenario

import (
	_ "embed"
	"fmt"
)

//go:embed builtin/sandwich_panel.yaml
var sandwichPanelYAML []byte

// SandwichPanelName is the name of the built-in example scenario.
const SandwichPanelName = "Sandwich Panel Design (CFRP-Honeycomb)"

// SandwichPanel returns the built-in CFRP-honeycomb sandwich panel scenario.
func SandwichPanel() Scenario {
	scenarios, err := Parse(sandwichPanelYAML, FormatYAML, "builtin/sandwich_panel.yaml")
	if err != nil {
		panic(fmt.Sprintf("scenario: built-in sandwich panel is invalid: %v", err))
	}
	return scenarios[0]
}

// SandwichPanelYAML returns the raw document of the built-in scenario.
func SandwichPanelYAML() []byte {
	out := make([]byte, len(sandwichPanelYAML))
	copy(out, sandwichPanelYAML)
	return out
}
