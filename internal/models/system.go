package models

import (
	"math"

	"github.com/nvandessel/hyperscore/internal/graph"
)

// Identifiers of the built-in sandwich-panel scorers.
const (
	MaterialSearch          = "models.system.material_search"
	MaterialAssessment      = "models.system.material_assessment"
	MaterialPrediction      = "models.system.material_prediction"
	DesignCreation          = "models.system.design_creation"
	DesignAssembly          = "models.system.design_assembly"
	DesignPrediction        = "models.system.design_prediction"
	TechnologySelection     = "models.system.technology_selection"
	ManufacturingAssessment = "models.system.manufacturing_assessment"
	TechnologySimulation    = "models.system.technology_simulation"
)

// Score labels written by the built-in scorers.
const (
	LabelPerformance       = "performance"
	LabelStiffnessToWeight = "stiffness_to_weight"
	LabelThermalResistance = "thermal_resistance"
	LabelTotalCost         = "total_cost"
	LabelSustainability    = "sustainability"
)

// DefaultRegistry returns a registry with every built-in scorer.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.RegisterFunc(MaterialSearch, materialSearch)
	r.RegisterFunc(MaterialAssessment, materialAssessment)
	r.RegisterFunc(MaterialPrediction, materialPrediction)
	r.RegisterFunc(DesignCreation, designCreation)
	r.RegisterFunc(DesignAssembly, designAssembly)
	r.RegisterFunc(DesignPrediction, designPrediction)
	r.RegisterFunc(TechnologySelection, technologySelection)
	r.RegisterFunc(ManufacturingAssessment, manufacturingAssessment)
	r.RegisterFunc(TechnologySimulation, technologySimulation)
	return r
}

// Material domain.

// materialSearch: a higher target modulus is harder to find.
func materialSearch(n *graph.Node) {
	modulus := n.AttrFloat("target_face_sheet_modulus", 0)
	n.Functionality.Set(LabelPerformance, atLeastZero(1-modulus/500.0))
	n.Value.Set(LabelTotalCost, 0.95)
	n.Value.Set(LabelSustainability, 0.5)
}

func materialAssessment(n *graph.Node) {
	cost := n.AttrFloat("cost_per_m2", 1000)
	n.Value.Set(LabelTotalCost, atLeastZero(1-cost/500.0))

	coreDensity := n.AttrFloat("core_density", 1)
	n.Value.Set(LabelSustainability, atLeastZero(1-coreDensity/0.1))

	faceModulus := n.AttrFloat("face_sheet_modulus", 0)
	stiffness := 0.0
	if coreDensity > 0 {
		stiffness = faceModulus / (coreDensity * 1000)
	}
	n.Functionality.Set(LabelStiffnessToWeight, math.Min(1, stiffness/2.0))

	conductivity := n.AttrFloat("thermal_conductivity", 1)
	n.Functionality.Set(LabelThermalResistance, atLeastZero(1-conductivity/0.2))
}

// materialPrediction: lower simulated delamination risk is better.
func materialPrediction(n *graph.Node) {
	risk := n.AttrFloat("simulated_delamination_risk", 1.0)
	n.Functionality.Set(LabelPerformance, 1.0-risk)
	n.Value.Set(LabelTotalCost, 1.0)
	n.Value.Set(LabelSustainability, 1.0)
}

// Design domain.

// designCreation: thicker panels are stronger but use more material.
func designCreation(n *graph.Node) {
	thickness := n.AttrFloat("panel_thickness", 0)
	n.Functionality.Set(LabelPerformance, math.Min(1, thickness/25.0))
	n.Value.Set(LabelTotalCost, atLeastZero(1-thickness/50.0))
	n.Value.Set(LabelSustainability, atLeastZero(1-thickness/50.0))
}

func designAssembly(n *graph.Node) {
	sustainability := 0.4
	if n.AttrString("adhesive_type", "none") == "epoxy_film" {
		sustainability = 0.8
	}
	n.Value.Set(LabelSustainability, sustainability)
	n.Functionality.Set(LabelPerformance, 0.9)
	n.Value.Set(LabelTotalCost, 0.9)
}

// designPrediction: lower simulated deflection is better.
func designPrediction(n *graph.Node) {
	deflection := n.AttrFloat("max_deflection_mm", 10)
	n.Functionality.Set(LabelPerformance, atLeastZero(1-deflection/2.0))
	n.Value.Set(LabelTotalCost, 1.0)
	n.Value.Set(LabelSustainability, 1.0)
}

// Manufacturing domain.

func technologySelection(n *graph.Node) {
	autoclave := n.AttrString("process", "hand_layup") == "autoclave_curing"
	if autoclave {
		n.Functionality.Set(LabelPerformance, 0.9)
		n.Value.Set(LabelTotalCost, 0.6)
	} else {
		n.Functionality.Set(LabelPerformance, 0.6)
		n.Value.Set(LabelTotalCost, 0.8)
	}
	n.Value.Set(LabelSustainability, 0.5)
}

// manufacturingAssessment: energy and scrap drive both cost and sustainability.
func manufacturingAssessment(n *graph.Node) {
	energy := n.AttrFloat("energy_per_part", 100)
	scrap := n.AttrFloat("scrap_rate", 1.0)
	n.Value.Set(LabelSustainability, atLeastZero(1-(energy/100.0+scrap)/2))
	n.Value.Set(LabelTotalCost, atLeastZero(1-(energy/150.0+scrap)/2))
	n.Functionality.Set(LabelPerformance, 1.0)
}

// technologySimulation: faster curing is cheaper and greener, but may cost quality.
func technologySimulation(n *graph.Node) {
	hours := n.AttrFloat("curing_time_hours", 8)
	n.Value.Set(LabelTotalCost, atLeastZero(1-hours/12.0))
	n.Functionality.Set(LabelPerformance, atLeastZero(1-hours/24.0))
	n.Value.Set(LabelSustainability, atLeastZero(1-hours/12.0))
}

func atLeastZero(v float64) float64 {
	return math.Max(0, v)
}
