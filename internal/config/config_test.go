package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/nvandessel/hyperscore/internal/simulation"
)

func TestDefault(t *testing.T) {
	config := Default()

	// Simulation defaults
	if config.Simulation.Iterations != 10 {
		t.Errorf("expected Iterations 10, got %d", config.Simulation.Iterations)
	}
	if config.Simulation.Alpha != 0.5 || config.Simulation.Beta != 0.5 {
		t.Errorf("expected alpha/beta 0.5, got %v/%v", config.Simulation.Alpha, config.Simulation.Beta)
	}

	// Store defaults
	if !config.Store.Enabled {
		t.Error("expected Store.Enabled to be true by default")
	}

	// Tracing defaults
	if config.Tracing.Enabled {
		t.Error("expected Tracing.Enabled to be false by default")
	}

	// Logging defaults
	if config.Logging.Level != "info" {
		t.Errorf("expected Logging.Level 'info', got '%s'", config.Logging.Level)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
simulation:
  iterations: 25
  alpha: 0.3
  meta_weights:
    design_prediction:
      performance: 1.0

study:
  parallelism: 4

store:
  enabled: false

tracing:
  enabled: true
  exporter: none
`
	if err := os.WriteFile(configPath, []byte(configContent), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	config, err := LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}

	if config.Simulation.Iterations != 25 {
		t.Errorf("expected Iterations 25, got %d", config.Simulation.Iterations)
	}
	if config.Simulation.Alpha != 0.3 {
		t.Errorf("expected Alpha 0.3, got %v", config.Simulation.Alpha)
	}
	// Unset fields keep their defaults.
	if config.Simulation.Beta != 0.5 {
		t.Errorf("expected Beta 0.5, got %v", config.Simulation.Beta)
	}
	if config.Study.Parallelism != 4 {
		t.Errorf("expected Parallelism 4, got %d", config.Study.Parallelism)
	}
	if config.Store.Enabled {
		t.Error("expected Store.Enabled to be false")
	}
	if !config.Tracing.Enabled || config.Tracing.Exporter != "none" {
		t.Errorf("unexpected tracing config %+v", config.Tracing)
	}

	sim := config.SimConfig()
	if len(sim.MetaWeights) != 1 || sim.MetaWeights["design_prediction"]["performance"] != 1.0 {
		t.Errorf("expected file meta weights, got %v", sim.MetaWeights)
	}
}

func TestLoadFromFile_EnvExpansion(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
store:
  path: ${TEST_RESULTS_DIR}/results.db
`
	if err := os.WriteFile(configPath, []byte(configContent), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	t.Setenv("TEST_RESULTS_DIR", "/tmp/hs")

	config, err := LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}

	if config.Store.Path != "/tmp/hs/results.db" {
		t.Errorf("expected expanded path, got '%s'", config.Store.Path)
	}
	if got := config.StorePath("/ignored"); got != "/tmp/hs/results.db" {
		t.Errorf("StorePath() = %q", got)
	}
}

func TestLoadWithPath(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	// No default file: defaults apply.
	config, err := LoadWithPath("")
	if err != nil {
		t.Fatalf("LoadWithPath: %v", err)
	}
	if config.Simulation.Iterations != simulation.DefaultIterations {
		t.Errorf("expected default iterations, got %d", config.Simulation.Iterations)
	}

	// An explicit path must exist.
	if _, err := LoadWithPath(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing explicit config")
	}

	path := filepath.Join(t.TempDir(), "custom.yaml")
	if err := os.WriteFile(path, []byte("simulation:\n  iterations: 3\n"), 0600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("HYPERSCORE_ALPHA", "0.9")
	config, err = LoadWithPath(path)
	if err != nil {
		t.Fatalf("LoadWithPath: %v", err)
	}
	if config.Simulation.Iterations != 3 || config.Simulation.Alpha != 0.9 {
		t.Errorf("expected file then env overrides, got %+v", config.Simulation)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("HYPERSCORE_ITERATIONS", "7")
	t.Setenv("HYPERSCORE_ALPHA", "0.2")
	t.Setenv("HYPERSCORE_BETA", "0.8")
	t.Setenv("HYPERSCORE_PARALLELISM", "3")
	t.Setenv("HYPERSCORE_TRACING", "1")
	t.Setenv("HYPERSCORE_LOG_LEVEL", "debug")

	config := Default()
	applyEnvOverrides(config)

	if config.Simulation.Iterations != 7 {
		t.Errorf("expected Iterations 7, got %d", config.Simulation.Iterations)
	}
	if config.Simulation.Alpha != 0.2 || config.Simulation.Beta != 0.8 {
		t.Errorf("expected alpha 0.2 beta 0.8, got %v/%v", config.Simulation.Alpha, config.Simulation.Beta)
	}
	if config.Study.Parallelism != 3 {
		t.Errorf("expected Parallelism 3, got %d", config.Study.Parallelism)
	}
	if !config.Tracing.Enabled {
		t.Error("expected Tracing.Enabled to be true")
	}
	if config.Logging.Level != "debug" {
		t.Errorf("expected Logging.Level 'debug', got '%s'", config.Logging.Level)
	}
}

func TestEnvOverrides_IgnoresGarbage(t *testing.T) {
	t.Setenv("HYPERSCORE_ITERATIONS", "many")
	t.Setenv("HYPERSCORE_ALPHA", "half")

	config := Default()
	applyEnvOverrides(config)

	if config.Simulation.Iterations != simulation.DefaultIterations {
		t.Errorf("unparseable override should be ignored, got %d", config.Simulation.Iterations)
	}
	if config.Simulation.Alpha != simulation.DefaultAlpha {
		t.Errorf("unparseable override should be ignored, got %v", config.Simulation.Alpha)
	}
}

func TestValidate_Valid(t *testing.T) {
	config := Default()
	if err := config.Validate(); err != nil {
		t.Errorf("expected valid config, got error: %v", err)
	}
}

func TestValidate_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *HyperscoreConfig)
	}{
		{"negative iterations", func(c *HyperscoreConfig) { c.Simulation.Iterations = -1 }},
		{"alpha above 1", func(c *HyperscoreConfig) { c.Simulation.Alpha = 1.5 }},
		{"negative beta", func(c *HyperscoreConfig) { c.Simulation.Beta = -0.1 }},
		{"negative parallelism", func(c *HyperscoreConfig) { c.Study.Parallelism = -2 }},
		{"bad log level", func(c *HyperscoreConfig) { c.Logging.Level = "verbose" }},
		{"bad log format", func(c *HyperscoreConfig) { c.Logging.Format = "xml" }},
		{"bad exporter", func(c *HyperscoreConfig) { c.Tracing.Exporter = "jaeger" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := Default()
			tt.mutate(config)
			if err := config.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestValidate_ValidLogLevels(t *testing.T) {
	validLevels := []string{"", "info", "debug", "trace", "warn", "error"}

	for _, level := range validLevels {
		t.Run(level, func(t *testing.T) {
			config := Default()
			config.Logging.Level = level
			if err := config.Validate(); err != nil {
				t.Errorf("expected log level '%s' to be valid, got error: %v", level, err)
			}
		})
	}
}

func TestSimConfig_DefaultWeights(t *testing.T) {
	sim := Default().SimConfig()
	if len(sim.MetaWeights) != len(simulation.DefaultMetaWeights()) {
		t.Errorf("expected stock weights, got %v", sim.MetaWeights)
	}
}

func TestEffectiveParallelism(t *testing.T) {
	config := Default()
	if got := config.EffectiveParallelism(); got != runtime.GOMAXPROCS(0) {
		t.Errorf("expected GOMAXPROCS, got %d", got)
	}
	config.Study.Parallelism = 2
	if got := config.EffectiveParallelism(); got != 2 {
		t.Errorf("expected 2, got %d", got)
	}
}

func TestStorePath_Default(t *testing.T) {
	got := Default().StorePath("/project")
	if got != filepath.Join("/project", ".hyperscore", "results.db") {
		t.Errorf("StorePath() = %q", got)
	}
}

func TestLoadFromFile_NotFound(t *testing.T) {
	_, err := LoadFromFile("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("expected error for nonexistent file")
	}
}

func TestLoadFromFile_InvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	invalidYAML := `
simulation:
  iterations: [invalid yaml
`
	if err := os.WriteFile(configPath, []byte(invalidYAML), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	_, err := LoadFromFile(configPath)
	if err == nil {
		t.Error("expected error for invalid YAML")
	}
}
