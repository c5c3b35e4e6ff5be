// Package config provides unified configuration loading for hyperscore.
// It supports loading from YAML files and environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/nvandessel/hyperscore/internal/simulation"
	"gopkg.in/yaml.v3"
)

// HyperscoreConfig contains all hyperscore configuration settings.
type HyperscoreConfig struct {
	// Simulation holds the default run parameters.
	Simulation SimulationConfig `json:"simulation" yaml:"simulation"`

	// Study configures multi-scenario weighting studies.
	Study StudyConfig `json:"study" yaml:"study"`

	// Logging contains settings for operational and decision logging.
	Logging LoggingConfig `json:"logging" yaml:"logging"`

	// Store configures persistence of run results.
	Store StoreConfig `json:"store" yaml:"store"`

	// Tracing configures OpenTelemetry span export.
	Tracing TracingConfig `json:"tracing" yaml:"tracing"`
}

// SimulationConfig holds default run parameters. Scenario files may
// override any of them.
type SimulationConfig struct {
	Iterations int     `json:"iterations" yaml:"iterations"`
	Alpha      float64 `json:"alpha" yaml:"alpha"`
	Beta       float64 `json:"beta" yaml:"beta"`

	// MetaWeights replaces the stock meta-score weighting when set.
	MetaWeights simulation.MetaWeights `json:"meta_weights,omitempty" yaml:"meta_weights,omitempty"`
}

// StudyConfig configures weighting studies.
type StudyConfig struct {
	// Parallelism bounds the number of concurrent runs. 0 means GOMAXPROCS.
	Parallelism int `json:"parallelism" yaml:"parallelism"`
}

// LoggingConfig configures hyperscore's logging behavior.
type LoggingConfig struct {
	// Level sets the log verbosity: "info" (default), "debug", or "trace".
	// "debug" enables decision logging to .hyperscore/decisions.jsonl.
	// "trace" additionally logs every propagation round.
	Level string `json:"level" yaml:"level"`

	// Format selects the stderr handler: "text" (default) or "json".
	Format string `json:"format" yaml:"format"`
}

// StoreConfig configures the result store.
type StoreConfig struct {
	// Enabled turns on persistence of run results.
	Enabled bool `json:"enabled" yaml:"enabled"`

	// Path overrides the database location. Supports ${VAR} syntax.
	// Defaults to <root>/.hyperscore/results.db.
	Path string `json:"path,omitempty" yaml:"path,omitempty"`
}

// TracingConfig configures span export.
type TracingConfig struct {
	Enabled bool `json:"enabled" yaml:"enabled"`

	// Exporter is "stdout" or "none".
	Exporter string `json:"exporter" yaml:"exporter"`
}

// Default returns a HyperscoreConfig with sensible defaults.
func Default() *HyperscoreConfig {
	return &HyperscoreConfig{
		Simulation: SimulationConfig{
			Iterations: simulation.DefaultIterations,
			Alpha:      simulation.DefaultAlpha,
			Beta:       simulation.DefaultBeta,
		},
		Study: StudyConfig{
			Parallelism: 0,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Store: StoreConfig{
			Enabled: true,
		},
		Tracing: TracingConfig{
			Enabled:  false,
			Exporter: "stdout",
		},
	}
}

// DefaultPath returns ~/.hyperscore/config.yaml, or "" if the home
// directory cannot be determined.
func DefaultPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(homeDir, ".hyperscore", "config.yaml")
}

// Load loads configuration from the default locations and environment variables.
// Order: defaults -> ~/.hyperscore/config.yaml -> environment variables
func Load() (*HyperscoreConfig, error) {
	return LoadWithPath("")
}

// LoadWithPath is Load with an explicit config file. An empty path uses
// DefaultPath, which may be absent; an explicit path must exist.
func LoadWithPath(path string) (*HyperscoreConfig, error) {
	config := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	if path != "" {
		if _, statErr := os.Stat(path); statErr == nil || explicit {
			fileConfig, loadErr := LoadFromFile(path)
			if loadErr != nil {
				return nil, fmt.Errorf("loading config file: %w", loadErr)
			}
			config = fileConfig
		}
	}

	// Apply environment variable overrides
	applyEnvOverrides(config)

	return config, nil
}

// LoadFromFile loads configuration from a specific YAML file.
func LoadFromFile(path string) (*HyperscoreConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Expand environment variables in the store path
	config.Store.Path = expandEnvVars(config.Store.Path)

	return config, nil
}

// Validate checks that the configuration is valid.
func (c *HyperscoreConfig) Validate() error {
	if err := c.SimConfig().Validate(); err != nil {
		return fmt.Errorf("simulation: %w", err)
	}

	if c.Study.Parallelism < 0 {
		return fmt.Errorf("parallelism must be non-negative, got %d", c.Study.Parallelism)
	}

	validLevels := map[string]bool{"info": true, "debug": true, "trace": true, "warn": true, "error": true}
	if c.Logging.Level != "" && !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s (valid: error, warn, info, debug, trace, or empty for default)", c.Logging.Level)
	}

	if c.Logging.Format != "" && c.Logging.Format != "text" && c.Logging.Format != "json" {
		return fmt.Errorf("invalid log format: %s (valid: text, json)", c.Logging.Format)
	}

	validExporters := map[string]bool{"": true, "stdout": true, "none": true}
	if !validExporters[c.Tracing.Exporter] {
		return fmt.Errorf("invalid tracing exporter: %s (valid: stdout, none)", c.Tracing.Exporter)
	}

	return nil
}

// SimConfig converts the simulation section into an engine config. The stock
// meta-score weighting is used unless the file sets one.
func (c *HyperscoreConfig) SimConfig() simulation.Config {
	cfg := simulation.Config{
		Iterations:  c.Simulation.Iterations,
		Alpha:       c.Simulation.Alpha,
		Beta:        c.Simulation.Beta,
		MetaWeights: c.Simulation.MetaWeights.Clone(),
	}
	if len(cfg.MetaWeights) == 0 {
		cfg.MetaWeights = simulation.DefaultMetaWeights()
	}
	return cfg
}

// EffectiveParallelism resolves a zero parallelism to GOMAXPROCS.
func (c *HyperscoreConfig) EffectiveParallelism() int {
	if c.Study.Parallelism > 0 {
		return c.Study.Parallelism
	}
	return runtime.GOMAXPROCS(0)
}

// StorePath returns the result database path under root.
func (c *HyperscoreConfig) StorePath(root string) string {
	if c.Store.Path != "" {
		return c.Store.Path
	}
	return filepath.Join(root, ".hyperscore", "results.db")
}

// applyEnvOverrides applies environment variable overrides to the config.
func applyEnvOverrides(config *HyperscoreConfig) {
	if v := os.Getenv("HYPERSCORE_ITERATIONS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.Simulation.Iterations = n
		}
	}

	if v := os.Getenv("HYPERSCORE_ALPHA"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			config.Simulation.Alpha = f
		}
	}

	if v := os.Getenv("HYPERSCORE_BETA"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			config.Simulation.Beta = f
		}
	}

	if v := os.Getenv("HYPERSCORE_PARALLELISM"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.Study.Parallelism = n
		}
	}

	if v := os.Getenv("HYPERSCORE_TRACING"); v != "" {
		config.Tracing.Enabled = v == "true" || v == "1"
	}

	if v := os.Getenv("HYPERSCORE_LOG_LEVEL"); v != "" {
		config.Logging.Level = v
	}

	if v := os.Getenv("HYPERSCORE_LOG_FORMAT"); v != "" {
		config.Logging.Format = v
	}
}

// expandEnvVars expands ${VAR} patterns in a string with environment variable values.
func expandEnvVars(s string) string {
	if !strings.Contains(s, "${") {
		return s
	}
	return os.Expand(s, os.Getenv)
}
