package scenario

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Supported file formats.
const (
	FormatYAML = "yaml"
	FormatJSON = "json"
	FormatHCL  = "hcl"
)

// ErrUnsupportedFormat is returned for files whose extension has no loader.
var ErrUnsupportedFormat = errors.New("unsupported scenario format")

// document is the on-disk envelope: either a list under "scenarios" or a
// single scenario at the top level.
type document struct {
	Scenarios []Scenario `json:"scenarios" yaml:"scenarios"`
}

// FormatFor maps a file extension to a format name.
func FormatFor(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	case ".hcl":
		return FormatHCL, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// Parse decodes every scenario in data and validates each one.
// filename is only used in diagnostics.
func Parse(data []byte, format, filename string) ([]Scenario, error) {
	var (
		scenarios []Scenario
		err       error
	)
	switch format {
	case FormatYAML:
		scenarios, err = parseYAML(data)
	case FormatJSON:
		scenarios, err = parseJSON(data)
	case FormatHCL:
		scenarios, err = parseHCL(data, filename)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filename, err)
	}
	if len(scenarios) == 0 {
		return nil, fmt.Errorf("parsing %s: no scenarios found", filename)
	}

	names := make(map[string]bool, len(scenarios))
	for i := range scenarios {
		scenarios[i].Source = filename
		if err := scenarios[i].Validate(); err != nil {
			return nil, fmt.Errorf("%s: %w", filename, err)
		}
		if names[scenarios[i].Name] {
			return nil, fmt.Errorf("%s: duplicate scenario name %q", filename, scenarios[i].Name)
		}
		names[scenarios[i].Name] = true
	}
	return scenarios, nil
}

func parseYAML(data []byte) ([]Scenario, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if len(doc.Scenarios) > 0 {
		return doc.Scenarios, nil
	}
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	if s.Name == "" && len(s.Nodes) == 0 && len(s.Edges) == 0 {
		return nil, nil
	}
	return []Scenario{s}, nil
}

func parseJSON(data []byte) ([]Scenario, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if len(doc.Scenarios) > 0 {
		return doc.Scenarios, nil
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	var s Scenario
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	if s.Name == "" && len(s.Nodes) == 0 && len(s.Edges) == 0 {
		return nil, nil
	}
	return []Scenario{s}, nil
}

// LoadFile reads and parses the scenarios in path.
func LoadFile(path string) ([]Scenario, error) {
	format, err := FormatFor(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario file: %w", err)
	}
	return Parse(data, format, path)
}

// LoadDir loads every supported file directly inside dir, in file name order.
// Files with other extensions are ignored.
func LoadDir(dir string) ([]Scenario, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading scenario directory: %w", err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if _, err := FormatFor(e.Name()); err == nil {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)

	var all []Scenario
	for _, f := range files {
		scenarios, err := LoadFile(f)
		if err != nil {
			return nil, err
		}
		all = append(all, scenarios...)
	}
	return all, nil
}

// Load loads a file or, when path is a directory, every scenario file in it.
func Load(path string) ([]Scenario, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("loading scenarios: %w", err)
	}
	if info.IsDir() {
		return LoadDir(path)
	}
	return LoadFile(path)
}
