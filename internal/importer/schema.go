package importer

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ImportSchema is the top-level structure of a project plan file. The same
// shape is read from and written to both JSON and YAML.
type ImportSchema struct {
	Project ProjectImport `json:"project" yaml:"project"`
	Phases  []PhaseImport `json:"phases" yaml:"phases"`
	Tasks   []TaskImport  `json:"tasks,omitempty" yaml:"tasks,omitempty"`
}

// ProjectImport defines the project-level fields in the plan file.
type ProjectImport struct {
	ShortID     string  `json:"short_id" yaml:"short_id"`
	Name        string  `json:"name" yaml:"name"`
	Description string  `json:"description,omitempty" yaml:"description,omitempty"`
	Owner       string  `json:"owner,omitempty" yaml:"owner,omitempty"`
	Color       string  `json:"color,omitempty" yaml:"color,omitempty"`
	StartDate   string  `json:"start_date,omitempty" yaml:"start_date,omitempty"`
	TargetDate  *string `json:"target_date,omitempty" yaml:"target_date,omitempty"`
}

// PhaseImport defines one phase. Ref is local to the file and only used to
// attach tasks.
type PhaseImport struct {
	Ref         string `json:"ref" yaml:"ref"`
	Name        string `json:"name" yaml:"name"`
	StartDate   string `json:"start_date" yaml:"start_date"`
	EndDate     string `json:"end_date" yaml:"end_date"`
	Deliverable string `json:"deliverable,omitempty" yaml:"deliverable,omitempty"`
	Responsible string `json:"responsible,omitempty" yaml:"responsible,omitempty"`
	Status      string `json:"status,omitempty" yaml:"status,omitempty"`
	Progress    *int   `json:"progress,omitempty" yaml:"progress,omitempty"`
	Color       string `json:"color,omitempty" yaml:"color,omitempty"`
}

// TaskImport defines a task belonging to a phase.
type TaskImport struct {
	PhaseRef string  `json:"phase_ref" yaml:"phase_ref"`
	Name     string  `json:"name" yaml:"name"`
	Assignee string  `json:"assignee,omitempty" yaml:"assignee,omitempty"`
	DueDate  *string `json:"due_date,omitempty" yaml:"due_date,omitempty"`
	Status   string  `json:"status,omitempty" yaml:"status,omitempty"`
	Priority *int    `json:"priority,omitempty" yaml:"priority,omitempty"`
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// LoadImportSchema reads and parses a plan file. Files ending in .yaml or
// .yml are decoded as YAML, everything else as JSON.
func LoadImportSchema(path string) (*ImportSchema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseImportSchema(data, isYAML(path))
}

// ParseImportSchema decodes a plan from memory.
func ParseImportSchema(data []byte, asYAML bool) (*ImportSchema, error) {
	var schema ImportSchema
	if asYAML {
		if err := yaml.Unmarshal(data, &schema); err != nil {
			return nil, fmt.Errorf("parsing import file: %w", err)
		}
		return &schema, nil
	}
	if err := json.Unmarshal(data, &schema); err != nil {
		return nil, fmt.Errorf("parsing import file: %w", err)
	}
	return &schema, nil
}

// MarshalImportSchema encodes schema as YAML or indented JSON.
func MarshalImportSchema(schema *ImportSchema, asYAML bool) ([]byte, error) {
	if asYAML {
		data, err := yaml.Marshal(schema)
		if err != nil {
			return nil, fmt.Errorf("encoding plan: %w", err)
		}
		return data, nil
	}
	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding plan: %w", err)
	}
	return append(data, '\n'), nil
}

// WriteImportSchema writes schema to path, choosing the encoding by extension.
func WriteImportSchema(path string, schema *ImportSchema) error {
	data, err := MarshalImportSchema(schema, isYAML(path))
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing plan: %w", err)
	}
	return nil
}
