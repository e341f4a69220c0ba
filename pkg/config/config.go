// Dataset configuration, read from a YAML file.

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/yumyai/panva/pkg/model"
	"gopkg.in/yaml.v3"
)

type ColumnType string

const (
	Categorical  ColumnType = "categorical"
	Quantitative ColumnType = "quantitative"
	Boolean      ColumnType = "boolean"
)

type Column struct {
	Name string     `yaml:"name"`
	Type ColumnType `yaml:"type"`
}

type Dataset struct {
	Metadata []Column `yaml:"metadata,omitempty"`
}

type SequenceDataset struct {
	Metadata []Column `yaml:"metadata,omitempty"`
	// DefaultVisible lists the metadata columns shown next to the alignment.
	DefaultVisible []string `yaml:"default_visible,omitempty"`
}

type Tree struct {
	Name  string `yaml:"name"`
	Label string `yaml:"label,omitempty"`
}

type Config struct {
	DefaultHomologyID string          `yaml:"default_homology_id,omitempty"`
	Homologies        Dataset         `yaml:"homologies,omitempty"`
	Sequences         SequenceDataset `yaml:"sequences,omitempty"`
	Alignment         Dataset         `yaml:"alignment,omitempty"`
	VariablePositions Dataset         `yaml:"variable_positions,omitempty"`
	Annotations       []string        `yaml:"annotations,omitempty"`
	Trees             []Tree          `yaml:"trees,omitempty"`
}

var ErrInvalidConfig = errors.New("invalid config")

func Default() *Config {
	return &Config{}
}

// Load reads the configuration at path. An empty path gives the default configuration.
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes and validates a YAML document. Unknown keys are rejected.
func Parse(raw []byte) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validateColumns(dataset string, columns []Column) error {
	seen := make(map[string]bool, len(columns))
	for _, c := range columns {
		if c.Name == "" {
			return fmt.Errorf("%w: %s: column without name", ErrInvalidConfig, dataset)
		}
		if seen[c.Name] {
			return fmt.Errorf("%w: %s: duplicate column %q", ErrInvalidConfig, dataset, c.Name)
		}
		seen[c.Name] = true
		switch c.Type {
		case Categorical, Quantitative, Boolean:
		default:
			return fmt.Errorf("%w: %s: column %q has unknown type %q", ErrInvalidConfig, dataset, c.Name, c.Type)
		}
	}
	return nil
}

func (c *Config) Validate() error {
	for _, d := range []struct {
		name    string
		columns []Column
	}{
		{"homologies", c.Homologies.Metadata},
		{"sequences", c.Sequences.Metadata},
		{"alignment", c.Alignment.Metadata},
		{"variable_positions", c.VariablePositions.Metadata},
	} {
		if err := validateColumns(d.name, d.columns); err != nil {
			return err
		}
	}

	for _, name := range c.Sequences.DefaultVisible {
		if !slices.ContainsFunc(c.Sequences.Metadata, func(col Column) bool { return col.Name == name }) {
			return fmt.Errorf("%w: default visible column %q is not a sequence column", ErrInvalidConfig, name)
		}
	}

	seen := make(map[string]bool, len(c.Trees))
	for _, t := range c.Trees {
		switch {
		case t.Name == "":
			return fmt.Errorf("%w: tree without name", ErrInvalidConfig)
		case t.Name == model.DendroDefault || t.Name == model.DendroCustom:
			return fmt.Errorf("%w: tree name %q is reserved", ErrInvalidConfig, t.Name)
		case seen[t.Name]:
			return fmt.Errorf("%w: duplicate tree %q", ErrInvalidConfig, t.Name)
		}
		seen[t.Name] = true
	}
	if slices.Contains(c.Annotations, "") {
		return fmt.Errorf("%w: empty annotation column", ErrInvalidConfig)
	}
	return nil
}

// QuantitativeColumns lists the sequence metadata columns sorted numerically.
func (c *Config) QuantitativeColumns() []string {
	var res []string
	for _, col := range c.Sequences.Metadata {
		if col.Type == Quantitative {
			res = append(res, col.Name)
		}
	}
	return res
}

func (c *Config) TreeNames() []string {
	res := make([]string, 0, len(c.Trees))
	for _, t := range c.Trees {
		res = append(res, t.Name)
	}
	return res
}

// TreeLabel is the display label of a tree, falling back to its name.
func (c *Config) TreeLabel(name string) string {
	for _, t := range c.Trees {
		if t.Name == name && t.Label != "" {
			return t.Label
		}
	}
	return name
}

func (c *Config) StoreOptions() model.Options {
	return model.Options{
		AnnotationColumns:   slices.Clone(c.Annotations),
		AuxiliaryTrees:      c.TreeNames(),
		QuantitativeColumns: c.QuantitativeColumns(),
	}
}
