package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config models board.yml.
type Config struct {
	Board struct {
		Title string `yaml:"title"`
	} `yaml:"board"`
	Lists struct {
		Active   string `yaml:"active"`
		Finished string `yaml:"finished"`
	} `yaml:"lists"`
	Validation Validation `yaml:"validation"`
	Journal    struct {
		Enabled bool   `yaml:"enabled"`
		Name    string `yaml:"name"`
	} `yaml:"journal"`
}

// Validation holds the rules the input form applies before adding a record.
type Validation struct {
	Title       TextRule  `yaml:"title"`
	Description TextRule  `yaml:"description"`
	People      RangeRule `yaml:"people"`
}

type TextRule struct {
	Required  bool `yaml:"required"`
	MinLength *int `yaml:"min_length,omitempty"`
	MaxLength *int `yaml:"max_length,omitempty"`
}

type RangeRule struct {
	Required bool `yaml:"required"`
	Min      *int `yaml:"min,omitempty"`
	Max      *int `yaml:"max,omitempty"`
}

// Validate ensures the config meets required structure.
func (c *Config) Validate() error {
	if c.Lists.Active == "" {
		return fmt.Errorf("config.lists.active is required")
	}
	if c.Lists.Finished == "" {
		return fmt.Errorf("config.lists.finished is required")
	}
	if c.Journal.Enabled && c.Journal.Name == "" {
		return fmt.Errorf("config.journal.name is required when the journal is enabled")
	}
	for name, rule := range map[string]TextRule{
		"title":       c.Validation.Title,
		"description": c.Validation.Description,
	} {
		if rule.MinLength != nil && *rule.MinLength < 0 {
			return fmt.Errorf("validation.%s.min_length must not be negative", name)
		}
		if rule.MinLength != nil && rule.MaxLength != nil && *rule.MinLength > *rule.MaxLength {
			return fmt.Errorf("validation.%s.min_length %d exceeds max_length %d", name, *rule.MinLength, *rule.MaxLength)
		}
	}
	p := c.Validation.People
	if p.Min != nil && p.Max != nil && *p.Min > *p.Max {
		return fmt.Errorf("validation.people.min %d exceeds max %d", *p.Min, *p.Max)
	}
	return nil
}

// Path returns the config file path for a workspace.
func Path(workspace string) string {
	if workspace == "" {
		workspace = "."
	}
	return filepath.Join(workspace, "board.yml")
}

// Load reads and validates config from workspace.
func Load(workspace string) (*Config, error) {
	path := Path(workspace)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config %s not found; create one with board config init", path)
		}
		return nil, err
	}
	return FromYAML(data)
}

// LoadOptional falls back to Default when the config file does not exist.
func LoadOptional(workspace string) (*Config, error) {
	data, err := os.ReadFile(Path(workspace))
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, err
	}
	return FromYAML(data)
}

// FromFile reads YAML config from the given path.
func FromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return FromYAML(data)
}

// FromYAML parses config on top of the defaults, so omitted keys keep their
// default values, then validates it.
func FromYAML(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("invalid config yaml: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the built-in configuration.
func Default() *Config {
	var cfg Config
	_ = yaml.NewDecoder(bytes.NewBufferString(defaultTemplate)).Decode(&cfg)
	return &cfg
}

// GenerateDefault returns default config YAML.
func GenerateDefault() string {
	return defaultTemplate
}

// Init writes the default config into the workspace unless one already exists.
func Init(workspace string) (string, error) {
	path := Path(workspace)
	if _, err := os.Stat(path); err == nil {
		return path, fmt.Errorf("config %s already exists", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return path, err
	}
	return path, os.WriteFile(path, []byte(defaultTemplate), 0o644)
}

// YAML renders cfg back to YAML.
func (c *Config) YAML() (string, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return "", err
	}
	if err := enc.Close(); err != nil {
		return "", err
	}
	return buf.String(), nil
}

const defaultTemplate = `board:
  title: Project Board

lists:
  active: ACTIVE PROJECTS
  finished: FINISHED PROJECTS

validation:
  title:
    required: true
  description:
    required: true
    min_length: 5
  people:
    required: true
    min: 1
    max: 5

journal:
  enabled: true
  name: board-journal
`
