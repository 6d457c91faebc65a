// Package config provides configuration loading and management for crossref.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/c360studio/crossref/canonical"
	"github.com/c360studio/crossref/rules"
)

// Config represents the complete crossref configuration. Scalar settings
// whose zero value is meaningful (word bounds, the mention switch) are held
// as pointers so an absent key is distinguishable from an explicit false or
// zero when layering configs.
type Config struct {
	Roots   RootsConfig       `yaml:"roots"`
	Mapping []canonical.Entry `yaml:"mapping"`
	Words   WordsConfig       `yaml:"word_bounds"`
	Require []string          `yaml:"required_headings"`
	Mention MentionConfig     `yaml:"mention"`
	NATS    NATSConfig        `yaml:"nats"`
}

// RootsConfig names the subdirectories holding each document role, relative
// to the corpus root.
type RootsConfig struct {
	// Chapters holds the chapter manuscripts.
	Chapters string `yaml:"chapters"`
	// PRDs holds the per-chapter product-requirement documents.
	PRDs string `yaml:"prds"`
	// Assets holds referenced diagram and image files.
	Assets string `yaml:"assets"`
}

// WordsConfig carries the per-chapter word-count bounds. Nil means the key
// was not set at this layer.
type WordsConfig struct {
	Min *int `yaml:"min"`
	Max *int `yaml:"max"`
}

// Bounds resolves the configured values into the rule engine's bounds type,
// treating an unset side as zero.
func (w WordsConfig) Bounds() rules.Bounds {
	var b rules.Bounds
	if w.Min != nil {
		b.Min = *w.Min
	}
	if w.Max != nil {
		b.Max = *w.Max
	}
	return b
}

// MentionConfig configures the chapter-mention grammar.
type MentionConfig struct {
	// AllowAbbreviated also recognizes "Ch. N" / "Ch N" in addition to
	// "Chapter N". Nil means the key was not set at this layer.
	AllowAbbreviated *bool `yaml:"allow_abbreviated"`
}

// Abbreviated reports whether abbreviated chapter mentions are recognized.
func (m MentionConfig) Abbreviated() bool {
	return m.AllowAbbreviated != nil && *m.AllowAbbreviated
}

// NATSConfig configures the optional task store connection.
type NATSConfig struct {
	// URL is the NATS server URL (empty = task persistence disabled).
	URL string `yaml:"url"`
}

// DefaultConfig returns a Config with sensible defaults. The canonical
// mapping has no default: it must be supplied by project configuration.
func DefaultConfig() *Config {
	return &Config{
		Roots: RootsConfig{
			Chapters: "chapters",
			PRDs:     "prds",
			Assets:   "assets",
		},
		Words:   WordsConfig{Min: intPtr(2500), Max: intPtr(4000)},
		Require: []string{"Related Chapters"},
		Mention: MentionConfig{AllowAbbreviated: boolPtr(true)},
	}
}

// Validate checks that the configuration is valid. A malformed canonical
// mapping (duplicate logical numbers, duplicate document IDs) is fatal here,
// before any document is loaded.
func (c *Config) Validate() error {
	if c.Roots.Chapters == "" {
		return fmt.Errorf("roots.chapters is required")
	}
	if b := c.Words.Bounds(); b.Min < 0 || b.Min > b.Max {
		return fmt.Errorf("word_bounds must satisfy 0 <= min <= max, got [%d,%d]", b.Min, b.Max)
	}
	if len(c.Mapping) == 0 {
		return fmt.Errorf("mapping is required: supply the chapter number to document id table")
	}
	if _, err := canonical.NewMapping(c.Mapping); err != nil {
		return fmt.Errorf("mapping: %w", err)
	}
	return nil
}

// LoadFromFile loads one configuration layer from a YAML file. Only keys
// present in the file are set; layering onto defaults happens in Merge, so
// a file layer never re-applies a default over an earlier layer.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	config := &Config{}
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveToFile saves configuration to a YAML file.
func (c *Config) SaveToFile(path string) error {
	// Ensure parent directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Merge merges another config layer into this one. Keys the other layer set
// take precedence, including explicit false and zero values; absent keys
// leave this layer untouched.
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	if other.Roots.Chapters != "" {
		c.Roots.Chapters = other.Roots.Chapters
	}
	if other.Roots.PRDs != "" {
		c.Roots.PRDs = other.Roots.PRDs
	}
	if other.Roots.Assets != "" {
		c.Roots.Assets = other.Roots.Assets
	}

	if len(other.Mapping) > 0 {
		c.Mapping = other.Mapping
	}

	if other.Words.Min != nil {
		c.Words.Min = other.Words.Min
	}
	if other.Words.Max != nil {
		c.Words.Max = other.Words.Max
	}

	if len(other.Require) > 0 {
		c.Require = other.Require
	}

	if other.Mention.AllowAbbreviated != nil {
		c.Mention.AllowAbbreviated = other.Mention.AllowAbbreviated
	}

	if other.NATS.URL != "" {
		c.NATS.URL = other.NATS.URL
	}
}

func intPtr(v int) *int { return &v }

func boolPtr(v bool) *bool { return &v }
