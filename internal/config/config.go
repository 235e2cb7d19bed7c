// Package config loads the YAML configuration of the shared group tooling.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/zeusync/sharedgroups/internal/core/observability/log"
)

var ErrInvalidConfig = errors.New("invalid configuration")

type Config struct {
	Log     LogConfig     `yaml:"log"`
	History HistoryConfig `yaml:"history"`
	// Groups lists the shared group documents to load.
	Groups []string      `yaml:"groups"`
	Scenes []SceneConfig `yaml:"scenes"`
}

type LogConfig struct {
	Level       string `yaml:"level"`
	Encoding    string `yaml:"encoding"`
	Development bool   `yaml:"development"`
}

type HistoryConfig struct {
	Limit int `yaml:"limit"`
}

type SceneConfig struct {
	ID        uint32           `yaml:"id"`
	Name      string           `yaml:"name"`
	Instances []InstanceConfig `yaml:"instances,omitempty"`
}

// InstanceConfig places Count instances of the group document at Group.
type InstanceConfig struct {
	Group string `yaml:"group"`
	Count int    `yaml:"count"`
}

func Default() *Config {
	return &Config{
		Log: LogConfig{
			Level:    "info",
			Encoding: "console",
		},
		History: HistoryConfig{Limit: 100},
	}
}

// Load decodes r over the defaults and validates the result.
func Load(r io.Reader) (*Config, error) {
	c := Default()
	if err := yaml.NewDecoder(r).Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func LoadFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()
	return Load(f)
}

func (c *Config) Validate() error {
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	switch c.Log.Encoding {
	case "json", "console":
	default:
		return fmt.Errorf("%w: unknown log encoding %q", ErrInvalidConfig, c.Log.Encoding)
	}
	if c.History.Limit < 0 {
		return fmt.Errorf("%w: negative history limit", ErrInvalidConfig)
	}

	groups := make(map[string]bool, len(c.Groups))
	for _, g := range c.Groups {
		if g == "" {
			return fmt.Errorf("%w: empty group path", ErrInvalidConfig)
		}
		groups[g] = true
	}
	ids := make(map[uint32]bool, len(c.Scenes))
	for _, s := range c.Scenes {
		if s.ID == 0 || ids[s.ID] {
			return fmt.Errorf("%w: scene id %d must be unique and non-zero", ErrInvalidConfig, s.ID)
		}
		ids[s.ID] = true
		for _, inst := range s.Instances {
			if !groups[inst.Group] {
				return fmt.Errorf("%w: scene %d references unlisted group %q", ErrInvalidConfig, s.ID, inst.Group)
			}
			if inst.Count < 0 {
				return fmt.Errorf("%w: negative instance count", ErrInvalidConfig)
			}
		}
	}
	return nil
}

// Logger builds the logger described by the log section.
func (c *Config) Logger() *log.Logger {
	level, _ := log.ParseLevel(c.Log.Level)
	return log.New(level, log.Options{Development: c.Log.Development, Encoding: c.Log.Encoding})
}
