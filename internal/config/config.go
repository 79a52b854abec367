// Package config loads ethixguard settings.
//
// Sources, later ones winning:
//
//	.env in the working directory   (optional, loaded into the environment)
//	<root>/settings.yaml            (optional)
//	ETHIXGUARD_* environment variables
//
// <root> is $ETHIXGUARD_HOME, or ~/.ethixguard when unset. A missing settings
// file is not an error.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables.
const (
	EnvHome          = "ETHIXGUARD_HOME"
	EnvLogLevel      = "ETHIXGUARD_LOG_LEVEL"
	EnvAddr          = "ETHIXGUARD_ADDR"
	EnvKnowledgeFile = "ETHIXGUARD_KNOWLEDGE_FILE"
	EnvRenderStyle   = "ETHIXGUARD_RENDER_STYLE"
	EnvRenderWidth   = "ETHIXGUARD_RENDER_WIDTH"
)

// SettingsFile is the settings file name inside the root.
const SettingsFile = "settings.yaml"

// Config holds ethixguard settings.
type Config struct {
	// Root is the directory holding workspaces and settings.yaml.
	Root string `yaml:"-"`

	Log       LogConfig       `yaml:"log"`
	Server    ServerConfig    `yaml:"server"`
	Knowledge KnowledgeConfig `yaml:"knowledge"`
	Report    ReportConfig    `yaml:"report"`
	Analyze   AnalyzeConfig   `yaml:"analyze"`
}

type LogConfig struct {
	Level string `yaml:"level"` // debug | info | warn | error
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

type KnowledgeConfig struct {
	// File replaces the built-in guidance table with an ordered YAML list of
	// {keyword, response} entries.
	File string `yaml:"file"`
}

type ReportConfig struct {
	Style string `yaml:"style"` // glamour style for terminal output
	Width int    `yaml:"width"`
}

type AnalyzeConfig struct {
	// Skip lists project-name globs that analyze and watch leave alone.
	// Example: ["draft-*"]
	Skip []string `yaml:"skip"`
}

// Default returns the built-in settings for root.
func Default(root string) *Config {
	return &Config{
		Root:   root,
		Log:    LogConfig{Level: "info"},
		Server: ServerConfig{Addr: ":8080"},
		Report: ReportConfig{Style: "auto", Width: 100},
	}
}

// DefaultRoot returns $ETHIXGUARD_HOME or ~/.ethixguard.
func DefaultRoot() (string, error) {
	if root := os.Getenv(EnvHome); root != "" {
		return root, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("home dir: %w", err)
	}
	return filepath.Join(home, ".ethixguard"), nil
}

// Load reads .env, then settings from the default root.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	root, err := DefaultRoot()
	if err != nil {
		return nil, err
	}
	return LoadFrom(root)
}

// LoadFrom reads root/settings.yaml over the defaults and applies
// environment overrides. The .env file is not consulted.
func LoadFrom(root string) (*Config, error) {
	cfg := Default(root)

	path := filepath.Join(root, SettingsFile)
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("unmarshal %s: %w", path, err)
		}
		cfg.Root = root
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv(EnvAddr); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv(EnvKnowledgeFile); v != "" {
		c.Knowledge.File = v
	}
	if v := os.Getenv(EnvRenderStyle); v != "" {
		c.Report.Style = v
	}
	if v := os.Getenv(EnvRenderWidth); v != "" {
		w, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvRenderWidth, err)
		}
		c.Report.Width = w
	}
	return nil
}

func (c *Config) validate() error {
	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: unknown log level %q", c.Log.Level)
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("config: server address is required")
	}
	if c.Report.Width < 0 {
		return fmt.Errorf("config: report width must not be negative")
	}
	for _, p := range c.Analyze.Skip {
		if _, err := filepath.Match(p, ""); err != nil {
			return fmt.Errorf("config: bad skip pattern %q: %w", p, err)
		}
	}
	return nil
}

// Skipped reports whether project matches any skip glob. Safe to call on a
// nil *Config.
func (c *Config) Skipped(project string) bool {
	if c == nil {
		return false
	}
	for _, p := range c.Analyze.Skip {
		if ok, _ := filepath.Match(p, project); ok {
			return true
		}
	}
	return false
}
