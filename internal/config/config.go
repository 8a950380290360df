// Package config handles TOML configuration loading with sensible defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Recognized AI service selections.
const (
	ServiceMock  = "mock"
	ServiceModel = "model"
)

// Config is the top-level configuration for flightdesk.
type Config struct {
	Database DatabaseConfig `toml:"database"`
	AI       AIConfig       `toml:"ai"`
	Log      LogConfig      `toml:"log"`
}

// DatabaseConfig selects the storage handler and its target.
type DatabaseConfig struct {
	Handler string `toml:"handler"`
	Path    string `toml:"path"`
}

// AIConfig selects the enrichment backend.
type AIConfig struct {
	Service string      `toml:"service"`
	Model   ModelConfig `toml:"model"`
}

// ModelConfig configures the model-backed enrichment pipeline: one model
// identifier per sub-task, candidate label sets for the two classifiers,
// and prompt templates for the two generators. Templates use {text},
// {category}, and {severity} placeholders.
type ModelConfig struct {
	BaseURL string `toml:"base_url"`
	APIKey  string `toml:"api_key"`

	CategoryModel       string `toml:"category_model"`
	SeverityModel       string `toml:"severity_model"`
	SummaryModel        string `toml:"summary_model"`
	RecommendationModel string `toml:"recommendation_model"`

	CategoryLabels []string `toml:"category_labels"`
	SeverityLabels []string `toml:"severity_labels"`

	SummaryPrompt        string `toml:"summary_prompt"`
	RecommendationPrompt string `toml:"recommendation_prompt"`
}

// LogConfig controls logging.
type LogConfig struct {
	Level string `toml:"level"`
}

// Default returns a Config with sensible defaults: rule-engine enrichment
// and an SQLite database under the user data directory.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{
			Handler: "sqlite",
			Path:    defaultDBPath(),
		},
		AI: AIConfig{
			Service: ServiceMock,
			Model: ModelConfig{
				CategoryLabels: []string{
					"Critical Failure", "Mechanical", "Flight Controls",
					"Avionics", "Weather", "Human Factors", "General",
				},
				SeverityLabels: []string{"low", "medium", "high", "critical"},
				SummaryPrompt: "Summarize the following flight event report in one sentence: {text}",
				RecommendationPrompt: "A flight event was classified as {category} with severity {severity}. " +
					"Report: {text}. Recommend one concrete follow-up action:",
			},
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// DefaultPath returns the default config file path.
func DefaultPath() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return filepath.Join(configDir, "flightdesk", "config.toml")
}

func defaultDBPath() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "flightdesk", "flight_reports.db")
}

// Load reads configuration from the given path, falling back to defaults
// for any unset fields. If the file does not exist, returns defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = DefaultPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks backend selections. A bad selection is fatal before any
// ingestion begins; nothing here is recoverable mid-run.
func (c *Config) Validate() error {
	if c.Database.Handler != "sqlite" {
		return fmt.Errorf("unsupported database handler %q", c.Database.Handler)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database path not configured")
	}

	switch c.AI.Service {
	case ServiceMock:
	case ServiceModel:
		m := c.AI.Model
		if m.BaseURL == "" {
			return fmt.Errorf("ai.model.base_url required when ai.service = %q", ServiceModel)
		}
		for name, model := range map[string]string{
			"category_model":       m.CategoryModel,
			"severity_model":       m.SeverityModel,
			"summary_model":        m.SummaryModel,
			"recommendation_model": m.RecommendationModel,
		} {
			if model == "" {
				return fmt.Errorf("ai.model.%s required when ai.service = %q", name, ServiceModel)
			}
		}
		if len(m.CategoryLabels) == 0 || len(m.SeverityLabels) == 0 {
			return fmt.Errorf("ai.model candidate label sets must not be empty")
		}
		if m.SummaryPrompt == "" || m.RecommendationPrompt == "" {
			return fmt.Errorf("ai.model prompt templates must not be empty")
		}
	default:
		return fmt.Errorf("unknown ai service %q (want %q or %q)", c.AI.Service, ServiceMock, ServiceModel)
	}
	return nil
}
