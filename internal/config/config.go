// Package config loads run settings from defaults, an optional YAML file and
// SALES_* environment variables, in that order of precedence (env wins).
// Command-line flags are applied on top by the caller.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	"retail-sales-lab/internal/data"
	"retail-sales-lab/internal/db"
	apperrors "retail-sales-lab/internal/errors"
	"retail-sales-lab/internal/logging"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "SALES"

// Config represents the complete run configuration
type Config struct {
	Orders      int            `yaml:"orders" validate:"gte=0"`
	Seed        int64          `yaml:"seed"`
	OutputDir   string         `yaml:"output_dir" split_words:"true" validate:"required"`
	Charts      bool           `yaml:"charts"`
	Explain     bool           `yaml:"explain"`
	MetricsFile string         `yaml:"metrics_file" split_words:"true"`
	GroupBy     []string       `yaml:"group_by" split_words:"true" validate:"min=1"`
	Logging     logging.Config `yaml:"logging" envconfig:"LOG"`
	Store       db.Config      `yaml:"store" envconfig:"DB"`
}

// Default returns the settings used when nothing overrides them.
func Default() Config {
	return Config{
		Orders:    data.DefaultOrders,
		Seed:      data.DefaultSeed,
		OutputDir: "reports",
		Charts:    true,
		GroupBy:   []string{"category", "segment", "city"},
		Logging:   logging.DefaultConfig(),
		Store:     db.DefaultConfig(),
	}
}

// Load builds and validates the configuration. filePath may be empty.
func Load(filePath string) (*Config, error) {
	cfg, err := Read(filePath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Read builds the configuration without validating it, so callers can
// apply further overrides first. filePath may be empty.
func Read(filePath string) (*Config, error) {
	cfg := Default()

	if filePath != "" {
		if err := loadFromFile(filePath, &cfg); err != nil {
			return nil, apperrors.NewConfigError("failed to load config from file", err).
				WithContext("path", filePath)
		}
	}

	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, apperrors.NewConfigError("failed to load config from env", err)
	}
	return &cfg, nil
}

// loadFromFile overlays the YAML file on cfg. Keys missing from the file
// keep their current values.
func loadFromFile(filePath string, cfg *Config) error {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.UnmarshalStrict(content, cfg)
}

var validate = validator.New()

// Validate checks field constraints and reports every violation at once.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		verrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return apperrors.NewConfigError("config validation failed", err)
		}
		msgs := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			msgs = append(msgs, formatFieldError(fe))
		}
		appErr := apperrors.NewValidationError("invalid configuration: " + strings.Join(msgs, "; "))
		return appErr.WithContext("fields", len(verrs))
	}
	return nil
}

func formatFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Namespace())
	case "min":
		return fmt.Sprintf("%s needs at least %s entries", fe.Namespace(), fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be >= %s, got %v", fe.Namespace(), fe.Param(), fe.Value())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got %v", fe.Namespace(), fe.Param(), fe.Value())
	default:
		return fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag())
	}
}
