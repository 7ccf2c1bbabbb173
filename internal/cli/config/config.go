package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/tomrplummer/blue-eyes/internal/project"
)

// ConfigName is the base name of the project config file
const ConfigName = "blue-eyes"

// Config represents the blue-eyes project configuration
type Config struct {
	Paths    PathsConfig    `mapstructure:"paths"`
	Router   RouterConfig   `mapstructure:"router"`
	Generate GenerateConfig `mapstructure:"generate"`
	Database DatabaseConfig `mapstructure:"database"`
	Log      LogConfig      `mapstructure:"log"`
}

// PathsConfig locates the shared files generation mutates
type PathsConfig struct {
	Registry  string `mapstructure:"registry"`
	Router    string `mapstructure:"router"`
	Templates string `mapstructure:"templates"`
}

// RouterConfig configures the router splice
type RouterConfig struct {
	Marker string `mapstructure:"marker"`
}

// GenerateConfig configures artifact generation
type GenerateConfig struct {
	Overwrite bool `mapstructure:"overwrite"`
}

// DatabaseConfig represents database configuration
type DatabaseConfig struct {
	URL string `mapstructure:"url"`
}

// LogConfig configures diagnostic logging
type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

// Load loads blue-eyes.yml or blue-eyes.yaml from root. A missing file
// yields the defaults.
func Load(root string) (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("paths.registry", project.DefaultRegistry)
	v.SetDefault("paths.router", project.DefaultRouter)
	v.SetDefault("paths.templates", ".blue-eyes/templates")
	v.SetDefault("router.marker", "run ApplicationController")
	v.SetDefault("generate.overwrite", false)
	v.SetDefault("database.url", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")

	// Set config name and paths
	v.SetConfigName(ConfigName)
	v.SetConfigType("yaml")
	v.AddConfigPath(root)

	// Enable environment variable support: BLUE_EYES_ROUTER_MARKER etc.
	v.SetEnvPrefix("BLUE_EYES")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file if it exists
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found - use defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate configuration
	if err := validateConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// Layout returns the project layout described by the config
func (c *Config) Layout(root string) project.Layout {
	return project.Layout{Root: root, Registry: c.Paths.Registry, Router: c.Paths.Router}
}

// DatabaseURL resolves the application database URL: the environment
// first, then the project's .env file, then the config file.
func (c *Config) DatabaseURL(root string) string {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url
	}

	env, err := godotenv.Read(filepath.Join(root, project.EnvFile))
	if err == nil && env["DATABASE_URL"] != "" {
		return env["DATABASE_URL"]
	}

	return c.Database.URL
}

// InProject checks if root holds a blue-eyes application
func InProject(root string) bool {
	if _, err := os.Stat(filepath.Join(root, "app")); err != nil {
		return false
	}
	for _, name := range []string{project.DefaultRouter, ConfigName + ".yaml", ConfigName + ".yml"} {
		if _, err := os.Stat(filepath.Join(root, name)); err == nil {
			return true
		}
	}
	return false
}

// FindProjectRoot walks up from dir looking for an application root
func FindProjectRoot(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}

	for {
		if InProject(dir) {
			return dir, nil
		}

		// Move up one directory
		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			return "", fmt.Errorf("not in a blue-eyes project (no app/ with config.ru or blue-eyes.yaml found)")
		}
		dir = parent
	}
}

// validateConfig validates the configuration
func validateConfig(cfg *Config) error {
	for key, path := range map[string]string{
		"paths.registry": cfg.Paths.Registry,
		"paths.router":   cfg.Paths.Router,
	} {
		if err := validateRelPath(key, path); err != nil {
			return err
		}
	}

	if strings.TrimSpace(cfg.Router.Marker) == "" {
		return fmt.Errorf("router.marker must not be empty")
	}

	switch strings.ToLower(cfg.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be one of debug, info, warn, error, got: %s", cfg.Log.Level)
	}

	return nil
}

func validateRelPath(key, path string) error {
	if path == "" {
		return fmt.Errorf("%s must not be empty", key)
	}
	if filepath.IsAbs(path) {
		return fmt.Errorf("%s must be relative to the project root, got: %s", key, path)
	}
	cleaned := filepath.Clean(path)
	if cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) {
		return fmt.Errorf("%s must stay inside the project root, got: %s", key, path)
	}
	return nil
}
