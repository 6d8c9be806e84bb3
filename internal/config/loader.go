package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Load merges defaults, the global config, the project config, an explicit
// file (if non-empty) and BACKLOG_* environment overrides, in that order.
func Load(explicit string) (*Config, error) {
	home, _ := os.UserHomeDir()
	cwd, _ := os.Getwd()
	return LoadFrom(home, cwd, explicit)
}

// LoadFrom is Load with the home and working directories supplied.
// Missing global or project files are skipped; a missing explicit file is
// an error.
func LoadFrom(home, cwd, explicit string) (*Config, error) {
	cfg := DefaultConfig()

	var paths []string
	if home != "" {
		paths = append(paths, GlobalConfigPath(home))
	}
	if cwd != "" {
		paths = append(paths, ProjectConfigPath(cwd))
	}
	for _, path := range paths {
		if err := loadFile(path, cfg); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", path, err)
		}
	}

	if explicit != "" {
		if err := loadFile(explicit, cfg); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", explicit, err)
		}
	}

	applyEnv(cfg)

	if cfg.Ordering.BatchSize < 0 {
		return nil, fmt.Errorf("ordering.batch_size must be >= 0, got %d", cfg.Ordering.BatchSize)
	}
	cfg.DB.Path = expandHome(cfg.DB.Path, home)
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	if _, err := os.Stat(path); err != nil {
		return err
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return err
	}

	return v.Unmarshal(cfg)
}

func applyEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv("BACKLOG_DB")); v != "" {
		cfg.DB.Path = v
	}
	if v := strings.TrimSpace(os.Getenv("BACKLOG_PROJECT")); v != "" {
		cfg.Project.Default = v
	}
	if v := strings.TrimSpace(os.Getenv("BACKLOG_LOG_LEVEL")); v != "" {
		cfg.Log.Level = v
	}
}

func expandHome(path, home string) string {
	if home == "" || !strings.HasPrefix(path, "~/") {
		return path
	}
	return filepath.Join(home, path[2:])
}

// GlobalConfigPath returns the global config file under home
func GlobalConfigPath(home string) string {
	return filepath.Join(home, ".backlog", "config.yaml")
}

// ProjectConfigPath returns the project config file under dir
func ProjectConfigPath(dir string) string {
	return filepath.Join(dir, ".backlog", "config.yaml")
}
