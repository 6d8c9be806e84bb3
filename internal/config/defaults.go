package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Ordering: OrderingConfig{
			BatchSize: 50,
		},
		Log: LogConfig{
			Level: "warn",
		},
	}
}

// WriteDefault writes a commented default configuration to path
func WriteDefault(path string) error {
	content := `# backlog configuration

db:
  # path: ~/.backlog/backlog.db

project:
  # default: my-project

ordering:
  # positions written per batch while reindexing; 0 = whole group at once
  batch_size: 50

log:
  level: warn  # debug | info | warn | error
`
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}
