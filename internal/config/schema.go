package config

// Config represents the full backlog configuration
type Config struct {
	DB       DBConfig       `yaml:"db" mapstructure:"db"`
	Project  ProjectConfig  `yaml:"project" mapstructure:"project"`
	Ordering OrderingConfig `yaml:"ordering" mapstructure:"ordering"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// DBConfig locates the SQLite database
type DBConfig struct {
	// Path may start with ~/; empty means ~/.backlog/backlog.db
	Path string `yaml:"path" mapstructure:"path"`
}

// ProjectConfig holds project defaults for commands run without --project
type ProjectConfig struct {
	Default string `yaml:"default" mapstructure:"default"`
}

// OrderingConfig tunes reindex writes
type OrderingConfig struct {
	// BatchSize is positions per write batch; 0 writes a group in one transaction
	BatchSize int `yaml:"batch_size" mapstructure:"batch_size"`
}

// LogConfig configures structured logging
type LogConfig struct {
	Level string `yaml:"level" mapstructure:"level"`
}
