// Package config loads application configuration from file and environment
// and initializes the global logger.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Prepare PrepareConfig `yaml:"prepare" mapstructure:"prepare"`
	Store   StoreConfig   `yaml:"store" mapstructure:"store"`
	Server  ServerConfig  `yaml:"server" mapstructure:"server"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// PrepareConfig configures the data preparation pipelines.
type PrepareConfig struct {
	InputDir        string `yaml:"input_dir" mapstructure:"input_dir"`
	OutputDir       string `yaml:"output_dir" mapstructure:"output_dir"`
	ChunkSize       int    `yaml:"chunk_size" mapstructure:"chunk_size"`
	PersonaMaxWords int    `yaml:"persona_max_words" mapstructure:"persona_max_words"`
	SortPolicyFile  string `yaml:"sort_policy_file" mapstructure:"sort_policy_file"`
}

// StoreConfig configures the run-history backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// ServerConfig configures the viewer data server.
type ServerConfig struct {
	Port    int    `yaml:"port" mapstructure:"port"`
	DataDir string `yaml:"data_dir" mapstructure:"data_dir"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("VIEWER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("prepare.input_dir", "evals")
	v.SetDefault("prepare.output_dir", "viewer/evals/data")
	v.SetDefault("prepare.chunk_size", 25)
	v.SetDefault("prepare.persona_max_words", 10)
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "viewer_runs.db")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.data_dir", "viewer/evals/data")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
