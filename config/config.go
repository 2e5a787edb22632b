// Package config loads training settings from defaults, an optional config
// file and ZEROPLAY_* environment variables, in increasing priority.
package config

import (
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

type Config struct {
	Game           string  `mapstructure:"game"`
	MCTSIterations int     `mapstructure:"mcts_iterations"`
	TrainingSize   int     `mapstructure:"training_size"`
	Exploration    float64 `mapstructure:"exploration"`
	Temperature    float64 `mapstructure:"temperature"`
	Workers        int     `mapstructure:"workers"`
	Generations    int     `mapstructure:"generations"`
	Dir            string  `mapstructure:"dir"`
	Seed           uint64  `mapstructure:"seed"`
	Hidden         int     `mapstructure:"hidden"`
	LearningRate   float64 `mapstructure:"learning_rate"`
	Epochs         int     `mapstructure:"epochs"`
	Replay         int     `mapstructure:"replay"`
	LogLevel       string  `mapstructure:"log_level"`
}

var defaults = map[string]any{
	"game":            "tictactoe",
	"mcts_iterations": 80,
	"training_size":   230,
	"exploration":     1.4,
	"temperature":     1.0,
	"workers":         1,
	"generations":     0,
	"dir":             "",
	"seed":            1,
	"hidden":          64,
	"learning_rate":   0.01,
	"epochs":          10,
	"replay":          0,
	"log_level":       "info",
}

// Load reads the config file at path, if any, over the defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetEnvPrefix("ZEROPLAY")
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "read config %s", path)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "decode config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Game) == "":
		return errors.New("game must be set")
	case c.MCTSIterations <= 0:
		return errors.Errorf("mcts_iterations must be positive, got %d", c.MCTSIterations)
	case c.TrainingSize <= 0:
		return errors.Errorf("training_size must be positive, got %d", c.TrainingSize)
	case c.Exploration <= 0:
		return errors.Errorf("exploration must be positive, got %g", c.Exploration)
	case c.Temperature < 0:
		return errors.Errorf("temperature cannot be negative, got %g", c.Temperature)
	case c.Workers <= 0:
		return errors.Errorf("workers must be positive, got %d", c.Workers)
	}
	return nil
}

// CheckpointDir is Dir, or data/<game>-nn when Dir is empty.
func (c *Config) CheckpointDir() string {
	if c.Dir != "" {
		return c.Dir
	}
	return filepath.Join("data", c.Game+"-nn")
}
