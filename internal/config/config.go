// Package config loads training configuration from YAML.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/happyhackingspace/seqlearn/model"
	"github.com/happyhackingspace/seqlearn/perceptron"
)

// Config is the training configuration.
type Config struct {
	Store              model.Kind   `yaml:"store" json:"store"`
	Order              int          `yaml:"order" json:"order"`
	Epochs             int          `yaml:"epochs" json:"epochs"`
	LearningRate       float64      `yaml:"learning_rate" json:"learning_rate"`
	Averaged           bool         `yaml:"averaged" json:"averaged"`
	LossAugmented      bool         `yaml:"loss_augmented" json:"loss_augmented"`
	AnnotatedWeight    float64      `yaml:"annotated_weight" json:"annotated_weight"`
	NonAnnotatedWeight float64      `yaml:"non_annotated_weight" json:"non_annotated_weight"`
	DefaultLabel       string       `yaml:"default_label" json:"default_label"`
	Kernel             model.Kernel `yaml:"kernel" json:"kernel"`
	Shuffle            bool         `yaml:"shuffle" json:"shuffle"`
	Seed               int64        `yaml:"seed" json:"seed"`
	Workers            int          `yaml:"workers" json:"workers"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	p := perceptron.DefaultConfig()
	return Config{
		Store:              model.Sparse,
		Order:              1,
		Epochs:             p.Epochs,
		LearningRate:       p.LearningRate,
		Averaged:           p.Averaged,
		AnnotatedWeight:    p.AnnotatedWeight,
		NonAnnotatedWeight: p.NonAnnotatedWeight,
		Kernel:             model.DefaultKernel(),
		Seed:               p.Seed,
	}
}

// Load reads a YAML file over the defaults. Keys missing from the file keep
// their default value.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects out-of-range values.
func (c Config) Validate() error {
	switch c.Store {
	case model.Dense, model.Sparse, model.Dual:
	default:
		return fmt.Errorf("%w: %q", model.ErrUnknownKind, c.Store)
	}
	if c.Order != 1 && c.Order != 2 {
		return fmt.Errorf("order must be 1 or 2, got %d", c.Order)
	}
	if c.Epochs < 1 {
		return fmt.Errorf("epochs must be positive, got %d", c.Epochs)
	}
	if c.LearningRate <= 0 {
		return fmt.Errorf("learning_rate must be positive, got %v", c.LearningRate)
	}
	if c.AnnotatedWeight < 0 || c.NonAnnotatedWeight < 0 {
		return fmt.Errorf("loss weights must not be negative")
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", c.Workers)
	}
	if c.Store == model.Dual {
		if err := c.Kernel.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Perceptron returns the trainer settings of the configuration.
func (c Config) Perceptron() perceptron.Config {
	return perceptron.Config{
		Epochs:             c.Epochs,
		LearningRate:       c.LearningRate,
		Averaged:           c.Averaged,
		LossAugmented:      c.LossAugmented,
		AnnotatedWeight:    c.AnnotatedWeight,
		NonAnnotatedWeight: c.NonAnnotatedWeight,
		Shuffle:            c.Shuffle,
		Seed:               c.Seed,
	}
}

// Save writes the configuration as YAML.
func Save(cfg Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
