package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/xpbd2d/internal/collision"
	"github.com/san-kum/xpbd2d/internal/constraint"
	"github.com/san-kum/xpbd2d/internal/world"
)

const (
	DefaultScene    = "ragdoll"
	DefaultDt       = world.DefaultDt
	DefaultDuration = 5.0
	DefaultPipeline = "gjk"
)

var ErrInvalidConfig = errors.New("config: invalid")

// Config describes one run: which scene to build, for how long, and the
// step tunables passed to every world.Step.
type Config struct {
	Scene             string  `yaml:"scene"`
	Dt                float64 `yaml:"dt"`
	Duration          float64 `yaml:"duration"`
	Substeps          int     `yaml:"substeps"`
	Gravity           float64 `yaml:"gravity"`
	Damping           float64 `yaml:"damping"`
	SpringStiffness   float64 `yaml:"spring_stiffness"`
	PointerStiffness  float64 `yaml:"pointer_stiffness"`
	ContactCompliance float64 `yaml:"contact_compliance"`
	Pipeline          string  `yaml:"pipeline"`
	// Collisions adds a collision constraint for every body pair on top of
	// whatever the scene declares.
	Collisions bool `yaml:"collisions"`
}

func DefaultConfig() *Config {
	return &Config{
		Scene:            DefaultScene,
		Dt:               DefaultDt,
		Duration:         DefaultDuration,
		Substeps:         world.DefaultSubsteps,
		Gravity:          world.DefaultGravity,
		Damping:          world.DefaultDamping,
		SpringStiffness:  world.DefaultSpringStiffness,
		PointerStiffness: world.DefaultPointerStiffness,
		Pipeline:         DefaultPipeline,
	}
}

// Load reads a YAML file over the defaults, so a file only needs the fields
// it changes.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if c.Dt <= 0 {
		return fmt.Errorf("%w: dt must be positive, got %v", ErrInvalidConfig, c.Dt)
	}
	if c.Duration <= 0 {
		return fmt.Errorf("%w: duration must be positive, got %v", ErrInvalidConfig, c.Duration)
	}
	if c.ContactCompliance < 0 {
		return fmt.Errorf("%w: contact_compliance must be non-negative", ErrInvalidConfig)
	}
	p, err := c.Params()
	if err != nil {
		return err
	}
	if err := p.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// Params converts the file form into the tunables world.Step reads.
func (c *Config) Params() (world.Params, error) {
	pipeline, err := collision.ParsePipeline(c.Pipeline)
	if err != nil {
		return world.Params{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return world.Params{
		Gravity:          c.Gravity,
		Damping:          c.Damping,
		SpringStiffness:  c.SpringStiffness,
		PointerStiffness: c.PointerStiffness,
		Substeps:         c.Substeps,
		Pipeline:         pipeline,
	}, nil
}

// Steps is the number of frames the duration covers.
func (c *Config) Steps() int {
	return int(c.Duration/c.Dt + 0.5)
}

// Apply carries the contact settings onto a freshly built world: every
// existing collision constraint takes ContactCompliance, and Collisions adds
// one constraint per body pair that does not already have one.
func (c *Config) Apply(w *world.World) error {
	type pair struct{ a, b int }
	seen := make(map[pair]bool)
	for i := range w.Constraints {
		k := &w.Constraints[i]
		if k.Kind != constraint.KindCollision {
			continue
		}
		k.Compliance = c.ContactCompliance
		seen[pair{min(k.Body1, k.Body2), max(k.Body1, k.Body2)}] = true
	}
	if !c.Collisions {
		return nil
	}
	for i := range w.Bodies {
		for j := i + 1; j < len(w.Bodies); j++ {
			if seen[pair{i, j}] {
				continue
			}
			if _, err := w.AddCollision(c.ContactCompliance, i, j); err != nil {
				return err
			}
		}
	}
	return nil
}
