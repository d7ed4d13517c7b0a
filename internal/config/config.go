package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

const (
	DefaultInput         = "glass.xyz"
	DefaultDataDir       = "."
	DefaultExpectedAtoms = 496
	DefaultReshapeGroups = 3
	DefaultCoordOut      = "coords.npy"
	DefaultForceOut      = "forces.npy"
)

// Array fields that a serializer may persist.
const (
	FieldCoord  = "coord"
	FieldForce  = "force"
	FieldEnergy = "energy"
	FieldBox    = "box"
)

var DefaultSymbols = []string{"C", "H", "O", "P", "S", "Li"}

type Config struct {
	// Input is the trajectory reformatted by the coord/force pipeline.
	Input string `yaml:"input" env:"XYZPREP_INPUT"`
	// DataDir is the tree walked by the energy/box pipeline.
	DataDir string `yaml:"data_dir" env:"XYZPREP_DATA_DIR"`

	Symbols        []string `yaml:"symbols" env:"XYZPREP_SYMBOLS" envSeparator:","`
	UnknownSymbols string   `yaml:"unknown_symbols" env:"XYZPREP_UNKNOWN"`

	// ExpectedAtoms is the per-frame shape checked by the validation pass.
	// Zero disables the check.
	ExpectedAtoms int `yaml:"expected_atoms" env:"XYZPREP_ATOMS"`

	ReshapeGroups      int  `yaml:"reshape_groups" env:"XYZPREP_GROUPS"`
	RequireGroupFrames bool `yaml:"require_group_frames" env:"XYZPREP_STRICT_GROUPS"`

	Extensions []string `yaml:"extensions" env:"XYZPREP_EXTENSIONS" envSeparator:","`
	Fields     []string `yaml:"fields" env:"XYZPREP_FIELDS" envSeparator:","`

	CoordOut string `yaml:"coord_out" env:"XYZPREP_COORD_OUT"`
	ForceOut string `yaml:"force_out" env:"XYZPREP_FORCE_OUT"`
	Manifest bool   `yaml:"manifest" env:"XYZPREP_MANIFEST"`
}

func DefaultConfig() *Config {
	return &Config{
		Input:              DefaultInput,
		DataDir:            DefaultDataDir,
		Symbols:            append([]string(nil), DefaultSymbols...),
		UnknownSymbols:     "error",
		ExpectedAtoms:      DefaultExpectedAtoms,
		ReshapeGroups:      DefaultReshapeGroups,
		RequireGroupFrames: true,
		Extensions:         []string{".xyz"},
		Fields:             []string{FieldEnergy, FieldBox},
		CoordOut:           DefaultCoordOut,
		ForceOut:           DefaultForceOut,
	}
}

// Load decodes a YAML file over the defaults, applies XYZPREP_* environment
// overrides and validates the result. An empty path loads only defaults and
// environment.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
	}
	if err := ApplyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("check: %w", err)
	}
	return cfg, nil
}

// ApplyEnv overrides fields whose XYZPREP_* variable is set.
func ApplyEnv(cfg *Config) error {
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks that every option is usable.
func (c *Config) Validate() error {
	if c.ExpectedAtoms < 0 {
		return fmt.Errorf("expected_atoms cannot be negative")
	}
	if c.ReshapeGroups <= 0 {
		return fmt.Errorf("reshape_groups must be greater than 0")
	}
	switch c.UnknownSymbols {
	case "error", "drop":
	default:
		return fmt.Errorf("unknown_symbols must be error or drop, got %q", c.UnknownSymbols)
	}
	for _, s := range c.Symbols {
		if s == "" || strings.ContainsAny(s, " \t") {
			return fmt.Errorf("invalid element symbol %q", s)
		}
	}
	if len(c.Extensions) == 0 {
		return fmt.Errorf("at least one extension is required")
	}
	for _, e := range c.Extensions {
		if !strings.HasPrefix(e, ".") {
			return fmt.Errorf("extension %q must start with a dot", e)
		}
	}
	for _, f := range c.Fields {
		switch f {
		case FieldCoord, FieldForce, FieldEnergy, FieldBox:
		default:
			return fmt.Errorf("unknown field %q", f)
		}
	}
	if c.CoordOut == "" || c.ForceOut == "" {
		return fmt.Errorf("coord_out and force_out cannot be empty")
	}
	return nil
}

// HasField reports whether the field is persisted by the energy/box pipeline.
func (c *Config) HasField(name string) bool {
	for _, f := range c.Fields {
		if f == name {
			return true
		}
	}
	return false
}

func (c *Config) clone() *Config {
	out := *c
	out.Symbols = append([]string(nil), c.Symbols...)
	out.Extensions = append([]string(nil), c.Extensions...)
	out.Fields = append([]string(nil), c.Fields...)
	return &out
}
