package automation

import (
	"context"
	"fmt"
	"os"

	"github.com/san-kum/xyzprep/internal/config"
	"github.com/san-kum/xyzprep/internal/pipeline"
	"github.com/san-kum/xyzprep/internal/report"
	"github.com/san-kum/xyzprep/internal/walker"
	"gopkg.in/yaml.v3"
)

// Job kinds.
const (
	KindReformat = "reformat"
	KindExtract  = "extract"
)

// Batch is a scripted list of conversions run in order.
type Batch struct {
	Name  string `yaml:"name"`
	Jobs  []Job  `yaml:"jobs"`
	Quiet bool   `yaml:"quiet"`
}

// Job is one reformat of a file or one extract over a directory tree.
type Job struct {
	Kind   string `yaml:"kind"`
	Preset string `yaml:"preset"`
	// Input is the trajectory for reformat and the root directory for extract.
	Input  string `yaml:"input"`
	Output string `yaml:"output"`

	Symbols       []string `yaml:"symbols"`
	ExpectedAtoms *int     `yaml:"expected_atoms"`
	ReshapeGroups *int     `yaml:"reshape_groups"`
	Fields        []string `yaml:"fields"`
}

// LoadBatch loads a batch from a YAML file
func LoadBatch(path string) (*Batch, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var b Batch
	if err := yaml.Unmarshal(data, &b); err != nil {
		return nil, err
	}
	for i, j := range b.Jobs {
		if j.Kind != KindReformat && j.Kind != KindExtract {
			return nil, fmt.Errorf("job %d: unknown kind %q", i+1, j.Kind)
		}
	}
	return &b, nil
}

// Config resolves the job onto base, or onto its preset when one is named.
func (j *Job) Config(base *config.Config) (*config.Config, error) {
	var cfg *config.Config
	if j.Preset != "" {
		cfg = config.GetPreset(j.Preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s", j.Preset)
		}
	} else {
		c := *base
		cfg = &c
	}
	if j.Symbols != nil {
		cfg.Symbols = j.Symbols
	}
	if j.ExpectedAtoms != nil {
		cfg.ExpectedAtoms = *j.ExpectedAtoms
	}
	if j.ReshapeGroups != nil {
		cfg.ReshapeGroups = *j.ReshapeGroups
	}
	if j.Fields != nil {
		cfg.Fields = j.Fields
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Outcome counts what one job produced.
type Outcome struct {
	Job     Job
	Files   int
	Written []string
}

// RunBatch executes every job in order and stops at the first failure.
func RunBatch(ctx context.Context, b *Batch, base *config.Config, rep *report.Reporter) ([]Outcome, error) {
	outcomes := make([]Outcome, 0, len(b.Jobs))

	for i, job := range b.Jobs {
		if err := ctx.Err(); err != nil {
			return outcomes, err
		}
		rep.Infof("Running job %d/%d: %s %s", i+1, len(b.Jobs), job.Kind, job.Input)

		cfg, err := job.Config(base)
		if err != nil {
			return outcomes, fmt.Errorf("job %d: %w", i+1, err)
		}

		out := Outcome{Job: job}
		switch job.Kind {
		case KindReformat:
			input := job.Input
			if input == "" {
				input = cfg.Input
			}
			dir := job.Output
			if dir == "" {
				dir = "."
			}
			res, err := pipeline.CoordForce(cfg, input, dir, rep)
			if err != nil {
				return outcomes, fmt.Errorf("job %d: %w", i+1, err)
			}
			out.Files = 1
			out.Written = res.Written
		case KindExtract:
			root := job.Input
			if root == "" {
				root = cfg.DataDir
			}
			n, err := walker.Walk(ctx, root, cfg.Extensions, func(path, base string) error {
				rep.File(path)
				res, err := pipeline.EnergyBox(cfg, path, base, rep)
				if err != nil {
					return err
				}
				out.Written = append(out.Written, res.Written...)
				return nil
			})
			if err != nil {
				return outcomes, fmt.Errorf("job %d: %w", i+1, err)
			}
			out.Files = n
		}
		outcomes = append(outcomes, out)
	}

	return outcomes, nil
}
