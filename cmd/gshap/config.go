package main

import (
	"os"
	"reflect"
	"slices"
	"strings"

	"github.com/YuminosukeSato/gshap/core/model"
	"github.com/YuminosukeSato/gshap/dataset"
	"github.com/YuminosukeSato/gshap/metrics"
	"github.com/YuminosukeSato/gshap/pkg/errors"
	"github.com/YuminosukeSato/gshap/summary"
	"github.com/go-playground/validator/v10"
	"gonum.org/v1/gonum/mat"
	"gopkg.in/yaml.v3"
)

// Summary kinds accepted in the config file.
const (
	SummaryMean             = "mean"
	SummaryHypothesis       = "hypothesis"
	SummaryIntergroup       = "intergroup"
	SummaryEqualOpportunity = "equal_opportunity"
	SummaryProbability      = "probability"
	SummaryClassification   = "classification"
	SummaryScore            = "score"
)

// Config describes one attribution run.
type Config struct {
	// Background is the CSV of reference rows.
	Background string `yaml:"background" validate:"required"`
	// Data is the CSV of rows to explain.
	Data string `yaml:"data" validate:"required"`
	// Target is an optional column dropped from both tables before
	// explaining. Its values in Data are the true outcomes.
	Target string `yaml:"target,omitempty"`

	Model model.ModelWeights `yaml:"model"`

	// Standardize feeds the model features standardized with the
	// background's mean and standard deviation.
	Standardize bool          `yaml:"standardize,omitempty"`
	Summary     SummaryConfig `yaml:"summary"`

	// Samples is the number of draws per feature; 0 uses 2*P + 2048.
	Samples          int     `yaml:"samples,omitempty" validate:"gte=0"`
	BootstrapSamples int     `yaml:"bootstrap_samples,omitempty" validate:"gte=0"`
	Seed             *uint64 `yaml:"seed,omitempty"`
	// Workers is the number of features estimated concurrently; a negative
	// value uses every core.
	Workers  int    `yaml:"workers,omitempty"`
	Plot     string `yaml:"plot,omitempty"`
	LogLevel string `yaml:"log_level,omitempty"`
}

// SummaryConfig selects and parameterizes g.
type SummaryConfig struct {
	Kind string `yaml:"kind" validate:"omitempty,oneof=mean hypothesis intergroup equal_opportunity probability classification score"`

	// intergroup, equal_opportunity
	GroupColumn string   `yaml:"group_column,omitempty"`
	GroupValue  *float64 `yaml:"group_value,omitempty"`
	Distance    string   `yaml:"distance,omitempty"`

	// probability, classification
	Positive []int `yaml:"positive,omitempty"`
	Negative []int `yaml:"negative,omitempty"`

	// score
	Metric string `yaml:"metric,omitempty"`

	// hypothesis: probability that mean output exceeds Threshold
	Threshold        float64 `yaml:"threshold,omitempty"`
	BootstrapSamples int     `yaml:"bootstrap_samples,omitempty" validate:"gte=0"`
}

// LoadConfig reads a YAML config file.
func LoadConfig(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read config %s", path)
	}
	cfg := &Config{}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, errors.Wrapf(err, "parse config %s", path)
	}
	return cfg, nil
}

var configValidate = newConfigValidator()

// newConfigValidator reports fields by their YAML names.
func newConfigValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks the fields every run needs.
func (c *Config) Validate() error {
	if err := configValidate.Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			field := strings.TrimPrefix(fe.Namespace(), "Config.")
			return errors.NewInvalidArgumentError(field, "failed '"+fe.Tag()+"' validation", fe.Value())
		}
		return errors.Wrap(err, "validate config")
	}
	if err := c.Model.Validate(); err != nil {
		return err
	}

	switch c.Summary.Kind {
	case SummaryIntergroup:
		if c.Summary.GroupColumn == "" {
			return errors.NewInvalidArgumentError("summary.group_column", "required for intergroup", nil)
		}
	case SummaryEqualOpportunity:
		if c.Summary.GroupColumn == "" || c.Target == "" {
			return errors.NewInvalidArgumentError("summary.group_column", "equal_opportunity needs group_column and target", nil)
		}
	case SummaryScore:
		if c.Target == "" {
			return errors.NewInvalidArgumentError("target", "required for score", nil)
		}
	}
	return nil
}

// workers maps the config value to an explainer worker count.
func (c *Config) workers() int {
	switch {
	case c.Workers < 0:
		return 0
	case c.Workers == 0:
		return 1
	default:
		return c.Workers
	}
}

// inputs are the loaded tables of a run.
type inputs struct {
	background *dataset.Frame
	data       *dataset.Frame
	// target holds the Target column of data, nil without a target.
	target []float64
}

func loadInputs(c *Config) (*inputs, error) {
	bg, err := dataset.LoadCSV(c.Background)
	if err != nil {
		return nil, err
	}
	data, err := dataset.LoadCSV(c.Data)
	if err != nil {
		return nil, err
	}

	in := &inputs{background: bg, data: data}
	if c.Target != "" {
		if in.data, in.target, err = data.Drop(c.Target); err != nil {
			return nil, errors.Wrap(err, "data")
		}
		if slices.Contains(bg.Columns(), c.Target) {
			if in.background, _, err = bg.Drop(c.Target); err != nil {
				return nil, errors.Wrap(err, "background")
			}
		}
	}

	if !slices.Equal(in.background.Columns(), in.data.Columns()) {
		return nil, errors.NewInvalidArgumentError("data", "columns differ from background columns", in.data.Columns())
	}
	if f := c.Model.Features; len(f) > 0 && !slices.Equal(f, in.data.Columns()) {
		return nil, errors.NewInvalidArgumentError("model.features", "must match data columns in order", f)
	}
	return in, nil
}

// buildSummary constructs g. It may narrow in.data, e.g. to the
// observations a classification distance concerns.
func buildSummary(c *Config, pred model.Predictor, in *inputs) (summary.Summary, error) {
	sc := c.Summary
	switch sc.Kind {
	case "", SummaryMean:
		return summary.PositiveMean{}, nil

	case SummaryHypothesis:
		b := sc.BootstrapSamples
		if b == 0 {
			b = summary.DefaultBootstrapSamples
		}
		threshold := sc.Threshold
		return summary.NewHypothesisTest(
			func(out mat.Matrix) (float64, error) { return summary.PositiveMean{}.Summarize(out) },
			func(s float64) bool { return s > threshold },
			b, nil,
		)

	case SummaryIntergroup, SummaryEqualOpportunity:
		group, err := groupMask(in.data, sc)
		if err != nil {
			return nil, err
		}
		distance, err := summary.ParseDistance(sc.Distance)
		if err != nil {
			return nil, err
		}
		if sc.Kind == SummaryIntergroup {
			return summary.NewIntergroupDifference(group, distance)
		}
		y := make([]bool, len(in.target))
		for i, v := range in.target {
			y[i] = v == 1
		}
		return summary.NewEqualOpportunity(group, y, distance)

	case SummaryProbability:
		var pos, neg []summary.Density
		for _, k := range sc.Positive {
			pos = append(pos, summary.ClassProbability(k))
		}
		for _, k := range sc.Negative {
			neg = append(neg, summary.ClassProbability(k))
		}
		return summary.NewProbabilityDistance(pos, neg)

	case SummaryClassification:
		g, err := summary.NewClassificationDistance(sc.Positive, sc.Negative)
		if err != nil {
			return nil, err
		}
		selected, err := g.SelectObservations(pred, in.data.Dense)
		if err != nil {
			return nil, err
		}
		if selected != in.data.Dense {
			if in.data, err = dataset.NewFrame(in.data.Columns(), selected); err != nil {
				return nil, err
			}
		}
		return g, nil

	case SummaryScore:
		metric, err := metrics.ByName(sc.Metric)
		if err != nil {
			return nil, err
		}
		return summary.NewScore(metric, in.target)
	}
	return nil, errors.NewInvalidArgumentError("summary.kind", "unknown summary", sc.Kind)
}

func groupMask(data *dataset.Frame, sc SummaryConfig) ([]bool, error) {
	col, err := data.Column(sc.GroupColumn)
	if err != nil {
		return nil, err
	}
	value := 1.0
	if sc.GroupValue != nil {
		value = *sc.GroupValue
	}
	group := make([]bool, len(col))
	for i, v := range col {
		group[i] = v == value
	}
	return group, nil
}
