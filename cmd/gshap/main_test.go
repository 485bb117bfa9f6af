package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/YuminosukeSato/gshap/core/model"
	"github.com/YuminosukeSato/gshap/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	backgroundCSV = "a,b\n0,0\n1,1\n2,2\n"
	dataCSV       = "a,b,y\n3,5,1\n4,1,0\n"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// runCLI executes the root command and returns stdout as feature -> value.
func runCLI(t *testing.T, args ...string) (map[string]float64, error) {
	t.Helper()
	cmd := newRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		return nil, err
	}

	values := make(map[string]float64)
	for _, line := range strings.Split(strings.TrimSpace(stdout.String()), "\n") {
		fields := strings.Split(line, "\t")
		require.Len(t, fields, 2, "line %q", line)
		v, err := strconv.ParseFloat(fields[1], 64)
		require.NoError(t, err)
		values[fields[0]] = v
	}
	return values, nil
}

func TestExplain(t *testing.T) {
	dir := t.TempDir()
	config := writeFile(t, dir, "run.yaml", `
background: `+writeFile(t, dir, "bg.csv", backgroundCSV)+`
data: `+writeFile(t, dir, "x.csv", dataCSV)+`
target: y
model:
  kind: linear
  coefficients: [1, 0]
summary:
  kind: mean
samples: 2000
seed: 1
`)

	values, err := runCLI(t, "explain", "--config", config)
	require.NoError(t, err)
	require.Len(t, values, 2)
	assert.InDelta(t, 2.5, values["a"], 0.1)
	assert.Equal(t, 0.0, values["b"])

	again, err := runCLI(t, "explain", "--config", config, "--workers", "2")
	require.NoError(t, err)
	assert.Equal(t, values, again)
}

func TestExplainStandardized(t *testing.T) {
	dir := t.TempDir()
	config := writeFile(t, dir, "run.yaml", `
background: `+writeFile(t, dir, "bg.csv", backgroundCSV)+`
data: `+writeFile(t, dir, "x.csv", dataCSV)+`
target: y
standardize: true
model:
  kind: linear
  coefficients: [1, 0]
samples: 2000
seed: 1
`)

	values, err := runCLI(t, "explain", "--config", config)
	require.NoError(t, err)
	// background column a has mean 1 and standard deviation sqrt(2/3)
	assert.InDelta(t, 2.5/0.816496580927726, values["a"], 0.15)
	assert.Equal(t, 0.0, values["b"])
}

func TestExplainFlagsOnly(t *testing.T) {
	dir := t.TempDir()
	config := writeFile(t, dir, "model.yaml", `
model:
  kind: logistic
  coefficients: [0.5, -0.5]
summary:
  kind: intergroup
  group_column: b
  group_value: 5
  distance: absolute
`)
	plot := filepath.Join(dir, "values.svg")

	values, err := runCLI(t, "explain",
		"--config", config,
		"--background", writeFile(t, dir, "bg.csv", backgroundCSV),
		"--data", writeFile(t, dir, "x.csv", dataCSV),
		"--target", "y",
		"--samples", "50",
		"--seed", "3",
		"--plot", plot,
	)
	require.NoError(t, err)
	assert.Len(t, values, 2)

	info, err := os.Stat(plot)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestExplainProbabilityModel(t *testing.T) {
	dir := t.TempDir()
	bg := writeFile(t, dir, "bg.csv", backgroundCSV)
	data := writeFile(t, dir, "x.csv", dataCSV)

	tests := []struct {
		name    string
		summary string
		check   func(t *testing.T, values map[string]float64)
	}{
		{
			name:    "mean of positive class",
			summary: "{kind: mean}",
			check: func(t *testing.T, values map[string]float64) {
				// raising a pushes p up, raising b pushes it down
				assert.Positive(t, values["a"])
				assert.Negative(t, values["b"])
			},
		},
		{
			name:    "hypothesis on positive class",
			summary: "{kind: hypothesis, threshold: 0.6, bootstrap_samples: 50}",
			check: func(t *testing.T, values map[string]float64) {
				assert.True(t, values["a"] != 0 || values["b"] != 0, "got %v", values)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := writeFile(t, dir, "run.yaml", "background: "+bg+"\ndata: "+data+
				"\ntarget: y\nmodel: {kind: logistic, coefficients: [3, -2]}\nsummary: "+tt.summary+
				"\nsamples: 500\nseed: 5\n")
			values, err := runCLI(t, "explain", "--config", config)
			require.NoError(t, err)
			require.Len(t, values, 2)
			tt.check(t, values)
		})
	}
}

func TestCompare(t *testing.T) {
	dir := t.TempDir()
	config := writeFile(t, dir, "run.yaml", `
background: `+writeFile(t, dir, "bg.csv", backgroundCSV)+`
data: `+writeFile(t, dir, "x.csv", dataCSV)+`
target: y
model:
  kind: linear
  coefficients: [1, 0]
seed: 2
`)

	values, err := runCLI(t, "compare", "--config", config, "--bootstrap-samples", "2000")
	require.NoError(t, err)
	assert.Equal(t, 3.5, values["data"])
	assert.InDelta(t, 1.0, values["background"], 0.05)
	assert.InDelta(t, 2.5, values["difference"], 0.05)
}

func TestScoreSummary(t *testing.T) {
	dir := t.TempDir()
	config := writeFile(t, dir, "run.yaml", `
background: `+writeFile(t, dir, "bg.csv", backgroundCSV)+`
data: `+writeFile(t, dir, "x.csv", dataCSV)+`
target: y
model:
  kind: logistic_label
  coefficients: [1, -1]
summary:
  kind: score
  metric: accuracy
samples: 20
seed: 4
`)

	values, err := runCLI(t, "explain", "--config", config)
	require.NoError(t, err)
	assert.Len(t, values, 2)
}

func TestConfigErrors(t *testing.T) {
	dir := t.TempDir()
	bg := writeFile(t, dir, "bg.csv", backgroundCSV)
	data := writeFile(t, dir, "x.csv", dataCSV)
	wide := writeFile(t, dir, "wide.csv", "a,b,c\n1,2,3\n")

	tests := []struct {
		name   string
		config string
	}{
		{"missing data", "background: " + bg + "\nmodel: {kind: linear, coefficients: [1, 0]}\n"},
		{"unknown summary", "background: " + bg + "\ndata: " + data + "\ntarget: y\nmodel: {kind: linear, coefficients: [1, 0]}\nsummary: {kind: median}\n"},
		{"unknown model", "background: " + bg + "\ndata: " + data + "\nmodel: {kind: forest, coefficients: [1]}\n"},
		{"score without target", "background: " + bg + "\ndata: " + data + "\nmodel: {kind: linear, coefficients: [1, 0]}\nsummary: {kind: score, metric: mse}\n"},
		{"negative samples", "background: " + bg + "\ndata: " + data + "\ntarget: y\nmodel: {kind: linear, coefficients: [1, 0]}\nsamples: -1\n"},
		{"column mismatch", "background: " + bg + "\ndata: " + wide + "\nmodel: {kind: linear, coefficients: [1, 0, 0]}\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := writeFile(t, dir, "bad.yaml", tt.config)
			_, err := runCLI(t, "explain", "--config", config)
			var argErr *errors.InvalidArgumentError
			assert.True(t, errors.As(err, &argErr), "got %v", err)
		})
	}
}

func TestValidateReportsYAMLField(t *testing.T) {
	cfg := &Config{
		Background: "bg.csv",
		Data:       "x.csv",
		Model:      model.ModelWeights{Kind: "linear", Coefficients: []float64{1}},
		Summary:    SummaryConfig{Kind: "median"},
	}
	err := cfg.Validate()
	var argErr *errors.InvalidArgumentError
	require.True(t, errors.As(err, &argErr), "got %v", err)
	assert.Equal(t, "summary.kind", argErr.ParamName)
}

func TestInvalidLogLevel(t *testing.T) {
	_, err := runCLI(t, "explain", "--log-level", "loud")
	var argErr *errors.InvalidArgumentError
	assert.True(t, errors.As(err, &argErr))
}
