package main

import (
	"fmt"
	"time"

	"github.com/YuminosukeSato/gshap/explainer"
	"github.com/YuminosukeSato/gshap/pkg/errors"
	"github.com/YuminosukeSato/gshap/pkg/log"
	"github.com/YuminosukeSato/gshap/preprocessing"
	"github.com/YuminosukeSato/gshap/report"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// flags holds command-line values that override the config file.
type flags struct {
	config           string
	background       string
	data             string
	target           string
	samples          int
	bootstrapSamples int
	seed             uint64
	workers          int
	plot             string
	logLevel         string
}

func newRootCmd() *cobra.Command {
	f := &flags{}

	rootCmd := &cobra.Command{
		Use:           "gshap",
		Short:         "Generalized Shapley value attribution for fixed models",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&f.config, "config", "c", "", "YAML config file")
	pf.StringVar(&f.background, "background", "", "background CSV (overrides config)")
	pf.StringVar(&f.data, "data", "", "CSV of rows to explain (overrides config)")
	pf.StringVar(&f.target, "target", "", "target column dropped before explaining")
	pf.Uint64Var(&f.seed, "seed", 0, "random seed for reproducible estimates")
	pf.IntVar(&f.workers, "workers", 1, "features estimated concurrently (negative: all cores)")
	pf.StringVar(&f.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	explainCmd := &cobra.Command{
		Use:   "explain",
		Short: "Estimate the attribution of every feature",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return errors.SafeExecute("explain", func() error { return runExplain(cmd, f) })
		},
	}
	explainCmd.Flags().IntVarP(&f.samples, "samples", "n", 0, "draws per feature (0: 2*P + 2048)")
	explainCmd.Flags().StringVar(&f.plot, "plot", "", "write a bar chart to this .png or .svg file")

	compareCmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare g on the data with g on background resamples",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return errors.SafeExecute("compare", func() error { return runCompare(cmd, f) })
		},
	}
	compareCmd.Flags().IntVar(&f.bootstrapSamples, "bootstrap-samples", explainer.DefaultBootstrapSamples, "background resamples")

	rootCmd.AddCommand(explainCmd, compareCmd)
	return rootCmd
}

// resolveConfig loads the config file, if any, and applies flags the user set.
func resolveConfig(cmd *cobra.Command, f *flags) (*Config, error) {
	cfg := &Config{}
	if f.config != "" {
		loaded, err := LoadConfig(f.config)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	changed := cmd.Flags().Changed
	if changed("background") {
		cfg.Background = f.background
	}
	if changed("data") {
		cfg.Data = f.data
	}
	if changed("target") {
		cfg.Target = f.target
	}
	if changed("samples") {
		cfg.Samples = f.samples
	}
	if changed("bootstrap-samples") || cfg.BootstrapSamples == 0 {
		cfg.BootstrapSamples = f.bootstrapSamples
	}
	if changed("seed") {
		seed := f.seed
		cfg.Seed = &seed
	}
	if changed("workers") {
		cfg.Workers = f.workers
	}
	if changed("plot") {
		cfg.Plot = f.plot
	}
	if changed("log-level") || cfg.LogLevel == "" {
		cfg.LogLevel = f.logLevel
	}

	if err := log.SetupLogger(cfg.LogLevel, cmd.ErrOrStderr()); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setup builds the explainer and loads the rows to explain.
func setup(cmd *cobra.Command, f *flags) (*Config, *explainer.KernelExplainer, *inputs, log.Logger, error) {
	cfg, err := resolveConfig(cmd, f)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	runID := uuid.NewString()
	logger := log.GetLoggerWithName("cli").With(log.RunIDKey, runID)

	in, err := loadInputs(cfg)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	bgRows, p := in.background.Dims()
	rows, _ := in.data.Dims()
	logger.Info("Loaded inputs",
		log.BackgroundRowsKey, bgRows,
		log.SamplesKey, rows,
		log.FeaturesKey, p,
	)

	pred, err := cfg.Model.Build()
	if err != nil {
		return nil, nil, nil, nil, err
	}
	if cfg.Standardize {
		scaler := preprocessing.NewStandardScaler()
		if err := scaler.Fit(in.background); err != nil {
			return nil, nil, nil, nil, err
		}
		pred = preprocessing.Standardized(scaler, pred)
	}
	g, err := buildSummary(cfg, pred, in)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	opts := []explainer.Option{
		explainer.WithSummary(g),
		explainer.WithWorkers(cfg.workers()),
		explainer.WithLogger(log.GetLoggerWithName("explainer").With(log.RunIDKey, runID)),
	}
	if cfg.Seed != nil {
		opts = append(opts, explainer.WithSeed(*cfg.Seed))
	}
	ex, err := explainer.NewKernelExplainer(pred, in.background, opts...)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	logger.Debug("Explainer ready",
		log.ModelNameKey, cfg.Model.Kind,
		log.SummaryKey, summaryName(cfg),
	)
	return cfg, ex, in, logger, nil
}

func runExplain(cmd *cobra.Command, f *flags) error {
	cfg, ex, in, logger, err := setup(cmd, f)
	if err != nil {
		return err
	}

	nsamples := cfg.Samples
	if nsamples == 0 {
		nsamples = ex.NSamples()
	}

	start := time.Now()
	values, err := ex.ValuesContext(cmd.Context(), in.data, nsamples)
	if err != nil {
		return err
	}
	logger.Info("Attributions estimated",
		log.NSamplesKey, nsamples,
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)

	labels := in.data.Columns()
	out := cmd.OutOrStdout()
	for j, v := range values {
		fmt.Fprintf(out, "%s\t%.6f\n", labels[j], v)
	}

	if cfg.Plot != "" {
		chart, err := report.BarChart(values, labels, "G-SHAP values ("+summaryName(cfg)+")")
		if err != nil {
			return err
		}
		if err := chart.Save(cfg.Plot); err != nil {
			return err
		}
	}
	return nil
}

func runCompare(cmd *cobra.Command, f *flags) error {
	cfg, ex, in, _, err := setup(cmd, f)
	if err != nil {
		return err
	}

	cmp, err := ex.Compare(in.data, cfg.BootstrapSamples)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "data\t%.6f\n", cmp.Data)
	fmt.Fprintf(out, "background\t%.6f\n", cmp.Background)
	fmt.Fprintf(out, "difference\t%.6f\n", cmp.Data-cmp.Background)
	return nil
}

func summaryName(cfg *Config) string {
	if cfg.Summary.Kind == "" {
		return SummaryMean
	}
	return cfg.Summary.Kind
}
