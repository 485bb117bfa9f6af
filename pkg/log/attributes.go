// Package log defines standard attribute keys for attribution runs.
//
// Keys follow a hierarchical naming convention (e.g. "data.samples",
// "gshap.nsamples") so log lines from the explainer, the summary functions
// and the CLI can be filtered the same way.

package log

// Model and operation context.
const (
	// ModelNameKey identifies the explained model, e.g. "Linear", "Logistic".
	ModelNameKey = "model.name"

	// OperationKey names the operation being performed.
	// Standard values are the Operation* constants below.
	OperationKey = "ml.operation"

	// ComponentKey identifies the package or subsystem emitting the record.
	ComponentKey = "ml.component"

	// SummaryKey names the summary function g being explained.
	SummaryKey = "gshap.summary"

	// RunIDKey correlates every record of one CLI invocation.
	RunIDKey = "run.id"
)

// Data shape.
const (
	// SamplesKey is the number of rows of the explained matrix.
	SamplesKey = "data.samples"

	// FeaturesKey is the number of columns (P).
	FeaturesKey = "data.features"

	// BackgroundRowsKey is the number of background rows (N).
	BackgroundRowsKey = "data.background_rows"
)

// Estimation parameters and results.
const (
	// FeatureKey is the zero-based feature index being attributed.
	FeatureKey = "gshap.feature"

	// NSamplesKey is the number of Monte Carlo draws per feature.
	NSamplesKey = "gshap.nsamples"

	// BootstrapSamplesKey is the number of bootstrap resamples in Compare.
	BootstrapSamplesKey = "gshap.bootstrap_samples"

	// WorkersKey is the size of the per-feature worker pool.
	WorkersKey = "gshap.workers"

	// ValueKey carries an estimated attribution.
	ValueKey = "gshap.value"

	// RandomSeedKey records the seed for reproducibility.
	RandomSeedKey = "config.random_seed"
)

// Performance.
const (
	// DurationMsKey records the execution time of an operation in milliseconds.
	DurationMsKey = "perf.duration_ms"
)

// Error context.
const (
	// ErrorCodeKey provides a structured error code.
	ErrorCodeKey = "error.code"

	// SuggestionKey provides a hint for resolving the problem.
	SuggestionKey = "error.suggestion"
)

// Standard attribute values.
const (
	OperationValues  = "values"
	OperationValue   = "value"
	OperationCompare = "compare"

	ErrorShapeMismatch  = "SHAPE_MISMATCH"
	ErrorInvalidFeature = "INVALID_FEATURE"
	ErrorInvalidArg     = "INVALID_ARGUMENT"
)
