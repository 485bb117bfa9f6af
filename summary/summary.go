// Package summary provides the scalar summaries g explained by G-SHAP.
//
// A Summary maps the full output of a model over a dataset to one number:
// the mean prediction, the probability that a hypothesis holds, the gap
// between two groups, or the odds that predictions came from a positive
// rather than a negative distribution. The explainer attributes changes in
// that number to input features.
package summary

import (
	"math/rand/v2"

	"github.com/YuminosukeSato/gshap/core/model"
	"github.com/YuminosukeSato/gshap/pkg/errors"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Summary maps model output (rows × k) to a scalar.
type Summary interface {
	Summarize(output mat.Matrix) (float64, error)
}

// Randomized is implemented by summaries that draw random numbers. The
// explainer hands them its per-feature stream so seeded runs stay
// reproducible at any worker count.
type Randomized interface {
	Summary
	SummarizeRand(output mat.Matrix, rng *rand.Rand) (float64, error)
}

// Func adapts a plain function into a Summary.
type Func func(output mat.Matrix) (float64, error)

// Summarize calls f.
func (f Func) Summarize(output mat.Matrix) (float64, error) {
	return f(output)
}

// Mean is the arithmetic mean of every entry of the output. It is the
// default summary and yields classical (mean-prediction) SHAP values.
type Mean struct{}

// Summarize implements Summary.
func (Mean) Summarize(output mat.Matrix) (float64, error) {
	r, c := output.Dims()
	if r == 0 || c == 0 {
		return 0, errors.NewValueError("Mean", "empty output")
	}
	return mat.Sum(output) / float64(r*c), nil
}

// PositiveMean is the mean of the positive-class column: column 1 of
// probability output, column 0 of single-column output. Averaging both
// columns of (1-p, p) would always give 0.5.
type PositiveMean struct{}

// Summarize implements Summary.
func (PositiveMean) Summarize(output mat.Matrix) (float64, error) {
	r, c := output.Dims()
	if r == 0 || c == 0 {
		return 0, errors.NewValueError("PositiveMean", "empty output")
	}
	return stat.Mean(model.PositiveColumn(output), nil), nil
}

// Call evaluates g on output, using rng when g is Randomized and rng is non-nil.
func Call(g Summary, output mat.Matrix, rng *rand.Rand) (float64, error) {
	if rs, ok := g.(Randomized); ok && rng != nil {
		return rs.SummarizeRand(output, rng)
	}
	return g.Summarize(output)
}
