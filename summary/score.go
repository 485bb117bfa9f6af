package summary

import (
	"github.com/YuminosukeSato/gshap/metrics"
	"github.com/YuminosukeSato/gshap/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Score evaluates a metric between known targets and the model output.
// Explaining it attributes accuracy degradation to features.
type Score struct {
	Metric metrics.Metric
	YTrue  *mat.VecDense
	// Column selects the output column compared against YTrue.
	Column int
}

// NewScore creates a Score comparing column 0 of the output with yTrue.
func NewScore(metric metrics.Metric, yTrue []float64) (*Score, error) {
	if metric == nil {
		return nil, errors.NewInvalidArgumentError("metric", "must not be nil", nil)
	}
	if len(yTrue) == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "NewScore")
	}
	y := make([]float64, len(yTrue))
	copy(y, yTrue)
	return &Score{Metric: metric, YTrue: mat.NewVecDense(len(y), y)}, nil
}

// Summarize implements Summary.
func (s *Score) Summarize(output mat.Matrix) (float64, error) {
	r, c := output.Dims()
	if s.Column < 0 || s.Column >= c {
		return 0, errors.NewInvalidArgumentError("column", "out of range for output columns", s.Column)
	}
	if r != s.YTrue.Len() {
		return 0, errors.NewShapeMismatchError("Score", s.YTrue.Len(), r, 0)
	}
	yPred := mat.NewVecDense(r, nil)
	for i := 0; i < r; i++ {
		yPred.SetVec(i, output.At(i, s.Column))
	}
	return s.Metric(s.YTrue, yPred)
}
