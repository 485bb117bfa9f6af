package summary

import (
	"math"

	"github.com/YuminosukeSato/gshap/core/model"
	"github.com/YuminosukeSato/gshap/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// ClassificationDistance is how much more likely observations are to be
// classified into one of the Positive classes than into one of the Negative
// classes: pos / (pos + neg).
//
// Single-column output holds hard labels and pos/neg are label counts.
// Multi-column output holds class probabilities and pos/neg are the mean
// probability mass of the respective classes. An empty class list means
// every class not in the other list.
type ClassificationDistance struct {
	Positive []int
	Negative []int
}

// NewClassificationDistance requires at least one class list.
func NewClassificationDistance(positive, negative []int) (*ClassificationDistance, error) {
	if len(positive) == 0 && len(negative) == 0 {
		return nil, errors.NewInvalidArgumentError("classes", "positive and negative class lists are both empty", nil)
	}
	return &ClassificationDistance{Positive: positive, Negative: negative}, nil
}

// Summarize implements Summary.
func (d *ClassificationDistance) Summarize(output mat.Matrix) (float64, error) {
	r, c := output.Dims()
	if r == 0 || c == 0 {
		return 0, errors.NewValueError("ClassificationDistance", "empty output")
	}

	var pos, neg float64
	if c == 1 {
		for i := 0; i < r; i++ {
			label := int(output.At(i, 0))
			if d.isPositive(label) {
				pos++
			}
			if d.isNegative(label) {
				neg++
			}
		}
	} else {
		for _, k := range append(append([]int(nil), d.Positive...), d.Negative...) {
			if k < 0 || k >= c {
				return 0, errors.NewInvalidArgumentError("class", "out of range for output columns", k)
			}
		}
		col := make([]float64, r)
		for k := 0; k < c; k++ {
			mat.Col(col, k, output)
			mass := floats.Sum(col) / float64(r)
			if d.isPositive(k) {
				pos += mass
			}
			if d.isNegative(k) {
				neg += mass
			}
		}
	}

	share := pos / (pos + neg)
	if !errors.IsFinite(share) {
		errors.Warn(errors.NewUndefinedMetricWarning("ClassificationDistance", "no observation in positive or negative classes", math.NaN()))
		return math.NaN(), nil
	}
	return share, nil
}

// SelectObservations keeps the rows of X that pred classifies into one of
// the listed classes. When either list is empty every class is relevant and
// X is returned unchanged.
func (d *ClassificationDistance) SelectObservations(pred model.Predictor, X *mat.Dense) (*mat.Dense, error) {
	if len(d.Positive) == 0 || len(d.Negative) == 0 {
		return X, nil
	}
	out, err := pred.Predict(X)
	if err != nil {
		return nil, err
	}
	r, c := out.Dims()
	rows, _ := X.Dims()
	if r != rows {
		return nil, errors.NewShapeMismatchError("SelectObservations", rows, r, 0)
	}

	var keep []int
	for i := 0; i < r; i++ {
		label := int(out.At(i, 0))
		if c > 1 {
			label = argmax(mat.Row(nil, i, out))
		}
		if contains(d.Positive, label) || contains(d.Negative, label) {
			keep = append(keep, i)
		}
	}
	if len(keep) == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "SelectObservations: no rows in the listed classes")
	}

	_, p := X.Dims()
	selected := mat.NewDense(len(keep), p, nil)
	for dst, i := range keep {
		selected.SetRow(dst, X.RawRowView(i))
	}
	return selected, nil
}

func (d *ClassificationDistance) isPositive(class int) bool {
	if len(d.Positive) == 0 {
		return !contains(d.Negative, class)
	}
	return contains(d.Positive, class)
}

func (d *ClassificationDistance) isNegative(class int) bool {
	if len(d.Negative) == 0 {
		return !contains(d.Positive, class)
	}
	return contains(d.Negative, class)
}

func contains(classes []int, class int) bool {
	for _, c := range classes {
		if c == class {
			return true
		}
	}
	return false
}

func argmax(v []float64) int {
	best := 0
	for i := range v {
		if v[i] > v[best] {
			best = i
		}
	}
	return best
}
