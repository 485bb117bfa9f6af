package explainer

import (
	"github.com/YuminosukeSato/gshap/dataset"
	"github.com/YuminosukeSato/gshap/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Feature identifies the feature whose attribution is estimated.
// It is either an Index or a Name.
type Feature interface {
	resolve(X mat.Matrix, p int) (int, error)
}

// Index is a zero-based column position.
type Index int

// Name is a column label, looked up positionally in the labels of the
// explained matrix (not the background's).
type Name string

func (i Index) resolve(_ mat.Matrix, p int) (int, error) {
	if int(i) < 0 || int(i) >= p {
		return 0, errors.NewInvalidFeatureError("Value", int(i), p, "index out of range")
	}
	return int(i), nil
}

func (n Name) resolve(X mat.Matrix, p int) (int, error) {
	j, err := dataset.ColumnIndex(X, string(n))
	if err != nil {
		return 0, err
	}
	if j >= p {
		return 0, errors.NewInvalidFeatureError("Value", string(n), p, "label position out of range")
	}
	return j, nil
}
