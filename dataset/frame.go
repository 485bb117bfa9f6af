// Package dataset normalizes tabular inputs into the numeric matrices the
// explainer works on.
//
// Every public entry point of the explainer runs its inputs through AsDense
// exactly once. Column labels travel alongside the numbers in a Frame; label
// lookup is a separate step (ColumnIndex) producing a plain integer index.
package dataset

import (
	"github.com/YuminosukeSato/gshap/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Labeled is implemented by matrices that carry column labels.
type Labeled interface {
	Columns() []string
}

// Frame is a numeric matrix with optional column labels.
type Frame struct {
	*mat.Dense
	columns []string
}

var (
	_ mat.Matrix = (*Frame)(nil)
	_ Labeled    = (*Frame)(nil)
)

// NewFrame wraps data with labels. columns may be nil; otherwise its length
// must equal the column count of data.
func NewFrame(columns []string, data *mat.Dense) (*Frame, error) {
	if data == nil || data.IsEmpty() {
		return nil, errors.Wrap(errors.ErrEmptyData, "NewFrame")
	}
	_, c := data.Dims()
	if columns != nil && len(columns) != c {
		return nil, errors.NewShapeMismatchError("NewFrame", c, len(columns), 1)
	}
	var cols []string
	if columns != nil {
		cols = make([]string, len(columns))
		copy(cols, columns)
	}
	return &Frame{Dense: data, columns: cols}, nil
}

// FromRows builds an unlabeled Frame from row slices. Every row must have
// the same length.
func FromRows(rows [][]float64) (*Frame, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "FromRows")
	}
	p := len(rows[0])
	data := make([]float64, 0, len(rows)*p)
	for i, row := range rows {
		if len(row) != p {
			return nil, errors.Wrapf(errors.NewShapeMismatchError("FromRows", p, len(row), 1), "row %d", i)
		}
		data = append(data, row...)
	}
	return &Frame{Dense: mat.NewDense(len(rows), p, data)}, nil
}

// FromRow builds a 1×P Frame from a single observation.
func FromRow(row []float64) (*Frame, error) {
	return FromRows([][]float64{row})
}

// Columns returns a copy of the column labels, or nil when unlabeled.
func (f *Frame) Columns() []string {
	if f.columns == nil {
		return nil
	}
	out := make([]string, len(f.columns))
	copy(out, f.columns)
	return out
}

// Column returns the values of the labeled column name.
func (f *Frame) Column(name string) ([]float64, error) {
	j, err := ColumnIndex(f, name)
	if err != nil {
		return nil, err
	}
	r, _ := f.Dims()
	col := make([]float64, r)
	mat.Col(col, j, f.Dense)
	return col, nil
}

// Drop returns a new Frame without column name, plus the dropped values.
// This splits a target column off a loaded dataset.
func (f *Frame) Drop(name string) (*Frame, []float64, error) {
	j, err := ColumnIndex(f, name)
	if err != nil {
		return nil, nil, err
	}
	r, c := f.Dims()
	if c == 1 {
		return nil, nil, errors.NewInvalidArgumentError("column", "cannot drop the only column", name)
	}

	target := make([]float64, r)
	mat.Col(target, j, f.Dense)

	rest := mat.NewDense(r, c-1, nil)
	cols := make([]string, 0, c-1)
	for k, dst := 0, 0; k < c; k++ {
		if k == j {
			continue
		}
		for i := 0; i < r; i++ {
			rest.Set(i, dst, f.At(i, k))
		}
		cols = append(cols, f.columns[k])
		dst++
	}
	return &Frame{Dense: rest, columns: cols}, target, nil
}

// AsDense coerces any accepted input into a *mat.Dense. A mat.Vector is a
// single observation and becomes a 1×P row; a Frame yields its numbers.
// The returned matrix may share storage with X and must not be mutated.
func AsDense(X mat.Matrix) (*mat.Dense, error) {
	if X == nil {
		return nil, errors.Wrap(errors.ErrEmptyData, "AsDense")
	}

	switch x := X.(type) {
	case *Frame:
		if x == nil || x.Dense == nil || x.Dense.IsEmpty() {
			return nil, errors.Wrap(errors.ErrEmptyData, "AsDense")
		}
		return x.Dense, nil
	case mat.Vector:
		if v, ok := x.(*mat.VecDense); ok && v == nil {
			return nil, errors.Wrap(errors.ErrEmptyData, "AsDense")
		}
		n := x.Len()
		if n == 0 {
			return nil, errors.Wrap(errors.ErrEmptyData, "AsDense")
		}
		row := mat.NewDense(1, n, nil)
		for j := 0; j < n; j++ {
			row.Set(0, j, x.AtVec(j))
		}
		return row, nil
	case *mat.Dense:
		if x == nil || x.IsEmpty() {
			return nil, errors.Wrap(errors.ErrEmptyData, "AsDense")
		}
		return x, nil
	}

	r, c := X.Dims()
	if r == 0 || c == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "AsDense")
	}
	return mat.DenseCopyOf(X), nil
}

// ColumnIndex resolves a column label positionally in X's own labels.
func ColumnIndex(X mat.Matrix, name string) (int, error) {
	_, c := X.Dims()
	labeled, ok := X.(Labeled)
	if !ok || labeled.Columns() == nil {
		return 0, errors.NewInvalidFeatureError("ColumnIndex", name, c, "input has no column labels")
	}
	for j, col := range labeled.Columns() {
		if col == name {
			return j, nil
		}
	}
	return 0, errors.NewInvalidFeatureError("ColumnIndex", name, c, "column not found")
}
