package summary

import (
	"github.com/YuminosukeSato/gshap/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Density returns, for every output row, the probability that the row was
// generated by some distribution.
type Density func(output mat.Matrix) ([]float64, error)

// ClassProbability is the density given by column k of probability output.
func ClassProbability(k int) Density {
	return func(output mat.Matrix) ([]float64, error) {
		_, c := output.Dims()
		if k < 0 || k >= c {
			return nil, errors.NewInvalidArgumentError("class", "out of range for output columns", k)
		}
		r, _ := output.Dims()
		col := make([]float64, r)
		mat.Col(col, k, output)
		return col, nil
	}
}

// ProbabilityDistance is the probability that every output row came from a
// positive rather than a negative density:
//
//	1 / (1 + prod_i p_neg[i] / p_pos[i])
//
// p_pos and p_neg sum their respective density lists. An empty list is
// the complement of the other one.
type ProbabilityDistance struct {
	Positive []Density
	Negative []Density
}

// NewProbabilityDistance requires at least one density.
func NewProbabilityDistance(positive, negative []Density) (*ProbabilityDistance, error) {
	if len(positive) == 0 && len(negative) == 0 {
		return nil, errors.NewInvalidArgumentError("densities", "positive and negative density lists are both empty", nil)
	}
	return &ProbabilityDistance{Positive: positive, Negative: negative}, nil
}

// Summarize implements Summary. The product of ratios is accumulated in log
// space so near-zero positive probabilities saturate instead of overflowing.
func (p *ProbabilityDistance) Summarize(output mat.Matrix) (float64, error) {
	if len(p.Positive) == 0 && len(p.Negative) == 0 {
		return 0, errors.NewInvalidArgumentError("densities", "positive and negative density lists are both empty", nil)
	}

	var pPos, pNeg []float64
	var err error
	if len(p.Positive) > 0 {
		if pPos, err = sumDensities(p.Positive, output); err != nil {
			return 0, err
		}
	}
	if len(p.Negative) > 0 {
		if pNeg, err = sumDensities(p.Negative, output); err != nil {
			return 0, err
		}
	}
	if pPos == nil {
		pPos = complement(pNeg)
	}
	if pNeg == nil {
		pNeg = complement(pPos)
	}
	if len(pPos) != len(pNeg) {
		return 0, errors.NewShapeMismatchError("ProbabilityDistance", len(pPos), len(pNeg), 0)
	}

	// log prod(p_neg/p_pos)
	var logOdds float64
	for i := range pPos {
		logOdds += errors.StabilizeLog(pNeg[i]) - errors.StabilizeLog(pPos[i])
	}
	return errors.Logistic(-logOdds), nil
}

func sumDensities(funcs []Density, output mat.Matrix) ([]float64, error) {
	var total []float64
	for _, f := range funcs {
		p, err := f(output)
		if err != nil {
			return nil, err
		}
		if total == nil {
			total = make([]float64, len(p))
		} else if len(p) != len(total) {
			return nil, errors.NewShapeMismatchError("ProbabilityDistance", len(total), len(p), 0)
		}
		for i, v := range p {
			total[i] += v
		}
	}
	return total, nil
}

func complement(p []float64) []float64 {
	out := make([]float64, len(p))
	for i, v := range p {
		out[i] = 1 - v
	}
	return out
}
