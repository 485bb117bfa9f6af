package model

import (
	"github.com/YuminosukeSato/gshap/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Linear は係数が固定された線形モデル y = Xw + b
// 学習は行わない。既知の係数を持つモデルを説明するための参照実装
type Linear struct {
	Weights   []float64
	Intercept float64
}

// NewLinear は新しいLinearを作成する
func NewLinear(weights []float64, intercept float64) *Linear {
	w := make([]float64, len(weights))
	copy(w, weights)
	return &Linear{Weights: w, Intercept: intercept}
}

// Predict は (n_samples × 1) の予測値を返す
func (l *Linear) Predict(X mat.Matrix) (mat.Matrix, error) {
	scores, err := linearScores("Linear.Predict", X, l.Weights, l.Intercept)
	if err != nil {
		return nil, err
	}
	return mat.NewDense(len(scores), 1, scores), nil
}

// Logistic は係数が固定された二値ロジスティック回帰
// Hardがfalseの場合は (n_samples × 2) のクラス確率を、
// trueの場合は (n_samples × 1) の0/1ラベルを返す
type Logistic struct {
	Weights   []float64
	Intercept float64
	Threshold float64 // Hardの場合の陽性判定閾値（0ならば0.5）
	Hard      bool
}

// NewLogistic は確率を出力するLogisticを作成する
func NewLogistic(weights []float64, intercept float64) *Logistic {
	w := make([]float64, len(weights))
	copy(w, weights)
	return &Logistic{Weights: w, Intercept: intercept}
}

// Predict は確率またはラベルを返す
func (l *Logistic) Predict(X mat.Matrix) (mat.Matrix, error) {
	scores, err := linearScores("Logistic.Predict", X, l.Weights, l.Intercept)
	if err != nil {
		return nil, err
	}

	n := len(scores)
	if l.Hard {
		threshold := l.Threshold
		if threshold == 0 {
			threshold = 0.5
		}
		labels := make([]float64, n)
		for i, s := range scores {
			if errors.Logistic(s) >= threshold {
				labels[i] = 1
			}
		}
		return mat.NewDense(n, 1, labels), nil
	}

	proba := mat.NewDense(n, 2, nil)
	for i, s := range scores {
		p := errors.Logistic(s)
		proba.Set(i, 0, 1-p)
		proba.Set(i, 1, p)
	}
	return proba, nil
}

func linearScores(op string, X mat.Matrix, weights []float64, intercept float64) ([]float64, error) {
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return nil, errors.NewValueError(op, "empty data")
	}
	if c != len(weights) {
		return nil, errors.NewShapeMismatchError(op, len(weights), c, 1)
	}

	w := mat.NewVecDense(c, weights)
	scores := mat.NewVecDense(r, nil)
	scores.MulVec(X, w)

	out := make([]float64, r)
	for i := range out {
		out[i] = scores.AtVec(i) + intercept
	}
	return out, nil
}
