package model

import "gonum.org/v1/gonum/mat"

// Predictor は説明対象のモデルのインターフェース
// (n_samples × n_features) の行列を受け取り、(n_samples × k) の出力を返す
type Predictor interface {
	// Predict は入力データに対する予測を行う
	Predict(X mat.Matrix) (mat.Matrix, error)
}

// PredictorFunc は関数をPredictorとして扱うためのアダプタ
type PredictorFunc func(X mat.Matrix) (mat.Matrix, error)

// Predict はfを呼び出す
func (f PredictorFunc) Predict(X mat.Matrix) (mat.Matrix, error) {
	return f(X)
}

// Column は出力行列の列jをスライスとして返す
func Column(out mat.Matrix, j int) []float64 {
	r, _ := out.Dims()
	col := make([]float64, r)
	mat.Col(col, j, out)
	return col
}

// PositiveColumn は行ごとの陽性側の値を返す
// 1列出力ならその列、確率出力（Logisticなど）なら列1の陽性クラス確率
func PositiveColumn(out mat.Matrix) []float64 {
	if _, c := out.Dims(); c > 1 {
		return Column(out, 1)
	}
	return Column(out, 0)
}
