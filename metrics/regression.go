// Package metrics は予測精度の評価指標を提供する
// summary.Score と組み合わせると、精度の劣化をG-SHAPで説明できる
package metrics

import (
	"math"

	"github.com/YuminosukeSato/gshap/pkg/errors"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Metric は (yTrue, yPred) からスカラーを計算する評価指標
type Metric func(yTrue, yPred *mat.VecDense) (float64, error)

// checkPair は長さの検証を行い、両ベクトルの値をスライスとして返す
func checkPair(op string, yTrue, yPred *mat.VecDense) ([]float64, []float64, error) {
	if yTrue == nil || yPred == nil || yTrue.Len() == 0 {
		return nil, nil, errors.NewValueError(op, "empty vector")
	}
	n := yTrue.Len()
	if yPred.Len() != n {
		return nil, nil, errors.NewShapeMismatchError(op, n, yPred.Len(), 0)
	}
	return mat.Col(nil, 0, yTrue), mat.Col(nil, 0, yPred), nil
}

// MSE は平均二乗誤差（Mean Squared Error）を計算する
func MSE(yTrue, yPred *mat.VecDense) (float64, error) {
	t, p, err := checkPair("MSE", yTrue, yPred)
	if err != nil {
		return 0, err
	}
	var sum float64
	for i := range t {
		d := t[i] - p[i]
		sum += d * d
	}
	return sum / float64(len(t)), nil
}

// RMSE は平方根平均二乗誤差を計算する
func RMSE(yTrue, yPred *mat.VecDense) (float64, error) {
	mse, err := MSE(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return math.Sqrt(mse), nil
}

// MAE は平均絶対誤差（Mean Absolute Error）を計算する
func MAE(yTrue, yPred *mat.VecDense) (float64, error) {
	t, p, err := checkPair("MAE", yTrue, yPred)
	if err != nil {
		return 0, err
	}
	var sum float64
	for i := range t {
		sum += math.Abs(t[i] - p[i])
	}
	return sum / float64(len(t)), nil
}

// R2Score は決定係数（R²）を計算する
func R2Score(yTrue, yPred *mat.VecDense) (float64, error) {
	t, p, err := checkPair("R2Score", yTrue, yPred)
	if err != nil {
		return 0, err
	}

	// 全変動（TSS）と残差変動（RSS）
	mean := stat.Mean(t, nil)
	var tss, rss float64
	for i := range t {
		tss += (t[i] - mean) * (t[i] - mean)
		rss += (t[i] - p[i]) * (t[i] - p[i])
	}

	if tss == 0 {
		return 0, errors.NewValueError("R2Score", "total sum of squares is zero (no variance in yTrue)")
	}
	return 1 - rss/tss, nil
}

// Accuracy はラベルが一致する割合を計算する
func Accuracy(yTrue, yPred *mat.VecDense) (float64, error) {
	t, p, err := checkPair("Accuracy", yTrue, yPred)
	if err != nil {
		return 0, err
	}
	correct := 0
	for i := range t {
		if t[i] == p[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(t)), nil
}

// ByName は設定ファイルのキーから評価指標を返す
func ByName(name string) (Metric, error) {
	switch name {
	case "mse":
		return MSE, nil
	case "rmse":
		return RMSE, nil
	case "mae":
		return MAE, nil
	case "r2":
		return R2Score, nil
	case "accuracy":
		return Accuracy, nil
	default:
		return nil, errors.NewInvalidArgumentError("metric", "must be one of mse, rmse, mae, r2, accuracy", name)
	}
}
