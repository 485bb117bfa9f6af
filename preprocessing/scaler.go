package preprocessing

import (
	"math"

	"github.com/YuminosukeSato/gshap/core/model"
	"github.com/YuminosukeSato/gshap/pkg/errors"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// StandardScaler はデータを平均0、標準偏差1に変換する
// 標準化された特徴量で学習したモデルの係数を、元のスケールのデータに対して
// 説明するために使う
type StandardScaler struct {
	// Mean は各特徴量の平均値
	Mean []float64

	// Scale は各特徴量の標準偏差（母標準偏差）
	Scale []float64
}

// NewStandardScaler は新しい未学習のStandardScalerを作成する
//
// 使用例:
//
//	scaler := preprocessing.NewStandardScaler()
//	err := scaler.Fit(background)
//	pred := preprocessing.Standardized(scaler, model.NewLinear(w, b))
func NewStandardScaler() *StandardScaler {
	return &StandardScaler{}
}

// Fit はデータから統計情報（平均、標準偏差）を計算する
func (s *StandardScaler) Fit(X mat.Matrix) error {
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return errors.Wrap(errors.ErrEmptyData, "StandardScaler.Fit")
	}

	s.Mean = make([]float64, c)
	s.Scale = make([]float64, c)
	col := make([]float64, r)
	for j := 0; j < c; j++ {
		mat.Col(col, j, X)
		mean, variance := stat.PopMeanVariance(col, nil)
		s.Mean[j] = mean
		s.Scale[j] = math.Sqrt(variance)

		// 標準偏差が0に近い場合は1に設定（ゼロ除算を避ける）
		if s.Scale[j] < 1e-8 {
			s.Scale[j] = 1.0
		}
	}
	return nil
}

// Transform は学習済みの統計情報を使ってデータを標準化する
func (s *StandardScaler) Transform(X mat.Matrix) (*mat.Dense, error) {
	if s.Mean == nil {
		return nil, errors.NewValueError("StandardScaler.Transform", "scaler is not fitted")
	}

	r, c := X.Dims()
	if c != len(s.Mean) {
		return nil, errors.NewShapeMismatchError("StandardScaler.Transform", len(s.Mean), c, 1)
	}

	result := mat.NewDense(r, c, nil)
	result.Apply(func(i, j int, v float64) float64 {
		return (v - s.Mean[j]) / s.Scale[j]
	}, X)
	return result, nil
}

// Standardized は入力を標準化してからpredに渡すPredictorを返す
func Standardized(s *StandardScaler, pred model.Predictor) model.Predictor {
	return model.PredictorFunc(func(X mat.Matrix) (mat.Matrix, error) {
		scaled, err := s.Transform(X)
		if err != nil {
			return nil, err
		}
		return pred.Predict(scaled)
	})
}
