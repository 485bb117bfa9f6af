package model

import (
	"github.com/YuminosukeSato/gshap/pkg/errors"
)

// 対応するモデルの種類
const (
	KindLinear        = "linear"
	KindLogistic      = "logistic"
	KindLogisticLabel = "logistic_label"
)

// ModelWeights はモデルの係数を表す構造体（設定ファイルからの読み込み用）
type ModelWeights struct {
	// Kind はモデルの種類（linear, logistic, logistic_label）
	Kind string `yaml:"kind" json:"kind"`

	// Coefficients は重み係数
	Coefficients []float64 `yaml:"coefficients" json:"coefficients"`

	// Intercept は切片
	Intercept float64 `yaml:"intercept" json:"intercept"`

	// Threshold はlogistic_labelの陽性判定閾値
	Threshold float64 `yaml:"threshold,omitempty" json:"threshold,omitempty"`

	// Features は特徴量の名前（オプション）。背景データの列順と一致している必要がある
	Features []string `yaml:"features,omitempty" json:"features,omitempty"`
}

// Validate はModelWeightsの妥当性を検証
func (mw *ModelWeights) Validate() error {
	switch mw.Kind {
	case KindLinear, KindLogistic, KindLogisticLabel:
	default:
		return errors.NewInvalidArgumentError("model.kind", "must be one of linear, logistic, logistic_label", mw.Kind)
	}

	if len(mw.Coefficients) == 0 {
		return errors.NewInvalidArgumentError("model.coefficients", "must not be empty", mw.Coefficients)
	}

	if len(mw.Features) > 0 && len(mw.Features) != len(mw.Coefficients) {
		return errors.NewShapeMismatchError("ModelWeights.Validate", len(mw.Coefficients), len(mw.Features), 1)
	}

	if mw.Threshold < 0 || mw.Threshold >= 1 {
		return errors.NewInvalidArgumentError("model.threshold", "must be in [0, 1)", mw.Threshold)
	}

	return nil
}

// Build はModelWeightsから対応するPredictorを構築する
func (mw *ModelWeights) Build() (Predictor, error) {
	if err := mw.Validate(); err != nil {
		return nil, err
	}

	switch mw.Kind {
	case KindLinear:
		return NewLinear(mw.Coefficients, mw.Intercept), nil
	case KindLogisticLabel:
		l := NewLogistic(mw.Coefficients, mw.Intercept)
		l.Hard = true
		l.Threshold = mw.Threshold
		return l, nil
	default:
		return NewLogistic(mw.Coefficients, mw.Intercept), nil
	}
}
