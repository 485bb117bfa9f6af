// Package errors はG-SHAP推定全体のエラーハンドリングと警告システムを提供します。
// 形状の不一致、特徴量の解決失敗、不正な引数を構造化されたエラー型として表現します。
package errors

import (
	"fmt"
	"log"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

// ===========================================================================
//
//	グローバル警告ハンドリング
//
// ===========================================================================
var (
	warningMutex   sync.Mutex
	warningHandler = func(w error) {
		// デフォルトのハンドラは標準エラー出力にログを出す
		log.Printf("gshap-Warning: %v\n", w)
	}
	// zerologロガー（循環importを避けるため遅延初期化）
	zerologWarnFunc func(warning error)
)

// SetWarningHandler はライブラリ全体の警告ハンドラを設定します。
//
// 例:
//
//	errors.SetWarningHandler(func(w error) {
//	    // 警告を無視する
//	})
func SetWarningHandler(handler func(w error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	warningHandler = handler
}

// SetZerologWarnFunc はzerolog警告関数を設定します（循環importを避けるため）。
func SetZerologWarnFunc(warnFunc func(warning error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	zerologWarnFunc = warnFunc
}

// Warn は警告を発生させます。
// zerologが設定されている場合は構造化ログとして出力し、そうでなければ従来のハンドラを使用します。
func Warn(w error) {
	warningMutex.Lock()
	defer warningMutex.Unlock()

	if zerologWarnFunc != nil {
		zerologWarnFunc(w)
		return
	}

	if warningHandler != nil {
		warningHandler(w)
	}
}

// ===========================================================================
//
//	警告型
//
// ===========================================================================

// UndefinedMetricWarning は要約統計量が計算できない場合に発生する警告です。
// 例えば、あるグループに属する観測が一つもなく、グループ条件付き平均が定義されない場合など。
type UndefinedMetricWarning struct {
	Metric    string
	Condition string
	Result    float64 // この条件で返される値
}

func (w *UndefinedMetricWarning) Error() string {
	return fmt.Sprintf("'%s' is ill-defined and being set to %f due to %s.", w.Metric, w.Result, w.Condition)
}

// MarshalZerologObject はzerologのイベントに構造化された警告情報を追加します。
func (w *UndefinedMetricWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Str("metric", w.Metric).
		Str("condition", w.Condition).
		Float64("result", w.Result).
		Str("type", "UndefinedMetricWarning")
}

// NewUndefinedMetricWarning は新しいUndefinedMetricWarningを作成します。
func NewUndefinedMetricWarning(metric, condition string, result float64) *UndefinedMetricWarning {
	return &UndefinedMetricWarning{Metric: metric, Condition: condition, Result: result}
}

// ===========================================================================
//
//	構造化されたエラー型
//
// ===========================================================================

// ShapeMismatchError は入力データの形状が期待値と異なる場合のエラーです。
// 説明対象データと背景データの特徴量数の不一致（Axis=1）や、
// 出力とグループベクトルの行数の不一致（Axis=0）を表します。
type ShapeMismatchError struct {
	Op       string
	Expected int
	Got      int
	Axis     int // 0 for rows, 1 for columns/features
}

func (e *ShapeMismatchError) axisName() string {
	if e.Axis == 0 {
		return "rows"
	}
	return "features"
}

func (e *ShapeMismatchError) Error() string {
	return fmt.Sprintf("gshap: %s: shape mismatch on axis %d (%s). Expected %d, got %d", e.Op, e.Axis, e.axisName(), e.Expected, e.Got)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *ShapeMismatchError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Int("expected", e.Expected).
		Int("got", e.Got).
		Int("axis", e.Axis).
		Str("axis_name", e.axisName()).
		Str("type", "ShapeMismatchError")
}

// NewShapeMismatchError は新しいShapeMismatchErrorを作成し、スタックトレースを付与します。
func NewShapeMismatchError(op string, expected, got, axis int) error {
	err := &ShapeMismatchError{Op: op, Expected: expected, Got: got, Axis: axis}
	return errors.WithStack(err)
}

// InvalidFeatureError は特徴量の識別子が範囲外、または列名が解決できない場合のエラーです。
type InvalidFeatureError struct {
	Op        string
	Feature   interface{} // 整数インデックスまたは列名
	NFeatures int
	Reason    string
}

func (e *InvalidFeatureError) Error() string {
	return fmt.Sprintf("gshap: %s: invalid feature %v: %s (n_features=%d)", e.Op, e.Feature, e.Reason, e.NFeatures)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *InvalidFeatureError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Interface("feature", e.Feature).
		Int("n_features", e.NFeatures).
		Str("reason", e.Reason).
		Str("type", "InvalidFeatureError")
}

// NewInvalidFeatureError は新しいInvalidFeatureErrorを作成し、スタックトレースを付与します。
func NewInvalidFeatureError(op string, feature interface{}, nFeatures int, reason string) error {
	err := &InvalidFeatureError{Op: op, Feature: feature, NFeatures: nFeatures, Reason: reason}
	return errors.WithStack(err)
}

// InvalidArgumentError は入力パラメータの検証に失敗した場合のエラーです。
// 例えば、サンプル数が0以下の場合や、正・負の密度関数がどちらも空の場合など。
type InvalidArgumentError struct {
	ParamName string
	Reason    string
	Value     interface{}
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("gshap: invalid argument '%s': %s (got: %v)", e.ParamName, e.Reason, e.Value)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *InvalidArgumentError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("param_name", e.ParamName).
		Str("reason", e.Reason).
		Interface("value", e.Value).
		Str("type", "InvalidArgumentError")
}

// NewInvalidArgumentError は新しいInvalidArgumentErrorを作成し、スタックトレースを付与します。
func NewInvalidArgumentError(param, reason string, value interface{}) error {
	err := &InvalidArgumentError{ParamName: param, Reason: reason, Value: value}
	return errors.WithStack(err)
}

// ValueError は引数の値が不適切な場合に発生するエラーです。
// 例えば、評価指標に空のベクトルを渡した場合など。
type ValueError struct {
	Op      string
	Message string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("gshap: %s: %s", e.Op, e.Message)
}

// NewValueError は新しいValueErrorを作成し、スタックトレースを付与します。
func NewValueError(op, message string) error {
	err := &ValueError{Op: op, Message: message}
	return errors.WithStack(err)
}

// ===========================================================================
//
//	cockroachdb/errors ラッパー関数
//
// ===========================================================================

// Is はエラーが特定のターゲットエラーかどうかを判定します。
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As はエラーが特定の型にキャスト可能かどうかを判定します。
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Wrap は既存のエラーをメッセージ付きでラップします。
func Wrap(err error, message string) error {
	return errors.Wrap(err, message)
}

// Wrapf は既存のエラーをフォーマット文字列でラップします。
func Wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}

// New は新しいエラーを作成します。
func New(message string) error {
	return errors.New(message)
}

// WithStack はエラーにスタックトレースを付与します。
func WithStack(err error) error {
	return errors.WithStack(err)
}

// ===========================================================================
//
//	共通エラー変数
//
// ===========================================================================

var (
	// ErrEmptyData は空のデータが渡された場合のエラーです。
	ErrEmptyData = New("empty data")
)
