package errors

import (
	"fmt"
	"runtime/debug"

	"github.com/rs/zerolog"
)

// PanicError は回復されたpanicから作られたエラー
// 元のpanic値とスタックトレースを保持する
//
// ライブラリ本体（explainer, summary）はpanicを回復しない。
// モデルやgの失敗はそのまま呼び出し元へ伝播する。
// CLIのようなプロセス境界でのみRecoverを使う。
type PanicError struct {
	// PanicValue はpanic()に渡された値
	PanicValue interface{}

	// StackTrace はpanic発生時のスタックトレース
	StackTrace string

	// Operation はpanicを回復した場所
	Operation string
}

// Error はerrorインターフェースを実装
func (e *PanicError) Error() string {
	return fmt.Sprintf("gshap: panic in %s: %v", e.Operation, e.PanicValue)
}

// Unwrap はpanic値がerrorであればそれを返す
func (e *PanicError) Unwrap() error {
	if err, ok := e.PanicValue.(error); ok {
		return err
	}
	return nil
}

// MarshalZerologObject はzerologの構造化ログに対応
func (e *PanicError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Operation).
		Interface("panic_value", e.PanicValue).
		Str("stacktrace", e.StackTrace)
}

// NewPanicError は新しいPanicErrorを作成
func NewPanicError(operation string, panicValue interface{}) *PanicError {
	return &PanicError{
		PanicValue: panicValue,
		StackTrace: string(debug.Stack()),
		Operation:  operation,
	}
}

// Recover はdeferで使い、panicをPanicErrorに変換してerrに設定する
//
//	func run() (err error) {
//	    defer errors.Recover(&err, "explain")
//	    ...
//	}
//
// errが既に設定されている場合はpanic情報でラップする
func Recover(err *error, operation string) {
	if r := recover(); r != nil {
		panicErr := NewPanicError(operation, r)
		if *err != nil {
			*err = Wrapf(*err, "%v", panicErr)
			return
		}
		*err = panicErr
	}
}

// SafeExecute はfnを実行し、panicをエラーとして返す
func SafeExecute(operation string, fn func() error) (err error) {
	defer Recover(&err, operation)
	return fn()
}
