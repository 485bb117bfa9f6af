// Package gshap estimates generalized Shapley values (G-SHAP) for black-box
// models in Go.
//
// Classical SHAP values attribute a model's mean prediction to its input
// features. G-SHAP attributes any scalar summary g of the model's output on
// a dataset: the probability that a hypothesis holds, the gap between the
// predictions for two groups, the odds that predictions came from one
// distribution rather than another, or a performance score.
//
// # Features
//
// - Model agnostic: any type with Predict(mat.Matrix) (mat.Matrix, error)
// - Pluggable summaries: mean, hypothesis tests, intergroup differences, probability and classification distances, scores
// - Reproducible: an explicit random source, identical output at any worker count
// - Structured errors and zerolog logging
//
// # Quick Start
//
//	package main
//
//	import (
//	    "fmt"
//	    "log"
//
//	    "github.com/YuminosukeSato/gshap/core/model"
//	    "github.com/YuminosukeSato/gshap/explainer"
//	    "gonum.org/v1/gonum/mat"
//	)
//
//	func main() {
//	    background := mat.NewDense(3, 2, []float64{0, 0, 1, 1, 2, 2})
//	    clf := model.NewLinear([]float64{1, 0}, 0)
//
//	    ex, err := explainer.NewKernelExplainer(clf, background, explainer.WithSeed(42))
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    X := mat.NewDense(2, 2, []float64{3, 5, 4, 1})
//	    values, err := ex.Values(X, ex.NSamples())
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(values) // approximately [2.5 0]
//	}
//
// # Package Structure
//
//   - explainer: the Monte Carlo estimator (Values, Value, Compare)
//   - summary: the g functions
//   - dataset: input coercion, labeled frames and CSV loading
//   - core/model: the Predictor interface and fixed-coefficient models
//   - core/parallel: the per-feature worker pool
//   - metrics: regression and classification metrics used by summary.Score
//   - report: attribution bar charts
//   - pkg/errors, pkg/log: error types and structured logging
//   - cmd/gshap: command line interface
package gshap
