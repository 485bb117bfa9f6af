package errors

import (
	"math"
)

// probabilityFloor bounds probabilities away from zero before taking logs.
const probabilityFloor = 1e-300

// StabilizeLog computes log with protection against log(0).
// Returns log(max(value, floor)) where floor is the smallest normal-ish
// probability we are willing to represent.
func StabilizeLog(value float64) float64 {
	if value < probabilityFloor {
		return math.Log(probabilityFloor)
	}
	return math.Log(value)
}

// Logistic computes 1 / (1 + exp(-x)) without overflowing for large |x|.
func Logistic(x float64) float64 {
	if x >= 0 {
		return 1 / (1 + math.Exp(-x))
	}
	ex := math.Exp(x)
	return ex / (1 + ex)
}

// IsFinite reports whether v is neither NaN nor ±Inf.
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
