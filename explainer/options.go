package explainer

import (
	"math/rand/v2"

	"github.com/YuminosukeSato/gshap/pkg/log"
	"github.com/YuminosukeSato/gshap/summary"
)

// Option is a function that configures KernelExplainer
type Option func(*KernelExplainer)

// WithSummary sets the summary function g whose value is attributed.
// The default is summary.Mean{}.
func WithSummary(g summary.Summary) Option {
	return func(e *KernelExplainer) {
		e.g = g
	}
}

// WithSeed makes every estimate reproducible.
func WithSeed(seed uint64) Option {
	return func(e *KernelExplainer) {
		e.rng = rand.New(rand.NewPCG(seed, seed))
		e.seed = &seed
	}
}

// WithRandSource sets the random source all draws are derived from.
func WithRandSource(src rand.Source) Option {
	return func(e *KernelExplainer) {
		if src != nil {
			e.rng = rand.New(src)
			e.seed = nil
		}
	}
}

// WithWorkers sets how many features are estimated concurrently.
// n <= 0 uses one worker per CPU core. The model and summary must be safe
// for concurrent use when n != 1.
func WithWorkers(n int) Option {
	return func(e *KernelExplainer) {
		e.workers = n
	}
}

// WithLogger sets the logger
func WithLogger(logger log.Logger) Option {
	return func(e *KernelExplainer) {
		if logger != nil {
			e.logger = logger
		}
	}
}
