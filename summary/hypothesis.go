package summary

import (
	"math/rand/v2"
	"sync"

	"github.com/YuminosukeSato/gshap/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// DefaultBootstrapSamples is the number of resamples HypothesisTest draws
// when none is configured.
const DefaultBootstrapSamples = 1000

// Statistic computes a sample statistic from (resampled) model output.
type Statistic func(output mat.Matrix) (float64, error)

// HypothesisTest is the probability that a hypothesis about the output
// holds: the share of row-bootstrapped copies of the output whose statistic
// passes Test.
type HypothesisTest struct {
	Statistic        Statistic
	Test             func(statistic float64) bool
	BootstrapSamples int

	mu  sync.Mutex
	rng *rand.Rand
}

var _ Randomized = (*HypothesisTest)(nil)

// NewHypothesisTest creates a HypothesisTest. bootstrapSamples must be
// positive; src seeds the test's own stream used by Summarize and may be nil
// for a randomly seeded source.
func NewHypothesisTest(statistic Statistic, test func(float64) bool, bootstrapSamples int, src rand.Source) (*HypothesisTest, error) {
	if statistic == nil || test == nil {
		return nil, errors.NewInvalidArgumentError("statistic/test", "must not be nil", nil)
	}
	if bootstrapSamples <= 0 {
		return nil, errors.NewInvalidArgumentError("bootstrap_samples", "must be positive", bootstrapSamples)
	}
	if src == nil {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	return &HypothesisTest{
		Statistic:        statistic,
		Test:             test,
		BootstrapSamples: bootstrapSamples,
		rng:              rand.New(src),
	}, nil
}

// Summarize implements Summary using the test's own random stream.
func (h *HypothesisTest) Summarize(output mat.Matrix) (float64, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.rng == nil {
		h.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return h.SummarizeRand(output, h.rng)
}

// SummarizeRand implements Randomized.
func (h *HypothesisTest) SummarizeRand(output mat.Matrix, rng *rand.Rand) (float64, error) {
	b := h.BootstrapSamples
	if b <= 0 {
		b = DefaultBootstrapSamples
	}
	r, c := output.Dims()
	if r == 0 || c == 0 {
		return 0, errors.NewValueError("HypothesisTest", "empty output")
	}

	sample := mat.NewDense(r, c, nil)
	row := make([]float64, c)
	passed := 0
	for i := 0; i < b; i++ {
		for k := 0; k < r; k++ {
			mat.Row(row, rng.IntN(r), output)
			sample.SetRow(k, row)
		}
		stat, err := h.Statistic(sample)
		if err != nil {
			return 0, err
		}
		if h.Test(stat) {
			passed++
		}
	}
	return float64(passed) / float64(b), nil
}
