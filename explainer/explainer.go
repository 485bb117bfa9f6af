// Package explainer estimates generalized Shapley values (G-SHAP).
//
// A KernelExplainer attributes the change in a scalar summary g of a
// model's output, measured on the explained data X relative to a
// background dataset, to the individual input features. Each attribution
// is the mean of Monte Carlo draws of the marginal contribution of one
// feature to a random coalition of the others, with absent features
// replaced by rows resampled from the background.
//
// Example:
//
//	ex, err := explainer.NewKernelExplainer(clf, background,
//	    explainer.WithSummary(summary.Mean{}),
//	    explainer.WithSeed(42),
//	)
//	if err != nil {
//	    return err
//	}
//	values, err := ex.Values(X, ex.NSamples())
package explainer

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/YuminosukeSato/gshap/core/model"
	"github.com/YuminosukeSato/gshap/core/parallel"
	"github.com/YuminosukeSato/gshap/dataset"
	"github.com/YuminosukeSato/gshap/pkg/errors"
	"github.com/YuminosukeSato/gshap/pkg/log"
	"github.com/YuminosukeSato/gshap/summary"
	"gonum.org/v1/gonum/mat"
)

const (
	// DefaultSampleFloor is the constant part of NSamples.
	DefaultSampleFloor = 2048

	// DefaultBootstrapSamples is the conventional bootstrap count for Compare.
	DefaultBootstrapSamples = 1000
)

// Comparison is the result of Compare.
type Comparison struct {
	// Data is g(model(X)).
	Data float64
	// Background is the mean of g over model outputs on background
	// resamples with X's row count.
	Background float64
}

// KernelExplainer estimates feature attributions for g(model(X)).
type KernelExplainer struct {
	model   model.Predictor
	g       summary.Summary
	workers int
	logger  log.Logger

	mu         sync.RWMutex
	background *mat.Dense
	n, p       int

	rngMu sync.Mutex
	rng   *rand.Rand
	seed  *uint64
}

// NewKernelExplainer creates an explainer of pred against background.
// background may be any matrix accepted by dataset.AsDense; a mat.Vector is
// a single background row. The background is copied.
func NewKernelExplainer(pred model.Predictor, background mat.Matrix, opts ...Option) (*KernelExplainer, error) {
	if pred == nil {
		return nil, errors.NewInvalidArgumentError("model", "must not be nil", nil)
	}

	e := &KernelExplainer{
		model:   pred,
		g:       summary.Mean{},
		workers: 1,
		logger:  log.GetLoggerWithName("explainer"),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.g == nil {
		return nil, errors.NewInvalidArgumentError("summary", "must not be nil", nil)
	}
	if e.rng == nil {
		e.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	if err := e.SetBackground(background); err != nil {
		return nil, err
	}

	fields := []any{log.BackgroundRowsKey, e.n, log.FeaturesKey, e.p, log.WorkersKey, e.workers}
	if e.seed != nil {
		fields = append(fields, log.RandomSeedKey, *e.seed)
	}
	e.logger.Debug("Explainer created", fields...)
	return e, nil
}

// SetBackground replaces the background and its dimensions atomically.
func (e *KernelExplainer) SetBackground(background mat.Matrix) error {
	bg, err := dataset.AsDense(background)
	if err != nil {
		return errors.Wrap(err, "background")
	}
	bg = mat.DenseCopyOf(bg)
	n, p := bg.Dims()

	e.mu.Lock()
	defer e.mu.Unlock()
	e.background = bg
	e.n, e.p = n, p
	return nil
}

// Background returns a copy of the background matrix.
func (e *KernelExplainer) Background() *mat.Dense {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return mat.DenseCopyOf(e.background)
}

// Dims returns the background row count N and feature count P.
func (e *KernelExplainer) Dims() (n, p int) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.n, e.p
}

// NSamples is the default number of draws per feature: 2*P + 2048.
func (e *KernelExplainer) NSamples() int {
	_, p := e.Dims()
	return 2*p + DefaultSampleFloor
}

// Values estimates the attribution of every feature of X.
func (e *KernelExplainer) Values(X mat.Matrix, nsamples int) ([]float64, error) {
	return e.ValuesContext(context.Background(), X, nsamples)
}

// ValuesContext is Values with cancellation between features.
//
// Every feature draws from its own random stream, all of them derived from
// the explainer's source before estimation starts, so a seeded explainer
// returns identical values whatever the worker count.
func (e *KernelExplainer) ValuesContext(ctx context.Context, X mat.Matrix, nsamples int) ([]float64, error) {
	bg, x, err := e.prepare("Values", X)
	if err != nil {
		return nil, err
	}
	if err := checkSamples(nsamples); err != nil {
		return nil, err
	}

	_, p := x.Dims()
	rngs := e.streams(p)
	values := make([]float64, p)

	logger := e.logger.With(log.OperationKey, log.OperationValues)
	logger.Debug("Estimating attributions",
		log.SamplesKey, x.RawMatrix().Rows,
		log.FeaturesKey, p,
		log.BackgroundRowsKey, bg.RawMatrix().Rows,
		log.NSamplesKey, nsamples,
		log.WorkersKey, e.workers,
	)
	start := time.Now()

	err = parallel.Parallelize(ctx, p, e.workers, func(ctx context.Context, lo, hi int) error {
		for j := lo; j < hi; j++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			v, err := e.estimate(j, x, bg, nsamples, rngs[j])
			if err != nil {
				return err
			}
			values[j] = v
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Debug("Attributions estimated", log.DurationMsKey, time.Since(start).Milliseconds())
	return values, nil
}

// Value estimates the attribution of the single feature j.
func (e *KernelExplainer) Value(j Feature, X mat.Matrix, nsamples int) (float64, error) {
	bg, x, err := e.prepare("Value", X)
	if err != nil {
		return 0, err
	}
	if j == nil {
		return 0, errors.NewInvalidFeatureError("Value", nil, x.RawMatrix().Cols, "nil feature")
	}
	idx, err := j.resolve(X, x.RawMatrix().Cols)
	if err != nil {
		return 0, err
	}
	if err := checkSamples(nsamples); err != nil {
		return 0, err
	}

	start := time.Now()
	v, err := e.estimate(idx, x, bg, nsamples, e.streams(1)[0])
	if err != nil {
		return 0, err
	}
	e.logger.Debug("Attribution estimated",
		log.OperationKey, log.OperationValue,
		log.FeatureKey, idx,
		log.NSamplesKey, nsamples,
		log.ValueKey, v,
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return v, nil
}

// Compare returns g(model(X)) next to the mean of g over bootstrapSamples
// model outputs on background resamples of X's row count. Attributions sum
// to roughly the difference of the two.
func (e *KernelExplainer) Compare(X mat.Matrix, bootstrapSamples int) (Comparison, error) {
	bg, x, err := e.prepare("Compare", X)
	if err != nil {
		return Comparison{}, err
	}
	if bootstrapSamples <= 0 {
		return Comparison{}, errors.NewInvalidArgumentError("bootstrap_samples", "must be positive", bootstrapSamples)
	}

	rng := e.streams(1)[0]
	data, err := e.evaluate(x, rng)
	if err != nil {
		return Comparison{}, err
	}

	m, p := x.Dims()
	n, _ := bg.Dims()
	z := mat.NewDense(m, p, nil)
	var total float64
	for b := 0; b < bootstrapSamples; b++ {
		for i := 0; i < m; i++ {
			z.SetRow(i, bg.RawRowView(rng.IntN(n)))
		}
		v, err := e.evaluate(z, rng)
		if err != nil {
			return Comparison{}, err
		}
		total += v
	}

	cmp := Comparison{Data: data, Background: total / float64(bootstrapSamples)}
	e.logger.Debug("Compared data with background",
		log.OperationKey, log.OperationCompare,
		log.BootstrapSamplesKey, bootstrapSamples,
		"data", cmp.Data,
		"background", cmp.Background,
	)
	return cmp, nil
}

// prepare coerces X and checks it against a consistent snapshot of the
// background.
func (e *KernelExplainer) prepare(op string, X mat.Matrix) (bg, x *mat.Dense, err error) {
	e.mu.RLock()
	bg, p := e.background, e.p
	e.mu.RUnlock()

	x, err = dataset.AsDense(X)
	if err != nil {
		return nil, nil, errors.Wrap(err, op)
	}
	if _, c := x.Dims(); c != p {
		e.logger.Warn("Feature count mismatch",
			log.OperationKey, op,
			log.ErrorCodeKey, log.ErrorShapeMismatch,
			log.FeaturesKey, c,
		)
		return nil, nil, errors.NewShapeMismatchError(op, p, c, 1)
	}
	return bg, x, nil
}

func checkSamples(nsamples int) error {
	if nsamples <= 0 {
		return errors.NewInvalidArgumentError("nsamples", "must be positive", nsamples)
	}
	return nil
}

// streams derives k independent generators from the explainer's source.
func (e *KernelExplainer) streams(k int) []*rand.Rand {
	e.rngMu.Lock()
	defer e.rngMu.Unlock()
	out := make([]*rand.Rand, k)
	for i := range out {
		out[i] = rand.New(rand.NewPCG(e.rng.Uint64(), e.rng.Uint64()))
	}
	return out
}

// estimate averages nsamples draws of phi for feature j.
func (e *KernelExplainer) estimate(j int, x, bg *mat.Dense, nsamples int, rng *rand.Rand) (float64, error) {
	var sum float64
	for s := 0; s < nsamples; s++ {
		v, err := e.phi(j, x, bg, rng)
		if err != nil {
			return 0, err
		}
		sum += v
	}
	return sum / float64(nsamples), nil
}

// phi draws one marginal contribution of feature j:
// g(model(X_plus)) - g(model(X_minus)).
//
// Z resamples X's row count from the background with replacement. Every
// feature gets a random rank; feature k is present iff it ranks before j.
// X_minus takes present columns from X and the rest from Z, and X_plus is
// X_minus with column j from X.
func (e *KernelExplainer) phi(j int, x, bg *mat.Dense, rng *rand.Rand) (float64, error) {
	m, p := x.Dims()
	n, _ := bg.Dims()

	rows := make([]int, m)
	for i := range rows {
		rows[i] = rng.IntN(n)
	}
	rank := rng.Perm(p)

	minus := mat.NewDense(m, p, nil)
	for i, r := range rows {
		for k := 0; k < p; k++ {
			if rank[k] < rank[j] {
				minus.Set(i, k, x.At(i, k))
			} else {
				minus.Set(i, k, bg.At(r, k))
			}
		}
	}
	plus := mat.DenseCopyOf(minus)
	for i := 0; i < m; i++ {
		plus.Set(i, j, x.At(i, j))
	}

	gPlus, err := e.evaluate(plus, rng)
	if err != nil {
		return 0, err
	}
	gMinus, err := e.evaluate(minus, rng)
	if err != nil {
		return 0, err
	}
	return gPlus - gMinus, nil
}

// evaluate computes g(model(X)). Model and summary errors are returned as is.
func (e *KernelExplainer) evaluate(X mat.Matrix, rng *rand.Rand) (float64, error) {
	out, err := e.model.Predict(X)
	if err != nil {
		return 0, err
	}
	return summary.Call(e.g, out, rng)
}
