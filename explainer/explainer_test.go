package explainer

import (
	"context"
	"math/rand/v2"
	"testing"

	"github.com/YuminosukeSato/gshap/core/model"
	"github.com/YuminosukeSato/gshap/dataset"
	"github.com/YuminosukeSato/gshap/pkg/errors"
	"github.com/YuminosukeSato/gshap/pkg/log"
	"github.com/YuminosukeSato/gshap/summary"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// firstColumn returns X[:, 0] as a single-column output.
var firstColumn = model.PredictorFunc(func(X mat.Matrix) (mat.Matrix, error) {
	r, _ := X.Dims()
	out := mat.NewDense(r, 1, nil)
	for i := 0; i < r; i++ {
		out.Set(i, 0, X.At(i, 0))
	}
	return out, nil
})

func scenarioBackground() *mat.Dense {
	return mat.NewDense(3, 2, []float64{
		0, 0,
		1, 1,
		2, 2,
	})
}

func randomMatrix(rows, cols int, seed uint64) *mat.Dense {
	rng := rand.New(rand.NewPCG(seed, seed+1))
	data := make([]float64, rows*cols)
	for i := range data {
		data[i] = rng.Float64()
	}
	return mat.NewDense(rows, cols, data)
}

func TestNewKernelExplainer(t *testing.T) {
	ex, err := NewKernelExplainer(firstColumn, scenarioBackground())
	require.NoError(t, err)

	n, p := ex.Dims()
	assert.Equal(t, 3, n)
	assert.Equal(t, 2, p)
	assert.Equal(t, 2*2+DefaultSampleFloor, ex.NSamples())

	_, err = NewKernelExplainer(nil, scenarioBackground())
	var argErr *errors.InvalidArgumentError
	assert.True(t, errors.As(err, &argErr))

	_, err = NewKernelExplainer(firstColumn, scenarioBackground(), WithSummary(nil))
	assert.True(t, errors.As(err, &argErr))

	_, err = NewKernelExplainer(firstColumn, &mat.Dense{})
	assert.True(t, errors.Is(err, errors.ErrEmptyData))
}

func TestVectorBackgroundIsSingleRow(t *testing.T) {
	ex, err := NewKernelExplainer(firstColumn, mat.NewVecDense(3, []float64{1, 2, 3}))
	require.NoError(t, err)

	n, p := ex.Dims()
	assert.Equal(t, 1, n)
	assert.Equal(t, 3, p)
}

func TestValuesShapeContract(t *testing.T) {
	ex, err := NewKernelExplainer(firstColumn, randomMatrix(10, 4, 1), WithSeed(1))
	require.NoError(t, err)

	values, err := ex.Values(randomMatrix(5, 4, 2), 10)
	require.NoError(t, err)
	assert.Len(t, values, 4)

	tests := []struct {
		name string
		call func(X mat.Matrix) error
	}{
		{"Values", func(X mat.Matrix) error { _, err := ex.Values(X, 10); return err }},
		{"Value", func(X mat.Matrix) error { _, err := ex.Value(Index(0), X, 10); return err }},
		{"Compare", func(X mat.Matrix) error { _, err := ex.Compare(X, 10); return err }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call(randomMatrix(5, 3, 3))
			var shapeErr *errors.ShapeMismatchError
			require.True(t, errors.As(err, &shapeErr))
			assert.Equal(t, 4, shapeErr.Expected)
			assert.Equal(t, 3, shapeErr.Got)
			assert.Equal(t, 1, shapeErr.Axis)
		})
	}
}

func TestNilInputIsEmptyData(t *testing.T) {
	ex, err := NewKernelExplainer(firstColumn, scenarioBackground(), WithSeed(1))
	require.NoError(t, err)

	tests := []struct {
		name string
		X    mat.Matrix
	}{
		{"nil", nil},
		{"typed nil dense", (*mat.Dense)(nil)},
		{"typed nil vector", (*mat.VecDense)(nil)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values, err := ex.Values(tt.X, 10)
			assert.Nil(t, values)
			assert.True(t, errors.Is(err, errors.ErrEmptyData), "got %v", err)
		})
	}
}

func TestConcreteScenario(t *testing.T) {
	X := mat.NewDense(2, 2, []float64{
		3, 5,
		4, 1,
	})
	ex, err := NewKernelExplainer(firstColumn, scenarioBackground(), WithSeed(7))
	require.NoError(t, err)

	values, err := ex.Values(X, 2000)
	require.NoError(t, err)

	want := stat.Mean(mat.Col(nil, 0, X), nil) - stat.Mean(mat.Col(nil, 0, scenarioBackground()), nil)
	assert.InDelta(t, want, values[0], 0.1)
	assert.InDelta(t, 0.0, values[1], 0.1)
}

func TestZeroEffect(t *testing.T) {
	pred := model.NewLinear([]float64{1.5, 0, -2}, 0.3)
	ex, err := NewKernelExplainer(pred, randomMatrix(20, 3, 11), WithSeed(3))
	require.NoError(t, err)

	v, err := ex.Value(Index(1), randomMatrix(8, 3, 12), 500)
	require.NoError(t, err)
	assert.Less(t, v, 0.05)
	assert.Greater(t, v, -0.05)
}

func TestLinearity(t *testing.T) {
	background := randomMatrix(30, 3, 21)
	X := randomMatrix(6, 3, 22)
	weights := []float64{2, -1, 0.5}

	ex, err := NewKernelExplainer(model.NewLinear(weights, 0), background, WithSeed(5))
	require.NoError(t, err)
	values, err := ex.Values(X, 2000)
	require.NoError(t, err)

	for j, w := range weights {
		want := w * (stat.Mean(mat.Col(nil, j, X), nil) - stat.Mean(mat.Col(nil, j, background), nil))
		assert.InDelta(t, want, values[j], 0.05, "feature %d", j)
	}

	// Same draws with doubled weights give doubled attributions.
	doubled := []float64{4, -2, 1}
	ex2, err := NewKernelExplainer(model.NewLinear(doubled, 0), background, WithSeed(5))
	require.NoError(t, err)
	values2, err := ex2.Values(X, 2000)
	require.NoError(t, err)
	for j := range weights {
		assert.InDelta(t, 2*values[j], values2[j], 1e-9)
	}
}

func TestDeterminism(t *testing.T) {
	background := randomMatrix(15, 3, 31)
	X := randomMatrix(5, 3, 32)
	hyp, err := summary.NewHypothesisTest(
		func(out mat.Matrix) (float64, error) { return summary.Mean{}.Summarize(out) },
		func(s float64) bool { return s > 0.5 },
		20, nil,
	)
	require.NoError(t, err)

	tests := []struct {
		name string
		g    summary.Summary
	}{
		{"mean", summary.Mean{}},
		{"hypothesis test", hyp},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			run := func(workers int) []float64 {
				ex, err := NewKernelExplainer(model.NewLinear([]float64{1, 2, 3}, 0), background,
					WithSummary(tt.g), WithSeed(99), WithWorkers(workers))
				require.NoError(t, err)
				values, err := ex.Values(X, 50)
				require.NoError(t, err)
				return values
			}

			sequential := run(1)
			for _, workers := range []int{1, 3, 0} {
				if diff := cmp.Diff(sequential, run(workers)); diff != "" {
					t.Errorf("workers=%d mismatch (-sequential +got):\n%s", workers, diff)
				}
			}
		})
	}
}

func TestWithRandSource(t *testing.T) {
	newExplainer := func() *KernelExplainer {
		ex, err := NewKernelExplainer(firstColumn, scenarioBackground(), WithRandSource(rand.NewPCG(1, 2)))
		require.NoError(t, err)
		return ex
	}
	X := mat.NewDense(1, 2, []float64{1, 1})

	a, err := newExplainer().Value(Index(0), X, 100)
	require.NoError(t, err)
	b, err := newExplainer().Value(Index(0), X, 100)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestSingleRowInput(t *testing.T) {
	newExplainer := func() *KernelExplainer {
		ex, err := NewKernelExplainer(model.NewLinear([]float64{1, -1}, 0), scenarioBackground(), WithSeed(8))
		require.NoError(t, err)
		return ex
	}

	fromVector, err := newExplainer().Values(mat.NewVecDense(2, []float64{3, 5}), 200)
	require.NoError(t, err)
	fromRow, err := newExplainer().Values(mat.NewDense(1, 2, []float64{3, 5}), 200)
	require.NoError(t, err)
	assert.Equal(t, fromRow, fromVector)
}

func TestFeatureResolution(t *testing.T) {
	frame, err := dataset.NewFrame([]string{"age", "income"}, mat.NewDense(2, 2, []float64{
		3, 5,
		4, 1,
	}))
	require.NoError(t, err)

	newExplainer := func() *KernelExplainer {
		ex, err := NewKernelExplainer(model.NewLinear([]float64{1, 2}, 0), scenarioBackground(), WithSeed(4))
		require.NoError(t, err)
		return ex
	}

	byName, err := newExplainer().Value(Name("income"), frame, 300)
	require.NoError(t, err)
	byIndex, err := newExplainer().Value(Index(1), frame, 300)
	require.NoError(t, err)
	assert.Equal(t, byIndex, byName)

	tests := []struct {
		name    string
		feature Feature
		X       mat.Matrix
	}{
		{"unknown label", Name("height"), frame},
		{"label on unlabeled input", Name("age"), mat.NewDense(1, 2, []float64{1, 2})},
		{"negative index", Index(-1), frame},
		{"index out of range", Index(2), frame},
		{"nil feature", nil, frame},
	}
	ex := newExplainer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ex.Value(tt.feature, tt.X, 10)
			var featErr *errors.InvalidFeatureError
			assert.True(t, errors.As(err, &featErr), "got %v", err)
		})
	}
}

func TestInvalidSampleCount(t *testing.T) {
	ex, err := NewKernelExplainer(firstColumn, scenarioBackground())
	require.NoError(t, err)
	X := mat.NewDense(1, 2, []float64{1, 1})

	for _, n := range []int{0, -5} {
		var argErr *errors.InvalidArgumentError
		_, err := ex.Values(X, n)
		assert.True(t, errors.As(err, &argErr))
		_, err = ex.Value(Index(0), X, n)
		assert.True(t, errors.As(err, &argErr))
		_, err = ex.Compare(X, n)
		assert.True(t, errors.As(err, &argErr))
	}
}

func TestModelErrorPropagates(t *testing.T) {
	boom := errors.New("model failed")
	failing := model.PredictorFunc(func(mat.Matrix) (mat.Matrix, error) { return nil, boom })

	for _, workers := range []int{1, 2} {
		ex, err := NewKernelExplainer(failing, scenarioBackground(), WithWorkers(workers))
		require.NoError(t, err)

		values, err := ex.Values(mat.NewDense(1, 2, []float64{1, 1}), 10)
		assert.Nil(t, values)
		assert.Equal(t, boom, err)
	}

	ex, err := NewKernelExplainer(failing, scenarioBackground())
	require.NoError(t, err)
	_, err = ex.Compare(mat.NewDense(1, 2, []float64{1, 1}), 10)
	assert.Equal(t, boom, err)
}

func TestSummaryErrorPropagates(t *testing.T) {
	boom := errors.New("summary failed")
	g := summary.Func(func(mat.Matrix) (float64, error) { return 0, boom })

	ex, err := NewKernelExplainer(firstColumn, scenarioBackground(), WithSummary(g))
	require.NoError(t, err)
	_, err = ex.Value(Index(0), mat.NewDense(1, 2, []float64{1, 1}), 5)
	assert.Equal(t, boom, err)
}

func TestValuesContextCancelled(t *testing.T) {
	ex, err := NewKernelExplainer(firstColumn, scenarioBackground())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	values, err := ex.ValuesContext(ctx, mat.NewDense(1, 2, []float64{1, 1}), 10)
	assert.Nil(t, values)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCompare(t *testing.T) {
	X := randomMatrix(200, 2, 41)
	ex, err := NewKernelExplainer(model.NewLinear([]float64{1, 1}, 0), X, WithSeed(6))
	require.NoError(t, err)

	comparison, err := ex.Compare(X, 500)
	require.NoError(t, err)
	assert.InDelta(t, comparison.Data, comparison.Background, 0.02)

	shifted := mat.NewDense(200, 2, nil)
	shifted.Apply(func(_, _ int, v float64) float64 { return v + 1 }, X)
	comparison, err = ex.Compare(shifted, 100)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, comparison.Data-comparison.Background, 0.05)
}

func TestSetBackground(t *testing.T) {
	ex, err := NewKernelExplainer(firstColumn, scenarioBackground())
	require.NoError(t, err)

	require.NoError(t, ex.SetBackground(randomMatrix(7, 3, 51)))
	n, p := ex.Dims()
	assert.Equal(t, 7, n)
	assert.Equal(t, 3, p)
	assert.Equal(t, 2*3+DefaultSampleFloor, ex.NSamples())

	_, err = ex.Values(mat.NewDense(1, 2, []float64{1, 1}), 10)
	var shapeErr *errors.ShapeMismatchError
	assert.True(t, errors.As(err, &shapeErr))

	bg := ex.Background()
	bg.Set(0, 0, 1e9)
	assert.NotEqual(t, 1e9, ex.Background().At(0, 0))

	assert.Error(t, ex.SetBackground(&mat.Dense{}))
	n, _ = ex.Dims()
	assert.Equal(t, 7, n)
}

func TestDebugLogging(t *testing.T) {
	logger, _ := log.NewTestLogger(log.LevelDebug)
	ex, err := NewKernelExplainer(firstColumn, scenarioBackground(), WithSeed(12), WithLogger(logger))
	require.NoError(t, err)

	_, err = ex.Values(mat.NewDense(1, 2, []float64{1, 1}), 5)
	require.NoError(t, err)

	assert.True(t, logger.ContainsMessage("Explainer created"))
	assert.True(t, logger.ContainsMessage("Attributions estimated"))
	assert.True(t, logger.ContainsField(log.NSamplesKey, float64(5)))
	assert.True(t, logger.ContainsField(log.OperationKey, log.OperationValues))
}
