package errors

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSafeExecute(t *testing.T) {
	sentinel := New("model failed")

	tests := []struct {
		name      string
		fn        func() error
		wantPanic bool
		wantErr   error
	}{
		{"no error", func() error { return nil }, false, nil},
		{"error passes through", func() error { return sentinel }, false, sentinel},
		{"string panic", func() error { panic("index out of range") }, true, nil},
		{"error panic", func() error { panic(sentinel) }, true, sentinel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := SafeExecute("explain", tt.fn)

			var panicErr *PanicError
			assert.Equal(t, tt.wantPanic, As(err, &panicErr))
			if tt.wantPanic {
				assert.Equal(t, "explain", panicErr.Operation)
				assert.NotEmpty(t, panicErr.StackTrace)
				assert.Contains(t, panicErr.Error(), "gshap: panic in explain")
			}
			if tt.wantErr != nil {
				assert.True(t, Is(err, tt.wantErr))
			} else if !tt.wantPanic {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRecoverWrapsExistingError(t *testing.T) {
	fn := func() (err error) {
		defer Recover(&err, "compare")
		err = ErrEmptyData
		panic("late failure")
	}

	err := fn()
	require.Error(t, err)
	assert.True(t, Is(err, ErrEmptyData))
	assert.Contains(t, err.Error(), "late failure")
}

func TestPanicErrorMarshalZerolog(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	logger.Error().Object("panic", NewPanicError("explain", "boom")).Msg("recovered")

	assert.Contains(t, buf.String(), `"operation":"explain"`)
	assert.Contains(t, buf.String(), `"panic_value":"boom"`)
}
