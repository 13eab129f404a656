package recognizer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akustiklab/telaffuz/pkg/audio"
)

func TestLazyRecognizerBuildsOnce(t *testing.T) {
	builds := 0
	mock := &Mock{Text: "merhaba"}
	lazy := NewLazy(func() (Recognizer, error) {
		builds++
		return mock, nil
	})

	clip := &audio.Clip{Samples: []float64{0}, SampleRate: 16000}

	for range 3 {
		text, err := lazy.Recognize(context.Background(), clip)
		require.NoError(t, err)
		assert.Equal(t, "merhaba", text)
	}

	assert.Equal(t, 1, builds)
	assert.Equal(t, 3, mock.Calls)
}

func TestLazyRecognizerRetriesFailedBuild(t *testing.T) {
	builds := 0
	lazy := NewLazy(func() (Recognizer, error) {
		builds++
		if builds == 1 {
			return nil, errors.New("model file missing")
		}
		return &Mock{Text: "ok"}, nil
	})

	clip := &audio.Clip{Samples: []float64{0}, SampleRate: 16000}

	_, err := lazy.Recognize(context.Background(), clip)
	assert.Error(t, err)

	text, err := lazy.Recognize(context.Background(), clip)
	require.NoError(t, err)
	assert.Equal(t, "ok", text)
	assert.Equal(t, 2, builds)
}

type closingMock struct {
	Mock
	closed bool
}

func (c *closingMock) Close() error {
	c.closed = true
	return nil
}

func TestLazyRecognizerCloseReleasesEngine(t *testing.T) {
	inner := &closingMock{}
	lazy := NewLazy(func() (Recognizer, error) { return inner, nil })

	clip := &audio.Clip{Samples: []float64{0}, SampleRate: 16000}
	_, err := lazy.Recognize(context.Background(), clip)
	require.NoError(t, err)

	require.NoError(t, lazy.Close())
	assert.True(t, inner.closed)
}

func TestLazyRecognizerCloseBeforeUse(t *testing.T) {
	lazy := NewLazy(func() (Recognizer, error) {
		t.Fatal("factory must not run on Close")
		return nil, nil
	})
	assert.NoError(t, lazy.Close())
}

func TestEncodeLinear16(t *testing.T) {
	data := encodeLinear16([]float64{0, 0.5, -0.5, 2.0, -2.0})

	require.Len(t, data, 10)
	assert.Equal(t, []byte{0, 0}, data[0:2])

	// 0.5 -> 16383, little endian
	assert.Equal(t, byte(0xFF), data[2])
	assert.Equal(t, byte(0x3F), data[3])

	// Out-of-range input clips instead of wrapping
	assert.Equal(t, []byte{0xFF, 0x7F}, data[6:8])
	assert.Equal(t, []byte{0x01, 0x80}, data[8:10])
}

func TestMockHonorsCancelledContext(t *testing.T) {
	mock := &Mock{Text: "merhaba"}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := mock.Recognize(ctx, &audio.Clip{Samples: []float64{0}, SampleRate: 16000})
	assert.ErrorIs(t, err, context.Canceled)
}
