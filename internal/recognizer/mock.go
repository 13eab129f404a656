package recognizer

import (
	"context"

	"github.com/akustiklab/telaffuz/pkg/audio"
)

// Mock is a canned recognizer for tests and offline development
type Mock struct {
	Text string
	Err  error

	// Calls counts Recognize invocations
	Calls int
}

func (m *Mock) Recognize(ctx context.Context, clip *audio.Clip) (string, error) {
	m.Calls++
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return m.Text, m.Err
}
