// Package recognizer provides speech-to-text adapters for the
// analysis pipeline. Implementations return empty text with a nil
// error for a clean no-match; errors mean the engine itself failed.
package recognizer

import (
	"context"
	"sync"

	"github.com/akustiklab/telaffuz/pkg/audio"
)

// Recognizer converts a decoded clip to free text
type Recognizer interface {
	Recognize(ctx context.Context, clip *audio.Clip) (string, error)
}

// Closer is implemented by recognizers holding native resources
type Closer interface {
	Close() error
}

// LazyRecognizer defers construction of an expensive engine (a local
// model load) to the first Recognize call. Concurrent first callers
// wait for the single load instead of triggering duplicates; a failed
// load is returned to every caller and retried on the next call.
type LazyRecognizer struct {
	mu      sync.Mutex
	factory func() (Recognizer, error)
	inner   Recognizer
}

// NewLazy wraps a recognizer factory for lazy one-time initialization
func NewLazy(factory func() (Recognizer, error)) *LazyRecognizer {
	return &LazyRecognizer{factory: factory}
}

func (l *LazyRecognizer) get() (Recognizer, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.inner != nil {
		return l.inner, nil
	}

	inner, err := l.factory()
	if err != nil {
		return nil, err
	}
	l.inner = inner
	return inner, nil
}

func (l *LazyRecognizer) Recognize(ctx context.Context, clip *audio.Clip) (string, error) {
	inner, err := l.get()
	if err != nil {
		return "", err
	}
	return inner.Recognize(ctx, clip)
}

// Close releases the underlying engine if it was ever built
func (l *LazyRecognizer) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if c, ok := l.inner.(Closer); ok {
		l.inner = nil
		return c.Close()
	}
	l.inner = nil
	return nil
}
