package recognizer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	whisperlib "github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"

	"github.com/akustiklab/telaffuz/pkg/audio"
	"github.com/akustiklab/telaffuz/pkg/logging"
)

// WhisperRecognizer runs local speech recognition with a ggml whisper
// model through the whisper.cpp CGO bindings; the whisper.cpp static
// library and headers must be available at link time. Model load is
// expensive; wrap construction in NewLazy so the model loads once on
// first use and is shared across requests.
type WhisperRecognizer struct {
	model    whisperlib.Model
	language string
	logger   logging.Logger
}

// NewWhisper loads the ggml model at modelPath
func NewWhisper(modelPath, language string) (*WhisperRecognizer, error) {
	if modelPath == "" {
		return nil, errors.New("whisper model path must not be empty")
	}

	model, err := whisperlib.New(modelPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load whisper model %q: %w", modelPath, err)
	}

	return &WhisperRecognizer{
		model:    model,
		language: language,
		logger: logging.WithFields(logging.Fields{
			"component": "whisper_recognizer",
			"model":     modelPath,
			"language":  language,
		}),
	}, nil
}

// Recognize transcribes the clip. Whisper expects 16 kHz mono float32
// samples; the clip is resampled when needed. Empty transcription is
// a clean no-match.
func (w *WhisperRecognizer) Recognize(ctx context.Context, clip *audio.Clip) (string, error) {
	if clip == nil || len(clip.Samples) == 0 {
		return "", nil
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	resampled := audio.Resample(clip, 16000)
	samples := make([]float32, len(resampled.Samples))
	for i, s := range resampled.Samples {
		samples[i] = float32(s)
	}

	// Contexts are cheap relative to the model and are not reusable
	// across runs
	wctx, err := w.model.NewContext()
	if err != nil {
		return "", fmt.Errorf("failed to create whisper context: %w", err)
	}

	if w.language != "" {
		if err := wctx.SetLanguage(w.language); err != nil {
			w.logger.Warn("failed to set whisper language, using default", logging.Fields{
				"language": w.language,
				"error":    err.Error(),
			})
		}
	}

	if err := wctx.Process(samples, nil, nil, nil); err != nil {
		return "", fmt.Errorf("whisper processing failed: %w", err)
	}

	var sb strings.Builder
	for {
		segment, err := wctx.NextSegment()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("failed to read whisper segment: %w", err)
		}
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(strings.TrimSpace(segment.Text))
	}

	text := strings.TrimSpace(sb.String())
	w.logger.Debug("local recognition finished", logging.Fields{
		"recognized": text,
	})

	return text, nil
}

// Close releases the loaded model
func (w *WhisperRecognizer) Close() error {
	return w.model.Close()
}
