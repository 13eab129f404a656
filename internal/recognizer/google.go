package recognizer

import (
	"context"
	"fmt"
	"strings"

	speech "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/speech/apiv1/speechpb"

	"github.com/akustiklab/telaffuz/pkg/audio"
	"github.com/akustiklab/telaffuz/pkg/logging"
)

// GoogleRecognizer performs one-shot recognition against Google Cloud
// Speech-to-Text. Credentials come from the standard
// GOOGLE_APPLICATION_CREDENTIALS environment.
type GoogleRecognizer struct {
	client   *speech.Client
	language string
	logger   logging.Logger
}

// NewGoogle creates a cloud recognizer for the given BCP-47 language
// code (e.g. "tr-TR")
func NewGoogle(ctx context.Context, language string) (*GoogleRecognizer, error) {
	client, err := speech.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create speech client: %w", err)
	}

	return &GoogleRecognizer{
		client:   client,
		language: language,
		logger: logging.WithFields(logging.Fields{
			"component": "google_recognizer",
			"language":  language,
		}),
	}, nil
}

// Recognize sends the clip as LINEAR16 PCM and returns the best final
// transcript. No speech in the audio yields empty text, not an error.
func (g *GoogleRecognizer) Recognize(ctx context.Context, clip *audio.Clip) (string, error) {
	if clip == nil || len(clip.Samples) == 0 {
		return "", nil
	}

	resp, err := g.client.Recognize(ctx, &speechpb.RecognizeRequest{
		Config: &speechpb.RecognitionConfig{
			Encoding:        speechpb.RecognitionConfig_LINEAR16,
			SampleRateHertz: int32(clip.SampleRate),
			LanguageCode:    g.language,
		},
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{
				Content: encodeLinear16(clip.Samples),
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("recognize request failed: %w", err)
	}

	var parts []string
	for _, result := range resp.Results {
		if len(result.Alternatives) > 0 {
			parts = append(parts, result.Alternatives[0].Transcript)
		}
	}

	text := strings.TrimSpace(strings.Join(parts, " "))
	g.logger.Debug("cloud recognition finished", logging.Fields{
		"recognized": text,
	})

	return text, nil
}

// Close releases the API client
func (g *GoogleRecognizer) Close() error {
	return g.client.Close()
}

// encodeLinear16 converts float64 PCM to 16-bit little-endian bytes
func encodeLinear16(samples []float64) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		if s > 1.0 {
			s = 1.0
		} else if s < -1.0 {
			s = -1.0
		}
		v := int16(s * 32767.0)
		out[i*2] = byte(v)
		out[i*2+1] = byte(v >> 8)
	}
	return out
}
