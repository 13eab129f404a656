package audio

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/akustiklab/telaffuz/pkg/logging"
)

// Clip holds decoded mono PCM samples
type Clip struct {
	Samples    []float64
	SampleRate int
}

// Duration returns the clip length
func (c *Clip) Duration() time.Duration {
	if c.SampleRate <= 0 {
		return 0
	}
	return time.Duration(float64(len(c.Samples)) / float64(c.SampleRate) * float64(time.Second))
}

// Seconds returns the clip length in seconds
func (c *Clip) Seconds() float64 {
	if c.SampleRate <= 0 {
		return 0
	}
	return float64(len(c.Samples)) / float64(c.SampleRate)
}

// DecodeWAVFile reads a RIFF/WAVE file and returns a mono clip
func DecodeWAVFile(path string) (*Clip, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read audio file: %w", err)
	}
	return DecodeWAV(data)
}

// DecodeWAV decodes RIFF/WAVE PCM data (16-bit integer or 32-bit float)
// into a mono float64 clip in [-1.0, 1.0]. Multi-channel input is
// downmixed by averaging.
func DecodeWAV(data []byte) (*Clip, error) {
	if len(data) < 44 {
		return nil, fmt.Errorf("wav data too short: %d bytes", len(data))
	}
	if string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return nil, fmt.Errorf("not a RIFF/WAVE file")
	}

	var (
		audioFormat   uint16
		channels      int
		sampleRate    int
		bitsPerSample int
		pcm           []byte
	)

	// Walk chunks; fmt must precede data
	offset := 12
	for offset+8 <= len(data) {
		chunkID := string(data[offset : offset+4])
		chunkSize := int(binary.LittleEndian.Uint32(data[offset+4 : offset+8]))
		body := offset + 8

		if body+chunkSize > len(data) {
			chunkSize = len(data) - body
		}

		switch chunkID {
		case "fmt ":
			if chunkSize < 16 {
				return nil, fmt.Errorf("malformed fmt chunk: %d bytes", chunkSize)
			}
			audioFormat = binary.LittleEndian.Uint16(data[body : body+2])
			channels = int(binary.LittleEndian.Uint16(data[body+2 : body+4]))
			sampleRate = int(binary.LittleEndian.Uint32(data[body+4 : body+8]))
			bitsPerSample = int(binary.LittleEndian.Uint16(data[body+14 : body+16]))
		case "data":
			pcm = data[body : body+chunkSize]
		}

		// Chunks are word-aligned
		offset = body + chunkSize
		if chunkSize%2 == 1 {
			offset++
		}

		if pcm != nil && sampleRate > 0 {
			break
		}
	}

	if sampleRate <= 0 || channels <= 0 {
		return nil, fmt.Errorf("missing fmt chunk")
	}
	if len(pcm) == 0 {
		return nil, fmt.Errorf("missing data chunk")
	}

	var samples []float64
	switch {
	case audioFormat == 1 && bitsPerSample == 16:
		samples = convertS16(pcm)
	case audioFormat == 3 && bitsPerSample == 32:
		samples = convertFloat32(pcm)
	default:
		return nil, fmt.Errorf("unsupported wav encoding: format=%d bits=%d", audioFormat, bitsPerSample)
	}

	if channels > 1 {
		samples = downmixMono(samples, channels)
	}

	logging.WithFields(logging.Fields{
		"component": "wav_decoder",
	}).Debug("decoded wav clip", logging.Fields{
		"sample_rate": sampleRate,
		"channels":    channels,
		"samples":     len(samples),
	})

	return &Clip{Samples: samples, SampleRate: sampleRate}, nil
}

// convertS16 converts 16-bit little-endian signed PCM to float64 [-1.0, 1.0]
func convertS16(buffer []byte) []float64 {
	sampleCount := len(buffer) / 2
	samples := make([]float64, sampleCount)

	for i := range sampleCount {
		sample := int16(buffer[i*2]) | int16(buffer[i*2+1])<<8
		samples[i] = float64(sample) / 32768.0
	}

	return samples
}

// convertFloat32 converts 32-bit little-endian IEEE float PCM to float64
func convertFloat32(buffer []byte) []float64 {
	sampleCount := len(buffer) / 4
	samples := make([]float64, sampleCount)

	for i := range sampleCount {
		bits := binary.LittleEndian.Uint32(buffer[i*4 : i*4+4])
		val := float64(math.Float32frombits(bits))
		if math.IsNaN(val) || math.IsInf(val, 0) {
			val = 0
		}
		samples[i] = val
	}

	return samples
}

// downmixMono averages interleaved channels into a single channel
func downmixMono(interleaved []float64, channels int) []float64 {
	frames := len(interleaved) / channels
	mono := make([]float64, frames)

	for i := range frames {
		sum := 0.0
		for ch := range channels {
			sum += interleaved[i*channels+ch]
		}
		mono[i] = sum / float64(channels)
	}

	return mono
}
