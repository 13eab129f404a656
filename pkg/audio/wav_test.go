package audio

import (
	"bytes"
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildWAV assembles a minimal RIFF/WAVE file with 16-bit PCM data
func buildWAV(samples []int16, sampleRate, channels int) []byte {
	var pcm bytes.Buffer
	for _, s := range samples {
		binary.Write(&pcm, binary.LittleEndian, s)
	}

	var buf bytes.Buffer
	dataSize := pcm.Len()

	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+dataSize))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(&buf, binary.LittleEndian, uint16(channels))
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate))
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate*channels*2))
	binary.Write(&buf, binary.LittleEndian, uint16(channels*2))
	binary.Write(&buf, binary.LittleEndian, uint16(16))

	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(dataSize))
	buf.Write(pcm.Bytes())

	return buf.Bytes()
}

func TestDecodeWAVMono16(t *testing.T) {
	data := buildWAV([]int16{0, 16384, -16384, 32767}, 16000, 1)

	clip, err := DecodeWAV(data)
	require.NoError(t, err)

	assert.Equal(t, 16000, clip.SampleRate)
	require.Len(t, clip.Samples, 4)
	assert.InDelta(t, 0.0, clip.Samples[0], 1e-9)
	assert.InDelta(t, 0.5, clip.Samples[1], 1e-9)
	assert.InDelta(t, -0.5, clip.Samples[2], 1e-9)
	assert.InDelta(t, 1.0, clip.Samples[3], 1e-4)
}

func TestDecodeWAVStereoDownmix(t *testing.T) {
	// Interleaved L/R pairs average into one channel
	data := buildWAV([]int16{16384, 0, 0, 16384}, 44100, 2)

	clip, err := DecodeWAV(data)
	require.NoError(t, err)

	require.Len(t, clip.Samples, 2)
	assert.InDelta(t, 0.25, clip.Samples[0], 1e-9)
	assert.InDelta(t, 0.25, clip.Samples[1], 1e-9)
}

func TestDecodeWAVFloat32(t *testing.T) {
	var pcm bytes.Buffer
	for _, s := range []float32{0.5, -0.5} {
		binary.Write(&pcm, binary.LittleEndian, s)
	}

	var buf bytes.Buffer
	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+pcm.Len()))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(3)) // IEEE float
	binary.Write(&buf, binary.LittleEndian, uint16(1))
	binary.Write(&buf, binary.LittleEndian, uint32(16000))
	binary.Write(&buf, binary.LittleEndian, uint32(16000*4))
	binary.Write(&buf, binary.LittleEndian, uint16(4))
	binary.Write(&buf, binary.LittleEndian, uint16(32))
	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(pcm.Len()))
	buf.Write(pcm.Bytes())

	clip, err := DecodeWAV(buf.Bytes())
	require.NoError(t, err)

	require.Len(t, clip.Samples, 2)
	assert.InDelta(t, 0.5, clip.Samples[0], 1e-9)
	assert.InDelta(t, -0.5, clip.Samples[1], 1e-9)
}

func TestDecodeWAVRejectsGarbage(t *testing.T) {
	_, err := DecodeWAV([]byte("definitely not audio, far too short"))
	assert.Error(t, err)

	_, err = DecodeWAV(bytes.Repeat([]byte{0}, 64))
	assert.Error(t, err)
}

func TestDecodeWAVRejectsUnsupportedEncoding(t *testing.T) {
	data := buildWAV([]int16{0, 0}, 16000, 1)
	// Patch bits per sample in the fmt chunk to 8
	binary.LittleEndian.PutUint16(data[34:36], 8)

	_, err := DecodeWAV(data)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported wav encoding")
}

func TestDecodeWAVFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tone.wav")
	require.NoError(t, os.WriteFile(path, buildWAV([]int16{100, 200}, 8000, 1), 0644))

	clip, err := DecodeWAVFile(path)
	require.NoError(t, err)
	assert.Equal(t, 8000, clip.SampleRate)
	assert.Len(t, clip.Samples, 2)
}

func TestDecodeWAVFileMissing(t *testing.T) {
	_, err := DecodeWAVFile(filepath.Join(t.TempDir(), "nope.wav"))
	assert.Error(t, err)
}

func TestClipDuration(t *testing.T) {
	clip := &Clip{Samples: make([]float64, 8000), SampleRate: 16000}

	assert.InDelta(t, 0.5, clip.Seconds(), 1e-9)
	assert.Equal(t, int64(500), clip.Duration().Milliseconds())
}

func TestResampleDownsamplePreservesDuration(t *testing.T) {
	rate := 44100
	seconds := 0.5
	samples := make([]float64, int(float64(rate)*seconds))
	for i := range samples {
		samples[i] = math.Sin(2 * math.Pi * 440 * float64(i) / float64(rate))
	}
	clip := &Clip{Samples: samples, SampleRate: rate}

	out := Resample(clip, 16000)

	assert.Equal(t, 16000, out.SampleRate)
	assert.InDelta(t, seconds, out.Seconds(), 0.01)
}

func TestResampleSameRateReturnsOriginal(t *testing.T) {
	clip := &Clip{Samples: []float64{0.1, 0.2}, SampleRate: 16000}
	assert.Same(t, clip, Resample(clip, 16000))
}

func TestResampleValuesStayInRange(t *testing.T) {
	rate := 8000
	samples := make([]float64, rate)
	for i := range samples {
		samples[i] = 0.9 * math.Sin(2*math.Pi*200*float64(i)/float64(rate))
	}

	out := Resample(&Clip{Samples: samples, SampleRate: rate}, 16000)
	for _, s := range out.Samples {
		assert.LessOrEqual(t, math.Abs(s), 0.9+1e-9)
	}
}
