package api

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"math"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akustiklab/telaffuz/configs"
	"github.com/akustiklab/telaffuz/internal/analysis"
	"github.com/akustiklab/telaffuz/internal/phonemizer"
	"github.com/akustiklab/telaffuz/pkg/audio"
)

type cannedRecognizer struct {
	text string
}

func (c *cannedRecognizer) Recognize(ctx context.Context, clip *audio.Clip) (string, error) {
	return c.text, nil
}

func newTestServer(t *testing.T, recognized string) *Server {
	t.Helper()

	phon := phonemizer.NewEspeak("tr")
	pipeline := analysis.NewPipeline(
		&cannedRecognizer{text: recognized},
		phon,
		nil,
		analysis.PipelineOptions{ValidationEnabled: true},
	)

	server, err := NewServer(configs.ServerConfig{
		Host:            "127.0.0.1",
		Port:            0,
		ShutdownTimeout: time.Second,
		DataDir:         t.TempDir(),
	}, pipeline, phon)
	require.NoError(t, err)

	return server
}

func doJSON(t *testing.T, server *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)
	return rec
}

// toneWAV builds a playable PCM16 WAV of a sine tone
func toneWAV(freq, seconds float64) []byte {
	rate := 16000
	n := int(seconds * float64(rate))

	var pcm bytes.Buffer
	for i := range n {
		s := 0.3 * math.Sin(2*math.Pi*freq*float64(i)/float64(rate))
		binary.Write(&pcm, binary.LittleEndian, int16(s*32767))
	}

	var buf bytes.Buffer
	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+pcm.Len()))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(1))
	binary.Write(&buf, binary.LittleEndian, uint16(1))
	binary.Write(&buf, binary.LittleEndian, uint32(rate))
	binary.Write(&buf, binary.LittleEndian, uint32(rate*2))
	binary.Write(&buf, binary.LittleEndian, uint16(2))
	binary.Write(&buf, binary.LittleEndian, uint16(16))
	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(pcm.Len()))
	buf.Write(pcm.Bytes())

	return buf.Bytes()
}

func multipartBody(t *testing.T, fields map[string]string, fileField, filename string, fileData []byte) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	fw, err := w.CreateFormFile(fileField, filename)
	require.NoError(t, err)
	_, err = fw.Write(fileData)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	return &buf, w.FormDataContentType()
}

func TestHealthEndpoint(t *testing.T) {
	server := newTestServer(t, "pencere")

	rec := doJSON(t, server, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, 0, resp.Participants)
}

func TestRegisterSurveyUploadFlow(t *testing.T) {
	server := newTestServer(t, "pencere")

	// Register
	rec := doJSON(t, server, http.MethodPost, "/register", RegisterRequest{
		Name: "Test Participant", Age: 25, Gender: "female", Consent: true,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var reg RegisterResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reg))
	require.NotEmpty(t, reg.ParticipantID)
	assert.Equal(t, "registered", reg.Status)

	// Survey
	rec = doJSON(t, server, http.MethodPost, "/survey", SurveyRequest{
		ParticipantID: reg.ParticipantID,
		Responses:     []int{5, 4, 3, 2, 1},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	// Upload a recording
	body, contentType := multipartBody(t, map[string]string{
		"participant_id": reg.ParticipantID,
		"word":           "pencere",
		"word_index":     "3",
	}, "audio", "pencere.wav", toneWAV(220, 0.5))

	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	server.Handler().ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var upload UploadResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &upload))
	assert.Equal(t, "03_pencere.wav", upload.Filename)

	// Fetch the stored audio back
	req = httptest.NewRequest(http.MethodGet, "/audio/"+reg.ParticipantID+"/03_pencere.wav", nil)
	w = httptest.NewRecorder()
	server.Handler().ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Body.Bytes())
}

func TestRegisterWithoutConsent(t *testing.T) {
	server := newTestServer(t, "pencere")

	rec := doJSON(t, server, http.MethodPost, "/register", RegisterRequest{
		Name: "No Consent", Age: 30, Consent: false,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSurveyUnknownParticipant(t *testing.T) {
	server := newTestServer(t, "pencere")

	rec := doJSON(t, server, http.MethodPost, "/survey", SurveyRequest{
		ParticipantID: "does-not-exist",
		Responses:     []int{1},
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServeAudioRejectsTraversal(t *testing.T) {
	server := newTestServer(t, "pencere")

	req := httptest.NewRequest(http.MethodGet, "/audio/..%2F..%2Fetc/passwd", nil)
	w := httptest.NewRecorder()
	server.Handler().ServeHTTP(w, req)
	assert.NotEqual(t, http.StatusOK, w.Code)
}

func TestAnalyzeEndpoint(t *testing.T) {
	server := newTestServer(t, "pencere")

	body, contentType := multipartBody(t, map[string]string{
		"word": "pencere",
	}, "file", "pencere.wav", toneWAV(220, 1.0))

	req := httptest.NewRequest(http.MethodPost, "/analyze", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	server.Handler().ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var result analysis.AnalysisResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, "pencere", result.Word)
	assert.Equal(t, "pencere", result.RecognizedText)
	assert.Greater(t, result.Overall, 0.0)
	assert.NotEmpty(t, result.Grade)
}

func TestAnalyzeEndpointMissingWord(t *testing.T) {
	server := newTestServer(t, "pencere")

	body, contentType := multipartBody(t, nil, "file", "x.wav", toneWAV(220, 1.0))
	req := httptest.NewRequest(http.MethodPost, "/analyze", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	server.Handler().ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAnalyzeEndpointRejectsGarbageAudio(t *testing.T) {
	server := newTestServer(t, "pencere")

	body, contentType := multipartBody(t, map[string]string{
		"word": "pencere",
	}, "file", "x.wav", []byte("this is not audio at all, not even close"))

	req := httptest.NewRequest(http.MethodPost, "/analyze", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	server.Handler().ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPhonemeGenerate(t *testing.T) {
	server := newTestServer(t, "pencere")

	rec := doJSON(t, server, http.MethodPost, "/phoneme/generate", PhonemeRequest{Word: "kedi"})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp PhonemeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "kedi", resp.Word)
	assert.Positive(t, resp.PhonemeCount)
	assert.NotEmpty(t, resp.Phonemes)
}

func TestPhonemeGenerateEmptyWord(t *testing.T) {
	server := newTestServer(t, "pencere")

	rec := doJSON(t, server, http.MethodPost, "/phoneme/generate", PhonemeRequest{Word: "  "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPhonemeBatch(t *testing.T) {
	server := newTestServer(t, "pencere")

	req := httptest.NewRequest(http.MethodPost, "/phoneme/batch",
		strings.NewReader(`["kedi","su"]`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	server.Handler().ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp []PhonemeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp, 2)
	assert.Equal(t, "kedi", resp[0].Word)
}

func TestParticipantStoreValidation(t *testing.T) {
	store, err := NewParticipantStore(t.TempDir())
	require.NoError(t, err)

	assert.False(t, store.Exists("../escape"))
	assert.False(t, store.Exists(""))

	_, err = store.AudioPath("id", "../../etc/passwd")
	assert.Error(t, err)
}
