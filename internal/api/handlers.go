package api

import (
	"errors"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/akustiklab/telaffuz/internal/analysis"
	"github.com/akustiklab/telaffuz/pkg/audio"
	"github.com/akustiklab/telaffuz/pkg/logging"
)

func (s *Server) handleRoot(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"service":         "Turkish Pronunciation Analysis",
		"status":          "running",
		"analysis_method": "speech recognition + phoneme analysis",
	})
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{
		Status:         "healthy",
		DataDir:        s.store.DataDir(),
		Participants:   s.store.Count(),
		Phonemizer:     s.phonemizer.Available(c.Request().Context()),
		AnalysisMethod: "speech recognition + phoneme analysis",
	})
}

func (s *Server) handleRegister(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request format",
		})
	}

	if !req.Consent {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "consent_required",
			Message: "Consent is required",
		})
	}

	id, err := s.store.Register(req.Name, req.Age, req.Gender, req.Consent)
	if err != nil {
		s.logger.Error(err, "Failed to register participant")
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "registration_failed",
			Message: "Failed to store participant record",
		})
	}

	s.logger.Info("Participant registered", logging.Fields{
		"participant_id": id,
	})

	return c.JSON(http.StatusOK, RegisterResponse{
		ParticipantID: id,
		Status:        "registered",
	})
}

func (s *Server) handleSurvey(c echo.Context) error {
	var req SurveyRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request format",
		})
	}

	if err := s.store.SaveSurvey(req.ParticipantID, req.Responses); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "participant_not_found",
				Message: "Participant not found",
			})
		}
		s.logger.Error(err, "Failed to save survey")
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "survey_save_failed",
			Message: "Failed to store survey responses",
		})
	}

	return c.JSON(http.StatusOK, map[string]string{"status": "survey_saved"})
}

func (s *Server) handleUpload(c echo.Context) error {
	participantID := c.FormValue("participant_id")
	word := c.FormValue("word")
	wordIndex, err := strconv.Atoi(c.FormValue("word_index"))
	if participantID == "" || word == "" || err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "missing_fields",
			Message: "participant_id, word and word_index are required",
		})
	}

	data, err := readUpload(c, "audio")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_audio",
			Message: "A readable audio file is required",
		})
	}

	filename, err := s.store.SaveRecording(participantID, word, wordIndex, data)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "participant_not_found",
				Message: "Participant not found",
			})
		}
		s.logger.Error(err, "Failed to save recording", logging.Fields{
			"participant_id": participantID,
			"word":           word,
		})
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "upload_failed",
			Message: "Failed to store recording",
		})
	}

	// Recordings are scored through /analyze; the upload endpoint only
	// archives the audio for later review
	return c.JSON(http.StatusOK, UploadResponse{
		Word:     word,
		Filename: filename,
		Status:   "saved",
	})
}

func (s *Server) handleServeAudio(c echo.Context) error {
	path, err := s.store.AudioPath(c.Param("participant"), c.Param("filename"))
	if err != nil {
		return c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "audio_not_found",
			Message: "Audio file not found",
		})
	}
	return c.File(path)
}

func (s *Server) handleAnalyze(c echo.Context) error {
	word := strings.TrimSpace(c.FormValue("word"))
	if word == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "missing_word",
			Message: "A target word is required",
		})
	}

	data, err := readUpload(c, "file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_audio",
			Message: "A readable .wav file is required",
		})
	}

	clip, err := audio.DecodeWAV(data)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "decode_failed",
			Message: "Only PCM .wav files are supported",
		})
	}

	result, err := s.pipeline.Analyze(c.Request().Context(), clip, word, nil)
	if err != nil {
		var analysisErr *analysis.AnalysisError
		if errors.As(err, &analysisErr) && analysisErr.Code == analysis.ErrCodeRecognizerUnavailable {
			return c.JSON(http.StatusServiceUnavailable, ErrorResponse{
				Error:   "recognizer_unavailable",
				Message: analysisErr.Message,
			})
		}
		s.logger.Error(err, "Analysis failed", logging.Fields{
			"word": word,
		})
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "analysis_failed",
			Message: "Audio analysis failed",
		})
	}

	return c.JSON(http.StatusOK, result)
}

func (s *Server) handlePhonemeGenerate(c echo.Context) error {
	req, ok := bindPhonemeRequest(c)
	if !ok {
		return nil
	}

	wa, err := s.phonemizer.Analyze(c.Request().Context(), req.Word)
	if err != nil || wa == nil {
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "phoneme_generation_failed",
			Message: "Failed to generate phonemes",
		})
	}

	return c.JSON(http.StatusOK, PhonemeResponse{
		Word:         wa.Word,
		Phonemes:     strings.Join(wa.Phonemes, " "),
		PhonemeCount: wa.PhonemeCount,
		Language:     wa.Language,
		Backend:      wa.Backend,
	})
}

func (s *Server) handlePhonemeAnalyze(c echo.Context) error {
	req, ok := bindPhonemeRequest(c)
	if !ok {
		return nil
	}

	wa, err := s.phonemizer.Analyze(c.Request().Context(), req.Word)
	if err != nil || wa == nil {
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "phoneme_analysis_failed",
			Message: "Failed to analyze word",
		})
	}

	return c.JSON(http.StatusOK, wa)
}

func (s *Server) handlePhonemeBatch(c echo.Context) error {
	var words []string
	if err := c.Bind(&words); err != nil || len(words) == 0 {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "A non-empty word list is required",
		})
	}

	analyses, err := s.phonemizer.AnalyzeBatch(c.Request().Context(), words)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "phoneme_batch_failed",
			Message: "Failed to analyze word list",
		})
	}

	responses := make([]PhonemeResponse, 0, len(analyses))
	for _, wa := range analyses {
		responses = append(responses, PhonemeResponse{
			Word:         wa.Word,
			Phonemes:     strings.Join(wa.Phonemes, " "),
			PhonemeCount: wa.PhonemeCount,
			Language:     wa.Language,
			Backend:      wa.Backend,
		})
	}

	return c.JSON(http.StatusOK, responses)
}

func (s *Server) handlePhonemeHealth(c echo.Context) error {
	available := s.phonemizer.Available(c.Request().Context())
	status := "healthy"
	if !available {
		status = "degraded"
	}
	return c.JSON(http.StatusOK, map[string]any{
		"status":    status,
		"available": available,
		"backend":   "espeak-ng",
	})
}

// bindPhonemeRequest binds and validates the request body, writing the
// error response itself when the request is unusable
func bindPhonemeRequest(c echo.Context) (*PhonemeRequest, bool) {
	var req PhonemeRequest
	if err := c.Bind(&req); err != nil {
		_ = c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request format",
		})
		return nil, false
	}
	req.Word = strings.TrimSpace(req.Word)
	if req.Word == "" {
		_ = c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "missing_word",
			Message: "A word is required",
		})
		return nil, false
	}
	return &req, true
}

// readUpload reads a multipart file field fully into memory
func readUpload(c echo.Context, field string) ([]byte, error) {
	fileHeader, err := c.FormFile(field)
	if err != nil {
		return nil, err
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return io.ReadAll(file)
}
