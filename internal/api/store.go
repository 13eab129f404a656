package api

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	participantDirPrefix = "participant_"
	recordingsSubdir     = "kelimeler"
)

// ParticipantInfo is the stored study participant record
type ParticipantInfo struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Age       int       `json:"age"`
	Gender    string    `json:"gender"`
	Consent   bool      `json:"consent"`
	Timestamp time.Time `json:"timestamp"`
}

// SurveyRecord is the stored literacy survey response
type SurveyRecord struct {
	ParticipantID string    `json:"participant_id"`
	Responses     []int     `json:"responses"`
	Timestamp     time.Time `json:"timestamp"`
}

// ParticipantStore keeps study data as JSON and WAV files under a
// data directory, one subdirectory per participant
type ParticipantStore struct {
	dataDir string
}

// NewParticipantStore creates the store and its data directory
func NewParticipantStore(dataDir string) (*ParticipantStore, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return &ParticipantStore{dataDir: dataDir}, nil
}

// Register creates a participant directory and writes the info record.
// Returns the generated participant ID.
func (s *ParticipantStore) Register(name string, age int, gender string, consent bool) (string, error) {
	id := uuid.NewString()

	dir := s.participantDir(id)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create participant directory: %w", err)
	}

	info := ParticipantInfo{
		ID:        id,
		Name:      name,
		Age:       age,
		Gender:    gender,
		Consent:   consent,
		Timestamp: time.Now(),
	}

	if err := writeJSON(filepath.Join(dir, "info.json"), info); err != nil {
		return "", err
	}

	return id, nil
}

// Exists reports whether a participant has been registered
func (s *ParticipantStore) Exists(participantID string) bool {
	if !validID(participantID) {
		return false
	}
	_, err := os.Stat(s.participantDir(participantID))
	return err == nil
}

// SaveSurvey writes the survey responses for a registered participant
func (s *ParticipantStore) SaveSurvey(participantID string, responses []int) error {
	if !s.Exists(participantID) {
		return os.ErrNotExist
	}

	record := SurveyRecord{
		ParticipantID: participantID,
		Responses:     responses,
		Timestamp:     time.Now(),
	}

	return writeJSON(filepath.Join(s.participantDir(participantID), "survey.json"), record)
}

// SaveRecording stores an uploaded pronunciation recording and returns
// the stored filename
func (s *ParticipantStore) SaveRecording(participantID, word string, wordIndex int, data []byte) (string, error) {
	if !s.Exists(participantID) {
		return "", os.ErrNotExist
	}

	dir := filepath.Join(s.participantDir(participantID), recordingsSubdir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create recordings directory: %w", err)
	}

	filename := fmt.Sprintf("%02d_%s.wav", wordIndex, word)
	if err := os.WriteFile(filepath.Join(dir, filename), data, 0644); err != nil {
		return "", fmt.Errorf("failed to write recording: %w", err)
	}

	return filename, nil
}

// SaveResult stores the analysis result next to the recording it scored
func (s *ParticipantStore) SaveResult(participantID, word string, wordIndex int, result any) error {
	if !s.Exists(participantID) {
		return os.ErrNotExist
	}

	dir := filepath.Join(s.participantDir(participantID), recordingsSubdir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create recordings directory: %w", err)
	}

	filename := fmt.Sprintf("%02d_%s_result.json", wordIndex, word)
	return writeJSON(filepath.Join(dir, filename), result)
}

// AudioPath resolves a stored recording path, rejecting names that
// would escape the participant directory
func (s *ParticipantStore) AudioPath(participantID, filename string) (string, error) {
	if !validID(participantID) || filename != filepath.Base(filename) {
		return "", os.ErrNotExist
	}

	path := filepath.Join(s.participantDir(participantID), recordingsSubdir, filename)
	if _, err := os.Stat(path); err != nil {
		return "", os.ErrNotExist
	}

	return path, nil
}

// Count returns the number of registered participants
func (s *ParticipantStore) Count() int {
	entries, err := os.ReadDir(s.dataDir)
	if err != nil {
		return 0
	}

	count := 0
	for _, entry := range entries {
		if entry.IsDir() && strings.HasPrefix(entry.Name(), participantDirPrefix) {
			count++
		}
	}
	return count
}

// DataDir returns the store's root directory
func (s *ParticipantStore) DataDir() string {
	return s.dataDir
}

func (s *ParticipantStore) participantDir(id string) string {
	return filepath.Join(s.dataDir, participantDirPrefix+id)
}

// validID rejects IDs containing path separators
func validID(id string) bool {
	return id != "" && id == filepath.Base(id) && !strings.ContainsAny(id, `/\`)
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	return nil
}
