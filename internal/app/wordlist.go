package app

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/akustiklab/telaffuz/internal/analysis"
)

// Wordlist pairs target words with recordings for batch analysis
type Wordlist struct {
	Name    string          `json:"name" yaml:"name"`
	Entries []WordlistEntry `json:"entries" yaml:"entries"`
}

// WordlistEntry is a single word/recording pair
type WordlistEntry struct {
	Word      string `json:"word" yaml:"word"`
	AudioFile string `json:"audio_file" yaml:"audio_file"`
}

// BatchEntryResult is the per-entry outcome of a batch run
type BatchEntryResult struct {
	Word      string                   `json:"word"`
	AudioFile string                   `json:"audio_file"`
	Result    *analysis.AnalysisResult `json:"result,omitempty"`
	Error     string                   `json:"error,omitempty"`
}

// BatchSummary aggregates a batch analysis run
type BatchSummary struct {
	StartTime     time.Time           `json:"start_time"`
	EndTime       time.Time           `json:"end_time"`
	TotalDuration time.Duration       `json:"total_duration"`
	Successful    int                 `json:"successful"`
	Failed        int                 `json:"failed"`
	AverageScore  float64             `json:"average_score"`
	Results       []*BatchEntryResult `json:"results"`
}

// computeAverages fills the aggregate score over successful entries
func (s *BatchSummary) computeAverages() {
	if s.Successful == 0 {
		return
	}

	var sum float64
	for _, entry := range s.Results {
		if entry.Result != nil {
			sum += entry.Result.Overall
		}
	}
	s.AverageScore = analysis.Round3(sum / float64(s.Successful))
}

// LoadWordlist loads a wordlist from a YAML or JSON file
func LoadWordlist(filePath string) (*Wordlist, error) {
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("wordlist file does not exist: %s", filePath)
	}

	ext := filepath.Ext(filePath)
	switch ext {
	case ".yaml", ".yml":
		return loadWordlistFromYAML(filePath)
	case ".json":
		return loadWordlistFromJSON(filePath)
	default:
		// Try YAML first, then JSON
		if wl, err := loadWordlistFromYAML(filePath); err == nil {
			return wl, nil
		}
		return loadWordlistFromJSON(filePath)
	}
}

func loadWordlistFromYAML(filePath string) (*Wordlist, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read YAML wordlist file: %w", err)
	}

	var wordlist Wordlist
	if err := yaml.Unmarshal(data, &wordlist); err != nil {
		return nil, fmt.Errorf("failed to parse YAML wordlist: %w", err)
	}

	return &wordlist, wordlist.validate()
}

func loadWordlistFromJSON(filePath string) (*Wordlist, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read JSON wordlist file: %w", err)
	}

	var wordlist Wordlist
	if err := json.Unmarshal(data, &wordlist); err != nil {
		return nil, fmt.Errorf("failed to parse JSON wordlist: %w", err)
	}

	return &wordlist, wordlist.validate()
}

func (w *Wordlist) validate() error {
	if len(w.Entries) == 0 {
		return fmt.Errorf("wordlist has no entries")
	}
	for i, entry := range w.Entries {
		if entry.Word == "" {
			return fmt.Errorf("wordlist entry %d has no word", i)
		}
		if entry.AudioFile == "" {
			return fmt.Errorf("wordlist entry %d (%s) has no audio file", i, entry.Word)
		}
	}
	return nil
}

// GenerateExampleWordlist writes an example wordlist file
func GenerateExampleWordlist(outputFile string) error {
	example := &Wordlist{
		Name: "Starter Turkish words",
		Entries: []WordlistEntry{
			{Word: "merhaba", AudioFile: "recordings/merhaba.wav"},
			{Word: "pencere", AudioFile: "recordings/pencere.wav"},
			{Word: "teşekkürler", AudioFile: "recordings/tesekkurler.wav"},
		},
	}

	data, err := yaml.Marshal(example)
	if err != nil {
		return fmt.Errorf("failed to marshal example wordlist: %w", err)
	}

	dir := filepath.Dir(outputFile)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	if err := os.WriteFile(outputFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write wordlist file: %w", err)
	}

	fmt.Printf("Example wordlist written to: %s\n", outputFile)
	return nil
}
