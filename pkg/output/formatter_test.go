package output

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

type sampleResult struct {
	Word    string             `json:"word"`
	Overall float64            `json:"overall_score"`
	Scores  map[string]float64 `json:"phoneme_scores"`
}

func sample() sampleResult {
	return sampleResult{
		Word:    "pencere",
		Overall: 0.87,
		Scores:  map[string]float64{"p": 0.8, "e": 0.91},
	}
}

func TestJSONFormatterRoundTrip(t *testing.T) {
	f, err := NewFormatter("json")
	require.NoError(t, err)

	data, err := f.Format(sample())
	require.NoError(t, err)

	var decoded sampleResult
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, sample(), decoded)
}

func TestYAMLFormatterRoundTrip(t *testing.T) {
	f, err := NewFormatter("yaml")
	require.NoError(t, err)

	data, err := f.Format(sample())
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, yaml.Unmarshal(data, &decoded))
	assert.Equal(t, "pencere", decoded["word"])
}

func TestTableFormatterFlattensNestedFields(t *testing.T) {
	f, err := NewFormatter("table")
	require.NoError(t, err)

	data, err := f.Format(sample())
	require.NoError(t, err)

	out := string(data)
	assert.Contains(t, out, "FIELD")
	assert.Contains(t, out, "word")
	assert.Contains(t, out, "pencere")
	assert.Contains(t, out, "phoneme_scores.p")
}

func TestTableFormatterNonObject(t *testing.T) {
	f, err := NewFormatter("table")
	require.NoError(t, err)

	data, err := f.Format([]int{1, 2, 3})
	require.NoError(t, err)
	assert.Contains(t, string(data), "value")
}

func TestEmptyFormatDefaultsToTable(t *testing.T) {
	f, err := NewFormatter("")
	require.NoError(t, err)

	data, err := f.Format(sample())
	require.NoError(t, err)
	assert.Contains(t, string(data), "FIELD")
}

func TestUnsupportedFormat(t *testing.T) {
	_, err := NewFormatter("csv")
	assert.Error(t, err)
}
