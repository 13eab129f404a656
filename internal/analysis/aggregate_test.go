package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFuseTwoFactor(t *testing.T) {
	// 0.4*0.95 + 0.6*0.8
	assert.InDelta(t, 0.86, Fuse(FusionTwoFactor, 0.95, 0.8, 0), 1e-9)
}

func TestFuseThreeFactor(t *testing.T) {
	// 0.3*0.95 + 0.5*0.8 + 0.2*1.0
	assert.InDelta(t, 0.885, Fuse(FusionThreeFactor, 0.95, 0.8, 1.0), 1e-9)
}

func TestFuseUnknownPolicyDefaultsToThreeFactor(t *testing.T) {
	assert.Equal(t,
		Fuse(FusionThreeFactor, 0.9, 0.7, 0.5),
		Fuse(FusionPolicy(""), 0.9, 0.7, 0.5))
}

func TestAcousticScoreMean(t *testing.T) {
	scores := map[string]float64{"a": 0.9, "b": 0.7, "c": 0.8}
	assert.InDelta(t, 0.8, AcousticScore(scores), 1e-9)
}

func TestAcousticScoreEmptySequenceFallback(t *testing.T) {
	assert.InDelta(t, 0.7, AcousticScore(nil), 1e-9)
}

func TestGradeThresholds(t *testing.T) {
	tests := []struct {
		overall float64
		want    string
	}{
		{1.0, "A"},
		{0.9, "A"},
		{0.899, "B"},
		{0.8, "B"},
		{0.799, "C"},
		{0.7, "C"},
		{0.699, "D"},
		{0.6, "D"},
		{0.599, "F"},
		{0.0, "F"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Grade(tt.overall), "overall %v", tt.overall)
	}
}

func TestRound3(t *testing.T) {
	assert.Equal(t, 0.123, Round3(0.12345))
	assert.Equal(t, 0.124, Round3(0.1235))
	assert.Equal(t, 1.0, Round3(0.9999))
	assert.Equal(t, 0.0, Round3(0.0))
}
