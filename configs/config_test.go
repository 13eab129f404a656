package configs

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigValidates(t *testing.T) {
	config := GetDefaultConfig()
	assert.NoError(t, ValidateConfig(config))
}

func TestSetDefaultsFillsGaps(t *testing.T) {
	v := viper.New()
	SetDefaults(v)

	assert.Equal(t, 16000, v.GetInt("audio.sample_rate"))
	assert.Equal(t, 13, v.GetInt("audio.mfcc_coefficients"))
	assert.Equal(t, "three_factor", v.GetString("analysis.fusion_policy"))
	assert.Equal(t, "heuristic", v.GetString("analysis.strategy"))
	assert.True(t, v.GetBool("analysis.validation_enabled"))
	assert.Equal(t, "tr-TR", v.GetString("recognizer.language"))
	assert.Equal(t, 8000, v.GetInt("server.port"))
}

func TestSetDefaultsKeepsExplicitValues(t *testing.T) {
	v := viper.New()
	v.Set("audio.sample_rate", 44100)
	v.Set("analysis.strategy", "ml")

	SetDefaults(v)

	assert.Equal(t, 44100, v.GetInt("audio.sample_rate"))
	assert.Equal(t, "ml", v.GetString("analysis.strategy"))
	assert.Equal(t, 13, v.GetInt("audio.mfcc_coefficients"))
}

func TestValidateConfigRejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errSub string
	}{
		{
			"zero sample rate",
			func(c *Config) { c.Audio.SampleRate = 0 },
			"sample rate",
		},
		{
			"mfcc count too high",
			func(c *Config) { c.Audio.MFCCCoefficients = 51 },
			"mfcc",
		},
		{
			"zero timeout",
			func(c *Config) { c.Analysis.Timeout = 0 },
			"timeout",
		},
		{
			"unknown strategy",
			func(c *Config) { c.Analysis.Strategy = "quantum" },
			"strategy",
		},
		{
			"unknown fusion policy",
			func(c *Config) { c.Analysis.FusionPolicy = "four_factor" },
			"fusion policy",
		},
		{
			"unknown engine",
			func(c *Config) { c.Recognizer.Engine = "siri" },
			"engine",
		},
		{
			"whisper without model",
			func(c *Config) {
				c.Recognizer.Engine = "whisper"
				c.Recognizer.WhisperModelPath = ""
			},
			"model path",
		},
		{
			"port out of range",
			func(c *Config) { c.Server.Port = 70000 },
			"port",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := GetDefaultConfig()
			tt.mutate(config)

			err := ValidateConfig(config)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errSub)
		})
	}
}

func TestValidateConfigAcceptsAllEngines(t *testing.T) {
	for _, engine := range []string{"google", "mock"} {
		config := GetDefaultConfig()
		config.Recognizer.Engine = engine
		assert.NoError(t, ValidateConfig(config), engine)
	}

	config := GetDefaultConfig()
	config.Recognizer.Engine = "whisper"
	config.Recognizer.WhisperModelPath = "/models/ggml-base.bin"
	assert.NoError(t, ValidateConfig(config))
}

func TestGetDefaultAnalysisConfig(t *testing.T) {
	ac := GetDefaultAnalysisConfig()
	assert.Equal(t, "heuristic", ac.Strategy)
	assert.Equal(t, "three_factor", ac.FusionPolicy)
	assert.True(t, ac.ValidationEnabled)
	assert.Equal(t, 30*time.Second, ac.Timeout)
}
