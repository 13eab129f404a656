package configs

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// SetDefaults sets default configuration values for all components
func SetDefaults(v *viper.Viper) {
	// Application defaults
	if !v.IsSet("verbose") {
		v.Set("verbose", false)
	}
	if !v.IsSet("log_level") {
		v.Set("log_level", "info")
	}
	if !v.IsSet("output_format") {
		v.Set("output_format", "table")
	}

	// Analysis defaults
	if !v.IsSet("analysis.strategy") {
		v.Set("analysis.strategy", "heuristic")
	}
	if !v.IsSet("analysis.fusion_policy") {
		v.Set("analysis.fusion_policy", "three_factor")
	}
	if !v.IsSet("analysis.validation_enabled") {
		v.Set("analysis.validation_enabled", true)
	}
	if !v.IsSet("analysis.timeout") {
		v.Set("analysis.timeout", 30*time.Second)
	}

	// Audio processing defaults
	if !v.IsSet("audio.sample_rate") {
		v.Set("audio.sample_rate", 16000)
	}
	if !v.IsSet("audio.frame_millis") {
		v.Set("audio.frame_millis", 25)
	}
	if !v.IsSet("audio.hop_millis") {
		v.Set("audio.hop_millis", 10)
	}
	if !v.IsSet("audio.mfcc_coefficients") {
		v.Set("audio.mfcc_coefficients", 13)
	}
	if !v.IsSet("audio.rolloff_threshold") {
		v.Set("audio.rolloff_threshold", 0.85)
	}

	// Recognizer defaults
	if !v.IsSet("recognizer.engine") {
		v.Set("recognizer.engine", "google")
	}
	if !v.IsSet("recognizer.language") {
		v.Set("recognizer.language", "tr-TR")
	}
	if !v.IsSet("recognizer.whisper_language") {
		v.Set("recognizer.whisper_language", "tr")
	}

	// Phonemizer defaults
	if !v.IsSet("phonemizer.voice") {
		v.Set("phonemizer.voice", "tr")
	}

	// Server defaults
	if !v.IsSet("server.host") {
		v.Set("server.host", "0.0.0.0")
	}
	if !v.IsSet("server.port") {
		v.Set("server.port", 8000)
	}
	if !v.IsSet("server.shutdown_timeout") {
		v.Set("server.shutdown_timeout", 10*time.Second)
	}
	if !v.IsSet("server.data_dir") {
		v.Set("server.data_dir", defaultDataDir())
	}
}

func defaultDataDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "telaffuz")
}

// GetDefaultConfig returns a Config struct with all default values set
func GetDefaultConfig() *Config {
	home, _ := os.UserHomeDir()

	return &Config{
		Verbose:      false,
		LogLevel:     "info",
		OutputFormat: "table",
		ConfigDir:    filepath.Join(home, ".config", "telaffuz"),
		DataDir:      defaultDataDir(),
		Analysis:     GetDefaultAnalysisConfig(),
		Audio:        GetDefaultAudioConfig(),
		Recognizer:   GetDefaultRecognizerConfig(),
		Phonemizer:   PhonemizerConfig{Voice: "tr"},
		Server:       GetDefaultServerConfig(),
	}
}

// GetDefaultAnalysisConfig returns default scoring pipeline settings
func GetDefaultAnalysisConfig() AnalysisConfig {
	return AnalysisConfig{
		Strategy:          "heuristic",
		FusionPolicy:      "three_factor",
		ValidationEnabled: true,
		Timeout:           30 * time.Second,
	}
}

// GetDefaultAudioConfig returns default audio processing settings
func GetDefaultAudioConfig() AudioConfig {
	return AudioConfig{
		SampleRate:       16000,
		FrameMillis:      25,
		HopMillis:        10,
		MFCCCoefficients: 13,
		RolloffThreshold: 0.85,
	}
}

// GetDefaultRecognizerConfig returns default speech-to-text settings
func GetDefaultRecognizerConfig() RecognizerConfig {
	return RecognizerConfig{
		Engine:          "google",
		Language:        "tr-TR",
		WhisperLanguage: "tr",
	}
}

// GetDefaultServerConfig returns default HTTP API settings
func GetDefaultServerConfig() ServerConfig {
	return ServerConfig{
		Host:            "0.0.0.0",
		Port:            8000,
		ShutdownTimeout: 10 * time.Second,
		DataDir:         defaultDataDir(),
	}
}
