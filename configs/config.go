package configs

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	// Application settings
	Verbose      bool   `mapstructure:"verbose"`
	LogLevel     string `mapstructure:"log_level"`
	OutputFormat string `mapstructure:"output_format"`
	ConfigDir    string `mapstructure:"config_dir"`
	DataDir      string `mapstructure:"data_dir"`

	// Analysis configuration
	Analysis AnalysisConfig `mapstructure:"analysis"`

	// Audio processing configuration
	Audio AudioConfig `mapstructure:"audio"`

	// Recognizer configuration
	Recognizer RecognizerConfig `mapstructure:"recognizer"`

	// Phonemizer configuration
	Phonemizer PhonemizerConfig `mapstructure:"phonemizer"`

	// HTTP server configuration
	Server ServerConfig `mapstructure:"server"`
}

// AnalysisConfig contains scoring pipeline settings
type AnalysisConfig struct {
	// "heuristic" or "ml"
	Strategy string `mapstructure:"strategy"`

	// "two_factor" or "three_factor"
	FusionPolicy string `mapstructure:"fusion_policy"`

	// When false the legacy heuristic path always scores
	ValidationEnabled bool `mapstructure:"validation_enabled"`

	// Directory holding exported ML scorer weights
	ModelDir string `mapstructure:"model_dir"`

	// Whole-pipeline deadline per request
	Timeout time.Duration `mapstructure:"timeout"`
}

// AudioConfig contains audio processing settings
type AudioConfig struct {
	SampleRate       int     `mapstructure:"sample_rate"`
	FrameMillis      int     `mapstructure:"frame_millis"`
	HopMillis        int     `mapstructure:"hop_millis"`
	MFCCCoefficients int     `mapstructure:"mfcc_coefficients"`
	RolloffThreshold float64 `mapstructure:"rolloff_threshold"`
}

// RecognizerConfig contains speech-to-text settings
type RecognizerConfig struct {
	// "google", "whisper", or "mock"
	Engine string `mapstructure:"engine"`

	// BCP-47 language code for the cloud engine
	Language string `mapstructure:"language"`

	// Short language code for whisper
	WhisperLanguage string `mapstructure:"whisper_language"`

	// Path to a ggml whisper model
	WhisperModelPath string `mapstructure:"whisper_model_path"`
}

// PhonemizerConfig contains grapheme-to-phoneme settings
type PhonemizerConfig struct {
	Voice string `mapstructure:"voice"`
}

// ServerConfig contains HTTP API settings
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	DataDir         string        `mapstructure:"data_dir"`
}

// LoadConfig loads configuration from viper
func LoadConfig() (*Config, error) {
	config := &Config{}

	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("unable to decode configuration: %w", err)
	}

	return config, nil
}

// ValidateConfig validates the configuration
func ValidateConfig(config *Config) error {
	if config.Audio.SampleRate <= 0 {
		return fmt.Errorf("audio sample rate must be positive")
	}

	if config.Audio.MFCCCoefficients < 1 || config.Audio.MFCCCoefficients > 50 {
		return fmt.Errorf("mfcc coefficient count must be between 1 and 50")
	}

	if config.Analysis.Timeout <= 0 {
		return fmt.Errorf("analysis timeout must be positive")
	}

	switch config.Analysis.Strategy {
	case "heuristic", "ml":
	default:
		return fmt.Errorf("unknown scoring strategy: %s", config.Analysis.Strategy)
	}

	switch config.Analysis.FusionPolicy {
	case "two_factor", "three_factor":
	default:
		return fmt.Errorf("unknown fusion policy: %s", config.Analysis.FusionPolicy)
	}

	switch config.Recognizer.Engine {
	case "google", "whisper", "mock":
	default:
		return fmt.Errorf("unknown recognizer engine: %s", config.Recognizer.Engine)
	}

	if config.Recognizer.Engine == "whisper" && config.Recognizer.WhisperModelPath == "" {
		return fmt.Errorf("whisper engine requires a model path")
	}

	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return fmt.Errorf("server port must be between 1 and 65535")
	}

	return nil
}
