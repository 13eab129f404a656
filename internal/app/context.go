package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/akustiklab/telaffuz/configs"
	"github.com/akustiklab/telaffuz/internal/analysis"
	"github.com/akustiklab/telaffuz/internal/phonemizer"
	"github.com/akustiklab/telaffuz/internal/recognizer"
	"github.com/akustiklab/telaffuz/pkg/audio"
	"github.com/akustiklab/telaffuz/pkg/logging"
	"github.com/akustiklab/telaffuz/pkg/output"
)

// Context holds the application context and configuration
type Context struct {
	// CLI arguments
	ConfigFile   string
	OutputFile   string
	OutputFormat string
	Timeout      time.Duration
	Verbose      bool
	Quiet        bool

	// Runtime context
	Logger logging.Logger
	Config *configs.Config
}

// AnalyzerApp handles the pronunciation analyzer application lifecycle
type AnalyzerApp struct {
	ctx        *Context
	config     *configs.Config
	logger     logging.Logger
	pipeline   *analysis.Pipeline
	phonemizer *phonemizer.EspeakPhonemizer
	recognizer recognizer.Recognizer
}

// NewAnalyzerApp creates a new analyzer application from the loaded
// configuration, wiring the recognizer engine, phonemizer and scoring
// strategy it names
func NewAnalyzerApp(ctx *Context) (*AnalyzerApp, error) {
	config, err := loadAndMergeConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	ctx.Config = config

	logging.Configure(config.LogLevel, config.Verbose)
	logger := logging.WithFields(logging.Fields{
		"component": "analyzer_app",
	})
	ctx.Logger = logger

	rec := buildRecognizer(config)
	phon := phonemizer.NewEspeak(config.Phonemizer.Voice)
	scorer := buildScorer(config)

	pipeline := analysis.NewPipeline(rec, phon, scorer, analysis.PipelineOptions{
		Policy:            analysis.FusionPolicy(config.Analysis.FusionPolicy),
		ValidationEnabled: config.Analysis.ValidationEnabled,
		Extractor: analysis.ExtractorConfig{
			SampleRate:       config.Audio.SampleRate,
			FrameMillis:      config.Audio.FrameMillis,
			HopMillis:        config.Audio.HopMillis,
			MFCCCoefficients: config.Audio.MFCCCoefficients,
			RolloffThreshold: config.Audio.RolloffThreshold,
		},
	})

	logger.Debug("Analyzer application initialized", logging.Fields{
		"config_file":        ctx.ConfigFile,
		"recognizer_engine":  config.Recognizer.Engine,
		"scoring_strategy":   config.Analysis.Strategy,
		"fusion_policy":      config.Analysis.FusionPolicy,
		"validation_enabled": config.Analysis.ValidationEnabled,
		"output_format":      ctx.OutputFormat,
	})

	return &AnalyzerApp{
		ctx:        ctx,
		config:     config,
		logger:     logger,
		pipeline:   pipeline,
		phonemizer: phon,
		recognizer: rec,
	}, nil
}

// Config returns the loaded application configuration
func (app *AnalyzerApp) Config() *configs.Config {
	return app.config
}

// Pipeline returns the configured analysis pipeline
func (app *AnalyzerApp) Pipeline() *analysis.Pipeline {
	return app.pipeline
}

// Phonemizer returns the configured grapheme-to-phoneme service
func (app *AnalyzerApp) Phonemizer() *phonemizer.EspeakPhonemizer {
	return app.phonemizer
}

// AnalyzeFile scores the pronunciation of a target word spoken in a
// WAV file
func (app *AnalyzerApp) AnalyzeFile(ctx context.Context, audioFile, word string) (*analysis.AnalysisResult, error) {
	clip, err := audio.DecodeWAVFile(audioFile)
	if err != nil {
		return nil, analysis.NewAnalysisError(word, analysis.ErrCodeDecode,
			fmt.Sprintf("failed to decode audio file %s", audioFile), err)
	}

	timeout := app.config.Analysis.Timeout
	if app.ctx.Timeout > 0 {
		timeout = app.ctx.Timeout
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	result, err := app.pipeline.Analyze(runCtx, clip, word, nil)
	if err != nil {
		return nil, err
	}

	app.logger.Info("Analysis complete", logging.Fields{
		"word":       word,
		"audio_file": audioFile,
		"overall":    result.Overall,
		"grade":      result.Grade,
	})

	return result, nil
}

// AnalyzeBatch scores every entry of a wordlist file and keeps going
// past individual failures
func (app *AnalyzerApp) AnalyzeBatch(ctx context.Context, wordlistFile string) (*BatchSummary, error) {
	wordlist, err := LoadWordlist(wordlistFile)
	if err != nil {
		return nil, err
	}

	summary := &BatchSummary{
		StartTime: time.Now(),
		Results:   make([]*BatchEntryResult, 0, len(wordlist.Entries)),
	}

	for _, entry := range wordlist.Entries {
		entryResult := &BatchEntryResult{
			Word:      entry.Word,
			AudioFile: entry.AudioFile,
		}

		result, err := app.AnalyzeFile(ctx, entry.AudioFile, entry.Word)
		if err != nil {
			entryResult.Error = err.Error()
			summary.Failed++
			app.logger.Warn("Batch entry failed", logging.Fields{
				"word":       entry.Word,
				"audio_file": entry.AudioFile,
				"error":      err.Error(),
			})
		} else {
			entryResult.Result = result
			summary.Successful++
		}

		summary.Results = append(summary.Results, entryResult)

		if err := ctx.Err(); err != nil {
			return summary, err
		}
	}

	summary.EndTime = time.Now()
	summary.TotalDuration = summary.EndTime.Sub(summary.StartTime)
	summary.computeAverages()

	return summary, nil
}

// OutputResults formats and writes results to the output file or stdout
func (app *AnalyzerApp) OutputResults(data any) error {
	format := app.ctx.OutputFormat
	if format == "" {
		format = app.config.OutputFormat
	}

	formatter, err := output.NewFormatter(format)
	if err != nil {
		return err
	}

	formatted, err := formatter.Format(data)
	if err != nil {
		return fmt.Errorf("failed to format output data: %w", err)
	}

	if app.ctx.OutputFile != "" {
		return app.writeToFile(formatted)
	}

	_, err = os.Stdout.Write(formatted)
	return err
}

// Close releases the recognizer backend if it holds resources
func (app *AnalyzerApp) Close() error {
	if closer, ok := app.recognizer.(recognizer.Closer); ok {
		return closer.Close()
	}
	return nil
}

// buildRecognizer constructs the configured speech-to-text engine.
// Cloud and local engines are wrapped in a lazy holder so credentials
// and model load happen on first use, not at startup.
func buildRecognizer(config *configs.Config) recognizer.Recognizer {
	switch config.Recognizer.Engine {
	case "whisper":
		modelPath := config.Recognizer.WhisperModelPath
		language := config.Recognizer.WhisperLanguage
		return recognizer.NewLazy(func() (recognizer.Recognizer, error) {
			return recognizer.NewWhisper(modelPath, language)
		})
	case "mock":
		return &recognizer.Mock{}
	default:
		language := config.Recognizer.Language
		return recognizer.NewLazy(func() (recognizer.Recognizer, error) {
			return recognizer.NewGoogle(context.Background(), language)
		})
	}
}

// buildScorer constructs the configured scoring strategy
func buildScorer(config *configs.Config) analysis.ScoringStrategy {
	if config.Analysis.Strategy == "ml" {
		return analysis.NewMLScorer(config.Analysis.ModelDir)
	}
	return analysis.NewHeuristicScorer()
}

// loadAndMergeConfig loads configuration and merges with CLI flags
func loadAndMergeConfig(ctx *Context) (*configs.Config, error) {
	config, err := configs.LoadConfig()
	if err != nil {
		return nil, err
	}

	if ctx.Verbose {
		config.Verbose = true
	}
	if ctx.OutputFormat != "" {
		config.OutputFormat = ctx.OutputFormat
	}
	if ctx.Timeout > 0 {
		config.Analysis.Timeout = ctx.Timeout
	}

	if err := configs.ValidateConfig(config); err != nil {
		return nil, err
	}

	return config, nil
}

// writeToFile writes data to the specified output file
func (app *AnalyzerApp) writeToFile(data []byte) error {
	dir := filepath.Dir(app.ctx.OutputFile)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := os.WriteFile(app.ctx.OutputFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}

	app.logger.Debug("Results written to file", logging.Fields{
		"output_file": app.ctx.OutputFile,
		"size_bytes":  len(data),
	})

	return nil
}
