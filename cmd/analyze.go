package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/akustiklab/telaffuz/internal/app"
	"github.com/akustiklab/telaffuz/pkg/audio"
)

var (
	analyzeOutputFile string
	analyzeTimeout    time.Duration
	analyzeScoreOnly  bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [word] [audio-file]",
	Short: "Score the pronunciation of a recorded word",
	Long: `Analyze a WAV recording of a single Turkish word and score the
pronunciation. The recording is transcribed, validated against the
target word, decomposed into phonemes, and each phoneme is scored
against its acoustic expectations.

Examples:
  # Score a recording against the word "pencere"
  telaffuz analyze pencere recordings/pencere.wav

  # JSON output to a file, with a custom deadline
  telaffuz analyze merhaba merhaba.wav -o json --output-file result.json --timeout 15s

  # Skip speech recognition and score acoustics only
  telaffuz analyze kedi kedi.wav --score-only`,
	Args: cobra.ExactArgs(2),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVar(&analyzeOutputFile, "output-file", "",
		"write results to file instead of stdout")
	analyzeCmd.Flags().DurationVar(&analyzeTimeout, "timeout", 0,
		"analysis deadline (default from configuration)")
	analyzeCmd.Flags().BoolVar(&analyzeScoreOnly, "score-only", false,
		"skip speech recognition and score acoustic features only")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	word, audioFile := args[0], args[1]

	appCtx := &app.Context{
		ConfigFile:   configFile,
		OutputFile:   analyzeOutputFile,
		OutputFormat: outputFormat,
		Timeout:      analyzeTimeout,
		Verbose:      verbose,
	}

	analyzer, err := app.NewAnalyzerApp(appCtx)
	if err != nil {
		return err
	}
	defer analyzer.Close()

	if analyzeScoreOnly {
		return runScoreOnly(cmd, analyzer, audioFile, word)
	}

	result, err := analyzer.AnalyzeFile(cmd.Context(), audioFile, word)
	if err != nil {
		return err
	}

	return analyzer.OutputResults(result)
}

func runScoreOnly(cmd *cobra.Command, analyzer *app.AnalyzerApp, audioFile, word string) error {
	phonemes, err := analyzer.Phonemizer().Phonemize(cmd.Context(), word)
	if err != nil {
		return fmt.Errorf("failed to phonemize %q: %w", word, err)
	}

	clip, err := audio.DecodeWAVFile(audioFile)
	if err != nil {
		return fmt.Errorf("failed to decode %s: %w", audioFile, err)
	}

	result, err := analyzer.Pipeline().ScoreOnly(clip, word, phonemes)
	if err != nil {
		return err
	}

	return analyzer.OutputResults(result)
}
