package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/akustiklab/telaffuz/internal/app"
	"github.com/akustiklab/telaffuz/pkg/audio"
)

var featuresOutputFile string

var featuresCmd = &cobra.Command{
	Use:   "features [audio-file]",
	Short: "Extract acoustic features from a recording",
	Long: `Decode a WAV file and report the acoustic features the scorer
works from: MFCC statistics, pitch, formants, energy and spectral
shape. Useful for inspecting recordings and debugging scores.

Examples:
  telaffuz features recordings/pencere.wav
  telaffuz features kedi.wav -o json --output-file features.json`,
	Args: cobra.ExactArgs(1),
	RunE: runFeatures,
}

func init() {
	rootCmd.AddCommand(featuresCmd)

	featuresCmd.Flags().StringVar(&featuresOutputFile, "output-file", "",
		"write results to file instead of stdout")
}

func runFeatures(cmd *cobra.Command, args []string) error {
	audioFile := args[0]

	appCtx := &app.Context{
		ConfigFile:   configFile,
		OutputFile:   featuresOutputFile,
		OutputFormat: outputFormat,
		Verbose:      verbose,
	}

	analyzer, err := app.NewAnalyzerApp(appCtx)
	if err != nil {
		return err
	}
	defer analyzer.Close()

	clip, err := audio.DecodeWAVFile(audioFile)
	if err != nil {
		return fmt.Errorf("failed to decode %s: %w", audioFile, err)
	}

	features, err := analyzer.Pipeline().ExtractFeatures(clip)
	if err != nil {
		return err
	}

	return analyzer.OutputResults(features)
}
