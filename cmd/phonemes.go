package cmd

import (
	"github.com/spf13/cobra"

	"github.com/akustiklab/telaffuz/internal/app"
)

var phonemesOutputFile string

var phonemesCmd = &cobra.Command{
	Use:   "phonemes [word]...",
	Short: "Show the phoneme decomposition of Turkish words",
	Long: `Convert one or more Turkish words to their IPA phoneme sequences
using the espeak-ng backend. When espeak-ng is not installed, each
character of the word is reported as a pseudo-phoneme.

Examples:
  telaffuz phonemes pencere
  telaffuz phonemes merhaba kedi pencere -o json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runPhonemes,
}

func init() {
	rootCmd.AddCommand(phonemesCmd)

	phonemesCmd.Flags().StringVar(&phonemesOutputFile, "output-file", "",
		"write results to file instead of stdout")
}

func runPhonemes(cmd *cobra.Command, args []string) error {
	appCtx := &app.Context{
		ConfigFile:   configFile,
		OutputFile:   phonemesOutputFile,
		OutputFormat: outputFormat,
		Verbose:      verbose,
	}

	analyzer, err := app.NewAnalyzerApp(appCtx)
	if err != nil {
		return err
	}
	defer analyzer.Close()

	analyses, err := analyzer.Phonemizer().AnalyzeBatch(cmd.Context(), args)
	if err != nil {
		return err
	}

	if len(analyses) == 1 {
		return analyzer.OutputResults(analyses[0])
	}
	return analyzer.OutputResults(analyses)
}
