package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/akustiklab/telaffuz/internal/app"
)

var (
	batchOutputFile string
	batchTimeout    time.Duration
	batchInit       string
)

var batchCmd = &cobra.Command{
	Use:   "batch [wordlist-file]",
	Short: "Score a wordlist of recordings",
	Long: `Analyze every entry of a wordlist file. Each entry pairs a target
word with a WAV recording; failed entries are reported but do not stop
the run.

Examples:
  # Run a batch analysis
  telaffuz batch wordlist.yaml -o json --output-file results.json

  # Write an example wordlist to get started
  telaffuz batch --init wordlist.yaml`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().StringVar(&batchOutputFile, "output-file", "",
		"write results to file instead of stdout")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 0,
		"per-entry analysis deadline (default from configuration)")
	batchCmd.Flags().StringVar(&batchInit, "init", "",
		"write an example wordlist to the given path and exit")
}

func runBatch(cmd *cobra.Command, args []string) error {
	if batchInit != "" {
		return app.GenerateExampleWordlist(batchInit)
	}

	if len(args) != 1 {
		return cmd.Usage()
	}

	appCtx := &app.Context{
		ConfigFile:   configFile,
		OutputFile:   batchOutputFile,
		OutputFormat: outputFormat,
		Timeout:      batchTimeout,
		Verbose:      verbose,
	}

	analyzer, err := app.NewAnalyzerApp(appCtx)
	if err != nil {
		return err
	}
	defer analyzer.Close()

	summary, err := analyzer.AnalyzeBatch(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	return analyzer.OutputResults(summary)
}
