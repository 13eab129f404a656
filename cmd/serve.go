package cmd

import (
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/akustiklab/telaffuz/internal/api"
	"github.com/akustiklab/telaffuz/internal/app"
	"github.com/akustiklab/telaffuz/pkg/logging"
)

var (
	serveHost string
	servePort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP analysis and data-collection API",
	Long: `Start the HTTP API used by the study frontend: participant
registration, survey storage, recording upload, phoneme lookups and
the pronunciation analysis endpoint.

Credentials for the cloud recognizer are read from the environment; a
.env file in the working directory is loaded when present.

Examples:
  telaffuz serve
  telaffuz serve --host 127.0.0.1 --port 9000`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveHost, "host", "",
		"listen address (default from configuration)")
	serveCmd.Flags().IntVar(&servePort, "port", 0,
		"listen port (default from configuration)")
}

func runServe(cmd *cobra.Command, args []string) error {
	// Cloud recognizer credentials commonly live in a .env file during
	// development; missing file is fine
	if err := godotenv.Load(); err == nil {
		logging.Default().Debug("Loaded environment from .env file")
	}

	appCtx := &app.Context{
		ConfigFile:   configFile,
		OutputFormat: outputFormat,
		Verbose:      verbose,
	}

	analyzer, err := app.NewAnalyzerApp(appCtx)
	if err != nil {
		return err
	}
	defer analyzer.Close()

	serverConfig := analyzer.Config().Server
	if serveHost != "" {
		serverConfig.Host = serveHost
	}
	if servePort > 0 {
		serverConfig.Port = servePort
	}

	server, err := api.NewServer(serverConfig, analyzer.Pipeline(), analyzer.Phonemizer())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return server.Start(ctx)
}
