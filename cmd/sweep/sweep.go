package sweep

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/bucketsweep/bucketsweep/internal/detector"
	"github.com/bucketsweep/bucketsweep/internal/pipeline"
	"github.com/bucketsweep/bucketsweep/internal/sink"
	"github.com/bucketsweep/bucketsweep/internal/storage"
	"github.com/bucketsweep/bucketsweep/pkg/shared"
	"github.com/bucketsweep/bucketsweep/pkg/shared/config"
	"github.com/bucketsweep/bucketsweep/pkg/shared/errors"
	"github.com/bucketsweep/bucketsweep/pkg/shared/logger"
)

// RunOptionsSweep holds the arguments for the sweep command.
type RunOptionsSweep struct {
	Bucket      string
	Prefix      string
	Start       string
	End         string
	DownloadDir string
	ResultsFile string
	SarifFile   string
	Profile     string
	LogLevel    string
	Threads     int
}

// Global variables for configuration and command arguments
var (
	AppConfig         *config.Config
	sweepOptions      RunOptionsSweep
	exampleSweepUsage = `  # Sweep a prefix for objects modified on January 1st 2024
  bucketsweep sweep --bucket audit-logs --prefix app/ \
      --start 2024-01-01T00:00:00 --end 2024-01-02T00:00:00 \
      --download-dir /tmp/sweep --results /tmp/findings.txt

  # Same sweep using a named AWS profile and 4 concurrent pipelines
  bucketsweep sweep --bucket audit-logs --prefix app/ \
      --start 2024-01-01T00:00:00 --end 2024-01-02T00:00:00 \
      --download-dir /tmp/sweep --results /tmp/findings.txt \
      --profile audit -j 4

  # Additionally emit a SARIF report of all findings
  bucketsweep sweep --bucket audit-logs --prefix app/ \
      --start 2024-01-01T00:00:00 --end 2024-01-02T00:00:00 \
      --download-dir /tmp/sweep --results /tmp/findings.txt \
      --sarif /tmp/findings.sarif`
)

// SweepCmd represents the sweep command.
var SweepCmd = &cobra.Command{
	Use:                   "sweep --bucket BUCKET --prefix PREFIX --start TIME --end TIME --download-dir DIR --results FILE [--profile NAME] [--sarif FILE] [-j THREADS]",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Example:               exampleSweepUsage,
	Short:                 "Scans bucket objects within a time window for leaked secrets",
	RunE:                  runSweepCommand,
}

// Init initializes the global configuration variable.
func Init(cfg *config.Config) {
	AppConfig = cfg
}

// runSweepCommand executes the sweep command.
func runSweepCommand(cmd *cobra.Command, args []string) error {
	if len(args) == 0 && !shared.HasFlags(cmd.Flags()) {
		return cmd.Help()
	}

	if sweepOptions.LogLevel != "" {
		AppConfig.Logger.Level = sweepOptions.LogLevel
	}
	log := logger.NewLogger(AppConfig, "core-sweep")

	window, err := validateSweepArgs(&sweepOptions)
	if err != nil {
		log.Error("invalid sweep arguments", "error", err)
		return errors.NewCommandError(err, 1)
	}

	logStartupParameters(log, &sweepOptions)

	client, err := storage.NewClient(sweepOptions.Profile, logger.NewLogger(AppConfig, "storage"))
	if err != nil {
		log.Error("failed to create storage client", "error", err)
		return errors.NewCommandError(err, 1)
	}

	det := detector.New(
		AppConfig.Detector.Binary,
		AppConfig.Detector.AdditionalArgs,
		AppConfig.Detector.Workers,
		logger.NewLogger(AppConfig, "detector"),
	)

	results, err := sink.NewResults(sweepOptions.ResultsFile, sweepOptions.SarifFile, logger.NewLogger(AppConfig, "sink"))
	if err != nil {
		log.Error("failed to open results file", "error", err)
		return errors.NewCommandError(err, 1)
	}

	coordinator := pipeline.New(
		client,
		det,
		results,
		sweepOptions.DownloadDir,
		sweepOptions.Threads,
		logger.NewLogger(AppConfig, "pipeline"),
	)

	failed, runErr := coordinator.Run(context.Background(), sweepOptions.Bucket, sweepOptions.Prefix, window)
	closeErr := results.Close()

	if runErr != nil {
		log.Error("sweep command failed", "error", runErr)
		return errors.NewCommandError(runErr, 1)
	}
	if closeErr != nil {
		log.Error("failed to finalize results", "error", closeErr)
		return errors.NewCommandError(closeErr, 1)
	}
	if failed > 0 {
		return errors.NewCommandErrorf(2, "%d object pipeline(s) failed, see the log for details", failed)
	}

	log.Info("sweep command completed successfully")
	return nil
}

// Initialize flags for the sweep command.
func init() {
	SweepCmd.Flags().StringVarP(&sweepOptions.Bucket, "bucket", "b", "", "Name of the S3 bucket to sweep.")
	SweepCmd.Flags().StringVar(&sweepOptions.Prefix, "prefix", "", "Key prefix limiting which objects are listed.")
	SweepCmd.Flags().StringVar(&sweepOptions.Start, "start", "", "Start of the time window, YYYY-MM-DDTHH:MM:SS in UTC.")
	SweepCmd.Flags().StringVar(&sweepOptions.End, "end", "", "End of the time window, YYYY-MM-DDTHH:MM:SS in UTC.")
	SweepCmd.Flags().StringVarP(&sweepOptions.DownloadDir, "download-dir", "d", "", "Existing writable directory for transient downloads.")
	SweepCmd.Flags().StringVarP(&sweepOptions.ResultsFile, "results", "o", "", "Results file, created if absent and appended if present.")
	SweepCmd.Flags().StringVar(&sweepOptions.SarifFile, "sarif", "", "Optional path for a SARIF report of all findings.")
	SweepCmd.Flags().StringVar(&sweepOptions.Profile, "profile", "", "Named AWS credential profile; default credential chain when omitted.")
	SweepCmd.Flags().StringVar(&sweepOptions.LogLevel, "log-level", "", "Log verbosity: DEBUG, INFO, WARN or ERROR (default WARN).")
	SweepCmd.Flags().IntVarP(&sweepOptions.Threads, "threads", "j", 0, "Number of concurrent object pipelines (default from config, otherwise 10).")
}
