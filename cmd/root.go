package cmd

import (
	stderrors "errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bucketsweep/bucketsweep/cmd/list"
	"github.com/bucketsweep/bucketsweep/cmd/sweep"
	"github.com/bucketsweep/bucketsweep/cmd/version"
	"github.com/bucketsweep/bucketsweep/pkg/shared/config"
	"github.com/bucketsweep/bucketsweep/pkg/shared/errors"
)

var (
	cfgFile   string
	AppConfig *config.Config
	rootCmd   = &cobra.Command{
		Use:                   "bucketsweep [command]",
		SilenceUsage:          true,
		SilenceErrors:         true,
		DisableFlagsInUseLine: true,
		Short:                 "Bucketsweep scans S3 objects for accidentally-committed secrets.",
		Long: `Bucketsweep downloads S3 objects modified within a time window, expands
	compressed archives, runs the detect-secrets tool against every resulting
	file and aggregates findings into a shared results file.
	`,
	}
)

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is config.yml)")
	rootCmd.AddCommand(version.NewVersionCmd())
	rootCmd.AddCommand(sweep.SweepCmd)
	rootCmd.AddCommand(list.ListCmd)
}

// Execute runs the root command and maps command errors to process exit codes.
func Execute() int {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)

		var cmdErr *errors.CommandError
		if stderrors.As(err, &cmdErr) {
			return cmdErr.ExitCode
		}
		return 1
	}
	return 0
}

func initConfig() {
	var err error

	// a config file is optional unless the flag asked for one explicitly
	required := cfgFile != ""
	if cfgFile == "" {
		cfgFile = "config.yml"
	}
	AppConfig, err = config.LoadConfig(cfgFile, required)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize config: %v\n", err)
		os.Exit(1)
	}
	if err := config.ValidateConfig(AppConfig); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	sweep.Init(AppConfig)
	list.Init(AppConfig)
	version.Init(AppConfig)
}
