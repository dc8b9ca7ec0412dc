package list

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/bucketsweep/bucketsweep/internal/storage"
	"github.com/bucketsweep/bucketsweep/pkg/shared"
	"github.com/bucketsweep/bucketsweep/pkg/shared/config"
	"github.com/bucketsweep/bucketsweep/pkg/shared/errors"
	"github.com/bucketsweep/bucketsweep/pkg/shared/logger"
)

// RunOptionsList holds the arguments for the list command.
type RunOptionsList struct {
	Bucket  string
	Prefix  string
	Start   string
	End     string
	Profile string
}

var (
	AppConfig        *config.Config
	listOptions      RunOptionsList
	exampleListUsage = `  # List objects that a sweep with the same window would process
  bucketsweep list --bucket audit-logs --prefix app/ \
      --start 2024-01-01T00:00:00 --end 2024-01-02T00:00:00`
)

// ListCmd represents the list command.
var ListCmd = &cobra.Command{
	Use:                   "list --bucket BUCKET --prefix PREFIX --start TIME --end TIME [--profile NAME]",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Example:               exampleListUsage,
	Short:                 "Lists bucket objects within a time window without scanning them",
	RunE:                  runListCommand,
}

// Init initializes the global configuration variable.
func Init(cfg *config.Config) {
	AppConfig = cfg
}

// runListCommand executes the list command.
func runListCommand(cmd *cobra.Command, args []string) error {
	if len(args) == 0 && !shared.HasFlags(cmd.Flags()) {
		return cmd.Help()
	}

	log := logger.NewLogger(AppConfig, "core-list")

	window, err := validateListArgs(&listOptions)
	if err != nil {
		log.Error("invalid list arguments", "error", err)
		return errors.NewCommandError(err, 1)
	}

	client, err := storage.NewClient(listOptions.Profile, logger.NewLogger(AppConfig, "storage"))
	if err != nil {
		log.Error("failed to create storage client", "error", err)
		return errors.NewCommandError(err, 1)
	}

	count := 0
	err = client.ListObjects(context.Background(), listOptions.Bucket, listOptions.Prefix, window, func(obj storage.Object) {
		fmt.Printf("%s\t%s\n", obj.LastModified.Format(time.RFC3339), obj.Key)
		count++
	})
	if err != nil {
		log.Error("list command failed", "error", err)
		return errors.NewCommandError(err, 1)
	}

	log.Info("list command completed", "objects", count)
	return nil
}

// Initialize flags for the list command.
func init() {
	ListCmd.Flags().StringVarP(&listOptions.Bucket, "bucket", "b", "", "Name of the S3 bucket to list.")
	ListCmd.Flags().StringVar(&listOptions.Prefix, "prefix", "", "Key prefix limiting which objects are listed.")
	ListCmd.Flags().StringVar(&listOptions.Start, "start", "", "Start of the time window, YYYY-MM-DDTHH:MM:SS in UTC.")
	ListCmd.Flags().StringVar(&listOptions.End, "end", "", "End of the time window, YYYY-MM-DDTHH:MM:SS in UTC.")
	ListCmd.Flags().StringVar(&listOptions.Profile, "profile", "", "Named AWS credential profile; default credential chain when omitted.")
}
