package sweep

import (
	"fmt"

	"github.com/bucketsweep/bucketsweep/internal/storage"
	"github.com/bucketsweep/bucketsweep/pkg/shared/files"
)

// validateSweepArgs validates the arguments provided to the sweep command and
// resolves the time window. All failures here are fatal before any pipeline starts.
func validateSweepArgs(options *RunOptionsSweep) (storage.Window, error) {
	if options.Bucket == "" {
		return storage.Window{}, fmt.Errorf("the 'bucket' flag must be specified")
	}
	if options.Start == "" || options.End == "" {
		return storage.Window{}, fmt.Errorf("both 'start' and 'end' flags must be specified")
	}
	if options.DownloadDir == "" {
		return storage.Window{}, fmt.Errorf("the 'download-dir' flag must be specified")
	}
	if options.ResultsFile == "" {
		return storage.Window{}, fmt.Errorf("the 'results' flag must be specified")
	}

	window, err := storage.ParseWindow(options.Start, options.End)
	if err != nil {
		return storage.Window{}, err
	}

	downloadDir, err := files.ExpandPath(options.DownloadDir)
	if err != nil {
		return storage.Window{}, fmt.Errorf("failed to resolve download directory: %w", err)
	}
	options.DownloadDir = downloadDir
	if err := files.ValidateDirWritable(options.DownloadDir); err != nil {
		return storage.Window{}, fmt.Errorf("invalid download directory: %w", err)
	}

	resultsFile, err := files.ExpandPath(options.ResultsFile)
	if err != nil {
		return storage.Window{}, fmt.Errorf("failed to resolve results file path: %w", err)
	}
	options.ResultsFile = resultsFile

	if options.Threads == 0 {
		options.Threads = AppConfig.Sweep.Threads
	}
	if options.Threads <= 0 {
		return storage.Window{}, fmt.Errorf("the 'threads' flag must be a positive integer")
	}

	return window, nil
}
