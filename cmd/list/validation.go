package list

import (
	"fmt"

	"github.com/bucketsweep/bucketsweep/internal/storage"
)

// validateListArgs validates the arguments provided to the list command.
func validateListArgs(options *RunOptionsList) (storage.Window, error) {
	if options.Bucket == "" {
		return storage.Window{}, fmt.Errorf("the 'bucket' flag must be specified")
	}
	if options.Start == "" || options.End == "" {
		return storage.Window{}, fmt.Errorf("both 'start' and 'end' flags must be specified")
	}
	return storage.ParseWindow(options.Start, options.End)
}
