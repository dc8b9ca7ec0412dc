package sweep

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bucketsweep/bucketsweep/pkg/shared/config"
)

func validOptions(t *testing.T) RunOptionsSweep {
	t.Helper()
	return RunOptionsSweep{
		Bucket:      "audit-logs",
		Prefix:      "app/",
		Start:       "2024-01-01T00:00:00",
		End:         "2024-01-02T00:00:00",
		DownloadDir: t.TempDir(),
		ResultsFile: filepath.Join(t.TempDir(), "findings.txt"),
		Threads:     4,
	}
}

func TestValidateSweepArgs(t *testing.T) {
	AppConfig = config.NewDefaultConfig()

	t.Run("valid options", func(t *testing.T) {
		opts := validOptions(t)
		window, err := validateSweepArgs(&opts)
		require.NoError(t, err)
		assert.False(t, window.Start.After(window.End))
	})

	t.Run("missing bucket", func(t *testing.T) {
		opts := validOptions(t)
		opts.Bucket = ""
		_, err := validateSweepArgs(&opts)
		assert.ErrorContains(t, err, "bucket")
	})

	t.Run("missing window bounds", func(t *testing.T) {
		opts := validOptions(t)
		opts.End = ""
		_, err := validateSweepArgs(&opts)
		assert.ErrorContains(t, err, "start")
	})

	t.Run("start after end", func(t *testing.T) {
		opts := validOptions(t)
		opts.Start = "2024-02-01T00:00:00"
		_, err := validateSweepArgs(&opts)
		assert.Error(t, err)
	})

	t.Run("timezone suffix rejected", func(t *testing.T) {
		opts := validOptions(t)
		opts.Start = "2024-01-01T00:00:00Z"
		_, err := validateSweepArgs(&opts)
		assert.Error(t, err)
	})

	t.Run("missing download dir", func(t *testing.T) {
		opts := validOptions(t)
		opts.DownloadDir = filepath.Join(opts.DownloadDir, "missing")
		_, err := validateSweepArgs(&opts)
		assert.ErrorContains(t, err, "download directory")
	})

	t.Run("zero threads falls back to config default", func(t *testing.T) {
		opts := validOptions(t)
		opts.Threads = 0
		_, err := validateSweepArgs(&opts)
		require.NoError(t, err)
		assert.Equal(t, config.DefaultThreads, opts.Threads)
	})

	t.Run("negative threads rejected", func(t *testing.T) {
		opts := validOptions(t)
		opts.Threads = -1
		_, err := validateSweepArgs(&opts)
		assert.ErrorContains(t, err, "threads")
	})
}
