// Package pipeline drives the per-object fetch, scan, expand, scan, cleanup
// sequence and fans it out over every listed object with bounded concurrency.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"

	"github.com/bucketsweep/bucketsweep/internal/archive"
	"github.com/bucketsweep/bucketsweep/internal/detector"
	"github.com/bucketsweep/bucketsweep/internal/storage"
)

// Storage lists objects and downloads them to local scratch paths.
type Storage interface {
	ListObjects(ctx context.Context, bucket, prefix string, window storage.Window, fn func(storage.Object)) error
	Download(ctx context.Context, bucket, key, path string) error
}

// Scanner runs the external secret-detection tool against one local file.
type Scanner interface {
	Scan(ctx context.Context, filePath, key string) (*detector.Report, error)
}

// Recorder receives finding blocks from concurrent pipelines.
type Recorder interface {
	Record(filePath, key string, report *detector.Report) error
}

// Coordinator ties the lister, fetcher, expander, scanner and sink together.
type Coordinator struct {
	store       Storage
	scanner     Scanner
	sink        Recorder
	downloadDir string
	threads     int
	logger      hclog.Logger
}

// New creates a Coordinator. threads bounds the number of object pipelines in
// flight at once.
func New(store Storage, scanner Scanner, sink Recorder, downloadDir string, threads int, logger hclog.Logger) *Coordinator {
	return &Coordinator{
		store:       store,
		scanner:     scanner,
		sink:        sink,
		downloadDir: downloadDir,
		threads:     threads,
		logger:      logger,
	}
}

// Run lists every object under bucket/prefix inside window and processes each
// one in its own pipeline. Per-object failures are contained, logged and
// counted; only listing errors abort the run. Returns the number of failed
// pipelines.
func (c *Coordinator) Run(ctx context.Context, bucket, prefix string, window storage.Window) (int, error) {
	runDir := filepath.Join(c.downloadDir, fmt.Sprintf("sweep-%s", uuid.New().String()))
	if err := os.MkdirAll(runDir, os.ModePerm); err != nil {
		return 0, fmt.Errorf("failed to create scratch directory %q: %w", runDir, err)
	}
	defer func() {
		if err := os.RemoveAll(runDir); err != nil {
			c.logger.Warn("failed to remove scratch directory", "path", runDir, "error", err)
		}
	}()

	c.logger.Info("sweep starting", "bucket", bucket, "prefix", prefix, "goroutines", c.threads)

	var (
		wg       sync.WaitGroup
		failures atomic.Int64
		total    atomic.Int64
	)
	guard := make(chan struct{}, c.threads)

	listErr := c.store.ListObjects(ctx, bucket, prefix, window, func(obj storage.Object) {
		guard <- struct{}{} // would block if guard channel is already filled
		wg.Add(1)
		total.Add(1)
		go func(obj storage.Object) {
			defer wg.Done()
			defer func() { <-guard }()

			if err := c.processObject(ctx, bucket, obj, runDir); err != nil {
				c.logger.Error("object pipeline failed", "key", obj.Key, "error", err)
				failures.Add(1)
			}
		}(obj)
	})

	wg.Wait()

	if listErr != nil {
		return int(failures.Load()), listErr
	}

	c.logger.Info("sweep finished", "objects", total.Load(), "failed", failures.Load())
	return int(failures.Load()), nil
}

// processObject runs one object's pipeline: download, scan the original,
// expand, scan each extracted file (deleting it right after its scan), then
// delete the original. Scan errors on one file do not stop the remaining
// files of the same object; every error is folded into the returned value.
func (c *Coordinator) processObject(ctx context.Context, bucket string, obj storage.Object, runDir string) error {
	localPath := filepath.Join(runDir, flattenKey(obj.Key))

	if err := c.store.Download(ctx, bucket, obj.Key, localPath); err != nil {
		c.removeFile(localPath) // partial download, if any
		return fmt.Errorf("download failed: %w", err)
	}
	defer c.removeFile(localPath)

	var errs []error
	if err := c.scanAndRecord(ctx, localPath, obj.Key); err != nil {
		errs = append(errs, err)
	}

	expansion, expandErr := archive.Expand(localPath)
	if expansion.Dir != "" {
		defer func() {
			if err := os.RemoveAll(expansion.Dir); err != nil {
				c.logger.Warn("failed to remove extraction directory", "path", expansion.Dir, "error", err)
			}
		}()
	}
	if expandErr != nil {
		if expansion.Dir == "" {
			// a partial single-member output has no directory to sweep it up
			for _, p := range expansion.Files {
				c.removeFile(p)
			}
		}
		errs = append(errs, fmt.Errorf("expansion failed: %w", expandErr))
		return errors.Join(errs...)
	}

	for _, extracted := range expansion.Files {
		scanErr := c.scanAndRecord(ctx, extracted, obj.Key)
		c.removeFile(extracted)
		if scanErr != nil {
			errs = append(errs, scanErr)
		}
	}

	return errors.Join(errs...)
}

func (c *Coordinator) scanAndRecord(ctx context.Context, filePath, key string) error {
	report, err := c.scanner.Scan(ctx, filePath, key)
	if err != nil {
		return fmt.Errorf("scan of %q failed: %w", filePath, err)
	}

	if !report.HasFindings() {
		c.logger.Info("no secrets found", "key", key, "file", filePath)
		return nil
	}

	c.logger.Warn("secrets found", "key", key, "file", filePath)
	if err := c.sink.Record(filePath, key, report); err != nil {
		return fmt.Errorf("failed to record findings for %q: %w", filePath, err)
	}
	return nil
}

// removeFile deletes a scratch file; failures are logged, never fatal.
func (c *Coordinator) removeFile(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		c.logger.Warn("failed to remove scratch file", "path", path, "error", err)
	}
}

// flattenKey turns an object key into a single scratch filename. Keeping the
// full key (separators replaced) means two keys sharing a basename cannot
// collide in the scratch directory.
func flattenKey(key string) string {
	return strings.ReplaceAll(key, "/", "__")
}
