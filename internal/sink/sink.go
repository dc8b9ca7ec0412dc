// Package sink aggregates scan findings from concurrent pipelines into an
// append-only results file, optionally mirroring them into a SARIF report.
package sink

import (
	"fmt"
	"os"
	"sync"

	"github.com/hashicorp/go-hclog"

	"github.com/bucketsweep/bucketsweep/internal/detector"
)

// entry retains one recorded finding for the optional SARIF report.
type entry struct {
	filePath string
	key      string
	findings []detector.Finding
}

// Results is the shared output target. Record is safe for concurrent callers;
// each finding block is written as one indivisible append.
type Results struct {
	mu        sync.Mutex
	file      *os.File
	sarifPath string
	entries   []entry
	logger    hclog.Logger
}

// NewResults opens (or creates) the results file for appending. When
// sarifPath is non-empty, findings are also collected for a SARIF report
// written on Close.
func NewResults(path, sarifPath string, logger hclog.Logger) (*Results, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open results file %q: %w", path, err)
	}
	return &Results{file: file, sarifPath: sarifPath, logger: logger}, nil
}

// Record appends one human-readable block for the findings in report.
func (r *Results) Record(filePath, key string, report *detector.Report) error {
	block := fmt.Sprintf("Secrets scan result for %s:\n%s\n", filePath, report.RawResults())

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.file.WriteString(block); err != nil {
		return fmt.Errorf("failed to append to results file: %w", err)
	}

	if r.sarifPath != "" {
		for _, findings := range report.Results {
			r.entries = append(r.entries, entry{filePath: filePath, key: key, findings: findings})
		}
	}
	return nil
}

// Close flushes the SARIF report, if requested, and closes the results file.
func (r *Results) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sarifPath != "" {
		if err := writeSarifReport(r.sarifPath, r.entries); err != nil {
			r.logger.Error("failed to write SARIF report", "path", r.sarifPath, "error", err)
			r.file.Close()
			return err
		}
		r.logger.Info("SARIF report written", "path", r.sarifPath)
	}

	return r.file.Close()
}
