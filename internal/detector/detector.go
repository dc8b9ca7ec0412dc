// Package detector invokes the external detect-secrets tool against single
// files and parses its JSON report. The tool is treated as an opaque
// collaborator; no detection heuristics live here.
package detector

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"runtime"

	"github.com/hashicorp/go-hclog"
)

// Finding is one entry of the tool's per-file findings list.
type Finding struct {
	Type         string `json:"type"`
	Filename     string `json:"filename"`
	HashedSecret string `json:"hashed_secret"`
	IsVerified   bool   `json:"is_verified"`
	LineNumber   int    `json:"line_number"`
}

// Report is the parsed scan output. Results maps scanned filenames to their
// findings; an empty map means a clean file.
type Report struct {
	Results map[string][]Finding
}

// HasFindings reports whether the scan produced any findings at all.
func (r *Report) HasFindings() bool {
	return len(r.Results) > 0
}

// RawResults renders the findings mapping back to JSON for the results file.
func (r *Report) RawResults() string {
	data, err := json.Marshal(r.Results)
	if err != nil {
		return fmt.Sprintf("%v", r.Results)
	}
	return string(data)
}

// runner executes the tool and returns its stdout; swapped out in tests.
type runner func(ctx context.Context, name string, args ...string) ([]byte, error)

// Detector runs the external secret-detection tool. Invocations pass through
// a semaphore so at most workers subprocesses run at once and slow scans do
// not stall unrelated pipelines.
type Detector struct {
	binary         string
	additionalArgs []string
	slots          chan struct{}
	logger         hclog.Logger
	run            runner
}

// New creates a Detector invoking binary with optional extra arguments.
// workers bounds concurrent subprocesses; zero or negative falls back to the
// available parallelism.
func New(binary string, additionalArgs []string, workers int, logger hclog.Logger) *Detector {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	d := &Detector{
		binary:         binary,
		additionalArgs: additionalArgs,
		slots:          make(chan struct{}, workers),
		logger:         logger,
	}
	d.run = d.execTool
	return d
}

// Scan runs the tool against filePath and parses its report. key is the
// original storage key, carried along for reporting only.
func (d *Detector) Scan(ctx context.Context, filePath, key string) (*Report, error) {
	select {
	case d.slots <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	defer func() { <-d.slots }()

	d.logger.Info("running secret scan", "file", filePath, "key", key)

	args := append([]string{}, d.additionalArgs...)
	args = append(args, "scan", filePath)

	output, err := d.run(ctx, d.binary, args...)
	if err != nil {
		return nil, fmt.Errorf("%s execution failed for %q: %w", d.binary, filePath, err)
	}

	return parseReport(output)
}

// execTool is the default runner: stdout captured for parsing, stderr routed
// into the logger.
func (d *Detector) execTool(ctx context.Context, name string, args ...string) ([]byte, error) {
	var stdout bytes.Buffer

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = d.logger.StandardWriter(&hclog.StandardLoggerOptions{
		InferLevels: false,
	})

	if err := cmd.Run(); err != nil {
		return nil, err
	}
	return stdout.Bytes(), nil
}

// parseReport decodes the tool's stdout. A missing or malformed "results"
// field is a protocol violation, reported as an error rather than treated as
// a clean scan.
func parseReport(output []byte) (*Report, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(output, &raw); err != nil {
		return nil, fmt.Errorf("tool output is not valid JSON: %w", err)
	}

	resultsRaw, ok := raw["results"]
	if !ok {
		return nil, fmt.Errorf("tool output is missing the %q field", "results")
	}

	var results map[string][]Finding
	if err := json.Unmarshal(resultsRaw, &results); err != nil {
		return nil, fmt.Errorf("tool output has a malformed %q field: %w", "results", err)
	}

	return &Report{Results: results}, nil
}
