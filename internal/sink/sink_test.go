package sink

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bucketsweep/bucketsweep/internal/detector"
)

func reportWithFinding(file, secretType string) *detector.Report {
	return &detector.Report{Results: map[string][]detector.Finding{
		file: {{Type: secretType, Filename: file, HashedSecret: "deadbeef", LineNumber: 1}},
	}}
}

func TestRecordAppendsBlock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.txt")
	results, err := NewResults(path, "", hclog.NewNullLogger())
	require.NoError(t, err)

	report := reportWithFinding("/scratch/a.txt", "AWS Access Key")
	require.NoError(t, results.Record("/scratch/a.txt", "logs/a.txt", report))
	require.NoError(t, results.Close())

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(content), "Secrets scan result for /scratch/a.txt:\n"))
	assert.Contains(t, string(content), "AWS Access Key")
}

func TestRecordAppendsToExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.txt")
	require.NoError(t, os.WriteFile(path, []byte("previous run\n"), 0644))

	results, err := NewResults(path, "", hclog.NewNullLogger())
	require.NoError(t, err)
	require.NoError(t, results.Record("/scratch/a.txt", "logs/a.txt", reportWithFinding("/scratch/a.txt", "Secret Keyword")))
	require.NoError(t, results.Close())

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(content), "previous run\n"))
}

func TestConcurrentRecordsNeverInterleave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.txt")
	results, err := NewResults(path, "", hclog.NewNullLogger())
	require.NoError(t, err)

	const writers = 20
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			file := fmt.Sprintf("/scratch/file-%02d.txt", i)
			_ = results.Record(file, fmt.Sprintf("logs/file-%02d.txt", i), reportWithFinding(file, "Secret Keyword"))
		}(i)
	}
	wg.Wait()
	require.NoError(t, results.Close())

	content, err := os.ReadFile(path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(string(content), "\n"), "\n")
	require.Len(t, lines, writers*2)
	for i := 0; i < len(lines); i += 2 {
		assert.True(t, strings.HasPrefix(lines[i], "Secrets scan result for "), "header line %d corrupted: %q", i, lines[i])
		assert.True(t, json.Valid([]byte(lines[i+1])), "body line %d is not intact JSON: %q", i+1, lines[i+1])
	}
}

func TestCloseWritesSarifReport(t *testing.T) {
	dir := t.TempDir()
	resultsPath := filepath.Join(dir, "results.txt")
	sarifPath := filepath.Join(dir, "results.sarif")

	results, err := NewResults(resultsPath, sarifPath, hclog.NewNullLogger())
	require.NoError(t, err)
	require.NoError(t, results.Record("/scratch/a.txt", "logs/a.txt", reportWithFinding("/scratch/a.txt", "AWS Access Key")))
	require.NoError(t, results.Close())

	data, err := os.ReadFile(sarifPath)
	require.NoError(t, err)

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, "2.1.0", doc["version"])
	assert.Contains(t, string(data), "AWS Access Key")
}
