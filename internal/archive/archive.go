// Package archive expands downloaded files whose names end in a recognized
// compressed-archive suffix. The format is decided by suffix alone; anything
// else is left untouched.
package archive

import (
	"archive/zip"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// Expansion holds the local files produced by expanding one archive.
// Dir is the extraction directory for multi-member archives, empty otherwise;
// the caller removes it after the member files have been processed.
type Expansion struct {
	Files []string
	Dir   string
}

// Expand inspects the filename suffix of filePath and extracts its contents
// next to it. Unrecognized suffixes yield an empty expansion. The input file
// is never deleted. On error the partial expansion is returned so the caller
// can clean up whatever was already written.
func Expand(filePath string) (Expansion, error) {
	switch {
	case strings.HasSuffix(filePath, ".gz"):
		return expandGzip(filePath)
	case strings.HasSuffix(filePath, ".zip"):
		return expandZip(filePath)
	default:
		return Expansion{}, nil
	}
}

func expandGzip(filePath string) (Expansion, error) {
	in, err := os.Open(filePath)
	if err != nil {
		return Expansion{}, fmt.Errorf("failed to open %q: %w", filePath, err)
	}
	defer in.Close()

	gz, err := gzip.NewReader(in)
	if err != nil {
		return Expansion{}, fmt.Errorf("failed to read gzip header of %q: %w", filePath, err)
	}
	defer gz.Close()

	outPath := strings.TrimSuffix(filePath, ".gz")
	out, err := os.Create(outPath)
	if err != nil {
		return Expansion{}, fmt.Errorf("failed to create %q: %w", outPath, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, gz); err != nil {
		return Expansion{Files: []string{outPath}}, fmt.Errorf("failed to decompress %q: %w", filePath, err)
	}
	return Expansion{Files: []string{outPath}}, nil
}

func expandZip(filePath string) (Expansion, error) {
	reader, err := zip.OpenReader(filePath)
	if err != nil {
		return Expansion{}, fmt.Errorf("failed to open zip archive %q: %w", filePath, err)
	}
	defer reader.Close()

	destDir := strings.TrimSuffix(filePath, ".zip")
	expansion := Expansion{Dir: destDir}

	for _, member := range reader.File {
		target, err := memberPath(destDir, member.Name)
		if err != nil {
			return expansion, err
		}

		if member.FileInfo().IsDir() {
			if err := os.MkdirAll(target, os.ModePerm); err != nil {
				return expansion, fmt.Errorf("failed to create directory %q: %w", target, err)
			}
			continue
		}

		if err := extractMember(member, target); err != nil {
			return expansion, err
		}
		expansion.Files = append(expansion.Files, target)
	}

	return expansion, nil
}

func extractMember(member *zip.File, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), os.ModePerm); err != nil {
		return fmt.Errorf("failed to create directory for %q: %w", target, err)
	}

	rc, err := member.Open()
	if err != nil {
		return fmt.Errorf("failed to open zip member %q: %w", member.Name, err)
	}
	defer rc.Close()

	out, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("failed to create %q: %w", target, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, rc); err != nil {
		return fmt.Errorf("failed to extract zip member %q: %w", member.Name, err)
	}
	return nil
}

// memberPath resolves a zip member name inside destDir, rejecting absolute
// paths and parent-directory escapes.
func memberPath(destDir, name string) (string, error) {
	cleaned := path.Clean(name)
	if path.IsAbs(cleaned) || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", fmt.Errorf("zip member %q escapes the extraction directory", name)
	}
	return filepath.Join(destDir, filepath.FromSlash(cleaned)), nil
}
