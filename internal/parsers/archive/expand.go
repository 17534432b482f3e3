// Package archive expands zipped CSV uploads in memory. Banking and
// budgeting apps often export purchase history as a zip of CSV files.
package archive

import (
	"archive/zip"
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"
)

// ExpandOptions contains options for ZIP expansion
type ExpandOptions struct {
	// MaxFileSize is the maximum size for a single file in bytes (0 = unlimited)
	MaxFileSize int64
	// MaxTotalSize is the maximum total size for all extracted files (0 = unlimited)
	MaxTotalSize int64
	// MaxFiles is the maximum number of files to extract (0 = unlimited)
	MaxFiles int
	// AllowedExtensions filters which file extensions to extract (empty = all)
	AllowedExtensions []string
	// SkipPatterns contains patterns to skip (e.g., "__MACOSX")
	SkipPatterns []string
}

// DefaultExpandOptions returns limits suited to household CSV exports
func DefaultExpandOptions() ExpandOptions {
	return ExpandOptions{
		MaxFileSize:  10 * 1024 * 1024, // 10MB per file
		MaxTotalSize: 50 * 1024 * 1024, // 50MB total
		MaxFiles:     100,
		AllowedExtensions: []string{
			".csv",
		},
		SkipPatterns: []string{
			"__MACOSX",
			".DS_Store",
			"Thumbs.db",
			"desktop.ini",
		},
	}
}

// ExpandedFile represents a file extracted from a ZIP archive
type ExpandedFile struct {
	Name    string
	Content []byte
	Hash    string
	Size    int64
}

// Expand extracts the allowed files of a ZIP archive in memory
func Expand(ctx context.Context, content []byte, opts ExpandOptions) ([]ExpandedFile, error) {
	reader, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("failed to open ZIP: %w", err)
	}

	var expanded []ExpandedFile
	var totalSize int64
	fileCount := 0

	for _, file := range reader.File {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if file.FileInfo().IsDir() {
			continue
		}

		// Suspicious paths are skipped rather than failing the archive
		safeName, err := sanitizeFilename(file.Name)
		if err != nil {
			continue
		}

		if shouldSkip(safeName, opts.SkipPatterns) {
			continue
		}
		if !isAllowedExtension(safeName, opts.AllowedExtensions) {
			continue
		}

		fileCount++
		if opts.MaxFiles > 0 && fileCount > opts.MaxFiles {
			return nil, fmt.Errorf("too many files in archive (limit: %d)", opts.MaxFiles)
		}

		if opts.MaxFileSize > 0 && int64(file.UncompressedSize64) > opts.MaxFileSize {
			return nil, fmt.Errorf("file %s exceeds maximum size (%d > %d)",
				safeName, file.UncompressedSize64, opts.MaxFileSize)
		}

		data, err := readFileWithLimit(file, safeName, opts.MaxFileSize)
		if err != nil {
			return nil, err
		}

		totalSize += int64(len(data))
		if opts.MaxTotalSize > 0 && totalSize > opts.MaxTotalSize {
			return nil, fmt.Errorf("total extracted size exceeds maximum (%d > %d)",
				totalSize, opts.MaxTotalSize)
		}

		hash := sha256.Sum256(data)
		expanded = append(expanded, ExpandedFile{
			Name:    safeName,
			Content: data,
			Hash:    hex.EncodeToString(hash[:]),
			Size:    int64(len(data)),
		})
	}

	return expanded, nil
}

// readFileWithLimit reads a ZIP entry enforcing the actual size limit,
// not just the declared one
func readFileWithLimit(file *zip.File, safeName string, maxFileSize int64) ([]byte, error) {
	rc, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s in ZIP: %w", safeName, err)
	}
	defer rc.Close()

	var reader io.Reader = rc
	if maxFileSize > 0 {
		// Add 1 byte to detect if file exceeds limit
		reader = io.LimitReader(rc, maxFileSize+1)
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s from ZIP: %w", safeName, err)
	}

	if maxFileSize > 0 && int64(len(data)) > maxFileSize {
		return nil, fmt.Errorf("file %s exceeds maximum size (actual data > %d bytes)", safeName, maxFileSize)
	}

	return data, nil
}

// sanitizeFilename validates a filename from ZIP to prevent zip slip.
// The returned name is flattened to its base name.
func sanitizeFilename(filename string) (string, error) {
	if path.IsAbs(filename) || filepath.IsAbs(filename) {
		return "", fmt.Errorf("absolute path not allowed: %s", filename)
	}

	if len(filename) >= 2 && filename[1] == ':' {
		return "", fmt.Errorf("Windows drive letter not allowed: %s", filename)
	}

	if strings.Contains(filename, "\\") {
		filename = strings.ReplaceAll(filename, "\\", "/")
	}

	cleaned := path.Clean(filename)
	if strings.HasPrefix(cleaned, "..") || strings.HasPrefix(cleaned, "/") {
		return "", fmt.Errorf("path traversal not allowed: %s", filename)
	}
	for _, part := range strings.Split(cleaned, "/") {
		if part == ".." {
			return "", fmt.Errorf("path traversal not allowed: %s", filename)
		}
	}

	baseName := path.Base(cleaned)
	if baseName == "." || baseName == "/" || baseName == "" {
		return "", fmt.Errorf("invalid filename: %s", filename)
	}

	return baseName, nil
}

func shouldSkip(filename string, patterns []string) bool {
	for _, pattern := range patterns {
		if strings.Contains(filename, pattern) {
			return true
		}
	}
	return false
}

func isAllowedExtension(filename string, allowed []string) bool {
	if len(allowed) == 0 {
		return true
	}

	ext := strings.ToLower(filepath.Ext(filename))
	for _, a := range allowed {
		if strings.EqualFold(ext, a) {
			return true
		}
	}
	return false
}
