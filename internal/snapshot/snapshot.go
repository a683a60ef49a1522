// Package snapshot saves raw Figma file JSON to disk so agents can grep or
// diff a design without refetching it.
package snapshot

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"syscall"
)

// ErrInvalidPath is returned when a file name would escape the target
// directory.
var ErrInvalidPath = errors.New("invalid path: directory traversal detected")

// Store writes snapshots into a single directory.
type Store struct {
	dir string
}

// New creates a Store rooted at dir. An empty dir means the current
// working directory.
func New(dir string) *Store {
	if dir == "" {
		dir = "."
	}
	return &Store{dir: dir}
}

// Dir returns the target directory.
func (s *Store) Dir() string {
	return s.dir
}

// Result describes a written snapshot.
type Result struct {
	Path  string `json:"path"`
	Bytes int    `json:"bytes"`
}

// safePath joins filename onto baseDir and rejects anything that would
// land outside it.
func safePath(baseDir, filename string) (string, error) {
	cleanName := filepath.Clean(filename)

	if strings.HasPrefix(cleanName, "..") || filepath.IsAbs(cleanName) || strings.ContainsRune(cleanName, filepath.Separator) {
		return "", ErrInvalidPath
	}

	fullPath := filepath.Join(baseDir, cleanName)

	cleanBase := filepath.Clean(baseDir)
	if !strings.HasPrefix(fullPath, cleanBase+string(filepath.Separator)) && fullPath != cleanBase {
		// filepath.Join(".", "x") yields "x", which is still inside ".".
		if cleanBase != "." {
			return "", ErrInvalidPath
		}
	}

	return fullPath, nil
}

// Save pretty-prints raw (two-space indent) into <fileKey>.json, replacing
// any previous snapshot of the same file.
func (s *Store) Save(fileKey string, raw []byte) (Result, error) {
	if strings.TrimSpace(fileKey) == "" {
		return Result{}, ErrInvalidPath
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return Result{}, fmt.Errorf("snapshot is not valid JSON: %w", err)
	}
	buf.WriteByte('\n')

	if err := os.MkdirAll(s.dir, 0750); err != nil { // G301: restricted directory permissions
		return Result{}, err
	}

	path, err := safePath(s.dir, fileKey+".json")
	if err != nil {
		return Result{}, err
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY, 0600) // #nosec G304 - path validated by safePath
	if err != nil {
		return Result{}, err
	}

	// Two tool calls for the same file may race; the lock keeps the
	// truncate+write pair atomic with respect to each other.
	if err := syscall.Flock(int(file.Fd()), syscall.LOCK_EX); err != nil {
		_ = file.Close()
		return Result{}, err
	}

	err = file.Truncate(0)
	if err == nil {
		_, err = file.Write(buf.Bytes())
	}

	_ = syscall.Flock(int(file.Fd()), syscall.LOCK_UN)
	closeErr := file.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		return Result{}, err
	}

	abs, absErr := filepath.Abs(path)
	if absErr != nil {
		abs = path
	}
	return Result{Path: abs, Bytes: buf.Len()}, nil
}
