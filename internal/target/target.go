// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package target chooses where a converted pyproject.toml is written and
// writes it without leaving partial files behind.
//
// Existing files are never overwritten unless an explicit path is given:
// pyproject.toml is tried first, then pyproject-new-1.toml,
// pyproject-new-2.toml and so on in the same directory.
package target

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pdiddy/pipenv2uv/pkg/types"
)

const (
	// BaseName is the preferred output file name.
	BaseName = "pyproject.toml"
	// DockerDir is the subdirectory used when running inside the container,
	// where the host mounts its export directory.
	DockerDir = "output"
)

// Resolve returns the output path for opts. An explicit opts.Path is
// returned as-is. Otherwise the first free name in opts.Dir (or
// opts.Dir/output in docker mode) is claimed by creating it empty, so a
// concurrent run cannot pick the same name, and each collision is reported
// on w. Callers that end up writing nothing should Release the claim.
func Resolve(opts types.OutputConfig, w io.Writer) (string, error) {
	if opts.Path != "" {
		return opts.Path, nil
	}

	dir := opts.Dir
	if dir == "" {
		dir = "."
	}
	if opts.Docker {
		dir = filepath.Join(dir, DockerDir)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating %s: %w", dir, err)
	}

	path := filepath.Join(dir, BaseName)
	for n := 1; ; n++ {
		claimed, err := claim(path)
		if err != nil {
			return "", err
		}
		if claimed {
			return path, nil
		}
		fmt.Fprintf(w, "File %s already exists, creating new\n", path)
		path = filepath.Join(dir, fmt.Sprintf("pyproject-new-%d.toml", n))
	}
}

// claim creates path exclusively. It reports false if path already exists.
func claim(path string) (bool, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if errors.Is(err, fs.ErrExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("claiming %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return false, fmt.Errorf("claiming %s: %w", path, err)
	}
	return true, nil
}

// Release removes a claimed path that is still empty. A path that already
// holds content is left alone.
func Release(path string) {
	if info, err := os.Stat(path); err == nil && info.Size() == 0 {
		os.Remove(path)
	}
}

// Write stores text at path through a temporary file in the same directory,
// creating the directory if needed. It replaces path, which is either an
// explicit output or a name claimed by Resolve. On error the temporary file
// is removed.
func Write(path, text string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".pyproject-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.WriteString(text); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("renaming into %s: %w", path, err)
	}
	return nil
}
