// Package scratch manages the per-run working directory used to stage
// intermediate files (mount lists, generated keys). The directory is
// owned by this process instance and removed unconditionally on exit.
package scratch

import (
	"fmt"
	"os"
)

// Dir is a per-run scratch directory.
type Dir struct {
	path string
}

// New creates a scratch directory under parent (or the system temp dir
// when parent is empty).
func New(parent string) (*Dir, error) {
	path, err := os.MkdirTemp(parent, "ctforge-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create scratch directory: %w", err)
	}
	return &Dir{path: path}, nil
}

// Path returns the directory path.
func (d *Dir) Path() string {
	return d.path
}

// Remove deletes the directory and everything in it. Safe to call more
// than once.
func (d *Dir) Remove() error {
	if d.path == "" {
		return nil
	}
	err := os.RemoveAll(d.path)
	d.path = ""
	return err
}
