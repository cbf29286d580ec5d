// SPDX-License-Identifier: EPL-2.0

// Package tempscope hands out uniquely named temporary files bound to a
// single request and removes them when the request ends.
package tempscope

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
)

const prefix = "audmark-"

// File is one scoped temporary file. The path exists from Acquire until the
// first Release.
type File struct {
	Path string

	once sync.Once
}

// Scope creates and removes temporary files under one directory.
type Scope struct {
	dir    string
	logger hclog.Logger
}

// New returns a Scope rooted at dir. An empty dir means os.TempDir().
func New(dir string, logger hclog.Logger) *Scope {
	if dir == "" {
		dir = os.TempDir()
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Scope{dir: dir, logger: logger.Named("tempscope")}
}

// Dir returns the directory files are created in.
func (s *Scope) Dir() string { return s.dir }

// Acquire creates a new empty file whose name ends in suffix. The file is
// created exclusively, so two callers can never share a path.
func (s *Scope) Acquire(suffix string) (*File, error) {
	path := filepath.Join(s.dir, prefix+uuid.NewString()+suffix)

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return nil, fmt.Errorf("creating temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return nil, fmt.Errorf("creating temp file: %w", err)
	}

	return &File{Path: path}, nil
}

// Release removes the file. It is safe to call with nil and more than once.
// Removal failures are logged and never returned.
func (s *Scope) Release(f *File) {
	if f == nil {
		return
	}
	f.once.Do(func() {
		if f.Path == "" {
			return
		}
		err := os.Remove(f.Path)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("failed to remove temp file", "path", f.Path, "error", err)
		}
	})
}

// Do acquires one file per suffix, runs fn, and releases every acquired
// file on return, including when fn panics.
func (s *Scope) Do(suffixes []string, fn func(files []*File) error) error {
	files := make([]*File, 0, len(suffixes))
	defer func() {
		for _, f := range files {
			s.Release(f)
		}
	}()

	for _, suffix := range suffixes {
		f, err := s.Acquire(suffix)
		if err != nil {
			return err
		}
		files = append(files, f)
	}

	return fn(files)
}
