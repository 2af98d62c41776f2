package fs

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync/atomic"
)

// ErrDirSync indicates the parent directory could not be synced after rename.
//
// When returned, the new file is in place but durability is not guaranteed.
var ErrDirSync = errors.New("fs: dir sync")

// AtomicWriter writes files atomically using write-then-rename.
type AtomicWriter struct {
	fs FS
}

// NewAtomicWriter creates an AtomicWriter that uses the given filesystem.
func NewAtomicWriter(fsys FS) *AtomicWriter {
	if fsys == nil {
		panic("fs is nil")
	}

	return &AtomicWriter{fs: fsys}
}

// Write writes data from r to path atomically and durably: it writes to a
// temp file in the same directory, syncs it, renames it over path, then
// syncs the parent directory.
//
// If the directory sync step fails, the returned error satisfies
// errors.Is(err, ErrDirSync); the file is still in place.
func (w *AtomicWriter) Write(path string, r io.Reader, perm os.FileMode) error {
	if r == nil {
		panic("reader is nil")
	}

	dir, base := filepath.Split(path)
	if base == "" || base == "." {
		return fmt.Errorf("fs: invalid path %q", path)
	}

	if dir == "" {
		dir = "."
	}

	dir = filepath.Clean(dir)

	tmpFile, tmpPath, err := createTempFile(w.fs, dir, base, perm)
	if err != nil {
		return err
	}

	cleanup := func() error {
		closeErr := closeNamed(tmpPath, tmpFile)
		removeErr := removeIfExists(w.fs, tmpPath)

		return errors.Join(closeErr, removeErr)
	}

	if _, err := io.Copy(tmpFile, r); err != nil {
		return errors.Join(fmt.Errorf("fs: write temp file %q: %w", tmpPath, err), cleanup())
	}

	if err := tmpFile.Sync(); err != nil {
		return errors.Join(fmt.Errorf("fs: sync temp file %q: %w", tmpPath, err), cleanup())
	}

	if err := closeNamed(tmpPath, tmpFile); err != nil {
		return errors.Join(err, removeIfExists(w.fs, tmpPath))
	}

	if err := w.fs.Rename(tmpPath, path); err != nil {
		return errors.Join(fmt.Errorf("fs: rename: %w", err), removeIfExists(w.fs, tmpPath))
	}

	if err := fsyncDir(w.fs, dir); err != nil {
		return err
	}

	return nil
}

const maxTempAttempts = 10000

var tempFileCounter atomic.Uint64

func createTempFile(fsys FS, dir, base string, perm os.FileMode) (File, string, error) {
	for range maxTempAttempts {
		seq := tempFileCounter.Add(1)
		path := filepath.Join(dir, fmt.Sprintf(".%s.tmp-%d", base, seq))

		f, err := fsys.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
		if err == nil {
			return f, path, nil
		}

		if os.IsExist(err) {
			continue
		}

		return nil, "", fmt.Errorf("fs: create temp file: %w", err)
	}

	return nil, "", fmt.Errorf("fs: exhausted temp file attempts in %q", dir)
}

func fsyncDir(fsys FS, dir string) error {
	f, err := fsys.Open(dir)
	if err != nil {
		return errors.Join(ErrDirSync, fmt.Errorf("fs: open dir %q: %w", dir, err))
	}

	if err := f.Sync(); err != nil {
		return errors.Join(ErrDirSync, fmt.Errorf("fs: sync dir %q: %w", dir, err), closeNamed(dir, f))
	}

	return closeNamed(dir, f)
}

func closeNamed(path string, f File) error {
	if err := f.Close(); err != nil {
		return fmt.Errorf("fs: close %q: %w", path, err)
	}

	return nil
}

func removeIfExists(fsys FS, path string) error {
	if err := fsys.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("fs: remove %q: %w", path, err)
	}

	return nil
}
