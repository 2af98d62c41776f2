package fs

import (
	"errors"
	"os"
	"sync/atomic"
)

// ErrInjected is returned by [Chaos] in place of the underlying error when a
// fault is injected.
var ErrInjected = errors.New("fs: injected fault")

// Chaos wraps an [FS] and deterministically fails the Nth write and/or read
// call, for exercising the Builder's failure semantics (spec.md §7:
// IoError paths during flush and merge).
//
// Unlike the reference repo's probability-based fault injector, Chaos here
// is call-counted: tests ask for "fail write #3" rather than "fail 5% of
// writes", because the properties under test (working directory survives a
// failed Close, a failed flush doesn't corrupt the arena) are about a
// specific failure point, not about fuzzing a distribution.
type Chaos struct {
	fs FS

	writeCalls atomic.Int64
	readCalls  atomic.Int64

	failWriteAt int64 // 0 disables
	failReadAt  int64 // 0 disables
}

// NewChaos wraps fsys. failWriteAt/failReadAt select the 1-indexed call
// number that should fail; 0 disables injection for that operation.
func NewChaos(fsys FS, failWriteAt, failReadAt int64) *Chaos {
	return &Chaos{fs: fsys, failWriteAt: failWriteAt, failReadAt: failReadAt}
}

func (c *Chaos) Open(path string) (File, error) {
	f, err := c.fs.Open(path)
	if err != nil {
		return nil, err
	}

	return &chaosFile{File: f, c: c}, nil
}

func (c *Chaos) OpenFile(path string, flag int, perm os.FileMode) (File, error) {
	f, err := c.fs.OpenFile(path, flag, perm)
	if err != nil {
		return nil, err
	}

	return &chaosFile{File: f, c: c}, nil
}

func (c *Chaos) MkdirAll(path string, perm os.FileMode) error { return c.fs.MkdirAll(path, perm) }
func (c *Chaos) Remove(path string) error                     { return c.fs.Remove(path) }
func (c *Chaos) RemoveAll(path string) error                  { return c.fs.RemoveAll(path) }
func (c *Chaos) Rename(oldpath, newpath string) error         { return c.fs.Rename(oldpath, newpath) }
func (c *Chaos) Stat(path string) (os.FileInfo, error)        { return c.fs.Stat(path) }

// chaosFile wraps a File and counts write/read calls against the parent
// Chaos's injection points.
type chaosFile struct {
	File
	c *Chaos
}

func (f *chaosFile) Write(p []byte) (int, error) {
	n := f.c.writeCalls.Add(1)
	if f.c.failWriteAt != 0 && n == f.c.failWriteAt {
		return 0, ErrInjected
	}

	return f.File.Write(p)
}

func (f *chaosFile) Read(p []byte) (int, error) {
	n := f.c.readCalls.Add(1)
	if f.c.failReadAt != 0 && n == f.c.failReadAt {
		return 0, ErrInjected
	}

	return f.File.Read(p)
}

var _ FS = (*Chaos)(nil)
