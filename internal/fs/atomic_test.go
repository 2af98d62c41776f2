package fs

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAtomicWriterPlacesFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "out.bin")

	w := NewAtomicWriter(NewReal())
	require.NoError(t, w.Write(path, bytes.NewReader([]byte("payload")), 0o644))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "payload", string(got))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "no leftover temp files")
}

func TestAtomicWriterOverwritesExisting(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "out.bin")
	require.NoError(t, os.WriteFile(path, []byte("old"), 0o644))

	w := NewAtomicWriter(NewReal())
	require.NoError(t, w.Write(path, bytes.NewReader([]byte("new")), 0o644))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "new", string(got))
}

func TestAtomicWriterRejectsInvalidPath(t *testing.T) {
	t.Parallel()

	w := NewAtomicWriter(NewReal())
	err := w.Write("", bytes.NewReader(nil), 0o644)
	require.Error(t, err)
}

func TestAtomicWriterCleansUpOnWriteFailure(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "out.bin")

	chaos := NewChaos(NewReal(), 1, 0)
	w := NewAtomicWriter(chaos)

	err := w.Write(path, bytes.NewReader([]byte("payload")), 0o644)
	require.Error(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Empty(t, entries, "temp file must be cleaned up after a failed write")
}
