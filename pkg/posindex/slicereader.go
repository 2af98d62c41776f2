package posindex

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/calvinalkan/posindex/internal/fs"
	"github.com/calvinalkan/posindex/pkg/varint"
)

// openSliceFile opens path through fsys and parses it as a slice/index
// file. The returned reader owns the file handle.
func openSliceFile(fsys fs.FS, path string) (*SliceReader, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return nil, fmt.Errorf("posindex: open %q: %w", path, err)
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()

		return nil, fmt.Errorf("posindex: stat %q: %w", path, err)
	}

	r, err := NewSliceReader(f, info.Size(), f)
	if err != nil {
		_ = f.Close()

		return nil, fmt.Errorf("posindex: %q: %w", path, err)
	}

	return r, nil
}

// SliceReader opens a slice (or final index) file, reads its trailer and
// directory, and yields per-word [Cursor]s that page through decoded
// absolute positions. See spec.md §4.2 and §6 for the on-disk layout.
type SliceReader struct {
	r io.ReaderAt
	c io.Closer

	wordCount int
	// firstByteOffset has wordCount+1 entries: firstByteOffset[w] is the
	// byte offset where word w's delta stream starts, and
	// firstByteOffset[wordCount] is the byte offset where the directory
	// begins (the end of the delta region).
	firstByteOffset []int64

	// lenCache memoizes [SliceReader.Len] per word: -1 until that word's
	// delta stream has been decoded once. There is no stored per-word
	// count in the format, so the first Len(w) call still pays for a full
	// decode; this only saves the second one.
	lenMu    sync.Mutex
	lenCache []int
}

// NewSliceReader parses the trailer and directory of a slice file of the
// given size, readable through r. c is closed by [SliceReader.Close].
func NewSliceReader(r io.ReaderAt, size int64, c io.Closer) (*SliceReader, error) {
	if size < trailerSize {
		return nil, fmt.Errorf("posindex: file too small for trailer: %w", ErrCorrupt)
	}

	var trailer [trailerSize]byte
	if _, err := r.ReadAt(trailer[:], size-trailerSize); err != nil {
		return nil, fmt.Errorf("posindex: read trailer: %w", err)
	}

	wordCount := int(getU32LE(trailer[:]))

	dirSize := int64(wordCount) * dirEntrySize
	dirStart := size - trailerSize - dirSize

	if dirStart < 0 {
		return nil, fmt.Errorf("posindex: file too small for directory (W=%d): %w", wordCount, ErrCorrupt)
	}

	dirBuf := make([]byte, dirSize)
	if dirSize > 0 {
		if _, err := r.ReadAt(dirBuf, dirStart); err != nil {
			return nil, fmt.Errorf("posindex: read directory: %w", err)
		}
	}

	offsets := make([]int64, wordCount+1)

	for i := range wordCount {
		offsets[i] = int64(getU32LE(dirBuf[i*dirEntrySize:]))
	}

	offsets[wordCount] = dirStart

	for i := 1; i <= wordCount; i++ {
		if offsets[i] < offsets[i-1] {
			return nil, fmt.Errorf("posindex: directory not monotonic at word %d: %w", i, ErrCorrupt)
		}
	}

	if wordCount > 0 && offsets[0] != 0 {
		return nil, fmt.Errorf("posindex: word 0 does not start at byte 0: %w", ErrCorrupt)
	}

	lenCache := make([]int, wordCount)
	for i := range lenCache {
		lenCache[i] = -1
	}

	return &SliceReader{r: r, c: c, wordCount: wordCount, firstByteOffset: offsets, lenCache: lenCache}, nil
}

// WordCount returns the number of words this slice or index was built with.
func (r *SliceReader) WordCount() int {
	return r.wordCount
}

// Find returns a [Cursor] over word w's matches.
func (r *SliceReader) Find(w int) (*Cursor, error) {
	if w < 0 || w >= r.wordCount {
		return nil, fmt.Errorf("posindex: word %d: %w", w, ErrWordRange)
	}

	start, end := r.firstByteOffset[w], r.firstByteOffset[w+1]

	return newCursor(r.r, start, end), nil
}

// Close releases the underlying file handle.
func (r *SliceReader) Close() error {
	return r.c.Close()
}

// Cursor pages through one word's decoded absolute positions.
//
// A cursor whose byte range is empty (no matches for that word) is a
// normal, valid Cursor with Done() true from the start — not a separate
// sentinel type.
type Cursor struct {
	br        *bufio.Reader
	remaining int64
	lastValue uint64
}

func newCursor(r io.ReaderAt, start, end int64) *Cursor {
	sr := io.NewSectionReader(r, start, end-start)

	return &Cursor{br: bufio.NewReader(sr), remaining: end - start}
}

// Done reports whether the cursor has reached the end of its byte range.
func (c *Cursor) Done() bool {
	return c.remaining <= 0
}

// Page decodes up to len(buf) additional positions into buf, returning how
// many were produced. Callers may request pages of arbitrary size until
// Done reports true.
func (c *Cursor) Page(buf []int64) (int, error) {
	n := 0

	for n < len(buf) && c.remaining > 0 {
		delta, consumed, err := varint.DecodeByteReader(c.br)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return n, fmt.Errorf("posindex: truncated varint: %w", ErrCorrupt)
			}

			return n, fmt.Errorf("posindex: decode position: %w", err)
		}

		c.remaining -= int64(consumed)
		if c.remaining < 0 {
			return n, fmt.Errorf("posindex: varint crossed word boundary: %w", ErrCorrupt)
		}

		c.lastValue += delta
		buf[n] = int64(c.lastValue << Shift)
		n++
	}

	return n, nil
}

// All pages the cursor to completion and returns every position as a
// slice. It is a convenience for callers who don't need streaming; it
// adds no decoding logic beyond repeated Page calls.
func (c *Cursor) All() ([]int64, error) {
	var out []int64

	buf := make([]int64, pageSize)

	for !c.Done() {
		n, err := c.Page(buf)
		if err != nil {
			return nil, err
		}

		out = append(out, buf[:n]...)
	}

	return out, nil
}
