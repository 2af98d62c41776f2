package posindex

import (
	"fmt"

	"github.com/calvinalkan/posindex/internal/fs"
)

// OpenIndex opens a finished index file at path for reading. The returned
// [SliceReader] is also what [Builder]'s merge step uses internally to
// read slice files — an index file and a slice file share the same
// on-disk layout.
func OpenIndex(path string) (*SliceReader, error) {
	return OpenIndexFS(fs.NewReal(), path)
}

// OpenIndexFS is [OpenIndex] with an injectable filesystem.
func OpenIndexFS(fsys fs.FS, path string) (*SliceReader, error) {
	r, err := openSliceFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("posindex: open index: %w", err)
	}

	return r, nil
}

// All decodes and returns word w's full position list. It is a
// convenience wrapper around Find and [Cursor.All] for callers who don't
// need to stream.
func (r *SliceReader) All(w int) ([]int64, error) {
	cur, err := r.Find(w)
	if err != nil {
		return nil, err
	}

	return cur.All()
}

// Len returns the number of positions recorded for word w. There is no
// stored per-word count in the format (spec.md §8 invariant 2 defines it
// in terms of distinct buckets, not a field), so the first call for a
// given word decodes its full delta stream; the result is cached on r so
// a second Len(w) call doesn't pay for the decode again.
func (r *SliceReader) Len(w int) (int, error) {
	if w < 0 || w >= r.wordCount {
		return 0, fmt.Errorf("posindex: word %d: %w", w, ErrWordRange)
	}

	r.lenMu.Lock()
	cached := r.lenCache[w]
	r.lenMu.Unlock()

	if cached >= 0 {
		return cached, nil
	}

	positions, err := r.All(w)
	if err != nil {
		return 0, err
	}

	n := len(positions)

	r.lenMu.Lock()
	r.lenCache[w] = n
	r.lenMu.Unlock()

	return n, nil
}
