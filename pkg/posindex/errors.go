package posindex

import "errors"

// Error classification codes.
//
// Implementations MAY wrap these errors with additional context via
// fmt.Errorf("...: %w", err). Callers MUST classify errors using errors.Is.
var (
	// ErrOutOfOrder is returned by [SliceWriter.WritePosition] when a word
	// receives a quantized position smaller than the last one written for
	// that word. Non-recoverable; indicates a caller or merger bug.
	ErrOutOfOrder = errors.New("posindex: position out of order")

	// ErrIncomplete is returned by [SliceWriter.Close] when the writer is
	// closed before NextWord was called exactly W times.
	ErrIncomplete = errors.New("posindex: slice writer closed before all words were written")

	// ErrWordRange is returned when a word id is outside [0, W).
	ErrWordRange = errors.New("posindex: word id out of range")

	// ErrCorrupt is returned on read when a slice or index file's directory
	// is not monotonically non-decreasing, or a varint runs past a word's
	// declared byte range.
	ErrCorrupt = errors.New("posindex: corrupt index")

	// ErrClosed is returned by Builder.Add and Builder.Close, and by
	// SliceWriter.WritePosition and SliceWriter.NextWord, after Close has
	// already been called. A second SliceWriter.Close returns nil, and
	// SliceReader does not track whether it has been closed.
	ErrClosed = errors.New("posindex: already closed")
)
