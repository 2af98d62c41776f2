package posindex

import (
	"errors"
	"fmt"
	"io"

	"github.com/calvinalkan/posindex/pkg/varint"
)

// SliceWriter emits one self-contained slice file: a delta-encoded
// position stream followed by a per-word offset directory and a
// word-count trailer. See spec.md §4.1 for the exact contract.
//
// A SliceWriter must see WritePosition calls for a word in non-decreasing
// quantized-position order (a repeat of the last quantized position is
// skipped, not written), words presented in ascending word
// id order, and exactly one NextWord call per word (including words with
// no positions at all).
type SliceWriter struct {
	w io.Closer
	s *sink

	wordCount       int
	firstByteOffset []uint32
	currentWord     int
	hasLast         bool
	lastValue       uint64
	nextWordCalls   int
	closed          bool
}

// NewSliceWriter binds a SliceWriter to dst and fixes the word count W.
// dst is closed by [SliceWriter.Close], on both success and failure.
func NewSliceWriter(dst io.WriteCloser, wordCount int) (*SliceWriter, error) {
	if wordCount < 0 {
		return nil, fmt.Errorf("posindex: negative word count %d", wordCount)
	}

	w := &SliceWriter{
		w:               dst,
		s:               newSink(dst),
		wordCount:       wordCount,
		firstByteOffset: make([]uint32, wordCount),
	}

	return w, nil
}

// WritePosition appends position p (pre-shift, non-negative) to the
// current word's list.
func (w *SliceWriter) WritePosition(p int64) error {
	if w.closed {
		return ErrClosed
	}

	if p < 0 {
		return fmt.Errorf("posindex: negative position %d", p)
	}

	q := uint64(p) >> Shift

	switch {
	case !w.hasLast:
		if err := w.emit(q); err != nil {
			return err
		}

		w.hasLast = true
	case q < w.lastValue:
		return ErrOutOfOrder
	case q == w.lastValue:
		return nil
	default:
		if err := w.emit(q - w.lastValue); err != nil {
			return err
		}
	}

	w.lastValue = q

	return nil
}

func (w *SliceWriter) emit(delta uint64) error {
	var buf [varint.MaxLen]byte

	return w.s.write(varint.Append(buf[:0], delta))
}

// NextWord advances the word cursor. It must be called exactly wordCount
// times over the writer's lifetime, once after each word's positions have
// been written (including words with zero positions).
func (w *SliceWriter) NextWord() error {
	if w.closed {
		return ErrClosed
	}

	if w.currentWord >= w.wordCount {
		return fmt.Errorf("posindex: NextWord called more than %d times", w.wordCount)
	}

	w.hasLast = false
	w.currentWord++
	w.nextWordCalls++

	if w.currentWord < w.wordCount {
		offset, err := boundedU32(w.s.bytesWritten())
		if err != nil {
			return err
		}

		w.firstByteOffset[w.currentWord] = offset
	}

	return nil
}

// Close writes the directory and trailer and releases the underlying
// sink. It fails with [ErrIncomplete] if NextWord was not called exactly
// wordCount times; the underlying writer is closed regardless.
func (w *SliceWriter) Close() error {
	if w.closed {
		return nil
	}

	w.closed = true

	writeErr := w.finish()
	closeErr := w.w.Close()

	return errors.Join(writeErr, closeErr)
}

func (w *SliceWriter) finish() error {
	if w.currentWord < w.wordCount {
		return fmt.Errorf("posindex: closed after %d/%d NextWord calls: %w",
			w.currentWord, w.wordCount, ErrIncomplete)
	}

	for _, off := range w.firstByteOffset {
		if err := w.s.writeU32LE(off); err != nil {
			return fmt.Errorf("posindex: write directory: %w", err)
		}
	}

	if err := w.s.writeU32LE(uint32(w.wordCount)); err != nil {
		return fmt.Errorf("posindex: write trailer: %w", err)
	}

	if err := w.s.flush(); err != nil {
		return fmt.Errorf("posindex: flush: %w", err)
	}

	return nil
}

func boundedU32(v int64) (uint32, error) {
	if v < 0 || v > int64(^uint32(0)) {
		return 0, fmt.Errorf("posindex: byte offset %d exceeds 32-bit directory range", v)
	}

	return uint32(v), nil
}
