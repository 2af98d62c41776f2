package posindex

import (
	"bufio"
	"io"
)

// sink is the buffered byte-sink collaborator from spec.md §6: a writer
// that tracks how many bytes have been handed to it, independent of how
// much is actually buffered versus flushed to the underlying writer.
type sink struct {
	bw      *bufio.Writer
	written int64
	tmp     [4]byte
}

func newSink(w io.Writer) *sink {
	return &sink{bw: bufio.NewWriterSize(w, writerBufSize)}
}

func (s *sink) write(p []byte) error {
	n, err := s.bw.Write(p)
	s.written += int64(n)

	return err
}

func (s *sink) writeU32LE(v uint32) error {
	putU32LE(s.tmp[:], v)

	return s.write(s.tmp[:])
}

func (s *sink) bytesWritten() int64 {
	return s.written
}

func (s *sink) flush() error {
	return s.bw.Flush()
}
