// Package varint implements the 7-bit-terminated unsigned varint encoding
// used by the posindex on-disk format.
//
// This is little-endian base-128, like LEB128, but with the continuation
// bit polarity inverted: the terminator is the *high bit of the last byte*
// (set to 1 on the terminating byte, 0 on every continuation byte before
// it). Standard LEB128 sets the high bit on every byte *except* the last.
// Implementers porting this format must not substitute binary.Uvarint.
package varint

import (
	"errors"
	"io"
)

// ErrTruncated is returned by Decode when the input ends before a
// terminating byte is found.
var ErrTruncated = errors.New("varint: truncated")

// MaxLen is the maximum number of bytes a 64-bit value can occupy.
const MaxLen = 10

// Append encodes v and appends it to buf, returning the extended slice.
func Append(buf []byte, v uint64) []byte {
	for v >= 0x80 {
		buf = append(buf, byte(v&0x7f))
		v >>= 7
	}

	return append(buf, byte(v)|0x80)
}

// Decode reads a single varint from the front of buf.
// It returns the decoded value and the number of bytes consumed.
// If buf does not contain a complete varint, it returns (0, 0, ErrTruncated).
func Decode(buf []byte) (v uint64, n int, err error) {
	var shift uint

	for i, b := range buf {
		if shift >= 64 {
			return 0, 0, errors.New("varint: overflow")
		}

		v |= uint64(b&0x7f) << shift

		if b&0x80 != 0 {
			return v, i + 1, nil
		}

		shift += 7
	}

	return 0, 0, ErrTruncated
}

// DecodeByteReader reads a single varint one byte at a time from r,
// returning the decoded value and the number of bytes consumed. Unlike
// Decode, it is usable against a streaming source (a [bufio.Reader] over
// a bounded [io.SectionReader], for example) without knowing in advance
// how many bytes the varint occupies.
//
// If r returns io.EOF before any byte is read, DecodeByteReader returns
// io.EOF; if it does so after one or more bytes were read but before a
// terminating byte, it returns io.ErrUnexpectedEOF.
func DecodeByteReader(r io.ByteReader) (v uint64, n int, err error) {
	var shift uint

	for {
		b, err := r.ReadByte()
		if err != nil {
			if n > 0 && err == io.EOF {
				return 0, 0, io.ErrUnexpectedEOF
			}

			return 0, 0, err
		}

		n++

		if shift >= 64 {
			return 0, 0, errors.New("varint: overflow")
		}

		v |= uint64(b&0x7f) << shift

		if b&0x80 != 0 {
			return v, n, nil
		}

		shift += 7
	}
}
