package posindex

import "encoding/binary"

// Shift is the fixed granularity positions are quantized to: every stored
// position is the input position right-shifted by Shift, and recovered on
// read by shifting left again. Two input positions within the same
// Shift-bucket are indistinguishable on read and are de-duplicated at
// write time.
const Shift = 2

// dirEntrySize is the byte size of one directory entry: a little-endian
// uint32 byte offset.
const dirEntrySize = 4

// trailerSize is the byte size of the trailer: a single little-endian
// uint32 word count.
const trailerSize = 4

// pageSize is the buffer size, in positions, that [Cursor.All] pages with,
// and the buffer size the Builder's merge step reuses across every word of
// every slice.
const pageSize = 256

// writerBufSize is the bufio buffer size used by [SliceWriter].
const writerBufSize = 4096

func putU32LE(b []byte, v uint32) {
	binary.LittleEndian.PutUint32(b, v)
}

func getU32LE(b []byte) uint32 {
	return binary.LittleEndian.Uint32(b)
}
