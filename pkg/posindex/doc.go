// Package posindex implements a word-position search index: a compact
// on-disk structure that, for a fixed vocabulary of W words numbered
// 0..W-1, records the sorted list of byte offsets in some corpus where
// each word occurs.
//
// The package has three pieces, leaves first:
//
//   - [SliceWriter] writes one self-contained slice file given positions
//     grouped by word in ascending word and position order.
//   - [SliceReader] opens a slice file and pages through a word's
//     decoded positions via a [Cursor].
//   - [Builder] is the external-memory pipeline: it accepts (word, position)
//     pairs in corpus order, buffers them in a fixed-capacity in-memory
//     arena, flushes full arenas as slices, and merges all slices into the
//     final index at Close.
//
// Positions are stored right-shifted by [Shift]; two positions within the
// same shift bucket are indistinguishable on read. The index file this
// package produces has no deletion or mutation after Close, supports no
// concurrent writers, and cannot be updated in place — a new corpus means
// a new index built from scratch.
//
// # Basic usage
//
//	b, err := posindex.Open("out.idx", wordCount, bufferCapacity)
//	if err != nil {
//	    // handle
//	}
//	for _, m := range matches { // in corpus position order
//	    if err := b.Add(m.Word, m.Position); err != nil {
//	        // handle
//	    }
//	}
//	if err := b.Close(); err != nil {
//	    // handle; the working directory is left in place for inspection
//	}
//
//	idx, err := posindex.OpenIndex("out.idx")
//	positions, err := idx.All(wordID)
package posindex
