package posindex

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/calvinalkan/posindex/internal/fs"
)

// S3 from spec.md §8: a buffer capacity of 2 forces a flush mid-stream,
// and the merge step must still produce strictly ascending output.
func TestBuilder_S3_MultiSliceMerge(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	out := filepath.Join(dir, "out.idx")

	b, err := Open(out, 1, 2)
	require.NoError(t, err)

	require.NoError(t, b.Add(0, 4))
	require.NoError(t, b.Add(0, 8))
	require.NoError(t, b.Add(0, 12))

	require.NoError(t, b.Close())
	require.Equal(t, 2, b.Stats().BlockCount)

	r, err := OpenIndex(out)
	require.NoError(t, err)
	defer r.Close()

	cur, err := r.Find(0)
	require.NoError(t, err)

	got, err := cur.All()
	require.NoError(t, err)

	require.Equal(t, []int64{4, 8, 12}, got)
}

// S4 from spec.md §8: a position repeated across a slice boundary must
// still be suppressed by the in-memory exact-duplicate check, even though
// the arena holding the first occurrence was already flushed and reset.
func TestBuilder_S4_DuplicateAcrossSliceBoundary(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	out := filepath.Join(dir, "out.idx")

	b, err := Open(out, 1, 2)
	require.NoError(t, err)

	require.NoError(t, b.Add(0, 4))
	require.NoError(t, b.Add(0, 8))
	require.NoError(t, b.Add(0, 8))

	stats := b.Stats()
	require.Equal(t, int64(3), stats.WordTotal)
	require.Equal(t, int64(2), stats.NonDupTotal)

	require.NoError(t, b.Close())

	r, err := OpenIndex(out)
	require.NoError(t, err)
	defer r.Close()

	cur, err := r.Find(0)
	require.NoError(t, err)

	got, err := cur.All()
	require.NoError(t, err)

	require.Equal(t, []int64{4, 8}, got)
}

// S6: when everything fits in one arena, Close's single-slice fast path
// must produce output byte-identical to a direct SliceWriter run over the
// same words, since it's a rename/adopt, not a re-encode.
func TestBuilder_S6_SingleSliceFastPathMatchesDirectWrite(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	out := filepath.Join(dir, "out.idx")

	b, err := Open(out, 2, 16)
	require.NoError(t, err)

	require.NoError(t, b.Add(0, 4))
	require.NoError(t, b.Add(1, 8))
	require.NoError(t, b.Add(0, 12))

	require.NoError(t, b.Close())
	require.Equal(t, 1, b.Stats().BlockCount)

	got, err := os.ReadFile(out)
	require.NoError(t, err)

	want := buildSlice(t, 2, [][]int64{{4, 12}, {8}})

	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("output bytes mismatch (-want +got):\n%s", diff)
	}
}

// Round-trip property from spec.md §8: splitting the same corpus into
// slices at different buffer boundaries (by varying N) must not change
// the final index's bytes. Flushing more or less often only changes how
// many intermediate slice files exist, never what Close ultimately
// writes.
func TestBuilder_OutputIsIndependentOfFlushBoundary(t *testing.T) {
	t.Parallel()

	type posting struct {
		w int
		p int64
	}

	// Three words, globally ascending positions, interleaved so a merge
	// has to interleave slices rather than just concatenate one word at a
	// time, and including an exact duplicate (word 0, position 28) to
	// exercise suppression regardless of where it lands relative to a
	// flush.
	corpus := []posting{
		{0, 4}, {1, 8}, {0, 12}, {2, 20}, {1, 24},
		{0, 28}, {0, 28}, {2, 32}, {1, 36}, {0, 40}, {2, 44},
	}

	const wordCount = 3

	build := func(capacity int) []byte {
		dir := t.TempDir()
		out := filepath.Join(dir, "out.idx")

		b, err := Open(out, wordCount, capacity)
		require.NoError(t, err)

		for _, post := range corpus {
			require.NoError(t, b.Add(post.w, post.p))
		}

		require.NoError(t, b.Close())

		data, err := os.ReadFile(out)
		require.NoError(t, err)

		return data
	}

	// Capacities chosen so the corpus flushes after almost every add,
	// after a few adds, and never at all (single slice, fast path).
	capacities := []int{1, 2, 3, 4, len(corpus)}

	want := build(capacities[0])

	for _, capacity := range capacities[1:] {
		got := build(capacity)
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("output differs for capacity %d vs %d (-want +got):\n%s",
				capacities[0], capacity, diff)
		}
	}
}

func TestBuilder_CloseWithNoAddsYieldsAllEmptyWords(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	out := filepath.Join(dir, "out.idx")

	b, err := Open(out, 3, 16)
	require.NoError(t, err)
	require.NoError(t, b.Close())

	r, err := OpenIndex(out)
	require.NoError(t, err)
	defer r.Close()

	require.Equal(t, 3, r.WordCount())

	for w := 0; w < 3; w++ {
		n, err := r.Len(w)
		require.NoError(t, err)
		require.Equal(t, 0, n)
	}
}

func TestBuilder_AddRejectsWordOutOfRange(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	out := filepath.Join(dir, "out.idx")

	b, err := Open(out, 2, 16)
	require.NoError(t, err)

	err = b.Add(2, 0)
	require.ErrorIs(t, err, ErrWordRange)

	err = b.Add(-1, 0)
	require.ErrorIs(t, err, ErrWordRange)
}

func TestBuilder_OperationsAfterCloseFail(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	out := filepath.Join(dir, "out.idx")

	b, err := Open(out, 1, 16)
	require.NoError(t, err)
	require.NoError(t, b.Close())

	require.ErrorIs(t, b.Add(0, 0), ErrClosed)
	require.ErrorIs(t, b.Close(), ErrClosed)
}

// A failed flush (here, an injected write fault while Close flushes the
// buffered arena to a slice file) must leave the working directory in
// place rather than removing evidence of the failure.
func TestBuilder_FailedCloseLeavesWorkingDirectory(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	out := filepath.Join(dir, "out.idx")

	chaos := fs.NewChaos(fs.NewReal(), 1, 0)

	b, err := OpenFS(chaos, out, 1, 16)
	require.NoError(t, err)

	require.NoError(t, b.Add(0, 4))

	err = b.Close()
	require.ErrorIs(t, err, fs.ErrInjected)

	workDir := out + ".Working"

	_, statErr := os.Stat(workDir)
	require.NoError(t, statErr, "working directory should survive a failed Close")
}

func TestBuilder_Stats(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	out := filepath.Join(dir, "out.idx")

	b, err := Open(out, 1, 1000)
	require.NoError(t, err)

	require.NoError(t, b.Add(0, 4))
	require.NoError(t, b.Add(0, 8))
	require.NoError(t, b.Add(0, 8)) // duplicate, shouldn't count toward NonDupTotal

	stats := b.Stats()
	require.Equal(t, int64(3), stats.WordTotal)
	require.Equal(t, int64(2), stats.NonDupTotal)
	require.Equal(t, 0, stats.BlockCount) // nothing flushed yet, capacity not reached

	require.NoError(t, b.Close())
	require.Equal(t, 1, b.Stats().BlockCount)
}
