package posindex

// arena is the in-memory buffer from spec.md §3: an intrusive per-word
// linked list over a shared flat arena. Every word's chain lives in the
// same dense positions/next arrays; first/last hold head/tail indices per
// word, or -1 if the word has no entries yet in this arena.
//
// Indices, not owning references, encode the links: this avoids cycles,
// makes serialization a no-op, and keeps memory dense for cache locality
// during the flush traversal.
type arena struct {
	positions []int64
	next      []int32
	first     []int32
	last      []int32
	count     int
}

func newArena(wordCount, capacity int) *arena {
	a := &arena{
		positions: make([]int64, capacity),
		next:      make([]int32, capacity),
		first:     make([]int32, wordCount),
		last:      make([]int32, wordCount),
	}
	a.resetChains()

	return a
}

func (a *arena) resetChains() {
	for w := range a.first {
		a.first[w] = -1
		a.last[w] = -1
	}
}

func (a *arena) reset() {
	a.count = 0
	a.resetChains()
}

func (a *arena) full() bool {
	return a.count == len(a.positions)
}

// append records position p under word w's chain. Callers must already
// have ruled out the exact-duplicate case (see [Builder.Add]).
func (a *arena) append(w int, p int64) {
	idx := int32(a.count)
	a.positions[idx] = p
	a.next[idx] = -1

	if a.last[w] != -1 {
		a.next[a.last[w]] = idx
	} else {
		a.first[w] = idx
	}

	a.last[w] = idx
	a.count++
}
