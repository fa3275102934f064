// Package hashindex implements the build-side lookup structure: a map from
// a 64-bit row hash to the build-row ordinals that hashed to it, storing
// the hash alongside the bucket so probing never has to recompute or
// re-derive it from slot placement.
package hashindex

// bucket holds every build-row ordinal that produced a given hash, plus the
// hash itself. The hash is also the map key, which already keeps distinct
// hashes in distinct buckets; Lookup does not read the stored copy, and
// candidates sharing a bucket are told apart only by RowEquality.
type bucket struct {
	hash     uint64
	ordinals []uint64
}

// HashIndex maps a row hash to the set of build-side row ordinals sharing
// that hash. It is built once per build side and never rehashed: the
// caller presizes it via New with the known build row count.
type HashIndex struct {
	buckets map[uint64]*bucket
}

// New allocates a HashIndex sized for an expected row count, avoiding
// incremental regrowth during Insert.
func New(expectedRows int) *HashIndex {
	return &HashIndex{buckets: make(map[uint64]*bucket, expectedRows)}
}

// Insert records that build row ordinal produced hash. Called once per
// build row, in build-row order, while the BuildPipeline drains its input.
// ordinal is a uint64 per §3/§4.2's data model (a build side spanning more
// than 2^32 rows still addresses every row uniquely).
func (h *HashIndex) Insert(hash uint64, ordinal uint64) {
	b, ok := h.buckets[hash]
	if !ok {
		b = &bucket{hash: hash}
		h.buckets[hash] = b
	}
	b.ordinals = append(b.ordinals, ordinal)
}

// Lookup returns the build-row ordinals that share hash with a probe row,
// or (nil, false) if no build row ever hashed to it. The returned slice is
// the index's own backing storage and must not be mutated by callers.
func (h *HashIndex) Lookup(hash uint64) ([]uint64, bool) {
	b, ok := h.buckets[hash]
	if !ok {
		return nil, false
	}
	return b.ordinals, true
}

// Len reports the number of distinct hash buckets, not the number of rows
// indexed (a single bucket may hold many colliding rows).
func (h *HashIndex) Len() int {
	return len(h.buckets)
}
