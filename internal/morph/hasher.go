package morph

// rollingHash is an incremental FNV-like hash over the Unicode scalar
// values of the running prefix, used to cheaply probe a Bloom-like
// filter embedded in the system DAT before paying for an exact-match
// lookup. It matters on long inputs: without it every position would
// pay for a full trie walk even when no dictionary entry could ever
// match.
type rollingHash struct {
	h uint64
}

const (
	fnvOffsetBasis = uint64(14695981039346656037)
	fnvPrime       = uint64(1099511628211)
)

func newRollingHash() rollingHash { return rollingHash{h: fnvOffsetBasis} }

// extend folds one more rune's scalar value into the hash.
func (r rollingHash) extend(c rune) rollingHash {
	h := r.h
	v := uint32(c)
	for shift := 0; shift < 32; shift += 8 {
		h ^= uint64((v >> shift) & 0xFF)
		h *= fnvPrime
	}
	return rollingHash{h: h}
}

func (r rollingHash) value() uint64 { return r.h }

// bloomFilter is a small fixed-size bitset approximating "is this hash
// ever a prefix of a dictionary key". False positives fall through to
// a real exact-match lookup; false negatives would be a correctness
// bug, so BuildBloomFilter below is conservative (every key's every
// prefix hash is added).
type bloomFilter struct {
	bits []uint64
}

func newBloomFilter(bitCount int) bloomFilter {
	if bitCount <= 0 {
		bitCount = 1 << 16
	}
	return bloomFilter{bits: make([]uint64, (bitCount+63)/64)}
}

func (f bloomFilter) add(h uint64) {
	idx := h % uint64(len(f.bits)*64)
	f.bits[idx/64] |= 1 << (idx % 64)
}

func (f bloomFilter) mayContain(h uint64) bool {
	idx := h % uint64(len(f.bits)*64)
	return f.bits[idx/64]&(1<<(idx%64)) != 0
}

// buildBloomFilter populates a filter covering every prefix hash of
// every key, so MayContain is a safe (if imprecise) pre-filter for
// CommonPrefixIter.
func buildBloomFilter(keys []string) bloomFilter {
	f := newBloomFilter(1 << 18)
	for _, k := range keys {
		h := newRollingHash()
		for _, r := range k {
			h = h.extend(r)
			f.add(h.value())
		}
	}
	return f
}
