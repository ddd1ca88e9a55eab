package dict

// BuildFeaturePool concatenates feature strings into a single
// null-terminated pool, deduplicating identical strings (ipadic-family
// dictionaries repeat the same feature string across thousands of
// surface forms sharing a part of speech). It returns the pool bytes
// and each input string's offset into it, for use as a FormatToken's
// FeatureOffset.
func BuildFeaturePool(features []string) (pool []byte, offsets []uint32) {
	offsets = make([]uint32, len(features))
	seen := make(map[string]uint32, len(features))
	for i, f := range features {
		if off, ok := seen[f]; ok {
			offsets[i] = off
			continue
		}
		off := uint32(len(pool))
		pool = append(pool, []byte(f)...)
		pool = append(pool, 0)
		seen[f] = off
		offsets[i] = off
	}
	return pool, offsets
}
