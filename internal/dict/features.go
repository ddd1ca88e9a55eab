package dict

import "bytes"

// featurePool is a concatenation of null-terminated UTF-8 feature
// strings. FeatureGet returns a slice into the pool without copying;
// copying is left to the caller.
type featurePool struct {
	data []byte
}

func newFeaturePool(data []byte) featurePool { return featurePool{data: data} }

// Get returns the feature string starting at offset, up to (but not
// including) the first null byte.
func (p featurePool) Get(offset uint32) string {
	if int(offset) >= len(p.data) {
		return ""
	}
	rest := p.data[offset:]
	if i := bytes.IndexByte(rest, 0); i >= 0 {
		return string(rest[:i])
	}
	return string(rest)
}
