package dict

import "encoding/binary"

// Category is the per-character-category metadata controlling
// unknown-token generation for a run of characters sharing it.
type Category struct {
	Name            string
	Number          uint8
	PrefixGroupLen  uint8
	GreedyGroup     bool
	AlwaysProcess   bool
}

// charData is the raw per-codepoint bitfield, unpacked from a u32:
// [typefield:18 | default_type:8 | prefix_group_len:4 | greedy_group:1 | always_process:1].
type charData struct {
	typefield      uint32
	defaultType    uint8
	prefixGroupLen uint8
	greedyGroup    bool
	alwaysProcess  bool
}

func readCharData(data uint32) charData {
	return charData{
		typefield:      data & 0x0003FFFF,
		defaultType:    uint8((data >> 18) & 0xFF),
		prefixGroupLen: uint8((data >> 26) & 0xF),
		greedyGroup:    (data>>30)&1 != 0,
		alwaysProcess:  (data>>31)&1 != 0,
	}
}

// hasType reports whether index is set in the typefield bitmap.
func (c charData) hasType(index uint8) bool {
	if index >= 32 {
		return false
	}
	return c.typefield&(1<<index) != 0
}

const nameFieldSize = 0x20
const numCodepoints = 0xFFFF

// CharacterClassifier maps codepoints 0..0xFFFF to their compatible
// categories. Codepoints >= 0x10000 use the default category, index 0.
type CharacterClassifier struct {
	categories map[uint8]Category
	data       []charData
}

// ParseCharacterClassifier reads a character-category table: a list
// of category names (each padded to 0x20 bytes), then 0xFFFF u32
// bitfield entries.
func ParseCharacterClassifier(b []byte) (*CharacterClassifier, error) {
	if len(b) < 4 {
		return nil, errShort("char table header")
	}
	numTypes := binary.LittleEndian.Uint32(b[0:4])
	off := 4
	names := make([]string, numTypes)
	for i := uint32(0); i < numTypes; i++ {
		if off+nameFieldSize > len(b) {
			return nil, errShort("char table names")
		}
		names[i] = cstring(b[off : off+nameFieldSize])
		off += nameFieldSize
	}
	cc := &CharacterClassifier{
		categories: make(map[uint8]Category),
		data:       make([]charData, numCodepoints),
	}
	for c := 0; c < numCodepoints; c++ {
		if off+4 > len(b) {
			return nil, errShort("char table bitfields")
		}
		bitfield := binary.LittleEndian.Uint32(b[off : off+4])
		off += 4
		cd := readCharData(bitfield)
		cc.data[c] = cd
		if _, ok := cc.categories[cd.defaultType]; !ok {
			name := ""
			if int(cd.defaultType) < len(names) {
				name = names[cd.defaultType]
			}
			cc.categories[cd.defaultType] = Category{
				Name:           name,
				Number:         cd.defaultType,
				PrefixGroupLen: cd.prefixGroupLen,
				GreedyGroup:    cd.greedyGroup,
				AlwaysProcess:  cd.alwaysProcess,
			}
		}
	}
	return cc, nil
}

func cstring(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}

func (cc *CharacterClassifier) lookup(r rune) charData {
	if uint32(r) < numCodepoints {
		return cc.data[r]
	}
	return charData{}
}

// Category returns the default category record for r.
func (cc *CharacterClassifier) Category(r rune) Category {
	cd := cc.lookup(r)
	return cc.categories[cd.defaultType]
}

// HasCategory reports whether r is compatible with category n.
func (cc *CharacterClassifier) HasCategory(r rune, n uint8) bool {
	if uint32(r) >= numCodepoints {
		return n == 0
	}
	return cc.lookup(r).hasType(n)
}

// AlwaysProcess reports whether r must always be grouped into an
// unknown token even when a dictionary match covers it.
func (cc *CharacterClassifier) AlwaysProcess(r rune) bool {
	return cc.Category(r).AlwaysProcess
}
