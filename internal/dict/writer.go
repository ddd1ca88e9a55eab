package dict

import (
	"encoding/binary"
	"fmt"
	"io"
)

// WriteSubDict serializes a system or unknown-character sub-dictionary
// to w in the layout parseSubDict expects: the fixed header, the
// base/check pair for every DAT cell, the token table, then the
// feature pool. len(datBase) must equal len(datCheck); tokens[i]'s
// FeatureOffset must already index into featurePool.
func WriteSubDict(w io.Writer, leftContexts, rightContexts uint16, datBase, datCheck []int32, tokens []FormatToken, featurePool []byte) error {
	if len(datBase) != len(datCheck) {
		return fmt.Errorf("dict: write sub-dictionary: base/check length mismatch (%d vs %d)", len(datBase), len(datCheck))
	}

	h := header{
		LeftContexts:  uint32(leftContexts),
		RightContexts: uint32(rightContexts),
		DATCells:      uint32(len(datBase)),
		TokenCount:    uint32(len(tokens)),
		FeaturePoolSz: uint32(len(featurePool)),
	}
	hdr := make([]byte, headerSize)
	binary.LittleEndian.PutUint32(hdr[0:4], h.LeftContexts)
	binary.LittleEndian.PutUint32(hdr[4:8], h.RightContexts)
	binary.LittleEndian.PutUint32(hdr[8:12], h.DATCells)
	binary.LittleEndian.PutUint32(hdr[12:16], h.TokenCount)
	binary.LittleEndian.PutUint32(hdr[16:20], h.FeaturePoolSz)
	if _, err := w.Write(hdr); err != nil {
		return fmt.Errorf("dict: write sub-dictionary header: %w", err)
	}

	cell := make([]byte, 8)
	for i := range datBase {
		binary.LittleEndian.PutUint32(cell[0:4], uint32(datBase[i]))
		binary.LittleEndian.PutUint32(cell[4:8], uint32(datCheck[i]))
		if _, err := w.Write(cell); err != nil {
			return fmt.Errorf("dict: write DAT cell %d: %w", i, err)
		}
	}

	rec := make([]byte, formatTokenSize)
	for i, t := range tokens {
		binary.LittleEndian.PutUint16(rec[0:2], t.LeftContext)
		binary.LittleEndian.PutUint16(rec[2:4], t.RightContext)
		binary.LittleEndian.PutUint16(rec[4:6], t.POS)
		binary.LittleEndian.PutUint16(rec[6:8], uint16(t.Cost))
		binary.LittleEndian.PutUint32(rec[8:12], t.OriginalID)
		binary.LittleEndian.PutUint32(rec[12:16], t.FeatureOffset)
		binary.LittleEndian.PutUint32(rec[16:20], 0) // padding
		if _, err := w.Write(rec); err != nil {
			return fmt.Errorf("dict: write token %d: %w", i, err)
		}
	}

	if _, err := w.Write(featurePool); err != nil {
		return fmt.Errorf("dict: write feature pool: %w", err)
	}
	return nil
}

// WriteMatrix serializes a left_edges x right_edges connection-cost
// matrix to w, in the row-major-by-right-context layout Matrix.At
// indexes into.
func WriteMatrix(w io.Writer, leftEdges, rightEdges uint16, data []int16) error {
	want := int(leftEdges) * int(rightEdges)
	if len(data) != want {
		return fmt.Errorf("dict: write matrix: data has %d entries, want %d", len(data), want)
	}
	hdr := make([]byte, 4)
	binary.LittleEndian.PutUint16(hdr[0:2], leftEdges)
	binary.LittleEndian.PutUint16(hdr[2:4], rightEdges)
	if _, err := w.Write(hdr); err != nil {
		return fmt.Errorf("dict: write matrix header: %w", err)
	}
	row := make([]byte, 2)
	for _, v := range data {
		binary.LittleEndian.PutUint16(row, uint16(v))
		if _, err := w.Write(row); err != nil {
			return fmt.Errorf("dict: write matrix cell: %w", err)
		}
	}
	return nil
}

// WriteCharacterTable serializes a character-category table to w:
// category names (each padded to nameFieldSize bytes) followed by one
// bitfield per codepoint 0..0xFFFF, in the layout
// ParseCharacterClassifier expects. names is indexed by category
// number; bitfields holds exactly numCodepoints entries.
func WriteCharacterTable(w io.Writer, names []string, bitfields []uint32) error {
	if len(bitfields) != numCodepoints {
		return fmt.Errorf("dict: write character table: %d bitfields, want %d", len(bitfields), numCodepoints)
	}
	hdr := make([]byte, 4)
	binary.LittleEndian.PutUint32(hdr, uint32(len(names)))
	if _, err := w.Write(hdr); err != nil {
		return fmt.Errorf("dict: write character table header: %w", err)
	}
	namebuf := make([]byte, nameFieldSize)
	for i, name := range names {
		for j := range namebuf {
			namebuf[j] = 0
		}
		copy(namebuf, name)
		if len(name) > nameFieldSize {
			return fmt.Errorf("dict: write character table: category name %q exceeds %d bytes", name, nameFieldSize)
		}
		if _, err := w.Write(namebuf); err != nil {
			return fmt.Errorf("dict: write character table name %d: %w", i, err)
		}
	}
	row := make([]byte, 4)
	for _, bits := range bitfields {
		binary.LittleEndian.PutUint32(row, bits)
		if _, err := w.Write(row); err != nil {
			return fmt.Errorf("dict: write character table bitfield: %w", err)
		}
	}
	return nil
}

// EncodeCharData packs one codepoint's category bitfield, mirroring
// readCharData's bit layout in reverse.
func EncodeCharData(typefield uint32, defaultType, prefixGroupLen uint8, greedyGroup, alwaysProcess bool) uint32 {
	v := typefield & 0x0003FFFF
	v |= uint32(defaultType) << 18
	v |= uint32(prefixGroupLen&0xF) << 26
	if greedyGroup {
		v |= 1 << 30
	}
	if alwaysProcess {
		v |= 1 << 31
	}
	return v
}
