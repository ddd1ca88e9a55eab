package dict

import (
	"bytes"
	"encoding/binary"
	"testing"
)

func buildToken(left, right, pos uint16, cost int16, origID, featOff uint32) []byte {
	buf := make([]byte, formatTokenSize)
	binary.LittleEndian.PutUint16(buf[0:2], left)
	binary.LittleEndian.PutUint16(buf[2:4], right)
	binary.LittleEndian.PutUint16(buf[4:6], pos)
	binary.LittleEndian.PutUint16(buf[6:8], uint16(cost))
	binary.LittleEndian.PutUint32(buf[8:12], origID)
	binary.LittleEndian.PutUint32(buf[12:16], featOff)
	return buf
}

func buildSubDict(leftCtx, rightCtx uint32, tokens [][]byte, features []byte) []byte {
	var buf bytes.Buffer
	datCells := uint32(0)
	hdr := make([]byte, headerSize)
	binary.LittleEndian.PutUint32(hdr[0:4], leftCtx)
	binary.LittleEndian.PutUint32(hdr[4:8], rightCtx)
	binary.LittleEndian.PutUint32(hdr[8:12], datCells)
	binary.LittleEndian.PutUint32(hdr[12:16], uint32(len(tokens)))
	binary.LittleEndian.PutUint32(hdr[16:20], uint32(len(features)))
	buf.Write(hdr)
	for _, tok := range tokens {
		buf.Write(tok)
	}
	buf.Write(features)
	return buf.Bytes()
}

func TestFormatTokenRoundtrip(t *testing.T) {
	raw := buildToken(3, 5, 42, -7, 99, 12)
	tok, err := readFormatToken(raw)
	if err != nil {
		t.Fatalf("readFormatToken: %v", err)
	}
	if tok.LeftContext != 3 || tok.RightContext != 5 || tok.POS != 42 || tok.Cost != -7 ||
		tok.OriginalID != 99 || tok.FeatureOffset != 12 {
		t.Errorf("unexpected token: %+v", tok)
	}
}

func TestMatrixIndexing(t *testing.T) {
	left, right := uint16(2), uint16(3)
	buf := make([]byte, 4+int(left)*int(right)*2)
	binary.LittleEndian.PutUint16(buf[0:2], left)
	binary.LittleEndian.PutUint16(buf[2:4], right)
	// matrix[l, r] = matrix_data[l + r*left_edges]
	want := map[[2]uint16]int16{
		{0, 0}: 10, {1, 0}: 11,
		{0, 1}: 20, {1, 1}: 21,
		{0, 2}: 30, {1, 2}: 31,
	}
	for lr, v := range want {
		loc := int(left)*int(lr[1]) + int(lr[0])
		off := 4 + 2*loc
		binary.LittleEndian.PutUint16(buf[off:off+2], uint16(v))
	}
	m, err := parseMatrix(buf)
	if err != nil {
		t.Fatalf("parseMatrix: %v", err)
	}
	for lr, v := range want {
		if got := m.At(lr[0], lr[1]); got != v {
			t.Errorf("At(%d,%d) = %d, want %d", lr[0], lr[1], got, v)
		}
	}
	if m.At(99, 0) != 0 {
		t.Errorf("out-of-range At should be 0")
	}
}

func TestCharacterClassifierBitfield(t *testing.T) {
	var buf bytes.Buffer
	names := []string{"DEFAULT", "KANJI"}
	hdr := make([]byte, 4)
	binary.LittleEndian.PutUint32(hdr, uint32(len(names)))
	buf.Write(hdr)
	for _, n := range names {
		nb := make([]byte, nameFieldSize)
		copy(nb, n)
		buf.Write(nb)
	}
	// KANJI: typefield bit0 set, default_type=1, prefix_group_len=2, greedy=1, always=0
	bitfield := uint32(0)
	bitfield |= 1 << 0               // typefield bit 0
	bitfield |= uint32(1) << 18      // default_type = 1
	bitfield |= uint32(2) << 26      // prefix_group_len = 2
	bitfield |= uint32(1) << 30      // greedy_group
	for c := 0; c < numCodepoints; c++ {
		if c == int('中') {
			b4 := make([]byte, 4)
			binary.LittleEndian.PutUint32(b4, bitfield)
			buf.Write(b4)
		} else {
			buf.Write(make([]byte, 4))
		}
	}
	cc, err := ParseCharacterClassifier(buf.Bytes())
	if err != nil {
		t.Fatalf("ParseCharacterClassifier: %v", err)
	}
	cat := cc.Category('中')
	if cat.Name != "KANJI" || cat.PrefixGroupLen != 2 || !cat.GreedyGroup || cat.AlwaysProcess {
		t.Errorf("unexpected category for 中: %+v", cat)
	}
	if !cc.HasCategory('中', 0) {
		t.Errorf("中 should have type 0 set")
	}
	other := cc.Category('a')
	if other.Name != "DEFAULT" {
		t.Errorf("unrelated codepoint should default to DEFAULT, got %+v", other)
	}
}

func TestBlobLoadMatrixMismatchFatal(t *testing.T) {
	sys := buildSubDict(2, 3, nil, nil)
	unk := buildSubDict(2, 3, nil, nil)
	badMatrix := make([]byte, 4+2*2*2) // declares 2x2, not 2x3
	binary.LittleEndian.PutUint16(badMatrix[0:2], 2)
	binary.LittleEndian.PutUint16(badMatrix[2:4], 2)
	charTable := make([]byte, 4+numCodepoints*4)
	binary.LittleEndian.PutUint32(charTable[0:4], 0)

	_, _, err := Load(sys, unk, badMatrix, charTable)
	if err == nil {
		t.Fatal("expected fatal error on matrix/sysdict context mismatch")
	}
}
