package morph

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/evertedsphere/suzuri/internal/dat"
	"github.com/evertedsphere/suzuri/internal/dict"
)

const testFormatTokenSize = 2 + 2 + 2 + 2 + 4 + 4 + 4

func putToken(buf *bytes.Buffer, left, right, pos uint16, cost int16, origID, featOff uint32) {
	b := make([]byte, testFormatTokenSize)
	binary.LittleEndian.PutUint16(b[0:2], left)
	binary.LittleEndian.PutUint16(b[2:4], right)
	binary.LittleEndian.PutUint16(b[4:6], pos)
	binary.LittleEndian.PutUint16(b[6:8], uint16(cost))
	binary.LittleEndian.PutUint32(b[8:12], origID)
	binary.LittleEndian.PutUint32(b[12:16], featOff)
	buf.Write(b)
}

func buildSubDictBytes(leftCtx, rightCtx uint32, sysKeys []string, tokenBuf *bytes.Buffer, features []byte) ([]byte, []string) {
	trie, err := dat.Build(sysKeys)
	if err != nil {
		panic(err)
	}
	base, check := trie.Arrays()

	var buf bytes.Buffer
	hdr := make([]byte, 20)
	binary.LittleEndian.PutUint32(hdr[0:4], leftCtx)
	binary.LittleEndian.PutUint32(hdr[4:8], rightCtx)
	binary.LittleEndian.PutUint32(hdr[8:12], uint32(len(base)))
	binary.LittleEndian.PutUint32(hdr[12:16], uint32(tokenBuf.Len()/testFormatTokenSize))
	binary.LittleEndian.PutUint32(hdr[16:20], uint32(len(features)))
	buf.Write(hdr)
	for i := range base {
		cell := make([]byte, 8)
		binary.LittleEndian.PutUint32(cell[0:4], uint32(base[i]))
		binary.LittleEndian.PutUint32(cell[4:8], uint32(check[i]))
		buf.Write(cell)
	}
	buf.Write(tokenBuf.Bytes())
	buf.Write(features)
	return buf.Bytes(), sysKeys
}

func buildTestDict(t *testing.T) *Dict {
	t.Helper()

	var sysTokens bytes.Buffer
	// "a"=0 cost 10, "ab"=1 cost 5, "b"=2 cost 10, ordered to match
	// the sorted key list below.
	sysKeys := []string{"a", "ab", "b"}
	putToken(&sysTokens, 0, 0, 0, 10, 0, 0) // a
	putToken(&sysTokens, 0, 0, 0, 5, 1, 0)  // ab
	putToken(&sysTokens, 0, 0, 0, 10, 2, 0) // b
	sysBytes, _ := buildSubDictBytes(1, 1, sysKeys, &sysTokens, nil)

	var unkTokens bytes.Buffer
	putToken(&unkTokens, 0, 0, 0, 100, 0, 0)
	unkBytes, _ := buildSubDictBytes(1, 1, []string{"DEFAULT"}, &unkTokens, nil)

	matrix := make([]byte, 4+2)
	binary.LittleEndian.PutUint16(matrix[0:2], 1)
	binary.LittleEndian.PutUint16(matrix[2:4], 1)
	binary.LittleEndian.PutUint16(matrix[4:6], 0)

	var charTable bytes.Buffer
	names := []string{"DEFAULT"}
	hdr := make([]byte, 4)
	binary.LittleEndian.PutUint32(hdr, uint32(len(names)))
	charTable.Write(hdr)
	nb := make([]byte, 0x20)
	copy(nb, "DEFAULT")
	charTable.Write(nb)
	for c := 0; c < 0xFFFF; c++ {
		charTable.Write(make([]byte, 4))
	}

	blob, regions, err := dict.Load(sysBytes, unkBytes, matrix, charTable.Bytes())
	if err != nil {
		t.Fatalf("dict.Load: %v", err)
	}
	d, err := LoadDict(blob, regions)
	if err != nil {
		t.Fatalf("LoadDict: %v", err)
	}
	return d
}

func TestTokenizePrefersLowerCostMerge(t *testing.T) {
	d := buildTestDict(t)
	tokens, _, err := d.Tokenize("ab")
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	if len(tokens) != 1 || tokens[0].GetText("ab") != "ab" {
		t.Fatalf("expected single merged token \"ab\", got %+v", tokens)
	}
}

func TestTokenizePartitionInvariant(t *testing.T) {
	d := buildTestDict(t)
	text := "abz"
	tokens, _, err := d.Tokenize(text)
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	var reconstructed string
	for _, tok := range tokens {
		reconstructed += tok.GetText(text)
	}
	if reconstructed != text {
		t.Errorf("partition invariant violated: got %q want %q", reconstructed, text)
	}
	last := tokens[len(tokens)-1]
	if last.Kind != KindUnknown {
		t.Errorf("expected trailing 'z' to fall back to an unknown token, got kind %v", last.Kind)
	}
}

func TestTokenizeEmptyInput(t *testing.T) {
	d := buildTestDict(t)
	tokens, cost, err := d.Tokenize("")
	if err != nil || tokens != nil || cost != 0 {
		t.Errorf("empty input should yield (nil, 0, nil); got (%v, %v, %v)", tokens, cost, err)
	}
}
