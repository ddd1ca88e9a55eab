package dict

import (
	"bytes"
	"testing"
)

func TestWriteSubDictRoundtrip(t *testing.T) {
	pool, offsets := BuildFeaturePool([]string{"名詞,一般,*,*", "動詞,自立,*,*"})
	tokens := []FormatToken{
		{LeftContext: 1, RightContext: 2, POS: 10, Cost: 100, OriginalID: 0, FeatureOffset: offsets[0]},
		{LeftContext: 3, RightContext: 4, POS: 20, Cost: -50, OriginalID: 1, FeatureOffset: offsets[1]},
	}
	datBase := []int32{0, 5, -3}
	datCheck := []int32{-1, 0, 1}

	var buf bytes.Buffer
	if err := WriteSubDict(&buf, 7, 9, datBase, datCheck, tokens, pool); err != nil {
		t.Fatalf("WriteSubDict: %v", err)
	}

	sd, err := parseSubDict(buf.Bytes())
	if err != nil {
		t.Fatalf("parseSubDict: %v", err)
	}
	if sd.LeftContexts != 7 || sd.RightContexts != 9 {
		t.Errorf("context counts = (%d,%d), want (7,9)", sd.LeftContexts, sd.RightContexts)
	}
	if sd.Tokens.Len() != 2 {
		t.Fatalf("token count = %d, want 2", sd.Tokens.Len())
	}
	if sd.Tokens.At(0).Cost != 100 || sd.Tokens.At(1).Cost != -50 {
		t.Errorf("unexpected token costs: %+v %+v", sd.Tokens.At(0), sd.Tokens.At(1))
	}
	if sd.Features.Get(sd.Tokens.At(0).FeatureOffset) != "名詞,一般,*,*" {
		t.Errorf("feature 0 = %q", sd.Features.Get(sd.Tokens.At(0).FeatureOffset))
	}
	if sd.Features.Get(sd.Tokens.At(1).FeatureOffset) != "動詞,自立,*,*" {
		t.Errorf("feature 1 = %q", sd.Features.Get(sd.Tokens.At(1).FeatureOffset))
	}
}

func TestWriteMatrixRoundtrip(t *testing.T) {
	data := []int16{10, 11, 20, 21, 30, 31} // leftEdges=2, rightEdges=3
	var buf bytes.Buffer
	if err := WriteMatrix(&buf, 2, 3, data); err != nil {
		t.Fatalf("WriteMatrix: %v", err)
	}
	m, err := parseMatrix(buf.Bytes())
	if err != nil {
		t.Fatalf("parseMatrix: %v", err)
	}
	if m.At(0, 0) != 10 || m.At(1, 2) != 31 {
		t.Errorf("unexpected matrix values: At(0,0)=%d At(1,2)=%d", m.At(0, 0), m.At(1, 2))
	}
}

func TestWriteCharacterTableRoundtrip(t *testing.T) {
	names := []string{"DEFAULT", "KANJI"}
	bitfields := make([]uint32, numCodepoints)
	bitfields[int('中')] = EncodeCharData(1, 1, 2, true, false)

	var buf bytes.Buffer
	if err := WriteCharacterTable(&buf, names, bitfields); err != nil {
		t.Fatalf("WriteCharacterTable: %v", err)
	}
	cc, err := ParseCharacterClassifier(buf.Bytes())
	if err != nil {
		t.Fatalf("ParseCharacterClassifier: %v", err)
	}
	cat := cc.Category('中')
	if cat.Name != "KANJI" || cat.PrefixGroupLen != 2 || !cat.GreedyGroup {
		t.Errorf("unexpected category: %+v", cat)
	}
}

func TestBuildFeaturePoolDedupes(t *testing.T) {
	pool, offsets := BuildFeaturePool([]string{"a,b", "c,d", "a,b"})
	if offsets[0] != offsets[2] {
		t.Errorf("identical feature strings should share an offset: %d vs %d", offsets[0], offsets[2])
	}
	if offsets[1] == offsets[0] {
		t.Errorf("distinct feature strings should not share an offset")
	}
	if len(pool) != len("a,b\x00c,d\x00") {
		t.Errorf("pool length = %d, want deduplicated length %d", len(pool), len("a,b\x00c,d\x00"))
	}
}
