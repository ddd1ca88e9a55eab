package dict

import (
	"strings"
	"testing"
)

func TestParseCharDef(t *testing.T) {
	src := strings.Join([]string{
		"DEFAULT 0 1 0",
		"KANJI 0 0 2",
		"# comment line",
		"0x4E00 0x9FFF KANJI",
		"0x0041 ALPHA",
	}, "\n")
	// ALPHA is intentionally undefined to exercise the error path below.
	_, _, err := ParseCharDef(strings.NewReader(src))
	if err == nil {
		t.Fatal("expected error for undefined category ALPHA")
	}

	src2 := strings.Join([]string{
		"DEFAULT 0 1 0",
		"KANJI 0 0 2",
		"0x4E00 0x9FFF KANJI",
	}, "\n")
	names, bitfields, err := ParseCharDef(strings.NewReader(src2))
	if err != nil {
		t.Fatalf("ParseCharDef: %v", err)
	}
	if len(names) != 2 || names[0] != "DEFAULT" || names[1] != "KANJI" {
		t.Fatalf("unexpected names: %v", names)
	}

	var buf strings.Builder
	if err := WriteCharacterTable(&buf, names, bitfields); err != nil {
		t.Fatalf("WriteCharacterTable: %v", err)
	}
	cc, err := ParseCharacterClassifier([]byte(buf.String()))
	if err != nil {
		t.Fatalf("ParseCharacterClassifier: %v", err)
	}
	cat := cc.Category('中')
	if cat.Name != "KANJI" || cat.PrefixGroupLen != 2 {
		t.Errorf("unexpected category for 中: %+v", cat)
	}
	if cc.Category('a').Name != "DEFAULT" {
		t.Errorf("unassigned codepoint should default to DEFAULT")
	}
}
