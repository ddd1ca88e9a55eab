package lexicon

import (
	"os"
	"testing"
)

func TestImporterAttach(t *testing.T) {
	dictContent := `
{
  "words": [
    {
      "id": "1",
      "kanji": [{"text": "犬", "common": true}],
      "kana": [{"text": "いぬ", "common": true}],
      "sense": [{"gloss": [{"text": "dog"}], "partOfSpeech": ["n"]}]
    },
    {
      "id": "2",
      "kanji": [{"text": "走る", "common": true}],
      "kana": [{"text": "はしる", "common": true}],
      "sense": [{"gloss": [{"text": "to run"}], "partOfSpeech": ["v5r"]}]
    },
    {
      "id": "4",
      "kanji": [],
      "kana": [{"text": "テスト", "common": true}],
      "sense": [{"gloss": [{"text": "test"}], "partOfSpeech": ["n", "vs"]}]
    }
  ]
}
`
	tmpFile, err := os.CreateTemp("", "jmdict_test_*.json")
	if err != nil {
		t.Fatalf("tempfile: %v", err)
	}
	defer os.Remove(tmpFile.Name())
	if _, err := tmpFile.WriteString(dictContent); err != nil {
		t.Fatalf("write: %v", err)
	}
	tmpFile.Close()

	entries, err := LoadJMdictSimplified(tmpFile.Name())
	if err != nil {
		t.Fatalf("load dict: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}

	im := NewImporter(entries)

	e, ok := im.Attach(42, "犬", "犬", "イヌ")
	if !ok {
		t.Fatalf("expected 犬 to match")
	}
	if e.ID != 42 {
		t.Errorf("Entry.ID = %d, want 42 (the caller's OriginalID)", e.ID)
	}
	if len(e.Glosses) != 1 || e.Glosses[0] != "dog" {
		t.Errorf("Glosses = %v, want [dog]", e.Glosses)
	}

	if _, ok := im.Attach(1, "未知", "未知", "ミチ"); ok {
		t.Errorf("expected 未知 to have no match")
	}

	if e, ok := im.Attach(2, "テスト", "テスト", "テスト"); !ok || e.Glosses[0] != "test" {
		t.Errorf("expected テスト to match with gloss 'test', got %v ok=%v", e, ok)
	}
}

func TestToHiragana(t *testing.T) {
	tests := []struct{ in, out string }{
		{"ア", "あ"},
		{"イ", "い"},
		{"カ", "か"},
		{"ガ", "が"},
		{"パ", "ぱ"},
		{"ン", "ん"},
		{"abc", "abc"},
		{"あいう", "あいう"},
	}
	for _, tt := range tests {
		if got := toHiragana(tt.in); got != tt.out {
			t.Errorf("toHiragana(%q) = %q; want %q", tt.in, got, tt.out)
		}
	}
}
