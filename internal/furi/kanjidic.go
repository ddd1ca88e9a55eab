package furi

import (
	"encoding/json"
	"fmt"
	"io"
)

// LoadKanjiDic reads a Kanjidic JSON document: a single object mapping
// each kanji character to its list of dictionary reading strings.
func LoadKanjiDic(r io.Reader) (KanjiDic, error) {
	var raw map[string][]string
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("furi: decoding kanjidic: %w", err)
	}
	kd := make(KanjiDic, len(raw))
	for k, readings := range raw {
		runes := []rune(normalizeNFC(k))
		if len(runes) != 1 {
			continue
		}
		normalized := make([]string, len(readings))
		for i, r := range readings {
			normalized[i] = normalizeNFC(r)
		}
		kd[runes[0]] = normalized
	}
	return kd, nil
}
