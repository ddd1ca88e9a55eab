// Package lexicon attaches gloss text to tokenizer output by matching
// surface/lemma/reading against a JMdict-Simplified export.
package lexicon

import (
	"encoding/json"
	"fmt"
	"os"
)

// JMdictEntry mirrors one entry of a jmdict-simplified export.
type JMdictEntry struct {
	ID    string          `json:"id"`
	Kanji []JMdictElement `json:"kanji"`
	Kana  []JMdictElement `json:"kana"`
	Sense []JMdictSense   `json:"sense"`
}

type JMdictElement struct {
	Text   string   `json:"text"`
	Common bool     `json:"common"`
	Tags   []string `json:"tags"`
}

type JMdictSense struct {
	PartOfSpeech []string      `json:"partOfSpeech"`
	Gloss        []JMdictGloss `json:"gloss"`
}

type JMdictGloss struct {
	Text string `json:"text"`
	Lang string `json:"lang"`
}

// Entry is the row a lexicon attaches to a tokenizer's
// FormatToken.OriginalID: one dictionary sense flattened to the
// fields a reading-assistance UI actually renders.
type Entry struct {
	ID      int64
	Surface string
	Lemma   string
	Reading string
	Glosses []string
	POS     []string
}

// LoadJMdictSimplified reads a jmdict-simplified export, which is
// shipped either as a bare JSON array or wrapped in {"words": [...]}.
func LoadJMdictSimplified(path string) ([]JMdictEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var wrapped struct {
		Words []JMdictEntry `json:"words"`
	}
	dec := json.NewDecoder(f)
	if err := dec.Decode(&wrapped); err == nil && len(wrapped.Words) > 0 {
		return wrapped.Words, nil
	}

	if _, err := f.Seek(0, 0); err != nil {
		return nil, err
	}
	var entries []JMdictEntry
	dec = json.NewDecoder(f)
	if err := dec.Decode(&entries); err != nil {
		return nil, fmt.Errorf("lexicon: parse %s as object or array: %w", path, err)
	}
	return entries, nil
}
