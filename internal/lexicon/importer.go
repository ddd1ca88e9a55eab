package lexicon

import (
	"sort"
	"sync"
)

// Importer indexes a JMdict-Simplified export by surface/kana text so
// tokenizer output can be matched against it in O(1) per token.
type Importer struct {
	mu    sync.RWMutex
	index map[string][]JMdictEntry
}

// NewImporter builds an in-memory index over entries, keyed by every
// kanji and kana spelling they carry.
func NewImporter(entries []JMdictEntry) *Importer {
	idx := make(map[string][]JMdictEntry)
	for _, e := range entries {
		for _, k := range e.Kanji {
			idx[k.Text] = append(idx[k.Text], e)
		}
		for _, k := range e.Kana {
			idx[k.Text] = append(idx[k.Text], e)
		}
	}
	return &Importer{index: idx}
}

// Attach looks up a gloss for one tokenizer output position and, if
// found, returns the Entry keyed by originalID — the FormatToken's
// OriginalID, which is what a caller joins review/lexicon rows on.
func (im *Importer) Attach(originalID uint32, surface, lemma, reading string) (Entry, bool) {
	matches := im.findMatches(surface, lemma, reading)
	if len(matches) == 0 {
		return Entry{}, false
	}
	return entryFrom(originalID, surface, lemma, reading, matches), true
}

func (im *Importer) findMatches(surface, lemma, reading string) []JMdictEntry {
	candidates := make(map[string]JMdictEntry)

	search := func(term string) {
		if term == "" {
			return
		}
		im.mu.RLock()
		entries, ok := im.index[term]
		im.mu.RUnlock()
		if ok {
			for _, e := range entries {
				candidates[e.ID] = e
			}
		}
	}
	search(surface)
	search(lemma)

	var results []JMdictEntry
	for _, entry := range candidates {
		if isMatch(entry, surface, lemma, reading) {
			results = append(results, entry)
		}
	}
	sort.Slice(results, func(i, j int) bool { return results[i].ID < results[j].ID })
	return results
}

func isMatch(entry JMdictEntry, surface, lemma, reading string) bool {
	hasText := false
	for _, k := range entry.Kanji {
		if k.Text == surface || k.Text == lemma {
			hasText = true
			break
		}
	}
	for _, k := range entry.Kana {
		if k.Text == surface || k.Text == lemma {
			hasText = true
			break
		}
	}
	if !hasText {
		return false
	}
	if reading == "" {
		return true
	}

	normalized := toHiragana(reading)
	for _, k := range entry.Kana {
		if toHiragana(k.Text) == normalized {
			return true
		}
	}
	return false
}

func toHiragana(s string) string {
	runes := []rune(s)
	for i, r := range runes {
		if r >= 0x30A1 && r <= 0x30F6 {
			runes[i] = r - 0x60
		}
	}
	return string(runes)
}

func entryFrom(originalID uint32, surface, lemma, reading string, matches []JMdictEntry) Entry {
	var glosses, pos []string
	for _, e := range matches {
		for _, s := range e.Sense {
			for _, g := range s.Gloss {
				glosses = append(glosses, g.Text)
			}
			pos = append(pos, s.PartOfSpeech...)
		}
	}
	return Entry{
		ID:      int64(originalID),
		Surface: surface,
		Lemma:   lemma,
		Reading: reading,
		Glosses: glosses,
		POS:     pos,
	}
}
