package furi

import "golang.org/x/text/unicode/norm"

// normalizeNFC canonically composes its input. Kanjidic reading strings
// and user-supplied spellings sometimes arrive decomposed (combining
// dakuten/handakuten marks split from their base kana); the alignment
// search in Annotate assumes single-rune kana comparisons, so both
// sides are composed before any matching happens.
func normalizeNFC(s string) string {
	return norm.NFC.String(s)
}
