// Package furi aligns a kanji spelling against its kana reading,
// producing a tagged span list suitable for rendering furigana. The
// search is a bounded, non-recursive depth-first walk over
// (orthography index, pronunciation index) pairs.
package furi

import (
	"sort"
	"strings"
)

// MatchKind records why a candidate kana was accepted as a match for
// a dictionary reading character at a given position.
type MatchKind int

const (
	Identical MatchKind = iota
	Voicing
	Glottalisation
	Stem
	Wildcard
	OldKana
	LongVowelMark
	KatakanaGa
)

func (m MatchKind) String() string {
	switch m {
	case Identical:
		return "="
	case Voicing:
		return "voicing"
	case Glottalisation:
		return "glottalisation"
	case Stem:
		return "stem"
	case Wildcard:
		return "*"
	case OldKana:
		return "old-kana"
	case LongVowelMark:
		return "long-vowel"
	case KatakanaGa:
		return "ga"
	default:
		return "?"
	}
}

// SpanKind discriminates the two FuriSpan cases.
type SpanKind int

const (
	KanaSpan SpanKind = iota
	KanjiSpan
)

// FuriSpan is one aligned unit of the spelling: either a bare kana
// character carrying the pronunciation kana it was matched against,
// or a kanji carrying the reading slice it consumed and the
// dictionary reading it matched.
type FuriSpan struct {
	Kind SpanKind

	Kana      rune
	PronKana  rune
	KanaMatch MatchKind

	Kanji      rune
	Yomi       string
	DictYomi   string
	MatchKinds []MatchKind
}

func newKanaSpan(kana, pronKana rune, match MatchKind) FuriSpan {
	return FuriSpan{Kind: KanaSpan, Kana: kana, PronKana: pronKana, KanaMatch: match}
}

func newKanjiSpan(kanji rune, yomi, dictYomi string, matches []MatchKind) FuriSpan {
	return FuriSpan{Kind: KanjiSpan, Kanji: kanji, Yomi: yomi, DictYomi: dictYomi, MatchKinds: matches}
}

// literal returns the character actually written at this span's
// position in the spelling (the iteration mark itself, not the
// character it stands in for).
func (s FuriSpan) literal() rune {
	if s.Kind == KanaSpan {
		return s.Kana
	}
	return s.Kanji
}

// pronounced returns the characters this span contributes to the
// reconstructed reading.
func (s FuriSpan) pronounced() string {
	if s.Kind == KanaSpan {
		return string(s.PronKana)
	}
	return s.Yomi
}

// RubyKind discriminates the four Ruby cases.
type RubyKind int

const (
	Valid RubyKind = iota
	Invalid
	Unknown
	Inconsistent
)

// Ruby is the result of aligning a spelling/reading pair: a span list
// on success, or one of three failure tags. Inconsistent wraps a
// would-be Valid whose reconstructed text disagreed with the input —
// a bug signal, never expected from a correct candidate search.
type Ruby struct {
	Kind  RubyKind
	Spans []FuriSpan

	Text    string
	Reading string
}

func validRuby(spans []FuriSpan) Ruby   { return Ruby{Kind: Valid, Spans: spans} }
func invalidRuby(text, reading string) Ruby { return Ruby{Kind: Invalid, Text: text, Reading: reading} }
func unknownRuby(text, reading string) Ruby { return Ruby{Kind: Unknown, Text: text, Reading: reading} }
func inconsistentRuby(spans []FuriSpan) Ruby {
	return Ruby{Kind: Inconsistent, Spans: spans}
}

// KanjiDic maps a kanji character to its dictionary reading strings,
// which may carry '-' affix markers and '.' okurigana boundaries.
type KanjiDic map[rune][]string

// annotationState is one node of the DFS: the position it was
// reached at, plus the span that was pushed to reach it (absent for
// the synthetic start state).
type annotationState struct {
	orthIx, pronIx int
	hasNode        bool
	node           FuriSpan
}

// Annotate aligns spelling against reading using kd for kanji
// candidate readings.
func Annotate(spelling, reading string, kd KanjiDic) Ruby {
	spelling = normalizeNFC(spelling)
	reading = normalizeNFC(reading)

	if !allJapanese(spelling) {
		return invalidRuby(spelling, reading)
	}

	orth := []rune(spelling)
	pron := []rune(reading)

	var history []FuriSpan
	var visited []int
	frontier := []annotationState{{orthIx: 0, pronIx: 0}}

	var valid []FuriSpan
	found := false

	for len(frontier) > 0 {
		state := frontier[len(frontier)-1]
		frontier = frontier[:len(frontier)-1]

		orthIx, pronIx := state.orthIx, state.pronIx
		if state.hasNode {
			if p := indexOf(visited, orthIx); p >= 0 {
				visited = visited[:p]
				history = history[:p]
			}
			history = append(history, state.node)
			visited = append(visited, orthIx)
		}

		orthEnd := orthIx == len(orth)
		pronEnd := pronIx == len(pron)

		if orthEnd && pronEnd {
			valid = append([]FuriSpan(nil), history...)
			found = true
			break
		}

		if orthEnd != pronEnd {
			// exactly one side exhausted: dead end, backtrack
			if len(history) > 0 {
				history = history[:len(history)-1]
				visited = visited[:len(visited)-1]
			}
			continue
		}

		orthChar := orth[orthIx]
		effChar := orthChar
		if orthChar == '々' || orthChar == 'ゝ' {
			if orthIx == 0 {
				return invalidRuby(spelling, reading)
			}
			effChar = orth[orthIx-1]
		}

		var next []annotationState

		if isKanji(effChar) {
			// Push in reverse preference order: since frontier is a
			// stack popped from the end, the most preferred candidate
			// (pushed last) is tried first.
			cands := candidateReadings(kd[effChar], len(pron)-pronIx)
			for i := len(cands) - 1; i >= 0; i-- {
				cand := cands[i]
				k := len([]rune(cand))
				if k == 0 || k > len(pron)-pronIx {
					continue
				}
				candRunes := pron[pronIx : pronIx+k]
				if isSmallKana(candRunes[0]) {
					continue
				}
				matches, ok := matchReading([]rune(cand), candRunes)
				if !ok {
					continue
				}
				yomi := string(candRunes)
				node := newKanjiSpan(orthChar, yomi, cand, matches)
				next = append(next, annotationState{
					orthIx: orthIx + 1, pronIx: pronIx + k, hasNode: true, node: node,
				})
			}
		} else {
			orthKana := kataToHira(effChar)
			pronKana := kataToHira(pron[pronIx])
			if m, ok := hiraEq(orthKana, pronKana); ok {
				node := newKanaSpan(orthChar, pron[pronIx], m)
				next = append(next, annotationState{
					orthIx: orthIx + 1, pronIx: pronIx + 1, hasNode: true, node: node,
				})
			}
		}

		if len(next) == 0 {
			if len(history) > 0 {
				history = history[:len(history)-1]
				visited = visited[:len(visited)-1]
			}
			continue
		}

		frontier = append(frontier, next...)
		frontier = dedupeFrontier(frontier)
	}

	if !found {
		return unknownRuby(spelling, reading)
	}

	var rebuilt strings.Builder
	for _, s := range valid {
		rebuilt.WriteRune(s.literal())
	}
	if rebuilt.String() != spelling {
		return inconsistentRuby(valid)
	}
	return validRuby(valid)
}

func indexOf(xs []int, v int) int {
	for i, x := range xs {
		if x == v {
			return i
		}
	}
	return -1
}

// dedupeFrontier drops duplicate (orthIx, pronIx) targets, keeping
// the first occurrence, matching the reference aligner's stable
// frontier collapse.
func dedupeFrontier(frontier []annotationState) []annotationState {
	seen := make(map[[2]int]struct{}, len(frontier))
	out := frontier[:0:0]
	for _, s := range frontier {
		key := [2]int{s.orthIx, s.pronIx}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, s)
	}
	return out
}

// candidateReadings builds the ordered, deduplicated candidate list
// for one kanji's dictionary readings: cleaned readings (affix
// markers stripped), verb-stem and okurigana-suffix variants, then
// wildcards of every length up to pronRemaining. Longer known
// readings sort before shorter ones; wildcards sort last.
func candidateReadings(raw []string, pronRemaining int) []string {
	var readings, extra []string

	for _, r := range raw {
		clean := stripAffixMarkers(r)
		if clean == "" {
			continue
		}
		cleanRunes := []rune(clean)
		if cleanRunes[len(cleanRunes)-1] == 'る' {
			var stem []rune
			for _, c := range cleanRunes {
				if c == 'る' {
					break
				}
				stem = append(stem, c)
			}
			if len(stem) > 0 {
				extra = append(extra, string(stem))
			}
		}
		readings = append(readings, clean)

		if strings.ContainsRune(r, '.') {
			rRunes := []rune(r)
			dotIx := -1
			for i, c := range rRunes {
				if c == '.' {
					dotIx = i
					break
				}
			}
			var cur []rune
			for i, c := range rRunes {
				if c == '.' {
					continue
				}
				if c == '-' {
					continue
				}
				cur = append(cur, c)
				if i >= dotIx {
					extra = append(extra, string(cur))
				}
			}
		}
	}

	sort.SliceStable(readings, func(i, j int) bool {
		return len([]rune(readings[i])) > len([]rune(readings[j]))
	})
	sort.SliceStable(extra, func(i, j int) bool {
		return len([]rune(extra[i])) > len([]rune(extra[j]))
	})
	readings = append(readings, extra...)

	for n := 1; n <= pronRemaining; n++ {
		readings = append(readings, strings.Repeat("*", n))
	}

	return stableDedupe(readings)
}

func stripAffixMarkers(r string) string {
	var b strings.Builder
	for _, c := range r {
		if c == '-' || c == '.' {
			continue
		}
		b.WriteRune(c)
	}
	return b.String()
}

func stableDedupe(xs []string) []string {
	seen := make(map[string]struct{}, len(xs))
	out := make([]string, 0, len(xs))
	for _, x := range xs {
		if _, ok := seen[x]; ok {
			continue
		}
		seen[x] = struct{}{}
		out = append(out, x)
	}
	return out
}

func isSmallKana(c rune) bool {
	switch c {
	case 'っ', 'ぁ', 'ぃ', 'ぅ', 'ぇ', 'ぉ', 'ゃ', 'ゅ', 'ょ':
		return true
	default:
		return false
	}
}

// matchReading compares a dictionary reading (already cleaned of
// affix markers) against a same-length candidate reading slice,
// position by position, using initial/final/interior equality rules.
func matchReading(dictReading, candidate []rune) ([]MatchKind, bool) {
	k := len(dictReading)
	matches := make([]MatchKind, k)
	for i := 0; i < k; i++ {
		cand := kataToHira(candidate[i])
		var m MatchKind
		var ok bool
		switch {
		case i == 0:
			m, ok = initialHiraEq(dictReading[i], cand)
		case i == k-1:
			m, ok = finalHiraEq(dictReading[i], cand)
		default:
			m, ok = hiraEq(dictReading[i], cand)
		}
		if !ok {
			return nil, false
		}
		matches[i] = m
	}
	return matches, true
}
