package furi

import "unicode"

const (
	hiraStart = 'ぁ'
	kataStart = 'ァ'

	kataShiftableStart = 'ァ'
	kataShiftableEnd   = 'ヶ'
)

// kataToHira folds a shiftable katakana character down to its
// hiragana equivalent; everything else (including halfwidth kana and
// the long vowel mark) passes through unchanged.
func kataToHira(c rune) rune {
	if c >= kataShiftableStart && c <= kataShiftableEnd {
		return c + hiraStart - kataStart
	}
	return c
}

// isKanji reports whether c is a Han-script ideograph.
func isKanji(c rune) bool { return unicode.Is(unicode.Han, c) }

// allJapanese reports whether every character in s belongs to the set
// of scripts a Japanese spelling can legitimately be made of:
// iteration marks, hiragana, katakana, halfwidth katakana, CJK
// radicals, and Han ideographs. A candidate spelling failing this
// check is rejected before the alignment search ever starts.
func allJapanese(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !isJapaneseChar(r) {
			return false
		}
	}
	return true
}

func isJapaneseChar(r rune) bool {
	switch {
	case r == '○' || r == '◯': // ○ ◯
		return true
	case r >= '々' && r <= '〇': // 々 〆 〇
		return true
	case r == '〻': // 〻
		return true
	case r >= 'ぁ' && r <= 'ゖ': // ぁ-ゖ
		return true
	case r >= 'ゝ' && r <= 'ゞ': // ゝ-ゞ
		return true
	case r >= 'ァ' && r <= 'ヺ': // ァ-ヺ
		return true
	case r == 'ー': // ー
		return true
	case r >= 'ｦ' && r <= 'ﾝ': // ｦ-ﾝ
		return true
	case unicode.Is(unicode.Radical, r):
		return true
	case isKanji(r):
		return true
	default:
		return false
	}
}

// initialHiraEq accepts rendaku voicing (か→が, etc.) in addition to
// every case hiraEq already accepts, since the first character of a
// kanji's reading is where rendaku applies.
func initialHiraEq(x, y rune) (MatchKind, bool) {
	switch [2]rune{x, y} {
	case [2]rune{'か', 'が'}, [2]rune{'き', 'ぎ'}, [2]rune{'く', 'ぐ'}, [2]rune{'け', 'げ'}, [2]rune{'こ', 'ご'},
		[2]rune{'さ', 'ざ'}, [2]rune{'し', 'じ'}, [2]rune{'す', 'ず'}, [2]rune{'せ', 'ぜ'}, [2]rune{'そ', 'ぞ'},
		[2]rune{'た', 'だ'}, [2]rune{'ち', 'ぢ'}, [2]rune{'つ', 'づ'}, [2]rune{'て', 'で'}, [2]rune{'と', 'ど'},
		[2]rune{'は', 'ば'}, [2]rune{'は', 'ぱ'}, [2]rune{'ひ', 'び'}, [2]rune{'ひ', 'ぴ'}, [2]rune{'ふ', 'ぶ'}, [2]rune{'ふ', 'ぷ'},
		[2]rune{'へ', 'べ'}, [2]rune{'へ', 'ぺ'}, [2]rune{'ほ', 'ぼ'}, [2]rune{'ほ', 'ぽ'}:
		return Voicing, true
	default:
		return hiraEq(x, y)
	}
}

// finalHiraEq accepts gemination (つ/く→っ) and verb-stem
// substitutions at the last character of a reading, in addition to
// every case hiraEq already accepts.
func finalHiraEq(x, y rune) (MatchKind, bool) {
	switch [2]rune{x, y} {
	case [2]rune{'つ', 'っ'}, [2]rune{'く', 'っ'}:
		return Glottalisation, true
	case [2]rune{'る', 'り'}, [2]rune{'む', 'み'}, [2]rune{'く', 'き'}, [2]rune{'す', 'し'}, [2]rune{'つ', 'ち'}:
		return Stem, true
	default:
		return hiraEq(x, y)
	}
}

// hiraEq is the base positional equality: wildcard, old-kana
// substitutions, the long vowel mark, the katakana-ga convention, and
// plain identity.
func hiraEq(x, y rune) (MatchKind, bool) {
	switch {
	case x == '*':
		return Wildcard, true
	case (x == 'お' && y == 'を') || (x == 'わ' && y == 'は') || (x == 'は' && y == 'わ'):
		return OldKana, true
	case isSmallVowelOrPlainVowel(x) && y == 'ー':
		return LongVowelMark, true
	case x == 'け' && y == 'が':
		return KatakanaGa, true
	case x == y:
		return Identical, true
	default:
		return 0, false
	}
}

func isSmallVowelOrPlainVowel(r rune) bool {
	switch r {
	case 'ぁ', 'ぃ', 'ぅ', 'ぇ', 'ぉ', 'あ', 'い', 'う', 'え', 'お':
		return true
	default:
		return false
	}
}
