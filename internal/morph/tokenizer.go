package morph

import (
	"fmt"
	"math"
	"unicode/utf8"

	"github.com/evertedsphere/suzuri/internal/dat"
	"github.com/evertedsphere/suzuri/internal/dict"
)

// Dict aggregates everything a tokenization session needs: the
// immutable, memory-mapped dictionary blob, the system and unknown
// double-array tries built from it, and an optional user dictionary.
// A Dict is safe to share by reference across concurrent tokenizer
// sessions; each session should own its own Cache.
type Dict struct {
	Blob    *dict.Blob
	SysTrie *dat.Trie
	UnkTrie *dat.Trie
	User    *UserDict

	sysBloom bloomFilter
	hasBloom bool

	useSpaceStripping      bool
	useUnkForcedProcessing bool
	useUnkGreedyGrouping   bool
	useUnkPrefixGrouping   bool
}

// LoadDict assembles a Dict from a loaded blob and the raw DAT
// base/check arrays the blob parsed out of the system and
// unknown-character dictionary regions. All unknown-token settings
// default on, matching the tokenizer's documented defaults.
func LoadDict(blob *dict.Blob, regions dict.Regions) (*Dict, error) {
	if blob.Mat.LeftEdges() != blob.Sys.LeftContexts || blob.Mat.RightEdges() != blob.Sys.RightContexts {
		return nil, fmt.Errorf("morph: matrix dimensions disagree with system dictionary context counts")
	}
	sysTrie := dat.LoadRaw(regions.SysDAT.Base, regions.SysDAT.Check, 0)
	unkTrie := dat.LoadRaw(regions.UnkDAT.Base, regions.UnkDAT.Check, 0)
	d := &Dict{
		Blob:                   blob,
		SysTrie:                sysTrie,
		UnkTrie:                unkTrie,
		useSpaceStripping:      true,
		useUnkForcedProcessing: true,
		useUnkGreedyGrouping:   true,
		useUnkPrefixGrouping:   true,
	}
	d.BuildSysBloom(sysTrie.Keys())
	return d, nil
}

// BuildSysBloom attaches a Bloom-like filter over every prefix of
// every system-dictionary surface, used to pre-filter the common
// prefix walk on long inputs. Optional: a Dict loaded without calling
// this always falls through to the real trie walk.
func (d *Dict) BuildSysBloom(keys []string) {
	d.sysBloom = buildBloomFilter(keys)
	d.hasBloom = true
}

// SetUserDict attaches (or clears, with nil) a supplementary user
// dictionary layered over the system dictionary.
func (d *Dict) SetUserDict(u *UserDict) { d.User = u }

func (d *Dict) SetSpaceStripping(v bool)      { d.useSpaceStripping = v }
func (d *Dict) SetUnkForcedProcessing(v bool) { d.useUnkForcedProcessing = v }
func (d *Dict) SetUnkGreedyGrouping(v bool)   { d.useUnkGreedyGrouping = v }
func (d *Dict) SetUnkPrefixGrouping(v bool)   { d.useUnkPrefixGrouping = v }

// sysTokensFor resolves a system DAT terminal value to its token-table
// row: one surface maps to exactly one FormatToken row, matching the
// DAT contract "stores the value i for key i" applied directly as a
// token-table index.
func (d *Dict) sysTokensFor(v int) []dict.FormatToken {
	if v < 0 || v >= d.Blob.Sys.Tokens.Len() {
		return nil
	}
	return []dict.FormatToken{d.Blob.Sys.Tokens.At(v)}
}

func (d *Dict) unkTokensForCategoryName(name string) []dict.FormatToken {
	v, ok := d.UnkTrie.ExactMatch(name)
	if !ok || v < 0 || v >= d.Blob.Unk.Tokens.Len() {
		return nil
	}
	return []dict.FormatToken{d.Blob.Unk.Tokens.At(v)}
}

// Tokenize runs a fresh Cache over text. Use TokenizeWithCache in a
// hot loop to reuse allocations.
func (d *Dict) Tokenize(text string) ([]LexerToken, int64, error) {
	return d.TokenizeWithCache(NewCache(), text)
}

// TokenizeWithCache tokenizes text, writing into (and clearing first)
// the given Cache. Returns the emitted tokens in strict ascending
// byte-range order and the total path cost. Fails only when no path
// from BOS to EOS exists.
func (d *Dict) TokenizeWithCache(cache *Cache, text string) ([]LexerToken, int64, error) {
	if text == "" {
		return nil, 0, nil
	}
	cache.reset(len(text))

	if err := d.generateLattice(cache, text); err != nil {
		return nil, 0, err
	}

	cache.bestCost[0] = 0
	cache.hasCost[0] = true

	for end := 1; end <= len(text); end++ {
		best := int64(math.MaxInt64)
		bestPred := -1
		for _, idx := range cache.byEnd[end] {
			n := cache.nodes[idx]
			if !cache.hasCost[n.start] {
				continue
			}
			predRight := uint16(0)
			if p := cache.bestPred[n.start]; p >= 0 {
				predRight = cache.nodes[p].token.RightContext
			}
			edge := int64(d.Blob.Mat.At(predRight, n.token.LeftContext))
			cost := cache.bestCost[n.start] + int64(n.token.Cost) + edge
			if cost < best {
				best = cost
				bestPred = idx
			}
		}
		if bestPred == -1 {
			continue
		}
		cache.bestCost[end] = best
		cache.hasCost[end] = true
		cache.bestPred[end] = bestPred
	}

	if !cache.hasCost[len(text)] {
		return nil, 0, &TokeniseError{Pos: len(text)}
	}

	eosNode := cache.bestPred[len(text)]
	eosRight := cache.nodes[eosNode].token.RightContext
	totalCost := cache.bestCost[len(text)] + int64(d.Blob.Mat.At(eosRight, 0))

	var order []int
	for pos := len(text); pos > 0; {
		idx := cache.bestPred[pos]
		if idx < 0 {
			return nil, 0, &TokeniseError{Pos: pos}
		}
		order = append(order, idx)
		pos = cache.nodes[idx].start
	}
	for i, j := 0, len(order)-1; i < j; i, j = i+1, j-1 {
		order[i], order[j] = order[j], order[i]
	}

	tokens := make([]LexerToken, len(order))
	prevRight := uint16(0)
	for i, idx := range order {
		n := cache.nodes[idx]
		realCost := int64(n.token.Cost) + int64(d.Blob.Mat.At(prevRight, n.token.LeftContext))
		tokens[i] = LexerToken{Rank: i, Start: n.start, End: n.end, Kind: n.kind, Token: n.token, RealCost: realCost}
		prevRight = n.token.RightContext
	}
	return tokens, totalCost, nil
}

// generateLattice walks every UTF-8 character boundary, generating
// candidate nodes per §4.3.1.
func (d *Dict) generateLattice(cache *Cache, text string) error {
	i := 0
	for i < len(text) {
		scanStart := i
		if d.useSpaceStripping {
			for scanStart < len(text) && text[scanStart] == ' ' {
				scanStart++
			}
		}
		if scanStart >= len(text) {
			// trailing spaces with nothing following: no token can
			// "absorb" them, so they become their own unknown token.
			tok := d.fallbackUnkToken()
			cache.addNode(latticeNode{start: i, end: len(text), kind: KindUnknown, token: tok})
			break
		}
		if err := d.generateAt(cache, text, i, scanStart); err != nil {
			return err
		}
		_, w := utf8.DecodeRuneInString(text[scanStart:])
		i = scanStart + w
	}
	return nil
}

func (d *Dict) fallbackUnkToken() dict.FormatToken {
	if toks := d.unkTokensForCategoryName("DEFAULT"); len(toks) > 0 {
		return toks[0]
	}
	return dict.FormatToken{}
}

// generateAt generates every lattice node whose range starts at
// rangeStart (which may include leading stripped spaces) and whose
// dictionary scan begins at scanStart.
func (d *Dict) generateAt(cache *Cache, text string, rangeStart, scanStart int) error {
	foundAny := false

	firstRune, _ := utf8.DecodeRuneInString(text[scanStart:])
	probeHash := newRollingHash().extend(firstRune).value()
	if !d.hasBloom || d.sysBloom.mayContain(probeHash) {
		it := d.SysTrie.CommonPrefixIter(text[scanStart:])
		for {
			relEnd, v, ok := it.Next()
			if !ok {
				break
			}
			for _, tok := range d.sysTokensFor(v) {
				cache.addNode(latticeNode{start: rangeStart, end: scanStart + relEnd, kind: KindNormal, token: tok})
				foundAny = true
			}
		}
	}

	if d.User != nil {
		end := scanStart
		for end < len(text) {
			_, w := utf8.DecodeRuneInString(text[end:])
			end += w
			prefix := text[scanStart:end]
			if toks := d.User.Get(prefix); len(toks) > 0 {
				for _, tok := range toks {
					cache.addNode(latticeNode{start: rangeStart, end: end, kind: KindUser, token: tok})
					foundAny = true
				}
			}
			if !d.User.MayContain(prefix) {
				break
			}
		}
	}

	cat := d.Blob.Char.Category(firstRune)
	forced := d.useUnkForcedProcessing && d.Blob.Char.AlwaysProcess(firstRune)

	if forced || !foundAny {
		if err := d.generateUnknown(cache, text, rangeStart, scanStart, firstRune, cat); err != nil {
			return err
		}
		foundAny = true
	}

	if !foundAny {
		return &TokeniseError{Pos: rangeStart}
	}
	return nil
}

// generateUnknown implements §4.3.3: greedy grouping, prefix grouping,
// and the single-char/DEFAULT fallback chain.
func (d *Dict) generateUnknown(cache *Cache, text string, rangeStart, scanStart int, first rune, cat dict.Category) error {
	n := 1
	pos := scanStart
	_, w := utf8.DecodeRuneInString(text[pos:])
	pos += w
	for pos < len(text) {
		r, rw := utf8.DecodeRuneInString(text[pos:])
		if !d.Blob.Char.HasCategory(r, cat.Number) {
			break
		}
		pos += rw
		n++
	}

	emitted := false

	if d.useUnkGreedyGrouping && cat.GreedyGroup {
		end := scanStart
		for c := 0; c < n; c++ {
			_, rw := utf8.DecodeRuneInString(text[end:])
			end += rw
		}
		for _, tok := range d.unkTokensForCategoryName(cat.Name) {
			cache.addNode(latticeNode{start: rangeStart, end: end, kind: KindUnknown, token: tok})
			emitted = true
		}
	}

	if d.useUnkPrefixGrouping && cat.PrefixGroupLen > 0 {
		maxLen := int(cat.PrefixGroupLen)
		if n < maxLen {
			maxLen = n
		}
		end := scanStart
		for plen := 1; plen <= maxLen; plen++ {
			_, rw := utf8.DecodeRuneInString(text[end:])
			end += rw
			for _, tok := range d.unkTokensForCategoryName(cat.Name) {
				cache.addNode(latticeNode{start: rangeStart, end: end, kind: KindUnknown, token: tok})
				emitted = true
			}
		}
	}

	if !emitted {
		_, rw := utf8.DecodeRuneInString(text[scanStart:])
		end := scanStart + rw
		for _, tok := range d.unkTokensForCategoryName(cat.Name) {
			cache.addNode(latticeNode{start: rangeStart, end: end, kind: KindUnknown, token: tok})
			emitted = true
		}
	}

	if !emitted {
		_, rw := utf8.DecodeRuneInString(text[scanStart:])
		end := scanStart + rw
		for _, tok := range d.unkTokensForCategoryName("DEFAULT") {
			cache.addNode(latticeNode{start: rangeStart, end: end, kind: KindUnknown, token: tok})
			emitted = true
		}
	}

	if !emitted {
		return fmt.Errorf("morph: unknown-character data has no entries for category %q or DEFAULT", cat.Name)
	}
	_ = first
	return nil
}
