// Package dat implements a double-array trie: a compact prefix index
// encoded in two parallel integer arrays, base and check, supporting
// O(1)-per-character transitions.
package dat

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Trie is an immutable (aside from Insert/Delete) double-array trie
// mapping keys to non-negative integer values.
type Trie struct {
	base            []int32
	check           []int32
	used            []bool
	longestWordLen  int
}

// terminalCode marks end-of-key; every other code is a Unicode scalar
// value offset by +1 so that 0 is never an ordinary character code.
const terminalCode = int32(0)

func codeForRune(r rune) int32 { return int32(r) + 1 }

func keyCodes(key string) []int32 {
	codes := make([]int32, 0, len(key))
	for _, r := range key {
		codes = append(codes, codeForRune(r))
	}
	return codes
}

// buildNode describes a group of keys sharing a common prefix of the
// given depth, distinguished by the character code at that depth.
type buildNode struct {
	code        int32
	depth       int
	left, right int
}

type builder struct {
	base, check []int32
	used        []bool
	size        int
	keyCodes    [][]int32
	nextCheckPt int
	progress    int
	longest     int
}

func newBuilder(keys []string) *builder {
	b := &builder{}
	b.keyCodes = make([][]int32, len(keys))
	for i, k := range keys {
		c := keyCodes(k)
		b.keyCodes[i] = c
		if len(c) > b.longest {
			b.longest = len(c)
		}
	}
	b.resize(256)
	return b
}

func (b *builder) resize(newSize int) {
	if newSize <= len(b.base) {
		return
	}
	base := make([]int32, newSize)
	check := make([]int32, newSize)
	used := make([]bool, newSize)
	copy(base, b.base)
	copy(check, b.check)
	copy(used, b.used)
	b.base, b.check, b.used = base, check, used
}

// codeAt returns the code for keyCodes[i] at the given depth, or the
// terminal code if the key is exhausted.
func (b *builder) codeAt(i, depth int) int32 {
	codes := b.keyCodes[i]
	if depth < len(codes) {
		return codes[depth]
	}
	return terminalCode
}

// fetch groups the keys in parent's range by the code at parent.depth,
// returning one buildNode per distinct code in the order encountered
// (keys are sorted, so codes are encountered in ascending order).
func (b *builder) fetch(parent buildNode) ([]buildNode, error) {
	var result []buildNode
	prev := int32(-1)
	for i := parent.left; i < parent.right; i++ {
		code := b.codeAt(i, parent.depth)
		if code < terminalCode {
			return nil, fmt.Errorf("dat: negative code at key %d depth %d", i, parent.depth)
		}
		if code == terminalCode && i != parent.left {
			return nil, fmt.Errorf("dat: duplicate key at index %d", i)
		}
		if i == parent.left || code != prev {
			if len(result) > 0 {
				result[len(result)-1].right = i
			}
			result = append(result, buildNode{code: code, depth: parent.depth + 1, left: i})
			prev = code
		}
	}
	if len(result) > 0 {
		result[len(result)-1].right = parent.right
	}
	return result, nil
}

// insert finds a begin offset accommodating every sibling in siblings
// and recursively lays out their subtries, returning begin.
func (b *builder) insert(siblings []buildNode) (int32, error) {
	pos := int(siblings[0].code)
	if pos < b.nextCheckPt {
		pos = b.nextCheckPt
	}
	if pos > 0 {
		pos--
	}
	nonzeroNum := 0
	first := false

	if len(b.base) <= pos {
		b.resize(pos + 1)
	}

	var begin int
	for {
		pos++
		if len(b.base) <= pos {
			b.resize(pos + 1)
		}
		if b.check[pos] != 0 {
			nonzeroNum++
			continue
		}
		if !first {
			b.nextCheckPt = pos
			first = true
		}

		begin = pos - int(siblings[0].code)
		last := siblings[len(siblings)-1]
		need := begin + int(last.code)
		if len(b.base) <= need {
			factor := 1.05
			if b.progress > 0 {
				if r := float64(len(b.keyCodes)) / float64(b.progress+1); r > factor {
					factor = r
				}
			}
			b.resize(int(float64(need+1) * factor))
		}

		if begin < len(b.used) && b.used[begin] {
			continue
		}

		ok := true
		for i := 1; i < len(siblings); i++ {
			if b.check[begin+int(siblings[i].code)] != 0 {
				ok = false
				break
			}
		}
		if ok {
			break
		}
	}

	if pos-b.nextCheckPt+1 > 0 && float64(nonzeroNum)/float64(pos-b.nextCheckPt+1) >= 0.95 {
		b.nextCheckPt = pos
	}

	b.used[begin] = true
	if need := begin + int(siblings[len(siblings)-1].code) + 1; need > b.size {
		b.size = need
	}
	for _, s := range siblings {
		b.check[begin+int(s.code)] = int32(begin)
	}

	for _, s := range siblings {
		children, err := b.fetch(s)
		if err != nil {
			return 0, err
		}
		slot := begin + int(s.code)
		if len(children) == 0 {
			b.base[slot] = -(int32(s.left)) - 1
			continue
		}
		b.progress++
		h, err := b.insert(children)
		if err != nil {
			return 0, err
		}
		b.base[slot] = h
	}

	return int32(begin), nil
}

func (b *builder) trie() *Trie {
	base := make([]int32, b.size)
	check := make([]int32, b.size)
	used := make([]bool, b.size)
	copy(base, b.base[:b.size])
	copy(check, b.check[:b.size])
	copy(used, b.used[:b.size])
	return &Trie{base: base, check: check, used: used, longestWordLen: b.longest}
}

// Build constructs a trie from a sorted, deduplicated list of keys.
// The value stored for keys[i] is i. Behavior is undefined if keys are
// not sorted and unique.
func Build(keys []string) (*Trie, error) {
	b := newBuilder(keys)
	root := buildNode{code: 0, depth: 0, left: 0, right: len(keys)}
	children, err := b.fetch(root)
	if err != nil {
		return nil, err
	}
	if len(children) == 0 {
		return b.trie(), nil
	}
	if _, err := b.insert(children); err != nil {
		return nil, err
	}
	return b.trie(), nil
}

// ExactMatch returns the stored value for key, if present.
func (t *Trie) ExactMatch(key string) (int, bool) {
	state := 0
	for _, r := range key {
		code := codeForRune(r)
		next := int(t.base[state]) + int(code)
		if next < 0 || next >= len(t.check) || t.check[next] != int32(state) {
			return 0, false
		}
		state = next
	}
	return t.terminalValue(state)
}

func (t *Trie) terminalValue(state int) (int, bool) {
	next := int(t.base[state])
	if next < 0 || next >= len(t.check) || t.check[next] != int32(state) {
		return 0, false
	}
	if t.base[next] >= 0 {
		return 0, false
	}
	return int(-t.base[next] - 1), true
}

// PrefixIter yields every key in the trie that is a prefix of the
// text it was constructed over, in order of increasing length.
type PrefixIter struct {
	t     *Trie
	text  string
	state int
	pos   int // byte offset into text of the next rune to consume
	done  bool
}

// CommonPrefixIter returns a fresh, restartable iterator over text.
func (t *Trie) CommonPrefixIter(text string) *PrefixIter {
	return &PrefixIter{t: t, text: text, state: 0}
}

// SizeHint returns an upper bound on the number of remaining results.
func (p *PrefixIter) SizeHint() (int, int) { return 0, p.t.longestWordLen }

// Next advances the iterator, returning the byte offset just past the
// matched key and its stored value. ok is false once exhausted.
func (p *PrefixIter) Next() (byteEnd int, value int, ok bool) {
	if p.done {
		return 0, 0, false
	}
	for p.pos < len(p.text) {
		r, size := decodeRune(p.text[p.pos:])
		code := codeForRune(r)
		next := int(p.t.base[p.state]) + int(code)
		if next < 0 || next >= len(p.t.check) || p.t.check[next] != int32(p.state) {
			p.done = true
			return 0, 0, false
		}
		p.state = next
		p.pos += size
		if v, isTerm := p.t.terminalValue(p.state); isTerm {
			return p.pos, v, true
		}
	}
	p.done = true
	return 0, 0, false
}

func decodeRune(s string) (rune, int) {
	for i, r := range s {
		_ = i
		return r, len(string(r))
	}
	return 0, 0
}

// findFreeBegin locates a begin offset such that begin+code is free
// (check == 0) for every code in codes, growing the arrays if needed.
func (t *Trie) findFreeBegin(codes []int32) int {
	pos := 0
	if len(codes) > 0 && int(codes[0]) > pos {
		pos = int(codes[0])
	}
	for {
		pos++
		for len(t.base) <= pos+int(maxCode(codes)) {
			t.grow(len(t.base)*2 + 1)
		}
		begin := pos - int(codes[0])
		if begin < 0 {
			continue
		}
		for begin >= len(t.used) {
			t.grow(len(t.base)*2 + 1)
		}
		if t.used[begin] {
			continue
		}
		ok := true
		for _, c := range codes {
			slot := begin + int(c)
			if slot >= len(t.check) {
				t.grow(slot + 1)
			}
			if t.check[slot] != 0 {
				ok = false
				break
			}
		}
		if ok {
			return begin
		}
	}
}

func maxCode(codes []int32) int32 {
	m := codes[0]
	for _, c := range codes {
		if c > m {
			m = c
		}
	}
	return m
}

func (t *Trie) grow(newSize int) {
	if newSize <= len(t.base) {
		return
	}
	base := make([]int32, newSize)
	check := make([]int32, newSize)
	used := make([]bool, newSize)
	copy(base, t.base)
	copy(check, t.check)
	copy(used, t.used)
	t.base, t.check, t.used = base, check, used
}

// childCodes returns the codes of every existing transition out of
// state, by scanning check for cells pointing back to state. Used by
// Insert to relocate a sibling group when a new code conflicts.
func (t *Trie) childCodes(state int) []int32 {
	begin := int(t.base[state])
	var codes []int32
	if begin == 0 && state != 0 {
		return codes
	}
	for code := int32(0); int(code) < len(t.check)-begin; code++ {
		slot := begin + int(code)
		if slot < 0 || slot >= len(t.check) {
			continue
		}
		if t.check[slot] == int32(state) {
			codes = append(codes, code)
		}
	}
	return codes
}

// relocate moves the sibling set rooted at state's current begin to a
// fresh begin able to additionally hold newCode, fixing up any
// grandchildren's back-pointers.
func (t *Trie) relocate(state int, newCode int32) int {
	oldBegin := int(t.base[state])
	existing := t.childCodes(state)
	allCodes := append(append([]int32{}, existing...), newCode)
	newBegin := t.findFreeBegin(allCodes)

	for _, c := range existing {
		oldPos := oldBegin + int(c)
		newPos := newBegin + int(c)
		for len(t.check) <= newPos || len(t.base) <= newPos {
			t.grow(len(t.base)*2 + 1)
		}
		t.check[newPos] = int32(state)
		t.base[newPos] = t.base[oldPos]
		// fix grandchildren pointing at oldPos
		for y := range t.check {
			if t.check[y] == int32(oldPos) {
				t.check[y] = int32(newPos)
			}
		}
		t.check[oldPos] = 0
		t.base[oldPos] = 0
	}
	if oldBegin >= 0 && oldBegin < len(t.used) {
		t.used[oldBegin] = len(existing) > 0 && oldBegin == newBegin
	}

	t.base[state] = int32(newBegin)
	for len(t.used) <= newBegin {
		t.grow(len(t.base)*2 + 1)
	}
	t.used[newBegin] = true
	return newBegin
}

// ensureTransition makes sure state has an outgoing transition on
// code, allocating or relocating as necessary, and returns the slot.
func (t *Trie) ensureTransition(state int, code int32) int {
	begin := int(t.base[state])
	if begin != 0 || state == 0 {
		slot := begin + int(code)
		if slot >= 0 && slot < len(t.check) && t.check[slot] == int32(state) {
			return slot
		}
		if begin != 0 {
			newBegin := t.relocate(state, code)
			return newBegin + int(code)
		}
	}
	// state has no children yet (begin == 0 and state != 0, the zero
	// value meaning "unset" since a real begin of exactly 0 only ever
	// applies to the root).
	newBegin := t.findFreeBegin([]int32{code})
	for len(t.base) <= newBegin+int(code) {
		t.grow(len(t.base)*2 + 1)
	}
	t.base[state] = int32(newBegin)
	t.used[newBegin] = true
	t.check[newBegin+int(code)] = int32(state)
	return newBegin + int(code)
}

// Insert adds key with the given value, relocating conflicting
// subtrees as needed. Safe to call on a built, non-empty trie.
func (t *Trie) Insert(key string, value int) error {
	if value < 0 {
		return fmt.Errorf("dat: value must be non-negative")
	}
	state := 0
	runeCount := 0
	for _, r := range key {
		runeCount++
		code := codeForRune(r)
		slot := t.ensureTransition(state, code)
		next := int(t.base[slot])
		if next == 0 && t.check[slot] == int32(state) && slot != 0 {
			// leaf placeholder left by a previous Build/Insert call
			// (terminal marker stored directly in base, not via a
			// further transition); treat as fresh internal state.
		}
		state = slot
	}
	if runeCount > t.longestWordLen {
		t.longestWordLen = runeCount
	}
	termSlot := t.ensureTransition(state, terminalCode)
	t.base[termSlot] = -(int32(value)) - 1
	return nil
}

// Delete clears key's terminal marker. Interior structure (shared by
// other keys) is not reclaimed.
func (t *Trie) Delete(key string) error {
	state := 0
	for _, r := range key {
		code := codeForRune(r)
		next := int(t.base[state]) + int(code)
		if next < 0 || next >= len(t.check) || t.check[next] != int32(state) {
			return fmt.Errorf("dat: key not found")
		}
		state = next
	}
	termSlot := int(t.base[state])
	if termSlot <= 0 && state != 0 {
		return fmt.Errorf("dat: key not found")
	}
	if termSlot < 0 || termSlot >= len(t.check) || t.check[termSlot] != int32(state) || t.base[termSlot] >= 0 {
		return fmt.Errorf("dat: key not found")
	}
	t.base[termSlot] = 0
	return nil
}

// wireHeader is the fixed-size prefix of the save format.
type wireHeader struct {
	Count          uint32
	LongestWordLen uint32
}

// Save writes a compact binary serialization of the trie.
func (t *Trie) Save(w io.Writer) error {
	hdr := wireHeader{Count: uint32(len(t.base)), LongestWordLen: uint32(t.longestWordLen)}
	if err := binary.Write(w, binary.LittleEndian, hdr); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, t.base); err != nil {
		return err
	}
	return binary.Write(w, binary.LittleEndian, t.check)
}

// Load reads a trie previously written by Save.
func Load(r io.Reader) (*Trie, error) {
	var hdr wireHeader
	if err := binary.Read(r, binary.LittleEndian, &hdr); err != nil {
		return nil, fmt.Errorf("dat: read header: %w", err)
	}
	base := make([]int32, hdr.Count)
	check := make([]int32, hdr.Count)
	if err := binary.Read(r, binary.LittleEndian, base); err != nil {
		return nil, fmt.Errorf("dat: read base: %w", err)
	}
	if err := binary.Read(r, binary.LittleEndian, check); err != nil {
		return nil, fmt.Errorf("dat: read check: %w", err)
	}
	used := make([]bool, hdr.Count)
	for i, c := range check {
		if c != 0 {
			used[i] = true
		}
	}
	return &Trie{base: base, check: check, used: used, longestWordLen: int(hdr.LongestWordLen)}, nil
}

// LongestWordLen returns the rune-length of the longest key ever built
// or inserted.
func (t *Trie) LongestWordLen() int { return t.longestWordLen }

// Arrays returns copies of the trie's underlying base and check
// arrays, e.g. for a caller that wants to embed them in its own
// on-disk format rather than using Save's wire format.
func (t *Trie) Arrays() (base, check []int32) {
	base = make([]int32, len(t.base))
	check = make([]int32, len(t.check))
	copy(base, t.base)
	copy(check, t.check)
	return base, check
}

// Keys enumerates every key stored in the trie by walking the
// base/check transition graph from the root, using the same
// check-array scan childCodes relies on for Insert/Delete. Intended
// for one-time startup work (e.g. seeding a Bloom filter over a
// loaded trie's surfaces), not a hot path.
func (t *Trie) Keys() []string {
	var keys []string
	var walk func(state int, prefix []rune)
	walk = func(state int, prefix []rune) {
		for _, code := range t.childCodes(state) {
			if code == terminalCode {
				keys = append(keys, string(prefix))
				continue
			}
			next := int(t.base[state]) + int(code)
			walk(next, append(prefix, code-1))
		}
	}
	walk(0, nil)
	return keys
}

// LoadRaw builds a Trie directly from existing base/check arrays
// (e.g. ones parsed from a dictionary blob's DAT region by another
// package), rather than via Build or the Save/Load wire format.
func LoadRaw(base, check []int32, longestWordLen int) *Trie {
	used := make([]bool, len(check))
	for i, c := range check {
		if c != 0 {
			used[i] = true
		}
	}
	return &Trie{base: base, check: check, used: used, longestWordLen: longestWordLen}
}
