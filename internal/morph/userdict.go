package morph

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"

	"github.com/evertedsphere/suzuri/internal/dict"
)

// UserDict is a small in-memory supplementary dictionary layered over
// the system dictionary: a map from surface string to its tokens, a
// set of every strict prefix of those surfaces (to short-circuit
// negative lookups during lattice construction), and the feature
// strings those tokens point into.
type UserDict struct {
	entries        map[string][]dict.FormatToken
	containsLonger map[string]struct{}
	features       []string
}

// NewUserDict returns an empty user dictionary.
func NewUserDict() *UserDict {
	return &UserDict{
		entries:        make(map[string][]dict.FormatToken),
		containsLonger: make(map[string]struct{}),
	}
}

func (u *UserDict) addEntry(surface string, tok dict.FormatToken) {
	u.entries[surface] = append(u.entries[surface], tok)
	runes := []rune(surface)
	for j := 1; j < len(runes); j++ {
		u.containsLonger[string(runes[:j])] = struct{}{}
	}
}

// MayContain reports whether s is a surface string in the dictionary
// or a strict prefix of one — i.e. whether extending the lattice scan
// past s could still find a user-dictionary match.
func (u *UserDict) MayContain(s string) bool {
	if _, ok := u.entries[s]; ok {
		return true
	}
	_, ok := u.containsLonger[s]
	return ok
}

// Get returns the tokens registered under surface s.
func (u *UserDict) Get(s string) []dict.FormatToken { return u.entries[s] }

// FeatureGet returns the feature string at offset in the user
// dictionary's feature table.
func (u *UserDict) FeatureGet(offset uint32) string {
	if int(offset) >= len(u.features) {
		return ""
	}
	return u.features[offset]
}

// LoadUserDictCSV parses a user dictionary in the five-field CSV
// format: surface, left_context, right_context, cost, feature_string.
// The feature string may itself contain commas; it is everything
// after the fourth comma. Empty lines are skipped; malformed lines
// are logged and skipped.
func LoadUserDictCSV(r io.Reader) (*UserDict, error) {
	u := NewUserDict()
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		parts := strings.SplitN(line, ",", 5)
		if len(parts) != 5 {
			log.Printf("morph: user dictionary line %d: expected 5 fields, got %d; skipping", lineNo, len(parts))
			continue
		}
		surface := parts[0]
		left, err := strconv.ParseUint(parts[1], 10, 16)
		if err != nil {
			log.Printf("morph: user dictionary line %d: bad left_context %q: %v; skipping", lineNo, parts[1], err)
			continue
		}
		right, err := strconv.ParseUint(parts[2], 10, 16)
		if err != nil {
			log.Printf("morph: user dictionary line %d: bad right_context %q: %v; skipping", lineNo, parts[2], err)
			continue
		}
		cost, err := strconv.ParseInt(parts[3], 10, 16)
		if err != nil {
			log.Printf("morph: user dictionary line %d: bad cost %q: %v; skipping", lineNo, parts[3], err)
			continue
		}
		feature := parts[4]
		featOff := uint32(len(u.features))
		u.features = append(u.features, feature)
		u.addEntry(surface, dict.FormatToken{
			LeftContext:   uint16(left),
			RightContext:  uint16(right),
			Cost:          int16(cost),
			OriginalID:    0,
			FeatureOffset: featOff,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("morph: reading user dictionary: %w", err)
	}
	return u, nil
}
