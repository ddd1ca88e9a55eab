package dict

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// SourceEntry is one parsed row of a legacy MeCab CSV source dictionary
// (ipadic layout): surface, left/right context ids, cost, then a
// variable tail of feature fields joined back into a single
// comma-separated feature string at blob-build time.
type SourceEntry struct {
	Surface      string
	LeftContext  uint16
	RightContext uint16
	Cost         int16
	Features     []string
}

// ParseCSVLine parses one ipadic-layout CSV record:
// surface,left_id,right_id,cost,feature...
func ParseCSVLine(fields []string) (SourceEntry, error) {
	if len(fields) < 4 {
		return SourceEntry{}, fmt.Errorf("dict: csv record has %d fields, want at least 4", len(fields))
	}
	left, err := strconv.ParseUint(fields[1], 10, 16)
	if err != nil {
		return SourceEntry{}, fmt.Errorf("dict: parsing left context id: %w", err)
	}
	right, err := strconv.ParseUint(fields[2], 10, 16)
	if err != nil {
		return SourceEntry{}, fmt.Errorf("dict: parsing right context id: %w", err)
	}
	cost, err := strconv.ParseInt(fields[3], 10, 16)
	if err != nil {
		return SourceEntry{}, fmt.Errorf("dict: parsing cost: %w", err)
	}
	return SourceEntry{
		Surface:      fields[0],
		LeftContext:  uint16(left),
		RightContext: uint16(right),
		Cost:         int16(cost),
		Features:     append([]string(nil), fields[4:]...),
	}, nil
}

// LoadCSVDict reads every record from a legacy MeCab CSV source
// dictionary. shiftJIS selects Shift_JIS decoding per line (ipadic's
// historical encoding); set it false for UTF-8 sources (unidic and
// most modern redistributions).
func LoadCSVDict(r io.Reader, shiftJIS bool) ([]SourceEntry, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var entries []SourceEntry
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Bytes()
		if len(strings.TrimSpace(string(line))) == 0 {
			continue
		}

		var decoded string
		if shiftJIS {
			s, err := DecodeShiftJIS(line)
			if err != nil {
				return nil, fmt.Errorf("dict: line %d: decoding shift_jis: %w", lineNo, err)
			}
			decoded = s
		} else {
			decoded = string(line)
		}

		rows, err := csv.NewReader(strings.NewReader(decoded)).ReadAll()
		if err != nil {
			return nil, fmt.Errorf("dict: line %d: parsing csv: %w", lineNo, err)
		}
		for _, fields := range rows {
			entry, err := ParseCSVLine(fields)
			if err != nil {
				return nil, fmt.Errorf("dict: line %d: %w", lineNo, err)
			}
			entries = append(entries, entry)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("dict: scanning csv source: %w", err)
	}
	return entries, nil
}
