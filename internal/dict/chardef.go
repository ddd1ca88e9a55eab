package dict

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ParseCharDef reads the text-format char.def MeCab distributions
// ship: a block of category definitions ("NAME INVOKE GROUP LENGTH"),
// followed by codepoint-range assignments ("0xXXXX [0xYYYY] NAME...").
// DEFAULT must be the first category defined, per the format's
// category-0 convention. It returns category names (indexed by
// category number, ready for WriteCharacterTable) and one packed
// bitfield per codepoint 0..0xFFFF (ready as WriteCharacterTable's
// bitfields argument).
func ParseCharDef(r io.Reader) (names []string, bitfields []uint32, err error) {
	type categoryDef struct {
		invoke, group bool
		length        uint8
	}
	catIndex := map[string]uint8{}
	var cats []categoryDef
	bitfields = make([]uint32, numCodepoints)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)

		if !strings.HasPrefix(fields[0], "0x") && !strings.HasPrefix(fields[0], "0X") {
			// Category definition: NAME INVOKE GROUP LENGTH.
			if len(fields) < 4 {
				return nil, nil, fmt.Errorf("dict: char.def: line %d: malformed category %q", lineNo, line)
			}
			invoke, err := strconv.ParseUint(fields[1], 10, 8)
			if err != nil {
				return nil, nil, fmt.Errorf("dict: char.def: line %d: invoke flag: %w", lineNo, err)
			}
			group, err := strconv.ParseUint(fields[2], 10, 8)
			if err != nil {
				return nil, nil, fmt.Errorf("dict: char.def: line %d: group flag: %w", lineNo, err)
			}
			length, err := strconv.ParseUint(fields[3], 10, 8)
			if err != nil {
				return nil, nil, fmt.Errorf("dict: char.def: line %d: prefix length: %w", lineNo, err)
			}
			if _, exists := catIndex[fields[0]]; exists {
				return nil, nil, fmt.Errorf("dict: char.def: line %d: duplicate category %q", lineNo, fields[0])
			}
			catIndex[fields[0]] = uint8(len(cats))
			names = append(names, fields[0])
			cats = append(cats, categoryDef{invoke: invoke != 0, group: group != 0, length: uint8(length)})
			continue
		}

		// Codepoint assignment: 0xSTART [0xEND] CATEGORY...
		if len(fields) < 2 {
			return nil, nil, fmt.Errorf("dict: char.def: line %d: malformed codepoint row %q", lineNo, line)
		}
		start, err := strconv.ParseUint(strings.TrimPrefix(fields[0], "0x"), 16, 32)
		if err != nil {
			return nil, nil, fmt.Errorf("dict: char.def: line %d: start codepoint: %w", lineNo, err)
		}

		rest := fields[1:]
		end := start
		if strings.HasPrefix(rest[0], "0x") || strings.HasPrefix(rest[0], "0X") {
			e, err := strconv.ParseUint(strings.TrimPrefix(rest[0], "0x"), 16, 32)
			if err != nil {
				return nil, nil, fmt.Errorf("dict: char.def: line %d: end codepoint: %w", lineNo, err)
			}
			end = e
			rest = rest[1:]
		}
		if len(rest) == 0 {
			return nil, nil, fmt.Errorf("dict: char.def: line %d: no category listed", lineNo)
		}

		var typefield uint32
		for _, name := range rest {
			idx, ok := catIndex[name]
			if !ok {
				return nil, nil, fmt.Errorf("dict: char.def: line %d: undefined category %q", lineNo, name)
			}
			if idx < 32 {
				typefield |= 1 << idx
			}
		}
		defaultCat := catIndex[rest[0]]
		cd := cats[defaultCat]
		bits := EncodeCharData(typefield, defaultCat, cd.length, cd.group, cd.invoke)

		if start > end || end >= numCodepoints {
			return nil, nil, fmt.Errorf("dict: char.def: line %d: range [0x%X,0x%X] out of bounds", lineNo, start, end)
		}
		for c := start; c <= end; c++ {
			bitfields[c] = bits
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("dict: char.def: %w", err)
	}
	if len(names) == 0 {
		return nil, nil, fmt.Errorf("dict: char.def: no categories defined")
	}
	return names, bitfields, nil
}
