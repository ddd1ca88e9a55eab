package dict

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ParseMatrixDef reads the text-format matrix.def MeCab distributions
// ship: a "left_size right_size" header line followed by one
// "left right cost" line per non-zero cell. Cells absent from the
// source default to 0, the connection-matrix "no constraint" value.
func ParseMatrixDef(r io.Reader) (leftEdges, rightEdges uint16, data []int16, err error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if !scanner.Scan() {
		return 0, 0, nil, fmt.Errorf("dict: matrix.def: empty file")
	}
	header := strings.Fields(scanner.Text())
	if len(header) != 2 {
		return 0, 0, nil, fmt.Errorf("dict: matrix.def: malformed header %q", scanner.Text())
	}
	left, err := strconv.ParseUint(header[0], 10, 16)
	if err != nil {
		return 0, 0, nil, fmt.Errorf("dict: matrix.def: parsing left size: %w", err)
	}
	right, err := strconv.ParseUint(header[1], 10, 16)
	if err != nil {
		return 0, 0, nil, fmt.Errorf("dict: matrix.def: parsing right size: %w", err)
	}

	leftEdges, rightEdges = uint16(left), uint16(right)
	data = make([]int16, int(leftEdges)*int(rightEdges))

	lineNo := 1
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 3 {
			return 0, 0, nil, fmt.Errorf("dict: matrix.def: line %d: malformed row %q", lineNo, line)
		}
		l, err := strconv.ParseUint(fields[0], 10, 16)
		if err != nil {
			return 0, 0, nil, fmt.Errorf("dict: matrix.def: line %d: left id: %w", lineNo, err)
		}
		rr, err := strconv.ParseUint(fields[1], 10, 16)
		if err != nil {
			return 0, 0, nil, fmt.Errorf("dict: matrix.def: line %d: right id: %w", lineNo, err)
		}
		cost, err := strconv.ParseInt(fields[2], 10, 16)
		if err != nil {
			return 0, 0, nil, fmt.Errorf("dict: matrix.def: line %d: cost: %w", lineNo, err)
		}
		if l >= left || rr >= right {
			return 0, 0, nil, fmt.Errorf("dict: matrix.def: line %d: id (%d,%d) out of range (%d,%d)", lineNo, l, rr, left, right)
		}
		// Matrix.At indexes as leftEdges*right + left, matching the
		// binary blob's row-major-by-right-context layout.
		data[int(leftEdges)*int(rr)+int(l)] = int16(cost)
	}
	if err := scanner.Err(); err != nil {
		return 0, 0, nil, fmt.Errorf("dict: matrix.def: %w", err)
	}
	return leftEdges, rightEdges, data, nil
}
