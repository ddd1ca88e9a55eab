package dict

import (
	"strings"
	"testing"
)

func TestParseMatrixDef(t *testing.T) {
	src := "2 3\n0 0 10\n1 0 11\n0 1 20\n1 1 21\n0 2 30\n1 2 31\n"
	left, right, data, err := ParseMatrixDef(strings.NewReader(src))
	if err != nil {
		t.Fatalf("ParseMatrixDef: %v", err)
	}
	if left != 2 || right != 3 {
		t.Fatalf("dims = (%d,%d), want (2,3)", left, right)
	}
	m, err := parseMatrix(mustWriteMatrix(t, left, right, data))
	if err != nil {
		t.Fatalf("parseMatrix: %v", err)
	}
	if m.At(1, 2) != 31 {
		t.Errorf("At(1,2) = %d, want 31", m.At(1, 2))
	}
}

func mustWriteMatrix(t *testing.T, left, right uint16, data []int16) []byte {
	t.Helper()
	var buf strings.Builder
	if err := WriteMatrix(&buf, left, right, data); err != nil {
		t.Fatalf("WriteMatrix: %v", err)
	}
	return []byte(buf.String())
}
