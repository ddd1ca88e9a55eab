package dict

import (
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"
)

// DecodeShiftJIS converts a legacy MeCab source dictionary line from
// Shift_JIS to UTF-8. Source distributions of the system dictionary
// (ipadic and its derivatives) still ship CSV in Shift_JIS; the binary
// blob this package reads is always UTF-8, so the conversion happens
// once, at build-dict time, never at lookup time.
func DecodeShiftJIS(b []byte) (string, error) {
	out, _, err := transform.Bytes(japanese.ShiftJIS.NewDecoder(), b)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
