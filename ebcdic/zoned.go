// Package ebcdic converts integers to and from signed zoned decimal text.
//
// In zoned decimal every digit occupies one character and the sign is folded
// into the last one. Read as EBCDIC (IBM-1047) bytes, +1234 is xF1F2F3C4 and
// -1234 is xF1F2F3D4; the textual form used on the wire is "123D" and "123M".
package ebcdic

import (
	"strconv"
	"strings"
)

const (
	positiveDigits = "{ABCDEFGHI"
	negativeDigits = "}JKLMNOPQR"

	maxAbs = uint64(1) << 63
)

// EncodeZoned renders n with the sign folded into the last digit. The result
// has as many characters as |n| has digits; zero is "{".
func EncodeZoned(n int64) string {
	var abs uint64
	if n < 0 {
		abs = uint64(-(n + 1)) + 1
	} else {
		abs = uint64(n)
	}
	digits := []byte(strconv.FormatUint(abs, 10))
	last := digits[len(digits)-1] - '0'
	if n < 0 {
		digits[len(digits)-1] = negativeDigits[last]
	} else {
		digits[len(digits)-1] = positiveDigits[last]
	}
	return string(digits)
}

// DecodeZoned parses zoned decimal text. Leading zeros are allowed. It reports
// false for an empty string, a non-digit before the last character, an
// unknown sign character or a value that does not fit in int64.
func DecodeZoned(s string) (int64, bool) {
	if s == "" {
		return 0, false
	}
	lastIdx := len(s) - 1
	var abs uint64
	for i := 0; i < lastIdx; i++ {
		c := s[i]
		if c < '0' || c > '9' {
			return 0, false
		}
		if abs > maxAbs/10 {
			return 0, false
		}
		abs = abs*10 + uint64(c-'0')
	}
	var (
		d        int
		negative bool
	)
	if d = strings.IndexByte(positiveDigits, s[lastIdx]); d < 0 {
		if d = strings.IndexByte(negativeDigits, s[lastIdx]); d < 0 {
			return 0, false
		}
		negative = true
	}
	if abs > maxAbs/10 {
		return 0, false
	}
	abs = abs*10 + uint64(d)
	switch {
	case abs == 0:
		return 0, true
	case negative && abs <= maxAbs:
		return -int64(abs-1) - 1, true
	case !negative && abs < maxAbs:
		return int64(abs), true
	}
	return 0, false
}
