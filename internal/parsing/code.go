// Package parsing normalizes identifiers, numbers and dates read from the ranking page and the disclosure feed.
package parsing

import (
	"strings"
)

// CodeLength is the length of a canonical company code.
const CodeLength = 4

// NormalizeCode canonicalizes a company code from either feed.
// A 5-character code ending in '0' whose first four characters are digits
// loses the trailing check digit; otherwise the first four digits are kept.
// Full-width digits are folded first.
// Unparsable input yields an empty or short string, never an error.
func NormalizeCode(raw string) string {
	s := strings.TrimSpace(Fold(raw))

	if len(s) == CodeLength+1 && s[CodeLength] == '0' && allDigits(s[:CodeLength]) {
		return s[:CodeLength]
	}

	var sb strings.Builder
	for i := 0; i < len(s) && sb.Len() < CodeLength; i++ {
		if isDigit(s[i]) {
			sb.WriteByte(s[i])
		}
	}
	return sb.String()
}

// CanonicalCode normalizes raw and left-pads a non-empty result with zeros.
// Both feeds are joined on this form.
func CanonicalCode(raw string) string {
	code := NormalizeCode(raw)
	if code == "" || len(code) >= CodeLength {
		return code
	}
	return strings.Repeat("0", CodeLength-len(code)) + code
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if !isDigit(s[i]) {
			return false
		}
	}
	return true
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
