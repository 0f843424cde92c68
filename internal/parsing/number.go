package parsing

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/width"
)

var (
	percentWithSign = regexp.MustCompile(`[-+]?\d+(?:\.\d+)?\s*%`)
	bareNumber      = regexp.MustCompile(`[-+]?\d+(?:\.\d+)?`)
)

// Fold maps full-width ASCII variants (digits, '％', '－') to their narrow forms.
func Fold(s string) string {
	return width.Fold.String(s)
}

// ParseInt reads an integer from cell text, dropping thousands separators
// and every other non-digit character. Signs and decimal points are ignored,
// so "1,234株" reads as 1234.
func ParseInt(text string) (int64, error) {
	s := strings.TrimSpace(Fold(text))
	if s == "" {
		return 0, ErrAbsent
	}

	var digits strings.Builder
	for i := 0; i < len(s); i++ {
		if isDigit(s[i]) {
			digits.WriteByte(s[i])
		}
	}
	if digits.Len() == 0 {
		return 0, ErrAbsent
	}

	n, err := strconv.ParseInt(digits.String(), 10, 64)
	if err != nil {
		return 0, &NumberError{Input: text, Cause: err}
	}
	return n, nil
}

// ParsePercent reads a signed percentage. A number followed by '%' (ASCII or
// full-width) wins; otherwise the first bare number is used.
func ParsePercent(text string) (decimal.Decimal, error) {
	s := Fold(text)

	match := percentWithSign.FindString(s)
	if match != "" {
		match = strings.TrimSpace(strings.TrimSuffix(match, "%"))
	} else {
		match = bareNumber.FindString(s)
	}
	if match == "" {
		return decimal.Decimal{}, ErrAbsent
	}

	d, err := decimal.NewFromString(strings.TrimPrefix(match, "+"))
	if err != nil {
		return decimal.Decimal{}, &NumberError{Input: text, Cause: err}
	}
	return d, nil
}

// OptionalInt returns nil when text yields no integer.
func OptionalInt(text string) *int64 {
	n, err := ParseInt(text)
	if err != nil {
		return nil
	}
	return &n
}

// OptionalPercent returns nil when text yields no percentage.
func OptionalPercent(text string) *decimal.Decimal {
	d, err := ParsePercent(text)
	if err != nil {
		return nil
	}
	return &d
}
