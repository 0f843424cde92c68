package parsing

import (
	"regexp"
	"strconv"
	"time"

	"cloud.google.com/go/civil"
)

var (
	separatedDate = regexp.MustCompile(`(\d{4})[-/](\d{2})[-/](\d{2})`)
	compactDate   = regexp.MustCompile(`(\d{4})(\d{2})(\d{2})`)
)

// ParseDate extracts a calendar date from a raw publish timestamp.
// YYYY-MM-DD or YYYY/MM/DD anywhere in the text is tried first, then an
// 8-digit YYYYMMDD run. A matched pattern that is not a real date is
// reported as a *DateError and the next pattern is not consulted.
func ParseDate(text string) (civil.Date, error) {
	s := Fold(text)

	if m := separatedDate.FindStringSubmatch(s); m != nil {
		return buildDate(text, m)
	}
	if m := compactDate.FindStringSubmatch(s); m != nil {
		return buildDate(text, m)
	}
	return civil.Date{}, ErrAbsent
}

// OptionalDate returns nil when text yields no valid date.
func OptionalDate(text string) *civil.Date {
	d, err := ParseDate(text)
	if err != nil {
		return nil
	}
	return &d
}

func buildDate(input string, m []string) (civil.Date, error) {
	// the patterns only capture digits, so Atoi cannot fail
	year, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	day, _ := strconv.Atoi(m[3])

	d := civil.Date{Year: year, Month: time.Month(month), Day: day}
	if month < 1 || month > 12 || !d.IsValid() {
		return civil.Date{}, &DateError{Input: input, Matched: m[0]}
	}
	return d, nil
}
