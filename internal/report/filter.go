package report

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrIncompleteRange = errors.New("incomplete date selection")

const dateLayout = "2006-01-02"

// Filter is the set of user-supplied listing criteria. Owner scoping is not
// part of Filter; the service applies it unconditionally.
type Filter struct {
	Year  int
	Month int

	// From/To are an inclusive date range; both must be set or neither.
	From string
	To   string

	// Date matches exactly one day and wins over range and month.
	Date string

	// Person is a case-insensitive substring match, applied after fetch.
	Person string

	// Keyword is whitespace-separated tokens (full-width space included);
	// a report matches if its content contains any token.
	Keyword string
}

// DatePredicate is the store-side part of a Filter: exactly one of Exact,
// From/To, or Prefix is set.
type DatePredicate struct {
	Exact  string
	From   string
	To     string
	Prefix string // "YYYY-MM"
}

// DatePredicate resolves the filter's date criteria. Precedence: exact date,
// then explicit range, then year/month, then the month containing now.
// A half-picked range or a half-picked year/month pair refuses the fetch
// with ErrIncompleteRange.
func (f Filter) DatePredicate(now time.Time) (DatePredicate, error) {
	switch {
	case f.Date != "":
		if _, err := time.Parse(dateLayout, f.Date); err != nil {
			return DatePredicate{}, fmt.Errorf("invalid date %q: %w", f.Date, ErrValidation)
		}
		return DatePredicate{Exact: f.Date}, nil

	case f.From != "" || f.To != "":
		if f.From == "" || f.To == "" {
			return DatePredicate{}, ErrIncompleteRange
		}
		for _, d := range []string{f.From, f.To} {
			if _, err := time.Parse(dateLayout, d); err != nil {
				return DatePredicate{}, fmt.Errorf("invalid date %q: %w", d, ErrValidation)
			}
		}
		if f.From > f.To {
			return DatePredicate{}, fmt.Errorf("range start after end: %w", ErrValidation)
		}
		return DatePredicate{From: f.From, To: f.To}, nil

	case f.Year != 0 || f.Month != 0:
		if f.Year == 0 || f.Month == 0 {
			return DatePredicate{}, ErrIncompleteRange
		}
		if f.Month < 1 || f.Month > 12 {
			return DatePredicate{}, fmt.Errorf("invalid month %d: %w", f.Month, ErrValidation)
		}
		return DatePredicate{Prefix: fmt.Sprintf("%04d-%02d", f.Year, f.Month)}, nil

	default:
		return DatePredicate{Prefix: now.Format("2006-01")}, nil
	}
}

// MatchesText applies the in-memory half of the filter: person substring and
// keyword OR-match, both case-insensitive. Blank criteria always match.
func (f Filter) MatchesText(r Report) bool {
	if p := strings.TrimSpace(f.Person); p != "" {
		if !strings.Contains(strings.ToLower(r.Person), strings.ToLower(p)) {
			return false
		}
	}

	tokens := Tokens(f.Keyword)
	if len(tokens) == 0 {
		return true
	}
	content := strings.ToLower(r.Content)
	for _, tok := range tokens {
		if strings.Contains(content, tok) {
			return true
		}
	}
	return false
}

// Tokens splits a keyword string into lowercased search tokens.
// strings.Fields splits on unicode.IsSpace, which covers the full-width
// space (U+3000) users type from Japanese IMEs.
func Tokens(keyword string) []string {
	fields := strings.Fields(keyword)
	if len(fields) == 0 {
		return nil
	}
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		out = append(out, strings.ToLower(f))
	}
	return out
}
