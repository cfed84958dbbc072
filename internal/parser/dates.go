package parser

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/KikeGonRam/ExtractorDeEdC-With-CEP/internal/textnorm"
)

var months = map[string]time.Month{
	"ENE": time.January,
	"FEB": time.February,
	"MAR": time.March,
	"ABR": time.April,
	"MAY": time.May,
	"JUN": time.June,
	"JUL": time.July,
	"AGO": time.August,
	"SEP": time.September,
	"SET": time.September,
	"OCT": time.October,
	"NOV": time.November,
	"DIC": time.December,
}

// parseMonth accepts Spanish month names, their first three letters, or a
// month number.
func parseMonth(s string) (time.Month, bool) {
	s = textnorm.Fold(strings.TrimSuffix(strings.TrimSpace(s), "."))
	if n, err := strconv.Atoi(s); err == nil {
		if n >= 1 && n <= 12 {
			return time.Month(n), true
		}
		return 0, false
	}
	if len(s) < 3 {
		return 0, false
	}
	m, ok := months[s[:3]]
	return m, ok
}

// parseYear turns a two or four digit year into a full year.
func parseYear(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0, false
	}
	if len(strings.TrimSpace(s)) <= 2 {
		n += 2000
	}
	return n, true
}

// makeDate builds a UTC date, rejecting days that do not exist in the month.
func makeDate(year int, month time.Month, day int) (time.Time, bool) {
	if day < 1 || day > 31 || month < time.January || month > time.December {
		return time.Time{}, false
	}
	d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if d.Day() != day {
		return time.Time{}, false
	}
	return d, true
}

// yearResolver supplies the year for dates printed without one.
type yearResolver struct {
	start, end *time.Time
	now        func() time.Time
}

func (y yearResolver) yearFor(month time.Month) int {
	switch {
	case y.start != nil && y.end != nil && y.start.Year() != y.end.Year():
		// December-January statements.
		if month >= y.start.Month() {
			return y.start.Year()
		}
		return y.end.Year()
	case y.end != nil:
		return y.end.Year()
	case y.start != nil:
		return y.start.Year()
	}
	return y.now().Year()
}

// dateMatch is one parsed date cell.
type dateMatch struct {
	date time.Time
	// rest is the folded text after the date.
	rest string
}

func group(re *regexp.Regexp, m []string, name string) string {
	if i := re.SubexpIndex(name); i > 0 && i < len(m) {
		return m[i]
	}
	return ""
}

// matchDate parses a full date at the start of folded text.
func matchDate(re *regexp.Regexp, folded string, years yearResolver) (dateMatch, bool) {
	if re == nil {
		return dateMatch{}, false
	}
	loc := re.FindStringSubmatchIndex(folded)
	if loc == nil {
		return dateMatch{}, false
	}
	m := re.FindStringSubmatch(folded)
	day, err := strconv.Atoi(group(re, m, "day"))
	if err != nil {
		return dateMatch{}, false
	}
	month, ok := parseMonth(group(re, m, "mon"))
	if !ok {
		return dateMatch{}, false
	}
	year := years.yearFor(month)
	if ys := group(re, m, "year"); ys != "" {
		if year, ok = parseYear(ys); !ok {
			return dateMatch{}, false
		}
	}
	d, ok := makeDate(year, month, day)
	if !ok {
		return dateMatch{}, false
	}
	return dateMatch{date: d, rest: strings.TrimSpace(folded[loc[1]:])}, true
}

// parseDayMonthYear parses the pieces captured by a period rule.
func parseDayMonthYear(day, month, year string) (time.Time, bool) {
	d, err := strconv.Atoi(day)
	if err != nil {
		return time.Time{}, false
	}
	m, ok := parseMonth(month)
	if !ok {
		return time.Time{}, false
	}
	y, ok := parseYear(year)
	if !ok {
		return time.Time{}, false
	}
	return makeDate(y, m, d)
}
