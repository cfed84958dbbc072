// Package textnorm folds statement text into the form used for label,
// keyword and sentinel matching.
package textnorm

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	spaceRun    = regexp.MustCompile(`\s+`)
	nonAlphaNum = regexp.MustCompile(`[^A-Z0-9]`)
)

// Fold upper-cases s, strips accents and collapses whitespace.
// "Depósito  Recibido" becomes "DEPOSITO RECIBIDO".
func Fold(s string) string {
	if s == "" {
		return ""
	}
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	// Casers are stateful, so each call builds its own.
	return Collapse(cases.Upper(language.Und).String(out))
}

// Collapse replaces whitespace runs (including NBSP) with one space and trims.
func Collapse(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	return strings.TrimSpace(spaceRun.ReplaceAllString(s, " "))
}

// Compact removes everything but A-Z and 0-9 from already folded text.
func Compact(folded string) string {
	return nonAlphaNum.ReplaceAllString(folded, "")
}

// ContainsAny reports whether folded text contains one of the folded
// keywords. Keywords with inner separators also match on the compact form,
// so "SPEI RECIBIDO" matches "SPEI-RECIBIDO" and "SPEIRECIBIDO". Padding
// around a keyword only applies to the plain match: "ABO " never matches
// inside "LABORAL".
func ContainsAny(folded string, keywords []string) bool {
	compact := ""
	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		if strings.Contains(folded, kw) {
			return true
		}
		trimmed := strings.TrimSpace(kw)
		ck := Compact(trimmed)
		if ck == trimmed || ck == "" {
			continue
		}
		if compact == "" {
			compact = Compact(folded)
		}
		if strings.Contains(compact, ck) {
			return true
		}
	}
	return false
}
