package parser

import (
	"regexp"
	"strings"

	"github.com/KikeGonRam/ExtractorDeEdC-With-CEP/internal/profile"
	"github.com/KikeGonRam/ExtractorDeEdC-With-CEP/internal/textnorm"
)

var (
	moneyPattern       = regexp.MustCompile(`\$?\s*\b\d{1,3}(?:,\d{3})*\.\d{2}\b`)
	moneyOrZeroPattern = regexp.MustCompile(`\$?\s*\b\d{1,3}(?:,\d{3})*\.\d{2}\b|\b0(?:\.0{1,2})?\b`)
)

// AmountRun is the trailing group of amounts found in a row's text.
type AmountRun struct {
	// Description is the text with the run removed.
	Description string
	// Values holds one to three amounts, left to right.
	Values []float64
}

type amountMatch struct {
	start, end int
	value      float64
}

func amountPattern(p *profile.Profile) *regexp.Regexp {
	if p.AllowBareZero {
		return moneyOrZeroPattern
	}
	return moneyPattern
}

// findAmounts returns the amount matches in text that survive the profile's
// exclusions.
func findAmounts(p *profile.Profile, text string) []amountMatch {
	var (
		out    []amountMatch
		folded string
	)
	for _, loc := range amountPattern(p).FindAllStringIndex(text, -1) {
		digits := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(text[loc[0]:loc[1]]), "$"))
		excluded := false
		for _, ex := range p.AmountExclusions {
			if !ex.Pattern.MatchString(digits) {
				continue
			}
			if ex.When != nil {
				if folded == "" {
					folded = textnorm.Fold(text)
				}
				if !ex.When.MatchString(folded) {
					continue
				}
			}
			excluded = true
			break
		}
		if excluded {
			continue
		}
		v, ok := parseAmount(digits)
		if !ok {
			continue
		}
		out = append(out, amountMatch{start: loc[0], end: loc[1], value: v})
	}
	return out
}

// ExtractAmountRun finds the right-most run of two or more amounts separated
// only by whitespace, keeping its last three values. Without such a run the
// right-most single amount is used.
func ExtractAmountRun(p *profile.Profile, text string) AmountRun {
	matches := findAmounts(p, text)
	if len(matches) == 0 {
		return AmountRun{Description: textnorm.Collapse(text)}
	}

	var groups [][]amountMatch
	for i, m := range matches {
		if i > 0 && strings.TrimSpace(text[matches[i-1].end:m.start]) == "" {
			groups[len(groups)-1] = append(groups[len(groups)-1], m)
			continue
		}
		groups = append(groups, []amountMatch{m})
	}

	pick := matches[len(matches)-1:]
	for i := len(groups) - 1; i >= 0; i-- {
		if g := groups[i]; len(g) >= 2 {
			if len(g) > 3 {
				g = g[len(g)-3:]
			}
			pick = g
			break
		}
	}

	values := make([]float64, len(pick))
	for i, m := range pick {
		values[i] = m.value
	}
	desc := text[:pick[0].start] + " " + text[pick[len(pick)-1].end:]
	return AmountRun{Description: textnorm.Collapse(desc), Values: values}
}
