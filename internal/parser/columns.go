package parser

import (
	"math"
	"sort"
	"strings"

	"github.com/KikeGonRam/ExtractorDeEdC-With-CEP/internal/models"
	"github.com/KikeGonRam/ExtractorDeEdC-With-CEP/internal/profile"
	"github.com/KikeGonRam/ExtractorDeEdC-With-CEP/internal/textnorm"
)

// headerWindow is how far, in line heights, header labels may sit from the
// header row. Two-line headers need it.
const headerWindow = 1.6

// DetectColumns builds the column bands of one page and returns the bottom
// of the header labels, or 0 when the page has no recognisable header.
//
// Labels are looked for first; columns without a label use their fallback
// fraction of the page width. A header missing one of the profile's
// required labels is not trusted: every column then uses its fraction, and
// only the header's position is kept. If the labels yield degenerate bands
// the fractions alone are tried, and if those fail too the page gets a
// LayoutError.
func DetectColumns(p *profile.Profile, page models.Page) ([]models.ColumnBand, float64, error) {
	if page.Width <= 0 {
		return nil, 0, &LayoutError{Page: page.Index, Reason: "page has no width"}
	}

	anchors, found, headerY := findHeaderAnchors(p, page)
	if !hasRequired(p, found) {
		anchors = fallbackAnchors(p, page.Width)
		found = make([]bool, len(p.Columns))
	}
	if p.InterpolateMoney {
		interpolateMoney(p, anchors, found)
	}

	bands, ok := buildBands(p, anchors, page.Width)
	if !ok {
		bands, ok = buildBands(p, fallbackAnchors(p, page.Width), page.Width)
	}
	if !ok {
		return nil, 0, &LayoutError{Page: page.Index, Reason: "degenerate column bands"}
	}
	return bands, headerY, nil
}

func fallbackAnchors(p *profile.Profile, width float64) []float64 {
	out := make([]float64, len(p.Columns))
	for i, c := range p.Columns {
		out[i] = c.Fallback * width
	}
	return out
}

func hasRequired(p *profile.Profile, found []bool) bool {
	for _, role := range p.RequiredRoles {
		if !roleFound(p, found, role) {
			return false
		}
	}
	return true
}

func roleFound(p *profile.Profile, found []bool, role models.ColumnRole) bool {
	for i, c := range p.Columns {
		if c.Role == role && found[i] {
			return true
		}
	}
	return false
}

func labelMatches(mode profile.LabelMatch, folded string, labels []string) (hit, exact bool) {
	for _, l := range labels {
		if folded == l {
			return true, true
		}
		if mode == profile.MatchSubstring && strings.Contains(folded, l) {
			hit = true
		}
	}
	return hit, false
}

// findHeaderAnchors locates the header row, the row matching the most
// column labels, and anchors each column on its best label token nearby.
func findHeaderAnchors(p *profile.Profile, page models.Page) ([]float64, []bool, float64) {
	anchors := fallbackAnchors(p, page.Width)
	found := make([]bool, len(p.Columns))

	header, ok := headerRow(p, GroupRows(page.Tokens, math.Inf(-1)))
	if !ok {
		return anchors, found, 0
	}

	var heights float64
	for _, t := range header.Tokens {
		heights += t.Height()
	}
	lineH := heights / float64(len(header.Tokens))
	if lineH <= 0 {
		lineH = 8
	}
	var window []models.Token
	for _, t := range page.Tokens {
		if math.Abs(t.Top-header.Top) <= headerWindow*lineH {
			window = append(window, t)
		}
	}

	folded := make([]string, len(window))
	for i, t := range window {
		folded[i] = textnorm.Fold(t.Text)
	}
	used := make([]bool, len(window))
	headerY := 0.0
	for ci, col := range p.Columns {
		best, bestExact := -1, false
		for i, t := range window {
			if used[i] {
				continue
			}
			hit, exact := labelMatches(p.LabelMatch, folded[i], col.Labels)
			if !hit {
				continue
			}
			if best < 0 || betterLabel(t, exact, window[best], bestExact) {
				best, bestExact = i, exact
			}
		}
		if best < 0 {
			continue
		}
		used[best] = true
		found[ci] = true
		anchors[ci] = window[best].CenterX()
		headerY = math.Max(headerY, window[best].Bottom)
	}
	return anchors, found, headerY
}

// betterLabel prefers exact label hits, then the top-most, then the left-most.
func betterLabel(t models.Token, exact bool, cur models.Token, curExact bool) bool {
	if exact != curExact {
		return exact
	}
	if math.Abs(t.Top-cur.Top) > 1 {
		return t.Top < cur.Top
	}
	return t.X0 < cur.X0
}

// headerRow picks the row with the most distinct column labels among the
// rows above the first movement, so body text that happens to repeat two
// labels cannot become the header.
func headerRow(p *profile.Profile, rows []models.Row) (models.Row, bool) {
	var (
		best      models.Row
		bestCount int
	)
	for _, r := range rows {
		if startsWithDate(p, r) {
			break
		}
		seen := make([]bool, len(p.Columns))
		count := 0
		for _, t := range r.Tokens {
			f := textnorm.Fold(t.Text)
			for ci, col := range p.Columns {
				if seen[ci] {
					continue
				}
				if hit, _ := labelMatches(p.LabelMatch, f, col.Labels); hit {
					seen[ci] = true
					count++
					break
				}
			}
		}
		if count > bestCount {
			best, bestCount = r, count
		}
	}
	return best, bestCount >= 2
}

// startsWithDate reports whether the leading tokens of r read as a full
// date of the profile's grammar.
func startsWithDate(p *profile.Profile, r models.Row) bool {
	if p.Dates.Full == nil {
		return false
	}
	var b strings.Builder
	for i, t := range r.Tokens {
		if i >= maxDateTokens {
			break
		}
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(textnorm.Fold(t.Text))
		if p.Dates.Full.MatchString(b.String()) {
			return true
		}
	}
	return false
}

// interpolateMoney spreads missing debit and credit anchors evenly between
// the nearest detected columns on either side, in declaration order.
func interpolateMoney(p *profile.Profile, anchors []float64, found []bool) {
	for ci, col := range p.Columns {
		if found[ci] || (col.Role != models.RoleDebit && col.Role != models.RoleCredit) {
			continue
		}
		prev, next := -1, -1
		for j := ci - 1; j >= 0; j-- {
			if found[j] {
				prev = j
				break
			}
		}
		for j := ci + 1; j < len(p.Columns); j++ {
			if found[j] {
				next = j
				break
			}
		}
		if prev < 0 || next < 0 {
			continue
		}
		frac := float64(ci-prev) / float64(next-prev)
		anchors[ci] = anchors[prev] + (anchors[next]-anchors[prev])*frac
	}
}

// buildBands sorts anchors by x and splits the page at their midpoints.
func buildBands(p *profile.Profile, anchors []float64, width float64) ([]models.ColumnBand, bool) {
	idx := make([]int, len(anchors))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return anchors[idx[a]] < anchors[idx[b]] })

	bands := make([]models.ColumnBand, 0, len(idx))
	for k, ci := range idx {
		a := anchors[ci]
		if a < 0 || a > width || math.IsNaN(a) {
			return nil, false
		}
		if k > 0 && a <= anchors[idx[k-1]] {
			return nil, false
		}
		xmin, xmax := 0.0, width
		if k > 0 {
			xmin = (anchors[idx[k-1]] + a) / 2
		}
		if k < len(idx)-1 {
			xmax = (a + anchors[idx[k+1]]) / 2
		}
		if xmax <= xmin {
			return nil, false
		}
		col := p.Columns[ci]
		bands = append(bands, models.ColumnBand{Name: col.Name, Role: col.Role, XMin: xmin, XMax: xmax})
	}
	return bands, len(bands) > 0
}

// bandIndex returns the band containing x. Bands are half-open except the
// last; positions outside the page clamp to the first or last band.
func bandIndex(bands []models.ColumnBand, x float64) int {
	for i, b := range bands {
		if x < b.XMax || i == len(bands)-1 {
			return i
		}
	}
	return len(bands) - 1
}
