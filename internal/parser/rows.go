package parser

import (
	"math"
	"sort"

	"github.com/KikeGonRam/ExtractorDeEdC-With-CEP/internal/models"
)

// GroupRows buckets the tokens below headerY into visual rows, ordered top
// to bottom with tokens left to right. Pass math.Inf(-1) to keep every
// token.
//
// Tokens share a row when round(top/bin) agrees, where bin is 70% of the
// mean token height clamped to [2, 4.2] points.
func GroupRows(tokens []models.Token, headerY float64) []models.Row {
	var (
		body []models.Token
		sum  float64
		n    int
	)
	for _, t := range tokens {
		if t.Top <= headerY+1 {
			continue
		}
		body = append(body, t)
		if h := t.Height(); h > 0 {
			sum += h
			n++
		}
	}
	if len(body) == 0 {
		return nil
	}

	avg := 8.0
	if n > 0 {
		avg = sum / float64(n)
	}
	bin := math.Min(math.Max(0.7*avg, 2), 4.2)

	byKey := make(map[int]*models.Row)
	var keys []int
	for _, t := range body {
		k := int(math.Round(t.Top / bin))
		r, ok := byKey[k]
		if !ok {
			r = &models.Row{Page: t.Page, Top: t.Top}
			byKey[k] = r
			keys = append(keys, k)
		}
		if t.Top < r.Top {
			r.Top = t.Top
		}
		r.Tokens = append(r.Tokens, t)
	}
	sort.Ints(keys)

	rows := make([]models.Row, 0, len(keys))
	for _, k := range keys {
		r := byKey[k]
		sort.SliceStable(r.Tokens, func(i, j int) bool { return r.Tokens[i].X0 < r.Tokens[j].X0 })
		rows = append(rows, *r)
	}
	return rows
}

// tokensAbove returns the tokens in the header zone, at or above headerY.
func tokensAbove(tokens []models.Token, headerY float64) []models.Token {
	var out []models.Token
	for _, t := range tokens {
		if t.Top <= headerY+1 {
			out = append(out, t)
		}
	}
	return out
}
