package parser

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/KikeGonRam/ExtractorDeEdC-With-CEP/internal/models"
	"github.com/KikeGonRam/ExtractorDeEdC-With-CEP/internal/textnorm"
)

// parseAmount converts a string like "1,234.56" or "$ 1,234.56" to a float64.
func parseAmount(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, "\u00a0", "")
	if s == "" {
		return 0, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, false
	}
	return d.Round(2).InexactFloat64(), true
}

// roundMoney rounds to cents, half away from zero.
func roundMoney(f float64) float64 {
	if f == 0 || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return decimal.NewFromFloat(f).Round(2).InexactFloat64()
}

func floatPtr(f float64) *float64 { return &f }

// trimTrailingPunct removes separators left behind after noise stripping.
func trimTrailingPunct(s string) string {
	return strings.TrimRight(strings.TrimSpace(s), " -,;:|/–—")
}

// joinTokens joins the selected row tokens with single spaces.
func joinTokens(tokens []models.Token, idx []int) string {
	parts := make([]string, 0, len(idx))
	for _, i := range idx {
		if t := strings.TrimSpace(tokens[i].Text); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}

// pageText returns the page text, rebuilding it from tokens when the token
// source did not provide it.
func pageText(page models.Page) string {
	if page.Text != "" {
		return page.Text
	}
	rows := GroupRows(page.Tokens, math.Inf(-1))
	lines := make([]string, 0, len(rows))
	for _, r := range rows {
		lines = append(lines, r.Text())
	}
	return strings.Join(lines, "\n")
}

// splitLines returns the collapsed non-empty lines of text.
func splitLines(text string) []string {
	var out []string
	for _, l := range strings.Split(text, "\n") {
		if l = textnorm.Collapse(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}

func hasLetter(s string) bool {
	for _, r := range s {
		if ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z') || r > 0x7f {
			return true
		}
	}
	return false
}

func hasDigit(s string) bool {
	return strings.ContainsAny(s, "0123456789")
}
