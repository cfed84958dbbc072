package parser

import (
	"math"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/KikeGonRam/ExtractorDeEdC-With-CEP/internal/models"
	"github.com/KikeGonRam/ExtractorDeEdC-With-CEP/internal/profile"
	"github.com/KikeGonRam/ExtractorDeEdC-With-CEP/internal/textnorm"
)

// metaSource is the text a metadata extraction works from.
type metaSource struct {
	rules    profile.MetadataRules
	fileName string
	first    string
	all      string
	pages    []string
	// region holds the lines of the top-left region of the first page.
	region []string
}

func newMetaSource(p *profile.Profile, doc *models.Document) *metaSource {
	src := &metaSource{rules: p.Metadata, fileName: doc.FileName}
	for _, page := range doc.Pages {
		src.pages = append(src.pages, pageText(page))
	}
	if len(src.pages) > 0 {
		src.first = src.pages[0]
		src.region = regionLines(doc.Pages[0], p.Metadata.CompanyRegion)
	}
	src.all = strings.Join(src.pages, "\n")
	return src
}

func regionLines(page models.Page, r profile.Region) []string {
	if r.MaxX <= 0 || r.MaxY <= 0 || page.Width <= 0 || page.Height <= 0 {
		return nil
	}
	var tokens []models.Token
	for _, t := range page.Tokens {
		if t.CenterX() <= r.MaxX*page.Width && t.Top <= r.MaxY*page.Height {
			tokens = append(tokens, t)
		}
	}
	var lines []string
	for _, row := range GroupRows(tokens, math.Inf(-1)) {
		if l := textnorm.Collapse(row.Text()); l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

// ExtractMetadata reads the statement header fields. Every field is
// optional; missing ones stay empty.
func ExtractMetadata(p *profile.Profile, doc *models.Document) models.DocumentMetadata {
	meta := models.DocumentMetadata{Bank: p.Bank}
	if doc == nil {
		return meta
	}
	meta.FileName = doc.FileName
	src := newMetaSource(p, doc)
	rules := p.Metadata

	meta.Company = extractCompany(src)
	meta.TaxID = extractTaxID(rules, src.all)
	meta.ClientNumber = firstGroup(rules.ClientNumber, src.all)
	meta.Product = extractProduct(rules, src.first)
	meta.Currency = strings.ToUpper(firstGroup(rules.Currency, src.all))
	if meta.Currency == "" {
		meta.Currency = rules.DefaultCurrency
	}
	meta.PeriodStart, meta.PeriodEnd = extractPeriod(rules, src.first, src.all)
	meta.Accounts = extractAccounts(p, src, meta.Product)
	return meta
}

// companyStrategy is one tier of company-name extraction.
type companyStrategy func(src *metaSource) string

var companyStrategies = map[profile.CompanyTier]companyStrategy{
	profile.TierLayoutLine:         companyFromLayoutLine,
	profile.TierLayoutTwoLines:     companyFromLayoutTwoLines,
	profile.TierFirstPageRegex:     companyFromFirstPage,
	profile.TierRegionLongestUpper: companyFromLongestUpper,
	profile.TierTextLine:           companyFromTextLine,
	profile.TierBeforeTaxID:        companyBeforeTaxID,
	profile.TierFileName:           companyFromFileName,
}

func extractCompany(src *metaSource) string {
	for _, tier := range src.rules.CompanyTiers {
		fn, ok := companyStrategies[tier]
		if !ok {
			continue
		}
		if name := cleanCompany(fn(src)); name != "" {
			return name
		}
	}
	return ""
}

func cleanCompany(s string) string {
	return strings.Trim(textnorm.Collapse(s), " ,;:-")
}

// companyCandidate rejects lines that look like addresses, contain digits or
// name the bank itself.
func companyCandidate(rules profile.MetadataRules, s string) bool {
	s = strings.TrimSpace(s)
	if s == "" || hasDigit(s) {
		return false
	}
	padded := " " + textnorm.Fold(s) + " "
	for _, tok := range rules.AddressTokens {
		if strings.Contains(padded, strings.ToUpper(tok)) {
			return false
		}
	}
	for _, b := range rules.CompanyBlacklist {
		if strings.Contains(padded, textnorm.Fold(b)) {
			return false
		}
	}
	return true
}

func companyFromLayoutLine(src *metaSource) string {
	re := src.rules.CompanyLine
	if re == nil {
		return ""
	}
	for i, line := range src.region {
		if i >= 15 {
			break
		}
		if re.MatchString(line) && companyCandidate(src.rules, line) {
			return line
		}
	}
	return ""
}

func companyFromLayoutTwoLines(src *metaSource) string {
	re := src.rules.CompanyLine
	if re == nil {
		return ""
	}
	for i := 0; i < len(src.region)-1 && i < 12; i++ {
		joined := src.region[i] + " " + src.region[i+1]
		if re.MatchString(joined) && companyCandidate(src.rules, joined) {
			return joined
		}
	}
	return ""
}

func companyFromFirstPage(src *metaSource) string {
	re := src.rules.CompanyAny
	if re == nil {
		return ""
	}
	best := ""
	for _, m := range re.FindAllStringSubmatch(src.first, -1) {
		c := strings.TrimSpace(m[1])
		if companyCandidate(src.rules, c) && len(c) > len(best) {
			best = c
		}
	}
	return best
}

func companyFromLongestUpper(src *metaSource) string {
	re := src.rules.CompanyUpper
	if re == nil {
		return ""
	}
	best := ""
	for i, line := range src.region {
		if i >= 20 {
			break
		}
		if re.MatchString(line) && companyCandidate(src.rules, line) && len(line) > len(best) {
			best = line
		}
	}
	return best
}

func companyFromTextLine(src *metaSource) string {
	re := src.rules.CompanyAny
	if re == nil {
		return ""
	}
	for i, line := range splitLines(src.first) {
		if i >= 120 {
			break
		}
		if textnorm.ContainsAny(textnorm.Fold(line), src.rules.CompanySkipLines) {
			continue
		}
		if m := re.FindStringSubmatch(line); m != nil {
			return m[1]
		}
	}
	return ""
}

// companyBeforeTaxID takes the text just before the tax id, on the same
// line or the previous one.
func companyBeforeTaxID(src *metaSource) string {
	re := src.rules.TaxID
	if re == nil {
		return ""
	}
	lines := splitLines(src.first)
	for i, line := range lines {
		loc := re.FindStringIndex(line)
		if loc == nil {
			continue
		}
		if prefix := strings.TrimSpace(line[:loc[0]]); prefix != "" {
			return prefix
		}
		if i > 0 {
			return lines[i-1]
		}
		return ""
	}
	return ""
}

func companyFromFileName(src *metaSource) string {
	re := src.rules.FileNamePrefix
	if re == nil || src.fileName == "" {
		return ""
	}
	base := filepath.Base(src.fileName)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	m := re.FindStringSubmatch(stem)
	if m == nil {
		return ""
	}
	return strings.ReplaceAll(m[1], "_", " ")
}

func extractTaxID(rules profile.MetadataRules, text string) string {
	if rules.TaxID == nil {
		return ""
	}
	for _, m := range rules.TaxID.FindAllStringSubmatch(text, -1) {
		id := strings.ToUpper(strings.TrimSpace(m[1]))
		excluded := false
		for _, prefix := range rules.TaxIDExclude {
			if strings.HasPrefix(id, prefix) {
				excluded = true
				break
			}
		}
		if !excluded {
			return id
		}
	}
	return ""
}

// extractProduct reads the product name from the lines after the
// ProductAfter marker.
func extractProduct(rules profile.MetadataRules, text string) string {
	if rules.ProductAfter == nil {
		return ""
	}
	lines := splitLines(text)
	for i, line := range lines {
		if !rules.ProductAfter.MatchString(line) {
			continue
		}
		for j := i + 1; j < len(lines) && j <= i+3; j++ {
			cand := lines[j]
			if rules.ProductAfter.MatchString(cand) {
				continue
			}
			if rules.ProductReject != nil && rules.ProductReject.MatchString(cand) {
				continue
			}
			return cand
		}
	}
	return ""
}

func extractPeriod(rules profile.MetadataRules, texts ...string) (*time.Time, *time.Time) {
	for _, text := range texts {
		for _, rule := range rules.Periods {
			re := rule.Pattern
			m := re.FindStringSubmatch(text)
			if m == nil {
				continue
			}
			y2 := group(re, m, "y2")
			y1 := group(re, m, "y1")
			inferred := y1 == ""
			if inferred {
				y1 = y2
			}
			start, ok := parseDayMonthYear(group(re, m, "d1"), group(re, m, "m1"), y1)
			if !ok {
				continue
			}
			end, ok := parseDayMonthYear(group(re, m, "d2"), group(re, m, "m2"), y2)
			if !ok {
				continue
			}
			if inferred && start.After(end) {
				start = start.AddDate(-1, 0, 0)
			}
			return &start, &end
		}
	}
	return nil, nil
}

// extractAccounts builds the per-section account details. Profiles without
// account rules get one account for the default section from the
// document-level number and CLABE.
func extractAccounts(p *profile.Profile, src *metaSource, product string) map[string]models.Account {
	rules := p.Metadata
	docCLABE := cleanDigits(firstGroup(rules.CLABE, src.all))
	accounts := make(map[string]models.Account)

	if len(rules.Accounts) == 0 {
		number := firstGroup(rules.Account, src.all)
		if number == "" && docCLABE == "" {
			return nil
		}
		label := product
		if label == "" {
			label = p.SectionLabel(p.DefaultSection)
		}
		accounts[p.DefaultSection] = models.Account{Label: label, Number: number, CLABE: docCLABE}
		return accounts
	}

	for _, rule := range rules.Accounts {
		acc := models.Account{Label: rule.Label}
		for _, text := range accountTexts(rule, src) {
			fillAccount(&acc, rule, text)
		}
		if acc.CLABE == "" && rule.DocumentCLABE {
			acc.CLABE = docCLABE
		}
		if acc.Number == "" && acc.CLABE == "" && acc.OpeningBalance == nil {
			continue
		}
		accounts[rule.Section] = acc
	}
	if len(accounts) == 0 {
		return nil
	}
	return accounts
}

func accountTexts(rule profile.AccountRule, src *metaSource) []string {
	var texts []string
	if rule.PerPage {
		for _, t := range src.pages {
			if rule.Trigger == nil || rule.Trigger.MatchString(t) {
				texts = append(texts, t)
			}
		}
	} else {
		texts = []string{src.all}
	}
	if rule.Block == nil {
		return texts
	}
	var blocks []string
	for _, t := range texts {
		if m := rule.Block.FindStringSubmatch(t); m != nil {
			blocks = append(blocks, m[1])
		}
	}
	return blocks
}

func fillAccount(acc *models.Account, rule profile.AccountRule, text string) {
	if re := rule.Pattern; re != nil {
		if m := re.FindStringSubmatch(text); m != nil {
			if acc.Number == "" {
				acc.Number = group(re, m, "number")
			}
			if acc.CLABE == "" {
				acc.CLABE = cleanDigits(group(re, m, "clabe"))
			}
			if acc.OpeningBalance == nil {
				if v, ok := parseAmount(group(re, m, "opening")); ok {
					acc.OpeningBalance = &v
				}
			}
		}
	}
	if acc.Number == "" {
		acc.Number = firstGroup(rule.Number, text)
	}
	if acc.CLABE == "" {
		acc.CLABE = cleanDigits(firstGroup(rule.CLABE, text))
	}
	if acc.OpeningBalance == nil {
		if v, ok := parseAmount(firstGroup(rule.Opening, text)); ok {
			acc.OpeningBalance = &v
		}
	}
}

func firstGroup(re *regexp.Regexp, text string) string {
	if re == nil {
		return ""
	}
	m := re.FindStringSubmatch(text)
	if len(m) < 2 {
		return ""
	}
	return strings.TrimSpace(m[1])
}

func cleanDigits(s string) string {
	return strings.Map(func(r rune) rune {
		if r == ' ' || r == '-' {
			return -1
		}
		return r
	}, s)
}
