package parser

import (
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/KikeGonRam/ExtractorDeEdC-With-CEP/internal/models"
	"github.com/KikeGonRam/ExtractorDeEdC-With-CEP/internal/profile"
	"github.com/KikeGonRam/ExtractorDeEdC-With-CEP/internal/textnorm"
)

// normalize builds the final statement from the assembled sections. It
// also fills the metadata that can only be derived from the ledger.
func normalize(p *profile.Profile, meta models.DocumentMetadata, sections map[string][]models.Transaction) *models.ParsedStatement {
	out := &models.ParsedStatement{
		Metadata: meta,
		Sections: make(map[string][]models.Transaction, len(sections)),
	}

	for _, key := range p.SectionKeys() {
		out.SectionOrder = append(out.SectionOrder, key)
		out.Sections[key] = []models.Transaction{}
	}
	var extra []string
	for key := range sections {
		if _, declared := out.Sections[key]; !declared {
			extra = append(extra, key)
		}
	}
	sort.Strings(extra)
	out.SectionOrder = append(out.SectionOrder, extra...)

	for key, txs := range sections {
		cleaned := make([]models.Transaction, len(txs))
		for i, tx := range txs {
			cleaned[i] = normalizeTransaction(p, tx)
		}
		out.Sections[key] = cleaned
	}

	fillPeriod(&out.Metadata, out)
	if p.InferOpeningBalance {
		inferOpening(p, out)
	}
	return out
}

func normalizeTransaction(p *profile.Profile, tx models.Transaction) models.Transaction {
	tx.Description = normalizeDescription(p, tx.Description)
	tx.Debit = roundMoney(tx.Debit)
	tx.Credit = roundMoney(tx.Credit)
	if tx.Balance != nil {
		tx.Balance = floatPtr(roundMoney(*tx.Balance))
	}
	if tx.SettlementBalance != nil {
		tx.SettlementBalance = floatPtr(roundMoney(*tx.SettlementBalance))
	}
	return tx
}

func normalizeDescription(p *profile.Profile, s string) string {
	s = textnorm.Collapse(s)
	for _, re := range p.DescriptionStrip {
		s = re.ReplaceAllString(s, " ")
	}
	for _, rw := range p.DescriptionRewrites {
		s = rw.Pattern.ReplaceAllString(s, rw.Replace)
	}
	if p.TrackingCode != nil {
		s = labelTrackingCode(p.TrackingCode, s)
	}
	return trimTrailingPunct(textnorm.Collapse(s))
}

var (
	strayTrackingLabel = regexp.MustCompile(`(?i)(\bCLAVE\s+)?\bDE\s+RASTREO\b`)
	trackingLabel      = regexp.MustCompile(`(?i)\bCLAVE\s+DE\s+RASTREO\b`)
	labelledCode       = regexp.MustCompile(`(?i)\bCLAVE\s+DE\s+RASTREO\s+\S+`)
	danglingClave      = regexp.MustCompile(`(?i)\bCLAVE\s*$`)
)

// labelTrackingCode leaves s with one CLAVE DE RASTREO label per code.
// Stray "DE RASTREO" fragments are dropped, repeated labels collapse, and
// when no label is left one is put before the last tracking code.
func labelTrackingCode(code *regexp.Regexp, s string) string {
	s = strayTrackingLabel.ReplaceAllStringFunc(s, func(m string) string {
		if strings.HasPrefix(strings.ToUpper(m), "CLAVE") {
			return m
		}
		return " "
	})
	seen := make(map[string]bool)
	s = labelledCode.ReplaceAllStringFunc(s, func(m string) string {
		key := strings.ToUpper(strings.Join(strings.Fields(m), " "))
		if seen[key] {
			return " "
		}
		seen[key] = true
		return m
	})
	if !trackingLabel.MatchString(s) {
		if locs := code.FindAllStringIndex(s, -1); len(locs) > 0 {
			at := locs[len(locs)-1][0]
			s = s[:at] + " CLAVE DE RASTREO " + s[at:]
		}
	}
	return textnorm.Collapse(danglingClave.ReplaceAllString(textnorm.Collapse(s), ""))
}

// fillPeriod falls back to the earliest and latest transaction dates when
// the header did not state the period.
func fillPeriod(meta *models.DocumentMetadata, st *models.ParsedStatement) {
	if meta.PeriodStart != nil && meta.PeriodEnd != nil {
		return
	}
	var minD, maxD *time.Time
	for _, key := range st.SectionOrder {
		for _, tx := range st.Sections[key] {
			for _, d := range []*time.Time{tx.Date, tx.SettlementDate} {
				if d == nil {
					continue
				}
				if minD == nil || d.Before(*minD) {
					minD = d
				}
				if maxD == nil || d.After(*maxD) {
					maxD = d
				}
			}
		}
	}
	if meta.PeriodStart == nil && minD != nil {
		v := *minD
		meta.PeriodStart = &v
	}
	if meta.PeriodEnd == nil && maxD != nil {
		v := *maxD
		meta.PeriodEnd = &v
	}
}

// inferOpening derives each section's opening balance from its first
// transaction when the header did not print one.
func inferOpening(p *profile.Profile, st *models.ParsedStatement) {
	for _, key := range st.SectionOrder {
		txs := st.Sections[key]
		if len(txs) == 0 || txs[0].Balance == nil {
			continue
		}
		if st.Metadata.Accounts == nil {
			st.Metadata.Accounts = make(map[string]models.Account)
		}
		acc := st.Metadata.Accounts[key]
		if acc.OpeningBalance != nil {
			continue
		}
		first := txs[0]
		acc.OpeningBalance = floatPtr(roundMoney(*first.Balance - first.Credit + first.Debit))
		if acc.Label == "" {
			acc.Label = p.SectionLabel(key)
		}
		st.Metadata.Accounts[key] = acc
	}
}
