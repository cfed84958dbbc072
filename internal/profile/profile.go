// Package profile declares the per-bank layout vocabulary consumed by the
// statement parser: column labels, section markers, sentinels, keywords,
// date grammar and metadata rules. Profiles are immutable package values
// and safe to share between goroutines.
package profile

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/KikeGonRam/ExtractorDeEdC-With-CEP/internal/models"
	"github.com/KikeGonRam/ExtractorDeEdC-With-CEP/internal/textnorm"
)

// ErrUnknownBank is returned by Lookup for an unsupported bank identifier.
var ErrUnknownBank = errors.New("unknown bank")

// Column describes one logical statement column.
type Column struct {
	Name string
	Role models.ColumnRole
	// Labels are folded header texts that identify the column.
	Labels []string
	// Fallback is the anchor position as a fraction of page width, used
	// when no label is found.
	Fallback float64
}

// LabelMatch selects how header labels are compared with tokens.
type LabelMatch int

const (
	// MatchSubstring accepts any token containing the label.
	MatchSubstring LabelMatch = iota
	// MatchExact requires the whole token to equal the label.
	MatchExact
)

// SentinelAction is what the segmenter does with a matching row.
type SentinelAction int

const (
	// DropRow discards the row and keeps scanning.
	DropRow SentinelAction = iota
	// StopPage discards the row and the rest of the page.
	StopPage
	// StopDocument discards the row, the rest of the page and all later pages.
	StopDocument
)

func (a SentinelAction) String() string {
	switch a {
	case DropRow:
		return "drop-row"
	case StopPage:
		return "stop-page"
	case StopDocument:
		return "stop-document"
	}
	return fmt.Sprintf("action(%d)", int(a))
}

// Sentinel marks footer, boilerplate or totals rows. Patterns run against
// folded row text.
type Sentinel struct {
	Name    string
	Pattern *regexp.Regexp
	Action  SentinelAction
}

// Section is a named sub-ledger. A section with an empty Key parks the
// assembler until the next marker.
type Section struct {
	Key    string
	Label  string
	Marker *regexp.Regexp
}

// AmountExclusion removes amount-looking matches that are really reference
// numbers. When is optional; if set, the exclusion only applies to rows
// whose folded text matches it.
type AmountExclusion struct {
	Pattern *regexp.Regexp
	When    *regexp.Regexp
}

// AmountSource selects which amounts win when a row has both column cells
// and a text run.
type AmountSource int

const (
	// PreferColumns uses money-column cells and falls back to the text run.
	PreferColumns AmountSource = iota
	// PreferRun uses a run of two or more amounts and falls back to cells.
	PreferRun
)

// DateGrammar recognises transaction dates in the date cell. Patterns run
// on folded text and use the named groups day, mon and year. A missing year
// is inferred from the statement period.
type DateGrammar struct {
	Full *regexp.Regexp
	// MonthOnly and DayOnly support layouts that print the month on one
	// row and the day on the next.
	MonthOnly *regexp.Regexp
	DayOnly   *regexp.Regexp
}

// Rewrite is a description substitution applied at flush time.
type Rewrite struct {
	Pattern *regexp.Regexp
	Replace string
}

// CompanyTier names one company-name strategy.
type CompanyTier string

const (
	TierLayoutLine         CompanyTier = "layout-line"
	TierLayoutTwoLines     CompanyTier = "layout-two-lines"
	TierFirstPageRegex     CompanyTier = "first-page-regex"
	TierRegionLongestUpper CompanyTier = "region-longest-upper"
	TierTextLine           CompanyTier = "text-line"
	TierBeforeTaxID        CompanyTier = "before-tax-id"
	TierFileName           CompanyTier = "file-name"
)

// Region is a fraction of page width and height measured from the top-left.
type Region struct {
	MaxX float64
	MaxY float64
}

// PeriodRule matches a statement period on raw text using the named groups
// d1, m1, y1, d2, m2 and y2. y1 may be absent.
type PeriodRule struct {
	Pattern *regexp.Regexp
}

// AccountRule extracts one section's account details. Pattern uses the
// named groups number, clabe and opening; Number, CLABE and Opening use
// capture group 1 and fill whatever Pattern left empty. Block restricts the
// search to its group 1; PerPage searches only pages whose text matches
// Trigger.
type AccountRule struct {
	Section       string
	Label         string
	Block         *regexp.Regexp
	Trigger       *regexp.Regexp
	PerPage       bool
	Pattern       *regexp.Regexp
	Number        *regexp.Regexp
	CLABE         *regexp.Regexp
	Opening       *regexp.Regexp
	DocumentCLABE bool
}

// MetadataRules drive the metadata extractor. Patterns run on raw text and
// return capture group 1 unless noted.
type MetadataRules struct {
	CompanyTiers  []CompanyTier
	CompanyRegion Region
	// CompanyLine must match a whole region line.
	CompanyLine *regexp.Regexp
	// CompanyAny finds company names anywhere in text.
	CompanyAny *regexp.Regexp
	// CompanyUpper accepts an all-caps candidate line.
	CompanyUpper     *regexp.Regexp
	CompanyBlacklist []string
	AddressTokens    []string
	// CompanySkipLines are folded fragments of lines that belong to the bank.
	CompanySkipLines []string
	FileNamePrefix   *regexp.Regexp

	TaxID        *regexp.Regexp
	TaxIDExclude []string
	Account      *regexp.Regexp
	CLABE        *regexp.Regexp
	ClientNumber *regexp.Regexp
	Currency     *regexp.Regexp
	// ProductAfter marks the line before the product name; ProductReject
	// filters candidate lines.
	ProductAfter    *regexp.Regexp
	ProductReject   *regexp.Regexp
	DefaultCurrency string
	Periods         []PeriodRule
	Accounts        []AccountRule
}

// Profile is the complete layout description of one bank.
type Profile struct {
	Bank        models.BankType
	DisplayName string
	// DetectMarkers are folded fragments that identify the bank in page text.
	DetectMarkers []string

	Columns    []Column
	LabelMatch LabelMatch
	// RequiredRoles must be found by label for the header to be trusted;
	// otherwise the page is laid out from the fallback fractions alone.
	RequiredRoles []models.ColumnRole
	// InterpolateMoney places missing debit/credit anchors evenly between
	// the description and balance anchors.
	InterpolateMoney bool

	DefaultSection string
	Sections       []Section
	// SectionPerPage restarts each page in the section named by the first
	// marker in its text, or DefaultSection.
	SectionPerPage bool
	Sentinels      []Sentinel
	SkipPage       *regexp.Regexp

	CreditKeywords []string
	DebitKeywords  []string
	DebitPatterns  []*regexp.Regexp
	// KeywordOverride moves a lone amount to the other side when the
	// keywords clearly point there.
	KeywordOverride bool
	// RecoverMisplaced reclassifies a lone balance value as the movement
	// amount when debit and credit are both empty.
	RecoverMisplaced bool

	Dates            DateGrammar
	AllowBareZero    bool
	AmountExclusions []AmountExclusion
	TotalsPattern    *regexp.Regexp
	AmountSource     AmountSource
	// BalanceOverflow receives the second-to-last amount when the balance
	// cell holds two values and that role is empty.
	BalanceOverflow models.ColumnRole

	CarryAcrossPages bool
	// MergeReference appends the reference cell to the description.
	MergeReference bool
	// ReferenceToken keeps only matching tokens in the reference cell; the
	// rest move to the description.
	ReferenceToken *regexp.Regexp
	// StripLeadingDigits removes folio-like numbers that lead run text.
	StripLeadingDigits *regexp.Regexp
	// SplitOnReference opens a new transaction with the same date when a
	// row brings a different reference or matches RowStart.
	SplitOnReference bool
	RowStart         *regexp.Regexp
	// StashLeadingText keeps text seen before the first date and prepends
	// it to the next transaction.
	StashLeadingText bool
	// OpeningRow matches an undated balance line printed before the first
	// movement of a section; it becomes a SALDO ANTERIOR movement dated the
	// day before the period starts.
	OpeningRow *regexp.Regexp

	DescriptionStrip    []*regexp.Regexp
	DescriptionRewrites []Rewrite
	// TrackingCode finds transfer tracking codes. Descriptions holding one
	// get a CLAVE DE RASTREO label before the last code when they lack it.
	TrackingCode *regexp.Regexp
	// PieceStrip is removed from every description piece as it is read;
	// ContinuationStrip only from pieces added after a page break.
	PieceStrip        []*regexp.Regexp
	ContinuationStrip []*regexp.Regexp
	NoisePatterns       []*regexp.Regexp
	NoiseExempt         *regexp.Regexp
	InferOpeningBalance bool

	Metadata MetadataRules
}

// SectionKeys returns the declared section keys in order, without
// duplicates or parking keys.
func (p *Profile) SectionKeys() []string {
	var keys []string
	seen := map[string]bool{}
	add := func(k string) {
		if k == "" || seen[k] {
			return
		}
		seen[k] = true
		keys = append(keys, k)
	}
	add(p.DefaultSection)
	for _, s := range p.Sections {
		add(s.Key)
	}
	return keys
}

// SectionLabel returns the human label of a section key.
func (p *Profile) SectionLabel(key string) string {
	for _, s := range p.Sections {
		if s.Key == key && s.Label != "" {
			return s.Label
		}
	}
	return key
}

var registry = map[models.BankType]*Profile{
	models.BankBanorte:   Banorte,
	models.BankBBVA:      BBVA,
	models.BankInbursa:   Inbursa,
	models.BankSantander: Santander,
}

// All returns the supported profiles in a stable order.
func All() []*Profile {
	return []*Profile{Banorte, BBVA, Inbursa, Santander}
}

// ParseBank normalises a user supplied bank name.
func ParseBank(name string) (models.BankType, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "banorte":
		return models.BankBanorte, nil
	case "bbva", "bancomer", "bbva bancomer":
		return models.BankBBVA, nil
	case "inbursa":
		return models.BankInbursa, nil
	case "santander":
		return models.BankSantander, nil
	}
	return "", fmt.Errorf("%w: %q (supported: banorte, bbva, inbursa, santander)", ErrUnknownBank, name)
}

// Lookup returns the profile for a bank identifier.
func Lookup(bank models.BankType) (*Profile, error) {
	p, ok := registry[bank]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownBank, bank)
	}
	return p, nil
}

// Detect picks the bank whose markers appear most often in the given page
// texts. The first page is checked alone before the whole document, since
// descriptions often name other banks.
func Detect(pages []string) (models.BankType, error) {
	if len(pages) > 0 {
		if bank, ok := bestMatch(pages[0]); ok {
			return bank, nil
		}
	}
	if bank, ok := bestMatch(strings.Join(pages, "\n")); ok {
		return bank, nil
	}
	return "", errors.New("could not auto-detect bank from statement content; please specify the bank")
}

func bestMatch(text string) (models.BankType, bool) {
	folded := textnorm.Fold(text)
	var (
		best      models.BankType
		bestScore int
	)
	for _, p := range All() {
		score := 0
		for _, m := range p.DetectMarkers {
			score += strings.Count(folded, m)
		}
		if score > bestScore {
			best, bestScore = p.Bank, score
		}
	}
	return best, bestScore > 0
}

func mustCompile(pats ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(pats))
	for i, p := range pats {
		out[i] = regexp.MustCompile(p)
	}
	return out
}
