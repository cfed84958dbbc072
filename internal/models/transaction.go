package models

import "time"

// Transaction is a closed ledger movement. At most one of Debit and Credit
// is non-zero.
type Transaction struct {
	Date              *time.Time `json:"date,omitempty"`
	SettlementDate    *time.Time `json:"settlementDate,omitempty"`
	Reference         string     `json:"reference,omitempty"`
	Description       string     `json:"description"`
	Debit             float64    `json:"debit"`
	Credit            float64    `json:"credit"`
	Balance           *float64   `json:"balance,omitempty"`
	SettlementBalance *float64   `json:"settlementBalance,omitempty"`
	Page              int        `json:"page"`
	Top               float64    `json:"-"`
}

// BankType identifies a supported statement layout.
type BankType string

const (
	BankBanorte   BankType = "banorte"
	BankBBVA      BankType = "bbva"
	BankInbursa   BankType = "inbursa"
	BankSantander BankType = "santander"
)

// Account is one sub-account listed on a statement.
type Account struct {
	Label          string   `json:"label,omitempty"`
	Number         string   `json:"number,omitempty"`
	CLABE          string   `json:"clabe,omitempty"`
	OpeningBalance *float64 `json:"openingBalance,omitempty"`
}

// DocumentMetadata holds the statement header fields. Empty strings and nil
// pointers mean the field was not found.
type DocumentMetadata struct {
	Bank         BankType           `json:"bank"`
	FileName     string             `json:"fileName,omitempty"`
	PeriodStart  *time.Time         `json:"periodStart,omitempty"`
	PeriodEnd    *time.Time         `json:"periodEnd,omitempty"`
	Company      string             `json:"company,omitempty"`
	TaxID        string             `json:"taxId,omitempty"`
	ClientNumber string             `json:"clientNumber,omitempty"`
	Product      string             `json:"product,omitempty"`
	Currency     string             `json:"currency,omitempty"`
	Accounts     map[string]Account `json:"accounts,omitempty"`
}

// ParsedStatement is the result of parsing one document.
type ParsedStatement struct {
	Metadata     DocumentMetadata         `json:"metadata"`
	Sections     map[string][]Transaction `json:"sections"`
	SectionOrder []string                 `json:"sectionOrder"`
}

// Transactions returns every transaction in section order.
func (s *ParsedStatement) Transactions() []Transaction {
	var out []Transaction
	for _, key := range s.SectionOrder {
		out = append(out, s.Sections[key]...)
	}
	return out
}

// Totals sums debits and credits across all sections.
func (s *ParsedStatement) Totals() (debit, credit float64) {
	for _, txn := range s.Transactions() {
		debit += txn.Debit
		credit += txn.Credit
	}
	return debit, credit
}
