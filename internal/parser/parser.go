// Package parser turns the positioned tokens of a bank statement into a
// ledger of transactions plus header metadata. It performs no I/O; the
// token source and the writers live in their own packages.
package parser

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/KikeGonRam/ExtractorDeEdC-With-CEP/internal/models"
	"github.com/KikeGonRam/ExtractorDeEdC-With-CEP/internal/profile"
)

// Parser defines the interface for bank statement parsers.
type Parser interface {
	// Parse takes the token stream of one document and returns the ledger.
	Parse(doc *models.Document) (*models.ParsedStatement, error)
	// BankName returns the human-readable bank name.
	BankName() string
}

// Engine is the profile-driven statement parser. An Engine keeps no state
// between calls and may be used from several goroutines.
type Engine struct {
	profile *profile.Profile
	logger  *slog.Logger
	now     func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for per-page and per-row diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithClock sets the clock used to infer the year of dates printed without
// one when the statement period is unknown.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// New returns the parser for the given bank.
func New(bank models.BankType, opts ...Option) (*Engine, error) {
	p, err := profile.Lookup(bank)
	if err != nil {
		return nil, fmt.Errorf("unsupported bank type: %w", err)
	}
	return NewWithProfile(p, opts...), nil
}

// NewWithProfile returns a parser for a custom profile.
func NewWithProfile(p *profile.Profile, opts ...Option) *Engine {
	e := &Engine{profile: p, logger: slog.Default(), now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// BankName returns the display name of the engine's bank.
func (e *Engine) BankName() string { return e.profile.DisplayName }

// Bank returns the bank identifier of the engine's profile.
func (e *Engine) Bank() models.BankType { return e.profile.Bank }

// Parse runs the whole pipeline over doc. A nil or empty document yields an
// empty statement. Pages whose layout cannot be detected are skipped; if
// every page fails, the error wraps ErrNoUsablePages.
func (e *Engine) Parse(doc *models.Document) (*models.ParsedStatement, error) {
	p := e.profile
	if doc == nil {
		doc = &models.Document{}
	}
	log := e.logger.With("bank", string(p.Bank), "file", doc.FileName)

	meta := ExtractMetadata(p, doc)
	if len(doc.Pages) == 0 {
		return normalize(p, meta, nil), nil
	}

	years := yearResolver{start: meta.PeriodStart, end: meta.PeriodEnd, now: e.now}
	asm := newAssembler(p, log, years)
	sections := asm.run(doc.Pages)

	if asm.attempted > 0 && len(asm.layoutErrs) == asm.attempted {
		return nil, &ParseError{
			Bank: p.Bank,
			Err:  fmt.Errorf("%w: %w", ErrNoUsablePages, errors.Join(asm.layoutErrs...)),
		}
	}

	st := normalize(p, meta, sections)
	debit, credit := st.Totals()
	log.Debug("statement parsed",
		"pages", len(doc.Pages),
		"skipped_pages", len(asm.layoutErrs),
		"transactions", len(st.Transactions()),
		"debit", debit,
		"credit", credit,
	)
	return st, nil
}

// AutoDetect tries to identify the bank from the PDF text content.
func AutoDetect(pages []string) (models.BankType, error) {
	return profile.Detect(pages)
}
