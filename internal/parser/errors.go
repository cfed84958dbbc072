package parser

import (
	"errors"
	"fmt"

	"github.com/KikeGonRam/ExtractorDeEdC-With-CEP/internal/models"
)

// ErrNoUsablePages is wrapped by ParseError when every page failed layout
// detection.
var ErrNoUsablePages = errors.New("no usable pages")

// LayoutError reports that no column layout could be built for a page. The
// page is skipped and parsing continues.
type LayoutError struct {
	Page   int
	Reason string
}

func (e *LayoutError) Error() string {
	return fmt.Sprintf("page %d: layout: %s", e.Page, e.Reason)
}

// ParseError is returned when a whole document cannot be parsed.
type ParseError struct {
	Bank models.BankType
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s statement: %v", e.Bank, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
