package parser

import (
	"io"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/KikeGonRam/ExtractorDeEdC-With-CEP/internal/models"
	"github.com/KikeGonRam/ExtractorDeEdC-With-CEP/internal/profile"
)

const (
	pageWidth  = 600.0
	pageHeight = 800.0
	charWidth  = 5.0
	lineHeight = 8.0
	headerTop  = 100.0
)

// Body rows in the synthetic layout start here and are 12pt apart.
func rowTop(i int) float64 { return 120 + 12*float64(i) }

// tok builds a single token whose width follows its length.
func tok(text string, x0, top float64) models.Token {
	return models.Token{
		Text:   text,
		X0:     x0,
		X1:     x0 + float64(len(text))*charWidth,
		Top:    top,
		Bottom: top + lineHeight,
	}
}

// words lays out space-separated words left to right from x0.
func words(text string, x0, top float64) []models.Token {
	var out []models.Token
	x := x0
	for _, w := range strings.Fields(text) {
		out = append(out, tok(w, x, top))
		x += float64(len(w))*charWidth + charWidth
	}
	return out
}

func testPage(index int, groups ...[]models.Token) models.Page {
	p := models.Page{Index: index, Width: pageWidth, Height: pageHeight}
	for _, g := range groups {
		for _, t := range g {
			t.Page = index
			p.Tokens = append(p.Tokens, t)
		}
	}
	return p
}

// testHeader is the column header of testProfile.
func testHeader() []models.Token {
	return []models.Token{
		tok("FECHA", 20, headerTop),
		tok("DESCRIPCION", 120, headerTop),
		tok("CARGOS", 350, headerTop),
		tok("ABONOS", 420, headerTop),
		tok("SALDO", 500, headerTop),
	}
}

// line builds one movement row of testProfile; empty cells are omitted.
func line(top float64, date, desc, debit, credit, balance string) []models.Token {
	var out []models.Token
	if date != "" {
		out = append(out, tok(date, 20, top))
	}
	out = append(out, words(desc, 120, top)...)
	if debit != "" {
		out = append(out, tok(debit, 350, top))
	}
	if credit != "" {
		out = append(out, tok(credit, 420, top))
	}
	if balance != "" {
		out = append(out, tok(balance, 500, top))
	}
	return out
}

func testProfile() *profile.Profile {
	return &profile.Profile{
		Bank:        "test",
		DisplayName: "Test Bank",
		Columns: []profile.Column{
			{Name: "FECHA", Role: models.RoleDate, Labels: []string{"FECHA"}, Fallback: 0.05},
			{Name: "DESCRIPCION", Role: models.RoleDescription, Labels: []string{"DESCRIPCION"}, Fallback: 0.25},
			{Name: "CARGOS", Role: models.RoleDebit, Labels: []string{"CARGOS"}, Fallback: 0.60},
			{Name: "ABONOS", Role: models.RoleCredit, Labels: []string{"ABONOS"}, Fallback: 0.70},
			{Name: "SALDO", Role: models.RoleBalance, Labels: []string{"SALDO"}, Fallback: 0.85},
		},
		DefaultSection: "A",
		Sections: []profile.Section{
			{Key: "A", Label: "Cuenta A", Marker: regexp.MustCompile(`^CUENTA A$`)},
			{Key: "B", Label: "Cuenta B", Marker: regexp.MustCompile(`^CUENTA B$`)},
			{Key: "", Label: "resumen", Marker: regexp.MustCompile(`^RESUMEN$`)},
		},
		Sentinels: []profile.Sentinel{
			{Name: "footer", Pattern: regexp.MustCompile(`^PIE DE PAGINA`), Action: profile.StopPage},
			{Name: "end", Pattern: regexp.MustCompile(`^FIN DEL ESTADO`), Action: profile.StopDocument},
			{Name: "notice", Pattern: regexp.MustCompile(`^AVISO`), Action: profile.DropRow},
		},
		CreditKeywords:   []string{"DEPOSITO", "ABONO"},
		DebitKeywords:    []string{"PAGO", "PAYMENT", "RETIRO"},
		Dates:            profile.DateGrammar{Full: regexp.MustCompile(`^(?P<day>\d{2})/(?P<mon>\d{2})/(?P<year>\d{4})\b`)},
		CarryAcrossPages: true,
	}
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func fixedClock() time.Time {
	return time.Date(2024, time.June, 30, 12, 0, 0, 0, time.UTC)
}

func newTestEngine(p *profile.Profile) *Engine {
	return NewWithProfile(p, WithLogger(quietLogger()), WithClock(fixedClock))
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func descriptions(txs []models.Transaction) []string {
	out := make([]string, len(txs))
	for i, tx := range txs {
		out[i] = tx.Description
	}
	return out
}
