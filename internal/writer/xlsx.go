package writer

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/KikeGonRam/ExtractorDeEdC-With-CEP/internal/models"
)

const (
	infoSheet     = "info"
	accountsSheet = "cuentas"
	maxSheetName  = 31
	// Built-in number format "#,##0.00".
	moneyNumFmt = 4
)

// XLSXWriter writes a parsed statement as a workbook: an "info" sheet with
// the statement header, a "cuentas" sheet with the accounts and one sheet
// per section with its transactions.
type XLSXWriter struct{}

// WriteToFile writes the workbook to the given path.
func (w *XLSXWriter) WriteToFile(path string, st *models.ParsedStatement) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file %q: %w", path, err)
	}
	defer f.Close()

	return w.Write(f, st)
}

// Write renders the workbook into out.
func (w *XLSXWriter) Write(out io.Writer, st *models.ParsedStatement) error {
	f, err := w.Build(st)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(out); err != nil {
		return fmt.Errorf("failed to write xlsx: %w", err)
	}
	return nil
}

// Build assembles the workbook in memory. The caller closes it.
func (w *XLSXWriter) Build(st *models.ParsedStatement) (*excelize.File, error) {
	f := excelize.NewFile()
	b := &workbook{f: f, used: map[string]bool{infoSheet: true, accountsSheet: true}}

	if err := f.SetSheetName("Sheet1", infoSheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}

	steps := []func() error{
		b.styles,
		func() error { return b.info(st) },
		func() error { return b.accounts(st) },
	}
	for _, key := range st.SectionOrder {
		key := key // per-iteration copy; the module targets go 1.21 loop semantics
		steps = append(steps, func() error { return b.section(key, st.Sections[key]) })
	}
	for _, step := range steps {
		if err := step(); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to build xlsx: %w", err)
		}
	}

	f.SetActiveSheet(0)
	return f, nil
}

type workbook struct {
	f     *excelize.File
	used  map[string]bool
	bold  int
	money int
}

func (b *workbook) styles() error {
	var err error
	if b.bold, err = b.f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err != nil {
		return err
	}
	b.money, err = b.f.NewStyle(&excelize.Style{NumFmt: moneyNumFmt})
	return err
}

func (b *workbook) info(st *models.ParsedStatement) error {
	rows := make([][]any, 0, 12)
	for _, kv := range metadataRows(st.Metadata) {
		rows = append(rows, []any{kv[0], kv[1]})
	}
	debit, credit := st.Totals()
	rows = append(rows,
		[]any{"Movimientos", len(st.Transactions())},
		[]any{"Total cargos", debit},
		[]any{"Total abonos", credit},
	)
	for i, row := range rows {
		if err := b.setRow(infoSheet, i+1, row); err != nil {
			return err
		}
	}
	if err := b.f.SetColStyle(infoSheet, "A", b.bold); err != nil {
		return err
	}
	return b.f.SetColWidth(infoSheet, "A", "B", 24)
}

func (b *workbook) accounts(st *models.ParsedStatement) error {
	if _, err := b.f.NewSheet(accountsSheet); err != nil {
		return err
	}
	if err := b.header(accountsSheet, accountHeader); err != nil {
		return err
	}
	for i, key := range accountKeys(st) {
		acc := st.Metadata.Accounts[key]
		row := []any{key, acc.Label, acc.Number, acc.CLABE, balanceValue(acc.OpeningBalance)}
		if err := b.setRow(accountsSheet, i+2, row); err != nil {
			return err
		}
	}
	if err := b.f.SetColStyle(accountsSheet, "E", b.money); err != nil {
		return err
	}
	return b.f.SetColWidth(accountsSheet, "A", "E", 20)
}

func (b *workbook) section(key string, txns []models.Transaction) error {
	sheet := b.sheetName(key)
	if _, err := b.f.NewSheet(sheet); err != nil {
		return err
	}
	if err := b.header(sheet, movementHeader[1:]); err != nil {
		return err
	}
	for i, txn := range txns {
		row := []any{
			formatDate(txn.Date),
			formatDate(txn.SettlementDate),
			txn.Reference,
			txn.Description,
			amountValue(txn.Debit),
			amountValue(txn.Credit),
			balanceValue(txn.Balance),
			balanceValue(txn.SettlementBalance),
			txn.Page + 1,
		}
		if err := b.setRow(sheet, i+2, row); err != nil {
			return err
		}
	}
	if err := b.f.SetColStyle(sheet, "E:H", b.money); err != nil {
		return err
	}
	if err := b.f.SetColWidth(sheet, "A", "C", 14); err != nil {
		return err
	}
	if err := b.f.SetColWidth(sheet, "D", "D", 60); err != nil {
		return err
	}
	return b.f.SetColWidth(sheet, "E", "H", 16)
}

func (b *workbook) header(sheet string, names []string) error {
	row := make([]any, len(names))
	for i, n := range names {
		row[i] = n
	}
	if err := b.setRow(sheet, 1, row); err != nil {
		return err
	}
	return b.f.SetRowStyle(sheet, 1, 1, b.bold)
}

func (b *workbook) setRow(sheet string, n int, row []any) error {
	cell, err := excelize.CoordinatesToCellName(1, n)
	if err != nil {
		return err
	}
	return b.f.SetSheetRow(sheet, cell, &row)
}

// sheetName derives a unique, valid sheet name from a section key.
func (b *workbook) sheetName(key string) string {
	base := strings.Map(func(r rune) rune {
		if strings.ContainsRune(`[]:*?/\`, r) {
			return '_'
		}
		return r
	}, strings.ToLower(strings.TrimSpace(key)))
	if base == "" {
		base = "movimientos"
	}
	if len(base) > maxSheetName {
		base = base[:maxSheetName]
	}
	name := base
	for i := 2; b.used[name]; i++ {
		suffix := "_" + strconv.Itoa(i)
		name = base
		if len(name)+len(suffix) > maxSheetName {
			name = name[:maxSheetName-len(suffix)]
		}
		name += suffix
	}
	b.used[name] = true
	return name
}

// amountValue leaves empty cells for zero amounts, matching the printed
// statement.
func amountValue(v float64) any {
	if v == 0 {
		return ""
	}
	return v
}

func balanceValue(v *float64) any {
	if v == nil {
		return ""
	}
	return *v
}
