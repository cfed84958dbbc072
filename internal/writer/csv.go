package writer

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/KikeGonRam/ExtractorDeEdC-With-CEP/internal/models"
)

// CSVWriter writes a parsed statement as a single CSV table, one row per
// transaction in section order.
type CSVWriter struct {
	// IncludeHeader prefixes the table with "# label,value" metadata rows.
	IncludeHeader bool
}

// WriteToFile writes the statement to a CSV file at the given path.
func (w *CSVWriter) WriteToFile(path string, st *models.ParsedStatement) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file %q: %w", path, err)
	}
	defer f.Close()

	return w.Write(f, st)
}

// Write writes the statement in CSV format to the given writer.
func (w *CSVWriter) Write(out io.Writer, st *models.ParsedStatement) error {
	cw := csv.NewWriter(out)

	if w.IncludeHeader {
		for _, kv := range metadataRows(st.Metadata) {
			if err := cw.Write([]string{"# " + kv[0], kv[1]}); err != nil {
				return fmt.Errorf("failed to write CSV metadata: %w", err)
			}
		}
		for _, key := range accountKeys(st) {
			acc := st.Metadata.Accounts[key]
			row := []string{"# Cuenta " + key, acc.Number, acc.CLABE, formatBalance(acc.OpeningBalance)}
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("failed to write CSV metadata: %w", err)
			}
		}
	}

	if err := cw.Write(movementHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, key := range st.SectionOrder {
		for _, txn := range st.Sections[key] {
			row := []string{
				key,
				formatDate(txn.Date),
				formatDate(txn.SettlementDate),
				txn.Reference,
				txn.Description,
				formatAmount(txn.Debit),
				formatAmount(txn.Credit),
				formatBalance(txn.Balance),
				formatBalance(txn.SettlementBalance),
				strconv.Itoa(txn.Page + 1),
			}
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("failed to write CSV row: %w", err)
			}
		}
	}

	cw.Flush()
	return cw.Error()
}
