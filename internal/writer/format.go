package writer

import (
	"sort"
	"strconv"
	"time"

	"github.com/KikeGonRam/ExtractorDeEdC-With-CEP/internal/models"
)

const dateLayout = "02-01-2006"

// movementHeader names the transaction columns shared by every output.
var movementHeader = []string{
	"Seccion", "Fecha", "Fecha liquidacion", "Referencia", "Descripcion",
	"Cargo", "Abono", "Saldo", "Saldo liquidacion", "Pagina",
}

// accountHeader names the columns of the accounts table.
var accountHeader = []string{"Seccion", "Cuenta", "Numero", "CLABE", "Saldo inicial"}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(dateLayout)
}

func formatAmount(amount float64) string {
	if amount == 0 {
		return ""
	}
	return strconv.FormatFloat(amount, 'f', 2, 64)
}

func formatBalance(b *float64) string {
	if b == nil {
		return ""
	}
	return strconv.FormatFloat(*b, 'f', 2, 64)
}

// metadataRows lists the statement header as label/value pairs, skipping
// fields that were not found.
func metadataRows(meta models.DocumentMetadata) [][2]string {
	all := [][2]string{
		{"Banco", string(meta.Bank)},
		{"Archivo", meta.FileName},
		{"Empresa", meta.Company},
		{"RFC", meta.TaxID},
		{"Cliente", meta.ClientNumber},
		{"Producto", meta.Product},
		{"Moneda", meta.Currency},
		{"Periodo inicio", formatDate(meta.PeriodStart)},
		{"Periodo fin", formatDate(meta.PeriodEnd)},
	}
	out := all[:0]
	for _, kv := range all {
		if kv[1] != "" {
			out = append(out, kv)
		}
	}
	return out
}

// accountKeys returns the account keys in section order, then any others
// sorted.
func accountKeys(st *models.ParsedStatement) []string {
	seen := make(map[string]bool, len(st.Metadata.Accounts))
	var keys []string
	for _, k := range st.SectionOrder {
		if _, ok := st.Metadata.Accounts[k]; ok && !seen[k] {
			keys = append(keys, k)
			seen[k] = true
		}
	}
	var rest []string
	for k := range st.Metadata.Accounts {
		if !seen[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	return append(keys, rest...)
}
