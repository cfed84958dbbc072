package profile

import (
	"regexp"

	"github.com/KikeGonRam/ExtractorDeEdC-With-CEP/internal/models"
)

const monthAbbrev = `(?:ENE|FEB|MAR|ABR|MAY|JUN|JUL|AGO|SEP|SET|OCT|NOV|DIC)`

// legalSuffix matches Mexican legal-entity suffixes such as S.A. DE C.V.
const legalSuffix = `(?:S\.?\s*A\.?(?:\s*P\.?\s*I\.?)?\s*DE\s*C\.?\s*V\.?|S\.?\s*DE\s*R\.?\s*L\.?(?:\s*DE\s*C\.?\s*V\.?)?|A\.?\s*C\.?|S\.?\s*C\.?)`

// BBVA covers BBVA México business statements. The movements table has
// operation and settlement dates plus two running balances.
var BBVA = &Profile{
	Bank:          models.BankBBVA,
	DisplayName:   "BBVA",
	DetectMarkers: []string{"BBVA MEXICO", "BBVA BANCOMER", "WWW.BBVA.MX"},

	Columns: []Column{
		{Name: "OPER", Role: models.RoleDate, Labels: []string{"OPER"}, Fallback: 0.08},
		{Name: "LIQ", Role: models.RoleSettlementDate, Labels: []string{"LIQ"}, Fallback: 0.13},
		{Name: "COD. DESCRIPCION", Role: models.RoleDescription, Labels: []string{"COD.", "DESCRIPCION"}, Fallback: 0.33},
		{Name: "REFERENCIA", Role: models.RoleReference, Labels: []string{"REFERENCIA"}, Fallback: 0.51},
		{Name: "CARGOS", Role: models.RoleDebit, Labels: []string{"CARGOS"}, Fallback: 0.70},
		{Name: "ABONOS", Role: models.RoleCredit, Labels: []string{"ABONOS"}, Fallback: 0.78},
		{Name: "OPERACION", Role: models.RoleBalance, Labels: []string{"OPERACION"}, Fallback: 0.86},
		{Name: "LIQUIDACION", Role: models.RoleSettlementBalance, Labels: []string{"LIQUIDACION"}, Fallback: 0.94},
	},
	LabelMatch: MatchSubstring,

	DefaultSection: "MOVIMIENTOS",
	Sections: []Section{
		{Key: "MOVIMIENTOS", Label: "Movimientos"},
	},
	Sentinels: []Sentinel{
		{Name: "dashed-line", Pattern: regexp.MustCompile(`(?:[-–—_]{2,}\s*){6,}`), Action: StopPage},
		{Name: "customer-notice", Pattern: regexp.MustCompile(`ESTIMAD[OA].*CLIENTE`), Action: StopPage},
		{Name: "movement-totals", Pattern: regexp.MustCompile(`TOTAL DE MOVIMIENTOS`), Action: StopDocument},
		{Name: "table-title", Pattern: regexp.MustCompile(`DETALLE DE MOVIMIENTOS`), Action: DropRow},
		{Name: "totals", Pattern: regexp.MustCompile(`TOTAL (?:IMPORTE|MOVIMIENTOS) (?:CARGOS?|ABONOS?)`), Action: DropRow},
		{Name: "legal-notes", Pattern: regexp.MustCompile(`LA GAT REAL|NOTA: EN LA COLUMNA PORCENTAJE|LOS MONTOS MINIMOS REQUERIDOS|PARA MAYOR INFORMACION CONSULTA`), Action: DropRow},
		{Name: "bank-footer", Pattern: regexp.MustCompile(`BBVA MEXICO[,.\s]+S\.?A\.?,?\s*INSTITUCION DE BANCA MULTIPLE|AV\.?\s*PASEO DE LA REFORMA\s*510|R\.?\s*F\.?\s*C\.?\s*BBA[A-Z0-9]{6,}`), Action: DropRow},
	},
	SkipPage: regexp.MustCompile(`CUADRO RESUMEN Y GRAFICO DE MOVIMIENTOS DEL PERIODO`),

	CreditKeywords: []string{
		"ABONO", "DEPOSITO", "NOMINA", "RECIBIDO", "INTERESES A FAVOR", "DEVOLUCION",
	},
	DebitKeywords: []string{
		"ENVIADO", "PAGO", "COMPRA", "RETIRO", "DEBITO", "COMISION", "DOMICILI", "N06", "CARGO", "SPEI",
	},
	RecoverMisplaced: true,

	Dates: DateGrammar{
		Full: regexp.MustCompile(`^(?P<day>\d{2})[/\-\s](?P<mon>` + monthAbbrev + `)\b`),
	},
	AmountSource:     PreferColumns,
	CarryAcrossPages: true,
	MergeReference:   true,

	PieceStrip: mustCompile(`(?i)\bS\.?\s*A\b[.,]*`),

	// Fragments of the customer notice that wrap into a movement continued
	// on the next page.
	ContinuationStrip: mustCompile(
		`(?i)\bcliente\b`,
		`(?i)\bahora\b`,
		`(?i)\bestimad[oa]\b`,
		`(?i)\bbbva\s+m[eé]xico(?:\s+de\s+m[eé]xico)?\b`,
		`(?i)\bcontrato\b`,
		`(?i)\bcualquier\s+adelante\b`,
	),

	DescriptionStrip: mustCompile(
		`(?i)\b(?:S\.?\s*A\.?,?\s*)?INSTITUCI[ÓO]N\s+DE\s+BANCA\s+M[ÚU]LTIPLE,?\s+GRUPO\s+FINANCIERO\b`,
		`(?is)reforma\s*510.*?ju[aá]rez.*?cuauh?t[eé]moc.*?c\.?\s*p\.?\s*0?6600.*?ciudad`,
		`(?i)bbva\s+m[eé]xico[,.\s]+(?:s\.?a\.?,?\s*)?instituci[oó]n\s+de\s+banca\s+m[uú]ltiple.*?grupo\s+financiero\s+bbva(?:\s+m[eé]xico)?`,
		`(?i)av\.?\s*paseo\s+de\s+la\s+reforma\s*510.*?(?:c\.?\s*p\.?\s*\d{5}|ciudad\s+de\s+m[eé]xico|m[eé]xico)`,
		`(?i)r\.?\s*f\.?\s*c\.?\s*bba[a-z0-9]{6,}`,
		`(?i)estimad[oa]\s+cliente|estado\s+de\s+cuenta\s+ha\s+sido\s+modificado|ahora\s+tiene\s+m[aá]s\s+detalle|contrato\s+ha\s+sido\s+modificado|cualquier\s+sucursal|www\.bbva\.mx|con\s+bbva\s+adelante`,
	),

	Metadata: MetadataRules{
		CompanyTiers:     []CompanyTier{TierTextLine, TierFileName},
		CompanyAny:       regexp.MustCompile(`(?i)\b([A-ZÁÉÍÓÚÑ0-9&.\-,' ]{6,}?(?:S\.?\s*A\.?(?:\s*DE)?\s*C\.?\s*V\.?|S\.?\s*DE\s*R\.?\s*L\.?|S\.?\s*DE\s*C\.?\s*V\.?))`),
		CompanySkipLines: []string{"BBVA MEXICO", "INSTITUCI"},
		FileNamePrefix:   regexp.MustCompile(`^([A-Za-zÁÉÍÓÚÑáéíóúñ&.\- '_]+?)_0?\d`),

		TaxID:           regexp.MustCompile(`(?i)\bR\.?\s*F\.?\s*C\.?\s*[:\-]?\s*([A-ZÑ&]{3,4}\d{6}[A-Z0-9]{2,3})\b`),
		TaxIDExclude:    []string{"BBA", "BBM"},
		Account:         regexp.MustCompile(`(?i)\bNo\.?\s*Cuenta[: ]+(\d+)\b`),
		CLABE:           regexp.MustCompile(`(?i)\bCLABE[: ]+(\d{18})\b`),
		ClientNumber:    regexp.MustCompile(`(?i)\bNo\.?\s*Cliente[: ]+([A-Z0-9]+)\b`),
		ProductAfter:    regexp.MustCompile(`(?i)estado\s+de\s+cuenta`),
		ProductReject:   regexp.MustCompile(`(?i)P[ÁA]GINA|No\.?\s*Cuenta|No\.?\s*Cliente`),
		DefaultCurrency: "MXN",
		Periods: []PeriodRule{
			{Pattern: regexp.MustCompile(`(?i)Periodo\s+del\s+(?P<d1>\d{2})[/\-\s](?P<m1>[A-Za-zÁá]{3})[/\-\s](?P<y1>\d{4})\s+al\s+(?P<d2>\d{2})[/\-\s](?P<m2>[A-Za-zÁá]{3})[/\-\s](?P<y2>\d{4})`)},
			{Pattern: regexp.MustCompile(`(?i)Del\s+(?P<d1>\d{2})[/\-\s](?P<m1>[A-Za-zÁá]{3})\s+al\s+(?P<d2>\d{2})[/\-\s](?P<m2>[A-Za-zÁá]{3})\s+de\s+(?P<y2>\d{4})`)},
			{Pattern: regexp.MustCompile(`(?P<d1>\d{2})[/\-](?P<m1>\d{2})[/\-](?P<y1>\d{4})\s+a\s+(?P<d2>\d{2})[/\-](?P<m2>\d{2})[/\-](?P<y2>\d{4})`)},
		},
	},
}
