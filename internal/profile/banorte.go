package profile

import (
	"regexp"

	"github.com/KikeGonRam/ExtractorDeEdC-With-CEP/internal/models"
)

// Banorte covers Banorte "Enlace Negocios" statements, which list a checking
// sub-account and an investment sub-account in the same document.
var Banorte = &Profile{
	Bank:          models.BankBanorte,
	DisplayName:   "Banorte",
	DetectMarkers: []string{"BANORTE", "BANCO MERCANTIL DEL NORTE", "ENLACE NEGOCIOS"},

	Columns: []Column{
		{Name: "FECHA", Role: models.RoleDate, Labels: []string{"FECHA"}, Fallback: 0.07},
		{Name: "DESCRIPCION / ESTABLECIMIENTO", Role: models.RoleDescription, Labels: []string{"DESCRIPCION"}, Fallback: 0.35},
		{Name: "MONTO DEL DEPOSITO", Role: models.RoleCredit, Labels: []string{"DEPOSITO"}, Fallback: 0.62},
		{Name: "MONTO DEL RETIRO", Role: models.RoleDebit, Labels: []string{"RETIRO"}, Fallback: 0.76},
		{Name: "SALDO", Role: models.RoleBalance, Labels: []string{"SALDO"}, Fallback: 0.90},
	},
	LabelMatch: MatchSubstring,

	DefaultSection: "BASICA",
	Sections: []Section{
		{Key: "INVERSION", Label: "Inversion Enlace Negocios", Marker: regexp.MustCompile(`INVERSION ENLACE NEGOCIOS`)},
		{Key: "BASICA", Label: "Enlace Negocios Basica", Marker: regexp.MustCompile(`ENLACE NEGOCIOS (?:BASICA|AVANZADA)`)},
		{Key: "", Label: "summary", Marker: regexp.MustCompile(`SALDO PROMEDIO|RESUMEN DEL PERIODO|RESUMEN INTEGRAL`)},
	},
	Sentinels: []Sentinel{
		{Name: "trailer", Pattern: regexp.MustCompile(`\bOTROS\s*[▼>]|FOLIO FECHA TIPO DE CARGO|REFERENCIA DE ABREVIATURAS|COMPROBANTE FISCAL DIGITAL|\bIPAB\b|WWW\.IPAB\.ORG\.MX`), Action: StopDocument},
		{Name: "page-footer", Pattern: regexp.MustCompile(`LINEA DIRECTA PARA SU EMPRESA|VISITA NUESTRA PAGINA|WWW\.BANORTE\.COM|GANANCIA ANUAL TOTAL \(GAT\)|GAT NOMINAL|ADVERTENCIA:|CUANDO NO RECIBA SU ESTADO DE CUENTA`), Action: StopPage},
		{Name: "table-header", Pattern: regexp.MustCompile(`FECHA DESCRIPCION\s*/\s*ESTABLECIMIENTO`), Action: DropRow},
	},

	CreditKeywords: []string{
		"SPEI RECIBIDO", "ABONO", "DEPOSITO", "INTERESES", "DEPOSITO DE CUENTA", "DE CUENTA DE TERCEROS (ABONO)",
	},
	DebitKeywords: []string{
		"RETIRO", "PAGO", "COMPRA", "COMISION", "TRASPASO", "IVA", "I.V.A", "PAGO TERCEROS", "TRASPASO A CUENTA DE TERCEROS",
	},
	DebitPatterns: mustCompile(`\bI\.?S\.?R\b`),

	Dates: DateGrammar{
		Full: regexp.MustCompile(`^(?P<day>\d{2})-(?P<mon>` + monthAbbrev + `)-(?P<year>\d{2})\b`),
	},
	AllowBareZero: true,
	AmountExclusions: []AmountExclusion{
		{Pattern: regexp.MustCompile(`^0(?:,\d{3}){2,}\.\d{2}$`)},
	},
	AmountSource:     PreferRun,
	CarryAcrossPages: true,
	OpeningRow:       regexp.MustCompile(`^SALDO ANTERIOR\b`),

	Metadata: MetadataRules{
		CompanyTiers:    []CompanyTier{TierBeforeTaxID},
		TaxID:           regexp.MustCompile(`(?i)\bRFC[: ]+([A-Z0-9]{12,13})\b`),
		ClientNumber:    regexp.MustCompile(`(?i)No\.\s*de\s*(?:cliente|cuenta)[: ]+(\d+)`),
		DefaultCurrency: "MXN",
		Periods: []PeriodRule{
			{Pattern: regexp.MustCompile(`(?i)Periodo\s+Del\s+(?P<d1>\d{2})[/\- ](?P<m1>[A-Za-zÁá]{3})[/\- ](?P<y1>\d{2,4})\s+al\s+(?P<d2>\d{2})[/\- ](?P<m2>[A-Za-zÁá]{3})[/\- ](?P<y2>\d{2,4})`)},
		},
		Accounts: []AccountRule{
			{
				Section: "BASICA",
				Label:   "Enlace Negocios Basica",
				Block:   regexp.MustCompile(`(?is)RESUMEN\s+INTEGRAL(.*?)(?:DETALLE\s+DE\s+MOVIMIENTOS|$)`),
				Pattern: regexp.MustCompile(`(?is)ENLACE\s+NEGOCIOS\s+(?:BASICA|AVANZADA).*?(?P<number>\d{6,})\s+(?P<clabe>[\d ]{14,})\s+\$?\s*(?P<opening>[\d,]+\.\d{2})\s+\$?\s*[\d,]+\.\d{2}`),
			},
			{
				Section: "INVERSION",
				Label:   "Inversion Enlace Negocios",
				Block:   regexp.MustCompile(`(?is)RESUMEN\s+INTEGRAL(.*?)(?:DETALLE\s+DE\s+MOVIMIENTOS|$)`),
				Pattern: regexp.MustCompile(`(?is)INVERSION\s+ENLACE\s+NEGOCIOS.*?(?P<number>\d{6,})\s+(?P<clabe>[\d ]{14,})\s+\$?\s*(?P<opening>[\d,]+\.\d{2})\s+\$?\s*[\d,]+\.\d{2}`),
			},
		},
	},
}
