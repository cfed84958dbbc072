package profile

import (
	"regexp"

	"github.com/KikeGonRam/ExtractorDeEdC-With-CEP/internal/models"
)

// Inbursa covers Banco Inbursa statements. Dates print as "ENE 03", or as
// a month row followed by day-only rows, and the year comes from the period.
var Inbursa = &Profile{
	Bank:          models.BankInbursa,
	DisplayName:   "Inbursa",
	DetectMarkers: []string{"INBURSA"},

	Columns: []Column{
		{Name: "FECHA", Role: models.RoleDate, Labels: []string{"FECHA"}, Fallback: 0.06},
		{Name: "REFERENCIA", Role: models.RoleReference, Labels: []string{"REFERENCIA"}, Fallback: 0.16},
		{Name: "CONCEPTO", Role: models.RoleDescription, Labels: []string{"CONCEPTO", "DESCRIPCION"}, Fallback: 0.40},
		{Name: "CARGOS", Role: models.RoleDebit, Labels: []string{"CARGOS"}, Fallback: 0.62},
		{Name: "ABONOS", Role: models.RoleCredit, Labels: []string{"ABONOS"}, Fallback: 0.75},
		{Name: "SALDO", Role: models.RoleBalance, Labels: []string{"SALDO"}, Fallback: 0.88},
	},
	LabelMatch:       MatchExact,
	RequiredRoles:    []models.ColumnRole{models.RoleDate, models.RoleDescription},
	InterpolateMoney: true,

	DefaultSection: "MOVIMIENTOS",
	Sections: []Section{
		{Key: "MOVIMIENTOS", Label: "Movimientos"},
	},
	Sentinels: []Sentinel{
		{Name: "footer", Pattern: regexp.MustCompile(`RESUMEN GRAFICO|TIPO COMPROBANTE|EXPRESADAS EN TERMINOS ANUALES|RENDIMIENTOS|BANCO INBURSA|REGIMEN FISCAL|CLIENTE INBURSA`), Action: StopPage},
	},

	CreditKeywords: []string{"DEPOSITO", "ABONO", "INTERESES GANADOS", "SPEI RECIBIDO", "DEVOLUCION"},
	DebitKeywords:  []string{"RETIRO", "PAGO", "COMISION", "IVA", "CARGO", "SPEI ENVIADO", "TRASPASO"},
	DebitPatterns:  mustCompile(`\bI\.?S\.?R\b`),

	Dates: DateGrammar{
		Full:      regexp.MustCompile(`^(?P<mon>` + monthAbbrev + `)[.,]?\s+(?P<day>\d{1,2})$`),
		MonthOnly: regexp.MustCompile(`^(?P<mon>` + monthAbbrev + `)[.,]?$`),
		DayOnly:   regexp.MustCompile(`^(?P<day>\d{1,2})$`),
	},
	AmountSource:     PreferColumns,
	BalanceOverflow:  models.RoleCredit,
	ReferenceToken:   regexp.MustCompile(`^\d{10}$`),
	SplitOnReference: true,
	RowStart:         regexp.MustCompile(`^(?:DEPOSITO (?:SPEI|EFECTIVO CORRESPONSAL)|INTERESES GANADOS|BALANCE INICIAL)\b`),
	StashLeadingText: true,
	TrackingCode:     regexp.MustCompile(`\b(?:MBAN[0-9A-Z]+|NU[0-9A-Z]*\d[0-9A-Z]*|\d{15,20})\b`),

	DescriptionRewrites: []Rewrite{
		{Pattern: regexp.MustCompile(`(?i)^.*\b(?:INTERESES\s+GANADOS|GANADOS\s+INTERESES)\b.*$`), Replace: "INTERESES GANADOS"},
		{Pattern: regexp.MustCompile(`(?i)\bMEXICO\s+(\d{6,})\s+BBVA\b`), Replace: "BBVA MEXICO ${1}"},
		{Pattern: regexp.MustCompile(`(?i)(EFECTIVO\s+CORRESPONSAL)\s+(MONTERREY\s+NL\s+MX)\s+(EDISON\s+\d+)`), Replace: "${1} ${3} ${2}"},
		{Pattern: regexp.MustCompile(`(?i)\b(DOCTORES\s+MAYO)\s+(\d{4,})\b`), Replace: "${2} ${1}"},
		{Pattern: regexp.MustCompile(`(?i)\b(\d{6,})\s+(BANAMEX|CITIBANAMEX|AZTECA|HSBC|SANTANDER|SCOTIABANK|BANORTE|BBVA(?:\s+MEXICO)?|NU(?:\s+MEXICO)?)\b`), Replace: "${2} ${1}"},
		{Pattern: regexp.MustCompile(`(?i)\bNU\s+(\d)`), Replace: "NU MEXICO ${1}"},
		{Pattern: regexp.MustCompile(`(?i)^\s*(DEPOSITO)\s+DEPOSITO\b`), Replace: "${1}"},
	},

	Metadata: MetadataRules{
		CompanyTiers:  []CompanyTier{TierLayoutLine, TierFirstPageRegex},
		CompanyRegion: Region{MaxX: 0.70, MaxY: 0.38},
		CompanyLine:   regexp.MustCompile(`(?i)^[A-ZÁÉÍÓÚÑ&.\-,' ]+\s` + legalSuffix + `$`),
		CompanyAny:    regexp.MustCompile(`(?i)([A-ZÁÉÍÓÚÑ&.\-,' ]{6,}?\s` + legalSuffix + `)`),
		CompanyBlacklist: []string{
			"INBURSA", "BANCO", "ESTADO DE CUENTA", "PERIODO", "CUENTA",
		},

		TaxID:           regexp.MustCompile(`(?i)\bRFC:\s*([A-Z0-9]{12,13})`),
		Account:         regexp.MustCompile(`(?i)\bCUENTA\s+(\d{6,})`),
		CLABE:           regexp.MustCompile(`(?i)\bCLABE\s+(\d{18})`),
		ClientNumber:    regexp.MustCompile(`(?i)Cliente\s+Inbursa:\s*(\d+)`),
		Currency:        regexp.MustCompile(`(?i)\bMONEDA\s+([A-Z]{3})`),
		DefaultCurrency: "MXN",
		Periods: []PeriodRule{
			{Pattern: regexp.MustCompile(`(?i)PERIODO\s+Del\s+(?P<d1>\d{1,2})\s+(?P<m1>[A-Za-zÁÉÍÓÚÑáéíóúñ]{3,})\.?,?\s+(?P<y1>\d{4})\s+al\s+(?P<d2>\d{1,2})\s+(?P<m2>[A-Za-zÁÉÍÓÚÑáéíóúñ]{3,})\.?,?\s+(?P<y2>\d{4})`)},
		},
	},
}
