package profile

import (
	"regexp"

	"github.com/KikeGonRam/ExtractorDeEdC-With-CEP/internal/models"
)

// Santander covers Santander PyME statements with a checking account and
// a "Dinero Creciente" investment, each printed under its own heading.
var Santander = &Profile{
	Bank:          models.BankSantander,
	DisplayName:   "Santander",
	DetectMarkers: []string{"SANTANDER"},

	Columns: []Column{
		{Name: "FECHA", Role: models.RoleDate, Labels: []string{"FECHA"}, Fallback: 0.07},
		{Name: "FOLIO", Role: models.RoleReference, Labels: []string{"FOLIO"}, Fallback: 0.16},
		{Name: "DESCRIPCION", Role: models.RoleDescription, Labels: []string{"DESCRIPCION"}, Fallback: 0.40},
		{Name: "DEPOSITO", Role: models.RoleCredit, Labels: []string{"DEPOSITO"}, Fallback: 0.62},
		{Name: "RETIRO", Role: models.RoleDebit, Labels: []string{"RETIRO"}, Fallback: 0.74},
		{Name: "SALDO", Role: models.RoleBalance, Labels: []string{"SALDO"}, Fallback: 0.88},
	},
	LabelMatch: MatchSubstring,

	DefaultSection: "CUENTA",
	Sections: []Section{
		{Key: "CUENTA", Label: "Cuenta Santander PyME", Marker: regexp.MustCompile(`DETALLES? DE MOVIMIENTOS CUENTA DE CHEQUES?|CUENTA SANTANDER PYME`)},
		{Key: "INVER", Label: "Inversion Creciente", Marker: regexp.MustCompile(`DETALLES? DE MOVIMIENTOS DINERO CRECIENTE|INVERSION CRECIENTE`)},
	},
	SectionPerPage: true,
	Sentinels: []Sentinel{
		{Name: "totals", Pattern: regexp.MustCompile(`^TOTAL\b`), Action: StopPage},
		{Name: "closing-balance", Pattern: regexp.MustCompile(`SALDO FINAL DEL PERIODO`), Action: DropRow},
		{Name: "table-header", Pattern: regexp.MustCompile(`FECHA\b.*\bFOLIO\b.*\bSALDO`), Action: DropRow},
		{Name: "pagination", Pattern: regexp.MustCompile(`\bPA?GINA\s*\d+\s*DE\s*\d+\b|\bP-?P\.?\s*\d+\b`), Action: DropRow},
	},

	CreditKeywords: []string{
		"ABONO", "ABO ", "DEPOSITO", "RECIBIDO", "SPEI RECIBIDO",
		"INTERES", "INTERESES", "DEVOLUCION", "REEMBOLSO", "TRASPASO RECIBIDO",
	},
	DebitKeywords: []string{
		"RETIRO", "PAGO", "ENVIADO", "TRANSFERENCIA SPEI", "SPEI HORA", "SPEI ENVIADO",
		"COMISION", "IVA", "COMPRA", "COBRO",
		"RETENCION", "ISR", "MEMBRESIA", "MEMBRES", "CARGO", "CUOTA", "ANUALIDAD",
		"SEGURO", "SERVICIO", "MANTENIMIENTO",
		"APORT", "LINEA CAPTURA", "CAPTURA INTERNET",
	},
	KeywordOverride: true,

	Dates: DateGrammar{
		Full: regexp.MustCompile(`^(?P<day>\d{2})\s*-\s*(?P<mon>` + monthAbbrev + `)\s*-\s*(?P<year>\d{4})\b`),
	},
	AmountExclusions: []AmountExclusion{
		{Pattern: regexp.MustCompile(`^0(?:,\d{3}){2,}\.\d{2}$`), When: regexp.MustCompile(`BANCO\s*INVEX`)},
	},
	TotalsPattern:      regexp.MustCompile(`\bTOTAL\b|SALDO FINAL DEL PERIODO`),
	AmountSource:       PreferRun,
	StripLeadingDigits: regexp.MustCompile(`^\d{5,}\s+`),

	DescriptionStrip: mustCompile(
		`(?i)\bP[ÁA]?GINA\s*\d+\s*DE\s*\d+\b`,
		`(?i)\bP-?P\.?\s*\d+\b`,
	),
	NoisePatterns: mustCompile(
		`(?i)\b(?:UUID|CFDI|TIMBRAD[OA]|COMPROBANTE|SELLO\s+DIGITAL|CADENA\s+ORIGINAL|SAT|REG[IÍ]MEN|EMISOR|RECEPTOR|USO\s+CFDI|FOLIO\s+INTERNO|FORMA\s+DE\s+PAGO|M[EÉ]TODO\s+DE\s+PAGO|FECHA\s+Y\s+HORA\s+DE|CERTIFICACI[ÓO]N|CSD|COMPLEMENTO)\b`,
		`[A-Za-z0-9+/=]{20,}`,
		`(?i)Detalles?\s+de\s+movimientos`,
	),
	NoiseExempt:         regexp.MustCompile(`(?i)\bCLAVE\s+DE\s+RASTREO\b`),
	InferOpeningBalance: true,

	Metadata: MetadataRules{
		CompanyTiers: []CompanyTier{
			TierLayoutLine, TierLayoutTwoLines, TierFirstPageRegex, TierRegionLongestUpper,
		},
		CompanyRegion: Region{MaxX: 0.70, MaxY: 0.38},
		CompanyLine:   regexp.MustCompile(`(?i)^[A-ZÁÉÍÓÚÑ&.\-,' ]+\s` + legalSuffix + `$`),
		CompanyAny:    regexp.MustCompile(`(?i)([A-ZÁÉÍÓÚÑ&.\-,' ]{6,}?\s` + legalSuffix + `)`),
		CompanyUpper:  regexp.MustCompile(`^[A-ZÁÉÍÓÚÑ&.\-,' ]{6,}$`),
		CompanyBlacklist: []string{
			"CONCEPTO", "FACTURA", "COMPROBANTE", "ESTADO DE CUENTA", "DETALLE",
			"MOVIMIENTOS", "PERIODO", "CUENTA", "SANTANDER", "BANCO",
		},
		AddressTokens: []string{
			" CALLE", " AV ", " AV.", " AVENIDA", " PISO ", " NUM ", " NO.", " N°", " Nº",
			" COL ", " COLONIA", " C.P", " CP",
			" MEXICO", " ESTADO", " MUNICIP", " DELEGACION", " ALCALDIA", " BARRIO",
			" SAN ", " SANTA ", " MIGUEL", " HIDALGO", " METEPEC", " CP.",
		},

		TaxID:           regexp.MustCompile(`(?i)\bR\.?\s*F\.?\s*C\.?\s*[: ]+([A-ZÑ&]{3,4}\d{6}[A-Z0-9]{2,3})\b`),
		CLABE:           regexp.MustCompile(`(?i)CUENTA\s+CLABE[: ]+(\d{18})`),
		ClientNumber:    regexp.MustCompile(`(?i)C[ÓO]DIGO\s+DE\s+CLIENTE\s+NO\.?\s*([A-Z0-9]+)`),
		DefaultCurrency: "MXN",
		Periods: []PeriodRule{
			{Pattern: regexp.MustCompile(`(?i)PERIODO\s+DEL\s+(?P<d1>\d{2})\s*-\s*(?P<m1>[A-Za-zÁá]{3})\s*-\s*(?P<y1>\d{4})\s+AL\s+(?P<d2>\d{2})\s*-\s*(?P<m2>[A-Za-zÁá]{3})\s*-\s*(?P<y2>\d{4})`)},
		},
		Accounts: []AccountRule{
			{
				Section:       "CUENTA",
				Label:         "CUENTA SANTANDER PYME",
				PerPage:       true,
				Trigger:       regexp.MustCompile(`(?im)^\s*Detalles?\s+de\s+movimientos\s+cuenta\s+de\s+cheques\b|^\s*CUENTA\s+SANTANDER\s+PYME\s+\d{2}-\d{8}-\d\b`),
				Number:        regexp.MustCompile(`(?im)^\s*CUENTA\s+SANTANDER\s+PYME\s+(\d{2}-\d{8}-\d)\b`),
				Opening:       regexp.MustCompile(`(?i)SALDO\s+FINAL\s+DEL\s+PERIODO\s+ANTERIOR\s*:\s*\$?\s*([\d,]+\.\d{2})`),
				DocumentCLABE: true,
			},
			{
				Section: "INVER",
				Label:   "INVERSION CRECIENTE",
				PerPage: true,
				Trigger: regexp.MustCompile(`(?im)^\s*Detalles?\s+de\s+movimientos\s+Dinero\s+Creciente\s+Santander\b|^\s*INVERSION\s+CRECIENTE\s+\d{2}-\d{8}-\d\b`),
				Number:  regexp.MustCompile(`(?im)^\s*INVERSION\s+CRECIENTE\s+(\d{2}-\d{8}-\d)\b`),
				Opening: regexp.MustCompile(`(?i)SALDO\s+FINAL\s+DEL\s+PERIODO\s+ANTERIOR\s*:\s*\$?\s*([\d,]+\.\d{2})`),
			},
		},
	},
}
