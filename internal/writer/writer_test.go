package writer

import (
	"time"

	"github.com/KikeGonRam/ExtractorDeEdC-With-CEP/internal/models"
)

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func money(v float64) *float64 { return &v }

func sampleStatement() *models.ParsedStatement {
	return &models.ParsedStatement{
		Metadata: models.DocumentMetadata{
			Bank:        models.BankBanorte,
			FileName:    "banorte-enero.pdf",
			Company:     "ACME SA DE CV",
			TaxID:       "ACM010101AB1",
			Currency:    "MXN",
			PeriodStart: date(2024, time.January, 1),
			PeriodEnd:   date(2024, time.January, 31),
			Accounts: map[string]models.Account{
				"INVERSION": {Label: "Inversion Enlace Negocios", Number: "0987654321", OpeningBalance: money(5000)},
				"BASICA":    {Label: "Enlace Negocios Basica", Number: "0123456789", CLABE: "072180001234567890", OpeningBalance: money(10000)},
			},
		},
		SectionOrder: []string{"BASICA", "INVERSION"},
		Sections: map[string][]models.Transaction{
			"BASICA": {
				{Date: date(2024, time.January, 3), Description: "SPEI RECIBIDO, CLIENTE", Credit: 1000, Balance: money(11000)},
				{Date: date(2024, time.January, 4), Reference: "12345", Description: "COMPRA TIENDA", Debit: 250, Balance: money(10750), Page: 1},
			},
			"INVERSION": {
				{Date: date(2024, time.January, 31), Description: "INTERESES", Credit: 12.5, Page: 1},
			},
		},
	}
}
