package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/KikeGonRam/ExtractorDeEdC-With-CEP/internal/profile"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name       string
		p          *profile.Profile
		folded     string
		amount     float64
		wantDebit  float64
		wantCredit float64
	}{
		{"no keywords is credit", testProfile(), "MISC", 123.45, 0, 123.45},
		{"debit keyword", testProfile(), "PAGO TARJETA", 50, 50, 0},
		{"credit keyword", testProfile(), "DEPOSITO EFECTIVO", 50, 0, 50},
		{"both keywords is credit", testProfile(), "PAGO DEPOSITO", 50, 0, 50},
		{"negative amount", testProfile(), "RETIRO", -20.456, 20.46, 0},
		{"banorte isr pattern", profile.Banorte, "RETENCION I.S.R.", 12.5, 12.5, 0},
		{"compact keyword", profile.Inbursa, "SPEI-ENVIADO BANCO", 10, 10, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, c := Classify(tt.p, tt.folded, tt.amount)
			assert.Equal(t, tt.wantDebit, d)
			assert.Equal(t, tt.wantCredit, c)
		})
	}
}

func TestReconcile(t *testing.T) {
	tests := []struct {
		name          string
		p             *profile.Profile
		folded        string
		debit, credit float64
		wantD, wantC  float64
	}{
		{"lone debit kept", testProfile(), "DEPOSITO", 10, 0, 10, 0},
		{"lone credit kept", testProfile(), "PAGO", 0, 10, 0, 10},
		{"both set credit keywords", testProfile(), "DEPOSITO NOMINA", 10, 20, 0, 20},
		{"both set no keywords keeps debit", testProfile(), "MOVIMIENTO", 10, 20, 10, 0},
		{"both set mixed keywords keeps debit", testProfile(), "PAGO DEPOSITO", 10, 20, 10, 0},
		{"absolute values", testProfile(), "X", -5, 0, 5, 0},
		{"override moves debit to credit", profile.Santander, "ABONO TRANSFERENCIA", 10, 0, 0, 10},
		{"override moves credit to debit", profile.Santander, "COMISION MANEJO", 0, 10, 10, 0},
		{"override needs clear keywords", profile.Santander, "ABONO PAGO", 10, 0, 10, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, c := Reconcile(tt.p, tt.folded, tt.debit, tt.credit)
			assert.Equal(t, tt.wantD, d)
			assert.Equal(t, tt.wantC, c)
			assert.True(t, d == 0 || c == 0)
		})
	}
}
