package profile

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KikeGonRam/ExtractorDeEdC-With-CEP/internal/models"
	"github.com/KikeGonRam/ExtractorDeEdC-With-CEP/internal/textnorm"
)

func TestParseBank(t *testing.T) {
	tests := []struct {
		in      string
		want    models.BankType
		wantErr bool
	}{
		{"banorte", models.BankBanorte, false},
		{" BBVA ", models.BankBBVA, false},
		{"bancomer", models.BankBBVA, false},
		{"Inbursa", models.BankInbursa, false},
		{"santander", models.BankSantander, false},
		{"hsbc", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseBank(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrUnknownBank)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLookup(t *testing.T) {
	for _, p := range All() {
		got, err := Lookup(p.Bank)
		require.NoError(t, err)
		assert.Same(t, p, got)
	}

	_, err := Lookup("metro")
	assert.ErrorIs(t, err, ErrUnknownBank)
}

func TestDetect(t *testing.T) {
	tests := []struct {
		name    string
		pages   []string
		want    models.BankType
		wantErr bool
	}{
		{
			name:  "banorte",
			pages: []string{"Banco Mercantil del Norte, S.A.\nEnlace Negocios Básica"},
			want:  models.BankBanorte,
		},
		{
			name:  "bbva",
			pages: []string{"BBVA México, S.A.\nEstado de Cuenta\nwww.bbva.mx"},
			want:  models.BankBBVA,
		},
		{
			name:  "inbursa",
			pages: []string{"Banco Inbursa\nCliente Inbursa: 1234"},
			want:  models.BankInbursa,
		},
		{
			name:  "santander",
			pages: []string{"Santander PyME\nCuenta Santander PyME 65-50123456-7"},
			want:  models.BankSantander,
		},
		{
			name: "first page wins over later mentions",
			pages: []string{
				"Cuenta Santander PyME",
				"SPEI ENVIADO BBVA MEXICO\nSPEI ENVIADO BBVA MEXICO\nBBVA MEXICO",
			},
			want: models.BankSantander,
		},
		{
			name:  "later pages are used when the first page is silent",
			pages: []string{"Estado de cuenta", "Banco Inbursa"},
			want:  models.BankInbursa,
		},
		{
			name:    "unknown",
			pages:   []string{"Some Unknown Bank\nStatement"},
			wantErr: true,
		},
		{
			name:    "no pages",
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Detect(tt.pages)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSectionKeys(t *testing.T) {
	assert.Equal(t, []string{"BASICA", "INVERSION"}, Banorte.SectionKeys())
	assert.Equal(t, []string{"CUENTA", "INVER"}, Santander.SectionKeys())
	assert.Equal(t, []string{"MOVIMIENTOS"}, BBVA.SectionKeys())
	assert.Equal(t, "Inversion Enlace Negocios", Banorte.SectionLabel("INVERSION"))
	assert.Equal(t, "OTHER", Banorte.SectionLabel("OTHER"))
}

func TestProfilesAreConsistent(t *testing.T) {
	for _, p := range All() {
		t.Run(string(p.Bank), func(t *testing.T) {
			require.NotEmpty(t, p.Columns)
			require.NotNil(t, p.Dates.Full)
			assert.NotEmpty(t, p.DefaultSection)

			roles := map[models.ColumnRole]bool{}
			for _, c := range p.Columns {
				assert.False(t, roles[c.Role], "duplicate role %s", c.Role)
				roles[c.Role] = true
				assert.Greater(t, c.Fallback, 0.0)
				assert.Less(t, c.Fallback, 1.0)
				for _, l := range c.Labels {
					assert.Equal(t, textnorm.Fold(l), l, "labels must be folded")
				}
			}
			assert.True(t, roles[models.RoleDate])
			assert.True(t, roles[models.RoleDescription])
			assert.True(t, roles[models.RoleBalance])

			for _, kw := range append(append([]string{}, p.CreditKeywords...), p.DebitKeywords...) {
				assert.Equal(t, textnorm.Fold(kw), strings.TrimSpace(kw), "keywords must be folded")
			}
		})
	}
}

func TestDateGrammars(t *testing.T) {
	tests := []struct {
		p    *Profile
		cell string
		day  string
		mon  string
	}{
		{Banorte, "03-ENE-24", "03", "ENE"},
		{BBVA, "15/FEB", "15", "FEB"},
		{Santander, "28-DIC-2023", "28", "DIC"},
		{Inbursa, "MAR. 7", "7", "MAR"},
	}
	for _, tt := range tests {
		t.Run(string(tt.p.Bank), func(t *testing.T) {
			re := tt.p.Dates.Full
			m := re.FindStringSubmatch(tt.cell)
			require.NotNil(t, m, tt.cell)
			assert.Equal(t, tt.day, m[re.SubexpIndex("day")])
			assert.Equal(t, tt.mon, m[re.SubexpIndex("mon")])
		})
	}
}
