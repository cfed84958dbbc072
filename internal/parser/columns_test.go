package parser

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KikeGonRam/ExtractorDeEdC-With-CEP/internal/models"
	"github.com/KikeGonRam/ExtractorDeEdC-With-CEP/internal/profile"
)

func bandEdges(bands []models.ColumnBand) ([]models.ColumnRole, []float64) {
	var roles []models.ColumnRole
	var edges []float64
	for _, b := range bands {
		roles = append(roles, b.Role)
		edges = append(edges, b.XMax)
	}
	return roles, edges
}

func TestDetectColumnsFromLabels(t *testing.T) {
	page := testPage(0, testHeader(), line(rowTop(0), "01/03/2024", "PAGO", "1.00", "", "1.00"))

	bands, headerY, err := DetectColumns(testProfile(), page)
	require.NoError(t, err)
	assert.Equal(t, headerTop+lineHeight, headerY)

	roles, edges := bandEdges(bands)
	assert.Equal(t, []models.ColumnRole{
		models.RoleDate, models.RoleDescription, models.RoleDebit, models.RoleCredit, models.RoleBalance,
	}, roles)
	assert.Equal(t, []float64{90, 256.25, 400, 473.75, pageWidth}, edges)
	assert.Equal(t, 0.0, bands[0].XMin)
	for i := 1; i < len(bands); i++ {
		assert.Equal(t, bands[i-1].XMax, bands[i].XMin, "bands must tile the page")
	}
}

func TestDetectColumnsFallsBackToFractions(t *testing.T) {
	page := testPage(0, line(rowTop(0), "01/03/2024", "PAGO", "1.00", "", "1.00"))

	bands, headerY, err := DetectColumns(testProfile(), page)
	require.NoError(t, err)
	assert.Equal(t, 0.0, headerY)

	// Anchors at 30, 150, 360, 420 and 510.
	_, edges := bandEdges(bands)
	assert.Equal(t, []float64{90, 255, 390, 465, pageWidth}, edges)
}

func TestDetectColumnsDegenerateLabels(t *testing.T) {
	header := []models.Token{
		tok("FECHA", 20, headerTop),
		tok("DESCRIPCION", 120, headerTop),
		tok("CARGOS", 350, headerTop),
		tok("SALDO", 500, headerTop),
		tok("ABONOS", 350, headerTop+lineHeight),
	}
	page := testPage(0, header)

	bands, _, err := DetectColumns(testProfile(), page)
	require.NoError(t, err)
	_, edges := bandEdges(bands)
	assert.Equal(t, []float64{90, 255, 390, 465, pageWidth}, edges)
}

func TestDetectColumnsErrors(t *testing.T) {
	t.Run("no width", func(t *testing.T) {
		_, _, err := DetectColumns(testProfile(), models.Page{Index: 3, Tokens: testHeader()})
		var lerr *LayoutError
		require.True(t, errors.As(err, &lerr))
		assert.Equal(t, 3, lerr.Page)
		assert.Contains(t, err.Error(), "page 3")
	})

	t.Run("fractions degenerate too", func(t *testing.T) {
		p := testProfile()
		p.Columns[3].Fallback = p.Columns[2].Fallback
		header := []models.Token{
			tok("FECHA", 20, headerTop),
			tok("DESCRIPCION", 120, headerTop),
			tok("CARGOS", 350, headerTop),
			tok("ABONOS", 350, headerTop+lineHeight),
		}
		_, _, err := DetectColumns(p, testPage(0, header))
		var lerr *LayoutError
		require.True(t, errors.As(err, &lerr))
		assert.Equal(t, "degenerate column bands", lerr.Reason)
	})
}

func TestDetectColumnsMissingRequiredLabelUsesFractions(t *testing.T) {
	p := testProfile()
	p.RequiredRoles = []models.ColumnRole{models.RoleDate, models.RoleBalance}
	// Labels sit far from their fractions, so trusting them would move the edges.
	header := []models.Token{tok("FECHA", 100, headerTop), tok("DESCRIPCION", 200, headerTop)}

	bands, headerY, err := DetectColumns(p, testPage(1, header))
	require.NoError(t, err)
	assert.Equal(t, headerTop+lineHeight, headerY, "the header still bounds the body")
	_, edges := bandEdges(bands)
	assert.Equal(t, []float64{90, 255, 390, 465, pageWidth}, edges)
}

func TestDetectColumnsIgnoresLabelsBelowFirstMovement(t *testing.T) {
	// Only the date label is printed; a movement below it mentions two more.
	page := testPage(0,
		[]models.Token{tok("FECHA", 20, headerTop)},
		line(rowTop(0), "01/03/2024", "PAGO CARGOS SALDO", "1.00", "", "1.00"),
	)

	bands, headerY, err := DetectColumns(testProfile(), page)
	require.NoError(t, err)
	assert.Equal(t, 0.0, headerY)
	_, edges := bandEdges(bands)
	assert.Equal(t, []float64{90, 255, 390, 465, pageWidth}, edges)
}

func TestDetectColumnsPrefersFullHeaderRow(t *testing.T) {
	// A summary line above the table mentions one label only.
	summary := words("SALDO ANTERIOR 1,000.00", 20, 40)
	page := testPage(0, summary, testHeader())

	_, headerY, err := DetectColumns(testProfile(), page)
	require.NoError(t, err)
	assert.Equal(t, headerTop+lineHeight, headerY)
}

func TestDetectColumnsExactLabelWins(t *testing.T) {
	p := testProfile()
	p.Columns[0].Labels = []string{"OPER"}
	header := []models.Token{
		tok("OPERACION", 20, headerTop),
		tok("OPER", 60, headerTop),
		tok("DESCRIPCION", 120, headerTop),
		tok("SALDO", 500, headerTop),
	}
	bands, _, err := DetectColumns(p, testPage(0, header))
	require.NoError(t, err)
	// OPER is 20 wide, so its center is 70.
	assert.Equal(t, (70.0+147.5)/2, bands[0].XMax)
}

func TestDetectColumnsInterpolatesMoney(t *testing.T) {
	p := testProfile()
	p.InterpolateMoney = true
	header := []models.Token{
		tok("FECHA", 20, headerTop),
		tok("DESCRIPCION", 120, headerTop),
		tok("SALDO", 490, headerTop),
	}
	bands, _, err := DetectColumns(p, testPage(0, header))
	require.NoError(t, err)

	// DESCRIPCION centers at 147.5 and SALDO at 502.5; the gap is split in thirds.
	roles, edges := bandEdges(bands)
	assert.Equal(t, models.RoleDebit, roles[2])
	assert.Equal(t, models.RoleCredit, roles[3])
	debit := 147.5 + (502.5-147.5)/3
	credit := 147.5 + 2*(502.5-147.5)/3
	assert.InDelta(t, (147.5+debit)/2, edges[1], 1e-9)
	assert.InDelta(t, (debit+credit)/2, edges[2], 1e-9)
	assert.InDelta(t, (credit+502.5)/2, edges[3], 1e-9)
}

func TestBandIndex(t *testing.T) {
	bands := []models.ColumnBand{
		{Role: models.RoleDate, XMin: 0, XMax: 100},
		{Role: models.RoleDescription, XMin: 100, XMax: 200},
		{Role: models.RoleBalance, XMin: 200, XMax: 300},
	}
	tests := []struct {
		x    float64
		want int
	}{
		{-5, 0},
		{0, 0},
		{99.9, 0},
		{100, 1},
		{200, 2},
		{300, 2},
		{350, 2},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, bandIndex(bands, tt.x), "x=%v", tt.x)
	}
}

func TestLabelMatches(t *testing.T) {
	hit, exact := labelMatches(profile.MatchSubstring, "DESCRIPCION/ESTABLECIMIENTO", []string{"DESCRIPCION"})
	assert.True(t, hit)
	assert.False(t, exact)

	hit, _ = labelMatches(profile.MatchExact, "OPERACION", []string{"OPER"})
	assert.False(t, hit)

	hit, exact = labelMatches(profile.MatchExact, "OPER", []string{"OPER"})
	assert.True(t, hit)
	assert.True(t, exact)
}
