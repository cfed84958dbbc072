package parser

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KikeGonRam/ExtractorDeEdC-With-CEP/internal/models"
)

func TestGroupRows(t *testing.T) {
	tokens := []models.Token{
		tok("SALDO", 300, 120.5),
		tok("PAGO", 100, 120),
		tok("01/03/2024", 20, 120),
		tok("SEGUNDA", 100, 132),
	}

	rows := GroupRows(tokens, math.Inf(-1))
	require.Len(t, rows, 2)
	assert.Equal(t, "01/03/2024 PAGO SALDO", rows[0].Text())
	assert.Equal(t, 120.0, rows[0].Top)
	assert.Equal(t, "SEGUNDA", rows[1].Text())
}

func TestGroupRowsBelowHeader(t *testing.T) {
	tokens := []models.Token{
		tok("FECHA", 20, headerTop),
		tok("CONTINUA", 100, headerTop+1),
		tok("PAGO", 100, headerTop+12),
	}

	rows := GroupRows(tokens, headerTop)
	require.Len(t, rows, 1)
	assert.Equal(t, "PAGO", rows[0].Text())

	above := tokensAbove(tokens, headerTop)
	assert.Len(t, above, 2)
}

func TestGroupRowsEmpty(t *testing.T) {
	assert.Nil(t, GroupRows(nil, math.Inf(-1)))
	assert.Nil(t, GroupRows([]models.Token{tok("X", 0, 10)}, 50))
}

func TestGroupRowsZeroHeight(t *testing.T) {
	// Without heights the bin falls back to a default line.
	tokens := []models.Token{
		{Text: "A", X0: 0, Top: 50},
		{Text: "B", X0: 10, Top: 51},
		{Text: "C", X0: 0, Top: 70},
	}
	rows := GroupRows(tokens, math.Inf(-1))
	require.Len(t, rows, 2)
	assert.Equal(t, "A B", rows[0].Text())
}
