package parser

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KikeGonRam/ExtractorDeEdC-With-CEP/internal/profile"
)

func TestParseMonth(t *testing.T) {
	tests := []struct {
		in   string
		want time.Month
		ok   bool
	}{
		{"ENE", time.January, true},
		{"feb.", time.February, true},
		{"Marzo", time.March, true},
		{"set", time.September, true},
		{"Dic", time.December, true},
		{"12", time.December, true},
		{"13", 0, false},
		{"XY", 0, false},
		{"FOO", 0, false},
	}
	for _, tt := range tests {
		got, ok := parseMonth(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestParseYear(t *testing.T) {
	y, ok := parseYear("24")
	require.True(t, ok)
	assert.Equal(t, 2024, y)

	y, ok = parseYear("2023")
	require.True(t, ok)
	assert.Equal(t, 2023, y)

	_, ok = parseYear("x")
	assert.False(t, ok)
}

func TestMakeDateRejectsImpossibleDays(t *testing.T) {
	_, ok := makeDate(2023, time.February, 29)
	assert.False(t, ok)
	d, ok := makeDate(2024, time.February, 29)
	require.True(t, ok)
	assert.Equal(t, day(2024, 2, 29), d)
	_, ok = makeDate(2024, time.April, 0)
	assert.False(t, ok)
}

func TestYearResolver(t *testing.T) {
	dec := day(2023, 12, 15)
	jan := day(2024, 1, 14)

	rollover := yearResolver{start: &dec, end: &jan, now: fixedClock}
	assert.Equal(t, 2023, rollover.yearFor(time.December))
	assert.Equal(t, 2024, rollover.yearFor(time.January))

	endOnly := yearResolver{end: &jan, now: fixedClock}
	assert.Equal(t, 2024, endOnly.yearFor(time.March))

	startOnly := yearResolver{start: &dec, now: fixedClock}
	assert.Equal(t, 2023, startOnly.yearFor(time.March))

	none := yearResolver{now: fixedClock}
	assert.Equal(t, 2024, none.yearFor(time.March))
}

func TestMatchDate(t *testing.T) {
	end := day(2024, 2, 29)
	years := yearResolver{end: &end, now: fixedClock}

	tests := []struct {
		name string
		p    *profile.Profile
		in   string
		want time.Time
		rest string
	}{
		{"banorte", profile.Banorte, "03-ENE-24 SPEI", day(2024, 1, 3), "SPEI"},
		{"bbva without year", profile.BBVA, "15/FEB", day(2024, 2, 15), ""},
		{"santander", profile.Santander, "28-DIC-2023", day(2023, 12, 28), ""},
		{"inbursa", profile.Inbursa, "MAR. 7", day(2024, 3, 7), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dm, ok := matchDate(tt.p.Dates.Full, tt.in, years)
			require.True(t, ok)
			assert.Equal(t, tt.want, dm.date)
			assert.Equal(t, tt.rest, dm.rest)
		})
	}

	_, ok := matchDate(profile.Banorte.Dates.Full, "31-FEB-24", years)
	assert.False(t, ok)
	_, ok = matchDate(nil, "03-ENE-24", years)
	assert.False(t, ok)
}

func TestParseDayMonthYear(t *testing.T) {
	d, ok := parseDayMonthYear("01", "Ene", "2024")
	require.True(t, ok)
	assert.Equal(t, day(2024, 1, 1), d)

	_, ok = parseDayMonthYear("01", "Xyz", "2024")
	assert.False(t, ok)
}
