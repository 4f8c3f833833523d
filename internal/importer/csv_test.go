package importer

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adriaviles2711/finanzaApp/internal/model"
)

func TestParseCSVSignInference(t *testing.T) {
	input := strings.Join([]string{
		`fecha,tipo,categoria,concepto,importe`,
		`2024-03-01,,Food,"Lunch",-12.50`,
		`2024-03-02,,Salary,"Payday",2400.00`,
	}, "\n")

	rows, badRows, err := ParseCSV(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, 0, badRows)
	require.Len(t, rows, 2)

	// Negative amount means expense; the stored amount is absolute.
	assert.Equal(t, model.TypeExpense, rows[0].Type)
	assert.True(t, rows[0].Amount.Equal(decimal.RequireFromString("12.50")))
	assert.Equal(t, "Food", rows[0].CategoryName)
	assert.Equal(t, "Lunch", rows[0].Description)
	assert.Equal(t, "2024-03-01", rows[0].Date.String())

	assert.Equal(t, model.TypeIncome, rows[1].Type)
	assert.True(t, rows[1].Amount.Equal(decimal.RequireFromString("2400.00")))
}

func TestParseCSVExplicitTypeBeatsSign(t *testing.T) {
	input := strings.Join([]string{
		`date,type,amount`,
		`2024-03-01,ingreso,-50.00`,
	}, "\n")

	rows, _, err := ParseCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, model.TypeIncome, rows[0].Type)
	assert.True(t, rows[0].Amount.Equal(decimal.RequireFromString("50.00")))
}

func TestParseCSVEnglishHeaders(t *testing.T) {
	input := strings.Join([]string{
		`Date,Amount,Category,Description`,
		`2024-06-15,-7.20,Transport,Bus`,
	}, "\n")

	rows, _, err := ParseCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Transport", rows[0].CategoryName)
}

func TestParseCSVStripsByteOrderMark(t *testing.T) {
	input := "\uFEFF" + strings.Join([]string{
		`fecha,importe`,
		`2024-03-01,-5.00`,
	}, "\n")

	rows, badRows, err := ParseCSV(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, 0, badRows)
	require.Len(t, rows, 1)
	assert.Equal(t, "2024-03-01", rows[0].Date.String())
}

func TestParseCSVSkipsBadRows(t *testing.T) {
	input := strings.Join([]string{
		`fecha,importe`,
		`not-a-date,10.00`,
		`2024-03-01,not-a-number`,
		`2024-03-02,10.00`,
	}, "\n")

	rows, badRows, err := ParseCSV(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, 2, badRows)
	assert.Len(t, rows, 1)
}

func TestParseCSVRejectsUnusableHeader(t *testing.T) {
	_, _, err := ParseCSV(strings.NewReader("foo,bar\n1,2\n"))
	require.Error(t, err)
}

func TestParseAmountSeparators(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"1,234.56", "1234.56"},
		{"1234,56", "1234.56"},
		{"-12.50", "-12.50"},
		{"€ 99,95", "99.95"},
		{"$42", "42"},
	}
	for _, tt := range tests {
		got, err := parseAmount(tt.input)
		require.NoError(t, err, tt.input)
		assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "%s -> %s", tt.input, got)
	}
}
