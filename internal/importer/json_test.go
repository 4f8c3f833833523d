package importer

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adriaviles2711/finanzaApp/internal/model"
)

const sampleBackup = `{
	"categorias": [
		{"id": "c1", "nombre": "Alimentación", "tipo": "gasto", "icono": "🛒", "color": "#ef4444"},
		{"id": "c2", "nombre": "Salario", "tipo": "ingreso", "icono": "💰", "color": "#06b6d4"}
	],
	"transacciones": [
		{"id": "t1", "category_id": "c1", "tipo": "gasto", "monto": 12.5, "fecha": "2024-03-01", "descripcion": "Almuerzo", "archivo_url": "https://files.example/a.pdf", "archivo_nombre": "a.pdf"},
		{"id": "t2", "category_id": "c2", "tipo": "ingreso", "monto": 2400, "fecha": "2024-03-28T10:00:00Z", "descripcion": "Nómina"}
	]
}`

func TestParseBackup(t *testing.T) {
	backup, badRows, err := ParseBackup(strings.NewReader(sampleBackup))
	require.NoError(t, err)
	assert.Equal(t, 0, badRows)

	require.Len(t, backup.Categories, 2)
	assert.Equal(t, "Alimentación", backup.Categories[0].Name)
	assert.Equal(t, model.TypeExpense, backup.Categories[0].Type)
	assert.Equal(t, "🛒", backup.Categories[0].Icon)

	require.Len(t, backup.Transactions, 2)
	assert.Equal(t, "c1", backup.Transactions[0].CategoryID)
	assert.True(t, backup.Transactions[0].Amount.Equal(decimal.RequireFromString("12.5")))
	assert.Equal(t, "2024-03-01", backup.Transactions[0].Date.String())
	assert.Equal(t, "https://files.example/a.pdf", backup.Transactions[0].AttachmentURL)
	assert.Equal(t, "a.pdf", backup.Transactions[0].AttachmentName)
	// Timestamps truncate to the calendar date.
	assert.Equal(t, "2024-03-28", backup.Transactions[1].Date.String())
}

func TestParseBackupLegacyCategoryKey(t *testing.T) {
	input := `{
		"transacciones": [
			{"id": "t1", "categoria_id": "c9", "tipo": "gasto", "monto": 3, "fecha": "2024-02-01"}
		]
	}`

	backup, badRows, err := ParseBackup(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, 0, badRows)
	require.Len(t, backup.Transactions, 1)
	assert.Equal(t, "c9", backup.Transactions[0].CategoryID)
}

func TestParseBackupCountsBadEntries(t *testing.T) {
	input := `{
		"categorias": [{"id": "c1", "nombre": "", "tipo": "gasto"}],
		"transacciones": [
			{"id": "t1", "tipo": "transferencia", "monto": 1, "fecha": "2024-01-01"},
			{"id": "t2", "tipo": "gasto", "monto": 5, "fecha": "2024-01-02"}
		]
	}`

	backup, badRows, err := ParseBackup(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, 2, badRows)
	assert.Empty(t, backup.Categories)
	assert.Len(t, backup.Transactions, 1)
}

func TestParseBackupRejectsGarbage(t *testing.T) {
	_, _, err := ParseBackup(strings.NewReader("not json"))
	require.Error(t, err)
}
