package tracker

import (
	"context"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adriaviles2711/finanzaApp/internal/model"
	"github.com/adriaviles2711/finanzaApp/internal/service"
)

func TestImportCSVResolvesCategories(t *testing.T) {
	manager, _ := newTestManager(t)
	ctx := context.Background()
	initialized(t, manager)

	input := strings.Join([]string{
		`fecha,categoria,concepto,importe`,
		`2024-03-01,Alimentación,"Lunch",-12.50`,
		`2024-03-02,Gimnasio,"Cuota mensual",-35.00`,
		`2024-03-03,,"Cash found",20.00`,
	}, "\n")

	summary, err := manager.ImportCSV(ctx, strings.NewReader(input), nil)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Transactions)
	assert.Equal(t, 0, summary.Errors)
	// CSV import never creates categories.
	assert.Equal(t, 0, summary.Categories)

	txns, err := manager.Transactions(ctx, service.TransactionFilter{})
	require.NoError(t, err)
	require.Len(t, txns, 3)

	cats, err := manager.Categories(ctx, "")
	require.NoError(t, err)
	assert.Len(t, cats, 12, "the catalogue must stay untouched")
	names := make(map[string]string, len(cats))
	for _, cat := range cats {
		names[cat.ID] = cat.Name
	}

	byDesc := make(map[string]model.Transaction, len(txns))
	for _, txn := range txns {
		byDesc[txn.Description] = txn
	}

	lunch := byDesc["Lunch"]
	assert.Equal(t, model.TypeExpense, lunch.Type)
	assert.True(t, lunch.Amount.Equal(decimal.RequireFromString("12.50")))
	assert.Equal(t, "Alimentación", names[lunch.CategoryID])

	// "Gimnasio" is not in the catalogue: the row lands in the first
	// expense category instead of minting a new one.
	gym := byDesc["Cuota mensual"]
	assert.Equal(t, "Alimentación", names[gym.CategoryID])

	// Positive amount with no category: income in the first income
	// category.
	cash := byDesc["Cash found"]
	assert.Equal(t, model.TypeIncome, cash.Type)
	assert.Equal(t, "Salario", names[cash.CategoryID])
}

func TestImportJSONRemapsCategoryIDs(t *testing.T) {
	manager, _ := newTestManager(t)
	ctx := context.Background()
	initialized(t, manager)

	backup := `{
		"categorias": [
			{"id": "old-1", "nombre": "Alimentación", "tipo": "gasto", "icono": "🛒", "color": "#ef4444"},
			{"id": "old-2", "nombre": "Bicicleta", "tipo": "gasto", "icono": "🚲", "color": "#0ea5e9"}
		],
		"transacciones": [
			{"id": "t1", "category_id": "old-1", "tipo": "gasto", "monto": 12.5, "fecha": "2024-03-01", "descripcion": "Almuerzo"},
			{"id": "t2", "category_id": "old-2", "tipo": "gasto", "monto": 80, "fecha": "2024-03-02", "descripcion": "Ruedas", "archivo_url": "https://files.example/factura.pdf", "archivo_nombre": "factura.pdf"},
			{"id": "t3", "category_id": "unknown", "tipo": "ingreso", "monto": 10, "fecha": "2024-03-03", "descripcion": "Propina"}
		]
	}`

	summary, err := manager.ImportJSON(ctx, strings.NewReader(backup), nil)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Transactions)
	// "Alimentación" already exists from the seed; only "Bicicleta" is new.
	assert.Equal(t, 1, summary.Categories)

	cats, err := manager.Categories(ctx, "")
	require.NoError(t, err)
	assert.Len(t, cats, 13)

	byName := make(map[string]model.Category, len(cats))
	for _, cat := range cats {
		byName[cat.Name] = cat
	}

	txns, err := manager.Transactions(ctx, service.TransactionFilter{})
	require.NoError(t, err)
	byDesc := make(map[string]model.Transaction, len(txns))
	for _, txn := range txns {
		byDesc[txn.Description] = txn
	}

	// The backup's ids never leak into the local store.
	assert.Equal(t, byName["Alimentación"].ID, byDesc["Almuerzo"].CategoryID)
	assert.NotEqual(t, "old-1", byDesc["Almuerzo"].CategoryID)
	assert.Equal(t, byName["Bicicleta"].ID, byDesc["Ruedas"].CategoryID)

	// Attachment references survive the restore.
	assert.Equal(t, "https://files.example/factura.pdf", byDesc["Ruedas"].AttachmentURL)
	assert.Equal(t, "factura.pdf", byDesc["Ruedas"].AttachmentName)

	// Unresolvable references fall back to a category of the same type.
	propina := byDesc["Propina"]
	assert.NotEmpty(t, propina.CategoryID)
	assert.Equal(t, model.TypeIncome, byID(cats, propina.CategoryID).Type)
}

func TestImportReportsProgress(t *testing.T) {
	manager, _ := newTestManager(t)
	ctx := context.Background()
	initialized(t, manager)

	input := strings.Join([]string{
		`fecha,importe`,
		`2024-03-01,-1.00`,
		`2024-03-02,-2.00`,
	}, "\n")

	var calls []int
	_, err := manager.ImportCSV(ctx, strings.NewReader(input), func(done, total int) {
		assert.Equal(t, 2, total)
		calls = append(calls, done)
	})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, calls)
}

func byID(cats []model.Category, id string) model.Category {
	for _, cat := range cats {
		if cat.ID == id {
			return cat
		}
	}
	return model.Category{}
}
