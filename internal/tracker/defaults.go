package tracker

import "github.com/adriaviles2711/finanzaApp/internal/model"

// defaultCategory is a seed entry; ids and timestamps are assigned at
// insert time.
type defaultCategory struct {
	Name  string
	Type  model.RecordType
	Icon  string
	Color string
}

// defaultCategories is the starter catalogue seeded for every user that
// has no categories yet. Six expense and six income entries.
var defaultCategories = []defaultCategory{
	{Name: "Alimentación", Type: model.TypeExpense, Icon: "🛒", Color: "#ef4444"},
	{Name: "Vivienda", Type: model.TypeExpense, Icon: "🏠", Color: "#f97316"},
	{Name: "Transporte", Type: model.TypeExpense, Icon: "🚗", Color: "#eab308"},
	{Name: "Servicios", Type: model.TypeExpense, Icon: "💡", Color: "#84cc16"},
	{Name: "Entretenimiento", Type: model.TypeExpense, Icon: "🎬", Color: "#22c55e"},
	{Name: "Salud", Type: model.TypeExpense, Icon: "🩺", Color: "#14b8a6"},
	{Name: "Salario", Type: model.TypeIncome, Icon: "💰", Color: "#06b6d4"},
	{Name: "Freelance", Type: model.TypeIncome, Icon: "💼", Color: "#3b82f6"},
	{Name: "Inversiones", Type: model.TypeIncome, Icon: "📈", Color: "#6366f1"},
	{Name: "Regalos", Type: model.TypeIncome, Icon: "🎁", Color: "#8b5cf6"},
	{Name: "Reembolsos", Type: model.TypeIncome, Icon: "💸", Color: "#a855f7"},
	{Name: "Otros Ingresos", Type: model.TypeIncome, Icon: "📦", Color: "#ec4899"},
}
