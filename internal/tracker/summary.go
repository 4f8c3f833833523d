package tracker

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/adriaviles2711/finanzaApp/internal/common"
	"github.com/adriaviles2711/finanzaApp/internal/model"
	"github.com/adriaviles2711/finanzaApp/internal/service"
)

// MonthSummary totals one calendar month: income, expenses and balance.
// It reads the local mirror only, so it works offline.
func (m *Manager) MonthSummary(ctx context.Context, month, year int) (*service.MonthSummary, error) {
	userID, err := m.requireUser()
	if err != nil {
		return nil, err
	}
	if month < 1 || month > 12 {
		return nil, common.ValidationError("month %d out of range", month)
	}

	from, to := monthBounds(month, year)
	txns, err := m.store.ListTransactions(ctx, userID, service.TransactionFilter{From: &from, To: &to})
	if err != nil {
		return nil, err
	}

	summary := &service.MonthSummary{Month: month, Year: year}
	for _, txn := range txns {
		switch txn.Type {
		case model.TypeIncome:
			summary.Income = summary.Income.Add(txn.Amount)
		case model.TypeExpense:
			summary.Expenses = summary.Expenses.Add(txn.Amount)
		}
		summary.Transactions++
	}
	summary.Balance = summary.Income.Sub(summary.Expenses)
	return summary, nil
}

// ExpensesByCategory breaks one month's expenses down per category,
// largest total first. Transactions whose category was deleted are grouped
// under an unnamed slice so the totals still add up.
func (m *Manager) ExpensesByCategory(ctx context.Context, month, year int) ([]service.CategoryExpense, error) {
	userID, err := m.requireUser()
	if err != nil {
		return nil, err
	}
	if month < 1 || month > 12 {
		return nil, common.ValidationError("month %d out of range", month)
	}

	from, to := monthBounds(month, year)
	txns, err := m.store.ListTransactions(ctx, userID, service.TransactionFilter{
		Type: model.TypeExpense,
		From: &from,
		To:   &to,
	})
	if err != nil {
		return nil, err
	}

	cats, err := m.store.ListCategories(ctx, userID, "")
	if err != nil {
		return nil, err
	}
	byID := make(map[string]model.Category, len(cats))
	for _, cat := range cats {
		byID[cat.ID] = cat
	}

	totals := make(map[string]*service.CategoryExpense)
	for _, txn := range txns {
		entry, ok := totals[txn.CategoryID]
		if !ok {
			entry = &service.CategoryExpense{CategoryID: txn.CategoryID}
			if cat, found := byID[txn.CategoryID]; found {
				entry.Name = cat.Name
				entry.Icon = cat.Icon
				entry.Color = cat.Color
			}
			totals[txn.CategoryID] = entry
		}
		entry.Total = entry.Total.Add(txn.Amount)
		entry.Count++
	}

	result := make([]service.CategoryExpense, 0, len(totals))
	for _, entry := range totals {
		result = append(result, *entry)
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].Total.Equal(result[j].Total) {
			return result[i].Total.GreaterThan(result[j].Total)
		}
		return result[i].Name < result[j].Name
	})
	return result, nil
}

// MonthlyTrend returns summaries for the last n months ending at the given
// month, oldest first.
func (m *Manager) MonthlyTrend(ctx context.Context, month, year, months int) ([]service.MonthSummary, error) {
	if months <= 0 {
		return nil, common.ValidationError("months must be positive")
	}
	if month < 1 || month > 12 {
		return nil, common.ValidationError("month %d out of range", month)
	}

	trend := make([]service.MonthSummary, 0, months)
	cm, cy := month, year
	for i := 0; i < months; i++ {
		summary, err := m.MonthSummary(ctx, cm, cy)
		if err != nil {
			return nil, err
		}
		trend = append(trend, *summary)
		cm--
		if cm == 0 {
			cm = 12
			cy--
		}
	}
	// Walked backwards; present oldest first.
	for i, j := 0, len(trend)-1; i < j; i, j = i+1, j-1 {
		trend[i], trend[j] = trend[j], trend[i]
	}
	return trend, nil
}

// Balance returns the all-time income minus expenses for the active user.
func (m *Manager) Balance(ctx context.Context) (decimal.Decimal, error) {
	userID, err := m.requireUser()
	if err != nil {
		return decimal.Zero, err
	}

	txns, err := m.store.ListTransactions(ctx, userID, service.TransactionFilter{})
	if err != nil {
		return decimal.Zero, err
	}

	balance := decimal.Zero
	for _, txn := range txns {
		switch txn.Type {
		case model.TypeIncome:
			balance = balance.Add(txn.Amount)
		case model.TypeExpense:
			balance = balance.Sub(txn.Amount)
		}
	}
	return balance, nil
}

func monthBounds(month, year int) (model.Date, model.Date) {
	from := model.NewDate(year, time.Month(month), 1)
	to := from.AddDays(daysInMonth(month, year) - 1)
	return from, to
}

func daysInMonth(month, year int) int {
	// Day zero of the next month is the last day of this one.
	return time.Date(year, time.Month(month+1), 0, 0, 0, 0, 0, time.UTC).Day()
}
