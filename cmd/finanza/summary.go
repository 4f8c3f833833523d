package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/adriaviles2711/finanzaApp/internal/cli"
)

func summaryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show a monthly income/expense summary",
		RunE:  runSummary,
	}
	cmd.Flags().IntP("month", "m", 0, "month 1-12 (default current)")
	cmd.Flags().IntP("year", "y", 0, "year (default current)")
	cmd.Flags().Int("trend", 0, "also show a trend over the last N months")
	return cmd
}

func runSummary(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	month, _ := cmd.Flags().GetInt("month")
	year, _ := cmd.Flags().GetInt("year")
	month, year = currentMonth(month, year)

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	summary, err := a.manager.MonthSummary(ctx, month, year)
	if err != nil {
		return err
	}

	balanceStyle := cli.IncomeStyle
	if summary.Balance.IsNegative() {
		balanceStyle = cli.ExpenseStyle
	}
	content := fmt.Sprintf("Income    %s\nExpenses  %s\nBalance   %s\n\n%d transactions",
		cli.IncomeStyle.Render(summary.Income.StringFixed(2)),
		cli.ExpenseStyle.Render(summary.Expenses.StringFixed(2)),
		balanceStyle.Render(summary.Balance.StringFixed(2)),
		summary.Transactions)
	fmt.Println(cli.RenderBox(fmt.Sprintf("%s Summary %02d/%d", cli.ChartIcon, month, year), content))

	expenses, err := a.manager.ExpensesByCategory(ctx, month, year)
	if err != nil {
		return err
	}
	if len(expenses) > 0 {
		fmt.Println(cli.SubtitleStyle.Render("Expenses by category"))
		for _, entry := range expenses {
			name := entry.Name
			if name == "" {
				name = "(uncategorized)"
			}
			fmt.Printf("  %s %-24s %10s  %s\n",
				entry.Icon,
				name,
				entry.Total.StringFixed(2),
				cli.SubtleStyle.Render(fmt.Sprintf("%d tx", entry.Count)))
		}
	}

	trendMonths, _ := cmd.Flags().GetInt("trend")
	if trendMonths > 1 {
		trend, err := a.manager.MonthlyTrend(ctx, month, year, trendMonths)
		if err != nil {
			return err
		}
		fmt.Println()
		fmt.Println(cli.SubtitleStyle.Render(fmt.Sprintf("Last %d months", trendMonths)))
		for _, entry := range trend {
			fmt.Printf("  %02d/%d  income %10s  expenses %10s  balance %10s\n",
				entry.Month, entry.Year,
				entry.Income.StringFixed(2),
				entry.Expenses.StringFixed(2),
				entry.Balance.StringFixed(2))
		}
	}

	return nil
}
