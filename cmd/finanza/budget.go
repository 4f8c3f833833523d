package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/adriaviles2711/finanzaApp/internal/cli"
	"github.com/adriaviles2711/finanzaApp/internal/model"
	"github.com/adriaviles2711/finanzaApp/internal/service"
	"github.com/adriaviles2711/finanzaApp/internal/tracker"
)

func budgetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "budget",
		Short: "Manage monthly budgets",
	}
	cmd.AddCommand(budgetSetCmd())
	cmd.AddCommand(budgetListCmd())
	cmd.AddCommand(budgetRmCmd())
	return cmd
}

func budgetSetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set <category> <limit>",
		Short: "Set a category's spending limit for a month",
		Long: `Set the spending limit for a category and month. Setting the same
category and month twice updates the limit in place.`,
		Args: cobra.ExactArgs(2),
		RunE: runBudgetSet,
	}
	cmd.Flags().IntP("month", "m", 0, "month 1-12 (default current)")
	cmd.Flags().IntP("year", "y", 0, "year (default current)")
	return cmd
}

func runBudgetSet(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	limit, err := parseAmount(args[1])
	if err != nil {
		return err
	}

	month, _ := cmd.Flags().GetInt("month")
	year, _ := cmd.Flags().GetInt("year")
	month, year = currentMonth(month, year)

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	categoryID, err := resolveCategory(cmd, a, args[0], model.TypeExpense)
	if err != nil {
		return err
	}

	budget, err := a.manager.SaveBudget(ctx, tracker.NewBudget{
		CategoryID: categoryID,
		Month:      month,
		Year:       year,
		Limit:      limit,
	})
	if err != nil {
		return err
	}

	fmt.Println(cli.FormatSuccess(fmt.Sprintf("Budget for %s set to %s (%02d/%d)",
		args[0], budget.Limit.StringFixed(2), budget.Month, budget.Year)))

	a.flush(ctx)
	return nil
}

func budgetRmCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rm <category>",
		Short: "Remove a category's budget for a month",
		Args:  cobra.ExactArgs(1),
		RunE:  runBudgetRm,
	}
	cmd.Flags().IntP("month", "m", 0, "month 1-12 (default current)")
	cmd.Flags().IntP("year", "y", 0, "year (default current)")
	return cmd
}

func runBudgetRm(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	month, _ := cmd.Flags().GetInt("month")
	year, _ := cmd.Flags().GetInt("year")
	month, year = currentMonth(month, year)

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	categoryID, err := resolveCategory(cmd, a, args[0], model.TypeExpense)
	if err != nil {
		return err
	}

	budgets, err := a.manager.Budgets(ctx, service.BudgetFilter{Month: month, Year: year})
	if err != nil {
		return err
	}
	for _, budget := range budgets {
		if budget.CategoryID != categoryID {
			continue
		}
		if err := a.manager.DeleteBudget(ctx, budget.ID); err != nil {
			return err
		}
		fmt.Println(cli.FormatSuccess(fmt.Sprintf("Budget for %s removed (%02d/%d)",
			args[0], month, year)))
		a.flush(ctx)
		return nil
	}

	fmt.Println(cli.FormatInfo(fmt.Sprintf("No budget for %s in %02d/%d", args[0], month, year)))
	return nil
}

func budgetListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List budgets with current spending",
		RunE:  runBudgetList,
	}
	cmd.Flags().IntP("month", "m", 0, "month 1-12 (default current)")
	cmd.Flags().IntP("year", "y", 0, "year (default current)")
	return cmd
}

func runBudgetList(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	month, _ := cmd.Flags().GetInt("month")
	year, _ := cmd.Flags().GetInt("year")
	month, year = currentMonth(month, year)

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	budgets, err := a.manager.Budgets(ctx, service.BudgetFilter{Month: month, Year: year})
	if err != nil {
		return err
	}
	if len(budgets) == 0 {
		fmt.Println(cli.FormatInfo(fmt.Sprintf("No budgets for %02d/%d", month, year)))
		return nil
	}

	expenses, err := a.manager.ExpensesByCategory(ctx, month, year)
	if err != nil {
		return err
	}
	spentByCategory := make(map[string]string, len(expenses))
	overByCategory := make(map[string]bool, len(expenses))
	for _, entry := range expenses {
		spentByCategory[entry.CategoryID] = entry.Total.StringFixed(2)
	}

	cats, err := a.manager.Categories(ctx, "")
	if err != nil {
		return err
	}
	catNames := make(map[string]string, len(cats))
	for _, cat := range cats {
		catNames[cat.ID] = cat.Icon + " " + cat.Name
	}

	for _, entry := range expenses {
		for _, budget := range budgets {
			if budget.CategoryID == entry.CategoryID && entry.Total.GreaterThan(budget.Limit) {
				overByCategory[entry.CategoryID] = true
			}
		}
	}

	fmt.Println(cli.FormatTitle(fmt.Sprintf("Budgets %02d/%d", month, year)))
	for _, budget := range budgets {
		spent := spentByCategory[budget.CategoryID]
		if spent == "" {
			spent = "0.00"
		}
		line := fmt.Sprintf("%-24s %8s / %8s",
			catNames[budget.CategoryID],
			spent,
			budget.Limit.StringFixed(2))
		if overByCategory[budget.CategoryID] {
			fmt.Println(cli.FormatWarning(line + "  over budget"))
		} else {
			fmt.Println("  " + line)
		}
	}
	return nil
}
