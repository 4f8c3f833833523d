package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/adriaviles2711/finanzaApp/internal/cli"
	"github.com/adriaviles2711/finanzaApp/internal/model"
	"github.com/adriaviles2711/finanzaApp/internal/service"
	"github.com/adriaviles2711/finanzaApp/internal/tracker"
)

func txCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tx",
		Short: "Manage transactions",
	}
	cmd.AddCommand(txAddCmd())
	cmd.AddCommand(txListCmd())
	cmd.AddCommand(txRemoveCmd())
	return cmd
}

func txAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <amount>",
		Short: "Record a transaction",
		Long: `Record a transaction in the local store. The change syncs to the
remote in the background when one is configured.

Examples:
  # A 12.50 expense in the groceries category
  finanza tx add 12.50 --category Alimentación --note "Lunch"

  # Income dated explicitly
  finanza tx add 2400 --type ingreso --category Salario --date 2026-08-01`,
		Args: cobra.ExactArgs(1),
		RunE: runTxAdd,
	}

	cmd.Flags().StringP("category", "c", "", "category name")
	cmd.Flags().StringP("type", "t", "gasto", "transaction type (gasto, ingreso)")
	cmd.Flags().StringP("date", "d", "", "date (YYYY-MM-DD, default today)")
	cmd.Flags().StringP("note", "n", "", "description")
	return cmd
}

func runTxAdd(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	amount, err := parseAmount(args[0])
	if err != nil {
		return err
	}

	typeFlag, _ := cmd.Flags().GetString("type")
	recordType, err := recordTypeFromFlag(typeFlag)
	if err != nil {
		return err
	}

	dateFlag, _ := cmd.Flags().GetString("date")
	date, err := parseDateFlag(dateFlag)
	if err != nil {
		return err
	}

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	categoryFlag, _ := cmd.Flags().GetString("category")
	categoryID, err := resolveCategory(cmd, a, categoryFlag, recordType)
	if err != nil {
		return err
	}

	note, _ := cmd.Flags().GetString("note")
	txn, err := a.manager.CreateTransaction(ctx, tracker.NewTransaction{
		CategoryID:  categoryID,
		Type:        recordType,
		Amount:      amount,
		Date:        date,
		Description: note,
	})
	if err != nil {
		return err
	}

	style := cli.ExpenseStyle
	if recordType == model.TypeIncome {
		style = cli.IncomeStyle
	}
	fmt.Println(cli.FormatSuccess(fmt.Sprintf("Recorded %s on %s (%s)",
		style.Render(amount.StringFixed(2)), txn.Date, txn.ID[:8])))

	a.flush(ctx)
	return nil
}

func txListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List transactions, newest first",
		RunE:  runTxList,
	}

	cmd.Flags().StringP("type", "t", "", "filter by type (gasto, ingreso)")
	cmd.Flags().String("from", "", "earliest date (YYYY-MM-DD)")
	cmd.Flags().String("to", "", "latest date (YYYY-MM-DD)")
	cmd.Flags().IntP("limit", "l", 20, "maximum rows (0 for all)")
	return cmd
}

func runTxList(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	filter := service.TransactionFilter{}
	if typeFlag, _ := cmd.Flags().GetString("type"); typeFlag != "" {
		recordType, err := recordTypeFromFlag(typeFlag)
		if err != nil {
			return err
		}
		filter.Type = recordType
	}
	if from, _ := cmd.Flags().GetString("from"); from != "" {
		date, err := model.ParseDate(from)
		if err != nil {
			return err
		}
		filter.From = &date
	}
	if to, _ := cmd.Flags().GetString("to"); to != "" {
		date, err := model.ParseDate(to)
		if err != nil {
			return err
		}
		filter.To = &date
	}
	filter.Limit, _ = cmd.Flags().GetInt("limit")

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	txns, err := a.manager.Transactions(ctx, filter)
	if err != nil {
		return err
	}
	if len(txns) == 0 {
		fmt.Println(cli.FormatInfo("No transactions found"))
		return nil
	}

	cats, err := a.manager.Categories(ctx, "")
	if err != nil {
		return err
	}
	catNames := make(map[string]string, len(cats))
	for _, cat := range cats {
		catNames[cat.ID] = cat.Icon + " " + cat.Name
	}

	fmt.Println(cli.FormatTitle("Transactions"))
	for _, txn := range txns {
		amount := txn.Amount.StringFixed(2)
		if txn.Type == model.TypeExpense {
			amount = cli.ExpenseStyle.Render("-" + amount)
		} else {
			amount = cli.IncomeStyle.Render("+" + amount)
		}

		pending := ""
		if txn.SyncStatus == model.SyncPending {
			pending = cli.SubtleStyle.Render(" (pending sync)")
		}

		fmt.Printf("%s  %s  %10s  %s  %s%s\n",
			cli.SubtleStyle.Render(txn.ID[:8]),
			txn.Date,
			amount,
			catNames[txn.CategoryID],
			txn.Description,
			pending)
	}
	return nil
}

func txRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			if err := a.manager.DeleteTransaction(ctx, args[0]); err != nil {
				return err
			}
			fmt.Println(cli.FormatSuccess("Transaction deleted"))

			a.flush(ctx)
			return nil
		},
	}
}

// recordTypeFromFlag accepts both Spanish and English type labels.
func recordTypeFromFlag(s string) (model.RecordType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "gasto", "expense":
		return model.TypeExpense, nil
	case "ingreso", "income":
		return model.TypeIncome, nil
	default:
		return "", fmt.Errorf("invalid type %q (want gasto or ingreso)", s)
	}
}

// resolveCategory maps a category name flag to its id. Matching is
// case-insensitive within the requested type.
func resolveCategory(cmd *cobra.Command, a *app, name string, recordType model.RecordType) (string, error) {
	ctx := cmd.Context()

	cats, err := a.manager.Categories(ctx, recordType)
	if err != nil {
		return "", err
	}
	if name == "" {
		if len(cats) == 0 {
			return "", fmt.Errorf("no categories exist; create one with 'finanza categories add'")
		}
		// Last one sorts late alphabetically, which favors catch-alls.
		return cats[len(cats)-1].ID, nil
	}

	for _, cat := range cats {
		if strings.EqualFold(cat.Name, name) {
			return cat.ID, nil
		}
	}
	return "", fmt.Errorf("no %s category named %q", recordType, name)
}
