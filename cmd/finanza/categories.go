package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/adriaviles2711/finanzaApp/internal/cli"
	"github.com/adriaviles2711/finanzaApp/internal/model"
	"github.com/adriaviles2711/finanzaApp/internal/tracker"
)

func categoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "categories",
		Aliases: []string{"cat"},
		Short:   "Manage categories",
	}
	cmd.AddCommand(categoriesListCmd())
	cmd.AddCommand(categoriesAddCmd())
	cmd.AddCommand(categoriesRemoveCmd())
	return cmd
}

func categoriesListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List categories",
		RunE:  runCategoriesList,
	}
	cmd.Flags().StringP("type", "t", "", "filter by type (gasto, ingreso)")
	return cmd
}

func runCategoriesList(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	var recordType model.RecordType
	if typeFlag, _ := cmd.Flags().GetString("type"); typeFlag != "" {
		parsed, err := recordTypeFromFlag(typeFlag)
		if err != nil {
			return err
		}
		recordType = parsed
	}

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	cats, err := a.manager.Categories(ctx, recordType)
	if err != nil {
		return err
	}
	if len(cats) == 0 {
		fmt.Println(cli.FormatInfo("No categories found"))
		return nil
	}

	fmt.Println(cli.FormatTitle("Categories"))
	for _, cat := range cats {
		label := "gasto"
		if cat.Type == model.TypeIncome {
			label = "ingreso"
		}
		fmt.Printf("%s  %s %-20s %s\n",
			cli.SubtleStyle.Render(cat.ID[:8]),
			cat.Icon,
			cat.Name,
			cli.SubtleStyle.Render(label))
	}
	return nil
}

func categoriesAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Create a category",
		Args:  cobra.ExactArgs(1),
		RunE:  runCategoriesAdd,
	}
	cmd.Flags().StringP("type", "t", "gasto", "category type (gasto, ingreso)")
	cmd.Flags().String("icon", "📁", "emoji icon")
	cmd.Flags().String("color", "#6b7280", "hex color")
	return cmd
}

func runCategoriesAdd(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	typeFlag, _ := cmd.Flags().GetString("type")
	recordType, err := recordTypeFromFlag(typeFlag)
	if err != nil {
		return err
	}
	icon, _ := cmd.Flags().GetString("icon")
	color, _ := cmd.Flags().GetString("color")

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	cat, err := a.manager.CreateCategory(ctx, tracker.NewCategory{
		Name:  args[0],
		Type:  recordType,
		Icon:  icon,
		Color: color,
	})
	if err != nil {
		return err
	}

	fmt.Println(cli.FormatSuccess(fmt.Sprintf("Created category %s %s (%s)",
		cat.Icon, cat.Name, cat.ID[:8])))

	a.flush(ctx)
	return nil
}

func categoriesRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			if err := a.manager.DeleteCategory(ctx, args[0]); err != nil {
				return err
			}
			fmt.Println(cli.FormatSuccess("Category deleted"))

			a.flush(ctx)
			return nil
		},
	}
}
