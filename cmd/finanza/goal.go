package main

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/adriaviles2711/finanzaApp/internal/cli"
	"github.com/adriaviles2711/finanzaApp/internal/model"
	"github.com/adriaviles2711/finanzaApp/internal/tracker"
)

func goalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "goal",
		Short: "Manage savings goals",
	}
	cmd.AddCommand(goalAddCmd())
	cmd.AddCommand(goalListCmd())
	cmd.AddCommand(goalFundCmd())
	cmd.AddCommand(goalRemoveCmd())
	return cmd
}

func goalAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <name> <target>",
		Short: "Create a savings goal",
		Args:  cobra.ExactArgs(2),
		RunE:  runGoalAdd,
	}
	cmd.Flags().String("deadline", "", "target date (YYYY-MM-DD)")
	cmd.Flags().String("icon", "🎯", "emoji icon")
	cmd.Flags().String("color", "#6366f1", "hex color")
	return cmd
}

func runGoalAdd(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	target, err := parseAmount(args[1])
	if err != nil {
		return err
	}

	var deadline model.Date
	if deadlineFlag, _ := cmd.Flags().GetString("deadline"); deadlineFlag != "" {
		deadline, err = model.ParseDate(deadlineFlag)
		if err != nil {
			return err
		}
	}
	icon, _ := cmd.Flags().GetString("icon")
	color, _ := cmd.Flags().GetString("color")

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	goal, err := a.manager.CreateGoal(ctx, tracker.NewGoal{
		Name:     args[0],
		Target:   target,
		Deadline: deadline,
		Icon:     icon,
		Color:    color,
	})
	if err != nil {
		return err
	}

	fmt.Println(cli.FormatSuccess(fmt.Sprintf("Created goal %s %s: 0.00 of %s (%s)",
		goal.Icon, goal.Name, goal.Target.StringFixed(2), goal.ID[:8])))

	a.flush(ctx)
	return nil
}

func goalListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List savings goals with progress",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			goals, err := a.manager.Goals(ctx)
			if err != nil {
				return err
			}
			if len(goals) == 0 {
				fmt.Println(cli.FormatInfo("No goals found"))
				return nil
			}

			fmt.Println(cli.FormatTitle("Savings goals"))
			for _, goal := range goals {
				fmt.Printf("%s  %s %-20s %10s / %10s  %s\n",
					cli.SubtleStyle.Render(goal.ID[:8]),
					goal.Icon,
					goal.Name,
					goal.Current.StringFixed(2),
					goal.Target.StringFixed(2),
					cli.SubtleStyle.Render(progressBar(goal)))
			}
			return nil
		},
	}
}

func goalFundCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fund <id> <amount>",
		Short: "Add funds to a goal (negative withdraws)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			amount, err := decimal.NewFromString(args[1])
			if err != nil {
				return fmt.Errorf("invalid amount %q: %w", args[1], err)
			}

			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			goal, err := a.manager.AddGoalFunds(ctx, args[0], amount)
			if err != nil {
				return err
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("%s now at %s of %s",
				goal.Name, goal.Current.StringFixed(2), goal.Target.StringFixed(2))))

			a.flush(ctx)
			return nil
		},
	}
}

func goalRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a goal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			if err := a.manager.DeleteGoal(ctx, args[0]); err != nil {
				return err
			}
			fmt.Println(cli.FormatSuccess("Goal deleted"))

			a.flush(ctx)
			return nil
		},
	}
}

// progressBar renders a ten-cell completion bar.
func progressBar(goal model.Goal) string {
	if !goal.Target.IsPositive() {
		return ""
	}
	ratio, _ := goal.Current.Div(goal.Target).Float64()
	if ratio > 1 {
		ratio = 1
	}
	filled := int(ratio * 10)
	return "[" + strings.Repeat("█", filled) + strings.Repeat("░", 10-filled) + "]"
}
