package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/adriaviles2711/finanzaApp/internal/cli"
)

func wipeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wipe",
		Short: "Erase all local data for the configured user",
		Long: `Erase the local mirror for the configured user: transactions,
categories, budgets, goals, profile and the whole pending queue. Remote
data is untouched. This cannot be undone.`,
		RunE: runWipe,
	}
	cmd.Flags().Bool("force", false, "skip confirmation")
	return cmd
}

func runWipe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	force, _ := cmd.Flags().GetBool("force")
	if !force {
		fmt.Println(cli.FormatWarning("This erases all local data, including unsynced changes."))
		fmt.Print("Type 'yes' to continue: ")
		var answer string
		if _, err := fmt.Scanln(&answer); err != nil || answer != "yes" {
			fmt.Println(cli.FormatInfo("Aborted"))
			return nil
		}
	}

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	if err := a.manager.ClearUserData(ctx); err != nil {
		return err
	}

	fmt.Println(cli.FormatSuccess("Local data erased"))
	return nil
}
