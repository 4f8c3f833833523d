package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/adriaviles2711/finanzaApp/internal/cli"
	"github.com/adriaviles2711/finanzaApp/internal/common"
)

func syncCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Push queued changes to the remote now",
		Long: `Drain the pending operation queue against the configured remote.
Normally the queue drains in the background after each change; this
forces a pass, which is useful after working offline.`,
		RunE: runSync,
	}
	cmd.Flags().Bool("status", false, "only show queue depth, do not sync")
	cmd.Flags().Bool("watch", false, "stay running and drain the queue on a schedule")
	return cmd
}

func runSync(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	pending, err := a.store.PendingOperations(ctx)
	if err != nil {
		return err
	}

	if statusOnly, _ := cmd.Flags().GetBool("status"); statusOnly {
		if len(pending) == 0 {
			fmt.Println(cli.FormatSuccess("Queue is empty, everything synced"))
		} else {
			fmt.Println(cli.FormatInfo(fmt.Sprintf("%d operations waiting to sync", len(pending))))
		}
		return nil
	}

	if watch, _ := cmd.Flags().GetBool("watch"); watch {
		return runSyncWatch(ctx, a)
	}

	if len(pending) == 0 {
		fmt.Println(cli.FormatSuccess("Nothing to sync"))
		return nil
	}
	if !a.engine.Online() {
		return fmt.Errorf("%w: %d operations stay queued until a remote is configured", common.ErrOffline, len(pending))
	}

	fmt.Println(cli.FormatInfo(fmt.Sprintf("%s Syncing %d operations...", cli.SyncIcon, len(pending))))
	if err := a.manager.Sync(ctx); err != nil {
		return err
	}

	remaining, err := a.store.PendingOperations(ctx)
	if err != nil {
		return err
	}
	if len(remaining) > 0 {
		fmt.Println(cli.FormatWarning(fmt.Sprintf("%d operations failed and stay queued", len(remaining))))
		return nil
	}
	fmt.Println(cli.FormatSuccess("All changes synced"))
	return nil
}

// runSyncWatch keeps the process alive and lets the engine's periodic
// trigger pick up queue entries stranded by earlier failures.
func runSyncWatch(ctx context.Context, a *app) error {
	if !a.engine.Online() {
		return fmt.Errorf("%w: watch mode needs a configured remote", common.ErrOffline)
	}

	if err := a.manager.Sync(ctx); err != nil {
		return err
	}
	if err := a.engine.StartPeriodic(); err != nil {
		return err
	}

	fmt.Println(cli.FormatInfo(fmt.Sprintf("%s Watching the sync queue, Ctrl+C to stop", cli.SyncIcon)))
	<-ctx.Done()
	return nil
}
