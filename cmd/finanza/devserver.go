package main

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/adriaviles2711/finanzaApp/internal/cli"
	"github.com/adriaviles2711/finanzaApp/internal/devserver"
)

func devServerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dev-server",
		Short: "Run an in-memory backend for local development",
		Long: `Run a local stand-in for the hosted backend. It keeps everything in
memory and speaks the same REST dialect, so the sync loop can be tried
end to end:

  finanza dev-server --addr :8090 &
  FINANZA_REMOTE_URL=http://localhost:8090 finanza sync`,
		RunE: runDevServer,
	}
	cmd.Flags().String("addr", ":8090", "listen address")
	return cmd
}

func runDevServer(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	addr, _ := cmd.Flags().GetString("addr")

	server := &http.Server{
		Addr:              addr,
		Handler:           devserver.New().Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		slog.Info("dev server listening", "addr", addr)
		errChan <- server.ListenAndServe()
	}()

	fmt.Println(cli.FormatInfo(fmt.Sprintf("Dev backend on %s (in-memory, state is lost on exit)", addr)))

	select {
	case <-ctx.Done():
		slog.Info("shutting down dev server")
		return server.Close()
	case err := <-errChan:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
