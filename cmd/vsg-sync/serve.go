package vsgsync

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wingedonezero/Video-Sync-GUI-sub002/internal/statusapi"
)

// serveCommand starts the read-only status API, reporting batch job
// history and Prometheus metrics, until interrupted.
func serveCommand(state *appState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the read-only job status and metrics HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			server := statusapi.New(state.settings, state.store, state.metrics, state.logger)
			server.Start()

			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
			<-sigChan

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return server.Shutdown(ctx)
		},
	}
	cmd.SilenceUsage = true
	return cmd
}
