package vsgsync

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wingedonezero/Video-Sync-GUI-sub002/internal/container"
)

// probeCommand runs the container probe on a single file for ad-hoc
// diagnostics, without running the rest of the pipeline.
func probeCommand(state *appState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "probe [file]",
		Short: "Inspect a container's tracks and delays via mkvmerge -J",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prober := &container.Prober{MkvmergePath: state.settings.Tools.Mkvmerge}
			result, err := prober.Probe(context.Background(), args[0])
			if err != nil {
				return err
			}

			fmt.Printf("duration_ms: %d\n", result.DurationMs)
			for _, t := range result.Tracks {
				fmt.Printf("  track %-2d type=%-10s codec=%-20s lang=%-5s default=%-5v forced=%-5v delay_ms=%d\n",
					t.ID, t.Type, t.CodecID, t.Language, t.Default, t.Forced, t.ContainerDelayMs)
			}
			return nil
		},
	}
	cmd.SilenceUsage = true
	return cmd
}
