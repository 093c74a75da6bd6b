package vsgsync

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// analyzeCommand measures inter-source audio offsets without muxing
// anything: probe, analyze, project, then report.
func analyzeCommand(state *appState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Measure inter-source audio offsets without producing a merged file",
	}
	cmd.SilenceUsage = true
	sources := addSourceFlag(cmd)

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		pctx, jobState, cleanup, err := buildJobContext(state.settings, state.logger, *sources)
		if err != nil {
			return err
		}
		defer cleanup()

		p := buildAnalysisPipeline(state.settings)
		result, err := p.Run(context.Background(), pctx, jobState)
		if err != nil {
			return err
		}

		fmt.Printf("steps completed: %v, skipped: %v\n", result.StepsCompleted, result.StepsSkipped)

		if jobState.Projection == nil {
			fmt.Println("no projection computed")
			return nil
		}

		proj := jobState.Projection.Projection
		fmt.Printf("global_shift_ms: %d\n", proj.GlobalShiftMs)
		for source, delayMs := range proj.SourceDelaysMs {
			fmt.Printf("  %-12s delay_ms=%d\n", source, delayMs)
		}

		if jobState.Analysis != nil {
			for source, m := range jobState.Analysis.Metrics {
				fmt.Printf("  %-12s accepted=%d/%d status=%s\n", source, m.AcceptedChunks, m.TotalChunks, m.Status())
			}
		}

		return nil
	}

	return cmd
}
