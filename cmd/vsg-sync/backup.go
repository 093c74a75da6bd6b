package vsgsync

import (
	"fmt"

	"github.com/spf13/cobra"
)

// backupCommand writes a timestamped copy of the job history database
// alongside the original.
func backupCommand(state *appState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Back up the job history database",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := state.store.Backup(); err != nil {
				return fmt.Errorf("backup failed: %w", err)
			}
			fmt.Println("backup completed successfully")
			return nil
		},
	}
	cmd.SilenceUsage = true
	return cmd
}
