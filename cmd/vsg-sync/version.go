package vsgsync

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wingedonezero/Video-Sync-GUI-sub002/internal/buildinfo"
)

// versionCommand prints build-time metadata. It's excluded from the
// root command's PersistentPreRunE so it works even when no config,
// database, or tool binaries are available.
func versionCommand(version, buildDate, systemID string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			info := buildinfo.NewContext(version, buildDate, systemID)
			fmt.Printf("vsg-sync %s (built %s, system %s)\n", info.Version(), info.BuildDate(), info.SystemID())
			return nil
		},
	}
}
