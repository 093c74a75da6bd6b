// Package vsgsync wires the vsg-sync command tree: analyze, mux, probe,
// serve, backup, and version. Each subcommand shares one appState, filled
// in by the root command's PersistentPreRunE once flags have been parsed.
package vsgsync

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/wingedonezero/Video-Sync-GUI-sub002/internal/conf"
	"github.com/wingedonezero/Video-Sync-GUI-sub002/internal/datastore"
	"github.com/wingedonezero/Video-Sync-GUI-sub002/internal/logging"
	"github.com/wingedonezero/Video-Sync-GUI-sub002/internal/metrics"
)

// appState is the shared, lazily-populated state every subcommand closes
// over. It's filled in by the root command's PersistentPreRunE, which
// always runs before a subcommand's own RunE.
type appState struct {
	settings *conf.Settings
	logger   *slog.Logger
	metrics  *metrics.Metrics
	store    *datastore.SQLiteStore
}

// RootCommand builds the vsg-sync cobra command tree. version, buildDate,
// and systemID are build-time metadata stamped in via -ldflags; they may
// be empty in a dev build.
func RootCommand(version, buildDate, systemID string) *cobra.Command {
	v := viper.New()
	state := &appState{}

	rootCmd := &cobra.Command{
		Use:   "vsg-sync",
		Short: "Measure inter-source audio offsets and mux synchronized tracks",
	}

	if err := setupFlags(rootCmd, v); err != nil {
		fmt.Printf("error setting up flags: %v\n", err)
	}

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" {
			return nil
		}

		settings, err := conf.Load(v)
		if err != nil {
			return fmt.Errorf("load settings: %w", err)
		}
		state.settings = settings

		logging.Init(settings.Main.Log.Path)
		if settings.Debug {
			logging.SetLevel(slog.LevelDebug)
		}
		state.logger = logging.Structured().With("service", "vsg-sync")

		m, err := metrics.New()
		if err != nil {
			return fmt.Errorf("init metrics: %w", err)
		}
		metrics.Init(m)
		state.metrics = m

		store := &datastore.SQLiteStore{Settings: settings}
		if err := store.Open(); err != nil {
			return fmt.Errorf("open datastore: %w", err)
		}
		state.store = store

		return nil
	}

	rootCmd.AddCommand(
		analyzeCommand(state),
		muxCommand(state),
		probeCommand(state),
		serveCommand(state),
		backupCommand(state),
		versionCommand(version, buildDate, systemID),
	)

	return rootCmd
}

// setupFlags defines the persistent flags shared by every subcommand and
// binds them to v, so conf.Load's viper.Unmarshal sees flag overrides
// ahead of the embedded config.yaml defaults.
func setupFlags(rootCmd *cobra.Command, v *viper.Viper) error {
	flags := rootCmd.PersistentFlags()

	flags.Bool("debug", false, "Enable debug logging")
	flags.String("tools.ffmpeg", "", "Path to the ffmpeg binary")
	flags.String("tools.ffprobe", "", "Path to the ffprobe binary")
	flags.String("tools.mkvmerge", "", "Path to the mkvmerge binary")
	flags.String("tools.mkvextract", "", "Path to the mkvextract binary")
	flags.String("store.path", "", "Path to the job history SQLite database")
	flags.String("main.log.path", "", "Path to the process log file")

	if err := v.BindPFlags(flags); err != nil {
		return fmt.Errorf("bind persistent flags: %w", err)
	}

	return nil
}
