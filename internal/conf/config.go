// Package conf holds the process-wide Settings tree, loaded from an
// embedded default config.yaml and overridable via environment variables
// and CLI flags.
package conf

import (
	"bytes"
	"embed"
	"fmt"
	"sync"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

//go:embed config.yaml
var configFiles embed.FS

// Settings is the full configuration tree for vsg-sync.
type Settings struct {
	Debug bool

	Main struct {
		Name string
		Log  LogConfig
	}

	Chunk ChunkConfig

	Correlation CorrelationConfig

	Selector SelectorConfig

	Container ContainerConfig

	Pipeline PipelineSettings

	Postprocess PostprocessConfig

	Tools ToolPaths

	Server struct {
		Enabled bool
		Listen  string
	}

	Store struct {
		Path string // sqlite database path for job/analysis history
	}
}

// LogConfig configures logging: Path is the process log file opened by
// logging.Init (not rotated); the size, backup and age limits govern the
// rotating per-job files created by logging.NewJobLogger.
type LogConfig struct {
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// ChunkConfig parameterizes the C2 Chunk Planner.
type ChunkConfig struct {
	Count         int     // number of chunks to analyze
	DurationSecs  float64 // length of each chunk window, in seconds
	ScanStartPct  float64 // where in the timeline scanning may begin, 0-100
	ScanEndPct    float64 // where in the timeline scanning must end, 0-100
}

// CorrelationConfig parameterizes the C3 Correlation Kernel.
type CorrelationConfig struct {
	Method       string // "scc", "gcc-phat", "gcc-scot", "whitened"
	MinMatchPct  float64
	SampleRateHz int
}

// SelectorConfig parameterizes the C6 Delay Selector strategies.
type SelectorConfig struct {
	Mode                   string // "mode", "mode-clustered", "mode-early", "first-stable", "average"
	MinAcceptedChunks      int
	FirstStableMinChunks   int
	FirstStableSkipUnstable bool
	EarlyClusterWindow     int
	EarlyClusterThreshold  int
	ClusterToleranceMs     int64
}

// ContainerConfig parameterizes the C8 Container Probe.
type ContainerConfig struct {
	MkvmergeTimeoutSecs int
}

// PipelineSettings control pipeline-wide behavior (C12 and delay projection).
type PipelineSettings struct {
	SyncMode          string // "positive-only" or "allow-negative"
	StrictChapterShift bool  // use ShiftStrict instead of clamp-to-zero
	SnapChapters       bool
	SnapMode           string // "nearest", "previous", "next"
	WorkerCount        int    // 0 = autodetect from physical cores
}

// PostprocessConfig toggles mkvmerge token-stream behavior.
type PostprocessConfig struct {
	DisableTrackStatsTags   bool
	DisableHeaderCompression bool
	ApplyDialogNormRemoval  bool
}

// ToolPaths locates the external binaries this system shells out to.
type ToolPaths struct {
	FFmpeg    string
	FFprobe   string
	Mkvmerge  string
	Mkvextract string
}

var (
	current     *Settings
	currentOnce sync.Once
	currentMu   sync.RWMutex
)

// Load reads defaults from the embedded config.yaml, then overlays
// environment variables (prefixed VSG_) and any explicit overrides
// already bound to v (e.g. from CLI flags via viper.BindPFlag).
func Load(v *viper.Viper) (*Settings, error) {
	if v == nil {
		v = viper.New()
	}

	v.SetConfigType("yaml")
	data, err := configFiles.ReadFile("config.yaml")
	if err != nil {
		return nil, fmt.Errorf("read embedded default config: %w", err)
	}
	if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("parse embedded default config: %w", err)
	}

	v.SetEnvPrefix("VSG")
	v.AutomaticEnv()

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	currentMu.Lock()
	current = &s
	currentMu.Unlock()

	return &s, nil
}

// Setting returns the process-wide settings snapshot. Load must have been
// called first; in tests, call SetForTest instead.
func Setting() *Settings {
	currentMu.RLock()
	defer currentMu.RUnlock()
	if current == nil {
		panic("conf.Setting called before conf.Load")
	}
	return current
}

// SetForTest installs a settings value for use by package-level helpers in
// tests that don't go through Load.
func SetForTest(s *Settings) {
	currentMu.Lock()
	defer currentMu.Unlock()
	current = s
}

// Snapshot returns a deep copy of s suitable for embedding in a job
// Context, so later mutation of the global Settings doesn't affect a
// job already in flight.
func Snapshot(s *Settings) *Settings {
	cp := *s
	return &cp
}

// DumpYAML renders the effective settings tree as YAML, for operators
// diagnosing which config layer (embedded default, env var, CLI flag)
// a running value actually came from.
func (s *Settings) DumpYAML() ([]byte, error) {
	out, err := yaml.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("marshal settings to yaml: %w", err)
	}
	return out, nil
}
