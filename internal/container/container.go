// Package container probes a media file's container-level track metadata
// (container delays, codec, language) via mkvmerge.
package container

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"os/exec"

	"github.com/wingedonezero/Video-Sync-GUI-sub002/internal/vsgerrors"
)

// TrackType values recognized in mkvmerge -J output.
const (
	TrackVideo    = "video"
	TrackAudio    = "audio"
	TrackSubtitle = "subtitles"
)

// Track describes one track's identity and container delay.
type Track struct {
	ID             int
	Type           string
	CodecID        string
	Language       string
	Name           string
	Default        bool
	Forced         bool
	Enabled        bool
	ContainerDelayMs int64
}

// ProbeResult is the parsed container metadata for one source file.
type ProbeResult struct {
	DurationMs int64
	Tracks     []Track
}

type mkvmergeJSON struct {
	Container struct {
		Properties struct {
			Duration int64 `json:"duration"`
		} `json:"properties"`
	} `json:"container"`
	Tracks []mkvmergeTrack `json:"tracks"`
}

type mkvmergeTrack struct {
	ID         int    `json:"id"`
	Type       string `json:"type"`
	Properties struct {
		CodecID           string `json:"codec_id"`
		Language          string `json:"language"`
		TrackName         string `json:"track_name"`
		DefaultTrack      bool   `json:"default_track"`
		ForcedTrack       bool   `json:"forced_track"`
		EnabledTrack      bool   `json:"enabled_track"`
		MinimumTimestamp  *int64 `json:"minimum_timestamp"`
	} `json:"properties"`
}

// Prober runs mkvmerge -J and parses its output.
type Prober struct {
	MkvmergePath string
}

// NewProber returns a Prober bound to the given mkvmerge binary path.
func NewProber(mkvmergePath string) *Prober {
	return &Prober{MkvmergePath: mkvmergePath}
}

// Probe reads track metadata from path.
func (p *Prober) Probe(ctx context.Context, path string) (ProbeResult, error) {
	if _, err := os.Stat(path); err != nil {
		return ProbeResult{}, vsgerrors.New(err).
			Kind(vsgerrors.SourceNotFound).
			Context("path", path).
			Build()
	}

	cmd := exec.CommandContext(ctx, p.MkvmergePath, "-J", path)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		exitCode := -1
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		}
		return ProbeResult{}, vsgerrors.New(err).
			Kind(vsgerrors.ExternalToolFailed).
			Context("tool", "mkvmerge").
			Context("exit_code", exitCode).
			Context("stderr_tail", stderr.String()).
			Context("path", path).
			Build()
	}

	var parsed mkvmergeJSON
	if err := json.Unmarshal(stdout.Bytes(), &parsed); err != nil {
		return ProbeResult{}, vsgerrors.New(err).
			Kind(vsgerrors.ParseError).
			Context("tool", "mkvmerge").
			Context("path", path).
			Build()
	}

	result := ProbeResult{
		DurationMs: RoundNsToMs(parsed.Container.Properties.Duration),
	}

	for _, t := range parsed.Tracks {
		delayMs := int64(0)
		if t.Type != TrackSubtitle && t.Properties.MinimumTimestamp != nil {
			delayMs = RoundNsToMs(*t.Properties.MinimumTimestamp)
		}

		result.Tracks = append(result.Tracks, Track{
			ID:               t.ID,
			Type:             t.Type,
			CodecID:          t.Properties.CodecID,
			Language:         t.Properties.Language,
			Name:             t.Properties.TrackName,
			Default:          t.Properties.DefaultTrack,
			Forced:           t.Properties.ForcedTrack,
			Enabled:          t.Properties.EnabledTrack,
			ContainerDelayMs: delayMs,
		})
	}

	return result, nil
}

// VideoTrack returns the first video track, if any.
func (r ProbeResult) VideoTrack() (Track, bool) {
	for _, t := range r.Tracks {
		if t.Type == TrackVideo {
			return t, true
		}
	}
	return Track{}, false
}

// RoundNsToMs converts a nanosecond timestamp to milliseconds using
// round-to-nearest, away-from-zero on ties (e.g. -1_001_825_000ns ->
// -1002ms).
func RoundNsToMs(ns int64) int64 {
	if ns >= 0 {
		return (ns + 500_000) / 1_000_000
	}
	return -((-ns + 500_000) / 1_000_000)
}
