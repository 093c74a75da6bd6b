package mux_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wingedonezero/Video-Sync-GUI-sub002/internal/container"
	"github.com/wingedonezero/Video-Sync-GUI-sub002/internal/mux"
)

func TestDefaultLayout_KeepsOnlyPrimaryVideoTrack(t *testing.T) {
	probes := map[string]container.ProbeResult{
		"Source 1": {Tracks: []container.Track{
			{ID: 0, Type: container.TrackVideo, Default: true},
			{ID: 1, Type: container.TrackAudio, Default: true, Language: "eng"},
		}},
		"Source 2": {Tracks: []container.Track{
			{ID: 0, Type: container.TrackVideo, Default: true},
			{ID: 1, Type: container.TrackAudio, Default: true, Language: "jpn"},
		}},
	}

	layout := mux.DefaultLayout("Source 1", []string{"Source 1", "Source 2"}, probes)

	videoCount := 0
	for _, entry := range layout {
		if entry.TrackType == mux.TrackVideo {
			videoCount++
			assert.Equal(t, "Source 1", entry.Source)
		}
	}
	assert.Equal(t, 1, videoCount)
	assert.Len(t, layout, 3) // 1 video + 2 audio
}

func TestDefaultLayout_AtMostOneDefaultAudioPerLanguage(t *testing.T) {
	probes := map[string]container.ProbeResult{
		"Source 1": {Tracks: []container.Track{
			{ID: 0, Type: container.TrackVideo, Default: true},
			{ID: 1, Type: container.TrackAudio, Default: true, Language: "eng"},
		}},
		"Source 2": {Tracks: []container.Track{
			{ID: 0, Type: container.TrackAudio, Default: true, Language: "eng"},
		}},
	}

	layout := mux.DefaultLayout("Source 1", []string{"Source 1", "Source 2"}, probes)

	defaultsByLang := map[string]int{}
	for _, entry := range layout {
		if entry.TrackType == mux.TrackAudio && entry.IsDefault {
			defaultsByLang[entry.Props.Lang]++
		}
	}
	assert.Equal(t, 1, defaultsByLang["eng"])
}

func TestDefaultLayout_SubtitleForcedFlagCarriesThrough(t *testing.T) {
	probes := map[string]container.ProbeResult{
		"Source 1": {Tracks: []container.Track{
			{ID: 0, Type: container.TrackVideo},
			{ID: 2, Type: container.TrackSubtitle, Forced: true, Language: "eng"},
		}},
	}

	layout := mux.DefaultLayout("Source 1", []string{"Source 1"}, probes)

	var sub mux.LayoutEntry
	for _, entry := range layout {
		if entry.TrackType == mux.TrackSubtitle {
			sub = entry
		}
	}
	assert.True(t, sub.IsForcedDisplay)
	assert.Equal(t, "Source 1", sub.SyncTo)
}
