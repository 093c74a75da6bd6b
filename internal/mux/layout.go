package mux

import "github.com/wingedonezero/Video-Sync-GUI-sub002/internal/container"

// DefaultLayout builds a layout with the primary source's video track,
// and every source's audio and subtitle tracks synced to themselves.
// Secondary sources' video tracks are dropped — a merge keeps exactly one
// video track, the primary's. Tracks are emitted in sourceOrder, then
// container track-ID order within a source, which fixes the output track
// order absent an explicit user layout.
func DefaultLayout(primarySource string, sourceOrder []string, probes map[string]container.ProbeResult) []LayoutEntry {
	var entries []LayoutEntry
	videoAssigned := false
	defaultAudioLang := map[string]bool{}

	for _, src := range sourceOrder {
		probe, ok := probes[src]
		if !ok {
			continue
		}

		for _, t := range probe.Tracks {
			if t.Type == TrackVideo {
				if src != primarySource || videoAssigned {
					continue
				}
				videoAssigned = true
			}

			entry := LayoutEntry{
				Source:    src,
				TrackID:   t.ID,
				TrackType: t.Type,
				Props: TrackProps{
					CodecID: t.CodecID,
					Lang:    t.Language,
					Name:    t.Name,
				},
				SyncTo: src,
			}

			switch t.Type {
			case TrackVideo:
				entry.IsDefault = true
			case TrackAudio:
				if t.Default && !defaultAudioLang[entry.Props.Lang] {
					entry.IsDefault = true
					defaultAudioLang[entry.Props.Lang] = true
				}
			case TrackSubtitle:
				entry.IsForcedDisplay = t.Forced
			}

			entries = append(entries, entry)
		}
	}

	return entries
}
