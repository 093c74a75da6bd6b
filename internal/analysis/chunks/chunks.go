// Package chunks plans the set of audio windows ("chunks") that the
// correlation kernel analyzes for a given source pair.
package chunks

import "github.com/wingedonezero/Video-Sync-GUI-sub002/internal/conf"

// Spec describes a single chunk to extract and correlate.
type Spec struct {
	Index        int
	StartSecs    float64
	DurationSecs float64
}

// Plan computes evenly distributed chunk windows across the usable
// portion of the timeline (between cfg.ScanStartPct and cfg.ScanEndPct
// of the total duration), leaving room at the end of the timeline for
// each chunk's own duration.
//
// Returns an empty slice if the usable duration is non-positive. If
// cfg.Count is 1 or less, a single chunk is placed at the midpoint of
// the usable range.
func Plan(durationSecs float64, cfg conf.ChunkConfig) []Spec {
	startTime := durationSecs * cfg.ScanStartPct / 100.0
	endTime := durationSecs * cfg.ScanEndPct / 100.0
	usableDuration := endTime - startTime - cfg.DurationSecs

	if usableDuration <= 0 {
		return nil
	}

	if cfg.Count <= 1 {
		return []Spec{{
			Index:        0,
			StartSecs:    startTime + usableDuration/2,
			DurationSecs: cfg.DurationSecs,
		}}
	}

	step := usableDuration / float64(cfg.Count-1)
	specs := make([]Spec, cfg.Count)
	for i := range cfg.Count {
		specs[i] = Spec{
			Index:        i,
			StartSecs:    startTime + step*float64(i),
			DurationSecs: cfg.DurationSecs,
		}
	}
	return specs
}
