// Package mux builds a MergePlan from a user-specified source layout and
// renders it as an mkvmerge command-line token stream.
package mux

// TrackType values a plan item can carry.
const (
	TrackVideo    = "video"
	TrackAudio    = "audio"
	TrackSubtitle = "subtitles"
)

// TrackProps is the subset of a source track's probed properties relevant
// to mux option construction.
type TrackProps struct {
	CodecID string
	Lang    string
	Name    string
}

// LayoutEntry is one line of the user-specified output layout: which
// track from which source to include, and how to present it.
type LayoutEntry struct {
	Source          string
	TrackID         int
	TrackType       string
	Props           TrackProps
	CustomLang      string
	CustomName      string
	IsDefault       bool
	IsForcedDisplay bool
	SyncTo          string // source key this item's delay is resolved against
	SourcePath      string
	ExtractedPath   string // if non-empty, used instead of SourcePath
}

// PlanItem is one resolved entry in a MergePlan: a layout entry plus its
// computed delay.
type PlanItem struct {
	LayoutEntry
	ContainerDelayMsRaw float64
}

// MergePlan is the fully resolved, ordered set of tracks and delays ready
// for mkvmerge invocation.
type MergePlan struct {
	Items        []PlanItem
	ChaptersXML  string
	Attachments  []string
}

// DelayInputs supplies the per-source/per-track delay figures the plan
// builder needs to compute each item's container_delay_ms_raw, per the
// formulas in the build-time contract.
type DelayInputs struct {
	PrimarySource        string
	VideoDelayMs         float64            // primary source's video container delay
	ContainerDelayMsByTrack map[int]float64 // primary source's per-track container delay, keyed by track ID
	RawGlobalShiftMs      float64
	RawSourceDelaysMs     map[string]float64 // non-primary source key -> already-shifted raw delay
}

// BuildPlan resolves container_delay_ms_raw for every layout entry and
// returns the items in the same order as layout.
func BuildPlan(layout []LayoutEntry, chaptersXML string, attachments []string, inputs DelayInputs) MergePlan {
	items := make([]PlanItem, len(layout))
	for i, entry := range layout {
		items[i] = PlanItem{
			LayoutEntry:         entry,
			ContainerDelayMsRaw: resolveDelay(entry, inputs),
		}
	}
	return MergePlan{Items: items, ChaptersXML: chaptersXML, Attachments: attachments}
}

func resolveDelay(entry LayoutEntry, inputs DelayInputs) float64 {
	if entry.Source == inputs.PrimarySource {
		switch entry.TrackType {
		case TrackVideo:
			return inputs.RawGlobalShiftMs
		case TrackAudio:
			containerDelay := inputs.ContainerDelayMsByTrack[entry.TrackID]
			return (containerDelay - inputs.VideoDelayMs) + inputs.RawGlobalShiftMs
		default: // subtitles
			return inputs.RawGlobalShiftMs
		}
	}
	return inputs.RawSourceDelaysMs[entry.SyncTo]
}
