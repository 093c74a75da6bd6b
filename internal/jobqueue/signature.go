package jobqueue

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"

	"github.com/wingedonezero/Video-Sync-GUI-sub002/internal/container"
)

// TrackSignatureInfo is the subset of a probed track relevant to layout
// compatibility comparison.
type TrackSignatureInfo struct {
	ID       int
	Type     string // container.TrackVideo/TrackAudio/TrackSubtitle
	CodecID  string
	Language string
}

// TrackStructureEntry is one track's identity within a structure
// signature.
type TrackStructureEntry struct {
	ID      int    `json:"id"`
	CodecID string `json:"codec_id"`
	Lang    string `json:"lang"`
}

// SourceStructure groups a source's tracks by type for signature hashing.
type SourceStructure struct {
	Video     []TrackStructureEntry `json:"video"`
	Audio     []TrackStructureEntry `json:"audio"`
	Subtitles []TrackStructureEntry `json:"subtitles"`
}

// StructureSignature is an exact-match fingerprint of every source's
// track layout: which track IDs, codecs, and languages are present and
// in what order. Two jobs with matching hashes have interchangeable
// layouts.
type StructureSignature struct {
	Structure map[string]SourceStructure
	Hash      string
}

// FromProbeResults converts probed container metadata into the track
// signature info GenerateStructureSignature consumes.
func FromProbeResults(results map[string]container.ProbeResult) map[string][]TrackSignatureInfo {
	out := make(map[string][]TrackSignatureInfo, len(results))
	for source, result := range results {
		infos := make([]TrackSignatureInfo, len(result.Tracks))
		for i, t := range result.Tracks {
			lang := t.Language
			if lang == "" {
				lang = "und"
			}
			infos[i] = TrackSignatureInfo{ID: t.ID, Type: t.Type, CodecID: t.CodecID, Language: lang}
		}
		out[source] = infos
	}
	return out
}

// GenerateStructureSignature builds a StructureSignature from per-source
// track info, processing sources in sorted key order so the hash is
// deterministic regardless of map iteration order.
func GenerateStructureSignature(trackInfo map[string][]TrackSignatureInfo) StructureSignature {
	structure := make(map[string]SourceStructure, len(trackInfo))

	sources := make([]string, 0, len(trackInfo))
	for source := range trackInfo {
		sources = append(sources, source)
	}
	sort.Strings(sources)

	for _, source := range sources {
		var s SourceStructure
		for _, track := range trackInfo[source] {
			entry := TrackStructureEntry{ID: track.ID, CodecID: track.CodecID, Lang: track.Language}
			switch track.Type {
			case container.TrackVideo:
				s.Video = append(s.Video, entry)
			case container.TrackAudio:
				s.Audio = append(s.Audio, entry)
			case container.TrackSubtitle:
				s.Subtitles = append(s.Subtitles, entry)
			}
		}
		structure[source] = s
	}

	// json.Marshal sorts map keys, so the digest is stable across runs.
	structureJSON, _ := json.Marshal(structure)
	sum := sha256.Sum256(structureJSON)

	return StructureSignature{Structure: structure, Hash: hex.EncodeToString(sum[:])}
}

// Compatible reports whether two structure signatures are interchangeable
// — i.e. a layout built against one can be safely reused on the other.
func Compatible(a, b StructureSignature) bool {
	return a.Hash != "" && a.Hash == b.Hash
}
