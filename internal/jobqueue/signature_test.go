package jobqueue_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wingedonezero/Video-Sync-GUI-sub002/internal/container"
	"github.com/wingedonezero/Video-Sync-GUI-sub002/internal/jobqueue"
)

func twoSourceTrackInfo() map[string][]jobqueue.TrackSignatureInfo {
	return map[string][]jobqueue.TrackSignatureInfo{
		"Source 1": {
			{ID: 0, Type: "video", CodecID: "V_MPEG4/ISO/AVC", Language: "und"},
			{ID: 1, Type: "audio", CodecID: "A_AC3", Language: "eng"},
		},
		"Source 2": {
			{ID: 0, Type: "video", CodecID: "V_MPEG4/ISO/AVC", Language: "und"},
			{ID: 1, Type: "audio", CodecID: "A_AC3", Language: "jpn"},
		},
	}
}

func TestGenerateStructureSignature_HashMatchesForIdenticalStructures(t *testing.T) {
	sig1 := jobqueue.GenerateStructureSignature(twoSourceTrackInfo())
	sig2 := jobqueue.GenerateStructureSignature(twoSourceTrackInfo())

	assert.NotEmpty(t, sig1.Hash)
	assert.Equal(t, sig1.Hash, sig2.Hash)
	assert.True(t, jobqueue.Compatible(sig1, sig2))
}

func TestGenerateStructureSignature_HashDiffersWhenLanguageChanges(t *testing.T) {
	base := twoSourceTrackInfo()
	sig1 := jobqueue.GenerateStructureSignature(base)

	changed := twoSourceTrackInfo()
	changed["Source 2"][1].Language = "fre"
	sig2 := jobqueue.GenerateStructureSignature(changed)

	assert.NotEqual(t, sig1.Hash, sig2.Hash)
	assert.False(t, jobqueue.Compatible(sig1, sig2))
}

func TestGenerateStructureSignature_GroupsTracksByType(t *testing.T) {
	sig := jobqueue.GenerateStructureSignature(twoSourceTrackInfo())

	s1 := sig.Structure["Source 1"]
	assert.Len(t, s1.Video, 1)
	assert.Len(t, s1.Audio, 1)
	assert.Empty(t, s1.Subtitles)
	assert.Equal(t, "A_AC3", s1.Audio[0].CodecID)
}

func TestCompatible_EmptyHashIsNeverCompatible(t *testing.T) {
	var empty jobqueue.StructureSignature
	sig := jobqueue.GenerateStructureSignature(twoSourceTrackInfo())

	assert.False(t, jobqueue.Compatible(empty, empty))
	assert.False(t, jobqueue.Compatible(empty, sig))
}

func TestFromProbeResults_DefaultsMissingLanguageToUnd(t *testing.T) {
	results := map[string]container.ProbeResult{
		"Source 1": {
			Tracks: []container.Track{
				{ID: 0, Type: container.TrackVideo, CodecID: "V_MPEG4/ISO/AVC"},
				{ID: 1, Type: container.TrackAudio, CodecID: "A_AC3", Language: "eng"},
			},
		},
	}

	info := jobqueue.FromProbeResults(results)

	assert.Equal(t, "und", info["Source 1"][0].Language)
	assert.Equal(t, "eng", info["Source 1"][1].Language)
}
