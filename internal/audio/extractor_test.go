package audio_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wingedonezero/Video-Sync-GUI-sub002/internal/audio"
	"github.com/wingedonezero/Video-Sync-GUI-sub002/internal/vsgerrors"
)

func TestExtract_MissingSourceIsSourceNotFound(t *testing.T) {
	e := audio.NewExtractor("ffmpeg")
	_, err := e.Extract(context.Background(), "/nonexistent/does-not-exist.mkv", 0, 1, 48000, -1)
	require.Error(t, err)
	assert.True(t, vsgerrors.IsKind(err, vsgerrors.SourceNotFound))
}

func TestWindow_IsSilent_EmptyIsSilent(t *testing.T) {
	var w audio.Window
	assert.True(t, w.IsSilent())
}

func TestWindow_IsSilent_ConstantSignalIsSilent(t *testing.T) {
	samples := make([]float64, 1000)
	for i := range samples {
		samples[i] = 0.5
	}
	w := audio.Window{Samples: samples}
	assert.True(t, w.IsSilent())
}

func TestWindow_IsSilent_LoudSignalIsNotSilent(t *testing.T) {
	samples := make([]float64, 1000)
	for i := range samples {
		if i%2 == 0 {
			samples[i] = 1.0
		} else {
			samples[i] = -1.0
		}
	}
	w := audio.Window{Samples: samples}
	assert.False(t, w.IsSilent())
}
