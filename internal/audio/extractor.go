// Package audio extracts mono float64 PCM windows from a media source via
// an external decoder, for use by the correlation kernel.
package audio

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"os/exec"
	"strconv"

	"github.com/wingedonezero/Video-Sync-GUI-sub002/internal/vsgerrors"
)

// Window is a single-channel PCM buffer at a fixed sample rate, covering
// one time window of a source.
type Window struct {
	Samples        []float64
	SampleRate     int
	StartTimeSecs  float64
	DurationSecs   float64
}

// SilenceStdDevThreshold below this population standard deviation a
// window is considered silent and should be rejected upstream.
const SilenceStdDevThreshold = 1e-3

// Extractor extracts PCM windows by shelling out to ffmpeg.
type Extractor struct {
	FFmpegPath string
}

// NewExtractor returns an Extractor bound to the given ffmpeg binary path.
func NewExtractor(ffmpegPath string) *Extractor {
	return &Extractor{FFmpegPath: ffmpegPath}
}

// Extract decodes [start_secs, start_secs+duration_secs) of the stream at
// streamIndex (or the default audio stream, if negative) from path, mono,
// resampled to sampleRate, as little-endian float64 PCM.
func (e *Extractor) Extract(ctx context.Context, path string, startSecs, durationSecs float64, sampleRate int, streamIndex int) (Window, error) {
	if _, err := os.Stat(path); err != nil {
		return Window{}, vsgerrors.New(err).
			Kind(vsgerrors.SourceNotFound).
			Context("path", path).
			Build()
	}

	args := e.buildArgs(path, startSecs, durationSecs, sampleRate, streamIndex)

	cmd := exec.CommandContext(ctx, e.FFmpegPath, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		exitCode := -1
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		}
		return Window{}, vsgerrors.New(err).
			Kind(vsgerrors.ExternalToolFailed).
			Context("tool", "ffmpeg").
			Context("exit_code", exitCode).
			Context("stderr_tail", tail(stderr.String(), 2000)).
			Context("path", path).
			Build()
	}

	raw := stdout.Bytes()
	usable := len(raw) - len(raw)%8
	raw = raw[:usable]

	if len(raw) == 0 {
		return Window{}, vsgerrors.Newf("extraction produced no samples for %s", path).
			Kind(vsgerrors.ExtractionEmpty).
			Context("path", path).
			Context("start_secs", startSecs).
			Build()
	}

	samples := make([]float64, len(raw)/8)
	for i := range samples {
		bits := binary.LittleEndian.Uint64(raw[i*8 : i*8+8])
		samples[i] = math.Float64frombits(bits)
	}

	return Window{
		Samples:       samples,
		SampleRate:    sampleRate,
		StartTimeSecs: startSecs,
		DurationSecs:  durationSecs,
	}, nil
}

// IsSilent reports whether w's samples have a population standard
// deviation below SilenceStdDevThreshold.
func (w Window) IsSilent() bool {
	if len(w.Samples) == 0 {
		return true
	}
	var mean float64
	for _, s := range w.Samples {
		mean += s
	}
	mean /= float64(len(w.Samples))

	var variance float64
	for _, s := range w.Samples {
		d := s - mean
		variance += d * d
	}
	variance /= float64(len(w.Samples))

	return math.Sqrt(variance) < SilenceStdDevThreshold
}

func (e *Extractor) buildArgs(path string, startSecs, durationSecs float64, sampleRate int, streamIndex int) []string {
	args := []string{
		"-nostdin",
		"-ss", strconv.FormatFloat(startSecs, 'f', 6, 64),
		"-i", path,
		"-t", strconv.FormatFloat(durationSecs, 'f', 6, 64),
	}

	mapTarget := "0:a:0"
	if streamIndex >= 0 {
		mapTarget = fmt.Sprintf("0:%d", streamIndex)
	}
	args = append(args, "-map", mapTarget)

	args = append(args,
		"-ac", "1",
		"-ar", strconv.Itoa(sampleRate),
		"-f", "f64le",
		"-acodec", "pcm_f64le",
		"pipe:1",
	)

	return args
}

func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
