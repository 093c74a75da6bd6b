package chapters

import (
	"bytes"
	"context"
	"os/exec"
	"sort"
	"strconv"
	"strings"

	"github.com/wingedonezero/Video-Sync-GUI-sub002/internal/vsgerrors"
)

// SnapMode controls which keyframe a chapter start is aligned to.
type SnapMode string

const (
	SnapNearest  SnapMode = "nearest"
	SnapPrevious SnapMode = "previous"
	SnapNext     SnapMode = "next"
)

// Keyframes holds a video's sorted I-frame timestamps, in nanoseconds.
type Keyframes struct {
	TimestampsNs []uint64
}

// NewKeyframes sorts and wraps a set of keyframe timestamps.
func NewKeyframes(timestampsNs []uint64) Keyframes {
	sorted := append([]uint64(nil), timestampsNs...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	return Keyframes{TimestampsNs: sorted}
}

// Nearest returns the keyframe closest to ts, preferring the earlier one on
// an exact tie.
func (k Keyframes) Nearest(ts uint64) (uint64, bool) {
	if len(k.TimestampsNs) == 0 {
		return 0, false
	}
	idx := sort.Search(len(k.TimestampsNs), func(i int) bool { return k.TimestampsNs[i] >= ts })
	if idx == 0 {
		return k.TimestampsNs[0], true
	}
	if idx == len(k.TimestampsNs) {
		return k.TimestampsNs[len(k.TimestampsNs)-1], true
	}
	before := k.TimestampsNs[idx-1]
	after := k.TimestampsNs[idx]
	if ts-before <= after-ts {
		return before, true
	}
	return after, true
}

// Previous returns the latest keyframe at or before ts.
func (k Keyframes) Previous(ts uint64) (uint64, bool) {
	idx := sort.Search(len(k.TimestampsNs), func(i int) bool { return k.TimestampsNs[i] > ts })
	if idx == 0 {
		return 0, false
	}
	return k.TimestampsNs[idx-1], true
}

// Next returns the earliest keyframe at or after ts.
func (k Keyframes) Next(ts uint64) (uint64, bool) {
	idx := sort.Search(len(k.TimestampsNs), func(i int) bool { return k.TimestampsNs[i] >= ts })
	if idx == len(k.TimestampsNs) {
		return 0, false
	}
	return k.TimestampsNs[idx], true
}

// Snap aligns every chapter's start time to a keyframe per mode, then
// re-sorts the chapter list (aggressive snapping can reorder chapters). A
// video with no keyframes leaves data untouched.
func Snap(data *Data, keyframes Keyframes, mode SnapMode) {
	if len(keyframes.TimestampsNs) == 0 {
		return
	}

	for i := range data.Chapters {
		original := data.Chapters[i].StartNs
		var snapped uint64
		var ok bool
		switch mode {
		case SnapPrevious:
			snapped, ok = keyframes.Previous(original)
		case SnapNext:
			snapped, ok = keyframes.Next(original)
		default:
			snapped, ok = keyframes.Nearest(original)
		}
		if ok && snapped != original {
			data.Chapters[i].StartNs = snapped
		}
	}

	data.SortByTime()
}

// SnapCopy returns a snapped copy of data, leaving the original untouched.
func SnapCopy(data *Data, keyframes Keyframes, mode SnapMode) *Data {
	result := data.Clone()
	Snap(result, keyframes, mode)
	return result
}

// KeyframeExtractor runs ffprobe to list a video's I-frame timestamps.
type KeyframeExtractor struct {
	FFprobePath string
}

// NewKeyframeExtractor returns a KeyframeExtractor bound to the given
// ffprobe binary path.
func NewKeyframeExtractor(ffprobePath string) *KeyframeExtractor {
	return &KeyframeExtractor{FFprobePath: ffprobePath}
}

// Extract lists keyframe timestamps for the first video stream in path.
func (e *KeyframeExtractor) Extract(ctx context.Context, path string) (Keyframes, error) {
	cmd := exec.CommandContext(ctx, e.FFprobePath,
		"-v", "error",
		"-select_streams", "v:0",
		"-show_frames",
		"-show_entries", "frame=pts_time,pict_type",
		"-of", "csv=p=0",
		path,
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		exitCode := -1
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		}
		return Keyframes{}, vsgerrors.New(err).
			ExternalTool("ffprobe", exitCode, stderr.String()).
			Context("path", path).
			Build()
	}

	var timestampsNs []uint64
	for _, line := range strings.Split(stdout.String(), "\n") {
		parts := strings.Split(line, ",")
		if len(parts) < 2 || strings.TrimSpace(parts[1]) != "I" {
			continue
		}
		ptsSecs, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
		if err != nil {
			continue
		}
		timestampsNs = append(timestampsNs, uint64(ptsSecs*1_000_000_000.0))
	}

	return NewKeyframes(timestampsNs), nil
}

// ExtractLimited extracts keyframes and truncates the result to at most
// maxKeyframes entries.
func (e *KeyframeExtractor) ExtractLimited(ctx context.Context, path string, maxKeyframes int) (Keyframes, error) {
	kf, err := e.Extract(ctx, path)
	if err != nil {
		return Keyframes{}, err
	}
	if len(kf.TimestampsNs) > maxKeyframes {
		kf.TimestampsNs = kf.TimestampsNs[:maxKeyframes]
	}
	return kf, nil
}

// SnapStats summarizes how far chapters moved when snapped to keyframes.
type SnapStats struct {
	ChapterCount   int
	AlreadyAligned int
	Moved          int
	MaxShiftMs     int64
	AvgShiftMs     float64
}

// CalculateSnapStats reports snap alignment stats without mutating data.
func CalculateSnapStats(data *Data, keyframes Keyframes, mode SnapMode) SnapStats {
	var alreadyAligned, moved int
	var totalShiftNs, maxShiftNs int64

	for _, ch := range data.Chapters {
		original := ch.StartNs
		var snapped uint64
		var ok bool
		switch mode {
		case SnapPrevious:
			snapped, ok = keyframes.Previous(original)
		case SnapNext:
			snapped, ok = keyframes.Next(original)
		default:
			snapped, ok = keyframes.Nearest(original)
		}
		if !ok {
			continue
		}
		shift := int64(snapped) - int64(original)
		if shift == 0 {
			alreadyAligned++
			continue
		}
		moved++
		abs := shift
		if abs < 0 {
			abs = -abs
		}
		totalShiftNs += abs
		if abs > maxShiftNs {
			maxShiftNs = abs
		}
	}

	avgShiftMs := 0.0
	if moved > 0 {
		avgShiftMs = (float64(totalShiftNs) / float64(moved)) / 1_000_000.0
	}

	return SnapStats{
		ChapterCount:   data.Len(),
		AlreadyAligned: alreadyAligned,
		Moved:          moved,
		MaxShiftMs:     maxShiftNs / 1_000_000,
		AvgShiftMs:     avgShiftMs,
	}
}
