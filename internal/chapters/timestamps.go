// Package chapters loads, shifts, snaps, and serialises Matroska chapter
// data at nanosecond precision.
package chapters

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/wingedonezero/Video-Sync-GUI-sub002/internal/vsgerrors"
)

// MsToNs converts milliseconds to nanoseconds.
func MsToNs(ms int64) int64 {
	return ms * 1_000_000
}

// FormatNs renders a nanosecond timestamp as HH:MM:SS.nnnnnnnnn, the
// canonical Matroska chapter timestamp format. Negative values clamp to
// zero.
func FormatNs(ns int64) string {
	if ns < 0 {
		ns = 0
	}
	frac := ns % 1_000_000_000
	totalSecs := ns / 1_000_000_000
	hh := totalSecs / 3600
	mm := (totalSecs % 3600) / 60
	ss := totalSecs % 60
	return fmt.Sprintf("%02d:%02d:%02d.%09d", hh, mm, ss, frac)
}

// ParseNs parses an HH:MM:SS[.fraction] timestamp into nanoseconds. The
// fractional part is padded or truncated to exactly 9 digits.
func ParseNs(timestamp string) (int64, error) {
	parts := strings.Split(strings.TrimSpace(timestamp), ":")
	if len(parts) != 3 {
		return 0, vsgerrors.Newf("invalid timestamp format: %s", timestamp).
			Kind(vsgerrors.ParseError).Build()
	}

	hh, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return 0, vsgerrors.New(err).Kind(vsgerrors.ParseError).
			Context("field", "hours").Build()
	}
	mm, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return 0, vsgerrors.New(err).Kind(vsgerrors.ParseError).
			Context("field", "minutes").Build()
	}

	secParts := strings.SplitN(parts[2], ".", 2)
	ss, err := strconv.ParseInt(secParts[0], 10, 64)
	if err != nil {
		return 0, vsgerrors.New(err).Kind(vsgerrors.ParseError).
			Context("field", "seconds").Build()
	}

	fracStr := ""
	if len(secParts) == 2 {
		fracStr = secParts[1]
	}
	for len(fracStr) < 9 {
		fracStr += "0"
	}
	fracStr = fracStr[:9]

	frac, err := strconv.ParseInt(fracStr, 10, 64)
	if err != nil {
		return 0, vsgerrors.New(err).Kind(vsgerrors.ParseError).
			Context("field", "fraction").Build()
	}

	return (hh*3600+mm*60+ss)*1_000_000_000 + frac, nil
}
