package chapters

// Shift offsets every chapter's start and end time by offsetMs,
// clamping both to zero. A zero offset is a no-op.
func Shift(data *Data, offsetMs int64) {
	if offsetMs == 0 {
		return
	}
	offsetNs := MsToNs(offsetMs)
	for i := range data.Chapters {
		shiftEntry(&data.Chapters[i], offsetNs)
	}
}

func shiftEntry(e *Entry, offsetNs int64) {
	e.StartNs = clampShift(e.StartNs, offsetNs)
	if e.EndNs != nil {
		end := clampShift(*e.EndNs, offsetNs)
		e.EndNs = &end
	}
}

func clampShift(ns uint64, offsetNs int64) uint64 {
	if offsetNs >= 0 {
		return ns + uint64(offsetNs)
	}
	abs := uint64(-offsetNs)
	if abs >= ns {
		return 0
	}
	return ns - abs
}

// ShiftCopy returns a shifted copy of data, leaving the original untouched.
func ShiftCopy(data *Data, offsetMs int64) *Data {
	result := data.Clone()
	Shift(result, offsetMs)
	return result
}

// ShiftStrict shifts every chapter by offsetMs, but first drops any chapter
// whose start time would fall below zero rather than clamping it. Forward
// shifts (offsetMs >= 0) never drop chapters and behave like Shift.
func ShiftStrict(data *Data, offsetMs int64) {
	if offsetMs == 0 {
		return
	}
	offsetNs := MsToNs(offsetMs)
	if offsetNs >= 0 {
		Shift(data, offsetMs)
		return
	}

	minStartNs := uint64(-offsetNs)
	kept := data.Chapters[:0:0]
	for _, ch := range data.Chapters {
		if ch.StartNs >= minStartNs {
			kept = append(kept, ch)
		}
	}
	data.Chapters = kept

	Shift(data, offsetMs)
}

// MaxNegativeShift returns the largest-magnitude negative offset (in
// milliseconds) that can be applied without any chapter's start time going
// below zero. Returns 0 if data has no chapters.
func MaxNegativeShift(data *Data) int64 {
	if len(data.Chapters) == 0 {
		return 0
	}
	minNs := data.Chapters[0].StartNs
	for _, ch := range data.Chapters[1:] {
		if ch.StartNs < minNs {
			minNs = ch.StartNs
		}
	}
	return -int64(minNs) / 1_000_000
}
