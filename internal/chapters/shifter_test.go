package chapters_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wingedonezero/Video-Sync-GUI-sub002/internal/chapters"
)

func twoChapterSet() *chapters.Data {
	data := chapters.NewData()
	data.AddChapter(chapters.NewEntry(1_000_000_000).WithEnd(5_000_000_000).WithName("Chapter 1", "eng"))
	data.AddChapter(chapters.NewEntry(5_000_000_000).WithEnd(10_000_000_000).WithName("Chapter 2", "eng"))
	return data
}

func TestShift_Forward(t *testing.T) {
	data := twoChapterSet()
	chapters.Shift(data, 500)

	assert.Equal(t, uint64(1_500_000_000), data.Chapters[0].StartNs)
	require.NotNil(t, data.Chapters[0].EndNs)
	assert.Equal(t, uint64(5_500_000_000), *data.Chapters[0].EndNs)
	assert.Equal(t, uint64(5_500_000_000), data.Chapters[1].StartNs)
}

func TestShift_Backward(t *testing.T) {
	data := twoChapterSet()
	chapters.Shift(data, -500)

	assert.Equal(t, uint64(500_000_000), data.Chapters[0].StartNs)
	require.NotNil(t, data.Chapters[0].EndNs)
	assert.Equal(t, uint64(4_500_000_000), *data.Chapters[0].EndNs)
	assert.Equal(t, uint64(4_500_000_000), data.Chapters[1].StartNs)
}

func TestShift_ClampsToZero(t *testing.T) {
	data := twoChapterSet()
	chapters.Shift(data, -2000)

	assert.Equal(t, uint64(0), data.Chapters[0].StartNs)
	assert.Equal(t, uint64(3_000_000_000), data.Chapters[1].StartNs)
}

func TestShiftStrict_RemovesChaptersThatWouldGoNegative(t *testing.T) {
	data := twoChapterSet()
	chapters.ShiftStrict(data, -2000)

	require.Equal(t, 1, data.Len())
	name, ok := data.Chapters[0].DisplayName()
	require.True(t, ok)
	assert.Equal(t, "Chapter 2", name)
	assert.Equal(t, uint64(3_000_000_000), data.Chapters[0].StartNs)
}

func TestMaxNegativeShift_ReflectsEarliestChapter(t *testing.T) {
	data := twoChapterSet()
	assert.Equal(t, int64(-1000), chapters.MaxNegativeShift(data))
}

func TestMaxNegativeShift_EmptyIsZero(t *testing.T) {
	assert.Equal(t, int64(0), chapters.MaxNegativeShift(chapters.NewData()))
}

func TestShift_ZeroIsNoop(t *testing.T) {
	original := twoChapterSet()
	data := original.Clone()
	chapters.Shift(data, 0)

	assert.Equal(t, original.Chapters[0].StartNs, data.Chapters[0].StartNs)
	assert.Equal(t, original.Chapters[1].StartNs, data.Chapters[1].StartNs)
}

func TestShiftCopy_LeavesOriginalUntouched(t *testing.T) {
	original := twoChapterSet()
	shifted := chapters.ShiftCopy(original, 500)

	assert.Equal(t, uint64(1_000_000_000), original.Chapters[0].StartNs)
	assert.Equal(t, uint64(1_500_000_000), shifted.Chapters[0].StartNs)
}
