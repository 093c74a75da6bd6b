package chapters_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wingedonezero/Video-Sync-GUI-sub002/internal/chapters"
)

const sampleXML = `<?xml version="1.0"?>
<Chapters>
  <EditionEntry>
    <EditionFlagDefault>1</EditionFlagDefault>
    <EditionUID>12345</EditionUID>
    <ChapterAtom>
      <ChapterTimeStart>00:00:00.000000000</ChapterTimeStart>
      <ChapterTimeEnd>00:05:00.000000000</ChapterTimeEnd>
      <ChapterUID>1</ChapterUID>
      <ChapterDisplay>
        <ChapterString>Chapter 1</ChapterString>
        <ChapterLanguage>eng</ChapterLanguage>
      </ChapterDisplay>
    </ChapterAtom>
    <ChapterAtom>
      <ChapterTimeStart>00:05:00.000000000</ChapterTimeStart>
      <ChapterUID>2</ChapterUID>
      <ChapterDisplay>
        <ChapterString>Chapter 2</ChapterString>
        <ChapterLanguage>eng</ChapterLanguage>
      </ChapterDisplay>
    </ChapterAtom>
  </EditionEntry>
</Chapters>`

func TestParseXML_SampleDocument(t *testing.T) {
	data, err := chapters.ParseXML(sampleXML)
	require.NoError(t, err)

	require.Equal(t, 2, data.Len())
	assert.True(t, data.EditionDefault)
	require.NotNil(t, data.EditionUID)
	assert.Equal(t, uint64(12345), *data.EditionUID)

	ch1 := data.Chapters[0]
	assert.Equal(t, uint64(0), ch1.StartNs)
	require.NotNil(t, ch1.EndNs)
	assert.Equal(t, uint64(300_000_000_000), *ch1.EndNs)
	name, ok := ch1.DisplayName()
	require.True(t, ok)
	assert.Equal(t, "Chapter 1", name)

	ch2 := data.Chapters[1]
	assert.Equal(t, uint64(300_000_000_000), ch2.StartNs)
	name2, ok := ch2.DisplayName()
	require.True(t, ok)
	assert.Equal(t, "Chapter 2", name2)
}

func TestParseSerializeXML_Roundtrip(t *testing.T) {
	data, err := chapters.ParseXML(sampleXML)
	require.NoError(t, err)

	serialized := chapters.SerializeXML(data)
	reparsed, err := chapters.ParseXML(serialized)
	require.NoError(t, err)

	assert.Equal(t, data.Len(), reparsed.Len())
	assert.Equal(t, data.EditionDefault, reparsed.EditionDefault)
	assert.Equal(t, data.Chapters[0].StartNs, reparsed.Chapters[0].StartNs)

	name1, _ := data.Chapters[0].DisplayName()
	name2, _ := reparsed.Chapters[0].DisplayName()
	assert.Equal(t, name1, name2)
}

func TestSerializeXML_EscapesSpecialCharacters(t *testing.T) {
	data := chapters.NewData()
	data.AddChapter(chapters.NewEntry(0).WithName("Test & <Chapter>", "eng"))

	xml := chapters.SerializeXML(data)
	assert.Contains(t, xml, "Test &amp; &lt;Chapter&gt;")
}

func TestParseFile_MissingFileErrors(t *testing.T) {
	_, err := chapters.ParseFile("/nonexistent/chapters.xml")
	assert.Error(t, err)
}
