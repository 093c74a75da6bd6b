package chapters

import (
	"encoding/xml"
	"os"
	"strconv"
	"strings"

	"github.com/wingedonezero/Video-Sync-GUI-sub002/internal/vsgerrors"
)

// xmlChapters mirrors the Matroska chapter XML schema produced and
// consumed by mkvextract/mkvmerge.
type xmlChapters struct {
	XMLName  xml.Name          `xml:"Chapters"`
	Editions []xmlEditionEntry `xml:"EditionEntry"`
}

type xmlEditionEntry struct {
	FlagDefault string          `xml:"EditionFlagDefault,omitempty"`
	FlagHidden  string          `xml:"EditionFlagHidden,omitempty"`
	UID         string          `xml:"EditionUID,omitempty"`
	Atoms       []xmlChapterAtom `xml:"ChapterAtom"`
}

type xmlChapterAtom struct {
	TimeStart   string            `xml:"ChapterTimeStart"`
	TimeEnd     string            `xml:"ChapterTimeEnd,omitempty"`
	UID         string            `xml:"ChapterUID,omitempty"`
	FlagHidden  string            `xml:"ChapterFlagHidden,omitempty"`
	FlagEnabled string            `xml:"ChapterFlagEnabled,omitempty"`
	Displays    []xmlChapterDisplay `xml:"ChapterDisplay"`
}

type xmlChapterDisplay struct {
	String   string `xml:"ChapterString"`
	Language string `xml:"ChapterLanguage,omitempty"`
}

// ParseFile reads and parses a chapter XML file.
func ParseFile(path string) (*Data, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, vsgerrors.New(err).Kind(vsgerrors.SourceNotFound).
			Context("path", path).Build()
	}
	return ParseXML(string(content))
}

// ParseXML parses a Matroska chapter XML document into a Data set. Only
// the first EditionEntry is honored, matching mkvextract/mkvmerge output.
func ParseXML(doc string) (*Data, error) {
	var parsed xmlChapters
	if err := xml.Unmarshal([]byte(doc), &parsed); err != nil {
		return nil, vsgerrors.New(err).Kind(vsgerrors.ParseError).
			Context("tool", "chapters").Build()
	}

	var edition xmlEditionEntry
	if len(parsed.Editions) > 0 {
		edition = parsed.Editions[0]
	}

	data := NewData()
	data.EditionDefault = edition.FlagDefault == "1"
	data.EditionHidden = edition.FlagHidden == "1"
	if edition.UID != "" {
		if uid, err := strconv.ParseUint(strings.TrimSpace(edition.UID), 10, 64); err == nil {
			data.EditionUID = &uid
		}
	}

	for _, atom := range edition.Atoms {
		entry, ok := parseAtom(atom)
		if ok {
			data.AddChapter(entry)
		}
	}

	data.SortByTime()
	return data, nil
}

func parseAtom(atom xmlChapterAtom) (Entry, bool) {
	startNs, err := ParseNs(atom.TimeStart)
	if err != nil {
		return Entry{}, false
	}

	entry := Entry{StartNs: uint64(startNs), Enabled: true}

	if atom.TimeEnd != "" {
		if endNs, err := ParseNs(atom.TimeEnd); err == nil {
			end := uint64(endNs)
			entry.EndNs = &end
		}
	}
	if atom.UID != "" {
		if uid, err := strconv.ParseUint(strings.TrimSpace(atom.UID), 10, 64); err == nil {
			entry.UID = &uid
		}
	}
	entry.Hidden = atom.FlagHidden == "1"
	if atom.FlagEnabled != "" {
		entry.Enabled = atom.FlagEnabled != "0"
	}

	for _, d := range atom.Displays {
		language := d.Language
		if language == "" {
			language = "und"
		}
		entry.Names = append(entry.Names, Name{Text: d.String, Language: language})
	}

	return entry, true
}

// SerializeXML renders data as Matroska chapter XML.
func SerializeXML(data *Data) string {
	var b strings.Builder
	b.WriteString("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	b.WriteString("<Chapters>\n")
	b.WriteString("  <EditionEntry>\n")

	if data.EditionDefault {
		b.WriteString("    <EditionFlagDefault>1</EditionFlagDefault>\n")
	}
	if data.EditionHidden {
		b.WriteString("    <EditionFlagHidden>1</EditionFlagHidden>\n")
	}
	if data.EditionUID != nil {
		b.WriteString("    <EditionUID>" + strconv.FormatUint(*data.EditionUID, 10) + "</EditionUID>\n")
	}

	for _, ch := range data.Chapters {
		b.WriteString("    <ChapterAtom>\n")
		b.WriteString("      <ChapterTimeStart>" + ch.FormatStartTime() + "</ChapterTimeStart>\n")
		if end, ok := ch.FormatEndTime(); ok {
			b.WriteString("      <ChapterTimeEnd>" + end + "</ChapterTimeEnd>\n")
		}
		if ch.UID != nil {
			b.WriteString("      <ChapterUID>" + strconv.FormatUint(*ch.UID, 10) + "</ChapterUID>\n")
		}
		if ch.Hidden {
			b.WriteString("      <ChapterFlagHidden>1</ChapterFlagHidden>\n")
		}
		if !ch.Enabled {
			b.WriteString("      <ChapterFlagEnabled>0</ChapterFlagEnabled>\n")
		}
		for _, name := range ch.Names {
			b.WriteString("      <ChapterDisplay>\n")
			b.WriteString("        <ChapterString>" + escapeXML(name.Text) + "</ChapterString>\n")
			b.WriteString("        <ChapterLanguage>" + name.Language + "</ChapterLanguage>\n")
			b.WriteString("      </ChapterDisplay>\n")
		}
		b.WriteString("    </ChapterAtom>\n")
	}

	b.WriteString("  </EditionEntry>\n")
	b.WriteString("</Chapters>\n")
	return b.String()
}

// WriteFile serializes data and writes it to path.
func WriteFile(data *Data, path string) error {
	if err := os.WriteFile(path, []byte(SerializeXML(data)), 0o644); err != nil {
		return vsgerrors.New(err).Kind(vsgerrors.IoError).Context("path", path).Build()
	}
	return nil
}

func escapeXML(s string) string {
	r := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"'", "&apos;",
	)
	return r.Replace(s)
}
