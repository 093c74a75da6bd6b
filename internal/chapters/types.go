package chapters

import "sort"

// Name is one localized chapter display string.
type Name struct {
	Text     string
	Language string
}

// Entry is a single chapter atom: a start time, optional end time, zero or
// more localized display names, and Matroska flags.
type Entry struct {
	StartNs uint64
	EndNs   *uint64
	Names   []Name
	UID     *uint64
	Hidden  bool
	Enabled bool
}

// NewEntry returns an enabled, unhidden chapter starting at startNs with no
// display names.
func NewEntry(startNs uint64) Entry {
	return Entry{StartNs: startNs, Enabled: true}
}

// WithEnd sets the chapter's end time.
func (e Entry) WithEnd(endNs uint64) Entry {
	e.EndNs = &endNs
	return e
}

// WithName appends a display name in the given language.
func (e Entry) WithName(name, language string) Entry {
	e.Names = append(e.Names, Name{Text: name, Language: language})
	return e
}

// DisplayName returns the first display name, if any.
func (e Entry) DisplayName() (string, bool) {
	if len(e.Names) == 0 {
		return "", false
	}
	return e.Names[0].Text, true
}

// FormatStartTime renders StartNs in canonical chapter timestamp form.
func (e Entry) FormatStartTime() string {
	return FormatNs(int64(e.StartNs))
}

// FormatEndTime renders EndNs in canonical form, if present.
func (e Entry) FormatEndTime() (string, bool) {
	if e.EndNs == nil {
		return "", false
	}
	return FormatNs(int64(*e.EndNs)), true
}

// Data is an ordered set of chapters under one edition.
type Data struct {
	Chapters        []Entry
	EditionUID      *uint64
	EditionDefault  bool
	EditionHidden   bool
}

// NewData returns an empty chapter set.
func NewData() *Data {
	return &Data{}
}

// Len returns the number of chapters.
func (d *Data) Len() int {
	return len(d.Chapters)
}

// AddChapter appends a chapter.
func (d *Data) AddChapter(e Entry) {
	d.Chapters = append(d.Chapters, e)
}

// SortByTime stably sorts chapters by ascending start time.
func (d *Data) SortByTime() {
	sort.SliceStable(d.Chapters, func(i, j int) bool {
		return d.Chapters[i].StartNs < d.Chapters[j].StartNs
	})
}

// Clone returns a deep copy of d.
func (d *Data) Clone() *Data {
	cp := &Data{
		EditionUID:     d.EditionUID,
		EditionDefault: d.EditionDefault,
		EditionHidden:  d.EditionHidden,
		Chapters:       make([]Entry, len(d.Chapters)),
	}
	copy(cp.Chapters, d.Chapters)
	for i, ch := range d.Chapters {
		if ch.EndNs != nil {
			end := *ch.EndNs
			cp.Chapters[i].EndNs = &end
		}
		if ch.UID != nil {
			uid := *ch.UID
			cp.Chapters[i].UID = &uid
		}
		cp.Chapters[i].Names = append([]Name(nil), ch.Names...)
	}
	return cp
}
