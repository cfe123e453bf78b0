// Package srt implements the SubRip subtitle document model: parsing,
// canonical serialization, and the transformations the pipeline applies
// between transcription and burning.
package srt

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"subburn/internal/domain"
)

// ErrEmptyTranscript is returned when transcription produced no segments.
var ErrEmptyTranscript = errors.New("transcript contains no segments")

// FormatError reports a malformed SRT input with its line number.
type FormatError struct {
	Line    int
	Message string
}

// Error formats the parse failure with its location.
func (e *FormatError) Error() string {
	return fmt.Sprintf("srt format error at line %d: %s", e.Line, e.Message)
}

// AlignmentError reports a translated-text sequence that does not match
// the document entry count.
type AlignmentError struct {
	Entries      int
	Translations int
}

// Error formats the mismatch between entries and translations.
func (e *AlignmentError) Error() string {
	return fmt.Sprintf("translation alignment mismatch: %d entries, %d translations", e.Entries, e.Translations)
}

// Entry is one numbered, timed caption.
type Entry struct {
	Index int
	Start time.Duration
	End   time.Duration
	Text  string
}

// Document is an ordered sequence of caption entries.
type Document struct {
	Entries []Entry
}

// FromSegments builds a document from transcription output, assigning
// sequential indices starting at 1 in input order.
func FromSegments(segments []domain.Segment) (Document, error) {
	if len(segments) == 0 {
		return Document{}, ErrEmptyTranscript
	}

	entries := make([]Entry, 0, len(segments))
	for i, seg := range segments {
		entries = append(entries, Entry{
			Index: i + 1,
			Start: seg.Start,
			End:   seg.End,
			Text:  strings.TrimSpace(seg.Text),
		})
	}
	return Document{Entries: entries}, nil
}

// WithTranslatedText returns a copy of the document with entry text
// replaced positionally. Timestamps and indices are untouched.
func (d Document) WithTranslatedText(translations []string) (Document, error) {
	if len(translations) != len(d.Entries) {
		return Document{}, &AlignmentError{
			Entries:      len(d.Entries),
			Translations: len(translations),
		}
	}

	entries := make([]Entry, len(d.Entries))
	copy(entries, d.Entries)
	for i := range entries {
		entries[i].Text = translations[i]
	}
	return Document{Entries: entries}, nil
}

// Texts returns every entry's text in document order.
func (d Document) Texts() []string {
	texts := make([]string, len(d.Entries))
	for i, entry := range d.Entries {
		texts[i] = entry.Text
	}
	return texts
}

// Uppercased returns a copy of the document with all caption text
// converted to upper case.
func (d Document) Uppercased() Document {
	entries := make([]Entry, len(d.Entries))
	copy(entries, d.Entries)
	for i := range entries {
		entries[i].Text = strings.ToUpper(entries[i].Text)
	}
	return Document{Entries: entries}
}

// Render serializes the document in canonical SRT layout: index line,
// timestamp line, text lines, blank separator. Deterministic for a given
// document.
func (d Document) Render() string {
	var b strings.Builder
	for i, entry := range d.Entries {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%d\n", entry.Index)
		fmt.Fprintf(&b, "%s --> %s\n", FormatTimestamp(entry.Start), FormatTimestamp(entry.End))
		b.WriteString(entry.Text)
		b.WriteString("\n")
	}
	return b.String()
}

// FormatTimestamp renders a duration as an SRT timestamp, HH:MM:SS,mmm.
func FormatTimestamp(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	millis := d.Milliseconds()
	hours := millis / 3_600_000
	millis -= hours * 3_600_000
	minutes := millis / 60_000
	millis -= minutes * 60_000
	seconds := millis / 1_000
	millis -= seconds * 1_000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, seconds, millis)
}
