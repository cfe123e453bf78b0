package srt

import (
	"errors"
	"strings"
	"testing"
	"time"

	"subburn/internal/domain"
)

// TestFromSegmentsAssignsSequentialIndices checks index assignment order.
func TestFromSegmentsAssignsSequentialIndices(t *testing.T) {
	doc, err := FromSegments([]domain.Segment{
		{Start: 0, End: time.Second, Text: " hello "},
		{Start: time.Second, End: 2 * time.Second, Text: "world"},
		{Start: 2 * time.Second, End: 3 * time.Second, Text: "again"},
	})
	if err != nil {
		t.Fatalf("FromSegments() error = %v", err)
	}

	if len(doc.Entries) != 3 {
		t.Fatalf("entries = %d, want 3", len(doc.Entries))
	}
	for i, entry := range doc.Entries {
		if entry.Index != i+1 {
			t.Fatalf("entry %d index = %d, want %d", i, entry.Index, i+1)
		}
	}
	if doc.Entries[0].Text != "hello" {
		t.Fatalf("text = %q, want trimmed hello", doc.Entries[0].Text)
	}
}

// TestFromSegmentsEmptyFails checks the empty transcript error.
func TestFromSegmentsEmptyFails(t *testing.T) {
	if _, err := FromSegments(nil); !errors.Is(err, ErrEmptyTranscript) {
		t.Fatalf("error = %v, want ErrEmptyTranscript", err)
	}
}

// TestRenderCanonicalLayout checks the exact serialized byte layout.
func TestRenderCanonicalLayout(t *testing.T) {
	doc := Document{Entries: []Entry{
		{Index: 1, Start: 0, End: 1500 * time.Millisecond, Text: "hello"},
		{Index: 2, Start: 2 * time.Second, End: 3 * time.Second, Text: "two\nlines"},
	}}

	want := "1\n00:00:00,000 --> 00:00:01,500\nhello\n" +
		"\n2\n00:00:02,000 --> 00:00:03,000\ntwo\nlines\n"
	if got := doc.Render(); got != want {
		t.Fatalf("Render() = %q, want %q", got, want)
	}
}

// TestParseRenderRoundTrip checks parse(serialize(D)) == D.
func TestParseRenderRoundTrip(t *testing.T) {
	doc := Document{Entries: []Entry{
		{Index: 1, Start: 0, End: 1234 * time.Millisecond, Text: "first caption"},
		{Index: 2, Start: 1234 * time.Millisecond, End: 5 * time.Second, Text: "multi\nline caption"},
		{Index: 3, Start: time.Hour + 2*time.Minute + 3*time.Second + 45*time.Millisecond, End: time.Hour + 2*time.Minute + 4*time.Second, Text: "late entry"},
	}}

	parsed, err := Parse(doc.Render())
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(parsed.Entries) != len(doc.Entries) {
		t.Fatalf("entries = %d, want %d", len(parsed.Entries), len(doc.Entries))
	}
	for i := range doc.Entries {
		if parsed.Entries[i] != doc.Entries[i] {
			t.Fatalf("entry %d = %+v, want %+v", i, parsed.Entries[i], doc.Entries[i])
		}
	}
}

// TestParseToleratesBlankLineVariations checks whitespace leniency.
func TestParseToleratesBlankLineVariations(t *testing.T) {
	text := "\n\n1\r\n00:00:00,000 --> 00:00:01,000\r\nhello  \r\n\r\n\r\n2\n00:00:01,000 --> 00:00:02,000\nworld\n\n\n"
	doc, err := Parse(text)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(doc.Entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(doc.Entries))
	}
	if doc.Entries[0].Text != "hello" {
		t.Fatalf("text = %q, want hello", doc.Entries[0].Text)
	}
}

// TestParseRejectsMalformed checks format error cases.
func TestParseRejectsMalformed(t *testing.T) {
	cases := []struct {
		name string
		text string
	}{
		{"bad timestamp", "1\n00:00:x0,000 --> 00:00:01,000\nhi\n"},
		{"end before start", "1\n00:00:02,000 --> 00:00:01,000\nhi\n"},
		{"end equals start", "1\n00:00:01,000 --> 00:00:01,000\nhi\n"},
		{"non-sequential index", "2\n00:00:00,000 --> 00:00:01,000\nhi\n"},
		{"index gap", "1\n00:00:00,000 --> 00:00:01,000\nhi\n\n3\n00:00:01,000 --> 00:00:02,000\nyo\n"},
		{"missing text", "1\n00:00:00,000 --> 00:00:01,000\n\n"},
		{"truncated", "1\n"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(tc.text)
			var formatErr *FormatError
			if !errors.As(err, &formatErr) {
				t.Fatalf("error = %v, want FormatError", err)
			}
		})
	}
}

// TestWithTranslatedTextReplacesOnlyText checks positional replacement.
func TestWithTranslatedTextReplacesOnlyText(t *testing.T) {
	doc := Document{Entries: []Entry{
		{Index: 1, Start: 0, End: time.Second, Text: "hello"},
		{Index: 2, Start: time.Second, End: 2 * time.Second, Text: "world"},
	}}

	translated, err := doc.WithTranslatedText([]string{"ciao", "mondo"})
	if err != nil {
		t.Fatalf("WithTranslatedText() error = %v", err)
	}

	for i := range doc.Entries {
		if translated.Entries[i].Start != doc.Entries[i].Start || translated.Entries[i].End != doc.Entries[i].End {
			t.Fatalf("entry %d timestamps changed", i)
		}
		if translated.Entries[i].Index != doc.Entries[i].Index {
			t.Fatalf("entry %d index changed", i)
		}
	}
	if translated.Entries[0].Text != "ciao" || translated.Entries[1].Text != "mondo" {
		t.Fatalf("unexpected texts: %+v", translated.Texts())
	}
	if doc.Entries[0].Text != "hello" {
		t.Fatal("source document mutated")
	}
}

// TestWithTranslatedTextAlignmentMismatch checks length guard.
func TestWithTranslatedTextAlignmentMismatch(t *testing.T) {
	doc := Document{Entries: []Entry{
		{Index: 1, Start: 0, End: time.Second, Text: "hello"},
	}}

	_, err := doc.WithTranslatedText([]string{"uno", "due"})
	var alignErr *AlignmentError
	if !errors.As(err, &alignErr) {
		t.Fatalf("error = %v, want AlignmentError", err)
	}
	if alignErr.Entries != 1 || alignErr.Translations != 2 {
		t.Fatalf("unexpected counts: %+v", alignErr)
	}
}

// TestUppercased checks the uppercase style transform.
func TestUppercased(t *testing.T) {
	doc := Document{Entries: []Entry{
		{Index: 1, Start: 0, End: time.Second, Text: "hello\nworld"},
	}}

	upper := doc.Uppercased()
	if upper.Entries[0].Text != "HELLO\nWORLD" {
		t.Fatalf("text = %q", upper.Entries[0].Text)
	}
	if doc.Entries[0].Text != "hello\nworld" {
		t.Fatal("source document mutated")
	}
}

// TestFormatTimestamp checks millisecond precision formatting.
func TestFormatTimestamp(t *testing.T) {
	cases := []struct {
		in   time.Duration
		want string
	}{
		{0, "00:00:00,000"},
		{999 * time.Millisecond, "00:00:00,999"},
		{61 * time.Second, "00:01:01,000"},
		{time.Hour + 23*time.Minute + 45*time.Second + 678*time.Millisecond, "01:23:45,678"},
		{-time.Second, "00:00:00,000"},
	}
	for _, tc := range cases {
		if got := FormatTimestamp(tc.in); got != tc.want {
			t.Fatalf("FormatTimestamp(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

// TestParseTimestampRejectsJunk checks strict timestamp shape.
func TestParseTimestampRejectsJunk(t *testing.T) {
	for _, bad := range []string{"0:00:01,000", "00:00:01.000", "00:00:01,00", "00:00:01,000x", "00:61:00,000"} {
		if _, err := ParseTimestamp(bad); err == nil {
			t.Fatalf("ParseTimestamp(%q) succeeded, want error", bad)
		}
	}
	got, err := ParseTimestamp("01:02:03,004")
	if err != nil {
		t.Fatalf("ParseTimestamp() error = %v", err)
	}
	want := time.Hour + 2*time.Minute + 3*time.Second + 4*time.Millisecond
	if got != want {
		t.Fatalf("ParseTimestamp() = %v, want %v", got, want)
	}
	if strings.Contains(FormatTimestamp(got), " ") {
		t.Fatal("timestamp contains whitespace")
	}
}
