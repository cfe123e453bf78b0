package srt

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const timestampSeparator = " --> "

// Parse reads SRT text into a document. It tolerates trailing whitespace
// and blank-line variations between entries, and rejects malformed
// timestamps, end <= start pairs, and non-sequential index numbering.
func Parse(text string) (Document, error) {
	normalized := strings.ReplaceAll(text, "\r\n", "\n")
	normalized = strings.TrimPrefix(normalized, "\ufeff")
	lines := strings.Split(normalized, "\n")

	var doc Document
	i := 0
	for {
		for i < len(lines) && strings.TrimSpace(lines[i]) == "" {
			i++
		}
		if i >= len(lines) {
			break
		}

		indexLine := i
		index, err := strconv.Atoi(strings.TrimSpace(lines[i]))
		if err != nil {
			return Document{}, &FormatError{
				Line:    indexLine + 1,
				Message: fmt.Sprintf("expected entry index, got %q", strings.TrimSpace(lines[i])),
			}
		}
		if want := len(doc.Entries) + 1; index != want {
			return Document{}, &FormatError{
				Line:    indexLine + 1,
				Message: fmt.Sprintf("non-sequential index %d, want %d", index, want),
			}
		}
		i++

		if i >= len(lines) {
			return Document{}, &FormatError{Line: indexLine + 1, Message: "entry truncated before timestamps"}
		}
		start, end, err := parseTimestampLine(lines[i])
		if err != nil {
			return Document{}, &FormatError{Line: i + 1, Message: err.Error()}
		}
		i++

		var textLines []string
		for i < len(lines) && strings.TrimSpace(lines[i]) != "" {
			textLines = append(textLines, strings.TrimRight(lines[i], " \t"))
			i++
		}
		if len(textLines) == 0 {
			return Document{}, &FormatError{Line: i, Message: fmt.Sprintf("entry %d has no text", index)}
		}

		doc.Entries = append(doc.Entries, Entry{
			Index: index,
			Start: start,
			End:   end,
			Text:  strings.Join(textLines, "\n"),
		})
	}

	return doc, nil
}

// parseTimestampLine parses "HH:MM:SS,mmm --> HH:MM:SS,mmm".
func parseTimestampLine(line string) (time.Duration, time.Duration, error) {
	trimmed := strings.TrimSpace(line)
	parts := strings.Split(trimmed, timestampSeparator)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("malformed timestamp line %q", trimmed)
	}

	start, err := ParseTimestamp(parts[0])
	if err != nil {
		return 0, 0, err
	}
	end, err := ParseTimestamp(parts[1])
	if err != nil {
		return 0, 0, err
	}
	if end <= start {
		return 0, 0, fmt.Errorf("end %s is not after start %s", FormatTimestamp(end), FormatTimestamp(start))
	}
	return start, end, nil
}

var timestampPattern = regexp.MustCompile(`^(\d{2}):(\d{2}):(\d{2}),(\d{3})$`)

// ParseTimestamp parses one SRT timestamp, HH:MM:SS,mmm.
func ParseTimestamp(value string) (time.Duration, error) {
	trimmed := strings.TrimSpace(value)
	match := timestampPattern.FindStringSubmatch(trimmed)
	if match == nil {
		return 0, fmt.Errorf("malformed timestamp %q", trimmed)
	}

	hours, _ := strconv.Atoi(match[1])
	minutes, _ := strconv.Atoi(match[2])
	seconds, _ := strconv.Atoi(match[3])
	millis, _ := strconv.Atoi(match[4])
	if minutes > 59 || seconds > 59 {
		return 0, fmt.Errorf("timestamp out of range %q", trimmed)
	}

	return time.Duration(hours)*time.Hour +
		time.Duration(minutes)*time.Minute +
		time.Duration(seconds)*time.Second +
		time.Duration(millis)*time.Millisecond, nil
}
