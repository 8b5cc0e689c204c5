// Package chatlog pulls message bodies out of exported chat transcripts.
package chatlog

import (
	"bytes"
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"
)

// ErrInvalidEncoding is returned when an upload is not valid UTF-8.
var ErrInvalidEncoding = errors.New("transcript is not valid UTF-8")

// ExportPattern matches one exported line: "<date>, <time> - <sender>: <message>".
// The sender group is non-greedy so it stops at the first ": ".
var ExportPattern = regexp.MustCompile(`^(\d{1,2}/\d{1,2}/\d{2,4}, \d{1,2}:\d{2}) - (.*?): (.*)`)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Line is a transcript line that matched ExportPattern.
type Line struct {
	// Number is the 1-based line number in the upload.
	Number int `json:"line"`

	// Stamp is the raw "date, time" prefix.
	Stamp string `json:"stamp"`

	// Sender is parsed for completeness; aggregation ignores it.
	Sender string `json:"sender"`

	// Text is the message body.
	Text string `json:"text"`
}

// Extract decodes data as UTF-8 and returns every line that matches
// ExportPattern, in file order. Lines that do not match are skipped.
func Extract(data []byte) ([]Line, error) {
	if !utf8.Valid(data) {
		return nil, ErrInvalidEncoding
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	lines := []Line{}
	for i, raw := range splitLines(string(data)) {
		m := ExportPattern.FindStringSubmatch(raw)
		if m == nil {
			continue
		}
		lines = append(lines, Line{
			Number: i + 1,
			Stamp:  m[1],
			Sender: m[2],
			Text:   m[3],
		})
	}
	return lines, nil
}

// ExtractMessages is Extract reduced to the message bodies.
func ExtractMessages(data []byte) ([]string, error) {
	lines, err := Extract(data)
	if err != nil {
		return nil, err
	}
	messages := make([]string, len(lines))
	for i, l := range lines {
		messages[i] = l.Text
	}
	return messages, nil
}

// splitLines splits on \n, \r\n and lone \r. A trailing line break does
// not produce an empty final line.
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = strings.TrimSuffix(s, "\n")
	return strings.Split(s, "\n")
}
