package report

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gwi.com/chatmood/internal/store"
)

// NoMessagesNotice is shown when a transcript had no matching lines.
const NoMessagesNotice = "No messages found in the file. Make sure it follows the standard WhatsApp format."

// Formatter renders an analysis in a specific format.
type Formatter interface {
	// Format renders the analysis to the given writer.
	Format(ctx context.Context, a *store.Analysis, w io.Writer) error

	// Name returns the format name (text, json, html).
	Name() string
}

// NewFormatter returns the formatter registered under name.
func NewFormatter(name string, renderer *Renderer) (Formatter, error) {
	switch name {
	case "text", "":
		return NewTextFormatter(), nil
	case "json":
		return NewJSONFormatter(), nil
	case "html":
		if renderer == nil {
			return nil, fmt.Errorf("html format needs a renderer")
		}
		return NewHTMLFormatter(renderer), nil
	}
	return nil, fmt.Errorf("unknown format %q (want text, json or html)", name)
}

// TextFormatter formats analyses as human-readable text.
type TextFormatter struct{}

func NewTextFormatter() *TextFormatter {
	return &TextFormatter{}
}

func (f *TextFormatter) Name() string {
	return "text"
}

func (f *TextFormatter) Format(_ context.Context, a *store.Analysis, w io.Writer) error {
	fmt.Fprintf(w, "=== Chat Sentiment Analysis: %s ===\n", a.Filename)
	fmt.Fprintf(w, "Model: %s (%s)\n\n", a.Model, a.Provider)

	if len(a.Results) == 0 {
		_, err := fmt.Fprintln(w, NoMessagesNotice)
		return err
	}

	maxCount := 0
	for _, c := range a.Counts {
		if c.Count > maxCount {
			maxCount = c.Count
		}
	}

	fmt.Fprintln(w, "Sentiment Distribution")
	for _, c := range a.Counts {
		bar := strings.Repeat("#", c.Count*30/maxCount)
		if bar == "" {
			bar = "#"
		}
		fmt.Fprintf(w, "  %-15s %-30s %d\n", Capitalize(c.Label), bar, c.Count)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Overall Sentiment Counts")
	for _, c := range a.Counts {
		fmt.Fprintf(w, "  %s: %d\n", Capitalize(c.Label), c.Count)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Message-by-Message Analysis")
	for _, r := range a.Results {
		fmt.Fprintf(w, "Message: %s\n", r.Message)
		fmt.Fprintf(w, "%s, Confidence: %.2f\n", Capitalize(r.Label), r.Score)
		fmt.Fprintln(w, "---")
	}
	return nil
}

// JSONFormatter formats analyses as indented JSON.
type JSONFormatter struct{}

func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

func (f *JSONFormatter) Name() string {
	return "json"
}

func (f *JSONFormatter) Format(_ context.Context, a *store.Analysis, w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(a)
}
