package report

import (
	"bytes"
	"context"
	"encoding/json"
	"image/png"
	"strings"
	"testing"

	"gwi.com/chatmood/internal/store"
)

func testAnalysis() *store.Analysis {
	return &store.Analysis{
		ID:       "a1",
		Filename: "chat.txt",
		Provider: "huggingface",
		Model:    "SamLowe/roberta-base-go_emotions",
		Results: []store.SentimentResult{
			{Position: 0, Message: "I am so happy today", Label: "joy", Score: 0.974},
			{Position: 1, Message: "you broke it <again>", Label: "anger", Score: 0.5},
			{Position: 2, Message: "terrible news", Label: "sadness", Score: 0.61},
			{Position: 3, Message: "yay", Label: "joy", Score: 0.8},
		},
		Counts: []store.LabelCount{
			{Label: "joy", Count: 2},
			{Label: "anger", Count: 1},
			{Label: "sadness", Count: 1},
		},
	}
}

func emptyAnalysis() *store.Analysis {
	return &store.Analysis{
		Filename: "empty.txt",
		Provider: "huggingface",
		Model:    "m",
		Results:  []store.SentimentResult{},
		Counts:   []store.LabelCount{},
	}
}

func TestPalette(t *testing.T) {
	p := DefaultPalette()
	tests := []struct {
		label string
		want  string
	}{
		{"joy", "green"},
		{"anger", "red"},
		{"sadness", "blue"},
		{"neutral", "blue"},
	}
	for _, tt := range tests {
		if got := p.Color(tt.label); got != tt.want {
			t.Errorf("Color(%q) = %q, want %q", tt.label, got, tt.want)
		}
	}
}

func TestNewPalette(t *testing.T) {
	p, err := NewPalette(map[string]string{"Love": "#FF00aa", "anger": "orange"}, "gray")
	if err != nil {
		t.Fatalf("NewPalette() error = %v", err)
	}
	if got := p.Color("love"); got != "#ff00aa" {
		t.Errorf("Color(love) = %q", got)
	}
	if got := p.Color("anger"); got != "orange" {
		t.Errorf("Color(anger) = %q", got)
	}
	if got := p.Color("joy"); got != "green" {
		t.Errorf("Color(joy) = %q", got)
	}
	if got := p.Color("fear"); got != "gray" {
		t.Errorf("Color(fear) = %q", got)
	}
	if c := p.RGBA("love"); c.R != 0xff || c.G != 0 || c.B != 0xaa {
		t.Errorf("RGBA(love) = %+v", c)
	}

	if _, err := NewPalette(map[string]string{"joy": "url(x)"}, ""); err == nil {
		t.Error("NewPalette() accepted an invalid colour")
	}
	if _, err := NewPalette(nil, "#12345"); err == nil {
		t.Error("NewPalette() accepted an invalid fallback")
	}
}

func TestCapitalize(t *testing.T) {
	tests := map[string]string{
		"joy":            "Joy",
		"disappointment": "Disappointment",
		"NEUTRAL":        "Neutral",
		"":               "",
	}
	for in, want := range tests {
		if got := Capitalize(in); got != want {
			t.Errorf("Capitalize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestTextFormatter_Format(t *testing.T) {
	var buf bytes.Buffer
	if err := NewTextFormatter().Format(context.Background(), testAnalysis(), &buf); err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	output := buf.String()

	for _, want := range []string{
		"Sentiment Distribution",
		"Overall Sentiment Counts",
		"  Joy: 2",
		"  Anger: 1",
		"Message: I am so happy today",
		"Joy, Confidence: 0.97",
		"Sadness, Confidence: 0.61",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("Output missing %q\n%s", want, output)
		}
	}
	if strings.Contains(output, NoMessagesNotice) {
		t.Error("Output contains the no-messages notice")
	}
}

func TestTextFormatter_NoMessages(t *testing.T) {
	var buf bytes.Buffer
	if err := NewTextFormatter().Format(context.Background(), emptyAnalysis(), &buf); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), NoMessagesNotice) {
		t.Errorf("Output missing notice:\n%s", buf.String())
	}
}

func TestJSONFormatter_Format(t *testing.T) {
	var buf bytes.Buffer
	if err := NewJSONFormatter().Format(context.Background(), testAnalysis(), &buf); err != nil {
		t.Fatal(err)
	}
	var decoded store.Analysis
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if len(decoded.Results) != 4 || len(decoded.Counts) != 3 {
		t.Errorf("decoded = %+v", decoded)
	}
	if decoded.Counts[0].Label != "joy" {
		t.Errorf("first count = %+v, want joy first", decoded.Counts[0])
	}
}

func TestNewFormatter(t *testing.T) {
	r, err := NewRenderer(DefaultPalette())
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"text", "json", "html"} {
		f, err := NewFormatter(name, r)
		if err != nil {
			t.Fatalf("NewFormatter(%q) error = %v", name, err)
		}
		if f.Name() != name {
			t.Errorf("Name() = %q, want %q", f.Name(), name)
		}
	}
	if _, err := NewFormatter("xml", r); err == nil {
		t.Error("NewFormatter(xml) did not fail")
	}
	if _, err := NewFormatter("html", nil); err == nil {
		t.Error("NewFormatter(html, nil) did not fail")
	}
}

func TestRenderReport(t *testing.T) {
	r, err := NewRenderer(DefaultPalette())
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := r.RenderReport(&buf, ReportPage{Analysis: testAnalysis(), ChartURL: "/analyses/a1/chart.png"}); err != nil {
		t.Fatalf("RenderReport() error = %v", err)
	}
	output := buf.String()

	for _, want := range []string{
		"Sentiment Distribution",
		"<strong>Joy</strong>: 2",
		"color:green",
		"color:red",
		"color:blue",
		"Confidence: 0.97",
		"/analyses/a1/chart.png",
		"&lt;again&gt;",
		"Model Used: SamLowe/roberta-base-go_emotions",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("Output missing %q", want)
		}
	}
	if strings.Contains(output, "<again>") {
		t.Error("message text was not escaped")
	}
}

func TestRenderReport_NoMessages(t *testing.T) {
	r, err := NewRenderer(DefaultPalette())
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := r.RenderReport(&buf, ReportPage{Analysis: emptyAnalysis()}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), NoMessagesNotice) {
		t.Error("Output missing no-messages notice")
	}
	if strings.Contains(buf.String(), "Message-by-Message Analysis") {
		t.Error("Output contains the per-message section")
	}
}

func TestRenderIndex(t *testing.T) {
	r, err := NewRenderer(DefaultPalette())
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	page := IndexPage{
		Error:   "file must be a .txt export",
		Model:   "m",
		History: []store.AnalysisSummary{{ID: "abc", Filename: "chat.txt", MessageCount: 3, TopLabel: "joy"}},
	}
	if err := r.RenderIndex(&buf, page); err != nil {
		t.Fatalf("RenderIndex() error = %v", err)
	}
	output := buf.String()
	for _, want := range []string{`action="/analyze"`, "file must be a .txt export", "/analyses/abc", "Joy"} {
		if !strings.Contains(output, want) {
			t.Errorf("Output missing %q", want)
		}
	}
}

func TestRenderChart(t *testing.T) {
	tests := []struct {
		name       string
		counts     []store.LabelCount
		wantHeight int
	}{
		{"three labels", testAnalysis().Counts, 2*chartPadding + 3*rowHeight},
		{"no labels", nil, 2*chartPadding + rowHeight},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := RenderChart(&buf, tt.counts, DefaultPalette()); err != nil {
				t.Fatalf("RenderChart() error = %v", err)
			}
			img, err := png.Decode(&buf)
			if err != nil {
				t.Fatalf("output is not a PNG: %v", err)
			}
			b := img.Bounds()
			if b.Dx() != chartWidth || b.Dy() != tt.wantHeight {
				t.Errorf("chart size = %dx%d, want %dx%d", b.Dx(), b.Dy(), chartWidth, tt.wantHeight)
			}
		})
	}
}

func TestRenderChart_BarColours(t *testing.T) {
	var buf bytes.Buffer
	counts := []store.LabelCount{{Label: "joy", Count: 2}, {Label: "anger", Count: 1}}
	if err := RenderChart(&buf, counts, DefaultPalette()); err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatal(err)
	}

	x := chartPadding + labelWidth + 1
	y := chartPadding + 1
	r, g, b, _ := img.At(x, y).RGBA()
	want := namedColors["green"]
	if uint8(r>>8) != want.R || uint8(g>>8) != want.G || uint8(b>>8) != want.B {
		t.Errorf("joy bar pixel = %d,%d,%d, want green", r>>8, g>>8, b>>8)
	}
}
