package report

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"io"

	"gwi.com/chatmood/internal/store"
)

//go:embed templates/*.html
var templateFS embed.FS

// IndexPage is the upload page.
type IndexPage struct {
	Error   string
	History []store.AnalysisSummary
	Model   string
}

// ReportPage is the result page for one analysis.
type ReportPage struct {
	Analysis *store.Analysis
	ChartURL string // Optional link to the PNG chart
	MaxCount int
}

// Renderer executes the dashboard templates.
type Renderer struct {
	templates *template.Template
	palette   Palette
}

func NewRenderer(palette Palette) (*Renderer, error) {
	funcs := template.FuncMap{
		"capitalize": Capitalize,
		// Palette values are validated by ParseColor, so they are safe CSS.
		"color": func(label string) template.CSS {
			return template.CSS(palette.Color(label))
		},
		"percent": func(n, max int) int {
			if max <= 0 {
				return 0
			}
			return n * 100 / max
		},
	}
	tmpl, err := template.New("dashboard").Funcs(funcs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return &Renderer{templates: tmpl, palette: palette}, nil
}

func (r *Renderer) Palette() Palette {
	return r.palette
}

func (r *Renderer) RenderIndex(w io.Writer, page IndexPage) error {
	return r.templates.ExecuteTemplate(w, "index", page)
}

func (r *Renderer) RenderReport(w io.Writer, page ReportPage) error {
	if page.Analysis == nil {
		return fmt.Errorf("no analysis to render")
	}
	page.MaxCount = 0
	for _, c := range page.Analysis.Counts {
		if c.Count > page.MaxCount {
			page.MaxCount = c.Count
		}
	}
	return r.templates.ExecuteTemplate(w, "report", page)
}

// HTMLFormatter writes a standalone HTML report.
type HTMLFormatter struct {
	renderer *Renderer
}

func NewHTMLFormatter(renderer *Renderer) *HTMLFormatter {
	return &HTMLFormatter{renderer: renderer}
}

func (f *HTMLFormatter) Name() string {
	return "html"
}

func (f *HTMLFormatter) Format(_ context.Context, a *store.Analysis, w io.Writer) error {
	return f.renderer.RenderReport(w, ReportPage{Analysis: a})
}
