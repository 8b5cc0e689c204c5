package report

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"gwi.com/chatmood/internal/store"
)

const (
	chartWidth   = 640
	chartPadding = 16
	rowHeight    = 26
	barHeight    = 18
	labelWidth   = 120
	countWidth   = 48
)

var (
	chartBackground = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	chartText       = color.RGBA{R: 0x33, G: 0x33, B: 0x33, A: 0xff}
)

// RenderChart draws the label distribution as a horizontal bar chart PNG.
// Rows follow the order of counts.
func RenderChart(w io.Writer, counts []store.LabelCount, palette Palette) error {
	rows := len(counts)
	if rows == 0 {
		rows = 1
	}
	height := 2*chartPadding + rows*rowHeight

	img := image.NewRGBA(image.Rect(0, 0, chartWidth, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(chartBackground), image.Point{}, draw.Src)

	if len(counts) == 0 {
		drawText(img, chartPadding, chartPadding+rowHeight/2+4, "No messages", chartText)
		return encodePNG(w, img)
	}

	maxCount := 0
	for _, c := range counts {
		if c.Count > maxCount {
			maxCount = c.Count
		}
	}
	barSpace := chartWidth - 2*chartPadding - labelWidth - countWidth

	for i, c := range counts {
		top := chartPadding + i*rowHeight
		baseline := top + barHeight/2 + 5

		drawText(img, chartPadding, baseline, Capitalize(c.Label), chartText)

		barLen := 0
		if maxCount > 0 {
			barLen = c.Count * barSpace / maxCount
		}
		if barLen < 1 && c.Count > 0 {
			barLen = 1
		}
		x0 := chartPadding + labelWidth
		bar := image.Rect(x0, top, x0+barLen, top+barHeight)
		draw.Draw(img, bar, image.NewUniform(palette.RGBA(c.Label)), image.Point{}, draw.Src)

		drawText(img, x0+barLen+6, baseline, fmt.Sprintf("%d", c.Count), chartText)
	}

	return encodePNG(w, img)
}

func drawText(img draw.Image, x, y int, s string, c color.Color) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}

func encodePNG(w io.Writer, img image.Image) error {
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("failed to encode chart: %w", err)
	}
	return nil
}
