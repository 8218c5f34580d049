package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"strings"

	"github.com/fogleman/gg"
	"golang.org/x/image/font/basicfont"

	"reclamos/internal/complaint"
)

// Card layout constants
const (
	cardWidth     = 560
	cardPadding   = 24
	labelWidth    = 140
	titleHeight   = 48
	rowPaddingY   = 8
	lineSpacing   = 4
	footerHeight  = 32
	maxValueLines = 6
)

// Light theme colors
var (
	bgColor       = color.RGBA{R: 245, G: 247, B: 250, A: 255} // Light gray bg
	headerBgColor = color.RGBA{R: 37, G: 99, B: 235, A: 255}   // Blue
	headerText    = color.RGBA{R: 255, G: 255, B: 255, A: 255} // White
	rowEvenColor  = color.RGBA{R: 255, G: 255, B: 255, A: 255} // White
	rowOddColor   = color.RGBA{R: 241, G: 245, B: 249, A: 255} // Subtle blue-gray
	labelColor    = color.RGBA{R: 100, G: 116, B: 139, A: 255} // Muted slate
	textColor     = color.RGBA{R: 30, G: 41, B: 59, A: 255}    // Dark slate
	borderColor   = color.RGBA{R: 203, G: 213, B: 225, A: 255} // Slate border
)

// cardRow is one label/value pair on the card.
type cardRow struct {
	label string
	value string
}

func cardRows(r complaint.Record) []cardRow {
	return []cardRow{
		{complaint.FieldAccountNumber, r.AccountNumber},
		{complaint.FieldServiceNumber, ServiceNumber(r)},
		{complaint.FieldPhone, r.Phone},
		{complaint.FieldCategory, r.Category},
		{complaint.FieldType, string(r.Type)},
		{complaint.FieldReference, r.Reference},
		{complaint.FieldDescription, r.Description},
	}
}

// Card draws a PNG summary of a record, used as a photo attachment for
// intake notifications.
//
// The built-in bitmap face is used so rendering does not depend on fonts
// installed on the host.
func Card(r complaint.Record) ([]byte, error) {
	face := basicfont.Face7x13
	rows := cardRows(r)

	measure := gg.NewContext(1, 1)
	measure.SetFontFace(face)
	_, lineH := measure.MeasureString("Ay")
	valueWidth := float64(cardWidth - 2*cardPadding - labelWidth - 12)

	wrapped := make([][]string, len(rows))
	rowHeights := make([]float64, len(rows))
	tableHeight := 0.0
	for i, row := range rows {
		lines := wrapText(measure, row.value, valueWidth)
		if len(lines) > maxValueLines {
			lines = lines[:maxValueLines]
			lines[maxValueLines-1] += "..."
		}
		wrapped[i] = lines
		rowHeights[i] = float64(len(lines))*(lineH+lineSpacing) + 2*rowPaddingY
		tableHeight += rowHeights[i]
	}

	height := cardPadding + titleHeight + tableHeight + footerHeight
	dc := gg.NewContext(cardWidth, int(height))
	dc.SetFontFace(face)

	// Background
	dc.SetColor(bgColor)
	dc.Clear()

	// Title bar
	tableX := float64(cardPadding)
	tableW := float64(cardWidth - 2*cardPadding)
	dc.SetColor(headerBgColor)
	dc.DrawRoundedRectangle(tableX, cardPadding/2, tableW, titleHeight-8, 8)
	dc.Fill()
	dc.SetColor(headerText)
	dc.DrawStringAnchored(fmt.Sprintf("Complaint %s", r.Reference), float64(cardWidth)/2, cardPadding/2+(titleHeight-8)/2, 0.5, 0.5)

	// Rows
	y := float64(cardPadding/2 + titleHeight)
	for i, row := range rows {
		if i%2 == 0 {
			dc.SetColor(rowEvenColor)
		} else {
			dc.SetColor(rowOddColor)
		}
		dc.DrawRectangle(tableX, y, tableW, rowHeights[i])
		dc.Fill()

		dc.SetColor(borderColor)
		dc.SetLineWidth(0.5)
		dc.DrawLine(tableX, y+rowHeights[i], tableX+tableW, y+rowHeights[i])
		dc.Stroke()

		dc.SetColor(labelColor)
		dc.DrawString(row.label, tableX+8, y+rowPaddingY+lineH)

		dc.SetColor(textColor)
		for j, text := range wrapped[i] {
			dc.DrawString(text, tableX+labelWidth, y+rowPaddingY+lineH+float64(j)*(lineH+lineSpacing))
		}
		y += rowHeights[i]
	}

	// Outer border
	dc.SetColor(borderColor)
	dc.SetLineWidth(1)
	dc.DrawRectangle(tableX, float64(cardPadding/2+titleHeight), tableW, tableHeight)
	dc.Stroke()

	// Footer
	dc.SetColor(labelColor)
	dc.DrawStringAnchored(DetailHeader, float64(cardWidth)/2, height-footerHeight/2, 0.5, 0.5)

	return encodeImage(dc.Image())
}

// wrapText splits text into lines no wider than maxWidth, breaking on spaces.
// A single word wider than maxWidth gets a line of its own.
func wrapText(dc *gg.Context, text string, maxWidth float64) []string {
	text = strings.TrimSpace(strings.ReplaceAll(text, "\n", " "))
	if text == "" {
		return []string{""}
	}

	var lines []string
	current := ""
	for _, word := range strings.Fields(text) {
		candidate := word
		if current != "" {
			candidate = current + " " + word
		}
		if w, _ := dc.MeasureString(candidate); w <= maxWidth || current == "" {
			current = candidate
			continue
		}
		lines = append(lines, current)
		current = word
	}
	if current != "" {
		lines = append(lines, current)
	}
	return lines
}

func encodeImage(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode PNG: %w", err)
	}
	return buf.Bytes(), nil
}
