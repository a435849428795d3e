// Package qrpdf lays out one QR code per vehicle across paginated A4 pages
// and renders the result as a downloadable PDF for printing and sticking on
// the fleet.
package qrpdf

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
	qrcode "github.com/skip2/go-qrcode"
	"go.uber.org/zap"
)

// Layout constants, all in millimetres on an A4 page
const (
	PageWidth  = 210.0
	PageHeight = 297.0
	Margin     = 20.0
	QRSize     = 40.0
	TextHeight = 12.0
	Spacing    = 15.0
)

// rasterScale is the oversampling factor applied when rasterizing each QR so
// the printed code stays sharp
const rasterScale = 3

// Item is one cell on the sheet: the QR payload plus the labels printed
// beneath it
type Item struct {
	VehicleNumber string
	Model         string
}

// ProgressFunc receives the running completion percentage after each vehicle
// is processed
type ProgressFunc func(percent float64)

// ColumnsPerRow returns how many QR cells fit on one row
func ColumnsPerRow() int {
	usable := PageWidth - 2*Margin
	return int(usable / (QRSize + Spacing))
}

// RowsPerPage returns how many rows of QR cells fit on one page
func RowsPerPage() int {
	usable := PageHeight - 2*Margin
	return int(usable / (QRSize + TextHeight + Spacing))
}

// ItemsPerPage returns how many QR cells fit on one page
func ItemsPerPage() int {
	return ColumnsPerRow() * RowsPerPage()
}

// PageCount returns the number of pages needed for n rendered cells
func PageCount(n int) int {
	if n <= 0 {
		return 0
	}
	perPage := ItemsPerPage()
	return (n + perPage - 1) / perPage
}

// BuildSheet renders the QR sheet for the given items and returns the PDF
// bytes. Items are placed in input order. An item with an empty vehicle
// number cannot be encoded and is skipped (logged, not fatal); any other
// failure aborts the whole batch. The progress callback, when non-nil, is
// invoked after every input item, skipped or not.
func BuildSheet(items []Item, progress ProgressFunc) ([]byte, error) {
	pdf, err := buildSheet(items, progress)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to write pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func buildSheet(items []Item, progress ProgressFunc) (*gofpdf.Fpdf, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Vehicle QR Sheet", false)

	perPage := ItemsPerPage()
	cols := ColumnsPerRow()

	placed := 0
	total := len(items)
	for i, item := range items {
		if item.VehicleNumber == "" {
			zap.S().Warnw("skipping vehicle with no number", "index", i)
			reportProgress(progress, i+1, total)
			continue
		}

		qr, err := qrcode.New(item.VehicleNumber, qrcode.Medium)
		if err != nil {
			return nil, fmt.Errorf("failed to encode qr for %q: %w", item.VehicleNumber, err)
		}
		png, err := qr.PNG(int(QRSize) * rasterScale)
		if err != nil {
			return nil, fmt.Errorf("failed to rasterize qr for %q: %w", item.VehicleNumber, err)
		}

		if placed%perPage == 0 {
			pdf.AddPage()
		}
		cell := placed % perPage
		col := cell % cols
		row := cell / cols

		x := Margin + float64(col)*(QRSize+Spacing)
		y := Margin + float64(row)*(QRSize+TextHeight+Spacing)

		name := fmt.Sprintf("qr-%d", placed)
		pdf.RegisterImageOptionsReader(name, gofpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(png))
		pdf.ImageOptions(name, x, y, QRSize, QRSize, false, gofpdf.ImageOptions{ImageType: "PNG"}, 0, "")

		pdf.SetFont("Helvetica", "B", 10)
		pdf.Text(x, y+QRSize+5, item.VehicleNumber)
		pdf.SetFont("Helvetica", "", 8)
		pdf.Text(x, y+QRSize+9, item.Model)

		placed++
		reportProgress(progress, i+1, total)
	}

	if pdf.Err() {
		return nil, fmt.Errorf("failed to build qr sheet: %v", pdf.Error())
	}
	return pdf, nil
}

func reportProgress(progress ProgressFunc, processed, total int) {
	if progress == nil || total == 0 {
		return
	}
	progress(float64(processed) / float64(total) * 100)
}
