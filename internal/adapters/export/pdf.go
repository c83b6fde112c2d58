package export

import (
	"bytes"
	"context"
	"fmt"
	"math"

	"github.com/jung-kurt/gofpdf"

	"github.com/lcalzada-xor/nearby/internal/core/domain"
)

// PDFExporter renders a snapshot as a printable report
type PDFExporter struct{}

// NewPDFExporter creates a new PDF exporter instance
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// Render generates the report.
func (e *PDFExporter) Render(snap domain.Snapshot) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	e.addHeader(pdf, snap)
	if snap.PeopleMode {
		e.addPeople(pdf, tr, snap.People)
	} else {
		e.addAccessPoints(pdf, tr, snap.Collections)
		for _, c := range snap.Collections {
			e.addClients(pdf, tr, c)
		}
	}
	e.addFooter(pdf, snap)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return buf.Bytes(), nil
}

// Export writes the report to path, or to Stdout when path is empty.
func (e *PDFExporter) Export(_ context.Context, snap domain.Snapshot, path string) error {
	data, err := e.Render(snap)
	if err != nil {
		return err
	}
	w, err := create(path)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

func (e *PDFExporter) addHeader(pdf *gofpdf.Fpdf, snap domain.Snapshot) {
	title := "Nearby Access Points"
	if snap.PeopleMode {
		title = "Nearby People"
	}
	pdf.SetFont("Arial", "B", 22)
	pdf.SetTextColor(0, 51, 102)
	pdf.CellFormat(0, 14, title, "", 1, "L", false, 0, "")

	pdf.SetFont("Arial", "", 10)
	pdf.SetTextColor(120, 120, 120)
	pdf.CellFormat(0, 6, fmt.Sprintf("Captured: %s", snap.TakenAt.Format("2006-01-02 15:04:05")), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Frames: %d (dropped %d)", snap.Frames, snap.Dropped), "", 1, "L", false, 0, "")
	pdf.Ln(6)
}

func (e *PDFExporter) sectionTitle(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont("Arial", "B", 14)
	pdf.SetTextColor(0, 51, 102)
	pdf.CellFormat(0, 10, title, "", 1, "L", false, 0, "")
	pdf.Ln(1)
}

func (e *PDFExporter) tableHeader(pdf *gofpdf.Fpdf, widths []float64, cols ...string) {
	pdf.SetFillColor(240, 240, 240)
	pdf.SetFont("Arial", "B", 10)
	pdf.SetTextColor(60, 60, 60)
	for i, c := range cols {
		ln := 0
		if i == len(cols)-1 {
			ln = 1
		}
		pdf.CellFormat(widths[i], 8, c, "1", ln, "L", true, 0, "")
	}
	pdf.SetFont("Arial", "", 9)
}

func (e *PDFExporter) row(pdf *gofpdf.Fpdf, widths []float64, cells ...string) {
	if pdf.GetY() > 270 {
		pdf.AddPage()
	}
	for i, c := range cells {
		ln := 0
		if i == len(cells)-1 {
			ln = 1
		}
		pdf.CellFormat(widths[i], 7, truncate(c, int(widths[i]/2)), "1", ln, "L", false, 0, "")
	}
}

func (e *PDFExporter) empty(pdf *gofpdf.Fpdf, msg string) {
	pdf.SetFont("Arial", "I", 10)
	pdf.SetTextColor(100, 100, 100)
	pdf.CellFormat(0, 7, msg, "", 1, "L", false, 0, "")
	pdf.Ln(5)
}

func (e *PDFExporter) addAccessPoints(pdf *gofpdf.Fpdf, tr func(string) string, cs []domain.Collection) {
	e.sectionTitle(pdf, "Access Points")
	if len(cs) == 0 {
		e.empty(pdf, "No access points seen")
		return
	}

	widths := []float64{45, 38, 45, 18, 14, 20}
	e.tableHeader(pdf, widths, "SSID", "BSSID", "Vendor", "Signal", "Ch", "Clients")
	for _, c := range cs {
		e.row(pdf, widths,
			tr(c.SSID),
			c.RouterID,
			tr(c.Label),
			fmt.Sprintf("%d dBm", c.Signal),
			fmt.Sprintf("%d", c.CurrentChannel),
			fmt.Sprintf("%d", len(c.Nodes)-1),
		)
	}
	pdf.Ln(8)
}

func (e *PDFExporter) addClients(pdf *gofpdf.Fpdf, tr func(string) string, c domain.Collection) {
	if len(c.Nodes) <= 1 {
		return
	}
	if pdf.GetY() > 240 {
		pdf.AddPage()
	}
	e.sectionTitle(pdf, tr(fmt.Sprintf("%s (%s)", c.SSID, c.RouterID)))

	widths := []float64{45, 80, 25}
	e.tableHeader(pdf, widths, "Device", "Vendor", "Signal")
	for _, n := range c.Nodes {
		if n.MAC == c.RouterID {
			continue
		}
		e.row(pdf, widths, n.MAC, tr(n.Properties.Vendor), fmt.Sprintf("%d dBm", n.Properties.Signal))
	}
	pdf.Ln(6)
}

func (e *PDFExporter) addPeople(pdf *gofpdf.Fpdf, tr func(string) string, people []domain.Person) {
	e.sectionTitle(pdf, "Phones")
	if len(people) == 0 {
		e.empty(pdf, "No phones detected")
		return
	}

	widths := []float64{45, 80, 25, 30}
	e.tableHeader(pdf, widths, "MAC", "Vendor", "Signal", "Distance")
	for _, p := range people {
		e.row(pdf, widths, p.MAC, tr(p.Vendor), fmt.Sprintf("%d dBm", p.Signal), formatDistance(p.Distance))
	}
	pdf.Ln(6)
}

func (e *PDFExporter) addFooter(pdf *gofpdf.Fpdf, snap domain.Snapshot) {
	pdf.SetY(-20)
	pdf.SetDrawColor(200, 200, 200)
	pdf.Line(20, pdf.GetY(), 190, pdf.GetY())
	pdf.Ln(3)

	pdf.SetFont("Arial", "I", 8)
	pdf.SetTextColor(120, 120, 120)
	pdf.CellFormat(0, 5, fmt.Sprintf("Session %s", snap.SessionID), "", 1, "C", false, 0, "")
}

func formatDistance(d float32) string {
	if math.IsNaN(float64(d)) || math.IsInf(float64(d), 0) {
		return "n/a"
	}
	return fmt.Sprintf("%.1f m", d)
}

func truncate(s string, n int) string {
	if n > 3 && len(s) > n {
		return s[:n-3] + "..."
	}
	return s
}
