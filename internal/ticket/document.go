package ticket

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
	qrcode "github.com/skip2/go-qrcode"

	"neksa/internal/model"
)

// Layout constants for the A4 landscape ticket. Truncation and wrapping
// widths are fixed, never derived from the data.
const (
	leftPanelRatio  = 0.35
	qrSize          = 60.0
	qrImagePixels   = 500
	maxEventNameLen = 25
	addressColWidth = 90.0
	lineHeight      = 6.0
)

// creationDate pins the PDF metadata so re-downloads of the same ticket are
// byte-identical.
var creationDate = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

// RenderDocument produces the printable ticket for a registration: a dark
// left panel with the brand mark and the QR code, and a right panel with the
// event and attendee details.
func RenderDocument(reg *model.Registration, event *model.Event) ([]byte, error) {
	doc := fpdf.New("L", "mm", "A4", "")
	doc.SetCreationDate(creationDate)
	doc.SetModificationDate(creationDate)
	doc.SetAutoPageBreak(false, 0)
	doc.AddPage()
	width, height := doc.GetPageSize()

	leftWidth := width * leftPanelRatio
	doc.SetFillColor(15, 15, 15)
	doc.Rect(0, 0, leftWidth, height, "F")

	doc.SetTextColor(255, 255, 255)
	doc.SetFont("Helvetica", "B", 14)
	doc.Text(20, 20, "NEKSA PASS")

	payload := Encode(reg.ID)
	png, err := qrcode.Encode(payload, qrcode.Medium, qrImagePixels)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}
	opts := fpdf.ImageOptions{ImageType: "PNG"}
	doc.RegisterImageOptionsReader("qr", opts, bytes.NewReader(png))
	doc.ImageOptions("qr", (leftWidth-qrSize)/2, 60, qrSize, qrSize, false, opts, 0, "")

	doc.SetFont("Courier", "", 10)
	doc.SetTextColor(150, 150, 150)
	idText := "ID: " + payload
	doc.Text((leftWidth-doc.GetStringWidth(idText))/2, 60+qrSize+10, idText)

	right := leftWidth + 20

	doc.SetTextColor(100, 100, 100)
	doc.SetFont("Helvetica", "B", 10)
	doc.Text(right, 20, "OFFICIAL EVENT TICKET")

	doc.SetTextColor(0, 0, 0)
	doc.SetFontSize(28)
	doc.Text(right, 35, truncateName(event.Name))

	doc.SetDrawColor(200, 200, 200)
	doc.Line(right, 45, width-20, 45)

	doc.SetFontSize(10)
	doc.SetTextColor(100, 100, 100)
	doc.Text(right, 60, "ATTENDEE")

	doc.SetFontSize(22)
	doc.SetTextColor(0, 0, 0)
	doc.Text(right, 72, reg.FullName)

	if reg.Title != "" && reg.Title != "-" {
		doc.SetFontSize(14)
		doc.SetTextColor(80, 80, 80)
		doc.Text(right, 80, strings.ToUpper(reg.Title))
		doc.SetFont("Helvetica", "", 12)
		doc.SetTextColor(100, 100, 100)
		doc.Text(right, 88, reg.Email)
	} else {
		doc.SetFont("Helvetica", "", 12)
		doc.SetTextColor(80, 80, 80)
		doc.Text(right, 82, reg.Email)
	}

	const gridY = 110.0
	doc.SetFont("Helvetica", "B", 10)
	doc.SetTextColor(100, 100, 100)
	doc.Text(right, gridY, "DATE")
	doc.SetFontSize(14)
	doc.SetTextColor(0, 0, 0)
	doc.Text(right, gridY+10, event.Date.Format("January 2, 2006"))

	doc.SetFontSize(10)
	doc.SetTextColor(100, 100, 100)
	doc.Text(right+80, gridY, "LOCATION")
	doc.SetFontSize(14)
	doc.SetTextColor(0, 0, 0)
	for i, line := range doc.SplitText(event.Address, addressColWidth) {
		doc.Text(right+80, gridY+10+float64(i)*lineHeight, line)
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("render ticket pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// Filename returns the download name for a rendered ticket, with whitespace
// runs in the attendee name collapsed.
func Filename(fullName string) string {
	return strings.Join(strings.Fields(fullName), "_") + "_ticket.pdf"
}

func truncateName(name string) string {
	if len(name) > maxEventNameLen {
		return name[:maxEventNameLen] + "..."
	}
	return name
}
