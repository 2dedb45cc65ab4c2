package pdf

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// DonorCardData holds the fields printed on a donor card
type DonorCardData struct {
	DonorID        int64
	Name           string
	Email          string
	Phone          string
	BloodGroup     string
	Area           string
	City           string
	RegisteredAt   time.Time
	QRCodePngBytes []byte
}

// GenerateDonorCardPDF renders a single-page donor card. The QR code
// encodes the donor id and blood group for quick lookup at donation
// drives.
func GenerateDonorCardPDF(data DonorCardData) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A5", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	// Header band
	pdf.SetFillColor(198, 40, 40)
	pdf.Rect(0, 0, 148, 22, "F")
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetXY(15, 7)
	pdf.Cell(0, 8, "BLOOD DONOR REGISTRY")

	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(15, 30)
	pdf.SetFont("Helvetica", "B", 13)
	pdf.Cell(0, 8, "Donor Card")
	pdf.Ln(12)

	writeRow := func(label, value string) {
		pdf.SetFont("Helvetica", "", 9)
		pdf.SetTextColor(120, 120, 120)
		pdf.CellFormat(35, 7, label, "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "B", 11)
		pdf.SetTextColor(0, 0, 0)
		pdf.CellFormat(0, 7, value, "", 1, "L", false, 0, "")
	}

	writeRow("Donor ID", fmt.Sprintf("#%d", data.DonorID))
	writeRow("Name", data.Name)
	writeRow("Blood Group", data.BloodGroup)
	writeRow("Phone", data.Phone)
	writeRow("Area", data.Area)
	writeRow("City", data.City)
	writeRow("Registered", data.RegisteredAt.Format("02 Jan 2006"))

	// QR code bottom-right
	if len(data.QRCodePngBytes) > 0 {
		opts := gofpdf.ImageOptions{ImageType: "PNG"}
		pdf.RegisterImageOptionsReader("donor-qr", opts, bytes.NewReader(data.QRCodePngBytes))
		pdf.ImageOptions("donor-qr", 98, 95, 35, 35, false, opts, 0, "")
	}

	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetTextColor(120, 120, 120)
	pdf.SetXY(15, 185)
	pdf.Cell(0, 5, "Present this card when donating. Every drop counts.")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render donor card PDF: %w", err)
	}
	return buf.Bytes(), nil
}
