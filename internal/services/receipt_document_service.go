package services

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/phpdave11/gofpdf"

	"github.com/Fredrickmureti/tour-kenya-sub001/internal/models"
)

// ReceiptDocumentService renders receipts as PDF
type ReceiptDocumentService struct {
	currency string
	company  string
}

// NewReceiptDocumentService creates a new receipt document service
func NewReceiptDocumentService(currency string) *ReceiptDocumentService {
	if currency == "" {
		currency = "KES"
	}
	return &ReceiptDocumentService{currency: currency, company: "Tour Kenya"}
}

// Filename is the download name for a receipt PDF
func (s *ReceiptDocumentService) Filename(detail *models.ReceiptDetail) string {
	name := detail.ReceiptNumber
	if name == "" {
		name = detail.ID
	}
	return "receipt-" + name + ".pdf"
}

// Render produces the PDF bytes of a receipt
func (s *ReceiptDocumentService) Render(detail *models.ReceiptDetail) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Receipt "+detail.ReceiptNumber, false)
	pdf.SetAuthor(s.company, false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, strings.ToUpper(s.company)+" - BOOKING RECEIPT")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	lines := []string{
		"Receipt No   : " + orDash(detail.ReceiptNumber),
		"Issued       : " + detail.CreatedAt.In(eastAfricaTime).Format("2006-01-02 15:04"),
		"Status       : " + strings.ToUpper(detail.PaymentStatus),
	}
	if detail.PaymentMethod != nil {
		lines = append(lines, "Payment      : "+*detail.PaymentMethod)
	}
	if detail.BranchName != nil {
		lines = append(lines, "Branch       : "+*detail.BranchName)
	}
	for _, l := range lines {
		pdf.Cell(0, 7, l)
		pdf.Ln(7)
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, "Passenger")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 7, "Name   : "+orDash(deref(detail.PassengerName)))
	pdf.Ln(7)
	pdf.Cell(0, 7, "Email  : "+orDash(deref(detail.PassengerEmail)))
	pdf.Ln(7)
	pdf.Cell(0, 7, "Phone  : "+orDash(deref(detail.PassengerPhone)))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, "Trip")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 12)
	trip := []string{
		fmt.Sprintf("Route     : %s to %s", detail.FromLocation, detail.ToLocation),
		"Date      : " + detail.DepartureDate,
		"Departure : " + detail.DepartureTime,
	}
	if detail.ArrivalTime != nil && *detail.ArrivalTime != "" {
		trip = append(trip, "Arrival   : "+*detail.ArrivalTime)
	}
	trip = append(trip, "Seats     : "+joinSeats(detail.SeatNumbers))
	for _, l := range trip {
		pdf.Cell(0, 7, l)
		pdf.Ln(7)
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 14)
	pdf.Cell(0, 9, "Total: "+FormatAmount(s.currency, detail.Amount))
	pdf.Ln(12)

	if detail.IsSignedOff && detail.SignedOffAt != nil {
		pdf.SetFont("Helvetica", "", 10)
		pdf.Cell(0, 6, "Signed off on "+detail.SignedOffAt.In(eastAfricaTime).Format("2006-01-02 15:04"))
		pdf.Ln(8)
	}

	pdf.SetFont("Helvetica", "I", 10)
	pdf.MultiCell(0, 6, "Please present this receipt and a valid ID at boarding. Arrive 30 minutes before departure.", "", "", false)
	pdf.Ln(2)
	pdf.Cell(0, 6, "Generated "+time.Now().In(eastAfricaTime).Format("2006-01-02 15:04"))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render receipt: %w", err)
	}
	return buf.Bytes(), nil
}

// FormatAmount renders 4800 as "KES 4,800.00"
func FormatAmount(currency string, amount float64) string {
	s := strconv.FormatFloat(amount, 'f', 2, 64)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	intPart, frac := s[:len(s)-3], s[len(s)-3:]
	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}

	out := b.String() + frac
	if neg {
		out = "-" + out
	}
	return currency + " " + out
}

func joinSeats(seats []int) string {
	if len(seats) == 0 {
		return "-"
	}
	parts := make([]string, len(seats))
	for i, n := range seats {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ", ")
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
