package payroll

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"
)

const (
	colorBrand    = "#4F46E5"
	colorTagline  = "#E0E7FF"
	colorHeading  = "#111827"
	colorMuted    = "#6B7280"
	colorBorder   = "#E5E7EB"
	colorNetPay   = "#10B981"
	footerNotice  = "This is a system-generated payslip. No signature required."
	generatedTime = "02 Jan 2006 15:04 MST"
	joiningLayout = "02 Jan 2006"
)

// Document is a fully rendered file ready to be written to a client.
type Document struct {
	Filename    string
	ContentType string
	Body        []byte
}

type RenderOptions struct {
	BrandName string
	Tagline   string
	Currency  string
	Location  *time.Location
	LogoPath  string
	Compress  bool
	Now       func() time.Time
}

// Renderer lays out payslips as single-page A4 PDFs. Output depends only on the
// payslip, the employee and the clock.
type Renderer struct {
	opts     RenderOptions
	logo     []byte
	logoType string
}

func NewRenderer(opts RenderOptions) (*Renderer, error) {
	if opts.BrandName == "" {
		opts.BrandName = "HRM PRO"
	}
	if opts.Tagline == "" {
		opts.Tagline = "Employee Management System"
	}
	if opts.Currency == "" {
		opts.Currency = "INR"
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	r := &Renderer{opts: opts}
	if opts.LogoPath != "" {
		data, err := os.ReadFile(opts.LogoPath)
		if err != nil {
			return nil, fmt.Errorf("read payslip logo: %w", err)
		}
		switch strings.ToLower(filepath.Ext(opts.LogoPath)) {
		case ".png":
			r.logoType = "PNG"
		case ".jpg", ".jpeg":
			r.logoType = "JPG"
		default:
			return nil, fmt.Errorf("payslip logo must be PNG or JPEG: %s", opts.LogoPath)
		}
		r.logo = data
	}
	return r, nil
}

// documentDate stamps the PDF info dictionary from the payslip itself, so only
// the footer changes between renders of the same payslip.
func documentDate(payslip Payslip) time.Time {
	if !payslip.UpdatedAt.IsZero() {
		return payslip.UpdatedAt.UTC()
	}
	return time.Date(payslip.Year, time.Month(payslip.Month), 1, 0, 0, 0, 0, time.UTC)
}

// PayslipFilename is the attachment name used for downloads.
func PayslipFilename(employeeCode string, month, year int) string {
	return fmt.Sprintf("payslip-%s-%d-%d.pdf", employeeCode, month, year)
}

func (r *Renderer) Render(payslip Payslip, employee Employee) (Document, error) {
	generatedAt := r.opts.Now().In(r.opts.Location)

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetCompression(r.opts.Compress)
	pdf.SetCatalogSort(true)
	stamp := documentDate(payslip)
	pdf.SetCreationDate(stamp)
	pdf.SetModificationDate(stamp)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetMargins(14, 14, 14)
	pdf.SetTitle(tr(fmt.Sprintf("Payslip %d/%d", payslip.Month, payslip.Year)), false)
	pdf.SetAuthor(tr(r.opts.BrandName), false)
	pdf.AddPage()
	pageW, pageH := pdf.GetPageSize()
	contentW := pageW - 28

	// header band
	setFill(pdf, colorBrand)
	pdf.Rect(0, 0, pageW, 39, "F")
	textX := 14.0
	if len(r.logo) > 0 {
		options := gofpdf.ImageOptions{ImageType: r.logoType, ReadDpi: true}
		pdf.RegisterImageOptionsReader("logo", options, bytes.NewReader(r.logo))
		pdf.ImageOptions("logo", 14, 12, 21, 0, false, options, 0, "")
		textX = 42
	}
	setText(pdf, "#FFFFFF")
	pdf.SetFont("Helvetica", "B", 22)
	pdf.SetXY(textX, 12)
	pdf.CellFormat(0, 10, tr(r.opts.BrandName), "", 1, "L", false, 0, "")
	setText(pdf, colorTagline)
	pdf.SetFont("Helvetica", "", 12)
	pdf.SetXY(textX, 24)
	pdf.CellFormat(0, 7, tr(r.opts.Tagline), "", 1, "L", false, 0, "")

	setText(pdf, colorHeading)
	pdf.SetFont("Helvetica", "B", 18)
	pdf.SetXY(14, 48)
	pdf.CellFormat(contentW, 9, "MONTHLY PAYSLIP", "", 1, "C", false, 0, "")
	setText(pdf, colorMuted)
	pdf.SetFont("Helvetica", "", 12)
	pdf.CellFormat(contentW, 7, fmt.Sprintf("%d / %d", payslip.Month, payslip.Year), "", 1, "C", false, 0, "")

	// employee details box
	boxY := 70.0
	setDraw(pdf, colorBorder)
	pdf.Rect(14, boxY, contentW, 40, "D")
	setText(pdf, colorHeading)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(18, boxY+4)
	pdf.CellFormat(0, 6, "Employee Details", "", 1, "L", false, 0, "")

	joining := placeholder
	if employee.DateOfJoining != nil {
		joining = employee.DateOfJoining.Format(joiningLayout)
	}
	rows := [][2]string{
		{"Name: " + orPlaceholder(employee.FullName), "Designation: " + orPlaceholder(employee.Designation)},
		{"Employee Code: " + orPlaceholder(employee.EmployeeCode), "Joining Date: " + joining},
		{"Department: " + orPlaceholder(employee.Department), fmt.Sprintf("Pay Period: %d/%d", payslip.Month, payslip.Year)},
		{"Email: " + orPlaceholder(employee.PersonalEmail), "Phone: " + orPlaceholder(employee.Phone)},
	}
	pdf.SetFont("Helvetica", "", 10)
	for i, row := range rows {
		y := boxY + 12 + float64(i)*6.5
		pdf.SetXY(18, y)
		pdf.CellFormat(88, 6, tr(row[0]), "", 0, "L", false, 0, "")
		pdf.SetXY(110, y)
		pdf.CellFormat(88, 6, tr(row[1]), "", 0, "L", false, 0, "")
	}

	pdf.SetXY(14, boxY+48)
	section(pdf, contentW, "Attendance Summary", []string{
		fmt.Sprintf("Working Days: %d", payslip.WorkingDays),
		fmt.Sprintf("Present Days: %d", payslip.PresentDays),
		fmt.Sprintf("Unpaid Leaves: %d", payslip.UnpaidLeaves),
	})
	pdf.Ln(4)
	section(pdf, contentW, "Salary Breakdown", []string{
		"Basic Salary: " + r.amount(payslip.BasicSalary),
		"Total Deduction: " + r.amount(payslip.Deduction),
	})

	bannerY := pdf.GetY() + 6
	setFill(pdf, colorNetPay)
	pdf.Rect(14, bannerY, contentW, 16, "F")
	setText(pdf, "#FFFFFF")
	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetXY(20, bannerY+4)
	pdf.CellFormat(contentW-12, 8, "Net Salary Payable: "+r.amount(payslip.NetSalary), "", 1, "L", false, 0, "")

	setText(pdf, colorMuted)
	pdf.SetFont("Helvetica", "", 9)
	pdf.SetXY(14, pageH-28)
	pdf.CellFormat(contentW, 5, footerNotice, "", 1, "C", false, 0, "")
	pdf.SetXY(14, pageH-21)
	pdf.CellFormat(contentW, 5, "Generated on "+generatedAt.Format(generatedTime), "", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return Document{}, fmt.Errorf("render payslip: %w", err)
	}
	return Document{
		Filename:    PayslipFilename(employee.EmployeeCode, payslip.Month, payslip.Year),
		ContentType: ContentTypePDF,
		Body:        buf.Bytes(),
	}, nil
}

func (r *Renderer) amount(d decimal.Decimal) string {
	return r.opts.Currency + " " + formatMoney(d)
}

func section(pdf *gofpdf.Fpdf, width float64, title string, lines []string) {
	setText(pdf, colorHeading)
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(width, 8, title, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	for _, line := range lines {
		pdf.CellFormat(width, 6.5, line, "", 1, "L", false, 0, "")
	}
}

func orPlaceholder(value string) string {
	if strings.TrimSpace(value) == "" {
		return placeholder
	}
	return value
}

func setFill(pdf *gofpdf.Fpdf, hex string) {
	r, g, b := rgb(hex)
	pdf.SetFillColor(r, g, b)
}

func setText(pdf *gofpdf.Fpdf, hex string) {
	r, g, b := rgb(hex)
	pdf.SetTextColor(r, g, b)
}

func setDraw(pdf *gofpdf.Fpdf, hex string) {
	r, g, b := rgb(hex)
	pdf.SetDrawColor(r, g, b)
}

// rgb parses a #RRGGBB literal. The palette is fixed, so bad input falls back to black.
func rgb(hex string) (int, int, int) {
	value, err := strconv.ParseUint(strings.TrimPrefix(hex, "#"), 16, 32)
	if err != nil {
		return 0, 0, 0
	}
	return int(value >> 16 & 0xFF), int(value >> 8 & 0xFF), int(value & 0xFF)
}
