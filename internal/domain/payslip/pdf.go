package payslip

import (
	"bytes"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/jung-kurt/gofpdf"
	"github.com/skip2/go-qrcode"

	"dotplatform/internal/domain/payroll"
)

const (
	pdfFontFamily   = "payslip"
	pdfMargin       = 15.0
	pdfLabelWidth   = 110.0
	pdfAmountWidth  = 70.0
	pdfRowHeight    = 7.0
	pdfQRSize       = 28.0
	pdfQRImageName  = "verification-qr"
	pdfFallbackFont = "Helvetica"
)

// englishLabels is used when no UTF-8 font is configured; the core PDF fonts
// cannot render Hangul.
var englishLabels = map[string]string{
	"title":               "Pay Statement",
	"business":            "Business",
	"employee":            "Employee",
	"position":            "Position",
	"wageType":            "Wage type",
	"period":              "Period",
	"workSummary":         "Work summary",
	"earnings":            "Earnings",
	"deductions":          "Deductions",
	"totalHours":          "Total hours",
	"regularHours":        "Regular hours",
	"overtimeHours":       "Overtime hours",
	"nightHours":          "Night hours",
	"weekendHours":        "Weekend hours",
	"holidayHours":        "Holiday hours",
	"workDays":            "Work days",
	"regularPay":          "Base pay",
	"overtimePay":         "Overtime pay",
	"nightShiftPay":       "Night shift pay",
	"weekendPay":          "Weekend pay",
	"holidayPay":          "Holiday pay",
	"weeklyRest":          "Weekly rest allowance",
	"annualLeave":         "Annual leave allowance",
	"meal":                "Meal allowance",
	"transport":           "Transport allowance",
	"family":              "Family allowance",
	"position_allowance":  "Position allowance",
	"longevity":           "Longevity allowance",
	"otherAllowances":     "Other allowances",
	"nationalPension":     "National pension",
	"healthInsurance":     "Health insurance",
	"longTermCare":        "Long-term care",
	"employmentInsurance": "Employment insurance",
	"incomeTax":           "Income tax",
	"localIncomeTax":      "Local income tax",
	"otherDeductions":     "Other deductions",
	"grossPay":            "Gross pay",
	"totalDeductions":     "Total deductions",
	"netPay":              "Net pay",
	"issued":              "Issued",
	"verify":              "Scan to verify",
}

var koreanLabels = map[string]string{
	"business":    "사업장",
	"employee":    "직원",
	"position":    "직위",
	"wageType":    "급여형태",
	"period":      "기간",
	"workSummary": "근무 내역",
	"earnings":    "지급 내역",
	"deductions":  "공제 내역",
	"issued":      "발행일",
	"verify":      "진위 확인용 QR",
}

type PDFOptions struct {
	// FontPath points at a TTF with Hangul glyphs. Empty renders English labels.
	FontPath string
	// Now stamps the footer; defaults to time.Now.
	Now func() time.Time
}

type Generator struct {
	opts PDFOptions
}

func NewGenerator(opts PDFOptions) *Generator {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Generator{opts: opts}
}

type pdfWriter struct {
	pdf     *gofpdf.Fpdf
	family  string
	unicode bool
}

func (w *pdfWriter) label(key, korean string) string {
	if w.unicode {
		if korean != "" {
			return korean
		}
		return koreanLabels[key]
	}
	if en, ok := englishLabels[key]; ok {
		return en
	}
	return asciiOnly(korean)
}

func (w *pdfWriter) amount(amount int64) string {
	if w.unicode {
		return payroll.FormatWon(amount)
	}
	return payroll.FormatNumber(amount) + " KRW"
}

func (w *pdfWriter) text(s string) string {
	if w.unicode {
		return s
	}
	return asciiOnly(s)
}

func (w *pdfWriter) font(style string, size float64) {
	w.pdf.SetFont(w.family, style, size)
}

func (w *pdfWriter) row(label, value string) {
	w.pdf.CellFormat(pdfLabelWidth, pdfRowHeight, label, "B", 0, "L", false, 0, "")
	w.pdf.CellFormat(pdfAmountWidth, pdfRowHeight, value, "B", 1, "R", false, 0, "")
}

func (w *pdfWriter) section(title string) {
	w.pdf.Ln(3)
	w.font("B", 12)
	w.pdf.SetFillColor(235, 239, 245)
	w.pdf.CellFormat(pdfLabelWidth+pdfAmountWidth, pdfRowHeight+1, title, "", 1, "L", true, 0, "")
	w.font("", 10)
}

// GeneratePDF renders a single-employee statement. The report must carry a
// userId; anything else missing is printed blank.
func (g *Generator) GeneratePDF(r Report) ([]byte, error) {
	if strings.TrimSpace(r.UserID) == "" {
		return nil, fmt.Errorf("%w: userId 누락", ErrIncompleteData)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(true, pdfMargin)
	w := &pdfWriter{pdf: pdf, family: pdfFallbackFont}
	if g.opts.FontPath != "" {
		pdf.AddUTF8Font(pdfFontFamily, "", g.opts.FontPath)
		pdf.AddUTF8Font(pdfFontFamily, "B", g.opts.FontPath)
		if err := pdf.Error(); err != nil {
			return nil, fmt.Errorf("load payslip font: %w", err)
		}
		w.family = pdfFontFamily
		w.unicode = true
	}
	pdf.SetTitle(fmt.Sprintf("payslip %s %s", r.UserID, r.PeriodKey), true)
	pdf.SetCreator("DOT Platform", true)
	pdf.AddPage()

	// Header
	w.font("B", 18)
	title := r.Title
	if !w.unicode || title == "" {
		title = englishLabels["title"]
	}
	pdf.CellFormat(0, 12, fmt.Sprintf("%s (%s)", w.text(title), r.PeriodKey), "", 1, "C", false, 0, "")
	pdf.Ln(2)
	w.font("", 10)
	w.row(w.label("business", ""), w.text(firstNonEmpty(r.BusinessName, r.BusinessID)))
	employee := r.UserID
	if name := w.text(r.EmployeeName); strings.TrimSpace(name) != "" {
		employee = fmt.Sprintf("%s (%s)", name, r.UserID)
	}
	w.row(w.label("employee", ""), employee)
	if r.Position != "" {
		w.row(w.label("position", ""), w.text(r.Position))
	}
	w.row(w.label("wageType", ""), w.text(r.WageType))
	w.row(w.label("period", ""), r.PeriodRange)

	w.section(w.label("workSummary", ""))
	for _, line := range r.WorkSummary {
		value := line.Formatted
		if !w.unicode {
			value = fmt.Sprintf("%.1f", line.Value)
		}
		w.row(w.label(line.Key, line.Label), value)
	}

	w.section(w.label("earnings", ""))
	for _, line := range r.Earnings {
		w.row(w.label(pdfKey(line.Key), line.Label), w.amount(line.Amount))
	}
	w.font("B", 10)
	w.row(w.label(r.GrossPay.Key, r.GrossPay.Label), w.amount(r.GrossPay.Amount))

	w.section(w.label("deductions", ""))
	for _, line := range r.Deductions {
		w.row(w.label(line.Key, line.Label), w.amount(line.Amount))
	}
	w.font("B", 10)
	w.row(w.label(r.TotalDeductions.Key, r.TotalDeductions.Label), w.amount(r.TotalDeductions.Amount))

	// Net pay box
	pdf.Ln(6)
	w.font("B", 14)
	pdf.SetFillColor(224, 236, 255)
	pdf.SetDrawColor(42, 91, 215)
	pdf.SetLineWidth(0.6)
	pdf.CellFormat(pdfLabelWidth, 14, "  "+w.label(r.NetPay.Key, r.NetPay.Label), "LTB", 0, "L", true, 0, "")
	pdf.CellFormat(pdfAmountWidth, 14, w.amount(r.NetPay.Amount)+"  ", "RTB", 1, "R", true, 0, "")
	pdf.SetLineWidth(0.2)
	pdf.SetDrawColor(0, 0, 0)

	if w.unicode && len(r.Notes) > 0 {
		pdf.Ln(3)
		w.font("", 9)
		for _, note := range r.Notes {
			pdf.CellFormat(0, 5, "* "+note, "", 1, "L", false, 0, "")
		}
	}

	if err := g.footer(w, r); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g *Generator) footer(w *pdfWriter, r Report) error {
	png, err := qrcode.Encode(VerificationCode(r), qrcode.Medium, 256)
	if err != nil {
		return fmt.Errorf("payslip qr code: %w", err)
	}
	pdf := w.pdf
	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader(pdfQRImageName, opts, bytes.NewReader(png))

	_, pageHeight := pdf.GetPageSize()
	top := pageHeight - pdfMargin - pdfQRSize
	if pdf.GetY()+4 > top {
		pdf.AddPage()
	}
	pdf.ImageOptions(pdfQRImageName, pdfMargin, top, pdfQRSize, pdfQRSize, false, opts, 0, "")

	w.font("", 8)
	pdf.SetXY(pdfMargin+pdfQRSize+4, top+pdfQRSize-14)
	pdf.CellFormat(0, 5, fmt.Sprintf("%s: %s", w.label("issued", ""), g.opts.Now().Format("2006-01-02")), "", 1, "L", false, 0, "")
	pdf.SetX(pdfMargin + pdfQRSize + 4)
	pdf.CellFormat(0, 5, w.label("verify", ""), "", 1, "L", false, 0, "")
	return pdf.Error()
}

// VerificationCode is the QR payload printed on every statement.
func VerificationCode(r Report) string {
	return fmt.Sprintf("DOT-PAYSLIP|%s|%s|%s|%d", r.BusinessID, r.UserID, r.PeriodKey, r.NetPay.Amount)
}

func pdfKey(key string) string {
	if key == "position" {
		return "position_allowance"
	}
	return key
}

func asciiOnly(s string) string {
	return strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII {
			return -1
		}
		return r
	}, s)
}
