package payslip

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

const (
	textWidth       = 50
	textLabelWidth  = 26
	textAmountWidth = textWidth - textLabelWidth
)

// GenerateTextReport renders the report as fixed-width text. Hangul is
// measured as double width so columns stay aligned in a terminal.
func GenerateTextReport(r Report) string {
	var b strings.Builder
	major := strings.Repeat("=", textWidth)
	minor := strings.Repeat("-", textWidth)

	b.WriteString(major + "\n")
	b.WriteString(center(r.Title+" ("+r.Period+")", textWidth) + "\n")
	b.WriteString(major + "\n")

	writeRow(&b, "사업장", firstNonEmpty(r.BusinessName, r.BusinessID))
	writeRow(&b, "직원", firstNonEmpty(r.EmployeeName, r.UserID))
	if r.Position != "" {
		writeRow(&b, "직위", r.Position)
	}
	writeRow(&b, "급여형태", r.WageType)
	writeRow(&b, "기간", r.PeriodRange)

	b.WriteString(minor + "\n")
	b.WriteString("[근무 내역]\n")
	for _, line := range r.WorkSummary {
		writeRow(&b, line.Label, line.Formatted)
	}

	b.WriteString(minor + "\n")
	b.WriteString("[지급 내역]\n")
	for _, line := range r.Earnings {
		writeRow(&b, line.Label, line.Formatted)
	}
	writeRow(&b, r.GrossPay.Label, r.GrossPay.Formatted)

	b.WriteString(minor + "\n")
	b.WriteString("[공제 내역]\n")
	for _, line := range r.Deductions {
		writeRow(&b, line.Label, line.Formatted)
	}
	writeRow(&b, r.TotalDeductions.Label, r.TotalDeductions.Formatted)

	b.WriteString(major + "\n")
	writeRow(&b, r.NetPay.Label, r.NetPay.Formatted)
	b.WriteString(major + "\n")

	for _, note := range r.Notes {
		b.WriteString("* " + note + "\n")
	}
	return b.String()
}

func writeRow(b *strings.Builder, label, value string) {
	b.WriteString(runewidth.FillRight(label, textLabelWidth))
	b.WriteString(runewidth.FillLeft(value, textAmountWidth))
	b.WriteString("\n")
}

func center(s string, width int) string {
	pad := (width - runewidth.StringWidth(s)) / 2
	if pad <= 0 {
		return s
	}
	return strings.Repeat(" ", pad) + s
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
