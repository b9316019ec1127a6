package payslip

import (
	"fmt"

	"dotplatform/internal/domain/payroll"
)

// Line is one labelled amount on a statement. Key is a stable identifier for
// renderers that cannot print the Korean label.
type Line struct {
	Key       string `json:"key"`
	Label     string `json:"label"`
	Amount    int64  `json:"amount"`
	Formatted string `json:"formatted"`
}

type HoursLine struct {
	Key       string  `json:"key"`
	Label     string  `json:"label"`
	Value     float64 `json:"value"`
	Formatted string  `json:"formatted"`
}

// Report is the presentation form of a PayrollResult with Korean labels.
type Report struct {
	Title           string      `json:"title"`
	BusinessID      string      `json:"businessId"`
	BusinessName    string      `json:"businessName"`
	UserID          string      `json:"userId"`
	EmployeeName    string      `json:"employeeName"`
	Position        string      `json:"position"`
	WageType        string      `json:"wageType"`
	Period          string      `json:"period"`
	PeriodKey       string      `json:"periodKey"`
	PeriodRange     string      `json:"periodRange"`
	WorkSummary     []HoursLine `json:"workSummary"`
	Earnings        []Line      `json:"earnings"`
	Deductions      []Line      `json:"deductions"`
	GrossPay        Line        `json:"grossPay"`
	TotalDeductions Line        `json:"totalDeductions"`
	NetPay          Line        `json:"netPay"`
	Notes           []string    `json:"notes,omitempty"`
}

func newLine(key, label string, amount int64) Line {
	return Line{Key: key, Label: label, Amount: amount, Formatted: payroll.FormatWon(amount)}
}

func hoursLine(key, label string, minutes int) HoursLine {
	hours := float64(minutes) / 60
	return HoursLine{Key: key, Label: label, Value: hours, Formatted: fmt.Sprintf("%.1f시간", hours)}
}

// FormatPayrollReport builds the labelled report. Optional earnings are
// listed only when non-zero; statutory deductions are always listed.
func FormatPayrollReport(result payroll.PayrollResult) Report {
	h := result.WorkHours
	w := result.Wages
	a := result.Allowances
	d := result.Deductions

	report := Report{
		Title:        "급여명세서",
		BusinessID:   result.Employee.BusinessID,
		BusinessName: result.Employee.BusinessName,
		UserID:       result.Employee.UserID,
		EmployeeName: result.Employee.Name,
		Position:     result.Employee.Position,
		WageType:     wageTypeLabel(result.WageType),
		Period:       fmt.Sprintf("%d년 %d월", result.Period.Year, result.Period.Month),
		PeriodKey:    result.Period.Key(),
		PeriodRange: fmt.Sprintf("%s ~ %s",
			result.Period.Start.Format("2006-01-02"), result.Period.End.Format("2006-01-02")),
		WorkSummary: []HoursLine{
			hoursLine("totalHours", "총 근무시간", h.Total),
			hoursLine("regularHours", "정규 근무시간", h.Regular),
			hoursLine("overtimeHours", "연장 근무시간", h.Overtime),
			hoursLine("nightHours", "야간 근무시간", h.Night),
			hoursLine("weekendHours", "주말 근무시간", h.Weekend),
			hoursLine("holidayHours", "휴일 근무시간", h.Holiday),
			{Key: "workDays", Label: "근무일수", Value: float64(h.WorkDays), Formatted: fmt.Sprintf("%d일", h.WorkDays)},
		},
		GrossPay:        newLine("grossPay", "지급총액", result.Summary.GrossPay),
		TotalDeductions: newLine("totalDeductions", "공제총액", result.Summary.TotalDeductions),
		NetPay:          newLine("netPay", "실수령액", result.Summary.NetPay),
	}

	report.Earnings = append(report.Earnings, newLine("regularPay", "기본급", w.RegularPay))
	optional := []Line{
		newLine("overtimePay", "연장근로수당", w.OvertimePay),
		newLine("nightShiftPay", "야간근로수당", w.NightShiftPay),
		newLine("weekendPay", "주말근로수당", w.WeekendPay),
		newLine("holidayPay", "휴일근로수당", w.HolidayPay),
		newLine("weeklyRest", "주휴수당", a.WeeklyRest),
		newLine("annualLeave", "연차수당", a.AnnualLeave),
		newLine("meal", "식대", a.Meal),
		newLine("transport", "교통비", a.Transport),
		newLine("family", "가족수당", a.Family),
		newLine("position", "직책수당", a.Position),
		newLine("longevity", "근속수당", a.Longevity),
		newLine("otherAllowances", "기타수당", a.Other),
	}
	for _, line := range optional {
		if line.Amount != 0 {
			report.Earnings = append(report.Earnings, line)
		}
	}

	report.Deductions = []Line{
		newLine("nationalPension", "국민연금", d.NationalPension),
		newLine("healthInsurance", "건강보험", d.HealthInsurance),
		newLine("longTermCare", "장기요양보험", d.LongTermCare),
		newLine("employmentInsurance", "고용보험", d.EmploymentInsurance),
		newLine("incomeTax", "소득세", d.IncomeTax),
		newLine("localIncomeTax", "지방소득세", d.LocalIncomeTax),
	}
	if d.Other != 0 {
		report.Deductions = append(report.Deductions, newLine("otherDeductions", "기타공제", d.Other))
	}

	if a.Meal > 0 {
		report.Notes = append(report.Notes, fmt.Sprintf("식대 중 비과세 %s, 과세 %s",
			payroll.FormatWon(a.MealTaxFree), payroll.FormatWon(a.MealTaxable)))
	}
	return report
}

func wageTypeLabel(wageType string) string {
	if wageType == payroll.WageTypeHourly {
		return "시급제"
	}
	return "월급제"
}
