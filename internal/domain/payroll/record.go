package payroll

import (
	"math"
	"time"
)

// StatementRecord mirrors one pay_statements row.
type StatementRecord struct {
	BusinessID           string    `json:"business_id"`
	UserID               string    `json:"user_id"`
	Year                 int       `json:"year"`
	Month                int       `json:"month"`
	PeriodStart          time.Time `json:"period_start"`
	PeriodEnd            time.Time `json:"period_end"`
	TotalWorkHours       float64   `json:"total_work_hours"`
	RegularWorkHours     float64   `json:"regular_work_hours"`
	OvertimeHours        float64   `json:"overtime_hours"`
	NightHours           float64   `json:"night_hours"`
	WeekendHours         float64   `json:"weekend_hours"`
	HolidayHours         float64   `json:"holiday_hours"`
	BaseWage             int64     `json:"base_wage"`
	HourlyWage           int64     `json:"hourly_wage"`
	RegularPay           int64     `json:"regular_pay"`
	OvertimePay          int64     `json:"overtime_pay"`
	NightShiftPay        int64     `json:"night_shift_pay"`
	WeekendPay           int64     `json:"weekend_pay"`
	HolidayPay           int64     `json:"holiday_pay"`
	WeeklyRestAllowance  int64     `json:"weekly_rest_allowance"`
	AnnualLeaveAllowance int64     `json:"annual_leave_allowance"`
	MealAllowance        int64     `json:"meal_allowance"`
	TransportAllowance   int64     `json:"transport_allowance"`
	FamilyAllowance      int64     `json:"family_allowance"`
	PositionAllowance    int64     `json:"position_allowance"`
	LongevityAllowance   int64     `json:"longevity_allowance"`
	OtherAllowances      int64     `json:"other_allowances"`
	TotalAllowances      int64     `json:"total_allowances"`
	NationalPension      int64     `json:"national_pension"`
	HealthInsurance      int64     `json:"health_insurance"`
	LongTermCare         int64     `json:"long_term_care"`
	EmploymentInsurance  int64     `json:"employment_insurance"`
	IncomeTax            int64     `json:"income_tax"`
	LocalIncomeTax       int64     `json:"local_income_tax"`
	OtherDeductions      int64     `json:"other_deductions"`
	TotalDeductions      int64     `json:"total_deductions"`
	GrossPay             int64     `json:"gross_pay"`
	NetPay               int64     `json:"net_pay"`
	Status               string    `json:"status"`
}

// StatementColumns is the pay_statements column order used by Values.
var StatementColumns = []string{
	"business_id", "user_id", "year", "month", "period_start", "period_end",
	"total_work_hours", "regular_work_hours", "overtime_hours", "night_hours", "weekend_hours", "holiday_hours",
	"base_wage", "hourly_wage", "regular_pay", "overtime_pay", "night_shift_pay", "weekend_pay", "holiday_pay",
	"weekly_rest_allowance", "annual_leave_allowance", "meal_allowance", "transport_allowance",
	"family_allowance", "position_allowance", "longevity_allowance", "other_allowances", "total_allowances",
	"national_pension", "health_insurance", "long_term_care", "employment_insurance",
	"income_tax", "local_income_tax", "other_deductions", "total_deductions",
	"gross_pay", "net_pay", "status",
}

// ToStatementRecord flattens a result into a new draft statement row.
func ToStatementRecord(result PayrollResult) StatementRecord {
	h := result.WorkHours
	w := result.Wages
	a := result.Allowances
	d := result.Deductions
	return StatementRecord{
		BusinessID:           result.Employee.BusinessID,
		UserID:               result.Employee.UserID,
		Year:                 result.Period.Year,
		Month:                result.Period.Month,
		PeriodStart:          result.Period.Start,
		PeriodEnd:            result.Period.End,
		TotalWorkHours:       minutesToHours(h.Total),
		RegularWorkHours:     minutesToHours(h.Regular),
		OvertimeHours:        minutesToHours(h.Overtime),
		NightHours:           minutesToHours(h.Night),
		WeekendHours:         minutesToHours(h.Weekend),
		HolidayHours:         minutesToHours(h.Holiday),
		BaseWage:             w.BaseWage,
		HourlyWage:           w.HourlyWage,
		RegularPay:           w.RegularPay,
		OvertimePay:          w.OvertimePay,
		NightShiftPay:        w.NightShiftPay,
		WeekendPay:           w.WeekendPay,
		HolidayPay:           w.HolidayPay,
		WeeklyRestAllowance:  a.WeeklyRest,
		AnnualLeaveAllowance: a.AnnualLeave,
		MealAllowance:        a.Meal,
		TransportAllowance:   a.Transport,
		FamilyAllowance:      a.Family,
		PositionAllowance:    a.Position,
		LongevityAllowance:   a.Longevity,
		OtherAllowances:      a.Other,
		TotalAllowances:      a.Total,
		NationalPension:      d.NationalPension,
		HealthInsurance:      d.HealthInsurance,
		LongTermCare:         d.LongTermCare,
		EmploymentInsurance:  d.EmploymentInsurance,
		IncomeTax:            d.IncomeTax,
		LocalIncomeTax:       d.LocalIncomeTax,
		OtherDeductions:      d.Other,
		TotalDeductions:      d.Total,
		GrossPay:             result.Summary.GrossPay,
		NetPay:               result.Summary.NetPay,
		Status:               StatusDraft,
	}
}

// Values returns the row values in StatementColumns order.
func (r StatementRecord) Values() []any {
	return []any{
		r.BusinessID, r.UserID, r.Year, r.Month, r.PeriodStart, r.PeriodEnd,
		r.TotalWorkHours, r.RegularWorkHours, r.OvertimeHours, r.NightHours, r.WeekendHours, r.HolidayHours,
		r.BaseWage, r.HourlyWage, r.RegularPay, r.OvertimePay, r.NightShiftPay, r.WeekendPay, r.HolidayPay,
		r.WeeklyRestAllowance, r.AnnualLeaveAllowance, r.MealAllowance, r.TransportAllowance,
		r.FamilyAllowance, r.PositionAllowance, r.LongevityAllowance, r.OtherAllowances, r.TotalAllowances,
		r.NationalPension, r.HealthInsurance, r.LongTermCare, r.EmploymentInsurance,
		r.IncomeTax, r.LocalIncomeTax, r.OtherDeductions, r.TotalDeductions,
		r.GrossPay, r.NetPay, r.Status,
	}
}

// Targets returns scan destinations in StatementColumns order.
func (r *StatementRecord) Targets() []any {
	return []any{
		&r.BusinessID, &r.UserID, &r.Year, &r.Month, &r.PeriodStart, &r.PeriodEnd,
		&r.TotalWorkHours, &r.RegularWorkHours, &r.OvertimeHours, &r.NightHours, &r.WeekendHours, &r.HolidayHours,
		&r.BaseWage, &r.HourlyWage, &r.RegularPay, &r.OvertimePay, &r.NightShiftPay, &r.WeekendPay, &r.HolidayPay,
		&r.WeeklyRestAllowance, &r.AnnualLeaveAllowance, &r.MealAllowance, &r.TransportAllowance,
		&r.FamilyAllowance, &r.PositionAllowance, &r.LongevityAllowance, &r.OtherAllowances, &r.TotalAllowances,
		&r.NationalPension, &r.HealthInsurance, &r.LongTermCare, &r.EmploymentInsurance,
		&r.IncomeTax, &r.LocalIncomeTax, &r.OtherDeductions, &r.TotalDeductions,
		&r.GrossPay, &r.NetPay, &r.Status,
	}
}

func minutesToHours(minutes int) float64 {
	return math.Round(float64(minutes)/60*100) / 100
}
