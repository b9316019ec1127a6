package payroll

import (
	"fmt"
	"time"
)

// WorkRecord is one check-in/check-out pair. A nil CheckOutTime means the
// employee is still clocked in.
type WorkRecord struct {
	CheckInTime  time.Time  `json:"checkInTime"`
	CheckOutTime *time.Time `json:"checkOutTime,omitempty"`
}

func (r WorkRecord) Completed() bool {
	return r.CheckOutTime != nil
}

// Minutes returns the whole minutes worked, or 0 for an open record.
func (r WorkRecord) Minutes() int {
	if r.CheckOutTime == nil {
		return 0
	}
	return int(r.CheckOutTime.Sub(r.CheckInTime) / time.Minute)
}

// WorkHoursSummary holds minute buckets for one pay period. Night, weekend and
// holiday minutes overlap the regular/overtime split.
type WorkHoursSummary struct {
	Total         int   `json:"total"`
	Regular       int   `json:"regular"`
	Overtime      int   `json:"overtime"`
	Night         int   `json:"night"`
	Weekend       int   `json:"weekend"`
	Holiday       int   `json:"holiday"`
	WorkDays      int   `json:"workDays"`
	WeeklyMinutes []int `json:"weeklyMinutes"`
}

type WageComponents struct {
	BaseWage      int64 `json:"baseWage"`
	HourlyWage    int64 `json:"hourlyWage"`
	RegularPay    int64 `json:"regularPay"`
	OvertimePay   int64 `json:"overtimePay"`
	NightShiftPay int64 `json:"nightShiftPay"`
	WeekendPay    int64 `json:"weekendPay"`
	HolidayPay    int64 `json:"holidayPay"`
}

func (w WageComponents) Total() int64 {
	return w.RegularPay + w.OvertimePay + w.NightShiftPay + w.WeekendPay + w.HolidayPay
}

type AllowanceSet struct {
	WeeklyRest  int64 `json:"weeklyRest"`
	AnnualLeave int64 `json:"annualLeave"`
	Meal        int64 `json:"meal"`
	MealTaxFree int64 `json:"mealTaxFree"`
	MealTaxable int64 `json:"mealTaxable"`
	Transport   int64 `json:"transport"`
	Family      int64 `json:"family"`
	Position    int64 `json:"position"`
	Longevity   int64 `json:"longevity"`
	Other       int64 `json:"other"`
	Total       int64 `json:"total"`
}

func (a AllowanceSet) sum() int64 {
	return a.WeeklyRest + a.AnnualLeave + a.Meal + a.Transport + a.Family + a.Position + a.Longevity + a.Other
}

type DeductionSet struct {
	NationalPension     int64 `json:"nationalPension"`
	HealthInsurance     int64 `json:"healthInsurance"`
	LongTermCare        int64 `json:"longTermCare"`
	EmploymentInsurance int64 `json:"employmentInsurance"`
	IncomeTax           int64 `json:"incomeTax"`
	LocalIncomeTax      int64 `json:"localIncomeTax"`
	Other               int64 `json:"other"`
	Total               int64 `json:"total"`
}

func (d DeductionSet) sum() int64 {
	return d.NationalPension + d.HealthInsurance + d.LongTermCare + d.EmploymentInsurance + d.IncomeTax + d.LocalIncomeTax + d.Other
}

// Insurance is the four-insurance share of the deductions.
func (d DeductionSet) Insurance() int64 {
	return d.NationalPension + d.HealthInsurance + d.LongTermCare + d.EmploymentInsurance
}

type Summary struct {
	GrossPay        int64 `json:"grossPay"`
	TotalDeductions int64 `json:"totalDeductions"`
	NetPay          int64 `json:"netPay"`
}

type Employee struct {
	BusinessID     string `json:"businessId"`
	BusinessName   string `json:"businessName,omitempty"`
	UserID         string `json:"userId"`
	Name           string `json:"name,omitempty"`
	Position       string `json:"position,omitempty"`
	YearsOfService int    `json:"yearsOfService"`
	Dependents     int    `json:"dependents"`
}

type Period struct {
	Year  int       `json:"year"`
	Month int       `json:"month"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// NewPeriod builds the calendar month window [first day, last day].
func NewPeriod(year, month int, loc *time.Location) Period {
	if loc == nil {
		loc = DefaultLocation()
	}
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, loc)
	return Period{
		Year:  year,
		Month: month,
		Start: start,
		End:   start.AddDate(0, 1, -1),
	}
}

// Key is the YYYY-MM form used in file names.
func (p Period) Key() string {
	return fmt.Sprintf("%04d-%02d", p.Year, p.Month)
}

// Bounds returns the half-open instant range covering the whole month.
func (p Period) Bounds() (time.Time, time.Time) {
	return p.Start, p.End.AddDate(0, 0, 1)
}

// PayrollResult is built once per calculation and treated as immutable.
type PayrollResult struct {
	Employee   Employee         `json:"employee"`
	Period     Period           `json:"period"`
	WageType   string           `json:"wageType"`
	WorkHours  WorkHoursSummary `json:"workHours"`
	Wages      WageComponents   `json:"wages"`
	Allowances AllowanceSet     `json:"allowances"`
	Deductions DeductionSet     `json:"deductions"`
	Summary    Summary          `json:"summary"`
}

// AllowanceInput carries the per-employee allowance facts. Actual-expense
// values, when set, replace the daily-rate computation.
type AllowanceInput struct {
	MealDailyRate          *int64 `json:"mealDailyRate,omitempty" validate:"omitempty,min=0"`
	MealActualExpense      *int64 `json:"mealActualExpense,omitempty" validate:"omitempty,min=0"`
	TransportDailyRate     *int64 `json:"transportDailyRate,omitempty" validate:"omitempty,min=0"`
	TransportActualExpense *int64 `json:"transportActualExpense,omitempty" validate:"omitempty,min=0"`
	HasSpouse              bool   `json:"hasSpouse"`
	Children               int    `json:"children" validate:"min=0"`
	AnnualLeave            int64  `json:"annualLeave" validate:"min=0"`
	Other                  int64  `json:"other" validate:"min=0"`
}

type PayrollInput struct {
	BusinessID      string         `json:"businessId" validate:"required"`
	BusinessName    string         `json:"businessName"`
	UserID          string         `json:"userId" validate:"required"`
	EmployeeName    string         `json:"employeeName"`
	Position        string         `json:"position"`
	Year            int            `json:"year" validate:"min=2020,max=2030"`
	Month           int            `json:"month" validate:"min=1,max=12"`
	WageType        string         `json:"wageType" validate:"omitempty,oneof=monthly hourly"`
	BaseWage        int64          `json:"baseWage"`
	HourlyRate      int64          `json:"hourlyRate"`
	YearsOfService  int            `json:"yearsOfService" validate:"min=0"`
	Dependents      int            `json:"dependents" validate:"min=0"`
	OtherDeductions int64          `json:"otherDeductions" validate:"min=0"`
	WorkRecords     []WorkRecord   `json:"workRecords" validate:"dive"`
	Allowances      AllowanceInput `json:"allowances"`
}

func (in PayrollInput) wageType() string {
	if in.WageType == "" {
		return WageTypeMonthly
	}
	return in.WageType
}

// EmployeeProfile is the stored employment data a period calculation starts from.
type EmployeeProfile struct {
	BusinessID   string     `json:"businessId"`
	BusinessName string     `json:"businessName"`
	UserID       string     `json:"userId"`
	Name         string     `json:"name"`
	Position     string     `json:"position"`
	WageType     string     `json:"wageType"`
	BaseWage     int64      `json:"baseWage"`
	HourlyRate   int64      `json:"hourlyRate"`
	Dependents   int        `json:"dependents"`
	HasSpouse    bool       `json:"hasSpouse"`
	Children     int        `json:"children"`
	HireDate     *time.Time `json:"hireDate,omitempty"`
}

// YearsOfServiceAt counts completed years between the hire date and at.
func (p EmployeeProfile) YearsOfServiceAt(at time.Time) int {
	if p.HireDate == nil || at.Before(*p.HireDate) {
		return 0
	}
	years := at.Year() - p.HireDate.Year()
	anniversary := p.HireDate.AddDate(years, 0, 0)
	if at.Before(anniversary) {
		years--
	}
	return years
}

// Input turns the profile plus period records into a calculation input.
func (p EmployeeProfile) Input(period Period, records []WorkRecord) PayrollInput {
	return PayrollInput{
		BusinessID:     p.BusinessID,
		BusinessName:   p.BusinessName,
		UserID:         p.UserID,
		EmployeeName:   p.Name,
		Position:       p.Position,
		Year:           period.Year,
		Month:          period.Month,
		WageType:       p.WageType,
		BaseWage:       p.BaseWage,
		HourlyRate:     p.HourlyRate,
		YearsOfService: p.YearsOfServiceAt(period.End),
		Dependents:     p.Dependents,
		WorkRecords:    records,
		Allowances: AllowanceInput{
			HasSpouse: p.HasSpouse,
			Children:  p.Children,
		},
	}
}

type StoredStatement struct {
	ID        string          `json:"id"`
	Record    StatementRecord `json:"record"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// ValidationResult is advisory: callers decide whether to trust the output.
type ValidationResult struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

type Calculation struct {
	Result           PayrollResult    `json:"result"`
	InputValidation  ValidationResult `json:"inputValidation"`
	ResultValidation ValidationResult `json:"resultValidation"`
}

// Valid reports whether both the input and the result passed validation.
func (c Calculation) Valid() bool {
	return c.InputValidation.Valid && c.ResultValidation.Valid
}

type RunSummary struct {
	BusinessID string   `json:"businessId"`
	Period     string   `json:"period"`
	Issued     int      `json:"issued"`
	Unchanged  int      `json:"unchanged"`
	Skipped    int      `json:"skipped"`
	Failed     int      `json:"failed"`
	Errors     []string `json:"errors,omitempty"`
}

// SaveResult describes what SaveStatement did to the stored row. Changed is
// set when a replaced draft carried different amounts.
type SaveResult struct {
	ID      string `json:"id"`
	Created bool   `json:"created"`
	Changed bool   `json:"changed"`
}

// Issued reports whether the employee should hear about this statement.
func (r SaveResult) Issued() bool {
	return r.Created || r.Changed
}
