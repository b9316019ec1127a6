package payroll

const (
	StatusDraft     = "draft"
	StatusConfirmed = "confirmed"
	StatusPaid      = "paid"

	WageTypeMonthly = "monthly"
	WageTypeHourly  = "hourly"
)

// Working-time constants. MonthlyPaidHours includes the paid weekly rest day.
const (
	WeeklyWorkHours  = 40
	WeeklyRestHours  = 8
	WeeksPerMonth    = 4.345
	MonthlyPaidHours = WeeklyWorkHours*WeeksPerMonth + WeeklyRestHours*WeeksPerMonth

	DailyRegularMinutes = 480
	MaxRecordMinutes    = 24 * 60

	NightWindowStartHour = 22
	NightWindowEndHour   = 6
)

// Premium multipliers applied to the hourly wage. Night is an additive premium.
const (
	OvertimeMultiplier = 1.5
	NightMultiplier    = 0.5
	HolidayMultiplier  = 1.5
	WeekendMultiplier  = 1.5
)

const (
	WeeklyRestMinHours = 15
	WeeklyRestMaxHours = 8
	WeeklyRestDivisor  = 5

	MealTaxFreeLimit   = 100000
	LongevityMaxYears  = 30
	DefaultDependents  = 1
	DependentDeduction = 12500
)

// Statutory insurance rates (employee share) and base limits.
const (
	NationalPensionRate    = 0.045
	NationalPensionMinBase = 370000
	NationalPensionMaxBase = 5900000

	HealthInsuranceRate    = 0.03545
	HealthInsuranceMaxBase = 7810800

	LongTermCareRate        = 0.1295
	EmploymentInsuranceRate = 0.009
	LocalIncomeTaxRate      = 0.1
)

// Labour income tax credit applied to the computed monthly tax.
const (
	TaxCreditThreshold = 500000
	TaxCreditLowRate   = 0.55
	TaxCreditBase      = 275000
	TaxCreditHighRate  = 0.30
)

type taxBracket struct {
	upTo   float64
	offset float64
	floor  float64
	rate   float64
}

// Annual brackets; upTo of 0 marks the open top band.
var incomeTaxBrackets = []taxBracket{
	{upTo: 14000000, offset: 0, floor: 0, rate: 0.06},
	{upTo: 50000000, offset: 840000, floor: 14000000, rate: 0.15},
	{upTo: 88000000, offset: 6240000, floor: 50000000, rate: 0.24},
	{upTo: 150000000, offset: 15360000, floor: 88000000, rate: 0.35},
	{upTo: 0, offset: 37060000, floor: 150000000, rate: 0.38},
}

// PositionAllowances is the monthly allowance per job title.
var PositionAllowances = map[string]int64{
	"사원": 0,
	"주임": 50000,
	"대리": 100000,
	"과장": 150000,
	"차장": 200000,
	"부장": 300000,
	"이사": 500000,
}

// Consistency bounds used by ValidatePayrollResult.
const (
	RoundingTolerance      = 1
	MaxInsuranceRatio      = 0.10
	MaxDeductionRatio      = 0.50
	MinValidYear           = 2020
	MaxValidYear           = 2030
	NotificationTypeIssued = "payslip_issued"
)
