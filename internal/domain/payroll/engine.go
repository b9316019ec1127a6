package payroll

import "time"

type PremiumPolicy string

const (
	// PremiumPolicyStack adds every category premium a shift qualifies for.
	PremiumPolicyStack PremiumPolicy = "stack"
	// PremiumPolicyMax pays only the larger of the holiday and weekend premiums.
	PremiumPolicyMax PremiumPolicy = "max"
)

// AllowanceRates are the company-wide defaults applied when the input does
// not carry its own rate.
type AllowanceRates struct {
	MealDailyRate      int64
	TransportDailyRate int64
	SpouseMonthly      int64
	ChildMonthly       int64
	LongevityPerYear   int64
}

type Options struct {
	Location      *time.Location
	PremiumPolicy PremiumPolicy
	Rates         AllowanceRates
}

func DefaultOptions() Options {
	return Options{
		Location:      DefaultLocation(),
		PremiumPolicy: PremiumPolicyStack,
		Rates: AllowanceRates{
			SpouseMonthly:    40000,
			ChildMonthly:     20000,
			LongevityPerYear: 10000,
		},
	}
}

// Compute runs the whole pipeline for one employee and period. It does not
// consult validation; callers check ValidatePayrollInput themselves.
func Compute(in PayrollInput, opts Options) PayrollResult {
	if opts.Location == nil {
		opts.Location = DefaultLocation()
	}
	if opts.PremiumPolicy == "" {
		opts.PremiumPolicy = PremiumPolicyStack
	}

	period := NewPeriod(in.Year, in.Month, opts.Location)
	hours := AggregateWorkHours(in.WorkRecords, opts.Location)
	wages := computeWages(in, hours, opts.PremiumPolicy)
	allowances := computeAllowances(in, hours, wages.HourlyWage, opts.Rates)

	gross := wages.Total() + allowances.Total
	deductions := CalculateDeductions(gross, in.Dependents, in.OtherDeductions)

	dependents := in.Dependents
	if dependents < DefaultDependents {
		dependents = DefaultDependents
	}

	return PayrollResult{
		Employee: Employee{
			BusinessID:     in.BusinessID,
			BusinessName:   in.BusinessName,
			UserID:         in.UserID,
			Name:           in.EmployeeName,
			Position:       in.Position,
			YearsOfService: in.YearsOfService,
			Dependents:     dependents,
		},
		Period:     period,
		WageType:   in.wageType(),
		WorkHours:  hours,
		Wages:      wages,
		Allowances: allowances,
		Deductions: deductions,
		Summary: Summary{
			GrossPay:        gross,
			TotalDeductions: deductions.Total,
			NetPay:          gross - deductions.Total,
		},
	}
}

func computeWages(in PayrollInput, hours WorkHoursSummary, policy PremiumPolicy) WageComponents {
	wages := WageComponents{BaseWage: in.BaseWage}

	switch in.wageType() {
	case WageTypeHourly:
		wages.HourlyWage = in.HourlyRate
		wages.RegularPay = RegularPay(hours.Regular, in.HourlyRate)
	default:
		wages.HourlyWage = HourlyWage(in.BaseWage)
		if in.BaseWage > 0 {
			wages.RegularPay = in.BaseWage
		}
	}

	wages.OvertimePay = OvertimePay(hours.Overtime, wages.HourlyWage)
	wages.NightShiftPay = NightShiftPay(hours.Night, wages.HourlyWage)
	wages.WeekendPay = WeekendPay(hours.Weekend, wages.HourlyWage)
	wages.HolidayPay = HolidayPay(hours.Holiday, wages.HourlyWage)

	if policy == PremiumPolicyMax {
		if wages.HolidayPay >= wages.WeekendPay {
			wages.WeekendPay = 0
		} else {
			wages.HolidayPay = 0
		}
	}
	return wages
}

func computeAllowances(in PayrollInput, hours WorkHoursSummary, hourlyWage int64, rates AllowanceRates) AllowanceSet {
	var set AllowanceSet

	// Monthly wages already pay the rest day through the 208.56h divisor.
	if in.wageType() == WageTypeHourly {
		for _, minutes := range hours.WeeklyMinutes {
			set.WeeklyRest += WeeklyRestAllowance(float64(minutes)/60, hourlyWage)
		}
	}

	mealRate := rates.MealDailyRate
	if in.Allowances.MealDailyRate != nil {
		mealRate = *in.Allowances.MealDailyRate
	}
	transportRate := rates.TransportDailyRate
	if in.Allowances.TransportDailyRate != nil {
		transportRate = *in.Allowances.TransportDailyRate
	}

	set.Meal = DailyAllowance(mealRate, hours.WorkDays, in.Allowances.MealActualExpense)
	set.MealTaxFree, set.MealTaxable = SplitMeal(set.Meal)
	set.Transport = DailyAllowance(transportRate, hours.WorkDays, in.Allowances.TransportActualExpense)
	set.Family = FamilyAllowance(in.Allowances.HasSpouse, in.Allowances.Children, rates.SpouseMonthly, rates.ChildMonthly)
	set.Position = PositionAllowance(in.Position)
	set.Longevity = LongevityAllowance(in.YearsOfService, rates.LongevityPerYear)
	if in.Allowances.AnnualLeave > 0 {
		set.AnnualLeave = in.Allowances.AnnualLeave
	}
	if in.Allowances.Other > 0 {
		set.Other = in.Allowances.Other
	}
	set.Total = set.sum()
	return set
}
