package payroll

import (
	"reflect"
	"testing"
)

func weekOfShifts() []WorkRecord {
	var records []WorkRecord
	for day := 6; day <= 10; day++ {
		records = append(records, record(kst(2025, 1, day, 9, 0), kst(2025, 1, day, 17, 0)))
	}
	return records
}

func TestComputeMonthly(t *testing.T) {
	in := PayrollInput{
		BusinessID: "biz", UserID: "u1", Year: 2025, Month: 1,
		WageType: WageTypeMonthly, BaseWage: 2000000,
	}
	got := Compute(in, DefaultOptions())

	if got.Wages.HourlyWage != 9589 {
		t.Fatalf("expected hourly 9589, got %d", got.Wages.HourlyWage)
	}
	if got.Wages.RegularPay != 2000000 {
		t.Fatalf("expected regular pay equal to base wage, got %d", got.Wages.RegularPay)
	}
	if got.Allowances.WeeklyRest != 0 {
		t.Fatalf("monthly wage must not add weekly rest, got %d", got.Allowances.WeeklyRest)
	}
	if got.Summary.GrossPay != 2000000 {
		t.Fatalf("expected gross 2000000, got %d", got.Summary.GrossPay)
	}
	want := CalculateDeductions(2000000, 1, 0)
	if got.Deductions != want {
		t.Fatalf("deductions mismatch: %+v vs %+v", got.Deductions, want)
	}
	if got.Summary.NetPay != got.Summary.GrossPay-got.Summary.TotalDeductions {
		t.Fatalf("net pay invariant broken: %+v", got.Summary)
	}
	if got.Period.Start.Day() != 1 || got.Period.End.Day() != 31 {
		t.Fatalf("unexpected period: %+v", got.Period)
	}
}

func TestComputeHourlyWithWeeklyRest(t *testing.T) {
	in := PayrollInput{
		BusinessID: "biz", UserID: "u2", Year: 2025, Month: 1,
		WageType: WageTypeHourly, HourlyRate: 10000, WorkRecords: weekOfShifts(),
	}
	got := Compute(in, DefaultOptions())

	if got.WorkHours.Regular != 2400 || got.WorkHours.Overtime != 0 {
		t.Fatalf("unexpected hours: %+v", got.WorkHours)
	}
	if got.Wages.RegularPay != 400000 {
		t.Fatalf("expected regular pay 400000, got %d", got.Wages.RegularPay)
	}
	if got.Allowances.WeeklyRest != 80000 {
		t.Fatalf("expected weekly rest 80000, got %d", got.Allowances.WeeklyRest)
	}
	if got.Summary.GrossPay != 480000 {
		t.Fatalf("expected gross 480000, got %d", got.Summary.GrossPay)
	}
}

func TestComputeAllowances(t *testing.T) {
	opts := DefaultOptions()
	opts.Rates.MealDailyRate = 8000
	opts.Rates.TransportDailyRate = 5000
	transport := int64(70000)
	in := PayrollInput{
		BusinessID: "biz", UserID: "u3", Year: 2025, Month: 1,
		BaseWage: 3000000, Position: "대리", YearsOfService: 3, Dependents: 2,
		WorkRecords: weekOfShifts(),
		Allowances: AllowanceInput{
			TransportActualExpense: &transport,
			HasSpouse:              true,
			Children:               1,
			Other:                  15000,
		},
	}
	got := Compute(in, opts).Allowances

	if got.Meal != 40000 || got.MealTaxFree != 40000 || got.MealTaxable != 0 {
		t.Fatalf("unexpected meal: %+v", got)
	}
	if got.Transport != 70000 {
		t.Fatalf("expected actual transport expense, got %d", got.Transport)
	}
	if got.Family != 60000 || got.Position != 100000 || got.Longevity != 30000 || got.Other != 15000 {
		t.Fatalf("unexpected allowances: %+v", got)
	}
	if got.Total != 40000+70000+60000+100000+30000+15000 {
		t.Fatalf("unexpected total %d", got.Total)
	}
}

func TestComputeIsDeterministic(t *testing.T) {
	in := PayrollInput{
		BusinessID: "biz", UserID: "u4", Year: 2025, Month: 1,
		WageType: WageTypeHourly, HourlyRate: 12000, WorkRecords: weekOfShifts(),
	}
	first := Compute(in, DefaultOptions())
	second := Compute(in, DefaultOptions())
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("compute is not deterministic")
	}
}

func TestComputeDefaultsDependents(t *testing.T) {
	in := PayrollInput{BusinessID: "biz", UserID: "u5", Year: 2025, Month: 1, BaseWage: 2500000}
	got := Compute(in, Options{})
	if got.Employee.Dependents != 1 {
		t.Fatalf("expected dependents to default to 1, got %d", got.Employee.Dependents)
	}
	if got.WageType != WageTypeMonthly {
		t.Fatalf("expected monthly default, got %q", got.WageType)
	}
}

func TestPremiumPolicy(t *testing.T) {
	in := PayrollInput{WageType: WageTypeHourly, HourlyRate: 10000}
	hours := WorkHoursSummary{Total: 480, Regular: 480, Weekend: 480, Holiday: 480}

	stacked := computeWages(in, hours, PremiumPolicyStack)
	if stacked.WeekendPay != 120000 || stacked.HolidayPay != 120000 {
		t.Fatalf("stack policy should pay both premiums: %+v", stacked)
	}

	capped := computeWages(in, hours, PremiumPolicyMax)
	if capped.HolidayPay != 120000 || capped.WeekendPay != 0 {
		t.Fatalf("max policy should keep only one premium: %+v", capped)
	}

	hours.Holiday = 0
	weekendOnly := computeWages(in, hours, PremiumPolicyMax)
	if weekendOnly.WeekendPay != 120000 || weekendOnly.HolidayPay != 0 {
		t.Fatalf("max policy should keep the larger weekend premium: %+v", weekendOnly)
	}
}
