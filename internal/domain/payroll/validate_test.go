package payroll

import (
	"strings"
	"testing"
	"time"
)

func validInput() PayrollInput {
	return PayrollInput{
		BusinessID: "biz", UserID: "u1", Year: 2025, Month: 1,
		WageType: WageTypeMonthly, BaseWage: 2500000,
		WorkRecords: weekOfShifts(),
	}
}

func containsMessage(list []string, fragment string) bool {
	for _, msg := range list {
		if strings.Contains(msg, fragment) {
			return true
		}
	}
	return false
}

func TestValidatePayrollInputValid(t *testing.T) {
	res := ValidatePayrollInput(validInput())
	if !res.Valid || len(res.Errors) != 0 || len(res.Warnings) != 0 {
		t.Fatalf("expected clean result, got %+v", res)
	}
}

func TestValidatePayrollInputErrors(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*PayrollInput)
		fragment string
	}{
		{"missing business", func(in *PayrollInput) { in.BusinessID = "" }, "businessId"},
		{"missing user", func(in *PayrollInput) { in.UserID = "" }, "userId"},
		{"year too early", func(in *PayrollInput) { in.Year = 2019 }, "year"},
		{"month out of range", func(in *PayrollInput) { in.Month = 13 }, "month"},
		{"unknown wage type", func(in *PayrollInput) { in.WageType = "daily" }, "wageType"},
		{"zero base wage", func(in *PayrollInput) { in.BaseWage = 0 }, "기본급"},
		{"zero hourly rate", func(in *PayrollInput) { in.WageType = WageTypeHourly }, "시급"},
		{"checkout before checkin", func(in *PayrollInput) {
			out := in.WorkRecords[0].CheckInTime.Add(-time.Hour)
			in.WorkRecords[0].CheckOutTime = &out
		}, "퇴근 시간"},
		{"over 24 hours", func(in *PayrollInput) {
			out := in.WorkRecords[0].CheckInTime.Add(25 * time.Hour)
			in.WorkRecords[0].CheckOutTime = &out
		}, "24시간"},
		{"missing checkin", func(in *PayrollInput) { in.WorkRecords[0].CheckInTime = time.Time{} }, "출근 시간"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(&in)
			res := ValidatePayrollInput(in)
			if res.Valid {
				t.Fatalf("expected invalid result")
			}
			if !containsMessage(res.Errors, tt.fragment) {
				t.Fatalf("expected error mentioning %q, got %v", tt.fragment, res.Errors)
			}
		})
	}
}

func TestValidatePayrollInputMinimumWageWarning(t *testing.T) {
	in := validInput()
	in.WageType = WageTypeHourly
	in.HourlyRate = 9000
	res := ValidatePayrollInput(in)
	if !res.Valid {
		t.Fatalf("minimum wage shortfall should only warn: %v", res.Errors)
	}
	if !containsMessage(res.Warnings, "최저시급") {
		t.Fatalf("expected minimum wage warning, got %v", res.Warnings)
	}

	in = validInput()
	in.BaseWage = 1500000
	res = ValidatePayrollInput(in)
	if !res.Valid || !containsMessage(res.Warnings, "최저임금") {
		t.Fatalf("expected monthly minimum wage warning, got %+v", res)
	}
}

func TestValidatePayrollInputAllowsOpenRecord(t *testing.T) {
	in := validInput()
	in.WorkRecords = append(in.WorkRecords, WorkRecord{CheckInTime: kst(2025, 1, 13, 9, 0)})
	if res := ValidatePayrollInput(in); !res.Valid {
		t.Fatalf("open records should be accepted: %v", res.Errors)
	}
}

func TestValidatePayrollResult(t *testing.T) {
	result := Compute(validInput(), DefaultOptions())
	if res := ValidatePayrollResult(result); !res.Valid {
		t.Fatalf("computed result should validate: %v", res.Errors)
	}

	tampered := result
	tampered.Summary.NetPay += 10
	res := ValidatePayrollResult(tampered)
	if res.Valid || !containsMessage(res.Errors, "실수령액") {
		t.Fatalf("expected net pay error, got %+v", res)
	}

	rounded := result
	rounded.Summary.GrossPay++
	rounded.Summary.NetPay++
	if res := ValidatePayrollResult(rounded); !res.Valid {
		t.Fatalf("one won of gross drift should be tolerated: %v", res.Errors)
	}
}

func TestValidatePayrollResultWarnings(t *testing.T) {
	result := Compute(validInput(), DefaultOptions())
	result.Deductions.Other = result.Summary.GrossPay
	result.Deductions.Total = result.Deductions.sum()
	result.Summary.TotalDeductions = result.Deductions.Total
	result.Summary.NetPay = result.Summary.GrossPay - result.Summary.TotalDeductions

	res := ValidatePayrollResult(result)
	if !res.Valid {
		t.Fatalf("ratios should only warn: %v", res.Errors)
	}
	if !containsMessage(res.Warnings, "총 공제율") || !containsMessage(res.Warnings, "음수") {
		t.Fatalf("expected deduction ratio and negative net warnings, got %v", res.Warnings)
	}
}
