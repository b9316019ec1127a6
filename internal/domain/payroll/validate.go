package payroll

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})
	return v
}

type resultBuilder struct {
	errors   []string
	warnings []string
}

func (b *resultBuilder) errorf(format string, args ...any) {
	b.errors = append(b.errors, fmt.Sprintf(format, args...))
}

func (b *resultBuilder) warnf(format string, args ...any) {
	b.warnings = append(b.warnings, fmt.Sprintf(format, args...))
}

func (b *resultBuilder) result() ValidationResult {
	out := ValidationResult{
		Valid:    len(b.errors) == 0,
		Errors:   b.errors,
		Warnings: b.warnings,
	}
	if out.Errors == nil {
		out.Errors = []string{}
	}
	if out.Warnings == nil {
		out.Warnings = []string{}
	}
	return out
}

// ValidatePayrollInput checks identifiers, period range, wage and work
// records. The result is advisory; Compute never consults it.
func ValidatePayrollInput(in PayrollInput) ValidationResult {
	var b resultBuilder

	if err := validate.Struct(in); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			for _, fe := range fieldErrs {
				b.errors = append(b.errors, fieldMessage(fe))
			}
		} else {
			b.errorf("입력값 검증에 실패했습니다: %v", err)
		}
	}

	switch in.wageType() {
	case WageTypeHourly:
		if in.HourlyRate <= 0 {
			b.errorf("시급은 0보다 커야 합니다")
		} else if minimum := MinimumHourlyWage(in.Year); in.HourlyRate < minimum {
			b.warnf("시급 %d원이 %d년 최저시급 %d원보다 낮습니다", in.HourlyRate, in.Year, minimum)
		}
	default:
		if in.BaseWage <= 0 {
			b.errorf("기본급은 0보다 커야 합니다")
		} else if minimum := MinimumMonthlyWage(in.Year); in.BaseWage < minimum {
			b.warnf("기본급 %d원이 %d년 최저임금 월 환산액 %d원보다 낮습니다", in.BaseWage, in.Year, minimum)
		}
	}

	for i, record := range in.WorkRecords {
		if record.CheckInTime.IsZero() {
			b.errorf("근무기록 %d: 출근 시간이 없습니다", i+1)
			continue
		}
		if record.CheckOutTime == nil {
			continue
		}
		if !record.CheckOutTime.After(record.CheckInTime) {
			b.errorf("근무기록 %d: 퇴근 시간은 출근 시간 이후여야 합니다", i+1)
			continue
		}
		if record.CheckOutTime.Sub(record.CheckInTime) > MaxRecordMinutes*time.Minute {
			b.errorf("근무기록 %d: 근무 시간이 24시간을 초과합니다", i+1)
		}
	}

	return b.result()
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Namespace()
	if idx := strings.Index(field, "."); idx >= 0 {
		field = field[idx+1:]
	}
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("필수 항목 '%s'이(가) 누락되었습니다", field)
	case "min":
		return fmt.Sprintf("'%s' 값은 %s 이상이어야 합니다", field, fe.Param())
	case "max":
		return fmt.Sprintf("'%s' 값은 %s 이하여야 합니다", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("'%s' 값은 다음 중 하나여야 합니다: %s", field, fe.Param())
	default:
		return fmt.Sprintf("'%s' 값이 올바르지 않습니다 (%s)", field, fe.Tag())
	}
}

// ValidatePayrollResult checks the arithmetic consistency of a result.
func ValidatePayrollResult(result PayrollResult) ValidationResult {
	var b resultBuilder
	summary := result.Summary

	lineItems := result.Wages.Total() + result.Allowances.Total
	if diff := summary.GrossPay - lineItems; diff > RoundingTolerance || diff < -RoundingTolerance {
		b.errorf("지급총액 %d원이 항목 합계 %d원과 일치하지 않습니다", summary.GrossPay, lineItems)
	}
	if result.Allowances.Total != result.Allowances.sum() {
		b.errorf("수당 합계 %d원이 수당 항목 합계 %d원과 일치하지 않습니다", result.Allowances.Total, result.Allowances.sum())
	}
	if result.Deductions.Total != result.Deductions.sum() {
		b.errorf("공제 합계 %d원이 공제 항목 합계 %d원과 일치하지 않습니다", result.Deductions.Total, result.Deductions.sum())
	}
	if summary.TotalDeductions != result.Deductions.Total {
		b.errorf("공제총액 %d원이 공제 합계 %d원과 일치하지 않습니다", summary.TotalDeductions, result.Deductions.Total)
	}
	if summary.NetPay != summary.GrossPay-summary.TotalDeductions {
		b.errorf("실수령액 %d원이 지급총액에서 공제총액을 뺀 금액과 일치하지 않습니다", summary.NetPay)
	}
	if result.WorkHours.Regular > result.WorkHours.Total {
		b.errorf("정규 근무시간이 총 근무시간을 초과합니다")
	}

	if summary.GrossPay > 0 {
		gross := float64(summary.GrossPay)
		if ratio := float64(result.Deductions.Insurance()) / gross; ratio > MaxInsuranceRatio {
			b.warnf("4대보험 공제율 %.1f%%가 예상 범위(%.0f%%)를 초과합니다", ratio*100, MaxInsuranceRatio*100)
		}
		if ratio := float64(summary.TotalDeductions) / gross; ratio > MaxDeductionRatio {
			b.warnf("총 공제율 %.1f%%가 지급총액의 %.0f%%를 초과합니다", ratio*100, MaxDeductionRatio*100)
		}
	}
	if summary.NetPay < 0 {
		b.warnf("실수령액이 음수입니다")
	}

	return b.result()
}
