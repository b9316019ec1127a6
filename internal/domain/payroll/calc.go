package payroll

import "math"

// HourlyWage converts a monthly wage using the statutory paid-hours divisor.
func HourlyWage(monthlyWage int64) int64 {
	if monthlyWage <= 0 {
		return 0
	}
	return floorWon(float64(monthlyWage) / MonthlyPaidHours)
}

func OvertimePay(minutes int, hourlyWage int64) int64 {
	return premiumPay(minutes, hourlyWage, OvertimeMultiplier)
}

// NightShiftPay is the additive night premium, not a replacement rate.
func NightShiftPay(minutes int, hourlyWage int64) int64 {
	return premiumPay(minutes, hourlyWage, NightMultiplier)
}

func HolidayPay(minutes int, hourlyWage int64) int64 {
	return premiumPay(minutes, hourlyWage, HolidayMultiplier)
}

func WeekendPay(minutes int, hourlyWage int64) int64 {
	return premiumPay(minutes, hourlyWage, WeekendMultiplier)
}

// RegularPay pays regular minutes at the plain hourly wage.
func RegularPay(minutes int, hourlyWage int64) int64 {
	return premiumPay(minutes, hourlyWage, 1)
}

func premiumPay(minutes int, hourlyWage int64, multiplier float64) int64 {
	if minutes <= 0 || hourlyWage <= 0 {
		return 0
	}
	return floorWon(float64(minutes) / 60 * float64(hourlyWage) * multiplier)
}

// WeeklyRestAllowance pays min(8, hours/5) hours for a week of at least 15
// hours. Below 40 hours this is a proportional approximation.
func WeeklyRestAllowance(weeklyHours float64, hourlyWage int64) int64 {
	if weeklyHours < WeeklyRestMinHours || hourlyWage <= 0 {
		return 0
	}
	hours := math.Min(WeeklyRestMaxHours, weeklyHours/WeeklyRestDivisor)
	return floorWon(hours * float64(hourlyWage))
}

// DailyAllowance is a flat rate per work day unless an actual expense is given.
func DailyAllowance(dailyRate int64, workDays int, actualExpense *int64) int64 {
	if actualExpense != nil {
		if *actualExpense < 0 {
			return 0
		}
		return *actualExpense
	}
	if dailyRate <= 0 || workDays <= 0 {
		return 0
	}
	return dailyRate * int64(workDays)
}

// SplitMeal separates the tax-free part of the meal allowance.
func SplitMeal(meal int64) (taxFree, taxable int64) {
	if meal <= 0 {
		return 0, 0
	}
	taxFree = meal
	if taxFree > MealTaxFreeLimit {
		taxFree = MealTaxFreeLimit
	}
	return taxFree, meal - taxFree
}

func FamilyAllowance(hasSpouse bool, children int, spouseAmount, perChild int64) int64 {
	var total int64
	if hasSpouse && spouseAmount > 0 {
		total += spouseAmount
	}
	if children > 0 && perChild > 0 {
		total += int64(children) * perChild
	}
	return total
}

// PositionAllowance returns 0 for unknown titles.
func PositionAllowance(title string) int64 {
	return PositionAllowances[title]
}

func LongevityAllowance(yearsOfService int, perYear int64) int64 {
	if yearsOfService <= 0 || perYear <= 0 {
		return 0
	}
	if yearsOfService > LongevityMaxYears {
		yearsOfService = LongevityMaxYears
	}
	return int64(yearsOfService) * perYear
}

func floorWon(value float64) int64 {
	if value <= 0 || math.IsNaN(value) {
		return 0
	}
	return int64(math.Floor(value))
}
