package payroll

// minimumHourlyWages is the statutory hourly minimum wage by year.
var minimumHourlyWages = map[int]int64{
	2020: 8590,
	2021: 8720,
	2022: 9160,
	2023: 9620,
	2024: 9860,
	2025: 10030,
	2026: 10320,
}

// MinimumHourlyWage falls back to the nearest known year outside the table.
func MinimumHourlyWage(year int) int64 {
	if wage, ok := minimumHourlyWages[year]; ok {
		return wage
	}
	nearest, found := 0, false
	for known := range minimumHourlyWages {
		if !found || distance(known, year) < distance(nearest, year) ||
			(distance(known, year) == distance(nearest, year) && known > nearest) {
			nearest, found = known, true
		}
	}
	return minimumHourlyWages[nearest]
}

// MinimumMonthlyWage converts the hourly minimum with the paid-hours divisor.
func MinimumMonthlyWage(year int) int64 {
	return floorWon(float64(MinimumHourlyWage(year)) * MonthlyPaidHours)
}

func distance(a, b int) int {
	if a > b {
		return a - b
	}
	return b - a
}
