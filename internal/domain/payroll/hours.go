package payroll

import (
	"sort"
	"time"
)

var defaultLocation = loadDefaultLocation()

// DefaultLocation is Asia/Seoul, falling back to a fixed KST zone when the
// tz database is unavailable.
func DefaultLocation() *time.Location {
	return defaultLocation
}

func loadDefaultLocation() *time.Location {
	loc, err := time.LoadLocation("Asia/Seoul")
	if err != nil {
		return time.FixedZone("KST", 9*60*60)
	}
	return loc
}

// AggregateWorkHours reduces the period's records into minute buckets. Open
// records are skipped. Calendar days and weekdays are taken in loc.
func AggregateWorkHours(records []WorkRecord, loc *time.Location) WorkHoursSummary {
	if loc == nil {
		loc = DefaultLocation()
	}

	var summary WorkHoursSummary
	dayMinutes := make(map[time.Time]int)
	weekMinutes := make(map[int]int)

	for _, record := range records {
		if !record.Completed() {
			continue
		}
		minutes := record.Minutes()
		if minutes <= 0 {
			continue
		}
		checkIn := record.CheckInTime.In(loc)
		checkOut := record.CheckOutTime.In(loc)

		summary.Total += minutes
		dayMinutes[startOfDay(checkIn)] += minutes

		year, week := checkIn.ISOWeek()
		weekMinutes[year*100+week] += minutes

		summary.Night += NightMinutes(checkIn, checkOut, loc)

		switch checkIn.Weekday() {
		case time.Saturday, time.Sunday:
			summary.Weekend += minutes
		}
	}

	for _, minutes := range dayMinutes {
		if minutes > DailyRegularMinutes {
			summary.Regular += DailyRegularMinutes
			summary.Overtime += minutes - DailyRegularMinutes
			continue
		}
		summary.Regular += minutes
	}
	summary.WorkDays = len(dayMinutes)

	// No holiday calendar is consulted yet; holiday minutes stay at zero.
	summary.Holiday = 0

	weeks := make([]int, 0, len(weekMinutes))
	for key := range weekMinutes {
		weeks = append(weeks, key)
	}
	sort.Ints(weeks)
	summary.WeeklyMinutes = make([]int, 0, len(weeks))
	for _, key := range weeks {
		summary.WeeklyMinutes = append(summary.WeeklyMinutes, weekMinutes[key])
	}

	return summary
}

// NightMinutes intersects [start, end) with the window [d 22:00, d+1 06:00)
// of every calendar day d the interval can touch. The windows are disjoint,
// so no minute is counted twice.
func NightMinutes(start, end time.Time, loc *time.Location) int {
	if !end.After(start) {
		return 0
	}
	if loc == nil {
		loc = DefaultLocation()
	}
	start = start.In(loc)
	end = end.In(loc)

	var total time.Duration
	day := startOfDay(start).AddDate(0, 0, -1)
	last := startOfDay(end)
	for !day.After(last) {
		windowStart := time.Date(day.Year(), day.Month(), day.Day(), NightWindowStartHour, 0, 0, 0, loc)
		windowEnd := time.Date(day.Year(), day.Month(), day.Day()+1, NightWindowEndHour, 0, 0, 0, loc)
		total += overlap(start, end, windowStart, windowEnd)
		day = day.AddDate(0, 0, 1)
	}
	return int(total / time.Minute)
}

func overlap(aStart, aEnd, bStart, bEnd time.Time) time.Duration {
	lo := aStart
	if bStart.After(lo) {
		lo = bStart
	}
	hi := aEnd
	if bEnd.Before(hi) {
		hi = bEnd
	}
	if !hi.After(lo) {
		return 0
	}
	return hi.Sub(lo)
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
