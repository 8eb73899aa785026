package metrics

import "math"

// ToWorkingHours converts a calendar-hours duration to an estimated
// working-hours duration. The conversion is a uniform ratio: calendar days
// scaled by workdays-per-week over seven, then multiplied by the working
// hours in a day. It does not walk a business calendar, so weekday/weekend
// alignment of the actual interval is ignored. Downstream consumers depend
// on this exact approximation.
func ToWorkingHours(calendarHours float64, hoursPerDay, daysPerWeek int) float64 {
	if math.IsNaN(calendarHours) || calendarHours <= 0 {
		return 0
	}
	if hoursPerDay <= 0 || daysPerWeek <= 0 {
		return 0
	}

	days := calendarHours / 24
	workingDays := days * float64(daysPerWeek) / 7
	return workingDays * float64(hoursPerDay)
}
