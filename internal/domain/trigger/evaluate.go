// internal/domain/trigger/evaluate.go
package trigger

import "time"

const (
	fridayNightFromHour = 21
	fridayUrgentToHour  = 15
)

// Evaluate maps a local wall-clock moment to a trigger type. Rules are
// checked in order and the first match wins. Friday between 15:00 and 20:59
// matches nothing.
func Evaluate(now time.Time) Type {
	day, hour := now.Weekday(), now.Hour()

	switch {
	case day == time.Monday:
		return MondayReminder
	case day == time.Thursday:
		return ThursdayReminder
	case day == time.Friday && hour >= fridayNightFromHour:
		return FridayNightReminder
	case day == time.Tuesday:
		return TuesdayUrgent
	case day == time.Friday && hour < fridayUrgentToHour:
		return FridayUrgent
	case day == time.Saturday:
		return SaturdayUrgent
	default:
		return None
	}
}
