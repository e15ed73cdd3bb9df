// internal/domain/trigger/type.go
package trigger

import "time"

// Type names the notification a moment in the week maps to.
type Type string

const (
	None                Type = ""
	MondayReminder      Type = "MONDAY_REMINDER"       // ordering open for Tuesday
	ThursdayReminder    Type = "THURSDAY_REMINDER"     // ordering open for Friday
	FridayNightReminder Type = "FRIDAY_NIGHT_REMINDER" // ordering open for Saturday
	TuesdayUrgent       Type = "TUESDAY_URGENT"
	FridayUrgent        Type = "FRIDAY_URGENT"
	SaturdayUrgent      Type = "SATURDAY_URGENT"
)

// Kind separates "ordering is open" announcements from cutoff warnings.
type Kind string

const (
	KindNone     Kind = ""
	KindReminder Kind = "REMINDER"
	KindUrgent   Kind = "URGENT"
)

func (t Type) Kind() Kind {
	switch t {
	case MondayReminder, ThursdayReminder, FridayNightReminder:
		return KindReminder
	case TuesdayUrgent, FridayUrgent, SaturdayUrgent:
		return KindUrgent
	default:
		return KindNone
	}
}

// DeliveryDay returns the weekday a reminder announces. Urgent types and
// None have no delivery day.
func (t Type) DeliveryDay() (time.Weekday, bool) {
	switch t {
	case MondayReminder:
		return time.Tuesday, true
	case ThursdayReminder:
		return time.Friday, true
	case FridayNightReminder:
		return time.Saturday, true
	default:
		return 0, false
	}
}
