// internal/domain/trigger/schedule.go
package trigger

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Clock is a time of day at minute precision.
type Clock struct {
	Hour   int
	Minute int
}

// ParseClock parses "HH:MM" (24h).
func ParseClock(s string) (Clock, error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return Clock{}, fmt.Errorf("invalid clock %q: expected HH:MM", s)
	}
	hour, err := strconv.Atoi(hh)
	if err != nil || hour < 0 || hour > 23 {
		return Clock{}, fmt.Errorf("invalid clock %q: bad hour", s)
	}
	minute, err := strconv.Atoi(mm)
	if err != nil || minute < 0 || minute > 59 {
		return Clock{}, fmt.Errorf("invalid clock %q: bad minute", s)
	}
	return Clock{Hour: hour, Minute: minute}, nil
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// Matches reports whether now falls inside the clock's minute.
func (c Clock) Matches(now time.Time) bool {
	return now.Hour() == c.Hour && now.Minute() == c.Minute
}

// Schedule holds the firing minutes of the two independently timed rules:
// the reminder rule (Monday/Thursday at Reminder, Friday night at
// FridayNight) and the urgent rule (Tuesday/Friday/Saturday at Urgent).
type Schedule struct {
	Reminder    Clock
	FridayNight Clock
	Urgent      Clock
}

func DefaultSchedule() Schedule {
	return Schedule{
		Reminder:    Clock{Hour: 10, Minute: 25},
		FridayNight: Clock{Hour: 23, Minute: 58},
		Urgent:      Clock{Hour: 14, Minute: 0},
	}
}

// Validate rejects firing minutes that Evaluate can never reach.
func (s Schedule) Validate() error {
	if s.Urgent.Hour >= fridayUrgentToHour {
		return fmt.Errorf("urgent time %s must be before %02d:00 to reach Friday", s.Urgent, fridayUrgentToHour)
	}
	if s.FridayNight.Hour < fridayNightFromHour {
		return fmt.Errorf("friday night reminder time %s must be at or after %02d:00", s.FridayNight, fridayNightFromHour)
	}
	return nil
}

// FiringClock returns the designated minute of a trigger type.
func (s Schedule) FiringClock(t Type) (Clock, bool) {
	switch t {
	case MondayReminder, ThursdayReminder:
		return s.Reminder, true
	case FridayNightReminder:
		return s.FridayNight, true
	case TuesdayUrgent, FridayUrgent, SaturdayUrgent:
		return s.Urgent, true
	default:
		return Clock{}, false
	}
}

// Due returns the trigger that is allowed to fire during now's minute, if any.
func (s Schedule) Due(now time.Time) (Type, bool) {
	t := Evaluate(now)
	clock, ok := s.FiringClock(t)
	if !ok || !clock.Matches(now) {
		return None, false
	}
	return t, true
}
