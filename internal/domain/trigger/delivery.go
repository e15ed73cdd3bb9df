// internal/domain/trigger/delivery.go
package trigger

import "time"

// DateLayout renders dates the way the group is used to reading them,
// e.g. "21 October 2026".
const DateLayout = "2 January 2006"

// DeliveryInfo describes the delivery day a reminder announces.
type DeliveryInfo struct {
	DayName string
	DateStr string
	Date    time.Time
}

// DeliveryInfoFor returns the next date on or after today that falls on
// target. When today already is target, today is returned.
func DeliveryInfoFor(today time.Time, target time.Weekday) DeliveryInfo {
	offset := (int(target) - int(today.Weekday()) + 7) % 7
	date := today.AddDate(0, 0, offset)

	return DeliveryInfo{
		DayName: date.Weekday().String(),
		DateStr: date.Format(DateLayout),
		Date:    date,
	}
}
