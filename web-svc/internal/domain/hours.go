package domain

import "time"

// IsOpen reports whether any period contains t, compared in minutes since
// midnight on t's weekday. Bounds are inclusive. A period closing on a later
// day covers the rest of its opening day and the start of its closing day.
func IsOpen(periods []OpeningPeriod, t time.Time) bool {
	day := int(t.Weekday())
	now := t.Hour()*60 + t.Minute()

	for _, period := range periods {
		if period.Close == nil {
			return true
		}
		opens, closes := period.Open.Minutes(), period.Close.Minutes()
		if period.Open.Day == period.Close.Day {
			if period.Open.Day == day && opens <= now && now <= closes {
				return true
			}
			continue
		}
		if period.Open.Day == day && opens <= now {
			return true
		}
		if period.Close.Day == day && now <= closes {
			return true
		}
	}
	return false
}
