package booking

import "time"

// NextAvailable picks the earliest date whose first listed slot starts strictly
// after now. Only index zero of each date is inspected, so a date whose first
// slot has passed is skipped even when a later slot on it is still open. The
// returned time is always empty.
func NextAvailable(m AvailabilityMap, now time.Time) Selection {
	for _, date := range m.Dates() {
		slots := m[date]
		if len(slots) == 0 {
			continue
		}
		if slots[0].LocalInstant.After(now) {
			return Selection{Date: date}
		}
	}
	return Selection{}
}
