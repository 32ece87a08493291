package booking

import (
	"fmt"
	"os"
	"strings"
	"time"
	_ "time/tzdata" // zone lookups must not depend on the host's zoneinfo
)

// FallbackTimezone is used when the ambient timezone cannot be determined.
const FallbackTimezone = "Asia/Kolkata"

const displayLayout = "3:04 PM"

// Conversion holds the fields Convert derives for a single slot.
type Conversion struct {
	DisplayTime  string
	LocalDate    string
	LocalInstant time.Time
	LocalEnd     time.Time
}

// Convert re-expresses a UTC slot in tz. It never fails: a malformed range or an
// unknown zone yields the UTC range unchanged, the UTC date, and a naive UTC instant.
func Convert(utcDate time.Time, timeRangeUTC, tz string) Conversion {
	day := utcDate.UTC()
	dateStr := day.Format(DateLayout)

	startUTC, ok := rangeStart(day, timeRangeUTC)
	if !ok {
		naive := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
		return Conversion{
			DisplayTime:  timeRangeUTC,
			LocalDate:    dateStr,
			LocalInstant: naive,
			LocalEnd:     naive.Add(SlotDuration),
		}
	}

	loc, err := loadZone(tz)
	if err != nil {
		return Conversion{
			DisplayTime:  timeRangeUTC,
			LocalDate:    dateStr,
			LocalInstant: startUTC,
			LocalEnd:     startUTC.Add(SlotDuration),
		}
	}

	start := startUTC.In(loc)
	end := start.Add(SlotDuration)
	return Conversion{
		DisplayTime:  start.Format(displayLayout) + "-" + end.Format(displayLayout),
		LocalDate:    start.Format(DateLayout),
		LocalInstant: start,
		LocalEnd:     end,
	}
}

// ConvertSlot applies Convert to raw and attaches the result.
func ConvertSlot(utcDate time.Time, raw RawSlot, tz string) ConvertedSlot {
	c := Convert(utcDate, raw.TimeRangeUTC, tz)
	return ConvertedSlot{
		RawSlot:      raw,
		DisplayTime:  c.DisplayTime,
		LocalDate:    c.LocalDate,
		LocalInstant: c.LocalInstant,
	}
}

// rangeStart parses the "HH:MM" before the first '-' and anchors it on day in UTC.
func rangeStart(day time.Time, timeRange string) (time.Time, bool) {
	startStr, _, found := strings.Cut(timeRange, "-")
	if !found {
		return time.Time{}, false
	}
	clock, err := time.Parse("15:04", strings.TrimSpace(startStr))
	if err != nil {
		return time.Time{}, false
	}
	return time.Date(day.Year(), day.Month(), day.Day(), clock.Hour(), clock.Minute(), 0, 0, time.UTC), true
}

func loadZone(tz string) (*time.Location, error) {
	tz = strings.TrimSpace(tz)
	if tz == "" || tz == "Local" {
		return nil, fmt.Errorf("invalid timezone %q", tz)
	}
	return time.LoadLocation(tz)
}

// ValidTimezone reports whether tz names a loadable IANA zone.
func ValidTimezone(tz string) bool {
	_, err := loadZone(tz)
	return err == nil
}

// DefaultTimezone returns the process's ambient IANA zone: TZ first, then the
// zone /etc/localtime links to. fallback is used when neither names a loadable
// zone; an empty or invalid fallback means FallbackTimezone.
func DefaultTimezone(fallback string) string {
	if tz := strings.TrimPrefix(strings.TrimSpace(os.Getenv("TZ")), ":"); ValidTimezone(tz) {
		return tz
	}
	if tz := localtimeZone("/etc/localtime"); ValidTimezone(tz) {
		return tz
	}
	if ValidTimezone(fallback) {
		return fallback
	}
	return FallbackTimezone
}

func localtimeZone(path string) string {
	target, err := os.Readlink(path)
	if err != nil {
		return ""
	}
	_, name, found := strings.Cut(target, "zoneinfo/")
	if !found {
		return ""
	}
	return name
}
