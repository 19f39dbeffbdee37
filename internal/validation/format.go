package validation

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatDate renders "2024-01-15" as "Monday, January 15, 2024".
// Input that is not a calendar date is returned unchanged.
func FormatDate(date string) string {
	d, err := ParseDate(date, nil)
	if err != nil {
		return date
	}
	return d.Format("Monday, January 2, 2006")
}

// FormatTime renders a 24-hour "HH:MM" as "h:mm AM/PM". Hour 0 is 12 AM and
// hour 12 is 12 PM. Malformed input is returned unchanged.
func FormatTime(tm string) string {
	hh, mm, ok := strings.Cut(tm, ":")
	if !ok {
		return tm
	}
	hour, err := strconv.Atoi(hh)
	if err != nil || hour < 0 || hour > 23 {
		return tm
	}
	ampm := "AM"
	if hour >= 12 {
		ampm = "PM"
	}
	display := hour % 12
	if display == 0 {
		display = 12
	}
	return fmt.Sprintf("%d:%s %s", display, mm, ampm)
}
