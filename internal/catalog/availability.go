package catalog

import (
	"doctor-booking-api/internal/model"
	"doctor-booking-api/internal/validation"
)

// Weekday names the day of a YYYY-MM-DD date using English weekday names
// ("Monday"...), the same keys used by Doctor.Availability. Dates carry no
// time zone, so the result does not depend on the process location.
func Weekday(date string) (string, bool) {
	d, err := validation.ParseDate(date, nil)
	if err != nil {
		return "", false
	}
	return d.Weekday().String(), true
}

// ResolveSlots returns the bookable times for date in availability order.
// An empty or unparseable date, or a weekday without entries, yields an
// empty slice.
func ResolveSlots(d model.Doctor, date string) []string {
	if date == "" {
		return []string{}
	}
	day, ok := Weekday(date)
	if !ok {
		return []string{}
	}
	times, ok := d.Availability[day]
	if !ok {
		return []string{}
	}
	return append([]string{}, times...)
}

// Offers reports whether tm is one of the slots for date.
func Offers(d model.Doctor, date, tm string) bool {
	for _, s := range ResolveSlots(d, date) {
		if s == tm {
			return true
		}
	}
	return false
}
