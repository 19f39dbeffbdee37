// Package validation checks booking form input and renders dates and times
// for display. Every function here is pure.
package validation

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	FieldPatientName  = "patientName"
	FieldPatientEmail = "patientEmail"
	FieldDate         = "date"
	FieldTime         = "time"
)

// DateLayout is the calendar date format used by forms and availability lookup.
const DateLayout = "2006-01-02"

// RE2's \s is ASCII only; the class also excludes Unicode space separators,
// line/paragraph separators and the BOM.
const noSpace = `[^\s\v\p{Zs}\x{2028}\x{2029}\x{FEFF}@]`

var emailRe = regexp.MustCompile(`^` + noSpace + `+@` + noSpace + `+\.` + noSpace + `+$`)

// Errors maps a form field to its message. A missing key means the field is valid.
type Errors map[string]string

func (e Errors) Has(field string) bool {
	_, ok := e[field]
	return ok
}

func (e Errors) Empty() bool { return len(e) == 0 }

// Validate checks the four booking fields. now supplies the current calendar
// day; only its date in its own location is used.
func Validate(patientName, patientEmail, date, tm string, now time.Time) Errors {
	errs := Errors{}

	name := strings.TrimSpace(patientName)
	switch {
	case name == "":
		errs[FieldPatientName] = "Patient name is required"
	case utf8.RuneCountInString(name) < 2:
		errs[FieldPatientName] = "Patient name must be at least 2 characters"
	}

	switch {
	case strings.TrimSpace(patientEmail) == "":
		errs[FieldPatientEmail] = "Email is required"
	case !emailRe.MatchString(patientEmail):
		errs[FieldPatientEmail] = "Please enter a valid email address"
	}

	if date == "" {
		errs[FieldDate] = "Please select a date"
	} else if d, err := ParseDate(date, now.Location()); err != nil {
		errs[FieldDate] = "Please select a valid date"
	} else if d.Before(startOfDay(now)) {
		errs[FieldDate] = "Please select a future date"
	}

	if tm == "" {
		errs[FieldTime] = "Please select a time slot"
	}

	return errs
}

// ParseDate reads a YYYY-MM-DD calendar date as midnight in loc.
func ParseDate(date string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	return time.ParseInLocation(DateLayout, date, loc)
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
