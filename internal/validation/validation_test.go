package validation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var today = time.Date(2024, time.March, 13, 15, 30, 0, 0, time.UTC)

func TestValidate_AllValid(t *testing.T) {
	errs := Validate("Jane Doe", "jane@x.com", "2024-03-13", "09:00", today)
	assert.True(t, errs.Empty(), "unexpected errors: %v", errs)
}

func TestValidate_AllEmpty(t *testing.T) {
	errs := Validate("", "", "", "", today)

	assert.Equal(t, Errors{
		FieldPatientName:  "Patient name is required",
		FieldPatientEmail: "Email is required",
		FieldDate:         "Please select a date",
		FieldTime:         "Please select a time slot",
	}, errs)
}

func TestValidate_PatientName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"whitespace only", "   ", "Patient name is required"},
		{"single char", "J", "Patient name must be at least 2 characters"},
		{"single char padded", "  J  ", "Patient name must be at least 2 characters"},
		{"two chars", "Jo", ""},
		{"multibyte", "Žo", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := Validate(tt.input, "a@b.co", "2024-03-20", "10:00", today)
			assert.Equal(t, tt.want, errs[FieldPatientName])
		})
	}
}

func TestValidate_Email(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", "Email is required"},
		{"   ", "Email is required"},
		{"jane", "Please enter a valid email address"},
		{"jane@x", "Please enter a valid email address"},
		{"jane doe@x.com", "Please enter a valid email address"},
		{"jane@@x.com", "Please enter a valid email address"},
		{" jane@x.com", "Please enter a valid email address"},
		{"jane\u00a0doe@x.com", "Please enter a valid email address"},
		{"jane@x.\u2028com", "Please enter a valid email address"},
		{"jane\u3000@x.com", "Please enter a valid email address"},
		{"jane@x\u2009y.com", "Please enter a valid email address"},
		{"jane\ufeff@x.com", "Please enter a valid email address"},
		{"jane\v@x.com", "Please enter a valid email address"},
		{"jane@x.com", ""},
		{"j.d+tag@mail.example.org", ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			errs := Validate("Jane", tt.input, "2024-03-20", "10:00", today)
			assert.Equal(t, tt.want, errs[FieldPatientEmail])
		})
	}
}

func TestValidate_Date(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"yesterday", "2024-03-12", "Please select a future date"},
		{"last year", "2023-12-31", "Please select a future date"},
		{"today ignores time of day", "2024-03-13", ""},
		{"tomorrow", "2024-03-14", ""},
		{"garbage", "next tuesday", "Please select a valid date"},
		{"impossible day", "2024-02-31", "Please select a valid date"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := Validate("Jane", "jane@x.com", tt.input, "10:00", today)
			assert.Equal(t, tt.want, errs[FieldDate])
		})
	}
}

func TestValidate_DateUsesNowLocation(t *testing.T) {
	// 23:30 on the 12th in New York is already the 13th in UTC.
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skip("tzdata not available")
	}
	now := time.Date(2024, time.March, 12, 23, 30, 0, 0, ny)

	errs := Validate("Jane", "jane@x.com", "2024-03-12", "10:00", now)
	assert.False(t, errs.Has(FieldDate))
}

func TestValidate_TimeAcceptsAnyNonEmpty(t *testing.T) {
	errs := Validate("Jane", "jane@x.com", "2024-03-20", "whenever", today)
	assert.False(t, errs.Has(FieldTime))
}

func TestFormatTime(t *testing.T) {
	tests := map[string]string{
		"13:05": "1:05 PM",
		"00:30": "12:30 AM",
		"12:00": "12:00 PM",
		"09:00": "9:00 AM",
		"23:59": "11:59 PM",
		"noon":  "noon",
		"25:00": "25:00",
	}
	for in, want := range tests {
		assert.Equal(t, want, FormatTime(in), in)
	}
}

func TestFormatDate(t *testing.T) {
	assert.Equal(t, "Monday, January 15, 2024", FormatDate("2024-01-15"))
	assert.Equal(t, "Friday, March 1, 2024", FormatDate("2024-03-01"))
	assert.Equal(t, "soon", FormatDate("soon"))
}
