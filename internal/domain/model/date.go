package model

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Date is a calendar day counted from 1970-01-01. It carries no time zone.
type Date int32

var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	time.RFC3339Nano,
}

// Spreadsheet serial day 0.
var excelEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// DateOf returns the calendar day of t in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	u := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return Date(u.Unix() / 86400)
}

// NewDate builds a Date from its parts.
func NewDate(year int, month time.Month, day int) Date {
	return DateOf(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// ParseDate accepts ISO dates, US slash dates, timestamps and spreadsheet
// serial numbers.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty date")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return DateOf(t), nil
		}
	}
	return 0, fmt.Errorf("unrecognized date %q", s)
}

// DateFromSerial converts a spreadsheet serial day number.
func DateFromSerial(serial float64) (Date, error) {
	if math.IsNaN(serial) || math.IsInf(serial, 0) || serial < 1 || serial > 2958465 {
		return 0, fmt.Errorf("serial date %v out of range", serial)
	}
	return DateOf(excelEpoch.AddDate(0, 0, int(serial))), nil
}

// Time returns midnight UTC of the day.
func (d Date) Time() time.Time {
	return time.Unix(int64(d)*86400, 0).UTC()
}

// AddDays shifts the date by n days.
func (d Date) AddDays(n int) Date { return d + Date(n) }

// Before reports whether d is strictly earlier than o.
func (d Date) Before(o Date) bool { return d < o }

// ISOWeek returns the ISO year and week of d.
func (d Date) ISOWeek() (year, week int) { return d.Time().ISOWeek() }

// WeekStart returns the Monday of d's ISO week.
func (d Date) WeekStart() Date {
	wd := int(d.Time().Weekday())
	if wd == 0 {
		wd = 7
	}
	return d - Date(wd-1)
}

func (d Date) String() string { return d.Time().Format("2006-01-02") }

// MarshalText implements encoding.TextMarshaler.
func (d Date) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Date) UnmarshalText(b []byte) error {
	v, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = v
	return nil
}
