package vcard

import "strings"

const (
	maxDateLen = 8
	maxTimeLen = 6
)

// DateTime holds a BDAY or ANNIVERSARY value. In text mode only Text is set;
// otherwise Date and Time carry the calendar and clock digits.
type DateTime struct {
	IsText bool
	UTC    bool
	Date   string
	Time   string
	Text   string
}

// newDateTime builds a DateTime from the raw parameter block and value of a
// BDAY or ANNIVERSARY line. The only parameter block accepted is exactly
// "VALUE=text".
func newDateTime(params opt, value string) (*DateTime, error) {
	if params.ok {
		if params.val != "VALUE=text" {
			return nil, newError("parse", InvalidProperty, "unsupported date parameters "+quote(params.val))
		}
		return &DateTime{IsText: true, Text: value}, nil
	}

	dt := &DateTime{}
	if strings.HasSuffix(value, "Z") {
		dt.UTC = true
		value = value[:len(value)-1]
	}

	date, clock, hasTime := cutUnescaped(value, 'T')
	dt.Date = truncate(date, maxDateLen)
	if hasTime {
		// drop a trailing UTC offset such as -0500
		clock, _, _ = cutUnescaped(clock, '-')
		dt.Time = truncate(clock, maxTimeLen)
	}
	return dt, nil
}

// ParseDateTime builds a DateTime the way a BDAY line would. An empty params
// means the line carried no parameters.
func ParseDateTime(params, value string) (*DateTime, error) {
	if params == "" {
		return newDateTime(opt{}, value)
	}
	return newDateTime(some(params), value)
}

// Equal compares every field.
func (d *DateTime) Equal(o *DateTime) bool {
	if d == nil || o == nil {
		return d == o
	}
	return *d == *o
}

// IsEmpty reports a date/time value with neither date nor time.
func (d *DateTime) IsEmpty() bool {
	return !d.IsText && d.Date == "" && d.Time == ""
}

// Value renders the wire form used after the ':' of the property line.
func (d *DateTime) Value() string {
	if d.IsText {
		return d.Text
	}
	s := d.Date
	if d.Time != "" {
		s += "T" + d.Time
	}
	if d.UTC {
		s += "Z"
	}
	return s
}

func (d *DateTime) String() string {
	if d.IsText {
		return "Text: " + d.Text
	}
	return "Date: " + d.Date + "\nTime: " + d.Time + "\n"
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
