// Package input turns form state into a telescope.DateSelection.
package input

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/litescript/ls-telescope/internal/milestone"
	"github.com/litescript/ls-telescope/internal/telescope"
)

// DateTimeLayout is the canonical value of the combined date-time field.
const DateTimeLayout = "2006-01-02T15:04"

// DefaultTime is used when the extended form's time field is blank.
const DefaultTime = "12:00"

// defaultLookback is how far before now the simple form starts.
const defaultLookback = 10

var dateTimeLayouts = []string{
	DateTimeLayout,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02 15:04:05",
}

// ValidationError is a user-facing problem with the form.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// SimpleForm is the single combined date-time field.
type SimpleForm struct {
	DateTime string
}

// DefaultSimpleForm returns a form set to ten years before now.
func DefaultSimpleForm(now time.Time) SimpleForm {
	return SimpleForm{DateTime: now.AddDate(-defaultLookback, 0, 0).Format(DateTimeLayout)}
}

// Collect parses the field as wall-clock time in loc.
func (f SimpleForm) Collect(loc *time.Location) (telescope.DateSelection, error) {
	t, err := ParseDateTime(f.DateTime, loc)
	if err != nil {
		return telescope.DateSelection{}, err
	}
	return telescope.SelectionAt(t), nil
}

// ParseDateTime parses a combined date-time value in loc. RFC 3339 values
// keep their own offset.
func ParseDateTime(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, &ValidationError{Field: "date", Message: "Please select a target date."}
	}
	if loc == nil {
		loc = time.Local
	}
	for _, layout := range dateTimeLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Time{}, &ValidationError{
		Field:   "date",
		Message: fmt.Sprintf("Invalid date %q: use YYYY-MM-DDTHH:MM.", s),
	}
}

// ExtendedForm holds separate year, month, day and time fields.
type ExtendedForm struct {
	Year  string
	Month string
	Day   string
	Time  string // "HH:MM"
}

// DefaultExtendedForm returns a form set to the same calendar day ten years ago.
func DefaultExtendedForm(now time.Time) ExtendedForm {
	t := now.AddDate(-defaultLookback, 0, 0)
	return ExtendedForm{
		Year:  strconv.Itoa(t.Year()),
		Month: strconv.Itoa(int(t.Month())),
		Day:   strconv.Itoa(t.Day()),
		Time:  DefaultTime,
	}
}

// Collect validates the integer fields and splits the time.
func (f ExtendedForm) Collect() (telescope.DateSelection, error) {
	year, err := parseField("year", f.Year)
	if err != nil {
		return telescope.DateSelection{}, err
	}
	month, err := parseField("month", f.Month)
	if err != nil {
		return telescope.DateSelection{}, err
	}
	day, err := parseField("day", f.Day)
	if err != nil {
		return telescope.DateSelection{}, err
	}
	hour, minute := SplitTime(f.Time)
	return telescope.SelectionParts(year, month, day, hour, minute), nil
}

func parseField(name, value string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, &ValidationError{
			Field:   name,
			Message: fmt.Sprintf("Please enter a valid %s.", name),
		}
	}
	return n, nil
}

// SplitTime splits "HH:MM" into hour and minute. A blank value means
// DefaultTime; a part that does not parse becomes 0.
func SplitTime(s string) (hour, minute int) {
	s = strings.TrimSpace(s)
	if s == "" {
		s = DefaultTime
	}
	parts := strings.SplitN(s, ":", 2)
	if h, err := strconv.Atoi(strings.TrimSpace(parts[0])); err == nil {
		hour = h
	}
	if len(parts) > 1 {
		if m, err := strconv.Atoi(strings.TrimSpace(parts[1])); err == nil {
			minute = m
		}
	}
	return hour, minute
}

// Collector holds the form for one variant.
type Collector struct {
	Variant  telescope.Variant
	Simple   SimpleForm
	Extended ExtendedForm
	Location *time.Location
}

// NewCollector returns a collector with default field values.
func NewCollector(v telescope.Variant, now time.Time) *Collector {
	return &Collector{
		Variant:  v,
		Simple:   DefaultSimpleForm(now),
		Extended: DefaultExtendedForm(now),
		Location: now.Location(),
	}
}

// Collect validates the active form.
func (c *Collector) Collect() (telescope.DateSelection, error) {
	if c.Variant == telescope.VariantExtended {
		return c.Extended.Collect()
	}
	return c.Simple.Collect(c.Location)
}

// Apply overwrites the active form with a milestone's date.
func (c *Collector) Apply(m milestone.Milestone) error {
	if err := m.Validate(); err != nil {
		return &ValidationError{Field: "milestone", Message: err.Error()}
	}

	if c.Variant == telescope.VariantExtended {
		return c.applyExtended(m)
	}
	return c.applySimple(m)
}

func (c *Collector) applySimple(m milestone.Milestone) error {
	if m.IsLiteral() {
		c.Simple.DateTime = m.Date
		return nil
	}
	p := m.Parts
	if p.Year < 1 || p.Year > 9999 {
		return &ValidationError{
			Field:   "milestone",
			Message: fmt.Sprintf("%s cannot be entered as a calendar date; use the extended form.", m.Name),
		}
	}
	hour, minute := SplitTime(p.Time)
	c.Simple.DateTime = fmt.Sprintf("%04d-%02d-%02dT%02d:%02d", p.Year, p.Month, p.Day, hour, minute)
	return nil
}

func (c *Collector) applyExtended(m milestone.Milestone) error {
	if m.IsLiteral() {
		t, err := ParseDateTime(m.Date, c.Location)
		if err != nil {
			return err
		}
		c.Extended = ExtendedForm{
			Year:  strconv.Itoa(t.Year()),
			Month: strconv.Itoa(int(t.Month())),
			Day:   strconv.Itoa(t.Day()),
			Time:  t.Format("15:04"),
		}
		return nil
	}
	p := m.Parts
	c.Extended = ExtendedForm{
		Year:  strconv.Itoa(p.Year),
		Month: strconv.Itoa(p.Month),
		Day:   strconv.Itoa(p.Day),
		Time:  p.Time,
	}
	return nil
}
