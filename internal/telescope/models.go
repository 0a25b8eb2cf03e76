// Package telescope models a light-travel calculation and talks to the
// calculation API.
package telescope

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Variant selects how a date is entered and sent.
type Variant int

const (
	// VariantSimple uses one combined date-time field and sends an absolute instant.
	VariantSimple Variant = iota
	// VariantExtended uses separate fields and sends calendar components as-is,
	// so years at or below zero can be expressed.
	VariantExtended
)

func (v Variant) String() string {
	switch v {
	case VariantSimple:
		return "simple"
	case VariantExtended:
		return "extended"
	default:
		return "unknown"
	}
}

// ParseVariant parses a variant name.
func ParseVariant(s string) (Variant, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "simple", "a", "":
		return VariantSimple, nil
	case "extended", "b":
		return VariantExtended, nil
	default:
		return VariantSimple, fmt.Errorf("unknown variant %q", s)
	}
}

// DateSelection is the date a user asked about. It is built fresh from the
// form on every calculation.
type DateSelection struct {
	Variant Variant

	// Instant is the absolute moment for VariantSimple. Its location is the
	// one the wall-clock value was entered in and is kept for display.
	Instant time.Time

	Year   int
	Month  int
	Day    int
	Hour   int
	Minute int
}

// SelectionAt builds a VariantSimple selection from a wall-clock time.
func SelectionAt(t time.Time) DateSelection {
	return DateSelection{
		Variant: VariantSimple,
		Instant: t,
		Year:    t.Year(),
		Month:   int(t.Month()),
		Day:     t.Day(),
		Hour:    t.Hour(),
		Minute:  t.Minute(),
	}
}

// SelectionParts builds a VariantExtended selection from calendar components.
func SelectionParts(year, month, day, hour, minute int) DateSelection {
	return DateSelection{
		Variant: VariantExtended,
		Year:    year,
		Month:   month,
		Day:     day,
		Hour:    hour,
		Minute:  minute,
	}
}

// CalculationResult is the API's answer for one date.
type CalculationResult struct {
	LightYears        float64   `json:"light_years"`
	Kilometers        float64   `json:"kilometers"`
	Miles             float64   `json:"miles"`
	TravelTimeVoyager string    `json:"travel_time_voyager,omitempty"`
	YearsAgo          float64   `json:"years_ago,omitempty"`
	NearestLandmark   *Landmark `json:"nearest_landmark"`
}

// Landmark is the astronomical object nearest to the computed distance.
// It is owned by the server and only displayed.
type Landmark struct {
	Name        string           `json:"name"`
	ObjectType  string           `json:"object_type"`
	Description string           `json:"description"`
	DistanceLY  LandmarkDistance `json:"distance_ly"`
}

// LandmarkDistance holds distance_ly, which the server sends either as a
// number or as a display string.
type LandmarkDistance struct {
	Value   float64 // parsed value, valid when Numeric
	Text    string  // original string form, empty for JSON numbers
	Numeric bool
}

// DistanceValue returns a numeric LandmarkDistance.
func DistanceValue(v float64) LandmarkDistance {
	return LandmarkDistance{Value: v, Numeric: true}
}

// DistanceText returns a LandmarkDistance from a display string.
func DistanceText(s string) LandmarkDistance {
	d := LandmarkDistance{Text: s}
	if v, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(s), ",", ""), 64); err == nil {
		d.Value = v
		d.Numeric = true
	}
	return d
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *LandmarkDistance) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*d = LandmarkDistance{}
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("distance_ly: %w", err)
		}
		*d = DistanceText(s)
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("distance_ly: %w", err)
	}
	*d = DistanceValue(v)
	return nil
}

// MarshalJSON implements json.Marshaler, preserving the original form.
func (d LandmarkDistance) MarshalJSON() ([]byte, error) {
	if d.Text != "" {
		return json.Marshal(d.Text)
	}
	return json.Marshal(d.Value)
}
