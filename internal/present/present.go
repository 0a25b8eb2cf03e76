// Package present turns a calculation result into display strings.
package present

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/litescript/ls-telescope/internal/telescope"
)

// ResultView is everything the results panel shows.
type ResultView struct {
	LightYears        string // exactly 6 fraction digits
	LightYearsSummary string // up to 4 fraction digits
	Kilometers        string
	Miles             string
	TravelTimeVoyager string
	YearsAgo          string
	DisplayDate       string

	Landmark *LandmarkView

	ResultsVisible  bool
	LandmarkVisible bool
	Focus           bool // move the results into view
}

// LandmarkView is the landmark sub-panel.
type LandmarkView struct {
	Name        string
	ObjectType  string
	Description string
	Distance    string
}

// Presenter formats values for one locale.
type Presenter struct {
	tag     language.Tag
	printer *message.Printer
}

// New creates a presenter for tag.
func New(tag language.Tag) *Presenter {
	return &Presenter{
		tag:     tag,
		printer: message.NewPrinter(tag),
	}
}

// NewForLocale parses a BCP 47 locale such as "en-US" or "de".
func NewForLocale(locale string) (*Presenter, error) {
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("parse locale %q: %w", locale, err)
	}
	return New(tag), nil
}

// Tag returns the presenter's locale.
func (p *Presenter) Tag() language.Tag {
	return p.tag
}

// LightYearsFixed formats v with exactly six fraction digits.
func (p *Presenter) LightYearsFixed(v float64) string {
	return p.printer.Sprintf("%v", number.Decimal(v,
		number.MinFractionDigits(6),
		number.MaxFractionDigits(6),
	))
}

// LightYearsSummary formats v with at most four fraction digits.
func (p *Presenter) LightYearsSummary(v float64) string {
	return p.printer.Sprintf("%v", number.Decimal(v, number.MaxFractionDigits(4)))
}

// Whole rounds v to the nearest integer and groups its digits.
func (p *Presenter) Whole(v float64) string {
	return p.printer.Sprintf("%v", number.Decimal(math.Round(v), number.MaxFractionDigits(0)))
}

// LandmarkDistance formats a landmark distance. Non-numeric strings are
// shown as sent.
func (p *Presenter) LandmarkDistance(d telescope.LandmarkDistance) string {
	if !d.Numeric {
		return d.Text
	}
	return p.printer.Sprintf("%v", number.Decimal(d.Value, number.MaxFractionDigits(3)))
}

// SelectionDate renders the date the user picked.
func (p *Presenter) SelectionDate(sel telescope.DateSelection) string {
	if sel.Variant == telescope.VariantSimple {
		return sel.Instant.Format(p.dateTimeLayout())
	}
	return EraDate(sel.Year, sel.Month, sel.Day, sel.Hour, sel.Minute)
}

// EraDate renders calendar components as "March 15, 100 BCE at 09:30".
// Negative years are BCE and shown by absolute value.
func EraDate(year, month, day, hour, minute int) string {
	era := "CE"
	if year < 0 {
		era = "BCE"
		year = -year
	}
	return fmt.Sprintf("%s %d, %d %s at %02d:%02d", monthName(month), day, year, era, hour, minute)
}

func monthName(m int) string {
	if m < 1 || m > 12 {
		return "Month " + strconv.Itoa(m)
	}
	return time.Month(m).String()
}

// dateTimeLayout approximates the locale's default date-time format.
func (p *Presenter) dateTimeLayout() string {
	base, _ := p.tag.Base()
	region, _ := p.tag.Region()

	switch base.String() {
	case "en":
		switch region.String() {
		case "GB", "AU", "NZ", "IE", "IN":
			return "02/01/2006, 15:04:05"
		}
		return "1/2/2006, 3:04:05 PM"
	case "de", "fi", "nb", "da":
		return "2.1.2006, 15:04:05"
	case "fr", "es", "it", "pt":
		return "02/01/2006 15:04:05"
	case "ja", "zh":
		return "2006/1/2 15:04:05"
	default:
		return "2006-01-02 15:04:05"
	}
}

// Present builds the results view for a successful calculation.
func (p *Presenter) Present(res telescope.CalculationResult, sel telescope.DateSelection) ResultView {
	v := ResultView{
		LightYears:        p.LightYearsFixed(res.LightYears),
		LightYearsSummary: p.LightYearsSummary(res.LightYears),
		Kilometers:        p.Whole(res.Kilometers),
		Miles:             p.Whole(res.Miles),
		TravelTimeVoyager: res.TravelTimeVoyager,
		DisplayDate:       p.SelectionDate(sel),
		ResultsVisible:    true,
		Focus:             true,
	}

	if res.YearsAgo != 0 {
		v.YearsAgo = p.LightYearsSummary(res.YearsAgo)
	}

	if lm := res.NearestLandmark; lm != nil {
		v.Landmark = &LandmarkView{
			Name:        lm.Name,
			ObjectType:  lm.ObjectType,
			Description: lm.Description,
			Distance:    p.LandmarkDistance(lm.DistanceLY),
		}
		v.LandmarkVisible = true
	}

	return v
}
