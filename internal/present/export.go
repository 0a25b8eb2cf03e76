package present

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/litescript/ls-telescope/internal/telescope"
)

// Export is the JSON-serializable form of one calculation.
type Export struct {
	RequestID  string                      `json:"request_id,omitempty"`
	FetchedAt  time.Time                   `json:"fetched_at"`
	DurationMS int64                       `json:"duration_ms"`
	Request    interface{}                 `json:"request"`
	Result     telescope.CalculationResult `json:"result"`
	Display    DisplayExport               `json:"display"`
}

// DisplayExport holds the formatted strings.
type DisplayExport struct {
	Date              string `json:"date"`
	LightYears        string `json:"light_years"`
	LightYearsSummary string `json:"light_years_summary"`
	Kilometers        string `json:"kilometers"`
	Miles             string `json:"miles"`
	TravelTimeVoyager string `json:"travel_time_voyager,omitempty"`
	LandmarkDistance  string `json:"landmark_distance,omitempty"`
}

// NewExport builds an Export from a successful outcome and its view.
func NewExport(out telescope.Outcome, view ResultView, fetchedAt time.Time) *Export {
	req, _ := telescope.BuildRequest(out.Selection)
	e := &Export{
		RequestID:  out.RequestID,
		FetchedAt:  fetchedAt,
		DurationMS: out.Duration.Milliseconds(),
		Request:    req,
		Result:     out.Result,
		Display: DisplayExport{
			Date:              view.DisplayDate,
			LightYears:        view.LightYears,
			LightYearsSummary: view.LightYearsSummary,
			Kilometers:        view.Kilometers,
			Miles:             view.Miles,
			TravelTimeVoyager: view.TravelTimeVoyager,
		},
	}
	if view.Landmark != nil {
		e.Display.LandmarkDistance = view.Landmark.Distance
	}
	return e
}

// WriteJSON writes the export as indented JSON.
func (e *Export) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(e)
}

// WriteSummary writes a plain-text results block.
func WriteSummary(w io.Writer, v ResultView) {
	fmt.Fprintf(w, "Light emitted on %s\n", v.DisplayDate)
	fmt.Fprintf(w, "has traveled %s light-years.\n", v.LightYearsSummary)
	fmt.Fprintln(w, strings.Repeat("─", 48))

	fmt.Fprintf(w, "%-22s %s\n", "Light-years", v.LightYears)
	fmt.Fprintf(w, "%-22s %s\n", "Kilometers", v.Kilometers)
	fmt.Fprintf(w, "%-22s %s\n", "Miles", v.Miles)
	if v.YearsAgo != "" {
		fmt.Fprintf(w, "%-22s %s\n", "Years ago", v.YearsAgo)
	}
	if v.TravelTimeVoyager != "" {
		fmt.Fprintf(w, "%-22s %s\n", "Voyager 1 travel time", v.TravelTimeVoyager)
	}

	if !v.LandmarkVisible || v.Landmark == nil {
		return
	}

	lm := v.Landmark
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Nearest landmark: %s (%s)\n", lm.Name, lm.ObjectType)
	fmt.Fprintf(w, "  %s\n", lm.Description)
	fmt.Fprintf(w, "  %s light-years away\n", lm.Distance)
}
