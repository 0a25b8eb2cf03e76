package present

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"golang.org/x/text/language"

	"github.com/litescript/ls-telescope/internal/telescope"
)

func english() *Presenter {
	return New(language.AmericanEnglish)
}

func TestLightYearsFormatting(t *testing.T) {
	p := english()

	tests := []struct {
		v           float64
		wantFixed   string
		wantSummary string
	}{
		{4.246937, "4.246937", "4.2469"},
		{10, "10.000000", "10"},
		{0.5, "0.500000", "0.5"},
		{2124.123456789, "2,124.123457", "2,124.1235"},
	}

	for _, tt := range tests {
		if got := p.LightYearsFixed(tt.v); got != tt.wantFixed {
			t.Errorf("LightYearsFixed(%v) = %q, want %q", tt.v, got, tt.wantFixed)
		}
		if got := p.LightYearsSummary(tt.v); got != tt.wantSummary {
			t.Errorf("LightYearsSummary(%v) = %q, want %q", tt.v, got, tt.wantSummary)
		}
	}
}

func TestWhole(t *testing.T) {
	p := english()

	tests := []struct {
		v    float64
		want string
	}{
		{1234567.8, "1,234,568"},
		{999.4, "999"},
		{0, "0"},
		{1000, "1,000"},
	}

	for _, tt := range tests {
		if got := p.Whole(tt.v); got != tt.want {
			t.Errorf("Whole(%v) = %q, want %q", tt.v, got, tt.want)
		}
	}
}

func TestWhole_GermanGrouping(t *testing.T) {
	p, err := NewForLocale("de")
	if err != nil {
		t.Fatalf("NewForLocale: %v", err)
	}
	if got := p.Whole(1234567.8); got != "1.234.568" {
		t.Errorf("Whole = %q, want 1.234.568", got)
	}
}

func TestNewForLocale_Invalid(t *testing.T) {
	if _, err := NewForLocale("!!"); err == nil {
		t.Error("expected error for invalid locale")
	}
}

func TestEraDate(t *testing.T) {
	tests := []struct {
		year, month, day, hour, minute int
		want                           string
	}{
		{-100, 3, 15, 9, 30, "March 15, 100 BCE at 09:30"},
		{1969, 7, 20, 20, 17, "July 20, 1969 CE at 20:17"},
		{0, 1, 1, 12, 0, "January 1, 0 CE at 12:00"},
		{2000, 13, 1, 0, 0, "Month 13 1, 2000 CE at 00:00"},
	}

	for _, tt := range tests {
		got := EraDate(tt.year, tt.month, tt.day, tt.hour, tt.minute)
		if got != tt.want {
			t.Errorf("EraDate(%d,%d,%d) = %q, want %q", tt.year, tt.month, tt.day, got, tt.want)
		}
	}
}

func TestSelectionDate(t *testing.T) {
	p := english()

	ext := telescope.SelectionParts(-100, 3, 15, 9, 30)
	if got := p.SelectionDate(ext); got != "March 15, 100 BCE at 09:30" {
		t.Errorf("extended = %q", got)
	}

	loc := time.FixedZone("PDT", -7*3600)
	simple := telescope.SelectionAt(time.Date(2015, time.March, 14, 9, 26, 0, 0, loc))
	if got := p.SelectionDate(simple); got != "3/14/2015, 9:26:00 AM" {
		t.Errorf("simple = %q", got)
	}

	gb := New(language.BritishEnglish)
	if got := gb.SelectionDate(simple); got != "14/03/2015, 09:26:00" {
		t.Errorf("en-GB simple = %q", got)
	}
}

func TestLandmarkDistance(t *testing.T) {
	p := english()

	if got := p.LandmarkDistance(telescope.DistanceValue(2537000)); got != "2,537,000" {
		t.Errorf("numeric = %q", got)
	}
	if got := p.LandmarkDistance(telescope.DistanceValue(4.24)); got != "4.24" {
		t.Errorf("fractional = %q", got)
	}
	if got := p.LandmarkDistance(telescope.DistanceText("26673")); got != "26,673" {
		t.Errorf("numeric string = %q", got)
	}
	if got := p.LandmarkDistance(telescope.DistanceText("unknown")); got != "unknown" {
		t.Errorf("text = %q", got)
	}
}

func TestPresent_WithoutLandmark(t *testing.T) {
	p := english()
	res := telescope.CalculationResult{
		LightYears:        4.246937,
		Kilometers:        1234567.8,
		Miles:             767123.4,
		TravelTimeVoyager: "73,000 years",
	}

	v := p.Present(res, telescope.SelectionParts(2022, 1, 1, 12, 0))

	if v.LightYears != "4.246937" || v.LightYearsSummary != "4.2469" {
		t.Errorf("light years = %q / %q", v.LightYears, v.LightYearsSummary)
	}
	if v.Kilometers != "1,234,568" || v.Miles != "767,123" {
		t.Errorf("km = %q, mi = %q", v.Kilometers, v.Miles)
	}
	if v.TravelTimeVoyager != "73,000 years" {
		t.Errorf("voyager = %q", v.TravelTimeVoyager)
	}
	if !v.ResultsVisible || !v.Focus {
		t.Error("results should be visible and focused")
	}
	if v.LandmarkVisible || v.Landmark != nil {
		t.Error("landmark panel should stay hidden without a landmark")
	}
}

func TestPresent_WithLandmark(t *testing.T) {
	p := english()
	res := telescope.CalculationResult{
		LightYears: 4.3,
		NearestLandmark: &telescope.Landmark{
			Name:        "Alpha Centauri A/B",
			ObjectType:  "Star System",
			Description: "Our nearest bright neighbor system.",
			DistanceLY:  telescope.DistanceValue(4.37),
		},
	}

	v := p.Present(res, telescope.SelectionParts(2022, 1, 1, 12, 0))

	if !v.LandmarkVisible || v.Landmark == nil {
		t.Fatal("landmark panel should be visible")
	}
	lm := v.Landmark
	if lm.Name != "Alpha Centauri A/B" || lm.ObjectType != "Star System" ||
		lm.Description != "Our nearest bright neighbor system." || lm.Distance != "4.37" {
		t.Errorf("landmark view = %+v", lm)
	}
}

func TestWriteSummary(t *testing.T) {
	v := ResultView{
		DisplayDate:       "March 15, 100 BCE at 09:30",
		LightYears:        "2,124.000000",
		LightYearsSummary: "2,124",
		Kilometers:        "1",
		Miles:             "2",
		LandmarkVisible:   true,
		Landmark:          &LandmarkView{Name: "Deneb", ObjectType: "Blue Supergiant", Distance: "2,615"},
	}

	var buf bytes.Buffer
	WriteSummary(&buf, v)
	out := buf.String()

	for _, want := range []string{"March 15, 100 BCE at 09:30", "2,124 light-years", "Nearest landmark: Deneb", "2,615 light-years away"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Voyager") {
		t.Error("empty voyager travel time should be omitted")
	}
}

func TestExport_WriteJSON(t *testing.T) {
	p := english()
	out := telescope.Outcome{
		Selection: telescope.SelectionParts(-100, 3, 15, 9, 30),
		Result:    telescope.CalculationResult{LightYears: 2124.5},
		RequestID: "abc",
		Duration:  1500 * time.Millisecond,
	}
	view := p.Present(out.Result, out.Selection)

	var buf bytes.Buffer
	if err := NewExport(out, view, time.Unix(0, 0).UTC()).WriteJSON(&buf); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if decoded["request_id"] != "abc" {
		t.Errorf("request_id = %v", decoded["request_id"])
	}
	if decoded["duration_ms"] != float64(1500) {
		t.Errorf("duration_ms = %v", decoded["duration_ms"])
	}
	req, _ := decoded["request"].(map[string]interface{})
	if req["year"] != float64(-100) {
		t.Errorf("request.year = %v", req["year"])
	}
	display, _ := decoded["display"].(map[string]interface{})
	if display["date"] != "March 15, 100 BCE at 09:30" {
		t.Errorf("display.date = %v", display["date"])
	}
}
