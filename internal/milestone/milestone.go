// Package milestone provides one-click date shortcuts.
package milestone

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/litescript/ls-telescope/internal/telescope"
)

// Parts is a structured milestone date. Year may be zero or negative.
type Parts struct {
	Year  int    `json:"year"`
	Month int    `json:"month"`
	Day   int    `json:"day"`
	Time  string `json:"time,omitempty"` // "HH:MM"
}

// Milestone is a named date. Exactly one of Date and Parts is set.
type Milestone struct {
	Name  string `json:"name"`
	Date  string `json:"date,omitempty"` // literal "2006-01-02T15:04"
	Parts *Parts `json:"parts,omitempty"`
}

// IsLiteral reports whether the milestone carries a literal date string.
func (m Milestone) IsLiteral() bool {
	return m.Date != ""
}

// Validate checks that the milestone is usable.
func (m Milestone) Validate() error {
	if strings.TrimSpace(m.Name) == "" {
		return fmt.Errorf("milestone has no name")
	}
	switch {
	case m.Date != "" && m.Parts != nil:
		return fmt.Errorf("milestone %q: set either date or parts, not both", m.Name)
	case m.Date == "" && m.Parts == nil:
		return fmt.Errorf("milestone %q: missing date", m.Name)
	}
	return nil
}

// Describe returns a short human form of the milestone's date.
func (m Milestone) Describe() string {
	if m.IsLiteral() {
		return strings.Replace(m.Date, "T", " ", 1)
	}
	if m.Parts == nil {
		return ""
	}
	year := m.Parts.Year
	era := "CE"
	if year < 0 {
		year = -year
		era = "BCE"
	}
	s := fmt.Sprintf("%d %s-%02d-%02d", year, era, m.Parts.Month, m.Parts.Day)
	if m.Parts.Time != "" {
		s += " " + m.Parts.Time
	}
	return s
}

var simpleDefaults = []Milestone{
	{Name: "Apollo 11 Moon Landing", Date: "1969-07-20T20:17"},
	{Name: "Voyager 1 Launch", Date: "1977-09-05T12:56"},
	{Name: "Fall of the Berlin Wall", Date: "1989-11-09T18:00"},
	{Name: "Hubble Space Telescope Launch", Date: "1990-04-24T12:33"},
	{Name: "The New Millennium", Date: "2000-01-01T00:00"},
	{Name: "First Image of a Black Hole", Date: "2019-04-10T13:00"},
}

var extendedDefaults = []Milestone{
	{Name: "Great Pyramid of Giza", Parts: &Parts{Year: -2560, Month: 1, Day: 1, Time: "12:00"}},
	{Name: "Founding of Rome", Parts: &Parts{Year: -753, Month: 4, Day: 21, Time: "12:00"}},
	{Name: "Ides of March", Parts: &Parts{Year: -44, Month: 3, Day: 15, Time: "11:00"}},
	{Name: "Crab Supernova Observed", Parts: &Parts{Year: 1054, Month: 7, Day: 4, Time: "06:00"}},
	{Name: "Galileo Turns a Telescope Skyward", Parts: &Parts{Year: 1610, Month: 1, Day: 7, Time: "21:00"}},
	{Name: "Apollo 11 Moon Landing", Parts: &Parts{Year: 1969, Month: 7, Day: 20, Time: "20:17"}},
}

// Defaults returns the built-in milestones for a form variant.
func Defaults(v telescope.Variant) []Milestone {
	src := simpleDefaults
	if v == telescope.VariantExtended {
		src = extendedDefaults
	}
	out := make([]Milestone, len(src))
	for i, m := range src {
		out[i] = m
		if m.Parts != nil {
			p := *m.Parts
			out[i].Parts = &p
		}
	}
	return out
}

// Parse decodes a JSON array of milestones.
func Parse(data []byte) ([]Milestone, error) {
	var ms []Milestone
	if err := json.Unmarshal(data, &ms); err != nil {
		return nil, fmt.Errorf("parse milestones: %w", err)
	}
	for i, m := range ms {
		if err := m.Validate(); err != nil {
			return nil, fmt.Errorf("milestone %d: %w", i, err)
		}
	}
	return ms, nil
}

// Load reads milestones from a JSON file.
func Load(path string) ([]Milestone, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read milestones: %w", err)
	}
	return Parse(data)
}
