package telescope

import (
	"errors"
	"time"
)

// isoLayout matches a JavaScript Date.toISOString() value.
const isoLayout = "2006-01-02T15:04:05.000Z"

// InstantRequest is the VariantSimple body: one absolute UTC instant.
type InstantRequest struct {
	TargetDate string `json:"target_date"`
}

// PartsRequest is the VariantExtended body. Components are sent as entered.
type PartsRequest struct {
	Year   int `json:"year"`
	Month  int `json:"month"`
	Day    int `json:"day"`
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
}

// BuildRequest returns the JSON body for a selection.
func BuildRequest(sel DateSelection) (interface{}, error) {
	switch sel.Variant {
	case VariantSimple:
		if sel.Instant.IsZero() {
			return nil, errors.New("selection has no instant")
		}
		return InstantRequest{TargetDate: FormatInstant(sel.Instant)}, nil
	case VariantExtended:
		return PartsRequest{
			Year:   sel.Year,
			Month:  sel.Month,
			Day:    sel.Day,
			Hour:   sel.Hour,
			Minute: sel.Minute,
		}, nil
	default:
		return nil, errors.New("selection has unknown variant")
	}
}

// FormatInstant renders t as an ISO-8601 UTC timestamp with milliseconds.
func FormatInstant(t time.Time) string {
	return t.UTC().Format(isoLayout)
}
