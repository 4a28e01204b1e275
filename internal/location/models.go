package location

import (
	"strings"
	"time"
)

// SavedLocation is a persisted, geocoded place. Its identity is the
// (Name, State, Country) triple; State may be empty.
type SavedLocation struct {
	ID        string    `json:"id" bson:"id"`
	Name      string    `json:"name" bson:"name"`
	State     string    `json:"state" bson:"state"`
	Country   string    `json:"country" bson:"country"`
	Latitude  float64   `json:"latitude" bson:"latitude"`
	Longitude float64   `json:"longitude" bson:"longitude"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

// Key labels the location in logs and errors. It is not unique: fields may
// themselves contain the separator.
func (l SavedLocation) Key() string {
	return l.Name + ":" + l.State + ":" + l.Country
}

// Region is what a display line names after the location: the state when
// one was given, otherwise the country.
func (l SavedLocation) Region() string {
	if l.State != "" {
		return l.State
	}
	return l.Country
}

// Candidate is a single geocoding match as reported by the provider.
type Candidate struct {
	Name      string  `json:"name"`
	Country   string  `json:"country"`
	Admin1    string  `json:"admin1"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// SaveRequest is the user's form submission.
type SaveRequest struct {
	City    string `form:"city" validate:"required,max=100"`
	State   string `form:"state" validate:"max=100"`
	Country string `form:"country" validate:"required,max=100"`
}

// Normalize trims surrounding whitespace from City and Country. State is kept
// verbatim: any non-empty state, even whitespace, must match an Admin1.
func (r SaveRequest) Normalize() SaveRequest {
	return SaveRequest{
		City:    strings.TrimSpace(r.City),
		State:   r.State,
		Country: strings.TrimSpace(r.Country),
	}
}

// Outcome is the business result of a save attempt.
type Outcome string

const (
	OutcomeAccepted Outcome = "accepted"
	OutcomeRejected Outcome = "rejected"
)

// SaveResult reports the outcome and, when accepted, the stored record.
type SaveResult struct {
	Outcome  Outcome
	Location SavedLocation
}
