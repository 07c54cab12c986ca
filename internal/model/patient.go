package model

import (
	"strings"
	"time"
)

type Patient struct {
	ID               string    `json:"id"`
	Name             string    `json:"name" validate:"required,max=200"`
	DOB              string    `json:"dob" validate:"required,datetime=2006-01-02"`
	Contact          string    `json:"contact" validate:"required,max=50"`
	Email            string    `json:"email,omitempty" validate:"omitempty,email"`
	Address          string    `json:"address,omitempty"`
	HealthInfo       string    `json:"healthInfo,omitempty"`
	EmergencyContact string    `json:"emergencyContact,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
}

func (p Patient) GetID() string { return p.ID }

// Birthdate parses DOB. The zero time is returned for malformed values.
func (p Patient) Birthdate() time.Time {
	t, err := time.Parse(DateLayout, p.DOB)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Matches implements the patient list search: name and email are matched
// case-insensitively, the contact number verbatim.
func (p Patient) Matches(f PatientFilter) bool {
	if f.Search == "" {
		return true
	}
	return containsFold(p.Name, f.Search) ||
		(p.Contact != "" && strings.Contains(p.Contact, f.Search)) ||
		(p.Email != "" && containsFold(p.Email, f.Search))
}

// UnknownPatientName is shown for incidents whose patient no longer exists.
const UnknownPatientName = "Unknown Patient"

// PatientName resolves id against patients, falling back to UnknownPatientName.
func PatientName(patients []Patient, id string) string {
	for _, p := range patients {
		if p.ID == id {
			return p.Name
		}
	}
	return UnknownPatientName
}
