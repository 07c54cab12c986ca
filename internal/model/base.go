package model

import (
	"strings"
	"time"
)

// DateLayout is the layout of calendar dates such as a patient's date of birth.
const DateLayout = "2006-01-02"

// MonthLayout is the layout of month keys such as "2025-01".
const MonthLayout = "2006-01"

// Entity is implemented by every record held in a reducer slice.
type Entity interface {
	GetID() string
}

// PatientFilter narrows the patient list by a free-text search over name,
// contact and email.
type PatientFilter struct {
	Search string `json:"search" form:"search"`
}

// IncidentFilter narrows the incident list.
type IncidentFilter struct {
	Search    string         `json:"search" form:"search"`
	Status    IncidentStatus `json:"status" form:"status"`
	PatientID string         `json:"patientId" form:"patientId"`
}

// AppointmentView selects a subset of a patient's own incidents.
type AppointmentView string

const (
	AppointmentViewAll        AppointmentView = "all"
	AppointmentViewUpcoming   AppointmentView = "upcoming"
	AppointmentViewCompleted  AppointmentView = "completed"
	AppointmentViewInProgress AppointmentView = "in-progress"
)

// containsFold reports whether substr is within s, ignoring case.
func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

func timePtr(t time.Time) *time.Time {
	return &t
}

func (v AppointmentView) IsValid() bool {
	switch v {
	case AppointmentViewAll, AppointmentViewUpcoming, AppointmentViewCompleted, AppointmentViewInProgress:
		return true
	}
	return false
}
