package model

import (
	"time"
)

// IncidentStatus is the lifecycle state of an incident. Any status may be
// followed by any other; no transition is guarded.
type IncidentStatus string

const (
	StatusScheduled   IncidentStatus = "Scheduled"
	StatusInProgress  IncidentStatus = "In Progress"
	StatusCompleted   IncidentStatus = "Completed"
	StatusCancelled   IncidentStatus = "Cancelled"
	StatusNoShow      IncidentStatus = "No Show"
	StatusRescheduled IncidentStatus = "Rescheduled"
)

// AllStatuses lists every status in display order.
var AllStatuses = []IncidentStatus{
	StatusScheduled,
	StatusInProgress,
	StatusCompleted,
	StatusCancelled,
	StatusNoShow,
	StatusRescheduled,
}

func (s IncidentStatus) IsValid() bool {
	for _, st := range AllStatuses {
		if s == st {
			return true
		}
	}
	return false
}

// Attachment is a file stored inline, as a data URL, inside its incident.
type Attachment struct {
	ID         string    `json:"id"`
	Name       string    `json:"name" validate:"required"`
	URL        string    `json:"url" validate:"required,startswith=data:"`
	Type       string    `json:"type"`
	Size       int64     `json:"size" validate:"gte=0"`
	UploadedAt time.Time `json:"uploadedAt"`
}

// Incident is a single appointment or treatment episode tied to a patient.
type Incident struct {
	ID                  string         `json:"id"`
	PatientID           string         `json:"patientId" validate:"required"`
	Title               string         `json:"title" validate:"required,max=200"`
	Description         string         `json:"description" validate:"required"`
	Comments            string         `json:"comments,omitempty"`
	AppointmentDate     time.Time      `json:"appointmentDate" validate:"required"`
	Cost                *float64       `json:"cost,omitempty" validate:"omitempty,gte=0"`
	Treatment           string         `json:"treatment,omitempty"`
	Status              IncidentStatus `json:"status" validate:"required,incident_status"`
	NextAppointmentDate *time.Time     `json:"nextAppointmentDate,omitempty"`
	Files               []Attachment   `json:"files" validate:"dive"`
	CreatedAt           time.Time      `json:"createdAt"`
	UpdatedAt           time.Time      `json:"updatedAt"`
}

func (i Incident) GetID() string { return i.ID }

// CostValue returns the cost, treating an absent cost as zero.
func (i Incident) CostValue() float64 {
	if i.Cost == nil {
		return 0
	}
	return *i.Cost
}

// Clone returns a deep copy so that callers cannot alias pointer fields or
// the attachment slice.
func (i Incident) Clone() Incident {
	out := i
	if i.Cost != nil {
		c := *i.Cost
		out.Cost = &c
	}
	if i.NextAppointmentDate != nil {
		out.NextAppointmentDate = timePtr(*i.NextAppointmentDate)
	}
	out.Files = make([]Attachment, len(i.Files))
	copy(out.Files, i.Files)
	return out
}

// Matches implements the appointment list filter. The search covers title,
// description and the resolved patient name.
func (i Incident) Matches(f IncidentFilter, patientName string) bool {
	if f.PatientID != "" && i.PatientID != f.PatientID {
		return false
	}
	if f.Status != "" && f.Status != "all" && i.Status != f.Status {
		return false
	}
	if f.Search == "" {
		return true
	}
	return containsFold(i.Title, f.Search) ||
		containsFold(i.Description, f.Search) ||
		containsFold(patientName, f.Search)
}

// IsUpcoming reports a scheduled incident whose appointment lies after now.
func (i Incident) IsUpcoming(now time.Time) bool {
	return i.Status == StatusScheduled && i.AppointmentDate.After(now)
}

// Float is a small helper for optional costs.
func Float(v float64) *float64 {
	return &v
}
