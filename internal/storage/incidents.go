package storage

import (
	"context"

	"github.com/jwalitptl/dentalcare/internal/model"
)

// GetIncidents returns the full incident collection. An absent key is an
// empty collection; corrupt data is reported, never replaced with seed data.
func (a *Adapter) GetIncidents(ctx context.Context) ([]model.Incident, error) {
	var incidents []model.Incident
	if _, err := a.load(ctx, KeyIncidents, &incidents); err != nil {
		return nil, err
	}
	if incidents == nil {
		incidents = []model.Incident{}
	}
	for i := range incidents {
		if incidents[i].Files == nil {
			incidents[i].Files = []model.Attachment{}
		}
	}
	return incidents, nil
}

// SaveIncidents replaces the full incident collection.
func (a *Adapter) SaveIncidents(ctx context.Context, incidents []model.Incident) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.saveIncidents(ctx, incidents)
}

func (a *Adapter) saveIncidents(ctx context.Context, incidents []model.Incident) error {
	if incidents == nil {
		incidents = []model.Incident{}
	}
	if err := a.store(ctx, KeyIncidents, incidents); err != nil {
		return err
	}
	a.observeSize("incidents", len(incidents))
	return nil
}

// GetIncident finds one incident by id.
func (a *Adapter) GetIncident(ctx context.Context, id string) (model.Incident, error) {
	incidents, err := a.GetIncidents(ctx)
	if err != nil {
		return model.Incident{}, err
	}
	for _, inc := range incidents {
		if inc.ID == id {
			return inc, nil
		}
	}
	return model.Incident{}, notFound("incident", id)
}

// GetIncidentsByPatient filters the full collection by patient id.
func (a *Adapter) GetIncidentsByPatient(ctx context.Context, patientID string) ([]model.Incident, error) {
	incidents, err := a.GetIncidents(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]model.Incident, 0)
	for _, inc := range incidents {
		if inc.PatientID == patientID {
			out = append(out, inc)
		}
	}
	return out, nil
}

// AddIncident assigns an id, stamps CreatedAt and UpdatedAt with the same
// instant, appends and persists. The stored record is returned.
func (a *Adapter) AddIncident(ctx context.Context, inc model.Incident) (model.Incident, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.addIncident(ctx, inc)
}

// AddIncidentForPatient is AddIncident that fails with ErrMissingPatient
// unless inc.PatientID names a stored patient. The check and the append run
// under the same lock as DeletePatientWithIncidents.
func (a *Adapter) AddIncidentForPatient(ctx context.Context, inc model.Incident) (model.Incident, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.requirePatient(ctx, inc.PatientID); err != nil {
		return model.Incident{}, err
	}
	return a.addIncident(ctx, inc)
}

func (a *Adapter) addIncident(ctx context.Context, inc model.Incident) (model.Incident, error) {
	incidents, err := a.GetIncidents(ctx)
	if err != nil {
		return model.Incident{}, err
	}
	now := a.now().UTC()
	inc.ID = a.newID("i")
	inc.CreatedAt = now
	inc.UpdatedAt = now
	if inc.Files == nil {
		inc.Files = []model.Attachment{}
	}
	if err := a.saveIncidents(ctx, append(incidents, inc)); err != nil {
		return model.Incident{}, err
	}
	return inc, nil
}

// UpdateIncident replaces the incident with the same id and restamps
// UpdatedAt. An unknown id leaves the collection untouched.
func (a *Adapter) UpdateIncident(ctx context.Context, inc model.Incident) (model.Incident, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.mutateIncident(ctx, inc.ID, false, func(stored *model.Incident) error {
		*stored = inc
		return nil
	})
}

// MutateIncident loads the incident, lets fn change it and persists the
// result, all under the write lock. The id and CreatedAt are kept, UpdatedAt
// is restamped and the patient must still exist (ErrMissingPatient). Nothing
// is written when fn fails.
func (a *Adapter) MutateIncident(ctx context.Context, id string, fn func(*model.Incident) error) (model.Incident, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.mutateIncident(ctx, id, true, fn)
}

func (a *Adapter) mutateIncident(ctx context.Context, id string, checkPatient bool, fn func(*model.Incident) error) (model.Incident, error) {
	incidents, err := a.GetIncidents(ctx)
	if err != nil {
		return model.Incident{}, err
	}
	idx := -1
	for i := range incidents {
		if incidents[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return model.Incident{}, notFound("incident", id)
	}

	inc := incidents[idx]
	if err := fn(&inc); err != nil {
		return model.Incident{}, err
	}
	if checkPatient {
		if err := a.requirePatient(ctx, inc.PatientID); err != nil {
			return model.Incident{}, err
		}
	}
	inc.ID = id
	inc.CreatedAt = incidents[idx].CreatedAt
	inc.UpdatedAt = a.now().UTC()
	if inc.Files == nil {
		inc.Files = []model.Attachment{}
	}
	incidents[idx] = inc
	if err := a.saveIncidents(ctx, incidents); err != nil {
		return model.Incident{}, err
	}
	return inc, nil
}

// DeleteIncident removes the incident and returns the remaining collection.
func (a *Adapter) DeleteIncident(ctx context.Context, id string) ([]model.Incident, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	incidents, err := a.GetIncidents(ctx)
	if err != nil {
		return nil, err
	}
	remaining := make([]model.Incident, 0, len(incidents))
	for _, inc := range incidents {
		if inc.ID != id {
			remaining = append(remaining, inc)
		}
	}
	if len(remaining) == len(incidents) {
		return nil, notFound("incident", id)
	}
	if err := a.saveIncidents(ctx, remaining); err != nil {
		return nil, err
	}
	return remaining, nil
}

// DeleteIncidentsByPatient removes every incident of a patient and reports
// how many were removed. Nothing is written when none match.
func (a *Adapter) DeleteIncidentsByPatient(ctx context.Context, patientID string) (int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.deleteIncidentsByPatient(ctx, patientID)
}

func (a *Adapter) deleteIncidentsByPatient(ctx context.Context, patientID string) (int, error) {
	incidents, err := a.GetIncidents(ctx)
	if err != nil {
		return 0, err
	}
	remaining := make([]model.Incident, 0, len(incidents))
	for _, inc := range incidents {
		if inc.PatientID != patientID {
			remaining = append(remaining, inc)
		}
	}
	removed := len(incidents) - len(remaining)
	if removed == 0 {
		return 0, nil
	}
	if err := a.saveIncidents(ctx, remaining); err != nil {
		return 0, err
	}
	return removed, nil
}
