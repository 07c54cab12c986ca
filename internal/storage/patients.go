package storage

import (
	"context"
	"fmt"

	"github.com/jwalitptl/dentalcare/internal/model"
)

// GetPatients returns the full patient collection. An absent key is an empty collection.
func (a *Adapter) GetPatients(ctx context.Context) ([]model.Patient, error) {
	var patients []model.Patient
	if _, err := a.load(ctx, KeyPatients, &patients); err != nil {
		return nil, err
	}
	if patients == nil {
		patients = []model.Patient{}
	}
	return patients, nil
}

// SavePatients replaces the full patient collection.
func (a *Adapter) SavePatients(ctx context.Context, patients []model.Patient) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.savePatients(ctx, patients)
}

func (a *Adapter) savePatients(ctx context.Context, patients []model.Patient) error {
	if patients == nil {
		patients = []model.Patient{}
	}
	if err := a.store(ctx, KeyPatients, patients); err != nil {
		return err
	}
	a.observeSize("patients", len(patients))
	return nil
}

// GetPatient finds one patient by id.
func (a *Adapter) GetPatient(ctx context.Context, id string) (model.Patient, error) {
	patients, err := a.GetPatients(ctx)
	if err != nil {
		return model.Patient{}, err
	}
	for _, p := range patients {
		if p.ID == id {
			return p, nil
		}
	}
	return model.Patient{}, notFound("patient", id)
}

// AddPatient assigns an id and creation time, appends and persists.
func (a *Adapter) AddPatient(ctx context.Context, p model.Patient) (model.Patient, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	patients, err := a.GetPatients(ctx)
	if err != nil {
		return model.Patient{}, err
	}
	p.ID = a.newID("p")
	p.CreatedAt = a.now().UTC()
	if err := a.savePatients(ctx, append(patients, p)); err != nil {
		return model.Patient{}, err
	}
	return p, nil
}

// UpdatePatient replaces the patient with the same id. CreatedAt is kept
// from the stored record.
func (a *Adapter) UpdatePatient(ctx context.Context, p model.Patient) (model.Patient, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	patients, err := a.GetPatients(ctx)
	if err != nil {
		return model.Patient{}, err
	}
	idx := -1
	for i := range patients {
		if patients[i].ID == p.ID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return model.Patient{}, notFound("patient", p.ID)
	}
	p.CreatedAt = patients[idx].CreatedAt
	patients[idx] = p
	if err := a.savePatients(ctx, patients); err != nil {
		return model.Patient{}, err
	}
	return p, nil
}

// DeletePatient removes the patient and returns the remaining collection.
// Incidents are not touched; see DeletePatientWithIncidents.
func (a *Adapter) DeletePatient(ctx context.Context, id string) ([]model.Patient, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.deletePatient(ctx, id)
}

// DeletePatientWithIncidents removes the patient and every incident that
// references it in one critical section, and reports how many incidents
// were removed.
func (a *Adapter) DeletePatientWithIncidents(ctx context.Context, id string) (int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, err := a.deletePatient(ctx, id); err != nil {
		return 0, err
	}
	return a.deleteIncidentsByPatient(ctx, id)
}

func (a *Adapter) deletePatient(ctx context.Context, id string) ([]model.Patient, error) {
	patients, err := a.GetPatients(ctx)
	if err != nil {
		return nil, err
	}
	remaining := make([]model.Patient, 0, len(patients))
	for _, p := range patients {
		if p.ID != id {
			remaining = append(remaining, p)
		}
	}
	if len(remaining) == len(patients) {
		return nil, notFound("patient", id)
	}
	if err := a.savePatients(ctx, remaining); err != nil {
		return nil, err
	}
	return remaining, nil
}

// requirePatient fails with ErrMissingPatient unless id is stored. Callers
// hold mu.
func (a *Adapter) requirePatient(ctx context.Context, id string) error {
	patients, err := a.GetPatients(ctx)
	if err != nil {
		return err
	}
	for _, p := range patients {
		if p.ID == id {
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrMissingPatient, id)
}
