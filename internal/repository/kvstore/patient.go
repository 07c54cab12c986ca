package kvstore

import (
	"context"

	"github.com/jwalitptl/dentalcare/internal/model"
)

type patientRepository struct {
	*base
}

func (r *patientRepository) List(ctx context.Context, filter *model.PatientFilter) ([]model.Patient, error) {
	patients, err := r.store.GetPatients(ctx)
	if err != nil {
		return nil, err
	}
	if filter == nil || filter.Search == "" {
		return patients, nil
	}
	out := make([]model.Patient, 0, len(patients))
	for _, p := range patients {
		if p.Matches(*filter) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *patientRepository) Get(ctx context.Context, id string) (*model.Patient, error) {
	p, err := r.store.GetPatient(ctx, id)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *patientRepository) Create(ctx context.Context, patient *model.Patient) error {
	if err := r.validator.Validate(patient); err != nil {
		return err
	}
	stored, err := r.store.AddPatient(ctx, *patient)
	if err != nil {
		return err
	}
	*patient = stored
	r.publish(ctx, model.CollectionPatients, model.OpCreate, stored.ID)
	return nil
}

func (r *patientRepository) Update(ctx context.Context, patient *model.Patient) error {
	if err := r.validator.Validate(patient); err != nil {
		return err
	}
	stored, err := r.store.UpdatePatient(ctx, *patient)
	if err != nil {
		return err
	}
	*patient = stored
	r.publish(ctx, model.CollectionPatients, model.OpUpdate, stored.ID)
	return nil
}

func (r *patientRepository) Delete(ctx context.Context, id string) error {
	removed, err := r.store.DeletePatientWithIncidents(ctx, id)
	if err != nil {
		return err
	}
	r.publish(ctx, model.CollectionPatients, model.OpDelete, id)
	if removed > 0 {
		r.logger.Info("removed incidents of deleted patient", "patient_id", id, "count", removed)
		r.publish(ctx, model.CollectionIncidents, model.OpDelete, "")
	}
	return nil
}
