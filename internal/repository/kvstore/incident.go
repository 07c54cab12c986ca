package kvstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/jwalitptl/dentalcare/internal/model"
	"github.com/jwalitptl/dentalcare/internal/repository"
	"github.com/jwalitptl/dentalcare/internal/storage"
	apperrors "github.com/jwalitptl/dentalcare/pkg/errors"
)

type incidentRepository struct {
	*base
}

// List filters the collection. Searching by patient name needs the
// patient collection, so it is only read when a search term is given.
func (r *incidentRepository) List(ctx context.Context, filter *model.IncidentFilter) ([]model.Incident, error) {
	incidents, err := r.store.GetIncidents(ctx)
	if err != nil {
		return nil, err
	}
	if filter == nil {
		return incidents, nil
	}

	var patients []model.Patient
	if filter.Search != "" {
		if patients, err = r.store.GetPatients(ctx); err != nil {
			return nil, err
		}
	}

	out := make([]model.Incident, 0, len(incidents))
	for _, inc := range incidents {
		name := ""
		if filter.Search != "" {
			name = model.PatientName(patients, inc.PatientID)
		}
		if inc.Matches(*filter, name) {
			out = append(out, inc)
		}
	}
	return out, nil
}

func (r *incidentRepository) ListByPatient(ctx context.Context, patientID string) ([]model.Incident, error) {
	return r.store.GetIncidentsByPatient(ctx, patientID)
}

func (r *incidentRepository) Get(ctx context.Context, id string) (*model.Incident, error) {
	inc, err := r.store.GetIncident(ctx, id)
	if err != nil {
		return nil, err
	}
	return &inc, nil
}

func (r *incidentRepository) Create(ctx context.Context, incident *model.Incident) error {
	if err := r.validator.Validate(incident); err != nil {
		return err
	}
	stored, err := r.store.AddIncidentForPatient(ctx, *incident)
	if err != nil {
		return orphaned(err, incident.PatientID)
	}
	*incident = stored
	r.publish(ctx, model.CollectionIncidents, model.OpCreate, stored.ID)
	return nil
}

func (r *incidentRepository) Update(ctx context.Context, incident *model.Incident) error {
	if err := r.validator.Validate(incident); err != nil {
		return err
	}
	replacement := *incident
	stored, err := r.store.MutateIncident(ctx, incident.ID, func(inc *model.Incident) error {
		*inc = replacement
		return nil
	})
	if err != nil {
		return orphaned(err, incident.PatientID)
	}
	*incident = stored
	r.publish(ctx, model.CollectionIncidents, model.OpUpdate, stored.ID)
	return nil
}

// Modify applies fn to the stored incident atomically. The result is
// validated before it is written.
func (r *incidentRepository) Modify(ctx context.Context, id string, fn func(*model.Incident) error) (*model.Incident, error) {
	var patientID string
	stored, err := r.store.MutateIncident(ctx, id, func(inc *model.Incident) error {
		if err := fn(inc); err != nil {
			return err
		}
		patientID = inc.PatientID
		return r.validator.Validate(inc)
	})
	if err != nil {
		return nil, orphaned(err, patientID)
	}
	r.publish(ctx, model.CollectionIncidents, model.OpUpdate, stored.ID)
	return &stored, nil
}

func (r *incidentRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.store.DeleteIncident(ctx, id); err != nil {
		return err
	}
	r.publish(ctx, model.CollectionIncidents, model.OpDelete, id)
	return nil
}

func orphaned(err error, patientID string) error {
	if errors.Is(err, storage.ErrMissingPatient) {
		return apperrors.BadRequest("unknown patient",
			fmt.Errorf("%w: %s", repository.ErrOrphanedPatient, patientID))
	}
	return err
}
