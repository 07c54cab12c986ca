package repository

import (
	"context"
	"errors"

	"github.com/jwalitptl/dentalcare/internal/model"
)

// ErrOrphanedPatient is matched with errors.Is when an incident names a
// patient that does not exist.
var ErrOrphanedPatient = errors.New("incident references an unknown patient")

// All repository interfaces in one file. Every mutation of persisted data
// goes through one of these.
type (
	PatientRepository interface {
		List(ctx context.Context, filter *model.PatientFilter) ([]model.Patient, error)
		Get(ctx context.Context, id string) (*model.Patient, error)
		Create(ctx context.Context, patient *model.Patient) error
		Update(ctx context.Context, patient *model.Patient) error
		// Delete removes the patient together with all of its incidents.
		Delete(ctx context.Context, id string) error
	}

	IncidentRepository interface {
		List(ctx context.Context, filter *model.IncidentFilter) ([]model.Incident, error)
		ListByPatient(ctx context.Context, patientID string) ([]model.Incident, error)
		Get(ctx context.Context, id string) (*model.Incident, error)
		Create(ctx context.Context, incident *model.Incident) error
		Update(ctx context.Context, incident *model.Incident) error
		// Modify runs fn on the stored incident and writes the result
		// without another writer interleaving.
		Modify(ctx context.Context, id string, fn func(*model.Incident) error) (*model.Incident, error)
		Delete(ctx context.Context, id string) error
	}

	UserRepository interface {
		List(ctx context.Context) ([]model.User, error)
		GetByEmail(ctx context.Context, email string) (*model.User, error)
	}

	// SessionRepository holds the single signed-in user. Get returns nil
	// when nobody is signed in.
	SessionRepository interface {
		Get(ctx context.Context) (*model.User, error)
		Save(ctx context.Context, user *model.User) error
		Clear(ctx context.Context) error
	}

	// StatsRepository stores monthly snapshots keyed by "YYYY-MM". Get
	// returns nil when no snapshot exists for month.
	StatsRepository interface {
		Get(ctx context.Context, month string) (*model.MonthlyStats, error)
		Save(ctx context.Context, month string, stats *model.MonthlyStats) error
		Months(ctx context.Context) ([]string, error)
	}
)
