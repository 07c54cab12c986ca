package patient

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/dentalcare/internal/kv"
	"github.com/jwalitptl/dentalcare/internal/model"
	"github.com/jwalitptl/dentalcare/internal/repository/kvstore"
	"github.com/jwalitptl/dentalcare/internal/storage"
	apperrors "github.com/jwalitptl/dentalcare/pkg/errors"
)

func newService(t *testing.T) *Service {
	t.Helper()
	adapter := storage.New(kv.NewMemory())
	require.NoError(t, adapter.Seed(context.Background()))
	repos := kvstore.New(adapter)
	return NewService(repos.Patients, repos.Incidents, nil)
}

func TestPatientLifecycle(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	p := &model.Patient{Name: "Ada Lovelace", DOB: "1990-01-01", Contact: "555-0100"}
	require.NoError(t, svc.CreatePatient(ctx, p))

	found, err := svc.ListPatients(ctx, &model.PatientFilter{Search: "lovelace"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, p.ID, found[0].ID)

	p.HealthInfo = "None"
	require.NoError(t, svc.UpdatePatient(ctx, p))
	got, err := svc.GetPatient(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "None", got.HealthInfo)

	incidents, err := svc.ListIncidents(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, incidents)

	require.NoError(t, svc.DeletePatient(ctx, p.ID))
	_, err = svc.GetPatient(ctx, p.ID)
	assert.Equal(t, apperrors.ErrNotFound, apperrors.CodeOf(err))
}

func TestListIncidentsOfUnknownPatient(t *testing.T) {
	svc := newService(t)

	incidents, err := svc.ListIncidents(context.Background(), "p1")
	require.NoError(t, err)
	assert.Len(t, incidents, 2)

	_, err = svc.ListIncidents(context.Background(), "p404")
	assert.Equal(t, apperrors.ErrNotFound, apperrors.CodeOf(err))
}
