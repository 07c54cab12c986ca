package stats

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/dentalcare/internal/kv"
	"github.com/jwalitptl/dentalcare/internal/model"
	"github.com/jwalitptl/dentalcare/internal/repository/kvstore"
	"github.com/jwalitptl/dentalcare/internal/state"
	"github.com/jwalitptl/dentalcare/internal/storage"
	apperrors "github.com/jwalitptl/dentalcare/pkg/errors"
	"github.com/jwalitptl/dentalcare/pkg/logger"
	"github.com/jwalitptl/dentalcare/pkg/messaging"
	"github.com/jwalitptl/dentalcare/pkg/metrics"
)

var clock = at("2025-03-10T12:00:00Z")

func newRepos(t *testing.T) *kvstore.Repositories {
	t.Helper()
	adapter := storage.New(kv.NewMemory(), storage.WithClock(func() time.Time { return clock }))
	require.NoError(t, adapter.Seed(context.Background()))
	return kvstore.New(adapter)
}

func newService(repos *kvstore.Repositories, opts ...Option) *Service {
	src := RepositorySource{PatientRepo: repos.Patients, IncidentRepo: repos.Incidents}
	opts = append([]Option{WithClock(func() time.Time { return clock })}, opts...)
	return NewService(src, repos.Stats, opts...)
}

func TestRevenueFollowsCompletedIncidents(t *testing.T) {
	ctx := context.Background()
	repos := newRepos(t)
	svc := newService(repos)

	// start from a collection with no completed, costed incidents
	require.NoError(t, repos.Incidents.Delete(ctx, "i1"))
	d, err := svc.Dashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0.0, d.Revenue)

	require.NoError(t, repos.Incidents.Create(ctx, &model.Incident{
		PatientID:       "p2",
		Title:           "Whitening",
		Description:     "Whitening session",
		AppointmentDate: clock.Add(-time.Hour),
		Status:          model.StatusCompleted,
		Cost:            model.Float(120),
	}))
	d, err = svc.Dashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, 120.0, d.Revenue)
}

func TestCalendarListsTodaysIncident(t *testing.T) {
	ctx := context.Background()
	repos := newRepos(t)
	svc := newService(repos)

	ada := &model.Patient{Name: "Ada Lovelace", DOB: "1990-01-01", Contact: "555-0100"}
	require.NoError(t, repos.Patients.Create(ctx, ada))
	checkup := &model.Incident{
		PatientID:       ada.ID,
		Title:           "Checkup",
		Description:     "Checkup",
		AppointmentDate: clock,
		Status:          model.StatusScheduled,
	}
	require.NoError(t, repos.Incidents.Create(ctx, checkup))

	today, err := svc.Day(ctx, "")
	require.NoError(t, err)
	require.Len(t, today, 1)
	assert.Equal(t, checkup.ID, today[0].Incident.ID)
	assert.Equal(t, "Ada Lovelace", today[0].PatientName)

	cal, err := svc.Calendar(ctx, "")
	require.NoError(t, err)
	var cell model.CalendarDay
	for _, week := range cal.Weeks {
		for _, d := range week {
			if d.IsToday {
				cell = d
			}
		}
	}
	assert.Equal(t, "2025-03-10", cell.Date)
	require.Len(t, cell.Entries, 1)
	assert.Equal(t, checkup.ID, cell.Entries[0].Incident.ID)

	require.NoError(t, repos.Incidents.Delete(ctx, checkup.ID))
	today, err = svc.Day(ctx, "2025-03-10")
	require.NoError(t, err)
	assert.Empty(t, today)
}

func TestStateSourceSeesSyncedWrites(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	adapter := storage.New(kv.NewMemory())
	require.NoError(t, adapter.Seed(ctx))
	broker := messaging.NewMemoryBroker()
	defer broker.Close()
	repos := kvstore.New(adapter, kvstore.WithPublisher(broker))

	store := state.NewStore(nil)
	syncer := state.NewSyncer(store, repos.Patients, repos.Incidents, broker, nil)
	require.NoError(t, syncer.Load(ctx))
	require.NoError(t, syncer.Start(ctx))

	svc := NewService(StateSource{Store: store}, repos.Stats, WithClock(func() time.Time { return clock }))
	d, err := svc.Dashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, d.TotalPatients)

	require.NoError(t, repos.Patients.Delete(ctx, "p3"))
	assert.Eventually(t, func() bool {
		d, err := svc.Dashboard(ctx)
		return err == nil && d.TotalPatients == 2
	}, time.Second, 10*time.Millisecond)
}

func TestSnapshotAndCompare(t *testing.T) {
	ctx := context.Background()
	repos := newRepos(t)
	m := metrics.New("test")
	var logs bytes.Buffer
	log := logger.NewLogger(&logger.Config{Level: logger.InfoLevel, Output: &logs, JSON: true})
	svc := newService(repos, WithMetrics(m), WithLogger(log))

	_, err := svc.Compare(ctx, "2025-01")
	assert.Equal(t, apperrors.ErrNotFound, apperrors.CodeOf(err))

	// a past month is backfilled with today's totals
	snap, err := svc.Snapshot(ctx, "2025-02")
	require.NoError(t, err)
	assert.Equal(t, 3, snap.Patients)
	assert.Equal(t, 120.0, snap.Revenue)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SnapshotsWritten))
	assert.Contains(t, logs.String(), `"level":"warn"`)
	assert.Contains(t, logs.String(), `"month":"2025-02"`)

	logs.Reset()
	_, err = svc.Snapshot(ctx, "")
	require.NoError(t, err)
	assert.NotContains(t, logs.String(), `"level":"warn"`)

	require.NoError(t, repos.Patients.Create(ctx, &model.Patient{Name: "New", DOB: "2000-01-01", Contact: "1"}))

	c, err := svc.Compare(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, "2025-03", c.Month)
	assert.Equal(t, "2025-02", c.Previous)
	assert.Equal(t, 4.0, c.Patients.Current)
	require.NotNil(t, c.Patients.Percent)
	assert.Equal(t, 33.3, *c.Patients.Percent)

	c, err = svc.Compare(ctx, "2025-02")
	require.NoError(t, err)
	assert.Nil(t, c.Patients.Percent)

	_, err = svc.Snapshot(ctx, "March")
	assert.Equal(t, apperrors.ErrBadRequest, apperrors.CodeOf(err))
}

func TestPatientViews(t *testing.T) {
	ctx := context.Background()
	repos := newRepos(t)
	svc := newService(repos)

	sum, err := svc.PatientSummary(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Completed)
	assert.Empty(t, sum.Upcoming)

	rec, err := svc.PatientRecords(ctx, "p1", "2025")
	require.NoError(t, err)
	assert.Len(t, rec.Incidents, 2)

	_, err = svc.PatientSummary(ctx, "p404")
	assert.Equal(t, apperrors.ErrNotFound, apperrors.CodeOf(err))

	appts, err := svc.Appointments(ctx, "p1", model.AppointmentViewCompleted)
	require.NoError(t, err)
	assert.Len(t, appts, 1)

	_, err = svc.Day(ctx, "10/03/2025")
	assert.Equal(t, apperrors.ErrBadRequest, apperrors.CodeOf(err))
}
