// Package stats serves the read-only views derived from the patient and
// incident collections, and the monthly snapshots used to compare them.
package stats

import (
	"context"
	"fmt"
	"time"

	"github.com/jwalitptl/dentalcare/internal/model"
	"github.com/jwalitptl/dentalcare/internal/repository"
	"github.com/jwalitptl/dentalcare/internal/state"
	apperrors "github.com/jwalitptl/dentalcare/pkg/errors"
	"github.com/jwalitptl/dentalcare/pkg/logger"
	"github.com/jwalitptl/dentalcare/pkg/metrics"
)

// Source provides the full collections the views are computed from.
type Source interface {
	Patients(ctx context.Context) ([]model.Patient, error)
	Incidents(ctx context.Context) ([]model.Incident, error)
}

// RepositorySource reads straight from the repositories.
type RepositorySource struct {
	PatientRepo  repository.PatientRepository
	IncidentRepo repository.IncidentRepository
}

func (s RepositorySource) Patients(ctx context.Context) ([]model.Patient, error) {
	return s.PatientRepo.List(ctx, nil)
}

func (s RepositorySource) Incidents(ctx context.Context) ([]model.Incident, error) {
	return s.IncidentRepo.List(ctx, nil)
}

// StateSource reads the cached slices of a state.Store kept fresh by a
// state.Syncer.
type StateSource struct {
	Store *state.Store
}

func (s StateSource) Patients(context.Context) ([]model.Patient, error) {
	return s.Store.State().Patients.Items, nil
}

func (s StateSource) Incidents(context.Context) ([]model.Incident, error) {
	return s.Store.State().Incidents.Items, nil
}

type Option func(*Service)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLocation sets the clinic's time zone. Days and months are counted in it.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) { s.loc = loc }
}

func WithLogger(l *logger.Logger) Option {
	return func(s *Service) { s.logger = l }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

type Service struct {
	source    Source
	statsRepo repository.StatsRepository
	now       func() time.Time
	loc       *time.Location
	logger    *logger.Logger
	metrics   *metrics.Metrics
}

func NewService(source Source, statsRepo repository.StatsRepository, opts ...Option) *Service {
	s := &Service{
		source:    source,
		statsRepo: statsRepo,
		now:       time.Now,
		loc:       time.UTC,
		logger:    logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Now returns the current time in the clinic's time zone.
func (s *Service) Now() time.Time {
	return s.now().In(s.loc)
}

func (s *Service) collections(ctx context.Context) ([]model.Patient, []model.Incident, error) {
	patients, err := s.source.Patients(ctx)
	if err != nil {
		return nil, nil, err
	}
	incidents, err := s.source.Incidents(ctx)
	if err != nil {
		return nil, nil, err
	}
	return patients, incidents, nil
}

func (s *Service) Dashboard(ctx context.Context) (*model.DashboardStats, error) {
	patients, incidents, err := s.collections(ctx)
	if err != nil {
		return nil, err
	}
	d := Dashboard(patients, incidents, s.Now())
	return &d, nil
}

func (s *Service) QuickStats(ctx context.Context) (*model.QuickStats, error) {
	incidents, err := s.source.Incidents(ctx)
	if err != nil {
		return nil, err
	}
	q := Quick(incidents, s.Now(), s.loc)
	return &q, nil
}

func (s *Service) Revenue(ctx context.Context) (*model.RevenueReport, error) {
	incidents, err := s.source.Incidents(ctx)
	if err != nil {
		return nil, err
	}
	r := Revenue(incidents, s.loc)
	return &r, nil
}

// Calendar renders month ("YYYY-MM", empty for the current month).
func (s *Service) Calendar(ctx context.Context, month string) (*model.CalendarMonth, error) {
	t, err := s.parseMonth(month)
	if err != nil {
		return nil, err
	}
	patients, incidents, err := s.collections(ctx)
	if err != nil {
		return nil, err
	}
	cal := Calendar(patients, incidents, t, s.Now(), s.loc)
	return &cal, nil
}

// Day lists the incidents on date ("YYYY-MM-DD", empty for today).
func (s *Service) Day(ctx context.Context, date string) ([]model.IncidentEntry, error) {
	day := s.Now()
	if date != "" {
		var err error
		if day, err = time.ParseInLocation(model.DateLayout, date, s.loc); err != nil {
			return nil, apperrors.BadRequest("date must be YYYY-MM-DD", err)
		}
	}
	patients, incidents, err := s.collections(ctx)
	if err != nil {
		return nil, err
	}
	return Day(patients, incidents, day, s.loc), nil
}

func (s *Service) patient(patients []model.Patient, id string) (model.Patient, error) {
	for _, p := range patients {
		if p.ID == id {
			return p, nil
		}
	}
	return model.Patient{}, apperrors.NotFound("patient", fmt.Errorf("patient %s", id))
}

func (s *Service) PatientSummary(ctx context.Context, patientID string) (*model.PatientSummary, error) {
	patients, incidents, err := s.collections(ctx)
	if err != nil {
		return nil, err
	}
	p, err := s.patient(patients, patientID)
	if err != nil {
		return nil, err
	}
	sum := Summary(p, incidents, s.Now())
	return &sum, nil
}

func (s *Service) PatientRecords(ctx context.Context, patientID, year string) (*model.PatientRecords, error) {
	patients, incidents, err := s.collections(ctx)
	if err != nil {
		return nil, err
	}
	p, err := s.patient(patients, patientID)
	if err != nil {
		return nil, err
	}
	r := Records(p, incidents, year, s.loc)
	return &r, nil
}

func (s *Service) Appointments(ctx context.Context, patientID string, view model.AppointmentView) ([]model.Incident, error) {
	incidents, err := s.source.Incidents(ctx)
	if err != nil {
		return nil, err
	}
	return Appointments(patientID, incidents, view, s.Now()), nil
}

// Compare compares month with the snapshot of the month before. The
// current month uses live figures; earlier months need a snapshot.
func (s *Service) Compare(ctx context.Context, month string) (*model.MonthComparison, error) {
	t, err := s.parseMonth(month)
	if err != nil {
		return nil, err
	}
	month = model.MonthKey(t)

	var current model.MonthlyStats
	if month == model.MonthKey(s.Now()) {
		d, err := s.Dashboard(ctx)
		if err != nil {
			return nil, err
		}
		current = d.Snapshot()
	} else {
		snap, err := s.statsRepo.Get(ctx, month)
		if err != nil {
			return nil, err
		}
		if snap == nil {
			return nil, apperrors.NotFound("snapshot", fmt.Errorf("no snapshot for %s", month))
		}
		current = *snap
	}

	prevMonth, err := PreviousMonth(month)
	if err != nil {
		return nil, apperrors.BadRequest("month must be YYYY-MM", err)
	}
	prev, err := s.statsRepo.Get(ctx, prevMonth)
	if err != nil {
		return nil, err
	}
	c := Compare(month, current, prevMonth, prev)
	return &c, nil
}

// Snapshot stores the current headline figures under month (empty for the
// current month) and returns them. The figures are always today's totals:
// naming another month overrides that month's snapshot with them, which
// Compare then reads as that month's figures. Use it only to backfill a
// missed month.
func (s *Service) Snapshot(ctx context.Context, month string) (*model.MonthlyStats, error) {
	t, err := s.parseMonth(month)
	if err != nil {
		return nil, err
	}
	month = model.MonthKey(t)
	if current := model.MonthKey(s.Now()); month != current {
		s.logger.Warn("storing current totals as another month's snapshot", "month", month, "current_month", current)
	}

	d, err := s.Dashboard(ctx)
	if err != nil {
		s.snapshotFailed()
		return nil, err
	}
	snap := d.Snapshot()
	if err := s.statsRepo.Save(ctx, month, &snap); err != nil {
		s.snapshotFailed()
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.SnapshotsWritten.Inc()
	}
	s.logger.Info("stats snapshot written", "month", month, "patients", snap.Patients, "revenue", snap.Revenue)
	return &snap, nil
}

func (s *Service) snapshotFailed() {
	if s.metrics != nil {
		s.metrics.SnapshotsFailed.Inc()
	}
}

func (s *Service) parseMonth(month string) (time.Time, error) {
	if month == "" {
		return s.Now(), nil
	}
	t, err := time.ParseInLocation(model.MonthLayout, month, s.loc)
	if err != nil {
		return time.Time{}, apperrors.BadRequest("month must be YYYY-MM", err)
	}
	return t, nil
}
