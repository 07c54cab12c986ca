// Package kvstore implements the repository interfaces on top of the
// storage adapter. It validates records, keeps incidents attached to real
// patients and announces every successful write as a model.ChangeEvent.
package kvstore

import (
	"context"

	"github.com/go-playground/validator/v10"

	"github.com/jwalitptl/dentalcare/internal/model"
	"github.com/jwalitptl/dentalcare/internal/repository"
	"github.com/jwalitptl/dentalcare/internal/storage"
	"github.com/jwalitptl/dentalcare/pkg/logger"
	"github.com/jwalitptl/dentalcare/pkg/messaging"
	"github.com/jwalitptl/dentalcare/pkg/metrics"
	pkgvalidator "github.com/jwalitptl/dentalcare/pkg/validator"
)

// Repositories bundles every repository backed by one adapter.
type Repositories struct {
	Patients  repository.PatientRepository
	Incidents repository.IncidentRepository
	Users     repository.UserRepository
	Session   repository.SessionRepository
	Stats     repository.StatsRepository
}

type Option func(*base)

// WithPublisher publishes change events on p.
func WithPublisher(p messaging.Publisher) Option {
	return func(b *base) { b.events = p }
}

func WithLogger(l *logger.Logger) Option {
	return func(b *base) { b.logger = l }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(b *base) { b.metrics = m }
}

// WithValidator replaces the default validator. It must understand the
// incident_status and role tags; see NewValidator.
func WithValidator(v pkgvalidator.Validator) Option {
	return func(b *base) { b.validator = v }
}

type base struct {
	store     *storage.Adapter
	events    messaging.Publisher
	validator pkgvalidator.Validator
	logger    *logger.Logger
	metrics   *metrics.Metrics
}

func New(store *storage.Adapter, opts ...Option) *Repositories {
	b := &base{
		store:  store,
		logger: logger.Nop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.validator == nil {
		b.validator = NewValidator()
	}
	return &Repositories{
		Patients:  &patientRepository{base: b},
		Incidents: &incidentRepository{base: b},
		Users:     &userRepository{base: b},
		Session:   &sessionRepository{base: b},
		Stats:     &statsRepository{base: b},
	}
}

// NewValidator returns a validator with the domain tags registered.
func NewValidator() pkgvalidator.Validator {
	v := pkgvalidator.New()
	_ = v.RegisterValidation("incident_status", func(fl validator.FieldLevel) bool {
		return model.IncidentStatus(fl.Field().String()).IsValid()
	})
	_ = v.RegisterValidation("role", func(fl validator.FieldLevel) bool {
		return model.Role(fl.Field().String()).IsValid()
	})
	return v
}

// publish announces a write. The write already happened, so a broker
// failure is logged rather than returned.
func (b *base) publish(ctx context.Context, collection model.Collection, op model.ChangeOp, id string) {
	if b.metrics != nil {
		b.metrics.ChangeEvents.WithLabelValues(string(collection), string(op)).Inc()
	}
	if b.events == nil {
		return
	}
	evt := model.ChangeEvent{
		Collection: collection,
		Op:         op,
		ID:         id,
		At:         b.store.Now().UTC(),
	}
	if err := b.events.Publish(ctx, model.ChangesChannel, evt); err != nil {
		b.logger.Error(err, "failed to publish change event",
			"collection", string(collection), "op", string(op), "id", id)
	}
}
