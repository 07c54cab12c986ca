package state

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jwalitptl/dentalcare/internal/model"
	"github.com/jwalitptl/dentalcare/internal/repository"
	"github.com/jwalitptl/dentalcare/pkg/logger"
	"github.com/jwalitptl/dentalcare/pkg/messaging"
)

// Syncer keeps a Store's patient and incident slices in line with the
// repositories. Every change event re-reads the whole affected collection
// and replaces the slice, so there is a single refresh path for all
// consumers of the Store.
type Syncer struct {
	store     *Store
	patients  repository.PatientRepository
	incidents repository.IncidentRepository
	broker    messaging.Broker
	logger    *logger.Logger
}

func NewSyncer(store *Store, patients repository.PatientRepository, incidents repository.IncidentRepository, broker messaging.Broker, log *logger.Logger) *Syncer {
	if log == nil {
		log = logger.Nop()
	}
	return &Syncer{
		store:     store,
		patients:  patients,
		incidents: incidents,
		broker:    broker,
		logger:    log,
	}
}

// Load reads both collections into the store.
func (s *Syncer) Load(ctx context.Context) error {
	if err := s.Refresh(ctx, model.CollectionPatients); err != nil {
		return err
	}
	return s.Refresh(ctx, model.CollectionIncidents)
}

// Refresh re-reads one collection. On failure the cached items are kept
// and only the loading flag is reset.
func (s *Syncer) Refresh(ctx context.Context, collection model.Collection) error {
	switch collection {
	case model.CollectionPatients:
		s.store.Dispatch(SetLoading[model.Patient]{Loading: true})
		items, err := s.patients.List(ctx, nil)
		if err != nil {
			s.store.Dispatch(SetLoading[model.Patient]{Loading: false})
			return fmt.Errorf("refresh patients: %w", err)
		}
		s.store.Dispatch(SetAll[model.Patient]{Items: items})
		s.store.Dispatch(SetLoading[model.Patient]{Loading: false})
	case model.CollectionIncidents:
		s.store.Dispatch(SetLoading[model.Incident]{Loading: true})
		items, err := s.incidents.List(ctx, nil)
		if err != nil {
			s.store.Dispatch(SetLoading[model.Incident]{Loading: false})
			return fmt.Errorf("refresh incidents: %w", err)
		}
		s.store.Dispatch(SetAll[model.Incident]{Items: items})
		s.store.Dispatch(SetLoading[model.Incident]{Loading: false})
	}
	return nil
}

// Run subscribes to change events and refreshes the store until ctx is
// done. Refresh failures are logged and do not stop the loop.
func (s *Syncer) Run(ctx context.Context) error {
	events, err := s.subscribe(ctx)
	if err != nil {
		return err
	}
	s.loop(ctx, events)
	return nil
}

// Start is Run in the background. It returns once the subscription is in
// place, so writes made after Start returns are always observed.
func (s *Syncer) Start(ctx context.Context) error {
	events, err := s.subscribe(ctx)
	if err != nil {
		return err
	}
	go s.loop(ctx, events)
	return nil
}

func (s *Syncer) subscribe(ctx context.Context) (<-chan []byte, error) {
	events, err := s.broker.Subscribe(ctx, model.ChangesChannel)
	if err != nil {
		return nil, fmt.Errorf("subscribe to changes: %w", err)
	}
	return events, nil
}

func (s *Syncer) loop(ctx context.Context, events <-chan []byte) {
	for {
		select {
		case <-ctx.Done():
			return
		case raw, ok := <-events:
			if !ok {
				return
			}
			var evt model.ChangeEvent
			if err := json.Unmarshal(raw, &evt); err != nil {
				s.logger.Warn("dropping malformed change event", "error", err.Error())
				continue
			}
			if err := s.Refresh(ctx, evt.Collection); err != nil {
				s.logger.Error(err, "state refresh failed", "collection", string(evt.Collection))
			}
		}
	}
}
