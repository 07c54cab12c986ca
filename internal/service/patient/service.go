package patient

import (
	"context"

	"github.com/jwalitptl/dentalcare/internal/model"
	"github.com/jwalitptl/dentalcare/internal/repository"
	"github.com/jwalitptl/dentalcare/pkg/logger"
)

type Service struct {
	repo         repository.PatientRepository
	incidentRepo repository.IncidentRepository
	logger       *logger.Logger
}

func NewService(repo repository.PatientRepository, incidentRepo repository.IncidentRepository, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		repo:         repo,
		incidentRepo: incidentRepo,
		logger:       log,
	}
}

func (s *Service) ListPatients(ctx context.Context, filter *model.PatientFilter) ([]model.Patient, error) {
	return s.repo.List(ctx, filter)
}

func (s *Service) GetPatient(ctx context.Context, id string) (*model.Patient, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) CreatePatient(ctx context.Context, patient *model.Patient) error {
	if err := s.repo.Create(ctx, patient); err != nil {
		return err
	}
	s.logger.Info("patient created", "patient_id", patient.ID)
	return nil
}

func (s *Service) UpdatePatient(ctx context.Context, patient *model.Patient) error {
	return s.repo.Update(ctx, patient)
}

// DeletePatient removes the patient and every incident that references it.
func (s *Service) DeletePatient(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("patient deleted", "patient_id", id)
	return nil
}

// ListIncidents returns the incidents of an existing patient.
func (s *Service) ListIncidents(ctx context.Context, patientID string) ([]model.Incident, error) {
	if _, err := s.repo.Get(ctx, patientID); err != nil {
		return nil, err
	}
	return s.incidentRepo.ListByPatient(ctx, patientID)
}
