package incident

import (
	"context"
	"fmt"
	"io"

	"github.com/jwalitptl/dentalcare/internal/model"
	"github.com/jwalitptl/dentalcare/internal/repository"
	apperrors "github.com/jwalitptl/dentalcare/pkg/errors"
	"github.com/jwalitptl/dentalcare/pkg/logger"
)

// FileStore turns uploaded content into an attachment. storage.Adapter
// implements it.
type FileStore interface {
	SaveFile(ctx context.Context, name, mimeType string, r io.Reader) (model.Attachment, error)
}

type Service struct {
	repo        repository.IncidentRepository
	patientRepo repository.PatientRepository
	files       FileStore
	logger      *logger.Logger
}

func NewService(repo repository.IncidentRepository, patientRepo repository.PatientRepository, files FileStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		repo:        repo,
		patientRepo: patientRepo,
		files:       files,
		logger:      log,
	}
}

// ListIncidents filters incidents and resolves each patient's name.
// Incidents whose patient is gone are listed as model.UnknownPatientName.
func (s *Service) ListIncidents(ctx context.Context, filter *model.IncidentFilter) ([]model.IncidentEntry, error) {
	incidents, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	patients, err := s.patientRepo.List(ctx, nil)
	if err != nil {
		return nil, err
	}
	out := make([]model.IncidentEntry, 0, len(incidents))
	for _, inc := range incidents {
		out = append(out, model.IncidentEntry{
			Incident:    inc,
			PatientName: model.PatientName(patients, inc.PatientID),
		})
	}
	return out, nil
}

func (s *Service) GetIncident(ctx context.Context, id string) (*model.Incident, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) CreateIncident(ctx context.Context, incident *model.Incident) error {
	if err := s.repo.Create(ctx, incident); err != nil {
		return err
	}
	s.logger.Info("incident created", "incident_id", incident.ID, "patient_id", incident.PatientID)
	return nil
}

// UpdateIncident replaces the incident. Any status may follow any other.
// A nil Files keeps the stored attachments.
func (s *Service) UpdateIncident(ctx context.Context, incident *model.Incident) error {
	if incident.Files != nil {
		return s.repo.Update(ctx, incident)
	}
	replacement := *incident
	stored, err := s.repo.Modify(ctx, incident.ID, func(inc *model.Incident) error {
		files := inc.Files
		*inc = replacement
		inc.Files = files
		return nil
	})
	if err != nil {
		return err
	}
	*incident = *stored
	return nil
}

func (s *Service) DeleteIncident(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// AddAttachment stores r as a new file on the incident.
func (s *Service) AddAttachment(ctx context.Context, incidentID, name, mimeType string, r io.Reader) (*model.Attachment, error) {
	if _, err := s.repo.Get(ctx, incidentID); err != nil {
		return nil, err
	}
	att, err := s.files.SaveFile(ctx, name, mimeType, r)
	if err != nil {
		return nil, err
	}
	_, err = s.repo.Modify(ctx, incidentID, func(inc *model.Incident) error {
		inc.Files = append(inc.Files, att)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("attachment added", "incident_id", incidentID, "file_id", att.ID, "size", att.Size)
	return &att, nil
}

func (s *Service) RemoveAttachment(ctx context.Context, incidentID, fileID string) error {
	_, err := s.repo.Modify(ctx, incidentID, func(inc *model.Incident) error {
		files := make([]model.Attachment, 0, len(inc.Files))
		for _, f := range inc.Files {
			if f.ID != fileID {
				files = append(files, f)
			}
		}
		if len(files) == len(inc.Files) {
			return apperrors.NotFound("file", fmt.Errorf("file %s on incident %s", fileID, incidentID))
		}
		inc.Files = files
		return nil
	})
	return err
}

// GetAttachment finds one file on an incident.
func (s *Service) GetAttachment(ctx context.Context, incidentID, fileID string) (*model.Attachment, error) {
	inc, err := s.repo.Get(ctx, incidentID)
	if err != nil {
		return nil, err
	}
	for _, f := range inc.Files {
		if f.ID == fileID {
			att := f
			return &att, nil
		}
	}
	return nil, apperrors.NotFound("file", fmt.Errorf("file %s on incident %s", fileID, incidentID))
}
