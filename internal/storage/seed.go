package storage

import (
	"context"
	"time"

	"github.com/jwalitptl/dentalcare/internal/model"
)

func mustTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

// SeedUsers returns the bundled accounts.
func SeedUsers() []model.User {
	return []model.User{
		{ID: "1", Email: "admin@dentalcare.test", Password: "admin123", Role: model.RoleAdmin},
		{ID: "2", Email: "john@dentalcare.test", Password: "patient123", Role: model.RolePatient, PatientID: "p1"},
		{ID: "3", Email: "jane@dentalcare.test", Password: "patient123", Role: model.RolePatient, PatientID: "p2"},
	}
}

// SeedPatients returns the bundled patients.
func SeedPatients() []model.Patient {
	return []model.Patient{
		{
			ID:               "p1",
			Name:             "John Doe",
			DOB:              "1990-05-10",
			Contact:          "1234567890",
			Email:            "john@dentalcare.test",
			Address:          "123 Main St, City, State 12345",
			HealthInfo:       "No known allergies. Root canal in 2020.",
			EmergencyContact: "Jane Doe - 0987654321",
			CreatedAt:        mustTime("2024-01-15T09:00:00Z"),
		},
		{
			ID:               "p2",
			Name:             "Jane Smith",
			DOB:              "1985-08-22",
			Contact:          "9876543210",
			Email:            "jane@dentalcare.test",
			Address:          "456 Oak Ave, City, State 12345",
			HealthInfo:       "Allergic to penicillin. Diabetic.",
			EmergencyContact: "Robert Smith - 5551234567",
			CreatedAt:        mustTime("2024-02-01T10:30:00Z"),
		},
		{
			ID:               "p3",
			Name:             "Michael Johnson",
			DOB:              "1978-12-03",
			Contact:          "5556667777",
			Email:            "michael@example.com",
			Address:          "789 Pine Rd, City, State 12345",
			HealthInfo:       "History of gum disease.",
			EmergencyContact: "Sarah Johnson - 5558889999",
			CreatedAt:        mustTime("2024-01-20T14:15:00Z"),
		},
	}
}

// SeedIncidents returns the bundled incidents.
func SeedIncidents() []model.Incident {
	next1 := mustTime("2025-07-15T10:00:00Z")
	next3 := mustTime("2025-02-01T09:00:00Z")
	return []model.Incident{
		{
			ID:                  "i1",
			PatientID:           "p1",
			Title:               "Routine Cleaning",
			Description:         "Regular dental cleaning and checkup",
			Comments:            "Mild sensitivity to cold",
			AppointmentDate:     mustTime("2025-01-15T10:00:00Z"),
			Cost:                model.Float(120),
			Treatment:           "Professional cleaning, fluoride treatment",
			Status:              model.StatusCompleted,
			NextAppointmentDate: &next1,
			Files:               []model.Attachment{},
			CreatedAt:           mustTime("2024-12-01T09:00:00Z"),
			UpdatedAt:           mustTime("2025-01-15T11:00:00Z"),
		},
		{
			ID:              "i2",
			PatientID:       "p1",
			Title:           "Cavity Treatment",
			Description:     "Small cavity in upper right molar",
			Comments:        "Some discomfort reported",
			AppointmentDate: mustTime("2025-01-20T14:00:00Z"),
			Cost:            model.Float(250),
			Treatment:       "Composite filling",
			Status:          model.StatusScheduled,
			Files:           []model.Attachment{},
			CreatedAt:       mustTime("2024-12-15T10:00:00Z"),
			UpdatedAt:       mustTime("2024-12-15T10:00:00Z"),
		},
		{
			ID:                  "i3",
			PatientID:           "p2",
			Title:               "Crown Placement",
			Description:         "Crown placement for damaged tooth",
			Comments:            "Follow-up in 2 weeks",
			AppointmentDate:     mustTime("2025-01-18T09:00:00Z"),
			Cost:                model.Float(800),
			Treatment:           "Ceramic crown placement",
			Status:              model.StatusInProgress,
			NextAppointmentDate: &next3,
			Files:               []model.Attachment{},
			CreatedAt:           mustTime("2024-11-20T08:00:00Z"),
			UpdatedAt:           mustTime("2025-01-18T10:00:00Z"),
		},
	}
}

// Seed writes the bundled collections for every key that is absent.
// Existing data, including an empty collection, is left alone.
func (a *Adapter) Seed(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	seeds := []struct {
		key   string
		value interface{}
		size  int
		name  string
	}{
		{KeyUsers, SeedUsers(), 3, "users"},
		{KeyPatients, SeedPatients(), 3, "patients"},
		{KeyIncidents, SeedIncidents(), 3, "incidents"},
	}
	for _, s := range seeds {
		ok, err := a.exists(ctx, s.key)
		if err != nil {
			return err
		}
		if ok {
			continue
		}
		if err := a.store(ctx, s.key, s.value); err != nil {
			return err
		}
		a.observeSize(s.name, s.size)
		a.logger.Info("seeded collection", "key", s.key)
	}
	return nil
}
