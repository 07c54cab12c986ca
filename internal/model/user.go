package model

import (
	"fmt"
)

// Role is the kind of account a user holds.
type Role string

const (
	RoleAdmin   Role = "Admin"
	RolePatient Role = "Patient"
)

func (r Role) IsValid() bool {
	return r == RoleAdmin || r == RolePatient
}

// User represents a system user. Users are seeded once and never edited at
// runtime; only the session that references them changes.
type User struct {
	ID        string `json:"id" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password,omitempty" validate:"required"`
	Role      Role   `json:"role" validate:"required,role"`
	PatientID string `json:"patientId,omitempty"`
}

func (u User) GetID() string { return u.ID }

// Validate checks the role/patient link: PatientID is present iff the user is a patient.
func (u User) Validate() error {
	switch u.Role {
	case RolePatient:
		if u.PatientID == "" {
			return fmt.Errorf("patient user %s has no patientId", u.ID)
		}
	case RoleAdmin:
		if u.PatientID != "" {
			return fmt.Errorf("admin user %s must not carry a patientId", u.ID)
		}
	default:
		return fmt.Errorf("user %s has unknown role %q", u.ID, u.Role)
	}
	return nil
}

// Public returns a copy without the password, suitable for sessions and responses.
func (u User) Public() User {
	u.Password = ""
	return u
}

func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
