package state

import (
	"github.com/jwalitptl/dentalcare/internal/model"
)

// AuthSlice tracks the signed-in user.
type AuthSlice struct {
	IsAuthenticated bool        `json:"isAuthenticated"`
	User            *model.User `json:"user"`
	Loading         bool        `json:"loading"`
}

type (
	LoginStart   struct{}
	LoginSuccess struct{ User model.User }
	LoginFailure struct{}
	Logout       struct{}
	// Initialize rehydrates a persisted session. A nil User leaves the
	// slice as it is.
	Initialize struct{ User *model.User }
)

func (LoginStart) Type() string   { return "auth/loginStart" }
func (LoginSuccess) Type() string { return "auth/loginSuccess" }
func (LoginFailure) Type() string { return "auth/loginFailure" }
func (Logout) Type() string       { return "auth/logout" }
func (Initialize) Type() string   { return "auth/initialize" }

// ReduceAuth applies a to s. Persisting or clearing the session is the
// caller's job; this function has no side effects.
func ReduceAuth(s AuthSlice, a Action) AuthSlice {
	switch act := a.(type) {
	case LoginStart:
		s.Loading = true
	case LoginSuccess:
		u := act.User.Public()
		s.User = &u
		s.IsAuthenticated = true
		s.Loading = false
	case LoginFailure:
		s.Loading = false
	case Logout:
		s.User = nil
		s.IsAuthenticated = false
	case Initialize:
		if act.User != nil {
			u := act.User.Public()
			s.User = &u
			s.IsAuthenticated = true
		}
	}
	return s
}
