package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/jwalitptl/dentalcare/internal/model"
	"github.com/jwalitptl/dentalcare/internal/repository"
	"github.com/jwalitptl/dentalcare/internal/state"
	"github.com/jwalitptl/dentalcare/pkg/auth"
	apperrors "github.com/jwalitptl/dentalcare/pkg/errors"
	"github.com/jwalitptl/dentalcare/pkg/logger"
	"github.com/jwalitptl/dentalcare/pkg/security"
)

const tokenType = "Bearer"

type Service struct {
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
	hasher      security.PasswordHasher
	jwtSvc      auth.JWTService
	store       *state.Store
	logger      *logger.Logger
}

func NewService(userRepo repository.UserRepository, sessionRepo repository.SessionRepository,
	hasher security.PasswordHasher, jwtSvc auth.JWTService, store *state.Store, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		hasher:      hasher,
		jwtSvc:      jwtSvc,
		store:       store,
		logger:      log,
	}
}

// Initialize restores a persisted session into the state store. It returns
// nil when nobody is signed in.
func (s *Service) Initialize(ctx context.Context) (*model.User, error) {
	user, err := s.sessionRepo.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to restore session: %w", err)
	}
	s.store.Dispatch(state.Initialize{User: user})
	return user, nil
}

// Login checks the credentials, persists the session and issues a token.
// Unknown email and wrong password are reported identically.
func (s *Service) Login(ctx context.Context, email, password string) (*model.TokenResponse, error) {
	s.store.Dispatch(state.LoginStart{})

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		s.store.Dispatch(state.LoginFailure{})
		if apperrors.CodeOf(err) == apperrors.ErrNotFound {
			return nil, apperrors.Unauthorized(model.ErrInvalidCredentials)
		}
		return nil, err
	}

	if err := s.hasher.Compare(user.Password, password); err != nil {
		s.store.Dispatch(state.LoginFailure{})
		s.logger.Warn("login failed", "email", email)
		return nil, apperrors.Unauthorized(model.ErrInvalidCredentials)
	}

	token, expiresAt, err := s.jwtSvc.GenerateAccessToken(user)
	if err != nil {
		s.store.Dispatch(state.LoginFailure{})
		return nil, apperrors.Internal(err)
	}

	public := user.Public()
	if err := s.sessionRepo.Save(ctx, &public); err != nil {
		s.store.Dispatch(state.LoginFailure{})
		return nil, fmt.Errorf("failed to persist session: %w", err)
	}
	s.store.Dispatch(state.LoginSuccess{User: public})
	s.logger.Info("user logged in", "user_id", user.ID, "role", string(user.Role))

	return &model.TokenResponse{
		AccessToken: token,
		TokenType:   tokenType,
		ExpiresAt:   expiresAt,
		User:        public,
	}, nil
}

// Logout clears the persisted session and the signed-in user.
func (s *Service) Logout(ctx context.Context) error {
	if err := s.sessionRepo.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	s.store.Dispatch(state.Logout{})
	return nil
}

// Current returns the signed-in user held by the state store.
func (s *Service) Current() (*model.User, bool) {
	a := s.store.State().Auth
	if !a.IsAuthenticated || a.User == nil {
		return nil, false
	}
	u := *a.User
	return &u, true
}

func (s *Service) ValidateToken(_ context.Context, token string) (*model.TokenClaims, error) {
	claims, err := s.jwtSvc.ValidateToken(token)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidToken) {
			return nil, apperrors.Unauthorized(err)
		}
		return nil, err
	}
	return claims, nil
}

// Users lists accounts without their passwords.
func (s *Service) Users(ctx context.Context) ([]model.User, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]model.User, 0, len(users))
	for _, u := range users {
		out = append(out, u.Public())
	}
	return out, nil
}
