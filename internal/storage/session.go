package storage

import (
	"context"
	"fmt"

	"github.com/jwalitptl/dentalcare/internal/model"
	apperrors "github.com/jwalitptl/dentalcare/pkg/errors"
)

// GetSession returns the persisted session user. ok is false when logged out.
func (a *Adapter) GetSession(ctx context.Context) (user model.User, ok bool, err error) {
	found, err := a.load(ctx, KeySession, &user)
	if err != nil {
		return model.User{}, false, err
	}
	return user, found, nil
}

// SaveSession persists u as the active session. The password is never stored.
func (a *Adapter) SaveSession(ctx context.Context, u model.User) error {
	return a.store(ctx, KeySession, u.Public())
}

// ClearSession removes the session key.
func (a *Adapter) ClearSession(ctx context.Context) error {
	if err := a.kv.Delete(ctx, KeySession); err != nil {
		return apperrors.Internal(fmt.Errorf("delete %s: %w", KeySession, err))
	}
	return nil
}
