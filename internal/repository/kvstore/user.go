package kvstore

import (
	"context"
	"fmt"

	"github.com/jwalitptl/dentalcare/internal/model"
	"github.com/jwalitptl/dentalcare/internal/storage"
	apperrors "github.com/jwalitptl/dentalcare/pkg/errors"
)

type userRepository struct {
	*base
}

func (r *userRepository) List(ctx context.Context) ([]model.User, error) {
	return r.store.GetUsers(ctx)
}

// GetByEmail is a linear scan; the user list is small and read whole anyway.
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	users, err := r.store.GetUsers(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].Email == email {
			u := users[i]
			return &u, nil
		}
	}
	return nil, apperrors.NotFound("user", fmt.Errorf("%w: user %s", storage.ErrNotFound, email))
}
