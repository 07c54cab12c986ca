package storage

import (
	"context"

	"github.com/jwalitptl/dentalcare/internal/model"
)

// GetUsers returns the stored users, or the bundled seed users when none are stored.
func (a *Adapter) GetUsers(ctx context.Context) ([]model.User, error) {
	var users []model.User
	found, err := a.load(ctx, KeyUsers, &users)
	if err != nil {
		return nil, err
	}
	if !found {
		return SeedUsers(), nil
	}
	if users == nil {
		users = []model.User{}
	}
	return users, nil
}

// SaveUsers replaces the user collection. Only seeding and admin tooling use it.
func (a *Adapter) SaveUsers(ctx context.Context, users []model.User) error {
	if users == nil {
		users = []model.User{}
	}
	if err := a.store(ctx, KeyUsers, users); err != nil {
		return err
	}
	a.observeSize("users", len(users))
	return nil
}
