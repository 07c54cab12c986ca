package kvstore

import (
	"context"

	"github.com/jwalitptl/dentalcare/internal/model"
)

type sessionRepository struct {
	*base
}

func (r *sessionRepository) Get(ctx context.Context) (*model.User, error) {
	u, ok, err := r.store.GetSession(ctx)
	if err != nil || !ok {
		return nil, err
	}
	return &u, nil
}

func (r *sessionRepository) Save(ctx context.Context, user *model.User) error {
	if err := r.store.SaveSession(ctx, *user); err != nil {
		return err
	}
	r.publish(ctx, model.CollectionSession, model.OpReplace, user.ID)
	return nil
}

func (r *sessionRepository) Clear(ctx context.Context) error {
	if err := r.store.ClearSession(ctx); err != nil {
		return err
	}
	r.publish(ctx, model.CollectionSession, model.OpDelete, "")
	return nil
}
