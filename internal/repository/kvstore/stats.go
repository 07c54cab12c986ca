package kvstore

import (
	"context"

	"github.com/jwalitptl/dentalcare/internal/model"
)

type statsRepository struct {
	*base
}

func (r *statsRepository) Get(ctx context.Context, month string) (*model.MonthlyStats, error) {
	s, ok, err := r.store.GetMonthlyStats(ctx, month)
	if err != nil || !ok {
		return nil, err
	}
	return &s, nil
}

func (r *statsRepository) Save(ctx context.Context, month string, stats *model.MonthlyStats) error {
	if err := r.store.SaveMonthlyStats(ctx, month, *stats); err != nil {
		return err
	}
	r.publish(ctx, model.CollectionStats, model.OpReplace, month)
	return nil
}

func (r *statsRepository) Months(ctx context.Context) ([]string, error) {
	return r.store.ListStatsMonths(ctx)
}
