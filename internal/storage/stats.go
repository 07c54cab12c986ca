package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jwalitptl/dentalcare/internal/model"
	apperrors "github.com/jwalitptl/dentalcare/pkg/errors"
)

// StatsKey returns the key of the snapshot for month ("YYYY-MM").
func StatsKey(month string) string {
	return KeyStatsPrefix + month
}

func checkMonth(month string) error {
	if _, err := time.Parse(model.MonthLayout, month); err != nil {
		return apperrors.BadRequest(fmt.Sprintf("invalid month %q, want YYYY-MM", month), err)
	}
	return nil
}

// GetMonthlyStats returns the snapshot for month. ok is false when none was written.
func (a *Adapter) GetMonthlyStats(ctx context.Context, month string) (stats model.MonthlyStats, ok bool, err error) {
	if err := checkMonth(month); err != nil {
		return model.MonthlyStats{}, false, err
	}
	found, err := a.load(ctx, StatsKey(month), &stats)
	if err != nil {
		return model.MonthlyStats{}, false, err
	}
	return stats, found, nil
}

// SaveMonthlyStats writes the snapshot for month, replacing any earlier one.
func (a *Adapter) SaveMonthlyStats(ctx context.Context, month string, stats model.MonthlyStats) error {
	if err := checkMonth(month); err != nil {
		return err
	}
	return a.store(ctx, StatsKey(month), stats)
}

// ListStatsMonths returns the months that have a snapshot, oldest first.
func (a *Adapter) ListStatsMonths(ctx context.Context) ([]string, error) {
	keys, err := a.kv.Keys(ctx, KeyStatsPrefix)
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("list snapshots: %w", err))
	}
	months := make([]string, 0, len(keys))
	for _, k := range keys {
		months = append(months, strings.TrimPrefix(k, KeyStatsPrefix))
	}
	return months, nil
}
