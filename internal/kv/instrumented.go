package kv

import (
	"context"
	"errors"
	"time"

	"github.com/jwalitptl/dentalcare/pkg/metrics"
)

type instrumented struct {
	next    Store
	backend string
	m       *metrics.Metrics
}

// Instrument wraps s so that every call is counted and timed.
func Instrument(s Store, backend string, m *metrics.Metrics) Store {
	if m == nil {
		return s
	}
	return &instrumented{next: s, backend: backend, m: m}
}

func (i *instrumented) observe(op string, start time.Time, err error) {
	status := "ok"
	switch {
	case errors.Is(err, ErrNotFound):
		status = "miss"
	case err != nil:
		status = "error"
	}
	i.m.StoreOperations.WithLabelValues(i.backend, op, status).Inc()
	i.m.StoreLatency.WithLabelValues(i.backend, op).Observe(time.Since(start).Seconds())
}

func (i *instrumented) Get(ctx context.Context, key string) ([]byte, error) {
	start := time.Now()
	v, err := i.next.Get(ctx, key)
	i.observe("get", start, err)
	if err == nil {
		i.m.StoreBytes.WithLabelValues(i.backend, "read").Add(float64(len(v)))
	}
	return v, err
}

func (i *instrumented) Set(ctx context.Context, key string, value []byte) error {
	start := time.Now()
	err := i.next.Set(ctx, key, value)
	i.observe("set", start, err)
	if err == nil {
		i.m.StoreBytes.WithLabelValues(i.backend, "write").Add(float64(len(value)))
	}
	return err
}

func (i *instrumented) Delete(ctx context.Context, key string) error {
	start := time.Now()
	err := i.next.Delete(ctx, key)
	i.observe("delete", start, err)
	return err
}

func (i *instrumented) Keys(ctx context.Context, prefix string) ([]string, error) {
	start := time.Now()
	keys, err := i.next.Keys(ctx, prefix)
	i.observe("keys", start, err)
	return keys, err
}

func (i *instrumented) Ping(ctx context.Context) error {
	return i.next.Ping(ctx)
}

func (i *instrumented) Close() error {
	return i.next.Close()
}
