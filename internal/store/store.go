package store

import (
	"context"

	"macropulse/internal/model"
)

// Store persists clean observations keyed (iso3, indicator, year). Degraded
// records carry no year and are skipped by implementations.
type Store interface {
	UpsertObservations(ctx context.Context, records []model.Observation) error
	ListObservations(ctx context.Context) ([]model.Observation, error)
	Close() error
}

type NopStore struct{}

func (s *NopStore) UpsertObservations(ctx context.Context, records []model.Observation) error {
	_ = ctx
	_ = records
	return nil
}

func (s *NopStore) ListObservations(ctx context.Context) ([]model.Observation, error) {
	_ = ctx
	return nil, nil
}

func (s *NopStore) Close() error {
	return nil
}
