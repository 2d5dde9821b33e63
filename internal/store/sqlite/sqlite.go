package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"macropulse/internal/model"
)

type Store struct {
	db *sql.DB
}

func New(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite: path is required")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) UpsertObservations(ctx context.Context, records []model.Observation) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO macro_observations (
			iso3, indicator, year, country, indicator_code, value, ingested_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(iso3, indicator, year)
		DO UPDATE SET
			country = excluded.country,
			indicator_code = excluded.indicator_code,
			value = excluded.value,
			ingested_at = excluded.ingested_at
	`)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for i := range records {
		record := records[i]
		if record.Err != "" {
			continue
		}
		if record.IngestedAt.IsZero() {
			record.IngestedAt = now
		}
		var value any
		if record.Value != nil {
			value = *record.Value
		}
		_, err = stmt.ExecContext(
			ctx,
			record.ISO3,
			record.Indicator,
			record.Year,
			record.Country,
			record.IndicatorCode,
			value,
			record.IngestedAt.UTC(),
		)
		if err != nil {
			_ = tx.Rollback()
			return err
		}
	}

	if err = tx.Commit(); err != nil {
		return err
	}
	return nil
}

func (s *Store) ListObservations(ctx context.Context) ([]model.Observation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT iso3, indicator, year, country, indicator_code, value
		FROM macro_observations
		ORDER BY country, indicator, year
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]model.Observation, 0)
	for rows.Next() {
		var record model.Observation
		var value sql.NullFloat64
		if err := rows.Scan(&record.ISO3, &record.Indicator, &record.Year, &record.Country, &record.IndicatorCode, &value); err != nil {
			return nil, err
		}
		if value.Valid {
			parsed := value.Float64
			record.Value = &parsed
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

func (s *Store) migrate() error {
	statements := []string{
		`PRAGMA foreign_keys = ON;`,
		`CREATE TABLE IF NOT EXISTS macro_observations (
			iso3 TEXT NOT NULL,
			indicator TEXT NOT NULL,
			year INTEGER NOT NULL,
			country TEXT NOT NULL,
			indicator_code TEXT NOT NULL,
			value REAL,
			ingested_at TEXT NOT NULL,
			PRIMARY KEY (iso3, indicator, year)
		);`,
	}

	for _, statement := range statements {
		if _, err := s.db.Exec(statement); err != nil {
			return err
		}
	}

	return nil
}
