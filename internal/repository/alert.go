package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/andres10976/orderwatch/internal/model"
)

type AlertRepository struct {
	pool *pgxpool.Pool
}

func NewAlertRepository(pool *pgxpool.Pool) *AlertRepository {
	return &AlertRepository{pool: pool}
}

func (r *AlertRepository) Create(ctx context.Context, a *model.Alert) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO alerts (id, source, content_length, detected_at)
		 VALUES ($1, $2, $3, $4)`,
		a.ID, string(a.Source), a.ContentLength, a.DetectedAt,
	)
	return err
}

// Acknowledge stamps an alert once. Already acknowledged alerts keep their
// first timestamp.
func (r *AlertRepository) Acknowledge(ctx context.Context, id uuid.UUID, at time.Time) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE alerts SET acknowledged_at = COALESCE(acknowledged_at, $2) WHERE id = $1`,
		id, at,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns the most recent alerts first.
func (r *AlertRepository) List(ctx context.Context, limit int) ([]model.Alert, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, source, content_length, detected_at, acknowledged_at
		 FROM alerts ORDER BY detected_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var alerts []model.Alert
	for rows.Next() {
		var a model.Alert
		var source string
		if err := rows.Scan(&a.ID, &source, &a.ContentLength, &a.DetectedAt, &a.AcknowledgedAt); err != nil {
			return nil, err
		}
		a.Source = model.AlertSource(source)
		alerts = append(alerts, a)
	}
	return alerts, rows.Err()
}
