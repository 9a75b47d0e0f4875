package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"fxconvert/internal/domain"
	"time"

	"github.com/google/uuid"
)

const timestampFormat = "2006-01-02T15:04:05.000Z"

type ConversionRepository struct {
	db *sql.DB
}

func (r *ConversionRepository) Record(ctx context.Context, c domain.Conversion) (domain.Conversion, error) {
	const q = `INSERT INTO conversions (id, user_id, from_currency, to_currency, amount, result, rate)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING created_at`

	c.ID = uuid.New()
	var createdAt string
	if err := r.db.QueryRowContext(ctx, q, c.ID.String(), c.UserID, c.From, c.To, c.Amount, c.Result, c.Rate).Scan(&createdAt); err != nil {
		return domain.Conversion{}, fmt.Errorf("failed to insert conversion %q/%q for user %q: %w", c.From, c.To, c.UserID, err)
	}

	ts, err := time.Parse(timestampFormat, createdAt)
	if err != nil {
		return domain.Conversion{}, fmt.Errorf("parse created_at %q: %w", createdAt, err)
	}
	c.CreatedAt = ts
	return c, nil
}

func (r *ConversionRepository) ListByUser(ctx context.Context, userID string, limit int) ([]domain.Conversion, error) {
	const q = `SELECT id, user_id, from_currency, to_currency, amount, result, rate, created_at
		FROM conversions
		WHERE user_id = ?
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?`

	rows, err := r.db.QueryContext(ctx, q, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query conversions for user %q: %w", userID, err)
	}
	defer func() { _ = rows.Close() }()

	conversions := make([]domain.Conversion, 0, max(limit, 0))
	for rows.Next() {
		var c domain.Conversion
		var id, createdAt string
		if err := rows.Scan(&id, &c.UserID, &c.From, &c.To, &c.Amount, &c.Result, &c.Rate, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan conversion: %w", err)
		}
		if c.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("parse conversion id %q: %w", id, err)
		}
		if c.CreatedAt, err = time.Parse(timestampFormat, createdAt); err != nil {
			return nil, fmt.Errorf("parse created_at %q: %w", createdAt, err)
		}
		conversions = append(conversions, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating conversions: %w", err)
	}
	return conversions, nil
}

func NewConversionRepository(db *sql.DB) *ConversionRepository {
	return &ConversionRepository{db: db}
}
