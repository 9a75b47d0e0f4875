package postgres

import (
	"context"
	"fmt"
	"fxconvert/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ConversionRepository struct {
	pool *pgxpool.Pool
}

func (r *ConversionRepository) Record(ctx context.Context, c domain.Conversion) (domain.Conversion, error) {
	const q = `
		insert into conversions (id, user_id, from_currency, to_currency, amount, result, rate)
		values ($1, $2, $3, $4, $5, $6, $7)
		returning created_at;
	`

	c.ID = uuid.New()
	if err := r.pool.QueryRow(ctx, q, c.ID, c.UserID, c.From, c.To, c.Amount, c.Result, c.Rate).Scan(&c.CreatedAt); err != nil {
		return domain.Conversion{}, fmt.Errorf("failed to insert conversion %q/%q for user %q: %w", c.From, c.To, c.UserID, err)
	}
	return c, nil
}

func (r *ConversionRepository) ListByUser(ctx context.Context, userID string, limit int) ([]domain.Conversion, error) {
	const q = `
		select id, user_id, from_currency, to_currency, amount, result, rate, created_at
		from conversions
		where user_id = $1
		order by created_at desc, id
		limit $2;
	`

	rows, err := r.pool.Query(ctx, q, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query conversions for user %q: %w", userID, err)
	}
	defer rows.Close()

	conversions := make([]domain.Conversion, 0, max(limit, 0))
	for rows.Next() {
		var c domain.Conversion
		if err = rows.Scan(&c.ID, &c.UserID, &c.From, &c.To, &c.Amount, &c.Result, &c.Rate, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan conversion: %w", err)
		}
		conversions = append(conversions, c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating conversions: %w", err)
	}
	return conversions, nil
}

func NewConversionRepository(pool *pgxpool.Pool) *ConversionRepository {
	return &ConversionRepository{pool: pool}
}
