package adapters

import (
	"context"
	"fxconvert/internal/domain"
	"time"
)

// RateSource returns raw currency code -> rate strings from the upstream provider.
type RateSource interface {
	FetchRates(ctx context.Context) (map[string]string, error)
}

type ConversionRepository interface {
	Record(ctx context.Context, conversion domain.Conversion) (domain.Conversion, error)
	ListByUser(ctx context.Context, userID string, limit int) ([]domain.Conversion, error)
}

type EventPublisher interface {
	PublishConversion(ctx context.Context, conversion domain.Conversion) error
}

type IdentityCache interface {
	Get(token string) (string, bool)
	Set(token string, identity string, ttl time.Duration)
}
