package conversion

import (
	"context"
	"fmt"
	"fxconvert/internal/adapters"
	"fxconvert/internal/domain"
	"fxconvert/internal/metrics"

	"github.com/sirupsen/logrus"
)

type RateProvider interface {
	GetRates(ctx context.Context) (domain.Rates, error)
}

type CurrencyValidator interface {
	Validate(from, to string) error
}

// Engine converts amounts with the current rates and records every successful conversion.
type Engine struct {
	rates     RateProvider
	validator CurrencyValidator
	repo      adapters.ConversionRepository
	publisher adapters.EventPublisher
	metrics   *metrics.Metrics
}

// Convert converts amount from one currency into another on behalf of identity.
// The result keeps full float64 precision; rounding is left to whoever displays it.
// A conversion that cannot be recorded is reported as domain.ErrPersistenceFailed.
func (e *Engine) Convert(ctx context.Context, from, to string, amount float64, identity string) (domain.Conversion, error) {
	log := logrus.WithFields(logrus.Fields{"identity": identity, "from": from, "to": to})

	if err := e.validator.Validate(from, to); err != nil {
		e.metrics.ConversionsTotal.WithLabelValues("unsupported_currency").Inc()
		log.WithError(err).Info("conversion rejected")
		return domain.Conversion{}, err
	}

	rates, err := e.rates.GetRates(ctx)
	if err != nil {
		// logged by the provider where the fetch failed
		e.metrics.ConversionsTotal.WithLabelValues("rates_unavailable").Inc()
		return domain.Conversion{}, err
	}

	rate, err := rates.Cross(from, to)
	if err != nil {
		e.metrics.ConversionsTotal.WithLabelValues("rate_unavailable").Inc()
		log.WithError(err).Warn("upstream did not supply a rate for the pair this cycle")
		return domain.Conversion{}, fmt.Errorf("%w for %s/%s", err, from, to)
	}

	record, err := e.repo.Record(ctx, domain.Conversion{
		UserID: identity,
		From:   from,
		To:     to,
		Amount: amount,
		Result: amount * rate,
		Rate:   rate,
	})
	if err != nil {
		e.metrics.ConversionsTotal.WithLabelValues("persistence_failed").Inc()
		log.WithError(err).Error("failed to record conversion")
		return domain.Conversion{}, fmt.Errorf("%w: %w", domain.ErrPersistenceFailed, err)
	}
	e.metrics.ConversionsTotal.WithLabelValues("success").Inc()

	if pubErr := e.publisher.PublishConversion(ctx, record); pubErr != nil {
		log.WithError(pubErr).WithField("conversion_id", record.ID).Warn("failed to publish conversion event")
	}

	return record, nil
}

// History returns identity's most recent conversions, newest first.
func (e *Engine) History(ctx context.Context, identity string, limit int) ([]domain.Conversion, error) {
	return e.repo.ListByUser(ctx, identity, limit)
}

type noopPublisher struct{}

func (noopPublisher) PublishConversion(context.Context, domain.Conversion) error { return nil }

func NewEngine(rates RateProvider, validator CurrencyValidator, repo adapters.ConversionRepository, publisher adapters.EventPublisher, m *metrics.Metrics) *Engine {
	if publisher == nil {
		publisher = noopPublisher{}
	}
	return &Engine{rates: rates, validator: validator, repo: repo, publisher: publisher, metrics: m}
}
