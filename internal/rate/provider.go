package rate

import (
	"context"
	"fmt"
	"fxconvert/internal/adapters"
	"fxconvert/internal/domain"
	"fxconvert/internal/metrics"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

const (
	defaultFetchTimeout = 10 * time.Second
	cacheKey            = "rates:" + domain.BaseCurrency
)

// Provider serves supported rates from the cache and refills it from the upstream source on a miss.
type Provider struct {
	cache        *Cache
	source       adapters.RateSource
	currencies   *Currencies
	metrics      *metrics.Metrics
	ttl          time.Duration
	fetchTimeout time.Duration
	// -----
	inflight singleflight.Group
}

type ProviderOption func(*Provider)

func WithTTL(ttl time.Duration) ProviderOption {
	return func(p *Provider) {
		if ttl > 0 {
			p.ttl = ttl
		}
	}
}

func WithFetchTimeout(timeout time.Duration) ProviderOption {
	return func(p *Provider) {
		if timeout > 0 {
			p.fetchTimeout = timeout
		}
	}
}

// GetRates returns the current supported rates. A cache miss fetches from upstream once, no matter
// how many callers miss concurrently. Fetch failures surface as domain.ErrRatesUnavailable and leave
// the cache untouched.
func (p *Provider) GetRates(ctx context.Context) (domain.Rates, error) {
	if rates, ok := p.cache.Get(); ok {
		p.metrics.RateCacheLookupsTotal.WithLabelValues("hit").Inc()
		return rates.Clone(), nil
	}
	p.metrics.RateCacheLookupsTotal.WithLabelValues("miss").Inc()

	v, err, _ := p.inflight.Do(cacheKey, func() (any, error) {
		// a flight that finished just before this one started may have refilled the cache
		if rates, ok := p.cache.Get(); ok {
			return rates, nil
		}
		return p.fetchAndStore(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.(domain.Rates).Clone(), nil
}

// Refresh fetches from upstream and replaces the cached rates regardless of their expiry.
func (p *Provider) Refresh(ctx context.Context) (domain.Rates, error) {
	v, err, _ := p.inflight.Do(cacheKey, func() (any, error) {
		return p.fetchAndStore(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.(domain.Rates).Clone(), nil
}

func (p *Provider) Supported() []string {
	return p.currencies.SupportedCodes()
}

func (p *Provider) fetchAndStore(ctx context.Context) (domain.Rates, error) {
	// The fetch is shared by every caller waiting on this flight, so one caller going away
	// must not fail it for the rest. It stays bounded by fetchTimeout.
	fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.fetchTimeout)
	defer cancel()

	started := time.Now()
	raw, err := p.source.FetchRates(fetchCtx)
	p.metrics.RateFetchDuration.Observe(time.Since(started).Seconds())
	if err != nil {
		p.metrics.RateFetchErrorsTotal.Inc()
		logrus.WithError(err).WithFields(logrus.Fields{"component": "RateProvider", "base": domain.BaseCurrency}).Error("failed to fetch exchange rates")
		return nil, fmt.Errorf("%w: %w", domain.ErrRatesUnavailable, err)
	}

	rates := p.filterSupported(raw)
	p.cache.Put(rates, p.ttl)
	logrus.Debugf("Rate cache refilled with %d rates, valid for %s", len(rates), p.ttl)
	return rates, nil
}

// filterSupported keeps only supported codes with a parseable positive rate.
func (p *Provider) filterSupported(raw map[string]string) domain.Rates {
	rates := make(domain.Rates, len(p.currencies.supportedCodesLst))
	for _, code := range p.currencies.supportedCodesLst {
		value, ok := raw[code]
		if !ok {
			p.metrics.RatesMissingTotal.WithLabelValues(code).Inc()
			logrus.Warnf("Rate for '%s' is missing from upstream response, skipping it this cycle", code)
			continue
		}

		d, err := decimal.NewFromString(value)
		if err != nil || !d.IsPositive() {
			p.metrics.RatesMissingTotal.WithLabelValues(code).Inc()
			logrus.Warnf("Rate for '%s' is malformed (%q), skipping it this cycle", code, value)
			continue
		}
		f, _ := d.Float64()
		rates[code] = f
	}
	return rates
}

func NewProvider(cache *Cache, source adapters.RateSource, currencies *Currencies, m *metrics.Metrics, opts ...ProviderOption) *Provider {
	p := &Provider{
		cache:        cache,
		source:       source,
		currencies:   currencies,
		metrics:      m,
		ttl:          DefaultTTL,
		fetchTimeout: defaultFetchTimeout,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}
