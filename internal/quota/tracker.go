package quota

import (
	"fxconvert/internal/domain"
	"fxconvert/internal/metrics"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	DefaultWeekdayLimit = 100
	DefaultWeekendLimit = 200
	WindowLength        = 24 * time.Hour
)

// Decision is the outcome of one admission check.
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	Weekend   bool
	ResetAt   time.Time
}

// Err returns a *domain.QuotaExceededError for a denied decision and nil otherwise.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	return &domain.QuotaExceededError{Limit: d.Limit, Weekend: d.Weekend}
}

type window struct {
	mu    sync.Mutex
	count int
	start time.Time
}

// Tracker counts admitted requests per identity over a rolling 24h window. Checks for one
// identity are serialized; different identities never wait on each other's windows.
type Tracker struct {
	mu      sync.RWMutex
	windows map[string]*window
	// -----
	weekdayLimit int
	weekendLimit int
	location     *time.Location
	metrics      *metrics.Metrics
}

type Option func(*Tracker)

func WithLimits(weekday, weekend int) Option {
	return func(t *Tracker) {
		if weekday > 0 {
			t.weekdayLimit = weekday
		}
		if weekend > 0 {
			t.weekendLimit = weekend
		}
	}
}

// WithLocation sets the time zone used to decide whether the admission instant falls on a weekend.
func WithLocation(loc *time.Location) Option {
	return func(t *Tracker) {
		if loc != nil {
			t.location = loc
		}
	}
}

// Admit counts one request for identity at now, unless the cap is already reached.
// The cap comes from the weekday of now, not of the window start, so a window that
// crosses into Saturday starts seeing the weekend cap from that moment on.
func (t *Tracker) Admit(identity string, now time.Time) Decision {
	w := t.window(identity, now)

	w.mu.Lock()
	defer w.mu.Unlock()

	if now.Sub(w.start) >= WindowLength {
		w.count = 0
		w.start = now
	}

	weekend := isWeekend(now.In(t.location).Weekday())
	limit := t.weekdayLimit
	if weekend {
		limit = t.weekendLimit
	}

	d := Decision{Limit: limit, Weekend: weekend, ResetAt: w.start.Add(WindowLength)}
	if w.count >= limit {
		t.metrics.QuotaDecisionsTotal.WithLabelValues("denied", dayLabel(weekend)).Inc()
		logrus.WithFields(logrus.Fields{"identity": identity, "limit": limit, "count": w.count, "reset_at": d.ResetAt}).Info("quota exceeded")
		return d
	}

	w.count++
	d.Allowed = true
	d.Remaining = limit - w.count
	t.metrics.QuotaDecisionsTotal.WithLabelValues("allowed", dayLabel(weekend)).Inc()
	return d
}

func (t *Tracker) window(identity string, now time.Time) *window {
	t.mu.RLock()
	w, ok := t.windows[identity]
	t.mu.RUnlock()
	if ok {
		return w
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if w, ok = t.windows[identity]; ok {
		return w
	}
	w = &window{start: now}
	t.windows[identity] = w
	return w
}

func isWeekend(day time.Weekday) bool {
	return day == time.Saturday || day == time.Sunday
}

func dayLabel(weekend bool) string {
	if weekend {
		return "weekend"
	}
	return "weekday"
}

func NewTracker(m *metrics.Metrics, opts ...Option) *Tracker {
	t := &Tracker{
		windows:      make(map[string]*window),
		weekdayLimit: DefaultWeekdayLimit,
		weekendLimit: DefaultWeekendLimit,
		location:     time.UTC,
		metrics:      m,
	}
	for _, o := range opts {
		o(t)
	}
	return t
}
