package handler

import (
	"fxconvert/internal/auth"
	"fxconvert/internal/quota"
	"math"
	"net/http"
	"strconv"
	"time"
)

type Admitter interface {
	Admit(identity string, now time.Time) quota.Decision
}

// Quota admits each authenticated request against the caller's daily quota and
// reports the window state in X-RateLimit-* headers.
func (h *Handler) Quota(tracker Admitter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := auth.IdentityFrom(r.Context())
			if !ok {
				writeError(w, http.StatusUnauthorized, "missing identity")
				return
			}

			now := h.now()
			d := tracker.Admit(identity, now)

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(d.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(d.ResetAt.Unix(), 10))

			if err := d.Err(); err != nil {
				retryAfter := int64(math.Ceil(d.ResetAt.Sub(now).Seconds()))
				w.Header().Set("Retry-After", strconv.FormatInt(max(retryAfter, 1), 10))
				writeError(w, http.StatusTooManyRequests, err.Error())
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
