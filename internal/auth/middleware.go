package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fxconvert/internal/adapters"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
)

const DefaultCacheTTL = 5 * time.Minute

var (
	ErrMissingToken  = errors.New("missing bearer token")
	ErrInvalidToken  = errors.New("invalid token")
	ErrEmptyIdentity = errors.New("token carries no identity")
)

type ctxKey struct{}

// WithIdentity stores the caller identity in ctx.
func WithIdentity(ctx context.Context, identity string) context.Context {
	return context.WithValue(ctx, ctxKey{}, identity)
}

// IdentityFrom returns the identity put into ctx by the middleware.
func IdentityFrom(ctx context.Context) (string, bool) {
	identity, ok := ctx.Value(ctxKey{}).(string)
	return identity, ok && identity != ""
}

type Middleware struct {
	secret   []byte
	cache    adapters.IdentityCache
	cacheTTL time.Duration
	now      func() time.Time
}

type Option func(*Middleware)

func WithCache(cache adapters.IdentityCache, ttl time.Duration) Option {
	return func(m *Middleware) {
		m.cache = cache
		if ttl > 0 {
			m.cacheTTL = ttl
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(m *Middleware) {
		if now != nil {
			m.now = now
		}
	}
}

// Handler rejects requests without a valid HS256 bearer token and passes the identity on in the request context.
func (m *Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			writeUnauthorized(w, ErrMissingToken)
			return
		}

		if m.cache != nil {
			if identity, ok := m.cache.Get(token); ok {
				next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
				return
			}
		}

		identity, expiresAt, err := m.verify(token)
		if err != nil {
			logrus.WithError(err).WithField("path", r.URL.Path).Debug("rejected bearer token")
			writeUnauthorized(w, err)
			return
		}

		if m.cache != nil {
			ttl := m.cacheTTL
			if !expiresAt.IsZero() {
				ttl = min(ttl, expiresAt.Sub(m.now()))
			}
			m.cache.Set(token, identity, ttl)
		}

		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
	})
}

func (m *Middleware) verify(raw string) (string, time.Time, error) {
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(m.now))
	if err != nil {
		return "", time.Time{}, errors.Join(ErrInvalidToken, err)
	}

	identity, _ := claims.GetSubject()
	if identity == "" {
		identity, _ = claims["user_id"].(string)
	}
	if identity == "" {
		return "", time.Time{}, ErrEmptyIdentity
	}

	var expiresAt time.Time
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		expiresAt = exp.Time
	}
	return identity, expiresAt, nil
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func writeUnauthorized(w http.ResponseWriter, err error) {
	msg := ErrInvalidToken.Error()
	switch {
	case errors.Is(err, ErrMissingToken):
		msg = ErrMissingToken.Error()
	case errors.Is(err, ErrEmptyIdentity):
		msg = ErrEmptyIdentity.Error()
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", `Bearer realm="fxconvert"`)
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func NewMiddleware(secret string, opts ...Option) *Middleware {
	m := &Middleware{
		secret:   []byte(secret),
		cacheTTL: DefaultCacheTTL,
		now:      time.Now,
	}
	for _, o := range opts {
		o(m)
	}
	return m
}
