package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

var testNow = time.Date(2025, 1, 2, 15, 4, 5, 0, time.UTC)

type mapCache struct {
	mu      sync.Mutex
	entries map[string]string
	ttls    map[string]time.Duration
}

func newMapCache() *mapCache {
	return &mapCache{entries: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (c *mapCache) Get(token string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	identity, ok := c.entries[token]
	return identity, ok
}

func (c *mapCache) Set(token, identity string, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[token] = identity
	c.ttls[token] = ttl
}

func signToken(t *testing.T, method jwt.SigningMethod, key any, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func validToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	if _, ok := claims["exp"]; !ok {
		claims["exp"] = testNow.Add(time.Hour).Unix()
	}
	return signToken(t, jwt.SigningMethodHS256, []byte(testSecret), claims)
}

// identityEcho answers with the identity found in the request context.
func identityEcho() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := IdentityFrom(r.Context())
		if !ok {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(identity))
	})
}

func serve(t *testing.T, m *Middleware, authorization string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/rates", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rr := httptest.NewRecorder()
	m.Handler(identityEcho()).ServeHTTP(rr, req)
	return rr
}

func errorBody(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	return body["error"]
}

func TestMiddleware_SubjectClaim(t *testing.T) {
	m := NewMiddleware(testSecret, WithClock(func() time.Time { return testNow }))

	rr := serve(t, m, "Bearer "+validToken(t, jwt.MapClaims{"sub": "u1"}))

	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "u1", rr.Body.String())
}

func TestMiddleware_UserIDClaimFallback(t *testing.T) {
	m := NewMiddleware(testSecret, WithClock(func() time.Time { return testNow }))

	rr := serve(t, m, "bearer "+validToken(t, jwt.MapClaims{"user_id": "u2"}))

	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "u2", rr.Body.String())
}

func TestMiddleware_Rejects(t *testing.T) {
	clock := WithClock(func() time.Time { return testNow })

	cases := []struct {
		name          string
		authorization func(t *testing.T) string
		wantError     string
	}{
		{
			name:          "missing header",
			authorization: func(*testing.T) string { return "" },
			wantError:     "missing bearer token",
		},
		{
			name:          "wrong scheme",
			authorization: func(t *testing.T) string { return "Basic " + validToken(t, jwt.MapClaims{"sub": "u1"}) },
			wantError:     "missing bearer token",
		},
		{
			name:          "garbage token",
			authorization: func(*testing.T) string { return "Bearer not-a-jwt" },
			wantError:     "invalid token",
		},
		{
			name: "wrong secret",
			authorization: func(t *testing.T) string {
				return "Bearer " + signToken(t, jwt.SigningMethodHS256, []byte("other"), jwt.MapClaims{"sub": "u1"})
			},
			wantError: "invalid token",
		},
		{
			name: "wrong algorithm",
			authorization: func(t *testing.T) string {
				return "Bearer " + signToken(t, jwt.SigningMethodHS512, []byte(testSecret), jwt.MapClaims{"sub": "u1"})
			},
			wantError: "invalid token",
		},
		{
			name: "expired",
			authorization: func(t *testing.T) string {
				return "Bearer " + validToken(t, jwt.MapClaims{"sub": "u1", "exp": testNow.Add(-time.Minute).Unix()})
			},
			wantError: "invalid token",
		},
		{
			name: "no identity",
			authorization: func(t *testing.T) string {
				return "Bearer " + validToken(t, jwt.MapClaims{"scope": "rates"})
			},
			wantError: "token carries no identity",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := NewMiddleware(testSecret, clock)

			rr := serve(t, m, tc.authorization(t))

			require.Equal(t, http.StatusUnauthorized, rr.Code)
			require.Equal(t, "application/json", rr.Header().Get("Content-Type"))
			require.NotEmpty(t, rr.Header().Get("WWW-Authenticate"))
			require.Equal(t, tc.wantError, errorBody(t, rr))
		})
	}
}

func TestMiddleware_CachesVerifiedTokenUntilExpiry(t *testing.T) {
	cache := newMapCache()
	m := NewMiddleware(testSecret, WithCache(cache, 10*time.Minute), WithClock(func() time.Time { return testNow }))

	token := validToken(t, jwt.MapClaims{"sub": "u1", "exp": testNow.Add(2 * time.Minute).Unix()})
	rr := serve(t, m, "Bearer "+token)

	require.Equal(t, http.StatusOK, rr.Code)
	identity, ok := cache.Get(token)
	require.True(t, ok)
	require.Equal(t, "u1", identity)
	require.Equal(t, 2*time.Minute, cache.ttls[token])
}

func TestMiddleware_CacheTTLCapsLongLivedTokens(t *testing.T) {
	cache := newMapCache()
	m := NewMiddleware(testSecret, WithCache(cache, time.Minute), WithClock(func() time.Time { return testNow }))

	token := validToken(t, jwt.MapClaims{"sub": "u1", "exp": testNow.Add(24 * time.Hour).Unix()})
	require.Equal(t, http.StatusOK, serve(t, m, "Bearer "+token).Code)

	require.Equal(t, time.Minute, cache.ttls[token])
}

func TestMiddleware_CacheHitSkipsVerification(t *testing.T) {
	cache := newMapCache()
	cache.Set("opaque-cached-token", "u9", time.Minute)
	m := NewMiddleware(testSecret, WithCache(cache, time.Minute))

	rr := serve(t, m, "Bearer opaque-cached-token")

	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "u9", rr.Body.String())
}

func TestMiddleware_RejectedTokenIsNotCached(t *testing.T) {
	cache := newMapCache()
	m := NewMiddleware(testSecret, WithCache(cache, time.Minute))

	require.Equal(t, http.StatusUnauthorized, serve(t, m, "Bearer not-a-jwt").Code)
	require.Empty(t, cache.entries)
}

func TestIdentityFrom(t *testing.T) {
	_, ok := IdentityFrom(context.Background())
	require.False(t, ok)

	_, ok = IdentityFrom(WithIdentity(context.Background(), ""))
	require.False(t, ok)

	identity, ok := IdentityFrom(WithIdentity(context.Background(), "u1"))
	require.True(t, ok)
	require.Equal(t, "u1", identity)
}
