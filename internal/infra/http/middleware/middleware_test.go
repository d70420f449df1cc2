package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

const secret = "test-secret"

func signed(t *testing.T, method jwt.SigningMethod, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func echoUser() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(UserID(r.Context())))
	})
}

func TestAuth(t *testing.T) {
	handler := Auth(secret)(echoUser())
	future := time.Now().Add(time.Hour).Unix()

	tests := []struct {
		name   string
		header string
		status int
		body   string
	}{
		{"valid token", "Bearer " + signed(t, jwt.SigningMethodHS256, jwt.MapClaims{"sub": "user-1", "exp": future}), http.StatusOK, "user-1"},
		{"missing header", "", http.StatusUnauthorized, ""},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized, ""},
		{"expired", "Bearer " + signed(t, jwt.SigningMethodHS256, jwt.MapClaims{"sub": "user-1", "exp": time.Now().Add(-time.Hour).Unix()}), http.StatusUnauthorized, ""},
		{"no expiry", "Bearer " + signed(t, jwt.SigningMethodHS256, jwt.MapClaims{"sub": "user-1"}), http.StatusUnauthorized, ""},
		{"no subject", "Bearer " + signed(t, jwt.SigningMethodHS256, jwt.MapClaims{"exp": future}), http.StatusUnauthorized, ""},
		{"other algorithm", "Bearer " + signed(t, jwt.SigningMethodHS512, jwt.MapClaims{"sub": "user-1", "exp": future}), http.StatusUnauthorized, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/leads", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			if tt.status == http.StatusOK {
				assert.Equal(t, tt.body, rec.Body.String())
			} else {
				assert.Contains(t, rec.Body.String(), "UNAUTHORIZED")
			}
		})
	}
}

func TestAuth_DisabledWithoutSecret(t *testing.T) {
	rec := httptest.NewRecorder()
	Auth("")(echoUser()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/leads", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestRateLimiter(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(2, time.Minute)
	rl.now = func() time.Time { return now }

	assert.True(t, rl.Allow("1.1.1.1"))
	assert.True(t, rl.Allow("1.1.1.1"))
	assert.False(t, rl.Allow("1.1.1.1"))
	assert.True(t, rl.Allow("2.2.2.2"))

	now = now.Add(61 * time.Second)
	assert.True(t, rl.Allow("1.1.1.1"))

	now = now.Add(5 * time.Minute)
	rl.Allow("3.3.3.3")
	assert.NotContains(t, rl.visitors, "2.2.2.2")
}

func TestRateLimiter_Middleware(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	handler := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	req := httptest.NewRequest(http.MethodPost, "/public/leads", nil)
	req.Header.Set("X-Forwarded-For", "10.0.0.1, 172.16.0.1")

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, req)
	second := httptest.NewRecorder()
	handler.ServeHTTP(second, req)

	assert.Equal(t, http.StatusCreated, first.Code)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, "60", second.Header().Get("Retry-After"))
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.10:5555"
	assert.Equal(t, "192.0.2.10", ClientIP(req))

	req.Header.Set("X-Real-IP", "198.51.100.2")
	req.Header.Set("X-Forwarded-For", "203.0.113.5, 10.0.0.1")
	assert.Equal(t, "192.0.2.10", ClientIP(req))

	req.RemoteAddr = "192.0.2.11"
	assert.Equal(t, "192.0.2.11", ClientIP(req))
}

func TestRateLimiter_IgnoresForwardedHeaders(t *testing.T) {
	limited := NewRateLimiter(1, time.Minute).Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	codes := make([]int, 0, 3)
	for _, hop := range []string{"203.0.113.1", "203.0.113.2", "203.0.113.3"} {
		req := httptest.NewRequest(http.MethodPost, "/public/leads", nil)
		req.RemoteAddr = "192.0.2.10:5555"
		req.Header.Set("X-Forwarded-For", hop)
		rec := httptest.NewRecorder()
		limited.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusTooManyRequests, http.StatusTooManyRequests}, codes)
}

func TestMetrics_UsesRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Metrics)
	r.Get("/api/leads/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(http.MethodGet, "/api/leads/{id}", "404"))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/leads/123", nil))
	after := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(http.MethodGet, "/api/leads/{id}", "404"))

	assert.Equal(t, before+1, after)
}

func TestRecorder(t *testing.T) {
	before := testutil.ToFloat64(conferenceEvents.WithLabelValues("conference-end"))
	Recorder{}.ConferenceEvent("conference-end")
	assert.Equal(t, before+1, testutil.ToFloat64(conferenceEvents.WithLabelValues("conference-end")))

	before = testutil.ToFloat64(funnelEmailsSent.WithLabelValues("sent"))
	Recorder{}.FunnelEmail("sent")
	assert.Equal(t, before+1, testutil.ToFloat64(funnelEmailsSent.WithLabelValues("sent")))
}

func TestRequestLogger(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	handler := RequestLogger(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("boom"))
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/deals", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req.WithContext(WithUserID(req.Context(), "user-9")))

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, zap.ErrorLevel, entry.Level)
	fields := entry.ContextMap()
	assert.Equal(t, int64(500), fields["status"])
	assert.Equal(t, int64(4), fields["bytes"])
	assert.Equal(t, "user-9", fields["user_id"])
}
