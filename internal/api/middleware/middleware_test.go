package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Harshitk-cp/wumpus/internal/domain"
	"github.com/Harshitk-cp/wumpus/internal/store"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type stubTenantStore struct {
	tenants map[string]*domain.Tenant
	err     error
}

func (s *stubTenantStore) Create(ctx context.Context, t *domain.Tenant) error { return nil }

func (s *stubTenantStore) GetByAPIKeyHash(ctx context.Context, hash string) (*domain.Tenant, error) {
	if s.err != nil {
		return nil, s.err
	}
	t, ok := s.tenants[hash]
	if !ok {
		return nil, store.ErrNotFound
	}
	return t, nil
}

func TestAPIKeyAuth(t *testing.T) {
	tenant := &domain.Tenant{ID: uuid.New(), Name: "acme"}
	st := &stubTenantStore{tenants: map[string]*domain.Tenant{domain.HashAPIKey("wk_good"): tenant}}

	var seen *domain.Tenant
	h := APIKeyAuth(st)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = TenantFromContext(r.Context())
	}))

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic wk_good", http.StatusUnauthorized},
		{"no key", "Bearer ", http.StatusUnauthorized},
		{"unknown key", "Bearer wk_bad", http.StatusUnauthorized},
		{"valid", "Bearer wk_good", http.StatusOK},
		{"case insensitive scheme", "bearer wk_good", http.StatusOK},
		{"foreign key format", "Bearer mz_good", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = nil
			req := httptest.NewRequest(http.MethodGet, "/v1/sessions", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.want, rec.Code)
			if tt.want == http.StatusOK {
				assert.Equal(t, tenant, seen)
			} else {
				assert.Nil(t, seen)
			}
		})
	}
}

func TestAPIKeyAuthStoreFailure(t *testing.T) {
	st := &stubTenantStore{err: assert.AnError}
	h := APIKeyAuth(st)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer wk_x")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRequestID(t *testing.T) {
	var got string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = RequestIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", got)
	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, strings.Repeat("x", maxRequestIDLen+1))
	h.ServeHTTP(httptest.NewRecorder(), req)
	_, err := uuid.Parse(got)
	assert.NoError(t, err, "oversized id should be replaced by a uuid")

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc\ninjected")
	h.ServeHTTP(httptest.NewRecorder(), req)
	_, err = uuid.Parse(got)
	assert.NoError(t, err, "ids with control characters should be replaced")
}

func TestLoggingSeesTenant(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	tenant := &domain.Tenant{ID: uuid.New()}

	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = WithTenant(r.Context(), tenant)
		w.WriteHeader(http.StatusTeapot)
	})
	h := Logging(zap.New(core))(inner)
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v1/sessions", nil))

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "http request", entry.Message)
	assert.Equal(t, tenant.ID.String(), entry.ContextMap()["tenant_id"])
	assert.EqualValues(t, http.StatusTeapot, entry.ContextMap()["status"])
}

func TestLoggingLevels(t *testing.T) {
	tests := []struct {
		status int
		level  zapcore.Level
	}{
		{http.StatusOK, zap.InfoLevel},
		{http.StatusTooManyRequests, zap.WarnLevel},
		{http.StatusServiceUnavailable, zap.ErrorLevel},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			core, logs := observer.New(zap.DebugLevel)
			h := Logging(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
			require.Equal(t, 1, logs.Len())
			assert.Equal(t, tt.level, logs.All()[0].Level)
		})
	}
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(1, 2)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	h := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	codes := make([]int, 0, 3)
	for range 3 {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Real-IP", "10.0.0.1")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	assert.True(t, rl.Allow("10.0.0.2"), "other clients have their own bucket")

	now = now.Add(time.Hour)
	rl.Allow("10.0.0.3")
	assert.Equal(t, 2, rl.Cleanup(10*time.Minute))
}

func TestRateLimiterRunCleanupStops(t *testing.T) {
	defer goleak.VerifyNone(t)

	rl := NewRateLimiter(10, 1)
	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		rl.RunCleanup(time.Millisecond, time.Minute, stop)
		close(done)
	}()
	close(stop)
	select {
	case <-done:
	case <-time.After(time.Second):
		require.FailNow(t, "cleanup loop did not stop")
	}
}

func TestStatusClass(t *testing.T) {
	assert.Equal(t, "2xx", statusClass(http.StatusOK))
	assert.Equal(t, "4xx", statusClass(http.StatusNotFound))
	assert.Equal(t, "5xx", statusClass(http.StatusGatewayTimeout))
}
