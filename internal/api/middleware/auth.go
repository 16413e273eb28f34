package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/Harshitk-cp/wumpus/internal/domain"
	"github.com/Harshitk-cp/wumpus/internal/store"
)

type contextKey string

const tenantContextKey contextKey = "tenant"

func TenantFromContext(ctx context.Context) *domain.Tenant {
	t, _ := ctx.Value(tenantContextKey).(*domain.Tenant)
	return t
}

// WithTenant returns a copy of ctx carrying t. The tenant is also recorded
// for the access log of the enclosing request, if any.
func WithTenant(ctx context.Context, t *domain.Tenant) context.Context {
	if info := requestInfoFrom(ctx); info != nil && t != nil {
		info.tenantID = t.ID.String()
	}
	return context.WithValue(ctx, tenantContextKey, t)
}

// APIKeyAuth resolves the bearer key to a tenant. Unknown or malformed keys
// get 401; a failing store gets 503 so clients can retry.
func APIKeyAuth(tenantStore domain.TenantStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			apiKey, msg := bearerKey(r.Header.Get("Authorization"))
			if msg != "" {
				writeError(w, http.StatusUnauthorized, msg)
				return
			}
			if !domain.LooksLikeAPIKey(apiKey) {
				writeError(w, http.StatusUnauthorized, "invalid API key")
				return
			}

			tenant, err := tenantStore.GetByAPIKeyHash(r.Context(), domain.HashAPIKey(apiKey))
			if err != nil {
				if errors.Is(err, store.ErrNotFound) {
					writeError(w, http.StatusUnauthorized, "invalid API key")
					return
				}
				writeError(w, http.StatusServiceUnavailable, "tenant lookup failed")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithTenant(r.Context(), tenant)))
		})
	}
}

// bearerKey extracts the key from an Authorization header, or returns the
// reason it could not.
func bearerKey(header string) (key, problem string) {
	if header == "" {
		return "", "missing authorization header"
	}
	scheme, key, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || key == "" {
		return "", "invalid authorization header format"
	}
	return key, ""
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
