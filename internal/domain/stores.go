package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type TenantStore interface {
	Create(ctx context.Context, t *Tenant) error
	GetByAPIKeyHash(ctx context.Context, apiKeyHash string) (*Tenant, error)
}

// SessionStore persists percept evidence per session. Facts are an
// append-only set: re-asserting an existing fact is a no-op.
//
// Implementations keep every stored fact on the session's board atomically:
// AddFacts refuses facts outside the current grid size and SetGridSize
// refuses a size that would leave a stored fact outside it.
type SessionStore interface {
	Create(ctx context.Context, s *Session) error
	GetByID(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) (*Session, error)
	SetGridSize(ctx context.Context, id uuid.UUID, tenantID uuid.UUID, size int) error
	AddFacts(ctx context.Context, id uuid.UUID, tenantID uuid.UUID, facts []PerceptFact) error
	MarkWumpusDead(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) error
	Reset(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) error
	// DeleteIdle removes sessions not updated since before.
	DeleteIdle(ctx context.Context, before time.Time) (int64, error)
}
