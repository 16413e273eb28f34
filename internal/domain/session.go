package domain

import (
	"time"

	"github.com/google/uuid"
)

// Session is a persisted percept store owned by a tenant. It holds evidence
// only; world models are re-derived on every query.
type Session struct {
	ID         uuid.UUID     `json:"id"`
	TenantID   uuid.UUID     `json:"tenant_id,omitempty"`
	ExternalID string        `json:"external_id,omitempty"`
	GridSize   int           `json:"grid_size"`
	WumpusDead bool          `json:"wumpus_dead"`
	Facts      []PerceptFact `json:"facts"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`
}

func (s *Session) Evidence() Evidence {
	facts := make([]PerceptFact, len(s.Facts))
	copy(facts, s.Facts)
	return Evidence{GridSize: s.GridSize, Facts: facts, WumpusDead: s.WumpusDead}
}

// SafetyReport is the externally visible answer to a safety query.
type SafetyReport struct {
	SessionID  uuid.UUID    `json:"session_id"`
	Safe       []Coordinate `json:"safe"`
	Models     int          `json:"models"`
	Candidates int          `json:"candidates"`
	ElapsedMS  float64      `json:"elapsed_ms"`
}
