package store

import (
	"context"
	"fmt"
	"time"

	"github.com/Harshitk-cp/wumpus/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type SessionStore struct {
	db *pgxpool.Pool
}

func NewSessionStore(db *pgxpool.Pool) *SessionStore {
	return &SessionStore{db: db}
}

func (s *SessionStore) Create(ctx context.Context, sess *domain.Session) error {
	err := s.db.QueryRow(ctx,
		`INSERT INTO sessions (tenant_id, external_id, grid_size)
		 VALUES ($1, NULLIF($2, ''), $3)
		 RETURNING id, wumpus_dead, created_at, updated_at`,
		sess.TenantID, sess.ExternalID, sess.GridSize,
	).Scan(&sess.ID, &sess.WumpusDead, &sess.CreatedAt, &sess.UpdatedAt)
	if err != nil {
		return translate(err)
	}
	sess.Facts = []domain.PerceptFact{}
	return nil
}

func (s *SessionStore) GetByID(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) (*domain.Session, error) {
	sess := &domain.Session{}
	err := s.db.QueryRow(ctx,
		`SELECT id, tenant_id, COALESCE(external_id, ''), grid_size, wumpus_dead, created_at, updated_at
		 FROM sessions WHERE id = $1 AND tenant_id = $2`,
		id, tenantID,
	).Scan(&sess.ID, &sess.TenantID, &sess.ExternalID, &sess.GridSize, &sess.WumpusDead, &sess.CreatedAt, &sess.UpdatedAt)
	if err != nil {
		return nil, translate(err)
	}

	rows, err := s.db.Query(ctx,
		`SELECT x, y, kind FROM percept_facts
		 WHERE session_id = $1
		 ORDER BY x, y, kind`,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("query facts: %w", err)
	}
	defer rows.Close()

	sess.Facts = []domain.PerceptFact{}
	for rows.Next() {
		var f domain.PerceptFact
		var kind string
		if err := rows.Scan(&f.Cell.X, &f.Cell.Y, &kind); err != nil {
			return nil, fmt.Errorf("scan fact: %w", err)
		}
		f.Kind = domain.PerceptKind(kind)
		sess.Facts = append(sess.Facts, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sess, nil
}

// SetGridSize resizes the board. The session row is locked first so the
// fact check below sees every committed AddFacts; a size that would strand
// a fact returns ErrOutOfBounds.
func (s *SessionStore) SetGridSize(ctx context.Context, id uuid.UUID, tenantID uuid.UUID, size int) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := lockSession(ctx, tx, id, tenantID); err != nil {
		return err
	}

	var stranded bool
	if err := tx.QueryRow(ctx,
		`SELECT EXISTS (
		   SELECT 1 FROM percept_facts
		   WHERE session_id = $1 AND (x > $2 OR y > $2))`,
		id, size,
	).Scan(&stranded); err != nil {
		return fmt.Errorf("check facts: %w", err)
	}
	if stranded {
		return ErrOutOfBounds
	}

	if _, err := tx.Exec(ctx,
		`UPDATE sessions SET grid_size = $2, updated_at = NOW() WHERE id = $1`,
		id, size,
	); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// AddFacts inserts facts in one transaction; existing facts are left as is.
// The grid size is read under a row lock, so a concurrent resize either
// happens before (and the facts are checked against it) or waits.
func (s *SessionStore) AddFacts(ctx context.Context, id uuid.UUID, tenantID uuid.UUID, facts []domain.PerceptFact) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	size, err := lockSession(ctx, tx, id, tenantID)
	if err != nil {
		return err
	}
	for _, f := range facts {
		if !f.Cell.InBounds(size) {
			return fmt.Errorf("%w: %s %s on a %dx%d grid", ErrOutOfBounds, f.Kind, f.Cell, size, size)
		}
	}

	if _, err := tx.Exec(ctx, `UPDATE sessions SET updated_at = NOW() WHERE id = $1`, id); err != nil {
		return err
	}

	batch := &pgx.Batch{}
	for _, f := range facts {
		batch.Queue(
			`INSERT INTO percept_facts (session_id, x, y, kind)
			 VALUES ($1, $2, $3, $4)
			 ON CONFLICT DO NOTHING`,
			id, f.Cell.X, f.Cell.Y, string(f.Kind),
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert facts: %w", err)
	}
	return tx.Commit(ctx)
}

func (s *SessionStore) MarkWumpusDead(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) error {
	return s.touch(ctx, s.db,
		`UPDATE sessions SET wumpus_dead = TRUE, updated_at = NOW()
		 WHERE id = $1 AND tenant_id = $2`,
		id, tenantID,
	)
}

// Reset clears every fact and the dead flag; grid size is kept.
func (s *SessionStore) Reset(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := s.touch(ctx, tx,
		`UPDATE sessions SET wumpus_dead = FALSE, updated_at = NOW()
		 WHERE id = $1 AND tenant_id = $2`,
		id, tenantID,
	); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM percept_facts WHERE session_id = $1`, id); err != nil {
		return fmt.Errorf("delete facts: %w", err)
	}
	return tx.Commit(ctx)
}

func (s *SessionStore) Delete(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) error {
	return s.touch(ctx, s.db,
		`DELETE FROM sessions WHERE id = $1 AND tenant_id = $2`,
		id, tenantID,
	)
}

func (s *SessionStore) DeleteIdle(ctx context.Context, before time.Time) (int64, error) {
	tag, err := s.db.Exec(ctx, `DELETE FROM sessions WHERE updated_at < $1`, before)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// lockSession takes the session row lock for the rest of tx and returns the
// grid size it holds.
func lockSession(ctx context.Context, tx pgx.Tx, id uuid.UUID, tenantID uuid.UUID) (int, error) {
	var size int
	err := tx.QueryRow(ctx,
		`SELECT grid_size FROM sessions WHERE id = $1 AND tenant_id = $2 FOR UPDATE`,
		id, tenantID,
	).Scan(&size)
	if err != nil {
		return 0, translate(err)
	}
	return size, nil
}

type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// touch runs a single-row statement and maps zero affected rows to ErrNotFound.
func (s *SessionStore) touch(ctx context.Context, db execer, sql string, args ...any) error {
	tag, err := db.Exec(ctx, sql, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
