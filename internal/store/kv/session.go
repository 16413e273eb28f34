package kv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Harshitk-cp/wumpus/internal/domain"
	"github.com/Harshitk-cp/wumpus/internal/store"
	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

const sessionPrefix = "session/"

type SessionStore struct {
	db  *badger.DB
	now func() time.Time
}

func NewSessionStore(db *badger.DB) *SessionStore {
	return &SessionStore{db: db, now: func() time.Time { return time.Now().UTC() }}
}

func sessionKey(id uuid.UUID) string { return sessionPrefix + id.String() }

func externalKey(tenantID uuid.UUID, externalID string) string {
	return "session_ext/" + tenantID.String() + "/" + externalID
}

func (s *SessionStore) Create(ctx context.Context, sess *domain.Session) error {
	return s.db.Update(func(txn *badger.Txn) error {
		if sess.ExternalID != "" {
			taken, err := exists(txn, externalKey(sess.TenantID, sess.ExternalID))
			if err != nil {
				return err
			}
			if taken {
				return store.ErrConflict
			}
		}

		now := s.now()
		sess.ID = uuid.New()
		sess.WumpusDead = false
		sess.Facts = []domain.PerceptFact{}
		sess.CreatedAt, sess.UpdatedAt = now, now
		if sess.ExternalID != "" {
			if err := txn.Set([]byte(externalKey(sess.TenantID, sess.ExternalID)), []byte(sess.ID.String())); err != nil {
				return err
			}
		}
		return setJSON(txn, sessionKey(sess.ID), sess)
	})
}

func (s *SessionStore) GetByID(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) (*domain.Session, error) {
	var sess *domain.Session
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		sess, err = load(txn, id, tenantID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return sess, nil
}

// SetGridSize refuses a size that would leave a stored fact off the board.
func (s *SessionStore) SetGridSize(ctx context.Context, id uuid.UUID, tenantID uuid.UUID, size int) error {
	return s.update(id, tenantID, func(sess *domain.Session) error {
		for _, f := range sess.Facts {
			if !f.Cell.InBounds(size) {
				return fmt.Errorf("%w: %s %s on a %dx%d grid", store.ErrOutOfBounds, f.Kind, f.Cell, size, size)
			}
		}
		sess.GridSize = size
		return nil
	})
}

// AddFacts checks facts against the grid size read in the same transaction.
func (s *SessionStore) AddFacts(ctx context.Context, id uuid.UUID, tenantID uuid.UUID, facts []domain.PerceptFact) error {
	return s.update(id, tenantID, func(sess *domain.Session) error {
		for _, f := range facts {
			if !f.Cell.InBounds(sess.GridSize) {
				return fmt.Errorf("%w: %s %s on a %dx%d grid", store.ErrOutOfBounds, f.Kind, f.Cell, sess.GridSize, sess.GridSize)
			}
		}
		seen := make(map[domain.PerceptFact]bool, len(sess.Facts)+len(facts))
		for _, f := range sess.Facts {
			seen[f] = true
		}
		for _, f := range facts {
			if !seen[f] {
				seen[f] = true
				sess.Facts = append(sess.Facts, f)
			}
		}
		domain.SortFacts(sess.Facts)
		return nil
	})
}

func (s *SessionStore) MarkWumpusDead(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) error {
	return s.update(id, tenantID, func(sess *domain.Session) error {
		sess.WumpusDead = true
		return nil
	})
}

func (s *SessionStore) Reset(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) error {
	return s.update(id, tenantID, func(sess *domain.Session) error {
		sess.Facts = []domain.PerceptFact{}
		sess.WumpusDead = false
		return nil
	})
}

func (s *SessionStore) Delete(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) error {
	return s.db.Update(func(txn *badger.Txn) error {
		sess, err := load(txn, id, tenantID)
		if err != nil {
			return err
		}
		return remove(txn, sess)
	})
}

func (s *SessionStore) DeleteIdle(ctx context.Context, before time.Time) (int64, error) {
	var deleted int64
	err := s.db.Update(func(txn *badger.Txn) error {
		var idle []*domain.Session

		it := txn.NewIterator(badger.DefaultIteratorOptions)
		prefix := []byte(sessionPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			sess := &domain.Session{}
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, sess)
			}); err != nil {
				it.Close()
				return err
			}
			if sess.UpdatedAt.Before(before) {
				idle = append(idle, sess)
			}
		}
		it.Close()

		for _, sess := range idle {
			if err := remove(txn, sess); err != nil {
				return err
			}
			deleted++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return deleted, nil
}

// maxTxnAttempts bounds retries of a read-modify-write that lost a race
// with another transaction on the same session.
const maxTxnAttempts = 5

// update applies mutate to the stored session in one transaction. A mutate
// error aborts without writing. Badger detects concurrent writers at commit;
// the loser re-reads and re-applies, so checks in mutate always run against
// the state it commits over.
func (s *SessionStore) update(id uuid.UUID, tenantID uuid.UUID, mutate func(*domain.Session) error) error {
	var err error
	for range maxTxnAttempts {
		err = s.db.Update(func(txn *badger.Txn) error {
			sess, err := load(txn, id, tenantID)
			if err != nil {
				return err
			}
			if err := mutate(sess); err != nil {
				return err
			}
			sess.UpdatedAt = s.now()
			return setJSON(txn, sessionKey(id), sess)
		})
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
	}
	return err
}

func load(txn *badger.Txn, id uuid.UUID, tenantID uuid.UUID) (*domain.Session, error) {
	sess := &domain.Session{}
	if err := getJSON(txn, sessionKey(id), sess); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	if sess.TenantID != tenantID {
		return nil, store.ErrNotFound
	}
	if sess.Facts == nil {
		sess.Facts = []domain.PerceptFact{}
	}
	return sess, nil
}

func remove(txn *badger.Txn, sess *domain.Session) error {
	if sess.ExternalID != "" {
		if err := txn.Delete([]byte(externalKey(sess.TenantID, sess.ExternalID))); err != nil {
			return err
		}
	}
	return txn.Delete([]byte(sessionKey(sess.ID)))
}
