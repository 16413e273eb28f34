package kv

import (
	"context"
	"errors"
	"time"

	"github.com/Harshitk-cp/wumpus/internal/domain"
	"github.com/Harshitk-cp/wumpus/internal/store"
	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

type TenantStore struct {
	db *badger.DB
}

func NewTenantStore(db *badger.DB) *TenantStore {
	return &TenantStore{db: db}
}

// tenantRecord keeps the key hash, which domain.Tenant hides from JSON.
type tenantRecord struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	APIKeyHash string    `json:"api_key_hash"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (s *TenantStore) Create(ctx context.Context, t *domain.Tenant) error {
	return s.db.Update(func(txn *badger.Txn) error {
		keyIdx := "tenant_key/" + t.APIKeyHash
		taken, err := exists(txn, keyIdx)
		if err != nil {
			return err
		}
		if taken {
			return store.ErrConflict
		}

		now := time.Now().UTC()
		t.ID = uuid.New()
		t.CreatedAt, t.UpdatedAt = now, now

		rec := tenantRecord{ID: t.ID, Name: t.Name, APIKeyHash: t.APIKeyHash, CreatedAt: now, UpdatedAt: now}
		if err := setJSON(txn, "tenant/"+t.ID.String(), rec); err != nil {
			return err
		}
		return txn.Set([]byte(keyIdx), []byte(t.ID.String()))
	})
}

func (s *TenantStore) GetByAPIKeyHash(ctx context.Context, apiKeyHash string) (*domain.Tenant, error) {
	var rec tenantRecord
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte("tenant_key/" + apiKeyHash))
		if err != nil {
			return err
		}
		id, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		return getJSON(txn, "tenant/"+string(id), &rec)
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &domain.Tenant{
		ID:         rec.ID,
		Name:       rec.Name,
		APIKeyHash: rec.APIKeyHash,
		CreatedAt:  rec.CreatedAt,
		UpdatedAt:  rec.UpdatedAt,
	}, nil
}
