package kv

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Harshitk-cp/wumpus/internal/domain"
	"github.com/Harshitk-cp/wumpus/internal/store"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) (*TenantStore, *SessionStore) {
	t.Helper()
	db, err := Open(InMemoryConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewTenantStore(db), NewSessionStore(db)
}

func TestTenantStore_CreateAndLookup(t *testing.T) {
	tenants, _ := openTestDB(t)
	ctx := context.Background()

	tenant := &domain.Tenant{Name: "acme", APIKeyHash: "hash-1"}
	require.NoError(t, tenants.Create(ctx, tenant))
	assert.NotEqual(t, uuid.Nil, tenant.ID)

	found, err := tenants.GetByAPIKeyHash(ctx, "hash-1")
	require.NoError(t, err)
	assert.Equal(t, tenant.ID, found.ID)
	assert.Equal(t, "acme", found.Name)
	assert.Equal(t, "hash-1", found.APIKeyHash)

	_, err = tenants.GetByAPIKeyHash(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)

	err = tenants.Create(ctx, &domain.Tenant{Name: "dup", APIKeyHash: "hash-1"})
	assert.ErrorIs(t, err, store.ErrConflict)
}

func TestSessionStore_Lifecycle(t *testing.T) {
	_, sessions := openTestDB(t)
	ctx := context.Background()
	tenantID := uuid.New()

	sess := &domain.Session{TenantID: tenantID, ExternalID: "episode-1", GridSize: 3}
	require.NoError(t, sessions.Create(ctx, sess))
	require.NotEqual(t, uuid.Nil, sess.ID)

	facts := []domain.PerceptFact{
		{Cell: domain.Coordinate{X: 2, Y: 1}, Kind: domain.BreezePresent},
		{Cell: domain.Coordinate{X: 1, Y: 1}, Kind: domain.BreezeAbsent},
	}
	require.NoError(t, sessions.AddFacts(ctx, sess.ID, tenantID, facts))
	require.NoError(t, sessions.AddFacts(ctx, sess.ID, tenantID, facts[:1]))
	require.NoError(t, sessions.MarkWumpusDead(ctx, sess.ID, tenantID))
	require.NoError(t, sessions.SetGridSize(ctx, sess.ID, tenantID, 4))

	got, err := sessions.GetByID(ctx, sess.ID, tenantID)
	require.NoError(t, err)
	assert.Equal(t, 4, got.GridSize)
	assert.True(t, got.WumpusDead)
	assert.Equal(t, []domain.PerceptFact{facts[1], facts[0]}, got.Facts)

	require.NoError(t, sessions.Reset(ctx, sess.ID, tenantID))
	got, err = sessions.GetByID(ctx, sess.ID, tenantID)
	require.NoError(t, err)
	assert.False(t, got.WumpusDead)
	assert.Empty(t, got.Facts)
	assert.Equal(t, 4, got.GridSize)

	require.NoError(t, sessions.Delete(ctx, sess.ID, tenantID))
	_, err = sessions.GetByID(ctx, sess.ID, tenantID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	// The external id is free again once the session is gone.
	require.NoError(t, sessions.Create(ctx, &domain.Session{TenantID: tenantID, ExternalID: "episode-1", GridSize: 3}))
}

func TestSessionStore_ExternalIDConflict(t *testing.T) {
	_, sessions := openTestDB(t)
	ctx := context.Background()
	tenantID := uuid.New()

	require.NoError(t, sessions.Create(ctx, &domain.Session{TenantID: tenantID, ExternalID: "e", GridSize: 3}))
	err := sessions.Create(ctx, &domain.Session{TenantID: tenantID, ExternalID: "e", GridSize: 3})
	assert.ErrorIs(t, err, store.ErrConflict)

	// Another tenant may reuse the id, and blank ids never collide.
	assert.NoError(t, sessions.Create(ctx, &domain.Session{TenantID: uuid.New(), ExternalID: "e", GridSize: 3}))
	assert.NoError(t, sessions.Create(ctx, &domain.Session{TenantID: tenantID, GridSize: 3}))
	assert.NoError(t, sessions.Create(ctx, &domain.Session{TenantID: tenantID, GridSize: 3}))
}

func TestSessionStore_TenantIsolation(t *testing.T) {
	_, sessions := openTestDB(t)
	ctx := context.Background()

	sess := &domain.Session{TenantID: uuid.New(), GridSize: 3}
	require.NoError(t, sessions.Create(ctx, sess))

	other := uuid.New()
	_, err := sessions.GetByID(ctx, sess.ID, other)
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.ErrorIs(t, sessions.MarkWumpusDead(ctx, sess.ID, other), store.ErrNotFound)
	assert.ErrorIs(t, sessions.Delete(ctx, sess.ID, other), store.ErrNotFound)
}

func TestSessionStore_DeleteIdle(t *testing.T) {
	_, sessions := openTestDB(t)
	ctx := context.Background()
	tenantID := uuid.New()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	sessions.now = func() time.Time { return base }
	stale := &domain.Session{TenantID: tenantID, ExternalID: "stale", GridSize: 3}
	require.NoError(t, sessions.Create(ctx, stale))

	sessions.now = func() time.Time { return base.Add(2 * time.Hour) }
	fresh := &domain.Session{TenantID: tenantID, GridSize: 3}
	require.NoError(t, sessions.Create(ctx, fresh))

	deleted, err := sessions.DeleteIdle(ctx, base.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	_, err = sessions.GetByID(ctx, stale.ID, tenantID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = sessions.GetByID(ctx, fresh.ID, tenantID)
	assert.NoError(t, err)
}

func TestSessionStore_GridBound(t *testing.T) {
	_, sessions := openTestDB(t)
	ctx := context.Background()
	tenantID := uuid.New()

	sess := &domain.Session{TenantID: tenantID, GridSize: 3}
	require.NoError(t, sessions.Create(ctx, sess))

	corner := domain.PerceptFact{Cell: domain.Coordinate{X: 3, Y: 3}, Kind: domain.StenchAbsent}
	offBoard := domain.PerceptFact{Cell: domain.Coordinate{X: 4, Y: 1}, Kind: domain.BreezeAbsent}

	err := sessions.AddFacts(ctx, sess.ID, tenantID, []domain.PerceptFact{corner, offBoard})
	assert.ErrorIs(t, err, store.ErrOutOfBounds)
	got, err := sessions.GetByID(ctx, sess.ID, tenantID)
	require.NoError(t, err)
	assert.Empty(t, got.Facts, "a rejected batch stores nothing")

	require.NoError(t, sessions.AddFacts(ctx, sess.ID, tenantID, []domain.PerceptFact{corner}))
	assert.ErrorIs(t, sessions.SetGridSize(ctx, sess.ID, tenantID, 2), store.ErrOutOfBounds)
	require.NoError(t, sessions.SetGridSize(ctx, sess.ID, tenantID, 4))

	got, err = sessions.GetByID(ctx, sess.ID, tenantID)
	require.NoError(t, err)
	assert.Equal(t, 4, got.GridSize)
}

func TestSessionStore_ConcurrentResizeNeverStrandsFacts(t *testing.T) {
	_, sessions := openTestDB(t)
	ctx := context.Background()
	tenantID := uuid.New()

	corner := []domain.PerceptFact{{Cell: domain.Coordinate{X: 4, Y: 4}, Kind: domain.BreezeAbsent}}
	for range 50 {
		sess := &domain.Session{TenantID: tenantID, GridSize: 4}
		require.NoError(t, sessions.Create(ctx, sess))

		var wg sync.WaitGroup
		var addErr, resizeErr error
		wg.Add(2)
		go func() {
			defer wg.Done()
			addErr = sessions.AddFacts(ctx, sess.ID, tenantID, corner)
		}()
		go func() {
			defer wg.Done()
			resizeErr = sessions.SetGridSize(ctx, sess.ID, tenantID, 2)
		}()
		wg.Wait()

		got, err := sessions.GetByID(ctx, sess.ID, tenantID)
		require.NoError(t, err)
		for _, f := range got.Facts {
			assert.True(t, f.Cell.InBounds(got.GridSize), "fact %v stranded on a %d grid", f, got.GridSize)
		}
		// Exactly one of the two can win.
		assert.True(t, (addErr == nil) != (resizeErr == nil), "add=%v resize=%v", addErr, resizeErr)
	}
}
