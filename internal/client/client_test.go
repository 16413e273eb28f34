package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Harshitk-cp/wumpus/internal/agent"
	"github.com/Harshitk-cp/wumpus/internal/api"
	"github.com/Harshitk-cp/wumpus/internal/domain"
	"github.com/Harshitk-cp/wumpus/internal/store/kv"
	"github.com/Harshitk-cp/wumpus/internal/world"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func c(x, y int) domain.Coordinate { return domain.Coordinate{X: x, Y: y} }

// newClient starts a service on an in-memory store and returns a client
// authenticated as a fresh tenant.
func newClient(t *testing.T) *Client {
	t.Helper()
	t.Setenv("RATE_LIMIT_BURST", "100000")
	t.Setenv("RATE_LIMIT_RPS", "100000")

	db, err := kv.Open(kv.InMemoryConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	app := api.NewApp(api.Backend{
		Tenants:  kv.NewTenantStore(db),
		Sessions: kv.NewSessionStore(db),
	}, zap.NewNop())
	srv := httptest.NewServer(app.Router)
	t.Cleanup(srv.Close)

	creds, err := New(srv.URL, "").CreateTenant(context.Background(), "client-test")
	require.NoError(t, err)
	return New(srv.URL, creds.APIKey, WithHTTPClient(srv.Client()))
}

func TestClientSessionRoundTrip(t *testing.T) {
	cl := newClient(t)
	ctx := context.Background()

	sess, err := cl.CreateSession(ctx, 3, "round-trip")
	require.NoError(t, err)
	assert.Equal(t, 3, sess.GridSize)

	sess, err = cl.AssertObservations(ctx, sess.ID, []domain.Observation{{Cell: domain.Start}})
	require.NoError(t, err)
	assert.Len(t, sess.Facts, 2)

	report, err := cl.Safe(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, []domain.Coordinate{c(1, 1), c(1, 2), c(2, 1)}, report.Safe)

	sess, err = cl.SetGridSize(ctx, sess.ID, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, sess.GridSize)

	sess, err = cl.MarkWumpusDead(ctx, sess.ID)
	require.NoError(t, err)
	assert.True(t, sess.WumpusDead)

	sess, err = cl.Reset(ctx, sess.ID)
	require.NoError(t, err)
	assert.Empty(t, sess.Facts)

	got, err := cl.GetSession(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, sess.ID, got.ID)

	require.NoError(t, cl.DeleteSession(ctx, sess.ID))
	_, err = cl.GetSession(ctx, sess.ID)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "session not found", apiErr.Message)
}

func TestClientRejectsBadKey(t *testing.T) {
	cl := newClient(t)
	cl.apiKey = "wk_wrong"

	_, err := cl.CreateSession(context.Background(), 3, "")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
}

func TestOracleMatchesEngine(t *testing.T) {
	cl := newClient(t)
	ctx := context.Background()

	oracle, err := NewOracle(ctx, cl, 3, "")
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, oracle.SessionID())

	evidence := []domain.Evidence{
		{GridSize: 3},
		{GridSize: 3, Facts: []domain.PerceptFact{
			{Cell: domain.Start, Kind: domain.BreezeAbsent},
			{Cell: domain.Start, Kind: domain.StenchPresent},
		}},
		{GridSize: 3, WumpusDead: true, Facts: []domain.PerceptFact{
			{Cell: domain.Start, Kind: domain.BreezeAbsent},
			{Cell: domain.Start, Kind: domain.StenchPresent},
		}},
		{GridSize: 2, Facts: []domain.PerceptFact{
			{Cell: c(2, 1), Kind: domain.BreezePresent},
		}},
	}
	for i, ev := range evidence {
		want, err := agent.EngineOracle{}.SafeCells(ctx, ev)
		require.NoError(t, err)
		got, err := oracle.SafeCells(ctx, ev)
		require.NoError(t, err, "case %d", i)
		assert.Equal(t, want, got, "case %d", i)
	}

	require.NoError(t, oracle.Close(ctx))
}

func TestRemoteExplorerEpisode(t *testing.T) {
	cl := newClient(t)
	ctx := context.Background()

	w, err := world.New(world.Config{Size: 3, PitProbability: 0.2, Seed: 7})
	require.NoError(t, err)
	oracle, err := NewOracle(ctx, cl, 3, "episode-7")
	require.NoError(t, err)
	e := agent.NewExplorer(3, oracle, zap.NewNop())

	p := w.InitialPercept()
	for step := 0; step < 200 && !w.Terminated(); step++ {
		p = w.Step(e.Act(ctx, p)).Percept
	}
	require.True(t, w.Terminated())
	assert.False(t, w.Outcome().Died())
	assert.Zero(t, e.OracleFailures())
}
