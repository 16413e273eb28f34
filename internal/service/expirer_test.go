package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Harshitk-cp/wumpus/internal/domain"
	"github.com/stretchr/testify/mock"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

// idleStore mocks the sweep method; other SessionStore methods are unused.
type idleStore struct {
	mock.Mock
	domain.SessionStore
}

func (m *idleStore) DeleteIdle(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)
	return args.Get(0).(int64), args.Error(1)
}

func TestSessionExpirer_RunUsesTTLCutoff(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	st := new(idleStore)
	st.On("DeleteIdle", mock.Anything, now.Add(-2*time.Hour)).Return(int64(3), nil).Once()

	e := NewSessionExpirer(st, zap.NewNop())
	e.SetTTL(2 * time.Hour)
	e.now = func() time.Time { return now }

	e.run(context.Background())
	st.AssertExpectations(t)
}

func TestSessionExpirer_RunStoreError(t *testing.T) {
	st := new(idleStore)
	st.On("DeleteIdle", mock.Anything, mock.AnythingOfType("time.Time")).
		Return(int64(0), errors.New("disk gone")).Once()

	e := NewSessionExpirer(st, zap.NewNop())
	e.run(context.Background())
	st.AssertExpectations(t)
}

func TestSessionExpirer_StartStop(t *testing.T) {
	defer goleak.VerifyNone(t)

	swept := make(chan struct{}, 1)
	st := new(idleStore)
	st.On("DeleteIdle", mock.Anything, mock.AnythingOfType("time.Time")).
		Run(func(mock.Arguments) {
			select {
			case swept <- struct{}{}:
			default:
			}
		}).
		Return(int64(0), nil)

	e := NewSessionExpirer(st, zap.NewNop())
	e.SetInterval(5 * time.Millisecond)
	e.Start()

	select {
	case <-swept:
	case <-time.After(2 * time.Second):
		t.Fatal("expirer never swept")
	}
	e.Stop()
}
