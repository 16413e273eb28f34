package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"time"

	"github.com/Harshitk-cp/wumpus/internal/domain"
	"github.com/Harshitk-cp/wumpus/internal/inference"
	"github.com/Harshitk-cp/wumpus/internal/metrics"
	"github.com/Harshitk-cp/wumpus/internal/satcheck"
	"github.com/Harshitk-cp/wumpus/internal/store"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const defaultQueryTimeout = 30 * time.Second

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionConflict = errors.New("session with this external_id already exists")
	ErrInvalidEvidence = errors.New("invalid evidence")
	ErrGridTooLarge    = errors.New("grid size exceeds the configured maximum")
	ErrQueryTimeout    = errors.New("safety query timed out")
)

// SessionService owns the evidence lifecycle of a session. Every query
// rebuilds a knowledge base from the stored evidence; nothing derived from it
// is cached.
//
// Mutations of one session, and the evidence read of a query, run one at a
// time within a process. Across processes the store enforces the board bound
// itself, so a fact is never stored outside the session's grid.
type SessionService struct {
	store  domain.SessionStore
	logger *zap.Logger
	locks  sessionLocks

	maxGridSize int
	timeout     time.Duration
	crossCheck  bool
}

func NewSessionService(s domain.SessionStore, logger *zap.Logger) *SessionService {
	return &SessionService{
		store:       s,
		logger:      logger,
		maxGridSize: inference.MaxGridSize,
		timeout:     defaultQueryTimeout,
	}
}

// SetMaxGridSize lowers the largest board sessions may use. Values outside
// 1..inference.MaxGridSize are ignored.
func (s *SessionService) SetMaxGridSize(n int) {
	if n >= 1 && n <= inference.MaxGridSize {
		s.maxGridSize = n
	}
}

func (s *SessionService) SetQueryTimeout(d time.Duration) {
	s.timeout = d
}

// SetCrossCheck makes every query re-derive its answer with the SAT encoding.
func (s *SessionService) SetCrossCheck(enabled bool) {
	s.crossCheck = enabled
}

func (s *SessionService) checkGridSize(n int) error {
	if n < 1 {
		return fmt.Errorf("%w: %v", ErrInvalidEvidence, inference.ErrInvalidGridSize)
	}
	if n > s.maxGridSize {
		return ErrGridTooLarge
	}
	return nil
}

func (s *SessionService) Create(ctx context.Context, sess *domain.Session) error {
	if err := s.checkGridSize(sess.GridSize); err != nil {
		return err
	}
	sess.WumpusDead = false
	sess.Facts = []domain.PerceptFact{}

	if err := s.store.Create(ctx, sess); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return ErrSessionConflict
		}
		return err
	}
	s.logger.Info("session created",
		zap.String("session_id", sess.ID.String()),
		zap.Int("grid_size", sess.GridSize))
	return nil
}

func (s *SessionService) Get(ctx context.Context, id, tenantID uuid.UUID) (*domain.Session, error) {
	sess, err := s.store.GetByID(ctx, id, tenantID)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	return sess, nil
}

func (s *SessionService) Delete(ctx context.Context, id, tenantID uuid.UUID) error {
	defer s.locks.lock(id)()
	return mapStoreErr(s.store.Delete(ctx, id, tenantID))
}

// SetGridSize resizes the board. The stored facts are replayed against the
// new size so a shrink that would orphan evidence is rejected.
func (s *SessionService) SetGridSize(ctx context.Context, id, tenantID uuid.UUID, n int) (*domain.Session, error) {
	if err := s.checkGridSize(n); err != nil {
		return nil, err
	}
	defer s.locks.lock(id)()

	sess, err := s.Get(ctx, id, tenantID)
	if err != nil {
		return nil, err
	}
	kb, err := s.knowledge(sess)
	if err != nil {
		return nil, err
	}
	if err := kb.SetGridSize(n); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEvidence, err)
	}
	if err := s.store.SetGridSize(ctx, id, tenantID, n); err != nil {
		return nil, mapStoreErr(err)
	}
	return s.Get(ctx, id, tenantID)
}

// AssertFacts validates facts against the session's board and appends them.
// Nothing is stored if any fact is rejected.
func (s *SessionService) AssertFacts(ctx context.Context, id, tenantID uuid.UUID, facts []domain.PerceptFact) (*domain.Session, error) {
	defer s.locks.lock(id)()

	sess, err := s.Get(ctx, id, tenantID)
	if err != nil {
		return nil, err
	}
	kb, err := s.knowledge(sess)
	if err != nil {
		return nil, err
	}
	for _, f := range facts {
		if err := kb.Assert(f); err != nil {
			return nil, fmt.Errorf("%w: fact %s %s: %v", ErrInvalidEvidence, f.Kind, f.Cell, err)
		}
	}
	if len(facts) > 0 {
		if err := s.store.AddFacts(ctx, id, tenantID, facts); err != nil {
			return nil, mapStoreErr(err)
		}
	}
	return s.Get(ctx, id, tenantID)
}

// AssertObservations records visited cells, each contributing a breeze fact
// and a stench fact.
func (s *SessionService) AssertObservations(ctx context.Context, id, tenantID uuid.UUID, obs []domain.Observation) (*domain.Session, error) {
	facts := make([]domain.PerceptFact, 0, 2*len(obs))
	for _, o := range obs {
		facts = append(facts, o.Facts()...)
	}
	return s.AssertFacts(ctx, id, tenantID, facts)
}

func (s *SessionService) MarkWumpusDead(ctx context.Context, id, tenantID uuid.UUID) (*domain.Session, error) {
	defer s.locks.lock(id)()

	if err := s.store.MarkWumpusDead(ctx, id, tenantID); err != nil {
		return nil, mapStoreErr(err)
	}
	return s.Get(ctx, id, tenantID)
}

// Reset clears facts and the dead flag; the grid size is kept.
func (s *SessionService) Reset(ctx context.Context, id, tenantID uuid.UUID) (*domain.Session, error) {
	defer s.locks.lock(id)()

	if err := s.store.Reset(ctx, id, tenantID); err != nil {
		return nil, mapStoreErr(err)
	}
	return s.Get(ctx, id, tenantID)
}

// Query computes the provably safe cells for the session's current evidence.
// The enumeration itself runs on a snapshot, outside the session lock.
func (s *SessionService) Query(ctx context.Context, id, tenantID uuid.UUID) (*domain.SafetyReport, error) {
	unlock := s.locks.lock(id)
	sess, err := s.Get(ctx, id, tenantID)
	unlock()
	if err != nil {
		return nil, err
	}
	kb, err := s.knowledge(sess)
	if err != nil {
		metrics.QueriesTotal.WithLabelValues(metrics.ResultError).Inc()
		return nil, err
	}

	qctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	res, err := kb.Query(qctx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			metrics.QueriesTotal.WithLabelValues(metrics.ResultTimeout).Inc()
			s.logger.Warn("safety query timed out",
				zap.String("session_id", id.String()),
				zap.Int("grid_size", sess.GridSize),
				zap.Duration("timeout", s.timeout))
			return nil, ErrQueryTimeout
		}
		metrics.QueriesTotal.WithLabelValues(metrics.ResultError).Inc()
		return nil, fmt.Errorf("query session %s: %w", id, err)
	}

	result := metrics.ResultSafe
	if res.Models == 0 {
		result = metrics.ResultContradiction
	}
	metrics.QueriesTotal.WithLabelValues(result).Inc()
	metrics.QueryDuration.WithLabelValues(strconv.Itoa(sess.GridSize)).Observe(res.Elapsed.Seconds())
	metrics.QueryModels.Observe(float64(res.Models))
	metrics.SafeCells.Observe(float64(len(res.Safe)))

	s.logger.Debug("safety query",
		zap.String("session_id", id.String()),
		zap.Int("grid_size", sess.GridSize),
		zap.Int("facts", len(sess.Facts)),
		zap.Int("models", res.Models),
		zap.Int("safe", len(res.Safe)),
		zap.Duration("duration", res.Elapsed))

	if s.crossCheck {
		s.verify(sess, res.Safe)
	}

	return &domain.SafetyReport{
		SessionID:  id,
		Safe:       res.Safe,
		Models:     res.Models,
		Candidates: res.Candidates,
		ElapsedMS:  float64(res.Elapsed.Microseconds()) / 1000,
	}, nil
}

func (s *SessionService) verify(sess *domain.Session, safe []domain.Coordinate) {
	want, err := satcheck.SafeCells(sess.Evidence())
	if err != nil {
		s.logger.Warn("sat cross-check failed", zap.String("session_id", sess.ID.String()), zap.Error(err))
		return
	}
	if !slices.Equal(want, safe) {
		metrics.CrossCheckMismatches.Inc()
		s.logger.Error("sat cross-check disagrees with enumeration",
			zap.String("session_id", sess.ID.String()),
			zap.Any("enumerated", safe),
			zap.Any("sat", want))
	}
}

func (s *SessionService) knowledge(sess *domain.Session) (*inference.KnowledgeBase, error) {
	kb, err := inference.FromEvidence(sess.Evidence())
	if err != nil {
		return nil, fmt.Errorf("%w: stored evidence: %v", ErrInvalidEvidence, err)
	}
	return kb, nil
}

func mapStoreErr(err error) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return ErrSessionNotFound
	case errors.Is(err, store.ErrOutOfBounds):
		return fmt.Errorf("%w: %v", ErrInvalidEvidence, err)
	}
	return err
}
