package client

import (
	"context"
	"fmt"

	"github.com/Harshitk-cp/wumpus/internal/domain"
	"github.com/google/uuid"
)

// Oracle answers safety queries through a remote session. Each call
// replaces the session's evidence with the snapshot it is given.
type Oracle struct {
	client    *Client
	sessionID uuid.UUID
	gridSize  int
}

// NewOracle creates the backing session.
func NewOracle(ctx context.Context, c *Client, gridSize int, externalID string) (*Oracle, error) {
	sess, err := c.CreateSession(ctx, gridSize, externalID)
	if err != nil {
		return nil, fmt.Errorf("create oracle session: %w", err)
	}
	return &Oracle{client: c, sessionID: sess.ID, gridSize: gridSize}, nil
}

func (o *Oracle) SessionID() uuid.UUID { return o.sessionID }

func (o *Oracle) SafeCells(ctx context.Context, ev domain.Evidence) ([]domain.Coordinate, error) {
	if _, err := o.client.Reset(ctx, o.sessionID); err != nil {
		return nil, err
	}
	if ev.GridSize != o.gridSize {
		if _, err := o.client.SetGridSize(ctx, o.sessionID, ev.GridSize); err != nil {
			return nil, err
		}
		o.gridSize = ev.GridSize
	}
	if len(ev.Facts) > 0 {
		if _, err := o.client.AssertFacts(ctx, o.sessionID, ev.Facts); err != nil {
			return nil, err
		}
	}
	if ev.WumpusDead {
		if _, err := o.client.MarkWumpusDead(ctx, o.sessionID); err != nil {
			return nil, err
		}
	}

	report, err := o.client.Safe(ctx, o.sessionID)
	if err != nil {
		return nil, err
	}
	return report.Safe, nil
}

// Close deletes the backing session.
func (o *Oracle) Close(ctx context.Context) error {
	return o.client.DeleteSession(ctx, o.sessionID)
}
