package service

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestSessionLocks(t *testing.T) {
	var locks sessionLocks
	a, b := uuid.New(), uuid.New()

	t.Run("serializes one session", func(t *testing.T) {
		var wg sync.WaitGroup
		inside, maxInside := 0, 0
		var mu sync.Mutex
		for range 20 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				defer locks.lock(a)()
				mu.Lock()
				inside++
				maxInside = max(maxInside, inside)
				mu.Unlock()

				mu.Lock()
				inside--
				mu.Unlock()
			}()
		}
		wg.Wait()
		assert.Equal(t, 1, maxInside)
	})

	t.Run("sessions are independent", func(t *testing.T) {
		unlockA := locks.lock(a)
		unlockB := locks.lock(b)
		assert.Equal(t, 2, locks.held())
		unlockB()
		unlockA()
	})

	assert.Zero(t, locks.held())
}
