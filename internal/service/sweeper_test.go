package service

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"sessiond/internal/repository/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingRepo tracks PurgeRetired calls and optionally fails the first n.
type countingRepo struct {
	*memRepo
	calls    atomic.Int64
	failHead int64
}

func (c *countingRepo) PurgeRetired(ctx context.Context) (int64, error) {
	n := c.calls.Add(1)
	if n <= c.failHead {
		return 0, fmt.Errorf("connection refused")
	}
	return c.memRepo.PurgeRetired(ctx)
}

func TestSweeper_PurgesRetiredRecords(t *testing.T) {
	repo := &countingRepo{memRepo: &memRepo{}}

	retired := &models.TokenRecord{
		AccessValue: "retired",
		UserEmail:   "a@x.io",
		Deactivated: true,
		Expired:     true,
		Refresh:     &models.RefreshRecord{Value: "r1"},
	}
	survivor := &models.TokenRecord{
		AccessValue: "stale-but-current",
		UserEmail:   "b@x.io",
		Expired:     true,
		Refresh:     &models.RefreshRecord{Value: "r2"},
	}
	require.NoError(t, repo.Create(context.Background(), retired))
	require.NoError(t, repo.Create(context.Background(), survivor))

	sweeper := NewSweeper(repo, 10*time.Millisecond, &mockLogger{})

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()
	sweeper.Run(ctx)

	assert.GreaterOrEqual(t, repo.calls.Load(), int64(2))

	// a record that is only time-expired must survive every sweep
	assert.Equal(t, 1, repo.count())
	got, err := repo.GetByRefreshValue(context.Background(), "r2")
	require.NoError(t, err)
	assert.Equal(t, "stale-but-current", got.AccessValue)
}

func TestSweeper_RetriesAfterStoreError(t *testing.T) {
	repo := &countingRepo{memRepo: &memRepo{}, failHead: 1}

	sweeper := NewSweeper(repo, 10*time.Millisecond, &mockLogger{})

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()
	sweeper.Run(ctx)

	// the failed tick must not stop the loop
	assert.GreaterOrEqual(t, repo.calls.Load(), int64(2))
}

func TestSweeper_StopsOnCancel(t *testing.T) {
	repo := &countingRepo{memRepo: &memRepo{}}
	sweeper := NewSweeper(repo, time.Hour, &mockLogger{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	go func() {
		sweeper.Run(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop on context cancel")
	}

	assert.Equal(t, int64(0), repo.calls.Load())
}
