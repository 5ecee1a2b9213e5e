package repository_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/queue-service/internal/domain"
	"github.com/spec-kit/queue-service/internal/repository"
	"github.com/spec-kit/queue-service/internal/testutil"
)

func newTestRepo(t *testing.T) (repository.TicketRepository, context.Context) {
	t.Helper()
	ctx := context.Background()
	pool := testutil.NewTestPool(t)
	testutil.CreateSchema(t, ctx, pool)
	return repository.NewTicketRepository(pool), ctx
}

func TestTicketRepository_SequentialNumbering(t *testing.T) {
	repo, ctx := newTestRepo(t)

	for want := int64(1); want <= 5; want++ {
		ticket, err := repo.Issue(ctx)
		require.NoError(t, err)
		assert.Equal(t, want, ticket.TicketNumber)
		assert.False(t, ticket.Attended)
		assert.False(t, ticket.IssuedAt.IsZero())
	}
}

func TestTicketRepository_ConcurrentIssue(t *testing.T) {
	repo, ctx := newTestRepo(t)

	const workers = 20
	numbers := make(chan int64, workers)

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			ticket, err := repo.Issue(ctx)
			if err != nil {
				t.Errorf("concurrent issue failed: %v", err)
				return
			}
			numbers <- ticket.TicketNumber
		}()
	}
	wg.Wait()
	close(numbers)

	seen := make(map[int64]bool)
	for n := range numbers {
		assert.False(t, seen[n], "duplicate ticket number %d", n)
		seen[n] = true
	}
	require.Len(t, seen, workers)
	for want := int64(1); want <= workers; want++ {
		assert.True(t, seen[want], "gap at ticket number %d", want)
	}
}

func TestTicketRepository_CallNextFIFO(t *testing.T) {
	repo, ctx := newTestRepo(t)

	for i := 0; i < 3; i++ {
		_, err := repo.Issue(ctx)
		require.NoError(t, err)
	}

	for want := int64(1); want <= 3; want++ {
		ticket, err := repo.CallNext(ctx)
		require.NoError(t, err)
		assert.Equal(t, want, ticket.TicketNumber)
		assert.True(t, ticket.Attended)
	}

	_, err := repo.CallNext(ctx)
	assert.ErrorIs(t, err, domain.ErrQueueEmpty)
}

func TestTicketRepository_CallNextEmptyQueue(t *testing.T) {
	repo, ctx := newTestRepo(t)

	ticket, err := repo.CallNext(ctx)
	assert.Nil(t, ticket)
	assert.ErrorIs(t, err, domain.ErrQueueEmpty)

	status, err := repo.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.QueueStatus{}, status)
}

func TestTicketRepository_ConcurrentCallNext(t *testing.T) {
	repo, ctx := newTestRepo(t)

	const issued = 10
	for i := 0; i < issued; i++ {
		_, err := repo.Issue(ctx)
		require.NoError(t, err)
	}

	const callers = issued + 5
	results := make(chan int64, callers)
	empties := make(chan struct{}, callers)

	var wg sync.WaitGroup
	wg.Add(callers)
	for i := 0; i < callers; i++ {
		go func() {
			defer wg.Done()
			ticket, err := repo.CallNext(ctx)
			if err != nil {
				if errors.Is(err, domain.ErrQueueEmpty) {
					empties <- struct{}{}
					return
				}
				t.Errorf("concurrent call next failed: %v", err)
				return
			}
			results <- ticket.TicketNumber
		}()
	}
	wg.Wait()
	close(results)
	close(empties)

	seen := make(map[int64]bool)
	for n := range results {
		assert.False(t, seen[n], "ticket %d attended twice", n)
		seen[n] = true
	}
	assert.Len(t, seen, issued)
	emptyCount := 0
	for range empties {
		emptyCount++
	}
	assert.Equal(t, callers-issued, emptyCount)
}

func TestTicketRepository_OneWayAttendance(t *testing.T) {
	repo, ctx := newTestRepo(t)

	_, err := repo.Issue(ctx)
	require.NoError(t, err)
	_, err = repo.Issue(ctx)
	require.NoError(t, err)

	first, err := repo.CallNext(ctx)
	require.NoError(t, err)
	second, err := repo.CallNext(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, first.TicketNumber, second.TicketNumber)

	history, err := repo.History(ctx, 10)
	require.NoError(t, err)
	require.Len(t, history, 2)
	// Newest first, by insertion id.
	assert.Equal(t, second.TicketNumber, history[0].TicketNumber)
	assert.Equal(t, first.TicketNumber, history[1].TicketNumber)
}

func TestTicketRepository_HistoryDefaultLimit(t *testing.T) {
	repo, ctx := newTestRepo(t)

	for i := 0; i < 12; i++ {
		_, err := repo.Issue(ctx)
		require.NoError(t, err)
		_, err = repo.CallNext(ctx)
		require.NoError(t, err)
	}

	history, err := repo.History(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, history, repository.DefaultHistoryLimit)
	assert.Equal(t, int64(12), history[0].TicketNumber)

	history, err = repo.History(ctx, 3)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, int64(12), history[0].TicketNumber)
	assert.Equal(t, int64(10), history[2].TicketNumber)
}

func TestTicketRepository_ResetIdempotent(t *testing.T) {
	repo, ctx := newTestRepo(t)

	for i := 0; i < 4; i++ {
		_, err := repo.Issue(ctx)
		require.NoError(t, err)
	}

	reset, err := repo.Reset(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), reset)

	status, err := repo.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), status.WaitingTickets)
	assert.Equal(t, int64(4), status.TotalIssued)

	reset, err = repo.Reset(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), reset)

	// Numbering continues after a reset; it never restarts.
	ticket, err := repo.Issue(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(5), ticket.TicketNumber)
}

func TestTicketRepository_QueueScenario(t *testing.T) {
	repo, ctx := newTestRepo(t)

	first, err := repo.Issue(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.TicketNumber)
	assert.False(t, first.Attended)

	second, err := repo.Issue(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), second.TicketNumber)
	assert.False(t, second.Attended)

	status, err := repo.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.QueueStatus{WaitingTickets: 2, TotalIssued: 2, HighestTicket: 2}, status)

	current, err := repo.CurrentlyCalled(ctx)
	require.NoError(t, err)
	assert.Nil(t, current)

	called, err := repo.CallNext(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), called.TicketNumber)

	status, err = repo.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.QueueStatus{WaitingTickets: 1, TotalIssued: 2, HighestTicket: 2}, status)

	current, err = repo.CurrentlyCalled(ctx)
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.Equal(t, int64(1), current.TicketNumber)

	history, err := repo.History(ctx, 1)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, int64(1), history[0].TicketNumber)
}
