package memory_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/fraudwatch/internal/domain/model"
	"github.com/bibbank/fraudwatch/internal/infrastructure/memory"
)

func candidate(step int64, confidence int) model.FlaggedTransaction {
	return model.FlaggedTransaction{
		TransactionRecord: model.TransactionRecord{Step: step, Type: model.TypeTransfer, Amount: 150000},
		Confidence:        confidence,
		FlaggedFraud:      true,
	}
}

func TestFraudRepository_WriteAndRead(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewFraudRepository()

	log, err := repo.WriteBatch(ctx, []model.FlaggedTransaction{candidate(1, 65), candidate(2, 70)}, "a.csv", 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), log.ID)
	assert.Equal(t, "a.csv", log.Filename)
	assert.Equal(t, 10, log.TotalTransactions)
	assert.Equal(t, 2, log.FraudulentCount)
	assert.False(t, log.ProcessedAt.IsZero())

	_, err = repo.WriteBatch(ctx, []model.FlaggedTransaction{candidate(3, 100)}, "b.csv", 1)
	require.NoError(t, err)

	rows, err := repo.ReadFlagged(ctx, 100)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []int64{3, 2, 1}, []int64{rows[0].ID, rows[1].ID, rows[2].ID})
	assert.Equal(t, int64(3), rows[0].Step)
	for _, r := range rows {
		assert.True(t, r.FlaggedFraud)
		assert.False(t, r.DetectedAt.IsZero())
	}

	logs, err := repo.ReadLogs(ctx, 10)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, "b.csv", logs[0].Filename)
	assert.Equal(t, "a.csv", logs[1].Filename)
}

func TestFraudRepository_EmptyBatchStillLogs(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewFraudRepository()

	log, err := repo.WriteBatch(ctx, nil, "clean.csv", 500)
	require.NoError(t, err)
	assert.Equal(t, 0, log.FraudulentCount)

	rows, err := repo.ReadFlagged(ctx, 100)
	require.NoError(t, err)
	assert.Empty(t, rows)

	logs, err := repo.ReadLogs(ctx, 10)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, 500, logs[0].TotalTransactions)
}

func TestFraudRepository_Limits(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewFraudRepository()
	for i := 0; i < 5; i++ {
		_, err := repo.WriteBatch(ctx, []model.FlaggedTransaction{candidate(int64(i), 60)}, fmt.Sprintf("%d.csv", i), 1)
		require.NoError(t, err)
	}

	tests := []struct {
		limit int
		want  int
	}{
		{-1, 0},
		{0, 0},
		{3, 3},
		{5, 5},
		{100, 5},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("limit %d", tt.limit), func(t *testing.T) {
			rows, err := repo.ReadFlagged(ctx, tt.limit)
			require.NoError(t, err)
			assert.Len(t, rows, tt.want)

			logs, err := repo.ReadLogs(ctx, tt.limit)
			require.NoError(t, err)
			assert.Len(t, logs, tt.want)
		})
	}
}

func TestFraudRepository_FailedBatchLeavesNothing(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewFraudRepository()

	_, err := repo.WriteBatch(ctx, []model.FlaggedTransaction{candidate(1, 65), candidate(2, 150)}, "bad.csv", 2)
	require.Error(t, err)
	var se *model.StorageError
	assert.ErrorAs(t, err, &se)

	rows, err := repo.ReadFlagged(ctx, 100)
	require.NoError(t, err)
	assert.Empty(t, rows)
	logs, err := repo.ReadLogs(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, logs)

	log, err := repo.WriteBatch(ctx, []model.FlaggedTransaction{candidate(1, 65)}, "good.csv", 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), log.ID)
}

func TestFraudRepository_ClearAllKeepsIDsMonotonic(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewFraudRepository()

	_, err := repo.WriteBatch(ctx, []model.FlaggedTransaction{candidate(1, 65), candidate(2, 65)}, "a.csv", 2)
	require.NoError(t, err)

	require.NoError(t, repo.ClearAll(ctx))
	require.NoError(t, repo.ClearAll(ctx))

	rows, err := repo.ReadFlagged(ctx, 100)
	require.NoError(t, err)
	assert.Empty(t, rows)

	log, err := repo.WriteBatch(ctx, []model.FlaggedTransaction{candidate(3, 65)}, "b.csv", 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), log.ID)

	rows, err = repo.ReadFlagged(ctx, 100)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(3), rows[0].ID)
}

func TestFraudRepository_ConcurrentWrites(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewFraudRepository()

	const writers = 20
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			batch := []model.FlaggedTransaction{candidate(int64(i), 60), candidate(int64(i), 61), candidate(int64(i), 62)}
			_, err := repo.WriteBatch(ctx, batch, fmt.Sprintf("%d.csv", i), 3)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	rows, err := repo.ReadFlagged(ctx, 1000)
	require.NoError(t, err)
	require.Len(t, rows, writers*3)

	// Rows of one batch stay contiguous and keep their input order.
	for i := 0; i < len(rows); i += 3 {
		assert.Equal(t, rows[i].Step, rows[i+2].Step)
		assert.Equal(t, 62, rows[i].Confidence)
		assert.Equal(t, 60, rows[i+2].Confidence)
		assert.Equal(t, rows[i].ID-2, rows[i+2].ID)
	}

	logs, err := repo.ReadLogs(ctx, 1000)
	require.NoError(t, err)
	assert.Len(t, logs, writers)
}

func TestFraudRepository_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	repo := memory.NewFraudRepository()

	_, err := repo.WriteBatch(ctx, nil, "a.csv", 0)
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, repo.Ping(ctx), context.Canceled)
}
