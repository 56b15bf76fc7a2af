package repository

import (
	"testing"

	"github.com/rocketscienceinc/ludo-backend/internal/leaderboard"
	"github.com/rocketscienceinc/ludo-backend/testing/suite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLeaderboardRepository_RecordWin(t *testing.T) {
	ctx, st := suite.New(t)

	boardRepo := NewLeaderboardRepository(st.Storage)

	// When: Alice wins twice and Bob once
	require.NoError(t, boardRepo.RecordWin(ctx, leaderboard.BucketAllTime, "Alice"))
	require.NoError(t, boardRepo.RecordWin(ctx, leaderboard.BucketAllTime, "Alice"))
	require.NoError(t, boardRepo.RecordWin(ctx, leaderboard.BucketAllTime, "Bob"))

	// Then: the top is ranked by wins
	top, err := boardRepo.Top(ctx, leaderboard.BucketAllTime, 0)
	require.NoError(t, err)

	require.Len(t, top, 2)
	assert.Equal(t, leaderboard.Entry{Name: "Alice", Wins: 2}, top[0])
	assert.Equal(t, leaderboard.Entry{Name: "Bob", Wins: 1}, top[1])
}

func TestLeaderboardRepository_Top(t *testing.T) {
	t.Run("Limits the returned entries", func(t *testing.T) {
		ctx, st := suite.New(t)

		boardRepo := NewLeaderboardRepository(st.Storage)

		for _, name := range []string{"Alice", "Bob", "Carol"} {
			require.NoError(t, boardRepo.RecordWin(ctx, leaderboard.BucketAllTime, name))
		}

		top, err := boardRepo.Top(ctx, leaderboard.BucketAllTime, 2)
		require.NoError(t, err)

		assert.Len(t, top, 2)
	})

	t.Run("Buckets are independent", func(t *testing.T) {
		ctx, st := suite.New(t)

		boardRepo := NewLeaderboardRepository(st.Storage)

		require.NoError(t, boardRepo.RecordWin(ctx, "2026-09", "Alice"))

		top, err := boardRepo.Top(ctx, leaderboard.BucketAllTime, 0)
		require.NoError(t, err)

		assert.Empty(t, top)
	})
}
