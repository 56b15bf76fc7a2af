package leaderboard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func frozenNow() time.Time {
	return time.Date(2026, time.September, 1, 12, 0, 0, 0, time.UTC)
}

func TestLeaderboard_Record(t *testing.T) {
	t.Run("A win lands in the all-time and monthly buckets", func(t *testing.T) {
		// Given: a leaderboard with a frozen clock
		board := New()
		board.now = frozenNow

		// When: Alice wins once
		touched := board.Record("Alice")

		// Then: both buckets carry the win
		assert.ElementsMatch(t, []string{BucketAllTime, "2026-09"}, touched)
		assert.EqualValues(t, 1, board.Wins(BucketAllTime, "Alice"))
		assert.EqualValues(t, 1, board.Wins("2026-09", "Alice"))
	})

	t.Run("Counts only ever go up", func(t *testing.T) {
		board := New()
		board.now = frozenNow

		for i := 0; i < 3; i++ {
			board.Record("Alice")
		}

		assert.EqualValues(t, 3, board.Wins(BucketAllTime, "Alice"))
	})
}

func TestLeaderboard_Snapshot(t *testing.T) {
	t.Run("Ranks by wins with ties broken by name", func(t *testing.T) {
		board := New()
		board.now = frozenNow

		board.Record("Carol")
		board.Record("Carol")
		board.Record("Alice")
		board.Record("Bob")

		snapshot := board.Snapshot(BucketAllTime)

		require.Len(t, snapshot, 3)
		assert.Equal(t, Entry{Name: "Carol", Wins: 2}, snapshot[0])
		assert.Equal(t, Entry{Name: "Alice", Wins: 1}, snapshot[1])
		assert.Equal(t, Entry{Name: "Bob", Wins: 1}, snapshot[2])
	})

	t.Run("An unknown bucket yields an empty snapshot", func(t *testing.T) {
		board := New()

		assert.Empty(t, board.Snapshot("2020-01"))
	})
}

func TestLeaderboard_Restore(t *testing.T) {
	t.Run("Seeds persisted counts", func(t *testing.T) {
		board := New()

		board.Restore(BucketAllTime, "Alice", 5)

		assert.EqualValues(t, 5, board.Wins(BucketAllTime, "Alice"))
	})

	t.Run("Never lowers an existing count", func(t *testing.T) {
		board := New()
		board.now = frozenNow

		for i := 0; i < 4; i++ {
			board.Record("Alice")
		}

		board.Restore(BucketAllTime, "Alice", 2)

		assert.EqualValues(t, 4, board.Wins(BucketAllTime, "Alice"))
	})
}

func TestBucketMonthly(t *testing.T) {
	assert.Equal(t, "2026-09", BucketMonthly(frozenNow()))
}
