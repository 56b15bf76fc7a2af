package repository

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rocketscienceinc/ludo-backend/internal/leaderboard"
)

// LeaderboardRepository keeps win counts in redis sorted sets, one set
// per time bucket, so counts survive restarts.
type LeaderboardRepository interface {
	RecordWin(ctx context.Context, bucket, name string) error
	Top(ctx context.Context, bucket string, limit int64) ([]leaderboard.Entry, error)
}

type dbLeaderboard struct {
	client *redis.Client
}

func NewLeaderboardRepository(client *redis.Client) LeaderboardRepository {
	return &dbLeaderboard{
		client: client,
	}
}

func (that *dbLeaderboard) RecordWin(ctx context.Context, bucket, name string) error {
	boardKey := "leaderboard:" + bucket

	if err := that.client.ZIncrBy(ctx, boardKey, 1, name).Err(); err != nil {
		return fmt.Errorf("failed to increment win count: %w", err)
	}

	return nil
}

// Top returns up to limit entries ranked by wins; limit <= 0 returns the
// whole bucket.
func (that *dbLeaderboard) Top(ctx context.Context, bucket string, limit int64) ([]leaderboard.Entry, error) {
	boardKey := "leaderboard:" + bucket

	stop := limit - 1
	if limit <= 0 {
		stop = -1
	}

	scores, err := that.client.ZRevRangeWithScores(ctx, boardKey, 0, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get leaderboard top: %w", err)
	}

	entries := make([]leaderboard.Entry, 0, len(scores))
	for _, score := range scores {
		name, ok := score.Member.(string)
		if !ok {
			continue
		}
		entries = append(entries, leaderboard.Entry{Name: name, Wins: int64(score.Score)})
	}

	return entries, nil
}
