package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rocketscienceinc/ludo-backend/internal/entity"
)

var ErrSessionNotFound = errors.New("session not found")

// SessionRepository mirrors live session state into redis so an operator
// can inspect a running game. The engine itself stays in-memory; writes
// here are best-effort.
type SessionRepository interface {
	Save(ctx context.Context, game *entity.Game) error
	GetByRoomID(ctx context.Context, roomID string) (*entity.Game, error)
	DeleteByRoomID(ctx context.Context, roomID string) error
}

type dbSession struct {
	client *redis.Client
}

func NewSessionRepository(client *redis.Client) SessionRepository {
	return &dbSession{
		client: client,
	}
}

func (that *dbSession) Save(ctx context.Context, game *entity.Game) error {
	gameJSON, err := json.Marshal(game)
	if err != nil {
		return fmt.Errorf("could not marshal session: %w", err)
	}

	sessionKey := "session:" + game.RoomID
	if err = that.client.Set(ctx, sessionKey, gameJSON, 0).Err(); err != nil {
		return fmt.Errorf("failed to set session: %w", err)
	}

	return nil
}

func (that *dbSession) GetByRoomID(ctx context.Context, roomID string) (*entity.Game, error) {
	sessionKey := "session:" + roomID

	response, err := that.client.Get(ctx, sessionKey).Result()

	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get session by room id: %w", err)
	}

	var existingGame entity.Game
	if err = json.Unmarshal([]byte(response), &existingGame); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}

	return &existingGame, nil
}

func (that *dbSession) DeleteByRoomID(ctx context.Context, roomID string) error {
	sessionKey := "session:" + roomID

	if err := that.client.Del(ctx, sessionKey).Err(); err != nil {
		return fmt.Errorf("failed to delete session by room id: %w", err)
	}

	return nil
}
