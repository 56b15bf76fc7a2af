package usecase

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/rocketscienceinc/ludo-backend/internal/apperror"
	"github.com/rocketscienceinc/ludo-backend/internal/entity"
	"github.com/rocketscienceinc/ludo-backend/internal/leaderboard"
	"github.com/rocketscienceinc/ludo-backend/internal/ludo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSessionRepo struct {
	mu      sync.Mutex
	saved   map[string]*entity.Game
	deleted []string
}

func newStubSessionRepo() *stubSessionRepo {
	return &stubSessionRepo{saved: make(map[string]*entity.Game)}
}

func (that *stubSessionRepo) Save(_ context.Context, game *entity.Game) error {
	that.mu.Lock()
	defer that.mu.Unlock()
	that.saved[game.RoomID] = game
	return nil
}

func (that *stubSessionRepo) DeleteByRoomID(_ context.Context, roomID string) error {
	that.mu.Lock()
	defer that.mu.Unlock()
	that.deleted = append(that.deleted, roomID)
	return nil
}

type stubBoardRepo struct {
	mu   sync.Mutex
	wins map[string]int
}

func newStubBoardRepo() *stubBoardRepo {
	return &stubBoardRepo{wins: make(map[string]int)}
}

func (that *stubBoardRepo) RecordWin(_ context.Context, bucket, name string) error {
	that.mu.Lock()
	defer that.mu.Unlock()
	that.wins[bucket+"/"+name]++
	return nil
}

func (that *stubBoardRepo) count(bucket, name string) int {
	that.mu.Lock()
	defer that.mu.Unlock()
	return that.wins[bucket+"/"+name]
}

type managerFixture struct {
	manager     *GameManager
	board       *leaderboard.Leaderboard
	sessionRepo *stubSessionRepo
	boardRepo   *stubBoardRepo
}

func newFixture(t *testing.T, opts Options) *managerFixture {
	t.Helper()

	track, err := entity.NewTrack(10, nil, nil)
	require.NoError(t, err)

	rules := &ludo.Rules{Track: track, ExtraTurnValue: 6, FirstFinisherWins: true}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	board := leaderboard.New()
	sessionRepo := newStubSessionRepo()
	boardRepo := newStubBoardRepo()

	return &managerFixture{
		manager:     NewGameManager(logger, rules, opts, board, sessionRepo, boardRepo),
		board:       board,
		sessionRepo: sessionRepo,
		boardRepo:   boardRepo,
	}
}

// startedGame creates a room with two seated players and begins play.
func (that *managerFixture) startedGame(t *testing.T, roomID string) *entity.Game {
	t.Helper()
	ctx := context.Background()

	_, err := that.manager.CreateSession(ctx, roomID, "a")
	require.NoError(t, err)
	_, err = that.manager.Join(ctx, roomID, "a", "Alice")
	require.NoError(t, err)
	_, err = that.manager.Join(ctx, roomID, "b", "Bob")
	require.NoError(t, err)

	game, err := that.manager.BeginGame(ctx, roomID)
	require.NoError(t, err)

	return game
}

func TestGameManager_Lifecycle(t *testing.T) {
	ctx := context.Background()

	t.Run("Acting on a room without a session is rejected", func(t *testing.T) {
		fx := newFixture(t, Options{MaxPlayers: 4})

		_, err := fx.manager.Join(ctx, "room-1", "a", "Alice")
		require.ErrorIs(t, err, apperror.ErrNoActiveSession)

		_, err = fx.manager.Roll(ctx, "room-1", "a", 3)
		require.ErrorIs(t, err, apperror.ErrNoActiveSession)
	})

	t.Run("Create, join, begin and a first roll", func(t *testing.T) {
		fx := newFixture(t, Options{MaxPlayers: 4})
		game := fx.startedGame(t, "room-1")

		assert.Equal(t, "a", game.CurrentPlayer().ID)

		// When: Alice rolls a six to enter
		result, err := fx.manager.Roll(ctx, "room-1", "a", 6)

		// Then: she enters at tile 0 and keeps the turn
		require.NoError(t, err)
		assert.Equal(t, ludo.EventEntered, result.Events[0].Type)
		assert.Equal(t, "Alice", result.NextPlayer)

		// and the snapshot mirror was written
		fx.sessionRepo.mu.Lock()
		_, saved := fx.sessionRepo.saved["room-1"]
		fx.sessionRepo.mu.Unlock()
		assert.True(t, saved)
	})

	t.Run("Starting over replaces a live session", func(t *testing.T) {
		fx := newFixture(t, Options{MaxPlayers: 4})
		fx.startedGame(t, "room-1")

		// When: a new lobby is opened in the same room
		_, err := fx.manager.CreateSession(ctx, "room-1", "c")
		require.NoError(t, err)

		game, err := fx.manager.Game("room-1")
		require.NoError(t, err)

		// Then: the room holds a fresh empty lobby
		assert.True(t, game.IsLobby())
		assert.Empty(t, game.Players)
		assert.Equal(t, "c", game.CreatorID)
	})

	t.Run("A finisher records a win and ends the session", func(t *testing.T) {
		fx := newFixture(t, Options{MaxPlayers: 4})
		game := fx.startedGame(t, "room-1")
		game.PlayerByID("a").Position = 9

		result, err := fx.manager.Roll(ctx, "room-1", "a", 1)

		require.NoError(t, err)
		assert.True(t, result.GameOver)
		assert.Equal(t, "Alice", result.Winner)

		// the win landed in memory and in the persistence mirror
		assert.EqualValues(t, 1, fx.board.Wins(leaderboard.BucketAllTime, "Alice"))
		assert.Equal(t, 1, fx.boardRepo.count(leaderboard.BucketAllTime, "Alice"))

		// the session is gone
		_, err = fx.manager.Game("room-1")
		require.ErrorIs(t, err, apperror.ErrNoActiveSession)
	})

	t.Run("Leaving an active two-player game ends it without a winner", func(t *testing.T) {
		fx := newFixture(t, Options{MaxPlayers: 4})
		fx.startedGame(t, "room-1")

		game, err := fx.manager.Leave(ctx, "room-1", "b")
		require.NoError(t, err)

		assert.True(t, game.IsTerminated())
		assert.Empty(t, fx.board.Snapshot(leaderboard.BucketAllTime))

		_, err = fx.manager.Game("room-1")
		require.ErrorIs(t, err, apperror.ErrNoActiveSession)
	})
}

func TestGameManager_Authorization(t *testing.T) {
	ctx := context.Background()

	t.Run("Only the creator may kick", func(t *testing.T) {
		fx := newFixture(t, Options{MaxPlayers: 4})
		fx.startedGame(t, "room-1")

		_, err := fx.manager.Kick(ctx, "room-1", "b", "a")
		require.ErrorIs(t, err, apperror.ErrUnauthorized)

		// the creator can
		game, err := fx.manager.Kick(ctx, "room-1", "a", "b")
		require.NoError(t, err)
		assert.Nil(t, game.PlayerByID("b"))
	})

	t.Run("Only the creator may abort", func(t *testing.T) {
		fx := newFixture(t, Options{MaxPlayers: 4})
		fx.startedGame(t, "room-1")

		err := fx.manager.Abort(ctx, "room-1", "b")
		require.ErrorIs(t, err, apperror.ErrUnauthorized)

		require.NoError(t, fx.manager.Abort(ctx, "room-1", "a"))

		_, err = fx.manager.Game("room-1")
		require.ErrorIs(t, err, apperror.ErrNoActiveSession)
	})

	t.Run("Aborting a room without a session is a no-op", func(t *testing.T) {
		fx := newFixture(t, Options{MaxPlayers: 4})

		require.NoError(t, fx.manager.Abort(ctx, "nowhere", "a"))
	})
}

func TestGameManager_ResolveTarget(t *testing.T) {
	ctx := context.Background()

	fx := newFixture(t, Options{MaxPlayers: 4})
	_, err := fx.manager.CreateSession(ctx, "room-1", "a")
	require.NoError(t, err)
	_, err = fx.manager.Join(ctx, "room-1", "a", "Alice")
	require.NoError(t, err)

	t.Run("Resolves a known label", func(t *testing.T) {
		player, resolveErr := fx.manager.ResolveTarget("room-1", "Alice")
		require.NoError(t, resolveErr)
		require.NotNil(t, player)
		assert.Equal(t, "a", player.ID)
	})

	t.Run("Unknown labels resolve to nil", func(t *testing.T) {
		player, resolveErr := fx.manager.ResolveTarget("room-1", "Nobody")
		require.NoError(t, resolveErr)
		assert.Nil(t, player)
	})
}

func TestGameManager_TurnTimeout(t *testing.T) {
	t.Run("An idle turn is skipped", func(t *testing.T) {
		// Given: a short idle timeout and no removal limit
		fx := newFixture(t, Options{MaxPlayers: 4, TurnTimeout: 20 * time.Millisecond})
		fx.startedGame(t, "room-1")

		// Then: the turn eventually passes from Alice to Bob on its own
		require.Eventually(t, func() bool {
			game, err := fx.manager.Game("room-1")
			if err != nil {
				return false
			}
			current := game.CurrentPlayer()
			return current != nil && current.ID == "b"
		}, 2*time.Second, 5*time.Millisecond)
	})

	t.Run("Hitting the skip limit removes the player and can end the game", func(t *testing.T) {
		fx := newFixture(t, Options{MaxPlayers: 4, TurnTimeout: 10 * time.Millisecond, MaxSkips: 1})
		fx.startedGame(t, "room-1")

		// with two players, removing the idle one terminates the session
		require.Eventually(t, func() bool {
			_, err := fx.manager.Game("room-1")
			return err != nil
		}, 2*time.Second, 5*time.Millisecond)
	})

	t.Run("Acting in time cancels the pending skip", func(t *testing.T) {
		fx := newFixture(t, Options{MaxPlayers: 4, TurnTimeout: 200 * time.Millisecond})
		fx.startedGame(t, "room-1")

		ctx := context.Background()
		_, err := fx.manager.Roll(ctx, "room-1", "a", 3) // rejected entry, turn passes
		require.NoError(t, err)

		game, err := fx.manager.Game("room-1")
		require.NoError(t, err)
		require.NotNil(t, game.CurrentPlayer())
		assert.Equal(t, "b", game.CurrentPlayer().ID)
		assert.Zero(t, game.PlayerByID("a").Skips)
	})
}
