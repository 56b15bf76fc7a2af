package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rocketscienceinc/ludo-backend/internal/config"
	"github.com/rocketscienceinc/ludo-backend/internal/entity"
	"github.com/rocketscienceinc/ludo-backend/internal/leaderboard"
	"github.com/rocketscienceinc/ludo-backend/internal/ludo"
	"github.com/rocketscienceinc/ludo-backend/internal/repository"
	"github.com/rocketscienceinc/ludo-backend/internal/repository/storage"
	"github.com/rocketscienceinc/ludo-backend/internal/usecase"
	"github.com/rocketscienceinc/ludo-backend/transport/rest"
	"github.com/rocketscienceinc/ludo-backend/transport/websocket"
)

var ErrAddrNotFound = errors.New("redis address string is empty")

// RunApp - runs the application.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		log.Info("Received signal, shutting down", "signal", sig)
		cancel()
	}()

	redisAddrString := conf.Redis.GetRedisAddr()
	if redisAddrString == "" {
		return ErrAddrNotFound
	}

	redisStorage, err := storage.New(ctx, redisAddrString)
	if err != nil {
		return fmt.Errorf("could not connect to redis storage: %w", err)
	}

	defer func() {
		if err = redisStorage.Close(); err != nil {
			log.Error("could not close redis storage", "error", err)
		}
	}()

	track, err := entity.NewTrack(conf.Game.TrackLength, conf.Game.SafeTiles, leaps(conf.Game.SpecialTiles))
	if err != nil {
		return fmt.Errorf("could not build track: %w", err)
	}

	rules := &ludo.Rules{
		Track:             track,
		ExtraTurnValue:    conf.Game.ExtraTurnValue,
		FirstFinisherWins: conf.Game.FirstFinisherWins(),
	}

	sessionRepo := repository.NewSessionRepository(redisStorage.Connection)
	boardRepo := repository.NewLeaderboardRepository(redisStorage.Connection)

	board := leaderboard.New()
	if err = restoreLeaderboard(ctx, board, boardRepo); err != nil {
		log.Error("could not restore leaderboard, starting empty", "error", err)
	}

	gameManager := usecase.NewGameManager(logger, rules, usecase.Options{
		MaxPlayers:  conf.Game.MaxPlayers,
		TurnTimeout: time.Duration(conf.Game.TurnTimeoutSec) * time.Second,
		MaxSkips:    conf.Game.MaxSkips,
	}, board, sessionRepo, boardRepo)

	// run HTTP server
	httpErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "port", conf.HTTPPort)
		if httpErr := rest.Start(conf.HTTPPort, gameManager); httpErr != nil {
			log.Error("HTTP server error", "error", httpErr)
			httpErrCh <- httpErr
		}
	}()

	// run WebSocket server
	wsErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting WebSocket server", "port", conf.SocketPort)
		wsServer := websocket.New(logger, gameManager)
		if wsErr := wsServer.Start(ctx, conf.SocketPort); wsErr != nil {
			log.Error("WebSocket server error", "error", wsErr)
			wsErrCh <- wsErr
		}
	}()

	select {
	case err = <-httpErrCh:
		return fmt.Errorf("HTTP server error: %w", err)
	case err = <-wsErrCh:
		return fmt.Errorf("WebSocket server error: %w", err)
	case <-ctx.Done():
		log.Info("Application context canceled, shutting down")
		return nil
	}
}

func leaps(special []config.Leap) map[int]int {
	out := make(map[int]int, len(special))
	for _, leap := range special {
		out[leap.Tile] = leap.Offset
	}

	return out
}

// restoreLeaderboard reloads the persisted all-time bucket so win counts
// survive restarts.
func restoreLeaderboard(ctx context.Context, board *leaderboard.Leaderboard, repo repository.LeaderboardRepository) error {
	entries, err := repo.Top(ctx, leaderboard.BucketAllTime, 0)
	if err != nil {
		return fmt.Errorf("failed to load all-time bucket: %w", err)
	}

	for _, entry := range entries {
		board.Restore(leaderboard.BucketAllTime, entry.Name, entry.Wins)
	}

	return nil
}
