package usecase

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rocketscienceinc/ludo-backend/internal/apperror"
	"github.com/rocketscienceinc/ludo-backend/internal/entity"
	"github.com/rocketscienceinc/ludo-backend/internal/leaderboard"
	"github.com/rocketscienceinc/ludo-backend/internal/ludo"
	"github.com/rocketscienceinc/ludo-backend/internal/metrics"
)

type sessionRepo interface {
	Save(ctx context.Context, game *entity.Game) error
	DeleteByRoomID(ctx context.Context, roomID string) error
}

type leaderboardRepo interface {
	RecordWin(ctx context.Context, bucket, name string) error
}

// Options carries the session-level knobs; the board rules themselves
// live in ludo.Rules.
type Options struct {
	MaxPlayers  int
	TurnTimeout time.Duration
	MaxSkips    int
}

// session pairs one game with its own lock; a roll, join or timeout for
// a room is resolved while holding it, so no two moves for the same
// session run concurrently.
type session struct {
	mu sync.Mutex

	game *entity.Game

	// instanceID and turnEpoch fence the single-shot turn timer: a
	// firing for a recreated session or an already-resolved turn is
	// discarded.
	instanceID string
	turnEpoch  uint64
	timer      *time.Timer
}

// GameManager owns every live session, keyed by room id, plus the shared
// leaderboard. All engine state is in-memory; redis mirrors are
// best-effort.
type GameManager struct {
	logger *slog.Logger
	rules  *ludo.Rules
	opts   Options
	board  *leaderboard.Leaderboard

	sessionRepo sessionRepo
	boardRepo   leaderboardRepo

	mu       sync.Mutex
	sessions map[string]*session
}

func NewGameManager(logger *slog.Logger, rules *ludo.Rules, opts Options, board *leaderboard.Leaderboard, sessionRepo sessionRepo, boardRepo leaderboardRepo) *GameManager {
	return &GameManager{
		logger: logger.With("component", "game-manager"),
		rules:  rules,
		opts:   opts,
		board:  board,

		sessionRepo: sessionRepo,
		boardRepo:   boardRepo,

		sessions: make(map[string]*session),
	}
}

// CreateSession opens a fresh lobby for a room. A "start game" in a room
// with a live session replaces it, like the original bot: the old game
// is terminated and its timer fenced off.
func (that *GameManager) CreateSession(ctx context.Context, roomID, creatorID string) (*entity.Game, error) {
	game := entity.NewGame(roomID, creatorID, that.opts.MaxPlayers)

	newSession := &session{
		game:       game,
		instanceID: uuid.NewString(),
	}

	that.mu.Lock()
	old := that.sessions[roomID]
	that.sessions[roomID] = newSession
	that.mu.Unlock()

	if old != nil {
		old.mu.Lock()
		old.game.Terminate()
		old.stopTimer()
		old.mu.Unlock()
	}

	metrics.SessionsCreated.Inc()
	that.persist(ctx, game)

	return game, nil
}

// Join adds a player to the lobby and returns the assigned seat.
func (that *GameManager) Join(ctx context.Context, roomID, playerID, label string) (*entity.Player, error) {
	sess, err := that.session(roomID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	player, err := sess.game.AddPlayer(playerID, label)
	if err != nil {
		return nil, err
	}

	that.persist(ctx, sess.game)

	return player, nil
}

// Leave removes a player. Leaving an active game can end it: when fewer
// than two players remain the session terminates without a winner.
func (that *GameManager) Leave(ctx context.Context, roomID, playerID string) (*entity.Game, error) {
	sess, err := that.session(roomID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	wasCurrent := sess.game.IsActive() && sess.game.CurrentPlayer() != nil && sess.game.CurrentPlayer().ID == playerID

	if _, err = sess.game.RemovePlayer(playerID); err != nil {
		return nil, err
	}

	if sess.game.IsActive() && len(sess.game.Players) < 2 {
		that.terminate(ctx, sess)
		return sess.game, nil
	}

	if wasCurrent {
		// the removal already repaired the cursor onto the next player
		that.armTurnTimer(sess)
	}

	that.persist(ctx, sess.game)

	return sess.game, nil
}

// Kick is Leave on someone else's behalf; only the session creator may
// do it. Richer admin checks belong to the chat adapter, which is why
// the creator identity is part of the session state.
func (that *GameManager) Kick(ctx context.Context, roomID, actorID, targetID string) (*entity.Game, error) {
	sess, err := that.session(roomID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	creatorID := sess.game.CreatorID
	sess.mu.Unlock()

	if actorID != creatorID {
		return nil, apperror.ErrUnauthorized
	}

	return that.Leave(ctx, roomID, targetID)
}

// BeginGame starts play; the first player to have joined moves first.
func (that *GameManager) BeginGame(ctx context.Context, roomID string) (*entity.Game, error) {
	sess, err := that.session(roomID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if err = sess.game.Begin(); err != nil {
		return nil, err
	}

	that.armTurnTimer(sess)
	that.persist(ctx, sess.game)

	return sess.game, nil
}

// Roll resolves one roll for the current player: movement, capture,
// finish and turn bookkeeping in one critical section.
func (that *GameManager) Roll(ctx context.Context, roomID, playerID string, roll int) (*ludo.RollResult, error) {
	sess, err := that.session(roomID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	result, err := that.rules.ResolveRoll(sess.game, playerID, roll)
	if err != nil {
		return nil, err
	}

	metrics.RollsResolved.Inc()
	for _, event := range result.Events {
		if event.Type == ludo.EventCaptured {
			metrics.Captures.Inc()
		}
	}

	if result.Winner != "" {
		that.recordWin(ctx, result.Winner)
	}

	if result.GameOver {
		that.terminate(ctx, sess)
		return result, nil
	}

	that.armTurnTimer(sess)
	that.persist(ctx, sess.game)

	return result, nil
}

// Abort kills a session outright; creator only. Aborting a room without
// a session is a no-op.
func (that *GameManager) Abort(ctx context.Context, roomID, actorID string) error {
	sess, err := that.session(roomID)
	if err != nil {
		return nil
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if actorID != sess.game.CreatorID {
		return apperror.ErrUnauthorized
	}

	that.terminate(ctx, sess)

	return nil
}

// Game returns the live state for a room.
func (that *GameManager) Game(roomID string) (*entity.Game, error) {
	sess, err := that.session(roomID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	return sess.game, nil
}

// ResolveTarget maps a display label to a player identity within a room,
// for adapters that receive kick targets as chat mentions. Returns nil
// when no player carries the label.
func (that *GameManager) ResolveTarget(roomID, label string) (*entity.Player, error) {
	sess, err := that.session(roomID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	return sess.game.PlayerByLabel(label), nil
}

// Leaderboard returns the ranked snapshot of a bucket.
func (that *GameManager) Leaderboard(bucket string) []leaderboard.Entry {
	return that.board.Snapshot(bucket)
}

func (that *GameManager) session(roomID string) (*session, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	sess, ok := that.sessions[roomID]
	if !ok {
		return nil, apperror.ErrNoActiveSession
	}

	return sess, nil
}

// terminate ends a session and forgets it; called with the session lock
// held.
func (that *GameManager) terminate(ctx context.Context, sess *session) {
	sess.game.Terminate()
	sess.stopTimer()

	that.mu.Lock()
	if current, ok := that.sessions[sess.game.RoomID]; ok && current == sess {
		delete(that.sessions, sess.game.RoomID)
	}
	that.mu.Unlock()

	if err := that.sessionRepo.DeleteByRoomID(ctx, sess.game.RoomID); err != nil {
		that.logger.Error("failed to delete session snapshot", "room", sess.game.RoomID, "error", err)
	}
}

func (that *GameManager) recordWin(ctx context.Context, name string) {
	metrics.Wins.Inc()

	for _, bucket := range that.board.Record(name) {
		if err := that.boardRepo.RecordWin(ctx, bucket, name); err != nil {
			that.logger.Error("failed to persist win", "bucket", bucket, "name", name, "error", err)
		}
	}
}

func (that *GameManager) persist(ctx context.Context, game *entity.Game) {
	if err := that.sessionRepo.Save(ctx, game); err != nil {
		that.logger.Error("failed to save session snapshot", "room", game.RoomID, "error", err)
	}
}

// armTurnTimer schedules the idle-turn expiry for the turn that just
// started; called with the session lock held. Any previously scheduled
// firing is fenced off by the epoch bump.
func (that *GameManager) armTurnTimer(sess *session) {
	sess.turnEpoch++
	sess.stopTimer()

	if that.opts.TurnTimeout <= 0 || !sess.game.IsActive() {
		return
	}

	roomID := sess.game.RoomID
	instanceID := sess.instanceID
	epoch := sess.turnEpoch

	sess.timer = time.AfterFunc(that.opts.TurnTimeout, func() {
		that.onTurnTimeout(roomID, instanceID, epoch)
	})
}

// onTurnTimeout re-enters the serialized per-session path exactly like a
// normal move: it skips the idle player, removing them once they hit the
// skip limit.
func (that *GameManager) onTurnTimeout(roomID, instanceID string, epoch uint64) {
	ctx := context.Background()

	sess, err := that.session(roomID)
	if err != nil {
		return
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.instanceID != instanceID || sess.turnEpoch != epoch || !sess.game.IsActive() {
		return
	}

	current := sess.game.CurrentPlayer()
	if current == nil {
		return
	}

	metrics.TurnTimeouts.Inc()
	current.Skips++

	log := that.logger.With("room", roomID, "player", current.Label)

	if that.opts.MaxSkips > 0 && current.Skips >= that.opts.MaxSkips {
		log.Info("removing idle player", "skips", current.Skips)

		if _, err = sess.game.RemovePlayer(current.ID); err != nil {
			return
		}

		if len(sess.game.Players) < 2 {
			that.terminate(ctx, sess)
			return
		}
	} else {
		log.Info("skipping idle player", "skips", current.Skips)
		sess.game.AdvanceTurn()
	}

	that.armTurnTimer(sess)
	that.persist(ctx, sess.game)
}

func (that *session) stopTimer() {
	if that.timer != nil {
		that.timer.Stop()
		that.timer = nil
	}
}
