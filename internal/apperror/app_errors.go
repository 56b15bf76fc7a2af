package apperror

import "errors"

var (
	ErrNoActiveSession  = errors.New("no active session for this room")
	ErrAlreadyJoined    = errors.New("player already joined")
	ErrLobbyFull        = errors.New("lobby is full")
	ErrNotEnoughPlayers = errors.New("not enough players to begin")
	ErrNotPresent       = errors.New("player is not in this game")
	ErrNotYourTurn      = errors.New("it's not your turn")
	ErrGameIsNotStarted = errors.New("game is not started")
	ErrGameInProgress   = errors.New("game is already in progress")
	ErrGameTerminated   = errors.New("game is already terminated")
	ErrUnauthorized     = errors.New("action requires the game creator")
	ErrInvalidRoll      = errors.New("roll value is out of range")
)
