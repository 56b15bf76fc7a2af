package entity

import (
	"github.com/rocketscienceinc/ludo-backend/internal/apperror"
)

const (
	StatusLobby      = "lobby"
	StatusActive     = "active"
	StatusTerminated = "terminated"
)

// Game is one running session scoped to a chat room. It owns the ordered
// player list (join order is turn order) and the turn cursor.
type Game struct {
	RoomID     string    `json:"room_id"`
	CreatorID  string    `json:"creator_id"`
	Status     string    `json:"status"`
	MaxPlayers int       `json:"max_players"`
	Players    []*Player `json:"players"`
	TurnIndex  int       `json:"turn_index"`
}

func NewGame(roomID, creatorID string, maxPlayers int) *Game {
	return &Game{
		RoomID:     roomID,
		CreatorID:  creatorID,
		Status:     StatusLobby,
		MaxPlayers: maxPlayers,
	}
}

func (that *Game) IsLobby() bool {
	return that.Status == StatusLobby
}

func (that *Game) IsActive() bool {
	return that.Status == StatusActive
}

func (that *Game) IsTerminated() bool {
	return that.Status == StatusTerminated
}

// AddPlayer registers a player in the lobby and assigns the first unused
// marker from the palette.
func (that *Game) AddPlayer(id, label string) (*Player, error) {
	if !that.IsLobby() {
		return nil, apperror.ErrGameInProgress
	}

	if that.PlayerByID(id) != nil {
		return nil, apperror.ErrAlreadyJoined
	}

	if len(that.Players) >= that.MaxPlayers {
		return nil, apperror.ErrLobbyFull
	}

	player := &Player{
		ID:       id,
		Label:    label,
		Marker:   that.unusedMarker(),
		Position: PositionHome,
	}
	that.Players = append(that.Players, player)

	return player, nil
}

// RemovePlayer drops a player from the session and repairs the turn
// cursor so it keeps pointing at the same logical next player.
func (that *Game) RemovePlayer(id string) (*Player, error) {
	index := that.indexOf(id)
	if index < 0 {
		return nil, apperror.ErrNotPresent
	}

	removed := that.Players[index]
	that.Players = append(that.Players[:index], that.Players[index+1:]...)
	that.repairTurn(index)

	return removed, nil
}

// Begin moves the session from lobby to active play. The first player to
// have joined moves first.
func (that *Game) Begin() error {
	if !that.IsLobby() {
		return apperror.ErrGameInProgress
	}

	if len(that.Players) < 2 {
		return apperror.ErrNotEnoughPlayers
	}

	that.Status = StatusActive
	that.TurnIndex = 0

	return nil
}

// Terminate is idempotent; a terminated session accepts no further turns.
func (that *Game) Terminate() {
	that.Status = StatusTerminated
}

// CurrentPlayer returns the player at the turn cursor, or nil when the
// session has no players left.
func (that *Game) CurrentPlayer() *Player {
	if len(that.Players) == 0 {
		return nil
	}

	return that.Players[that.TurnIndex]
}

// AdvanceTurn moves the cursor to the next player. No-op on an empty
// session.
func (that *Game) AdvanceTurn() {
	if len(that.Players) == 0 {
		return
	}

	that.TurnIndex = (that.TurnIndex + 1) % len(that.Players)
}

func (that *Game) PlayerByID(id string) *Player {
	if index := that.indexOf(id); index >= 0 {
		return that.Players[index]
	}

	return nil
}

// PlayerByLabel resolves a display label to a player, nil when no player
// carries that label. Used by adapters to resolve kick targets from chat
// mentions instead of fabricating stand-in identities.
func (that *Game) PlayerByLabel(label string) *Player {
	for _, player := range that.Players {
		if player.Label == label {
			return player
		}
	}

	return nil
}

// PlayersAt returns all players occupying a tile, except the one with
// excludeID.
func (that *Game) PlayersAt(tile int, excludeID string) []*Player {
	var occupants []*Player
	for _, player := range that.Players {
		if player.ID != excludeID && player.Position == tile {
			occupants = append(occupants, player)
		}
	}

	return occupants
}

func (that *Game) indexOf(id string) int {
	for i, player := range that.Players {
		if player.ID == id {
			return i
		}
	}

	return -1
}

// repairTurn keeps the cursor valid after the player at removedIndex has
// been cut out of the sequence: a removal before the cursor shifts it
// left by one, then the cursor is clamped into the remaining range.
func (that *Game) repairTurn(removedIndex int) {
	if removedIndex < that.TurnIndex && that.TurnIndex > 0 {
		that.TurnIndex--
	}

	if len(that.Players) == 0 || that.TurnIndex >= len(that.Players) {
		that.TurnIndex = 0
	}
}

func (that *Game) unusedMarker() string {
	for _, marker := range Markers {
		taken := false
		for _, player := range that.Players {
			if player.Marker == marker {
				taken = true
				break
			}
		}
		if !taken {
			return marker
		}
	}

	return ""
}
