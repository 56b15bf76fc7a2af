package ludo

import (
	"github.com/rocketscienceinc/ludo-backend/internal/apperror"
	"github.com/rocketscienceinc/ludo-backend/internal/entity"
)

const (
	EventEntered  = "entered"
	EventRejected = "rejected"
	EventMoved    = "moved"
	EventCaptured = "captured"
	EventFinished = "finished"
)

const (
	ReasonNeedsEntryRoll = "needs-entry-roll"
	ReasonNeedsExactRoll = "needs-exact-roll"
)

// Event is one step of a resolved roll, in resolution order: the mover's
// own movement first, then any captures it caused.
type Event struct {
	Type   string `json:"type"`
	Reason string `json:"reason,omitempty"`
	Victim string `json:"victim,omitempty"`
	From   int    `json:"from"`
	To     int    `json:"to"`
}

// RollResult is the structured outcome handed back to the chat adapter.
// The engine never formats it.
type RollResult struct {
	Mover      string  `json:"mover"`
	Rolled     int     `json:"rolled"`
	Events     []Event `json:"events"`
	NextPlayer string  `json:"next_player,omitempty"`
	Winner     string  `json:"winner,omitempty"`
	GameOver   bool    `json:"game_over,omitempty"`
}

// Rules resolves rolls against a session. The extra-turn value doubles as
// the entry roll and as the maximum die face.
type Rules struct {
	Track             *entity.Track
	ExtraTurnValue    int
	FirstFinisherWins bool
}

// ResolveRoll runs one turn through movement, capture and finish
// resolution. Rejected rolls are normal outcomes, not errors: they
// consume the turn even when the rolled value is the extra-turn value.
// Only a successful move retains the turn.
func (that *Rules) ResolveRoll(game *entity.Game, playerID string, roll int) (*RollResult, error) {
	if game.IsTerminated() {
		return nil, apperror.ErrGameTerminated
	}

	if !game.IsActive() {
		return nil, apperror.ErrGameIsNotStarted
	}

	if roll < 1 || roll > that.ExtraTurnValue {
		return nil, apperror.ErrInvalidRoll
	}

	current := game.CurrentPlayer()
	if current == nil || current.ID != playerID {
		return nil, apperror.ErrNotYourTurn
	}

	current.Skips = 0

	result := &RollResult{Mover: current.Label, Rolled: roll}

	if current.IsHome() {
		that.resolveEntry(game, current, roll, result)
	} else {
		that.resolveMove(game, current, roll, result)
	}

	if !result.GameOver {
		if next := game.CurrentPlayer(); next != nil {
			result.NextPlayer = next.Label
		}
	}

	return result, nil
}

func (that *Rules) resolveEntry(game *entity.Game, mover *entity.Player, roll int, result *RollResult) {
	if roll != that.ExtraTurnValue {
		result.Events = append(result.Events, Event{
			Type:   EventRejected,
			Reason: ReasonNeedsEntryRoll,
			From:   entity.PositionHome,
			To:     entity.PositionHome,
		})
		game.AdvanceTurn()

		return
	}

	that.land(game, mover, EventEntered, 0, roll, result)
}

func (that *Rules) resolveMove(game *entity.Game, mover *entity.Player, roll int, result *RollResult) {
	tentative := mover.Position + roll

	switch {
	case tentative > that.Track.Length:
		// Overshooting is illegal: the player must roll the exact
		// remaining distance.
		result.Events = append(result.Events, Event{
			Type:   EventRejected,
			Reason: ReasonNeedsExactRoll,
			From:   mover.Position,
			To:     mover.Position,
		})
		game.AdvanceTurn()
	case tentative == that.Track.Length:
		that.finish(game, mover, result)
	default:
		that.land(game, mover, EventMoved, tentative, roll, result)
	}
}

// land finalizes the mover's position (applying any special-tile shift)
// and then resolves captures on the final tile. Capture is skipped on
// safe tiles regardless of occupant count.
func (that *Rules) land(game *entity.Game, mover *entity.Player, eventType string, tile, roll int, result *RollResult) {
	from := mover.Position
	final := that.Track.Land(tile)
	mover.Position = final

	result.Events = append(result.Events, Event{Type: eventType, From: from, To: final})

	if !that.Track.IsSafe(final) {
		for _, victim := range game.PlayersAt(final, mover.ID) {
			victim.Position = entity.PositionHome
			result.Events = append(result.Events, Event{
				Type:   EventCaptured,
				Victim: victim.Label,
				From:   final,
				To:     entity.PositionHome,
			})
		}
	}

	if roll != that.ExtraTurnValue {
		game.AdvanceTurn()
	}
}

// finish removes the finisher from the session; the removal repairs the
// cursor, so the turn is not advanced again. The finisher's extra-turn
// exception is moot since they have left the game.
func (that *Rules) finish(game *entity.Game, mover *entity.Player, result *RollResult) {
	result.Events = append(result.Events, Event{
		Type: EventFinished,
		From: mover.Position,
		To:   that.Track.Length,
	})
	result.Winner = mover.Label

	_, _ = game.RemovePlayer(mover.ID)

	if that.FirstFinisherWins || len(game.Players) <= 1 {
		game.Terminate()
		result.GameOver = true
	}
}
