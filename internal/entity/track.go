package entity

import (
	"errors"
	"fmt"
)

var (
	ErrTrackTooShort  = errors.New("track must have at least two tiles")
	ErrTileOutOfTrack = errors.New("tile index is outside the track")
)

// Track is the shared board: tiles 0..Length-1, a subset of safe tiles
// where capture never happens and an optional set of special tiles that
// shift a token on landing.
type Track struct {
	Length int

	safe  map[int]struct{}
	leaps map[int]int
}

func NewTrack(length int, safeTiles []int, leaps map[int]int) (*Track, error) {
	if length < 2 {
		return nil, fmt.Errorf("%w: got %d", ErrTrackTooShort, length)
	}

	track := &Track{
		Length: length,
		safe:   make(map[int]struct{}, len(safeTiles)),
		leaps:  make(map[int]int, len(leaps)),
	}

	for _, tile := range safeTiles {
		if tile < 0 || tile >= length {
			return nil, fmt.Errorf("%w: safe tile %d", ErrTileOutOfTrack, tile)
		}
		track.safe[tile] = struct{}{}
	}

	for tile, offset := range leaps {
		if tile < 0 || tile >= length {
			return nil, fmt.Errorf("%w: special tile %d", ErrTileOutOfTrack, tile)
		}
		track.leaps[tile] = offset
	}

	return track, nil
}

func (that *Track) IsSafe(tile int) bool {
	_, ok := that.safe[tile]
	return ok
}

// Land applies the special-tile shift, if any, to a landing position.
// The result is clamped onto the track: a shift never finishes a token
// and never pushes it off the board.
func (that *Track) Land(tile int) int {
	offset, ok := that.leaps[tile]
	if !ok {
		return tile
	}

	shifted := tile + offset
	if shifted < 0 {
		return 0
	}
	if shifted >= that.Length {
		return that.Length - 1
	}

	return shifted
}
