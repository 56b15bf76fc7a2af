package entity

// PositionHome marks a token that has not entered the board yet.
const PositionHome = -1

// Markers is the fixed palette assigned to players by join order. A marker
// is unique within a session and is freed when its player leaves.
var Markers = []string{"red", "blue", "green", "yellow", "purple", "orange"}

type Player struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	Marker   string `json:"marker"`
	Position int    `json:"position"`
	Skips    int    `json:"skips,omitempty"`
}

func (that *Player) IsHome() bool {
	return that.Position == PositionHome
}
