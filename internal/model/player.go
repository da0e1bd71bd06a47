package model

type Player struct {
	ID string
}

type ClientPlayer struct {
	ID    string `json:"name"`
	Color Color  `json:"color"`
}

// Seats holds the two seated players of a session. Empty ID means the seat is free.
type Seats struct {
	White ClientPlayer `json:"white"`
	Black ClientPlayer `json:"black"`
}

func (s Seats) has(playerID string) bool {
	return playerID != "" && (s.White.ID == playerID || s.Black.ID == playerID)
}

func (s Seats) colorOf(playerID string) (Color, bool) {
	switch {
	case playerID == "":
		return "", false
	case s.White.ID == playerID:
		return White, true
	case s.Black.ID == playerID:
		return Black, true
	}
	return "", false
}

func (s Seats) full() bool {
	return s.White.ID != "" && s.Black.ID != ""
}
