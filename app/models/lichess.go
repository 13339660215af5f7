package models

// LichessEvent is one entry from the bot account's event stream (NDJSON).
type LichessEvent struct {
	Type      string            `json:"type"` // "challenge", "challengeCanceled", "gameStart", "gameFinish"
	Challenge *LichessChallenge `json:"challenge,omitempty"`
	Game      *LichessEventGame `json:"game,omitempty"`
}

type LichessChallenge struct {
	ID      string `json:"id"`
	Rated   bool   `json:"rated"`
	Speed   string `json:"speed"`
	Variant struct {
		Key string `json:"key"` // "standard", "chess960", ...
	} `json:"variant"`
	Challenger struct {
		Name   string `json:"name"`
		Rating int    `json:"rating"`
	} `json:"challenger"`
}

type LichessEventGame struct {
	ID       string `json:"gameId"`
	FullID   string `json:"fullId"`
	Color    string `json:"color"` // "white" or "black"
	Opponent struct {
		Username string `json:"username"`
		Rating   int    `json:"rating"`
	} `json:"opponent"`
	Rated bool   `json:"rated"`
	Speed string `json:"speed"`
}

// GameStreamEvent is one entry from a single game's bot stream. "gameFull"
// carries the players plus an embedded state; "gameState" carries the state
// fields inline.
type GameStreamEvent struct {
	Type  string      `json:"type"` // "gameFull", "gameState", "chatLine", ...
	ID    string      `json:"id,omitempty"`
	White *GamePlayer `json:"white,omitempty"`
	Black *GamePlayer `json:"black,omitempty"`
	State *GameState  `json:"state,omitempty"`

	// gameState payload, inline on the event itself.
	Moves  string `json:"moves,omitempty"`
	Status string `json:"status,omitempty"`
	Winner string `json:"winner,omitempty"`
}

// GameState is the moving part of a game: the cumulative UCI move list plus
// the lichess status string ("started", "mate", "resign", ...).
type GameState struct {
	Moves  string `json:"moves"`
	Status string `json:"status"`
	Winner string `json:"winner,omitempty"`
	WTime  int64  `json:"wtime,omitempty"`
	BTime  int64  `json:"btime,omitempty"`
}

type GamePlayer struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Rating int    `json:"rating"`
	Title  string `json:"title,omitempty"`
}
