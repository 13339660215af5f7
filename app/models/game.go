package models

// What we store in the DB once a game ends (trimmed & consistent DTO)
type GameRecord struct {
	GameID    string       `json:"game_id"`
	When      int64        `json:"when_unix"`
	Color     string       `json:"color"` // "white" or "black"
	Opponent  string       `json:"opponent"`
	OppRating int          `json:"opponent_rating"`
	Rated     bool         `json:"rated"`
	Speed     string       `json:"speed"`
	Status    string       `json:"status"` // terminal lichess status: "mate","resign","outoftime", etc.
	Winner    string       `json:"winner,omitempty"`
	Moves     []MoveRecord `json:"moves,omitempty"`
}

// MoveRecord is one decision the bot made during a game.
type MoveRecord struct {
	Ply     int    `json:"ply"`
	MoveUCI string `json:"move_uci"`
	Reason  string `json:"reason"` // which selection rule produced the move
	CPAfter *int   `json:"cp_after,omitempty"` // post-move eval from our side, when the worst-move rule decided
	FEN     string `json:"fen"` // position the move was chosen in
}
