package models

type UCIScore struct {
	// Exactly one of these will be set:
	CP   *int   `json:"cp,omitempty"`   // centipawns, positive means advantage for side to move
	Mate *int   `json:"mate,omitempty"` // mate in N, sign indicates who is mating (+ means side to move mates)
	Best string `json:"bestmove"`       // engine best move in UCI, e.g. "e2e4"

	// Ranked lines, best first. Only populated for MultiPV searches.
	Lines []EngineLine `json:"lines,omitempty"`
}

// EngineLine is one ranked line from a MultiPV search.
type EngineLine struct {
	Rank int      `json:"rank"` // 1-based multipv index
	CP   *int     `json:"cp,omitempty"`
	Mate *int     `json:"mate,omitempty"`
	PV   []string `json:"pv,omitempty"` // principal variation in UCI
}

// EngineSettings drives how we query Stockfish for a position.
type EngineSettings struct {
	Depth      int  `json:"depth"`
	MoveTimeMS int  `json:"move_time_ms"`
	UseDepth   bool `json:"use_depth"` // if false, use movetime
	MultiPV    int  `json:"multipv,omitempty"` // 0 and 1 both mean a single line
}
