// The worst-move policy: pick the move that hurts us the most without ever
// stepping into a forced mate or giving up more than the configured caps.

package app

import (
	"context"
	"log"
	"math/rand"

	"github.com/Srivats-Srihari/Underfish-V2/app/config"
	"github.com/Srivats-Srihari/Underfish-V2/app/models"
	"github.com/notnil/chess"
)

// Evaluator is the analysis capability the selector consumes. Implementations
// must serialize concurrent calls per instance; the selector itself issues at
// most one query at a time.
type Evaluator interface {
	EvalFEN(ctx context.Context, fen string, settings models.EngineSettings) (models.UCIScore, error)
}

// Selection is the selector's verdict for one position. A nil Move means the
// position has no legal moves.
type Selection struct {
	Move   *chess.Move
	Reason string
	CP     *int // post-move eval from our side, set when the worst-candidate rule decided
}

// Selection reasons, in rough priority order.
const (
	ReasonNoMoves       = "no-legal-moves"
	ReasonCheckSurvival = "in-check-best-move"
	ReasonMateWin       = "winning-mate"
	ReasonMateDanger    = "mate-danger-best-move"
	ReasonEvalFloor     = "eval-floor-best-move"
	ReasonWorst         = "worst-candidate"
	ReasonFallback      = "no-candidate-best-move"
	ReasonRandom        = "random-fallback"
)

type candidate struct {
	cp   int
	move *chess.Move
}

// PickWorstSurvivableMove returns the worst legal move from the side to move's
// perspective, subject to survivability constraints:
//   - never a move that allows a forced mate against us,
//   - never a one-move centipawn drop larger than CPCapOneMove.
//
// Emergency rules override worst-move seeking entirely:
//   - in check -> play the engine's best move,
//   - a move that mates the opponent -> play it,
//   - more than SurvivalMateRatio of moves allow forced mate against us -> best move,
//   - current eval below SurvivalEvalFloor -> best move.
//
// Every engine call is independently fault-tolerant: an unanalyzable move is
// skipped, a failed baseline defaults to neutral, and only the outermost
// fallbacks degrade to a uniformly random legal move.
func PickWorstSurvivableMove(ctx context.Context, g *chess.Game, eng Evaluator, cfg *config.Config) Selection {
	legal := g.ValidMoves()
	if len(legal) == 0 {
		return Selection{Reason: ReasonNoMoves}
	}

	pos := g.Position()
	evalSettings := models.EngineSettings{Depth: cfg.Selector.EvalDepth, UseDepth: true, MultiPV: 1}

	// Emergency: if in check, play best move to survive.
	if inCheck(g) {
		log.Printf("selector: in check, playing best move")
		if best := bestEngineMove(ctx, eng, pos, legal, evalSettings); best != nil {
			return Selection{Move: best, Reason: ReasonCheckSurvival}
		}
		return Selection{Move: randomMove(legal), Reason: ReasonRandom}
	}

	// Current evaluation from our side. Neutral when the engine fails or
	// reports a mate; only per-move mate checks act on mate scores.
	baseline := 0
	if score, err := eng.EvalFEN(ctx, pos.String(), evalSettings); err != nil {
		log.Printf("selector: engine error obtaining current eval: %v", err)
	} else if cp, ok := scoreForSideToMove(score).Centipawns(); ok {
		baseline = cp
	}

	// Mate-aware depth for the per-move scan so mate lines are found reliably.
	mateSettings := models.EngineSettings{Depth: cfg.Selector.MaxMateDepth, UseDepth: true}

	var (
		candidates []candidate
		mateLosses int
		mateWin    *chess.Move
	)
	for _, move := range legal {
		after := pos.Update(move)
		score, err := eng.EvalFEN(ctx, after.String(), mateSettings)
		if err != nil {
			// Skip moves we cannot analyze reliably.
			log.Printf("selector: engine failed for %s, skipping: %v", move, err)
			continue
		}

		ev := scoreForMover(score)
		if n, ok := ev.Mate(); ok {
			if n > 0 {
				// This move lets us mate the opponent: instant winner.
				if mateWin == nil {
					log.Printf("selector: mate found for us with %s in %d", move, n)
					mateWin = move
				}
			} else {
				mateLosses++
				log.Printf("selector: skipping %s, leads to mate in %d", move, -n)
			}
			continue
		}

		cp, ok := ev.Centipawns()
		if !ok {
			log.Printf("selector: could not obtain cp for %s, skipping", move)
			continue
		}

		// How much worse we become after playing this move.
		drop := baseline - cp
		if drop > cfg.Selector.CPCapOneMove {
			log.Printf("selector: skipping %s, one-move drop %d cp > %d", move, drop, cfg.Selector.CPCapOneMove)
			continue
		}

		candidates = append(candidates, candidate{cp: cp, move: move})
	}

	// A direct mate for us beats everything, whatever order the scan found it in.
	if mateWin != nil {
		return Selection{Move: mateWin, Reason: ReasonMateWin}
	}

	// Winning-mate moves stay in the denominator here.
	if float64(mateLosses)/float64(len(legal)) > cfg.Selector.SurvivalMateRatio {
		log.Printf("selector: %d/%d moves lead to mate, playing best move", mateLosses, len(legal))
		if best := bestEngineMove(ctx, eng, pos, legal, evalSettings); best != nil {
			return Selection{Move: best, Reason: ReasonMateDanger}
		}
		return Selection{Move: randomMove(legal), Reason: ReasonRandom}
	}

	// If the position is already lost beyond the floor, play to survive.
	// An engine failure here falls through to the remaining rules.
	if score, err := eng.EvalFEN(ctx, pos.String(), evalSettings); err == nil {
		if cp, ok := scoreForSideToMove(score).Centipawns(); ok && cp < cfg.Selector.SurvivalEvalFloor {
			log.Printf("selector: current eval %d below %d, survival mode", cp, cfg.Selector.SurvivalEvalFloor)
			if best := bestEngineMove(ctx, eng, pos, legal, evalSettings); best != nil {
				return Selection{Move: best, Reason: ReasonEvalFloor}
			}
		}
	}

	if len(candidates) > 0 {
		worst := candidates[0]
		for _, c := range candidates[1:] {
			if c.cp < worst.cp {
				worst = c
			}
		}
		log.Printf("selector: picking worst survivable move %s at %d cp", worst.move, worst.cp)
		cp := worst.cp
		return Selection{Move: worst.move, Reason: ReasonWorst, CP: &cp}
	}

	// Nothing survivable found; fall back to best move, then to any legal move.
	log.Printf("selector: no survivable candidates, falling back to best move")
	if best := bestEngineMove(ctx, eng, pos, legal, evalSettings); best != nil {
		return Selection{Move: best, Reason: ReasonFallback}
	}
	return Selection{Move: randomMove(legal), Reason: ReasonRandom}
}

// bestEngineMove asks the engine for its top move and resolves it against the
// legal move list. Returns nil when the engine fails or suggests a move we
// cannot match.
func bestEngineMove(ctx context.Context, eng Evaluator, pos *chess.Position, legal []*chess.Move, settings models.EngineSettings) *chess.Move {
	score, err := eng.EvalFEN(ctx, pos.String(), settings)
	if err != nil {
		log.Printf("selector: engine failed to return best move: %v", err)
		return nil
	}
	best := score.Best
	if len(score.Lines) > 0 && len(score.Lines[0].PV) > 0 {
		best = score.Lines[0].PV[0]
	}
	for _, m := range legal {
		if m.String() == best {
			return m
		}
	}
	return nil
}

// inCheck reports whether the side to move is in check. Games here are always
// rebuilt from the full move list, so the last recorded move carries the tag.
func inCheck(g *chess.Game) bool {
	moves := g.Moves()
	if len(moves) == 0 {
		return false
	}
	return moves[len(moves)-1].HasTag(chess.Check)
}

func randomMove(legal []*chess.Move) *chess.Move {
	return legal[rand.Intn(len(legal))]
}
