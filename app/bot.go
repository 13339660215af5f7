// Game orchestration: accept challenges, rebuild the board from the move
// stream, and hand positions to the selector whenever it is our turn.

package app

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/Srivats-Srihari/Underfish-V2/app/config"
	"github.com/Srivats-Srihari/Underfish-V2/app/models"
	"github.com/notnil/chess"
)

// RunBot consumes the account event stream until it ends: standard challenges
// are accepted, everything else declined, and each started game gets its own
// handler goroutine with a dedicated engine process so analysis calls from
// concurrent games never interleave.
func RunBot(ctx context.Context, client *LichessClient, cfg *config.Config) error {
	log.Printf("WorstBot is online.")
	return client.StreamEvents(ctx, func(ev models.LichessEvent) {
		switch ev.Type {
		case "challenge":
			if ev.Challenge == nil {
				return
			}
			if ev.Challenge.Variant.Key != "standard" {
				log.Printf("declining non-standard challenge %s (%s)", ev.Challenge.ID, ev.Challenge.Variant.Key)
				if err := client.DeclineChallenge(ctx, ev.Challenge.ID); err != nil {
					log.Printf("failed to decline challenge %s: %v", ev.Challenge.ID, err)
				}
				return
			}
			if err := client.AcceptChallenge(ctx, ev.Challenge.ID); err != nil {
				log.Printf("failed to accept challenge %s: %v", ev.Challenge.ID, err)
				return
			}
			log.Printf("accepted challenge: %s from %s", ev.Challenge.ID, ev.Challenge.Challenger.Name)

		case "gameStart":
			if ev.Game == nil {
				return
			}
			myColor := chess.White
			if ev.Game.Color == "black" {
				myColor = chess.Black
			}
			log.Printf("game started: %s, playing as %s", ev.Game.ID, ev.Game.Color)

			eng, err := NewUCIEngine(cfg.Engine.Path)
			if err != nil {
				log.Printf("[%s] failed to start engine: %v", ev.Game.ID, err)
				return
			}
			go func() {
				defer eng.Close()
				_ = eng.NewGame()
				if err := HandleGame(ctx, client, eng, cfg, ev.Game.ID, myColor); err != nil {
					log.Printf("[%s] game handler stopped: %v", ev.Game.ID, err)
				}
			}()
		}
	})
}

// HandleGame plays one game to completion over its bot stream. On every state
// event the board is rebuilt from scratch out of the cumulative move list; the
// caller's engine handle is used for all analysis in this game.
func HandleGame(ctx context.Context, client *LichessClient, eng Evaluator, cfg *config.Config, gameID string, myColor chess.Color) error {
	log.Printf("[%s] Game handler started.", gameID)

	record := models.GameRecord{
		GameID: gameID,
		When:   time.Now().Unix(),
		Color:  colorName(myColor),
	}

	streamErr := client.StreamGame(ctx, gameID, func(ev models.GameStreamEvent) {
		if ev.Type == "gameFull" {
			if opp := opponentOf(ev, myColor); opp != nil {
				record.Opponent = opp.Name
				record.OppRating = opp.Rating
			}
		}
		state := gameStateOf(ev)
		if state == nil {
			return
		}

		g, err := gameFromMoves(state.Moves)
		if err != nil {
			log.Printf("[%s] bad move list %q: %v", gameID, state.Moves, err)
			return
		}
		record.Status = state.Status
		record.Winner = state.Winner

		if gameOver(g, state) {
			log.Printf("[%s] game over: %s", gameID, state.Status)
			return
		}
		if g.Position().Turn() != myColor {
			return
		}

		log.Printf("[%s] Thinking...", gameID)
		sel := PickWorstSurvivableMove(ctx, g, eng, cfg)
		if sel.Move == nil {
			log.Printf("[%s] No safe move found!", gameID)
			return
		}

		uci := sel.Move.String()
		log.Printf("[%s] Playing move: %s (%s)", gameID, uci, sel.Reason)
		if err := client.MakeMove(ctx, gameID, uci); err != nil {
			log.Printf("[%s] Failed to make move: %v", gameID, err)
			return
		}
		record.Moves = append(record.Moves, models.MoveRecord{
			Ply:     len(g.Moves()) + 1,
			MoveUCI: uci,
			Reason:  sel.Reason,
			CPAfter: sel.CP,
			FEN:     g.Position().String(),
		})
	})

	// Persist whatever we saw, even if the stream died mid-game.
	if err := SaveGameRecord(context.Background(), record); err != nil {
		log.Printf("[%s] failed to save game record: %v", gameID, err)
	}
	return streamErr
}

// gameFromMoves rebuilds a game from the cumulative space-separated UCI move
// list lichess sends on every state event.
func gameFromMoves(moves string) (*chess.Game, error) {
	g := chess.NewGame()
	for _, uci := range strings.Fields(moves) {
		m, err := chess.UCINotation{}.Decode(g.Position(), uci)
		if err != nil {
			return nil, fmt.Errorf("decode %q: %w", uci, err)
		}
		if err := g.Move(m); err != nil {
			return nil, fmt.Errorf("apply %q: %w", uci, err)
		}
	}
	return g, nil
}

// gameStateOf normalizes the two stream event shapes into one state.
func gameStateOf(ev models.GameStreamEvent) *models.GameState {
	switch ev.Type {
	case "gameFull":
		return ev.State
	case "gameState":
		return &models.GameState{Moves: ev.Moves, Status: ev.Status, Winner: ev.Winner}
	}
	return nil
}

func opponentOf(ev models.GameStreamEvent, myColor chess.Color) *models.GamePlayer {
	if myColor == chess.White {
		return ev.Black
	}
	return ev.White
}

func gameOver(g *chess.Game, state *models.GameState) bool {
	if g.Outcome() != chess.NoOutcome {
		return true
	}
	return state.Status != "" && state.Status != "created" && state.Status != "started"
}

func colorName(c chess.Color) string {
	if c == chess.White {
		return "white"
	}
	return "black"
}
