package app

import (
	"context"
	"errors"
	"testing"

	"github.com/Srivats-Srihari/Underfish-V2/app/config"
	"github.com/Srivats-Srihari/Underfish-V2/app/models"
	"github.com/notnil/chess"
)

func intPtr(v int) *int { return &v }

// fakeEvaluator scripts engine answers by FEN. Unmapped positions get the
// default score (or default error).
type fakeEvaluator struct {
	scores map[string]models.UCIScore
	errs   map[string]error
	def    models.UCIScore
	defErr error
	calls  int
}

func (f *fakeEvaluator) EvalFEN(_ context.Context, fen string, _ models.EngineSettings) (models.UCIScore, error) {
	f.calls++
	if err, ok := f.errs[fen]; ok {
		return models.UCIScore{}, err
	}
	if s, ok := f.scores[fen]; ok {
		return s, nil
	}
	if f.defErr != nil {
		return models.UCIScore{}, f.defErr
	}
	return f.def, nil
}

func testConfig() *config.Config {
	return &config.Config{
		Selector: config.SelectorConfig{
			EvalDepth:         10,
			MaxMateDepth:      25,
			CPCapOneMove:      550,
			CPCapTotal:        -925,
			SurvivalMateRatio: 0.25,
			SurvivalEvalFloor: -1250,
		},
	}
}

func gameFromUCIs(t *testing.T, ucis ...string) *chess.Game {
	t.Helper()
	g := chess.NewGame()
	for _, uci := range ucis {
		m, err := chess.UCINotation{}.Decode(g.Position(), uci)
		if err != nil {
			t.Fatalf("decode %s: %v", uci, err)
		}
		if err := g.Move(m); err != nil {
			t.Fatalf("apply %s: %v", uci, err)
		}
	}
	return g
}

// afterFEN is the position reached by playing uci from g, keyed exactly the
// way the selector queries the engine.
func afterFEN(t *testing.T, g *chess.Game, uci string) string {
	t.Helper()
	for _, m := range g.ValidMoves() {
		if m.String() == uci {
			return g.Position().Update(m).String()
		}
	}
	t.Fatalf("move %s not legal in %s", uci, g.Position().String())
	return ""
}

func TestSelectorNoLegalMoves(t *testing.T) {
	// Fool's mate: white is checkmated, zero legal moves.
	g := gameFromUCIs(t, "f2f3", "e7e5", "g2g4", "d8h4")
	eng := &fakeEvaluator{}

	sel := PickWorstSurvivableMove(context.Background(), g, eng, testConfig())
	if sel.Move != nil || sel.Reason != ReasonNoMoves {
		t.Fatalf("expected no move, got %+v", sel)
	}
	if eng.calls != 0 {
		t.Fatalf("evaluator should not be queried with no legal moves, got %d calls", eng.calls)
	}
}

func TestSelectorInCheckPlaysBestMove(t *testing.T) {
	// 1. c4 d5 2. Qa4+ leaves black to move, in check.
	g := gameFromUCIs(t, "c2c4", "d7d5", "d1a4")
	eng := &fakeEvaluator{
		scores: map[string]models.UCIScore{
			g.Position().String(): {CP: intPtr(-40), Best: "b8c6"},
		},
	}

	sel := PickWorstSurvivableMove(context.Background(), g, eng, testConfig())
	if sel.Move == nil || sel.Move.String() != "b8c6" {
		t.Fatalf("expected engine best move b8c6, got %+v", sel)
	}
	if sel.Reason != ReasonCheckSurvival {
		t.Fatalf("expected check-survival reason, got %s", sel.Reason)
	}
	if eng.calls != 1 {
		t.Fatalf("in check only the best-move query should run, got %d calls", eng.calls)
	}
}

func TestSelectorInCheckEngineFailureGoesRandom(t *testing.T) {
	g := gameFromUCIs(t, "c2c4", "d7d5", "d1a4")
	eng := &fakeEvaluator{defErr: errors.New("engine crashed")}

	sel := PickWorstSurvivableMove(context.Background(), g, eng, testConfig())
	if sel.Move == nil || sel.Reason != ReasonRandom {
		t.Fatalf("expected random fallback, got %+v", sel)
	}
	found := false
	for _, m := range g.ValidMoves() {
		if m.String() == sel.Move.String() {
			found = true
		}
	}
	if !found {
		t.Fatalf("random fallback returned a non-legal move: %s", sel.Move)
	}
}

func TestSelectorPicksWorstSurvivableCandidate(t *testing.T) {
	g := chess.NewGame()
	eng := &fakeEvaluator{
		scores: map[string]models.UCIScore{
			// Baseline: +20 for white.
			g.Position().String(): {CP: intPtr(20), Best: "d2d4"},
			// Scores below are from black's side after the push, so the
			// selector sees them negated. e2e4: -500 for us, drop 520, kept.
			afterFEN(t, g, "e2e4"): {CP: intPtr(500)},
			// a2a3: -900 for us, drop 920 over the 550 cap, filtered out.
			afterFEN(t, g, "a2a3"): {CP: intPtr(900)},
		},
		// Everything else evaluates to 0 for us, drop 20, kept.
		def: models.UCIScore{CP: intPtr(0)},
	}

	sel := PickWorstSurvivableMove(context.Background(), g, eng, testConfig())
	if sel.Move == nil || sel.Move.String() != "e2e4" {
		t.Fatalf("expected worst survivable e2e4, got %+v", sel)
	}
	if sel.Reason != ReasonWorst {
		t.Fatalf("expected worst-candidate reason, got %s", sel.Reason)
	}
	if sel.CP == nil || *sel.CP != -500 {
		t.Fatalf("expected cp -500, got %+v", sel.CP)
	}
}

func TestSelectorPrefersWinningMate(t *testing.T) {
	g := chess.NewGame()
	eng := &fakeEvaluator{
		scores: map[string]models.UCIScore{
			g.Position().String(): {CP: intPtr(20), Best: "d2d4"},
			// Opponent gets mated in 2 after e2e4: instant winner for us.
			afterFEN(t, g, "e2e4"): {Mate: intPtr(-2)},
			// A much "worse" candidate that must lose to the mate move.
			afterFEN(t, g, "g1f3"): {CP: intPtr(500)},
		},
		def: models.UCIScore{CP: intPtr(0)},
	}

	sel := PickWorstSurvivableMove(context.Background(), g, eng, testConfig())
	if sel.Move == nil || sel.Move.String() != "e2e4" {
		t.Fatalf("expected mate move e2e4, got %+v", sel)
	}
	if sel.Reason != ReasonMateWin {
		t.Fatalf("expected winning-mate reason, got %s", sel.Reason)
	}
}

func TestSelectorMateDangerPlaysBestMove(t *testing.T) {
	g := chess.NewGame()
	scores := map[string]models.UCIScore{
		g.Position().String(): {CP: intPtr(20), Best: "e2e4"},
		// A tempting candidate that must not be chosen.
		afterFEN(t, g, "d2d4"): {CP: intPtr(400)},
	}
	// 6 of 20 moves (30% > 25%) let the opponent force mate.
	for _, uci := range []string{"a2a3", "a2a4", "b2b3", "b2b4", "c2c3", "c2c4"} {
		scores[afterFEN(t, g, uci)] = models.UCIScore{Mate: intPtr(3)}
	}
	eng := &fakeEvaluator{scores: scores, def: models.UCIScore{CP: intPtr(0)}}

	sel := PickWorstSurvivableMove(context.Background(), g, eng, testConfig())
	if sel.Move == nil || sel.Move.String() != "e2e4" {
		t.Fatalf("expected best move e2e4 in mate danger, got %+v", sel)
	}
	if sel.Reason != ReasonMateDanger {
		t.Fatalf("expected mate-danger reason, got %s", sel.Reason)
	}
}

func TestSelectorMateDangerUnresolvedBestGoesRandom(t *testing.T) {
	g := chess.NewGame()
	// Baseline carries no best move, so the survival query cannot resolve one.
	scores := map[string]models.UCIScore{
		g.Position().String(): {CP: intPtr(20)},
	}
	for _, uci := range []string{"a2a3", "a2a4", "b2b3", "b2b4", "c2c3", "c2c4"} {
		scores[afterFEN(t, g, uci)] = models.UCIScore{Mate: intPtr(3)}
	}
	eng := &fakeEvaluator{scores: scores, def: models.UCIScore{CP: intPtr(0)}}

	sel := PickWorstSurvivableMove(context.Background(), g, eng, testConfig())
	if sel.Move == nil || sel.Reason != ReasonRandom {
		t.Fatalf("expected random fallback, got %+v", sel)
	}
}

func TestSelectorEvalFloorTriggersSurvival(t *testing.T) {
	g := chess.NewGame()
	eng := &fakeEvaluator{
		scores: map[string]models.UCIScore{
			// Already lost beyond the floor.
			g.Position().String(): {CP: intPtr(-1300), Best: "e2e4"},
		},
		def: models.UCIScore{CP: intPtr(0)},
	}

	sel := PickWorstSurvivableMove(context.Background(), g, eng, testConfig())
	if sel.Move == nil || sel.Move.String() != "e2e4" {
		t.Fatalf("expected best move below eval floor, got %+v", sel)
	}
	if sel.Reason != ReasonEvalFloor {
		t.Fatalf("expected eval-floor reason, got %s", sel.Reason)
	}
}

func TestSelectorDeclaredTotalCapIsNotTheFloor(t *testing.T) {
	// -1000 is below the declared CPCapTotal (-925) but above the enforced
	// floor (-1250); worst-move seeking must continue.
	g := chess.NewGame()
	eng := &fakeEvaluator{
		scores: map[string]models.UCIScore{
			g.Position().String(): {CP: intPtr(-1000), Best: "e2e4"},
		},
		def: models.UCIScore{CP: intPtr(0)},
	}

	sel := PickWorstSurvivableMove(context.Background(), g, eng, testConfig())
	if sel.Reason != ReasonWorst {
		t.Fatalf("expected worst-candidate play at -1000, got %+v", sel)
	}
}

func TestSelectorAllUnknownFallsBackRandom(t *testing.T) {
	g := chess.NewGame()
	eng := &fakeEvaluator{
		scores: map[string]models.UCIScore{
			// Baseline has a cp but no resolvable best move.
			g.Position().String(): {CP: intPtr(20)},
		},
		// Every per-move score is unclassifiable: all moves are skipped.
		def: models.UCIScore{},
	}

	sel := PickWorstSurvivableMove(context.Background(), g, eng, testConfig())
	if sel.Move == nil || sel.Reason != ReasonRandom {
		t.Fatalf("expected random fallback with no candidates, got %+v", sel)
	}
}

func TestSelectorSkipsUnanalyzableMove(t *testing.T) {
	g := chess.NewGame()
	eng := &fakeEvaluator{
		scores: map[string]models.UCIScore{
			g.Position().String(): {CP: intPtr(20), Best: "e2e4"},
			// The would-be worst move cannot be analyzed: skip it.
			afterFEN(t, g, "d2d4"): {CP: intPtr(300)},
		},
		errs: map[string]error{
			afterFEN(t, g, "e2e4"): errors.New("engine hiccup"),
		},
		def: models.UCIScore{CP: intPtr(0)},
	}

	sel := PickWorstSurvivableMove(context.Background(), g, eng, testConfig())
	if sel.Move == nil || sel.Move.String() != "d2d4" {
		t.Fatalf("expected d2d4 after skipping unanalyzable e2e4, got %+v", sel)
	}
	if sel.Reason != ReasonWorst {
		t.Fatalf("expected worst-candidate reason, got %s", sel.Reason)
	}
}

func TestSelectorBaselineDefaultsToZero(t *testing.T) {
	// A mate score at the baseline step is not informative for the drop
	// computation; the baseline stays 0 and candidates survive on their own.
	g := chess.NewGame()
	eng := &fakeEvaluator{
		scores: map[string]models.UCIScore{
			g.Position().String():  {Mate: intPtr(2), Best: "e2e4"},
			afterFEN(t, g, "e2e4"): {CP: intPtr(400)}, // -400 for us, drop 400 from 0
		},
		def: models.UCIScore{CP: intPtr(0)},
	}

	sel := PickWorstSurvivableMove(context.Background(), g, eng, testConfig())
	if sel.Move == nil || sel.Move.String() != "e2e4" || sel.Reason != ReasonWorst {
		t.Fatalf("expected e2e4 as worst candidate off a neutral baseline, got %+v", sel)
	}
}

func TestSelectorDeterministicWithDeterministicEngine(t *testing.T) {
	g := chess.NewGame()
	eng := &fakeEvaluator{
		scores: map[string]models.UCIScore{
			g.Position().String():  {CP: intPtr(20), Best: "d2d4"},
			afterFEN(t, g, "e2e4"): {CP: intPtr(500)},
		},
		def: models.UCIScore{CP: intPtr(0)},
	}

	first := PickWorstSurvivableMove(context.Background(), g, eng, testConfig())
	second := PickWorstSurvivableMove(context.Background(), g, eng, testConfig())
	if first.Move == nil || second.Move == nil || first.Move.String() != second.Move.String() {
		t.Fatalf("selection not deterministic: %+v vs %+v", first, second)
	}
}
