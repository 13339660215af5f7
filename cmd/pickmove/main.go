// Local debug harness: replay a UCI move list and print the move the bot
// would answer with. Needs no lichess token, only an engine binary.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"strings"
	"time"

	"github.com/Srivats-Srihari/Underfish-V2/app"
	"github.com/Srivats-Srihari/Underfish-V2/app/config"
	"github.com/notnil/chess"
)

func main() {
	moves := flag.String("moves", "", "space-separated UCI moves from the start position, e.g. \"e2e4 e7e5\"")
	enginePath := flag.String("engine", "", "engine binary (defaults to ENGINE_PATH)")
	flag.Parse()

	cfg := defaultConfig()
	if *enginePath != "" {
		cfg.Engine.Path = *enginePath
	}

	g := chess.NewGame()
	for _, uci := range strings.Fields(*moves) {
		m, err := chess.UCINotation{}.Decode(g.Position(), uci)
		if err != nil {
			log.Fatalf("bad move %q: %v", uci, err)
		}
		if err := g.Move(m); err != nil {
			log.Fatalf("illegal move %q: %v", uci, err)
		}
	}

	eng, err := app.NewUCIEngine(cfg.Engine.Path)
	if err != nil {
		log.Fatalf("failed to start engine: %v", err)
	}
	defer eng.Close()
	_ = eng.NewGame()

	start := time.Now()
	sel := app.PickWorstSurvivableMove(context.Background(), g, eng, cfg)
	if sel.Move == nil {
		log.Printf("no legal move (%s), took %s", sel.Reason, time.Since(start))
		return
	}
	log.Printf("would play %s (%s), took %s", sel.Move, sel.Reason, time.Since(start))
}

func defaultConfig() *config.Config {
	path := os.Getenv("ENGINE_PATH")
	if path == "" {
		path = "./stockfish"
	}
	return &config.Config{
		Engine: config.EngineConfig{Path: path, DepthOrTime: true},
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
