package main

import (
	"context"
	"log"
	"time"

	"github.com/Srivats-Srihari/Underfish-V2/app"
	"github.com/Srivats-Srihari/Underfish-V2/app/config"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := app.InitDB(cfg.DB); err != nil {
		log.Fatalf("failed to init db: %v", err)
	}

	// Keep-alive surface for the hosting platform.
	router := app.NewRouter()
	go func() {
		if err := router.Run("0.0.0.0:" + cfg.Server.Port); err != nil {
			log.Fatalf("keep-alive server stopped: %v", err)
		}
	}()

	client := app.NewLichessClient(cfg.Lichess)
	ctx := context.Background()

	// The event stream drops occasionally; reconnect forever.
	for {
		if err := app.RunBot(ctx, client, cfg); err != nil {
			log.Printf("event stream ended: %v, reconnecting", err)
		}
		time.Sleep(5 * time.Second)
	}
}
