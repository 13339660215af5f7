package config

import (
	"errors"
	"log"
	"os"
	"strconv"

	// this will automatically load your .env file:
	_ "github.com/joho/godotenv/autoload"
)

type Config struct {
	Lichess  LichessConfig
	Engine   EngineConfig
	Selector SelectorConfig
	Server   ServerConfig
	DB       PostgresConfig
}

type LichessConfig struct {
	Token   string
	BaseURL string
}

type EngineConfig struct {
	Path        string
	MoveTime    int
	DepthOrTime bool //true for depth, false for time
}

// SelectorConfig holds the knobs of the worst-move policy. CPCapTotal is kept
// as its own setting even though the enforced floor is SurvivalEvalFloor; the
// two are independent and must not be assumed equal.
type SelectorConfig struct {
	EvalDepth         int     // depth for baseline and best-move queries
	MaxMateDepth      int     // deeper search so mate lines are found reliably
	CPCapOneMove      int     // max one-move centipawn drop a candidate may cause
	CPCapTotal        int     // declared total-eval floor
	SurvivalMateRatio float64 // fraction of mate-losing moves that triggers survival mode
	SurvivalEvalFloor int     // current-eval threshold that triggers survival mode
}

type ServerConfig struct {
	Port string
}

type PostgresConfig struct {
	Username string
	Password string
	URL      string
	Port     string
}

func LoadConfig() (*Config, error) {
	token := os.Getenv("LICHESS_TOKEN")
	if token == "" {
		return nil, errors.New("LICHESS_TOKEN environment variable is required")
	}

	enginePath := os.Getenv("ENGINE_PATH")
	if enginePath == "" {
		enginePath = "./stockfish" // our downloaded binary
	}

	cfg := &Config{
		Lichess: LichessConfig{
			Token:   token,
			BaseURL: os.Getenv("LICHESS_URL"),
		},
		Engine: EngineConfig{
			Path:        enginePath,
			MoveTime:    envInt("ENGINE_MOVE_TIME", 500),
			DepthOrTime: envBool("ENGINE_DEPTH_OR_TIME", true),
		},
		Selector: SelectorConfig{
			EvalDepth:         envInt("EVAL_DEPTH", 10),
			MaxMateDepth:      envInt("MAX_MATE_DEPTH", 25),
			CPCapOneMove:      envInt("CP_CAP_ONE_MOVE", 550),
			CPCapTotal:        envInt("CP_CAP_TOTAL", -925),
			SurvivalMateRatio: envFloat("SURVIVAL_MATE_RATIO", 0.25),
			SurvivalEvalFloor: envInt("SURVIVAL_EVAL_FLOOR", -1250),
		},
		Server: ServerConfig{
			Port: envString("PORT", "5000"),
		},
		DB: PostgresConfig{
			Username: os.Getenv("POSTGRES_USER"),
			Password: os.Getenv("POSTGRES_PWD"),
			URL:      os.Getenv("POSTGRES_URL"),
			Port:     os.Getenv("POSTGRES_PORT"),
		},
	}

	return cfg, nil
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Fatalf("Error converting string to int: %s: %v", key, err)
	}
	return n
}

func envFloat(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		log.Fatalf("Error parsing %s: %v", key, err)
	}
	return f
}

func envBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Fatalf("Error parsing %s: %v", key, err)
	}
	return b
}
