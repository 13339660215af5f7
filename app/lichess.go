// Thin client for the Lichess bot API: NDJSON event streams in, moves out.

package app

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/Srivats-Srihari/Underfish-V2/app/config"
	"github.com/Srivats-Srihari/Underfish-V2/app/models"
)

const lichessBaseURL = "https://lichess.org"

type LichessClient struct {
	baseURL string
	token   string
	httpc   *http.Client
	streamc *http.Client // no timeout: streams stay open for the whole game
}

func NewLichessClient(cfg config.LichessConfig) *LichessClient {
	base := cfg.BaseURL
	if base == "" {
		base = lichessBaseURL
	}
	return &LichessClient{
		baseURL: strings.TrimRight(base, "/"),
		token:   cfg.Token,
		httpc:   &http.Client{Timeout: 15 * time.Second},
		streamc: &http.Client{},
	}
}

// StreamEvents consumes the bot account's event stream, invoking handle for
// each event until the stream ends or ctx is cancelled.
func (c *LichessClient) StreamEvents(ctx context.Context, handle func(models.LichessEvent)) error {
	return c.stream(ctx, "/api/stream/event", func(line []byte) {
		var ev models.LichessEvent
		if err := json.Unmarshal(line, &ev); err != nil {
			log.Printf("lichess: bad event payload: %v", err)
			return
		}
		handle(ev)
	})
}

// StreamGame consumes the bot stream for one game.
func (c *LichessClient) StreamGame(ctx context.Context, gameID string, handle func(models.GameStreamEvent)) error {
	return c.stream(ctx, "/api/bot/game/stream/"+gameID, func(line []byte) {
		var ev models.GameStreamEvent
		if err := json.Unmarshal(line, &ev); err != nil {
			log.Printf("lichess: [%s] bad game payload: %v", gameID, err)
			return
		}
		handle(ev)
	})
}

// MakeMove submits a move in UCI notation.
func (c *LichessClient) MakeMove(ctx context.Context, gameID, uci string) error {
	return c.post(ctx, fmt.Sprintf("/api/bot/game/%s/move/%s", gameID, uci))
}

func (c *LichessClient) AcceptChallenge(ctx context.Context, challengeID string) error {
	return c.post(ctx, fmt.Sprintf("/api/challenge/%s/accept", challengeID))
}

func (c *LichessClient) DeclineChallenge(ctx context.Context, challengeID string) error {
	return c.post(ctx, fmt.Sprintf("/api/challenge/%s/decline", challengeID))
}

func (c *LichessClient) stream(ctx context.Context, path string, handle func([]byte)) error {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/x-ndjson")

	res, err := c.streamc.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		var msg struct {
			Message string `json:"error"`
		}
		_ = json.NewDecoder(res.Body).Decode(&msg)
		return httpError{Status: res.StatusCode, Body: msg.Message}
	}

	sc := bufio.NewScanner(res.Body)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			// keep-alive newline
			continue
		}
		handle([]byte(line))
	}
	return sc.Err()
}

// post fires a body-less POST with a basic retry for 429/5xx, mirroring how
// lichess rate-limits bot endpoints.
func (c *LichessClient) post(ctx context.Context, path string) error {
	var last httpError
	for attempt := 0; attempt < 3; attempt++ {
		req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+path, nil)
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+c.token)

		res, err := c.httpc.Do(req)
		if err != nil {
			return err
		}

		if res.StatusCode == http.StatusOK || res.StatusCode == http.StatusCreated {
			res.Body.Close()
			return nil
		}

		// capture body (truncated) for error clarity
		var msg struct {
			Message string `json:"error"`
		}
		_ = json.NewDecoder(res.Body).Decode(&msg)
		res.Body.Close()
		last = httpError{Status: res.StatusCode, Body: msg.Message}

		if res.StatusCode == http.StatusTooManyRequests || res.StatusCode >= 500 {
			time.Sleep(time.Duration(250*(attempt+1)) * time.Millisecond)
			continue
		}
		break
	}
	return last
}

type httpError struct {
	Status int
	Body   string
}

func (e httpError) Error() string { return fmt.Sprintf("http %d: %s", e.Status, e.Body) }
