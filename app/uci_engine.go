//starts the engine process, speaks UCI over stdin/stdout, and exposes a simple EvalFEN method.

package app

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Srivats-Srihari/Underfish-V2/app/models"
)

type UCIEngine struct {
	cmd   *exec.Cmd
	in    *bufio.Writer
	out   *bufio.Scanner
	mu    sync.Mutex
	ready bool
}

func NewUCIEngine(path string) (*UCIEngine, error) {
	cmd := exec.Command(path)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, err
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}

	e := &UCIEngine{
		cmd: cmd,
		in:  bufio.NewWriter(stdin),
		out: bufio.NewScanner(stdout),
	}
	if err := cmd.Start(); err != nil {
		return nil, err
	}
	// Handshake: "uci" -> wait for "uciok"; also "isready" -> "readyok"
	if err := e.send("uci"); err != nil {
		return nil, err
	}
	for e.out.Scan() {
		if e.out.Text() == "uciok" {
			break
		}
	}
	if err := e.send("isready"); err != nil {
		return nil, err
	}
	for e.out.Scan() {
		if e.out.Text() == "readyok" {
			break
		}
	}
	e.ready = true
	return e, nil
}

func (e *UCIEngine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	_ = e.send("quit")
	return e.cmd.Wait()
}

func (e *UCIEngine) NewGame() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.ready {
		return errors.New("engine not ready")
	}
	if err := e.send("ucinewgame"); err != nil {
		return err
	}
	if err := e.send("isready"); err != nil {
		return err
	}
	for e.out.Scan() {
		if e.out.Text() == "readyok" {
			break
		}
	}
	return nil
}

// EvalFEN evaluates one position. Use either a fixed depth or movetime.
// The mutex serializes callers: at most one search is in flight per engine
// process, which is what the selector assumes.
func (e *UCIEngine) EvalFEN(ctx context.Context, fen string, settings models.EngineSettings) (models.UCIScore, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.ready {
		return models.UCIScore{}, errors.New("engine not ready")
	}

	multiPV := settings.MultiPV
	if multiPV < 1 {
		multiPV = 1
	}
	if err := e.send(fmt.Sprintf("setoption name MultiPV value %d", multiPV)); err != nil {
		return models.UCIScore{}, err
	}

	// Load position
	if err := e.send(fmt.Sprintf("position fen %s", fen)); err != nil {
		return models.UCIScore{}, err
	}

	if settings.UseDepth {
		depth := settings.Depth
		if depth <= 0 {
			depth = 12
		}
		if err := e.send(fmt.Sprintf("go depth %d", depth)); err != nil {
			return models.UCIScore{}, err
		}
	} else {
		//analyze using movetime
		moveTime := settings.MoveTimeMS
		if moveTime <= 0 {
			moveTime = 500
		}
		if err := e.send(fmt.Sprintf("go movetime %d", moveTime)); err != nil {
			return models.UCIScore{}, err
		}
	}

	lines := map[int]models.EngineLine{}
	var best string

	// Read until "bestmove ..." or context cancels
	readDone := make(chan error, 1)
	go func() {
		for e.out.Scan() {
			line := e.out.Text()
			// Examples we parse:
			// info depth 18 multipv 1 ... score cp 23 ... pv e2e4 e7e5
			// info depth 20 ... score mate 3 ... pv d1h5
			// bestmove e2e4
			if strings.HasPrefix(line, "info ") {
				if el, ok := parseInfoLine(line); ok {
					lines[el.Rank] = el
				}
			} else if strings.HasPrefix(line, "bestmove ") {
				fields := strings.Fields(line)
				if len(fields) >= 2 {
					best = fields[1]
				}
				break
			}
		}
		readDone <- e.out.Err()
	}()

	var err error
	select {
	case <-ctx.Done():
		_ = e.send("stop")
		select {
		case err = <-readDone:
		case <-time.After(500 * time.Millisecond):
			err = ctx.Err()
		}
	case err = <-readDone:
	}
	if err != nil && err != bufio.ErrBufferFull {
		return models.UCIScore{}, err
	}

	score := models.UCIScore{Best: best}
	if top, ok := lines[1]; ok {
		score.CP = top.CP
		score.Mate = top.Mate
	}
	if multiPV > 1 {
		for _, el := range lines {
			score.Lines = append(score.Lines, el)
		}
		sort.Slice(score.Lines, func(i, j int) bool {
			return score.Lines[i].Rank < score.Lines[j].Rank
		})
	}
	return score, nil
}

// parseInfoLine extracts the multipv rank, score, and pv from one "info" line.
// Lines without a score (currmove reports, etc.) are skipped.
func parseInfoLine(line string) (models.EngineLine, bool) {
	el := models.EngineLine{Rank: 1}
	fields := strings.Fields(line)
	scored := false
	for i := 0; i < len(fields); i++ {
		switch fields[i] {
		case "multipv":
			if i+1 < len(fields) {
				if n, err := strconv.Atoi(fields[i+1]); err == nil {
					el.Rank = n
				}
				i++
			}
		case "score":
			if i+2 < len(fields) {
				n, err := strconv.Atoi(fields[i+2])
				if err != nil {
					return models.EngineLine{}, false
				}
				switch fields[i+1] {
				case "cp":
					el.CP = &n
					scored = true
				case "mate":
					el.Mate = &n
					scored = true
				}
				i += 2
			}
		case "pv":
			el.PV = append([]string{}, fields[i+1:]...)
			i = len(fields)
		}
	}
	return el, scored
}

func (e *UCIEngine) send(cmd string) error {
	_, err := fmt.Fprintln(e.in, cmd)
	if err != nil {
		return err
	}
	return e.in.Flush()
}
