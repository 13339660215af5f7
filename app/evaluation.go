package app

import "github.com/Srivats-Srihari/Underfish-V2/app/models"

// Evaluation classifies an engine score from a fixed side's point of view.
// Exactly one of three kinds holds: a centipawn value, a forced mate, or
// unknown (the engine produced nothing usable).
type Evaluation struct {
	kind evalKind
	n    int
}

type evalKind int

const (
	evalUnknown evalKind = iota
	evalCentipawn
	evalMate
)

func Centipawns(v int) Evaluation { return Evaluation{kind: evalCentipawn, n: v} }
func MateIn(n int) Evaluation     { return Evaluation{kind: evalMate, n: n} }

// Centipawns returns the centipawn value, positive meaning the scored side is
// better. The bool is false for mate and unknown evaluations.
func (e Evaluation) Centipawns() (int, bool) { return e.n, e.kind == evalCentipawn }

// Mate returns the mate count: n>0 means the scored side forces mate, n<0
// means it gets mated in |n|. The bool is false for centipawn and unknown.
func (e Evaluation) Mate() (int, bool) { return e.n, e.kind == evalMate }

func (e Evaluation) Unknown() bool { return e.kind == evalUnknown }

// scoreForSideToMove classifies a score for a position from the point of view
// of the side to move in it, which is the perspective UCI engines report.
// A score carrying both cp and mate (or neither) does not classify.
func scoreForSideToMove(score models.UCIScore) Evaluation {
	if score.CP != nil && score.Mate != nil {
		return Evaluation{}
	}
	switch {
	case score.CP != nil:
		return Centipawns(*score.CP)
	case score.Mate != nil:
		return MateIn(*score.Mate)
	}
	return Evaluation{}
}

// scoreForMover classifies the score of the position reached after the mover's
// move, from the mover's point of view. The engine scores that position for
// the opponent, who is then to move, so signs flip. "mate 0" means the side to
// move is already checkmated, i.e. the mover just delivered mate.
func scoreForMover(score models.UCIScore) Evaluation {
	ev := scoreForSideToMove(score)
	if ev.kind == evalUnknown {
		return ev
	}
	if ev.kind == evalMate && ev.n == 0 {
		return MateIn(1)
	}
	return Evaluation{kind: ev.kind, n: -ev.n}
}
