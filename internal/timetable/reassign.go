package timetable

import (
	"errors"

	"github.com/noah-isme/sma-timetable-api/internal/models"
)

// MoveOutcome reports what MoveOrSwap did.
type MoveOutcome string

const (
	MoveOutcomeMoved     MoveOutcome = "MOVED"
	MoveOutcomeSwapped   MoveOutcome = "SWAPPED"
	MoveOutcomeUnchanged MoveOutcome = "UNCHANGED"
)

var (
	// ErrNoSourceSession is returned when the source cell is empty.
	ErrNoSourceSession = errors.New("no session at source cell")
	// ErrInvalidCell is returned for coordinates outside the week grid.
	ErrInvalidCell = errors.New("cell outside the timetable grid")
)

// Relocation is one session changing cells during a move or swap.
type Relocation struct {
	From    models.Cell
	To      models.Cell
	Session models.Session
}

// PlanMove computes the relocations MoveOrSwap would perform without mutating the grid.
func (g *Grid) PlanMove(src, dst models.Cell) (MoveOutcome, []Relocation, error) {
	if !src.Valid() || !dst.Valid() {
		return "", nil, ErrInvalidCell
	}
	source := g.cells[src]
	if len(source) == 0 {
		return "", nil, ErrNoSourceSession
	}
	if src == dst {
		return MoveOutcomeUnchanged, nil, nil
	}
	var moves []Relocation
	for _, s := range source {
		moves = append(moves, Relocation{From: src, To: dst, Session: s})
	}
	dest := g.cells[dst]
	if len(dest) == 0 {
		return MoveOutcomeMoved, moves, nil
	}
	for _, s := range dest {
		moves = append(moves, Relocation{From: dst, To: src, Session: s})
	}
	return MoveOutcomeSwapped, moves, nil
}

// MoveOrSwap relocates the whole content of src to dst. When dst is occupied the
// two cells trade contents in one step. Availability is not re-checked here.
func (g *Grid) MoveOrSwap(src, dst models.Cell) (MoveOutcome, error) {
	outcome, _, err := g.PlanMove(src, dst)
	if err != nil || outcome == MoveOutcomeUnchanged {
		return outcome, err
	}
	source, dest := g.cells[src], g.cells[dst]
	if len(dest) == 0 {
		delete(g.cells, src)
	} else {
		g.cells[src] = dest
	}
	g.cells[dst] = source
	return outcome, nil
}
