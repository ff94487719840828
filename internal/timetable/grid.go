// Package timetable holds the in-memory scheduling core: grids, the slot index,
// availability checks, the publish lifecycle and session reassignment.
package timetable

import (
	"reflect"
	"sort"
	"strings"

	"github.com/noah-isme/sma-timetable-api/internal/models"
)

// Placement is a session positioned in a group's grid.
type Placement struct {
	Key     models.GroupKey
	Cell    models.Cell
	Session models.Session
}

// Grid is the sparse (day, slot) -> sessions mapping of one (year, group).
// A cell holds one plain or same_time session, or up to two single_group
// sessions for distinct subgroups.
type Grid struct {
	key   models.GroupKey
	cells map[models.Cell][]models.Session
}

// NewGrid returns an empty grid for the group.
func NewGrid(key models.GroupKey) *Grid {
	return &Grid{key: key, cells: make(map[models.Cell][]models.Session)}
}

// GridFromPlacements builds a grid from stored placements, ignoring other groups.
func GridFromPlacements(key models.GroupKey, placements []Placement) *Grid {
	g := NewGrid(key)
	for _, p := range placements {
		if p.Key != key {
			continue
		}
		g.cells[p.Cell] = append(g.cells[p.Cell], p.Session)
	}
	for _, sessions := range g.cells {
		sortCell(sessions)
	}
	return g
}

// Key returns the owning group.
func (g *Grid) Key() models.GroupKey {
	return g.key
}

// At returns a copy of the sessions occupying the cell.
func (g *Grid) At(cell models.Cell) []models.Session {
	return cloneSessions(g.cells[cell])
}

// Occupied reports whether any session sits in the cell.
func (g *Grid) Occupied(cell models.Cell) bool {
	return len(g.cells[cell]) > 0
}

// Find locates a session by id.
func (g *Grid) Find(sessionID string) (models.Cell, models.Session, bool) {
	if sessionID == "" {
		return models.Cell{}, models.Session{}, false
	}
	for cell, sessions := range g.cells {
		for _, s := range sessions {
			if s.ID == sessionID {
				return cell, s, true
			}
		}
	}
	return models.Cell{}, models.Session{}, false
}

// Place writes the session into the cell and returns the sessions it displaced.
// A session already present under the same id is replaced wherever it sits.
// A single_group session keeps the complementary subgroup's session in the cell.
func (g *Grid) Place(cell models.Cell, session models.Session) []models.Session {
	var displaced []models.Session
	if from, _, ok := g.Find(session.ID); ok {
		g.removeByID(from, session.ID)
	}

	var kept []models.Session
	for _, existing := range g.cells[cell] {
		if session.Kind == models.SessionKindSingleGroup &&
			existing.Kind == models.SessionKindSingleGroup &&
			!strings.EqualFold(existing.Subgroup1, session.Subgroup1) {
			kept = append(kept, existing)
			continue
		}
		displaced = append(displaced, existing)
	}
	g.cells[cell] = append(kept, session)
	sortCell(g.cells[cell])
	return displaced
}

// Remove empties the cell, or removes only the session with the given id.
func (g *Grid) Remove(cell models.Cell, sessionID string) []models.Session {
	current := g.cells[cell]
	if len(current) == 0 {
		return nil
	}
	if sessionID == "" {
		delete(g.cells, cell)
		return current
	}
	return g.removeByID(cell, sessionID)
}

// Update applies fn to the session with the given id and reports whether it was found.
func (g *Grid) Update(sessionID string, fn func(*models.Session)) bool {
	for cell, sessions := range g.cells {
		for i := range sessions {
			if sessions[i].ID == sessionID {
				fn(&g.cells[cell][i])
				return true
			}
		}
	}
	return false
}

// Cells returns the occupied cells in day/slot order.
func (g *Grid) Cells() []models.Cell {
	cells := make([]models.Cell, 0, len(g.cells))
	for cell := range g.cells {
		cells = append(cells, cell)
	}
	sort.Slice(cells, func(i, j int) bool { return cells[i].Before(cells[j]) })
	return cells
}

// Placements lists every session in day/slot order.
func (g *Grid) Placements() []Placement {
	var out []Placement
	for _, cell := range g.Cells() {
		for _, s := range g.cells[cell] {
			out = append(out, Placement{Key: g.key, Cell: cell, Session: s})
		}
	}
	return out
}

// Len returns the number of sessions in the grid.
func (g *Grid) Len() int {
	n := 0
	for _, sessions := range g.cells {
		n += len(sessions)
	}
	return n
}

// Empty reports whether no session is placed.
func (g *Grid) Empty() bool {
	return len(g.cells) == 0
}

// Clear removes every session, keeping the grid itself.
func (g *Grid) Clear() {
	g.cells = make(map[models.Cell][]models.Session)
}

// Clone returns a deep copy.
func (g *Grid) Clone() *Grid {
	out := NewGrid(g.key)
	for cell, sessions := range g.cells {
		out.cells[cell] = cloneSessions(sessions)
	}
	return out
}

// Equal compares the scheduled content of two grids. The professor-owned
// cancel/reschedule status is not part of the content.
func (g *Grid) Equal(other *Grid) bool {
	if g == nil || other == nil {
		return g == other
	}
	if len(g.cells) != len(other.cells) {
		return false
	}
	for cell, sessions := range g.cells {
		theirs, ok := other.cells[cell]
		if !ok || len(theirs) != len(sessions) {
			return false
		}
		for i := range sessions {
			a, b := sessions[i], theirs[i]
			a.Status, b.Status = "", ""
			if !reflect.DeepEqual(a, b) {
				return false
			}
		}
	}
	return true
}

func (g *Grid) removeByID(cell models.Cell, sessionID string) []models.Session {
	var kept, removed []models.Session
	for _, s := range g.cells[cell] {
		if s.ID == sessionID {
			removed = append(removed, s)
			continue
		}
		kept = append(kept, s)
	}
	if len(kept) == 0 {
		delete(g.cells, cell)
	} else {
		g.cells[cell] = kept
	}
	return removed
}

func sortCell(sessions []models.Session) {
	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].Subgroup1 < sessions[j].Subgroup1
	})
}

func cloneSessions(in []models.Session) []models.Session {
	if len(in) == 0 {
		return nil
	}
	out := make([]models.Session, len(in))
	for i, s := range in {
		if s.Secondary != nil {
			secondary := *s.Secondary
			s.Secondary = &secondary
		}
		out[i] = s
	}
	return out
}
