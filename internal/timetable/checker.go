package timetable

import (
	"strings"

	"github.com/noah-isme/sma-timetable-api/internal/models"
)

// Candidate is a proposed placement submitted for an availability check.
type Candidate struct {
	Key       models.GroupKey
	Cell      models.Cell
	SessionID string
	Kind      models.SessionKind

	ProfessorID string
	Room        string
	Subgroup1   string
	Subgroup2   string

	Professor2ID string
	Room2        string

	// IgnoreOwnGroup skips every session of the candidate's own group, used when
	// re-validating sessions that are relocated inside one grid.
	IgnoreOwnGroup bool
}

// CandidateFor describes an already built session as a candidate at key/cell.
func CandidateFor(key models.GroupKey, cell models.Cell, s models.Session) Candidate {
	c := Candidate{
		Key:         key,
		Cell:        cell,
		SessionID:   s.ID,
		Kind:        s.Kind,
		ProfessorID: s.Primary.ProfessorID,
		Room:        s.Primary.Room,
		Subgroup1:   s.Subgroup1,
		Subgroup2:   s.Subgroup2,
	}
	if s.Kind == models.SessionKindSameTime && s.Secondary != nil {
		c.Professor2ID = s.Secondary.ProfessorID
		c.Room2 = s.Secondary.Room
	}
	return c
}

func (c Candidate) occupants() []models.Occupant {
	out := []models.Occupant{{Half: models.HalfPrimary, ProfessorID: c.ProfessorID, Room: c.Room}}
	if c.Kind == models.SessionKindSameTime {
		out = append(out, models.Occupant{Half: models.HalfSecondary, ProfessorID: c.Professor2ID, Room: c.Room2})
	}
	return out
}

// Checker detects professor and room double-bookings against a SlotIndex.
type Checker struct {
	index *SlotIndex
}

// NewChecker builds a checker reading from the index.
func NewChecker(index *SlotIndex) *Checker {
	return &Checker{index: index}
}

// Check scans every session sharing the candidate's (day, slot). Professor
// conflicts are reported first; rooms are only evaluated when no professor
// conflict exists.
func (c *Checker) Check(candidate Candidate) models.AvailabilityResult {
	placements := c.relevant(candidate)

	professors := c.pass(candidate, placements, models.ConflictProfessor)
	if len(professors) > 0 {
		return models.AvailabilityResult{
			ProfessorConflicts: professors,
			RoomConflicts:      []models.ConflictReport{},
			Available:          false,
		}
	}

	rooms := c.pass(candidate, placements, models.ConflictRoom)
	return models.AvailabilityResult{
		ProfessorConflicts: []models.ConflictReport{},
		RoomConflicts:      rooms,
		Available:          len(rooms) == 0,
	}
}

func (c *Checker) relevant(candidate Candidate) []Placement {
	var out []Placement
	for _, p := range c.index.At(candidate.Cell) {
		if p.Key == candidate.Key {
			// The session being edited only ever excludes itself inside its own grid.
			if candidate.SessionID != "" && p.Session.ID == candidate.SessionID {
				continue
			}
			if candidate.IgnoreOwnGroup {
				continue
			}
			if candidate.Kind == models.SessionKindSingleGroup &&
				p.Session.Kind == models.SessionKindSingleGroup &&
				!strings.EqualFold(p.Session.Subgroup1, candidate.Subgroup1) {
				continue
			}
		}
		out = append(out, p)
	}
	return out
}

func (c *Checker) pass(candidate Candidate, placements []Placement, dim models.ConflictDimension) []models.ConflictReport {
	reports := []models.ConflictReport{}
	mine := candidate.occupants()

	if candidate.Kind == models.SessionKindSameTime && clashes(dim, mine[0], mine[1]) {
		reports = append(reports, models.ConflictReport{
			Dimension:     dim,
			SessionID:     candidate.SessionID,
			Year:          candidate.Key.Year,
			Group:         candidate.Key.Group,
			Day:           candidate.Cell.Day,
			Slot:          candidate.Cell.Slot,
			ProfessorID:   mine[0].ProfessorID,
			Room:          mine[0].Room,
			Subgroup:      candidate.Subgroup1,
			ExistingHalf:  models.HalfPrimary,
			CandidateHalf: models.HalfSecondary,
			Self:          true,
		})
	}

	for _, p := range placements {
		for _, theirs := range p.Session.Occupants() {
			for _, ours := range mine {
				if !clashes(dim, theirs, ours) {
					continue
				}
				reports = append(reports, newReport(dim, p, theirs, ours.Half))
			}
		}
	}
	return reports
}

func clashes(dim models.ConflictDimension, a, b models.Occupant) bool {
	switch dim {
	case models.ConflictProfessor:
		return a.ProfessorID != "" && a.ProfessorID == b.ProfessorID
	case models.ConflictRoom:
		ra, rb := strings.TrimSpace(a.Room), strings.TrimSpace(b.Room)
		return ra != "" && strings.EqualFold(ra, rb)
	default:
		return false
	}
}

func newReport(dim models.ConflictDimension, p Placement, theirs models.Occupant, candidateHalf models.Half) models.ConflictReport {
	assignment := p.Session.Primary
	if theirs.Half == models.HalfSecondary && p.Session.Secondary != nil {
		assignment = *p.Session.Secondary
	}
	subgroup := p.Session.Subgroup1
	if theirs.Half == models.HalfSecondary {
		subgroup = p.Session.Subgroup2
	}
	return models.ConflictReport{
		Dimension:     dim,
		SessionID:     p.Session.ID,
		Year:          p.Key.Year,
		Group:         p.Key.Group,
		Day:           p.Cell.Day,
		Slot:          p.Cell.Slot,
		SubjectName:   assignment.SubjectName,
		ProfessorID:   assignment.ProfessorID,
		ProfessorName: assignment.ProfessorName,
		Room:          assignment.Room,
		Subgroup:      subgroup,
		ExistingHalf:  theirs.Half,
		CandidateHalf: candidateHalf,
	}
}
