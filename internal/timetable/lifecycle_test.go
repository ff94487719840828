package timetable

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-timetable-api/internal/models"
)

func placeIn(s models.Session, cell models.Cell) func(*Grid) error {
	return func(g *Grid) error {
		g.Place(cell, s)
		return nil
	}
}

func TestTimetableLifecycleTransitions(t *testing.T) {
	tt := NewTimetable(y1g1)
	assert.Equal(t, models.PublishStatusEmpty, tt.Status())
	assert.Equal(t, Flags{}, tt.Flags())

	require.NoError(t, tt.Edit(placeIn(plainSession("a", "P1", "R1"), mon1)))
	assert.Equal(t, models.PublishStatusDirty, tt.Status())
	assert.True(t, tt.Flags().HasUnsavedChanges)

	tt.Save()
	assert.Equal(t, models.PublishStatusSavedUnpublished, tt.Status())
	assert.Nil(t, tt.Published())

	tt.Publish(nil)
	assert.Equal(t, models.PublishStatusPublished, tt.Status())
	assert.Equal(t, Flags{IsPublished: true}, tt.Flags())

	require.NoError(t, tt.Edit(placeIn(plainSession("b", "P2", "R2"), mon2)))
	tt.Save()
	assert.Equal(t, models.PublishStatusPublishedWithDraft, tt.Status())
	assert.Equal(t, Flags{HasDraftChanges: true, IsPublished: true}, tt.Flags())
	assert.Equal(t, 1, tt.Published().Len(), "saving must not touch the published copy")

	tt.Publish(nil)
	assert.Equal(t, models.PublishStatusPublished, tt.Status())
	assert.Equal(t, 2, tt.Published().Len())

	tt.Delete()
	assert.Equal(t, models.PublishStatusEmpty, tt.Status())
	assert.Nil(t, tt.Published())
}

func TestTimetablePublishWhileDirtySavesFirst(t *testing.T) {
	tt := NewTimetable(y1g1)
	require.NoError(t, tt.Edit(placeIn(plainSession("a", "P1", "R1"), mon1)))

	tt.Publish(nil)

	assert.Equal(t, models.PublishStatusPublished, tt.Status())
	assert.True(t, tt.Saved().Equal(tt.Published()))
	assert.True(t, tt.Working().Equal(tt.Saved()))
}

func TestTimetablePublishIsIdempotent(t *testing.T) {
	tt := NewTimetable(y1g1)
	require.NoError(t, tt.Edit(placeIn(plainSession("a", "P1", "R1"), mon1)))
	tt.Publish(nil)
	first := tt.Published().Clone()

	tt.Publish(nil)

	assert.Equal(t, models.PublishStatusPublished, tt.Status())
	assert.True(t, first.Equal(tt.Published()))
}

func TestTimetablePublishCarriesStatus(t *testing.T) {
	tt := NewTimetable(y1g1)
	require.NoError(t, tt.Edit(placeIn(plainSession("a", "P1", "R1"), mon1)))
	tt.Publish(nil)

	tt.Publish(func(cell models.Cell, s models.Session) models.SessionStatus {
		if cell == mon1 && s.ID == "a" {
			return models.SessionStatusCanceled
		}
		return ""
	})

	assert.True(t, tt.Published().At(mon1)[0].IsCanceled())
	assert.Equal(t, models.SessionStatusActive, tt.Saved().At(mon1)[0].Status)
	assert.Equal(t, models.PublishStatusPublished, tt.Status())
}

func TestTimetableDiscardRestoresSaved(t *testing.T) {
	tt := NewTimetable(y1g1)
	require.NoError(t, tt.Edit(placeIn(plainSession("a", "P1", "R1"), mon1)))
	tt.Publish(nil)
	require.NoError(t, tt.Edit(placeIn(plainSession("b", "P2", "R2"), mon2)))

	tt.Discard()

	assert.Equal(t, models.PublishStatusPublished, tt.Status())
	assert.Equal(t, 1, tt.Working().Len())
}

func TestTimetableFailedEditKeepsState(t *testing.T) {
	tt := NewTimetable(y1g1)
	boom := errors.New("boom")

	err := tt.Edit(func(g *Grid) error {
		g.Place(mon1, plainSession("a", "P1", "R1"))
		return boom
	})

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, models.PublishStatusEmpty, tt.Status())
	assert.True(t, tt.Working().Empty())
}

func TestTimetableCloneStagesTransition(t *testing.T) {
	tt := NewTimetable(y1g1)
	require.NoError(t, tt.Edit(placeIn(plainSession("a", "P1", "R1"), mon1)))

	staged := tt.Clone()
	staged.Publish(nil)

	assert.Equal(t, models.PublishStatusDirty, tt.Status())
	assert.Nil(t, tt.Published())
	assert.Equal(t, models.PublishStatusPublished, staged.Status())
}

func TestRestoreTimetableSettlesStatus(t *testing.T) {
	saved := NewGrid(y1g1)
	saved.Place(mon1, plainSession("a", "P1", "R1"))

	assert.Equal(t, models.PublishStatusSavedUnpublished, RestoreTimetable(y1g1, saved.Clone(), nil).Status())
	assert.Equal(t, models.PublishStatusPublished, RestoreTimetable(y1g1, saved.Clone(), saved.Clone()).Status())
	assert.Equal(t, models.PublishStatusPublishedWithDraft, RestoreTimetable(y1g1, saved.Clone(), NewGrid(y1g1)).Status())
	assert.Equal(t, models.PublishStatusEmpty, RestoreTimetable(y1g1, nil, nil).Status())
}

// A professor booked in one group is refused in another at the same time, then
// accepted once the original session moves away.
func TestScenarioProfessorConflictResolvedByMove(t *testing.T) {
	index := NewSlotIndex()
	checker := NewChecker(index)

	g1 := NewTimetable(y1g1)
	require.NoError(t, g1.Edit(placeIn(plainSession("a", "P1", "R1"), mon1)))
	index.Sync(g1.Working())

	candidate := plainSession("b", "P1", "R2")
	assert.False(t, checker.Check(CandidateFor(y1g2, mon1, candidate)).Available)

	require.NoError(t, g1.Edit(func(g *Grid) error {
		_, err := g.MoveOrSwap(mon1, mon2)
		return err
	}))
	index.Sync(g1.Working())

	assert.True(t, checker.Check(CandidateFor(y1g2, mon1, candidate)).Available)
}

// Two subgroups share a cell while a third group's same_time session holds one
// of their professors.
func TestScenarioSplitSessionsAcrossGroups(t *testing.T) {
	index := NewSlotIndex()
	checker := NewChecker(index)

	other := NewTimetable(y2g1)
	require.NoError(t, other.Edit(placeIn(sameTimeSession("x", "P5", "R5", "P6", "R6"), tue3)))
	index.Sync(other.Working())

	mine := NewTimetable(y1g1)
	first := singleGroupSession("a", "P1", "R1", "1")
	require.True(t, checker.Check(CandidateFor(y1g1, tue3, first)).Available)
	require.NoError(t, mine.Edit(placeIn(first, tue3)))
	index.Sync(mine.Working())

	blocked := singleGroupSession("b", "P6", "R2", "2")
	result := checker.Check(CandidateFor(y1g1, tue3, blocked))
	require.False(t, result.Available)
	require.Len(t, result.ProfessorConflicts, 1)
	assert.Equal(t, "Y2", result.ProfessorConflicts[0].Year)
	assert.Equal(t, models.HalfSecondary, result.ProfessorConflicts[0].ExistingHalf)

	allowed := singleGroupSession("b", "P2", "R2", "2")
	require.True(t, checker.Check(CandidateFor(y1g1, tue3, allowed)).Available)
	require.NoError(t, mine.Edit(placeIn(allowed, tue3)))
	assert.Len(t, mine.Working().At(tue3), 2)
}

// A published timetable keeps serving readers while the draft is edited and saved.
func TestScenarioDraftDoesNotLeakIntoPublished(t *testing.T) {
	tt := NewTimetable(y1g1)
	require.NoError(t, tt.Edit(placeIn(plainSession("a", "P1", "R1"), mon1)))
	tt.Publish(nil)

	require.NoError(t, tt.Edit(func(g *Grid) error {
		_, err := g.MoveOrSwap(mon1, tue3)
		return err
	}))
	tt.Save()

	assert.Equal(t, models.PublishStatusPublishedWithDraft, tt.Status())
	assert.True(t, tt.Published().Occupied(mon1))
	assert.False(t, tt.Published().Occupied(tue3))

	tt.Publish(nil)
	assert.True(t, tt.Published().Occupied(tue3))
	assert.Equal(t, models.PublishStatusPublished, tt.Status())
}
