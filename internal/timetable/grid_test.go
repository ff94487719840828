package timetable

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-timetable-api/internal/models"
)

func TestGridPlaceReplacesOccupant(t *testing.T) {
	grid := NewGrid(y1g1)
	grid.Place(mon1, plainSession("a", "P1", "R1"))

	displaced := grid.Place(mon1, plainSession("b", "P2", "R2"))

	require.Len(t, displaced, 1)
	assert.Equal(t, "a", displaced[0].ID)
	require.Len(t, grid.At(mon1), 1)
	assert.Equal(t, "b", grid.At(mon1)[0].ID)
}

func TestGridPlaceSameIDMovesSession(t *testing.T) {
	grid := NewGrid(y1g1)
	grid.Place(mon1, plainSession("a", "P1", "R1"))

	displaced := grid.Place(mon2, plainSession("a", "P1", "R4"))

	assert.Empty(t, displaced)
	assert.False(t, grid.Occupied(mon1))
	cell, s, ok := grid.Find("a")
	require.True(t, ok)
	assert.Equal(t, mon2, cell)
	assert.Equal(t, "R4", s.Primary.Room)
	assert.Equal(t, 1, grid.Len())
}

func TestGridSingleGroupSameSubgroupDisplaces(t *testing.T) {
	grid := NewGrid(y1g1)
	grid.Place(mon1, singleGroupSession("a", "P1", "R1", "1"))
	grid.Place(mon1, singleGroupSession("b", "P2", "R2", "2"))

	displaced := grid.Place(mon1, singleGroupSession("c", "P3", "R3", "1"))

	require.Len(t, displaced, 1)
	assert.Equal(t, "a", displaced[0].ID)
	cell := grid.At(mon1)
	require.Len(t, cell, 2)
	assert.Equal(t, "c", cell[0].ID)
	assert.Equal(t, "b", cell[1].ID)
}

func TestGridPlainDisplacesSubgroupSessions(t *testing.T) {
	grid := NewGrid(y1g1)
	grid.Place(mon1, singleGroupSession("a", "P1", "R1", "1"))
	grid.Place(mon1, singleGroupSession("b", "P2", "R2", "2"))

	displaced := grid.Place(mon1, plainSession("c", "P3", "R3"))

	assert.Len(t, displaced, 2)
	assert.Len(t, grid.At(mon1), 1)
}

func TestGridRemove(t *testing.T) {
	grid := NewGrid(y1g1)
	grid.Place(mon1, singleGroupSession("a", "P1", "R1", "1"))
	grid.Place(mon1, singleGroupSession("b", "P2", "R2", "2"))

	removed := grid.Remove(mon1, "b")
	require.Len(t, removed, 1)
	assert.Len(t, grid.At(mon1), 1)

	removed = grid.Remove(mon1, "")
	assert.Len(t, removed, 1)
	assert.True(t, grid.Empty())
	assert.Nil(t, grid.Remove(mon1, ""))
}

func TestGridCloneIsIndependent(t *testing.T) {
	grid := NewGrid(y1g1)
	grid.Place(mon1, sameTimeSession("a", "P1", "R1", "P2", "R2"))

	clone := grid.Clone()
	clone.Update("a", func(s *models.Session) { s.Secondary.Room = "R9" })

	assert.Equal(t, "R2", grid.At(mon1)[0].Secondary.Room)
	assert.False(t, grid.Equal(clone))
}

func TestGridEqualIgnoresStatus(t *testing.T) {
	grid := NewGrid(y1g1)
	grid.Place(mon1, plainSession("a", "P1", "R1"))

	clone := grid.Clone()
	clone.Update("a", func(s *models.Session) { s.Status = models.SessionStatusCanceled })

	assert.True(t, grid.Equal(clone))
}

func TestGridFromPlacementsFiltersAndOrders(t *testing.T) {
	grid := GridFromPlacements(y1g1, []Placement{
		{Key: y1g1, Cell: tue3, Session: plainSession("c", "P3", "R3")},
		{Key: y1g1, Cell: mon1, Session: singleGroupSession("b", "P2", "R2", "2")},
		{Key: y1g1, Cell: mon1, Session: singleGroupSession("a", "P1", "R1", "1")},
		{Key: y1g2, Cell: mon1, Session: plainSession("x", "P9", "R9")},
	})

	assert.Equal(t, []models.Cell{mon1, tue3}, grid.Cells())
	placements := grid.Placements()
	require.Len(t, placements, 3)
	assert.Equal(t, "a", placements[0].Session.ID)
	assert.Equal(t, "b", placements[1].Session.ID)
	assert.Equal(t, "c", placements[2].Session.ID)
}

func TestSlotIndexSyncAndDrop(t *testing.T) {
	index := NewSlotIndex()
	grid := NewGrid(y1g1)
	grid.Place(mon1, plainSession("a", "P1", "R1"))
	grid.Place(mon2, plainSession("b", "P1", "R1"))
	index.Sync(grid)

	other := NewGrid(y1g2)
	other.Place(mon1, plainSession("c", "P2", "R2"))
	index.Sync(other)

	assert.Equal(t, 3, index.Size())
	at := index.At(mon1)
	require.Len(t, at, 2)
	assert.Equal(t, "G1", at[0].Key.Group)
	assert.Equal(t, "G2", at[1].Key.Group)

	grid.Remove(mon2, "")
	index.Sync(grid)
	assert.Empty(t, index.At(mon2))

	index.Drop(y1g1)
	assert.Equal(t, 1, index.Size())
}
