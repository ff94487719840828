package timetable

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-timetable-api/internal/models"
)

func TestSlotIndexSyncReplacesGroup(t *testing.T) {
	index := NewSlotIndex()

	g1 := NewGrid(y1g1)
	g1.Place(mon1, plainSession("a", "P1", "R1"))
	g1.Place(mon2, plainSession("b", "P2", "R2"))
	index.Sync(g1)

	g2 := NewGrid(y1g2)
	g2.Place(mon1, plainSession("c", "P3", "R3"))
	index.Sync(g2)

	require.Equal(t, 3, index.Size())
	at := index.At(mon1)
	require.Len(t, at, 2)
	assert.Equal(t, y1g1, at[0].Key, "ordered by year then group")
	assert.Equal(t, y1g2, at[1].Key)

	g1.Remove(mon2, "b")
	index.Sync(g1)
	assert.Empty(t, index.At(mon2))
	assert.Equal(t, 2, index.Size())

	index.Drop(y1g2)
	at = index.At(mon1)
	require.Len(t, at, 1)
	assert.Equal(t, "a", at[0].Session.ID)
}

func TestSlotIndexHoldsCopies(t *testing.T) {
	index := NewSlotIndex()
	g := NewGrid(y1g1)
	g.Place(tue3, plainSession("a", "P1", "R1"))
	index.Sync(g)

	g.Update("a", func(s *models.Session) { s.Primary.Room = "R9" })
	assert.Equal(t, "R1", index.At(tue3)[0].Session.Primary.Room)
}
