package timetable

import (
	"sort"
	"sync"

	"github.com/noah-isme/sma-timetable-api/internal/models"
)

// SlotIndex keeps every active session of the institution keyed by (day, slot)
// so an availability check only touches the sessions sharing its time.
type SlotIndex struct {
	mu    sync.RWMutex
	slots map[models.Cell]map[models.GroupKey][]models.Session
}

// NewSlotIndex returns an empty index.
func NewSlotIndex() *SlotIndex {
	return &SlotIndex{slots: make(map[models.Cell]map[models.GroupKey][]models.Session)}
}

// Sync replaces everything indexed for the grid's group with the grid content.
func (i *SlotIndex) Sync(g *Grid) {
	key := g.Key()
	i.mu.Lock()
	defer i.mu.Unlock()
	i.dropLocked(key)
	for cell, sessions := range g.cells {
		if len(sessions) == 0 {
			continue
		}
		groups, ok := i.slots[cell]
		if !ok {
			groups = make(map[models.GroupKey][]models.Session)
			i.slots[cell] = groups
		}
		groups[key] = cloneSessions(sessions)
	}
}

// Drop removes the group from the index.
func (i *SlotIndex) Drop(key models.GroupKey) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.dropLocked(key)
}

// At returns every session placed at the cell across all groups, ordered by group.
func (i *SlotIndex) At(cell models.Cell) []Placement {
	i.mu.RLock()
	defer i.mu.RUnlock()
	groups := i.slots[cell]
	keys := make([]models.GroupKey, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(a, b int) bool {
		if keys[a].Year != keys[b].Year {
			return keys[a].Year < keys[b].Year
		}
		return keys[a].Group < keys[b].Group
	})
	var out []Placement
	for _, key := range keys {
		for _, s := range groups[key] {
			out = append(out, Placement{Key: key, Cell: cell, Session: s})
		}
	}
	return out
}

// Size returns the number of indexed sessions.
func (i *SlotIndex) Size() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	n := 0
	for _, groups := range i.slots {
		for _, sessions := range groups {
			n += len(sessions)
		}
	}
	return n
}

func (i *SlotIndex) dropLocked(key models.GroupKey) {
	for cell, groups := range i.slots {
		delete(groups, key)
		if len(groups) == 0 {
			delete(i.slots, cell)
		}
	}
}
