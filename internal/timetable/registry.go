package timetable

import (
	"sync"

	"github.com/noah-isme/sma-timetable-api/internal/models"
)

// Registry maps every session id held by any copy of a loaded timetable to the
// group owning it. Session ids are addressed without their group by toggles and
// by persisted rows, so one id must never live in two groups.
type Registry struct {
	mu      sync.RWMutex
	owners  map[string]models.GroupKey
	byGroup map[models.GroupKey][]string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		owners:  make(map[string]models.GroupKey),
		byGroup: make(map[models.GroupKey][]string),
	}
}

// Sync records the ids of the working, saved and published copies of t.
// An id already owned by another group keeps its first owner.
func (r *Registry) Sync(t *Timetable) {
	key := t.Key()
	ids := t.sessionIDs()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.dropLocked(key)
	claimed := make([]string, 0, len(ids))
	for _, id := range ids {
		if owner, ok := r.owners[id]; ok && owner != key {
			continue
		}
		r.owners[id] = key
		claimed = append(claimed, id)
	}
	r.byGroup[key] = claimed
}

// Drop forgets every id of the group.
func (r *Registry) Drop(key models.GroupKey) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dropLocked(key)
}

// Owner returns the group holding the session id.
func (r *Registry) Owner(sessionID string) (models.GroupKey, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	key, ok := r.owners[sessionID]
	return key, ok
}

func (r *Registry) dropLocked(key models.GroupKey) {
	for _, id := range r.byGroup[key] {
		if r.owners[id] == key {
			delete(r.owners, id)
		}
	}
	delete(r.byGroup, key)
}

func (t *Timetable) sessionIDs() []string {
	seen := make(map[string]struct{})
	var ids []string
	for _, g := range []*Grid{t.working, t.saved, t.published} {
		if g == nil {
			continue
		}
		for _, sessions := range g.cells {
			for _, s := range sessions {
				if _, ok := seen[s.ID]; ok {
					continue
				}
				seen[s.ID] = struct{}{}
				ids = append(ids, s.ID)
			}
		}
	}
	return ids
}
