package timetable

import "github.com/noah-isme/sma-timetable-api/internal/models"

// Flags is the boolean view of a publish status exposed to callers.
type Flags struct {
	HasUnsavedChanges bool `json:"hasUnsavedChanges"`
	HasDraftChanges   bool `json:"hasDraftChanges"`
	IsPublished       bool `json:"isPublished"`
}

// Timetable is the working, saved and published copy of one group's grid
// together with its lifecycle status. It is not safe for concurrent use.
type Timetable struct {
	key       models.GroupKey
	working   *Grid
	saved     *Grid
	published *Grid
	status    models.PublishStatus
}

// NewTimetable returns an untouched timetable.
func NewTimetable(key models.GroupKey) *Timetable {
	return &Timetable{
		key:     key,
		working: NewGrid(key),
		saved:   NewGrid(key),
		status:  models.PublishStatusEmpty,
	}
}

// RestoreTimetable rebuilds a timetable from its persisted copies. published may be nil.
func RestoreTimetable(key models.GroupKey, saved, published *Grid) *Timetable {
	if saved == nil {
		saved = NewGrid(key)
	}
	t := &Timetable{
		key:       key,
		working:   saved.Clone(),
		saved:     saved,
		published: published,
	}
	t.status = settle(t.saved, t.published)
	return t
}

// Key returns the owning group.
func (t *Timetable) Key() models.GroupKey { return t.key }

// Status returns the current lifecycle status.
func (t *Timetable) Status() models.PublishStatus { return t.status }

// Working returns the editable grid. Mutations must go through Edit.
func (t *Timetable) Working() *Grid { return t.working }

// Saved returns the last saved grid.
func (t *Timetable) Saved() *Grid { return t.saved }

// Published returns the last published grid, nil when never published.
func (t *Timetable) Published() *Grid { return t.published }

// Flags derives the boolean view of the status.
func (t *Timetable) Flags() Flags {
	isPublished := t.published != nil
	return Flags{
		HasUnsavedChanges: t.status == models.PublishStatusDirty,
		HasDraftChanges:   isPublished && !t.saved.Equal(t.published),
		IsPublished:       isPublished,
	}
}

// Clone returns an independent copy, used to stage a transition until it is persisted.
func (t *Timetable) Clone() *Timetable {
	out := &Timetable{
		key:     t.key,
		working: t.working.Clone(),
		saved:   t.saved.Clone(),
		status:  t.status,
	}
	if t.published != nil {
		out.published = t.published.Clone()
	}
	return out
}

// Edit applies fn to the working copy. Any successful edit makes the timetable dirty.
func (t *Timetable) Edit(fn func(*Grid) error) error {
	scratch := t.working.Clone()
	if err := fn(scratch); err != nil {
		return err
	}
	t.working = scratch
	t.status = models.PublishStatusDirty
	return nil
}

// Save makes the working copy the saved copy.
func (t *Timetable) Save() {
	t.saved = t.working.Clone()
	t.status = settle(t.saved, t.published)
}

// Publish copies the saved grid into the published copy, saving first when dirty.
// carry returns the published copy's status for a session so professor toggles survive.
func (t *Timetable) Publish(carry func(models.Cell, models.Session) models.SessionStatus) {
	if t.status == models.PublishStatusDirty {
		t.Save()
	}
	published := t.saved.Clone()
	if carry != nil {
		for cell, sessions := range published.cells {
			for i := range sessions {
				if status := carry(cell, sessions[i]); status != "" {
					sessions[i].Status = status
				}
			}
		}
	}
	t.published = published
	t.status = models.PublishStatusPublished
}

// Discard drops unsaved edits.
func (t *Timetable) Discard() {
	t.working = t.saved.Clone()
	t.status = settle(t.saved, t.published)
}

// Delete empties every copy and returns to EMPTY.
func (t *Timetable) Delete() {
	t.working = NewGrid(t.key)
	t.saved = NewGrid(t.key)
	t.published = nil
	t.status = models.PublishStatusEmpty
}

func settle(saved, published *Grid) models.PublishStatus {
	switch {
	case published == nil && saved.Empty():
		return models.PublishStatusEmpty
	case published == nil:
		return models.PublishStatusSavedUnpublished
	case saved.Equal(published):
		return models.PublishStatusPublished
	default:
		return models.PublishStatusPublishedWithDraft
	}
}
