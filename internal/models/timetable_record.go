package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// GridCopy distinguishes the persisted copies of a timetable.
type GridCopy string

const (
	GridCopyDraft     GridCopy = "DRAFT"
	GridCopyPublished GridCopy = "PUBLISHED"
)

// SessionRecord is the flattened row stored in timetable_sessions.
type SessionRecord struct {
	ID             string        `db:"id"`
	Year           string        `db:"year"`
	GroupName      string        `db:"group_name"`
	Copy           GridCopy      `db:"copy"`
	Day            Day           `db:"day"`
	Slot           int           `db:"slot"`
	Kind           SessionKind   `db:"kind"`
	SubjectID      string        `db:"subject_id"`
	SubjectName    string        `db:"subject_name"`
	ProfessorID    string        `db:"professor_id"`
	ProfessorName  string        `db:"professor_name"`
	Room           string        `db:"room"`
	ClassType      ClassType     `db:"class_type"`
	Subject2ID     *string       `db:"subject2_id"`
	Subject2Name   *string       `db:"subject2_name"`
	Professor2ID   *string       `db:"professor2_id"`
	Professor2Name *string       `db:"professor2_name"`
	Room2          *string       `db:"room2"`
	ClassType2     *string       `db:"class_type2"`
	Subgroup1      *string       `db:"subgroup1"`
	Subgroup2      *string       `db:"subgroup2"`
	Color          string        `db:"color"`
	Status         SessionStatus `db:"status"`
	UpdatedAt      time.Time     `db:"updated_at"`
}

// Key returns the group the record belongs to.
func (r SessionRecord) Key() GroupKey {
	return GroupKey{Year: r.Year, Group: r.GroupName}
}

// Cell returns the grid position of the record.
func (r SessionRecord) Cell() Cell {
	return Cell{Day: r.Day, Slot: TimeSlot(r.Slot)}
}

// Session rebuilds the tagged session variant from the flattened row.
func (r SessionRecord) Session() Session {
	session := Session{
		ID:   r.ID,
		Kind: r.Kind,
		Primary: Assignment{
			SubjectID:     r.SubjectID,
			SubjectName:   r.SubjectName,
			ProfessorID:   r.ProfessorID,
			ProfessorName: r.ProfessorName,
			Room:          r.Room,
			ClassType:     r.ClassType,
		},
		Subgroup1: deref(r.Subgroup1),
		Subgroup2: deref(r.Subgroup2),
		Color:     r.Color,
		Status:    r.Status,
	}
	if r.Kind == SessionKindSameTime {
		session.Secondary = &Assignment{
			SubjectID:     deref(r.Subject2ID),
			SubjectName:   deref(r.Subject2Name),
			ProfessorID:   deref(r.Professor2ID),
			ProfessorName: deref(r.Professor2Name),
			Room:          deref(r.Room2),
			ClassType:     ClassType(deref(r.ClassType2)),
		}
	}
	return session
}

// NewSessionRecord flattens a session placed at key/cell into a storable row.
func NewSessionRecord(key GroupKey, cell Cell, copyKind GridCopy, s Session) SessionRecord {
	rec := SessionRecord{
		ID:            s.ID,
		Year:          key.Year,
		GroupName:     key.Group,
		Copy:          copyKind,
		Day:           cell.Day,
		Slot:          int(cell.Slot),
		Kind:          s.Kind,
		SubjectID:     s.Primary.SubjectID,
		SubjectName:   s.Primary.SubjectName,
		ProfessorID:   s.Primary.ProfessorID,
		ProfessorName: s.Primary.ProfessorName,
		Room:          s.Primary.Room,
		ClassType:     s.Primary.ClassType,
		Subgroup1:     ref(s.Subgroup1),
		Subgroup2:     ref(s.Subgroup2),
		Color:         s.Color,
		Status:        s.Status,
	}
	if s.Kind == SessionKindSameTime && s.Secondary != nil {
		rec.Subject2ID = ref(s.Secondary.SubjectID)
		rec.Subject2Name = ref(s.Secondary.SubjectName)
		rec.Professor2ID = ref(s.Secondary.ProfessorID)
		rec.Professor2Name = ref(s.Secondary.ProfessorName)
		rec.Room2 = ref(s.Secondary.Room)
		rec.ClassType2 = ref(string(s.Secondary.ClassType))
	}
	return rec
}

// TimetableState is the persisted lifecycle row for a (year, group).
type TimetableState struct {
	Year        string        `db:"year" json:"year"`
	GroupName   string        `db:"group_name" json:"group"`
	Status      PublishStatus `db:"status" json:"status"`
	SavedAt     *time.Time    `db:"saved_at" json:"saved_at,omitempty"`
	PublishedAt *time.Time    `db:"published_at" json:"published_at,omitempty"`
	UpdatedAt   time.Time     `db:"updated_at" json:"updated_at"`
}

// Key returns the group the state belongs to.
func (s TimetableState) Key() GroupKey {
	return GroupKey{Year: s.Year, Group: s.GroupName}
}

// StatusRequest records a professor toggle awaiting admin acknowledgment.
type StatusRequest struct {
	ID             string        `db:"id" json:"id"`
	SessionID      string        `db:"session_id" json:"session_id"`
	Year           string        `db:"year" json:"year"`
	GroupName      string        `db:"group_name" json:"group"`
	Day            Day           `db:"day" json:"day"`
	Slot           int           `db:"slot" json:"slot"`
	ProfessorID    string        `db:"professor_id" json:"professor_id"`
	Action         StatusAction  `db:"action" json:"action"`
	PreviousStatus SessionStatus `db:"previous_status" json:"previous_status"`
	NewStatus      SessionStatus `db:"new_status" json:"new_status"`
	Acknowledged   bool          `db:"acknowledged" json:"acknowledged"`
	AcknowledgedBy *string       `db:"acknowledged_by" json:"acknowledged_by,omitempty"`
	AcknowledgedAt *time.Time    `db:"acknowledged_at" json:"acknowledged_at,omitempty"`
	CreatedAt      time.Time     `db:"created_at" json:"created_at"`
}

// StatusRequestFilter narrows the admin request list.
type StatusRequestFilter struct {
	Year        string
	GroupName   string
	ProfessorID string
	PendingOnly bool
	Page        int
	PageSize    int
}

// TimetableVersion is one publish event kept as history.
type TimetableVersion struct {
	ID           string         `db:"id" json:"id"`
	Year         string         `db:"year" json:"year"`
	GroupName    string         `db:"group_name" json:"group"`
	Version      int            `db:"version" json:"version"`
	SessionCount int            `db:"session_count" json:"session_count"`
	PublishedBy  string         `db:"published_by" json:"published_by"`
	Meta         types.JSONText `db:"meta" json:"meta"`
	SnapshotKey  *string        `db:"snapshot_key" json:"snapshot_key,omitempty"`
	CreatedAt    time.Time      `db:"created_at" json:"created_at"`
}

func deref(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func ref(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
