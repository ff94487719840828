package dto

import (
	"fmt"
	"strings"
	"time"

	"github.com/noah-isme/sma-timetable-api/internal/models"
)

// SessionPayload is the wire shape of a session. Split variants are flattened
// into isSplit/splitType plus the optional second slot fields.
type SessionPayload struct {
	ID             string `json:"id,omitempty"`
	SubjectID      string `json:"subjectId" validate:"required"`
	SubjectName    string `json:"subjectName"`
	ProfessorID    string `json:"professorId" validate:"required"`
	ProfessorName  string `json:"professorName"`
	Room           string `json:"room" validate:"required"`
	ClassType      string `json:"classType" validate:"required,oneof=CM TD TP DE CO"`
	Color          string `json:"color,omitempty" validate:"omitempty,hexcolor"`
	IsSplit        bool   `json:"isSplit"`
	SplitType      string `json:"splitType,omitempty" validate:"required_if=IsSplit true,omitempty,oneof=same_time single_group"`
	Subgroup1      string `json:"subgroup1,omitempty" validate:"required_if=IsSplit true"`
	Subgroup2      string `json:"subgroup2,omitempty" validate:"required_if=SplitType same_time"`
	Subject2ID     string `json:"subject2Id,omitempty" validate:"required_if=SplitType same_time"`
	Subject2Name   string `json:"subject2Name,omitempty"`
	Professor2ID   string `json:"professor2Id,omitempty" validate:"required_if=SplitType same_time"`
	Professor2Name string `json:"professor2Name,omitempty"`
	Room2          string `json:"room2,omitempty" validate:"required_if=SplitType same_time"`
	ClassType2     string `json:"classType2,omitempty" validate:"required_if=SplitType same_time,omitempty,oneof=CM TD TP DE CO"`
	IsCanceled     bool   `json:"isCanceled"`
	IsRescheduled  bool   `json:"isRescheduled"`
}

// ToSession converts the payload into the tagged session variant.
func (p SessionPayload) ToSession() (models.Session, error) {
	kind, err := models.KindFromSplit(p.IsSplit, models.SplitType(p.SplitType))
	if err != nil {
		return models.Session{}, err
	}
	if p.IsCanceled && p.IsRescheduled {
		return models.Session{}, fmt.Errorf("a session cannot be both canceled and rescheduled")
	}
	session := models.Session{
		ID:   strings.TrimSpace(p.ID),
		Kind: kind,
		Primary: models.Assignment{
			SubjectID:     p.SubjectID,
			SubjectName:   p.SubjectName,
			ProfessorID:   p.ProfessorID,
			ProfessorName: p.ProfessorName,
			Room:          strings.TrimSpace(p.Room),
			ClassType:     models.ClassType(p.ClassType),
		},
		Color: p.Color,
	}
	switch kind {
	case models.SessionKindSameTime:
		session.Subgroup1, session.Subgroup2 = p.Subgroup1, p.Subgroup2
		session.Secondary = &models.Assignment{
			SubjectID:     p.Subject2ID,
			SubjectName:   p.Subject2Name,
			ProfessorID:   p.Professor2ID,
			ProfessorName: p.Professor2Name,
			Room:          strings.TrimSpace(p.Room2),
			ClassType:     models.ClassType(p.ClassType2),
		}
	case models.SessionKindSingleGroup:
		session.Subgroup1 = p.Subgroup1
	}
	switch {
	case p.IsCanceled:
		session.Status = models.SessionStatusCanceled
	case p.IsRescheduled:
		session.Status = models.SessionStatusRescheduled
	}
	session.Normalize()
	return session, nil
}

// SessionPayloadFrom flattens a session for the wire.
func SessionPayloadFrom(s models.Session) SessionPayload {
	p := SessionPayload{
		ID:            s.ID,
		SubjectID:     s.Primary.SubjectID,
		SubjectName:   s.Primary.SubjectName,
		ProfessorID:   s.Primary.ProfessorID,
		ProfessorName: s.Primary.ProfessorName,
		Room:          s.Primary.Room,
		ClassType:     string(s.Primary.ClassType),
		Color:         s.Color,
		IsSplit:       s.IsSplit(),
		SplitType:     string(s.Kind.SplitType()),
		Subgroup1:     s.Subgroup1,
		Subgroup2:     s.Subgroup2,
		IsCanceled:    s.IsCanceled(),
		IsRescheduled: s.IsRescheduled(),
	}
	if s.Secondary != nil {
		p.Subject2ID = s.Secondary.SubjectID
		p.Subject2Name = s.Secondary.SubjectName
		p.Professor2ID = s.Secondary.ProfessorID
		p.Professor2Name = s.Secondary.ProfessorName
		p.Room2 = s.Secondary.Room
		p.ClassType2 = string(s.Secondary.ClassType)
	}
	return p
}

// AvailabilityRequest is a candidate placement submitted for checking.
type AvailabilityRequest struct {
	Year         string `json:"year" validate:"required"`
	Group        string `json:"group" validate:"required"`
	Day          string `json:"day" validate:"required"`
	Slot         int    `json:"slot" validate:"required,min=1,max=6"`
	SessionID    string `json:"sessionId"`
	SubjectID    string `json:"subjectId" validate:"required"`
	ProfessorID  string `json:"professorId" validate:"required"`
	Room         string `json:"room" validate:"required"`
	IsSplit      bool   `json:"isSplit"`
	SplitType    string `json:"splitType" validate:"required_if=IsSplit true,omitempty,oneof=same_time single_group"`
	Subgroup1    string `json:"subgroup1" validate:"required_if=IsSplit true"`
	Subgroup2    string `json:"subgroup2" validate:"required_if=SplitType same_time"`
	Professor2ID string `json:"professor2Id" validate:"required_if=SplitType same_time"`
	Room2        string `json:"room2" validate:"required_if=SplitType same_time"`
}

// CellRequest addresses a (day, slot) in a move request.
type CellRequest struct {
	Day  string `json:"day" validate:"required"`
	Slot int    `json:"slot" validate:"required,min=1,max=6"`
}

// MoveRequest relocates the content of one cell into another of the same grid.
type MoveRequest struct {
	From CellRequest `json:"from"`
	To   CellRequest `json:"to"`
}

// Release resolutions.
const (
	ReleaseResolutionSave    = "SAVE"
	ReleaseResolutionDiscard = "DISCARD"
)

// ReleaseRequest is sent when the operator leaves the editor.
type ReleaseRequest struct {
	Resolution string `json:"resolution" validate:"omitempty,oneof=SAVE DISCARD"`
}

// StatusToggleRequest carries a professor toggle.
type StatusToggleRequest struct {
	Action string `json:"action" validate:"required,oneof=cancel reschedule reset"`
}

// StatusRequestQuery filters the admin status request list.
type StatusRequestQuery struct {
	Year        string `form:"year"`
	Group       string `form:"group"`
	ProfessorID string `form:"professorId"`
	Pending     bool   `form:"pending"`
	Page        int    `form:"page" validate:"omitempty,min=1"`
	PageSize    int    `form:"pageSize" validate:"omitempty,min=1,max=200"`
}

// Export formats.
const (
	ExportFormatCSV = "csv"
	ExportFormatPDF = "pdf"
)

// ExportQuery selects the export format.
type ExportQuery struct {
	Format string `form:"format" validate:"omitempty,oneof=csv pdf"`
}

// CellView is one occupied cell of a rendered grid.
type CellView struct {
	Day       models.Day       `json:"day"`
	Slot      models.TimeSlot  `json:"slot"`
	TimeRange string           `json:"timeRange"`
	Sessions  []SessionPayload `json:"sessions"`
}

// TimetableFlags mirrors the derived lifecycle booleans.
type TimetableFlags struct {
	HasUnsavedChanges bool `json:"hasUnsavedChanges"`
	HasDraftChanges   bool `json:"hasDraftChanges"`
	IsPublished       bool `json:"isPublished"`
}

// GridView is a rendered grid of one group.
type GridView struct {
	Year   string               `json:"year"`
	Group  string               `json:"group"`
	Copy   models.GridCopy      `json:"copy"`
	Status models.PublishStatus `json:"status,omitempty"`
	Flags  *TimetableFlags      `json:"flags,omitempty"`
	Cells  []CellView           `json:"cells"`
}

// TimetableStateResponse reports the lifecycle of a group.
type TimetableStateResponse struct {
	Year        string               `json:"year"`
	Group       string               `json:"group"`
	Status      models.PublishStatus `json:"status"`
	Flags       TimetableFlags       `json:"flags"`
	SavedAt     *time.Time           `json:"savedAt,omitempty"`
	PublishedAt *time.Time           `json:"publishedAt,omitempty"`
}

// CommitSessionResponse is returned after a session lands in the working copy.
type CommitSessionResponse struct {
	Session   SessionPayload       `json:"session"`
	Displaced []string             `json:"displaced"`
	Status    models.PublishStatus `json:"status"`
}

// MoveResponse reports the outcome of a move or swap.
type MoveResponse struct {
	Outcome string               `json:"outcome"`
	Status  models.PublishStatus `json:"status"`
}

// SaveResponse is returned by save.
type SaveResponse struct {
	Success         bool `json:"success"`
	IsPublished     bool `json:"isPublished"`
	HasDraftChanges bool `json:"hasDraftChanges"`
}

// PublishResponse is returned by publish.
type PublishResponse struct {
	Success bool `json:"success"`
	Version int  `json:"version"`
}

// SuccessResponse is the bare acknowledgement used by destructive operations.
type SuccessResponse struct {
	Success bool `json:"success"`
}

// ProfessorEntry is one published session taught by a professor.
type ProfessorEntry struct {
	Year      string          `json:"year"`
	Group     string          `json:"group"`
	Day       models.Day      `json:"day"`
	Slot      models.TimeSlot `json:"slot"`
	TimeRange string          `json:"timeRange"`
	Session   SessionPayload  `json:"session"`
}

// ProfessorTimetableView lists a professor's published sessions in week order.
type ProfessorTimetableView struct {
	ProfessorID string           `json:"professorId"`
	Entries     []ProfessorEntry `json:"entries"`
}

// StatusToggleResponse is returned after a toggle takes effect.
type StatusToggleResponse struct {
	SessionID     string               `json:"sessionId"`
	Status        models.SessionStatus `json:"status"`
	IsCanceled    bool                 `json:"isCanceled"`
	IsRescheduled bool                 `json:"isRescheduled"`
	RequestID     string               `json:"requestId"`
}
