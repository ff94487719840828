package models

import (
	"fmt"
	"strings"
)

// Day is one of the seven weekdays a timetable spans.
type Day string

const (
	Monday    Day = "MONDAY"
	Tuesday   Day = "TUESDAY"
	Wednesday Day = "WEDNESDAY"
	Thursday  Day = "THURSDAY"
	Friday    Day = "FRIDAY"
	Saturday  Day = "SATURDAY"
	Sunday    Day = "SUNDAY"
)

var weekDays = []Day{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

// Days returns the ordered list of days shared by every grid.
func Days() []Day {
	out := make([]Day, len(weekDays))
	copy(out, weekDays)
	return out
}

// ParseDay normalises a raw day name.
func ParseDay(raw string) (Day, bool) {
	day := Day(strings.ToUpper(strings.TrimSpace(raw)))
	return day, day.Valid()
}

// Valid reports whether the day belongs to the closed enumeration.
func (d Day) Valid() bool {
	return d.Index() > 0
}

// Index returns the 1-based position of the day in the week, 0 when unknown.
func (d Day) Index() int {
	for i, day := range weekDays {
		if day == d {
			return i + 1
		}
	}
	return 0
}

// TimeSlot is a 1-based slot within a day.
type TimeSlot int

// SlotsPerDay is the fixed number of teaching slots in a day.
const SlotsPerDay = 6

var timeSlotLabels = [SlotsPerDay]string{
	"08:00-09:30",
	"09:45-11:15",
	"11:30-13:00",
	"14:00-15:30",
	"15:45-17:15",
	"17:30-19:00",
}

// TimeSlots returns the ordered slots of a day.
func TimeSlots() []TimeSlot {
	out := make([]TimeSlot, 0, SlotsPerDay)
	for i := 1; i <= SlotsPerDay; i++ {
		out = append(out, TimeSlot(i))
	}
	return out
}

// Valid reports whether the slot is within the day.
func (s TimeSlot) Valid() bool {
	return s >= 1 && s <= SlotsPerDay
}

// Label returns the human readable time range.
func (s TimeSlot) Label() string {
	if !s.Valid() {
		return ""
	}
	return timeSlotLabels[s-1]
}

// GroupKey addresses one (year, group) timetable.
type GroupKey struct {
	Year  string `json:"year"`
	Group string `json:"group"`
}

func (k GroupKey) String() string {
	return k.Year + "/" + k.Group
}

// Cell is a (day, slot) position inside a grid.
type Cell struct {
	Day  Day      `json:"day"`
	Slot TimeSlot `json:"slot"`
}

// Valid reports whether both coordinates are in range.
func (c Cell) Valid() bool {
	return c.Day.Valid() && c.Slot.Valid()
}

func (c Cell) String() string {
	return fmt.Sprintf("%s#%d", c.Day, c.Slot)
}

// Before orders cells by day then slot.
func (c Cell) Before(other Cell) bool {
	if c.Day.Index() != other.Day.Index() {
		return c.Day.Index() < other.Day.Index()
	}
	return c.Slot < other.Slot
}

// CellKey uniquely addresses one scheduling position within one group's grid.
type CellKey struct {
	GroupKey
	Cell
}

// ClassType classifies the teaching format of a session.
type ClassType string

const (
	ClassTypeCM ClassType = "CM"
	ClassTypeTD ClassType = "TD"
	ClassTypeTP ClassType = "TP"
	ClassTypeDE ClassType = "DE"
	ClassTypeCO ClassType = "CO"
)

var classTypeColors = map[ClassType]string{
	ClassTypeCM: "#3B82F6",
	ClassTypeTD: "#10B981",
	ClassTypeTP: "#F59E0B",
	ClassTypeDE: "#EF4444",
	ClassTypeCO: "#8B5CF6",
}

// Valid reports whether the class type is known.
func (c ClassType) Valid() bool {
	_, ok := classTypeColors[c]
	return ok
}

// DefaultColor returns the palette colour associated with the class type.
func (c ClassType) DefaultColor() string {
	if color, ok := classTypeColors[c]; ok {
		return color
	}
	return "#6B7280"
}

// SessionKind tags the session variant.
type SessionKind string

const (
	SessionKindPlain       SessionKind = "PLAIN"
	SessionKindSameTime    SessionKind = "SAME_TIME"
	SessionKindSingleGroup SessionKind = "SINGLE_GROUP"
)

// SplitType is the wire name of a split variant.
type SplitType string

const (
	SplitTypeSameTime    SplitType = "same_time"
	SplitTypeSingleGroup SplitType = "single_group"
)

// SplitType returns the wire split type, empty for plain sessions.
func (k SessionKind) SplitType() SplitType {
	switch k {
	case SessionKindSameTime:
		return SplitTypeSameTime
	case SessionKindSingleGroup:
		return SplitTypeSingleGroup
	default:
		return ""
	}
}

// KindFromSplit maps the wire split flags back to a session kind.
func KindFromSplit(isSplit bool, splitType SplitType) (SessionKind, error) {
	if !isSplit {
		return SessionKindPlain, nil
	}
	switch splitType {
	case SplitTypeSameTime:
		return SessionKindSameTime, nil
	case SplitTypeSingleGroup:
		return SessionKindSingleGroup, nil
	default:
		return "", fmt.Errorf("unknown split type %q", splitType)
	}
}

// SessionStatus captures the professor-owned cancel/reschedule marker.
type SessionStatus string

const (
	SessionStatusActive      SessionStatus = "ACTIVE"
	SessionStatusCanceled    SessionStatus = "CANCELED"
	SessionStatusRescheduled SessionStatus = "RESCHEDULED"
)

// Half identifies which occupant of a session is referenced.
type Half string

const (
	HalfPrimary   Half = "PRIMARY"
	HalfSecondary Half = "SECONDARY"
)

// Assignment is one taught occupation: subject, professor and room.
type Assignment struct {
	SubjectID     string    `json:"subjectId"`
	SubjectName   string    `json:"subjectName"`
	ProfessorID   string    `json:"professorId"`
	ProfessorName string    `json:"professorName"`
	Room          string    `json:"room"`
	ClassType     ClassType `json:"classType"`
}

// Occupant is the professor/room pair a session half consumes.
type Occupant struct {
	Half        Half
	ProfessorID string
	Room        string
}

// Session is one scheduled class. Kind selects which fields are meaningful:
// Secondary and Subgroup2 only for SAME_TIME, Subgroup1 for both split kinds.
type Session struct {
	ID        string        `json:"id"`
	Kind      SessionKind   `json:"kind"`
	Primary   Assignment    `json:"primary"`
	Secondary *Assignment   `json:"secondary,omitempty"`
	Subgroup1 string        `json:"subgroup1,omitempty"`
	Subgroup2 string        `json:"subgroup2,omitempty"`
	Color     string        `json:"color"`
	Status    SessionStatus `json:"status"`
}

// IsSplit reports whether the session is one of the split variants.
func (s Session) IsSplit() bool {
	return s.Kind == SessionKindSameTime || s.Kind == SessionKindSingleGroup
}

// IsCanceled reports the canceled marker.
func (s Session) IsCanceled() bool {
	return s.Status == SessionStatusCanceled
}

// IsRescheduled reports the rescheduled marker.
func (s Session) IsRescheduled() bool {
	return s.Status == SessionStatusRescheduled
}

// Occupants lists the professor/room pairs held by the session.
func (s Session) Occupants() []Occupant {
	primary := Occupant{Half: HalfPrimary, ProfessorID: s.Primary.ProfessorID, Room: s.Primary.Room}
	switch s.Kind {
	case SessionKindSameTime:
		if s.Secondary == nil {
			return []Occupant{primary}
		}
		return []Occupant{primary, {Half: HalfSecondary, ProfessorID: s.Secondary.ProfessorID, Room: s.Secondary.Room}}
	default:
		return []Occupant{primary}
	}
}

// OwnedBy reports whether the professor teaches any half of the session.
func (s Session) OwnedBy(professorID string) bool {
	if professorID == "" {
		return false
	}
	for _, occ := range s.Occupants() {
		if occ.ProfessorID == professorID {
			return true
		}
	}
	return false
}

// Normalize fills derived defaults.
func (s *Session) Normalize() {
	if s.Color == "" {
		s.Color = s.Primary.ClassType.DefaultColor()
	}
	if s.Status == "" {
		s.Status = SessionStatusActive
	}
	s.Subgroup1 = strings.TrimSpace(s.Subgroup1)
	s.Subgroup2 = strings.TrimSpace(s.Subgroup2)
}

// Validate checks the variant invariants.
func (s Session) Validate() error {
	if !s.Primary.ClassType.Valid() {
		return fmt.Errorf("unknown class type %q", s.Primary.ClassType)
	}
	switch s.Kind {
	case SessionKindPlain:
		if s.Secondary != nil || s.Subgroup1 != "" || s.Subgroup2 != "" {
			return fmt.Errorf("plain session must not carry split fields")
		}
	case SessionKindSameTime:
		if s.Secondary == nil {
			return fmt.Errorf("same_time session requires a second assignment")
		}
		if !s.Secondary.ClassType.Valid() {
			return fmt.Errorf("unknown class type %q", s.Secondary.ClassType)
		}
		if s.Subgroup1 == "" || s.Subgroup2 == "" {
			return fmt.Errorf("same_time session requires both subgroup labels")
		}
		if strings.EqualFold(s.Subgroup1, s.Subgroup2) {
			return fmt.Errorf("same_time subgroups must differ")
		}
	case SessionKindSingleGroup:
		if s.Secondary != nil || s.Subgroup2 != "" {
			return fmt.Errorf("single_group session carries only one subgroup")
		}
		if s.Subgroup1 == "" {
			return fmt.Errorf("single_group session requires a subgroup label")
		}
	default:
		return fmt.Errorf("unknown session kind %q", s.Kind)
	}
	return nil
}

// PublishStatus is the lifecycle state of one (year, group) timetable.
type PublishStatus string

const (
	PublishStatusEmpty              PublishStatus = "EMPTY"
	PublishStatusDirty              PublishStatus = "DIRTY"
	PublishStatusSavedUnpublished   PublishStatus = "SAVED_UNPUBLISHED"
	PublishStatusPublished          PublishStatus = "PUBLISHED"
	PublishStatusPublishedWithDraft PublishStatus = "PUBLISHED_WITH_DRAFT"
)

// StatusAction is a professor toggle request.
type StatusAction string

const (
	StatusActionCancel     StatusAction = "cancel"
	StatusActionReschedule StatusAction = "reschedule"
	StatusActionReset      StatusAction = "reset"
)
