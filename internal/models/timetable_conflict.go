package models

// ConflictDimension names the resource that is double-booked.
type ConflictDimension string

const (
	ConflictProfessor ConflictDimension = "PROFESSOR"
	ConflictRoom      ConflictDimension = "ROOM"
)

// ConflictReport describes an existing session that collides with a candidate placement.
type ConflictReport struct {
	Dimension     ConflictDimension `json:"dimension"`
	SessionID     string            `json:"sessionId,omitempty"`
	Year          string            `json:"year"`
	Group         string            `json:"group"`
	Day           Day               `json:"day"`
	Slot          TimeSlot          `json:"slot"`
	SubjectName   string            `json:"subjectName,omitempty"`
	ProfessorID   string            `json:"professorId"`
	ProfessorName string            `json:"professorName,omitempty"`
	Room          string            `json:"room"`
	Subgroup      string            `json:"subgroup,omitempty"`
	ExistingHalf  Half              `json:"existingHalf"`
	CandidateHalf Half              `json:"candidateHalf"`
	// Self marks a clash between the two halves of the candidate itself.
	Self bool `json:"self,omitempty"`
}

// AvailabilityResult is the outcome of one availability check.
type AvailabilityResult struct {
	ProfessorConflicts []ConflictReport `json:"professorConflicts"`
	RoomConflicts      []ConflictReport `json:"roomConflicts"`
	Available          bool             `json:"available"`
}

// TimetableConflictError is returned when a placement would double-book a professor or room.
type TimetableConflictError struct {
	Message string             `json:"message"`
	Result  AvailabilityResult `json:"result"`
}

// Error implements the error interface for conflict errors.
func (e *TimetableConflictError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return e.Message
}
