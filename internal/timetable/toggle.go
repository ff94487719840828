package timetable

import (
	"errors"

	"github.com/noah-isme/sma-timetable-api/internal/models"
)

var (
	// ErrNotOwner is returned when a professor toggles a session they do not teach.
	ErrNotOwner = errors.New("professor does not own the session")
	// ErrUnknownAction is returned for an unsupported toggle action.
	ErrUnknownAction = errors.New("unknown status action")
)

// NextStatus resolves the status a toggle produces. Canceled and rescheduled are
// mutually exclusive; reset returns the session to active.
func NextStatus(session models.Session, action models.StatusAction, professorID string) (models.SessionStatus, error) {
	if !session.OwnedBy(professorID) {
		return "", ErrNotOwner
	}
	switch action {
	case models.StatusActionCancel:
		return models.SessionStatusCanceled, nil
	case models.StatusActionReschedule:
		return models.SessionStatusRescheduled, nil
	case models.StatusActionReset:
		return models.SessionStatusActive, nil
	default:
		return "", ErrUnknownAction
	}
}
