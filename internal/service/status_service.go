package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-timetable-api/internal/dto"
	"github.com/noah-isme/sma-timetable-api/internal/models"
	"github.com/noah-isme/sma-timetable-api/internal/timetable"
	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
)

type sessionStatusStore interface {
	FindPublishedSession(ctx context.Context, sessionID string) (*models.SessionRecord, error)
	CompareAndSetStatus(ctx context.Context, exec sqlx.ExtContext, sessionID string, from, to models.SessionStatus) error
}

type statusRequestStore interface {
	Create(ctx context.Context, exec sqlx.ExtContext, request *models.StatusRequest) error
	List(ctx context.Context, filter models.StatusRequestFilter) ([]models.StatusRequest, int, error)
	Acknowledge(ctx context.Context, id, adminID string) error
}

// StatusService applies professor cancel/reschedule toggles to published sessions.
type StatusService struct {
	sessions  sessionStatusStore
	requests  statusRequestStore
	tx        txProvider
	cache     *CacheService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger

	locks sync.Map
}

// NewStatusService constructs the toggle engine.
func NewStatusService(sessions sessionStatusStore, requests statusRequestStore, tx txProvider, cache *CacheService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *StatusService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatusService{
		sessions:  sessions,
		requests:  requests,
		tx:        tx,
		cache:     cache,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
	}
}

// Toggle cancels, reschedules or resets a published session on behalf of the
// professor who teaches it, and records a pending request for the admins.
func (s *StatusService) Toggle(ctx context.Context, sessionID, professorID string, req dto.StatusToggleRequest) (*dto.StatusToggleResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid status action")
	}
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" || professorID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "session id and professor id are required")
	}
	action := models.StatusAction(req.Action)

	unlock := s.lock(sessionID)
	defer unlock()

	record, err := s.sessions.FindPublishedSession(ctx, sessionID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "published session not found")
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to load session")
	}

	session := record.Session()
	next, err := timetable.NextStatus(session, action, professorID)
	if err != nil {
		return nil, mapTimetableError(err)
	}
	previous := session.Status
	if previous == "" {
		previous = models.SessionStatusActive
	}

	request := &models.StatusRequest{
		SessionID:      sessionID,
		Year:           record.Year,
		GroupName:      record.GroupName,
		Day:            record.Day,
		Slot:           record.Slot,
		ProfessorID:    professorID,
		Action:         action,
		PreviousStatus: previous,
		NewStatus:      next,
	}
	if err := s.apply(ctx, sessionID, previous, next, request); err != nil {
		return nil, err
	}

	s.metrics.RecordStatusToggle(action)
	s.cache.InvalidatePublished(ctx, record.Key())
	s.logger.Info("session status toggled",
		zap.String("session_id", sessionID),
		zap.String("professor_id", professorID),
		zap.String("action", string(action)),
		zap.String("status", string(next)),
	)

	return &dto.StatusToggleResponse{
		SessionID:     sessionID,
		Status:        next,
		IsCanceled:    next == models.SessionStatusCanceled,
		IsRescheduled: next == models.SessionStatusRescheduled,
		RequestID:     request.ID,
	}, nil
}

func (s *StatusService) apply(ctx context.Context, sessionID string, from, to models.SessionStatus, request *models.StatusRequest) (err error) {
	if s.tx == nil {
		return appErrors.Clone(appErrors.ErrPersistence, "transaction provider missing")
	}
	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to begin transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = s.sessions.CompareAndSetStatus(ctx, tx, sessionID, from, to); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.ErrStatusChanged
		}
		return appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to update session status")
	}
	if err = s.requests.Create(ctx, tx, request); err != nil {
		return appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to record status request")
	}
	if err = tx.Commit(); err != nil {
		return appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to commit status change")
	}
	return nil
}

func (s *StatusService) lock(sessionID string) func() {
	value, _ := s.locks.LoadOrStore(sessionID, &sync.Mutex{})
	mu := value.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// ListRequests returns status requests for the admin dashboard.
func (s *StatusService) ListRequests(ctx context.Context, query dto.StatusRequestQuery) ([]models.StatusRequest, *models.Pagination, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid query parameters")
	}
	page := query.Page
	if page < 1 {
		page = 1
	}
	size := query.PageSize
	if size < 1 {
		size = 50
	}
	filter := models.StatusRequestFilter{
		Year:        query.Year,
		GroupName:   query.Group,
		ProfessorID: query.ProfessorID,
		PendingOnly: query.Pending,
		Page:        page,
		PageSize:    size,
	}
	requests, total, err := s.requests.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to list status requests")
	}
	if requests == nil {
		requests = []models.StatusRequest{}
	}
	return requests, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Acknowledge marks a pending request as handled.
func (s *StatusService) Acknowledge(ctx context.Context, requestID, adminID string) error {
	if strings.TrimSpace(requestID) == "" {
		return appErrors.Clone(appErrors.ErrValidation, "request id is required")
	}
	err := s.requests.Acknowledge(ctx, requestID, adminID)
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, "pending status request not found")
	}
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to acknowledge status request")
	}
	return nil
}
