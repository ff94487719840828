package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-timetable-api/internal/dto"
	"github.com/noah-isme/sma-timetable-api/internal/models"
	"github.com/noah-isme/sma-timetable-api/internal/timetable"
	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
)

type timetableStore interface {
	ListStates(ctx context.Context) ([]models.TimetableState, error)
	FindState(ctx context.Context, key models.GroupKey) (*models.TimetableState, error)
	UpsertState(ctx context.Context, exec sqlx.ExtContext, state *models.TimetableState) error
	LoadGrid(ctx context.Context, key models.GroupKey, copyKind models.GridCopy) ([]models.SessionRecord, error)
	ReplaceGrid(ctx context.Context, exec sqlx.ExtContext, key models.GroupKey, copyKind models.GridCopy, records []models.SessionRecord) error
	DeleteTimetable(ctx context.Context, exec sqlx.ExtContext, key models.GroupKey) error
}

type timetableVersionStore interface {
	CreateVersioned(ctx context.Context, exec sqlx.ExtContext, version *models.TimetableVersion) error
	ListByGroup(ctx context.Context, key models.GroupKey) ([]models.TimetableVersion, error)
}

type txProvider interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

type snapshotScheduler interface {
	ScheduleSnapshot(key models.GroupKey, version int) error
}

// TimetableServiceConfig governs editing behaviour.
type TimetableServiceConfig struct {
	// RevalidateMoves runs the availability checker for every session relocated by a move or swap.
	RevalidateMoves bool
}

type workspace struct {
	mu        sync.Mutex
	timetable *timetable.Timetable
	state     models.TimetableState
}

// TimetableService owns the editable timetables of every (year, group), the
// shared slot index and the publish lifecycle.
type TimetableService struct {
	store     timetableStore
	versions  timetableVersionStore
	tx        txProvider
	cache     *CacheService
	snapshots snapshotScheduler
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	cfg       TimetableServiceConfig

	index    *timetable.SlotIndex
	checker  *timetable.Checker
	sessions *timetable.Registry

	// placeMu serialises check+commit across groups so two groups cannot
	// claim the same professor, room or session id between a check and its commit.
	placeMu sync.Mutex

	mu         sync.Mutex
	workspaces map[models.GroupKey]*workspace
}

// NewTimetableService wires the timetable editor.
func NewTimetableService(
	store timetableStore,
	versions timetableVersionStore,
	tx txProvider,
	cache *CacheService,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
	cfg TimetableServiceConfig,
) *TimetableService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	index := timetable.NewSlotIndex()
	return &TimetableService{
		store:      store,
		versions:   versions,
		tx:         tx,
		cache:      cache,
		metrics:    metrics,
		validator:  validate,
		logger:     logger,
		cfg:        cfg,
		index:      index,
		checker:    timetable.NewChecker(index),
		sessions:   timetable.NewRegistry(),
		workspaces: make(map[models.GroupKey]*workspace),
	}
}

// SetSnapshotScheduler registers the post-publish snapshot hook.
func (s *TimetableService) SetSnapshotScheduler(scheduler snapshotScheduler) {
	s.snapshots = scheduler
}

// Warm loads every stored timetable so availability checks see the whole institution.
func (s *TimetableService) Warm(ctx context.Context) error {
	states, err := s.store.ListStates(ctx)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to list timetables")
	}
	for _, state := range states {
		key := state.Key()
		ws := s.workspace(key)
		ws.mu.Lock()
		err := s.ensureLoaded(ctx, key, ws)
		ws.mu.Unlock()
		if err != nil {
			return err
		}
	}
	s.logger.Info("timetables warmed", zap.Int("timetables", len(states)), zap.Int("sessions", s.index.Size()))
	return nil
}

// CheckAvailability reports professor and room conflicts for a candidate placement.
func (s *TimetableService) CheckAvailability(ctx context.Context, req dto.AvailabilityRequest) (*models.AvailabilityResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid availability request")
	}
	key, err := parseGroupKey(req.Year, req.Group)
	if err != nil {
		return nil, err
	}
	cell, err := parseCell(req.Day, req.Slot)
	if err != nil {
		return nil, err
	}
	kind, err := models.KindFromSplit(req.IsSplit, models.SplitType(req.SplitType))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid split type")
	}

	candidate := timetable.Candidate{
		Key:         key,
		Cell:        cell,
		SessionID:   req.SessionID,
		Kind:        kind,
		ProfessorID: req.ProfessorID,
		Room:        req.Room,
		Subgroup1:   strings.TrimSpace(req.Subgroup1),
		Subgroup2:   strings.TrimSpace(req.Subgroup2),
	}
	if kind == models.SessionKindSameTime {
		candidate.Professor2ID = req.Professor2ID
		candidate.Room2 = req.Room2
	}

	result := s.checker.Check(candidate)
	s.metrics.RecordAvailabilityCheck(result)
	return &result, nil
}

// CommitSession validates a session and writes it into the working copy.
func (s *TimetableService) CommitSession(ctx context.Context, year, group, day string, slot int, payload dto.SessionPayload) (*dto.CommitSessionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid session payload")
	}
	key, err := parseGroupKey(year, group)
	if err != nil {
		return nil, err
	}
	cell, err := parseCell(day, slot)
	if err != nil {
		return nil, err
	}
	session, err := payload.ToSession()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid session payload")
	}
	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	if err := session.Validate(); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid session payload")
	}

	ws := s.workspace(key)
	ws.mu.Lock()
	defer ws.mu.Unlock()
	if err := s.ensureLoaded(ctx, key, ws); err != nil {
		return nil, err
	}

	s.placeMu.Lock()
	defer s.placeMu.Unlock()

	if owner, ok := s.sessions.Owner(session.ID); ok && owner != key {
		return nil, appErrors.Clone(appErrors.ErrDuplicateSession, fmt.Sprintf("session %s already belongs to %s", session.ID, owner))
	}

	result := s.checker.Check(timetable.CandidateFor(key, cell, session))
	s.metrics.RecordAvailabilityCheck(result)
	if !result.Available {
		return nil, conflictError(result, "session conflicts with existing placements")
	}

	var displaced []models.Session
	if err := ws.timetable.Edit(func(g *timetable.Grid) error {
		displaced = g.Place(cell, session)
		return nil
	}); err != nil {
		return nil, err
	}
	s.syncIndex(ws.timetable)

	ids := make([]string, 0, len(displaced))
	for _, d := range displaced {
		ids = append(ids, d.ID)
	}
	s.logger.Debug("session committed",
		zap.String("timetable", key.String()),
		zap.String("cell", cell.String()),
		zap.String("session_id", session.ID),
		zap.Int("displaced", len(ids)),
	)
	return &dto.CommitSessionResponse{
		Session:   dto.SessionPayloadFrom(session),
		Displaced: ids,
		Status:    ws.timetable.Status(),
	}, nil
}

// RemoveSession empties a cell, or removes one session when sessionID is set.
func (s *TimetableService) RemoveSession(ctx context.Context, year, group, day string, slot int, sessionID string) (*dto.TimetableStateResponse, error) {
	key, err := parseGroupKey(year, group)
	if err != nil {
		return nil, err
	}
	cell, err := parseCell(day, slot)
	if err != nil {
		return nil, err
	}

	ws := s.workspace(key)
	ws.mu.Lock()
	defer ws.mu.Unlock()
	if err := s.ensureLoaded(ctx, key, ws); err != nil {
		return nil, err
	}

	if err := ws.timetable.Edit(func(g *timetable.Grid) error {
		if removed := g.Remove(cell, sessionID); len(removed) == 0 {
			return timetable.ErrNoSourceSession
		}
		return nil
	}); err != nil {
		return nil, mapTimetableError(err)
	}
	s.syncIndex(ws.timetable)
	return stateResponse(ws), nil
}

// MoveOrSwap relocates a cell's content; an occupied destination is swapped.
func (s *TimetableService) MoveOrSwap(ctx context.Context, year, group string, req dto.MoveRequest) (*dto.MoveResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid move request")
	}
	key, err := parseGroupKey(year, group)
	if err != nil {
		return nil, err
	}
	src, err := parseCell(req.From.Day, req.From.Slot)
	if err != nil {
		return nil, err
	}
	dst, err := parseCell(req.To.Day, req.To.Slot)
	if err != nil {
		return nil, err
	}

	ws := s.workspace(key)
	ws.mu.Lock()
	defer ws.mu.Unlock()
	if err := s.ensureLoaded(ctx, key, ws); err != nil {
		return nil, err
	}

	outcome, moves, err := ws.timetable.Working().PlanMove(src, dst)
	if err != nil {
		s.metrics.RecordLifecycle("move", err)
		return nil, mapTimetableError(err)
	}
	if outcome == timetable.MoveOutcomeUnchanged {
		return &dto.MoveResponse{Outcome: string(outcome), Status: ws.timetable.Status()}, nil
	}

	s.placeMu.Lock()
	defer s.placeMu.Unlock()

	if s.cfg.RevalidateMoves {
		if result := s.revalidate(key, moves); !result.Available {
			s.metrics.RecordLifecycle("move", errors.New("conflict"))
			return nil, conflictError(result, "relocated sessions conflict with existing placements")
		}
	}

	if err := ws.timetable.Edit(func(g *timetable.Grid) error {
		_, err := g.MoveOrSwap(src, dst)
		return err
	}); err != nil {
		return nil, mapTimetableError(err)
	}
	s.syncIndex(ws.timetable)
	s.metrics.RecordLifecycle("move", nil)
	return &dto.MoveResponse{Outcome: string(outcome), Status: ws.timetable.Status()}, nil
}

func (s *TimetableService) revalidate(key models.GroupKey, moves []timetable.Relocation) models.AvailabilityResult {
	merged := models.AvailabilityResult{
		ProfessorConflicts: []models.ConflictReport{},
		RoomConflicts:      []models.ConflictReport{},
		Available:          true,
	}
	for _, move := range moves {
		candidate := timetable.CandidateFor(key, move.To, move.Session)
		candidate.IgnoreOwnGroup = true
		result := s.checker.Check(candidate)
		s.metrics.RecordAvailabilityCheck(result)
		merged.ProfessorConflicts = append(merged.ProfessorConflicts, result.ProfessorConflicts...)
		merged.RoomConflicts = append(merged.RoomConflicts, result.RoomConflicts...)
		merged.Available = merged.Available && result.Available
	}
	return merged
}

// Save persists the working copy as the saved draft.
func (s *TimetableService) Save(ctx context.Context, year, group, actor string) (*dto.SaveResponse, error) {
	key, err := parseGroupKey(year, group)
	if err != nil {
		return nil, err
	}
	ws := s.workspace(key)
	ws.mu.Lock()
	defer ws.mu.Unlock()
	if err := s.ensureLoaded(ctx, key, ws); err != nil {
		return nil, err
	}
	if err := s.saveLocked(ctx, ws, actor); err != nil {
		return nil, err
	}
	flags := ws.timetable.Flags()
	return &dto.SaveResponse{Success: true, IsPublished: flags.IsPublished, HasDraftChanges: flags.HasDraftChanges}, nil
}

func (s *TimetableService) saveLocked(ctx context.Context, ws *workspace, actor string) error {
	staged := ws.timetable.Clone()
	staged.Save()

	now := time.Now().UTC()
	state := ws.state
	state.Status = staged.Status()
	state.SavedAt = &now

	_, err := s.persist(ctx, staged, state, false, actor)
	s.metrics.RecordLifecycle("save", err)
	if err != nil {
		return err
	}
	ws.timetable = staged
	ws.state = state
	s.syncIndex(staged)
	s.logger.Info("timetable saved", zap.String("timetable", staged.Key().String()), zap.String("actor", actor), zap.String("status", string(state.Status)))
	return nil
}

// Publish saves pending edits and replaces the published copy with the saved draft.
func (s *TimetableService) Publish(ctx context.Context, year, group, actor string) (*dto.PublishResponse, error) {
	key, err := parseGroupKey(year, group)
	if err != nil {
		return nil, err
	}
	ws := s.workspace(key)
	ws.mu.Lock()
	defer ws.mu.Unlock()
	if err := s.ensureLoaded(ctx, key, ws); err != nil {
		return nil, err
	}

	carry, err := s.publishedStatuses(ctx, key)
	if err != nil {
		s.metrics.RecordLifecycle("publish", err)
		return nil, err
	}

	staged := ws.timetable.Clone()
	staged.Publish(carry)

	now := time.Now().UTC()
	state := ws.state
	state.Status = staged.Status()
	state.SavedAt = &now
	state.PublishedAt = &now

	version, err := s.persist(ctx, staged, state, true, actor)
	s.metrics.RecordLifecycle("publish", err)
	if err != nil {
		return nil, err
	}
	ws.timetable = staged
	ws.state = state
	s.syncIndex(staged)
	s.cache.InvalidatePublished(ctx, key)

	if s.snapshots != nil {
		if err := s.snapshots.ScheduleSnapshot(key, version); err != nil {
			s.logger.Warn("failed to schedule timetable snapshot", zap.String("timetable", key.String()), zap.Error(err))
		}
	}
	s.logger.Info("timetable published",
		zap.String("timetable", key.String()),
		zap.String("actor", actor),
		zap.Int("version", version),
		zap.Int("sessions", staged.Published().Len()),
	)
	return &dto.PublishResponse{Success: true, Version: version}, nil
}

// publishedStatuses returns a carry function keeping professor toggles of
// sessions that stay in the same cell across a republish.
func (s *TimetableService) publishedStatuses(ctx context.Context, key models.GroupKey) (func(models.Cell, models.Session) models.SessionStatus, error) {
	records, err := s.store.LoadGrid(ctx, key, models.GridCopyPublished)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to load published timetable")
	}
	type placed struct {
		cell   models.Cell
		status models.SessionStatus
	}
	current := make(map[string]placed, len(records))
	for _, rec := range records {
		current[rec.ID] = placed{cell: rec.Cell(), status: rec.Status}
	}
	return func(cell models.Cell, session models.Session) models.SessionStatus {
		prev, ok := current[session.ID]
		if !ok || prev.cell != cell {
			return models.SessionStatusActive
		}
		return prev.status
	}, nil
}

// Discard drops unsaved edits.
func (s *TimetableService) Discard(ctx context.Context, year, group string) (*dto.TimetableStateResponse, error) {
	key, err := parseGroupKey(year, group)
	if err != nil {
		return nil, err
	}
	ws := s.workspace(key)
	ws.mu.Lock()
	defer ws.mu.Unlock()
	if err := s.ensureLoaded(ctx, key, ws); err != nil {
		return nil, err
	}
	if err := s.discardLocked(ws); err != nil {
		return nil, err
	}
	return stateResponse(ws), nil
}

// discardLocked restores the saved copy. Unsaved removals may have freed a
// professor or room that another group has since taken, so the saved sessions
// are checked against the other groups first and the working copy is kept on conflict.
func (s *TimetableService) discardLocked(ws *workspace) error {
	s.placeMu.Lock()
	defer s.placeMu.Unlock()

	saved := ws.timetable.Saved().Placements()
	restored := make([]timetable.Relocation, 0, len(saved))
	for _, p := range saved {
		restored = append(restored, timetable.Relocation{From: p.Cell, To: p.Cell, Session: p.Session})
	}
	if result := s.revalidate(ws.timetable.Key(), restored); !result.Available {
		err := conflictError(result, "saved sessions conflict with placements made since the last save")
		s.metrics.RecordLifecycle("discard", err)
		return err
	}

	ws.timetable.Discard()
	s.syncIndex(ws.timetable)
	s.metrics.RecordLifecycle("discard", nil)
	return nil
}

// Release resolves pending edits when the operator leaves the editor.
func (s *TimetableService) Release(ctx context.Context, year, group, actor string, req dto.ReleaseRequest) (*dto.TimetableStateResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid release request")
	}
	key, err := parseGroupKey(year, group)
	if err != nil {
		return nil, err
	}
	ws := s.workspace(key)
	ws.mu.Lock()
	defer ws.mu.Unlock()
	if err := s.ensureLoaded(ctx, key, ws); err != nil {
		return nil, err
	}
	if ws.timetable.Status() != models.PublishStatusDirty {
		return stateResponse(ws), nil
	}
	switch req.Resolution {
	case dto.ReleaseResolutionSave:
		if err := s.saveLocked(ctx, ws, actor); err != nil {
			return nil, err
		}
	case dto.ReleaseResolutionDiscard:
		if err := s.discardLocked(ws); err != nil {
			return nil, err
		}
	default:
		return nil, appErrors.ErrUnsavedChanges
	}
	return stateResponse(ws), nil
}

// DeleteTimetable clears every copy of a group's timetable.
func (s *TimetableService) DeleteTimetable(ctx context.Context, year, group, actor string) (*dto.SuccessResponse, error) {
	key, err := parseGroupKey(year, group)
	if err != nil {
		return nil, err
	}
	ws := s.workspace(key)
	ws.mu.Lock()
	defer ws.mu.Unlock()
	if err := s.ensureLoaded(ctx, key, ws); err != nil {
		return nil, err
	}

	err = s.inTx(ctx, "timetable.delete", func(tx *sqlx.Tx) error {
		return s.store.DeleteTimetable(ctx, tx, key)
	})
	s.metrics.RecordLifecycle("delete", err)
	if err != nil {
		return nil, err
	}

	ws.timetable.Delete()
	ws.state = models.TimetableState{Year: key.Year, GroupName: key.Group, Status: models.PublishStatusEmpty}
	s.index.Drop(key)
	s.sessions.Drop(key)
	s.metrics.SetIndexedSessions(s.index.Size())
	s.cache.InvalidatePublished(ctx, key)
	s.logger.Info("timetable deleted", zap.String("timetable", key.String()), zap.String("actor", actor))
	return &dto.SuccessResponse{Success: true}, nil
}

// GetWorking renders the admin's working copy.
func (s *TimetableService) GetWorking(ctx context.Context, year, group string) (*dto.GridView, error) {
	key, err := parseGroupKey(year, group)
	if err != nil {
		return nil, err
	}
	ws := s.workspace(key)
	ws.mu.Lock()
	defer ws.mu.Unlock()
	if err := s.ensureLoaded(ctx, key, ws); err != nil {
		return nil, err
	}
	view := gridView(key, models.GridCopyDraft, ws.timetable.Working().Placements())
	view.Status = ws.timetable.Status()
	flags := flagsResponse(ws.timetable.Flags())
	view.Flags = &flags
	return view, nil
}

// State reports the lifecycle of a group.
func (s *TimetableService) State(ctx context.Context, year, group string) (*dto.TimetableStateResponse, error) {
	key, err := parseGroupKey(year, group)
	if err != nil {
		return nil, err
	}
	ws := s.workspace(key)
	ws.mu.Lock()
	defer ws.mu.Unlock()
	if err := s.ensureLoaded(ctx, key, ws); err != nil {
		return nil, err
	}
	return stateResponse(ws), nil
}

// ListVersions returns the publish history of a group.
func (s *TimetableService) ListVersions(ctx context.Context, year, group string) ([]models.TimetableVersion, error) {
	key, err := parseGroupKey(year, group)
	if err != nil {
		return nil, err
	}
	versions, err := s.versions.ListByGroup(ctx, key)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to list timetable versions")
	}
	return versions, nil
}

// IndexedSessions returns the number of sessions visible to availability checks.
func (s *TimetableService) IndexedSessions() int {
	return s.index.Size()
}

func (s *TimetableService) workspace(key models.GroupKey) *workspace {
	s.mu.Lock()
	defer s.mu.Unlock()
	ws, ok := s.workspaces[key]
	if !ok {
		ws = &workspace{}
		s.workspaces[key] = ws
	}
	return ws
}

// ensureLoaded restores the group's timetable from storage on first use. The
// caller must hold ws.mu.
func (s *TimetableService) ensureLoaded(ctx context.Context, key models.GroupKey, ws *workspace) error {
	if ws.timetable != nil {
		return nil
	}
	state, err := s.store.FindState(ctx, key)
	if errors.Is(err, sql.ErrNoRows) {
		ws.timetable = timetable.NewTimetable(key)
		ws.state = models.TimetableState{Year: key.Year, GroupName: key.Group, Status: models.PublishStatusEmpty}
		return nil
	}
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to load timetable state")
	}

	draft, err := s.store.LoadGrid(ctx, key, models.GridCopyDraft)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to load saved timetable")
	}
	var published *timetable.Grid
	if state.PublishedAt != nil {
		records, err := s.store.LoadGrid(ctx, key, models.GridCopyPublished)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to load published timetable")
		}
		published = gridFromRecords(key, records)
	}

	ws.timetable = timetable.RestoreTimetable(key, gridFromRecords(key, draft), published)
	ws.state = *state
	ws.state.Status = ws.timetable.Status()
	s.syncIndex(ws.timetable)
	return nil
}

func (s *TimetableService) syncIndex(t *timetable.Timetable) {
	s.index.Sync(t.Working())
	s.sessions.Sync(t)
	s.metrics.SetIndexedSessions(s.index.Size())
}

// persist writes a staged transition in one transaction. It returns the new
// version number when publishing.
func (s *TimetableService) persist(ctx context.Context, staged *timetable.Timetable, state models.TimetableState, publish bool, actor string) (int, error) {
	key := staged.Key()
	label := "timetable.save"
	if publish {
		label = "timetable.publish"
	}
	var version int
	err := s.inTx(ctx, label, func(tx *sqlx.Tx) error {
		if err := s.store.ReplaceGrid(ctx, tx, key, models.GridCopyDraft, recordsFromGrid(staged.Saved(), models.GridCopyDraft)); err != nil {
			return err
		}
		if publish {
			if err := s.store.ReplaceGrid(ctx, tx, key, models.GridCopyPublished, recordsFromGrid(staged.Published(), models.GridCopyPublished)); err != nil {
				return err
			}
			meta, err := json.Marshal(map[string]any{
				"cells":    len(staged.Published().Cells()),
				"sessions": staged.Published().Len(),
			})
			if err != nil {
				return err
			}
			record := &models.TimetableVersion{
				Year:         key.Year,
				GroupName:    key.Group,
				SessionCount: staged.Published().Len(),
				PublishedBy:  actor,
				Meta:         types.JSONText(meta),
			}
			if err := s.versions.CreateVersioned(ctx, tx, record); err != nil {
				return err
			}
			version = record.Version
		}
		return s.store.UpsertState(ctx, tx, &state)
	})
	return version, err
}

func (s *TimetableService) inTx(ctx context.Context, label string, fn func(tx *sqlx.Tx) error) (err error) {
	if s.tx == nil {
		return appErrors.Clone(appErrors.ErrPersistence, "transaction provider missing")
	}
	start := time.Now()
	defer func() { s.metrics.ObserveDBQuery(label, time.Since(start)) }()

	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to begin transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(tx); err != nil {
		s.logger.Error("timetable persistence failed", zap.String("operation", label), zap.Error(err))
		err = appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to persist timetable")
		return err
	}
	if err = tx.Commit(); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to commit timetable transaction")
		return err
	}
	return nil
}

func parseGroupKey(year, group string) (models.GroupKey, error) {
	key := models.GroupKey{Year: strings.TrimSpace(year), Group: strings.TrimSpace(group)}
	if key.Year == "" || key.Group == "" {
		return key, appErrors.Clone(appErrors.ErrValidation, "year and group are required")
	}
	return key, nil
}

func parseCell(day string, slot int) (models.Cell, error) {
	d, ok := models.ParseDay(day)
	cell := models.Cell{Day: d, Slot: models.TimeSlot(slot)}
	if !ok || !cell.Slot.Valid() {
		return cell, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid cell %s/%d", day, slot))
	}
	return cell, nil
}

func conflictError(result models.AvailabilityResult, message string) error {
	return appErrors.Wrap(&models.TimetableConflictError{Message: message, Result: result}, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, message)
}

func mapTimetableError(err error) error {
	switch {
	case errors.Is(err, timetable.ErrNoSourceSession):
		return appErrors.Wrap(err, appErrors.ErrNoSourceSession.Code, appErrors.ErrNoSourceSession.Status, appErrors.ErrNoSourceSession.Message)
	case errors.Is(err, timetable.ErrInvalidCell):
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "cell outside the timetable grid")
	case errors.Is(err, timetable.ErrNotOwner):
		return appErrors.Wrap(err, appErrors.ErrNotOwner.Code, appErrors.ErrNotOwner.Status, appErrors.ErrNotOwner.Message)
	case errors.Is(err, timetable.ErrUnknownAction):
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "unknown status action")
	default:
		return appErrors.FromError(err)
	}
}

func stateResponse(ws *workspace) *dto.TimetableStateResponse {
	key := ws.timetable.Key()
	return &dto.TimetableStateResponse{
		Year:        key.Year,
		Group:       key.Group,
		Status:      ws.timetable.Status(),
		Flags:       flagsResponse(ws.timetable.Flags()),
		SavedAt:     ws.state.SavedAt,
		PublishedAt: ws.state.PublishedAt,
	}
}

func flagsResponse(f timetable.Flags) dto.TimetableFlags {
	return dto.TimetableFlags{
		HasUnsavedChanges: f.HasUnsavedChanges,
		HasDraftChanges:   f.HasDraftChanges,
		IsPublished:       f.IsPublished,
	}
}
