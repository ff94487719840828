package service

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-timetable-api/internal/dto"
	"github.com/noah-isme/sma-timetable-api/internal/models"
	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
)

type publishedStore interface {
	FindState(ctx context.Context, key models.GroupKey) (*models.TimetableState, error)
	LoadGrid(ctx context.Context, key models.GroupKey, copyKind models.GridCopy) ([]models.SessionRecord, error)
	ListPublishedByProfessor(ctx context.Context, professorID string) ([]models.SessionRecord, error)
}

// PublishedTimetableService serves the read-only views students and professors consume.
type PublishedTimetableService struct {
	store  publishedStore
	cache  *CacheService
	ttl    time.Duration
	logger *zap.Logger
}

// NewPublishedTimetableService constructs the published read service.
func NewPublishedTimetableService(store publishedStore, cache *CacheService, ttl time.Duration, logger *zap.Logger) *PublishedTimetableService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PublishedTimetableService{store: store, cache: cache, ttl: ttl, logger: logger}
}

// ReadPublished renders the published grid of a group.
func (s *PublishedTimetableService) ReadPublished(ctx context.Context, year, group string) (*dto.GridView, error) {
	view, _, err := s.GroupView(ctx, year, group)
	return view, err
}

// GroupView is ReadPublished that also reports whether the cache served the view.
func (s *PublishedTimetableService) GroupView(ctx context.Context, year, group string) (*dto.GridView, bool, error) {
	key, err := parseGroupKey(year, group)
	if err != nil {
		return nil, false, err
	}

	cacheKey := publishedGroupCacheKey(key)
	var cached dto.GridView
	if hit, _ := s.cache.Get(ctx, cacheKey, &cached); hit {
		return &cached, true, nil
	}

	state, err := s.store.FindState(ctx, key)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && state.PublishedAt == nil) {
		return nil, false, appErrors.Clone(appErrors.ErrNotFound, "timetable has not been published")
	}
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to load timetable state")
	}

	records, err := s.store.LoadGrid(ctx, key, models.GridCopyPublished)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to load published timetable")
	}
	view := gridView(key, models.GridCopyPublished, gridFromRecords(key, records).Placements())

	if err := s.cache.Set(ctx, cacheKey, view, s.ttl); err != nil {
		s.logger.Debug("published timetable not cached", zap.String("key", cacheKey), zap.Error(err))
	}
	return view, false, nil
}

// ReadByProfessor lists the published sessions a professor teaches, as primary
// or as the second professor of a same_time split, in week order.
func (s *PublishedTimetableService) ReadByProfessor(ctx context.Context, professorID string) (*dto.ProfessorTimetableView, error) {
	view, _, err := s.ProfessorView(ctx, professorID)
	return view, err
}

// ProfessorView is ReadByProfessor with the cache hit flag.
func (s *PublishedTimetableService) ProfessorView(ctx context.Context, professorID string) (*dto.ProfessorTimetableView, bool, error) {
	professorID = strings.TrimSpace(professorID)
	if professorID == "" {
		return nil, false, appErrors.Clone(appErrors.ErrValidation, "professor id is required")
	}

	cacheKey := professorCacheKey(professorID)
	var cached dto.ProfessorTimetableView
	if hit, _ := s.cache.Get(ctx, cacheKey, &cached); hit {
		return &cached, true, nil
	}

	records, err := s.store.ListPublishedByProfessor(ctx, professorID)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to load professor timetable")
	}

	entries := make([]dto.ProfessorEntry, 0, len(records))
	for _, rec := range records {
		session := rec.Session()
		cell := rec.Cell()
		entries = append(entries, dto.ProfessorEntry{
			Year:      rec.Year,
			Group:     rec.GroupName,
			Day:       cell.Day,
			Slot:      cell.Slot,
			TimeRange: cell.Slot.Label(),
			Session:   withColor(dto.SessionPayloadFrom(session), session),
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		a := models.Cell{Day: entries[i].Day, Slot: entries[i].Slot}
		b := models.Cell{Day: entries[j].Day, Slot: entries[j].Slot}
		if a != b {
			return a.Before(b)
		}
		if entries[i].Year != entries[j].Year {
			return entries[i].Year < entries[j].Year
		}
		return entries[i].Group < entries[j].Group
	})

	view := &dto.ProfessorTimetableView{ProfessorID: professorID, Entries: entries}
	if err := s.cache.Set(ctx, cacheKey, view, s.ttl); err != nil {
		s.logger.Debug("professor timetable not cached", zap.String("key", cacheKey), zap.Error(err))
	}
	return view, false, nil
}
