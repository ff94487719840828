package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-timetable-api/internal/dto"
	"github.com/noah-isme/sma-timetable-api/internal/models"
	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
	"github.com/noah-isme/sma-timetable-api/pkg/export"
	"github.com/noah-isme/sma-timetable-api/pkg/storage"
)

type publishedReader interface {
	ReadPublished(ctx context.Context, year, group string) (*dto.GridView, error)
}

type snapshotVersionStore interface {
	FindVersion(ctx context.Context, key models.GroupKey, version int) (*models.TimetableVersion, error)
	SetSnapshot(ctx context.Context, key models.GroupKey, version int, snapshotKey string) error
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

const (
	contentTypeCSV = "text/csv"
	contentTypePDF = "application/pdf"
)

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix string
}

// ExportFile is a rendered document ready to be streamed.
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// SnapshotLink is an expiring download link for a stored publish snapshot.
type SnapshotLink struct {
	Version   int       `json:"version"`
	Token     string    `json:"token"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// ExportService renders published timetables and keeps per-version snapshots.
type ExportService struct {
	published publishedReader
	versions  snapshotVersionStore
	storage   storage.ObjectStore
	csv       csvRenderer
	pdf       pdfRenderer
	signer    *storage.SignedURLSigner
	logger    *zap.Logger
	cfg       ExportConfig
}

// NewExportService constructs an ExportService.
func NewExportService(published publishedReader, versions snapshotVersionStore, store storage.ObjectStore, signer *storage.SignedURLSigner, cfg ExportConfig, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{
		published: published,
		versions:  versions,
		storage:   store,
		csv:       csv,
		pdf:       pdf,
		signer:    signer,
		logger:    logger,
		cfg:       cfg,
	}
}

// Export renders the published grid of a group as CSV or PDF.
func (s *ExportService) Export(ctx context.Context, year, group, format string) (*ExportFile, error) {
	if format == "" {
		format = dto.ExportFormatCSV
	}
	view, err := s.published.ReadPublished(ctx, year, group)
	if err != nil {
		return nil, err
	}
	key := models.GroupKey{Year: view.Year, Group: view.Group}

	switch format {
	case dto.ExportFormatCSV:
		payload, err := s.csv.Render(sessionDataset(view))
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return &ExportFile{Filename: exportFilename(key, "csv"), ContentType: contentTypeCSV, Data: payload}, nil
	case dto.ExportFormatPDF:
		payload, err := s.pdf.Render(weekDataset(view), exportTitle(key))
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return &ExportFile{Filename: exportFilename(key, "pdf"), ContentType: contentTypePDF, Data: payload}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported format %s", format))
	}
}

// GenerateSnapshot stores the PDF rendering of a published version.
func (s *ExportService) GenerateSnapshot(ctx context.Context, key models.GroupKey, version int) (string, error) {
	file, err := s.Export(ctx, key.Year, key.Group, dto.ExportFormatPDF)
	if err != nil {
		return "", err
	}
	objectKey := snapshotKey(key, version)
	stored, err := s.storage.Put(ctx, objectKey, file.Data, file.ContentType)
	if err != nil {
		return "", err
	}
	if err := s.versions.SetSnapshot(ctx, key, version, stored); err != nil {
		return "", err
	}
	s.logger.Info("timetable snapshot stored", zap.String("timetable", key.String()), zap.Int("version", version), zap.String("key", stored))
	return stored, nil
}

// SnapshotLink signs a download link for the snapshot of a version.
func (s *ExportService) SnapshotLink(ctx context.Context, year, group string, version int) (*SnapshotLink, error) {
	key, err := parseGroupKey(year, group)
	if err != nil {
		return nil, err
	}
	record, err := s.versions.FindVersion(ctx, key, version)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "timetable version not found")
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to load timetable version")
	}
	if record.SnapshotKey == nil || *record.SnapshotKey == "" {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "snapshot not available yet")
	}

	token, expiresAt, err := s.signer.Generate(record.ID, *record.SnapshotKey)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign snapshot link")
	}
	prefix := strings.TrimRight(s.cfg.APIPrefix, "/")
	if prefix == "" {
		prefix = "/api/v1"
	}
	return &SnapshotLink{
		Version:   version,
		Token:     token,
		URL:       fmt.Sprintf("%s/snapshots/%s", prefix, token),
		ExpiresAt: expiresAt,
	}, nil
}

// OpenSnapshot resolves a signed token to the stored document.
func (s *ExportService) OpenSnapshot(ctx context.Context, token string) (*ExportFile, error) {
	_, objectKey, _, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid or expired snapshot link")
	}
	data, err := s.storage.Get(ctx, objectKey)
	if errors.Is(err, storage.ErrObjectNotFound) {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "snapshot not found")
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to read snapshot")
	}
	name := objectKey[strings.LastIndex(objectKey, "/")+1:]
	return &ExportFile{Filename: name, ContentType: contentTypePDF, Data: data}, nil
}

// sessionDataset lists one row per occupant; a same_time session yields two rows.
func sessionDataset(view *dto.GridView) export.Dataset {
	headers := []string{"Year", "Group", "Day", "Slot", "Time", "Subject", "Professor", "Room", "Type", "Subgroup", "Status"}
	rows := make([][]string, 0)
	for _, cell := range view.Cells {
		for _, session := range cell.Sessions {
			status := sessionStatusLabel(session)
			base := []string{view.Year, view.Group, string(cell.Day), strconv.Itoa(int(cell.Slot)), cell.TimeRange}
			rows = append(rows, append(append([]string{}, base...),
				displayName(session.SubjectName, session.SubjectID),
				displayName(session.ProfessorName, session.ProfessorID),
				session.Room, session.ClassType, session.Subgroup1, status))
			if session.SplitType == string(models.SplitTypeSameTime) {
				rows = append(rows, append(append([]string{}, base...),
					displayName(session.Subject2Name, session.Subject2ID),
					displayName(session.Professor2Name, session.Professor2ID),
					session.Room2, session.ClassType2, session.Subgroup2, status))
			}
		}
	}
	return export.Dataset{Headers: headers, Rows: rows}
}

// weekDataset lays the grid out as slots (rows) by days (columns).
func weekDataset(view *dto.GridView) export.Dataset {
	days := make([]models.Day, 0, 7)
	occupied := make(map[models.CellKey]dto.CellView, len(view.Cells))
	usesSunday := false
	for _, cell := range view.Cells {
		occupied[models.CellKey{Cell: models.Cell{Day: cell.Day, Slot: cell.Slot}}] = cell
		if cell.Day == models.Sunday {
			usesSunday = true
		}
	}
	for _, day := range models.Days() {
		if day == models.Sunday && !usesSunday {
			continue
		}
		days = append(days, day)
	}

	headers := []string{"Time"}
	for _, day := range days {
		headers = append(headers, string(day))
	}
	rows := make([][]string, 0, models.SlotsPerDay)
	for _, slot := range models.TimeSlots() {
		row := []string{slot.Label()}
		for _, day := range days {
			cell, ok := occupied[models.CellKey{Cell: models.Cell{Day: day, Slot: slot}}]
			if !ok {
				row = append(row, "")
				continue
			}
			row = append(row, cellText(cell))
		}
		rows = append(rows, row)
	}
	return export.Dataset{Headers: headers, Rows: rows}
}

func cellText(cell dto.CellView) string {
	parts := make([]string, 0, len(cell.Sessions))
	for _, session := range cell.Sessions {
		lines := []string{halfText(session.SubjectName, session.SubjectID, session.ClassType, session.Subgroup1, session.ProfessorName, session.ProfessorID, session.Room)}
		if session.SplitType == string(models.SplitTypeSameTime) {
			lines = append(lines, halfText(session.Subject2Name, session.Subject2ID, session.ClassType2, session.Subgroup2, session.Professor2Name, session.Professor2ID, session.Room2))
		}
		if status := sessionStatusLabel(session); status != string(models.SessionStatusActive) {
			lines = append(lines, "["+status+"]")
		}
		parts = append(parts, strings.Join(lines, "\n"))
	}
	return strings.Join(parts, "\n---\n")
}

func halfText(subjectName, subjectID, classType, subgroup, professorName, professorID, room string) string {
	head := displayName(subjectName, subjectID) + " " + classType
	if subgroup != "" {
		head += " (" + subgroup + ")"
	}
	return head + "\n" + displayName(professorName, professorID) + "\n" + room
}

func sessionStatusLabel(session dto.SessionPayload) string {
	switch {
	case session.IsCanceled:
		return string(models.SessionStatusCanceled)
	case session.IsRescheduled:
		return string(models.SessionStatusRescheduled)
	default:
		return string(models.SessionStatusActive)
	}
}

func displayName(name, id string) string {
	if name != "" {
		return name
	}
	return id
}

func exportTitle(key models.GroupKey) string {
	return fmt.Sprintf("Timetable %s %s", key.Year, key.Group)
}

func exportFilename(key models.GroupKey, ext string) string {
	return fmt.Sprintf("timetable_%s_%s.%s", sanitizeFilename(key.Year), sanitizeFilename(key.Group), ext)
}

func snapshotKey(key models.GroupKey, version int) string {
	return fmt.Sprintf("snapshots/%s/%s/v%d.pdf", sanitizeFilename(key.Year), sanitizeFilename(key.Group), version)
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".", "__", "_")
	result := replacer.Replace(raw)
	if len(result) > 100 {
		return result[:100]
	}
	return result
}
