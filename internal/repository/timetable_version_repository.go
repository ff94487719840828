package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"

	"github.com/noah-isme/sma-timetable-api/internal/models"
)

const versionColumns = "id, year, group_name, version, session_count, published_by, meta, snapshot_key, created_at"

// TimetableVersionRepository keeps the publish history of each group.
type TimetableVersionRepository struct {
	db *sqlx.DB
}

// NewTimetableVersionRepository constructs repository.
func NewTimetableVersionRepository(db *sqlx.DB) *TimetableVersionRepository {
	return &TimetableVersionRepository{db: db}
}

func (r *TimetableVersionRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// CreateVersioned inserts a publish record assigning the next version for the group.
func (r *TimetableVersionRepository) CreateVersioned(ctx context.Context, exec sqlx.ExtContext, version *models.TimetableVersion) error {
	if version == nil {
		return fmt.Errorf("version payload is nil")
	}
	if version.Year == "" || version.GroupName == "" {
		return fmt.Errorf("year and group_name are required")
	}
	if version.ID == "" {
		version.ID = uuid.NewString()
	}
	if len(version.Meta) == 0 {
		version.Meta = types.JSONText(`{}`)
	}
	if version.CreatedAt.IsZero() {
		version.CreatedAt = time.Now().UTC()
	}

	target := r.exec(exec)

	const nextVersionQuery = `SELECT COALESCE(MAX(version), 0) + 1 FROM timetable_versions WHERE year = $1 AND group_name = $2`
	if err := sqlx.GetContext(ctx, target, &version.Version, nextVersionQuery, version.Year, version.GroupName); err != nil {
		return fmt.Errorf("compute next timetable version: %w", err)
	}

	const insertQuery = `
INSERT INTO timetable_versions (id, year, group_name, version, session_count, published_by, meta, created_at)
VALUES (:id, :year, :group_name, :version, :session_count, :published_by, :meta, :created_at)`
	if _, err := sqlx.NamedExecContext(ctx, target, insertQuery, version); err != nil {
		return fmt.Errorf("insert timetable version: %w", err)
	}
	return nil
}

// ListByGroup returns all versions of a group, newest first.
func (r *TimetableVersionRepository) ListByGroup(ctx context.Context, key models.GroupKey) ([]models.TimetableVersion, error) {
	query := `SELECT ` + versionColumns + ` FROM timetable_versions WHERE year = $1 AND group_name = $2 ORDER BY version DESC`
	var versions []models.TimetableVersion
	if err := r.db.SelectContext(ctx, &versions, query, key.Year, key.Group); err != nil {
		return nil, fmt.Errorf("list timetable versions: %w", err)
	}
	return versions, nil
}

// FindVersion loads one publish record.
func (r *TimetableVersionRepository) FindVersion(ctx context.Context, key models.GroupKey, version int) (*models.TimetableVersion, error) {
	query := `SELECT ` + versionColumns + ` FROM timetable_versions WHERE year = $1 AND group_name = $2 AND version = $3`
	var record models.TimetableVersion
	if err := r.db.GetContext(ctx, &record, query, key.Year, key.Group, version); err != nil {
		return nil, err
	}
	return &record, nil
}

// SetSnapshot records where the rendered snapshot of a version was stored.
func (r *TimetableVersionRepository) SetSnapshot(ctx context.Context, key models.GroupKey, version int, snapshotKey string) error {
	const query = `UPDATE timetable_versions SET snapshot_key = $1 WHERE year = $2 AND group_name = $3 AND version = $4`
	result, err := r.db.ExecContext(ctx, query, snapshotKey, key.Year, key.Group, version)
	if err != nil {
		return fmt.Errorf("set timetable snapshot: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("timetable snapshot rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
