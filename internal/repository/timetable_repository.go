package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-timetable-api/internal/models"
)

const sessionColumns = `id, year, group_name, copy, day, slot, kind, subject_id, subject_name, professor_id, professor_name, room, class_type, subject2_id, subject2_name, professor2_id, professor2_name, room2, class_type2, subgroup1, subgroup2, color, status, updated_at`

// TimetableRepository persists draft and published grids plus their lifecycle state.
type TimetableRepository struct {
	db *sqlx.DB
}

// NewTimetableRepository constructs the repository.
func NewTimetableRepository(db *sqlx.DB) *TimetableRepository {
	return &TimetableRepository{db: db}
}

func (r *TimetableRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// ListStates returns every known timetable lifecycle row.
func (r *TimetableRepository) ListStates(ctx context.Context) ([]models.TimetableState, error) {
	const query = `SELECT year, group_name, status, saved_at, published_at, updated_at FROM timetable_states ORDER BY year, group_name`
	var states []models.TimetableState
	if err := r.db.SelectContext(ctx, &states, query); err != nil {
		return nil, fmt.Errorf("list timetable states: %w", err)
	}
	return states, nil
}

// FindState loads the lifecycle row of a group.
func (r *TimetableRepository) FindState(ctx context.Context, key models.GroupKey) (*models.TimetableState, error) {
	const query = `SELECT year, group_name, status, saved_at, published_at, updated_at FROM timetable_states WHERE year = $1 AND group_name = $2`
	var state models.TimetableState
	if err := r.db.GetContext(ctx, &state, query, key.Year, key.Group); err != nil {
		return nil, err
	}
	return &state, nil
}

// UpsertState writes the lifecycle row of a group.
func (r *TimetableRepository) UpsertState(ctx context.Context, exec sqlx.ExtContext, state *models.TimetableState) error {
	if state == nil {
		return fmt.Errorf("timetable state is nil")
	}
	state.UpdatedAt = time.Now().UTC()
	const query = `
INSERT INTO timetable_states (year, group_name, status, saved_at, published_at, updated_at)
VALUES (:year, :group_name, :status, :saved_at, :published_at, :updated_at)
ON CONFLICT (year, group_name) DO UPDATE SET status = EXCLUDED.status, saved_at = EXCLUDED.saved_at, published_at = EXCLUDED.published_at, updated_at = EXCLUDED.updated_at`
	if _, err := sqlx.NamedExecContext(ctx, r.exec(exec), query, state); err != nil {
		return fmt.Errorf("upsert timetable state: %w", err)
	}
	return nil
}

// LoadGrid returns the stored rows of one copy of a group's grid.
func (r *TimetableRepository) LoadGrid(ctx context.Context, key models.GroupKey, copyKind models.GridCopy) ([]models.SessionRecord, error) {
	query := `SELECT ` + sessionColumns + ` FROM timetable_sessions WHERE year = $1 AND group_name = $2 AND copy = $3 ORDER BY day, slot, subgroup1`
	var records []models.SessionRecord
	if err := r.db.SelectContext(ctx, &records, query, key.Year, key.Group, copyKind); err != nil {
		return nil, fmt.Errorf("load timetable grid: %w", err)
	}
	return records, nil
}

// ReplaceGrid swaps one copy of a group's grid for the provided rows.
func (r *TimetableRepository) ReplaceGrid(ctx context.Context, exec sqlx.ExtContext, key models.GroupKey, copyKind models.GridCopy, records []models.SessionRecord) error {
	target := r.exec(exec)
	const deleteQuery = `DELETE FROM timetable_sessions WHERE year = $1 AND group_name = $2 AND copy = $3`
	if _, err := target.ExecContext(ctx, deleteQuery, key.Year, key.Group, copyKind); err != nil {
		return fmt.Errorf("clear timetable grid: %w", err)
	}
	if len(records) == 0 {
		return nil
	}
	now := time.Now().UTC()
	insertQuery := `INSERT INTO timetable_sessions (` + sessionColumns + `) VALUES (:id, :year, :group_name, :copy, :day, :slot, :kind, :subject_id, :subject_name, :professor_id, :professor_name, :room, :class_type, :subject2_id, :subject2_name, :professor2_id, :professor2_name, :room2, :class_type2, :subgroup1, :subgroup2, :color, :status, :updated_at)`
	for i := range records {
		rec := records[i]
		rec.Year, rec.GroupName, rec.Copy, rec.UpdatedAt = key.Year, key.Group, copyKind, now
		if _, err := sqlx.NamedExecContext(ctx, target, insertQuery, rec); err != nil {
			return fmt.Errorf("insert timetable session %s: %w", rec.ID, err)
		}
	}
	return nil
}

// DeleteTimetable removes every copy and the lifecycle row of a group.
func (r *TimetableRepository) DeleteTimetable(ctx context.Context, exec sqlx.ExtContext, key models.GroupKey) error {
	target := r.exec(exec)
	if _, err := target.ExecContext(ctx, `DELETE FROM timetable_sessions WHERE year = $1 AND group_name = $2`, key.Year, key.Group); err != nil {
		return fmt.Errorf("delete timetable sessions: %w", err)
	}
	if _, err := target.ExecContext(ctx, `DELETE FROM timetable_states WHERE year = $1 AND group_name = $2`, key.Year, key.Group); err != nil {
		return fmt.Errorf("delete timetable state: %w", err)
	}
	return nil
}

// ListPublishedByProfessor returns published rows where the professor teaches either half.
func (r *TimetableRepository) ListPublishedByProfessor(ctx context.Context, professorID string) ([]models.SessionRecord, error) {
	query := `SELECT ` + sessionColumns + ` FROM timetable_sessions WHERE copy = $1 AND (professor_id = $2 OR professor2_id = $2) ORDER BY day, slot, year, group_name`
	var records []models.SessionRecord
	if err := r.db.SelectContext(ctx, &records, query, models.GridCopyPublished, professorID); err != nil {
		return nil, fmt.Errorf("list professor timetable: %w", err)
	}
	return records, nil
}

// FindPublishedSession loads the published row of a session.
func (r *TimetableRepository) FindPublishedSession(ctx context.Context, sessionID string) (*models.SessionRecord, error) {
	query := `SELECT ` + sessionColumns + ` FROM timetable_sessions WHERE id = $1 AND copy = $2`
	var record models.SessionRecord
	if err := r.db.GetContext(ctx, &record, query, sessionID, models.GridCopyPublished); err != nil {
		return nil, err
	}
	return &record, nil
}

// CompareAndSetStatus moves a published session from one status to another. It
// returns sql.ErrNoRows when the stored status no longer matches from.
func (r *TimetableRepository) CompareAndSetStatus(ctx context.Context, exec sqlx.ExtContext, sessionID string, from, to models.SessionStatus) error {
	const query = `UPDATE timetable_sessions SET status = $1, updated_at = $2 WHERE id = $3 AND copy = $4 AND status = $5`
	result, err := r.exec(exec).ExecContext(ctx, query, to, time.Now().UTC(), sessionID, models.GridCopyPublished, from)
	if err != nil {
		return fmt.Errorf("update session status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("session status rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
