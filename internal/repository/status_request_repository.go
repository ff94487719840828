package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-timetable-api/internal/models"
)

const statusRequestColumns = `id, session_id, year, group_name, day, slot, professor_id, action, previous_status, new_status, acknowledged, acknowledged_by, acknowledged_at, created_at`

// StatusRequestRepository persists professor toggle requests.
type StatusRequestRepository struct {
	db *sqlx.DB
}

// NewStatusRequestRepository constructs the repository.
func NewStatusRequestRepository(db *sqlx.DB) *StatusRequestRepository {
	return &StatusRequestRepository{db: db}
}

func (r *StatusRequestRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// Create inserts a request row.
func (r *StatusRequestRepository) Create(ctx context.Context, exec sqlx.ExtContext, request *models.StatusRequest) error {
	if request == nil {
		return fmt.Errorf("status request is nil")
	}
	if request.ID == "" {
		request.ID = uuid.NewString()
	}
	if request.CreatedAt.IsZero() {
		request.CreatedAt = time.Now().UTC()
	}
	query := `INSERT INTO timetable_status_requests (` + statusRequestColumns + `) VALUES (:id, :session_id, :year, :group_name, :day, :slot, :professor_id, :action, :previous_status, :new_status, :acknowledged, :acknowledged_by, :acknowledged_at, :created_at)`
	if _, err := sqlx.NamedExecContext(ctx, r.exec(exec), query, request); err != nil {
		return fmt.Errorf("create status request: %w", err)
	}
	return nil
}

// List returns requests matching the filter, newest first, with the total count.
func (r *StatusRequestRepository) List(ctx context.Context, filter models.StatusRequestFilter) ([]models.StatusRequest, int, error) {
	args := make([]interface{}, 0, 4)
	conditions := make([]string, 0, 4)
	if filter.Year != "" {
		args = append(args, filter.Year)
		conditions = append(conditions, fmt.Sprintf("year = $%d", len(args)))
	}
	if filter.GroupName != "" {
		args = append(args, filter.GroupName)
		conditions = append(conditions, fmt.Sprintf("group_name = $%d", len(args)))
	}
	if filter.ProfessorID != "" {
		args = append(args, filter.ProfessorID)
		conditions = append(conditions, fmt.Sprintf("professor_id = $%d", len(args)))
	}
	if filter.PendingOnly {
		conditions = append(conditions, "acknowledged = FALSE")
	}
	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM timetable_status_requests`+where, args...); err != nil {
		return nil, 0, fmt.Errorf("count status requests: %w", err)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 200 {
		size = 50
	}
	query := `SELECT ` + statusRequestColumns + ` FROM timetable_status_requests` + where +
		fmt.Sprintf(" ORDER BY created_at DESC LIMIT %d OFFSET %d", size, (page-1)*size)

	var requests []models.StatusRequest
	if err := r.db.SelectContext(ctx, &requests, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list status requests: %w", err)
	}
	return requests, total, nil
}

// Acknowledge marks a pending request as seen by an admin.
func (r *StatusRequestRepository) Acknowledge(ctx context.Context, id, adminID string) error {
	const query = `UPDATE timetable_status_requests SET acknowledged = TRUE, acknowledged_by = $1, acknowledged_at = $2 WHERE id = $3 AND acknowledged = FALSE`
	result, err := r.db.ExecContext(ctx, query, adminID, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("acknowledge status request: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("status request rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
