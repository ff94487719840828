package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-timetable-api/internal/models"
)

func TestStatusRequestRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newTimetableRepoMock(t)
	defer cleanup()
	repo := NewStatusRequestRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO timetable_status_requests")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	request := &models.StatusRequest{SessionID: "s1", Year: "Y1", GroupName: "G1", Day: models.Monday, Slot: 1, ProfessorID: "P1", Action: models.StatusActionCancel}
	require.NoError(t, repo.Create(context.Background(), nil, request))
	assert.NotEmpty(t, request.ID)
	assert.False(t, request.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStatusRequestRepositoryListPending(t *testing.T) {
	db, mock, cleanup := newTimetableRepoMock(t)
	defer cleanup()
	repo := NewStatusRequestRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM timetable_status_requests WHERE year = $1 AND acknowledged = FALSE")).
		WithArgs("Y1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	rows := sqlmock.NewRows([]string{"id", "session_id", "year", "group_name", "day", "slot", "professor_id", "action", "previous_status", "new_status", "acknowledged", "acknowledged_by", "acknowledged_at", "created_at"}).
		AddRow("req-1", "s1", "Y1", "G1", "MONDAY", 1, "P1", "cancel", "ACTIVE", "CANCELED", false, nil, nil, time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("FROM timetable_status_requests WHERE year = $1 AND acknowledged = FALSE ORDER BY created_at DESC LIMIT 20 OFFSET 20")).
		WithArgs("Y1").
		WillReturnRows(rows)

	list, total, err := repo.List(context.Background(), models.StatusRequestFilter{Year: "Y1", PendingOnly: true, Page: 2, PageSize: 20})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, list, 1)
	assert.Equal(t, models.SessionStatusCanceled, list[0].NewStatus)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStatusRequestRepositoryAcknowledge(t *testing.T) {
	db, mock, cleanup := newTimetableRepoMock(t)
	defer cleanup()
	repo := NewStatusRequestRepository(db)

	query := regexp.QuoteMeta("UPDATE timetable_status_requests SET acknowledged = TRUE")
	mock.ExpectExec(query).WithArgs("admin-1", sqlmock.AnyArg(), "req-1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(query).WithArgs("admin-1", sqlmock.AnyArg(), "req-1").WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.Acknowledge(context.Background(), "req-1", "admin-1"))
	assert.ErrorIs(t, repo.Acknowledge(context.Background(), "req-1", "admin-1"), sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
